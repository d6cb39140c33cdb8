package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Shipping ShippingConfig `mapstructure:"shipping"`
	Store    StoreConfig    `mapstructure:"store"`
	Invoice  InvoiceConfig  `mapstructure:"invoice"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// ShippingConfig carries the shipping fee rules. Cash on delivery is free
// above the threshold, otherwise CODFee; online payment is a flat fee.
type ShippingConfig struct {
	CODFee           int `mapstructure:"cod_fee"`
	CODFreeThreshold int `mapstructure:"cod_free_threshold"`
	OnlineFee        int `mapstructure:"online_fee"`
}

type StoreConfig struct {
	Name       string `mapstructure:"name"`
	AdminEmail string `mapstructure:"admin_email"`
}

type InvoiceConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Fee defaults match the storefront's published rates
	v.SetDefault("shipping.cod_fee", 50)
	v.SetDefault("shipping.cod_free_threshold", 1500)
	v.SetDefault("shipping.online_fee", 80)
	v.SetDefault("invoice.output_dir", "invoices")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

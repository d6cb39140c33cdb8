package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/creatorstore/pkg/cart"
	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/models"
	"github.com/go-redis/redis/v8"
)

// Carts are kept for thirty days after the last mutation, mirroring a
// browser profile that eventually gets cleaned up.
const cartTTL = 30 * 24 * time.Hour

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// CartSlot is the persistent key-value slot for one cart, the server-side
// analog of the browser's local-storage entry. It satisfies cart.Storage.
type CartSlot struct {
	repo *RedisRepository
	key  string
}

func (r *RedisRepository) CartSlot(cartID string) cart.Storage {
	return &CartSlot{
		repo: r,
		key:  fmt.Sprintf("cart:%s", cartID),
	}
}

// Load reads the serialized cart. A missing or corrupt slot comes back as
// the empty cart; only transport errors are reported.
func (c *CartSlot) Load(ctx context.Context) ([]models.CartItem, error) {
	data, err := c.repo.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart slot: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		// Corrupt slot, start over with an empty cart
		return nil, nil
	}
	return items, nil
}

// Save overwrites the slot with the full cart.
func (c *CartSlot) Save(ctx context.Context, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	if err := c.repo.SetJSON(ctx, c.key, items, cartTTL); err != nil {
		return fmt.Errorf("failed to save cart slot: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/creatorstore/pkg/catalog"
	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/discovery"
	"github.com/example/creatorstore/pkg/invoice"
	"github.com/example/creatorstore/pkg/notify"
	"github.com/example/creatorstore/pkg/repository"
	"github.com/example/creatorstore/pkg/server"
	"github.com/example/creatorstore/pkg/worker"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront server",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// Load catalog once; a failed load degrades every listing to empty
	cat := catalog.NewStore()
	if err := cat.Load(cfg.Catalog.Path); err != nil {
		logger.Warn("Failed to load catalog, serving empty listings", zap.Error(err))
	} else {
		logger.Info("Catalog loaded",
			zap.Int("categories", len(cat.Categories())),
			zap.Int("products", len(cat.Products())),
			zap.Int("kits", len(cat.Kits())))
	}

	// Cart persistence
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	defer redisRepo.Close()

	ctx := context.Background()
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	// Order side-effect workers
	system := actor.NewActorSystem()
	renderer := invoice.NewRenderer(cfg.Invoice, cfg.Store.Name)
	notifier := notify.NewNotifier(cfg.SMTP, cfg.Store.AdminEmail, logger)
	dispatcher, err := worker.StartWorkers(system, renderer, notifier, logger)
	if err != nil {
		logger.Fatal("Failed to start order workers", zap.Error(err))
	}

	// Optional etcd registration
	reg, err := discovery.NewRegistry(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
		reg = nil
	}

	instance := &discovery.Instance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if reg != nil {
		if err := reg.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd",
				zap.String("name", cfg.Server.Name),
				zap.String("address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))
		}
	}

	// Create server
	srv := server.NewServer(cfg, cat, redisRepo, dispatcher, logger)
	srv.SetupRoutes()

	// Start server in goroutine
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	logger.Info("Storefront server started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	if reg != nil {
		if err := reg.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		reg.Close()
	}

	logger.Info("Storefront server stopped")
}

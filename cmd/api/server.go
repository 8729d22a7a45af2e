package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/PxPatel/pair-matching-engine/config"
	"github.com/PxPatel/pair-matching-engine/internal/api/handlers"
	"github.com/PxPatel/pair-matching-engine/internal/api/routes"
	"github.com/PxPatel/pair-matching-engine/internal/logger"
	"github.com/PxPatel/pair-matching-engine/internal/matching"
	"github.com/PxPatel/pair-matching-engine/internal/storage"
	"github.com/PxPatel/pair-matching-engine/internal/storage/memory"
	"github.com/PxPatel/pair-matching-engine/internal/storage/postgres"
	"github.com/PxPatel/pair-matching-engine/internal/storage/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with config
	logLevel, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logger.SetMinLevel(logLevel)
	defer logger.Sync()

	logger.Info("Starting Pair Matching Engine API Server", map[string]interface{}{
		"version": handlers.Version,
	})

	// Build fill sinks and the engine
	engine := matching.NewEngineWithStore(buildFillStore(cfg))
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("Failed to close engine", map[string]interface{}{
				"error": err,
			})
		}
	}()

	for _, pair := range cfg.Engine.Markets {
		if err := engine.AddNewMarket(pair); err != nil {
			logger.Error("Failed to open market", map[string]interface{}{
				"market": pair.String(),
				"error":  err,
			})
			os.Exit(1)
		}
	}

	engineHolder := handlers.NewEngineHolder(engine, handlers.Limits{
		DefaultFillLimit: cfg.API.DefaultFillLimit,
		MaxFillLimit:     cfg.API.MaxFillLimit,
		DefaultDepth:     cfg.API.DefaultOrderBookDepth,
		MaxDepth:         cfg.API.MaxOrderBookDepth,
	})

	// Setup routes with middleware
	handler := routes.SetupRoutes(engineHolder, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":    cfg.Server.Port,
			"address": fmt.Sprintf("http://localhost:%s", cfg.Server.Port),
			"markets": len(cfg.Engine.Markets),
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", map[string]interface{}{
				"error": err,
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err,
		})
		return
	}

	logger.Info("Server exited successfully")
}

// buildFillStore layers the configured fill sinks: memory first so reads are
// served locally, then Redis, then PostgreSQL. Returns nil when none is enabled.
func buildFillStore(cfg *config.Config) storage.FillStore {
	var stores []storage.FillStore

	// L1: In-memory (fastest) - if enabled
	if cfg.Memory.Enabled {
		stores = append(stores, memory.NewFillStore(cfg.Memory.MaxFills))
		logger.Info("In-memory fill store enabled", map[string]interface{}{
			"max_fills": cfg.Memory.MaxFills,
		})
	}

	// L2: Redis - if enabled
	if cfg.Redis.Enabled {
		redisStore, err := redis.NewFillStore(redis.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TLSEnabled:   cfg.Redis.TLSEnabled,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			MaxFills:     cfg.Redis.MaxFills,
		})
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without it", map[string]interface{}{
				"error": err,
			})
		} else {
			logger.Info("Redis fill store connected", map[string]interface{}{
				"host": cfg.Redis.Host,
				"port": cfg.Redis.Port,
			})
			stores = append(stores, redisStore)
		}
	}

	// L3: PostgreSQL - if enabled
	if cfg.Database.Enabled {
		pgStore, err := postgres.NewFillStore(postgres.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Warn("Failed to connect to PostgreSQL, continuing without it", map[string]interface{}{
				"error": err,
			})
		} else {
			logger.Info("PostgreSQL fill store connected", map[string]interface{}{
				"host":     cfg.Database.Host,
				"database": cfg.Database.Name,
			})
			stores = append(stores, pgStore)
		}
	}

	logger.Info("Fill stores initialized", map[string]interface{}{
		"layers": len(stores),
	})

	switch len(stores) {
	case 0:
		return nil
	case 1:
		return stores[0]
	default:
		return storage.NewCompositeFillStore(stores...)
	}
}

package main

import (
	"context"   // context package is needed for Redis operations
	"errors"    // Server shutdown errors
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"paywin/internal/api"                 // Custom package for API handlers
	"paywin/internal/auth"                // Session tokens
	"paywin/internal/cache"               // Read model cache
	"paywin/internal/config"              // Custom package for configuration
	"paywin/internal/db"                  // Database connection and migrations
	"paywin/internal/game"                // Game engine RNG
	"paywin/internal/metrics"             // Prometheus collectors
	"paywin/internal/middleware"          // Custom package for middleware
	"paywin/internal/payment"             // Payment provider client
	"paywin/internal/repository"          // Storage interfaces
	"paywin/internal/repository/memstore" // In-memory store
	"paywin/internal/service"             // Use cases
	"paywin/internal/storage"             // Avatar uploads
	"paywin/internal/worker"              // Background jobs

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Runtime collectors
	"github.com/redis/go-redis/v9"                              // Redis client
	"github.com/sirupsen/logrus"                                // Logrus for structured logging
)

const tokenTTL = 72 * time.Hour // Session lifetime

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode) // Set Mode to Release if in production
	}

	store, err := openStore(cfg)
	if err != nil {
		logrus.Fatalf("failed to open store: %v", err)
	}
	rc, err := openCache(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	var uploader storage.Uploader // Nil disables avatar uploads
	if cfg.S3Endpoint != "" {
		s3, err := storage.NewS3(context.Background(), storage.Options{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			CDNBaseURL: cfg.CDNBaseURL,
		})
		if err != nil {
			logrus.Fatalf("failed to configure object storage: %v", err)
		}
		uploader = s3
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("paywin", reg)

	settings := service.SettingsFromConfig(cfg)
	tokens := auth.NewTokens(cfg.JWTSecret, tokenTTL)
	games := service.NewGameService(store, rc, m, game.DefaultRNG, settings)
	payments := service.NewPaymentService(store, rc, payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey), settings)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPlays, cfg.RateLimitWindow)

	r := api.NewRouter(api.Deps{
		Store:       store,
		Tokens:      tokens,
		Games:       games,
		Wallet:      service.NewWalletService(store, rc, tokens, uploader, settings),
		Withdrawals: service.NewWithdrawalService(store, rc, settings),
		Payments:    payments,
		Feed:        service.NewFeedService(store),
		Admin:       service.NewAdminService(store, rc),
		Limiter:     limiter,
		Metrics:     m,
		Gatherer:    reg,
	})
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	jobs, err := worker.New(worker.Config{
		Rounds:     games,
		Payments:   payments,
		Limiter:    limiter,
		RoundTTL:   cfg.MineRoundTTL,
		PaymentTTL: cfg.PaymentTTL,
		Interval:   time.Minute,
		Metrics:    m,
	})
	if err != nil {
		logrus.Fatalf("failed to create scheduler: %v", err)
	}
	jobs.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
	if err := jobs.Shutdown(); err != nil {
		logrus.WithError(err).Error("Scheduler shutdown failed")
	}
}

// openStore connects the configured database, or an in-memory store for local runs
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DBDriver == "memory" {
		logrus.Warn("Using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}
	return repository.NewGormStore(gdb), nil
}

// openCache connects Redis when configured; caching is skipped otherwise
func openCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set, read caching disabled")
		return cache.Noop{}, nil
	}
	// Setup Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return cache.NewRedis(rdb), nil
}

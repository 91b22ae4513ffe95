package main

import (
	"context"
	"errors"
	"fmt"
	"ms-verify/internal/config"
	"ms-verify/internal/contest"
	"ms-verify/internal/kafka"
	"ms-verify/internal/logger"
	"ms-verify/internal/ownership"
	"ms-verify/internal/ratelimit"
	"ms-verify/internal/verify"
	"ms-verify/internal/verify/verify_api"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func connectRedis(ctx context.Context, addr string, logger *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})

	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		logger.Info("REDIS", fmt.Sprintf("Attempting to connect to Redis at %s (attempt %d/%d)", addr, i+1, maxRetries))
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s", addr))
			return client
		}
		logger.Error("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	// the limiter fails open, so a missing Redis degrades rather than stops the service
	logger.Warn("REDIS", fmt.Sprintf("Redis unreachable after %d attempts, rate limiting will fail open: %v", maxRetries, err))
	return client
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("CONFIG: .env file not found, using environment variables")
	}

	cfg := config.Load()

	logger := logger.NewLogger(cfg.Log.Dir)
	defer logger.Close()

	logger.Info("APP", "Starting Verify Service initialization")

	ctx := context.Background()

	client := &http.Client{
		Timeout: cfg.Ownership.Timeout,
	}

	lookup, err := ownership.New(ctx, cfg, client)
	if err != nil {
		logger.Fatal("CONFIG", fmt.Sprintf("Failed to build ownership lookup: %v", err))
	}
	logger.Info("OWNERSHIP", fmt.Sprintf("Using %s ownership backend", ownership.Describe(lookup)))

	if cfg.Chain.ContractAddress() == "" {
		logger.Warn("CONFIG", fmt.Sprintf("No boxes contract configured for chain %d, verification requests will fail", cfg.Chain.ChainID))
	} else {
		logger.Info("CONFIG", fmt.Sprintf("Boxes contract %s on chain %d, contests %v",
			cfg.Chain.ContractAddress(), cfg.Chain.ChainID, contest.Ints(contest.Active)))
	}

	verifyService := verify.NewService(lookup, cfg.Chain, logger)
	verifyService.Timeout = cfg.Ownership.Timeout

	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Kafka.Brokers))
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.Verifications}, logger); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Verifications, logger)
		defer producer.Close()
		verifyService.Events = producer
		logger.Info("KAFKA", "Verification events enabled")
	}

	handler := verify_api.NewHandler(verifyService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", verify_api.Health)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.PerMinute > 0 {
		redisClient := connectRedis(ctx, cfg.Redis.Addr, logger)
		defer redisClient.Close()
		limiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.PerMinute, cfg.RateLimit.Window, logger)
		proxies, err := ratelimit.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
		if err != nil {
			logger.Fatal("CONFIG", fmt.Sprintf("Invalid TRUSTED_PROXIES: %v", err))
		}
		limiter.TrustedProxies = proxies
		logger.Info("RATELIMIT", fmt.Sprintf("Limiting clients to %d requests per %s", cfg.RateLimit.PerMinute, cfg.RateLimit.Window))
	}

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		handler.RegisterRoutes(r)
	})
	logger.Info("ROUTER", "Verify routes registered under /api/verify")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Verify Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Verify Service shutdown complete")
	}
}

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/finview/finview/internal/api"
	"github.com/finview/finview/internal/cache"
	"github.com/finview/finview/internal/fundamentals"
	"github.com/finview/finview/internal/market"
	"github.com/finview/finview/internal/ratelimit"
	"github.com/finview/finview/internal/risk"
	"github.com/finview/finview/internal/user"
	"github.com/finview/finview/pkg/logger"
)

func main() {
	// Load .env if present (ignored in production deployments)
	_ = godotenv.Load()

	logger.Init(os.Getenv("LOG_LEVEL"))

	// 1. Configuration
	port := getenv("PORT", "8080")
	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	databaseURL := getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=finview port=5432 sslmode=disable")
	fmpAPIKey := os.Getenv("FMP_API_KEY")

	// 2. Connect to Redis (cache + rate-limit counters)
	slog.Info("Connecting to Redis...")
	store, err := cache.NewRedisStore(redisAddr)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Connected to Redis")

	counterClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer counterClient.Close()

	// 3. Connect to Postgres (user profiles + watch lists)
	slog.Info("Connecting to Postgres...")
	users, err := user.NewStore(databaseURL)
	if err != nil {
		slog.Error("Failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer users.Close()
	if err := users.AutoMigrate(); err != nil {
		slog.Error("Failed to migrate schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to Postgres")

	// 4. Build the core components
	gateway := market.NewGateway(store, market.NewYahooProvider(os.Getenv("MARKET_BASE_URL")))
	aggregator := fundamentals.NewAggregator(store, fundamentals.NewFMPClient(os.Getenv("FMP_BASE_URL"), fmpAPIKey))
	engine := risk.NewEngine(store, gateway)
	limiter := ratelimit.NewLimiter(counterClient)

	handler := api.NewHandler(gateway, aggregator, engine, users)
	router := api.NewRouter(handler, users, limiter)

	// 5. Start server in goroutine
	go func() {
		slog.Info("API server listening", "port", port)
		if err := router.Run(":" + port); err != nil {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// 6. Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	sig := <-stop
	slog.Info("Shutdown signal received", "signal", sig)
	slog.Info("Shutting down...")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

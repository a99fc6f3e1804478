package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ms-pricing/internal/clock"
	"ms-pricing/internal/config"
	"ms-pricing/internal/database/migrations"
	"ms-pricing/internal/kafka"
	"ms-pricing/internal/logger"
	"ms-pricing/internal/models"
	"ms-pricing/internal/passes"
	"ms-pricing/internal/quote"
	quote_db "ms-pricing/internal/quote/db"
	"ms-pricing/internal/quote/quote_api"
	quote_redis "ms-pricing/internal/quote/redis"
	"ms-pricing/internal/sse"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Pricing Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		logger.Warn("DATABASE", fmt.Sprintf("Schema migration failed: %v", err))
	} else {
		logger.Info("DATABASE", "Schema migrations applied")
	}
	runner.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, kafka.Topics{
			PricingConfirmed: cfg.Kafka.Topics.PricingConfirmed,
			FlashSaleExpired: cfg.Kafka.Topics.FlashSaleExpired,
		})
		defer producer.Close()
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.PricingConfirmed,
			cfg.Kafka.Topics.FlashSaleExpired,
			cfg.Kafka.Topics.InventoryUpdated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, pricing events will not be published")
	}

	snapshot := quote_redis.NewSnapshot(redisClient, cfg.Redis.SnapshotTTL)
	passGenerator := passes.NewGenerator(cfg.Pricing.PassSecret)

	var events quote.EventPublisher
	if producer != nil {
		events = producer
	}
	service := quote.NewQuoteService(&quote_db.DB{Bun: bunDB}, snapshot, events, passGenerator, logger)

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.InventoryUpdated, cfg.Kafka.GroupID)
		defer consumer.Close()
		go consumer.StartInventoryUpdates(ctx, func(update models.InventoryUpdate) {
			if err := service.ApplyInventoryUpdate(ctx, update); err != nil {
				logger.Error("KAFKA", fmt.Sprintf("Failed to apply inventory update for ticket %s: %v", update.TicketID, err))
			}
		})
		logger.Info("KAFKA", fmt.Sprintf("Consuming inventory updates from %s", cfg.Kafka.Topics.InventoryUpdated))
	}

	emitter := sse.NewQuoteEventEmitter()

	// The shared clock drives both the expiry watcher and the live requoter.
	ticker := clock.NewTicker(cfg.Pricing.ClockInterval)
	ticker.Start()
	defer ticker.Stop()

	watcher := quote.NewExpiryWatcher(&quote_db.DB{Bun: bunDB}, events, logger)
	if events != nil {
		go watcher.Run(ctx, ticker.Subscribe(ctx))
		logger.Info("APP", "Flash sale expiry watcher started")
	}

	requoter := quote.NewRequoter(service, emitter, logger)
	go requoter.Run(ctx, ticker.Subscribe(ctx))
	logger.Info("APP", fmt.Sprintf("Live requoter started (interval %s)", cfg.Pricing.ClockInterval))

	handler := quote_api.NewHandler(service, logger)

	logger.Info("HTTP", "Setting up router")
	r := chi.NewRouter()
	r.Route("/api/pricing", func(r chi.Router) {
		r.Get("/ticket/{ticketID}/quote", handler.GetTicketQuote)
		r.Get("/ticket/{ticketID}/stream", handler.StreamTicketQuotes(emitter))
		r.Post("/cart/quote", handler.QuoteCart)
		r.Post("/checkout/confirm", handler.ConfirmCheckout)
	})
	logger.Info("ROUTER", "Pricing routes registered under /api/pricing")

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Pricing Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Pricing Service shutdown complete")
	}
}

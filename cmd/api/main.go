// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/config"
	"github.com/your-org/marketflow-backend/internal/domain/cart"
	"github.com/your-org/marketflow-backend/internal/domain/catalog"
	"github.com/your-org/marketflow-backend/internal/domain/checkout"
	"github.com/your-org/marketflow-backend/internal/domain/order"
	"github.com/your-org/marketflow-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/marketflow-backend/internal/infrastructure/database/redis"
	"github.com/your-org/marketflow-backend/internal/interfaces/http"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/handlers"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/routes"
	"github.com/your-org/marketflow-backend/internal/pkg/email"
	"github.com/your-org/marketflow-backend/internal/pkg/logger"
	"github.com/your-org/marketflow-backend/internal/pkg/metrics"
	"github.com/your-org/marketflow-backend/internal/pkg/notify"
	"github.com/your-org/marketflow-backend/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"cart_store":  cfg.Cart.Storage,
		"order_store": cfg.Orders.Store,
		"email":       cfg.Email.Provider,
	}).Info("starting")

	checks := make(map[string]http.HealthChecker)

	// Catalog
	seed, err := catalog.LoadSeed(cfg.Catalog.SeedPath)
	if err != nil {
		log.Fatalf("Failed to load product catalog: %v", err)
	}
	catalogService := catalog.NewService(catalog.NewMemoryRepository(seed), log)
	log.WithField("products", len(seed)).Info("catalog loaded")

	// Cart storage
	var (
		cartStorage cart.Storage
		redisClient *redis.Client
	)
	if cfg.UsesRedis() {
		redisClient, err = redis.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		cartStorage = cart.NewRedisStorage(redisClient.GetClient(), cfg.Cart.TTL)
		checks["redis"] = redisClient
	} else {
		cartStorage = cart.NewMemoryStorage()
	}

	// Order repository
	var orderRepo order.Repository
	if cfg.UsesPostgres() {
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Run database migrations
		migration := postgres.NewMigration(db.DB, log)
		if err := migration.Run(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		if cfg.IsDevelopment() {
			if _, err := migration.GetTableInfo(); err != nil {
				log.WithError(err).Warn("failed to read table info")
			}
		}

		orderRepo = order.NewGormRepository(db.DB)
		checks["database"] = db
	} else {
		orderRepo = order.NewMemoryRepository()
	}

	// Domain services
	hub := notify.NewHub()
	cartStore := cart.NewStore(cartStorage, hub, cfg.Cart.KeyPrefix, log)
	enricher := cart.NewEnricher(catalogService, cfg.Cart.EnrichWorkers, log)
	cartService := cart.NewService(cartStore, enricher, catalogService, cart.RatesFromConfig(cfg.Pricing), log)

	invoiceService := pdf.NewService(cfg.Invoice)
	mailer := email.NewService(cfg.Email, invoiceService, log)

	orderService := order.NewService(orderRepo, log)
	builder := order.NewBuilder(orderService, cfg.Orders.DefaultPaymentMethod)
	checkoutService := checkout.NewService(cartService, builder, mailer, log)

	var recorder handlers.OrderRecorder
	var registry *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry = metrics.New()
		recorder = registry
	}

	deps := http.Dependencies{
		Handlers: &routes.Handlers{
			Product:  handlers.NewProductHandler(catalogService),
			Cart:     handlers.NewCartHandler(cartService, hub, log),
			Checkout: handlers.NewCheckoutHandler(checkoutService, recorder),
			Order:    handlers.NewOrderHandler(orderService, mailer, log),
			Invoice:  handlers.NewInvoiceHandler(orderService, invoiceService),
		},
		Checks:  checks,
		Metrics: registry,
	}
	if redisClient != nil {
		deps.Redis = redisClient.GetClient()
	}

	server, err := http.NewServer(cfg, deps, log)
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}

	log.Info("server shutdown completed")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/olafkfreund/tshop-sub002/internal/application/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/cache"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/config"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/logger"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/persistence"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/providers"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/scheduler"
	"github.com/olafkfreund/tshop-sub002/internal/interfaces/http/handler"
	"github.com/olafkfreund/tshop-sub002/internal/interfaces/http/middleware"
	"github.com/olafkfreund/tshop-sub002/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting TShop Fulfillment Service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Webhook event dedupe store backed by redis
	deduper, err := cache.NewRedisWebhookDeduper(&cfg.Redis, cfg.Fulfillment.DedupeTTL)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := deduper.Close(); err != nil {
			log.Error("Error closing redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	recordRepo := persistence.NewGormFulfillmentRecordRepository(db.DB)

	// Build provider adapters from config. Registration order is selection
	// tie-break order.
	adapters := make([]fulfillment.Provider, 0, 2)
	webhookSecrets := make(map[fulfillment.ProviderCode]string)

	if cfg.Printful.Enabled {
		printful, err := providers.NewPrintfulAdapter(&providers.PrintfulConfig{
			APIKey:         cfg.Printful.APIKey,
			APIBaseURL:     cfg.Printful.BaseURL,
			TimeoutSeconds: int(cfg.Printful.Timeout.Seconds()),
		}, nil)
		if err != nil {
			log.Fatal("Failed to configure Printful adapter", zap.Error(err))
		}
		adapters = append(adapters, printful)
		webhookSecrets[fulfillment.ProviderCodePrintful] = cfg.Printful.WebhookSecret
		log.Info("Printful provider enabled")
	}

	if cfg.Printify.Enabled {
		printify, err := providers.NewPrintifyAdapter(&providers.PrintifyConfig{
			APIToken:       cfg.Printify.APIToken,
			ShopID:         cfg.Printify.ShopID,
			APIBaseURL:     cfg.Printify.BaseURL,
			TimeoutSeconds: int(cfg.Printify.Timeout.Seconds()),
		}, nil)
		if err != nil {
			log.Fatal("Failed to configure Printify adapter", zap.Error(err))
		}
		adapters = append(adapters, printify)
		webhookSecrets[fulfillment.ProviderCodePrintify] = cfg.Printify.WebhookSecret
		log.Info("Printify provider enabled")
	}

	registry := providers.NewProviderRegistry(adapters...)

	// Quality ranking for the quality strategy, best first
	qualityRank := make([]fulfillment.ProviderCode, 0, len(cfg.Fulfillment.QualityPriority))
	for _, code := range cfg.Fulfillment.QualityPriority {
		qualityRank = append(qualityRank, fulfillment.ProviderCode(code))
	}

	// Initialize application services
	quoteService := fulfillmentapp.NewQuoteService(registry, orderRepo, cfg.Fulfillment.QuoteTimeout, log)
	recordService := fulfillmentapp.NewRecordService(recordRepo, orderRepo, log)
	submissionService := fulfillmentapp.NewSubmissionService(
		quoteService,
		recordService,
		registry,
		orderRepo,
		&fulfillmentapp.Selector{QualityRank: qualityRank},
		log,
	)
	syncService := fulfillmentapp.NewSyncService(recordRepo, recordService, registry, cfg.Fulfillment.SyncConcurrency, log)
	webhookService := fulfillmentapp.NewWebhookService(recordService, deduper, webhookSecrets, log)

	// Start the periodic status sync runner
	syncRunner, err := scheduler.NewSyncRunner(syncService, log, scheduler.SyncRunnerConfig{
		Enabled:      cfg.Fulfillment.SyncEnabled,
		Interval:     cfg.Fulfillment.SyncInterval,
		SweepTimeout: 2 * time.Minute,
	})
	if err != nil {
		log.Fatal("Invalid sync runner configuration", zap.Error(err))
	}
	if err := syncRunner.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync runner", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := syncRunner.Stop(stopCtx); err != nil {
			log.Error("Error stopping sync runner", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	fulfillmentHandler := handler.NewFulfillmentHandler(
		quoteService,
		submissionService,
		recordService,
		syncService,
		fulfillmentapp.Strategy(cfg.Fulfillment.DefaultStrategy),
	)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(fulfillmentHandler)
	r.Register(webhookHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

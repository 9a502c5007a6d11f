package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/villahub/backend/internal/application/billing"
	communityapp "github.com/villahub/backend/internal/application/community"
	"github.com/villahub/backend/internal/infrastructure/auth"
	"github.com/villahub/backend/internal/infrastructure/cache"
	"github.com/villahub/backend/internal/infrastructure/config"
	"github.com/villahub/backend/internal/infrastructure/event"
	"github.com/villahub/backend/internal/infrastructure/logger"
	"github.com/villahub/backend/internal/infrastructure/persistence"
	"github.com/villahub/backend/internal/infrastructure/scheduler"
	"github.com/villahub/backend/internal/interfaces/http/handler"
	"github.com/villahub/backend/internal/interfaces/http/middleware"
	"github.com/villahub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	log.Info("Starting VillaHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	residentRepo := persistence.NewGormResidentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	externalBillRepo := persistence.NewGormExternalBillRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types.
	// The versioned serializer upgrades stale outbox payloads on read.
	eventSerializer := event.NewVersionedEventSerializer(log)
	if err := event.RegisterAllEvents(eventSerializer); err != nil {
		log.Fatal("Failed to register domain events", zap.Error(err))
	}

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that need transactional event publishing
	invoiceRepo.SetOutboxEventSaver(outboxPublisher)

	// Redis backs the unpaid-total cache and the JWT token blacklist.
	// Both degrade to in-process implementations when Redis is unreachable.
	var unpaidCache billingapp.UnpaidTotalCache
	var blacklist auth.TokenBlacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	redisErr := redisClient.Ping(pingCtx).Err()
	pingCancel()
	if redisErr != nil {
		log.Warn("Redis unavailable, using in-memory cache and token blacklist",
			zap.Error(redisErr))
		_ = redisClient.Close()
		unpaidCache = cache.NewInMemoryUnpaidTotalCache(cfg.Cache.UnpaidTotalTTL)
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		unpaidCache = cache.NewRedisUnpaidTotalCache(redisClient, cfg.Cache.UnpaidTotalTTL)
		blacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}

	// Idempotency store for payment gateway callback deduplication
	dedupStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := dedupStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	tenantService := communityapp.NewTenantService(tenantRepo, eventBus, log)
	residentService := communityapp.NewResidentService(residentRepo, unitRepo, tenantRepo, eventBus, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, tenantRepo, residentRepo, eventBus, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, dedupStore, unpaidCache, eventBus, log)
	paymentService.SetCallbackDedupTTL(cfg.Cache.CallbackTTL)
	externalBillService := billingapp.NewExternalBillService(externalBillRepo, eventBus, log)

	// JWT service for token issuing and validation
	jwtService := auth.NewJWTService(cfg.JWT)

	// Register event handlers. The notification handler is wrapped so
	// events redelivered by the outbox processor are handled once.
	notificationHandler := billingapp.NewNotificationHandler(log)
	idempotentNotifications := event.NewIdempotentHandler(
		notificationHandler,
		cache.NewInMemoryIdempotencyStore(),
		log,
	)
	eventBus.Subscribe(idempotentNotifications)

	log.Info("Event handlers registered",
		zap.Strings("notification_events", notificationHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	// The outbox processor reads events from the outbox_entries table and publishes them to the event bus
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", outboxProcessorConfig.BatchSize),
		zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
	)

	// Auto-billing scheduler. Constructed unconditionally so the manual
	// trigger endpoint works even when the daily loop is disabled.
	autoBilling := scheduler.NewAutoBillingScheduler(scheduler.AutoBillingSchedulerConfig{
		Enabled:   cfg.Scheduler.Enabled,
		RunHour:   cfg.Scheduler.RunHour,
		RunMinute: cfg.Scheduler.RunMinute,
	}, tenantRepo, invoiceService, log)
	if cfg.Scheduler.Enabled {
		if err := autoBilling.Start(context.Background()); err != nil {
			log.Fatal("Failed to start auto-billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := autoBilling.Stop(context.Background()); err != nil {
				log.Error("Error stopping auto-billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Auto-billing scheduler started",
			zap.Int("run_hour", cfg.Scheduler.RunHour),
			zap.Int("run_minute", cfg.Scheduler.RunMinute),
		)
	}

	// Initialize HTTP handlers
	tenantHandler := handler.NewTenantHandler(tenantService)
	residentHandler := handler.NewResidentHandler(residentService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	paymentCallbackHandler := handler.NewPaymentCallbackHandler(paymentService)
	externalBillHandler := handler.NewExternalBillHandler(externalBillService)
	authHandler := handler.NewAuthHandler(jwtService, blacklist)
	schedulerHandler := handler.NewSchedulerHandler(autoBilling)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Public endpoints for external callers. The payment gateway posts
	// completion callbacks here, and residents open bill links from
	// notification messages without logging in.
	publicGroup := engine.Group("/api/v1/public")
	publicGroup.POST("/payments/gateway-callback", paymentCallbackHandler.HandleGatewayCallback)
	publicGroup.GET("/external-bills/:id", externalBillHandler.GetPublic)
	publicGroup.POST("/external-bills/:id/report-paid", externalBillHandler.ReportPaid)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/public",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant domain (buildings, residents, units, and their billing)
	tenantRoutes := router.NewDomainGroup("tenants", "/tenants")
	tenantRoutes.POST("", tenantHandler.Create)
	tenantRoutes.GET("", tenantHandler.List)
	tenantRoutes.GET("/:id", tenantHandler.GetByID)
	tenantRoutes.PUT("/:id", tenantHandler.Update)
	tenantRoutes.PUT("/:id/auto-billing", tenantHandler.ConfigureAutoBilling)
	tenantRoutes.DELETE("/:id/auto-billing", tenantHandler.DisableAutoBilling)

	// Resident and unit routes scoped to a tenant
	tenantRoutes.POST("/:id/residents", residentHandler.Register)
	tenantRoutes.GET("/:id/residents", residentHandler.List)
	tenantRoutes.GET("/:id/residents/:residentId", residentHandler.GetByID)
	tenantRoutes.PUT("/:id/residents/:residentId", residentHandler.Update)
	tenantRoutes.DELETE("/:id/residents/:residentId", residentHandler.MoveOut)
	tenantRoutes.GET("/:id/units", residentHandler.ListUnits)

	// Invoice routes scoped to a tenant
	tenantRoutes.POST("/:id/invoices", invoiceHandler.Create)
	tenantRoutes.GET("/:id/invoices", invoiceHandler.List)
	tenantRoutes.GET("/:id/invoices/:invoiceId", invoiceHandler.GetByID)
	tenantRoutes.PUT("/:id/invoices/:invoiceId", invoiceHandler.Update)
	tenantRoutes.GET("/:id/invoices/:invoiceId/payments", paymentHandler.ListForInvoice)

	// External bill routes scoped to a tenant
	tenantRoutes.POST("/:id/external-bills", externalBillHandler.Create)
	tenantRoutes.GET("/:id/external-bills", externalBillHandler.List)
	tenantRoutes.GET("/:id/external-bills/:billId", externalBillHandler.GetByID)
	tenantRoutes.POST("/:id/external-bills/:billId/confirm", externalBillHandler.Confirm)

	// Payment ledger routes
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.PUT("/:id/status", paymentHandler.UpdateStatus)

	// Resident-centric read views
	residentRoutes := router.NewDomainGroup("residents", "/residents")
	residentRoutes.GET("/:id/payments", paymentHandler.ListForResident)
	residentRoutes.GET("/:id/unpaid-total", paymentHandler.UnpaidTotal)

	// Auth routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/scheduler/status", schedulerHandler.GetStatus)
	systemRoutes.POST("/scheduler/run", schedulerHandler.TriggerRun)

	// Register all domain groups
	r.Register(tenantRoutes).
		Register(paymentRoutes).
		Register(residentRoutes).
		Register(authRoutes).
		Register(systemRoutes)

	// Setup routes
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

	// Start server in goroutine
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
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	catalogapp "github.com/ledgerly/backend/internal/application/catalog"
	financeapp "github.com/ledgerly/backend/internal/application/finance"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
	invoicingapp "github.com/ledgerly/backend/internal/application/invoicing"
	messagingapp "github.com/ledgerly/backend/internal/application/messaging"
	partnerapp "github.com/ledgerly/backend/internal/application/partner"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/ledgerly/backend/internal/infrastructure/event"
	"github.com/ledgerly/backend/internal/infrastructure/logger"
	"github.com/ledgerly/backend/internal/infrastructure/migration"
	"github.com/ledgerly/backend/internal/infrastructure/persistence"
	"github.com/ledgerly/backend/internal/infrastructure/telemetry"
	"github.com/ledgerly/backend/internal/interfaces/http/handler"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
	"github.com/ledgerly/backend/internal/interfaces/http/router"
	"github.com/ledgerly/backend/migrations"
	"go.uber.org/zap"

	_ "github.com/ledgerly/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Ledgerly API
//	@version		1.0
//	@description	Multi-tenant invoicing and bookkeeping backend for small businesses
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.email	support@ledgerly.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = tel.Logs.Bridge(log)
	meter := tel.Meter.Meter()

	log.Info("Starting ledgerly",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	if _, err := telemetry.RegisterDBMetrics(db.DB, meter, log); err != nil {
		log.Warn("Database metrics disabled", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			return err
		}
	}

	// Optional infrastructure
	redisClient, blacklist, err := newTokenBlacklist(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	objects, memObjects, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	printer, closePrinter, err := newInvoicePrinter(cfg.Printing, log)
	if err != nil {
		return err
	}
	defer closePrinter()

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)
	tx := persistence.NewGormTransactor(db.DB)

	recorder := activityapp.NewRecorder(activityRepo, log)

	// Event bus with its in-process subscribers
	eventBus := event.NewInMemoryEventBus(log)
	notificationService := messagingapp.NewNotificationService(notificationRepo, log)
	eventBus.Subscribe(messagingapp.NewNotificationHandler(notificationService, log))
	if metrics, err := telemetry.NewBusinessMetrics(meter); err != nil {
		log.Warn("Business metrics disabled", zap.Error(err))
	} else {
		eventBus.Subscribe(metrics)
	}
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	accountConfig := identityapp.DefaultAccountServiceConfig()
	if cfg.Storage.MaxLogoSize > 0 {
		accountConfig.MaxLogoSize = cfg.Storage.MaxLogoSize
	}
	if cfg.Storage.PresignExpiry > 0 {
		accountConfig.LogoURLExpiry = cfg.Storage.PresignExpiry
	}
	accountService := identityapp.NewAccountService(accountRepo, roleRepo, userRepo, tx, objects, eventBus, recorder, accountConfig, log)
	authService := identityapp.NewAuthService(accountRepo, userRepo, roleRepo, jwtService, blacklist, recorder, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, roleRepo, blacklist, jwtService, eventBus, recorder, log)
	roleService := identityapp.NewRoleService(roleRepo, eventBus, recorder, log)
	productService := catalogapp.NewProductService(productRepo, invoiceRepo, tx, eventBus, recorder, log)
	customerService := partnerapp.NewCustomerService(customerRepo, invoiceRepo, paymentRepo, eventBus, recorder, log)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, customerRepo, productRepo, accountRepo, sequences, tx, eventBus, recorder, log)
	paymentService := invoicingapp.NewPaymentService(invoiceRepo, paymentRepo, customerRepo, tx, eventBus, recorder, log)
	printService := invoicingapp.NewPrintService(invoiceRepo, accountRepo, accountService, printer, log)
	expenseService := financeapp.NewExpenseService(expenseRepo, accountRepo, sequences, tx, eventBus, recorder, log)
	revenueService := financeapp.NewRevenueService(revenueRepo, customerRepo, accountRepo, sequences, tx, eventBus, recorder, log)
	messageService := messagingapp.NewMessageService(messageRepo, userRepo, eventBus, log)
	activityService := activityapp.NewService(activityRepo)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, accountService),
		Account:      handler.NewAccountHandler(accountService),
		Role:         handler.NewRoleHandler(roleService),
		User:         handler.NewUserHandler(userService),
		Product:      handler.NewProductHandler(productService),
		Customer:     handler.NewCustomerHandler(customerService),
		Invoice:      handler.NewInvoiceHandler(invoiceService, paymentService, printService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Expense:      handler.NewExpenseHandler(expenseService),
		Revenue:      handler.NewRevenueHandler(revenueService),
		Message:      handler.NewMessageHandler(messageService),
		Notification: handler.NewNotificationHandler(notificationService),
		Activity:     handler.NewActivityHandler(activityService),
		System:       handler.NewSystemHandler(version, checks),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Engine-wide: request ID first so the recovery and access logs carry it
	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = cfg.Telemetry.Enabled
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(tracingConfig),
		middleware.HTTPMetrics(meter, log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", handlers.System.Health)
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if memObjects != nil {
		engine.GET("/files/*key", handler.NewFileHandler(memObjects).Serve)
	}

	// API-wide: authentication, account status and limits
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	apiMiddleware := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.ActiveTenant(middleware.DefaultTenantConfig(accountService)),
		middleware.TraceAttributes(),
		middleware.Profiling(tel.Profiler.Enabled()),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		apiMiddleware = append(apiMiddleware, authRateLimit(limiter))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...))
	router.RegisterAPI(r, handlers)
	r.Setup()
	log.Info("Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}

func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// closing the migrator would close sqlDB as well
	return m.Up()
}

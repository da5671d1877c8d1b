package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogueapp "github.com/fabmate/backend/internal/application/catalogue"
	eventapp "github.com/fabmate/backend/internal/application/event"
	identityapp "github.com/fabmate/backend/internal/application/identity"
	orderingapp "github.com/fabmate/backend/internal/application/ordering"
	productionapp "github.com/fabmate/backend/internal/application/production"
	takeoffapp "github.com/fabmate/backend/internal/application/takeoff"
	traceapp "github.com/fabmate/backend/internal/application/trace"
	"github.com/fabmate/backend/internal/infrastructure/auth"
	"github.com/fabmate/backend/internal/infrastructure/cache"
	"github.com/fabmate/backend/internal/infrastructure/config"
	"github.com/fabmate/backend/internal/infrastructure/event"
	"github.com/fabmate/backend/internal/infrastructure/logger"
	"github.com/fabmate/backend/internal/infrastructure/mail"
	"github.com/fabmate/backend/internal/infrastructure/persistence"
	"github.com/fabmate/backend/internal/infrastructure/persistence/companyscope"
	"github.com/fabmate/backend/internal/infrastructure/printing"
	"github.com/fabmate/backend/internal/infrastructure/storage"
	"github.com/fabmate/backend/internal/infrastructure/telemetry"
	"github.com/fabmate/backend/internal/interfaces/http/handler"
	"github.com/fabmate/backend/internal/interfaces/http/middleware"
	"github.com/fabmate/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/fabmate/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			FabMate API
//	@version		1.0
//	@description	Manufacturing operations backend: orders, work packages, work orders, routing, drawing takeoff and trace genealogy.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/fabmate/backend
//	@contact.email	support@fabmate.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

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

	log.Info("Starting FabMate Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry metrics (no-op provider when disabled)
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

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

	// Register database query tracing (otelgorm) when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Register database metrics (query durations, pool stats) when enabled
	if meterProvider.IsEnabled() {
		dbMetricsConfig := telemetry.DefaultDBMetricsConfig()
		dbMetricsConfig.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
		if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsConfig, log); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
	}

	// Safety net: queries against company-scoped tables pick up the company
	// filter from the request context even if a repository forgets it.
	// Not required, so background workers keep full access.
	companyscope.EnableAutoCompanyFilter(db.DB, false)

	// Business metrics: order intake, work order transitions, drawing save
	// conflicts, plus periodic gauges for open work orders and overdue orders
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:              meterProvider.Meter("fabmate.business"),
			Logger:             log,
			CollectInterval:    cfg.Telemetry.MetricsCollectInterval,
			ProductionProvider: telemetry.NewGormProductionMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			companyProvider := telemetry.NewGormCompanyProvider(db.DB)
			businessMetrics.StartPeriodicCollection(context.Background(), companyProvider, cfg.Telemetry.MetricsCollectInterval)
			defer businessMetrics.Stop()
		}
	}

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	workPackageRepo := persistence.NewGormWorkPackageRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)
	workCenterRepo := persistence.NewGormWorkCenterRepository(db.DB)
	resourceRepo := persistence.NewGormResourceRepository(db.DB)
	routingTemplateRepo := persistence.NewGormRoutingTemplateRepository(db.DB)
	catalogueRepo := persistence.NewGormCatalogueRepository(db.DB)
	catalogueItemRepo := persistence.NewGormCatalogueItemRepository(db.DB)
	surfaceCoatingRepo := persistence.NewGormSurfaceCoatingRepository(db.DB)
	drawingRepo := persistence.NewGormDrawingRepository(db.DB)
	annotationRepo := persistence.NewGormAnnotationRepository(db.DB)
	measurementRepo := persistence.NewGormMeasurementRepository(db.DB)
	traceRecordRepo := persistence.NewGormTraceRecordRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	invitationRepo := persistence.NewGormInvitationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types.
	// The versioned serializer upgrades older payloads read back from the
	// outbox table before they reach the bus, so pending events survive a
	// deploy that changes an event schema.
	eventSerializer := event.NewVersionedSerializer(log)
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that need transactional event publishing
	orderRepo.SetOutboxEventSaver(outboxPublisher)

	// Redis broadcaster for cross-instance drawing change fan-out.
	// The same client backs the JWT token blacklist.
	broadcaster, err := cache.NewRedisDrawingBroadcaster(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithBroadcastLogger(log))
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := broadcaster.Close(); err != nil {
			log.Error("Error closing Redis broadcaster", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Object storage for drawing PDFs
	var objectStorage takeoffapp.ObjectStorageService
	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
	if err != nil {
		log.Warn("Failed to initialize S3 storage, falling back to stub", zap.Error(err))
		objectStorage = storage.NewStubObjectStorage()
	} else {
		bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Storage.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
		objectStorage = s3Storage
	}

	// Initialize application services
	orderService := orderingapp.NewOrderService(orderRepo, workPackageRepo)
	workPackageService := productionapp.NewWorkPackageService(workPackageRepo, workOrderRepo)
	workOrderService := productionapp.NewWorkOrderService(workOrderRepo, workPackageRepo, routingTemplateRepo, resourceRepo, workCenterRepo)
	workCenterService := productionapp.NewWorkCenterService(workCenterRepo)
	resourceService := productionapp.NewResourceService(resourceRepo)
	routingTemplateService := productionapp.NewRoutingTemplateService(routingTemplateRepo)
	catalogueService := catalogueapp.NewCatalogueService(catalogueRepo, catalogueItemRepo)
	surfaceCoatingService := catalogueapp.NewSurfaceCoatingService(surfaceCoatingRepo)
	traceService := traceapp.NewTraceService(traceRecordRepo)

	// Takeoff services
	drawingService := takeoffapp.NewDrawingService(drawingRepo, workPackageRepo, objectStorage)
	drawingService.SetConfig(takeoffapp.DrawingServiceConfig{
		UploadURLExpiry:   cfg.Upload.UploadURLExpiry,
		DownloadURLExpiry: cfg.Upload.DownloadURLExpiry,
	})
	drawingService.SetNotifier(broadcaster)
	measurementService := takeoffapp.NewMeasurementService(drawingRepo, annotationRepo, measurementRepo, catalogueRepo, catalogueItemRepo)
	measurementService.SetNotifier(broadcaster)

	// PDF renderer for BOM export. The exporter degrades to CSV/XLSX-only
	// output when Chrome is unavailable.
	var pdfRenderer printing.PDFRenderer
	chromeRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout:  30 * time.Second,
		Headless:        true,
		DisableGPU:      true,
		NoSandbox:       true,
		Scale:           1.0,
		PrintBackground: true,
		Logger:          log,
	})
	if err != nil {
		log.Warn("Failed to initialize PDF renderer, BOM PDF export disabled", zap.Error(err))
	} else {
		pdfRenderer = chromeRenderer
	}
	bomExporter := takeoffapp.NewBOMExporter(pdfRenderer, log)

	// Identity services (auth, user, company, invitation)
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := auth.NewRedisTokenBlacklistWithClient(broadcaster.GetClient())
	authService := identityapp.NewAuthService(userRepo, companyRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	authService.SetTokenBlacklist(tokenBlacklist)
	userService := identityapp.NewUserService(userRepo, log)
	companyService := identityapp.NewCompanyService(companyRepo)

	var mailer identityapp.Mailer
	if cfg.Mail.Enabled {
		smtpMailer, err := mail.NewSMTPMailer(&cfg.Mail)
		if err != nil {
			log.Warn("Failed to initialize SMTP mailer, invitation emails disabled", zap.Error(err))
			mailer = mail.NewNoopMailer(log)
		} else {
			mailer = smtpMailer
		}
	} else {
		mailer = mail.NewNoopMailer(log)
	}
	invitationService := identityapp.NewInvitationService(invitationRepo, userRepo, companyRepo, mailer, log)

	// Initialize event bus and cross-context event handlers
	eventBus := event.NewInMemoryEventBus(log)

	// The outbox processor retries failed batches, so a handler can see the
	// same event more than once. Cross-context handlers are wrapped for
	// idempotent delivery, deduplicated through Redis.
	idempotencyStore := cache.NewRedisIdempotencyStoreWithClient(broadcaster.GetClient(), "fabmate:event:idempotency:")
	workPackageRollupHandler := orderingapp.NewWorkPackageRollupHandler(orderService, workPackageRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(workPackageRollupHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("work_package_rollup_events", workPackageRollupHandler.EventTypes()),
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
	// The outbox processor reads events from the outbox_events table and publishes them to the event bus
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
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
	}

	// Inject event bus into services that publish events
	orderService.SetEventPublisher(eventBus)
	workPackageService.SetEventPublisher(eventBus)
	workOrderService.SetEventPublisher(eventBus)
	drawingService.SetEventPublisher(eventBus)
	measurementService.SetEventPublisher(eventBus)
	invitationService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	workPackageHandler := handler.NewWorkPackageHandler(workPackageService)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService)
	workCenterHandler := handler.NewWorkCenterHandler(workCenterService)
	resourceHandler := handler.NewResourceHandler(resourceService)
	routingTemplateHandler := handler.NewRoutingTemplateHandler(routingTemplateService)
	catalogueHandler := handler.NewCatalogueHandler(catalogueService)
	surfaceCoatingHandler := handler.NewSurfaceCoatingHandler(surfaceCoatingService)
	drawingHandler := handler.NewDrawingHandler(drawingService)
	measurementHandler := handler.NewMeasurementHandler(measurementService, bomExporter)
	traceRecordHandler := handler.NewTraceRecordHandler(traceService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	companyHandler := handler.NewCompanyHandler(companyService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	systemHandler := handler.NewSystemHandler()
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Measurement hub streams drawing changes to connected clients over SSE
	measurementHubHandler := handler.NewMeasurementHubHandler(broadcaster, handler.WithHubLogger(log))
	if err := measurementHubHandler.Start(); err != nil {
		log.Fatal("Failed to start measurement hub", zap.Error(err))
	}
	defer measurementHubHandler.Stop()

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
	// 4. Tracing - OpenTelemetry spans (if enabled)
	// 5. Metrics - OpenTelemetry HTTP metrics (if enabled)
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
	}
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
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

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/invitations/accept",
			"/api/v1/ping",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Company scope rides on the JWT claims and enriches the request
	// context so repository queries and logs carry the company ID
	companyScopeConfig := middleware.DefaultCompanyScopeConfig()
	companyScopeConfig.HeaderEnabled = false
	companyScopeConfig.SkipPaths = append(companyScopeConfig.SkipPaths, jwtConfig.SkipPaths...)
	companyScopeConfig.Logger = log
	r.Use(middleware.CompanyScopeWithConfig(companyScopeConfig))

	// Ordering domain (orders and roll-ups)
	orderingRoutes := router.NewDomainGroup("ordering", "")
	orderingRoutes.POST("/orders", orderHandler.Create)
	orderingRoutes.GET("/orders", orderHandler.List)
	orderingRoutes.GET("/orders/:id", orderHandler.GetByID)
	orderingRoutes.GET("/orders/number/:number", orderHandler.GetByNumber)
	orderingRoutes.PUT("/orders/:id", orderHandler.Update)
	orderingRoutes.POST("/orders/:id/confirm", orderHandler.Confirm)
	orderingRoutes.POST("/orders/:id/complete", orderHandler.Complete)
	orderingRoutes.POST("/orders/:id/cancel", orderHandler.Cancel)
	orderingRoutes.POST("/orders/:id/rollup", orderHandler.RecalculateRollup)

	// Production domain (work packages, work orders, routing, capacity)
	productionRoutes := router.NewDomainGroup("production", "")
	productionRoutes.POST("/work-packages", workPackageHandler.Create)
	productionRoutes.GET("/work-packages", workPackageHandler.List)
	productionRoutes.GET("/work-packages/:id", workPackageHandler.GetByID)
	productionRoutes.PUT("/work-packages/:id", workPackageHandler.Update)
	productionRoutes.POST("/work-packages/:id/transition", workPackageHandler.Transition)
	productionRoutes.DELETE("/work-packages/:id", workPackageHandler.Delete)

	productionRoutes.POST("/work-orders", workOrderHandler.Create)
	productionRoutes.GET("/work-orders", workOrderHandler.List)
	productionRoutes.GET("/work-orders/:id", workOrderHandler.GetByID)
	productionRoutes.PUT("/work-orders/:id", workOrderHandler.Update)
	productionRoutes.POST("/work-orders/:id/assign", workOrderHandler.Assign)
	productionRoutes.POST("/work-orders/:id/routing-lines", workOrderHandler.AddRoutingLine)
	productionRoutes.DELETE("/work-orders/:id/routing-lines/:lineId", workOrderHandler.RemoveRoutingLine)
	productionRoutes.POST("/work-orders/:id/routing-lines/:lineId/transition", workOrderHandler.TransitionRoutingLine)
	productionRoutes.POST("/work-orders/:id/release", workOrderHandler.Release)
	productionRoutes.POST("/work-orders/:id/start", workOrderHandler.Start)
	productionRoutes.POST("/work-orders/:id/complete", workOrderHandler.Complete)
	productionRoutes.POST("/work-orders/:id/cancel", workOrderHandler.Cancel)

	productionRoutes.POST("/work-centers", workCenterHandler.Create)
	productionRoutes.GET("/work-centers", workCenterHandler.List)
	productionRoutes.GET("/work-centers/:id", workCenterHandler.GetByID)
	productionRoutes.PUT("/work-centers/:id", workCenterHandler.Update)
	productionRoutes.DELETE("/work-centers/:id", workCenterHandler.Delete)

	productionRoutes.POST("/resources", resourceHandler.Create)
	productionRoutes.GET("/resources", resourceHandler.List)
	productionRoutes.GET("/resources/:id", resourceHandler.GetByID)
	productionRoutes.PUT("/resources/:id", resourceHandler.Update)
	productionRoutes.DELETE("/resources/:id", resourceHandler.Delete)

	productionRoutes.POST("/routing-templates", routingTemplateHandler.Create)
	productionRoutes.GET("/routing-templates", routingTemplateHandler.List)
	productionRoutes.GET("/routing-templates/:id", routingTemplateHandler.GetByID)
	productionRoutes.POST("/routing-templates/:id/lines", routingTemplateHandler.AddLine)
	productionRoutes.DELETE("/routing-templates/:id/lines/:lineId", routingTemplateHandler.RemoveLine)
	productionRoutes.DELETE("/routing-templates/:id", routingTemplateHandler.Delete)

	// Catalogue domain (catalogues, items, surface coatings)
	catalogueRoutes := router.NewDomainGroup("catalogue", "")
	catalogueRoutes.POST("/catalogues", catalogueHandler.Create)
	catalogueRoutes.GET("/catalogues", catalogueHandler.List)
	catalogueRoutes.GET("/catalogues/:id", catalogueHandler.GetByID)
	catalogueRoutes.PUT("/catalogues/:id", catalogueHandler.Update)
	catalogueRoutes.DELETE("/catalogues/:id", catalogueHandler.Delete)
	catalogueRoutes.POST("/catalogues/:id/items", catalogueHandler.CreateItem)
	catalogueRoutes.GET("/catalogues/:id/items", catalogueHandler.ListItems)
	catalogueRoutes.GET("/catalogue-items/:itemId", catalogueHandler.GetItem)
	catalogueRoutes.PUT("/catalogue-items/:itemId", catalogueHandler.UpdateItem)
	catalogueRoutes.DELETE("/catalogue-items/:itemId", catalogueHandler.DeleteItem)

	catalogueRoutes.POST("/surface-coatings", surfaceCoatingHandler.Create)
	catalogueRoutes.GET("/surface-coatings", surfaceCoatingHandler.List)
	catalogueRoutes.GET("/surface-coatings/:id", surfaceCoatingHandler.GetByID)
	catalogueRoutes.PUT("/surface-coatings/:id", surfaceCoatingHandler.Update)
	catalogueRoutes.DELETE("/surface-coatings/:id", surfaceCoatingHandler.Delete)

	// Takeoff domain (drawings, annotations, measurements, BOM)
	takeoffRoutes := router.NewDomainGroup("takeoff", "")
	takeoffRoutes.POST("/drawings", drawingHandler.InitiateUpload)
	takeoffRoutes.GET("/drawings", drawingHandler.ListByWorkPackage)
	takeoffRoutes.GET("/drawings/:id", drawingHandler.GetByID)
	takeoffRoutes.GET("/drawings/:id/open", drawingHandler.Open)
	takeoffRoutes.PATCH("/drawings/:id/instant-json", drawingHandler.SaveInstantJSON)
	takeoffRoutes.DELETE("/drawings/:id", drawingHandler.Delete)
	takeoffRoutes.POST("/drawings/:id/annotations", measurementHandler.CreateAnnotation)
	takeoffRoutes.GET("/drawings/:id/annotations", measurementHandler.ListAnnotations)
	takeoffRoutes.PUT("/drawings/:id/annotations/:annotationId", measurementHandler.UpdateAnnotation)
	takeoffRoutes.DELETE("/drawings/:id/annotations/:annotationId", measurementHandler.DeleteAnnotation)
	takeoffRoutes.GET("/drawings/:id/measurements", measurementHandler.ListMeasurements)
	takeoffRoutes.POST("/measurements/:id/link", measurementHandler.LinkCatalogueItem)
	takeoffRoutes.GET("/drawings/:id/bom", measurementHandler.GenerateBOM)
	takeoffRoutes.GET("/drawings/:id/bom/export", measurementHandler.ExportBOM)

	// Measurement hub (SSE stream plus per-drawing subscriptions)
	takeoffRoutes.GET("/measurementHub", measurementHubHandler.Stream)
	takeoffRoutes.POST("/measurementHub/subscriptions/:drawingId", measurementHubHandler.SubscribeToDrawing)
	takeoffRoutes.DELETE("/measurementHub/subscriptions/:drawingId", measurementHubHandler.UnsubscribeFromDrawing)

	// Trace domain (genealogy records)
	traceRoutes := router.NewDomainGroup("trace", "")
	traceRoutes.POST("/trace-records", traceRecordHandler.Create)
	traceRoutes.GET("/trace-records", traceRecordHandler.List)
	traceRoutes.GET("/trace-records/:id", traceRecordHandler.GetByID)
	traceRoutes.GET("/trace-records/reference/:referenceType/:referenceId", traceRecordHandler.FindByReference)
	traceRoutes.GET("/trace-records/:id/lineage", traceRecordHandler.GetLineage)
	traceRoutes.DELETE("/trace-records/:id", traceRecordHandler.Delete)

	// Authentication routes with a stricter rate limit (if enabled)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authRateLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.AuthRateLimit(authRateLimiter))
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Identity domain (users, company, invitations)
	identityRoutes := router.NewDomainGroup("identity", "")
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)

	identityRoutes.GET("/company", companyHandler.GetCurrent)
	identityRoutes.PUT("/company", companyHandler.Update)

	identityRoutes.POST("/invitations", invitationHandler.Create)
	identityRoutes.GET("/invitations", invitationHandler.List)
	identityRoutes.DELETE("/invitations/:id", invitationHandler.Revoke)
	identityRoutes.POST("/invitations/accept", invitationHandler.Accept)

	// System and outbox administration (admin only for outbox mutation)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	outboxRoutes := router.NewDomainGroup("outbox", "/outbox")
	outboxRoutes.Use(middleware.RequireAdmin())
	outboxRoutes.GET("/dead-letters", outboxHandler.GetDeadLetterEntries)
	outboxRoutes.GET("/entries/:id", outboxHandler.GetEntry)
	outboxRoutes.POST("/dead-letters/:id/retry", outboxHandler.RetryDeadEntry)
	outboxRoutes.POST("/dead-letters/retry-all", outboxHandler.RetryAllDeadEntries)
	outboxRoutes.GET("/stats", outboxHandler.GetStats)

	// Register all domain groups
	r.Register(orderingRoutes).
		Register(productionRoutes).
		Register(catalogueRoutes).
		Register(takeoffRoutes).
		Register(traceRoutes).
		Register(authRoutes).
		Register(identityRoutes).
		Register(systemRoutes).
		Register(outboxRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

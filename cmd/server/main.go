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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	identityapp "github.com/hireflow/backend/internal/application/identity"
	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/auth"
	"github.com/hireflow/backend/internal/infrastructure/cache"
	"github.com/hireflow/backend/internal/infrastructure/config"
	"github.com/hireflow/backend/internal/infrastructure/event"
	"github.com/hireflow/backend/internal/infrastructure/logger"
	"github.com/hireflow/backend/internal/infrastructure/persistence"
	"github.com/hireflow/backend/internal/infrastructure/printing"
	"github.com/hireflow/backend/internal/infrastructure/richtext"
	"github.com/hireflow/backend/internal/infrastructure/scheduler"
	"github.com/hireflow/backend/internal/infrastructure/storage"
	"github.com/hireflow/backend/internal/infrastructure/telemetry"
	"github.com/hireflow/backend/internal/interfaces/http/handler"
	"github.com/hireflow/backend/internal/interfaces/http/middleware"
	"github.com/hireflow/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export is tee'd into the zap logger, so it comes first
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting hireflow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingSpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log provider", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter("github.com/hireflow/backend")

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if reg, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		} else {
			defer func() { _ = reg.Unregister() }()
		}
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist and dashboard cache when configured
	var (
		redisClient    *redis.Client
		blacklist      auth.TokenBlacklist
		dashboardCache recruitingapp.DashboardCache
	)
	if cfg.Cache.Driver == "redis" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		dashboardCache = cache.NewRedisDashboardCache(redisClient, cfg.Cache.DashboardTTL, log)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewMemoryTokenBlacklist(time.Minute)
		dashboardCache = cache.NewMemoryDashboardCache(cfg.Cache.DashboardTTL)
		log.Info("Using in-process cache and token blacklist")
	}

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	userRepo := persistence.NewGormUserProfileRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	jobRepo := persistence.NewGormJobRepository(db.DB)
	accessRepo := persistence.NewGormJobAccessRepository(db.DB)
	candidateRepo := persistence.NewGormCandidateRepository(db.DB)
	appRepo := persistence.NewGormApplicationRepository(db.DB)
	historyRepo := persistence.NewGormApplicationHistoryRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)

	// Business metrics
	var recruitingMetrics recruitingapp.RecruitingMetrics
	if m, err := telemetry.NewRecruitingMetrics(meter); err != nil {
		log.Warn("Recruiting metrics unavailable", zap.Error(err))
	} else {
		recruitingMetrics = m
	}

	// Event bus: status changes feed the history log and invalidate dashboards
	eventBus := event.NewInMemoryEventBus(log)
	historyHandler := recruitingapp.NewStatusHistoryHandler(historyRepo, dashboardCache, recruitingMetrics, log)
	auditHandler := event.NewAuditLogHandler(log)
	eventBus.Subscribe(historyHandler)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered",
		zap.Strings("status_history_events", historyHandler.EventTypes()),
		zap.Strings("audit_events", auditHandler.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Object storage for candidate documents
	var objectStorage recruitingapp.ObjectStorage
	if cfg.Storage.Enabled() {
		s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err), zap.String("bucket", s3Storage.Bucket()))
		}
		objectStorage = s3Storage
		log.Info("Object storage ready", zap.String("bucket", s3Storage.Bucket()))
	} else {
		log.Warn("Object storage not configured, document uploads are disabled")
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(orgRepo, userRepo, roleRepo, jwtService, blacklist, log)
	orgService := identityapp.NewOrganizationService(orgRepo, userRepo, jwtService, eventBus, log)
	memberService := identityapp.NewMemberService(userRepo, roleRepo, accessRepo, blacklist, jwtService, eventBus, log)
	roleService := identityapp.NewRoleService(roleRepo, log)

	jobService := recruitingapp.NewJobService(jobRepo, accessRepo, orgRepo, richtext.NewSanitizer(), log)
	applicationService := recruitingapp.NewApplicationService(appRepo, historyRepo, jobRepo, candidateRepo, accessRepo, log)
	accessService := recruitingapp.NewAccessService(accessRepo, jobRepo, userRepo, roleRepo, log)
	candidateService := recruitingapp.NewCandidateService(candidateRepo, appRepo, log)
	documentService := recruitingapp.NewDocumentService(documentRepo, candidateRepo, objectStorage, recruitingapp.DocumentSettings{
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		URLExpiry:     cfg.Storage.PresignExpiry,
	}, log)
	dashboardService := recruitingapp.NewDashboardService(dashboardRepo, dashboardCache, log)

	// Inject event bus, cache and metrics into services that use them
	jobService.SetEventPublisher(eventBus)
	jobService.SetDashboardCache(dashboardCache)
	applicationService.SetEventPublisher(eventBus)
	applicationService.SetDashboardCache(dashboardCache)
	accessService.SetEventPublisher(eventBus)
	accessService.SetDashboardCache(dashboardCache)
	candidateService.SetEventPublisher(eventBus)
	candidateService.SetDocumentStorage(documentRepo, objectStorage)
	documentService.SetEventPublisher(eventBus)
	if recruitingMetrics != nil {
		jobService.SetMetrics(recruitingMetrics)
		applicationService.SetMetrics(recruitingMetrics)
	}

	// Background maintenance
	tasks := scheduler.New(log)
	if cfg.Storage.Enabled() {
		if err := tasks.Add(scheduler.Task{
			Name:     "purge_abandoned_uploads",
			Interval: cfg.Storage.SweepInterval,
			Run: func(ctx context.Context) error {
				_, err := documentService.PurgeStalePending(ctx, cfg.Storage.PendingUploadTTL)
				return err
			},
		}); err != nil {
			log.Fatal("Failed to schedule upload purge", zap.Error(err))
		}
	}
	if err := tasks.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		if err := tasks.Stop(context.Background()); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	// PDF export through headless Chrome
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(cfg.Printing, log)
		defer func() {
			if err := chrome.Close(); err != nil {
				log.Error("Error closing Chrome", zap.Error(err))
			}
		}()
		jobService.SetRenderer(printing.NewJobPostingRenderer(chrome))
		log.Info("PDF export enabled", zap.Bool("remote_chrome", cfg.Printing.RemoteURL != ""))
	}

	// HTTP handlers
	healthChecks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	handlers := router.Handlers{
		System:       handler.NewSystemHandler(version, healthChecks),
		Auth:         handler.NewAuthHandler(authService, orgService, cfg.Cookie),
		Organization: handler.NewOrganizationHandler(orgService, memberService, roleService),
		Job:          handler.NewJobHandler(jobService, accessService),
		Candidate:    handler.NewCandidateHandler(candidateService, documentService),
		Application:  handler.NewApplicationHandler(applicationService, dashboardService),
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first. Tracing wraps everything after
	// recovery so panics still end their span.
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tracerProvider.IsEnabled()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(tracingCfg))
	engine.Use(middleware.SpanErrorMarker())
	if meterProvider.IsEnabled() {
		httpMetrics, err := middleware.HTTPMetrics(meter)
		if err != nil {
			log.Warn("HTTP metrics unavailable", zap.Error(err))
		} else {
			engine.Use(httpMetrics)
		}
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling("/health"))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	r := router.NewRouter(engine, router.WithMiddleware(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.SpanIdentity(),
	))
	router.RegisterAPI(r, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

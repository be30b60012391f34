package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caredesk/patient-admin/internal/adapters/cache"
	"github.com/caredesk/patient-admin/internal/adapters/database"
	"github.com/caredesk/patient-admin/internal/adapters/events"
	"github.com/caredesk/patient-admin/internal/api/handlers"
	"github.com/caredesk/patient-admin/internal/api/middleware"
	"github.com/caredesk/patient-admin/internal/api/routes"
	"github.com/caredesk/patient-admin/internal/application/services"
	"github.com/caredesk/patient-admin/internal/domain/entities"
	"github.com/caredesk/patient-admin/internal/domain/providers"
	"github.com/caredesk/patient-admin/internal/domain/repositories"
	"github.com/caredesk/patient-admin/internal/infrastructure/clients/postgres"
	"github.com/caredesk/patient-admin/internal/infrastructure/clients/redis"
	"github.com/caredesk/patient-admin/internal/infrastructure/observability"
	"github.com/caredesk/patient-admin/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The application works without it; analytics
	// are recomputed on every request instead of served from cache.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, caching disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
		logger.Info().Msg("Redis client initialized")
	}

	// Initialize adapters
	var patientAdapter repositories.PatientRepository = database.NewPatientAdapter(pgClient)
	if cacheProvider != nil {
		patientAdapter = database.NewCachedPatientAdapter(patientAdapter, cacheProvider)
	}
	clinicAdapter := database.NewClinicAdapter(pgClient)
	vendorAdapter := database.NewVendorAdapter(pgClient)
	reportAdapter := database.NewPeriodReportAdapter(pgClient)

	// Initialize services
	thresholds := services.Thresholds{
		ByCategory: map[entities.Category]int{
			entities.CategoryVeteran:  cfg.Analytics.VeteranInactiveMonths,
			entities.CategoryCivilian: cfg.Analytics.CivilianInactiveMonths,
		},
		NeverOrderedMonths: cfg.Analytics.NeverOrderedMonths,
	}

	activityService := services.NewActivityService(patientAdapter, reportAdapter, cacheProvider, thresholds)
	patientService := services.NewPatientService(patientAdapter, activityService)
	clinicService := services.NewClinicService(clinicAdapter)
	vendorService := services.NewVendorService(vendorAdapter, patientAdapter)
	ingestionService := services.NewIngestionService(patientAdapter, reportAdapter, activityService, metrics)
	reconciliationService := services.NewReconciliationService(patientAdapter, vendorAdapter, reportAdapter)

	if eventBus != nil {
		ingestionService.SetEventBus(eventBus)
	}

	// Cross-instance cache invalidation rides on the event bus. Writes on
	// this instance invalidate locally; the subscription covers the rest.
	if cacheProvider != nil && eventBus != nil {
		invalidationService := services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := invalidationService.Start(); err != nil {
			logger.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			defer invalidationService.Stop()
			logger.Info().Msg("cache invalidation service started")
		}
	}

	if cacheProvider != nil {
		warmingService := services.NewAnalyticsWarmingService(clinicAdapter, activityService)
		go warmingService.StartPeriodicWarming(ctx, 5*time.Minute)
		logger.Info().Msg("analytics cache warming started")
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	var responseCache handlers.ResponseCacheInvalidator
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		responseCache = cacheMiddleware
		logger.Info().Msg("HTTP cache middleware initialized")
	}

	// Initialize handlers
	patientHandler := handlers.NewPatientHandler(patientService)
	clinicHandler := handlers.NewClinicHandler(clinicService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	ingestionHandler := handlers.NewIngestionHandler(ingestionService, responseCache)
	analyticsHandler := handlers.NewAnalyticsHandler(activityService)
	reconciliationHandler := handlers.NewReconciliationHandler(reconciliationService)
	periodReportHandler := handlers.NewPeriodReportHandler(reportAdapter)

	// Set up router
	router := routes.NewRouter(
		patientHandler,
		clinicHandler,
		vendorHandler,
		ingestionHandler,
		analyticsHandler,
		reconciliationHandler,
		periodReportHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}

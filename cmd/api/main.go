package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinio/carematch-backend/internal/adapters/cache"
	"github.com/clinio/carematch-backend/internal/adapters/database"
	"github.com/clinio/carematch-backend/internal/api/handlers"
	"github.com/clinio/carematch-backend/internal/api/routes"
	"github.com/clinio/carematch-backend/internal/application/services"
	"github.com/clinio/carematch-backend/internal/domain/providers"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/openai"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/redis"
	"github.com/clinio/carematch-backend/internal/infrastructure/observability"
	"github.com/clinio/carematch-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
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

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		// Matching works without Redis, reads just skip the cache.
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	requestAdapter := database.NewRequestAdapter(pgClient)
	professionalAdapter := database.NewProfessionalAdapter(pgClient)
	scheduleAdapter := database.NewScheduleAdapter(pgClient)
	configurationAdapter := database.NewConfigurationAdapter(pgClient)
	recommendationAdapter := database.NewRecommendationAdapter(pgClient)
	auditAdapter := database.NewAuditAdapter(pgClient)

	// Initialize advisory provider
	var advisoryProvider providers.AdvisoryProvider
	if cfg.OpenAI.APIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set; advisory refinement disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			advisoryProvider = openaiClient
		}
	}

	// Initialize services
	collector := services.NewCollectorService(
		requestAdapter,
		professionalAdapter,
		scheduleAdapter,
		configurationAdapter,
		cfg.Matching.SlotMinutes,
		cfg.Matching.FanOutLimit,
	)
	refiner := services.NewAdvisoryRefiner(
		advisoryProvider,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
	)
	recommendationService := services.NewRecommendationService(
		collector,
		refiner,
		recommendationAdapter,
		auditAdapter,
		cacheProvider,
		metrics,
		cfg.Matching.TopN,
	)

	// Initialize handlers
	recommendationHandler := handlers.NewRecommendationHandler(
		recommendationService,
		cfg.Matching.DefaultConfigKey,
	)

	// Set up router
	router := routes.NewRouter(recommendationHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
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
}

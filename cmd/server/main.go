package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/config"
	"github.com/edusarathi/content-api/internal/content"
	"github.com/edusarathi/content-api/internal/database"
	"github.com/edusarathi/content-api/internal/dispatch"
	"github.com/edusarathi/content-api/internal/eventbus"
	"github.com/edusarathi/content-api/internal/fallback"
	"github.com/edusarathi/content-api/internal/handlers"
	"github.com/edusarathi/content-api/internal/middleware"
	"github.com/edusarathi/content-api/internal/telemetry"
)

func main() {
	ctx := context.Background()

	// Initialize logger with stdout sync
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("EduSarathi Content API starting...",
		zap.String("version", "0.1.0"),
		zap.String("environment", os.Getenv("GO_ENV")),
	)

	logger.Info("Initializing telemetry...")
	shutdownTelemetry, err := telemetry.InitTracer(ctx, "edusarathi-content-api")
	if err != nil {
		// Log but don't fail, as collector might be down
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(ctx); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	logger.Info("Loading configuration...")
	cfg := config.Load()

	if cfg.OpenRouterAPIKey == "" {
		logger.Warn("OPENROUTER_API_KEY is not set; all generations will use fallback synthesis")
	}

	// Initialize database
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Running migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis
	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	logger.Info("Initializing NATS...")
	bus, err := eventbus.NewBus(cfg.NATSURL, logger)
	if err != nil {
		// Events are best-effort, the API stays up without them
		logger.Error("failed to connect to NATS", zap.Error(err))
		bus = nil
	} else {
		defer bus.Close()
		logger.Info("connected to NATS")
	}

	// Assemble the generation pipeline
	synthesizer, err := fallback.NewSynthesizer(logger)
	if err != nil {
		logger.Fatal("failed to load fallback templates", zap.Error(err))
	}

	pacer := dispatch.NewPacer(cfg.RateMinDelay)
	selector := dispatch.NewSelector(dispatch.SelectorConfig{
		PremiumModels:   cfg.PremiumModels,
		PremiumAttempts: cfg.PremiumAttempts,
		FreeModels:      cfg.FreeModels,
		DomainPreferred: cfg.DomainPreferred,
	})
	executor := dispatch.NewExecutor(dispatch.ExecutorConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Referer: cfg.SiteReferer,
		Title:   cfg.SiteTitle,
		Timeout: cfg.ExecutorTimeout,
	}, logger)
	dispatcher := dispatch.NewDispatcher(pacer, selector, executor, dispatch.NewValidator(), synthesizer, logger)

	service := content.NewService(dispatcher, rdb, db, bus, cfg.CacheTTL, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	// Health and metrics
	healthHandler := handlers.NewHealthHandler(db, rdb, cfg.OpenRouterBaseURL)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize handlers
	generateHandler := handlers.NewGenerateHandler(service, logger)
	modelsHandler := handlers.NewModelsHandler(cfg)
	logsHandler := handlers.NewLogsHandler(service, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/models", modelsHandler.List)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, logger))
		{
			protected.GET("/logs", logsHandler.List)

			// Generation routes share a rate limit and circuit breaker
			generation := protected.Group("")
			generation.Use(middleware.RateLimitMiddleware(middleware.GenerationRateLimiter))
			generation.Use(middleware.CircuitBreakerMiddleware(middleware.GenerationCircuitBreaker))
			{
				generation.POST("/generate", generateHandler.Generate)
				generation.POST("/quiz/generate", generateHandler.GenerateQuiz)
				generation.POST("/curriculum/generate", generateHandler.GenerateCurriculum)
				generation.POST("/mindmap/generate", generateHandler.GenerateMindmap)
				generation.POST("/slides/generate", generateHandler.GenerateSlides)
				generation.POST("/lecture-plan/generate", generateHandler.GenerateLecturePlan)
				generation.POST("/assessment/generate", generateHandler.GenerateAssessment)
			}
		}
	}

	// Write timeout must cover a full cascade of slow backend attempts
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

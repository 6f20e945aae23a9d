package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/api"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/api/handlers"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/config"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/database"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/health"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/llm"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/middleware"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/migration"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/patient"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/prompt"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/repository"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/services"
	"github.com/Ayash-Bera/nutri-agent/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, os.Getenv("LOG_FORMAT"), os.Stdout)
	utils.Logger = logger

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer dbManager.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := migration.NewRunner(dbManager, dbManager.DB, logger).RunMigrations(migrationsPath); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator, err := llm.NewGenerator(ctx, llm.Config{
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		OpenAIBaseURL: cfg.LLM.OpenAI.BaseURL,
		OpenAIAPIKey:  cfg.LLM.OpenAI.APIKey,
		GeminiAPIKey:  cfg.LLM.GeminiAPIKey,
		CohereAPIKey:  cfg.LLM.CohereAPIKey,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize LLM backend")
	}
	if cfg.LLM.CacheTTL > 0 {
		generator = llm.NewCachedGenerator(generator, cache, cfg.LLM.CacheTTL, logger)
	}

	engine, err := services.NewEngine(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize correlation engine")
	}

	patientClient := patient.NewClient(cfg.Patient.URL, cfg.Patient.Timeout, logger)
	agentService := services.NewAgentService(
		patient.NewService(patientClient, logger),
		engine,
		prompt.NewBuilder(),
		generator,
		repoManager.QueryLog,
		logger,
	)

	checker := health.NewHealthChecker(dbManager, patientClient, cache, repoManager.SystemHealth, logger)
	go checker.PeriodicHealthCheck(ctx, time.Minute)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit)
	defer limiter.Stop()

	router := api.NewRouter(
		handlers.NewAgentHandler(agentService, repoManager.QueryLog, repoManager.Feedback, 2*time.Minute, logger),
		handlers.NewHealthHandler(checker),
		limiter,
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":  cfg.Server.Port,
			"model": generator.Name(),
		}).Info("Agent API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		logger.WithError(err).Error("Server error")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}

	logger.Info("Server stopped")
}

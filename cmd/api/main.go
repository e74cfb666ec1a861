package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"spacos/internal/config"
	"spacos/internal/database"
	"spacos/internal/edgar"
	"spacos/internal/logger"
	"spacos/internal/observability"
	"spacos/internal/repository"
	"spacos/internal/scoring"
	"spacos/internal/server"
	"spacos/internal/services"
	"spacos/internal/validator"
)

// @title           SPAC OS API
// @version         1.0
// @description     SPAC OS tracks special purpose acquisition companies from IPO to de-SPAC: deal pipeline, compliance calendar, trust account, PIPE and cap table.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT access token or an spk_ API key.

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key
// @description Shared key for the data pipeline endpoints.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("closing database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	var (
		metrics  *observability.Metrics
		gatherer prometheus.Gatherer
	)
	if appConfig.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.New("spacos", reg)
		gatherer = reg
	}

	db := dbManager.DB()

	var scorer services.TargetScorer
	if appConfig.ScoringAPIURL != "" {
		scorer = scoring.NewClient(scoring.Config{
			BaseURL:   appConfig.ScoringAPIURL,
			APIKey:    appConfig.ScoringAPIKey,
			Timeout:   appConfig.ScoringTimeout,
			RateLimit: appConfig.ScoringRateLimit,
		}, nil, metrics)
	} else {
		log.Warn("SCORING_API_URL not set; target evaluation is disabled")
	}

	edgarClient := edgar.NewClient(edgar.Config{
		BaseURL:   appConfig.EdgarBaseURL,
		UserAgent: appConfig.EdgarUserAgent,
		CacheTTL:  appConfig.EdgarCacheTTL,
		RateLimit: appConfig.EdgarRateLimit,
	}, nil, metrics)
	syncer := edgar.NewSyncer(edgarClient, repository.NewFilingSyncStore(db), nil, metrics)

	router := server.NewRouter(server.Deps{
		DB:             db,
		Metrics:        metrics,
		Gatherer:       gatherer,
		Scorer:         scorer,
		Syncer:         syncer,
		PipelineAPIKey: appConfig.PipelineAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting SPAC OS backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

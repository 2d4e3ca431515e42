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

	"github.com/SAP-F-2025/form-builder-service/internal/cache"
	"github.com/SAP-F-2025/form-builder-service/internal/config"
	"github.com/SAP-F-2025/form-builder-service/internal/handlers"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories/mongodb"
	"github.com/SAP-F-2025/form-builder-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/SAP-F-2025/form-builder-service/internal/utils"
	"github.com/SAP-F-2025/form-builder-service/internal/validator"
	"github.com/SAP-F-2025/form-builder-service/pkg"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			logger.LogError(err, "Failed to close storage")
		}
	}()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	logger.Info("Storage ready", "driver", cfg.StorageDriver)

	cacheService := cache.NewNoopCache()
	if cfg.RedisURL != "" {
		client, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		cacheService = cache.NewRedisCache(client, logger)
		logger.Info("Analytics cache enabled", "ttl", cfg.AnalyticsCacheTTL.String())
	}

	slogLogger := utils.ToSlogLogger(logger)
	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(
		repo,
		cache.NewAnalyticsCache(cacheService, cfg.AnalyticsCacheTTL),
		publisher,
		validator.New(),
		slogLogger,
		!cfg.IsProduction(),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		handlers.RecoveryMiddleware(logger),
		utils.ContextLogger(logger),
		utils.LoggerMiddleware(logger),
		handlers.CORSMiddleware(cfg.AllowedOrigins),
	)
	handlers.NewHandlerManager(serviceManager, repo, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
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

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config) (repositories.Repository, error) {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := pkg.NewMongoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return mongodb.NewRepository(client, cfg.MongoDatabase), nil
	case config.StoragePostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

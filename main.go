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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/logging"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/routes"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/store"
	"clinic-booking-server/internal/store/memstore"
	"clinic-booking-server/internal/store/redisstore"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-booking-server",
		Short:        "Clinic appointment booking API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(setRoleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// bootstrap loads the environment, configuration and logger shared by
// every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	// A missing .env is fine; the environment may already be populated.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("could not load .env file", zap.Error(envErr))
	}
	return cfg, logger, nil
}

// openRepository connects to the configured database and migrates it. The
// memory driver keeps everything in process and is lost on exit. With
// REDIS_ADDR set, sessions are kept in Redis instead.
func openRepository(cfg *config.Config, logger *zap.Logger) (services.Repository, func() error, error) {
	repo, closeRepo, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Redis.Enabled() {
		return repo, closeRepo, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	sessions := redisstore.NewSessionStore(rdb, cfg.Redis.Prefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sessions.Ping(ctx); err != nil {
		_ = rdb.Close()
		_ = closeRepo()
		return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	logger.Info("sessions stored in redis", zap.String("addr", cfg.Redis.Addr))

	closeAll := func() error {
		return errors.Join(rdb.Close(), closeRepo())
	}
	return redisstore.Overlay(repo, sessions), closeAll, nil
}

func openDatabase(cfg *config.Config, logger *zap.Logger) (services.Repository, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage, data will not survive a restart")
		return memstore.New(), func() error { return nil }, nil
	}

	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  !cfg.IsProduction() && cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to database: %w", err)
	}

	st := store.New(db, logger.Named("store"))
	return st, st.Close, nil
}

func newServices(cfg *config.Config, repo services.Repository, logger *zap.Logger) *services.Services {
	return services.New(repo, services.Options{
		SessionTTL:          cfg.SessionTTL,
		ReleaseSlotOnCancel: cfg.ReleaseSlotOnCancel,
		Logger:              logger.Named("services"),
	})
}

func runServer() error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		logger.Error("storage unavailable", zap.Error(err))
		return err
	}
	defer closeRepo() //nolint:errcheck

	svc := newServices(cfg, repo, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Named("http")))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	routes.SetupRoutes(router, svc, cfg, limiter)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Bool("release_slot_on_cancel", cfg.ReleaseSlotOnCancel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("failed to start server", zap.Error(err))
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

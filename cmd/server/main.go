// Package main is the entry point for the Portfolio API
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aldianriski/portfolioapi/internal/api"
	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Print the configuration
	fmt.Println(cfg.String())

	// Connect to Postgres
	db, err := repository.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Init logger
	err = zaplogger.InitLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Setup logger
	defer zaplogger.Sync()
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// Admin audit log
	audit, err := logger.New(db)
	if err != nil {
		zaplogger.Fatal("Failed to initialize audit log", zaplogger.Fields{"error": err})
	}

	// startUpMessage
	zaplogger.Info(cfg.APIName + " - " + cfg.APIVersion + " initialized")
	zaplogger.Info("Postgres initialized")

	// Rate limit stores: Redis when configured, otherwise one map per limiter
	newStore := func() service.RateLimitStore { return repository.NewMemoryRateLimitStore() }
	if cfg.RedisEnabled() {
		redisClient, err := repository.ConnectRedis(cfg)
		if err != nil {
			zaplogger.Fatal("Failed to connect to Redis", zaplogger.Fields{"error": err})
		}
		defer redisClient.Close()
		redisStore := repository.NewRedisRateLimitStore(redisClient)
		newStore = func() service.RateLimitStore { return redisStore }
		zaplogger.Info("Redis initialized")
	}

	// Object storage for uploads
	var objects service.ObjectStore
	if cfg.S3Endpoint != "" {
		minioClient, err := repository.ConnectObjectStorage(cfg)
		if err != nil {
			zaplogger.Fatal("Failed to connect to object storage", zaplogger.Fields{"error": err})
		}
		objects = repository.NewObjectStorage(minioClient, cfg.S3Bucket, cfg.S3PublicURL)
		zaplogger.Info("Object storage initialized")
	} else {
		zaplogger.Warn("PORTFOLIO_S3_ENDPOINT not set, uploads are disabled")
	}

	deps, err := api.NewDependencies(cfg, db, newStore, objects, service.NewNotifier(cfg), audit)
	if err != nil {
		zaplogger.Fatal("Failed to initialize services", zaplogger.Fields{"error": err})
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)
	middleware.SetupSecurityMiddleware(e)

	// Setup routes
	api.SetupRoutes(e, deps)

	// Setup and start cron jobs
	cronService := service.NewCronService(deps.AdminLimiter, deps.LoginLimiter, deps.ContactLimiter)
	cronService.Start()

	// Start the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go startServer(e, cfg)

	<-ctx.Done()
	zaplogger.Info("SHUTTING DOWN SERVER")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zaplogger.Error("Server shutdown failed", zaplogger.Fields{"error": err})
	}
	cronService.Stop(shutdownCtx)
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "3007"
	}
	zaplogger.Info("SERVER STARTED ON PORT " + port)
	if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zaplogger.Fatal("Server failed", zaplogger.Fields{"error": err})
	}
}

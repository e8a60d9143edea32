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

	"github.com/gin-gonic/gin"

	"github.com/myfirstshop/fragrance-api/internal/di"
	"github.com/myfirstshop/fragrance-api/internal/middleware"
	"github.com/myfirstshop/fragrance-api/internal/service"
	"github.com/myfirstshop/fragrance-api/pkg/config"
	"github.com/myfirstshop/fragrance-api/pkg/database"
	"github.com/myfirstshop/fragrance-api/pkg/logger"
	"github.com/myfirstshop/fragrance-api/pkg/response"
	"github.com/myfirstshop/fragrance-api/pkg/storage"
	"github.com/myfirstshop/fragrance-api/pkg/telemetry"
)

// maxUploadSize caps multipart request bodies at 5mb
const maxUploadSize = 5 << 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting fragrance shop API...")

	ctx := context.Background()

	// Initialize tracing
	_, err = telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize database. The manager connects lazily; the first
	// request that needs Mongo dials it, and concurrent callers share
	// the same attempt.
	db := database.NewMongo(&database.MongoConfig{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.ConnectTimeout,
		MaxPoolSize:    cfg.MongoDB.MaxPoolSize,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Close(closeCtx)
	}()

	// Initialize object storage for product images
	uploader, err := storage.NewS3Store(ctx, &storage.S3Config{
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		Endpoint:      cfg.S3.Endpoint,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Object storage initialization failed: %v", err))
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:       db,
		Uploader: uploader,
		ServiceConfig: &service.AuthServiceConfig{
			JWTSecret: cfg.JWT.Secret,
			TokenTTL:  cfg.JWT.TokenTTL,
		},
		UploadFolder: cfg.S3.UploadFolder,
	})

	// Warm the connection and ensure indexes; failure is logged, not
	// fatal, so the API can come up before Mongo does.
	warmCtx, cancelWarm := context.WithTimeout(ctx, 15*time.Second)
	if err := container.UserRepo.EnsureIndexes(warmCtx); err != nil {
		appLog.Warn(fmt.Sprintf("Index creation deferred, database not reachable yet: %v", err))
	} else {
		appLog.Info("Database connected")
	}
	cancelWarm()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUploadSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	router.Use(middleware.CORS())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	// Health endpoints
	router.GET("/", container.HealthHandler.Root)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", container.AuthHandler.Register)
			auth.POST("/login", container.AuthHandler.Login)
		}

		// Public catalog
		api.GET("/products", container.ProductHandler.List)
		api.GET("/products/:id", container.ProductHandler.Get)

		// Admin catalog management
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin(container.AuthService))
		{
			admin.POST("/products", container.ProductHandler.Create)
			admin.PUT("/products/:id", container.ProductHandler.Update)
			admin.DELETE("/products/:id", container.ProductHandler.Delete)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Fragrance shop API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

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
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/app/controllers"
	"github.com/listing-cleaner/app/services"
	"github.com/listing-cleaner/internal/bootstrap"
	"github.com/listing-cleaner/routes"
)

func main() {
	logger, err := bootstrap.Init("")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Listing Cleaner Service...")

	ctx := context.Background()
	cfg := config.C
	deps, err := bootstrap.Build(ctx, cfg, bootstrap.Options{}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close(context.Background())

	runner, err := services.NewRunner(cfg, deps.Standardizer, true, logger)
	if err != nil {
		logger.Fatal("Failed to load extraction rules", zap.Error(err))
	}

	cacheService, err := services.NewCache(cfg.Cache, viper.GetString("redis.url"), deps.Mongo, logger)
	if err != nil {
		logger.Fatal("Failed to create cache service", zap.Error(err))
	}
	if cacheService != nil {
		defer cacheService.Close()
	}

	// Initialize services
	listingService := services.NewListingService(runner, cacheService, logger)
	referenceService := services.NewReferenceService(deps.Standardizer, deps.Index, deps.Mongo, logger)
	adminService := services.NewAdminService(listingService, referenceService, deps.Mongo, logger)

	ctl := routes.Controllers{
		Listing:   controllers.NewListingController(listingService, cfg.Server.MaxBatch, logger),
		Reference: controllers.NewReferenceController(referenceService, logger),
		Admin:     controllers.NewAdminController(adminService, listingService, referenceService, logger),
	}

	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, ctl, routes.Options{
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.Burst,
		RequestTimeout: config.RequestTimeout(),
		Version:        listingService.Version(),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + viper.GetString("app.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", srv.Addr),
			zap.String("rules_version", listingService.Version()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

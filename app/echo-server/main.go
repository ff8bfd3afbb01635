package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"myArtMarket/app/bootstrap"
	httpmetrics "myArtMarket/app/echo-server/metrics"
	"myArtMarket/app/echo-server/router"
	"myArtMarket/internal/middleware"
	"myArtMarket/internal/rest"
	"myArtMarket/pkg/config"
	"myArtMarket/pkg/logger"
	"myArtMarket/pkg/metrics"
	"myArtMarket/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting MyArtMarket recommender", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	if err := metrics.Init(cfg.App.Version); err != nil {
		logger.Fatal("Failed to register metrics", "error", err)
	}
	if err := httpmetrics.Init(); err != nil {
		logger.Fatal("Failed to register http metrics", "error", err)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	app, err := bootstrap.Build(appCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to build recommender", "error", err)
	}

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(app.Service)
	banditAdminHandler := rest.NewBanditAdminHandler(app.Service)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(httpmetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderTraceID},
	}))

	// Setup routes
	router.SetMetricsRoute(e)
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recommendationHandler)
	router.SetBanditAdminRoutes(api, banditAdminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	stopApp()

	// Pending model writes
	if err := app.Close(ctx); err != nil {
		logger.Error("Recommender shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}

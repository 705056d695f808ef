package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/replanhq/replan/internal/api"
	"github.com/replanhq/replan/internal/cache"
	"github.com/replanhq/replan/internal/config"
	"github.com/replanhq/replan/internal/repository/postgres"
	"github.com/replanhq/replan/internal/service"
	"github.com/replanhq/replan/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	proposalCache, err := cache.NewPurchaseProposalCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Proposal cache unavailable, running without it")
		proposalCache = cache.NewNoopPurchaseProposalCache()
	}

	planningService := service.NewPlanningService(
		postgres.NewPlanningRepository(db),
		postgres.NewCalendarRepository(db),
		postgres.NewCatalogRepository(db),
		proposalCache,
		cfg.Planning.HorizonPeriods,
	)

	router := api.NewRouter(planningService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

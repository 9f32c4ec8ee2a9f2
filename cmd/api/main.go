package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fkhayef/invoicevista/internal/app"
	"github.com/fkhayef/invoicevista/internal/config"
	"github.com/fkhayef/invoicevista/internal/logger"
)

// @title           InvoiceVista API
// @version         1.0
// @description     Client invoice and payment portal.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logr := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := app.OpenStore(ctx, cfg, cfg.MigrateOnStart, logr)
	if err != nil {
		logr.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer s.Close()

	if cfg.SeedOnStart || cfg.StoreDriver == config.StoreDriverMemory {
		if err := app.Seed(ctx, s, cfg); err != nil {
			logr.Fatal().Err(err).Msg("Failed to seed demo data")
		}
		logr.Info().Msg("Demo data loaded")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.NewRouter(s, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()

	logr.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error().Err(err).Msg("Graceful shutdown failed")
		return
	}
	logr.Info().Msg("Server stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruralpay/payengine/internal/config"
	"github.com/ruralpay/payengine/internal/handlers"
	"github.com/ruralpay/payengine/internal/logging"
	"github.com/ruralpay/payengine/internal/services"
)

// The server keeps one processor for its whole lifetime. Events posted to
// /api/v1/events are applied in arrival order; on shutdown the final
// snapshot is handed to the configured sink.
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	processor := services.NewProcessor(logger)
	ledgerHandler := handlers.NewLedgerHandler(processor, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(ledgerHandler, cfg.JWTSecret),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if cfg.Sink != config.SinkCSV {
		exportSnapshot(ctx, cfg, processor, logger)
	}

	logger.Info("Server stopped")
}

func exportSnapshot(ctx context.Context, cfg *config.Config, processor *services.Processor, logger *zap.Logger) {
	sink, closeSink, err := services.OpenSink(ctx, cfg, os.Stdout)
	if err != nil {
		logger.Error("Failed to open snapshot sink", zap.String("sink", cfg.Sink), zap.Error(err))
		return
	}
	defer closeSink()

	runID := uuid.NewString()
	rows := processor.Snapshot()
	if err := sink.Export(ctx, runID, rows); err != nil {
		logger.Error("Failed to export snapshot", zap.String("run_id", runID), zap.Error(err))
		return
	}
	logger.Info("Snapshot exported", zap.String("run_id", runID), zap.String("sink", cfg.Sink), zap.Int("accounts", len(rows)))
}

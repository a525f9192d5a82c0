package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ferrytix/receipt-printer/internal/archive"
	"github.com/ferrytix/receipt-printer/internal/env"
	"github.com/ferrytix/receipt-printer/internal/localdb"
	"github.com/ferrytix/receipt-printer/internal/output"
	"github.com/ferrytix/receipt-printer/internal/render"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/ferrytix/receipt-printer/internal/shared/paths"
	"github.com/ferrytix/receipt-printer/internal/version"
	"github.com/ferrytix/receipt-printer/internal/webserver"
	"go.uber.org/zap"
)

func main() {
	logger.Init(false)
	defer logger.Sync()

	env.LoadEnv()
	if env.Value.DebugMode {
		logger.Init(true)
		logger.Info("Debug mode enabled")
	}
	if env.Value.DataDir != "" {
		paths.SetDataDir(env.Value.DataDir)
	}

	logger.Info("Starting receipt printer server", zap.String("version", version.String()))

	if err := paths.EnsureDataDirs(); err != nil {
		logger.Fatal("Failed to ensure data directories", zap.Error(err))
	}
	if _, err := localdb.SetupDB(paths.GetDBPath()); err != nil {
		logger.Fatal("Failed to setup database", zap.Error(err))
	}
	defer localdb.Close()

	renderer, err := render.New(render.OptionsFromEnv())
	if err != nil {
		logger.Fatal("Failed to initialize renderer", zap.Error(err))
	}
	defer renderer.Close()

	store, err := archive.New(paths.GetOutputDir(), archive.DefaultTTL)
	if err != nil {
		logger.Fatal("Failed to initialize receipt archive", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue := output.InitializePrinter(ctx)

	port := 8080
	if env.Value.ServerPort != 0 {
		port = env.Value.ServerPort
	}

	server := webserver.New(webserver.Config{
		Renderer: renderer,
		Archive:  store,
		Queue:    queue,
	})
	if err := server.Start(port); err != nil {
		logger.Fatal("Failed to start web server", zap.Error(err))
	}

	logger.Info("Server started",
		zap.Int("port", port),
		zap.String("api", fmt.Sprintf("http://localhost:%d/api/receipts", port)),
		zap.String("printer", env.Value.PrinterType),
		zap.Bool("dry_run", env.Value.DryRunMode))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...",
		zap.Int("pending_jobs", output.GetPrintQueueSize()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
	cancel()

	logger.Info("Shutdown complete")
}

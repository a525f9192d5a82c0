package webserver

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/ferrytix/receipt-printer/internal/archive"
	"github.com/ferrytix/receipt-printer/internal/localdb"
	"github.com/ferrytix/receipt-printer/internal/output"
	"github.com/ferrytix/receipt-printer/internal/receipt"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/ferrytix/receipt-printer/internal/status"
	"go.uber.org/zap"
)

// Renderer turns element specs into one page raster.
type Renderer interface {
	Render(specs []receipt.Spec) (*image.Gray, error)
	PageWidth() int
}

// PrintQueue accepts finished rasters for the printer.
type PrintQueue interface {
	Enqueue(job output.PrintJob) error
	Len() int
	OnJobFinished(cb func(output.JobResult))
}

// Config wires the server's collaborators.
type Config struct {
	Renderer     Renderer
	Archive      *archive.Store
	Queue        PrintQueue
	MaxBodyBytes int64
}

// Server is the receipt HTTP API.
type Server struct {
	cfg        Config
	events     *WSHub
	logs       *WSHub
	httpServer *http.Server
	cancel     context.CancelFunc
}

// New creates the server and starts its websocket hubs.
func New(cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		events: newWSHub("events"),
		logs:   newWSHub("logs"),
		cancel: cancel,
	}
	go s.events.run(ctx)
	go s.logs.run(ctx)

	cfg.Queue.OnJobFinished(s.handleJobFinished)
	status.RegisterPrinterStatusChangeCallback(func(connected bool) {
		s.events.Broadcast("printer_status", map[string]interface{}{"connected": connected})
	})
	logger.SetBroadcastCallback(func(entry logger.LogEntry) {
		s.logs.Broadcast("log", entry)
	})
	return s
}

// corsMiddleware adds CORS headers to HTTP handlers
func corsMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler(w, r)
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// レシート
	mux.HandleFunc("/api/receipts", corsMiddleware(s.handleReceipts))
	mux.HandleFunc("/api/receipts/preview", corsMiddleware(s.handlePreview))
	mux.HandleFunc("/api/receipts/", corsMiddleware(s.handleReceiptByPath))
	mux.HandleFunc("/receipts/", corsMiddleware(s.handleReceiptImage))

	// プリンター
	mux.HandleFunc("/api/printer/status", corsMiddleware(s.handlePrinterStatus))
	mux.HandleFunc("/api/printer/scan", corsMiddleware(handlePrinterScan))
	mux.HandleFunc("/api/printer/system-printers", corsMiddleware(handleSystemPrinters))

	// ログ
	mux.HandleFunc("/api/logs", corsMiddleware(handleLogs))
	mux.HandleFunc("/api/logs/clear", corsMiddleware(handleLogsClear))
	mux.HandleFunc("/api/logs/stream", s.logs.serveWS) // WebSocketは独自のUpgrade処理

	mux.HandleFunc("/api/events", s.events.serveWS)
	return mux
}

// Start listens on port in the background.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Starting web server", zap.String("address", addr))

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	// Wait briefly to catch immediate binding errors
	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("Failed to start web server", zap.Error(err))
			return fmt.Errorf("failed to start web server on port %d: %w", port, err)
		}
	case <-time.After(100 * time.Millisecond):
	}
	return nil
}

// Shutdown gracefully shuts down the web server and the hubs.
func (s *Server) Shutdown(ctx context.Context) {
	logger.SetBroadcastCallback(nil)
	s.cancel()

	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown web server gracefully", zap.Error(err))
	} else {
		logger.Info("Web server shutdown complete")
	}
}

// handleJobFinished stores the queue outcome and tells websocket clients.
func (s *Server) handleJobFinished(res output.JobResult) {
	errMsg := ""
	if res.Err != nil {
		errMsg = res.Err.Error()
	}

	if localdb.GetDB() != nil {
		err := localdb.FinishPrintJob(res.JobID, string(res.Status), string(res.Printer), res.Attempts, errMsg, res.Finished)
		if err != nil {
			logger.Warn("Failed to record print result", zap.String("id", res.JobID), zap.Error(err))
		}
	}

	s.events.Broadcast("print_job_finished", map[string]interface{}{
		"id":       res.JobID,
		"status":   res.Status,
		"printer":  res.Printer,
		"attempts": res.Attempts,
		"error":    errMsg,
	})
}

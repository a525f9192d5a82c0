package webserver

import (
	"net/http"
	"time"

	"github.com/ferrytix/receipt-printer/internal/env"
	"github.com/ferrytix/receipt-printer/internal/localdb"
	"github.com/ferrytix/receipt-printer/internal/output"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/ferrytix/receipt-printer/internal/status"
	"go.uber.org/zap"
)

// PrinterStatusResponse is the body of /api/printer/status.
type PrinterStatusResponse struct {
	Type       string         `json:"type"`
	Connected  bool           `json:"connected"`
	DryRun     bool           `json:"dry_run"`
	QueueSize  int            `json:"queue_size"`
	PageWidth  int            `json:"page_width"`
	LastChange *time.Time     `json:"last_change,omitempty"`
	Jobs       map[string]int `json:"jobs,omitempty"`
	Clients    int            `json:"clients"`
}

func (s *Server) handlePrinterStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := PrinterStatusResponse{
		Type:      env.Value.PrinterType,
		Connected: status.IsPrinterConnected(),
		DryRun:    env.Value.DryRunMode,
		QueueSize: s.cfg.Queue.Len(),
		PageWidth: s.cfg.Renderer.PageWidth(),
		Clients:   s.events.ClientCount(),
	}
	if t := status.LastChange(); !t.IsZero() {
		resp.LastChange = &t
	}
	if localdb.GetDB() != nil {
		if counts, err := localdb.CountPrintJobs(); err == nil {
			resp.Jobs = counts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePrinterScan scans for Bluetooth cat printers for 10 seconds.
func handlePrinterScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger.Info("Starting printer scan")
	devices, err := output.ScanBluetoothPrinters(10 * time.Second)
	if err != nil {
		logger.Error("Device scan failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"devices": []output.BluetoothDevice{},
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"status":  "success",
	})
}

// handleSystemPrinters lists CUPS printers for PRINTER_TYPE=usb.
func handleSystemPrinters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	printers, err := output.GetSystemPrinters()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if printers == nil {
		printers = []output.SystemPrinter{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"printers": printers})
}

package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
)

// handleLogs returns recent logs
func handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 100 // デフォルト100件
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	logs := logger.GetLogBuffer(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":      logs,
		"count":     len(logs),
		"timestamp": time.Now(),
	})
}

// handleLogsClear empties the in-memory log buffer.
func handleLogsClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logger.ClearLogBuffer()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

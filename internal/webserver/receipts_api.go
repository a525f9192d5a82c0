package webserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ferrytix/receipt-printer/internal/definition"
	"github.com/ferrytix/receipt-printer/internal/localdb"
	"github.com/ferrytix/receipt-printer/internal/output"
	"github.com/ferrytix/receipt-printer/internal/receipt"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"go.uber.org/zap"
)

// ReceiptResponse is returned for every queued receipt.
type ReceiptResponse struct {
	ID       string `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Elements int    `json:"elements"`
	ImageURL string `json:"image_url"`
}

// ErrorResponse describes a failed build.
type ErrorResponse struct {
	Error   string `json:"error"`
	Class   string `json:"class,omitempty"`
	Code    string `json:"code,omitempty"`
	Element string `json:"element,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeReceiptError maps build failures to status codes: bad input is the
// caller's fault (400), missing fonts or pictures are not (422).
func writeReceiptError(w http.ResponseWriter, err error) {
	var re *receipt.Error
	if !errors.As(err, &re) {
		logger.Error("Receipt request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	code := http.StatusBadRequest
	if re.Class == receipt.ClassResource {
		code = http.StatusUnprocessableEntity
	}
	resp := ErrorResponse{
		Error: err.Error(),
		Class: string(re.Class),
		Code:  re.Err.Error(),
	}
	if re.Kind != receipt.KindUnknown {
		resp.Element = re.Kind.String()
	}
	writeJSON(w, code, resp)
}

func (s *Server) readDefinition(w http.ResponseWriter, r *http.Request) ([]byte, []receipt.Spec, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
		return nil, nil, false
	}
	specs, err := definition.Parse(bytes.NewReader(body))
	if err != nil {
		writeReceiptError(w, err)
		return nil, nil, false
	}
	if len(specs) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "receipt has no elements", Class: string(receipt.ClassConfig)})
		return nil, nil, false
	}
	return body, specs, true
}

// handleReceipts: GET lists the print history, POST renders and queues.
func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListReceipts(w, r)
	case http.MethodPost:
		body, specs, ok := s.readDefinition(w, r)
		if !ok {
			return
		}
		force := r.URL.Query().Get("force") == "true"
		s.printReceipt(w, string(body), specs, force)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// printReceipt renders, archives, records and queues one receipt.
func (s *Server) printReceipt(w http.ResponseWriter, source string, specs []receipt.Spec, force bool) {
	img, err := s.cfg.Renderer.Render(specs)
	if err != nil {
		writeReceiptError(w, err)
		return
	}

	rec, err := s.cfg.Archive.Save(img, len(specs))
	if err != nil {
		logger.Error("Failed to archive receipt", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	if localdb.GetDB() != nil {
		err := localdb.InsertPrintJob(localdb.PrintJob{
			ID:        rec.ID,
			Source:    source,
			Elements:  len(specs),
			Width:     rec.Width,
			Height:    rec.Height,
			CreatedAt: rec.CreatedAt,
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
	}

	if err := s.cfg.Queue.Enqueue(output.PrintJob{ID: rec.ID, Image: img, Force: force}); err != nil {
		if localdb.GetDB() != nil {
			localdb.FinishPrintJob(rec.ID, string(output.JobFailed), "", 0, err.Error(), rec.CreatedAt)
		}
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}

	resp := ReceiptResponse{
		ID:       rec.ID,
		Width:    rec.Width,
		Height:   rec.Height,
		Elements: rec.Elements,
		ImageURL: fmt.Sprintf("/receipts/%s.png", rec.ID),
	}
	s.events.Broadcast("receipt_queued", resp)
	logger.Info("Receipt queued",
		zap.String("id", rec.ID),
		zap.Int("elements", rec.Elements),
		zap.Int("height", rec.Height),
		zap.Bool("force", force))
	writeJSON(w, http.StatusCreated, resp)
}

// handlePreview renders a definition to PNG without printing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, specs, ok := s.readDefinition(w, r)
	if !ok {
		return
	}

	img, err := s.cfg.Renderer.Render(specs)
	if err != nil {
		writeReceiptError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Receipt-Width", strconv.Itoa(img.Bounds().Dx()))
	w.Header().Set("X-Receipt-Height", strconv.Itoa(img.Bounds().Dy()))
	w.Write(buf.Bytes())
}

// handleReceiptImage serves /receipts/{id}.png from the archive.
func (s *Server) handleReceiptImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/receipts/")
	id, ok := strings.CutSuffix(name, ".png")
	if !ok || id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	rec, ok := s.cfg.Archive.Get(id)
	if !ok {
		http.Error(w, "Receipt not found", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=600")
	http.ServeFile(w, r, rec.Path)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	if localdb.GetDB() == nil {
		// 履歴DBなしでもアーカイブ分は返す
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"receipts": s.cfg.Archive.Recent(limit),
		})
		return
	}

	jobs, err := localdb.GetPrintJobs(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleReceiptByPath handles /api/receipts/{id} and /api/receipts/{id}/reprint.
func (s *Server) handleReceiptByPath(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/receipts/"), "/"), "/")
	if parts[0] == "" || len(parts) > 2 {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if localdb.GetDB() == nil {
		http.Error(w, "Print history disabled", http.StatusServiceUnavailable)
		return
	}

	job, err := localdb.GetPrintJob(parts[0])
	if errors.Is(err, localdb.ErrJobNotFound) {
		http.Error(w, "Receipt not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, job)
	case len(parts) == 2 && parts[1] == "reprint" && r.Method == http.MethodPost:
		specs, err := definition.Parse(strings.NewReader(job.Source))
		if err != nil {
			writeReceiptError(w, err)
			return
		}
		s.printReceipt(w, job.Source, specs, true)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ferrytix/receipt-printer/internal/archive"
	"github.com/ferrytix/receipt-printer/internal/localdb"
	"github.com/ferrytix/receipt-printer/internal/output"
	"github.com/ferrytix/receipt-printer/internal/render"
	"github.com/gorilla/websocket"
)

const ferryTix = `
- title: FerryTix
- margin:
    height: 10
- qrcode:
    text: ABC123
    width: 50
`

type testEnv struct {
	server *Server
	http   *httptest.Server
	store  *archive.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if localdb.DBClient != nil {
		_ = localdb.Close()
	}
	if _, err := localdb.SetupDB(filepath.Join(t.TempDir(), "local.db")); err != nil {
		t.Fatalf("SetupDB failed: %v", err)
	}

	renderer, err := render.New(render.Options{})
	if err != nil {
		t.Fatalf("render.New failed: %v", err)
	}
	store, err := archive.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("archive.New failed: %v", err)
	}

	queue := output.NewQueue(output.QueueConfig{
		RetryDelay:  time.Millisecond,
		MaxAttempts: 1,
		NewBackend: func() (output.PrinterBackend, error) {
			return nil, errors.New("no printer attached")
		},
		DryRun: func() bool { return true },
	})
	ctx, cancel := context.WithCancel(context.Background())
	go queue.Run(ctx)

	s := New(Config{Renderer: renderer, Archive: store, Queue: queue})
	ts := httptest.NewServer(s.Handler())

	t.Cleanup(func() {
		ts.Close()
		s.Shutdown(context.Background())
		cancel()
		store.Close()
		renderer.Close()
		_ = localdb.Close()
	})
	return &testEnv{server: s, http: ts, store: store}
}

func (e *testEnv) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(e.http.URL+path, "application/yaml", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func waitJobStatus(t *testing.T, id, want string) *localdb.PrintJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		job, err := localdb.GetPrintJob(id)
		if err != nil {
			t.Fatalf("GetPrintJob failed: %v", err)
		}
		if job.Status == want {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s status = %q, want %q", id, job.Status, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCreateReceipt(t *testing.T) {
	e := newTestEnv(t)

	resp := e.post(t, "/api/receipts", ferryTix)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	got := decode[ReceiptResponse](t, resp)
	if got.Width != 384 || got.Height != 252 || got.Elements != 3 {
		t.Fatalf("response = %+v, want 384x252 with 3 elements", got)
	}
	if got.ImageURL != "/receipts/"+got.ID+".png" {
		t.Fatalf("image_url = %q", got.ImageURL)
	}

	job := waitJobStatus(t, got.ID, string(output.JobDryRun))
	if job.Source != ferryTix {
		t.Fatalf("stored source = %q, want the request body", job.Source)
	}

	img := e.get(t, got.ImageURL)
	if img.StatusCode != http.StatusOK {
		t.Fatalf("image status = %d, want 200", img.StatusCode)
	}
	cfg, err := png.DecodeConfig(img.Body)
	if err != nil {
		t.Fatalf("image is not a PNG: %v", err)
	}
	if cfg.Width != 384 || cfg.Height != 252 {
		t.Fatalf("image size = %dx%d, want 384x252", cfg.Width, cfg.Height)
	}
}

func TestCreateReceiptErrors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantClass string
	}{
		{"unknown tag", "- barcode: 123\n", http.StatusBadRequest, "config"},
		{"unknown field", "- title: a\n  size: 3\n", http.StatusBadRequest, "config"},
		{"degenerate table", "- table: {columns: [only]}\n", http.StatusBadRequest, "layout"},
		{"missing picture", "- picture: /nonexistent/logo.png\n", http.StatusUnprocessableEntity, "resource"},
		{"empty", "", http.StatusBadRequest, "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.post(t, "/api/receipts", tt.body)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			got := decode[ErrorResponse](t, resp)
			if got.Class != tt.wantClass {
				t.Fatalf("class = %q, want %q (%s)", got.Class, tt.wantClass, got.Error)
			}
		})
	}

	// nothing reached the archive or the history
	if n := len(e.store.Recent(0)); n != 0 {
		t.Fatalf("archived receipts = %d, want 0", n)
	}
	jobs, err := localdb.GetPrintJobs(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Fatalf("history rows = %d, want 0", len(jobs))
	}
}

func TestPreview(t *testing.T) {
	e := newTestEnv(t)

	resp := e.post(t, "/api/receipts/preview", ferryTix)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q, want image/png", ct)
	}
	if h := resp.Header.Get("X-Receipt-Height"); h != "252" {
		t.Fatalf("X-Receipt-Height = %q, want 252", h)
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatalf("preview is not a PNG: %v", err)
	}
	if cfg.Height != 252 {
		t.Fatalf("preview height = %d, want 252", cfg.Height)
	}
	if n := len(e.store.Recent(0)); n != 0 {
		t.Fatalf("preview archived %d receipts, want 0", n)
	}
}

func TestReceiptImageNotFound(t *testing.T) {
	e := newTestEnv(t)

	if resp := e.get(t, "/receipts/nope.png"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if resp := e.get(t, "/receipts/nope.jpg"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListAndReprint(t *testing.T) {
	e := newTestEnv(t)

	first := decode[ReceiptResponse](t, e.post(t, "/api/receipts", ferryTix))
	waitJobStatus(t, first.ID, string(output.JobDryRun))

	list := decode[struct {
		Jobs  []localdb.PrintJob `json:"jobs"`
		Count int                `json:"count"`
	}](t, e.get(t, "/api/receipts?limit=10"))
	if list.Count != 1 || list.Jobs[0].ID != first.ID {
		t.Fatalf("history = %+v, want the one receipt", list)
	}

	detail := decode[localdb.PrintJob](t, e.get(t, "/api/receipts/"+first.ID))
	if detail.Source != ferryTix {
		t.Fatalf("detail source = %q", detail.Source)
	}

	// reprint forces past dry-run and hits the missing printer
	resp := e.post(t, "/api/receipts/"+first.ID+"/reprint", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reprint status = %d, want 201", resp.StatusCode)
	}
	second := decode[ReceiptResponse](t, resp)
	if second.ID == first.ID {
		t.Fatal("reprint reused the original id")
	}
	job := waitJobStatus(t, second.ID, string(output.JobFailed))
	if !strings.Contains(job.Error, "no printer attached") {
		t.Fatalf("job error = %q", job.Error)
	}

	if resp := e.get(t, "/api/receipts/unknown"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown receipt status = %d, want 404", resp.StatusCode)
	}
}

func TestPrinterStatus(t *testing.T) {
	e := newTestEnv(t)

	got := decode[PrinterStatusResponse](t, e.get(t, "/api/printer/status"))
	if got.PageWidth != 384 {
		t.Fatalf("page_width = %d, want 384", got.PageWidth)
	}
	if got.QueueSize != 0 {
		t.Fatalf("queue_size = %d, want 0", got.QueueSize)
	}
}

func TestLogs(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/api/logs?limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[map[string]interface{}](t, resp)
	if _, ok := got["logs"]; !ok {
		t.Fatalf("response %v has no logs", got)
	}

	req, _ := http.NewRequest(http.MethodDelete, e.http.URL+"/api/logs/clear", nil)
	clear, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	clear.Body.Close()
	if clear.StatusCode != http.StatusOK {
		t.Fatalf("clear status = %d, want 200", clear.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodOptions, e.http.URL+"/api/receipts", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestEventsWebSocket(t *testing.T) {
	e := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/api/events?clientId=test"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello WSMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if hello.Type != "connected" {
		t.Fatalf("first message type = %q, want connected", hello.Type)
	}

	created := decode[ReceiptResponse](t, e.post(t, "/api/receipts", ferryTix))

	seen := map[string]bool{}
	for !seen["receipt_queued"] || !seen["print_job_finished"] {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON failed after %v: %v", seen, err)
		}
		seen[msg.Type] = true

		if msg.Type == "receipt_queued" {
			var data ReceiptResponse
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				t.Fatal(err)
			}
			if data.ID != created.ID {
				t.Fatalf("queued id = %q, want %q", data.ID, created.ID)
			}
		}
	}
}

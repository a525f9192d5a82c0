package output

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ferrytix/receipt-printer/internal/env"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/ferrytix/receipt-printer/internal/status"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when a job cannot be buffered.
var ErrQueueFull = errors.New("print queue is full")

// ErrQueueStopped is returned for jobs enqueued before InitializePrinter.
var ErrQueueStopped = errors.New("print queue not running")

// PrintJob is one finished receipt raster waiting for the printer.
type PrintJob struct {
	ID    string
	Image image.Image
	Force bool // Force print even in dry-run mode
}

// JobStatus is the outcome of a print job.
type JobStatus string

const (
	JobPrinted JobStatus = "printed"
	JobDryRun  JobStatus = "dry_run"
	JobFailed  JobStatus = "failed"
)

// JobResult is reported once per job after it leaves the queue.
type JobResult struct {
	JobID    string
	Status   JobStatus
	Printer  PrinterType
	Attempts int
	Err      error
	Finished time.Time
}

// BackendFactory creates a fresh backend for every attempt.
type BackendFactory func() (PrinterBackend, error)

// QueueConfig configures a Queue. Zero values fall back to the defaults
// used by the server.
type QueueConfig struct {
	Size        int
	RetryDelay  time.Duration
	MaxAttempts int // 0 retries until the job prints
	NewBackend  BackendFactory
	DryRun      func() bool
}

// Queue drains print jobs one at a time.
//
// STRATEGY: Connect-Print-Disconnect for every job. A fresh connection per
// receipt avoids stale printer state between jobs.
type Queue struct {
	cfg  QueueConfig
	jobs chan PrintJob

	printerMu sync.Mutex

	mu        sync.Mutex
	lastPrint time.Time
	callbacks []func(JobResult)
}

func NewQueue(cfg QueueConfig) *Queue {
	if cfg.Size <= 0 {
		cfg.Size = 1000
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.NewBackend == nil {
		cfg.NewBackend = createPrinterBackend
	}
	if cfg.DryRun == nil {
		cfg.DryRun = shouldUseDryRun
	}
	return &Queue{cfg: cfg, jobs: make(chan PrintJob, cfg.Size)}
}

// Enqueue adds a job without blocking.
func (q *Queue) Enqueue(job PrintJob) error {
	select {
	case q.jobs <- job:
		logger.Debug("Print job queued", zap.String("id", job.ID), zap.Int("queued", len(q.jobs)))
		return nil
	default:
		logger.Error("Print queue is full, dropping job", zap.String("id", job.ID))
		return ErrQueueFull
	}
}

// OnJobFinished registers a callback for every job result.
func (q *Queue) OnJobFinished(cb func(JobResult)) {
	q.mu.Lock()
	q.callbacks = append(q.callbacks, cb)
	q.mu.Unlock()
}

// Len returns the number of waiting jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// LastPrintTime is when the last job left the queue successfully.
func (q *Queue) LastPrintTime() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastPrint
}

// Run processes jobs until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.finish(q.process(ctx, job))
		}
	}
}

func (q *Queue) process(ctx context.Context, job PrintJob) JobResult {
	res := JobResult{JobID: job.ID}
	for {
		res.Attempts++
		err := q.attempt(job, &res)
		if err == nil {
			return res
		}

		logger.Error("Print attempt failed",
			zap.String("id", job.ID),
			zap.Int("attempt", res.Attempts),
			zap.Error(err))
		res.Err = err

		if q.cfg.MaxAttempts > 0 && res.Attempts >= q.cfg.MaxAttempts {
			res.Status = JobFailed
			return res
		}

		select {
		case <-ctx.Done():
			res.Status = JobFailed
			res.Err = fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
			return res
		case <-time.After(q.cfg.RetryDelay):
		}
	}
}

// attempt runs one connect-print-disconnect cycle.
func (q *Queue) attempt(job PrintJob, res *JobResult) error {
	q.printerMu.Lock()
	defer q.printerMu.Unlock()

	// 1. Dry-run チェック（デバイスに触れない）
	if !job.Force && q.cfg.DryRun() {
		logger.Info("Dry-run mode: skipping actual printing", zap.String("id", job.ID))
		res.Status = JobDryRun
		res.Err = nil
		return nil
	}

	// 2. プリンターバックエンド作成
	backend, err := q.cfg.NewBackend()
	if err != nil {
		return fmt.Errorf("failed to create printer backend: %w", err)
	}
	res.Printer = backend.Type()

	// 3. 接続
	if err := backend.Connect(); err != nil {
		status.SetPrinterConnected(false)
		backend.Disconnect()
		return fmt.Errorf("failed to connect printer: %w", err)
	}
	status.SetPrinterConnected(true)
	defer backend.Disconnect()

	// 4. 印刷実行
	if err := backend.Print(job.Image); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}
	logger.Info("Print job completed",
		zap.String("id", job.ID),
		zap.String("type", string(backend.Type())))
	res.Status = JobPrinted
	res.Err = nil
	return nil
}

func (q *Queue) finish(res JobResult) {
	res.Finished = time.Now()

	q.mu.Lock()
	if res.Status != JobFailed {
		q.lastPrint = res.Finished
	}
	callbacks := make([]func(JobResult), len(q.callbacks))
	copy(callbacks, q.callbacks)
	q.mu.Unlock()

	for _, cb := range callbacks {
		cb(res)
	}
}

// shouldUseDryRun reports whether the device should be skipped.
func shouldUseDryRun() bool {
	return env.Value.DryRunMode
}

// ConfigFromEnv builds a PrinterConfig from env.Value.
func ConfigFromEnv() PrinterConfig {
	return PrinterConfig{
		Type:             PrinterType(env.Value.PrinterType),
		DevicePath:       env.Value.PrinterDevice,
		BluetoothAddress: getStringValue(env.Value.PrinterAddress),
		BestQuality:      env.Value.BestQuality,
		AutoRotate:       env.Value.AutoRotate,
		BlackPoint:       env.Value.BlackPoint,
		USBPrinterName:   env.Value.USBPrinterName,
		Dither:           env.Value.Dither,
		RotatePrint:      env.Value.RotatePrint,
	}
}

// createPrinterBackend は現在の設定からプリンターバックエンドを作成
func createPrinterBackend() (PrinterBackend, error) {
	return NewBackend(ConfigFromEnv())
}

// NewBackend creates the backend selected by config.Type.
func NewBackend(config PrinterConfig) (PrinterBackend, error) {
	switch config.Type {
	case PrinterTypeESCPOS:
		return NewESCPOSPrinter(config)
	case PrinterTypeBluetooth:
		return NewBluetoothPrinter(config)
	case PrinterTypeUSB:
		return NewUSBPrinter(config)
	default:
		return nil, fmt.Errorf("unknown printer type: %q", config.Type)
	}
}

func getStringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

// PrintDirect prints one raster synchronously, bypassing the queue.
func PrintDirect(config PrinterConfig, img image.Image) error {
	backend, err := NewBackend(config)
	if err != nil {
		return err
	}
	if err := backend.Connect(); err != nil {
		return err
	}
	defer backend.Disconnect()
	return backend.Print(img)
}

var (
	defaultMu    sync.RWMutex
	defaultQueue *Queue
)

// InitializePrinter starts the process-wide print queue.
// This should be called from main() after env.Value is loaded.
func InitializePrinter(ctx context.Context) *Queue {
	q := NewQueue(QueueConfig{})

	defaultMu.Lock()
	defaultQueue = q
	defaultMu.Unlock()

	logger.Info("Printer subsystem initialized",
		zap.String("type", env.Value.PrinterType),
		zap.Bool("dry_run", env.Value.DryRunMode))
	go q.Run(ctx)
	return q
}

// PrintOut queues a finished receipt on the process-wide queue.
func PrintOut(id string, img image.Image, force bool) error {
	defaultMu.RLock()
	q := defaultQueue
	defaultMu.RUnlock()
	if q == nil {
		return ErrQueueStopped
	}
	return q.Enqueue(PrintJob{ID: id, Image: img, Force: force})
}

// GetPrintQueueSize returns the current number of items in the print queue
func GetPrintQueueSize() int {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultQueue == nil {
		return 0
	}
	return defaultQueue.Len()
}

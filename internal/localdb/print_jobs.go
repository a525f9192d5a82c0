package localdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"go.uber.org/zap"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("print job not found")

// PrintJob is one row of the print history.
type PrintJob struct {
	ID         string     `json:"id"`
	Source     string     `json:"source,omitempty"`
	Elements   int        `json:"elements"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Status     string     `json:"status"`
	Printer    string     `json:"printer,omitempty"`
	Attempts   int        `json:"attempts"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

const jobColumns = `id, source, elements, width, height, status, printer, attempts, error, created_at, finished_at`

// InsertPrintJob records a freshly rendered receipt.
func InsertPrintJob(job PrintJob) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	if job.Status == "" {
		job.Status = "queued"
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	_, err := db.Exec(
		`INSERT INTO print_jobs (id, source, elements, width, height, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Source, job.Elements, job.Width, job.Height, job.Status, job.CreatedAt.UTC(),
	)
	if err != nil {
		logger.Error("Failed to insert print job", zap.String("id", job.ID), zap.Error(err))
		return fmt.Errorf("failed to insert print job: %w", err)
	}
	return nil
}

// FinishPrintJob stores the outcome reported by the print queue.
func FinishPrintJob(id, status, printer string, attempts int, errMsg string, finishedAt time.Time) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	res, err := db.Exec(
		`UPDATE print_jobs SET status = ?, printer = ?, attempts = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, printer, attempts, errMsg, finishedAt.UTC(), id,
	)
	if err != nil {
		logger.Error("Failed to update print job", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update print job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// GetPrintJob returns one job including its source definition.
func GetPrintJob(id string) (*PrintJob, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	row := db.QueryRow(`SELECT `+jobColumns+` FROM print_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return job, nil
}

// GetPrintJobs returns up to limit jobs, newest first, without sources.
func GetPrintJobs(limit int) ([]PrintJob, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`SELECT `+jobColumns+` FROM print_jobs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		logger.Error("Failed to list print jobs", zap.Error(err))
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	jobs := []PrintJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			logger.Error("Failed to scan print job", zap.Error(err))
			continue
		}
		job.Source = ""
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// CountPrintJobs returns the number of jobs per status.
func CountPrintJobs() (map[string]int, error) {
	db := GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(`SELECT status, COUNT(*) FROM print_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count print jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*PrintJob, error) {
	var (
		job      PrintJob
		finished sql.NullTime
	)
	err := s.Scan(&job.ID, &job.Source, &job.Elements, &job.Width, &job.Height,
		&job.Status, &job.Printer, &job.Attempts, &job.Error, &job.CreatedAt, &finished)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

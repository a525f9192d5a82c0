package localdb

import (
	"database/sql"
	"fmt"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var DBClient *sql.DB

// SetupDB opens (and migrates) the sqlite database. Repeated calls return
// the already open client.
func SetupDB(dbPath string) (*sql.DB, error) {
	if DBClient != nil {
		return DBClient, nil
	}

	// WALモードとBusy Timeoutを設定（Race Condition対策）
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLiteは単一ライターなので接続プールを1に制限
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS print_jobs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL DEFAULT '',
		elements INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'queued',
		printer TEXT NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create print_jobs: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_print_jobs_created_at ON print_jobs(created_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create print_jobs index: %w", err)
	}

	DBClient = db
	logger.Info("Database ready", zap.String("path", dbPath))
	return db, nil
}

func GetDB() *sql.DB {
	return DBClient
}

// Close closes the global client.
func Close() error {
	if DBClient == nil {
		return nil
	}
	err := DBClient.Close()
	DBClient = nil
	return err
}

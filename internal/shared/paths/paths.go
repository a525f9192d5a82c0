package paths

import (
	"os"
	"path/filepath"
)

var dataDir string

// SetDataDir overrides the data directory (DATA_DIR, tests).
func SetDataDir(dir string) {
	dataDir = dir
}

// GetDataDir returns the application data directory.
// Defaults to ~/.receipt-printer, falling back to the working directory.
func GetDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".receipt-printer")
	}
	return filepath.Join(home, ".receipt-printer")
}

// GetOutputDir is where rendered receipts are archived.
func GetOutputDir() string {
	return filepath.Join(GetDataDir(), "output")
}

// GetDBPath returns the sqlite database path.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "local.db")
}

// EnsureDataDirs creates the data and output directories.
func EnsureDataDirs() error {
	for _, dir := range []string{GetDataDir(), GetOutputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

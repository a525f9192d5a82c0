package logger

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEntry is one captured log line, kept for the log API and websocket stream.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

const logBufferSize = 1000

var (
	log *zap.Logger = zap.NewNop()

	bufMu             sync.RWMutex
	logBuffer         []LogEntry
	broadcastCallback func(LogEntry)
)

// Init (re)builds the global logger. debug switches to the development config.
func Init(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1), zap.Hooks(captureEntry))
	if err != nil {
		// fall back to an example logger so callers never see a nil logger
		l = zap.NewExample()
	}
	log = l
}

// Sync flushes buffered log entries.
func Sync() {
	_ = log.Sync()
}

// SetBroadcastCallback registers a function called for every captured entry.
func SetBroadcastCallback(cb func(LogEntry)) {
	bufMu.Lock()
	broadcastCallback = cb
	bufMu.Unlock()
}

// GetLogBuffer returns up to limit of the most recent entries, oldest first.
func GetLogBuffer(limit int) []LogEntry {
	bufMu.RLock()
	defer bufMu.RUnlock()

	start := 0
	if limit > 0 && limit < len(logBuffer) {
		start = len(logBuffer) - limit
	}
	out := make([]LogEntry, len(logBuffer)-start)
	copy(out, logBuffer[start:])
	return out
}

// ClearLogBuffer drops all captured entries.
func ClearLogBuffer() {
	bufMu.Lock()
	logBuffer = nil
	bufMu.Unlock()
}

func captureEntry(e zapcore.Entry) error {
	entry := LogEntry{
		Timestamp: e.Time,
		Level:     e.Level.String(),
		Message:   e.Message,
	}

	bufMu.Lock()
	logBuffer = append(logBuffer, entry)
	if len(logBuffer) > logBufferSize {
		logBuffer = logBuffer[len(logBuffer)-logBufferSize:]
	}
	cb := broadcastCallback
	bufMu.Unlock()

	if cb != nil {
		cb(entry)
	}
	return nil
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

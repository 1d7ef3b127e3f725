// Package obslog implements the engine's structured per-bar logging.
// Adapted from the teacher's internal/logger/file_logger.go: the same
// file-per-symbol-per-day layout and level enum are kept, but entries
// carry an explicit field map instead of a free-form message, so a
// "skipped bar" or "hard stop fired" event can be read back
// mechanically by a reporter or an operator grepping the log.
package obslog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level mirrors the teacher's LogLevel enum, narrowed to what the
// engine itself emits (no STRATEGY/EXCHANGE levels — those belong to
// the execution collaborator, out of the core's scope).
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelTrade Level = "TRADE"
)

// Logger writes one line per event to a per-symbol log file named with
// the date on which it was opened; it does not roll over to a new file
// when the date changes.
type Logger struct {
	symbol string
	file   *os.File
	out    *log.Logger
	mu     sync.Mutex
}

// New creates a Logger writing under logDir/<symbol>_<date>.log.
func New(logDir, symbol string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("obslog: create log dir: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.log", symbol, time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("obslog: open log file: %w", err)
	}
	return &Logger{symbol: symbol, file: f, out: log.New(f, "", 0)}, nil
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	return l.file.Close()
}

// Event writes one structured entry.
func (l *Logger) Event(level Level, component, message string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s: %s", time.Now().UTC().Format(time.RFC3339), level, component, message)
	for k, v := range fields {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	l.out.Println(b.String())
}

func (l *Logger) Info(component, message string, fields map[string]any) {
	l.Event(LevelInfo, component, message, fields)
}

func (l *Logger) Warn(component, message string, fields map[string]any) {
	l.Event(LevelWarn, component, message, fields)
}

func (l *Logger) Error(component, message string, fields map[string]any) {
	l.Event(LevelError, component, message, fields)
}

func (l *Logger) Trade(component, message string, fields map[string]any) {
	l.Event(LevelTrade, component, message, fields)
}

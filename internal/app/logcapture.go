package app

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2/data/binding"
)

// logCapture keeps the most recent log lines and mirrors them into a string
// binding. It is used as an extra zap sink for the log pane.
type logCapture struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	binding binding.String
}

func newLogCapture(b binding.String, limit int) *logCapture {
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if l.limit > 0 && len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	if l.binding != nil {
		_ = l.binding.Set(strings.Join(l.lines, "\n"))
	}
	return len(p), nil
}

// Sync satisfies zapcore.WriteSyncer.
func (l *logCapture) Sync() error { return nil }

func (l *logCapture) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

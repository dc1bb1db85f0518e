// Package logging sets up the structured logger shared by every TermDesk
// component and the in-memory buffer behind the log viewer overlay.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"charm.land/log/v2"
)

// Options configures New.
type Options struct {
	// Dir is where termdesk.log is written. Empty disables the file.
	Dir string
	// Debug lowers the level to debug.
	Debug bool
	// RingSize bounds the in-memory buffer.
	RingSize int
}

// Logger bundles the logger with the resources it owns.
type Logger struct {
	*log.Logger
	Ring *Ring
	file *os.File
}

// New creates a logger that writes to the log file and the ring buffer.
// The terminal itself is never written to since the desktop owns the screen.
func New(opts Options) (*Logger, error) {
	ring := NewRing(opts.RingSize)
	writers := []io.Writer{ring}

	var file *os.File
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, "termdesk.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(io.MultiWriter(writers...), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})

	return &Logger{Logger: logger, Ring: ring, file: file}, nil
}

// Discard returns a logger that drops everything except the ring buffer.
// Used by tests and ephemeral sessions.
func Discard() *Logger {
	ring := NewRing(0)
	return &Logger{
		Logger: log.NewWithOptions(ring, log.Options{Level: log.DebugLevel}),
		Ring:   ring,
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Ring is a bounded, concurrency-safe line buffer.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	max     int
	partial []byte
}

const defaultRingSize = 500

// NewRing creates a ring that keeps at most size lines.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Ring{max: size}
}

// Write implements io.Writer, splitting input into lines.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := append(r.partial, p...)
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		r.lines = append(r.lines, string(data[:idx]))
		data = data[idx+1:]
	}
	r.partial = append([]byte(nil), data...)

	if over := len(r.lines) - r.max; over > 0 {
		r.lines = append([]string(nil), r.lines[over:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Len returns the number of buffered lines.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

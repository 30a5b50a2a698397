// Package logging provides structured JSON logging for slidegen components.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event represents a structured log event
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     Level                  `json:"level"`
	Component string                 `json:"component"`
	Event     string                 `json:"event"`
	JobID     string                 `json:"job_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Duration  int64                  `json:"duration_ms,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

var (
	outMu sync.Mutex
	out   io.Writer = os.Stderr

	// debugEnabled gates debug-level events globally. Atomic because
	// loggers run on poller and debouncer goroutines.
	debugEnabled atomic.Bool
)

// SetOutput redirects log output (for testing).
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

// SetDebug enables or disables debug-level events.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// Logger provides structured logging scoped to a component.
type Logger struct {
	component string
	jobID     string
	userID    string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component}
}

// WithJob sets the job context
func (l *Logger) WithJob(jobID string) *Logger {
	return &Logger{component: l.component, jobID: jobID, userID: l.userID}
}

// WithUser sets the user context
func (l *Logger) WithUser(userID string) *Logger {
	return &Logger{component: l.component, jobID: l.jobID, userID: userID}
}

// log emits a structured log event
func (l *Logger) log(level Level, event string, extra map[string]interface{}, err error) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: l.component,
		Event:     event,
		JobID:     l.jobID,
		UserID:    l.userID,
		Extra:     extra,
	}

	if err != nil {
		e.Error = err.Error()
	}

	data, _ := json.Marshal(e)
	outMu.Lock()
	fmt.Fprintln(out, string(data))
	outMu.Unlock()
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]interface{}) {
	if !debugEnabled.Load() {
		return
	}
	l.log(LevelDebug, event, extra, nil)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]interface{}) {
	l.log(LevelInfo, event, extra, nil)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]interface{}, err error) {
	l.log(LevelWarn, event, extra, err)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]interface{}, err error) {
	l.log(LevelError, event, extra, err)
}

// TimedEvent logs an info event with the elapsed duration since start.
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]interface{}) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     LevelInfo,
		Component: l.component,
		Event:     event,
		JobID:     l.jobID,
		UserID:    l.userID,
		Duration:  time.Since(start).Milliseconds(),
		Extra:     extra,
	}

	data, _ := json.Marshal(e)
	outMu.Lock()
	fmt.Fprintln(out, string(data))
	outMu.Unlock()
}

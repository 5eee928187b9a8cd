package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventLoad   EventType = "load"
	EventFill   EventType = "fill"
	EventSink   EventType = "sink"
	EventReport EventType = "report"
	EventAudit  EventType = "audit"
	EventError  EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in a pipeline or report run
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	RunID     string            `json:"run_id,omitempty"`
	TrackID   int64             `json:"track_id,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level.
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogLoad logs a CSV import event
func (l *EventLogger) LogLoad(table string, rows int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventLoad,
		Subject: table,
		Rows:    rows,
	})
}

// LogFill logs a composer fill event
func (l *EventLogger) LogFill(trackID int64, name, composer string) error {
	return l.Log(&Event{
		Level:   LevelDebug,
		Event:   EventFill,
		TrackID: trackID,
		Subject: name,
		Extra: map[string]string{
			"composer": composer,
		},
	})
}

// LogSink logs a staging replace event
func (l *EventLogger) LogSink(runID, mode string, rows int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventSink,
		RunID:   runID,
		Subject: mode,
		Rows:    rows,
	})
}

// LogReport logs a report generation event
func (l *EventLogger) LogReport(name string, rows int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventReport,
		Subject: name,
		Rows:    rows,
	})
}

// LogAudit logs a data-quality audit event
func (l *EventLogger) LogAudit(subject string, rows int) error {
	level := LevelInfo
	if rows > 0 {
		level = LevelWarning
	}
	return l.Log(&Event{
		Level:   level,
		Event:   EventAudit,
		Subject: subject,
		Rows:    rows,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, subject string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   event,
		Subject: subject,
		Error:   err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}

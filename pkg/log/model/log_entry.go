package model

import (
	"fmt"
	"time"
)

// LogEntry is one parsed line from a robot log. RawLine always holds the
// original text, even when the line did not match any known format.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Node      string    `json:"node"`
	Message   string    `json:"message"`
	RawLine   string    `json:"raw_line"`
}

const (
	DebugLevel    = "DEBUG"
	InfoLevel     = "INFO"
	WarnLevel     = "WARN"
	ErrorLevel    = "ERROR"
	FatalLevel    = "FATAL"
	CriticalLevel = "CRITICAL"
)

// UnknownNode is used when a line carries no node identifier.
const UnknownNode = "unknown"

// IsError reports whether the entry's level alone marks it as an error.
func (le LogEntry) IsError() bool {
	switch le.Level {
	case ErrorLevel, FatalLevel, CriticalLevel:
		return true
	}
	return false
}

// IsWarning reports whether the entry's level alone marks it as a warning.
func (le LogEntry) IsWarning() bool {
	return le.Level == WarnLevel
}

func (le LogEntry) String() string {
	return fmt.Sprintf("[%s] [%s] %s", le.Level, le.Node, le.Message)
}

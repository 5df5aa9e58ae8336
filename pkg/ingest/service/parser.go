package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/vigil-robotics/vigil/pkg/log/model"
)

const (
	timestampLayoutMicros = "2006-01-02 15:04:05.999999"
	timestampLayout       = "2006-01-02 15:04:05"
)

// fullLinePattern matches "[LEVEL] [YYYY-MM-DD HH:MM:SS(.ffffff)] [NODE]: MESSAGE"
// with the node group optional.
var fullLinePattern = regexp.MustCompile(
	`^\[(\w+)\]\s+\[(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}(?:\.\d+)?)\](?:\s+\[([^\]]+)\])?\s*:\s*(.+)$`,
)

// simpleLinePattern matches "[LEVEL] [X]: MESSAGE" where X is either a node
// path or a bare timestamp.
var simpleLinePattern = regexp.MustCompile(
	`^\[(\w+)\]\s*\[([^\]]+)\]\s*:\s*(.+)$`,
)

// LogParser turns raw log lines into LogEntry values. Parsing is total: any
// non-empty line yields exactly one entry, falling back to an INFO entry
// whose message is the whole line.
type LogParser struct {
	now func() time.Time
}

func NewLogParser() *LogParser {
	return &LogParser{now: time.Now}
}

// Parse converts a single newline-stripped line into a LogEntry.
func (lp *LogParser) Parse(line string) model.LogEntry {
	if match := fullLinePattern.FindStringSubmatch(line); match != nil {
		node := match[3]
		if node == "" {
			node = model.UnknownNode
		}
		return model.LogEntry{
			Timestamp: lp.parseTimestamp(match[2]),
			Level:     strings.ToUpper(match[1]),
			Node:      node,
			Message:   strings.TrimSpace(match[4]),
			RawLine:   line,
		}
	}

	if match := simpleLinePattern.FindStringSubmatch(line); match != nil {
		nodeOrTime := match[2]
		node := model.UnknownNode
		timestamp := lp.now()
		if strings.Contains(nodeOrTime, "/") {
			node = nodeOrTime
		} else if ts, err := time.Parse(timestampLayoutMicros, nodeOrTime); err == nil {
			timestamp = ts
		}
		return model.LogEntry{
			Timestamp: timestamp,
			Level:     strings.ToUpper(match[1]),
			Node:      node,
			Message:   strings.TrimSpace(match[3]),
			RawLine:   line,
		}
	}

	return model.LogEntry{
		Timestamp: lp.now(),
		Level:     model.InfoLevel,
		Node:      model.UnknownNode,
		Message:   line,
		RawLine:   line,
	}
}

func (lp *LogParser) parseTimestamp(value string) time.Time {
	if ts, err := time.Parse(timestampLayoutMicros, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(timestampLayout, value); err == nil {
		return ts
	}
	return lp.now()
}

package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/vigil-robotics/vigil/pkg/log/model"
	"go.uber.org/zap"
)

const entryQueueSize = 1024

// Tailer watches a growing log file and emits parsed entries in file order
// on its entries channel. The byte offset cursor is owned exclusively by the
// tailer's goroutine; a shrinking file is treated as truncation and the
// cursor resets to the start.
type Tailer struct {
	path    string
	parser  *LogParser
	entries chan model.LogEntry
	logger  *zap.Logger

	offset  int64
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewTailer(path string, parser *LogParser, logger *zap.Logger) *Tailer {
	return &Tailer{
		path:    filepath.Clean(path),
		parser:  parser,
		entries: make(chan model.LogEntry, entryQueueSize),
		logger:  logger,
	}
}

// Entries is the channel of parsed log entries. It is closed by Stop.
func (t *Tailer) Entries() <-chan model.LogEntry {
	return t.entries
}

// Start creates the file if needed, loads its existing content and begins
// watching for appended lines.
func (t *Tailer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", t.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close log file %s: %w", t.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.watcher = watcher
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true
	go t.watchLoop(ctx, watcher, t.done)

	t.logger.Info("Tailer started", zap.String("path", t.path))
	return nil
}

// Stop cancels the watch loop, closes the watcher and closes the entries
// channel. Safe to call multiple times and before Start.
func (t *Tailer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	watcher := t.watcher
	done := t.done
	t.cancel = nil
	t.watcher = nil
	t.running = false
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			t.logger.Error("Failed to close file watcher", zap.Error(err))
		}
	}
	<-done
	close(t.entries)
	t.logger.Info("Tailer stopped")
}

func (t *Tailer) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	// Initial load of whatever the file already contains.
	t.readNewLines(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != t.path {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				t.offset = 0
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				t.readNewLines(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			t.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (t *Tailer) readNewLines(ctx context.Context) {
	info, err := os.Stat(t.path)
	if err != nil {
		return
	}
	if info.Size() < t.offset {
		// Truncated underneath us; start over from the top.
		t.offset = 0
	}
	if info.Size() == t.offset {
		return
	}

	file, err := os.Open(t.path)
	if err != nil {
		t.logger.Error("Failed to open log file for reading", zap.Error(err))
		return
	}
	defer file.Close()

	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		t.logger.Error("Failed to seek to tail offset", zap.Error(err))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		t.logger.Error("Failed to read appended log data", zap.Error(err))
		return
	}
	t.offset += int64(len(data))

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		select {
		case t.entries <- t.parser.Parse(line):
		case <-ctx.Done():
			return
		}
	}
}

package service

import (
	"context"
	"sync"
	"time"

	detectModel "github.com/vigil-robotics/vigil/pkg/detect/model"
	detectService "github.com/vigil-robotics/vigil/pkg/detect/service"
	"github.com/vigil-robotics/vigil/pkg/log/model"
	"go.uber.org/zap"
)

// flushCheckInterval is how often the background loop re-evaluates the flush
// conditions, independent of the configured flush timeout.
const flushCheckInterval = 5 * time.Second

// Params configures a ContextEngine. Callbacks are optional; they are always
// invoked outside the engine's critical section and panics inside them are
// recovered and logged, never propagated.
type Params struct {
	WindowSize      int
	ErrorWindowSize int
	FlushTimeout    time.Duration
	CheckInterval   time.Duration
	OnFlush         func(batch []model.LogEntry)
	OnErrorContext  func(batch []model.LogEntry)
	OnErrorDetected func(entry model.LogEntry, result detectModel.DetectionResult)
}

// EngineStats is a point-in-time snapshot of the engine's buffer state.
type EngineStats struct {
	BufferSize    int       `json:"buffer_size"`
	WindowSize    int       `json:"window_size"`
	LastFlushTime time.Time `json:"last_flush_time"`
}

// ContextEngine maintains the rolling context window and the error context
// window. The rolling buffer keeps the most recent WindowSize entries with
// oldest-first eviction; the error buffer is rebuilt from the rolling
// buffer's tail every time an error entry arrives. One mutex guards both
// buffers so every snapshot is consistent.
type ContextEngine struct {
	params   Params
	detector *detectService.Detector
	logger   *zap.Logger

	mu            sync.Mutex
	buffer        []model.LogEntry
	errorBuffer   []model.LogEntry
	lastFlushTime time.Time
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
}

func NewContextEngine(params Params, detector *detectService.Detector, logger *zap.Logger) *ContextEngine {
	if params.CheckInterval <= 0 {
		params.CheckInterval = flushCheckInterval
	}
	return &ContextEngine{
		params:        params,
		detector:      detector,
		logger:        logger,
		buffer:        make([]model.LogEntry, 0, params.WindowSize),
		lastFlushTime: time.Now().UTC(),
	}
}

// Add classifies the entry, appends it to the rolling buffer (evicting the
// oldest entry when full) and, for error entries, rebuilds the error context
// window and fires the error callbacks. Returns whether the entry was
// classified as an error.
func (ce *ContextEngine) Add(entry model.LogEntry) bool {
	result := ce.detector.Detect(entry)

	ce.mu.Lock()
	if len(ce.buffer) >= ce.params.WindowSize {
		copy(ce.buffer, ce.buffer[1:])
		ce.buffer = ce.buffer[:len(ce.buffer)-1]
	}
	ce.buffer = append(ce.buffer, entry)

	var errorContext []model.LogEntry
	if result.IsError {
		start := len(ce.buffer) - ce.params.ErrorWindowSize
		if start < 0 {
			start = 0
		}
		ce.errorBuffer = append([]model.LogEntry(nil), ce.buffer[start:]...)
		errorContext = append([]model.LogEntry(nil), ce.errorBuffer...)
	}
	ce.mu.Unlock()

	if result.IsError {
		ce.invokeErrorDetected(entry, result)
		ce.invokeErrorContext(errorContext)
	}
	return result.IsError
}

// GetContext returns a copy of the rolling buffer in arrival order.
func (ce *ContextEngine) GetContext() []model.LogEntry {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return append([]model.LogEntry(nil), ce.buffer...)
}

// GetErrorContext returns a copy of the error context window.
func (ce *ContextEngine) GetErrorContext() []model.LogEntry {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return append([]model.LogEntry(nil), ce.errorBuffer...)
}

// ShouldFlush reports whether the rolling buffer should be flushed. An empty
// buffer never flushes, regardless of the trigger.
func (ce *ContextEngine) ShouldFlush(triggeredByError bool) bool {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if len(ce.buffer) == 0 {
		return false
	}
	if triggeredByError {
		return true
	}
	if len(ce.buffer) >= ce.params.WindowSize {
		return true
	}
	return time.Since(ce.lastFlushTime) >= ce.params.FlushTimeout
}

// Flush atomically captures and clears the rolling buffer, resetting the
// flush clock. The error context window is untouched.
func (ce *ContextEngine) Flush() []model.LogEntry {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	captured := ce.buffer
	ce.buffer = make([]model.LogEntry, 0, ce.params.WindowSize)
	ce.lastFlushTime = time.Now().UTC()
	return captured
}

// FlushErrorContext captures and clears the error context window.
func (ce *ContextEngine) FlushErrorContext() []model.LogEntry {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	captured := ce.errorBuffer
	ce.errorBuffer = nil
	return captured
}

// Clear empties both windows without invoking any callback.
func (ce *ContextEngine) Clear() {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.buffer = ce.buffer[:0]
	ce.errorBuffer = nil
}

// Stats returns a snapshot of the engine's buffer state.
func (ce *ContextEngine) Stats() EngineStats {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return EngineStats{
		BufferSize:    len(ce.buffer),
		WindowSize:    ce.params.WindowSize,
		LastFlushTime: ce.lastFlushTime,
	}
}

// Start launches the background flush loop. Starting an already running
// engine is a no-op; a stopped engine cannot be restarted.
func (ce *ContextEngine) Start() {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if ce.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	ce.running = true
	ce.cancel = cancel
	ce.done = make(chan struct{})
	go ce.flushLoop(ctx, ce.done)
	ce.logger.Info(
		"Context engine started",
		zap.Int("windowSize", ce.params.WindowSize),
		zap.Int("errorWindowSize", ce.params.ErrorWindowSize),
		zap.Duration("flushTimeout", ce.params.FlushTimeout),
	)
}

// Stop cancels the background loop and waits for it to exit. Safe to call
// multiple times and before Start.
func (ce *ContextEngine) Stop() {
	ce.mu.Lock()
	cancel := ce.cancel
	done := ce.done
	ce.cancel = nil
	ce.running = false
	ce.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	ce.logger.Info("Context engine stopped")
}

func (ce *ContextEngine) flushLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(ce.params.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !ce.ShouldFlush(false) {
				continue
			}
			batch := ce.Flush()
			if len(batch) > 0 {
				ce.invokeFlush(batch)
			}
		}
	}
}

func (ce *ContextEngine) invokeFlush(batch []model.LogEntry) {
	if ce.params.OnFlush == nil {
		return
	}
	defer ce.recoverCallback("flush")
	ce.params.OnFlush(batch)
}

func (ce *ContextEngine) invokeErrorContext(batch []model.LogEntry) {
	if ce.params.OnErrorContext == nil {
		return
	}
	defer ce.recoverCallback("error context")
	ce.params.OnErrorContext(batch)
}

func (ce *ContextEngine) invokeErrorDetected(entry model.LogEntry, result detectModel.DetectionResult) {
	if ce.params.OnErrorDetected == nil {
		return
	}
	defer ce.recoverCallback("error detected")
	ce.params.OnErrorDetected(entry, result)
}

func (ce *ContextEngine) recoverCallback(name string) {
	if r := recover(); r != nil {
		ce.logger.Error("Recovered panic in callback", zap.String("callback", name), zap.Any("panic", r))
	}
}

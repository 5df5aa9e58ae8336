package service

import (
	"sync"

	ingestService "github.com/vigil-robotics/vigil/pkg/ingest/service"
	"github.com/vigil-robotics/vigil/pkg/log/model"
	windowService "github.com/vigil-robotics/vigil/pkg/window/service"
	"go.uber.org/zap"
)

// MonitorService ties the ingestion sources to the context engine: it drains
// the tailer's entry queue and accepts direct ingestion from stream sources
// and the HTTP surface. All paths converge on the engine's Add.
type MonitorService struct {
	parser *ingestService.LogParser
	tailer *ingestService.Tailer
	engine *windowService.ContextEngine
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewMonitorService(
	parser *ingestService.LogParser,
	tailer *ingestService.Tailer,
	engine *windowService.ContextEngine,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		parser: parser,
		tailer: tailer,
		engine: engine,
		logger: logger,
	}
}

// Start launches the engine, the tailer and the queue consumer.
func (ms *MonitorService) Start() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.running {
		return nil
	}
	ms.engine.Start()
	if err := ms.tailer.Start(); err != nil {
		ms.engine.Stop()
		return err
	}
	ms.done = make(chan struct{})
	ms.running = true
	go ms.consume(ms.done)
	ms.logger.Info("Monitor service started")
	return nil
}

// Stop shuts the pipeline down in source-first order so in-flight entries
// drain before the engine stops. Idempotent.
func (ms *MonitorService) Stop() {
	ms.mu.Lock()
	done := ms.done
	running := ms.running
	ms.done = nil
	ms.running = false
	ms.mu.Unlock()

	if !running {
		return
	}
	ms.tailer.Stop()
	if done != nil {
		<-done
	}
	ms.engine.Stop()
	ms.logger.Info("Monitor service stopped")
}

// Ingest feeds one already parsed entry into the pipeline.
func (ms *MonitorService) Ingest(entry model.LogEntry) {
	ms.engine.Add(entry)
}

// IngestLine parses and feeds one raw line, returning the parsed entry and
// whether it was classified as an error.
func (ms *MonitorService) IngestLine(line string) (model.LogEntry, bool) {
	entry := ms.parser.Parse(line)
	isError := ms.engine.Add(entry)
	return entry, isError
}

func (ms *MonitorService) consume(done chan struct{}) {
	defer close(done)
	for entry := range ms.tailer.Entries() {
		ms.engine.Add(entry)
	}
}

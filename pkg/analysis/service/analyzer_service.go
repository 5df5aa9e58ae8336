package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	analysisModel "github.com/vigil-robotics/vigil/pkg/analysis/model"
	detectModel "github.com/vigil-robotics/vigil/pkg/detect/model"
	logModel "github.com/vigil-robotics/vigil/pkg/log/model"
	"go.uber.org/zap"
)

var ErrEmptyBatch = errors.New("no log entries to analyze")

// AnalyzerStats holds monotonic analysis counters.
type AnalyzerStats struct {
	TotalAnalyses      int64 `json:"total_analyses"`
	SuccessfulAnalyses int64 `json:"successful_analyses"`
	FailedAnalyses     int64 `json:"failed_analyses"`
	CacheHits          int64 `json:"cache_hits"`
}

// Analyzer produces a root-cause report for a batch of log entries. The
// batch is typically an error context window captured by the context engine.
type Analyzer interface {
	Analyze(ctx context.Context, batch []logModel.LogEntry) (analysisModel.AnalysisResult, error)
	Stats() AnalyzerStats
}

// HeuristicAnalyzerImpl derives reports from the batch itself without any
// external service: the primary error entry determines the error type, root
// cause and corrective actions. Reports are cached by error type and node so
// a fault that keeps repeating is not re-analyzed for every occurrence.
type HeuristicAnalyzerImpl struct {
	cache  *ristretto.Cache
	logger *zap.Logger

	mu    sync.Mutex
	stats AnalyzerStats
}

func NewHeuristicAnalyzerImpl(cache *ristretto.Cache, logger *zap.Logger) *HeuristicAnalyzerImpl {
	return &HeuristicAnalyzerImpl{
		cache:  cache,
		logger: logger,
	}
}

func (ha *HeuristicAnalyzerImpl) Analyze(
	ctx context.Context,
	batch []logModel.LogEntry,
) (analysisModel.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return analysisModel.AnalysisResult{}, err
	}
	ha.mu.Lock()
	ha.stats.TotalAnalyses++
	ha.mu.Unlock()

	if len(batch) == 0 {
		ha.recordFailure()
		return analysisModel.AnalysisResult{}, ErrEmptyBatch
	}

	primary := primaryEntry(batch)
	errorType, rootCause, actions := diagnose(primary)
	cacheKey := fmt.Sprintf("%s|%s", errorType, primary.Node)

	if cached, found := ha.cache.Get(cacheKey); found {
		result, ok := cached.(analysisModel.AnalysisResult)
		if !ok {
			ha.logger.Error("Value not of type AnalysisResult returned from cache", zap.String("key", cacheKey))
		} else {
			ha.mu.Lock()
			ha.stats.CacheHits++
			ha.stats.SuccessfulAnalyses++
			ha.mu.Unlock()
			result.Id = newAnalysisId()
			result.Timestamp = time.Now().UTC()
			result.ContextLogs = batch
			return result, nil
		}
	}

	result := analysisModel.AnalysisResult{
		Id:                newAnalysisId(),
		Timestamp:         time.Now().UTC(),
		Severity:          severityFor(primary),
		ErrorType:         errorType,
		RootCause:         rootCause,
		AffectedSystems:   affectedSystems(batch, primary),
		CorrectiveActions: actions,
		Confidence:        0.75,
		ContextLogs:       batch,
	}
	ha.cache.Set(cacheKey, result, 1)

	ha.mu.Lock()
	ha.stats.SuccessfulAnalyses++
	ha.mu.Unlock()
	return result, nil
}

func (ha *HeuristicAnalyzerImpl) Stats() AnalyzerStats {
	ha.mu.Lock()
	defer ha.mu.Unlock()
	return ha.stats
}

func (ha *HeuristicAnalyzerImpl) recordFailure() {
	ha.mu.Lock()
	defer ha.mu.Unlock()
	ha.stats.FailedAnalyses++
}

// primaryEntry picks the entry the diagnosis hangs on: the last error-level
// entry, falling back to the last entry of the batch.
func primaryEntry(batch []logModel.LogEntry) logModel.LogEntry {
	for i := len(batch) - 1; i >= 0; i-- {
		if batch[i].IsError() {
			return batch[i]
		}
	}
	return batch[len(batch)-1]
}

func severityFor(primary logModel.LogEntry) detectModel.Severity {
	switch primary.Level {
	case logModel.FatalLevel, logModel.CriticalLevel:
		return detectModel.SeverityCritical
	case logModel.ErrorLevel:
		return detectModel.SeverityHigh
	default:
		return detectModel.SeverityMedium
	}
}

func diagnose(primary logModel.LogEntry) (string, string, []string) {
	message := strings.ToLower(primary.Message)
	switch {
	case strings.Contains(message, "transform"):
		return "Transform Timeout",
			"TF tree not properly initialized or transform lookup timed out",
			[]string{
				"Check TF tree with 'rosrun tf view_frames'",
				"Restart static transform publisher",
				"Verify frame IDs in configuration",
			}
	case strings.Contains(message, "plan") || strings.Contains(message, "path"):
		return "Planning Failure",
			"Navigation planner unable to find valid path to goal",
			[]string{
				"Check costmap for obstacles",
				"Verify goal is reachable",
				"Adjust planner parameters",
			}
	case strings.Contains(message, "sensor") ||
		strings.Contains(message, "laser") ||
		strings.Contains(message, "camera"):
		return "Sensor Timeout",
			"Sensor driver not publishing data or connection lost",
			[]string{
				"Check sensor connections",
				"Restart sensor driver node",
				"Verify topic is being published",
			}
	default:
		return "System Error",
			fmt.Sprintf("Error detected in %s: %s", primary.Node, primary.Message),
			[]string{
				fmt.Sprintf("Review %s logs", primary.Node),
				"Check node status with 'rosnode info'",
				"Restart the affected node",
			}
	}
}

func affectedSystems(batch []logModel.LogEntry, primary logModel.LogEntry) []string {
	seen := make(map[string]struct{})
	var systems []string
	for _, entry := range batch {
		if !entry.IsError() && !entry.IsWarning() {
			continue
		}
		if _, ok := seen[entry.Node]; ok {
			continue
		}
		seen[entry.Node] = struct{}{}
		systems = append(systems, entry.Node)
	}
	if len(systems) == 0 {
		systems = []string{primary.Node}
	}
	return systems
}

func newAnalysisId() string {
	return "analysis_" + uuid.NewString()[:8]
}

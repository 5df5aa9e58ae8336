package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analysisModel "github.com/vigil-robotics/vigil/pkg/analysis/model"
	analysisService "github.com/vigil-robotics/vigil/pkg/analysis/service"
	detectService "github.com/vigil-robotics/vigil/pkg/detect/service"
	ingestService "github.com/vigil-robotics/vigil/pkg/ingest/service"
	monitorService "github.com/vigil-robotics/vigil/pkg/monitor/service"
	windowService "github.com/vigil-robotics/vigil/pkg/window/service"
	"go.uber.org/zap"
)

type pipelineFixture struct {
	monitor  *monitorService.MonitorService
	detector *detectService.Detector
	engine   *windowService.ContextEngine
	analyzer *analysisService.HeuristicAnalyzerImpl
	store    *analysisService.ReportStore
}

func getNewPipelineFixture(t *testing.T) pipelineFixture {
	t.Helper()
	logger := zap.NewNop()
	parser := ingestService.NewLogParser()
	tailer := ingestService.NewTailer(filepath.Join(t.TempDir(), "robot.log"), parser, logger)
	detector := detectService.NewDetector(nil, nil, logger)
	engine := windowService.NewContextEngine(
		windowService.Params{WindowSize: 10, ErrorWindowSize: 3, FlushTimeout: time.Hour},
		detector,
		logger,
	)
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	require.NoError(t, err)
	return pipelineFixture{
		monitor:  monitorService.NewMonitorService(parser, tailer, engine, logger),
		detector: detector,
		engine:   engine,
		analyzer: analysisService.NewHeuristicAnalyzerImpl(cache, logger),
		store:    analysisService.NewReportStore(10),
	}
}

func TestStatsHandler(t *testing.T) {
	t.Run("Returns the pipeline's counters", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)
		fixture.monitor.IngestLine("[ERROR] [/move_base]: Transform timeout")
		fixture.monitor.IngestLine("[INFO] [/amcl]: Pose updated")

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/stats", nil)
		StatsHandler(fixture.detector, fixture.engine, fixture.analyzer, zap.NewNop())(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var res StatsResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, int64(2), res.Detection.TotalChecked)
		assert.Equal(t, int64(1), res.Detection.ErrorsDetected)
		assert.Equal(t, 2, res.Window.BufferSize)
		assert.Equal(t, 10, res.Window.WindowSize)
	})
}

func TestReportsHandler(t *testing.T) {
	t.Run("Returns stored reports newest first", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)
		fixture.store.Add(analysisModel.AnalysisResult{Id: "older", ErrorType: "System Error"})
		fixture.store.Add(analysisModel.AnalysisResult{Id: "newer", ErrorType: "Transform Timeout"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports", nil)
		ReportsHandler(fixture.store, zap.NewNop())(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var res ReportsResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res.Reports, 2)
		assert.Equal(t, "newer", res.Reports[0].Id)
		assert.Equal(t, "older", res.Reports[1].Id)
	})

	t.Run("Respects the limit query parameter", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)
		fixture.store.Add(analysisModel.AnalysisResult{Id: "a"})
		fixture.store.Add(analysisModel.AnalysisResult{Id: "b"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports?limit=1", nil)
		ReportsHandler(fixture.store, zap.NewNop())(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var res ReportsResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Len(t, res.Reports, 1)
	})

	t.Run("Rejects a malformed limit", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/reports?limit=oops", nil)
		ReportsHandler(fixture.store, zap.NewNop())(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIngestHandler(t *testing.T) {
	t.Run("Parses and classifies a submitted line", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)
		body, err := json.Marshal(IngestRequestDTO{Line: "[ERROR] [/move_base]: Transform timeout"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(body))
		IngestHandler(fixture.monitor, zap.NewNop())(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var res IngestResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.True(t, res.IsError)
		assert.Equal(t, "ERROR", res.Entry.Level)
		assert.Equal(t, "/move_base", res.Entry.Node)
		assert.Equal(t, 1, fixture.engine.Stats().BufferSize)
	})

	t.Run("Rejects an invalid JSON payload", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/ingest", bytes.NewReader([]byte("not json")))
		IngestHandler(fixture.monitor, zap.NewNop())(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejects an empty line", func(t *testing.T) {
		fixture := getNewPipelineFixture(t)
		body, err := json.Marshal(IngestRequestDTO{Line: "   "})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(body))
		IngestHandler(fixture.monitor, zap.NewNop())(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var res ErrorMessage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, ErrNoLine.Error(), res.Message)
	})
}

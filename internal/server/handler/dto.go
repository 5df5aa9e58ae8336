package handler

import (
	analysisModel "github.com/vigil-robotics/vigil/pkg/analysis/model"
	analysisService "github.com/vigil-robotics/vigil/pkg/analysis/service"
	detectService "github.com/vigil-robotics/vigil/pkg/detect/service"
	logModel "github.com/vigil-robotics/vigil/pkg/log/model"
	windowService "github.com/vigil-robotics/vigil/pkg/window/service"
)

// StatsResponseDTO is the combined observability snapshot of the pipeline.
// @swagger:model StatsResponseDTO
type StatsResponseDTO struct {
	// Classification counters
	Detection detectService.Stats `json:"detection"`
	// Context window state
	Window windowService.EngineStats `json:"window"`
	// Analysis counters
	Analysis analysisService.AnalyzerStats `json:"analysis"`
}

// IngestRequestDTO carries one raw log line for manual ingestion.
// @swagger:model IngestRequestDTO
type IngestRequestDTO struct {
	// The raw log line to ingest
	Line string `json:"line" validate:"required"`
}

// IngestResponseDTO echoes the parsed entry and its classification outcome.
// @swagger:model IngestResponseDTO
type IngestResponseDTO struct {
	// The parsed log entry
	Entry logModel.LogEntry `json:"entry"`
	// Whether the entry was classified as an error
	IsError bool `json:"is_error"`
}

// ReportsResponseDTO lists recent analysis reports, newest first.
// @swagger:model ReportsResponseDTO
type ReportsResponseDTO struct {
	// The analysis reports
	Reports []analysisModel.AnalysisResult `json:"reports"`
}

// ErrorMessage is the JSON body returned on handler failure.
// @swagger:model ErrorMessage
type ErrorMessage struct {
	Message string `json:"message"`
}

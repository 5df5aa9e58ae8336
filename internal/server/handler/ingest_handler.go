package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	monitorService "github.com/vigil-robotics/vigil/pkg/monitor/service"
	"go.uber.org/zap"
)

// IngestHandler creates a handler for manually ingesting one raw log line.
// @Summary Ingest a single raw log line into the pipeline.
// @Tags monitor
// @Accept json
// @Produce json
// @Param line body IngestRequestDTO true "The raw log line"
// @Success 200 {object} IngestResponseDTO "The parsed entry and its classification"
// @Failure 400 {object} ErrorMessage "Invalid request payload"
// @Router /ingest [post]
func IngestHandler(
	monitor *monitorService.MonitorService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IngestRequestDTO
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, "Invalid request payload", http.StatusBadRequest, logger)
			return
		}

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		line := strings.TrimSpace(req.Line)
		if line == "" {
			logger.Error("Error encountered when validating request", zap.Error(ErrNoLine))
			HttpError(w, ErrNoLine.Error(), http.StatusBadRequest, logger)
			return
		}

		entry, isError := monitor.IngestLine(line)
		res := IngestResponseDTO{Entry: entry, IsError: isError}
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(res)
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}

package handler

import (
	"encoding/json"
	"net/http"

	analysisService "github.com/vigil-robotics/vigil/pkg/analysis/service"
	detectService "github.com/vigil-robotics/vigil/pkg/detect/service"
	windowService "github.com/vigil-robotics/vigil/pkg/window/service"
	"go.uber.org/zap"
)

// StatsHandler creates a handler returning the pipeline's observability
// snapshot.
// @Summary Get detection, window and analysis statistics.
// @Tags monitor
// @Produce json
// @Success 200 {object} StatsResponseDTO "Current pipeline statistics"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /stats [get]
func StatsHandler(
	detector *detectService.Detector,
	engine *windowService.ContextEngine,
	analyzer analysisService.Analyzer,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := StatsResponseDTO{
			Detection: detector.Stats(),
			Window:    engine.Stats(),
			Analysis:  analyzer.Stats(),
		}
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(res)
		if err != nil {
			logger.Error("Error encountered when encoding stats response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}

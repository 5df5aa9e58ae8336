package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	analysisService "github.com/vigil-robotics/vigil/pkg/analysis/service"
	"go.uber.org/zap"
)

// ReportsHandler creates a handler returning recent analysis reports.
// @Summary Get recent root-cause analysis reports, newest first.
// @Tags monitor
// @Produce json
// @Param limit query int false "Maximum number of reports to return"
// @Success 200 {object} ReportsResponseDTO "Recent analysis reports"
// @Failure 400 {object} ErrorMessage "Invalid limit parameter"
// @Router /reports [get]
func ReportsHandler(
	store *analysisService.ReportStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				logger.Error("Invalid limit parameter", zap.String("limit", raw))
				HttpError(w, "Invalid limit parameter", http.StatusBadRequest, logger)
				return
			}
			limit = parsed
		}
		res := ReportsResponseDTO{Reports: store.Recent(limit)}
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(res)
		if err != nil {
			logger.Error("Error encountered when encoding reports response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}

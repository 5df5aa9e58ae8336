package router

import (
	"net/http"

	"github.com/vigil-robotics/vigil/internal/server/handler"
	analysisService "github.com/vigil-robotics/vigil/pkg/analysis/service"
	detectService "github.com/vigil-robotics/vigil/pkg/detect/service"
	monitorService "github.com/vigil-robotics/vigil/pkg/monitor/service"
	windowService "github.com/vigil-robotics/vigil/pkg/window/service"
	"go.uber.org/zap"
)
import "github.com/gorilla/mux"

func CreateRouter(
	monitor *monitorService.MonitorService,
	detector *detectService.Detector,
	engine *windowService.ContextEngine,
	analyzer analysisService.Analyzer,
	store *analysisService.ReportStore,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle(
		"/stats", handler.StatsHandler(
			detector,
			engine,
			analyzer,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/reports", handler.ReportsHandler(
			store,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/ingest", handler.IngestHandler(
			monitor,
			logger,
		),
	).Methods("POST")

	return r
}

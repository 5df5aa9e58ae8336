package model

import (
	"fmt"
	"strings"
	"time"

	detectModel "github.com/vigil-robotics/vigil/pkg/detect/model"
	logModel "github.com/vigil-robotics/vigil/pkg/log/model"
)

// AnalysisResult is the structured root-cause report produced for an error
// context batch.
type AnalysisResult struct {
	Id                string               `json:"id"`
	Timestamp         time.Time            `json:"timestamp"`
	Severity          detectModel.Severity `json:"severity"`
	ErrorType         string               `json:"error_type"`
	RootCause         string               `json:"root_cause"`
	AffectedSystems   []string             `json:"affected_systems"`
	CorrectiveActions []string             `json:"corrective_actions"`
	Confidence        float64              `json:"confidence"`
	ContextLogs       []logModel.LogEntry  `json:"context_logs"`
}

// Summary renders a short human-readable form of the report.
func (ar AnalysisResult) Summary() string {
	return fmt.Sprintf(
		"[%s] %s\nRoot Cause: %s\nConfidence: %.0f%%\nActions: %s",
		strings.ToUpper(string(ar.Severity)),
		ar.ErrorType,
		ar.RootCause,
		ar.Confidence*100,
		strings.Join(ar.CorrectiveActions, ", "),
	)
}

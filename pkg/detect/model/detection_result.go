package model

// Severity is the priority-ordered classification outcome of a log entry.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// DetectionResult is the outcome of classifying a single log entry. ErrorType
// is non-empty exactly when IsError is true; entries whose text matches no
// known category carry the "Unknown Error" sentinel.
type DetectionResult struct {
	IsError         bool     `json:"is_error"`
	IsWarning       bool     `json:"is_warning"`
	Severity        Severity `json:"severity"`
	MatchedKeywords []string `json:"matched_keywords"`
	ErrorType       string   `json:"error_type,omitempty"`
}

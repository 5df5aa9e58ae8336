package service

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/vigil-robotics/vigil/pkg/detect/model"
	logModel "github.com/vigil-robotics/vigil/pkg/log/model"
	"go.uber.org/zap"
)

// Stats holds monotonic detection counters, reset only by ResetStats.
type Stats struct {
	TotalChecked     int64 `json:"total_checked"`
	ErrorsDetected   int64 `json:"errors_detected"`
	WarningsDetected int64 `json:"warnings_detected"`
}

// Detector classifies log entries against the ordered severity and error
// type rule tables, plus caller-supplied custom keywords. Detection itself
// is stateless; only the stats counters mutate between calls.
type Detector struct {
	customErrorPatterns   []*regexp.Regexp
	customWarningPatterns []*regexp.Regexp
	logger                *zap.Logger

	mu    sync.Mutex
	stats Stats
}

func NewDetector(errorKeywords []string, warningKeywords []string, logger *zap.Logger) *Detector {
	logger.Info(
		"Creating new Detector",
		zap.Int("customErrorKeywords", len(errorKeywords)),
		zap.Int("customWarningKeywords", len(warningKeywords)),
	)
	return &Detector{
		customErrorPatterns:   compileKeywords(errorKeywords),
		customWarningPatterns: compileKeywords(warningKeywords),
		logger:                logger,
	}
}

// Detect classifies a single entry. An entry is an error when its level is
// error-class, its severity resolves to critical or high, or a custom error
// keyword matches; warnings are analogous with the medium tier. Both flags
// may be true for the same entry; downstream routing treats errors as taking
// precedence.
func (d *Detector) Detect(entry logModel.LogEntry) model.DetectionResult {
	text := fmt.Sprintf("%s %s %s", entry.Level, entry.Node, entry.Message)
	var matched []string

	severity := d.classifySeverity(entry, text)

	isError := entry.IsError() ||
		severity == model.SeverityCritical ||
		severity == model.SeverityHigh ||
		matchPatterns(text, d.customErrorPatterns, &matched)

	isWarning := entry.IsWarning() ||
		severity == model.SeverityMedium ||
		matchPatterns(text, d.customWarningPatterns, &matched)

	errorType := ""
	if isError {
		errorType = classifyErrorType(text)
	}

	if entry.IsError() {
		matched = append(matched, entry.Level)
	}

	d.mu.Lock()
	d.stats.TotalChecked++
	if isError {
		d.stats.ErrorsDetected++
	} else if isWarning {
		d.stats.WarningsDetected++
	}
	d.mu.Unlock()

	return model.DetectionResult{
		IsError:         isError,
		IsWarning:       isWarning,
		Severity:        severity,
		MatchedKeywords: dedupe(matched),
		ErrorType:       errorType,
	}
}

// ShouldAnalyze reports whether an entry warrants downstream analysis.
func (d *Detector) ShouldAnalyze(entry logModel.LogEntry) bool {
	result := d.Detect(entry)
	return result.IsError || result.IsWarning
}

// Stats returns a point-in-time copy of the detection counters.
func (d *Detector) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Detector) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = Stats{}
}

func (d *Detector) classifySeverity(entry logModel.LogEntry, text string) model.Severity {
	for _, rule := range severityRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(text) {
				return rule.severity
			}
		}
	}

	switch entry.Level {
	case logModel.FatalLevel, logModel.CriticalLevel:
		return model.SeverityCritical
	case logModel.ErrorLevel:
		return model.SeverityHigh
	case logModel.WarnLevel:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func classifyErrorType(text string) string {
	for _, rule := range errorTypeRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(text) {
				return rule.name
			}
		}
	}
	return UnknownErrorType
}

func matchPatterns(text string, patterns []*regexp.Regexp, matched *[]string) bool {
	found := false
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			*matched = append(*matched, pattern.String())
			found = true
		}
	}
	return found
}

func compileKeywords(keywords []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(keywords))
	for i, keyword := range keywords {
		compiled[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
	}
	return compiled
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	return unique
}

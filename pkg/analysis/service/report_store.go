package service

import (
	"sync"

	"github.com/vigil-robotics/vigil/pkg/analysis/model"
)

// ReportStore keeps the most recent analysis results in memory, newest
// first, capped at a fixed capacity. It backs the reports endpoint of the
// HTTP surface; nothing is persisted.
type ReportStore struct {
	capacity int

	mu      sync.Mutex
	reports []model.AnalysisResult
}

func NewReportStore(capacity int) *ReportStore {
	return &ReportStore{
		capacity: capacity,
		reports:  make([]model.AnalysisResult, 0, capacity),
	}
}

// Add inserts a report at the front, evicting the oldest when full.
func (rs *ReportStore) Add(report model.AnalysisResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.reports) >= rs.capacity {
		rs.reports = rs.reports[:rs.capacity-1]
	}
	rs.reports = append([]model.AnalysisResult{report}, rs.reports...)
}

// Recent returns up to limit reports, newest first. A non-positive limit
// returns all stored reports.
func (rs *ReportStore) Recent(limit int) []model.AnalysisResult {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if limit <= 0 || limit > len(rs.reports) {
		limit = len(rs.reports)
	}
	return append([]model.AnalysisResult(nil), rs.reports[:limit]...)
}

// Len returns the number of stored reports.
func (rs *ReportStore) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.reports)
}

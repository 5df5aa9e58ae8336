package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vigil-robotics/vigil/pkg/analysis/model"
)

func TestReportStore(t *testing.T) {
	t.Run("Returns reports newest first", func(t *testing.T) {
		store := NewReportStore(10)
		store.Add(reportWithId("first"))
		store.Add(reportWithId("second"))
		store.Add(reportWithId("third"))

		assert.Equal(t, []string{"third", "second", "first"}, idsOf(store.Recent(0)))
	})

	t.Run("Evicts the oldest report when over capacity", func(t *testing.T) {
		store := NewReportStore(2)
		store.Add(reportWithId("first"))
		store.Add(reportWithId("second"))
		store.Add(reportWithId("third"))

		assert.Equal(t, 2, store.Len())
		assert.Equal(t, []string{"third", "second"}, idsOf(store.Recent(0)))
	})

	t.Run("Limits the number of returned reports", func(t *testing.T) {
		store := NewReportStore(10)
		for i := 0; i < 5; i++ {
			store.Add(reportWithId(fmt.Sprintf("report_%d", i)))
		}

		assert.Len(t, store.Recent(2), 2)
		assert.Len(t, store.Recent(100), 5)
		assert.Len(t, store.Recent(-1), 5)
	})

	t.Run("Returns a copy that does not alias the store", func(t *testing.T) {
		store := NewReportStore(10)
		store.Add(reportWithId("original"))

		reports := store.Recent(0)
		reports[0].Id = "mutated"

		assert.Equal(t, "original", store.Recent(0)[0].Id)
	})
}

func reportWithId(id string) model.AnalysisResult {
	return model.AnalysisResult{
		Id:        id,
		Timestamp: time.Now().UTC(),
		ErrorType: "System Error",
	}
}

func idsOf(reports []model.AnalysisResult) []string {
	ids := make([]string, len(reports))
	for i, report := range reports {
		ids[i] = report.Id
	}
	return ids
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/vigil-robotics/vigil/pkg/analysis/model"
)

// ReportProducer publishes analysis reports to a Kafka topic so external
// consumers (dashboards, alerting) can subscribe without coupling to this
// process.
type ReportProducer struct {
	writer *kafka.Writer
}

func NewReportProducer(brokers []string, topic string) *ReportProducer {
	return &ReportProducer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish sends one report, keyed by error type so repeated faults land in
// the same partition.
func (rp *ReportProducer) Publish(ctx context.Context, report model.AnalysisResult) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis report: %w", err)
	}
	return rp.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.ErrorType),
		Value: payload,
	})
}

func (rp *ReportProducer) Close() error {
	return rp.writer.Close()
}

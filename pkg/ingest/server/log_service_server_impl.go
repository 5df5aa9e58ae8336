package server

import (
	"context"
	"fmt"
	"time"

	"github.com/vigil-robotics/vigil/pkg/log/model"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	v1 "go.opentelemetry.io/proto/otlp/logs/v1"
	"go.uber.org/zap"
)

// EntrySink receives entries from stream sources and feeds them into the
// monitoring pipeline.
type EntrySink interface {
	Ingest(entry model.LogEntry)
}

// LogServiceServerImpl accepts OTLP log export requests and maps each record
// to a LogEntry, so hosts can stream logs directly instead of writing to the
// tailed file.
type LogServiceServerImpl struct {
	protoLogs.UnimplementedLogsServiceServer
	sink   EntrySink
	logger *zap.Logger
}

func NewLogServiceServerImpl(
	logger *zap.Logger,
	sink EntrySink,
) *LogServiceServerImpl {
	logger.Info("Creating new LogServiceServerImpl")
	return &LogServiceServerImpl{
		logger: logger,
		sink:   sink,
	}
}

func (lss *LogServiceServerImpl) Export(
	ctx context.Context,
	req *protoLogs.ExportLogsServiceRequest,
) (*protoLogs.ExportLogsServiceResponse, error) {
	for _, resourceLogs := range req.ResourceLogs {
		for _, scopeLog := range resourceLogs.ScopeLogs {
			node := model.UnknownNode
			if scopeLog.Scope != nil && scopeLog.Scope.Name != "" {
				node = scopeLog.Scope.Name
			}
			for _, record := range scopeLog.LogRecords {
				lss.sink.Ingest(typeLog(record, node))
			}
		}
	}
	return &protoLogs.ExportLogsServiceResponse{}, nil
}

func typeLog(record *v1.LogRecord, node string) model.LogEntry {
	timestamp := time.Unix(0, int64(record.TimeUnixNano))
	message := record.Body.GetStringValue()
	level := getLevel(record.SeverityNumber)
	return model.LogEntry{
		Timestamp: timestamp,
		Level:     level,
		Node:      node,
		Message:   message,
		RawLine: fmt.Sprintf(
			"[%s] [%s] [%s]: %s",
			level,
			timestamp.Format("2006-01-02 15:04:05.000000"),
			node,
			message,
		),
	}
}

func getLevel(severityNumber v1.SeverityNumber) string {
	switch {
	case severityNumber >= v1.SeverityNumber_SEVERITY_NUMBER_FATAL:
		return model.FatalLevel
	case severityNumber >= v1.SeverityNumber_SEVERITY_NUMBER_ERROR:
		return model.ErrorLevel
	case severityNumber >= v1.SeverityNumber_SEVERITY_NUMBER_WARN:
		return model.WarnLevel
	case severityNumber >= v1.SeverityNumber_SEVERITY_NUMBER_INFO:
		return model.InfoLevel
	default:
		return model.DebugLevel
	}
}

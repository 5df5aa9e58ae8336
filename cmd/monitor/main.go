package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/dgraph-io/ristretto"
	"github.com/vigil-robotics/vigil/internal/config"
	"github.com/vigil-robotics/vigil/internal/server/router"
	analysisModel "github.com/vigil-robotics/vigil/pkg/analysis/model"
	analysisService "github.com/vigil-robotics/vigil/pkg/analysis/service"
	detectModel "github.com/vigil-robotics/vigil/pkg/detect/model"
	detectService "github.com/vigil-robotics/vigil/pkg/detect/service"
	"github.com/vigil-robotics/vigil/pkg/event_bus"
	ingestServer "github.com/vigil-robotics/vigil/pkg/ingest/server"
	ingestService "github.com/vigil-robotics/vigil/pkg/ingest/service"
	logModel "github.com/vigil-robotics/vigil/pkg/log/model"
	monitorService "github.com/vigil-robotics/vigil/pkg/monitor/service"
	reportKafka "github.com/vigil-robotics/vigil/pkg/report/kafka"
	simulatorService "github.com/vigil-robotics/vigil/pkg/simulator/service"
	windowService "github.com/vigil-robotics/vigil/pkg/window/service"
	protoLogs "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip"
)

const kafkaPublishTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	parser := ingestService.NewLogParser()
	tailer := ingestService.NewTailer(cfg.Source.LogFilePath, parser, logger)
	detector := detectService.NewDetector(
		cfg.Detection.ErrorKeywords,
		cfg.Detection.WarningKeywords,
		logger,
	)

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		logger.Fatal("Failed to create analysis cache", zap.Error(err))
	}
	analyzer := analysisService.NewHeuristicAnalyzerImpl(cache, logger)
	store := analysisService.NewReportStore(cfg.Analysis.ReportStoreCapacity)

	bus := EventBus.New()
	batchBus := event_bus.NewVigilEventBus[[]logModel.LogEntry, []logModel.LogEntry](bus, logger)
	reportBus := event_bus.NewVigilEventBus[analysisModel.AnalysisResult, analysisModel.AnalysisResult](bus, logger)

	engine := windowService.NewContextEngine(
		windowService.Params{
			WindowSize:      cfg.Window.Size,
			ErrorWindowSize: cfg.Window.ErrorWindowSize,
			FlushTimeout:    cfg.FlushTimeout(),
			CheckInterval:   cfg.CheckInterval(),
			OnFlush: func(batch []logModel.LogEntry) {
				if err := batchBus.Publish(event_bus.WindowFlushTopic, batch); err != nil {
					logger.Error("Failed to publish window flush", zap.Error(err))
				}
			},
			OnErrorContext: func(batch []logModel.LogEntry) {
				if err := batchBus.Publish(event_bus.ErrorContextTopic, batch); err != nil {
					logger.Error("Failed to publish error context", zap.Error(err))
				}
			},
			OnErrorDetected: func(entry logModel.LogEntry, result detectModel.DetectionResult) {
				logger.Warn(
					"Error detected",
					zap.String("severity", string(result.Severity)),
					zap.String("errorType", result.ErrorType),
					zap.String("node", entry.Node),
					zap.String("message", entry.Message),
				)
			},
		},
		detector,
		logger,
	)
	monitor := monitorService.NewMonitorService(parser, tailer, engine, logger)

	err = batchBus.Subscribe(
		event_bus.ErrorContextTopic,
		func(batch []logModel.LogEntry) error {
			result, err := analyzer.Analyze(context.Background(), batch)
			if err != nil {
				return fmt.Errorf("failed to analyze error context: %w", err)
			}
			if err := reportBus.Publish(event_bus.AnalysisReportTopic, result); err != nil {
				return fmt.Errorf("failed to publish analysis report: %w", err)
			}
			return nil
		},
		true,
	)
	if err != nil {
		logger.Fatal("Failed to subscribe analyzer to error contexts", zap.Error(err))
	}

	err = batchBus.Subscribe(
		event_bus.WindowFlushTopic,
		func(batch []logModel.LogEntry) error {
			logger.Info("Context window flushed", zap.Int("entries", len(batch)))
			return nil
		},
		false,
	)
	if err != nil {
		logger.Fatal("Failed to subscribe to window flushes", zap.Error(err))
	}

	err = reportBus.Subscribe(
		event_bus.AnalysisReportTopic,
		func(report analysisModel.AnalysisResult) error {
			store.Add(report)
			logger.Info(
				"Analysis report stored",
				zap.String("id", report.Id),
				zap.String("errorType", report.ErrorType),
				zap.String("severity", string(report.Severity)),
			)
			return nil
		},
		false,
	)
	if err != nil {
		logger.Fatal("Failed to subscribe report store", zap.Error(err))
	}

	if cfg.Kafka.Enabled {
		producer := reportKafka.NewReportProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		err = reportBus.Subscribe(
			event_bus.AnalysisReportTopic,
			func(report analysisModel.AnalysisResult) error {
				pubCtx, cancel := context.WithTimeout(context.Background(), kafkaPublishTimeout)
				defer cancel()
				if err := producer.Publish(pubCtx, report); err != nil {
					return fmt.Errorf("failed to publish report to kafka: %w", err)
				}
				return nil
			},
			false,
		)
		if err != nil {
			logger.Fatal("Failed to subscribe kafka sink", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := monitor.Start(); err != nil {
		logger.Fatal("Failed to start monitor service", zap.Error(err))
	}

	var grpcServer *grpc.Server
	if cfg.OTLP.Enabled {
		listener, err := net.Listen("tcp", cfg.OTLP.Addr)
		if err != nil {
			logger.Fatal("Failed to listen", zap.Error(err))
		}
		grpcServer = grpc.NewServer()
		protoLogs.RegisterLogsServiceServer(grpcServer, ingestServer.NewLogServiceServerImpl(logger, monitor))
		go func() {
			logger.Info("gRPC service started, listening for OTLP logs", zap.String("addr", cfg.OTLP.Addr))
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error("Failed to serve gRPC", zap.Error(err))
			}
		}()
	}

	if cfg.Source.SimulationMode {
		generator := simulatorService.NewLogGenerator(cfg.Source.SimulationErrProb)
		go func() {
			err := generator.Run(
				ctx,
				cfg.Source.LogFilePath,
				cfg.SimulationIntervalMin(),
				cfg.SimulationIntervalMax(),
				logger,
			)
			if err != nil {
				logger.Error("Log generator failed", zap.Error(err))
			}
		}()
	}

	r := router.CreateRouter(monitor, detector, engine, analyzer, store, logger)
	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("Starting monitor server", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down monitor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	monitor.Stop()
	bus.WaitAsync()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vigil-robotics/vigil/internal/config"
	simulatorService "github.com/vigil-robotics/vigil/pkg/simulator/service"
	"go.uber.org/zap"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator := simulatorService.NewLogGenerator(cfg.Source.SimulationErrProb)
	err = generator.Run(
		ctx,
		cfg.Source.LogFilePath,
		cfg.SimulationIntervalMin(),
		cfg.SimulationIntervalMax(),
		logger,
	)
	if err != nil {
		logger.Fatal("Log generator failed", zap.Error(err))
	}
}

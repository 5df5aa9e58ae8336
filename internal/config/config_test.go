package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Applies defaults when no config file is present", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "local", cfg.Env)
		assert.Equal(t, "./logs/robot.log", cfg.Source.LogFilePath)
		assert.True(t, cfg.Source.SimulationMode)
		assert.InDelta(t, 0.15, cfg.Source.SimulationErrProb, 0.001)

		assert.Equal(t, 50, cfg.Window.Size)
		assert.Equal(t, 30, cfg.Window.TimeoutSec)
		assert.Equal(t, 20, cfg.Window.ErrorWindowSize)
		assert.Equal(t, 5, cfg.Window.CheckIntervalSec)

		assert.Contains(t, cfg.Detection.ErrorKeywords, "ERROR")
		assert.Contains(t, cfg.Detection.WarningKeywords, "WARN")

		assert.Equal(t, 100, cfg.Analysis.ReportStoreCapacity)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.False(t, cfg.OTLP.Enabled)
		assert.Equal(t, ":4317", cfg.OTLP.Addr)
		assert.False(t, cfg.Kafka.Enabled)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "vigil-reports", cfg.Kafka.Topic)
	})

	t.Run("Derives durations from second-granularity settings", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "30s", cfg.FlushTimeout().String())
		assert.Equal(t, "5s", cfg.CheckInterval().String())
		assert.Equal(t, "2s", cfg.SimulationIntervalMin().String())
		assert.Equal(t, "5s", cfg.SimulationIntervalMax().String())
	})
}

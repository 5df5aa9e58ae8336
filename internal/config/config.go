package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Source    SourceConfig    `mapstructure:"source"`
	Window    WindowConfig    `mapstructure:"window"`
	Detection DetectionConfig `mapstructure:"detection"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Server    ServerConfig    `mapstructure:"server"`
	OTLP      OTLPConfig      `mapstructure:"otlp"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

type SourceConfig struct {
	LogFilePath       string  `mapstructure:"log_file_path"`
	SimulationMode    bool    `mapstructure:"simulation_mode"`
	SimulationMinSec  float64 `mapstructure:"simulation_interval_min"`
	SimulationMaxSec  float64 `mapstructure:"simulation_interval_max"`
	SimulationErrProb float64 `mapstructure:"simulation_error_probability"`
}

type WindowConfig struct {
	Size             int `mapstructure:"size"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	ErrorWindowSize  int `mapstructure:"error_window_size"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

type DetectionConfig struct {
	ErrorKeywords   []string `mapstructure:"error_keywords"`
	WarningKeywords []string `mapstructure:"warning_keywords"`
}

type AnalysisConfig struct {
	ReportStoreCapacity int `mapstructure:"report_store_capacity"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type OTLPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func Load() (*Config, error) {

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("vigil")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("env", "local")

	// Source defaults
	viper.SetDefault("source.log_file_path", "./logs/robot.log")
	viper.SetDefault("source.simulation_mode", true)
	viper.SetDefault("source.simulation_interval_min", 2.0)
	viper.SetDefault("source.simulation_interval_max", 5.0)
	viper.SetDefault("source.simulation_error_probability", 0.15)

	// Window defaults
	viper.SetDefault("window.size", 50)
	viper.SetDefault("window.timeout_sec", 30)
	viper.SetDefault("window.error_window_size", 20)
	viper.SetDefault("window.check_interval_sec", 5)

	// Detection defaults
	viper.SetDefault("detection.error_keywords", []string{
		"ERROR", "FATAL", "CRITICAL",
		"Exception", "failed", "timeout",
		"unable", "cannot", "refused",
	})
	viper.SetDefault("detection.warning_keywords", []string{
		"WARN", "Warning", "deprecated",
	})

	// Analysis defaults
	viper.SetDefault("analysis.report_store_capacity", 100)

	// Server defaults
	viper.SetDefault("server.addr", ":8080")

	// OTLP defaults
	viper.SetDefault("otlp.enabled", false)
	viper.SetDefault("otlp.addr", ":4317")

	// Kafka defaults
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "vigil-reports")
}

func (c *Config) FlushTimeout() time.Duration {
	return time.Duration(c.Window.TimeoutSec) * time.Second
}

func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Window.CheckIntervalSec) * time.Second
}

func (c *Config) SimulationIntervalMin() time.Duration {
	return time.Duration(c.Source.SimulationMinSec * float64(time.Second))
}

func (c *Config) SimulationIntervalMax() time.Duration {
	return time.Duration(c.Source.SimulationMaxSec * float64(time.Second))
}

package service

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var nodes = []string{
	"/move_base",
	"/amcl",
	"/robot_state_publisher",
	"/joint_state_publisher",
	"/laser_scan_matcher",
	"/gmapping",
	"/navigation",
	"/controller_manager",
	"/hardware_interface",
	"/sensor_driver",
	"/camera_node",
	"/odometry",
	"/tf_broadcaster",
}

var errorNodes = []string{
	"/move_base",
	"/amcl",
	"/controller_manager",
	"/hardware_interface",
}

var normalMessages = []string{
	"Robot state updated successfully",
	"Joint states published",
	"Laser scan received",
	"Odometry message processed",
	"Transform published: base_link -> laser",
	"Goal received: x=1.5, y=2.0, theta=0.0",
	"Path computed successfully",
	"Velocity command sent",
	"Sensor data processed",
	"Heartbeat signal sent",
}

var warningMessages = []string{
	"Laser scan message delayed by 0.15s",
	"Costmap update frequency is low",
	"Controller oscillation detected",
	"Battery level below 30%",
	"Transform from map to odom is old",
	"Planning loop missed deadline",
	"Sensor data buffer nearly full",
	"CPU usage above 80%",
}

type errorScenario struct {
	errorMessage string
	contextLines []string
	errorType    string
}

var errorScenarios = []errorScenario{
	{
		errorMessage: "Failed to get robot pose: Transform timeout",
		contextLines: []string{
			"Waiting for transform: map -> base_link",
			"Transform lookup failed after 5.0s",
		},
		errorType: "Transform Timeout",
	},
	{
		errorMessage: "Navigation failed: Goal unreachable",
		contextLines: []string{
			"Planning to goal...",
			"No valid path found after 10 attempts",
			"Aborting navigation",
		},
		errorType: "Planning Failure",
	},
	{
		errorMessage: "Laser scan topic not receiving data",
		contextLines: []string{
			"Subscribing to /scan topic",
			"No messages received for 5.0 seconds",
		},
		errorType: "Sensor Timeout",
	},
	{
		errorMessage: "Exception in controller: Joint limit exceeded",
		contextLines: []string{
			"Processing joint command",
			"Joint 3 position: 2.1 (limit: 2.0)",
		},
		errorType: "Joint Limit",
	},
	{
		errorMessage: "Connection refused: Unable to connect to hardware",
		contextLines: []string{
			"Initializing hardware interface",
			"Attempting connection to 192.168.1.100:502",
		},
		errorType: "Hardware Connection",
	},
	{
		errorMessage: "Costmap collision: Robot in collision",
		contextLines: []string{
			"Updating costmap",
			"Footprint in collision at (1.2, 3.4)",
		},
		errorType: "Collision Detected",
	},
}

// LogGenerator produces ROS-style log lines: mostly normal operation, some
// warnings, and multi-line error scenarios whose context lines precede the
// error line itself.
type LogGenerator struct {
	errorProbability float64
	rng              *rand.Rand

	scenario     *errorScenario
	scenarioStep int
}

func NewLogGenerator(errorProbability float64) *LogGenerator {
	return &LogGenerator{
		errorProbability: errorProbability,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FormatLine renders one line in the full log grammar with a
// millisecond-precision timestamp.
func FormatLine(level string, node string, message string, timestamp time.Time) string {
	return fmt.Sprintf(
		"[%s] [%s] [%s]: %s",
		level,
		timestamp.Format("2006-01-02 15:04:05.000"),
		node,
		message,
	)
}

// NextLine returns the next generated line. While an error scenario is in
// progress it returns the scenario's lines in order, ending with the error
// line.
func (lg *LogGenerator) NextLine() string {
	switch {
	case lg.scenario != nil:
		return lg.nextScenarioLine()
	case lg.rng.Float64() < lg.errorProbability:
		lg.scenario = &errorScenarios[lg.rng.Intn(len(errorScenarios))]
		lg.scenarioStep = 0
		return lg.nextScenarioLine()
	case lg.rng.Float64() < 0.2:
		return lg.warningLine()
	default:
		return lg.normalLine()
	}
}

// Run appends generated lines to the file at path, pausing a random interval
// within [intervalMin, intervalMax] between lines, until the context is
// cancelled.
func (lg *LogGenerator) Run(
	ctx context.Context,
	path string,
	intervalMin time.Duration,
	intervalMax time.Duration,
	logger *zap.Logger,
) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer file.Close()

	logger.Info("Log generator started", zap.String("path", path))
	for {
		if _, err := file.WriteString(lg.NextLine() + "\n"); err != nil {
			return fmt.Errorf("failed to append log line: %w", err)
		}
		interval := intervalMin + time.Duration(lg.rng.Int63n(int64(intervalMax-intervalMin)+1))
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Log generator stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (lg *LogGenerator) normalLine() string {
	level := "INFO"
	if lg.rng.Float64() < 0.2 {
		level = "DEBUG"
	}
	return FormatLine(level, lg.randomNode(nodes), normalMessages[lg.rng.Intn(len(normalMessages))], time.Now())
}

func (lg *LogGenerator) warningLine() string {
	return FormatLine("WARN", lg.randomNode(nodes), warningMessages[lg.rng.Intn(len(warningMessages))], time.Now())
}

func (lg *LogGenerator) nextScenarioLine() string {
	scenario := lg.scenario
	node := lg.randomNode(errorNodes)
	if lg.scenarioStep < len(scenario.contextLines) {
		level := "INFO"
		if lg.scenarioStep == 0 {
			level = "WARN"
		}
		message := scenario.contextLines[lg.scenarioStep]
		lg.scenarioStep++
		return FormatLine(level, node, message, time.Now())
	}
	lg.scenario = nil
	lg.scenarioStep = 0
	return FormatLine("ERROR", node, scenario.errorMessage, time.Now())
}

func (lg *LogGenerator) randomNode(candidates []string) string {
	return candidates[lg.rng.Intn(len(candidates))]
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultWidth is the battlefield width in columns.
	DefaultWidth = 1200
	// DefaultHeight is the battlefield height; terrain peaks are derived from it.
	DefaultHeight = 600
	// DefaultAIProfile is the opponent style used when none is configured.
	DefaultAIProfile = "moron"
	// DefaultMode runs computer against computer.
	DefaultMode = "demo"
	// DefaultMaxRounds bounds how many rounds a headless match plays.
	DefaultMaxRounds = 3
	// DefaultTickHz is the simulation frame rate.
	DefaultTickHz = 60
	// DefaultGravity is the downward acceleration applied to shells.
	DefaultGravity = 0.5

	// DefaultReplayKeep is how many replay bundles survive a retention sweep.
	DefaultReplayKeep = 20

	// DefaultLogLevel controls verbosity for engine logs.
	DefaultLogLevel = "info"
	// DefaultLogPath is where structured logs are written.
	DefaultLogPath = "tankduel.log"
	// DefaultLogMaxSizeMB caps the size of a single log file before rotation.
	DefaultLogMaxSizeMB = 100
	// DefaultLogMaxBackups limits retained rotated log files.
	DefaultLogMaxBackups = 10
	// DefaultLogMaxAgeDays controls how long rotated log files are kept on disk.
	DefaultLogMaxAgeDays = 7
	// DefaultLogCompress toggles gzip compression for rotated log files.
	DefaultLogCompress = true
)

// Config captures all runtime tunables for a duel.
type Config struct {
	Width           int
	Height          int
	Seed            string
	Mode            string
	AIProfile       string
	OpponentProfile string
	MaxRounds       int
	TickHz          int
	Realtime        bool
	Gravity         float64
	ReplayDir       string
	ReplayKeep      int
	ScenarioPath    string
	Logging         LoggingConfig
}

// LoggingConfig captures structured logging configuration options.
type LoggingConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads the duel configuration from environment variables, applying sane defaults
// and returning one error describing every invalid override.
func Load() (*Config, error) {
	cfg := &Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Seed:         strings.TrimSpace(os.Getenv("TANKDUEL_SEED")),
		Mode:         getString("TANKDUEL_MODE", DefaultMode),
		AIProfile:    strings.ToLower(getString("TANKDUEL_AI_PROFILE", DefaultAIProfile)),
		MaxRounds:    DefaultMaxRounds,
		TickHz:       DefaultTickHz,
		Gravity:      DefaultGravity,
		ReplayDir:    strings.TrimSpace(os.Getenv("TANKDUEL_REPLAY_DIR")),
		ReplayKeep:   DefaultReplayKeep,
		ScenarioPath: strings.TrimSpace(os.Getenv("TANKDUEL_SCENARIO")),
		Logging: LoggingConfig{
			Level:      strings.TrimSpace(getString("TANKDUEL_LOG_LEVEL", DefaultLogLevel)),
			Path:       strings.TrimSpace(getString("TANKDUEL_LOG_PATH", DefaultLogPath)),
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
			Compress:   DefaultLogCompress,
		},
	}
	cfg.OpponentProfile = strings.ToLower(getString("TANKDUEL_OPPONENT_PROFILE", cfg.AIProfile))

	var problems []string

	parsePositiveInt := func(key string, dst *int) {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be a positive integer, got %q", key, raw))
			return
		}
		*dst = value
	}
	parseNonNegativeInt := func(key string, dst *int) {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("%s must be a non-negative integer, got %q", key, raw))
			return
		}
		*dst = value
	}
	parseBool := func(key string, dst *bool) {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a boolean value, got %q", key, raw))
			return
		}
		*dst = value
	}

	parsePositiveInt("TANKDUEL_WIDTH", &cfg.Width)
	parsePositiveInt("TANKDUEL_HEIGHT", &cfg.Height)
	parsePositiveInt("TANKDUEL_MAX_ROUNDS", &cfg.MaxRounds)
	parsePositiveInt("TANKDUEL_TICK_HZ", &cfg.TickHz)
	parseBool("TANKDUEL_REALTIME", &cfg.Realtime)
	parseNonNegativeInt("TANKDUEL_REPLAY_KEEP", &cfg.ReplayKeep)
	parsePositiveInt("TANKDUEL_LOG_MAX_SIZE_MB", &cfg.Logging.MaxSizeMB)
	parseNonNegativeInt("TANKDUEL_LOG_MAX_BACKUPS", &cfg.Logging.MaxBackups)
	parseNonNegativeInt("TANKDUEL_LOG_MAX_AGE_DAYS", &cfg.Logging.MaxAgeDays)
	parseBool("TANKDUEL_LOG_COMPRESS", &cfg.Logging.Compress)

	if raw := strings.TrimSpace(os.Getenv("TANKDUEL_GRAVITY")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(value > 0) {
			problems = append(problems, fmt.Sprintf("TANKDUEL_GRAVITY must be a positive number, got %q", raw))
		} else {
			cfg.Gravity = value
		}
	}

	switch cfg.Mode {
	case "1player", "2player", "demo":
	default:
		problems = append(problems, fmt.Sprintf("TANKDUEL_MODE must be one of 1player, 2player, demo, got %q", cfg.Mode))
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// TickInterval returns the simulated seconds per frame.
func (c *Config) TickInterval() float64 {
	if c == nil || c.TickHz <= 0 {
		return 1.0 / DefaultTickHz
	}
	return 1.0 / float64(c.TickHz)
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

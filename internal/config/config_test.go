package config

import (
	"strings"
	"testing"
)

var configKeys = []string{
	"TANKDUEL_WIDTH", "TANKDUEL_HEIGHT", "TANKDUEL_SEED", "TANKDUEL_MODE", "TANKDUEL_AI_PROFILE",
	"TANKDUEL_OPPONENT_PROFILE", "TANKDUEL_MAX_ROUNDS", "TANKDUEL_TICK_HZ", "TANKDUEL_REALTIME",
	"TANKDUEL_GRAVITY", "TANKDUEL_REPLAY_DIR", "TANKDUEL_REPLAY_KEEP", "TANKDUEL_SCENARIO", "TANKDUEL_LOG_LEVEL",
	"TANKDUEL_LOG_PATH", "TANKDUEL_LOG_MAX_SIZE_MB", "TANKDUEL_LOG_MAX_BACKUPS",
	"TANKDUEL_LOG_MAX_AGE_DAYS", "TANKDUEL_LOG_COMPRESS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Width != DefaultWidth || cfg.Height != DefaultHeight {
		t.Fatalf("unexpected field size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Mode != DefaultMode {
		t.Fatalf("expected default mode %q, got %q", DefaultMode, cfg.Mode)
	}
	if cfg.AIProfile != DefaultAIProfile || cfg.OpponentProfile != DefaultAIProfile {
		t.Fatalf("expected default profiles, got %q/%q", cfg.AIProfile, cfg.OpponentProfile)
	}
	if cfg.MaxRounds != DefaultMaxRounds || cfg.TickHz != DefaultTickHz {
		t.Fatalf("unexpected rounds %d or tick rate %d", cfg.MaxRounds, cfg.TickHz)
	}
	if cfg.Realtime || cfg.ReplayDir != "" || cfg.Seed != "" || cfg.ReplayKeep != DefaultReplayKeep {
		t.Fatalf("expected realtime off and no replay dir or seed, got %+v", cfg)
	}
	if cfg.Gravity != DefaultGravity {
		t.Fatalf("expected default gravity, got %.2f", cfg.Gravity)
	}
	if cfg.Logging.Path != DefaultLogPath || !cfg.Logging.Compress {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if got := cfg.TickInterval(); got != 1.0/60 {
		t.Fatalf("expected 1/60 tick interval, got %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TANKDUEL_WIDTH", "800")
	t.Setenv("TANKDUEL_SEED", "finals")
	t.Setenv("TANKDUEL_MODE", "1player")
	t.Setenv("TANKDUEL_AI_PROFILE", "Spoiler")
	t.Setenv("TANKDUEL_OPPONENT_PROFILE", "cyborg")
	t.Setenv("TANKDUEL_MAX_ROUNDS", "5")
	t.Setenv("TANKDUEL_REALTIME", "true")
	t.Setenv("TANKDUEL_GRAVITY", "0.8")
	t.Setenv("TANKDUEL_REPLAY_DIR", "/tmp/replays")
	t.Setenv("TANKDUEL_REPLAY_KEEP", "0")
	t.Setenv("TANKDUEL_LOG_COMPRESS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Width != 800 || cfg.Seed != "finals" || cfg.Mode != "1player" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.AIProfile != "spoiler" || cfg.OpponentProfile != "cyborg" {
		t.Fatalf("unexpected profiles %q/%q", cfg.AIProfile, cfg.OpponentProfile)
	}
	if cfg.MaxRounds != 5 || !cfg.Realtime || cfg.Gravity != 0.8 {
		t.Fatalf("unexpected numeric overrides %+v", cfg)
	}
	if cfg.ReplayDir != "/tmp/replays" || cfg.ReplayKeep != 0 || cfg.Logging.Compress {
		t.Fatalf("unexpected replay/logging overrides %+v", cfg)
	}
}

func TestLoadAggregatesProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("TANKDUEL_WIDTH", "-1")
	t.Setenv("TANKDUEL_GRAVITY", "heavy")
	t.Setenv("TANKDUEL_MODE", "arcade")
	t.Setenv("TANKDUEL_LOG_MAX_BACKUPS", "-3")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid overrides")
	}
	for _, key := range []string{"TANKDUEL_WIDTH", "TANKDUEL_GRAVITY", "TANKDUEL_MODE", "TANKDUEL_LOG_MAX_BACKUPS"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error %q", key, err)
		}
	}
}

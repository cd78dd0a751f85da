// Command duel plays a computer-versus-computer artillery match headlessly, optionally
// recording a replay bundle.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tankduel/engine/internal/config"
	"tankduel/engine/internal/logging"
	"tankduel/engine/internal/scenario"
)

func main() {
	scenarioPath := flag.String("scenario", "", "YAML scenario file; overrides TANKDUEL_SCENARIO")
	seed := flag.String("seed", "", "match seed; overrides the scenario and TANKDUEL_SEED")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.ReplaceGlobals(logger)

	if *scenarioPath != "" {
		cfg.ScenarioPath = *scenarioPath
	}
	sc, err := loadScenario(cfg)
	if err != nil {
		logger.Error("scenario rejected", logging.Error(err))
		os.Exit(2)
	}
	if *seed != "" {
		sc.Seed = *seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := newRunner(sc, logger,
		withTickHz(cfg.TickHz),
		withRealtime(cfg.Realtime),
		withReplay(cfg.ReplayDir, cfg.ReplayKeep),
	)
	result, err := runner.Run(ctx)
	if err != nil {
		logger.Error("duel failed", logging.Error(err))
		os.Exit(3)
	}

	//1.- Print the outcome as JSON so scripts can consume it.
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(4)
	}
}

// loadScenario reads the configured scenario file, or builds the classic roster from cfg.
func loadScenario(cfg *config.Config) (*scenario.Scenario, error) {
	if cfg.ScenarioPath == "" {
		return scenario.FromConfig(cfg)
	}
	sc, err := scenario.LoadFile(cfg.ScenarioPath)
	if err != nil {
		return nil, err
	}
	sc.ApplyDefaults(cfg)
	return sc, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"tankduel/engine/internal/events"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/logging"
	"tankduel/engine/internal/match"
	"tankduel/engine/internal/replay"
	"tankduel/engine/internal/scenario"
	"tankduel/engine/internal/simulation"
)

// ErrHumanSeat is returned when a headless run is asked to seat a human.
var ErrHumanSeat = errors.New("headless duels need computer seats only")

// defaultTickBudget stops a match that never resolves, roughly an hour of simulated play.
const defaultTickBudget = 60 * 60 * 60

// eventRetention keeps enough history between recorder drains.
const eventRetention = 4096

type runnerOption func(*Runner)

// withClock overrides the wall clock used for replay timestamps.
func withClock(clock func() time.Time) runnerOption {
	return func(r *Runner) {
		if clock != nil {
			r.now = clock
		}
	}
}

// withTickBudget caps how many frames a match may run.
func withTickBudget(ticks uint64) runnerOption {
	return func(r *Runner) {
		if ticks > 0 {
			r.tickBudget = ticks
		}
	}
}

// withRealtime paces frames against the wall clock instead of running flat out.
func withRealtime(enabled bool) runnerOption {
	return func(r *Runner) {
		r.realtime = enabled
	}
}

// withReplay records the match under dir, keeping at most keep bundles when keep is positive.
func withReplay(dir string, keep int) runnerOption {
	return func(r *Runner) {
		r.replayDir = dir
		r.replayKeep = keep
	}
}

// withTickHz sets the simulation frame rate.
func withTickHz(hz int) runnerOption {
	return func(r *Runner) {
		if hz > 0 {
			r.tickHz = hz
		}
	}
}

// Runner plays one scenario to completion without a human at the controls.
type Runner struct {
	scenario   *scenario.Scenario
	logger     *logging.Logger
	now        func() time.Time
	tickHz     int
	tickBudget uint64
	realtime   bool
	replayDir  string
	replayKeep int
	monitor    *simulation.TickMonitor
}

// Result summarises a finished match.
type Result struct {
	MatchID   string         `json:"match_id"`
	Seed      int64          `json:"seed"`
	Winner    string         `json:"winner,omitempty"`
	Reason    string         `json:"reason"`
	Rounds    int            `json:"rounds"`
	Ticks     uint64         `json:"ticks"`
	Money     map[string]int `json:"money"`
	ReplayDir string         `json:"replay_dir,omitempty"`
}

func newRunner(sc *scenario.Scenario, logger *logging.Logger, opts ...runnerOption) *Runner {
	if logger == nil {
		logger = logging.L()
	}
	r := &Runner{
		scenario:   sc,
		logger:     logger,
		now:        time.Now,
		tickHz:     60,
		tickBudget: defaultTickBudget,
		monitor:    simulation.NewTickMonitor(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run plays the scenario until game over, the round limit, the tick budget or ctx cancellation.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	sc := r.scenario
	if sc == nil {
		return Result{}, fmt.Errorf("scenario must be provided")
	}
	for _, seat := range sc.Players {
		if !seat.IsAI() {
			return Result{}, fmt.Errorf("%w: %q", ErrHumanSeat, seat.Name)
		}
	}

	ctx = logging.WithMatch(ctx, r.logger, "")
	logger, matchID := logging.LoggerFromContext(ctx), logging.MatchIDFromContext(ctx)
	seed := sc.RandomSeed(r.now)
	log := events.NewLog(events.Config{Retain: eventRetention})

	//1.- Assemble the engine from the scenario forces and a seeded random source.
	opts := append(sc.EngineOptions(),
		match.WithRand(rand.New(rand.NewSource(seed))),
		match.WithLogger(logger),
		match.WithEventLog(log),
	)
	engine := match.NewEngine(sc.Width, sc.Height, opts...)
	if err := engine.Start(sc.Mode, sc.Players); err != nil {
		return Result{}, err
	}

	//2.- Attach the replay sinks when a directory is configured.
	var (
		writer   *replay.Writer
		recorder *replay.Recorder
	)
	if r.replayDir != "" {
		w, _, err := replay.NewWriter(r.replayDir, matchID, r.now)
		if err != nil {
			return Result{}, fmt.Errorf("open replay: %w", err)
		}
		writer = w
		if recorder, err = replay.NewRecorder(writer, log, replay.DefaultFrameEvery); err != nil {
			writer.Close()
			return Result{}, err
		}
	}

	logger.Info("duel started",
		logging.String("scenario", sc.Name),
		logging.Int64("seed", seed),
		logging.Int("max_rounds", sc.MaxRounds),
		logging.Bool("realtime", r.realtime),
	)

	var (
		tick    uint64
		stepErr error
	)
	dt := 1.0 / float64(r.tickHz)
	step := func() bool {
		engine.Update(dt)
		tick++
		if recorder != nil {
			if err := recorder.RecordTick(tick, engine); err != nil {
				stepErr = err
				return false
			}
		}
		switch engine.Phase() {
		case match.PhaseShop:
			if sc.MaxRounds > 0 && engine.Round() >= sc.MaxRounds {
				engine.Finish("round limit reached")
				return false
			}
			shopFor(engine, sc.Shop)
			engine.CompleteShopPhase()
		case match.PhaseGameOver:
			return false
		}
		if tick >= r.tickBudget {
			engine.Finish("tick budget exhausted")
			return false
		}
		return true
	}

	//3.- Drive the engine either against the wall clock or as fast as possible.
	if r.realtime {
		r.runRealtime(ctx, step)
	} else {
		r.runFlatOut(ctx, step)
	}
	if ctx.Err() != nil {
		engine.Finish("interrupted")
	}

	result := Result{
		MatchID: matchID,
		Seed:    seed,
		Rounds:  engine.Round(),
		Ticks:   tick,
		Money:   engine.MoneyByName(),
	}
	for _, env := range log.Since(0) {
		if over, ok := env.Event.(events.GameOver); ok {
			result.Winner = over.Winner
			result.Reason = over.Reason
		}
	}

	if writer != nil {
		if err := recorder.Drain(); err != nil && stepErr == nil {
			stepErr = err
		}
		writer.SetHeader(r.header(matchID, seed, engine, result))
		if err := writer.Close(); err != nil && stepErr == nil {
			stepErr = err
		}
		result.ReplayDir = writer.Directory()
		stats := replay.NewCleaner(r.replayDir, replay.RetentionPolicy{MaxMatches: r.replayKeep}, logger).RunOnce()
		logger.Debug("replay retention swept", logging.Int("matches", stats.Matches), logging.Int("removed", stats.Removed))
	}

	fields := []logging.Field{
		logging.String("winner", result.Winner),
		logging.String("reason", result.Reason),
		logging.Int("rounds", result.Rounds),
		logging.Int64("ticks", int64(result.Ticks)),
	}
	logger.Info("duel finished", append(fields, r.monitor.Snapshot().LoggingFields()...)...)
	if stepErr != nil {
		return result, fmt.Errorf("record replay: %w", stepErr)
	}
	return result, nil
}

func (r *Runner) runFlatOut(ctx context.Context, step func() bool) {
	for ctx.Err() == nil {
		started := time.Now()
		keepGoing := step()
		r.monitor.Observe(time.Since(started))
		if !keepGoing {
			return
		}
	}
}

func (r *Runner) runRealtime(ctx context.Context, step func() bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loop := simulation.NewLoop(float64(r.tickHz), func(time.Duration) bool { return step() }, simulation.WithMonitor(r.monitor))
	loop.Start(ctx)
	<-loop.Done()
}

func (r *Runner) header(matchID string, seed int64, engine *match.Engine, result Result) replay.Header {
	sc := r.scenario
	players := make([]string, 0, len(sc.Players))
	for _, t := range engine.Tanks() {
		players = append(players, t.Name)
	}
	gravity, _ := engine.Environment().Snapshot()
	params := replay.TerrainParameters{
		"width":   float64(sc.Width),
		"height":  float64(sc.Height),
		"gravity": gravity,
	}
	if sc.Wind != nil {
		params["wind_min"] = sc.Wind.Min
		params["wind_max"] = sc.Wind.Max
	}
	return replay.Header{
		MatchID:       matchID,
		MatchSeed:     strconv.FormatInt(seed, 10),
		Mode:          string(engine.Mode()),
		Players:       players,
		Rounds:        result.Rounds,
		Winner:        result.Winner,
		TerrainParams: params,
	}
}

// shopFor lets the round winner work through the shopping list once, skipping what it cannot afford.
func shopFor(engine *match.Engine, items []gameplay.ShopItemID) {
	for _, item := range items {
		engine.BuyItem(item)
	}
	engine.ConsumeNotifications()
}

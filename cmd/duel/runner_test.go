package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"tankduel/engine/internal/events"
	"tankduel/engine/internal/logging"
	"tankduel/engine/internal/match"
	"tankduel/engine/internal/replay"
	"tankduel/engine/internal/scenario"
)

func demoScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:      "spoiler mirror",
		Seed:      "11",
		Mode:      match.ModeDemo,
		Width:     800,
		Height:    400,
		Gravity:   0.5,
		Wind:      &scenario.WindRange{},
		MaxRounds: 2,
		Players: []match.Seat{
			{Name: "Left", Profile: "spoiler"},
			{Name: "Right", Profile: "spoiler"},
		},
	}
}

func TestRunnerPlaysAndRecordsReplay(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	runner := newRunner(demoScenario(), logging.NewTestLogger(),
		withClock(func() time.Time { return now }),
		withTickBudget(20000),
		withReplay(dir, 5),
	)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	//1.- The match always ends with a reason and a seeded source.
	if result.Reason == "" || result.Ticks == 0 || result.Rounds < 1 || result.Seed != 11 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Money) != 2 {
		t.Fatalf("expected balances for both seats, got %v", result.Money)
	}
	if runner.monitor.Snapshot().Samples != int(result.Ticks) {
		t.Fatalf("expected one monitor sample per tick")
	}

	//2.- The bundle on disk tells the same story.
	bundle, err := replay.Load(result.ReplayDir)
	if err != nil {
		t.Fatalf("load replay: %v", err)
	}
	if result.MatchID == "" || bundle.Header.MatchID != result.MatchID {
		t.Fatalf("expected the context match id on the bundle, got %q and %q", result.MatchID, bundle.Header.MatchID)
	}
	if bundle.Header.Mode != "demo" || bundle.Header.MatchSeed != "11" || bundle.Header.Winner != result.Winner {
		t.Fatalf("unexpected header: %+v", bundle.Header)
	}
	if len(bundle.Events) == 0 || bundle.Events[0].Kind() != events.KindRoundStarted {
		t.Fatalf("expected the replay to open with a round start")
	}
	if last := bundle.Events[len(bundle.Events)-1]; last.Kind() != events.KindGameOver {
		t.Fatalf("expected the replay to close with game over, got %s", last.Kind())
	}
	if len(bundle.Frames) == 0 || len(bundle.Frames[0].Heights) != 800 {
		t.Fatalf("expected terrain frames of width 800")
	}
}

func TestRunnerRejectsHumanSeats(t *testing.T) {
	sc := demoScenario()
	sc.Players[0].Profile = ""
	_, err := newRunner(sc, logging.NewTestLogger()).Run(context.Background())
	if !errors.Is(err, ErrHumanSeat) {
		t.Fatalf("expected ErrHumanSeat, got %v", err)
	}
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := newRunner(demoScenario(), logging.NewTestLogger()).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Ticks != 0 || result.Reason != "interrupted" {
		t.Fatalf("expected an immediate interruption, got %+v", result)
	}
}

package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tankduel/engine/internal/config"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/match"
)

const tournamentYAML = `
name: cyborg gauntlet
seed: "42"
width: 900
wind:
  min: -1
  max: 1
max_rounds: 5
players:
  - name: Alpha
    profile: spoiler
  - name: Bravo
    profile: Cyborg
    money: 2500
shop: [shield, contact_trigger]
`

func TestParseReadsEveryField(t *testing.T) {
	sc, err := Parse([]byte(tournamentYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sc.Name != "cyborg gauntlet" || sc.Seed != "42" || sc.Width != 900 || sc.MaxRounds != 5 {
		t.Fatalf("unexpected scalars: %+v", sc)
	}
	if sc.Wind == nil || sc.Wind.Min != -1 || sc.Wind.Max != 1 {
		t.Fatalf("unexpected wind: %+v", sc.Wind)
	}
	if len(sc.Players) != 2 || sc.Players[1].Profile != "Cyborg" || sc.Players[1].Money != 2500 {
		t.Fatalf("unexpected players: %+v", sc.Players)
	}
	if len(sc.Shop) != 2 || sc.Shop[1] != gameplay.ShopContactTrigger {
		t.Fatalf("unexpected shop plan: %v", sc.Shop)
	}
	if opts := sc.EngineOptions(); len(opts) != 1 {
		t.Fatalf("expected only a wind option before defaults, got %d", len(opts))
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown key", doc: "players: [{name: A}]\ncolour: red\n", want: "colour"},
		{name: "bad mode", doc: "mode: arcade\nplayers: [{name: A}, {name: B}]\n", want: "arcade"},
		{name: "inverted wind", doc: "wind: {min: 2, max: -2}\nplayers: [{name: A}]\n", want: "wind"},
		{name: "unknown item", doc: "shop: [laser]\nplayers: [{name: A}]\n", want: "laser"},
		{name: "crowded", doc: "players: [{name: A}, {name: B}, {name: C}, {name: D}, {name: E}]\n", want: "at most"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseRequiresPlayers(t *testing.T) {
	for _, doc := range []string{"", "name: empty\n"} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrNoPlayers) {
			t.Fatalf("expected ErrNoPlayers for %q, got %v", doc, err)
		}
	}
}

func TestApplyDefaultsFillsFromConfig(t *testing.T) {
	sc, err := Parse([]byte(tournamentYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := &config.Config{Width: 1200, Height: 600, Gravity: 0.5, MaxRounds: 3, Seed: "env"}
	sc.ApplyDefaults(cfg)
	//1.- Explicit values win, zero values inherit.
	if sc.Width != 900 || sc.Height != 600 || sc.MaxRounds != 5 || sc.Seed != "42" || sc.Gravity != 0.5 {
		t.Fatalf("unexpected merged scenario: %+v", sc)
	}
	//2.- An all computer roster plays as a demo.
	if sc.Mode != match.ModeDemo {
		t.Fatalf("expected demo mode, got %q", sc.Mode)
	}
	if opts := sc.EngineOptions(); len(opts) != 2 {
		t.Fatalf("expected gravity and wind options, got %d", len(opts))
	}
}

func TestLoadFileAndFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.yaml")
	if err := os.WriteFile(path, []byte(tournamentYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", err)
	}

	cfg := &config.Config{Width: 1200, Height: 600, Gravity: 0.5, MaxRounds: 3, Mode: "demo", AIProfile: "moron", OpponentProfile: "shooter"}
	sc, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if len(sc.Players) != 2 || sc.Players[1].Name != "Computer 2" || sc.Players[1].Profile != "shooter" {
		t.Fatalf("unexpected roster: %+v", sc.Players)
	}
	if sc.Width != 1200 || sc.MaxRounds != 3 {
		t.Fatalf("defaults not applied: %+v", sc)
	}
}

func TestRandomSeed(t *testing.T) {
	clock := func() time.Time { return time.Unix(0, 99) }
	//1.- Blank seeds follow the clock, integers pass through.
	if got := (&Scenario{Seed: " "}).RandomSeed(clock); got != 99 {
		t.Fatalf("expected clock seed, got %d", got)
	}
	if got := (&Scenario{Seed: "-5"}).RandomSeed(clock); got != -5 {
		t.Fatalf("expected numeric seed, got %d", got)
	}
	//2.- Text hashes deterministically and distinguishes labels.
	finals := (&Scenario{Seed: "finals"}).RandomSeed(clock)
	if finals == 0 || finals != (&Scenario{Seed: "finals"}).RandomSeed(clock) {
		t.Fatalf("expected a stable non-zero hash, got %d", finals)
	}
	if finals == (&Scenario{Seed: "semis"}).RandomSeed(clock) {
		t.Fatalf("expected different labels to hash apart")
	}
}

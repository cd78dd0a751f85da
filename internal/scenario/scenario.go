// Package scenario reads YAML descriptions of headless matches.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tankduel/engine/internal/config"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/match"
)

// ErrNoPlayers is returned when a scenario does not seat anyone.
var ErrNoPlayers = errors.New("scenario has no players")

// WindRange bounds the per-round wind draw.
type WindRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Scenario describes one match: the field, the forces and who sits at each tank.
// Zero values fall back to the runtime configuration.
type Scenario struct {
	Name      string       `yaml:"name"`
	Seed      string       `yaml:"seed"`
	Mode      match.Mode   `yaml:"mode"`
	Width     int          `yaml:"width"`
	Height    int          `yaml:"height"`
	Gravity   float64      `yaml:"gravity"`
	Wind      *WindRange   `yaml:"wind"`
	MaxRounds int          `yaml:"max_rounds"`
	Players   []match.Seat `yaml:"players"`
	// Shop lists what a round winner buys, in order, while money lasts.
	Shop []gameplay.ShopItemID `yaml:"shop"`
}

// LoadFile reads and validates the scenario stored at path.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a scenario document. Unknown keys are rejected so typos surface early.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoPlayers
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the fields a YAML decoder cannot.
func (s *Scenario) Validate() error {
	if len(s.Players) == 0 {
		return ErrNoPlayers
	}
	var problems []string
	if len(s.Players) > match.MaxSeats {
		problems = append(problems, fmt.Sprintf("at most %d players, got %d", match.MaxSeats, len(s.Players)))
	}
	switch s.Mode {
	case "", match.ModeOnePlayer, match.ModeTwoPlayer, match.ModeDemo:
	default:
		problems = append(problems, fmt.Sprintf("unknown mode %q", s.Mode))
	}
	if s.Width < 0 || s.Height < 0 || s.MaxRounds < 0 {
		problems = append(problems, "width, height and max_rounds must not be negative")
	}
	if s.Gravity < 0 {
		problems = append(problems, fmt.Sprintf("gravity must not be negative, got %v", s.Gravity))
	}
	if s.Wind != nil && s.Wind.Min > s.Wind.Max {
		problems = append(problems, fmt.Sprintf("wind min %v exceeds max %v", s.Wind.Min, s.Wind.Max))
	}
	catalog := gameplay.DefaultCatalog()
	for _, item := range s.Shop {
		if _, ok := catalog.ShopItem(item); !ok {
			problems = append(problems, fmt.Sprintf("unknown shop item %q", item))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ApplyDefaults fills unset fields from cfg.
func (s *Scenario) ApplyDefaults(cfg *config.Config) {
	if s == nil || cfg == nil {
		return
	}
	if s.Seed == "" {
		s.Seed = cfg.Seed
	}
	if s.Width == 0 {
		s.Width = cfg.Width
	}
	if s.Height == 0 {
		s.Height = cfg.Height
	}
	if s.Gravity == 0 {
		s.Gravity = cfg.Gravity
	}
	if s.MaxRounds == 0 {
		s.MaxRounds = cfg.MaxRounds
	}
	if s.Mode == "" {
		s.Mode = s.inferMode()
	}
}

// inferMode names the classic mode closest to the roster.
func (s *Scenario) inferMode() match.Mode {
	humans := 0
	for _, seat := range s.Players {
		if !seat.IsAI() {
			humans++
		}
	}
	switch humans {
	case 0:
		return match.ModeDemo
	case 1:
		return match.ModeOnePlayer
	default:
		return match.ModeTwoPlayer
	}
}

// EngineOptions converts the scenario forces into engine options.
func (s *Scenario) EngineOptions() []match.Option {
	if s == nil {
		return nil
	}
	var opts []match.Option
	if s.Gravity > 0 {
		opts = append(opts, match.WithGravity(s.Gravity))
	}
	if s.Wind != nil {
		opts = append(opts, match.WithWindRange(s.Wind.Min, s.Wind.Max))
	}
	return opts
}

// FromConfig builds the classic two seat scenario described by environment configuration.
func FromConfig(cfg *config.Config) (*Scenario, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	mode := match.Mode(cfg.Mode)
	seats, err := match.SeatsFor(mode, cfg.AIProfile, cfg.OpponentProfile)
	if err != nil {
		return nil, err
	}
	sc := &Scenario{Name: string(mode), Mode: mode, Players: seats}
	sc.ApplyDefaults(cfg)
	return sc, nil
}

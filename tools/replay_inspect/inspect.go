// Package replayinspect summarises recorded duels for operators.
package replayinspect

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tankduel/engine/internal/events"
	"tankduel/engine/internal/replay"
)

// SeatStats tallies what one tank did over the match.
type SeatStats struct {
	Shots      int     `json:"shots"`
	DamageDone float64 `json:"damage_done"`
	Kills      int     `json:"kills"`
	RoundsWon  int     `json:"rounds_won"`
	Spent      int     `json:"spent"`
}

// Summary condenses a replay bundle.
type Summary struct {
	Dir      string               `json:"dir"`
	Header   replay.Header        `json:"header"`
	Events   map[events.Kind]int  `json:"events"`
	Frames   int                  `json:"frames"`
	Duration float64              `json:"duration"`
	Seats    map[string]SeatStats `json:"seats"`
}

// Summarize loads the bundle at path, a bundle directory or its manifest.json, and tallies it.
func Summarize(path string) (Summary, error) {
	bundle, err := load(path)
	if err != nil {
		return Summary{}, err
	}
	return summarize(bundle), nil
}

// Timeline loads the bundle at path and renders one line per event or frame.
func Timeline(path string) ([]string, error) {
	bundle, err := load(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	err = bundle.Replay(func(entry replay.TimelineEntry) error {
		if entry.Frame != nil {
			lines = append(lines, fmt.Sprintf("%8.3fs frame tick=%d tanks=%d shells=%d", entry.Clock, entry.Frame.Tick, len(entry.Frame.Tanks), len(entry.Frame.Projectiles)))
			return nil
		}
		payload, err := json.Marshal(entry.Event.Event)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%8.3fs #%d %s %s", entry.Clock, entry.Event.Sequence, entry.Event.Kind(), payload))
		return nil
	})
	return lines, err
}

func load(path string) (*replay.Bundle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}
	//1.- Accept the manifest itself as well as its directory.
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	bundle, err := replay.Load(path)
	if err != nil {
		return nil, err
	}
	if bundle.Manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported manifest version %d", bundle.Manifest.Version)
	}
	return bundle, nil
}

func summarize(bundle *replay.Bundle) Summary {
	s := Summary{
		Dir:    bundle.Dir,
		Header: bundle.Header,
		Events: make(map[events.Kind]int),
		Frames: len(bundle.Frames),
		Seats:  make(map[string]SeatStats),
	}
	update := func(name string, apply func(*SeatStats)) {
		if name == "" {
			return
		}
		stats := s.Seats[name]
		apply(&stats)
		s.Seats[name] = stats
	}
	for _, env := range bundle.Events {
		s.Events[env.Kind()]++
		if env.Clock > s.Duration {
			s.Duration = env.Clock
		}
		switch ev := env.Event.(type) {
		case events.ShotFired:
			update(ev.Shooter, func(st *SeatStats) { st.Shots++; st.Spent += ev.Cost })
		case events.Damage:
			update(ev.Attacker, func(st *SeatStats) {
				st.DamageDone += ev.HealthLost
				if ev.Killed {
					st.Kills++
				}
			})
		case events.RoundEnded:
			update(ev.Winner, func(st *SeatStats) { st.RoundsWon++ })
		case events.Purchase:
			update(ev.Buyer, func(st *SeatStats) { st.Spent += ev.Cost })
		}
	}
	if n := len(bundle.Frames); n > 0 && bundle.Frames[n-1].Clock > s.Duration {
		s.Duration = bundle.Frames[n-1].Clock
	}
	return s
}

// Entry is one bundle found by Catalog.
type Entry struct {
	Dir    string        `json:"dir"`
	Header replay.Header `json:"header"`
}

// Catalog walks root for closed replay bundles, identified by their header.json.
func Catalog(root string) ([]Entry, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root directory must be provided")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root must be a directory")
	}

	var entries []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Name() != "header.json" {
			return nil
		}
		header, err := replay.ReadHeader(path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Dir: filepath.Dir(path), Header: header})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Dir < entries[j].Dir })
	return entries, nil
}

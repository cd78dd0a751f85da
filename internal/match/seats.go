package match

import (
	"errors"
	"fmt"
	"strings"

	"tankduel/engine/internal/ai"
	"tankduel/engine/internal/gameplay"
)

// Mode selects who controls each tank.
type Mode string

const (
	// ModeOnePlayer pits a human against the computer.
	ModeOnePlayer Mode = "1player"
	// ModeTwoPlayer is a hot seat game between two humans.
	ModeTwoPlayer Mode = "2player"
	// ModeDemo lets two computer opponents fight each other.
	ModeDemo Mode = "demo"
)

// MaxSeats bounds how many tanks share one field.
const MaxSeats = 4

var (
	// ErrUnknownProfile is returned when a seat names an opponent style that does not exist.
	ErrUnknownProfile = errors.New("unknown ai profile")
	// ErrUnknownMode is returned for modes other than 1player, 2player and demo.
	ErrUnknownMode = errors.New("unknown game mode")
	// ErrInvalidSeats is returned when the roster cannot hold a duel.
	ErrInvalidSeats = errors.New("invalid seat roster")
)

var seatColors = []string{"#0000FF", "#FF0000", "#00AA00", "#FFAA00"}

// Seat describes one tank slot before a game starts.
type Seat struct {
	Name string `json:"name" yaml:"name"`
	// Profile names the computer opponent driving the seat. Empty means a human.
	Profile string `json:"profile,omitempty" yaml:"profile"`
	// Money overrides the starting balance when positive.
	Money int `json:"money,omitempty" yaml:"money"`
}

// IsAI reports whether the seat is driven by a computer profile.
func (s Seat) IsAI() bool {
	return strings.TrimSpace(s.Profile) != ""
}

// SeatsFor builds the classic two tank roster for a mode. The opponent profile drives the
// second seat in demo games and defaults to profile when empty.
func SeatsFor(mode Mode, profile, opponent string) ([]Seat, error) {
	if strings.TrimSpace(opponent) == "" {
		opponent = profile
	}
	switch mode {
	case ModeOnePlayer:
		return []Seat{{Name: "Player 1"}, {Name: "Computer", Profile: profile}}, nil
	case ModeTwoPlayer:
		return []Seat{{Name: "Player 1"}, {Name: "Player 2"}}, nil
	case ModeDemo:
		return []Seat{{Name: "Computer 1", Profile: profile}, {Name: "Computer 2", Profile: opponent}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// resolveSeats validates a roster and looks up the profile for every computer seat.
func resolveSeats(seats []Seat) ([]Seat, []ai.Profile, error) {
	//1.- A duel needs at least two tanks and the field only spaces a handful.
	if len(seats) < 2 || len(seats) > MaxSeats {
		return nil, nil, fmt.Errorf("%w: need 2 to %d seats, got %d", ErrInvalidSeats, MaxSeats, len(seats))
	}
	resolved := make([]Seat, len(seats))
	profiles := make([]ai.Profile, len(seats))
	names := make(map[string]struct{}, len(seats))
	for i, seat := range seats {
		seat.Name = strings.TrimSpace(seat.Name)
		if seat.Name == "" {
			seat.Name = fmt.Sprintf("Player %d", i+1)
		}
		//2.- Names key the damage history and AI memory so they must be unique.
		if _, dup := names[seat.Name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidSeats, seat.Name)
		}
		names[seat.Name] = struct{}{}
		if seat.Money <= 0 {
			seat.Money = gameplay.InitialMoney
		}
		if seat.IsAI() {
			profile, ok := ai.Lookup(seat.Profile)
			if !ok {
				return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProfile, seat.Profile)
			}
			seat.Profile = string(profile.ID())
			profiles[i] = profile
		}
		resolved[i] = seat
	}
	return resolved, profiles, nil
}

// seatX spreads n tanks between the classic 20% and 80% marks.
func seatX(width, index, n int) float64 {
	if n <= 1 {
		return float64(width) / 2
	}
	ratio := gameplay.Tank1XRatio + (gameplay.Tank2XRatio-gameplay.Tank1XRatio)*float64(index)/float64(n-1)
	return float64(width) * ratio
}

func seatColor(index int) string {
	return seatColors[index%len(seatColors)]
}

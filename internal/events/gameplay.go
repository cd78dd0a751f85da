// Package events defines the typed records a match emits as it plays out.
package events

import (
	"tankduel/engine/internal/logging"
)

// Kind enumerates the supported gameplay event payloads.
type Kind string

const (
	KindRoundStarted Kind = "round_started"
	KindAIDecision   Kind = "ai_decision"
	KindShotFired    Kind = "shot_fired"
	KindImpact       Kind = "impact"
	KindDamage       Kind = "damage"
	KindRoundEnded   Kind = "round_ended"
	KindPurchase     Kind = "purchase"
	KindGameOver     Kind = "game_over"
)

// Event is one gameplay record.
type Event interface {
	Kind() Kind
	LoggingFields() []logging.Field
}

// TankState is a tank as seen at the start of a round.
type TankState struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Shield float64 `json:"shield"`
	Money  int     `json:"money"`
	AI     bool    `json:"ai"`
}

// RoundStarted marks a fresh level.
type RoundStarted struct {
	Round   int         `json:"round"`
	Wind    float64     `json:"wind"`
	Gravity float64     `json:"gravity"`
	Tanks   []TankState `json:"tanks"`
}

func (RoundStarted) Kind() Kind { return KindRoundStarted }

func (e RoundStarted) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.Int("round", e.Round),
		logging.Float("wind", e.Wind),
		logging.Float("gravity", e.Gravity),
		logging.Int("tanks", len(e.Tanks)),
	}
}

// AIDecision records what a computer opponent chose.
type AIDecision struct {
	Shooter string  `json:"shooter"`
	Profile string  `json:"profile"`
	Target  string  `json:"target"`
	Angle   float64 `json:"angle"`
	Power   float64 `json:"power"`
	Weapon  string  `json:"weapon"`
}

func (AIDecision) Kind() Kind { return KindAIDecision }

func (e AIDecision) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("shooter", e.Shooter),
		logging.String("profile", e.Profile),
		logging.String("target", e.Target),
		logging.Float("angle", e.Angle),
		logging.Float("power", e.Power),
		logging.String("weapon", e.Weapon),
	}
}

// ShotFired records a tank pulling the trigger.
type ShotFired struct {
	Shooter        string  `json:"shooter"`
	Weapon         string  `json:"weapon"`
	Angle          float64 `json:"angle"`
	Power          float64 `json:"power"`
	Cost           int     `json:"cost"`
	ContactTrigger bool    `json:"contactTrigger"`
	AI             bool    `json:"ai"`
}

func (ShotFired) Kind() Kind { return KindShotFired }

func (e ShotFired) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("shooter", e.Shooter),
		logging.String("weapon", e.Weapon),
		logging.Float("angle", e.Angle),
		logging.Float("power", e.Power),
		logging.Int("cost", e.Cost),
		logging.Bool("contact_trigger", e.ContactTrigger),
		logging.Bool("ai", e.AI),
	}
}

// Impact records where a projectile was resolved.
type Impact struct {
	Weapon  string  `json:"weapon"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Outcome string  `json:"outcome"`
	Terrain string  `json:"terrain"`
}

func (Impact) Kind() Kind { return KindImpact }

func (e Impact) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("weapon", e.Weapon),
		logging.Float("x", e.X),
		logging.Float("y", e.Y),
		logging.String("outcome", e.Outcome),
		logging.String("terrain_effect", e.Terrain),
	}
}

// Damage records one tank hurting another.
type Damage struct {
	Attacker   string  `json:"attacker"`
	Victim     string  `json:"victim"`
	Amount     float64 `json:"amount"`
	HealthLost float64 `json:"healthLost"`
	Killed     bool    `json:"killed"`
	// Source is "impact" for blasts and "napalm" for burning pools.
	Source string `json:"source"`
}

func (Damage) Kind() Kind { return KindDamage }

func (e Damage) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("attacker", e.Attacker),
		logging.String("victim", e.Victim),
		logging.Float("amount", e.Amount),
		logging.Float("health_lost", e.HealthLost),
		logging.Bool("killed", e.Killed),
		logging.String("source", e.Source),
	}
}

// RoundEnded records the outcome of a round.
type RoundEnded struct {
	Round  int    `json:"round"`
	Winner string `json:"winner"`
	Reward int    `json:"reward"`
}

func (RoundEnded) Kind() Kind { return KindRoundEnded }

func (e RoundEnded) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.Int("round", e.Round),
		logging.String("winner", e.Winner),
		logging.Int("reward", e.Reward),
	}
}

// Purchase records a shop transaction.
type Purchase struct {
	Buyer   string `json:"buyer"`
	Item    string `json:"item"`
	Cost    int    `json:"cost"`
	Balance int    `json:"balance"`
}

func (Purchase) Kind() Kind { return KindPurchase }

func (e Purchase) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("buyer", e.Buyer),
		logging.String("item", e.Item),
		logging.Int("cost", e.Cost),
		logging.Int("balance", e.Balance),
	}
}

// GameOver records the end of the match.
type GameOver struct {
	Round  int    `json:"round"`
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

func (GameOver) Kind() Kind { return KindGameOver }

func (e GameOver) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.Int("round", e.Round),
		logging.String("winner", e.Winner),
		logging.String("reason", e.Reason),
	}
}

// decoders builds an empty payload per kind for JSON decoding.
var decoders = map[Kind]func() Event{
	KindRoundStarted: func() Event { return &RoundStarted{} },
	KindAIDecision:   func() Event { return &AIDecision{} },
	KindShotFired:    func() Event { return &ShotFired{} },
	KindImpact:       func() Event { return &Impact{} },
	KindDamage:       func() Event { return &Damage{} },
	KindRoundEnded:   func() Event { return &RoundEnded{} },
	KindPurchase:     func() Event { return &Purchase{} },
	KindGameOver:     func() Event { return &GameOver{} },
}

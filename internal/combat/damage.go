package combat

import (
	"math"

	"tankduel/engine/internal/logging"
)

// Falloff returns the linear splash damage dealt at dist from an impact.
// Anything at or beyond the radius takes nothing.
func Falloff(baseDamage, radius, dist float64) float64 {
	if !(radius > 0) || !(baseDamage > 0) || math.IsNaN(dist) || dist >= radius {
		return 0
	}
	if dist < 0 {
		dist = 0
	}
	return baseDamage * (1 - dist/radius)
}

// DamageResult describes what one impact did to one tank.
type DamageResult struct {
	//1.- Victim names the tank that was caught in the blast.
	Victim string
	//2.- Distance is the separation between the blast centre and the tank.
	Distance float64
	//3.- Amount is the falloff damage before the shield absorbed anything.
	Amount float64
	//4.- HealthLost is what actually came off the health bar.
	HealthLost float64
	//5.- Killed reports whether this hit took the tank from alive to dead.
	Killed bool
}

// Absorbed returns the share of the hit soaked by the shield.
func (r DamageResult) Absorbed() float64 {
	absorbed := r.Amount - r.HealthLost
	if absorbed < 1e-9 {
		return 0
	}
	return absorbed
}

// LoggingFields returns structured logging fields describing the resolved damage.
func (r DamageResult) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("victim", r.Victim),
		logging.Float("distance", roundTo(r.Distance, 2)),
		logging.Float("damage_total", roundTo(r.Amount, 2)),
		logging.Float("damage_absorbed", roundTo(r.Absorbed(), 2)),
		logging.Float("health_lost", roundTo(r.HealthLost, 2)),
		logging.Bool("killed", r.Killed),
	}
}

func roundTo(value float64, places int) float64 {
	//1.- Clamp floating point noise so log lines stay readable.
	if math.Abs(value) < 1e-6 {
		return 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

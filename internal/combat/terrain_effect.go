package combat

import (
	"tankduel/engine/internal/gameplay"
)

// TerrainEffect classifies how an impact reshapes the ground.
type TerrainEffect string

const (
	// EffectCrater removes material around the impact.
	EffectCrater TerrainEffect = "crater"
	// EffectDirt piles material around the impact.
	EffectDirt TerrainEffect = "dirt"
	// EffectNone leaves the ground alone.
	EffectNone TerrainEffect = "none"
)

// Deformable is the part of the terrain an impact can reshape.
type Deformable interface {
	Height(x float64) float64
	Width() int
	Explode(x, y, radius float64)
	AddDirt(x, y, radius float64)
}

// EffectFor returns the terrain effect of a weapon.
func EffectFor(weapon gameplay.WeaponID) TerrainEffect {
	switch {
	case gameplay.IsDirtWeapon(weapon):
		return EffectDirt
	case gameplay.IsTracer(weapon):
		return EffectNone
	default:
		return EffectCrater
	}
}

// ApplyTerrainEffect reshapes ground for an impact of weapon at (x, y) and reports what it did.
func ApplyTerrainEffect(ground Deformable, weapon gameplay.WeaponID, x, y, radius float64) TerrainEffect {
	effect := EffectFor(weapon)
	if ground == nil {
		return effect
	}
	switch effect {
	case EffectDirt:
		ground.AddDirt(x, y, radius)
	case EffectCrater:
		ground.Explode(x, y, radius)
	}
	return effect
}

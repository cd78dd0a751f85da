// Package environment holds the per-round gravity and wind state.
package environment

import (
	"math/rand"

	"tankduel/engine/internal/gameplay"
)

// Environment carries the scalar forces applied to every projectile.
type Environment struct {
	Gravity   float64
	WindSpeed float64
	windMin   float64
	windMax   float64
	rng       *rand.Rand
}

// Option customises an Environment.
type Option func(*Environment)

// WithWindRange overrides the bounds of the uniform wind draw.
func WithWindRange(minWind, maxWind float64) Option {
	return func(e *Environment) {
		if minWind > maxWind {
			minWind, maxWind = maxWind, minWind
		}
		e.windMin, e.windMax = minWind, maxWind
	}
}

// WithGravity overrides the starting gravity.
func WithGravity(gravity float64) Option {
	return func(e *Environment) {
		e.Gravity = gravity
	}
}

// New creates an environment at default gravity and draws an initial wind from rng.
func New(rng *rand.Rand, opts ...Option) *Environment {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	env := &Environment{
		Gravity: gameplay.Gravity,
		windMin: gameplay.WindMin,
		windMax: gameplay.WindMax,
		rng:     rng,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(env)
		}
	}
	env.GenerateWind()
	return env
}

// Calm returns an environment with the given gravity and no wind, useful for simulations.
func Calm(gravity float64) *Environment {
	return &Environment{Gravity: gravity, windMin: gameplay.WindMin, windMax: gameplay.WindMax}
}

// GenerateWind draws a fresh wind speed uniformly over the configured range.
func (e *Environment) GenerateWind() {
	if e == nil {
		return
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(1))
	}
	e.WindSpeed = e.windMin + e.rng.Float64()*(e.windMax-e.windMin)
}

// SetGravity assigns gravity without validation.
func (e *Environment) SetGravity(gravity float64) {
	if e == nil {
		return
	}
	e.Gravity = gravity
}

// SetWind assigns the wind speed without validation.
func (e *Environment) SetWind(wind float64) {
	if e == nil {
		return
	}
	e.WindSpeed = wind
}

// Snapshot returns the current forces as a value copy.
func (e *Environment) Snapshot() (gravity, wind float64) {
	if e == nil {
		return gameplay.Gravity, 0
	}
	return e.Gravity, e.WindSpeed
}

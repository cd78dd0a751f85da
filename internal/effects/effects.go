// Package effects holds the transient state left behind by impacts.
package effects

import (
	"math"
	"math/rand"

	"tankduel/engine/internal/gameplay"
)

// Particle is one fragment of an explosion burst.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   float64
}

// Explosion is the cosmetic burst spawned at every resolved impact.
type Explosion struct {
	X, Y      float64
	Weapon    gameplay.WeaponID
	Color     string
	Lifetime  float64
	Age       float64
	Particles []Particle
}

// NewExplosion bursts particles at (x, y) using rng for direction and speed.
func NewExplosion(x, y float64, weapon gameplay.WeaponID, color string, rng *rand.Rand) *Explosion {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	count := gameplay.ExplosionParticleCount
	lifetime := gameplay.ExplosionLifetime
	if weapon == gameplay.WeaponNuke {
		count = gameplay.ExplosionParticleCountNuke
		lifetime = gameplay.ExplosionLifetimeNuke
	}
	e := &Explosion{X: x, Y: y, Weapon: weapon, Color: color, Lifetime: lifetime, Particles: make([]Particle, count)}
	for i := range e.Particles {
		angle := rng.Float64() * 2 * math.Pi
		speed := rng.Float64()*(gameplay.ExplosionParticleSpeedMax-gameplay.ExplosionParticleSpeedMin) + gameplay.ExplosionParticleSpeedMin
		e.Particles[i] = Particle{X: x, Y: y, VX: math.Cos(angle) * speed, VY: math.Sin(angle) * speed, Life: 1}
	}
	return e
}

// Update advances the particles and reports whether the burst is still alive.
func (e *Explosion) Update(dt float64) bool {
	if e == nil {
		return false
	}
	e.Age += dt
	frames := dt * gameplay.EffectFrameRate
	for i := range e.Particles {
		p := &e.Particles[i]
		p.X += p.VX * frames
		p.Y += p.VY * frames
		p.VY -= gameplay.ExplosionParticleGravity * frames
		p.Life -= dt / e.Lifetime
	}
	return e.Age < e.Lifetime
}

// NapalmPool is a spreading fire that burns tanks standing in it.
type NapalmPool struct {
	X, Y            float64
	Radius          float64
	MaxRadius       float64
	Lifetime        float64
	Age             float64
	DamagePerSecond float64
	// Owner names the tank whose shell started the fire.
	Owner string
}

// NewNapalmPool creates an empty pool that grows to maxRadius.
func NewNapalmPool(x, y, maxRadius float64) *NapalmPool {
	return &NapalmPool{
		X:               x,
		Y:               y,
		MaxRadius:       maxRadius,
		Lifetime:        gameplay.NapalmLifetime,
		DamagePerSecond: gameplay.NapalmDamagePerSecond,
	}
}

// SpawnNapalm creates the primary pool at the impact plus the satellites around it.
func SpawnNapalm(x, y float64, rng *rand.Rand) []*NapalmPool {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	pools := []*NapalmPool{NewNapalmPool(x, y, gameplay.NapalmPrimaryRadius)}
	for i := 0; i < gameplay.NapalmSatellites; i++ {
		angle := float64(i) / gameplay.NapalmSatellites * 2 * math.Pi
		dist := 15 + rng.Float64()*10
		pools = append(pools, NewNapalmPool(x+math.Cos(angle)*dist, y+math.Sin(angle)*dist, gameplay.NapalmSatelliteRadius))
	}
	return pools
}

// Update grows the pool and reports whether it is still burning.
func (n *NapalmPool) Update(dt float64) bool {
	if n == nil {
		return false
	}
	n.Age += dt
	if n.Radius < n.MaxRadius {
		n.Radius = math.Min(n.MaxRadius, n.Radius+n.MaxRadius/gameplay.NapalmExpandSeconds*dt)
	}
	return n.Age < n.Lifetime
}

// DamageRate returns the damage per second applied to a tank at (x, y).
func (n *NapalmPool) DamageRate(x, y float64) float64 {
	if n == nil || n.Radius <= 0 {
		return 0
	}
	dist := math.Hypot(x-n.X, y-n.Y)
	if dist >= n.Radius {
		return 0
	}
	return n.DamagePerSecond * (1 - dist/n.Radius)
}

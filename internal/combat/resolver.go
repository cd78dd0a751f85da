package combat

import (
	"math"
	"math/rand"

	"tankduel/engine/internal/effects"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/logging"
	"tankduel/engine/internal/tank"
)

// Impact describes a projectile that has stopped and must be resolved.
type Impact struct {
	X, Y float64
	// GroundHeight is the terrain height under X when the projectile stopped.
	GroundHeight float64
	Weapon       gameplay.WeaponID
	// Attacker names the tank whose turn produced the shot.
	Attacker string
	// Clock is the simulated match time used to stamp history entries.
	Clock float64
}

// Resolution is everything an impact produced.
type Resolution struct {
	X, Y      float64
	Weapon    gameplay.WeaponID
	Effect    TerrainEffect
	Explosion *effects.Explosion
	Napalm    []*effects.NapalmPool
	Damage    []DamageResult
}

// TotalDamage sums the pre-shield damage dealt by the impact.
func (r Resolution) TotalDamage() float64 {
	total := 0.0
	for _, hit := range r.Damage {
		total += hit.Amount
	}
	return total
}

// Resolver turns stopped projectiles into terrain changes, effects and damage.
type Resolver struct {
	catalog gameplay.Catalog
	rng     *rand.Rand
	history *History
	logger  *logging.Logger
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithCatalog overrides the weapon table used for damage and radius lookups.
func WithCatalog(catalog gameplay.Catalog) ResolverOption {
	return func(r *Resolver) {
		r.catalog = catalog.Clone()
	}
}

// WithRand injects the random source used for explosion particles and napalm spread.
func WithRand(rng *rand.Rand) ResolverOption {
	return func(r *Resolver) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithHistory shares a damage history with other consumers.
func WithHistory(history *History) ResolverOption {
	return func(r *Resolver) {
		if history != nil {
			r.history = history
		}
	}
}

// WithLogger attaches a structured logger for impact diagnostics.
func WithLogger(logger *logging.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver backed by the default weapon table.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog: gameplay.DefaultCatalog(),
		rng:     rand.New(rand.NewSource(1)),
		history: NewHistory(),
		logger:  logging.L(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// History exposes the damage log fed by every resolution.
func (r *Resolver) History() *History {
	if r == nil {
		return nil
	}
	return r.history
}

// Catalog returns the weapon table in use.
func (r *Resolver) Catalog() gameplay.Catalog {
	if r == nil {
		return gameplay.DefaultCatalog()
	}
	return r.catalog
}

// ResolveImpact applies an impact to the ground and every living tank.
func (r *Resolver) ResolveImpact(ground Deformable, tanks []*tank.Tank, impact Impact) Resolution {
	if r == nil {
		r = NewResolver()
	}
	//1.- Never resolve below the surface.
	x := impact.X
	y := math.Max(impact.Y, impact.GroundHeight)
	radius := r.catalog.Radius(impact.Weapon)
	base := r.catalog.Damage(impact.Weapon)

	res := Resolution{X: x, Y: y, Weapon: impact.Weapon}
	res.Explosion = effects.NewExplosion(x, y, impact.Weapon, r.catalog.Color(impact.Weapon), r.rng)
	if impact.Weapon == gameplay.WeaponNapalm {
		res.Napalm = effects.SpawnNapalm(x, y, r.rng)
		for _, pool := range res.Napalm {
			pool.Owner = impact.Attacker
		}
	}

	//2.- Reshape the ground before damage so tanks settle into the new surface next tick.
	res.Effect = ApplyTerrainEffect(ground, impact.Weapon, x, y, radius)

	//3.- Tracers mark a spot and hurt nobody.
	if !gameplay.IsTracer(impact.Weapon) {
		for _, t := range tanks {
			if !t.IsAlive() {
				continue
			}
			dist := t.Distance(x, y)
			if dist >= radius {
				continue
			}
			amount := Falloff(base, radius, dist)
			lost := t.TakeDamage(amount)
			hit := DamageResult{Victim: t.Name, Distance: dist, Amount: amount, HealthLost: lost, Killed: !t.IsAlive()}
			res.Damage = append(res.Damage, hit)
			r.history.Record(HistoryEntry{Attacker: impact.Attacker, Victim: t.Name, Amount: amount, Timestamp: impact.Clock})
			r.logger.Debug("tank damaged", append(hit.LoggingFields(), logging.String("attacker", impact.Attacker))...)
		}
	}

	r.logger.Debug("impact resolved",
		logging.String("weapon", string(impact.Weapon)),
		logging.Float("x", roundTo(x, 2)),
		logging.Float("y", roundTo(y, 2)),
		logging.String("terrain_effect", string(res.Effect)),
		logging.Int("tanks_hit", len(res.Damage)),
	)
	return res
}

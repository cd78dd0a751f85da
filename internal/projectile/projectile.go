// Package projectile implements the in-flight behaviour of every shell family.
//
// A Projectile is a tagged union: Kind selects which of the per-kind state blocks
// Step consults, and every kind shares the ballistic state and trail.
package projectile

import (
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/physics"
)

// Kind selects the flight and termination policy of a projectile.
type Kind int

const (
	KindNormal Kind = iota
	KindNapalm
	KindMIRV
	KindFunky
	KindLaser
	KindDigger
	KindRoller
)

var kindNames = map[Kind]string{
	KindNormal: "normal",
	KindNapalm: "napalm",
	KindMIRV:   "mirv",
	KindFunky:  "funky",
	KindLaser:  "laser",
	KindDigger: "digger",
	KindRoller: "roller",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFor maps a weapon to the projectile family that flies it.
func KindFor(id gameplay.WeaponID) Kind {
	switch id {
	case gameplay.WeaponRoller, gameplay.WeaponBabyRoller:
		return KindRoller
	case gameplay.WeaponDigger, gameplay.WeaponBabyDigger:
		return KindDigger
	case gameplay.WeaponFunky:
		return KindFunky
	case gameplay.WeaponMIRV:
		return KindMIRV
	case gameplay.WeaponNapalm:
		return KindNapalm
	case gameplay.WeaponLaser:
		return KindLaser
	default:
		return KindNormal
	}
}

// Point is a position on the battlefield with y measured up from the bottom.
type Point struct {
	X float64
	Y float64
}

// MIRVState tracks the apex so the warhead can split on the way down.
type MIRVState struct {
	HasSplit  bool
	MaxHeight float64
	PreviousY float64
}

// FunkyState counts bounces.
type FunkyState struct {
	Bounces    int
	MaxBounces int
}

// DiggerState accumulates underground dwell.
type DiggerState struct {
	Underground   bool
	Elapsed       float64
	Distance      float64
	ShouldExplode bool
}

// RollerState carries the one dimensional rolling model.
type RollerState struct {
	Rolling          bool
	Velocity         float64
	Clock            float64
	lastSample       float64
	samples          []rollSample
	DirectionChanges int
	lastSign         int
	Distance         float64
	ShouldExplode    bool
}

type rollSample struct {
	x    float64
	time float64
}

// Projectile is one shell in flight.
type Projectile struct {
	physics.Ballistic
	Kind              Kind
	Weapon            gameplay.WeaponID
	Active            bool
	UseContactTrigger bool

	trail []Point

	MIRV   MIRVState
	Funky  FunkyState
	Digger DiggerState
	Roller RollerState
}

// New fires a projectile from (x, y) at angleDeg with the given power.
func New(x, y, angleDeg, power float64, weapon gameplay.WeaponID, contactTrigger bool) *Projectile {
	p := &Projectile{
		Ballistic:         physics.Launch(x, y, angleDeg, power),
		Kind:              KindFor(weapon),
		Weapon:            weapon,
		Active:            true,
		UseContactTrigger: contactTrigger,
	}
	p.MIRV = MIRVState{MaxHeight: y, PreviousY: y}
	p.Funky = FunkyState{MaxBounces: funkyMaxBounces}
	return p
}

// NewWithVelocity creates a projectile with an explicit heading and speed, used for MIRV warheads.
func NewWithVelocity(x, y, headingRad, speed float64, weapon gameplay.WeaponID) *Projectile {
	p := New(x, y, 0, 0, weapon, false)
	p.Ballistic = physics.LaunchVelocity(x, y, headingRad, speed)
	return p
}

// Trail returns a copy of the recorded positions, oldest first.
func (p *Projectile) Trail() []Point {
	if p == nil {
		return nil
	}
	out := make([]Point, len(p.trail))
	copy(out, p.trail)
	return out
}

// Origin returns the earliest recorded position, falling back to the current one.
func (p *Projectile) Origin() Point {
	if p == nil {
		return Point{}
	}
	if len(p.trail) > 0 {
		return p.trail[0]
	}
	return Point{X: p.X, Y: p.Y}
}

func (p *Projectile) recordTrail() {
	if len(p.trail) >= gameplay.ProjectileTrailMaxLength {
		copy(p.trail, p.trail[1:])
		p.trail = p.trail[:len(p.trail)-1]
	}
	p.trail = append(p.trail, Point{X: p.X, Y: p.Y})
}

// ShouldSplit reports whether a MIRV has started descending and not yet split.
func (p *Projectile) ShouldSplit() bool {
	return p != nil && p.Kind == KindMIRV && p.VY < 0 && !p.MIRV.HasSplit
}

// Damage returns the catalogue damage for the projectile's weapon.
func (p *Projectile) Damage(catalog gameplay.Catalog) float64 {
	return catalog.Damage(p.Weapon)
}

// Radius returns the catalogue blast radius for the projectile's weapon.
func (p *Projectile) Radius(catalog gameplay.Catalog) float64 {
	return catalog.Radius(p.Weapon)
}

// Color returns the explosion palette entry for the projectile's weapon.
func (p *Projectile) Color(catalog gameplay.Catalog) string {
	return catalog.Color(p.Weapon)
}

// Package ai picks angle, power, weapon and target for computer-controlled tanks.
package ai

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"tankduel/engine/internal/combat"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/tank"
)

// ID names an opponent style.
type ID string

const (
	Moron   ID = "moron"
	Shooter ID = "shooter"
	Tosser  ID = "tosser"
	Spoiler ID = "spoiler"
	Cyborg  ID = "cyborg"
)

// Ground is the terrain surface the search simulates shots against.
type Ground interface {
	Height(x float64) float64
	Width() int
}

// Context is everything a profile may look at when deciding a shot.
type Context struct {
	Shooter       *tank.Tank
	Enemies       []*tank.Tank
	DefaultTarget *tank.Tank
	Gravity       float64
	Wind          float64
	Ground        Ground
	// History is the recent damage log, newest first.
	History []combat.HistoryEntry
	// Money maps tank names to their balance. Missing names count as the starting balance.
	Money map[string]int
	// Memory carries learning state between turns. Profiles that learn record their pending shot here.
	Memory *Memory
	Rand   *rand.Rand
}

func (c Context) rng() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.New(rand.NewSource(1))
}

func (c Context) moneyOf(name string) int {
	if value, ok := c.Money[name]; ok {
		return value
	}
	return gameplay.InitialMoney
}

// Decision is the shot a profile wants fired.
type Decision struct {
	Angle float64
	Power float64
	// Weapon is empty when the profile keeps the current selection.
	Weapon gameplay.WeaponID
	// Target is set when the profile chose someone other than the default target.
	Target *tank.Tank
}

// ShotResult reports where a profile's shot landed.
type ShotResult struct {
	Shooter *tank.Tank
	Target  *tank.Tank
	ImpactX float64
	ImpactY float64
}

// Profile is one opponent style.
type Profile interface {
	ID() ID
	Label() string
	Description() string
	Decide(ctx Context) Decision
}

// Learner is implemented by profiles that consume the outcome of their shots.
type Learner interface {
	OnShotResult(memory *Memory, result ShotResult)
}

// Metadata describes a profile for menus and logs.
type Metadata struct {
	ID          ID
	Label       string
	Description string
}

var profileMetadata = []Metadata{
	{ID: Moron, Label: "Moron", Description: "Wild, random shots that rarely land."},
	{ID: Shooter, Label: "Shooter", Description: "Aims straight at you without compensating for physics."},
	{ID: Tosser, Label: "Tosser", Description: "Learns from previous misses and dials in over time."},
	{ID: Spoiler, Label: "Spoiler", Description: "Calculates near-perfect artillery arcs."},
	{ID: Cyborg, Label: "Cyborg", Description: "Strategic opponent that picks targets and weapons carefully."},
}

var registry = map[ID]Profile{
	Moron:   moronProfile{meta: profileMetadata[0]},
	Shooter: shooterProfile{meta: profileMetadata[1]},
	Tosser:  tosserProfile{meta: profileMetadata[2]},
	Spoiler: spoilerProfile{meta: profileMetadata[3]},
	Cyborg:  cyborgProfile{meta: profileMetadata[4]},
}

// Lookup resolves a profile by id, ignoring case and surrounding whitespace.
func Lookup(id string) (Profile, bool) {
	profile, ok := registry[ID(strings.ToLower(strings.TrimSpace(id)))]
	return profile, ok
}

// Options lists every profile in menu order.
func Options() []Metadata {
	out := make([]Metadata, len(profileMetadata))
	copy(out, profileMetadata)
	return out
}

// DescriptionOf returns the menu blurb for id, or an empty string.
func DescriptionOf(id ID) string {
	for _, meta := range profileMetadata {
		if meta.ID == id {
			return meta.Description
		}
	}
	return ""
}

// Consumes reports whether the profile wants shot outcomes reported back.
func Consumes(profile Profile) bool {
	_, ok := profile.(Learner)
	return ok
}

type moronProfile struct{ meta Metadata }

func (p moronProfile) ID() ID              { return p.meta.ID }
func (p moronProfile) Label() string       { return p.meta.Label }
func (p moronProfile) Description() string { return p.meta.Description }

// Decide lobs roughly towards the target with wide random error.
func (moronProfile) Decide(ctx Context) Decision {
	shooter, target := ctx.Shooter, ctx.DefaultTarget
	if shooter == nil || target == nil {
		return Decision{Angle: gameplay.DefaultAngle, Power: gameplay.DefaultPower}
	}
	rng := ctx.rng()
	dx := target.X - shooter.X
	dy := shooter.Y - target.Y

	angle := clamp(toDegrees(math.Atan2(-dy, dx)), gameplay.AngleMin, gameplay.AngleMax)
	angle = clamp(angle+(rng.Float64()-0.5)*40, gameplay.AngleMin, gameplay.AngleMax)

	distance := math.Hypot(dx, dy)
	power := math.Min(gameplay.PowerMax, distance/10)
	power = clamp(power+(rng.Float64()-0.5)*30, gameplay.PowerMin, gameplay.PowerMax)
	return Decision{Angle: angle, Power: power}
}

type shooterProfile struct{ meta Metadata }

func (p shooterProfile) ID() ID              { return p.meta.ID }
func (p shooterProfile) Label() string       { return p.meta.Label }
func (p shooterProfile) Description() string { return p.meta.Description }

// Decide points the barrel straight at the target, ignoring gravity and wind.
func (shooterProfile) Decide(ctx Context) Decision {
	return naiveAim(ctx, ctx.DefaultTarget)
}

func naiveAim(ctx Context, target *tank.Tank) Decision {
	shooter := ctx.Shooter
	if shooter == nil || target == nil {
		return Decision{Angle: gameplay.DefaultAngle, Power: gameplay.DefaultPower}
	}
	rng := ctx.rng()
	dx := target.X - shooter.X
	dy := target.Y - shooter.Y

	angle := clamp(toDegrees(math.Atan2(dy, dx)), gameplay.AngleMin, gameplay.AngleMax)
	angle = clamp(angle+(rng.Float64()-0.5)*6, gameplay.AngleMin, gameplay.AngleMax)

	distance := math.Hypot(dx, dy)
	power := distance/8 + (rng.Float64()-0.5)*10
	power = clamp(power, gameplay.PowerMin+5, gameplay.PowerMax-5)
	return Decision{Angle: angle, Power: power}
}

const (
	tosserStep       = 5.0
	tosserAngleGain  = 0.05
	tosserMaxAdjust  = 8.0
	tosserPowerRatio = 0.3
	tosserAngleInset = 5.0
)

type tosserProfile struct{ meta Metadata }

func (p tosserProfile) ID() ID              { return p.meta.ID }
func (p tosserProfile) Label() string       { return p.meta.Label }
func (p tosserProfile) Description() string { return p.meta.Description }

// Decide runs a coarse search and nudges it by the last miss against the same target.
func (tosserProfile) Decide(ctx Context) Decision {
	shooter, target := ctx.Shooter, ctx.DefaultTarget
	if shooter == nil || target == nil {
		return Decision{Angle: gameplay.DefaultAngle, Power: gameplay.DefaultPower}
	}
	var angle, power float64
	if solution, ok := SearchShotSolution(searchParams(ctx, target, tosserStep)); ok {
		angle, power = solution.Angle, solution.Power
	} else {
		fallback := moronProfile{}.Decide(ctx)
		angle, power = fallback.Angle, fallback.Power
	}

	//1.- A remembered miss against this exact target shifts the shot back towards it.
	if miss, ok := ctx.Memory.Miss(shooter.Name); ok && miss.Target == target.Name {
		adjustment := clamp(miss.ErrorX*tosserAngleGain, -tosserMaxAdjust, tosserMaxAdjust)
		angle = clamp(angle-adjustment, gameplay.AngleMin+tosserAngleInset, gameplay.AngleMax-tosserAngleInset)
		power = clamp(power-adjustment*tosserPowerRatio, gameplay.PowerMin, gameplay.PowerMax)
	}

	ctx.Memory.expect(shooter.Name, target.Name)
	return Decision{Angle: angle, Power: power}
}

// OnShotResult remembers the horizontal miss when the result matches the pending shot.
func (tosserProfile) OnShotResult(memory *Memory, result ShotResult) {
	if result.Shooter == nil || result.Target == nil {
		return
	}
	if !memory.settle(result.Shooter.Name, result.Target.Name) {
		return
	}
	memory.remember(result.Shooter.Name, Miss{Target: result.Target.Name, ErrorX: result.ImpactX - result.Target.X})
}

const spoilerStep = 2.0

type spoilerProfile struct{ meta Metadata }

func (p spoilerProfile) ID() ID              { return p.meta.ID }
func (p spoilerProfile) Label() string       { return p.meta.Label }
func (p spoilerProfile) Description() string { return p.meta.Description }

// Decide returns the best arc a fine search finds.
func (spoilerProfile) Decide(ctx Context) Decision {
	if ctx.Shooter == nil || ctx.DefaultTarget == nil {
		return Decision{Angle: gameplay.DefaultAngle, Power: gameplay.DefaultPower}
	}
	if solution, ok := SearchShotSolution(searchParams(ctx, ctx.DefaultTarget, spoilerStep)); ok {
		return Decision{Angle: solution.Angle, Power: solution.Power}
	}
	return naiveAim(ctx, ctx.DefaultTarget)
}

const (
	cyborgStep          = 1.5
	cyborgJitter        = 2.0
	cyborgWeakThreshold = 0.8
)

// cyborgArsenal lists the money thresholds, richest first.
var cyborgArsenal = []struct {
	above  int
	weapon gameplay.WeaponID
}{
	{above: 900, weapon: gameplay.WeaponNuke},
	{above: 400, weapon: gameplay.WeaponMIRV},
	{above: 300, weapon: gameplay.WeaponNapalm},
}

type cyborgProfile struct{ meta Metadata }

func (p cyborgProfile) ID() ID              { return p.meta.ID }
func (p cyborgProfile) Label() string       { return p.meta.Label }
func (p cyborgProfile) Description() string { return p.meta.Description }

// Decide picks a target and weapon, then searches finely with a little jitter.
func (p cyborgProfile) Decide(ctx Context) Decision {
	if ctx.Shooter == nil || ctx.DefaultTarget == nil {
		return Decision{Angle: gameplay.DefaultAngle, Power: gameplay.DefaultPower}
	}
	target := p.selectTarget(ctx)
	weapon := p.pickWeapon(ctx)
	if solution, ok := SearchShotSolution(searchParams(ctx, target, cyborgStep)); ok {
		rng := ctx.rng()
		angle := clamp(solution.Angle+(rng.Float64()-0.5)*cyborgJitter, gameplay.AngleMin, gameplay.AngleMax)
		power := clamp(solution.Power+(rng.Float64()-0.5)*cyborgJitter, gameplay.PowerMin, gameplay.PowerMax)
		return Decision{Angle: angle, Power: power, Weapon: weapon, Target: target}
	}
	fallback := naiveAim(ctx, target)
	fallback.Weapon = weapon
	fallback.Target = target
	return fallback
}

func (cyborgProfile) selectTarget(ctx Context) *tank.Tank {
	shooter := ctx.Shooter
	//1.- Retaliate against the last tank that hurt us while it still lives.
	for _, entry := range ctx.History {
		if entry.Victim != shooter.Name {
			continue
		}
		for _, enemy := range ctx.Enemies {
			if enemy.Name == entry.Attacker && enemy.IsAlive() {
				return enemy
			}
		}
		break
	}
	var living []*tank.Tank
	for _, enemy := range ctx.Enemies {
		if enemy.IsAlive() {
			living = append(living, enemy)
		}
	}
	if len(living) == 0 {
		return ctx.DefaultTarget
	}

	//2.- Otherwise finish off the weak or go after the rich.
	weakest := append([]*tank.Tank(nil), living...)
	sort.SliceStable(weakest, func(i, j int) bool { return weakest[i].Health < weakest[j].Health })
	richest := append([]*tank.Tank(nil), living...)
	sort.SliceStable(richest, func(i, j int) bool { return ctx.moneyOf(richest[i].Name) > ctx.moneyOf(richest[j].Name) })

	if weakest[0].Health < shooter.Health*cyborgWeakThreshold {
		return weakest[0]
	}
	return richest[0]
}

func (cyborgProfile) pickWeapon(ctx Context) gameplay.WeaponID {
	money := ctx.moneyOf(ctx.Shooter.Name)
	catalog := gameplay.DefaultCatalog()
	for _, option := range cyborgArsenal {
		if money > option.above && catalog.IsValid(option.weapon) {
			return option.weapon
		}
	}
	return ""
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

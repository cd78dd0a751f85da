package projectile

import (
	"math"

	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/physics"
)

const (
	funkyMaxBounces    = 3
	funkyBounceLift    = 0.6
	funkyBounceDrag    = 0.8
	groundClearance    = 5.0
	diggerTunnelRadius = 3.0
	diggerDragX        = 0.98
	diggerDragY        = 0.95
	diggerMaxSeconds   = 1.0
	diggerMaxDistance  = 60.0
	mirvWarheads       = 5
	mirvSpread         = 0.3

	rollKick            = 2.0
	rollAcceleration    = 0.8
	rollFriction        = 0.99
	rollUphillThreshold = 6.0
	rollValleyThreshold = 8.0
	rollMaxSpeed        = 20.0
	rollMaxDistance     = 2000.0
	rollWarmup          = 0.5
	rollSampleInterval  = 0.1
	rollSampleWindow    = 10
	rollStuckRange      = 25.0
	rollStuckSpan       = 0.3
	rollStuckSpeed      = 2.0
	rollIdleSpan        = 0.5
	rollIdleSpeed       = 0.3
	rollMaxFlips        = 3
	rollTankProximity   = 15.0
)

// Ground is the terrain surface a projectile flies over.
type Ground interface {
	Height(x float64) float64
	Width() int
	Explode(x, y, radius float64)
}

// World is everything Step needs besides the projectile itself.
type World struct {
	Gravity float64
	Wind    float64
	Ground  Ground
	// Tanks lists the positions of living tanks.
	Tanks []Point
}

// Outcome classifies what happened to a projectile during a Step.
type Outcome int

const (
	// Flying means the projectile is still airborne or rolling.
	Flying Outcome = iota
	// HitTerrain means it touched the ground and must be resolved.
	HitTerrain
	// HitTank means a roller ran into a tank.
	HitTank
	// Detonated means the projectile decided to explode on its own.
	Detonated
	// OutOfBounds means it left the field and must be resolved at the edge.
	OutOfBounds
	// Split means a MIRV released its warheads and is gone.
	Split
	// Vanished means it left the field without exploding.
	Vanished
)

var outcomeNames = map[Outcome]string{
	Flying:      "flying",
	HitTerrain:  "hit_terrain",
	HitTank:     "hit_tank",
	Detonated:   "detonated",
	OutOfBounds: "out_of_bounds",
	Split:       "split",
	Vanished:    "vanished",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Explodes reports whether the outcome must be resolved as an impact.
func (o Outcome) Explodes() bool {
	switch o {
	case HitTerrain, HitTank, Detonated, OutOfBounds:
		return true
	default:
		return false
	}
}

// StepResult is the outcome of advancing one projectile.
type StepResult struct {
	Outcome Outcome
	// GroundHeight is the terrain height under the projectile when it stopped.
	GroundHeight float64
	// Children holds MIRV warheads released by a split.
	Children []*Projectile
}

// Step advances p by the wall-clock delta dt, checking for contact on every sub-step.
// A projectile that stops is marked inactive.
func Step(p *Projectile, dt float64, world World) StepResult {
	if p == nil || !p.Active {
		return StepResult{Outcome: Vanished}
	}
	//1.- Laser shots resolve synchronously when fired and never move.
	if p.Kind == KindLaser {
		return StepResult{Outcome: Flying}
	}
	p.recordTrail()
	steps, subDt := physics.IntegrationStep(dt)
	//2.- Walk the sub-steps so no contact is tunnelled through on long frames.
	for i := 0; i < steps; i++ {
		var result StepResult
		switch p.Kind {
		case KindMIRV:
			result = p.stepMIRV(subDt, world)
		case KindFunky:
			result = p.stepFunky(subDt, world)
		case KindDigger:
			result = p.stepDigger(subDt, world)
		case KindRoller:
			result = p.stepRoller(subDt, world)
		default:
			result = p.stepBallistic(subDt, world)
		}
		if result.Outcome != Flying {
			p.Active = false
			return result
		}
	}
	return StepResult{Outcome: Flying}
}

func outOfBounds(x float64, world World) bool {
	width := 0.0
	if world.Ground != nil {
		width = float64(world.Ground.Width())
	}
	return x < 0 || x > width
}

func groundHeight(x float64, world World) float64 {
	if world.Ground == nil {
		return 0
	}
	return world.Ground.Height(x)
}

// contact runs the generic edge then ground check shared by the ballistic kinds.
func (p *Projectile) contact(world World) StepResult {
	h := groundHeight(p.X, world)
	if outOfBounds(p.X, world) {
		return StepResult{Outcome: OutOfBounds, GroundHeight: h}
	}
	if p.Y <= h {
		return StepResult{Outcome: HitTerrain, GroundHeight: h}
	}
	return StepResult{Outcome: Flying}
}

func (p *Projectile) stepBallistic(subDt float64, world World) StepResult {
	physics.Integrate(&p.Ballistic, subDt, world.Gravity, world.Wind)
	return p.contact(world)
}

func (p *Projectile) stepMIRV(subDt float64, world World) StepResult {
	//1.- Track the apex while climbing.
	p.MIRV.PreviousY = p.Y
	physics.Integrate(&p.Ballistic, subDt, world.Gravity, world.Wind)
	if p.Y > p.MIRV.MaxHeight {
		p.MIRV.MaxHeight = p.Y
	}
	//2.- The first descending sub-step releases the warheads.
	if p.ShouldSplit() {
		p.MIRV.HasSplit = true
		return StepResult{Outcome: Split, GroundHeight: groundHeight(p.X, world), Children: p.warheads()}
	}
	return p.contact(world)
}

// warheads fans five normal shells across the current heading at the current speed.
func (p *Projectile) warheads() []*Projectile {
	heading := p.Heading()
	speed := p.Speed()
	children := make([]*Projectile, 0, mirvWarheads)
	for i := 0; i < mirvWarheads; i++ {
		offset := float64(i-mirvWarheads/2) * mirvSpread
		children = append(children, NewWithVelocity(p.X, p.Y, heading+offset, speed, gameplay.WeaponNormal))
	}
	return children
}

func (p *Projectile) stepFunky(subDt float64, world World) StepResult {
	physics.Integrate(&p.Ballistic, subDt, world.Gravity, world.Wind)
	result := p.contact(world)
	if result.Outcome != HitTerrain || p.Funky.Bounces >= p.Funky.MaxBounces {
		return result
	}
	//1.- Bounce back up with lost energy and sit just above the ground.
	p.VY = math.Abs(p.VY) * funkyBounceLift
	p.VX *= funkyBounceDrag
	p.Y = result.GroundHeight + groundClearance
	p.Funky.Bounces++
	return StepResult{Outcome: Flying}
}

func (p *Projectile) stepDigger(subDt float64, world World) StepResult {
	prevX, prevY := p.X, p.Y
	//1.- Without a contact trigger the digger chews through the ground it is inside.
	if !p.UseContactTrigger && world.Ground != nil {
		if p.Y <= world.Ground.Height(p.X) {
			p.Digger.Underground = true
			p.VX *= diggerDragX
			p.VY *= diggerDragY
			world.Ground.Explode(p.X, p.Y, diggerTunnelRadius)
			p.Digger.Elapsed += physics.WallSeconds(subDt)
		}
	}
	physics.Integrate(&p.Ballistic, subDt, world.Gravity, world.Wind)
	//2.- Once underground, the tunnel length and dwell decide when to blow.
	if p.Digger.Underground && !p.Digger.ShouldExplode {
		p.Digger.Distance += math.Hypot(p.X-prevX, p.Y-prevY)
		if p.Digger.Elapsed >= diggerMaxSeconds || p.Digger.Distance >= diggerMaxDistance {
			p.Digger.ShouldExplode = true
		}
	}
	h := groundHeight(p.X, world)
	//3.- Armed diggers behave like plain shells, unarmed ones leave the field quietly.
	if p.UseContactTrigger {
		return p.contact(world)
	}
	if p.Digger.ShouldExplode {
		return StepResult{Outcome: Detonated, GroundHeight: h}
	}
	if outOfBounds(p.X, world) {
		return StepResult{Outcome: Vanished, GroundHeight: h}
	}
	return StepResult{Outcome: Flying}
}

func (p *Projectile) stepRoller(subDt float64, world World) StepResult {
	if !p.Roller.Rolling && world.Ground != nil && p.Y <= world.Ground.Height(p.X)+groundClearance {
		p.startRolling(world.Ground)
	}
	if p.Roller.Rolling {
		p.roll(subDt, world.Ground)
	} else {
		physics.Integrate(&p.Ballistic, subDt, world.Gravity, world.Wind)
	}
	h := groundHeight(p.X, world)
	//1.- Touching a tank ends the roll regardless of the other checks.
	for _, tank := range world.Tanks {
		if math.Hypot(tank.X-p.X, tank.Y-p.Y) < rollTankProximity {
			return StepResult{Outcome: HitTank, GroundHeight: h}
		}
	}
	if p.Roller.ShouldExplode {
		return StepResult{Outcome: Detonated, GroundHeight: h}
	}
	if outOfBounds(p.X, world) {
		return StepResult{Outcome: OutOfBounds, GroundHeight: h}
	}
	if !p.Roller.Rolling && p.Y <= h {
		p.startRolling(world.Ground)
	}
	return StepResult{Outcome: Flying}
}

func slopes(ground Ground, x float64) (right, left float64) {
	here := ground.Height(x)
	return ground.Height(x+1) - here, here - ground.Height(x-1)
}

func (p *Projectile) startRolling(ground Ground) {
	if p.Roller.Rolling {
		return
	}
	p.Roller.Rolling = true
	//1.- Kick the roller toward the steeper descent so it never sits still on landing.
	right, left := slopes(ground, p.X)
	if math.Abs(right) > math.Abs(left) {
		if right < 0 {
			p.Roller.Velocity = rollKick
		}
	} else if left > 0 {
		p.Roller.Velocity = -rollKick
	}
}

// roll advances the hill descent model. Velocities are in pixels per ballistic tick.
func (p *Projectile) roll(subDt float64, ground Ground) {
	r := &p.Roller
	ticks := subDt / gameplay.BallisticTick
	right, left := slopes(ground, p.X)
	//1.- Accelerate toward the steeper downhill side.
	downRight := math.Max(math.Max(-right, 0), math.Max(-left, 0))
	downLeft := math.Max(math.Max(right, 0), math.Max(left, 0))
	r.Velocity += (downRight - downLeft) * rollAcceleration * ticks
	r.Velocity *= math.Pow(rollFriction, ticks)
	//2.- Refuse to climb walls.
	if r.Velocity > 0 && right > rollUphillThreshold {
		r.Velocity = 0
	} else if r.Velocity < 0 && left < -rollUphillThreshold {
		r.Velocity = 0
	}
	if r.Velocity < 0 && right > rollUphillThreshold && !(left > rollUphillThreshold) {
		r.Velocity = 0
	}
	r.Velocity = math.Max(-rollMaxSpeed, math.Min(rollMaxSpeed, r.Velocity))
	//3.- Count direction reversals for oscillation detection.
	sign := 0
	if r.Velocity > 0 {
		sign = 1
	} else if r.Velocity < 0 {
		sign = -1
	}
	if r.lastSign != 0 && sign != 0 && r.lastSign != sign {
		r.DirectionChanges++
	} else if math.Abs(r.Velocity) < 0.1 && r.DirectionChanges > 0 {
		r.DirectionChanges--
	}
	r.lastSign = sign
	//4.- Move along the surface.
	step := r.Velocity * ticks
	p.X += step
	r.Distance += math.Abs(step)
	p.Y = ground.Height(p.X) + groundClearance
	p.VX, p.VY = 0, 0
	//5.- Sample positions on the simulated clock for stuck detection.
	r.Clock += physics.WallSeconds(subDt)
	if len(r.samples) == 0 || r.Clock-r.lastSample > rollSampleInterval {
		r.samples = append(r.samples, rollSample{x: p.X, time: r.Clock})
		if len(r.samples) > rollSampleWindow {
			r.samples = r.samples[1:]
		}
		r.lastSample = r.Clock
	}
	if r.Clock <= rollWarmup {
		r.ShouldExplode = false
		return
	}
	right, left = slopes(ground, p.X)
	valley := right > rollValleyThreshold && left < -rollValleyThreshold
	r.ShouldExplode = p.stuck() || valley || r.Distance > rollMaxDistance
}

// stuck reports whether the roller is oscillating or has barely moved for a while.
func (p *Projectile) stuck() bool {
	r := &p.Roller
	if r.DirectionChanges >= rollMaxFlips {
		return true
	}
	if len(r.samples) < 3 {
		return false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range r.samples {
		lo = math.Min(lo, s.x)
		hi = math.Max(hi, s.x)
	}
	span := r.samples[len(r.samples)-1].time - r.samples[0].time
	speed := math.Abs(r.Velocity)
	if hi-lo < rollStuckRange && span > rollStuckSpan && speed < rollStuckSpeed {
		return true
	}
	return span > rollIdleSpan && speed < rollIdleSpeed
}

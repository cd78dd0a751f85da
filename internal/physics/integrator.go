package physics

import (
	"math"

	"tankduel/engine/internal/gameplay"
)

// Ballistic is the point-mass state shared by projectiles and the shot search.
type Ballistic struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

// Launch builds the initial state of a shell fired at angleDeg with the given power.
func Launch(x, y, angleDeg, power float64) Ballistic {
	rad := angleDeg * math.Pi / 180
	speed := power * gameplay.ProjectileSpeedMultiplier
	return Ballistic{X: x, Y: y, VX: math.Cos(rad) * speed, VY: math.Sin(rad) * speed}
}

// LaunchVelocity builds a state from a heading in radians and a raw speed.
func LaunchVelocity(x, y, headingRad, speed float64) Ballistic {
	return Ballistic{X: x, Y: y, VX: math.Cos(headingRad) * speed, VY: math.Sin(headingRad) * speed}
}

// Speed returns the velocity magnitude.
func (b Ballistic) Speed() float64 {
	return math.Hypot(b.VX, b.VY)
}

// Heading returns the velocity direction in radians.
func (b Ballistic) Heading() float64 {
	return math.Atan2(b.VY, b.VX)
}

// IntegrationStep converts a wall-clock delta into sub-steps so no single step covers
// more than one ballistic tick. subDt is expressed in ballistic seconds.
func IntegrationStep(dt float64) (steps int, subDt float64) {
	//1.- Reject deltas that would stall or reverse the simulation.
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, 0
	}
	//2.- Scale wall time into ballistic time and slice it into bounded sub-steps.
	ballistic := dt * gameplay.ProjectileTimeScale
	steps = int(math.Ceil(ballistic/gameplay.BallisticTick - 1e-9))
	if steps < 1 {
		steps = 1
	}
	if steps > gameplay.MaxSubSteps {
		steps = gameplay.MaxSubSteps
	}
	return steps, ballistic / float64(steps)
}

// Integrate applies one semi-implicit Euler sub-step of gravity and wind.
func Integrate(b *Ballistic, subDt, gravity, wind float64) {
	if b == nil || !(subDt > 0) {
		return
	}
	//1.- Update velocity first so the position uses the post-acceleration speed.
	b.VY -= gravity * subDt
	b.VX += wind * subDt * gameplay.WindEffectMultiplier
	//2.- Advance the position across the sub-step.
	b.X += b.VX * subDt
	b.Y += b.VY * subDt
}

// Advance integrates a full wall-clock delta without contact checks.
func Advance(b *Ballistic, dt, gravity, wind float64) {
	steps, subDt := IntegrationStep(dt)
	for i := 0; i < steps; i++ {
		Integrate(b, subDt, gravity, wind)
	}
}

// WallSeconds converts a ballistic interval back into wall-clock seconds.
func WallSeconds(ballistic float64) float64 {
	return ballistic / gameplay.ProjectileTimeScale
}

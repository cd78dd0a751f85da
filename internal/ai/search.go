package ai

import (
	"math"

	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/physics"
	"tankduel/engine/internal/tank"
)

const (
	searchAngleMin     = 15.0
	searchAngleMax     = 80.0
	searchGoodEnough   = 5.0
	searchHeightWeight = 0.2
	simulateMaxFrames  = 600
)

// SearchParams bounds one ballistic grid search.
type SearchParams struct {
	OriginX, OriginY float64
	TargetX, TargetY float64
	Gravity          float64
	Wind             float64
	Ground           Ground
	AngleStep        float64
	PowerStep        float64
}

// Solution is the best candidate a search found.
type Solution struct {
	Angle   float64
	Power   float64
	ImpactX float64
	ImpactY float64
	Error   float64
	// Evaluated counts the simulated candidates.
	Evaluated int
}

func searchParams(ctx Context, target *tank.Tank, step float64) SearchParams {
	return SearchParams{
		OriginX:   ctx.Shooter.X,
		OriginY:   ctx.Shooter.Y,
		TargetX:   target.X,
		TargetY:   target.Y,
		Gravity:   ctx.Gravity,
		Wind:      ctx.Wind,
		Ground:    ctx.Ground,
		AngleStep: step,
		PowerStep: step,
	}
}

// SearchShotSolution walks the angle and power grid and returns the candidate with the
// smallest weighted miss, stopping early once a shot is good enough. It reports false only
// when the grid is empty.
func SearchShotSolution(params SearchParams) (Solution, bool) {
	if !(params.AngleStep > 0) || !(params.PowerStep > 0) || params.Ground == nil {
		return Solution{}, false
	}
	var best Solution
	found := false
	evaluated := 0
	for angle := searchAngleMin; angle <= searchAngleMax; angle += params.AngleStep {
		for power := gameplay.PowerMin; power <= gameplay.PowerMax; power += params.PowerStep {
			impactX, impactY := SimulateShot(params.OriginX, params.OriginY, angle, power, params.Gravity, params.Wind, params.Ground)
			evaluated++
			miss := math.Abs(impactX-params.TargetX) + math.Abs(impactY-params.TargetY)*searchHeightWeight
			if found && miss >= best.Error {
				continue
			}
			best = Solution{Angle: angle, Power: power, ImpactX: impactX, ImpactY: impactY, Error: miss}
			found = true
			if miss < searchGoodEnough {
				best.Evaluated = evaluated
				return best, true
			}
		}
	}
	best.Evaluated = evaluated
	return best, found
}

// SimulateShot flies a shell frame by frame with the projectile integrator and returns where
// it touched the ground. A shell leaving the field or still airborne after the frame budget
// reports its last position.
func SimulateShot(originX, originY, angleDeg, power, gravity, wind float64, ground Ground) (float64, float64) {
	b := physics.Launch(originX, originY, angleDeg, power)
	width := 0.0
	if ground != nil {
		width = float64(ground.Width())
	}
	for i := 0; i < simulateMaxFrames; i++ {
		physics.Advance(&b, gameplay.DefaultDeltaTime, gravity, wind)
		if b.X < 0 || b.X > width {
			break
		}
		if ground == nil {
			continue
		}
		if h := ground.Height(b.X); b.Y <= h {
			return b.X, h
		}
	}
	return b.X, b.Y
}

package combat

import (
	"math"

	"tankduel/engine/internal/tank"
)

const (
	riotWedgeAngle  = math.Pi / 3
	riotWedgeLength = 50.0
	riotAngleStep   = 0.1
	riotDistStep    = 2.0
	riotCraterSize  = 5.0
)

// ClosestLivingTank returns the living tank nearest to (x, y).
func ClosestLivingTank(tanks []*tank.Tank, x, y float64) *tank.Tank {
	var closest *tank.Tank
	best := math.Inf(1)
	for _, t := range tanks {
		if !t.IsAlive() {
			continue
		}
		if d := t.Distance(x, y); d < best {
			best = d
			closest = t
		}
	}
	return closest
}

// CarveRiotWedge clears a wedge of ground in front of the tank that fired from (originX, originY).
// It returns the tank treated as the shooter, or nil when nobody is alive.
func CarveRiotWedge(ground Deformable, tanks []*tank.Tank, originX, originY float64) *tank.Tank {
	shooter := ClosestLivingTank(tanks, originX, originY)
	if shooter == nil || ground == nil {
		return shooter
	}
	tankX := math.Floor(shooter.X)
	width := float64(ground.Width())
	for angle := -riotWedgeAngle / 2; angle <= riotWedgeAngle/2; angle += riotAngleStep {
		for dist := 0.0; dist < riotWedgeLength; dist += riotDistStep {
			x := tankX + math.Cos(angle)*dist
			if x < 0 || x >= width {
				continue
			}
			y := ground.Height(x) + math.Sin(angle)*dist
			ground.Explode(x, y, riotCraterSize)
		}
	}
	return shooter
}

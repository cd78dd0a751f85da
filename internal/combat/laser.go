package combat

import (
	"math"

	"tankduel/engine/internal/tank"
)

const (
	laserRange        = 2000.0
	laserStep         = 5.0
	laserTankRadius   = 10.0
	laserTunnelStep   = 2.0
	laserTunnelRadius = 3.0
)

// LaserTrace is where a laser beam stopped and why.
type LaserTrace struct {
	X, Y        float64
	HitTerrain  bool
	HitTank     bool
	OutOfBounds bool
	// Tunnel counts the craters carved along the beam.
	Tunnel int
}

// TraceLaser marches a beam from the shooter's muzzle along its barrel until it meets the ground,
// comes within reach of another living tank, or leaves the field. A beam stopped by the ground
// burns a tunnel back along its path.
func TraceLaser(ground Deformable, tanks []*tank.Tank, shooter *tank.Tank) LaserTrace {
	if shooter == nil {
		return LaserTrace{}
	}
	originX, originY := shooter.Muzzle()
	rad := shooter.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	width := 0.0
	if ground != nil {
		width = float64(ground.Width())
	}
	trace := LaserTrace{X: originX, Y: originY}
	for dist := 0.0; dist < laserRange; dist += laserStep {
		trace.X = originX + cos*dist
		trace.Y = originY + sin*dist
		//1.- Ground contact carves the tunnel behind the beam.
		if ground != nil && trace.Y <= ground.Height(trace.X) {
			trace.HitTerrain = true
			for d := 0.0; d < dist; d += laserTunnelStep {
				ground.Explode(originX+cos*d, originY+sin*d, laserTunnelRadius)
				trace.Tunnel++
			}
		}
		//2.- Any other living tank in reach stops the beam.
		for _, t := range tanks {
			if t != shooter && t.IsAlive() && t.Distance(trace.X, trace.Y) < laserTankRadius {
				trace.HitTank = true
				break
			}
		}
		if trace.X < 0 || trace.X > width {
			trace.OutOfBounds = true
		}
		if trace.HitTerrain || trace.HitTank || trace.OutOfBounds {
			break
		}
	}
	return trace
}

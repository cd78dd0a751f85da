package projectile

import (
	"math"
	"testing"

	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/terrain"
)

func flatWorld(width int, height float64) (World, *terrain.Terrain) {
	ground := terrain.NewFlat(width, 1000, height)
	return World{Gravity: gameplay.Gravity, Ground: ground}, ground
}

func stepUntilStopped(t *testing.T, p *Projectile, world World, limit int) StepResult {
	t.Helper()
	for i := 0; i < limit; i++ {
		if result := Step(p, gameplay.BaseTick, world); result.Outcome != Flying {
			return result
		}
	}
	t.Fatalf("projectile %s still flying after %d steps at (%.1f, %.1f)", p.Kind, limit, p.X, p.Y)
	return StepResult{}
}

func TestKindForMapsWeaponFamilies(t *testing.T) {
	cases := map[gameplay.WeaponID]Kind{
		gameplay.WeaponBabyRoller: KindRoller,
		gameplay.WeaponBabyDigger: KindDigger,
		gameplay.WeaponMIRV:       KindMIRV,
		gameplay.WeaponNuke:       KindNormal,
		gameplay.WeaponDirtClod:   KindNormal,
		gameplay.WeaponLaser:      KindLaser,
		"unknown":                 KindNormal,
	}
	for weapon, want := range cases {
		if got := KindFor(weapon); got != want {
			t.Fatalf("weapon %s mapped to %s, want %s", weapon, got, want)
		}
	}
}

func TestLargeDeltaDoesNotTunnelThroughGround(t *testing.T) {
	world, _ := flatWorld(1200, 100)
	shell := New(100, 100, 45, 50, gameplay.WeaponNormal, false)
	//1.- A single three second frame still stops at the first ground contact.
	result := Step(shell, 3, world)
	if result.Outcome != HitTerrain {
		t.Fatalf("expected terrain hit, got %s", result.Outcome)
	}
	if shell.Y > 100 || shell.Y < 94 {
		t.Fatalf("impact height %.2f far from the surface", shell.Y)
	}
	if shell.X < 500 || shell.X > 600 {
		t.Fatalf("impact x %.2f outside expected landing zone", shell.X)
	}
	if shell.Active {
		t.Fatalf("stopped projectile should be inactive")
	}
}

func TestNormalShellLeavesField(t *testing.T) {
	world, _ := flatWorld(300, 0)
	shell := New(290, 10, 10, 100, gameplay.WeaponNormal, false)
	if result := stepUntilStopped(t, shell, world, 100); result.Outcome != OutOfBounds {
		t.Fatalf("expected out of bounds, got %s", result.Outcome)
	}
}

func TestMIRVSplitTrigger(t *testing.T) {
	mirv := New(0, 0, 60, 50, gameplay.WeaponMIRV, false)
	//1.- Climbing warheads never split.
	if mirv.ShouldSplit() {
		t.Fatalf("ascending MIRV should not split")
	}
	mirv.VY = -0.01
	if !mirv.ShouldSplit() {
		t.Fatalf("descending MIRV should split")
	}
	mirv.MIRV.HasSplit = true
	if mirv.ShouldSplit() {
		t.Fatalf("MIRV split twice")
	}
}

func TestMIRVSplitsAtApexIntoFiveWarheads(t *testing.T) {
	world, _ := flatWorld(5000, 0)
	mirv := New(100, 100, 60, 50, gameplay.WeaponMIRV, false)
	result := stepUntilStopped(t, mirv, world, 1000)
	if result.Outcome != Split {
		t.Fatalf("expected split, got %s", result.Outcome)
	}
	if mirv.VY >= 0 || mirv.Active {
		t.Fatalf("parent should be descending and inactive, vy %.3f active %v", mirv.VY, mirv.Active)
	}
	if mirv.MIRV.MaxHeight < mirv.Y {
		t.Fatalf("apex %.2f below split height %.2f", mirv.MIRV.MaxHeight, mirv.Y)
	}
	if len(result.Children) != 5 {
		t.Fatalf("expected 5 warheads, got %d", len(result.Children))
	}
	//2.- Warheads keep the parent speed and fan symmetrically around its heading.
	for i, child := range result.Children {
		if child.Weapon != gameplay.WeaponNormal || child.Kind != KindNormal {
			t.Fatalf("warhead %d is %s", i, child.Weapon)
		}
		if math.Abs(child.Speed()-mirv.Speed()) > 1e-9 {
			t.Fatalf("warhead %d speed %.4f differs from parent %.4f", i, child.Speed(), mirv.Speed())
		}
		want := mirv.Heading() + float64(i-2)*0.3
		if math.Abs(child.Heading()-want) > 1e-9 {
			t.Fatalf("warhead %d heading %.4f, want %.4f", i, child.Heading(), want)
		}
	}
}

func TestFunkyBouncesThreeTimes(t *testing.T) {
	world, _ := flatWorld(100000, 100)
	funky := New(100, 100, 45, 50, gameplay.WeaponFunky, false)
	result := stepUntilStopped(t, funky, world, 20000)
	if result.Outcome != HitTerrain {
		t.Fatalf("expected terrain hit after bounces, got %s", result.Outcome)
	}
	if funky.Funky.Bounces != 3 {
		t.Fatalf("expected 3 bounces, got %d", funky.Funky.Bounces)
	}
}

func TestDiggerTunnelsThenDetonates(t *testing.T) {
	world, ground := flatWorld(1200, 100)
	digger := New(100, 150, -60, 30, gameplay.WeaponDigger, false)
	result := stepUntilStopped(t, digger, world, 2000)
	if result.Outcome != Detonated {
		t.Fatalf("expected self detonation, got %s", result.Outcome)
	}
	if !digger.Digger.Underground {
		t.Fatalf("digger never went underground")
	}
	lowest := math.Inf(1)
	for _, h := range ground.Heights() {
		lowest = math.Min(lowest, h)
	}
	if lowest >= 100 {
		t.Fatalf("digger did not carve a tunnel")
	}
}

func TestArmedDiggerExplodesOnContact(t *testing.T) {
	world, ground := flatWorld(1200, 100)
	digger := New(100, 150, -60, 30, gameplay.WeaponDigger, true)
	result := stepUntilStopped(t, digger, world, 2000)
	if result.Outcome != HitTerrain {
		t.Fatalf("expected contact explosion, got %s", result.Outcome)
	}
	for i, h := range ground.Heights() {
		if h != 100 {
			t.Fatalf("armed digger carved column %d", i)
		}
	}
}

func TestUnarmedDiggerVanishesOffField(t *testing.T) {
	world, _ := flatWorld(1200, 100)
	digger := New(10, 500, 180, 50, gameplay.WeaponDigger, false)
	if result := stepUntilStopped(t, digger, world, 100); result.Outcome != Vanished {
		t.Fatalf("expected vanish, got %s", result.Outcome)
	}
}

func TestRollerStopsAtSteepUphill(t *testing.T) {
	ground := terrain.New(200, 5000, terrain.DefaultSettings())
	heights := make([]float64, 200)
	for i := range heights {
		heights[i] = 100
		if i >= 100 {
			heights[i] = 100 + 10*float64(i-99)
		}
	}
	ground.SetHeights(heights)
	roller := New(99.5, 105, 0, 10, gameplay.WeaponRoller, false)
	roller.Roller.Rolling = true
	roller.Roller.Velocity = 5
	//1.- One update against a wall drives the roll velocity to exactly zero.
	result := Step(roller, gameplay.BaseTick, World{Gravity: gameplay.Gravity, Ground: ground})
	if result.Outcome != Flying {
		t.Fatalf("expected roller to keep going, got %s", result.Outcome)
	}
	if roller.Roller.Velocity != 0 {
		t.Fatalf("expected zero roll velocity, got %.4f", roller.Roller.Velocity)
	}
}

func TestRollerDetonatesWhenStuck(t *testing.T) {
	world, _ := flatWorld(400, 100)
	roller := New(200, 105, 0, 10, gameplay.WeaponRoller, false)
	roller.Roller.Rolling = true
	//1.- Resting on flat ground it waits out the warm-up then gives up.
	result := stepUntilStopped(t, roller, world, 200)
	if result.Outcome != Detonated {
		t.Fatalf("expected detonation, got %s", result.Outcome)
	}
	if roller.Roller.Clock <= 0.5 {
		t.Fatalf("roller detonated during warm-up at %.3fs", roller.Roller.Clock)
	}
}

func TestRollerHitsTank(t *testing.T) {
	world, _ := flatWorld(400, 100)
	world.Tanks = []Point{{X: 80, Y: 100}}
	roller := New(50, 105, 0, 10, gameplay.WeaponRoller, false)
	roller.Roller.Rolling = true
	roller.Roller.Velocity = 10
	if result := stepUntilStopped(t, roller, world, 20); result.Outcome != HitTank {
		t.Fatalf("expected tank hit, got %s", result.Outcome)
	}
}

func TestRollerLandsAndStartsRolling(t *testing.T) {
	world, _ := flatWorld(1200, 100)
	roller := New(100, 115, 45, 50, gameplay.WeaponRoller, false)
	for i := 0; i < 1000 && !roller.Roller.Rolling; i++ {
		if result := Step(roller, gameplay.BaseTick, world); result.Outcome != Flying {
			t.Fatalf("roller stopped in flight: %s", result.Outcome)
		}
	}
	if !roller.Roller.Rolling {
		t.Fatalf("roller never touched down")
	}
}

func TestLaserStepIsNoop(t *testing.T) {
	world, _ := flatWorld(1200, 100)
	laser := New(100, 200, 30, 50, gameplay.WeaponLaser, false)
	x, y := laser.X, laser.Y
	if result := Step(laser, 1, world); result.Outcome != Flying {
		t.Fatalf("laser step returned %s", result.Outcome)
	}
	if laser.X != x || laser.Y != y || len(laser.Trail()) != 0 {
		t.Fatalf("laser moved during step")
	}
}

func TestTrailIsBounded(t *testing.T) {
	world, _ := flatWorld(1000, 0)
	shell := New(500, 100, 90, 300, gameplay.WeaponNormal, false)
	for i := 0; i < 250; i++ {
		Step(shell, gameplay.BaseTick, world)
	}
	if !shell.Active {
		t.Fatalf("shell landed too early")
	}
	trail := shell.Trail()
	if len(trail) != gameplay.ProjectileTrailMaxLength {
		t.Fatalf("expected trail capped at %d, got %d", gameplay.ProjectileTrailMaxLength, len(trail))
	}
	if shell.Origin().Y <= 100 {
		t.Fatalf("oldest samples should have been evicted, origin %.2f", shell.Origin().Y)
	}
}

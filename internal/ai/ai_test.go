package ai

import (
	"math"
	"math/rand"
	"testing"

	"tankduel/engine/internal/combat"
	"tankduel/engine/internal/gameplay"
	"tankduel/engine/internal/projectile"
	"tankduel/engine/internal/tank"
	"tankduel/engine/internal/terrain"
)

// duelContext mirrors a shooter facing two targets on flat ground.
func duelContext(seed int64) (Context, *tank.Tank, *tank.Tank) {
	shooter := tank.New(100, 120, "#FF0000", "Computer", true)
	targetA := tank.New(600, 150, "#0000FF", "TargetA", false)
	targetB := tank.New(800, 150, "#00FF00", "TargetB", false)
	ctx := Context{
		Shooter:       shooter,
		Enemies:       []*tank.Tank{targetA, targetB},
		DefaultTarget: targetA,
		Gravity:       gameplay.Gravity,
		Ground:        terrain.NewFlat(1200, 360, 50),
		Money:         map[string]int{"Computer": 1000, "TargetA": 1000, "TargetB": 1000},
		Memory:        NewMemory(),
		Rand:          rand.New(rand.NewSource(seed)),
	}
	return ctx, targetA, targetB
}

func mustLookup(t *testing.T, id ID) Profile {
	t.Helper()
	profile, ok := Lookup(string(id))
	if !ok {
		t.Fatalf("profile %q not registered", id)
	}
	return profile
}

func TestLookupAndOptions(t *testing.T) {
	if _, ok := Lookup("  SPOILER "); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, ok := Lookup("grandmaster"); ok {
		t.Fatalf("expected unknown profile to be rejected")
	}
	options := Options()
	if len(options) != 5 || options[0].ID != Moron || options[4].ID != Cyborg {
		t.Fatalf("unexpected options %+v", options)
	}
	if DescriptionOf(Tosser) != "Learns from previous misses and dials in over time." {
		t.Fatalf("unexpected tosser description %q", DescriptionOf(Tosser))
	}
	if !Consumes(mustLookup(t, Tosser)) || Consumes(mustLookup(t, Spoiler)) {
		t.Fatalf("only the tosser consumes shot results")
	}
}

func TestMoronStaysInBounds(t *testing.T) {
	moron := mustLookup(t, Moron)
	positions := [][2]float64{{600, 150}, {-400, 900}, {100, 120}, {5000, -300}}
	for seed := int64(0); seed < 200; seed++ {
		ctx, target, _ := duelContext(seed)
		pos := positions[seed%int64(len(positions))]
		target.SetPosition(pos[0], pos[1])
		decision := moron.Decide(ctx)
		if decision.Angle < gameplay.AngleMin || decision.Angle > gameplay.AngleMax {
			t.Fatalf("seed %d: angle %.2f out of bounds", seed, decision.Angle)
		}
		if decision.Power < gameplay.PowerMin || decision.Power > gameplay.PowerMax {
			t.Fatalf("seed %d: power %.2f out of bounds", seed, decision.Power)
		}
		if decision.Weapon != "" || decision.Target != nil {
			t.Fatalf("moron must not override weapon or target")
		}
	}
}

func TestShooterAimsAlongBearing(t *testing.T) {
	shooter := mustLookup(t, Shooter)
	for seed := int64(0); seed < 50; seed++ {
		ctx, target, _ := duelContext(seed)
		bearing := math.Atan2(target.Y-ctx.Shooter.Y, target.X-ctx.Shooter.X) * 180 / math.Pi
		decision := shooter.Decide(ctx)
		if math.Abs(decision.Angle-bearing) >= 6 {
			t.Fatalf("seed %d: angle %.2f too far from bearing %.2f", seed, decision.Angle, bearing)
		}
		if decision.Power < gameplay.PowerMin+5 || decision.Power > gameplay.PowerMax-5 {
			t.Fatalf("seed %d: power %.2f outside the naive band", seed, decision.Power)
		}
	}
}

func TestTosserLearnsFromOvershoot(t *testing.T) {
	tosser := mustLookup(t, Tosser)
	learner := tosser.(Learner)
	ctx, target, _ := duelContext(1)

	//1.- The first decision comes straight from the search and leaves a pending shot.
	first := tosser.Decide(ctx)
	if pending, ok := ctx.Memory.Pending("Computer"); !ok || pending != "TargetA" {
		t.Fatalf("expected pending shot against TargetA, got %q (%v)", pending, ok)
	}

	//2.- Report a miss 80 units to the right.
	learner.OnShotResult(ctx.Memory, ShotResult{Shooter: ctx.Shooter, Target: target, ImpactX: target.X + 80, ImpactY: target.Y})
	if _, ok := ctx.Memory.Pending("Computer"); ok {
		t.Fatalf("expected pending shot cleared")
	}
	miss, ok := ctx.Memory.Miss("Computer")
	if !ok || miss.Target != "TargetA" || miss.ErrorX != 80 {
		t.Fatalf("unexpected miss %+v (%v)", miss, ok)
	}

	//3.- The correction pulls the barrel down.
	second := tosser.Decide(ctx)
	if !(second.Angle < first.Angle) {
		t.Fatalf("expected a smaller angle after an overshoot, first %.2f second %.2f", first.Angle, second.Angle)
	}
	if math.Abs((first.Angle-second.Angle)-4) > 1e-9 {
		t.Fatalf("expected a 4 degree correction, got %.2f", first.Angle-second.Angle)
	}
}

func TestTosserIgnoresMismatchedResults(t *testing.T) {
	tosser := mustLookup(t, Tosser)
	learner := tosser.(Learner)
	ctx, _, targetB := duelContext(2)

	tosser.Decide(ctx)
	//1.- A result naming a different target must not be learned.
	learner.OnShotResult(ctx.Memory, ShotResult{Shooter: ctx.Shooter, Target: targetB, ImpactX: 0})
	if _, ok := ctx.Memory.Miss("Computer"); ok {
		t.Fatalf("stale result must not be remembered")
	}
	if _, ok := ctx.Memory.Pending("Computer"); !ok {
		t.Fatalf("mismatched result must leave the pending shot in place")
	}

	//2.- Without memory the profile still works.
	ctx.Memory = nil
	decision := tosser.Decide(ctx)
	if decision.Angle < 15 || decision.Angle > 80 {
		t.Fatalf("unexpected angle %.2f", decision.Angle)
	}
}

func TestSpoilerLandsOnTarget(t *testing.T) {
	spoiler := mustLookup(t, Spoiler)
	ctx, target, _ := duelContext(3)
	decision := spoiler.Decide(ctx)
	impactX, _ := SimulateShot(ctx.Shooter.X, ctx.Shooter.Y, decision.Angle, decision.Power, ctx.Gravity, ctx.Wind, ctx.Ground)
	if math.Abs(impactX-target.X) >= 30 {
		t.Fatalf("expected impact within 30 of %.0f, got %.2f", target.X, impactX)
	}
}

func TestCyborgAvengesAttacker(t *testing.T) {
	cyborg := mustLookup(t, Cyborg)
	ctx, _, targetB := duelContext(4)
	ctx.History = []combat.HistoryEntry{
		{Attacker: "TargetB", Victim: "Computer", Amount: 20},
		{Attacker: "TargetA", Victim: "Computer", Amount: 10},
	}
	decision := cyborg.Decide(ctx)
	if decision.Target != targetB {
		t.Fatalf("expected the cyborg to avenge TargetB, got %+v", decision.Target)
	}
	if decision.Weapon != gameplay.WeaponNuke {
		t.Fatalf("expected nuke with 1000 money, got %q", decision.Weapon)
	}
}

func TestCyborgTargetSelection(t *testing.T) {
	cyborg := cyborgProfile{}

	//1.- Everyone healthy and equally rich falls back to the first enemy.
	ctx, targetA, targetB := duelContext(5)
	if got := cyborg.selectTarget(ctx); got != targetA {
		t.Fatalf("expected TargetA, got %s", got.Name)
	}

	//2.- A dead avenger is ignored.
	ctx.History = []combat.HistoryEntry{{Attacker: "TargetB", Victim: "Computer", Amount: 5}}
	targetB.Health = 0
	if got := cyborg.selectTarget(ctx); got != targetA {
		t.Fatalf("expected dead attacker ignored, got %s", got.Name)
	}
	targetB.Health = 100
	ctx.History = nil

	//3.- A weak enemy is finished off.
	targetB.Health = 50
	if got := cyborg.selectTarget(ctx); got != targetB {
		t.Fatalf("expected weakest TargetB, got %s", got.Name)
	}
	targetB.Health = 100

	//4.- Otherwise the richest enemy is hunted.
	ctx.Money["TargetB"] = 2500
	if got := cyborg.selectTarget(ctx); got != targetB {
		t.Fatalf("expected richest TargetB, got %s", got.Name)
	}

	//5.- A dead tank is never the weakest or the richest.
	targetB.Health = 0
	if got := cyborg.selectTarget(ctx); got != targetA {
		t.Fatalf("expected the living TargetA, got %s", got.Name)
	}
	targetA.Health = 0
	if got := cyborg.selectTarget(ctx); got != ctx.DefaultTarget {
		t.Fatalf("expected the default target with no living enemies, got %s", got.Name)
	}
}

func TestCyborgWeaponThresholds(t *testing.T) {
	cases := []struct {
		money int
		want  gameplay.WeaponID
	}{
		{money: 1000, want: gameplay.WeaponNuke},
		{money: 900, want: gameplay.WeaponMIRV},
		{money: 401, want: gameplay.WeaponMIRV},
		{money: 350, want: gameplay.WeaponNapalm},
		{money: 300, want: ""},
	}
	for _, tc := range cases {
		ctx, _, _ := duelContext(6)
		ctx.Money["Computer"] = tc.money
		if got := (cyborgProfile{}).pickWeapon(ctx); got != tc.want {
			t.Fatalf("money %d: expected %q, got %q", tc.money, tc.want, got)
		}
	}
}

func TestSearchReportsEmptyGrid(t *testing.T) {
	if _, ok := SearchShotSolution(SearchParams{Ground: terrain.NewFlat(100, 60, 10)}); ok {
		t.Fatalf("expected zero steps to yield no solution")
	}
}

func TestSpoilerEndToEndOnFlatField(t *testing.T) {
	ground := terrain.NewFlat(1200, 360, 100)
	shooter := tank.New(100, 100, "#FF0000", "Computer", true)
	target := tank.New(600, 100, "#0000FF", "Player 1", false)
	ctx := Context{
		Shooter:       shooter,
		Enemies:       []*tank.Tank{target},
		DefaultTarget: target,
		Gravity:       gameplay.Gravity,
		Ground:        ground,
		Rand:          rand.New(rand.NewSource(9)),
	}
	decision := mustLookup(t, Spoiler).Decide(ctx)

	//1.- Fly the chosen shot through the real projectile step at the nominal frame rate.
	p := projectile.New(shooter.X, shooter.Y, decision.Angle, decision.Power, gameplay.WeaponNormal, false)
	world := projectile.World{Gravity: ctx.Gravity, Ground: ground}
	for i := 0; i < 2000 && p.Active; i++ {
		result := projectile.Step(p, gameplay.DefaultDeltaTime, world)
		if result.Outcome == projectile.Flying {
			continue
		}
		if result.Outcome != projectile.HitTerrain {
			t.Fatalf("expected a ground impact, got %s", result.Outcome)
		}
	}
	if p.Active {
		t.Fatalf("projectile never landed")
	}
	if math.Abs(p.X-600) >= 30 {
		t.Fatalf("expected landing within 30 of 600, got %.2f", p.X)
	}
}

func TestMemoryEntriesListShootersByName(t *testing.T) {
	memory := NewMemory()
	memory.remember("Zed", Miss{Target: "Amy", ErrorX: -12})
	memory.expect("Amy", "Zed")
	memory.expect("Zed", "Amy")

	entries := memory.Entries()
	if len(entries) != 2 || entries[0].Shooter != "Amy" || entries[1].Shooter != "Zed" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Pending != "Zed" || entries[1].Miss.ErrorX != -12 {
		t.Fatalf("unexpected entry state: %+v", entries)
	}
	memory.Reset()
	if len(memory.Entries()) != 0 {
		t.Fatalf("expected reset to forget every shooter")
	}
}

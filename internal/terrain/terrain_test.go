package terrain

import (
	"math"
	"math/rand"
	"testing"
)

const slopeTolerance = 1e-6

// settleBudgetTolerance bounds the residual slope one bounded Settle pass may leave behind.
const settleBudgetTolerance = 0.25

func TestHeightOutOfRangeReturnsZero(t *testing.T) {
	ground := NewFlat(100, 300, 50)
	cases := []float64{-1, 100, 250, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, x := range cases {
		if got := ground.Height(x); got != 0 {
			t.Fatalf("expected 0 height at %v, got %.2f", x, got)
		}
	}
	if got := ground.Height(99.9); got != 50 {
		t.Fatalf("expected last column height 50, got %.2f", got)
	}
	var missing *Terrain
	if missing.Height(10) != 0 {
		t.Fatalf("nil terrain should report zero height")
	}
}

func TestGenerateStaysWithinBandAndSlope(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		ground := New(1200, 360, DefaultSettings())
		ground.Generate(rand.New(rand.NewSource(seed)))
		//1.- Heights stay inside the generation band, give or take the noise.
		for i, h := range ground.Heights() {
			if h < 360*0.2-10 || h > 360*0.8+10 {
				t.Fatalf("seed %d column %d height %.2f outside band", seed, i, h)
			}
		}
		//2.- The freshly generated map honours the slope cap, within what one settle budget leaves.
		if worst := ground.MaxSlopeViolation(); worst > ground.MaxSlope()+settleBudgetTolerance {
			t.Fatalf("seed %d slope %.3f exceeds cap", seed, worst)
		}
	}
}

func TestGenerateDiffersAcrossSeeds(t *testing.T) {
	a := New(400, 300, DefaultSettings())
	b := New(400, 300, DefaultSettings())
	a.Generate(rand.New(rand.NewSource(7)))
	b.Generate(rand.New(rand.NewSource(8)))
	same := true
	for i, h := range a.Heights() {
		if h != b.Heights()[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical terrain")
	}
}

func TestExplodeCarvesCraterAndKeepsSlope(t *testing.T) {
	ground := NewFlat(600, 400, 200)
	//1.- Detonate a sequence of blasts at the surface like resolved impacts would.
	blasts := []struct{ x, r float64 }{{100, 30}, {110, 40}, {300, 100}, {320, 25}, {500, 5}}
	for _, blast := range blasts {
		ground.Explode(blast.x, ground.Height(blast.x), blast.r)
	}
	if ground.Height(300) >= 200 {
		t.Fatalf("expected crater at x=300, height %.2f", ground.Height(300))
	}
	if ground.Height(599) != 200 {
		t.Fatalf("distant column changed to %.2f", ground.Height(599))
	}
	//2.- Slopes remain bounded after every mutation, each settled with a bounded iteration count.
	if worst := ground.MaxSlopeViolation(); worst > ground.MaxSlope()+settleBudgetTolerance {
		t.Fatalf("slope %.3f exceeds cap after explosions", worst)
	}
}

func TestExplodeSkipsColumnsBelowCraterFloor(t *testing.T) {
	ground := NewFlat(100, 400, 10)
	//1.- A blast high in the air never reaches the ground.
	ground.Explode(50, 200, 30)
	for i, h := range ground.Heights() {
		if h != 10 {
			t.Fatalf("column %d changed to %.2f by airburst", i, h)
		}
	}
}

func TestAddDirtClampsToMaxHeight(t *testing.T) {
	ground := NewFlat(200, 120, 110)
	for i := 0; i < 10; i++ {
		ground.AddDirt(100, 110, 40)
	}
	for i, h := range ground.Heights() {
		if h > 120+slopeTolerance {
			t.Fatalf("column %d height %.2f exceeds max height", i, h)
		}
	}
	if ground.Height(100) <= 110 {
		t.Fatalf("expected dirt to raise the impact column")
	}
}

func TestSettleConservesMaterialAndConverges(t *testing.T) {
	ground := NewFlat(80, 400, 0)
	heights := make([]float64, 80)
	for i := 40; i < 80; i++ {
		heights[i] = 60
	}
	ground.SetHeights(heights)
	before := sum(ground.Heights())
	initial := ground.MaxSlopeViolation()
	//1.- A single call may leave residual slope but never makes it worse.
	ground.Settle()
	if ground.MaxSlopeViolation() >= initial {
		t.Fatalf("settle did not reduce the cliff: %.2f", ground.MaxSlopeViolation())
	}
	//2.- Repeated calls converge to the cap.
	for i := 0; i < 200 && !ground.Settle(); i++ {
	}
	if worst := ground.MaxSlopeViolation(); worst > ground.MaxSlope()+slopeTolerance {
		t.Fatalf("slope %.3f exceeds cap after repeated settling", worst)
	}
	if after := sum(ground.Heights()); math.Abs(after-before) > 1e-6 {
		t.Fatalf("settling changed total material from %.3f to %.3f", before, after)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ground := NewFlat(100, 300, 50)
	clone := ground.Clone()
	clone.Explode(50, 50, 20)
	if ground.Height(50) != 50 {
		t.Fatalf("exploding a clone mutated the source")
	}
	if got := ground.SurfaceY(50, 600); got != 550 {
		t.Fatalf("expected surface y 550, got %.2f", got)
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

package environment

import (
	"math/rand"
	"testing"

	"tankduel/engine/internal/gameplay"
)

func TestGenerateWindStaysInRange(t *testing.T) {
	env := New(rand.New(rand.NewSource(42)))
	if env.Gravity != gameplay.Gravity {
		t.Fatalf("expected default gravity, got %.2f", env.Gravity)
	}
	distinct := map[float64]struct{}{}
	for i := 0; i < 500; i++ {
		env.GenerateWind()
		if env.WindSpeed < gameplay.WindMin || env.WindSpeed > gameplay.WindMax {
			t.Fatalf("wind %.3f outside [%v, %v]", env.WindSpeed, gameplay.WindMin, gameplay.WindMax)
		}
		distinct[env.WindSpeed] = struct{}{}
	}
	if len(distinct) < 100 {
		t.Fatalf("wind draws look degenerate: %d distinct values", len(distinct))
	}
}

func TestOptionsAndSetters(t *testing.T) {
	env := New(rand.New(rand.NewSource(1)), WithWindRange(1, -1), WithGravity(0.8))
	if env.Gravity != 0.8 {
		t.Fatalf("expected gravity override, got %.2f", env.Gravity)
	}
	if env.WindSpeed < -1 || env.WindSpeed > 1 {
		t.Fatalf("wind %.3f ignored the custom range", env.WindSpeed)
	}
	//1.- SetGravity trusts the caller, even for negative values.
	env.SetGravity(-3)
	if g, _ := env.Snapshot(); g != -3 {
		t.Fatalf("expected gravity -3, got %.2f", g)
	}
	calm := Calm(0.5)
	if _, wind := calm.Snapshot(); wind != 0 {
		t.Fatalf("calm environment has wind %.2f", wind)
	}
}

// Package terrain owns the destructible heightmap the duel is fought on.
package terrain

import (
	"math"
	"math/rand"

	"tankduel/engine/internal/gameplay"
)

// Settings tunes heightmap generation and settling.
type Settings struct {
	Segments         int
	HeightMinRatio   float64
	HeightMaxRatio   float64
	NoiseAmplitude   float64
	SmoothPasses     int
	MaxSlope         float64
	SettleIterations int
}

// DefaultSettings returns the tuning used by regular matches.
func DefaultSettings() Settings {
	return Settings{
		Segments:         gameplay.TerrainSegments,
		HeightMinRatio:   gameplay.TerrainHeightMinRatio,
		HeightMaxRatio:   gameplay.TerrainHeightMaxRatio,
		NoiseAmplitude:   gameplay.TerrainNoiseAmplitude,
		SmoothPasses:     gameplay.TerrainSmoothPasses,
		MaxSlope:         gameplay.TerrainMaxSlope,
		SettleIterations: gameplay.TerrainSettleIterations,
	}
}

// Terrain is a one dimensional heightmap indexed by integer column.
type Terrain struct {
	heights   []float64
	width     int
	maxHeight float64
	settings  Settings
}

// New creates a flat terrain. Call Generate to roll hills.
func New(width int, maxHeight float64, settings Settings) *Terrain {
	if width < 0 {
		width = 0
	}
	return &Terrain{
		heights:   make([]float64, width),
		width:     width,
		maxHeight: maxHeight,
		settings:  settings,
	}
}

// NewFlat creates a terrain where every column has the given height.
func NewFlat(width int, maxHeight, height float64) *Terrain {
	t := New(width, maxHeight, DefaultSettings())
	for i := range t.heights {
		t.heights[i] = height
	}
	return t
}

// Generate replaces the heightmap with freshly rolled hills drawn from rng.
func (t *Terrain) Generate(rng *rand.Rand) {
	if t == nil || t.width == 0 {
		return
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	segments := t.settings.Segments
	if segments <= 0 {
		segments = 1
	}
	segmentWidth := float64(t.width) / float64(segments)
	//1.- Anchor each segment boundary at a random height inside the configured band.
	anchors := make([]float64, segments+1)
	for i := 0; i <= segments; i++ {
		anchors[i] = rng.Float64()*t.maxHeight*t.settings.HeightMaxRatio + t.maxHeight*t.settings.HeightMinRatio
		if x := int(math.Floor(float64(i) * segmentWidth)); x < t.width {
			t.heights[x] = anchors[i]
		}
	}
	//2.- Ease between anchors with a cosine curve and sprinkle noise for texture.
	for i := 0; i < segments; i++ {
		x1 := int(math.Floor(float64(i) * segmentWidth))
		x2 := int(math.Floor(float64(i+1) * segmentWidth))
		h1, h2 := anchors[i], anchors[i+1]
		for x := x1; x < x2 && x < t.width; x++ {
			f := (1 - math.Cos(float64(x-x1)/float64(x2-x1)*math.Pi)) * 0.5
			noise := (rng.Float64() - 0.5) * t.settings.NoiseAmplitude
			t.heights[x] = h1*(1-f) + h2*f + noise
		}
	}
	//3.- Smooth repeatedly to remove single column spikes while keeping the hills.
	for pass := 0; pass < t.settings.SmoothPasses; pass++ {
		t.smooth()
	}
	//4.- Cap whatever slope the noise left behind.
	t.Settle()
}

func (t *Terrain) smooth() {
	smoothed := make([]float64, t.width)
	copy(smoothed, t.heights)
	for i := 1; i < t.width-1; i++ {
		smoothed[i] = (t.heights[i-1] + t.heights[i] + t.heights[i+1]) / 3
	}
	t.heights = smoothed
}

// Width returns the number of columns.
func (t *Terrain) Width() int {
	if t == nil {
		return 0
	}
	return t.width
}

// MaxHeight returns the soft ceiling used by generation and dirt.
func (t *Terrain) MaxHeight() float64 {
	if t == nil {
		return 0
	}
	return t.maxHeight
}

// MaxSlope returns the settling slope limit.
func (t *Terrain) MaxSlope() float64 {
	if t == nil {
		return 0
	}
	return t.settings.MaxSlope
}

// Height returns the ground height at x. Non-finite or out of range x yields 0.
func (t *Terrain) Height(x float64) float64 {
	if t == nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	ix := int(math.Floor(x))
	if ix < 0 || ix >= t.width {
		return 0
	}
	return t.heights[ix]
}

// SurfaceY converts the ground height at x into a top-left origin screen coordinate.
func (t *Terrain) SurfaceY(x, canvasHeight float64) float64 {
	return canvasHeight - t.Height(x)
}

// Heights returns a copy of the heightmap.
func (t *Terrain) Heights() []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, t.width)
	copy(out, t.heights)
	return out
}

// SetHeights overwrites the heightmap. Extra values are ignored and missing columns keep their height.
func (t *Terrain) SetHeights(heights []float64) {
	if t == nil {
		return
	}
	copy(t.heights, heights)
}

// Clone returns an independent copy, used by the AI to simulate shots.
func (t *Terrain) Clone() *Terrain {
	if t == nil {
		return nil
	}
	clone := *t
	clone.heights = t.Heights()
	return &clone
}

// columnRange returns the half-open column span [x-radius, x+radius) clipped to the map.
func (t *Terrain) columnRange(ix int, radius float64) (int, int) {
	start := int(math.Ceil(float64(ix) - radius))
	end := int(math.Ceil(float64(ix) + radius))
	return max(0, start), min(t.width, end)
}

// Explode removes a linear falloff crater centred on (x, y) and settles the result.
// Columns already below the crater floor are left untouched.
func (t *Terrain) Explode(x, y, radius float64) {
	if t == nil || radius <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	ix := int(math.Floor(x))
	start, end := t.columnRange(ix, radius)
	for i := start; i < end; i++ {
		dist := math.Abs(float64(i - ix))
		effect := math.Max(0, 1-dist/radius)
		depth := radius * effect * gameplay.CraterDepthFactor
		if t.heights[i] > y-radius {
			t.heights[i] -= depth
		}
	}
	t.Settle()
}

// AddDirt raises a linear falloff mound centred on x, clamped to the max height, then settles.
func (t *Terrain) AddDirt(x, y, radius float64) {
	if t == nil || radius <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	ix := int(math.Floor(x))
	start, end := t.columnRange(ix, radius)
	for i := start; i < end; i++ {
		dist := math.Abs(float64(i - ix))
		if dist >= radius {
			continue
		}
		mound := radius * (1 - dist/radius) * gameplay.DirtHeightFactor
		t.heights[i] = math.Min(t.maxHeight, t.heights[i]+mound)
	}
	t.Settle()
}

// Settle moves material between neighbouring columns until no slope exceeds the limit
// or the iteration budget runs out. It reports whether the map fully settled.
func (t *Terrain) Settle() bool {
	if t == nil {
		return true
	}
	maxSlope := t.settings.MaxSlope
	for iteration := 0; iteration < t.settings.SettleIterations; iteration++ {
		settled := true
		for i := 0; i < t.width-1; i++ {
			diff := t.heights[i] - t.heights[i+1]
			if math.Abs(diff) <= maxSlope {
				continue
			}
			transfer := (math.Abs(diff) - maxSlope) / 2
			if diff > 0 {
				t.heights[i] -= transfer
				t.heights[i+1] += transfer
			} else {
				t.heights[i] += transfer
				t.heights[i+1] -= transfer
			}
			settled = false
		}
		if settled {
			return true
		}
	}
	return false
}

// MaxSlopeViolation returns the steepest neighbouring column difference.
func (t *Terrain) MaxSlopeViolation() float64 {
	if t == nil {
		return 0
	}
	worst := 0.0
	for i := 0; i < t.width-1; i++ {
		worst = math.Max(worst, math.Abs(t.heights[i]-t.heights[i+1]))
	}
	return worst
}

package shape

import (
	"testing"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/stretchr/testify/assert"
)

// seqRand replays a fixed sequence of draws, cycling when exhausted.
type seqRand struct {
	vals  []float32
	calls int
}

func (r *seqRand) Float32() float32 {
	v := r.vals[r.calls%len(r.vals)]
	r.calls++
	return v
}

func TestInterpolate(t *testing.T) {
	a := mesh.Color{R: 0, G: 1, B: 0.5}
	b := mesh.Color{R: 1, G: 0, B: 0.5}

	tests := []struct {
		name string
		t    float32
		want mesh.Color
	}{
		{"start", 0, a},
		{"quarter", 0.25, mesh.Color{R: 0.25, G: 0.75, B: 0.5}},
		{"half", 0.5, mesh.Color{R: 0.5, G: 0.5, B: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rnd := &seqRand{vals: []float32{tt.t}}
			got := Interpolate(rnd, a, b)
			assert.InDelta(t, tt.want.R, got.R, 1e-6)
			assert.InDelta(t, tt.want.G, got.G, 1e-6)
			assert.InDelta(t, tt.want.B, got.B, 1e-6)
			assert.Equal(t, 1, rnd.calls, "one draw per call")
		})
	}
}

func TestInterpolateDrawsFreshFactor(t *testing.T) {
	rnd := &seqRand{vals: []float32{0, 0.5}}
	a, b := mesh.Color{}, mesh.Color{R: 1, G: 1, B: 1}
	first := Interpolate(rnd, a, b)
	second := Interpolate(rnd, a, b)
	assert.NotEqual(t, first, second)
}

func TestRandomColorInUnitCube(t *testing.T) {
	rnd := NewRand(42)
	for range 1000 {
		c := RandomColor(rnd)
		for _, v := range []float32{c.R, c.G, c.B} {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.Less(t, v, float32(1))
		}
	}
}

func TestNewRandDeterministic(t *testing.T) {
	a, b := NewRand(9), NewRand(9)
	for range 10 {
		assert.Equal(t, a.Float32(), b.Float32())
	}
}

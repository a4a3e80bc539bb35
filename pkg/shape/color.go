package shape

import (
	"math/rand/v2"

	"github.com/chazu/shapegen/pkg/mesh"
)

// RandSource yields uniformly distributed numbers in [0,1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Float32() float32
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DefaultRand returns a randomly seeded source.
func DefaultRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Interpolate blends a toward b by a fresh random factor t, a + t*(b-a),
// consuming exactly one draw from rnd.
func Interpolate(rnd RandSource, a, b mesh.Color) mesh.Color {
	t := rnd.Float32()
	return mesh.Color{
		R: a.R + t*(b.R-a.R),
		G: a.G + t*(b.G-a.G),
		B: a.B + t*(b.B-a.B),
	}
}

// RandomColor samples a color uniformly from the unit RGB cube.
func RandomColor(rnd RandSource) mesh.Color {
	return mesh.Color{R: rnd.Float32(), G: rnd.Float32(), B: rnd.Float32()}
}

func pickColors(cols *[2]mesh.Color, rnd RandSource) (a, b mesh.Color) {
	if cols != nil {
		return cols[0], cols[1]
	}
	return RandomColor(rnd), RandomColor(rnd)
}

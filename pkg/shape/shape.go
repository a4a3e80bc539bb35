// Package shape builds colored triangle meshes for the parametric solids
// (cone, cube, ring, sphere, torus). Builders are pure functions of their
// parameters and the injected random source used for vertex colors.
package shape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chewxy/math32"
)

// MaxVertices bounds the size of a single generated mesh.
const MaxVertices = 1 << 24

// ErrInvalidParameter is wrapped by every parameter validation failure.
var ErrInvalidParameter = errors.New("invalid shape parameter")

// Kind enumerates the supported shapes.
type Kind int

const (
	KindCone Kind = iota
	KindCube
	KindRing
	KindSphere
	KindTorus
)

// Kinds lists every shape kind in menu order.
var Kinds = []Kind{KindCone, KindCube, KindRing, KindSphere, KindTorus}

func (k Kind) String() string {
	switch k {
	case KindCone:
		return "cone"
	case KindCube:
		return "cube"
	case KindRing:
		return "ring"
	case KindSphere:
		return "sphere"
	case KindTorus:
		return "torus"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind returns the kind with the given name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q, expected cone, cube, ring, sphere or torus", name)
}

// Params is implemented by the per-shape parameter records. The set of
// implementations is closed to this package.
type Params interface {
	Kind() Kind
	// Validate reports the first parameter that violates the shape's
	// contract, wrapped around ErrInvalidParameter.
	Validate() error

	baseColors() *[2]mesh.Color
	vertices() int
}

// ParamError describes a rejected parameter.
type ParamError struct {
	Shape  Kind
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s = %v: %s", e.Shape, e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// Build validates p and generates its mesh, drawing vertex colors from rnd.
// A nil rnd uses DefaultRand.
func Build(p Params, rnd RandSource) (*mesh.Mesh, error) {
	if p == nil {
		return nil, fmt.Errorf("shape: nil parameters: %w", ErrInvalidParameter)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if nv := p.vertices(); nv > MaxVertices {
		return nil, &ParamError{Shape: p.Kind(), Field: "vertices", Value: nv,
			Reason: fmt.Sprintf("exceeds the %d vertex limit", MaxVertices)}
	}
	if rnd == nil {
		rnd = DefaultRand()
	}
	a, b := pickColors(p.baseColors(), rnd)
	c := colorizer{rnd: rnd, a: a, b: b}

	switch p := p.(type) {
	case Cone:
		return buildCone(p, c)
	case Cube:
		return buildCube(p, c)
	case Ring:
		return buildRing(p, c)
	case Sphere:
		return buildSphere(p, c)
	case Torus:
		return buildTorus(p, c)
	default:
		return nil, fmt.Errorf("shape: unsupported parameter type %T", p)
	}
}

// Counts returns the vertex count and per-draw-call index counts that Build
// produces for p, without generating any geometry. p is not validated.
func Counts(p Params) (vertices int, indices []int) {
	switch p := p.(type) {
	case Cone:
		return p.counts()
	case Cube:
		return p.counts()
	case Ring:
		return p.counts()
	case Sphere:
		return p.counts()
	case Torus:
		return p.counts()
	}
	return 0, nil
}

// colorizer hands out one interpolated color per emitted vertex.
type colorizer struct {
	rnd  RandSource
	a, b mesh.Color
}

func (c colorizer) next() mesh.Color {
	return Interpolate(c.rnd, c.a, c.b)
}

// circle returns the point at step k of n equally spaced angles on a circle
// of the given radius centered on the z axis.
func circle(radius float32, k, n int) (x, y float32) {
	sin, cos := math32.Sincos(2 * math32.Pi * float32(k) / float32(n))
	return radius * cos, radius * sin
}

// addRing emits n vertices on a horizontal circle and returns their indices.
func addRing(b *mesh.Buffer, c colorizer, radius, z float32, n int) []uint32 {
	idx := make([]uint32, n)
	for k := range n {
		x, y := circle(radius, k, n)
		idx[k] = b.AddVertex(mesh.Vec3{X: x, Y: y, Z: z}, c.next())
	}
	return idx
}

// fan returns a closed fan: the hub, every rim index, then the first rim
// index again.
func fan(hub uint32, rim []uint32) []uint32 {
	out := make([]uint32, 0, len(rim)+2)
	out = append(out, hub)
	out = append(out, rim...)
	return append(out, rim[0])
}

// strip interleaves two equally sized rings and closes the band by
// repeating the first pair.
func strip(a, b []uint32) []uint32 {
	out := make([]uint32, 0, 2*len(a)+2)
	for k := range a {
		out = append(out, a[k], b[k])
	}
	return append(out, a[0], b[0])
}

// reversed returns a reversed copy of idx.
func reversed(idx []uint32) []uint32 {
	out := make([]uint32, len(idx))
	for i, v := range idx {
		out[len(idx)-1-i] = v
	}
	return out
}

func positive(k Kind, field string, v float32) error {
	if !(v > 0) || math32.IsInf(v, 0) {
		return &ParamError{Shape: k, Field: field, Value: v, Reason: "must be a positive finite number"}
	}
	return nil
}

func atLeast(k Kind, field string, v, min int) error {
	if v < min {
		return &ParamError{Shape: k, Field: field, Value: v, Reason: fmt.Sprintf("must be at least %d", min)}
	}
	return nil
}

func atMost(k Kind, field string, v, max int) error {
	if v > max {
		return &ParamError{Shape: k, Field: field, Value: v, Reason: fmt.Sprintf("must be at most %d", max)}
	}
	return nil
}

func validColors(k Kind, cols *[2]mesh.Color) error {
	if cols == nil {
		return nil
	}
	for i, c := range cols {
		for _, v := range []float32{c.R, c.G, c.B} {
			if !(v >= 0 && v <= 1) {
				return &ParamError{Shape: k, Field: fmt.Sprintf("color%d", i+1), Value: c,
					Reason: "components must lie in [0,1]"}
			}
		}
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

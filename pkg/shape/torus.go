package shape

import (
	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chewxy/math32"
)

// Torus lies in the XY plane. Its tube spans radially from InnerRadius to
// OuterRadius, so the tube radius is (OuterRadius-InnerRadius)/2.
type Torus struct {
	OuterRadius float32
	InnerRadius float32
	// SubDiv is the number of segments around the main circle.
	SubDiv int
	// SubSubDiv is the number of samples around the tube.
	SubSubDiv int
	Colors    *[2]mesh.Color
}

func (Torus) Kind() Kind { return KindTorus }

func (p Torus) baseColors() *[2]mesh.Color { return p.Colors }

func (p Torus) Validate() error {
	err := firstErr(
		positive(KindTorus, "outer", p.OuterRadius),
		atLeast(KindTorus, "subdiv", p.SubDiv, 3),
		atLeast(KindTorus, "sub-subdiv", p.SubSubDiv, 3),
		atMost(KindTorus, "subdiv", p.SubDiv, MaxVertices),
		atMost(KindTorus, "sub-subdiv", p.SubSubDiv, MaxVertices),
		validColors(KindTorus, p.Colors),
	)
	if err != nil {
		return err
	}
	if !(p.InnerRadius >= 0) || p.InnerRadius >= p.OuterRadius {
		return &ParamError{Shape: KindTorus, Field: "inner", Value: p.InnerRadius,
			Reason: "must be non-negative and smaller than the outer radius"}
	}
	return nil
}

// TubeRadius returns the radius of the tube.
func (p Torus) TubeRadius() float32 {
	return (p.OuterRadius - p.InnerRadius) / 2
}

// CenterRadius returns the radius of the circle through the tube centers.
func (p Torus) CenterRadius() float32 {
	return p.InnerRadius + p.TubeRadius()
}

func (p Torus) vertices() int {
	return p.SubDiv * p.SubSubDiv
}

func (p Torus) counts() (int, []int) {
	idx := make([]int, p.SubDiv)
	for i := range idx {
		idx[i] = 2*p.SubSubDiv + 2
	}
	return p.vertices(), idx
}

func buildTorus(p Torus, c colorizer) (*mesh.Mesh, error) {
	b := mesh.NewBuffer(KindTorus.String(), p.vertices())
	small, center := p.TubeRadius(), p.CenterRadius()

	rings := make([][]uint32, p.SubDiv)
	for i := range rings {
		su, cu := math32.Sincos(2 * math32.Pi * float32(i) / float32(p.SubDiv))
		rings[i] = make([]uint32, p.SubSubDiv)
		for j := range rings[i] {
			sv, cv := math32.Sincos(2 * math32.Pi * float32(j) / float32(p.SubSubDiv))
			d := center + small*cv
			rings[i][j] = b.AddVertex(mesh.Vec3{X: d * cu, Y: d * su, Z: small * sv}, c.next())
		}
	}

	// Ring i first so each band's triangles face away from the tube center.
	for i := range rings {
		b.AddDrawCall(mesh.TriangleStrip, strip(rings[i], rings[(i+1)%len(rings)]))
	}

	return b.Build()
}

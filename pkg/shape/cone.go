package shape

import "github.com/chazu/shapegen/pkg/mesh"

// Cone has its apex on +Z at Height and its base disk on the XY plane.
type Cone struct {
	Radius float32
	Height float32
	// SubDiv is the number of samples around the axis.
	SubDiv int
	// VertSubDiv is the number of rings between apex and base.
	VertSubDiv int
	Colors     *[2]mesh.Color
}

func (Cone) Kind() Kind { return KindCone }

func (p Cone) baseColors() *[2]mesh.Color { return p.Colors }

func (p Cone) Validate() error {
	return firstErr(
		positive(KindCone, "radius", p.Radius),
		positive(KindCone, "height", p.Height),
		atLeast(KindCone, "subdiv", p.SubDiv, 3),
		atLeast(KindCone, "vert-subdiv", p.VertSubDiv, 1),
		atMost(KindCone, "subdiv", p.SubDiv, MaxVertices),
		atMost(KindCone, "vert-subdiv", p.VertSubDiv, MaxVertices),
		validColors(KindCone, p.Colors),
	)
}

func (p Cone) vertices() int {
	return 1 + p.VertSubDiv*p.SubDiv + 1 + p.SubDiv
}

func (p Cone) counts() (int, []int) {
	idx := []int{p.SubDiv + 2}
	for i := 0; i < p.VertSubDiv-1; i++ {
		idx = append(idx, 2*p.SubDiv+2)
	}
	return p.vertices(), append(idx, p.SubDiv+2)
}

func buildCone(p Cone, c colorizer) (*mesh.Mesh, error) {
	b := mesh.NewBuffer(KindCone.String(), p.vertices())

	apex := b.AddVertex(mesh.Vec3{Z: p.Height}, c.next())

	stepR := p.Radius / float32(p.VertSubDiv)
	stepH := p.Height / float32(p.VertSubDiv)
	rings := make([][]uint32, p.VertSubDiv)
	for j := 1; j <= p.VertSubDiv; j++ {
		rings[j-1] = addRing(b, c, float32(j)*stepR, p.Height-float32(j)*stepH, p.SubDiv)
	}

	center := b.AddVertex(mesh.Vec3{}, c.next())
	base := addRing(b, c, p.Radius, 0, p.SubDiv)

	b.AddDrawCall(mesh.TriangleFan, fan(apex, rings[0]))
	for i := 0; i+1 < len(rings); i++ {
		b.AddDrawCall(mesh.TriangleStrip, strip(rings[i], rings[i+1]))
	}
	// Descending order keeps the base facing -Z.
	b.AddDrawCall(mesh.TriangleFan, fan(center, reversed(base)))

	return b.Build()
}

package shape

import (
	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chewxy/math32"
)

// Sphere is centered on the origin with poles on the Z axis.
type Sphere struct {
	Radius float32
	SubDiv int
	// VertStacks is the number of latitude bands per hemisphere.
	VertStacks int
	Colors     *[2]mesh.Color
}

func (Sphere) Kind() Kind { return KindSphere }

func (p Sphere) baseColors() *[2]mesh.Color { return p.Colors }

func (p Sphere) Validate() error {
	return firstErr(
		positive(KindSphere, "radius", p.Radius),
		atLeast(KindSphere, "subdiv", p.SubDiv, 3),
		atLeast(KindSphere, "stacks", p.VertStacks, 2),
		atMost(KindSphere, "subdiv", p.SubDiv, MaxVertices),
		atMost(KindSphere, "stacks", p.VertStacks, MaxVertices),
		validColors(KindSphere, p.Colors),
	)
}

func (p Sphere) rings() int {
	return 2*p.VertStacks - 1
}

func (p Sphere) vertices() int {
	return 2 + p.SubDiv*p.rings()
}

func (p Sphere) counts() (int, []int) {
	nr := p.rings()
	idx := []int{p.SubDiv + 2}
	for i := 0; i < nr-1; i++ {
		idx = append(idx, 2*p.SubDiv+2)
	}
	return p.vertices(), append(idx, p.SubDiv+2)
}

func buildSphere(p Sphere, c colorizer) (*mesh.Mesh, error) {
	b := mesh.NewBuffer(KindSphere.String(), p.vertices())

	top := b.AddVertex(mesh.Vec3{Z: p.Radius}, c.next())

	// Rings are evenly spaced in height; each ring radius follows from
	// r^2 = R^2 - z^2.
	step := p.Radius / float32(p.VertStacks)
	rings := make([][]uint32, p.rings())
	for j := range rings {
		z := float32(p.VertStacks-1-j) * step
		r := math32.Sqrt(math32.Max(p.Radius*p.Radius-z*z, 0))
		rings[j] = addRing(b, c, r, z, p.SubDiv)
	}

	bottom := b.AddVertex(mesh.Vec3{Z: -p.Radius}, c.next())

	b.AddDrawCall(mesh.TriangleFan, fan(top, rings[0]))
	for i := 0; i+1 < len(rings); i++ {
		b.AddDrawCall(mesh.TriangleStrip, strip(rings[i], rings[i+1]))
	}
	b.AddDrawCall(mesh.TriangleFan, fan(bottom, reversed(rings[len(rings)-1])))

	return b.Build()
}

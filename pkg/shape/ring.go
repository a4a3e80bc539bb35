package shape

import "github.com/chazu/shapegen/pkg/mesh"

// Ring is a flat annulus extruded along +Z from 0 to Height.
type Ring struct {
	OuterRadius float32
	InnerRadius float32
	Height      float32
	// VertStacks is the number of samples around each of the four rims.
	VertStacks int
	Colors     *[2]mesh.Color
}

func (Ring) Kind() Kind { return KindRing }

func (p Ring) baseColors() *[2]mesh.Color { return p.Colors }

func (p Ring) Validate() error {
	err := firstErr(
		positive(KindRing, "outer", p.OuterRadius),
		positive(KindRing, "inner", p.InnerRadius),
		positive(KindRing, "height", p.Height),
		atLeast(KindRing, "stacks", p.VertStacks, 3),
		atMost(KindRing, "stacks", p.VertStacks, MaxVertices),
		validColors(KindRing, p.Colors),
	)
	if err != nil {
		return err
	}
	if p.InnerRadius >= p.OuterRadius {
		return &ParamError{Shape: KindRing, Field: "inner", Value: p.InnerRadius,
			Reason: "must be smaller than the outer radius"}
	}
	return nil
}

func (p Ring) vertices() int {
	return 4 * p.VertStacks
}

func (p Ring) counts() (int, []int) {
	n := 2*p.VertStacks + 2
	return p.vertices(), []int{n, n, n, n}
}

func buildRing(p Ring, c colorizer) (*mesh.Mesh, error) {
	vs := p.VertStacks
	b := mesh.NewBuffer(KindRing.String(), p.vertices())

	topInner := addRing(b, c, p.InnerRadius, p.Height, vs)
	topOuter := addRing(b, c, p.OuterRadius, p.Height, vs)
	botInner := addRing(b, c, p.InnerRadius, 0, vs)
	botOuter := addRing(b, c, p.OuterRadius, 0, vs)

	b.AddDrawCall(mesh.TriangleStrip, strip(topInner, topOuter))
	b.AddDrawCall(mesh.TriangleStrip, strip(botOuter, botInner))
	b.AddDrawCall(mesh.TriangleStrip, strip(botInner, topInner))
	b.AddDrawCall(mesh.TriangleStrip, strip(topOuter, botOuter))

	return b.Build()
}

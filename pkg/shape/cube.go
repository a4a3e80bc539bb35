package shape

import "github.com/chazu/shapegen/pkg/mesh"

// Cube is an axis-aligned box centered on the origin. Width, Height and
// Depth are full edge lengths along X, Y and Z, so the corners sit at
// half of each. Presets that treat them as half-extents give a box twice
// this size.
type Cube struct {
	Width  float32
	Height float32
	Depth  float32
	Colors *[2]mesh.Color
}

func (Cube) Kind() Kind { return KindCube }

func (p Cube) baseColors() *[2]mesh.Color { return p.Colors }

func (p Cube) Validate() error {
	return firstErr(
		positive(KindCube, "width", p.Width),
		positive(KindCube, "height", p.Height),
		positive(KindCube, "depth", p.Depth),
		validColors(KindCube, p.Colors),
	)
}

func (Cube) vertices() int { return 24 }

func (p Cube) counts() (int, []int) {
	return p.vertices(), []int{36}
}

// cubeFaces holds the corner signs of each face, counter-clockwise as seen
// from outside the cube.
var cubeFaces = [6][4][3]float32{
	{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},     // front +Z
	{{-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {1, -1, -1}}, // back -Z
	{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},     // top +Y
	{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, // bottom -Y
	{{1, -1, -1}, {1, 1, -1}, {1, 1, 1}, {1, -1, 1}},     // right +X
	{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}, // left -X
}

func buildCube(p Cube, c colorizer) (*mesh.Mesh, error) {
	b := mesh.NewBuffer(KindCube.String(), 24)
	hx, hy, hz := p.Width/2, p.Height/2, p.Depth/2

	indices := make([]uint32, 0, 36)
	for _, face := range cubeFaces {
		var q [4]uint32
		for i, s := range face {
			q[i] = b.AddVertex(mesh.Vec3{X: s[0] * hx, Y: s[1] * hy, Z: s[2] * hz}, c.next())
		}
		indices = append(indices, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	b.AddDrawCall(mesh.TriangleList, indices)

	return b.Build()
}

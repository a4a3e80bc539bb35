// Package kernel maps shape parameters to exact solids built with the
// github.com/deadsy/sdfx SDF library. Generated meshes are faceted
// approximations of these solids: every vertex lies on the solid's
// surface. The kernel measures how far a mesh strays from that surface
// and can render the smooth solid through marching cubes.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultMeshCells controls marching cubes resolution along the longest
// bounding box axis.
const DefaultMeshCells = 200

// DefaultTolerance is the largest surface distance Check accepts, in model
// units. Vertices are stored as float32.
const DefaultTolerance = 1e-4

// ErrOffSurface is reported by Check when a vertex is too far from the
// reference surface.
var ErrOffSurface = errors.New("kernel: vertex off reference surface")

// Solid returns the exact solid that p approximates, positioned the way
// shape.Build positions the mesh.
func Solid(p shape.Params) (sdf.SDF3, error) {
	if p == nil {
		return nil, fmt.Errorf("kernel: nil parameters: %w", shape.ErrInvalidParameter)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p := p.(type) {
	case shape.Cone:
		// Cone3D is centered on the origin; the mesh base sits at z=0.
		s, err := sdf.Cone3D(float64(p.Height), float64(p.Radius), 0, 0)
		if err != nil {
			return nil, fmt.Errorf("kernel: cone: %w", err)
		}
		return lift(s, float64(p.Height)/2), nil

	case shape.Cube:
		return sdf.Box3D(v3.Vec{X: float64(p.Width), Y: float64(p.Height), Z: float64(p.Depth)}, 0)

	case shape.Ring:
		h := float64(p.Height)
		outer, err := sdf.Cylinder3D(h, float64(p.OuterRadius), 0)
		if err != nil {
			return nil, fmt.Errorf("kernel: ring: %w", err)
		}
		inner, err := sdf.Cylinder3D(h, float64(p.InnerRadius), 0)
		if err != nil {
			return nil, fmt.Errorf("kernel: ring: %w", err)
		}
		return lift(sdf.Difference3D(outer, inner), h/2), nil

	case shape.Sphere:
		return sdf.Sphere3D(float64(p.Radius))

	case shape.Torus:
		return newTorus(float64(p.CenterRadius()), float64(p.TubeRadius())), nil

	default:
		return nil, fmt.Errorf("kernel: unsupported parameter type %T", p)
	}
}

func lift(s sdf.SDF3, z float64) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: z}))
}

// torus is a torus around the Z axis.
type torus struct {
	center, tube float64
	bb           sdf.Box3
}

func newTorus(center, tube float64) *torus {
	r := center + tube
	return &torus{
		center: center,
		tube:   tube,
		bb: sdf.Box3{
			Min: v3.Vec{X: -r, Y: -r, Z: -tube},
			Max: v3.Vec{X: r, Y: r, Z: tube},
		},
	}
}

func (t *torus) Evaluate(p v3.Vec) float64 {
	q := math.Hypot(p.X, p.Y) - t.center
	return math.Hypot(q, p.Z) - t.tube
}

func (t *torus) BoundingBox() sdf.Box3 {
	return t.bb
}

// Deviation returns the largest absolute surface distance over m's
// vertices and the index of the vertex that reaches it. An empty mesh
// reports (0, -1).
func Deviation(m *mesh.Mesh, s sdf.SDF3) (float64, int) {
	worst, at := 0.0, -1
	for i := range m.VertexCount() {
		p := m.Position(i)
		d := math.Abs(s.Evaluate(v3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}))
		if at < 0 || d > worst {
			worst, at = d, i
		}
	}
	return worst, at
}

// Check verifies that every vertex of m lies within tol of the solid
// described by p.
func Check(m *mesh.Mesh, p shape.Params, tol float64) error {
	s, err := Solid(p)
	if err != nil {
		return err
	}
	d, i := Deviation(m, s)
	if d > tol {
		return fmt.Errorf("%w: %s vertex %d is %.3g away", ErrOffSurface, m.Name, i, d)
	}
	return nil
}

// ToTriangles renders s with uniform marching cubes.
func ToTriangles(s sdf.SDF3, cells int) []*sdf.Triangle3 {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
}

// ToMesh renders s as a single-color triangle list mesh.
func ToMesh(name string, s sdf.SDF3, cells int, c mesh.Color) (*mesh.Mesh, error) {
	tris := ToTriangles(s, cells)

	b := mesh.NewBuffer(name, len(tris)*3)
	indices := make([]uint32, 0, len(tris)*3)
	for _, tri := range tris {
		for _, v := range tri {
			indices = append(indices, b.AddVertex(mesh.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}, c))
		}
	}
	b.AddDrawCall(mesh.TriangleList, indices)
	return b.Build()
}

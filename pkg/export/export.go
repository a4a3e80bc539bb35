// Package export writes generated meshes to disk using the
// github.com/deadsy/sdfx STL writer.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/tessellate"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrEmptyMesh is returned when a mesh has no triangles to write.
var ErrEmptyMesh = errors.New("export: mesh has no triangles")

// ToTriangles converts m into sdfx triangles, one per rasterized triangle,
// keeping the draw call winding.
func ToTriangles(m *mesh.Mesh) []*sdf.Triangle3 {
	tris := tessellate.Triangles(m)
	out := make([]*sdf.Triangle3, 0, len(tris))
	for _, tri := range tris {
		out = append(out, &sdf.Triangle3{vertex(m, tri[0]), vertex(m, tri[1]), vertex(m, tri[2])})
	}
	return out
}

func vertex(m *mesh.Mesh, i uint32) v3.Vec {
	p := m.Position(int(i))
	return v3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// BoundingBox returns the axis-aligned bounds of m's vertices.
func BoundingBox(m *mesh.Mesh) sdf.Box3 {
	lo, hi := m.Bounds()
	return sdf.Box3{
		Min: v3.Vec{X: float64(lo.X), Y: float64(lo.Y), Z: float64(lo.Z)},
		Max: v3.Vec{X: float64(hi.X), Y: float64(hi.Y), Z: float64(hi.Z)},
	}
}

// WriteSTL writes m as a binary STL file at path. Vertex colors are not
// representable in STL and are dropped.
func WriteSTL(path string, m *mesh.Mesh) (int, error) {
	if m == nil {
		return 0, ErrEmptyMesh
	}
	if m.IsEmpty() {
		return 0, fmt.Errorf("%w: %s", ErrEmptyMesh, m.Name)
	}
	tris := ToTriangles(m)
	if len(tris) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyMesh, m.Name)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("export: create %s: %w", dir, err)
		}
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return 0, fmt.Errorf("export: write %s: %w", path, err)
	}
	return len(tris), nil
}

// FileName returns a file system safe STL file name for a mesh name.
func FileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "mesh"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return name + ".stl"
}

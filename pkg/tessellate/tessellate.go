// Package tessellate turns evaluated shape programs into meshes and expands
// fan and strip draw calls into plain triangles.
package tessellate

import (
	"fmt"

	"github.com/chazu/shapegen/pkg/engine"
	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/shape"
)

// Tessellate builds one mesh per shape definition, in source order, each
// named after its definition. When the program inserted an object that is
// not one of its definitions it is built last. The program is not mutated.
func Tessellate(p *engine.Program, rnd shape.RandSource) ([]*mesh.Mesh, error) {
	if p == nil {
		return nil, nil
	}
	if rnd == nil {
		rnd = shape.DefaultRand()
	}

	defs := p.Shapes
	if p.Active != nil && p.Lookup(p.Active.Name) == nil {
		defs = append(defs[:len(defs):len(defs)], *p.Active)
	}

	meshes := make([]*mesh.Mesh, 0, len(defs))
	for _, def := range defs {
		m, err := Build(def, rnd)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Build generates the mesh for a single definition.
func Build(def engine.Definition, rnd shape.RandSource) (*mesh.Mesh, error) {
	m, err := shape.Build(def.Params, rnd)
	if err != nil {
		return nil, fmt.Errorf("tessellate: building %q: %w", def.Name, err)
	}
	if def.Name != "" {
		m.Name = def.Name
	}
	return m, nil
}

// Triangles expands every draw call of m into independent triangles with
// the winding a GPU would rasterize: fans pivot on their first index,
// strips swap the first two vertices of every odd triangle, lists are
// taken three at a time. Degenerate triangles are dropped.
func Triangles(m *mesh.Mesh) [][3]uint32 {
	var out [][3]uint32
	for _, dc := range m.DrawCalls {
		out = appendTriangles(out, dc)
	}
	return out
}

// TriangleCount returns len(Triangles(m)) without building the slice.
func TriangleCount(m *mesh.Mesh) int {
	n := 0
	for _, dc := range m.DrawCalls {
		forEachTriangle(dc, func([3]uint32) { n++ })
	}
	return n
}

func appendTriangles(out [][3]uint32, dc mesh.DrawCall) [][3]uint32 {
	forEachTriangle(dc, func(t [3]uint32) { out = append(out, t) })
	return out
}

func forEachTriangle(dc mesh.DrawCall, fn func([3]uint32)) {
	ix := dc.Indices
	emit := func(a, b, c uint32) {
		if a != b && b != c && a != c {
			fn([3]uint32{a, b, c})
		}
	}

	switch dc.Primitive {
	case mesh.TriangleFan:
		for i := 1; i+1 < len(ix); i++ {
			emit(ix[0], ix[i], ix[i+1])
		}
	case mesh.TriangleStrip:
		for i := 0; i+2 < len(ix); i++ {
			if i%2 == 0 {
				emit(ix[i], ix[i+1], ix[i+2])
			} else {
				emit(ix[i+1], ix[i], ix[i+2])
			}
		}
	case mesh.TriangleList:
		for i := 0; i+2 < len(ix); i += 3 {
			emit(ix[i], ix[i+1], ix[i+2])
		}
	}
}

// Package raster projects a posed mesh into screen space for a 2D triangle
// rasterizer. It culls back faces and orders triangles far to near, which
// stands in for a depth buffer.
package raster

import (
	"cmp"
	"slices"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MaxBatchVertices is the most vertices a batch may hold, so that every
// index fits in a uint16.
const MaxBatchVertices = 1<<16 - 1

// Viewport is a square drawing area in screen pixels.
type Viewport struct {
	X, Y float32
	Size float32
}

// Square returns the largest square viewport centered in a w by h screen.
func Square(w, h int) Viewport {
	side := min(w, h)
	if side < 0 {
		side = 0
	}
	return Viewport{
		X:    float32(w-side) / 2,
		Y:    float32(h-side) / 2,
		Size: float32(side),
	}
}

// Vertex is a projected vertex: screen position, depth and color.
type Vertex struct {
	X, Y    float32
	Depth   float32
	R, G, B float32
}

// Triangle is a projected, front-facing triangle.
type Triangle [3]Vertex

func (t Triangle) depth() float32 {
	return (t[0].Depth + t[1].Depth + t[2].Depth) / 3
}

// Frame is the projected output for one draw.
type Frame struct {
	// Triangles are sorted far to near.
	Triangles []Triangle
	// Culled counts back-facing and out-of-depth-range triangles.
	Culled int
}

// Project transforms m by model into normalized device coordinates
// (x, y and z in [-1,1], +y up, viewer on +z), maps them into vp and
// returns the visible triangles. Depth is -z, so larger depth is farther
// away. Triangles wound clockwise as seen from the viewer are back faces
// and are dropped when cull is set.
func Project(m *mesh.Mesh, model sdf.M44, vp Viewport, cull bool) Frame {
	n := m.VertexCount()
	ndc := make([]v3.Vec, n)
	for i := range n {
		p := m.Position(i)
		ndc[i] = model.MulPosition(v3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)})
	}

	var f Frame
	for _, tri := range tessellate.Triangles(m) {
		a, b, c := ndc[tri[0]], ndc[tri[1]], ndc[tri[2]]
		if outsideDepth(a, b, c) {
			f.Culled++
			continue
		}
		if cull && signedArea(a, b, c) <= 0 {
			f.Culled++
			continue
		}
		var out Triangle
		for k, idx := range tri {
			out[k] = toScreen(ndc[idx], m.Color(int(idx)), vp)
		}
		f.Triangles = append(f.Triangles, out)
	}

	slices.SortStableFunc(f.Triangles, func(x, y Triangle) int {
		return cmp.Compare(y.depth(), x.depth())
	})
	return f
}

// signedArea is twice the counter-clockwise area of the triangle's
// projection onto the XY plane.
func signedArea(a, b, c v3.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// outsideDepth reports whether the whole triangle lies beyond the near or
// far plane.
func outsideDepth(a, b, c v3.Vec) bool {
	return (a.Z < -1 && b.Z < -1 && c.Z < -1) || (a.Z > 1 && b.Z > 1 && c.Z > 1)
}

func toScreen(p v3.Vec, col mesh.Color, vp Viewport) Vertex {
	return Vertex{
		X:     vp.X + float32(p.X+1)/2*vp.Size,
		Y:     vp.Y + float32(1-p.Y)/2*vp.Size,
		Depth: float32(-p.Z),
		R:     col.R,
		G:     col.G,
		B:     col.B,
	}
}

// Batch is an indexed triangle list small enough for uint16 indices.
type Batch struct {
	Vertices []Vertex
	Indices  []uint16
}

// Batches splits the frame into batches of at most maxVertices vertices,
// keeping the far to near order. Values outside (3, MaxBatchVertices] are
// clamped.
func (f Frame) Batches(maxVertices int) []Batch {
	maxVertices = min(max(maxVertices, 3), MaxBatchVertices)
	perBatch := maxVertices / 3

	var out []Batch
	for start := 0; start < len(f.Triangles); start += perBatch {
		tris := f.Triangles[start:min(start+perBatch, len(f.Triangles))]
		b := Batch{
			Vertices: make([]Vertex, 0, 3*len(tris)),
			Indices:  make([]uint16, 0, 3*len(tris)),
		}
		for _, t := range tris {
			for _, v := range t {
				b.Indices = append(b.Indices, uint16(len(b.Vertices)))
				b.Vertices = append(b.Vertices, v)
			}
		}
		out = append(out, b)
	}
	return out
}

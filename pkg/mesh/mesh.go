// Package mesh defines the interleaved vertex + indexed draw call model
// that shape builders emit into and renderers consume.
package mesh

import (
	"errors"
	"fmt"
)

// Stride is the number of float32 components per vertex: x,y,z,r,g,b.
// Renderers depend on this packing; positions occupy components 0-2 and
// colors components 3-5.
const Stride = 6

// ErrIndexOutOfRange is reported when a draw call references a vertex
// that does not exist.
var ErrIndexOutOfRange = errors.New("mesh: index out of range")

// Primitive is the topology used to assemble indexed vertices.
type Primitive int

const (
	TriangleFan   Primitive = iota // first index is the hub
	TriangleStrip                  // every new index forms a triangle with the previous two
	TriangleList                   // independent triples
)

func (p Primitive) String() string {
	switch p {
	case TriangleFan:
		return "TRIANGLE_FAN"
	case TriangleStrip:
		return "TRIANGLE_STRIP"
	case TriangleList:
		return "TRIANGLE_LIST"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// MarshalText encodes the primitive by its GL-style name.
func (p Primitive) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Vec3 is a position in model space.
type Vec3 struct {
	X, Y, Z float32
}

// Color is an RGB triple with components in [0,1].
type Color struct {
	R, G, B float32
}

// DrawCall is one indexed draw: a topology plus the vertex indices it uses.
type DrawCall struct {
	Primitive Primitive `json:"primitive"`
	Indices   []uint32  `json:"indices"`
}

// IndexCount returns the number of indices issued by the draw call.
func (d DrawCall) IndexCount() int {
	return len(d.Indices)
}

// Mesh is the generated geometry of one object: a single interleaved vertex
// array and the draw calls that assemble it. A Mesh is never mutated after
// Buffer.Build returns it.
type Mesh struct {
	Name      string     `json:"name"`
	Vertices  []float32  `json:"vertices"` // [x0,y0,z0,r0,g0,b0, x1,...]
	DrawCalls []DrawCall `json:"drawCalls"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / Stride
}

// IndexCount returns the total number of indices over all draw calls.
func (m *Mesh) IndexCount() int {
	n := 0
	for _, dc := range m.DrawCalls {
		n += dc.IndexCount()
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) Vec3 {
	o := i * Stride
	return Vec3{X: m.Vertices[o], Y: m.Vertices[o+1], Z: m.Vertices[o+2]}
}

// Color returns the color of vertex i.
func (m *Mesh) Color(i int) Color {
	o := i*Stride + 3
	return Color{R: m.Vertices[o], G: m.Vertices[o+1], B: m.Vertices[o+2]}
}

// Validate checks that the vertex array is whole and that every index of
// every draw call addresses an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%Stride != 0 {
		return fmt.Errorf("mesh %q: vertex array length %d is not a multiple of %d", m.Name, len(m.Vertices), Stride)
	}
	if len(m.DrawCalls) == 0 {
		return fmt.Errorf("mesh %q: no draw calls", m.Name)
	}
	n := uint32(m.VertexCount())
	for i, dc := range m.DrawCalls {
		for j, idx := range dc.Indices {
			if idx >= n {
				return fmt.Errorf("mesh %q: draw call %d index %d = %d, vertex count %d: %w",
					m.Name, i, j, idx, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of all vertex positions.
// An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return min, max
	}
	min = m.Position(0)
	max = min
	for i := 1; i < n; i++ {
		p := m.Position(i)
		min.X, max.X = minf(min.X, p.X), maxf(max.X, p.X)
		min.Y, max.Y = minf(min.Y, p.Y), maxf(max.Y, p.Y)
		min.Z, max.Z = minf(min.Z, p.Z), maxf(max.Z, p.Z)
	}
	return min, max
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

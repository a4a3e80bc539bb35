package mesh

// Buffer accumulates vertices and draw calls during a single build pass.
// It is not safe for concurrent use and must not be reused after Build.
type Buffer struct {
	name      string
	vertices  []float32
	drawCalls []DrawCall
}

// NewBuffer returns a Buffer sized for about vertexHint vertices.
func NewBuffer(name string, vertexHint int) *Buffer {
	if vertexHint < 0 {
		vertexHint = 0
	}
	return &Buffer{
		name:     name,
		vertices: make([]float32, 0, vertexHint*Stride),
	}
}

// AddVertex appends one vertex and returns its index.
func (b *Buffer) AddVertex(p Vec3, c Color) uint32 {
	idx := uint32(len(b.vertices) / Stride)
	b.vertices = append(b.vertices, p.X, p.Y, p.Z, c.R, c.G, c.B)
	return idx
}

// VertexCount returns the number of vertices added so far.
func (b *Buffer) VertexCount() int {
	return len(b.vertices) / Stride
}

// AddDrawCall appends a draw call. The index slice is owned by the buffer
// from here on.
func (b *Buffer) AddDrawCall(prim Primitive, indices []uint32) {
	b.drawCalls = append(b.drawCalls, DrawCall{Primitive: prim, Indices: indices})
}

// Build validates the accumulated geometry and returns it as a Mesh.
func (b *Buffer) Build() (*Mesh, error) {
	m := &Mesh{
		Name:      b.name,
		Vertices:  b.vertices,
		DrawCalls: b.drawCalls,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	b.vertices, b.drawCalls = nil, nil
	return m, nil
}

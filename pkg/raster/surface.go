package raster

import (
	"fmt"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
)

var _ scene.Renderer = (*Surface)(nil)

// Surface is a scene.Renderer that keeps private copies of uploaded meshes
// and projects each Draw into a Frame for a triangle rasterizer.
type Surface struct {
	meshes map[scene.Handle]*mesh.Mesh
	next   scene.Handle
	vp     Viewport
	cull   bool
	frame  Frame
}

// NewSurface returns a surface of w by h pixels with back-face culling on.
func NewSurface(w, h int) *Surface {
	return &Surface{
		meshes: make(map[scene.Handle]*mesh.Mesh),
		vp:     Square(w, h),
		cull:   true,
	}
}

// Resize keeps the viewport square and centered in a w by h screen.
func (s *Surface) Resize(w, h int) {
	s.vp = Square(w, h)
}

// Viewport returns the current drawing area.
func (s *Surface) Viewport() Viewport {
	return s.vp
}

// SetCulling turns back-face culling on or off.
func (s *Surface) SetCulling(on bool) {
	s.cull = on
}

// Upload copies the vertices and every draw call's indices.
func (s *Surface) Upload(m *mesh.Mesh) (scene.Handle, error) {
	if m == nil {
		return 0, fmt.Errorf("raster: upload of nil mesh")
	}
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("raster: upload %s: %w", m.Name, err)
	}
	cp := &mesh.Mesh{
		Name:      m.Name,
		Vertices:  append([]float32(nil), m.Vertices...),
		DrawCalls: make([]mesh.DrawCall, len(m.DrawCalls)),
	}
	for i, dc := range m.DrawCalls {
		cp.DrawCalls[i] = mesh.DrawCall{Primitive: dc.Primitive, Indices: append([]uint32(nil), dc.Indices...)}
	}
	s.next++
	s.meshes[s.next] = cp
	return s.next, nil
}

// Draw projects the mesh behind h with transform into the current frame.
func (s *Surface) Draw(h scene.Handle, transform sdf.M44) error {
	m, ok := s.meshes[h]
	if !ok {
		return fmt.Errorf("raster: draw of unknown handle %d", h)
	}
	s.frame = Project(m, transform, s.vp, s.cull)
	return nil
}

// Release forgets the mesh behind h.
func (s *Surface) Release(h scene.Handle) {
	delete(s.meshes, h)
}

// Frame returns the result of the last Draw.
func (s *Surface) Frame() Frame {
	return s.frame
}

// Live returns the number of uploaded meshes not yet released.
func (s *Surface) Live() int {
	return len(s.meshes)
}

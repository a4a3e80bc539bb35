// Package scene holds the single active object and its model transform,
// and drives a Renderer once per frame.
package scene

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/shapegen/pkg/kernel"
	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
)

// StepAngle is the rotation applied per frame, one degree.
const StepAngle = math.Pi / 180

// Handle identifies a mesh uploaded to a Renderer.
type Handle uint64

// Renderer uploads meshes and draws them with a model transform.
// Vertex layout is mesh.Stride floats per vertex: position then color.
type Renderer interface {
	// Upload copies the vertices and every draw call's indices in order.
	Upload(m *mesh.Mesh) (Handle, error)
	// Draw issues one draw per draw call, in order, with transform applied.
	Draw(h Handle, transform sdf.M44) error
	// Release frees an uploaded mesh. Unknown handles are ignored.
	Release(h Handle)
}

// State is a snapshot of the scene.
type State struct {
	// Mesh is the active object, nil before the first successful insert.
	Mesh   *mesh.Mesh
	Params shape.Params
	Axis   Axis
	Model  sdf.M44
	Frames uint64
}

// Controller owns the scene state. It is not safe for concurrent use;
// Insert and SetAxis are expected between frames.
type Controller struct {
	r      Renderer
	rnd    shape.RandSource
	log    *slog.Logger
	state  State
	handle Handle
	loaded bool
}

// NewController returns a controller with no active object, rotating about
// X. A nil rnd uses shape.DefaultRand and a nil logger uses slog.Default.
func NewController(r Renderer, rnd shape.RandSource, logger *slog.Logger) *Controller {
	if rnd == nil {
		rnd = shape.DefaultRand()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		r:     r,
		rnd:   rnd,
		log:   logger,
		state: State{Axis: AxisX, Model: sdf.Identity3d()},
	}
}

// Insert builds p, uploads it and makes it the active object with an
// identity model transform. On failure the previous object stays active.
func (c *Controller) Insert(p shape.Params) (*mesh.Mesh, error) {
	m, err := shape.Build(p, c.rnd)
	if err != nil {
		c.log.Warn("insert rejected", "error", err)
		return nil, err
	}
	if err := c.replace(m); err != nil {
		return nil, err
	}
	c.state.Params = p
	c.log.Info("inserted shape", "shape", p.Kind().String(), "params", p,
		"vertices", m.VertexCount(), "drawCalls", len(m.DrawCalls))
	return m, nil
}

// InsertMesh makes an already built mesh the active object.
func (c *Controller) InsertMesh(m *mesh.Mesh) error {
	if m == nil {
		return fmt.Errorf("scene: nil mesh")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	if err := c.replace(m); err != nil {
		return err
	}
	c.state.Params = nil
	c.log.Info("inserted mesh", "name", m.Name, "vertices", m.VertexCount(), "drawCalls", len(m.DrawCalls))
	return nil
}

// InsertReference replaces the active shape with the smooth solid it
// approximates, meshed by marching cubes at the given resolution.
func (c *Controller) InsertReference(cells int) error {
	p := c.state.Params
	if p == nil {
		return fmt.Errorf("scene: no active shape")
	}
	s, err := kernel.Solid(p)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	m, err := kernel.ToMesh(p.Kind().String()+" reference", s, cells, mesh.Color{R: 0.8, G: 0.8, B: 0.8})
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return c.InsertMesh(m)
}

func (c *Controller) replace(m *mesh.Mesh) error {
	h, err := c.r.Upload(m)
	if err != nil {
		c.log.Error("upload failed", "name", m.Name, "error", err)
		return fmt.Errorf("scene: upload %s: %w", m.Name, err)
	}
	if c.loaded {
		c.r.Release(c.handle)
	}
	c.handle, c.loaded = h, true
	c.state.Mesh = m
	c.state.Model = sdf.Identity3d()
	return nil
}

// SetAxis changes the rotation mode without touching the model transform.
func (c *Controller) SetAxis(a Axis) {
	if a == c.state.Axis {
		return
	}
	c.state.Axis = a
	c.log.Debug("rotation axis changed", "axis", a.String())
}

// Step advances the model transform by one frame of rotation.
func (c *Controller) Step() {
	m := c.state.Model
	switch c.state.Axis {
	case AxisX:
		m = m.Mul(sdf.RotateX(StepAngle)).Mul(sdf.RotateZ(StepAngle)).Mul(sdf.RotateY(StepAngle))
	case AxisY:
		m = m.Mul(sdf.RotateY(StepAngle))
	case AxisZ:
		m = m.Mul(sdf.RotateZ(StepAngle))
	}
	c.state.Model = m
	c.state.Frames++
}

// Frame steps the rotation and draws the active object, if any.
func (c *Controller) Frame() error {
	c.Step()
	if !c.loaded {
		return nil
	}
	if err := c.r.Draw(c.handle, c.state.Model); err != nil {
		return fmt.Errorf("scene: draw %s: %w", c.state.Mesh.Name, err)
	}
	return nil
}

// State returns a snapshot of the scene.
func (c *Controller) State() State {
	return c.state
}

// Close releases the active object.
func (c *Controller) Close() {
	if c.loaded {
		c.r.Release(c.handle)
		c.loaded = false
	}
}

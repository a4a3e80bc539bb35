package scene

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// recordingRenderer is a stub Renderer that records every call.
type recordingRenderer struct {
	next      Handle
	uploaded  map[Handle]*mesh.Mesh
	released  []Handle
	draws     []Handle
	models    []sdf.M44
	uploadErr error
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{uploaded: make(map[Handle]*mesh.Mesh)}
}

func (r *recordingRenderer) Upload(m *mesh.Mesh) (Handle, error) {
	if r.uploadErr != nil {
		return 0, r.uploadErr
	}
	r.next++
	r.uploaded[r.next] = m
	return r.next, nil
}

func (r *recordingRenderer) Draw(h Handle, transform sdf.M44) error {
	if _, ok := r.uploaded[h]; !ok {
		return errors.New("unknown handle")
	}
	r.draws = append(r.draws, h)
	r.models = append(r.models, transform)
	return nil
}

func (r *recordingRenderer) Release(h Handle) {
	delete(r.uploaded, h)
	r.released = append(r.released, h)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(r Renderer) *Controller {
	return NewController(r, shape.NewRand(1), quietLogger())
}

var probe = v3.Vec{X: 1, Y: 2, Z: 3}

func closeTo(a, b v3.Vec) bool {
	const tol = 1e-9
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestFrameWithoutObjectDrawsNothing(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	if err := c.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(r.draws) != 0 {
		t.Errorf("expected no draws, got %d", len(r.draws))
	}
	if c.State().Frames != 1 {
		t.Errorf("expected frame counter 1, got %d", c.State().Frames)
	}
}

func TestInsertUploadsAndDraws(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	m, err := c.Insert(shape.Cube{Width: 1, Height: 1, Depth: 1})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if m.VertexCount() != 24 {
		t.Errorf("expected 24 vertices, got %d", m.VertexCount())
	}
	if len(r.uploaded) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(r.uploaded))
	}
	if err := c.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(r.draws) != 1 || r.draws[0] != 1 {
		t.Errorf("expected one draw of handle 1, got %v", r.draws)
	}
	if c.State().Mesh != m {
		t.Error("state does not hold the inserted mesh")
	}
}

func TestInsertReplacesAndReleasesPrevious(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	if _, err := c.Insert(shape.Cube{Width: 1, Height: 1, Depth: 1}); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		if err := c.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.Insert(shape.Sphere{Radius: 1, SubDiv: 8, VertStacks: 3}); err != nil {
		t.Fatal(err)
	}

	if len(r.released) != 1 || r.released[0] != 1 {
		t.Errorf("expected handle 1 released, got %v", r.released)
	}
	if len(r.uploaded) != 1 {
		t.Errorf("expected a single live upload, got %d", len(r.uploaded))
	}
	// New objects start from the identity transform.
	if got := c.State().Model.MulPosition(probe); !closeTo(got, probe) {
		t.Errorf("model not reset to identity: %v", got)
	}
	if c.State().Params.Kind() != shape.KindSphere {
		t.Errorf("expected sphere params, got %v", c.State().Params.Kind())
	}
}

func TestInvalidInsertKeepsPreviousObject(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	cube, err := c.Insert(shape.Cube{Width: 1, Height: 1, Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	c.Step()
	before := c.State().Model.MulPosition(probe)

	_, err = c.Insert(shape.Ring{OuterRadius: 1, InnerRadius: 2, Height: 1, VertStacks: 6})
	if !errors.Is(err, shape.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if c.State().Mesh != cube {
		t.Error("active mesh changed after a rejected insert")
	}
	if got := c.State().Model.MulPosition(probe); !closeTo(got, before) {
		t.Error("model transform changed after a rejected insert")
	}
	if len(r.released) != 0 {
		t.Errorf("expected no releases, got %v", r.released)
	}
}

func TestUploadFailureKeepsPreviousObject(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	cube, err := c.Insert(shape.Cube{Width: 1, Height: 1, Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	r.uploadErr = errors.New("out of memory")
	if _, err := c.Insert(shape.Cube{Width: 2, Height: 2, Depth: 2}); err == nil {
		t.Fatal("expected upload error")
	}
	if c.State().Mesh != cube {
		t.Error("active mesh changed after a failed upload")
	}
}

func TestStepRotation(t *testing.T) {
	a := StepAngle
	tests := []struct {
		name string
		axis Axis
		want v3.Vec
	}{
		{"x tumbles", AxisX, sdf.RotateX(a).MulPosition(sdf.RotateZ(a).MulPosition(sdf.RotateY(a).MulPosition(probe)))},
		{"y", AxisY, sdf.RotateY(a).MulPosition(probe)},
		{"z", AxisZ, sdf.RotateZ(a).MulPosition(probe)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(newRecordingRenderer())
			c.SetAxis(tt.axis)
			c.Step()
			if got := c.State().Model.MulPosition(probe); !closeTo(got, tt.want) {
				t.Errorf("after one step got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFullTurnAboutZ(t *testing.T) {
	c := newTestController(newRecordingRenderer())
	c.SetAxis(AxisZ)
	for range 90 {
		c.Step()
	}
	got := c.State().Model.MulPosition(v3.Vec{X: 1})
	if math.Abs(got.X) > 1e-9 || math.Abs(math.Abs(got.Y)-1) > 1e-9 {
		t.Errorf("expected a quarter turn, got %v", got)
	}
}

func TestSetAxisKeepsModel(t *testing.T) {
	c := newTestController(newRecordingRenderer())
	c.Step()
	before := c.State().Model.MulPosition(probe)
	c.SetAxis(AxisY)
	if got := c.State().Model.MulPosition(probe); !closeTo(got, before) {
		t.Error("SetAxis modified the model transform")
	}
	if c.State().Axis != AxisY {
		t.Errorf("expected axis y, got %s", c.State().Axis)
	}
}

func TestInsertMesh(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	if err := c.InsertMesh(nil); err == nil {
		t.Error("expected error for nil mesh")
	}
	bad := &mesh.Mesh{Name: "bad", Vertices: make([]float32, mesh.Stride),
		DrawCalls: []mesh.DrawCall{{Primitive: mesh.TriangleList, Indices: []uint32{0, 1, 2}}}}
	if err := c.InsertMesh(bad); !errors.Is(err, mesh.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}

	m, err := shape.Build(shape.Torus{OuterRadius: 3, InnerRadius: 1, SubDiv: 10, SubSubDiv: 6}, shape.NewRand(3))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.InsertMesh(m); err != nil {
		t.Fatalf("InsertMesh: %v", err)
	}
	if c.State().Mesh != m || c.State().Params != nil {
		t.Error("unexpected state after InsertMesh")
	}
}

func TestInsertReference(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)

	if err := c.InsertReference(16); err == nil {
		t.Error("expected error with no active shape")
	}

	if _, err := c.Insert(shape.Sphere{Radius: 1, SubDiv: 6, VertStacks: 3}); err != nil {
		t.Fatal(err)
	}
	if err := c.InsertReference(16); err != nil {
		t.Fatalf("InsertReference: %v", err)
	}
	st := c.State()
	if st.Params != nil || st.Mesh == nil || st.Mesh.Name != "sphere reference" {
		t.Fatalf("unexpected state after InsertReference: %+v", st)
	}
	if len(r.uploaded) != 1 || len(r.released) != 1 {
		t.Errorf("expected the faceted sphere to be released, %d uploaded %d released", len(r.uploaded), len(r.released))
	}

	// The reference has no parameters to refine again.
	if err := c.InsertReference(16); err == nil {
		t.Error("expected error when the active object is already a reference")
	}
}

func TestClose(t *testing.T) {
	r := newRecordingRenderer()
	c := newTestController(r)
	if _, err := c.Insert(shape.Cube{Width: 1, Height: 1, Depth: 1}); err != nil {
		t.Fatal(err)
	}
	c.Close()
	c.Close()
	if len(r.released) != 1 {
		t.Errorf("expected exactly one release, got %v", r.released)
	}
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in      string
		want    Axis
		wantErr bool
	}{
		{"x", AxisX, false},
		{"Y", AxisY, false},
		{"rotz", AxisZ, false},
		{" z ", AxisZ, false},
		{"w", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAxis(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAxis(%q): expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAxis(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseAxis(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAxisText(t *testing.T) {
	var a Axis
	if err := a.UnmarshalText([]byte("y")); err != nil {
		t.Fatal(err)
	}
	b, _ := a.MarshalText()
	if string(b) != "y" {
		t.Errorf("MarshalText = %q", b)
	}
	if err := a.UnmarshalText([]byte("q")); err == nil {
		t.Error("expected error for invalid axis")
	}
}

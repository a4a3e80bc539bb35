package export

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/chazu/shapegen/pkg/tessellate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMesh(t *testing.T, p shape.Params) *mesh.Mesh {
	t.Helper()
	m, err := shape.Build(p, shape.NewRand(1))
	require.NoError(t, err)
	return m
}

func TestToTrianglesMatchesTessellation(t *testing.T) {
	m := buildMesh(t, shape.Cone{Radius: 2, Height: 3, SubDiv: 8, VertSubDiv: 4})
	tris := ToTriangles(m)
	require.Len(t, tris, tessellate.TriangleCount(m))

	// The apex fan comes first.
	assert.InDelta(t, 3, tris[0][0].Z, 1e-6)
}

func TestCubeNormalsPointOutward(t *testing.T) {
	m := buildMesh(t, shape.Cube{Width: 2, Height: 2, Depth: 2})
	for i, tri := range ToTriangles(m) {
		n := tri.Normal()
		c := tri[0].Add(tri[1]).Add(tri[2]).MulScalar(1.0 / 3)
		assert.Greater(t, n.Dot(c), 0.0, "triangle %d", i)
	}
}

func TestBoundingBox(t *testing.T) {
	m := buildMesh(t, shape.Cube{Width: 2, Height: 4, Depth: 6})
	bb := BoundingBox(m)
	assert.InDelta(t, -1, bb.Min.X, 1e-6)
	assert.InDelta(t, -2, bb.Min.Y, 1e-6)
	assert.InDelta(t, -3, bb.Min.Z, 1e-6)
	assert.InDelta(t, 1, bb.Max.X, 1e-6)
	assert.InDelta(t, 2, bb.Max.Y, 1e-6)
	assert.InDelta(t, 3, bb.Max.Z, 1e-6)
}

func TestWriteSTL(t *testing.T) {
	tests := []shape.Params{
		shape.Cube{Width: 1, Height: 1, Depth: 1},
		shape.Torus{OuterRadius: 3, InnerRadius: 1, SubDiv: 10, SubSubDiv: 6},
	}
	for _, p := range tests {
		t.Run(p.Kind().String(), func(t *testing.T) {
			m := buildMesh(t, p)
			path := filepath.Join(t.TempDir(), "out", FileName(m.Name))

			n, err := WriteSTL(path, m)
			require.NoError(t, err)
			assert.Equal(t, tessellate.TriangleCount(m), n)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(data), 84)
			// Binary STL: 80 byte header, triangle count, 50 bytes per triangle.
			assert.Equal(t, uint32(n), binary.LittleEndian.Uint32(data[80:84]))
			assert.Len(t, data, 84+50*n)
		})
	}
}

func TestWriteSTLEmpty(t *testing.T) {
	_, err := WriteSTL(filepath.Join(t.TempDir(), "x.stl"), &mesh.Mesh{Name: "empty"})
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = WriteSTL(filepath.Join(t.TempDir(), "y.stl"), nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	// Indices without vertices must not be dereferenced.
	hollow := &mesh.Mesh{Name: "hollow", DrawCalls: []mesh.DrawCall{
		{Primitive: mesh.TriangleList, Indices: []uint32{0, 1, 2}},
	}}
	_, err = WriteSTL(filepath.Join(t.TempDir(), "z.stl"), hollow)
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"cone":         "cone.stl",
		"my shape":     "my_shape.stl",
		"../../etc":    "______etc.stl",
		"":             "mesh.stl",
		"Ring-2_large": "Ring-2_large.stl",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileName(in), "FileName(%q)", in)
	}
}

package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/shapegen/pkg/mesh"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Empty and comment-only input produces nothing and no errors. Slices stay
// non-nil so JSON serializes them as [] rather than null.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n  ", ";; just a comment", ";; one\n;; two\n\n"} {
		result := NewApp(nil).Evaluate(src)

		if len(result.Errors) != 0 {
			t.Errorf("%q: expected 0 errors, got %v", src, result.Errors)
		}
		if len(result.Meshes) != 0 {
			t.Errorf("%q: expected 0 meshes, got %d", src, len(result.Meshes))
		}
		if result.Meshes == nil {
			t.Errorf("%q: Meshes should be non-nil empty slice", src)
		}
		if result.Errors == nil {
			t.Errorf("%q: Errors should be non-nil empty slice", src)
		}
		if result.Selected != "" {
			t.Errorf("%q: expected no selection, got %q", src, result.Selected)
		}
	}
}

// ---------------------------------------------------------------------------
// Syntax errors carry a message and, when the parser reports one, a line.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(defshape \"test\""
	result := NewApp(nil).Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	if e.Line < 0 {
		t.Errorf("line should not be negative, got %d", e.Line)
	}
}

// ---------------------------------------------------------------------------
// Rejected parameters become eval errors and no mesh is produced.
// ---------------------------------------------------------------------------

func TestE2EInvalidParameters(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"zero radius", `(defshape "s" (sphere :radius 0 :subdiv 8 :stacks 4))`, "radius"},
		{"negative width", `(defshape "c" (cube :width -1 :height 1 :depth 1))`, "width"},
		{"inner equals outer", `(defshape "r" (ring :outer 1 :inner 1 :height 1 :stacks 8))`, "inner"},
		{"two sides", `(defshape "t" (torus :outer 1 :inner 0.2 :subdiv 2 :sub-subdiv 8))`, "subdiv"},
		{"one stack", `(defshape "s" (sphere :radius 1 :subdiv 8 :stacks 1))`, "stacks"},
		{"undefined shape", `(insert (shape "ghost"))`, "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp(nil).Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected an error")
			}
			if len(result.Meshes) != 0 {
				t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
			}
			if !strings.Contains(result.Errors[0].Message, tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, result.Errors[0].Message)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// A shape that passes validation but is too big to build fails at
// tessellation, not in the interpreter.
// ---------------------------------------------------------------------------

func TestE2EVertexLimit(t *testing.T) {
	result := NewApp(nil).Evaluate(`(defshape "huge" (sphere :radius 1 :subdiv 10000 :stacks 10000))`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	msg := result.Errors[0].Message
	if !strings.HasPrefix(msg, "tessellation failed") || !strings.Contains(msg, "vertex limit") {
		t.Errorf("unexpected message %q", msg)
	}
}

// ---------------------------------------------------------------------------
// Repeated evaluation on one App returns independent, correct results.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	app := NewApp(nil)
	for i := range 20 {
		result := app.Evaluate(`(defshape "c" (cone :radius 1 :height 2 :subdiv 12 :vert-subdiv 3))`)
		if len(result.Errors) != 0 {
			t.Fatalf("iteration %d: unexpected errors %v", i, result.Errors)
		}
		if len(result.Meshes) != 1 {
			t.Fatalf("iteration %d: expected 1 mesh, got %d", i, len(result.Meshes))
		}
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	app := NewApp(nil)
	good := `(defshape "c" (cube :width 1 :height 1 :depth 1))`
	bad := `(defshape "c" (cube :width 1`
	for i := range 10 {
		if r := app.Evaluate(good); len(r.Errors) != 0 || len(r.Meshes) != 1 {
			t.Fatalf("iteration %d good: errors=%v meshes=%d", i, r.Errors, len(r.Meshes))
		}
		if r := app.Evaluate(bad); len(r.Errors) == 0 || len(r.Meshes) != 0 {
			t.Fatalf("iteration %d bad: errors=%v meshes=%d", i, r.Errors, len(r.Meshes))
		}
	}
}

// Each goroutine owns its App: an Engine reports results of older
// overlapping calls as superseded.
func TestE2EConcurrentEvaluation(t *testing.T) {
	sources := []string{
		`(defshape "a" (torus :outer 1 :inner 0.3 :subdiv 8 :sub-subdiv 6))`,
		`(defshape "b" (ring :outer 1 :inner 0.5 :height 1 :stacks 8))`,
		`(defshape "c" (sphere :radius 1 :subdiv 8 :stacks 4))`,
	}

	var wg sync.WaitGroup
	errs := make(chan string, 30)
	for i := range 30 {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			r := NewApp(nil).Evaluate(src)
			if len(r.Errors) != 0 || len(r.Meshes) != 1 {
				errs <- src
			}
		}(sources[i%len(sources)])
	}
	wg.Wait()
	close(errs)
	for src := range errs {
		t.Errorf("concurrent evaluation failed for %s", src)
	}
}

// ---------------------------------------------------------------------------
// Inserting an anonymous shape adds it after the definitions.
// ---------------------------------------------------------------------------

func TestE2EAnonymousInsert(t *testing.T) {
	result := NewApp(nil).Evaluate(`
(defshape "base" (cube :width 1 :height 1 :depth 1))
(insert (ring :outer 1 :inner 0.5 :height 0.5 :stacks 6))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Name != "base" || result.Meshes[1].Name != "ring" {
		t.Errorf("unexpected names %q, %q", result.Meshes[0].Name, result.Meshes[1].Name)
	}
	if result.Selected != "ring" {
		t.Errorf("expected inserted ring selected, got %q", result.Selected)
	}
}

func TestE2EInsertDefinedShapeNotDuplicated(t *testing.T) {
	result := NewApp(nil).Evaluate(`
(defshape "a" (cube :width 1 :height 1 :depth 1))
(defshape "b" (cube :width 2 :height 2 :depth 2))
(insert (shape "a"))
`)
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	if result.Selected != "a" {
		t.Errorf("expected a selected, got %q", result.Selected)
	}
}

// ---------------------------------------------------------------------------
// Arithmetic and variables flow into parameters.
// ---------------------------------------------------------------------------

func TestE2EArithmeticParameters(t *testing.T) {
	result := NewApp(nil).Evaluate(`
(def outer-radius 2)
(def sides (* 4 3))
(defshape "t" (torus :outer outer-radius :inner (/ outer-radius 4.0) :subdiv sides :sub-subdiv (- sides 4)))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	m := result.Meshes[0]
	if got := len(m.Vertices) / mesh.Stride; got != 12*8 {
		t.Errorf("expected %d vertices, got %d", 12*8, got)
	}
	for i := 0; i < len(m.Vertices); i += mesh.Stride {
		x, y := m.Vertices[i], m.Vertices[i+1]
		if r2 := x*x + y*y; r2 > 2*2+1e-3 {
			t.Fatalf("vertex %d outside the torus: r^2=%v", i/mesh.Stride, r2)
		}
	}
}

// ---------------------------------------------------------------------------
// Vertex colors stay within [0,1] for every shape.
// ---------------------------------------------------------------------------

func TestE2EColorRange(t *testing.T) {
	result := NewApp(nil).Evaluate(`
(defshape "a" (cone :radius 1 :height 1 :subdiv 6 :vert-subdiv 2))
(defshape "b" (sphere :radius 1 :subdiv 6 :stacks 3 :colors (list (rgb 0 0 0) (rgb 1 1 1))))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, m := range result.Meshes {
		for i := 0; i < len(m.Vertices); i += mesh.Stride {
			for _, c := range m.Vertices[i+3 : i+6] {
				if c < 0 || c > 1 {
					t.Fatalf("%s: color component %v out of range", m.Name, c)
				}
			}
		}
	}
}

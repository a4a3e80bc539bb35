package main

import (
	"log"

	"github.com/chazu/shapegen/pkg/engine"
	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/chazu/shapegen/pkg/tessellate"
)

// App evaluates shape programs and converts them into JSON-friendly meshes.
type App struct {
	engine *engine.Engine
	rnd    shape.RandSource
}

// MeshData is the JSON-serializable form of one generated object.
type MeshData struct {
	Name      string          `json:"name"`
	Vertices  []float32       `json:"vertices"`
	Stride    int             `json:"stride"`
	DrawCalls []mesh.DrawCall `json:"drawCalls"`
	Triangles int             `json:"triangles"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating one source file.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
	// Axis is the rotation mode the program chose.
	Axis string `json:"axis"`
	// Selected names the object a viewer should display, if any.
	Selected string `json:"selected,omitempty"`
}

// NewApp creates an App. A nil rnd uses a time-seeded source.
func NewApp(rnd shape.RandSource) *App {
	if rnd == nil {
		rnd = shape.DefaultRand()
	}
	return &App{
		engine: engine.NewEngine(),
		rnd:    rnd,
	}
}

// Evaluate runs source and returns the meshes it defines plus any errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	prog, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	result.Axis = prog.Axis.String()
	if sel := prog.Selected(); sel != nil {
		result.Selected = sel.Name
	}

	meshes, err := tessellate.Tessellate(prog, a.rnd)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for _, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Name:      m.Name,
			Vertices:  m.Vertices,
			Stride:    mesh.Stride,
			DrawCalls: m.DrawCalls,
			Triangles: tessellate.TriangleCount(m),
		})
	}

	return result
}

// Program evaluates source and returns the program, or the first error.
func (a *App) Program(source string) (*engine.Program, error) {
	prog, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		return nil, evalErrs[0]
	}
	return prog, nil
}

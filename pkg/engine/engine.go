// Package engine provides the Lisp evaluation engine for shape programs.
// It wraps zygomys in a sandboxed environment and produces a Program
// (named shape definitions, the inserted object and the rotation axis)
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/shapegen/pkg/scene"
	"github.com/chazu/shapegen/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a rejected shape
// parameter.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Definition is a named, validated set of shape parameters.
type Definition struct {
	Name   string
	Params shape.Params
}

// Program is the result of evaluating a source file.
type Program struct {
	// Shapes holds every defshape in source order.
	Shapes []Definition
	// Active is the object chosen by the last insert, or nil.
	Active *Definition
	// Axis is the rotation mode chosen by the last rotate, AxisX by default.
	Axis scene.Axis
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{Axis: scene.AxisX}
}

// Lookup returns the definition with the given name, or nil.
func (p *Program) Lookup(name string) *Definition {
	for i := range p.Shapes {
		if p.Shapes[i].Name == name {
			return &p.Shapes[i]
		}
	}
	return nil
}

// Selected returns the object to display: the inserted one, else the last
// definition, else nil.
func (p *Program) Selected() *Definition {
	if p.Active != nil {
		return p.Active
	}
	if len(p.Shapes) > 0 {
		return &p.Shapes[len(p.Shapes)-1]
	}
	return nil
}

// Engine wraps the zygomys interpreter for shape evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	// timeout overrides EvalTimeout when positive.
	timeout time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and produces a new Program.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns program + nil errors + nil error
//   - On parse/eval failure: returns nil program + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Program, []EvalError, error) {
	gen := e.next()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{program: p, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Program, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return NewProgram(), nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	prog := NewProgram()
	registerBuiltins(env, prog)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return prog, nil, nil
}

// linePattern matches the "Error on line N:" header zygomys puts on its
// parse and runtime errors.
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*`)

// linePatternShort matches a leading "line N:" header.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// The line header, when present, is lifted into EvalError.Line and removed
// from the message; everything else is kept.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if loc := re.FindStringSubmatchIndex(msg); loc != nil {
			line, _ := strconv.Atoi(msg[loc[2]:loc[3]])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(msg[:loc[0]] + msg[loc[1]:]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}

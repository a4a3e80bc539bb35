package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/scene"
	"github.com/chazu/shapegen/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps shape parameters so they can be returned from the shape
// constructors and consumed by defshape and insert.
type sexpShape struct {
	name   string
	params shape.Params
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(shape %q)", s.name)
	}
	return fmt.Sprintf("(%s ...)", s.params.Kind())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpColor wraps a mesh.Color produced by rgb.
type sexpColor struct {
	c mesh.Color
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgb %g %g %g)", c.c.R, c.c.G, c.c.B)
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// check reports keywords the builtin does not understand.
func (a kwArgs) check(allowed ...string) error {
	if len(a.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", a.fn, a.positional[0].SexpString(nil))
	}
	for k := range a.kw {
		known := false
		for _, name := range allowed {
			if k == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", a.fn, k)
		}
	}
	return nil
}

// number reads a required numeric keyword.
func (a kwArgs) number(key string) (float32, error) {
	v, ok := a.kw[key]
	if !ok {
		return 0, fmt.Errorf("%s: missing :%s", a.fn, key)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	return float32(f), nil
}

// count reads a required integer keyword.
func (a kwArgs) count(key string) (int, error) {
	v, ok := a.kw[key]
	if !ok {
		return 0, fmt.Errorf("%s: missing :%s", a.fn, key)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	return n, nil
}

// colors reads the optional :colors list or the :color1/:color2 pair.
func (a kwArgs) colors() (*[2]mesh.Color, error) {
	if v, ok := a.kw["colors"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, fmt.Errorf("%s: colors: %w", a.fn, err)
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("%s: colors: expected 2 colors, got %d", a.fn, len(items))
		}
		var out [2]mesh.Color
		for i, item := range items {
			if out[i], err = toColor(item); err != nil {
				return nil, fmt.Errorf("%s: colors: %w", a.fn, err)
			}
		}
		return &out, nil
	}

	c1, ok1 := a.kw["color1"]
	c2, ok2 := a.kw["color2"]
	if !ok1 && !ok2 {
		return nil, nil
	}
	if ok1 != ok2 {
		return nil, fmt.Errorf("%s: :color1 and :color2 must be given together", a.fn)
	}
	var out [2]mesh.Color
	var err error
	if out[0], err = toColor(c1); err != nil {
		return nil, fmt.Errorf("%s: color1: %w", a.fn, err)
	}
	if out[1], err = toColor(c2); err != nil {
		return nil, fmt.Errorf("%s: color2: %w", a.fn, err)
	}
	return &out, nil
}

var colorKeywords = []string{"colors", "color1", "color2"}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt or an integral SexpFloat.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && math.Abs(v.Val) < math.MaxInt32 {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string: %w", err)
	}
	return strings.TrimPrefix(str, kwPrefix), nil
}

// toAxis converts a keyword or string to a scene.Axis.
func toAxis(s zygo.Sexp) (scene.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	return scene.ParseAxis(name)
}

// toColor extracts a color from an rgb expression.
func toColor(s zygo.Sexp) (mesh.Color, error) {
	if c, ok := s.(*sexpColor); ok {
		return c.c, nil
	}
	return mesh.Color{}, fmt.Errorf("expected color, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts shape parameters from a shape expression.
func toShape(s zygo.Sexp) (*sexpShape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh, nil
	}
	return nil, fmt.Errorf("expected shape expression, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Shape constructors
// ---------------------------------------------------------------------------

type shapeFunc func(a kwArgs) (shape.Params, error)

var shapeBuiltins = map[string]shapeFunc{
	"cone": func(a kwArgs) (shape.Params, error) {
		if err := a.check(append([]string{"radius", "height", "subdiv", "vert-subdiv"}, colorKeywords...)...); err != nil {
			return nil, err
		}
		var p shape.Cone
		var err error
		if p.Radius, err = a.number("radius"); err != nil {
			return nil, err
		}
		if p.Height, err = a.number("height"); err != nil {
			return nil, err
		}
		if p.SubDiv, err = a.count("subdiv"); err != nil {
			return nil, err
		}
		if p.VertSubDiv, err = a.count("vert-subdiv"); err != nil {
			return nil, err
		}
		p.Colors, err = a.colors()
		return p, err
	},
	"cube": func(a kwArgs) (shape.Params, error) {
		if err := a.check(append([]string{"width", "height", "depth"}, colorKeywords...)...); err != nil {
			return nil, err
		}
		var p shape.Cube
		var err error
		if p.Width, err = a.number("width"); err != nil {
			return nil, err
		}
		if p.Height, err = a.number("height"); err != nil {
			return nil, err
		}
		if p.Depth, err = a.number("depth"); err != nil {
			return nil, err
		}
		p.Colors, err = a.colors()
		return p, err
	},
	"ring": func(a kwArgs) (shape.Params, error) {
		if err := a.check(append([]string{"outer", "inner", "height", "stacks"}, colorKeywords...)...); err != nil {
			return nil, err
		}
		var p shape.Ring
		var err error
		if p.OuterRadius, err = a.number("outer"); err != nil {
			return nil, err
		}
		if p.InnerRadius, err = a.number("inner"); err != nil {
			return nil, err
		}
		if p.Height, err = a.number("height"); err != nil {
			return nil, err
		}
		if p.VertStacks, err = a.count("stacks"); err != nil {
			return nil, err
		}
		p.Colors, err = a.colors()
		return p, err
	},
	"sphere": func(a kwArgs) (shape.Params, error) {
		if err := a.check(append([]string{"radius", "subdiv", "stacks"}, colorKeywords...)...); err != nil {
			return nil, err
		}
		var p shape.Sphere
		var err error
		if p.Radius, err = a.number("radius"); err != nil {
			return nil, err
		}
		if p.SubDiv, err = a.count("subdiv"); err != nil {
			return nil, err
		}
		if p.VertStacks, err = a.count("stacks"); err != nil {
			return nil, err
		}
		p.Colors, err = a.colors()
		return p, err
	},
	"torus": func(a kwArgs) (shape.Params, error) {
		if err := a.check(append([]string{"outer", "inner", "subdiv", "sub-subdiv"}, colorKeywords...)...); err != nil {
			return nil, err
		}
		var p shape.Torus
		var err error
		if p.OuterRadius, err = a.number("outer"); err != nil {
			return nil, err
		}
		if p.InnerRadius, err = a.number("inner"); err != nil {
			return nil, err
		}
		if p.SubDiv, err = a.count("subdiv"); err != nil {
			return nil, err
		}
		if p.SubSubDiv, err = a.count("sub-subdiv"); err != nil {
			return nil, err
		}
		p.Colors, err = a.colors()
		return p, err
	},
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the shape DSL builtins into a zygomys
// environment. The builtins populate prog during evaluation.
//
// Source must go through preprocessSource first so that :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, prog *Program) {

	// (cone :radius 2 :height 3 :subdiv 8 :vert-subdiv 4)
	// (cube :width 1 :height 1 :depth 1)
	// (ring :outer 3 :inner 1 :height 2 :stacks 6)
	// (sphere :radius 1 :subdiv 12 :stacks 6)
	// (torus :outer 3 :inner 1 :subdiv 10 :sub-subdiv 6)
	//
	// Each also takes :colors (list c1 c2) or :color1 c1 :color2 c2.
	for fn, build := range shapeBuiltins {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			p, err := build(parseArgs(fn, args))
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpShape{params: p}, nil
		})
	}

	// (rgb 1 0.5 0)
	env.AddFunction("rgb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("rgb requires exactly 3 arguments, got %d", len(args))
		}
		var comp [3]float32
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rgb: component %d: %w", i+1, err)
			}
			if f < 0 || f > 1 {
				return zygo.SexpNull, fmt.Errorf("rgb: component %d = %g outside [0,1]", i+1, f)
			}
			comp[i] = float32(f)
		}
		return &sexpColor{c: mesh.Color{R: comp[0], G: comp[1], B: comp[2]}}, nil
	})

	// (defshape "name" (cone ...))
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a shape expression")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		if shapeName == "" {
			return zygo.SexpNull, fmt.Errorf("defshape: name must not be empty")
		}
		body, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape %q: %w", shapeName, err)
		}
		if prog.Lookup(shapeName) != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: shape %q already defined", shapeName)
		}
		if err := body.params.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape %q: %w", shapeName, err)
		}

		prog.Shapes = append(prog.Shapes, Definition{Name: shapeName, Params: body.params})
		return &sexpShape{name: shapeName, params: body.params}, nil
	})

	// (shape "name")
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		def := prog.Lookup(shapeName)
		if def == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpShape{name: def.Name, params: def.Params}, nil
	})

	// (insert (shape "name")) or (insert (torus ...))
	env.AddFunction("insert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("insert requires exactly one shape")
		}
		sh, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert: %w", err)
		}
		if err := sh.params.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("insert: %w", err)
		}
		n := sh.name
		if n == "" {
			n = sh.params.Kind().String()
		}
		prog.Active = &Definition{Name: n, Params: sh.params}
		return sh, nil
	})

	// (rotate :y)
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires an axis (:x, :y, :z)")
		}
		a, err := toAxis(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		prog.Axis = a
		return args[0], nil
	})
}

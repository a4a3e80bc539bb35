package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/shapegen/pkg/config"
	"github.com/chazu/shapegen/pkg/engine"
	"github.com/chazu/shapegen/pkg/export"
	"github.com/chazu/shapegen/pkg/kernel"
	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/render"
	"github.com/chazu/shapegen/pkg/scene"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/chazu/shapegen/pkg/tessellate"
	"github.com/schollz/progressbar/v3"
)

var (
	configPath = flag.String("config", "", "path to a YAML or TOML config file")
	sourcePath = flag.String("source", "", "shape program to evaluate")
	seed       = flag.Uint64("seed", 0, "seed for vertex colors, 0 picks one at random")
	axisFlag   = flag.String("axis", "", "initial rotation axis: x, y or z")
	presetName = flag.String("preset", "", "name of the config preset to show first")
	exportSTL  = flag.Bool("export", false, "write every shape as binary STL and exit")
	outDir     = flag.String("out", "", "directory for -export, overriding the config")
	dumpJSON   = flag.Bool("json", false, "print the evaluated program as JSON and exit")
	reference  = flag.Bool("reference", false, "with -export, also write the smooth solid of each shape")
	cells      = flag.Int("cells", kernel.DefaultMeshCells, "marching cubes resolution for -reference")
	check      = flag.Bool("check", false, "measure every shape against its exact solid and exit")
	writeCfg   = flag.String("write-config", "", "write the effective config to this path and exit")
	verbose    = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("shapegen failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *axisFlag != "" {
		cfg.Axis = *axisFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if *writeCfg != "" {
		return config.Write(*writeCfg, cfg)
	}

	rnd := shape.DefaultRand()
	if cfg.Seed != 0 {
		rnd = shape.NewRand(cfg.Seed)
	}
	app := NewApp(rnd)

	var source string
	if *sourcePath != "" {
		data, err := os.ReadFile(*sourcePath)
		if err != nil {
			return err
		}
		source = string(data)
	}

	if *dumpJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(app.Evaluate(source))
	}

	defs, err := presetDefinitions(cfg)
	if err != nil {
		return err
	}

	axis, err := cfg.RotationAxis()
	if err != nil {
		return err
	}

	var initial *engine.Definition
	if source != "" {
		prog, err := app.Program(source)
		if err != nil {
			return fmt.Errorf("%s: %w", *sourcePath, err)
		}
		defs = mergeDefinitions(defs, prog)
		initial = prog.Selected()
		if *axisFlag == "" {
			axis = prog.Axis
		}
	}

	if *presetName != "" {
		def, err := namedPreset(cfg, *presetName)
		if err != nil {
			return err
		}
		initial = def
	}

	if *check {
		return checkAll(defs, rnd, logger)
	}

	if *exportSTL {
		dir := cfg.Export.Dir
		if *outDir != "" {
			dir = *outDir
		}
		return exportAll(dir, defs, rnd, logger)
	}

	if initial == nil && len(defs) > 0 {
		initial = &defs[0]
	}

	return view(cfg, defs, initial, axis, rnd, logger)
}

func presetDefinitions(cfg config.Config) ([]engine.Definition, error) {
	defs := make([]engine.Definition, 0, len(cfg.Presets))
	for _, p := range cfg.Presets {
		params, err := p.Params()
		if err != nil {
			return nil, err
		}
		defs = append(defs, engine.Definition{Name: p.Name, Params: params})
	}
	return defs, nil
}

// namedPreset returns the config preset called name as a definition.
func namedPreset(cfg config.Config, name string) (*engine.Definition, error) {
	p, ok := cfg.FindPreset(name)
	if !ok {
		return nil, fmt.Errorf("no preset named %q", name)
	}
	params, err := p.Params()
	if err != nil {
		return nil, err
	}
	return &engine.Definition{Name: p.Name, Params: params}, nil
}

// mergeDefinitions appends the program's shapes to defs. A program shape
// replaces a preset of the same name.
func mergeDefinitions(defs []engine.Definition, prog *engine.Program) []engine.Definition {
	out := make([]engine.Definition, 0, len(defs)+len(prog.Shapes)+1)
	for _, d := range defs {
		if prog.Lookup(d.Name) == nil {
			out = append(out, d)
		}
	}
	out = append(out, prog.Shapes...)
	if prog.Active != nil && prog.Lookup(prog.Active.Name) == nil {
		out = append(out, *prog.Active)
	}
	return out
}

func exportAll(dir string, defs []engine.Definition, rnd shape.RandSource, logger *slog.Logger) error {
	if len(defs) == 0 {
		return errors.New("nothing to export")
	}

	pb := progressbar.Default(int64(len(defs)), "exporting")
	defer pb.Close()

	for _, def := range defs {
		m, err := tessellate.Build(def, rnd)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, export.FileName(def.Name))
		n, err := export.WriteSTL(path, m)
		if err != nil {
			return fmt.Errorf("exporting %q: %w", def.Name, err)
		}
		bb := export.BoundingBox(m)
		logger.Debug("wrote stl", "path", path, "triangles", n, "min", bb.Min, "max", bb.Max)

		if *reference {
			if err := exportReference(dir, def, *cells, logger); err != nil {
				return err
			}
		}
		pb.Add(1)
	}
	return nil
}

func exportReference(dir string, def engine.Definition, cells int, logger *slog.Logger) error {
	s, err := kernel.Solid(def.Params)
	if err != nil {
		return err
	}
	m, err := kernel.ToMesh(def.Name, s, cells, mesh.Color{R: 1, G: 1, B: 1})
	if err != nil {
		return fmt.Errorf("reference %q: %w", def.Name, err)
	}
	path := filepath.Join(dir, "reference", export.FileName(def.Name))
	n, err := export.WriteSTL(path, m)
	if err != nil {
		return fmt.Errorf("exporting reference %q: %w", def.Name, err)
	}
	logger.Debug("wrote reference stl", "path", path, "triangles", n)
	return nil
}

// checkAll builds every definition and reports how far its vertices lie
// from the exact solid.
func checkAll(defs []engine.Definition, rnd shape.RandSource, logger *slog.Logger) error {
	var errs []error
	for _, def := range defs {
		m, err := tessellate.Build(def, rnd)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := kernel.Check(m, def.Params, kernel.DefaultTolerance); err != nil {
			logger.Warn("shape off its solid", "name", def.Name, "err", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("checked shape", "name", def.Name, "shape", def.Params,
			"vertices", m.VertexCount(), "triangles", tessellate.TriangleCount(m))
	}
	return errors.Join(errs...)
}

func view(cfg config.Config, defs []engine.Definition, initial *engine.Definition, axis scene.Axis, rnd shape.RandSource, logger *slog.Logger) error {
	presets := make([]render.Preset, 0, len(defs))
	for _, d := range defs {
		presets = append(presets, render.Preset{Name: d.Name, Params: d.Params})
	}

	opts := render.Options{
		Title:   cfg.Window.Title,
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		TPS:     cfg.Window.TPS,
		Axis:    axis,
		Presets: presets,
		Rand:    rnd,
		Logger:  logger,
	}
	if initial != nil {
		opts.Initial = &render.Preset{Name: initial.Name, Params: initial.Params}
	}
	return render.Run(opts)
}

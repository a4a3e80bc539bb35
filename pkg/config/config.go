// Package config loads viewer settings and shape presets from YAML or TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/shapegen/pkg/mesh"
	"github.com/chazu/shapegen/pkg/scene"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWindowSize = 800
	DefaultTPS        = 60
	DefaultExportDir  = "out"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown config format")

type Config struct {
	Window Window `yaml:"window" toml:"window"`
	// Axis is the initial rotation mode: x, y or z.
	Axis string `yaml:"axis" toml:"axis"`
	// Seed makes vertex colors reproducible. Zero picks a random seed.
	Seed    uint64   `yaml:"seed,omitempty" toml:"seed,omitempty"`
	Export  Export   `yaml:"export" toml:"export"`
	Presets []Preset `yaml:"presets" toml:"presets"`
}

type Window struct {
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	TPS    int    `yaml:"tps" toml:"tps"`
	Title  string `yaml:"title,omitempty" toml:"title,omitempty"`
}

type Export struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// Preset is a named set of shape parameters. Only the fields used by the
// preset's shape are read.
type Preset struct {
	Name       string       `yaml:"name" toml:"name"`
	Shape      string       `yaml:"shape" toml:"shape"`
	Radius     float32      `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Height     float32      `yaml:"height,omitempty" toml:"height,omitempty"`
	Width      float32      `yaml:"width,omitempty" toml:"width,omitempty"`
	Depth      float32      `yaml:"depth,omitempty" toml:"depth,omitempty"`
	Outer      float32      `yaml:"outer,omitempty" toml:"outer,omitempty"`
	Inner      float32      `yaml:"inner,omitempty" toml:"inner,omitempty"`
	SubDiv     int          `yaml:"subdiv,omitempty" toml:"subdiv,omitempty"`
	VertSubDiv int          `yaml:"vert_subdiv,omitempty" toml:"vert_subdiv,omitempty"`
	Stacks     int          `yaml:"stacks,omitempty" toml:"stacks,omitempty"`
	SubSubDiv  int          `yaml:"sub_subdiv,omitempty" toml:"sub_subdiv,omitempty"`
	Colors     [][3]float32 `yaml:"colors,omitempty" toml:"colors,omitempty"`
}

// Params converts the preset to shape parameters without validating them.
func (p Preset) Params() (shape.Params, error) {
	kind, err := shape.ParseKind(p.Shape)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}

	var cols *[2]mesh.Color
	switch len(p.Colors) {
	case 0:
	case 2:
		cols = &[2]mesh.Color{}
		for i, c := range p.Colors {
			cols[i] = mesh.Color{R: c[0], G: c[1], B: c[2]}
		}
	default:
		return nil, fmt.Errorf("preset %q: colors: expected 2 entries, got %d", p.Name, len(p.Colors))
	}

	switch kind {
	case shape.KindCone:
		return shape.Cone{Radius: p.Radius, Height: p.Height, SubDiv: p.SubDiv, VertSubDiv: p.VertSubDiv, Colors: cols}, nil
	case shape.KindCube:
		return shape.Cube{Width: p.Width, Height: p.Height, Depth: p.Depth, Colors: cols}, nil
	case shape.KindRing:
		return shape.Ring{OuterRadius: p.Outer, InnerRadius: p.Inner, Height: p.Height, VertStacks: p.Stacks, Colors: cols}, nil
	case shape.KindSphere:
		return shape.Sphere{Radius: p.Radius, SubDiv: p.SubDiv, VertStacks: p.Stacks, Colors: cols}, nil
	default:
		return shape.Torus{OuterRadius: p.Outer, InnerRadius: p.Inner, SubDiv: p.SubDiv, SubSubDiv: p.SubSubDiv, Colors: cols}, nil
	}
}

// Default returns the built-in configuration with one preset per shape.
func Default() Config {
	c := Config{Presets: DefaultPresets()}
	c.normalize()
	return c
}

// DefaultPresets returns one preset per shape kind, in menu order.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "cone", Shape: "cone", Radius: 0.5, Height: 0.8, SubDiv: 24, VertSubDiv: 4},
		{Name: "cube", Shape: "cube", Width: 0.6, Height: 0.6, Depth: 0.6},
		{Name: "ring", Shape: "ring", Outer: 0.6, Inner: 0.3, Height: 0.3, Stacks: 32},
		{Name: "sphere", Shape: "sphere", Radius: 0.6, SubDiv: 24, Stacks: 8},
		{Name: "torus", Shape: "torus", Outer: 0.7, Inner: 0.3, SubDiv: 32, SubSubDiv: 16},
	}
}

func (c *Config) normalize() {
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWindowSize
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultWindowSize
	}
	if c.Window.TPS <= 0 {
		c.Window.TPS = DefaultTPS
	}
	if c.Window.Title == "" {
		c.Window.Title = "shapegen"
	}
	if c.Axis == "" {
		c.Axis = scene.AxisX.String()
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}
	if len(c.Presets) == 0 {
		c.Presets = DefaultPresets()
	}
	for i := range c.Presets {
		if c.Presets[i].Name == "" {
			c.Presets[i].Name = strings.ToLower(c.Presets[i].Shape)
		}
	}
}

// RotationAxis parses Axis.
func (c Config) RotationAxis() (scene.Axis, error) {
	return scene.ParseAxis(c.Axis)
}

// Validate checks the axis and every preset, reporting all problems.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.RotationAxis(); err != nil {
		errs = append(errs, fmt.Errorf("axis: %w", err))
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("preset %q: duplicate name", p.Name))
		}
		seen[p.Name] = true

		params, err := p.Params()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := params.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("preset %q: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

// FindPreset returns the preset with the given name.
func (c Config) FindPreset(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) config file, fills in
// defaults and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml" or ".toml").
func Parse(data []byte, ext string) (Config, error) {
	var c Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Write encodes c as YAML at path.
func Write(path string, c Config) (err error) {
	c.normalize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

package shape

import (
	"log/slog"

	"github.com/chazu/shapegen/pkg/mesh"
)

func colorAttrs(cols *[2]mesh.Color) []slog.Attr {
	if cols == nil {
		return []slog.Attr{slog.String("colors", "random")}
	}
	return []slog.Attr{slog.Any("color1", cols[0]), slog.Any("color2", cols[1])}
}

func (p Cone) LogValue() slog.Value {
	return slog.GroupValue(append([]slog.Attr{
		slog.Float64("radius", float64(p.Radius)),
		slog.Float64("height", float64(p.Height)),
		slog.Int("subdiv", p.SubDiv),
		slog.Int("vertSubdiv", p.VertSubDiv),
	}, colorAttrs(p.Colors)...)...)
}

func (p Cube) LogValue() slog.Value {
	return slog.GroupValue(append([]slog.Attr{
		slog.Float64("width", float64(p.Width)),
		slog.Float64("height", float64(p.Height)),
		slog.Float64("depth", float64(p.Depth)),
	}, colorAttrs(p.Colors)...)...)
}

func (p Ring) LogValue() slog.Value {
	return slog.GroupValue(append([]slog.Attr{
		slog.Float64("outer", float64(p.OuterRadius)),
		slog.Float64("inner", float64(p.InnerRadius)),
		slog.Float64("height", float64(p.Height)),
		slog.Int("stacks", p.VertStacks),
	}, colorAttrs(p.Colors)...)...)
}

func (p Sphere) LogValue() slog.Value {
	return slog.GroupValue(append([]slog.Attr{
		slog.Float64("radius", float64(p.Radius)),
		slog.Int("subdiv", p.SubDiv),
		slog.Int("stacks", p.VertStacks),
	}, colorAttrs(p.Colors)...)...)
}

func (p Torus) LogValue() slog.Value {
	return slog.GroupValue(append([]slog.Attr{
		slog.Float64("outer", float64(p.OuterRadius)),
		slog.Float64("inner", float64(p.InnerRadius)),
		slog.Int("subdiv", p.SubDiv),
		slog.Int("subSubdiv", p.SubSubDiv),
	}, colorAttrs(p.Colors)...)...)
}

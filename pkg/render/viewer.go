// Package render shows the active shape in a desktop window using ebiten.
// Meshes are projected by pkg/raster and drawn as colored triangles.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/chazu/shapegen/pkg/raster"
	"github.com/chazu/shapegen/pkg/scene"
	"github.com/chazu/shapegen/pkg/shape"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Preset is a selectable shape bound to a number key.
type Preset struct {
	Name   string
	Params shape.Params
}

// Options configures the viewer window.
type Options struct {
	Title         string
	Width, Height int
	TPS           int
	Axis          scene.Axis
	Presets       []Preset
	// Initial is inserted before the first frame, when set.
	Initial *Preset
	Rand    shape.RandSource
	Logger  *slog.Logger
}

// referenceCells is the marching cubes resolution for the smooth view.
const referenceCells = 64

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	g, err := newGame(opts)
	if err != nil {
		return err
	}
	defer g.ctrl.Close()

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.TPS)

	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type game struct {
	surface *raster.Surface
	ctrl    *scene.Controller
	presets []Preset
	current string
	log     *slog.Logger
	status  string
	culling bool

	white *ebiten.Image
	verts []ebiten.Vertex
}

func newGame(opts Options) (*game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	surface := raster.NewSurface(opts.Width, opts.Height)
	g := &game{
		surface: surface,
		ctrl:    scene.NewController(surface, opts.Rand, logger),
		presets: opts.Presets,
		log:     logger,
		culling: true,
	}
	g.ctrl.SetAxis(opts.Axis)

	base := ebiten.NewImage(3, 3)
	base.Fill(color.White)
	g.white = base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

	if opts.Initial != nil {
		if err := g.insert(*opts.Initial); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *game) insert(p Preset) error {
	if _, err := g.ctrl.Insert(p.Params); err != nil {
		g.status = err.Error()
		return fmt.Errorf("insert %s: %w", p.Name, err)
	}
	g.current = p.Name
	g.status = ""
	return nil
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	for i, key := range digitKeys {
		if i < len(g.presets) && inpututil.IsKeyJustPressed(key) {
			// A rejected preset leaves the previous object on screen.
			_ = g.insert(g.presets[i])
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyR) {
		for _, p := range g.presets {
			if p.Name == g.current {
				_ = g.insert(p)
				break
			}
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.ctrl.SetAxis(scene.AxisX)
	case inpututil.IsKeyJustPressed(ebiten.KeyY):
		g.ctrl.SetAxis(scene.AxisY)
	case inpututil.IsKeyJustPressed(ebiten.KeyZ):
		g.ctrl.SetAxis(scene.AxisZ)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.ctrl.InsertReference(referenceCells); err != nil {
			g.status = err.Error()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.culling = !g.culling
		g.surface.SetCulling(g.culling)
		g.log.Debug("back-face culling toggled", "on", g.culling)
	}

	return g.ctrl.Frame()
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	for _, b := range g.surface.Frame().Batches(raster.MaxBatchVertices) {
		g.verts = g.verts[:0]
		for _, v := range b.Vertices {
			g.verts = append(g.verts, ebiten.Vertex{
				DstX:   v.X,
				DstY:   v.Y,
				SrcX:   1,
				SrcY:   1,
				ColorR: v.R,
				ColorG: v.G,
				ColorB: v.B,
				ColorA: 1,
			})
		}
		screen.DrawTriangles(g.verts, b.Indices, g.white, nil)
	}

	st := g.ctrl.State()
	msg := fmt.Sprintf("%s  axis %s  meshes %d  [1-%d] shape  [x/y/z] axis  [space] recolor  [s] smooth  [c] culling",
		g.current, st.Axis, g.surface.Live(), len(g.presets))
	if g.status != "" {
		msg += "\n" + g.status
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.surface.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

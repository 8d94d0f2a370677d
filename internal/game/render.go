package game

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/hexboard/internal/board"
)

const (
	pieceRadius = 18.0 // fallback circle, world units
	spriteSize  = 60.0 // sprite edge, world units
)

var (
	windowBg      = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	hexBorder     = color.RGBA{R: 230, G: 230, B: 210, A: 90}
	hexHoverFill  = color.RGBA{R: 255, G: 255, B: 255, A: 40}
	hexSelectFill = color.RGBA{R: 240, G: 200, B: 60, A: 70}
	selectRing    = color.RGBA{R: 240, G: 200, B: 60, A: 255}
)

// namedColors covers the piece colours the stock data uses.
var namedColors = map[string]color.RGBA{
	"red":    {R: 200, G: 40, B: 40, A: 255},
	"blue":   {R: 50, G: 90, B: 210, A: 255},
	"green":  {R: 40, G: 160, B: 60, A: 255},
	"purple": {R: 128, G: 0, B: 128, A: 255},
	"yellow": {R: 230, G: 200, B: 40, A: 255},
	"orange": {R: 230, G: 130, B: 30, A: 255},
	"black":  {R: 20, G: 20, B: 20, A: 255},
	"white":  {R: 240, G: 240, B: 240, A: 255},
	"gray":   {R: 128, G: 128, B: 128, A: 255},
}

// parseColor resolves a colour name or #rgb / #rrggbb string. Anything else
// falls back to red.
func parseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
				return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
			}
		}
	}
	return namedColors[board.DefaultPieceColor]
}

// visible reports whether a screen point within margin pixels of the
// viewport could affect it.
func (g *Game) visible(p board.Point, margin float64) bool {
	return p.X >= -margin && p.Y >= -margin && p.X <= float64(g.width)+margin && p.Y <= float64(g.height)+margin
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	img, ok := g.sprites.Get(g.mapKey)
	if !ok {
		return
	}
	v := g.board.Viewport()
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(v.Zoom, v.Zoom)
	opts.GeoM.Translate(v.OffsetX, v.OffsetY)
	opts.Filter = ebiten.FilterLinear
	screen.DrawImage(img, opts)
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	grid := g.board.Grid()
	v := g.board.Viewport()
	margin := grid.Spec().HexRadius * v.Zoom

	for c := range grid.All() {
		if !g.visible(v.ToScreen(c.Center()), margin) {
			continue
		}
		pts := grid.Corners(c)
		for i := range pts {
			a := v.ToScreen(pts[i])
			b := v.ToScreen(pts[(i+1)%len(pts)])
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1.0, hexBorder, true)
		}
	}

	alpha := g.fader.Step(g.board.HoveredHex())
	if sel, ok := grid.Cell(g.board.SelectedHex()); ok {
		g.fillHex(screen, sel, hexSelectFill)
		g.drawHexLabel(screen, sel, 1)
	}
	if hov, ok := grid.Cell(g.board.HoveredHex()); ok && hov.Label != g.board.SelectedHex() {
		g.fillHex(screen, hov, hexHoverFill)
		g.drawHexLabel(screen, hov, alpha)
	}
}

// fillHex fills one cell with a triangle fan.
func (g *Game) fillHex(screen *ebiten.Image, c board.HexCell, clr color.RGBA) {
	if g.whitePx == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		g.whitePx = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	v := g.board.Viewport()
	r, gg, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	vert := func(p board.Point) ebiten.Vertex {
		s := v.ToScreen(p)
		return ebiten.Vertex{DstX: float32(s.X), DstY: float32(s.Y), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gg, ColorB: b, ColorA: a}
	}
	pts := g.board.Grid().Corners(c)
	g.verts = append(g.verts[:0], vert(c.Center()))
	for _, p := range pts {
		g.verts = append(g.verts, vert(p))
	}
	g.idx = g.idx[:0]
	for i := range pts {
		g.idx = append(g.idx, 0, uint16(i+1), uint16((i+1)%len(pts)+1))
	}
	screen.DrawTriangles(g.verts, g.idx, g.whitePx, nil)
}

func (g *Game) drawHexLabel(screen *ebiten.Image, c board.HexCell, alpha float64) {
	if alpha <= 0 {
		return
	}
	s := g.board.Viewport().ToScreen(c.Center())
	w, h := text.Measure(c.Label, g.ui.face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(s.X-w/2, s.Y-h/2)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(screen, c.Label, g.ui.face, op)
}

func (g *Game) drawPieces(screen *ebiten.Image) {
	v := g.board.Viewport()
	selected := g.board.SelectedPiece()
	for p := range g.board.Pieces() {
		s := v.ToScreen(p.Pos())
		if !g.visible(s, spriteSize*v.Zoom) {
			continue
		}
		if img, ok := g.sprites.Get(p.Type); ok {
			b := img.Bounds()
			size := spriteSize * v.Zoom
			opts := &ebiten.DrawImageOptions{}
			opts.GeoM.Scale(size/float64(b.Dx()), size/float64(b.Dy()))
			opts.GeoM.Translate(s.X-size/2, s.Y-size/2)
			opts.Filter = ebiten.FilterLinear
			screen.DrawImage(img, opts)
		} else {
			r := float32(pieceRadius * v.Zoom)
			vector.FillCircle(screen, float32(s.X), float32(s.Y), r, parseColor(p.Color), true)
			vector.StrokeCircle(screen, float32(s.X), float32(s.Y), r, 1.5, color.White, true)
		}
		if p.ID == selected {
			r := float32((pieceRadius + 6) * v.Zoom)
			vector.StrokeCircle(screen, float32(s.X), float32(s.Y), r, 2, selectRing, true)
		}
	}
}

package game

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/hexboard/internal/board"
)

// Detail panel: rendered into an offscreen buffer at 1x then blitted at
// detailScale, bottom-right.
const (
	detailScale = 2
	detailBufW  = 200
	detailBufH  = 150
	detailPad   = 5
	detailLineH = 14
	detailClose = 12 // close box size in buffer pixels

	glyphW    = 7 // basicfont.Face7x13 advance
	menuItemH = 20
	menuPad   = 8
	tipOffset = 14
)

var (
	panelBg     = color.RGBA{R: 14, G: 16, B: 14, A: 230}
	panelBorder = color.RGBA{R: 55, G: 80, B: 55, A: 255}
	panelHi     = color.RGBA{R: 70, G: 110, B: 70, A: 60}
	menuHover   = color.RGBA{R: 40, G: 70, B: 40, A: 255}
)

// rectF is a screen-space rectangle.
type rectF struct {
	x, y, w, h float64
}

func (r rectF) contains(p board.Point) bool {
	return p.X >= r.x && p.X < r.x+r.w && p.Y >= r.y && p.Y < r.y+r.h
}

// overlay is the widget layer the board drives: a hover tooltip, a unit or
// field detail panel and a context menu. It implements board.UI.
type overlay struct {
	screenW, screenH int

	tipText string
	tipAt   board.Point
	tipOn   bool

	detailTitle string
	detailBody  []string
	detailOn    bool
	detailBuf   *ebiten.Image

	menuItems []board.MenuItem
	menuAt    board.Point
	menuOn    bool

	face text.Face
}

func newOverlay(screenW, screenH int) *overlay {
	return &overlay{
		screenW: screenW,
		screenH: screenH,
		face:    text.NewGoXFace(basicfont.Face7x13),
	}
}

func (o *overlay) ShowTooltip(txt string, x, y float64) {
	o.tipText = txt
	o.tipAt = board.Point{X: x, Y: y}
	o.tipOn = true
}

func (o *overlay) HideTooltip() { o.tipOn = false }

func (o *overlay) OpenDetailView(title, body string) {
	o.detailTitle = title
	o.detailBody = strings.Split(body, "\n")
	o.detailOn = true
}

func (o *overlay) BuildContextMenu(items []board.MenuItem, at board.Point) {
	if len(items) == 0 {
		o.menuOn = false
		return
	}
	o.menuItems = items
	o.menuAt = at
	o.menuOn = true
	o.tipOn = false
}

// menuRect returns the screen rectangle of menu item i, shifted to stay on
// screen.
func (o *overlay) menuRect(i int) rectF {
	longest := 0
	for _, it := range o.menuItems {
		if n := len(it.Label); n > longest {
			longest = n
		}
	}
	w := float64(longest*glyphW + 2*menuPad)
	h := float64(len(o.menuItems) * menuItemH)
	x, y := o.menuAt.X, o.menuAt.Y
	if x+w > float64(o.screenW) {
		x = float64(o.screenW) - w
	}
	if y+h > float64(o.screenH) {
		y = float64(o.screenH) - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return rectF{x: x, y: y + float64(i*menuItemH), w: w, h: menuItemH}
}

func (o *overlay) detailRect() rectF {
	w := float64(detailBufW * detailScale)
	h := float64(detailBufH * detailScale)
	return rectF{x: float64(o.screenW) - w - 12, y: float64(o.screenH) - h - 12, w: w, h: h}
}

func (o *overlay) detailCloseRect() rectF {
	r := o.detailRect()
	s := float64(detailClose * detailScale)
	return rectF{x: r.x + r.w - s - detailPad*detailScale, y: r.y + detailPad*detailScale, w: s, h: s}
}

// Click offers a primary click to the widgets. It reports whether the
// click was consumed and must not reach the board.
func (o *overlay) Click(p board.Point) bool {
	if o.menuOn {
		o.menuOn = false
		for i, it := range o.menuItems {
			if o.menuRect(i).contains(p) {
				if it.Action != nil {
					it.Action()
				}
				break
			}
		}
		return true
	}
	if o.detailOn && o.detailRect().contains(p) {
		if o.detailCloseRect().contains(p) {
			o.detailOn = false
		}
		return true
	}
	return false
}

// Escape closes the topmost widget. It reports whether one was open.
func (o *overlay) Escape() bool {
	switch {
	case o.menuOn:
		o.menuOn = false
	case o.detailOn:
		o.detailOn = false
	default:
		return false
	}
	return true
}

// Draw renders every open widget onto screen. cursor highlights the menu
// item under the mouse.
func (o *overlay) Draw(screen *ebiten.Image, cursor board.Point) {
	if o.detailOn {
		o.drawDetail(screen)
	}
	if o.tipOn && !o.menuOn {
		o.drawTooltip(screen)
	}
	if o.menuOn {
		o.drawMenu(screen, cursor)
	}
}

func (o *overlay) drawText(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, o.face, op)
}

// panelSize returns the size of a panel holding lines, one per row.
func (o *overlay) panelSize(lines []string) (w, h float64) {
	for _, l := range lines {
		if lw, _ := text.Measure(l, o.face, 0); lw > w {
			w = lw
		}
	}
	return w + 2*menuPad, float64(len(lines)*detailLineH) + 2*detailPad
}

// drawPanel draws lines in a bordered box with its top-left corner at x, y.
func (o *overlay) drawPanel(dst *ebiten.Image, x, y float64, lines []string) {
	if len(lines) == 0 {
		return
	}
	w, h := o.panelSize(lines)
	vector.FillRect(dst, float32(x), float32(y), float32(w), float32(h), panelBg, false)
	vector.StrokeRect(dst, float32(x), float32(y), float32(w), float32(h), 1.0, panelBorder, false)
	for i, l := range lines {
		o.drawText(dst, l, x+menuPad, y+detailPad+float64(i*detailLineH), color.White)
	}
}

func (o *overlay) drawTooltip(screen *ebiten.Image) {
	w, h := text.Measure(o.tipText, o.face, 0)
	x := float32(o.tipAt.X + tipOffset)
	y := float32(o.tipAt.Y + tipOffset)
	vector.FillRect(screen, x, y, float32(w)+8, float32(h)+6, panelBg, false)
	vector.StrokeRect(screen, x, y, float32(w)+8, float32(h)+6, 1.0, panelBorder, false)
	o.drawText(screen, o.tipText, float64(x)+4, float64(y)+3, color.White)
}

func (o *overlay) drawMenu(screen *ebiten.Image, cursor board.Point) {
	for i, it := range o.menuItems {
		r := o.menuRect(i)
		bg := panelBg
		if r.contains(cursor) {
			bg = menuHover
		}
		vector.FillRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bg, false)
		o.drawText(screen, it.Label, r.x+menuPad, r.y+4, color.White)
	}
	first, last := o.menuRect(0), o.menuRect(len(o.menuItems)-1)
	vector.StrokeRect(screen, float32(first.x), float32(first.y), float32(first.w), float32(last.y+last.h-first.y), 1.0, panelBorder, false)
}

// drawDetail renders the detail panel into detailBuf at 1x, then blits it
// onto the screen at detailScale for readability.
func (o *overlay) drawDetail(screen *ebiten.Image) {
	if o.detailBuf == nil {
		o.detailBuf = ebiten.NewImage(detailBufW, detailBufH)
	}
	buf := o.detailBuf
	buf.Clear()

	bw, bh := float32(detailBufW), float32(detailBufH)
	vector.FillRect(buf, 0, 0, bw, bh, panelBg, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)
	vector.StrokeLine(buf, 1, 1, bw-1, 1, 1.0, panelHi, false)

	// Close box.
	cx := bw - detailClose - detailPad
	vector.StrokeRect(buf, cx, detailPad, detailClose, detailClose, 1.0, panelBorder, false)
	vector.StrokeLine(buf, cx+3, detailPad+3, cx+detailClose-3, detailPad+detailClose-3, 1.0, color.White, false)
	vector.StrokeLine(buf, cx+detailClose-3, detailPad+3, cx+3, detailPad+detailClose-3, 1.0, color.White, false)

	ly := float64(detailPad)
	o.drawText(buf, o.detailTitle, detailPad, ly, color.RGBA{R: 220, G: 230, B: 200, A: 255})
	ly += detailLineH + 2
	vector.StrokeLine(buf, detailPad, float32(ly), bw-detailPad, float32(ly), 1.0, panelBorder, false)
	ly += 4
	for _, line := range o.detailBody {
		if ly+detailLineH > detailBufH {
			break
		}
		o.drawText(buf, line, detailPad, ly, color.RGBA{R: 190, G: 200, B: 190, A: 255})
		ly += detailLineH
	}

	r := o.detailRect()
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(detailScale, detailScale)
	opts.GeoM.Translate(r.x, r.y)
	screen.DrawImage(buf, opts)
}

// Package board is the hex-grid viewport and interaction engine: lattice
// geometry, camera, picking, the unit piece registry, the pointer gesture
// state machine and map state serialization.
//
// A Board is not safe for concurrent use. All mutation happens from one
// goroutine through Handle, Tick and the explicit operations; renderers
// read it between those calls.
package board

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoGrid is returned by operations that need a grid before one is set.
var ErrNoGrid = errors.New("board has no grid")

// Defaults applied by New for zero Config fields.
const (
	DefaultLongPress     = 600 * time.Millisecond
	DefaultDragThreshold = 3.0  // screen pixels
	DefaultPickRadius    = 20.0 // world units
)

// Config wires a Board to its collaborators. Zero fields get defaults.
type Config struct {
	UI            UI
	Catalog       Catalog
	Logger        *slog.Logger
	LongPress     time.Duration
	DragThreshold float64
	PickRadius    float64
	NewID         func() string
	Now           func() time.Time
	OnGesture     func(Action) // called after a gesture commits something
}

// Board owns the grid, the camera, the piece registry and the gesture in
// progress.
type Board struct {
	grid   *Grid
	view   Viewport
	pieces *Registry
	g      gesture

	ui         UI
	catalog    Catalog
	log        *slog.Logger
	longPress  time.Duration
	threshold  float64
	pickRadius float64
	newID      func() string
	now        func() time.Time
	onGesture  func(Action)

	hoverHex      string
	hoverPiece    string
	selectedHex   string
	selectedPiece string
	last          Action
}

// New returns a board with no grid. Pieces cannot be placed until SetGrid
// is called, which mirrors the lattice only existing once the background
// image is ready.
func New(cfg Config) *Board {
	b := &Board{
		view:       NewViewport(),
		ui:         cfg.UI,
		catalog:    cfg.Catalog,
		log:        cfg.Logger,
		longPress:  cfg.LongPress,
		threshold:  cfg.DragThreshold,
		pickRadius: cfg.PickRadius,
		newID:      cfg.NewID,
		now:        cfg.Now,
		onGesture:  cfg.OnGesture,
	}
	if b.ui == nil {
		b.ui = nopUI{}
	}
	if b.catalog == nil {
		b.catalog = emptyCatalog{}
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.longPress <= 0 {
		b.longPress = DefaultLongPress
	}
	if b.threshold <= 0 {
		b.threshold = DefaultDragThreshold
	}
	if b.pickRadius <= 0 {
		b.pickRadius = DefaultPickRadius
	}
	if b.newID == nil {
		b.newID = func() string { return uuid.New().String() }
	}
	if b.now == nil {
		b.now = time.Now
	}
	b.pieces = NewRegistry(nil, b.log)
	b.g = newGesture()
	return b
}

// SetGrid attaches a (re)built grid. Pieces are re-snapped to their cells;
// pieces whose cell no longer exists are dropped. Any gesture in progress
// is cancelled. A nil grid is rejected and leaves the board unchanged.
func (b *Board) SetGrid(g *Grid) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	b.cancelGesture()
	b.grid = g
	dropped := b.pieces.rebind(g)
	if len(dropped) > 0 {
		b.log.Warn("grid rebuilt: pieces dropped", "ids", dropped)
	}
	if _, ok := b.cell(b.hoverHex); !ok {
		b.hoverHex = ""
	}
	if _, ok := b.cell(b.selectedHex); !ok {
		b.selectedHex = ""
	}
	if _, ok := b.pieces.Get(b.selectedPiece); !ok {
		b.selectedPiece = ""
	}
	b.log.Info("grid ready", "cells", g.Len(), "pieces", b.pieces.Len())
	return nil
}

func (b *Board) cell(label string) (HexCell, bool) {
	if b.grid == nil || label == "" {
		return HexCell{}, false
	}
	return b.grid.Cell(label)
}

// Grid returns the attached grid, or nil before SetGrid.
func (b *Board) Grid() *Grid { return b.grid }

// Viewport returns a copy of the camera.
func (b *Board) Viewport() Viewport { return b.view }

// SetViewport replaces the camera, clamping zoom into range.
func (b *Board) SetViewport(v Viewport) {
	if v.Zoom < MinZoom {
		v.Zoom = MinZoom
	}
	if v.Zoom > MaxZoom {
		v.Zoom = MaxZoom
	}
	b.view = v
}

// Pan shifts the camera by (dx, dy) screen pixels.
func (b *Board) Pan(dx, dy float64) { b.view.Pan(dx, dy) }

// ZoomAt zooms the camera about a screen point.
func (b *Board) ZoomAt(focal Point, factor float64) { b.view.ZoomAt(focal, factor) }

// Pieces yields copies of every placed piece.
func (b *Board) Pieces() iter.Seq[UnitPiece] { return b.pieces.All() }

// Piece returns a copy of piece id.
func (b *Board) Piece(id string) (UnitPiece, bool) { return b.pieces.Get(id) }

// PieceCount returns the number of placed pieces.
func (b *Board) PieceCount() int { return b.pieces.Len() }

// Place puts a new piece on hexLabel. See Registry.Place.
func (b *Board) Place(id, hexLabel, unitType, color string) error {
	return b.pieces.Place(id, hexLabel, unitType, color)
}

// Move re-commits a piece to another cell. See Registry.Move.
func (b *Board) Move(id, hexLabel string) bool {
	return b.pieces.Move(id, hexLabel)
}

// Remove deletes a piece. Selection and hover referring to it are cleared.
func (b *Board) Remove(id string) bool {
	if !b.pieces.Remove(id) {
		return false
	}
	if b.selectedPiece == id {
		b.selectedPiece = ""
	}
	if b.hoverPiece == id {
		b.hoverPiece = ""
		b.ui.HideTooltip()
	}
	if b.g.pieceID == id {
		b.g = newGesture()
	}
	return true
}

// HoveredHex returns the label of the cell under the mouse, or "".
func (b *Board) HoveredHex() string { return b.hoverHex }

// SelectedHex returns the label of the selected cell, or "".
func (b *Board) SelectedHex() string { return b.selectedHex }

// SelectedPiece returns the id of the selected piece, or "".
func (b *Board) SelectedPiece() string { return b.selectedPiece }

// PickHex returns the cell under a screen point.
func (b *Board) PickHex(screen Point) (HexCell, bool) {
	if b.grid == nil {
		return HexCell{}, false
	}
	return b.grid.CellAt(b.view.ToWorld(screen))
}

// PickPiece returns the nearest piece within radius world units of a
// screen point.
func (b *Board) PickPiece(screen Point, radius float64) (UnitPiece, bool) {
	return b.pieces.Nearest(b.view.ToWorld(screen), radius)
}

// unitTitle names a piece for widgets, falling back to its id when the type
// is not in the catalog.
func (b *Board) unitTitle(p UnitPiece) string {
	if info, ok := b.catalog.Lookup(p.Type); ok && info.Name != "" {
		return info.Name
	}
	return "Unit " + p.ID
}

func (b *Board) openPieceDetail(p UnitPiece) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "id: %s\nhex: %s\n", p.ID, p.HexLabel)
	if p.Type != "" {
		fmt.Fprintf(&sb, "type: %s\n", p.Type)
	}
	if info, ok := b.catalog.Lookup(p.Type); ok {
		fmt.Fprintf(&sb, "power: %d  toughness: %d\n", info.Power, info.Toughness)
		if info.Obscurity != 0 {
			fmt.Fprintf(&sb, "obscurity: %d\n", info.Obscurity)
		}
		if info.Revelation != 0 {
			fmt.Fprintf(&sb, "revelation: %d\n", info.Revelation)
		}
		fmt.Fprintf(&sb, "health: %d\n", info.MaxHealth)
		if len(info.Traits) > 0 {
			fmt.Fprintf(&sb, "traits: %s\n", strings.Join(info.Traits, ", "))
		}
		if len(info.Tags) > 0 {
			fmt.Fprintf(&sb, "tags: %s\n", strings.Join(info.Tags, ", "))
		}
	}
	b.ui.OpenDetailView(b.unitTitle(p), strings.TrimRight(sb.String(), "\n"))
}

func (b *Board) openHexDetail(c HexCell) {
	on := b.pieces.At(c.Label)
	body := "(empty)"
	if len(on) > 0 {
		names := make([]string, 0, len(on))
		for _, p := range on {
			names = append(names, b.unitTitle(p))
		}
		body = "units: " + strings.Join(names, ", ")
	}
	b.ui.OpenDetailView("Field "+c.Label, body)
}

// openMenuAt builds the context menu for whatever is under a screen point.
// Nothing under the point means no menu.
func (b *Board) openMenuAt(at Point) bool {
	if p, ok := b.PickPiece(at, b.pickRadius); ok {
		id := p.ID
		b.ui.BuildContextMenu([]MenuItem{
			{Label: "Show details", Action: func() {
				if cur, ok := b.pieces.Get(id); ok {
					b.openPieceDetail(cur)
				}
			}},
			{Label: "Remove unit", Action: func() { b.Remove(id) }},
		}, at)
		return true
	}
	c, ok := b.PickHex(at)
	if !ok {
		return false
	}
	items := []MenuItem{
		{Label: "Show details", Action: func() { b.openHexDetail(c) }},
	}
	for _, info := range b.catalog.Types() {
		typeID := info.ID
		name := info.Name
		if name == "" {
			name = typeID
		}
		items = append(items, MenuItem{
			Label: "Add " + name,
			Action: func() {
				if err := b.Place(b.newID(), c.Label, typeID, ""); err != nil {
					b.log.Error("add unit failed", "hex", c.Label, "type", typeID, "error", err)
				}
			},
		})
	}
	b.ui.BuildContextMenu(items, at)
	return true
}

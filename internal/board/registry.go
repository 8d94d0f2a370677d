package board

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
)

var (
	// ErrDuplicatePiece is returned when placing a piece whose id is taken.
	ErrDuplicatePiece = errors.New("duplicate piece id")
	// ErrEmptyID is returned when placing a piece without an id.
	ErrEmptyID = errors.New("empty piece id")
)

// DefaultPieceColor is used when a piece is placed without a color.
const DefaultPieceColor = "red"

// UnitPiece is one token on the board. HexLabel names the cell the piece is
// committed to; X/Y equal that cell's centre except while it is dragged.
type UnitPiece struct {
	ID       string
	HexLabel string
	Type     string
	Color    string
	X, Y     float64
}

// Pos returns the piece position as a Point.
func (p UnitPiece) Pos() Point {
	return Point{X: p.X, Y: p.Y}
}

// Registry owns every placed piece. Callers only ever see copies.
type Registry struct {
	grid   *Grid
	pieces []*UnitPiece
	index  map[string]int
	log    *slog.Logger
}

// NewRegistry returns an empty registry bound to grid. A nil grid holds no
// cells, so every placement is a no-op until a grid is attached.
func NewRegistry(grid *Grid, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		grid:  grid,
		index: make(map[string]int),
		log:   logger,
	}
}

func (r *Registry) cell(label string) (HexCell, bool) {
	if r.grid == nil {
		return HexCell{}, false
	}
	return r.grid.Cell(label)
}

// Place adds a piece on hexLabel. An unknown label is a silent no-op.
func (r *Registry) Place(id, hexLabel, unitType, color string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, taken := r.index[id]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicatePiece, id)
	}
	c, ok := r.cell(hexLabel)
	if !ok {
		r.log.Debug("place ignored: unknown hex", "id", id, "hex", hexLabel)
		return nil
	}
	if color == "" {
		color = DefaultPieceColor
	}
	r.index[id] = len(r.pieces)
	r.pieces = append(r.pieces, &UnitPiece{
		ID:       id,
		HexLabel: c.Label,
		Type:     unitType,
		Color:    color,
		X:        c.X,
		Y:        c.Y,
	})
	return nil
}

// Move re-commits piece id to newHexLabel and snaps it to the cell centre.
// It reports false, changing nothing, if either is unknown.
func (r *Registry) Move(id, newHexLabel string) bool {
	p := r.lookup(id)
	c, ok := r.cell(newHexLabel)
	if p == nil || !ok {
		r.log.Debug("move ignored", "id", id, "hex", newHexLabel)
		return false
	}
	p.HexLabel = c.Label
	p.X, p.Y = c.X, c.Y
	return true
}

// Remove deletes piece id, reporting whether it existed.
func (r *Registry) Remove(id string) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	copy(r.pieces[i:], r.pieces[i+1:])
	r.pieces[len(r.pieces)-1] = nil
	r.pieces = r.pieces[:len(r.pieces)-1]
	delete(r.index, id)
	for j := i; j < len(r.pieces); j++ {
		r.index[r.pieces[j].ID] = j
	}
	return true
}

// Get returns a copy of piece id.
func (r *Registry) Get(id string) (UnitPiece, bool) {
	p := r.lookup(id)
	if p == nil {
		return UnitPiece{}, false
	}
	return *p, true
}

// Len returns the number of placed pieces.
func (r *Registry) Len() int {
	return len(r.pieces)
}

// All yields a copy of every piece in placement order. The sequence may be
// ranged over any number of times.
func (r *Registry) All() iter.Seq[UnitPiece] {
	return func(yield func(UnitPiece) bool) {
		for _, p := range r.pieces {
			if !yield(*p) {
				return
			}
		}
	}
}

// At returns the pieces committed to hexLabel.
func (r *Registry) At(hexLabel string) []UnitPiece {
	var out []UnitPiece
	for _, p := range r.pieces {
		if p.HexLabel == hexLabel {
			out = append(out, *p)
		}
	}
	return out
}

// Nearest returns the piece whose position is closest to w and strictly
// within radius world units.
func (r *Registry) Nearest(w Point, radius float64) (UnitPiece, bool) {
	best := math.MaxFloat64
	var hit *UnitPiece
	for _, p := range r.pieces {
		d := w.Dist(p.Pos())
		if d < radius && d < best {
			best = d
			hit = p
		}
	}
	if hit == nil {
		return UnitPiece{}, false
	}
	return *hit, true
}

func (r *Registry) lookup(id string) *UnitPiece {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	return r.pieces[i]
}

// setTransient moves a piece without touching its committed label. Used
// while a piece follows the pointer.
func (r *Registry) setTransient(id string, pos Point) {
	if p := r.lookup(id); p != nil {
		p.X, p.Y = pos.X, pos.Y
	}
}

// revert snaps a piece back to the centre of its committed cell.
func (r *Registry) revert(id string) {
	p := r.lookup(id)
	if p == nil {
		return
	}
	if c, ok := r.cell(p.HexLabel); ok {
		p.X, p.Y = c.X, c.Y
	}
}

// rebind attaches a new grid, re-snapping pieces and dropping those whose
// cell no longer exists. It returns the ids that were dropped.
func (r *Registry) rebind(grid *Grid) []string {
	r.grid = grid
	var dropped []string
	kept := r.pieces[:0]
	for _, p := range r.pieces {
		c, ok := r.cell(p.HexLabel)
		if !ok {
			dropped = append(dropped, p.ID)
			continue
		}
		p.X, p.Y = c.X, c.Y
		kept = append(kept, p)
	}
	for i := len(kept); i < len(r.pieces); i++ {
		r.pieces[i] = nil
	}
	r.pieces = kept
	r.index = make(map[string]int, len(kept))
	for i, p := range r.pieces {
		r.index[p.ID] = i
	}
	return dropped
}

package board

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
)

// ErrInvalidGrid is returned by BuildGrid for specs that cannot produce a
// lattice of uniquely labelled cells.
var ErrInvalidGrid = errors.New("invalid grid spec")

// Point is a 2D coordinate, in world or screen space depending on context.
type Point struct {
	X, Y float64
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// GridSpec holds the constants the lattice is built from.
type GridSpec struct {
	Columns   int
	RowLabels []string
	OriginX   float64
	OriginY   float64
	DX        float64 // horizontal distance between column centres
	DY        float64 // vertical distance between row centres
	HexRadius float64 // centre to corner
}

// DefaultHexWidth is the cell width the stock campaign map is drawn with.
const DefaultHexWidth = 95.9

// DefaultGridSpec returns the constants tuned to the stock campaign map.
func DefaultGridSpec() GridSpec {
	rows := make([]string, 0, 17)
	for c := 'Q'; c >= 'A'; c-- {
		rows = append(rows, string(c)+"0")
	}
	s := GridSpecForWidth(DefaultHexWidth)
	s.Columns = 27
	s.RowLabels = rows
	s.OriginX = 28
	s.OriginY = 90
	return s
}

// GridSpecForWidth derives spacing and radius from a cell width. Columns,
// rows and origin are left zero.
func GridSpecForWidth(hexW float64) GridSpec {
	r := hexW / 1.88
	return GridSpec{
		DX:        hexW * 0.8,
		DY:        math.Sqrt(3) * r,
		HexRadius: r,
	}
}

// HexPos returns the world-space centre of the cell at (col, row). Odd
// columns are shifted up half a row so neighbouring columns interlock.
func (s GridSpec) HexPos(col, row int) Point {
	x := s.OriginX + float64(col)*s.DX
	y := s.OriginY + float64(row)*s.DY
	if col&1 == 1 {
		y -= s.DY / 2
	}
	return Point{X: x, Y: y}
}

// Label returns the label of the cell at (col, row).
func (s GridSpec) Label(col, row int) string {
	return s.RowLabels[row] + strconv.Itoa(col)
}

// HexCell is one tile of the lattice. Cells are immutable once built.
type HexCell struct {
	Label string
	X, Y  float64
}

// Center returns the cell centre as a Point.
func (c HexCell) Center() Point {
	return Point{X: c.X, Y: c.Y}
}

// Grid is the static set of cells built from a GridSpec.
type Grid struct {
	spec    GridSpec
	cells   []HexCell
	byLabel map[string]int
}

// BuildGrid builds Columns × len(RowLabels) cells, column-major.
func BuildGrid(spec GridSpec) (*Grid, error) {
	if spec.Columns <= 0 || len(spec.RowLabels) == 0 {
		return nil, fmt.Errorf("%w: need at least one column and one row", ErrInvalidGrid)
	}
	if spec.HexRadius <= 0 {
		return nil, fmt.Errorf("%w: hex radius must be positive", ErrInvalidGrid)
	}
	n := spec.Columns * len(spec.RowLabels)
	g := &Grid{
		spec:    spec,
		cells:   make([]HexCell, 0, n),
		byLabel: make(map[string]int, n),
	}
	for col := 0; col < spec.Columns; col++ {
		for row := range spec.RowLabels {
			label := spec.Label(col, row)
			if _, dup := g.byLabel[label]; dup {
				return nil, fmt.Errorf("%w: label %q produced twice", ErrInvalidGrid, label)
			}
			p := spec.HexPos(col, row)
			g.byLabel[label] = len(g.cells)
			g.cells = append(g.cells, HexCell{Label: label, X: p.X, Y: p.Y})
		}
	}
	return g, nil
}

// Spec returns the constants the grid was built from.
func (g *Grid) Spec() GridSpec {
	return g.spec
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Cells returns a copy of every cell in build order.
func (g *Grid) Cells() []HexCell {
	out := make([]HexCell, len(g.cells))
	copy(out, g.cells)
	return out
}

// All yields every cell in build order without copying the slice.
func (g *Grid) All() iter.Seq[HexCell] {
	return func(yield func(HexCell) bool) {
		for _, c := range g.cells {
			if !yield(c) {
				return
			}
		}
	}
}

// Cell looks up a cell by label.
func (g *Grid) Cell(label string) (HexCell, bool) {
	i, ok := g.byLabel[label]
	if !ok {
		return HexCell{}, false
	}
	return g.cells[i], true
}

// CellAt returns the cell whose centre lies within 0.9 × HexRadius of the
// world point w, preferring the nearest when radii overlap.
func (g *Grid) CellAt(w Point) (HexCell, bool) {
	limit := g.spec.HexRadius * 0.9
	best := math.MaxFloat64
	found := -1
	for i, c := range g.cells {
		d := w.Dist(c.Center())
		if d < limit && d < best {
			best = d
			found = i
		}
	}
	if found < 0 {
		return HexCell{}, false
	}
	return g.cells[found], true
}

// Corners returns the six flat-top corners of c in world space.
func (g *Grid) Corners(c HexCell) [6]Point {
	var pts [6]Point
	for i := range pts {
		a := math.Pi / 3 * float64(i)
		pts[i] = Point{
			X: c.X + g.spec.HexRadius*math.Cos(a),
			Y: c.Y + g.spec.HexRadius*math.Sin(a),
		}
	}
	return pts
}

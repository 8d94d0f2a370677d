package board

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

const eps = 1e-9

// fakeUI records every widget call the board makes.
type fakeUI struct {
	tooltips []string
	hides    int
	details  []string // titles
	bodies   []string
	menus    [][]MenuItem
	menuAt   []Point
}

func (u *fakeUI) ShowTooltip(text string, _, _ float64) { u.tooltips = append(u.tooltips, text) }
func (u *fakeUI) HideTooltip()                          { u.hides++ }
func (u *fakeUI) OpenDetailView(title, body string) {
	u.details = append(u.details, title)
	u.bodies = append(u.bodies, body)
}
func (u *fakeUI) BuildContextMenu(items []MenuItem, at Point) {
	u.menus = append(u.menus, items)
	u.menuAt = append(u.menuAt, at)
}

func (u *fakeUI) menuItem(t *testing.T, label string) MenuItem {
	t.Helper()
	if len(u.menus) == 0 {
		t.Fatal("expected a context menu, got none")
	}
	for _, it := range u.menus[len(u.menus)-1] {
		if it.Label == label {
			return it
		}
	}
	t.Fatalf("menu item %q not found", label)
	return MenuItem{}
}

type fakeCatalog map[string]UnitInfo

func (c fakeCatalog) Lookup(id string) (UnitInfo, bool) {
	u, ok := c[id]
	return u, ok
}

func (c fakeCatalog) Types() []UnitInfo {
	out := make([]UnitInfo, 0, len(c))
	for _, id := range []string{"gangrel", "hunters"} {
		if u, ok := c[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

var testCatalog = fakeCatalog{
	"gangrel": {ID: "gangrel", Name: "Gangrel Warband", Power: 4, Toughness: 3, Obscurity: 2, MaxHealth: 5, Traits: []string{"Feral"}},
	"hunters": {ID: "hunters", Name: "Inquisition Hunters", Power: 3, Toughness: 4, Revelation: 3, MaxHealth: 6},
}

// testSpec has round numbers: D05 is at (500,325), E06 at (580,460).
func testSpec() GridSpec {
	return GridSpec{
		Columns:   8,
		RowLabels: []string{"A0", "B0", "C0", "D0", "E0", "F0"},
		OriginX:   100,
		OriginY:   100,
		DX:        80,
		DY:        90,
		HexRadius: 50,
	}
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBoard(t *testing.T) (*Board, *fakeUI) {
	t.Helper()
	ui := &fakeUI{}
	n := 0
	b := New(Config{
		UI:      ui,
		Catalog: testCatalog,
		Logger:  discardLogger(),
		NewID: func() string {
			n++
			return "new" + string(rune('0'+n))
		},
		Now: func() time.Time { return t0 },
	})
	g, err := BuildGrid(testSpec())
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}
	b.SetGrid(g)
	return b, ui
}

func mustCell(t *testing.T, b *Board, label string) HexCell {
	t.Helper()
	c, ok := b.Grid().Cell(label)
	if !ok {
		t.Fatalf("cell %q missing", label)
	}
	return c
}

func mustPlace(t *testing.T, b *Board, id, label, unitType string) {
	t.Helper()
	if err := b.Place(id, label, unitType, ""); err != nil {
		t.Fatalf("place %s: %v", id, err)
	}
}

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

// Event helpers; the mouse is pointer 0.

func press(b *Board, p Point, at time.Duration) {
	b.Handle(Event{Kind: EventPress, Pointer: MousePointer, Pos: p, At: t0.Add(at)})
}

func move(b *Board, p Point, at time.Duration) {
	b.Handle(Event{Kind: EventMove, Pointer: MousePointer, Pos: p, At: t0.Add(at)})
}

func release(b *Board, p Point, at time.Duration) {
	b.Handle(Event{Kind: EventRelease, Pointer: MousePointer, Pos: p, At: t0.Add(at)})
}

func touchDown(b *Board, id int, p Point) {
	b.Handle(Event{Kind: EventPress, Pointer: id, Pos: p, At: t0})
}

func touchUp(b *Board, id int, p Point) {
	b.Handle(Event{Kind: EventRelease, Pointer: id, Pos: p, At: t0})
}

func touchMove(b *Board, touches ...Touch) {
	b.Handle(Event{Kind: EventTouchMove, Touches: touches, At: t0})
}

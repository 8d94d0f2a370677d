package board

// UnitInfo is the catalog entry for one unit type. The board never
// interprets the stats; it only shows them in detail views.
type UnitInfo struct {
	ID         string
	Name       string
	Power      int
	Toughness  int
	Obscurity  int
	Revelation int
	MaxHealth  int
	Traits     []string
	Tags       []string
	Sprite     string // empty when the type has no sprite
}

// Catalog resolves opaque piece types to unit data.
type Catalog interface {
	Lookup(typeID string) (UnitInfo, bool)
	Types() []UnitInfo
}

// MenuItem is one entry of a context menu.
type MenuItem struct {
	Label  string
	Action func()
}

// UI is the set of widgets the board drives. Implementations must not call
// back into the board synchronously except through MenuItem actions.
type UI interface {
	ShowTooltip(text string, x, y float64)
	HideTooltip()
	OpenDetailView(title, body string)
	BuildContextMenu(items []MenuItem, at Point)
}

type nopUI struct{}

func (nopUI) ShowTooltip(string, float64, float64) {}
func (nopUI) HideTooltip()                         {}
func (nopUI) OpenDetailView(string, string)        {}
func (nopUI) BuildContextMenu([]MenuItem, Point)   {}

type emptyCatalog struct{}

func (emptyCatalog) Lookup(string) (UnitInfo, bool) { return UnitInfo{}, false }
func (emptyCatalog) Types() []UnitInfo              { return nil }

// Package catalog loads unit type definitions from a units.json file.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Garsondee/hexboard/internal/board"
)

// ErrDuplicateType is returned when a file defines the same unit id twice.
var ErrDuplicateType = errors.New("duplicate unit type")

type unitDef struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Power      int      `json:"power"`
	Toughness  int      `json:"toughness"`
	Obscurity  int      `json:"obscurity"`
	Revelation int      `json:"revelation"`
	MaxHealth  int      `json:"maxHealth"`
	Traits     []string `json:"traits"`
	Tags       []string `json:"tags"`
	Sprite     string   `json:"sprite"`
}

// Catalog is an immutable set of unit definitions. It implements
// board.Catalog.
type Catalog struct {
	units []board.UnitInfo
	byID  map[string]int
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a JSON array of unit definitions. Entries without an id are
// skipped.
func Decode(r io.Reader) (*Catalog, error) {
	var defs []unitDef
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("failed to parse unit catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			continue
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, d.ID)
		}
		c.byID[d.ID] = len(c.units)
		c.units = append(c.units, board.UnitInfo{
			ID:         d.ID,
			Name:       d.Name,
			Power:      d.Power,
			Toughness:  d.Toughness,
			Obscurity:  d.Obscurity,
			Revelation: d.Revelation,
			MaxHealth:  d.MaxHealth,
			Traits:     d.Traits,
			Tags:       d.Tags,
			Sprite:     d.Sprite,
		})
	}
	return c, nil
}

// Lookup returns the definition for a unit type id.
func (c *Catalog) Lookup(id string) (board.UnitInfo, bool) {
	i, ok := c.byID[id]
	if !ok {
		return board.UnitInfo{}, false
	}
	return c.units[i], true
}

// Types returns every definition in file order.
func (c *Catalog) Types() []board.UnitInfo {
	out := make([]board.UnitInfo, len(c.units))
	copy(out, c.units)
	return out
}

// Sprites maps unit type id to sprite file name for types that have one.
func (c *Catalog) Sprites() map[string]string {
	out := make(map[string]string)
	for _, u := range c.units {
		if u.Sprite != "" {
			out[u.ID] = u.Sprite
		}
	}
	return out
}

// Len returns the number of unit types.
func (c *Catalog) Len() int { return len(c.units) }

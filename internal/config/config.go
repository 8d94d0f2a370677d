package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/hexboard/internal/board"
)

// Config holds all application configuration
type Config struct {
	Window Window         `yaml:"window"`
	Assets Assets         `yaml:"assets"`
	Grid   Grid           `yaml:"grid"`
	Input  Input          `yaml:"input"`
	Store  Store          `yaml:"store"`
	Pieces []InitialPiece `yaml:"pieces"`
}

// Window holds the ebiten window settings
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Assets names the files loaded at start-up
type Assets struct {
	MapImage  string `yaml:"map_image"`
	SpriteDir string `yaml:"sprite_dir"`
	Catalog   string `yaml:"catalog"`
}

// Grid holds the lattice constants
type Grid struct {
	Columns   int      `yaml:"columns"`
	RowLabels []string `yaml:"row_labels"`
	OriginX   float64  `yaml:"origin_x"`
	OriginY   float64  `yaml:"origin_y"`
	HexWidth  float64  `yaml:"hex_width"` // DX, DY and radius derive from this
}

// Input holds gesture tuning
type Input struct {
	LongPressMS   int     `yaml:"long_press_ms"`
	DragThreshold float64 `yaml:"drag_threshold"` // screen pixels
	PickRadius    float64 `yaml:"pick_radius"`    // world units
	PanSpeed      float64 `yaml:"pan_speed"`      // keyboard pan, pixels per tick
}

// Store holds save slot settings
type Store struct {
	Path     string `yaml:"path"`
	SaveName string `yaml:"save_name"`
}

// InitialPiece is a piece seeded once the grid is ready
type InitialPiece struct {
	ID    string `yaml:"id"`
	Hex   string `yaml:"hex"`
	Type  string `yaml:"type"`
	Color string `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Pieces: []InitialPiece{{ID: "unit1", Hex: "D05", Type: "gangrel", Color: "purple"}},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := board.DefaultGridSpec()
	if c.Window.Title == "" {
		c.Window.Title = "Hex Board"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height == 0 {
		c.Window.Height = 800
	}
	if c.Assets.MapImage == "" {
		c.Assets.MapImage = "assets/map.png"
	}
	if c.Assets.SpriteDir == "" {
		c.Assets.SpriteDir = "assets/sprites"
	}
	if c.Assets.Catalog == "" {
		c.Assets.Catalog = "data/units.json"
	}
	if c.Grid.Columns == 0 {
		c.Grid.Columns = def.Columns
	}
	if len(c.Grid.RowLabels) == 0 {
		c.Grid.RowLabels = def.RowLabels
	}
	if c.Grid.OriginX == 0 && c.Grid.OriginY == 0 {
		c.Grid.OriginX, c.Grid.OriginY = def.OriginX, def.OriginY
	}
	if c.Grid.HexWidth == 0 {
		c.Grid.HexWidth = board.DefaultHexWidth
	}
	if c.Input.LongPressMS == 0 {
		c.Input.LongPressMS = int(board.DefaultLongPress / time.Millisecond)
	}
	if c.Input.DragThreshold == 0 {
		c.Input.DragThreshold = board.DefaultDragThreshold
	}
	if c.Input.PickRadius == 0 {
		c.Input.PickRadius = board.DefaultPickRadius
	}
	if c.Input.PanSpeed == 0 {
		c.Input.PanSpeed = 8
	}
	if c.Store.Path == "" {
		c.Store.Path = "hexboard.db"
	}
	if c.Store.SaveName == "" {
		c.Store.SaveName = "quicksave"
	}
	for i := range c.Pieces {
		if c.Pieces[i].Color == "" {
			c.Pieces[i].Color = board.DefaultPieceColor
		}
	}
}

func (c *Config) validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Grid.Columns < 0 || c.Grid.HexWidth < 0 {
		return fmt.Errorf("invalid grid: columns=%d hex_width=%g", c.Grid.Columns, c.Grid.HexWidth)
	}
	if c.Input.LongPressMS < 0 || c.Input.DragThreshold < 0 || c.Input.PickRadius < 0 {
		return fmt.Errorf("invalid input tuning: long_press_ms=%d drag_threshold=%g pick_radius=%g",
			c.Input.LongPressMS, c.Input.DragThreshold, c.Input.PickRadius)
	}
	for i, p := range c.Pieces {
		if p.ID == "" || p.Hex == "" {
			return fmt.Errorf("piece %d: id and hex are required", i)
		}
	}
	return nil
}

// GridSpec converts the grid section into lattice constants.
func (c *Config) GridSpec() board.GridSpec {
	spec := board.GridSpecForWidth(c.Grid.HexWidth)
	spec.Columns = c.Grid.Columns
	spec.RowLabels = c.Grid.RowLabels
	spec.OriginX = c.Grid.OriginX
	spec.OriginY = c.Grid.OriginY
	return spec
}

// LongPress returns the long-press delay.
func (c *Config) LongPress() time.Duration {
	return time.Duration(c.Input.LongPressMS) * time.Millisecond
}

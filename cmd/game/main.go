package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/hexboard/internal/catalog"
	"github.com/Garsondee/hexboard/internal/config"
	"github.com/Garsondee/hexboard/internal/game"
	"github.com/Garsondee/hexboard/internal/store"
)

func main() {
	var cfgPath string
	var debug bool
	flag.StringVar(&cfgPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	units, err := catalog.Load(cfg.Assets.Catalog)
	if err != nil {
		logger.Warn("unit catalog unavailable", "path", cfg.Assets.Catalog, "error", err)
		units = nil
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Warn("save store unavailable", "path", cfg.Store.Path, "error", err)
		st = nil
	} else {
		defer st.Close()
	}

	g := game.New(game.Options{Config: cfg, Catalog: units, Store: st, Logger: logger})
	defer g.Close()

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

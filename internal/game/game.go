package game

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/hexboard/internal/board"
	"github.com/Garsondee/hexboard/internal/catalog"
	"github.com/Garsondee/hexboard/internal/config"
	"github.com/Garsondee/hexboard/internal/store"
)

// hudMargin is the HUD panel's distance from the window corner.
const hudMargin = 8

// storeTimeout bounds one save or load against the database.
const storeTimeout = 5 * time.Second

// keyZoomStep is the zoom factor of one =/- key press.
const keyZoomStep = 1.25

// Options wires a Game to its collaborators. Catalog and Store may be nil.
type Options struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Store   *store.Store
	Logger  *slog.Logger
}

type Game struct {
	cfg   *config.Config
	log   *slog.Logger
	board *board.Board
	store *store.Store

	width  int
	height int

	ui       *overlay
	activity *ActivityLog
	sprites  *spriteCache
	mapKey   string
	fader    labelFader

	// Input.
	poll     *poller
	touchBuf []ebiten.TouchID
	cursor   board.Point
	swallow  map[int]bool // pointers whose press went to a widget

	// Results of background work, applied on the Update goroutine.
	results chan func()
	ctx     context.Context
	cancel  context.CancelFunc

	gridReady bool
	showHUD   bool
	lastSave  time.Time
	now       func() time.Time

	// Render scratch.
	whitePx *ebiten.Image
	verts   []ebiten.Vertex
	idx     []uint16
}

func New(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		cfg:      cfg,
		log:      logger,
		store:    opts.Store,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
		activity: NewActivityLog(),
		sprites:  newSpriteCache(logger),
		mapKey:   "map:" + cfg.Assets.MapImage,
		poll:     newPoller(),
		swallow:  make(map[int]bool),
		results:  make(chan func(), 16),
		ctx:      ctx,
		cancel:   cancel,
		showHUD:  true,
		now:      time.Now,
	}
	g.ui = newOverlay(g.width, g.height)

	var units board.Catalog
	if opts.Catalog != nil {
		units = opts.Catalog
	}
	g.board = board.New(board.Config{
		UI:            g.ui,
		Catalog:       units,
		Logger:        logger,
		LongPress:     cfg.LongPress(),
		DragThreshold: cfg.Input.DragThreshold,
		PickRadius:    cfg.Input.PickRadius,
		OnGesture:     g.onGesture,
	})

	files := map[string]string{g.mapKey: cfg.Assets.MapImage}
	if opts.Catalog != nil {
		for id, sprite := range opts.Catalog.Sprites() {
			files[id] = filepath.Join(cfg.Assets.SpriteDir, sprite)
		}
	}
	g.sprites.Load(ctx, files)
	return g
}

// Close stops background work.
func (g *Game) Close() {
	g.cancel()
}

// Board exposes the board for tools and tests.
func (g *Game) Board() *board.Board { return g.board }

func (g *Game) Update() error {
	now := g.now()
	g.sprites.Drain()
	g.drainResults()
	if !g.gridReady && g.sprites.State(g.mapKey) != spritePending {
		g.buildGrid()
	}

	g.handleKeys()
	g.board.Tick(now)

	var frame inputFrame
	frame, g.touchBuf = readFrame(g.touchBuf)
	g.cursor = frame.Cursor
	for _, e := range g.poll.events(frame, now) {
		g.dispatch(e)
	}
	return nil
}

// buildGrid attaches the lattice once the background image has settled,
// loaded or not, and seeds the configured pieces.
func (g *Game) buildGrid() {
	g.gridReady = true
	if g.sprites.State(g.mapKey) == spriteFailed {
		g.log.Warn("map image unavailable, drawing grid only", "path", g.cfg.Assets.MapImage)
	}
	grid, err := board.BuildGrid(g.cfg.GridSpec())
	if err != nil {
		g.log.Error("grid build failed", "error", err)
		g.notef("grid build failed: %v", err)
		return
	}
	if err := g.board.SetGrid(grid); err != nil {
		g.log.Error("grid rejected", "error", err)
		return
	}
	for _, p := range g.cfg.Pieces {
		if err := g.board.Place(p.ID, p.Hex, p.Type, p.Color); err != nil {
			g.log.Warn("initial piece rejected", "id", p.ID, "error", err)
		}
	}
}

// dispatch routes one event to the widgets or the board. A press a widget
// consumes is swallowed along with the rest of that pointer's gesture.
func (g *Game) dispatch(e board.Event) {
	switch e.Kind {
	case board.EventPress:
		if e.Button == board.ButtonSecondary {
			g.ui.menuOn = false
			break
		}
		if g.board.Mode() == board.ModeIdle && g.ui.Click(e.Pos) {
			g.swallow[e.Pointer] = true
			return
		}
	case board.EventRelease:
		if e.Button == board.ButtonPrimary && g.swallow[e.Pointer] {
			delete(g.swallow, e.Pointer)
			return
		}
	case board.EventTouchMove:
		kept := e.Touches[:0:0]
		for _, t := range e.Touches {
			if !g.swallow[t.ID] {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			return
		}
		e.Touches = kept
	case board.EventMove:
		if g.swallow[e.Pointer] && e.Pointer != board.MousePointer {
			return
		}
	}
	g.board.Handle(e)
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && !g.ui.Escape() {
		g.board.Handle(board.Event{Kind: board.EventKey, Key: board.KeyEscape})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.board.Handle(board.Event{Kind: board.EventKey, Key: board.KeyDelete})
	}

	// H: toggle HUD.
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyState()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.pasteState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.saveState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.loadState()
	}

	// Camera pan: WASD or arrow keys.
	speed := g.cfg.Input.PanSpeed
	if !ctrl {
		if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			g.board.Pan(0, speed)
		}
		if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			g.board.Pan(0, -speed)
		}
		if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			g.board.Pan(speed, 0)
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			g.board.Pan(-speed, 0)
		}
	}

	// Camera zoom about the screen centre: =/- keys; Home resets.
	centre := board.Point{X: float64(g.width) / 2, Y: float64(g.height) / 2}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.board.ZoomAt(centre, keyZoomStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.board.ZoomAt(centre, 1/keyZoomStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.board.SetViewport(board.NewViewport())
	}
}

func (g *Game) onGesture(a board.Action) {
	switch a {
	case board.ActionMove:
		if p, ok := g.board.Piece(g.board.SelectedPiece()); ok {
			g.notef("moved %s to %s", p.ID, p.HexLabel)
		}
	case board.ActionTap:
		if hex := g.board.SelectedHex(); hex != "" && g.board.SelectedPiece() == "" {
			g.log.Debug("field selected", "hex", hex)
		}
	}
}

// notef records a user-facing message in the activity log and the log.
func (g *Game) notef(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.activity.Add(g.now(), msg)
	g.log.Info(msg)
}

// post hands fn to the Update goroutine.
func (g *Game) post(fn func()) {
	select {
	case g.results <- fn:
	case <-g.ctx.Done():
	}
}

func (g *Game) drainResults() {
	for {
		select {
		case fn := <-g.results:
			fn()
		default:
			return
		}
	}
}

func (g *Game) importState(data []byte, from string) {
	rep, err := g.board.ImportState(data)
	if err != nil {
		g.notef("import from %s rejected: %v", from, err)
		return
	}
	if len(rep.Skipped) > 0 {
		g.notef("imported %d pieces from %s, skipped %d", rep.Imported, from, len(rep.Skipped))
		return
	}
	g.notef("imported %d pieces from %s", rep.Imported, from)
}

func (g *Game) copyState() {
	data, err := g.board.MarshalState()
	if err != nil {
		g.notef("export failed: %v", err)
		return
	}
	n := g.board.PieceCount()
	go func() {
		err := clipboard.WriteAll(string(data))
		g.post(func() {
			if err != nil {
				g.notef("clipboard write failed: %v", err)
				return
			}
			g.notef("copied %d pieces to clipboard", n)
		})
	}()
}

func (g *Game) pasteState() {
	go func() {
		s, err := clipboard.ReadAll()
		g.post(func() {
			if err != nil {
				g.notef("clipboard read failed: %v", err)
				return
			}
			g.importState([]byte(s), "clipboard")
		})
	}()
}

func (g *Game) saveState() {
	if g.store == nil {
		g.notef("no save store available")
		return
	}
	data, err := g.board.MarshalState()
	if err != nil {
		g.notef("export failed: %v", err)
		return
	}
	name := g.cfg.Store.SaveName
	go func() {
		ctx, cancel := context.WithTimeout(g.ctx, storeTimeout)
		defer cancel()
		err := g.store.Save(ctx, name, data)
		g.post(func() {
			if err != nil {
				g.notef("save failed: %v", err)
				return
			}
			g.lastSave = g.now()
			g.notef("saved %q", name)
		})
	}()
}

func (g *Game) loadState() {
	if g.store == nil {
		g.notef("no save store available")
		return
	}
	name := g.cfg.Store.SaveName
	go func() {
		ctx, cancel := context.WithTimeout(g.ctx, storeTimeout)
		defer cancel()
		data, err := g.store.Load(ctx, name)
		g.post(func() {
			if err != nil {
				g.notef("load failed: %v", err)
				return
			}
			g.importState(data, fmt.Sprintf("save %q", name))
		})
	}()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(windowBg)
	g.drawBackground(screen)
	if g.board.Grid() != nil {
		g.drawGrid(screen)
		g.drawPieces(screen)
	} else {
		ebitenutil.DebugPrintAt(screen, "loading map...", 12, 12)
	}

	g.activity.Draw(screen, g.now(), g.height)
	if g.showHUD {
		g.ui.drawPanel(screen, hudMargin, hudMargin, g.hudLines())
	}
	g.ui.Draw(screen, g.cursor)
}

// hudLines is the status text shown in the top-left corner.
func (g *Game) hudLines() []string {
	hex := g.board.HoveredHex()
	if hex == "" {
		hex = "-"
	}
	saved := "never"
	if !g.lastSave.IsZero() {
		saved = humanize.Time(g.lastSave)
	}
	return []string{
		fmt.Sprintf("zoom %.2fx  %s  %d pieces  hex %s", g.board.Viewport().Zoom, g.board.Mode(), g.board.PieceCount(), hex),
		"last save: " + saved,
		"drag pieces, hold or right-click for menu",
		"WASD pan, =/- zoom, Home reset, H hide",
		"Ctrl+C/V clipboard, F5 save, F9 load",
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

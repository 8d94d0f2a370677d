package board

import (
	"math"
	"sort"
	"time"
)

// EventKind identifies a raw input event.
type EventKind int

const (
	EventPress EventKind = iota
	EventMove
	EventTouchMove // all touch positions sampled in one frame
	EventRelease
	EventCancel
	EventWheel
	EventKey
	eventKindCount
)

// Button identifies which button a press belongs to. Touches are Primary.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Key is a board-level keyboard command.
type Key int

const (
	KeyNone Key = iota
	KeyDelete
	KeyEscape
)

// MousePointer is the pointer id of the mouse. Touch pointers use ids >= 1.
const MousePointer = 0

// Touch is one touch position in a batched EventTouchMove.
type Touch struct {
	ID  int
	Pos Point
}

// Event is one raw input sample in screen coordinates.
type Event struct {
	Kind    EventKind
	Pointer int
	Button  Button
	Pos     Point
	Touches []Touch // EventTouchMove
	Delta   float64 // EventWheel, positive zooms in
	Key     Key     // EventKey
	At      time.Time
}

// Mode is the state of the gesture in progress.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDraggingPiece
	ModePinchZooming
	ModeLongPressPending // menu opened by long-press, waiting for release
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePanning:
		return "panning"
	case ModeDraggingPiece:
		return "dragging"
	case ModePinchZooming:
		return "pinch"
	case ModeLongPressPending:
		return "long-press"
	}
	return "unknown"
}

// Action is what a finished gesture committed.
type Action int

const (
	ActionNone Action = iota
	ActionPan
	ActionMove
	ActionTap
	ActionMenu
	ActionPinch
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionPan:
		return "pan"
	case ActionMove:
		return "move"
	case ActionTap:
		return "tap"
	case ActionMenu:
		return "menu"
	case ActionPinch:
		return "pinch"
	}
	return "unknown"
}

// camera reports whether a only changes the viewport.
func (a Action) camera() bool {
	return a == ActionPan || a == ActionPinch
}

type gesture struct {
	mode    Mode
	pointer int   // pointer driving pan/drag
	press   Point // screen point of the press
	anchor  Point // last point a pan delta was taken from
	moved   bool

	pieceID    string
	grabOffset Point // world offset from piece centre to pointer

	armed    bool
	deadline time.Time

	touches  map[int]Point
	pinchA   int
	pinchB   int
	pinchLen float64
	pinchMid Point

	action Action
}

func newGesture() gesture {
	return gesture{touches: make(map[int]Point)}
}

// dispatch holds the single handler for each event kind.
var dispatch = [eventKindCount]func(*Board, Event){
	EventPress:     (*Board).onPress,
	EventMove:      (*Board).onMove,
	EventTouchMove: (*Board).onTouchMove,
	EventRelease:   (*Board).onRelease,
	EventCancel:    (*Board).onCancel,
	EventWheel:     (*Board).onWheel,
	EventKey:       (*Board).onKey,
}

// Handle feeds one input event through the gesture state machine. The whole
// transition completes before Handle returns.
func (b *Board) Handle(e Event) {
	if e.Kind < 0 || e.Kind >= eventKindCount {
		return
	}
	if e.At.IsZero() {
		e.At = b.now()
	}
	dispatch[e.Kind](b, e)
}

// Tick expires the long-press timer. Call it once per frame.
func (b *Board) Tick(now time.Time) {
	b.expireLongPress(now)
}

// expireLongPress opens the context menu once the armed deadline has passed
// at now.
func (b *Board) expireLongPress(now time.Time) {
	g := &b.g
	if !g.armed || g.moved || now.Before(g.deadline) {
		return
	}
	if g.mode != ModePanning && g.mode != ModeDraggingPiece {
		g.armed = false
		return
	}
	g.armed = false
	if g.mode == ModeDraggingPiece {
		b.pieces.revert(g.pieceID)
	}
	g.mode = ModeLongPressPending
	if b.openMenuAt(g.press) {
		b.commit(ActionMenu)
	}
}

// Mode returns the state of the gesture in progress.
func (b *Board) Mode() Mode { return b.g.mode }

// LastAction returns what the most recently finished gesture committed.
func (b *Board) LastAction() Action { return b.last }

// commit records the action of the current gesture. Camera actions may
// upgrade one another (pan into pinch); anything else is final.
func (b *Board) commit(a Action) {
	g := &b.g
	if g.action == ActionNone || (g.action.camera() && a.camera()) {
		g.action = a
	}
}

func (b *Board) finish() {
	b.last = b.g.action
	b.log.Debug("gesture done", "action", b.last.String())
	b.g = newGesture()
	if b.onGesture != nil && b.last != ActionNone {
		b.onGesture(b.last)
	}
}

func (b *Board) cancelGesture() {
	if b.g.mode == ModeDraggingPiece {
		b.pieces.revert(b.g.pieceID)
	}
	b.g = newGesture()
}

func (b *Board) onPress(e Event) {
	if e.Button == ButtonSecondary {
		b.openMenuAt(e.Pos)
		return
	}
	g := &b.g
	touch := e.Pointer != MousePointer
	switch g.mode {
	case ModeIdle:
		if touch {
			g.touches[e.Pointer] = e.Pos
		}
		b.beginPress(e)
	case ModePanning:
		if !touch {
			return
		}
		g.touches[e.Pointer] = e.Pos
		if len(g.touches) >= 2 {
			b.beginPinch()
		}
	case ModePinchZooming:
		if touch {
			g.touches[e.Pointer] = e.Pos
		}
	}
}

func (b *Board) beginPress(e Event) {
	g := &b.g
	g.pointer = e.Pointer
	g.press = e.Pos
	g.anchor = e.Pos
	g.moved = false
	g.armed = true
	g.deadline = e.At.Add(b.longPress)
	if p, ok := b.PickPiece(e.Pos, b.pickRadius); ok {
		w := b.view.ToWorld(e.Pos)
		g.mode = ModeDraggingPiece
		g.pieceID = p.ID
		g.grabOffset = Point{X: w.X - p.X, Y: w.Y - p.Y}
		return
	}
	g.mode = ModePanning
}

func (b *Board) beginPinch() {
	g := &b.g
	ids := make([]int, 0, len(g.touches))
	for id := range g.touches {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	g.pinchA, g.pinchB = ids[0], ids[1]
	pa, pb := g.touches[g.pinchA], g.touches[g.pinchB]
	g.pinchLen = pa.Dist(pb)
	g.pinchMid = pa.Mid(pb)
	g.mode = ModePinchZooming
	g.armed = false
	g.moved = true
}

func (b *Board) onMove(e Event) {
	g := &b.g
	if e.Pointer != MousePointer {
		if _, ok := g.touches[e.Pointer]; ok {
			g.touches[e.Pointer] = e.Pos
		}
	}
	switch g.mode {
	case ModeIdle:
		if e.Pointer == MousePointer {
			b.hover(e.Pos)
		}
	case ModePanning:
		if e.Pointer == g.pointer {
			b.panTo(e.Pos)
		}
	case ModeDraggingPiece:
		if e.Pointer == g.pointer {
			b.dragTo(e.Pos)
		}
	case ModePinchZooming:
		if e.Pointer == g.pinchA || e.Pointer == g.pinchB {
			b.pinchUpdate()
		}
	}
}

func (b *Board) onTouchMove(e Event) {
	g := &b.g
	for _, t := range e.Touches {
		if _, ok := g.touches[t.ID]; ok {
			g.touches[t.ID] = t.Pos
		}
	}
	switch g.mode {
	case ModePanning:
		if p, ok := g.touches[g.pointer]; ok {
			b.panTo(p)
		}
	case ModeDraggingPiece:
		for _, t := range e.Touches {
			if t.ID == g.pointer {
				b.dragTo(t.Pos)
			}
		}
	case ModePinchZooming:
		b.pinchUpdate()
	}
}

func exceeds(d Point, limit float64) bool {
	return math.Abs(d.X) > limit || math.Abs(d.Y) > limit
}

func (b *Board) panTo(p Point) {
	g := &b.g
	if !g.moved {
		if !exceeds(Point{X: p.X - g.press.X, Y: p.Y - g.press.Y}, b.threshold) {
			return
		}
		g.moved = true
		g.armed = false
		b.commit(ActionPan)
	}
	b.view.Pan(p.X-g.anchor.X, p.Y-g.anchor.Y)
	g.anchor = p
}

func (b *Board) dragTo(p Point) {
	g := &b.g
	if !g.moved {
		if !exceeds(Point{X: p.X - g.press.X, Y: p.Y - g.press.Y}, b.threshold) {
			return
		}
		g.moved = true
		g.armed = false
	}
	w := b.view.ToWorld(p)
	b.pieces.setTransient(g.pieceID, Point{X: w.X - g.grabOffset.X, Y: w.Y - g.grabOffset.Y})
}

func (b *Board) pinchUpdate() {
	g := &b.g
	pa, okA := g.touches[g.pinchA]
	pb, okB := g.touches[g.pinchB]
	if !okA || !okB {
		return
	}
	d := pa.Dist(pb)
	mid := pa.Mid(pb)
	if g.pinchLen > 0 && d > 0 {
		b.view.ZoomAt(mid, d/g.pinchLen)
		b.commit(ActionPinch)
	}
	g.pinchLen = d
	g.pinchMid = mid
}

func (b *Board) onRelease(e Event) {
	if e.Button == ButtonSecondary {
		return
	}
	g := &b.g
	// A hold released in the frame its deadline passed is still a long press.
	if e.Pointer == g.pointer {
		b.expireLongPress(e.At)
	}
	if e.Pointer != MousePointer {
		_, tracked := g.touches[e.Pointer]
		if !tracked && e.Pointer != g.pointer {
			return
		}
		delete(g.touches, e.Pointer)
	}
	switch g.mode {
	case ModePinchZooming:
		if e.Pointer != g.pinchA && e.Pointer != g.pinchB {
			return
		}
		b.endPinchPointer()
	case ModePanning:
		if e.Pointer != g.pointer {
			return
		}
		if !g.moved && g.action == ActionNone {
			b.tap(e.Pos)
		}
		b.finish()
	case ModeDraggingPiece:
		if e.Pointer != g.pointer {
			return
		}
		b.drop(e.Pos)
		b.finish()
	case ModeLongPressPending:
		if e.Pointer != g.pointer {
			return
		}
		b.finish()
	}
}

// endPinchPointer handles one pinch finger lifting. Two or more remaining
// touches re-baseline the pinch, one falls back to panning.
func (b *Board) endPinchPointer() {
	g := &b.g
	switch len(g.touches) {
	case 0:
		b.finish()
	case 1:
		for id, p := range g.touches {
			g.pointer = id
			g.press = p
			g.anchor = p
		}
		g.mode = ModePanning
		g.moved = true
		g.armed = false
	default:
		b.beginPinch()
	}
}

func (b *Board) tap(at Point) {
	if p, ok := b.PickPiece(at, b.pickRadius); ok {
		b.selectedPiece = p.ID
		b.commit(ActionTap)
		b.openPieceDetail(p)
		return
	}
	if c, ok := b.PickHex(at); ok {
		b.selectedHex = c.Label
		b.selectedPiece = ""
		b.commit(ActionTap)
		b.openHexDetail(c)
		return
	}
	b.selectedHex = ""
	b.selectedPiece = ""
}

// drop resolves a dragged piece on release. A press that never left the
// dead zone is a tap on the piece.
func (b *Board) drop(at Point) {
	g := &b.g
	id := g.pieceID
	if !g.moved {
		b.pieces.revert(id)
		if g.action == ActionNone {
			if p, ok := b.pieces.Get(id); ok {
				b.selectedPiece = id
				b.commit(ActionTap)
				b.openPieceDetail(p)
			}
		}
		return
	}
	if c, ok := b.PickHex(at); ok && b.pieces.Move(id, c.Label) {
		b.selectedPiece = id
		b.commit(ActionMove)
		return
	}
	b.pieces.revert(id)
}

func (b *Board) onCancel(Event) {
	b.cancelGesture()
	b.last = ActionNone
}

func (b *Board) onWheel(e Event) {
	if e.Delta == 0 {
		return
	}
	b.view.ZoomAt(e.Pos, WheelFactor(e.Delta))
}

func (b *Board) onKey(e Event) {
	switch e.Key {
	case KeyDelete:
		if b.selectedPiece != "" {
			b.Remove(b.selectedPiece)
		}
	case KeyEscape:
		b.cancelGesture()
		b.selectedHex = ""
		b.selectedPiece = ""
	}
}

// hover tracks the cell and piece under an idle mouse.
func (b *Board) hover(at Point) {
	label := ""
	if c, ok := b.PickHex(at); ok {
		label = c.Label
	}
	b.hoverHex = label

	p, ok := b.PickPiece(at, b.pickRadius)
	switch {
	case ok:
		b.hoverPiece = p.ID
		b.ui.ShowTooltip(b.unitTitle(p), at.X, at.Y)
	case b.hoverPiece != "":
		b.hoverPiece = ""
		b.ui.HideTooltip()
	}
}

package game

import (
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/hexboard/internal/board"
)

// maxTouches caps how many simultaneous touches get a pointer slot.
const maxTouches = 9

// inputFrame is the raw pointer state sampled once per Update.
type inputFrame struct {
	Cursor  board.Point
	Left    bool
	Right   bool
	Wheel   float64
	Touches map[ebiten.TouchID]board.Point
}

// readFrame samples ebiten's mouse, wheel and touch state.
func readFrame(buf []ebiten.TouchID) (inputFrame, []ebiten.TouchID) {
	mx, my := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	f := inputFrame{
		Cursor: board.Point{X: float64(mx), Y: float64(my)},
		Left:   ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Right:  ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		Wheel:  wy,
	}
	buf = ebiten.AppendTouchIDs(buf[:0])
	if len(buf) > 0 {
		f.Touches = make(map[ebiten.TouchID]board.Point, len(buf))
		for _, id := range buf {
			tx, ty := ebiten.TouchPosition(id)
			f.Touches[id] = board.Point{X: float64(tx), Y: float64(ty)}
		}
	}
	return f, buf
}

// poller turns successive frames into board events. Touch ids are mapped
// to stable pointer slots 1..maxTouches; the mouse is pointer 0.
type poller struct {
	started   bool
	cursor    board.Point
	left      bool
	right     bool
	touches   map[ebiten.TouchID]board.Point
	slots     map[ebiten.TouchID]int
	slotTaken [maxTouches + 1]bool
}

func newPoller() *poller {
	return &poller{
		touches: make(map[ebiten.TouchID]board.Point),
		slots:   make(map[ebiten.TouchID]int),
	}
}

func (p *poller) slot(id ebiten.TouchID) int {
	if s, ok := p.slots[id]; ok {
		return s
	}
	for s := 1; s <= maxTouches; s++ {
		if !p.slotTaken[s] {
			p.slotTaken[s] = true
			p.slots[id] = s
			return s
		}
	}
	return -1
}

func (p *poller) free(id ebiten.TouchID) {
	if s, ok := p.slots[id]; ok {
		p.slotTaken[s] = false
		delete(p.slots, id)
	}
}

// events diffs f against the previous frame. Order within a frame:
// mouse move, releases, presses, touch moves, wheel.
func (p *poller) events(f inputFrame, now time.Time) []board.Event {
	var out []board.Event
	add := func(e board.Event) {
		e.At = now
		out = append(out, e)
	}

	if p.started && f.Cursor != p.cursor {
		add(board.Event{Kind: board.EventMove, Pointer: board.MousePointer, Pos: f.Cursor})
	}
	p.started = true
	p.cursor = f.Cursor

	if p.left && !f.Left {
		add(board.Event{Kind: board.EventRelease, Pointer: board.MousePointer, Pos: f.Cursor})
	}
	if p.right && !f.Right {
		add(board.Event{Kind: board.EventRelease, Pointer: board.MousePointer, Button: board.ButtonSecondary, Pos: f.Cursor})
	}

	// Touch releases, in id order so slot reuse is deterministic.
	for _, id := range sortedIDs(p.touches) {
		if _, held := f.Touches[id]; held {
			continue
		}
		if s, ok := p.slots[id]; ok {
			add(board.Event{Kind: board.EventRelease, Pointer: s, Pos: p.touches[id]})
		}
		p.free(id)
		delete(p.touches, id)
	}

	if !p.left && f.Left {
		add(board.Event{Kind: board.EventPress, Pointer: board.MousePointer, Pos: f.Cursor})
	}
	if !p.right && f.Right {
		add(board.Event{Kind: board.EventPress, Pointer: board.MousePointer, Button: board.ButtonSecondary, Pos: f.Cursor})
	}
	p.left, p.right = f.Left, f.Right

	var moved []board.Touch
	for _, id := range sortedIDs(f.Touches) {
		pos := f.Touches[id]
		prev, known := p.touches[id]
		p.touches[id] = pos
		if !known {
			if s := p.slot(id); s > 0 {
				add(board.Event{Kind: board.EventPress, Pointer: s, Pos: pos})
			}
			continue
		}
		if prev != pos {
			if s, ok := p.slots[id]; ok {
				moved = append(moved, board.Touch{ID: s, Pos: pos})
			}
		}
	}
	if len(moved) > 0 {
		add(board.Event{Kind: board.EventTouchMove, Touches: moved})
	}

	if f.Wheel != 0 {
		add(board.Event{Kind: board.EventWheel, Pointer: board.MousePointer, Pos: f.Cursor, Delta: f.Wheel})
	}
	return out
}

func sortedIDs(m map[ebiten.TouchID]board.Point) []ebiten.TouchID {
	ids := make([]ebiten.TouchID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

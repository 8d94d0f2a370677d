package game

import (
	"image/color"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	activityMaxEntries = 40
	activityVisible    = 6
	activityLineHeight = 14
	activityWidth      = 360
	activityFresh      = 4 * time.Second // entries newer than this are highlighted
)

// ActivityEntry is one line in the activity log.
type ActivityEntry struct {
	At      time.Time
	Message string
}

// ActivityLog keeps the most recent board actions, oldest first, for the
// on-screen feed.
type ActivityLog struct {
	entries []ActivityEntry
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{entries: make([]ActivityEntry, 0, activityMaxEntries)}
}

// Add appends an entry, dropping the oldest once the log is full.
func (l *ActivityLog) Add(at time.Time, msg string) {
	if len(l.entries) == activityMaxEntries {
		l.entries = slices.Delete(l.entries, 0, 1)
	}
	l.entries = append(l.entries, ActivityEntry{At: at, Message: msg})
}

// Recent returns a copy of the log, oldest first.
func (l *ActivityLog) Recent() []ActivityEntry {
	return slices.Clone(l.entries)
}

// Tail returns up to n of the newest entries, oldest first.
func (l *ActivityLog) Tail(n int) []ActivityEntry {
	if n < len(l.entries) {
		return l.entries[len(l.entries)-n:]
	}
	return l.entries
}

// Draw renders the newest entries in a panel anchored at the bottom-left.
func (l *ActivityLog) Draw(screen *ebiten.Image, now time.Time, screenH int) {
	entries := l.Tail(activityVisible)
	if len(entries) == 0 {
		return
	}

	panelH := len(entries)*activityLineHeight + 8
	x := float32(8)
	y := float32(screenH - panelH - 8)
	vector.FillRect(screen, x, y, activityWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 200}, false)
	vector.StrokeLine(screen, x, y, x+activityWidth, y, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	ty := int(y) + 4
	for _, e := range entries {
		if now.Sub(e.At) < activityFresh {
			vector.FillRect(screen, x+2, float32(ty), activityWidth-4, activityLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		ebitenutil.DebugPrintAt(screen, e.At.Format("15:04:05")+" "+e.Message, int(x)+6, ty)
		ty += activityLineHeight
	}
}

package presenter

import (
	"image"
	"sync"

	"github.com/google/uuid"
)

// PointerHub is the window-wide pointer listener registry. Views feed it raw
// move/up events; drag sessions register for the duration of a drag.
type PointerHub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]pointerListener
}

type pointerListener struct {
	move func(image.Point)
	up   func(image.Point)
}

func NewPointerHub() *PointerHub {
	return &PointerHub{listeners: map[int]pointerListener{}}
}

// Listen registers move and up handlers and returns their removal function.
// The returned function is idempotent.
func (h *PointerHub) Listen(move, up func(image.Point)) (unregister func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners[id] = pointerListener{move: move, up: up}
	h.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Move dispatches a pointer move to every listener.
func (h *PointerHub) Move(p image.Point) {
	for _, l := range h.snapshot() {
		if l.move != nil {
			l.move(p)
		}
	}
}

// Up dispatches a pointer release to every listener.
func (h *PointerHub) Up(p image.Point) {
	for _, l := range h.snapshot() {
		if l.up != nil {
			l.up(p)
		}
	}
}

// Listeners reports how many listeners are registered.
func (h *PointerHub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func (h *PointerHub) snapshot() []pointerListener {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]pointerListener, 0, len(h.listeners))
	for _, l := range h.listeners {
		out = append(out, l)
	}
	return out
}

// DragSession is one pointer-down to pointer-up interaction. It owns its hub
// registration and releases it on End, whichever path ends the drag.
type DragSession struct {
	ID     string
	Target Target

	anchor     image.Point
	start      image.Point
	moved      bool
	unregister func()
	onMove     func(image.Point)
	onEnd      func(*DragSession, bool)
	ended      bool
}

// dragSlop is the pointer travel, in pixels, after which a press is a drag
// rather than a click.
const dragSlop = 3

// beginDrag starts a session at pointer p for an overlay at pos. pos is an
// offset from the bottom-right corner, so the overlay follows the pointer
// when pos = anchor - pointer.
func beginDrag(hub *PointerHub, target Target, p, pos image.Point, onMove func(image.Point), onEnd func(*DragSession, bool)) *DragSession {
	d := &DragSession{
		ID:     uuid.NewString(),
		Target: target,
		anchor: p.Add(pos),
		start:  p,
		onMove: onMove,
		onEnd:  onEnd,
	}
	d.unregister = hub.Listen(d.move, func(image.Point) { d.End(true) })
	return d
}

func (d *DragSession) move(p image.Point) {
	if d.ended {
		return
	}
	if !d.moved {
		delta := p.Sub(d.start)
		if abs(delta.X) < dragSlop && abs(delta.Y) < dragSlop {
			return
		}
		d.moved = true
	}
	if d.onMove != nil {
		d.onMove(d.anchor.Sub(p))
	}
}

// Moved reports whether the pointer travelled past the click threshold.
func (d *DragSession) Moved() bool { return d != nil && d.moved }

// End deregisters the session's listeners. released is true when the drag
// ended with a pointer release and false on early teardown.
func (d *DragSession) End(released bool) {
	if d == nil || d.ended {
		return
	}
	d.ended = true
	d.unregister()
	if d.onEnd != nil {
		d.onEnd(d, released)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

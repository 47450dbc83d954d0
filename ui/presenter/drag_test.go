package presenter

import (
	"image"
	"testing"
)

func TestPointerHub_UnregisterIdempotent(t *testing.T) {
	h := NewPointerHub()
	moves := 0
	un := h.Listen(func(image.Point) { moves++ }, nil)
	h.Move(image.Pt(1, 1))
	un()
	un()
	h.Move(image.Pt(2, 2))
	if moves != 1 || h.Listeners() != 0 {
		t.Fatalf("moves=%d listeners=%d", moves, h.Listeners())
	}
}

func TestDrag_SlopSeparatesClickFromDrag(t *testing.T) {
	h := NewPointerHub()
	var positions []image.Point
	var ended *DragSession
	released := false
	d := beginDrag(h, TargetVideo, image.Pt(100, 100), image.Pt(20, 20),
		func(p image.Point) { positions = append(positions, p) },
		func(s *DragSession, r bool) { ended, released = s, r })
	h.Move(image.Pt(102, 101))
	if d.Moved() || len(positions) != 0 {
		t.Fatalf("movement below slop counted as drag")
	}
	h.Move(image.Pt(90, 100))
	if !d.Moved() || len(positions) != 1 {
		t.Fatalf("drag not detected")
	}
	// anchor (120,120) minus pointer
	if positions[0] != image.Pt(30, 20) {
		t.Fatalf("position %v, want (30,20)", positions[0])
	}
	h.Up(image.Pt(90, 100))
	if ended != d || !released || h.Listeners() != 0 {
		t.Fatalf("drag did not end on release")
	}
}

func TestDrag_EarlyTeardown(t *testing.T) {
	h := NewPointerHub()
	ends := 0
	released := true
	d := beginDrag(h, TargetHeader, image.Pt(0, 0), image.Pt(0, 0), nil,
		func(_ *DragSession, r bool) { ends++; released = r })
	d.End(false)
	d.End(false)
	h.Up(image.Pt(0, 0))
	if ends != 1 || released || h.Listeners() != 0 {
		t.Fatalf("ends=%d released=%v listeners=%d", ends, released, h.Listeners())
	}
}

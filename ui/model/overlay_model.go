package model

import "image"

// Overlay defaults: offset from the bottom-right corner of the viewport.
const (
	OverlayDefaultX = 20
	OverlayDefaultY = 20
	OverlayWidth    = 280
	// 16:9 video plus the header strip
	OverlayHeight = OverlayWidth*9/16 + 28
)

// OverlayModel holds the floating player placement. Position is the offset
// of the overlay's bottom-right corner from the viewport's bottom-right
// corner. It is not persisted.
type OverlayModel struct {
	pos      image.Point
	viewport image.Rectangle
	visible  bool
}

func NewOverlayModel() *OverlayModel {
	return &OverlayModel{pos: image.Pt(OverlayDefaultX, OverlayDefaultY)}
}

func (m *OverlayModel) Position() image.Point {
	if m == nil {
		return image.Pt(OverlayDefaultX, OverlayDefaultY)
	}
	return m.pos
}

// SetPosition stores p, clamped to the viewport when one is known.
func (m *OverlayModel) SetPosition(p image.Point) {
	if m == nil {
		return
	}
	m.pos = m.clamp(p)
}

// SetViewport records the area the overlay must stay within.
func (m *OverlayModel) SetViewport(r image.Rectangle) {
	if m == nil {
		return
	}
	m.viewport = r
	m.pos = m.clamp(m.pos)
}

func (m *OverlayModel) Viewport() image.Rectangle {
	if m == nil {
		return image.Rectangle{}
	}
	return m.viewport
}

func (m *OverlayModel) clamp(p image.Point) image.Point {
	if m.viewport.Empty() {
		return p
	}
	maxX := max(m.viewport.Dx()-OverlayWidth, 0)
	maxY := max(m.viewport.Dy()-OverlayHeight, 0)
	p.X = min(max(p.X, 0), maxX)
	p.Y = min(max(p.Y, 0), maxY)
	return p
}

// Rect returns the overlay rectangle in viewport coordinates.
func (m *OverlayModel) Rect() image.Rectangle {
	p := m.Position()
	vp := m.Viewport()
	right := vp.Max.X - p.X
	bottom := vp.Max.Y - p.Y
	return image.Rect(right-OverlayWidth, bottom-OverlayHeight, right, bottom)
}

func (m *OverlayModel) Visible() bool { return m != nil && m.visible }

func (m *OverlayModel) SetVisible(v bool) {
	if m != nil {
		m.visible = v
	}
}

package presenter

import "time"

// CaptureView updates the dashboard widgets affected by the capture state.
type CaptureView interface {
	SetCaptureButton(streaming bool)
	SetCaptureStatus(text string)
}

// CapturePresenter owns the dashboard's start/stop capture control.
type CapturePresenter struct {
	ctrl   Controller
	stream StreamSource
	view   CaptureView

	requested bool
	lastText  string
	lastOn    bool
	primed    bool
}

func NewCapturePresenter(ctrl Controller, stream StreamSource, view CaptureView) *CapturePresenter {
	return &CapturePresenter{ctrl: ctrl, stream: stream, view: view}
}

// Enable requests the capture device. Idempotent while a session or a
// request is outstanding.
func (c *CapturePresenter) Enable() {
	if c == nil || c.ctrl == nil || c.stream == nil {
		return
	}
	st := c.stream.Snapshot().Capture
	if st.Streaming || st.Pending || c.requested {
		return
	}
	c.requested = true
	c.ctrl.StartCapture()
}

// Disable stops the capture session. Idempotent.
func (c *CapturePresenter) Disable() {
	if c == nil || c.ctrl == nil || c.stream == nil {
		return
	}
	st := c.stream.Snapshot().Capture
	if !st.Streaming && !st.Pending && !c.requested {
		return
	}
	c.requested = false
	c.ctrl.StopCapture()
}

// Toggle flips the capture state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if c == nil || c.stream == nil {
		return
	}
	st := c.stream.Snapshot().Capture
	if st.Streaming || st.Pending || c.requested {
		c.Disable()
		return
	}
	c.Enable()
}

// CaptureStatusText describes the capture state for display.
func CaptureStatusText(streaming, pending, muted bool, errMsg string) string {
	switch {
	case errMsg != "":
		return errMsg
	case pending:
		return "Requesting camera..."
	case streaming && muted:
		return "Camera On (muted)"
	case streaming:
		return "Camera On"
	default:
		return "Camera Off"
	}
}

// Tick reflects the published capture state in the view.
func (c *CapturePresenter) Tick(now time.Time) {
	if c == nil || c.stream == nil || c.view == nil {
		return
	}
	st := c.stream.Snapshot().Capture
	if !st.Pending {
		// the request resolved, either way
		c.requested = false
	}
	on := st.Streaming || st.Pending
	if !c.primed || on != c.lastOn {
		c.view.SetCaptureButton(on)
	}
	text := CaptureStatusText(st.Streaming, st.Pending, st.Muted, st.Error)
	if !c.primed || text != c.lastText {
		c.view.SetCaptureStatus(text)
	}
	c.primed, c.lastOn, c.lastText = true, on, text
}

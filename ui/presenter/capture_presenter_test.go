package presenter

import "testing"

type mockCaptureView struct {
	buttonCalls int
	lastOn      bool
	status      string
}

func (v *mockCaptureView) SetCaptureButton(on bool)     { v.buttonCalls++; v.lastOn = on }
func (v *mockCaptureView) SetCaptureStatus(text string) { v.status = text }

func TestCapturePresenter_EnableDisable_Idempotent(t *testing.T) {
	ctrl := newMockController()
	stream := &mockStream{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(ctrl, stream, view)

	p.Enable()
	p.Enable()
	if ctrl.calls["start"] != 1 {
		t.Fatalf("enable not idempotent: started=%d", ctrl.calls["start"])
	}
	// the core reports the pending request
	stream.snap.Capture.Pending = true
	p.Tick(epoch)
	p.Enable()
	if ctrl.calls["start"] != 1 {
		t.Fatalf("enable while pending requested again")
	}
	if !view.lastOn || view.status != "Requesting camera..." {
		t.Fatalf("pending not shown: on=%v status=%q", view.lastOn, view.status)
	}

	stream.snap.Capture.Pending = false
	stream.snap.Capture.Streaming = true
	p.Tick(epoch)
	if view.status != "Camera On" {
		t.Fatalf("status = %q", view.status)
	}

	p.Disable()
	stream.snap.Capture.Streaming = false
	p.Tick(epoch)
	p.Disable()
	if ctrl.calls["stop"] != 1 {
		t.Fatalf("disable not idempotent: stopped=%d", ctrl.calls["stop"])
	}
	if view.lastOn || view.status != "Camera Off" {
		t.Fatalf("off state not shown: on=%v status=%q", view.lastOn, view.status)
	}
}

func TestCapturePresenter_Toggle(t *testing.T) {
	ctrl := newMockController()
	stream := &mockStream{}
	p := NewCapturePresenter(ctrl, stream, &mockCaptureView{})
	p.Toggle()
	if ctrl.calls["start"] != 1 {
		t.Fatalf("toggle did not start")
	}
	stream.snap.Capture.Streaming = true
	p.Tick(epoch)
	p.Toggle()
	if ctrl.calls["stop"] != 1 {
		t.Fatalf("toggle did not stop")
	}
}

func TestCapturePresenter_DeniedAllowsNewRequest(t *testing.T) {
	ctrl := newMockController()
	stream := &mockStream{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(ctrl, stream, view)
	p.Enable()
	stream.snap.Capture.Error = "Camera access denied or unavailable"
	p.Tick(epoch)
	if view.status != "Camera access denied or unavailable" || view.lastOn {
		t.Fatalf("denial not shown: %q", view.status)
	}
	p.Enable()
	if ctrl.calls["start"] != 2 {
		t.Fatalf("user could not retry after denial")
	}
}

func TestCapturePresenter_ViewUpdatedOnChangeOnly(t *testing.T) {
	stream := &mockStream{}
	view := &mockCaptureView{}
	p := NewCapturePresenter(newMockController(), stream, view)
	p.Tick(epoch)
	p.Tick(epoch)
	if view.buttonCalls != 1 {
		t.Fatalf("button refreshed %d times", view.buttonCalls)
	}
	stream.snap.Capture.Streaming = true
	p.Tick(epoch)
	if view.buttonCalls != 2 || !view.lastOn {
		t.Fatalf("button not refreshed on change")
	}
}

func TestCaptureStatusText(t *testing.T) {
	cases := []struct {
		streaming, pending, muted bool
		err                       string
		want                      string
	}{
		{false, false, false, "", "Camera Off"},
		{false, true, false, "", "Requesting camera..."},
		{true, false, false, "", "Camera On"},
		{true, false, true, "", "Camera On (muted)"},
		{false, false, false, "denied", "denied"},
	}
	for _, c := range cases {
		if got := CaptureStatusText(c.streaming, c.pending, c.muted, c.err); got != c.want {
			t.Fatalf("CaptureStatusText(%v,%v,%v,%q) = %q, want %q", c.streaming, c.pending, c.muted, c.err, got, c.want)
		}
	}
}

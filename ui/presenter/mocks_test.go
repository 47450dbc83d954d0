package presenter

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/sentinel-go/domain/capture"
	"github.com/soocke/sentinel-go/ui/model"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

var epoch = time.Unix(1_700_000_000, 0)

// mockController records intents and, when session is set, binds attached
// surfaces the way the capture manager does.
type mockController struct {
	session  *capture.Session
	muted    bool
	bound    map[capture.Surface]bool
	calls    map[string]int
	cameras  []string
	attaches int
}

func newMockController() *mockController {
	return &mockController{bound: map[capture.Surface]bool{}, calls: map[string]int{}}
}

func (c *mockController) StartCapture() { c.calls["start"]++ }
func (c *mockController) StopCapture() {
	c.calls["stop"]++
	for s := range c.bound {
		s.Unbind()
	}
	clear(c.bound)
	c.session = nil
}
func (c *mockController) ToggleMute() {
	c.calls["mute"]++
	c.muted = !c.muted
	for s := range c.bound {
		s.SetMuted(c.muted)
	}
}
func (c *mockController) Attach(s capture.Surface) {
	c.attaches++
	if c.session == nil {
		return
	}
	c.bound[s] = true
	s.Bind(c.session, c.muted)
}
func (c *mockController) Detach(s capture.Surface) {
	c.calls["detach"]++
	if c.bound[s] {
		delete(c.bound, s)
		s.Unbind()
	}
}
func (c *mockController) StartFeed(id string) {
	c.calls["feed.start"]++
	c.cameras = append(c.cameras, id)
}
func (c *mockController) StopFeed()   { c.calls["feed.stop"]++ }
func (c *mockController) RetryFeed()  { c.calls["feed.retry"]++ }
func (c *mockController) StartAlarm() { c.calls["alarm.start"]++ }
func (c *mockController) StopAlarm()  { c.calls["alarm.stop"]++ }

type mockStream struct{ snap model.StreamSnapshot }

func (s *mockStream) Snapshot() model.StreamSnapshot { return s.snap }

// videoTrack is a capture.VideoTrack with a settable frame.
type videoTrack struct {
	frame capture.FrameSnapshot
}

func (v *videoTrack) ID() string                         { return "video" }
func (v *videoTrack) Kind() capture.TrackKind            { return capture.KindVideo }
func (v *videoTrack) Stop()                              {}
func (v *videoTrack) LatestFrame() capture.FrameSnapshot { return v.frame }
func (v *videoTrack) Running() bool                      { return true }

func (v *videoTrack) push(seq uint64) {
	v.frame = capture.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 64, 36)), Sequence: seq}
}

func liveSession() (*capture.Session, *videoTrack) {
	vt := &videoTrack{}
	return &capture.Session{ID: "sess-1", Video: vt}, vt
}

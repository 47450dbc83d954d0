package capture

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"testing"
	"time"

	"github.com/soocke/sentinel-go/domain/loop"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type mockTrack struct {
	kind  TrackKind
	stops int
}

func (m *mockTrack) ID() string      { return "mock-" + m.kind.String() }
func (m *mockTrack) Kind() TrackKind { return m.kind }
func (m *mockTrack) Stop()           { m.stops++ }

type videoMock struct{ *mockTrack }

func (v videoMock) LatestFrame() FrameSnapshot { return FrameSnapshot{} }
func (v videoMock) Running() bool              { return v.stops == 0 }

type audioMock struct{ *mockTrack }

func (a audioMock) Level() float64 { return 0 }

type mockDevices struct {
	calls  int
	err    error
	tracks [][]*mockTrack
}

func (m *mockDevices) GetUserMedia(ctx context.Context, c Constraints) ([]Track, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	v := &mockTrack{kind: KindVideo}
	a := &mockTrack{kind: KindAudio}
	m.tracks = append(m.tracks, []*mockTrack{v, a})
	return []Track{videoMock{v}, audioMock{a}}, nil
}

type mockSurface struct {
	binds   int
	unbinds int
	muted   bool
	session *Session
}

func (s *mockSurface) Bind(sess *Session, muted bool) {
	s.binds++
	s.session = sess
	s.muted = muted
}
func (s *mockSurface) SetMuted(muted bool) { s.muted = muted }
func (s *mockSurface) Unbind() {
	s.unbinds++
	s.session = nil
}

func newTestManager() (*Manager, *mockDevices, *loop.Virtual) {
	v := loop.NewVirtual(time.Unix(1_700_000_000, 0))
	d := &mockDevices{}
	return NewManager(v, d, DefaultConstraints(), discardLogger), d, v
}

func TestManager_TwoSurfacesShareOneSession(t *testing.T) {
	m, d, v := newTestManager()
	m.StartCapture(context.Background())
	v.Drain()
	sess := m.Session()
	if sess == nil || sess.ID == "" {
		t.Fatalf("expected active session")
	}
	if sess.Video == nil || sess.Audio == nil {
		t.Fatalf("session tracks not classified: %+v", sess)
	}
	a, b := &mockSurface{}, &mockSurface{}
	if !m.Attach(a) || !m.Attach(b) {
		t.Fatalf("attach failed with active session")
	}
	if a.session != sess || b.session != sess {
		t.Fatalf("surfaces bound to different sessions")
	}
	if d.calls != 1 {
		t.Fatalf("device requested %d times", d.calls)
	}
	if m.State().Surfaces != 2 {
		t.Fatalf("expected 2 surfaces, got %d", m.State().Surfaces)
	}
}

func TestManager_StopReleasesTracksOnce(t *testing.T) {
	m, d, v := newTestManager()
	m.StartCapture(context.Background())
	v.Drain()
	a, b := &mockSurface{}, &mockSurface{}
	m.Attach(a)
	m.Attach(b)
	m.StopCapture()
	m.StopCapture()
	for _, tr := range d.tracks[0] {
		if tr.stops != 1 {
			t.Fatalf("%s track stopped %d times", tr.kind, tr.stops)
		}
	}
	if a.unbinds != 1 || b.unbinds != 1 || a.session != nil || b.session != nil {
		t.Fatalf("surfaces not unbound: a=%+v b=%+v", a, b)
	}
	if m.Session() != nil || m.State().Streaming {
		t.Fatalf("session survived stop")
	}
}

func TestManager_DeniedAccess(t *testing.T) {
	m, d, v := newTestManager()
	d.err = errors.Join(ErrDeviceAccessDenied, errors.New("NotAllowedError"))
	var states []State
	m.Subscribe(func(s State) { states = append(states, s) })
	m.StartCapture(context.Background())
	v.Drain()
	st := m.State()
	if st.Error != DeniedMessage || st.Streaming || st.Pending {
		t.Fatalf("unexpected state after denial %+v", st)
	}
	if len(states) != 2 || !states[0].Pending {
		t.Fatalf("expected pending then error notifications, got %+v", states)
	}
	if m.Attach(&mockSurface{}) {
		t.Fatalf("attach succeeded without a session")
	}
	d.err = nil
	m.StartCapture(context.Background())
	v.Drain()
	if st := m.State(); !st.Streaming || st.Error != "" {
		t.Fatalf("manual restart failed: %+v", st)
	}
}

func TestManager_StartIsIdempotent(t *testing.T) {
	m, d, v := newTestManager()
	v.Hold = true
	m.StartCapture(context.Background())
	m.StartCapture(context.Background())
	v.Release()
	m.StartCapture(context.Background())
	v.Drain()
	if d.calls != 1 {
		t.Fatalf("expected one device request, got %d", d.calls)
	}
}

func TestManager_LateGrantAfterStopIsReleased(t *testing.T) {
	m, d, v := newTestManager()
	v.Hold = true
	m.StartCapture(context.Background())
	m.StopCapture()
	v.Release()
	if m.Session() != nil {
		t.Fatalf("late grant installed a session")
	}
	for _, tr := range d.tracks[0] {
		if tr.stops != 1 {
			t.Fatalf("late %s track stopped %d times", tr.kind, tr.stops)
		}
	}
	if m.State().Pending {
		t.Fatalf("still pending after stop")
	}
}

func TestManager_AttachWithoutSessionIsNoop(t *testing.T) {
	m, _, _ := newTestManager()
	s := &mockSurface{}
	if m.Attach(s) || s.binds != 0 {
		t.Fatalf("attach without session bound the surface")
	}
	m.Detach(s)
	if s.unbinds != 0 {
		t.Fatalf("detach of unbound surface called Unbind")
	}
}

func TestManager_MutePushedToSurfaces(t *testing.T) {
	m, _, v := newTestManager()
	m.StartCapture(context.Background())
	v.Drain()
	a := &mockSurface{}
	m.Attach(a)
	m.ToggleMute()
	if !a.muted {
		t.Fatalf("mute not pushed")
	}
	b := &mockSurface{}
	m.Attach(b)
	if !b.muted {
		t.Fatalf("late surface not bound muted")
	}
	m.Detach(a)
	m.ToggleMute()
	if !a.muted || b.muted {
		t.Fatalf("detached surface received mute change")
	}
}

func TestFit_PreservesAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	got := fit(src, 1280, 720).Bounds()
	if got.Dx() != 1280 || got.Dy() != 720 {
		t.Fatalf("unexpected size %v", got)
	}
	small := image.NewRGBA(image.Rect(0, 0, 640, 360))
	if fit(small, 1280, 720) != small {
		t.Fatalf("small frames should not be rescaled")
	}
}

func TestRMSS16(t *testing.T) {
	if rmsS16(nil) != 0 {
		t.Fatalf("empty buffer should be silent")
	}
	// two full-scale negative samples
	buf := []byte{0x00, 0x80, 0x00, 0x80}
	if got := rmsS16(buf); got != 1 {
		t.Fatalf("rms = %v, want 1", got)
	}
}

func TestSystemDevices_AudioFailureStopsVideo(t *testing.T) {
	d := SystemDevices{
		Grab:   func() (*image.RGBA, error) { return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil },
		Logger: discardLogger,
		OpenAudio: func(*slog.Logger) (AudioTrack, error) {
			return nil, errors.New("no microphone")
		},
	}
	_, err := d.GetUserMedia(context.Background(), DefaultConstraints())
	if !errors.Is(err, ErrDeviceAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestSystemDevices_VideoOnly(t *testing.T) {
	d := SystemDevices{
		Grab:   func() (*image.RGBA, error) { return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil },
		Logger: discardLogger,
	}
	c := DefaultConstraints()
	c.Audio = false
	tracks, err := d.GetUserMedia(context.Background(), c)
	if err != nil || len(tracks) != 1 {
		t.Fatalf("tracks=%d err=%v", len(tracks), err)
	}
	vt := tracks[0].(VideoTrack)
	deadline := time.Now().Add(2 * time.Second)
	for vt.LatestFrame().Image == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if vt.LatestFrame().Image == nil {
		t.Fatalf("no frame captured")
	}
	vt.Stop()
	vt.Stop()
	if vt.Running() {
		t.Fatalf("track still running")
	}
}

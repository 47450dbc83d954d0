package snapshot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soocke/sentinel-go/domain/frame"
	"github.com/soocke/sentinel-go/domain/loop"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

var epoch = time.Unix(1_700_000_000, 0)

func jpegPayload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// scriptSource answers call n (0-based) with respond(n) and records call times.
type scriptSource struct {
	mu      sync.Mutex
	v       *loop.Virtual
	calls   []time.Duration
	cameras []string
	respond func(n int) ([]byte, error)
}

func (s *scriptSource) Fetch(_ context.Context, cameraID string) ([]byte, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, s.v.Now().Sub(epoch))
	s.cameras = append(s.cameras, cameraID)
	s.mu.Unlock()
	return s.respond(n)
}

func (s *scriptSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func http500() error {
	return &FetchError{Kind: KindNetwork, StatusCode: 500, Msg: "HTTP 500: Internal Server Error"}
}

func newTestEngine(t *testing.T, respond func(n int) ([]byte, error)) (*Engine, *scriptSource, *loop.Virtual, *frame.Registry) {
	t.Helper()
	v := loop.NewVirtual(epoch)
	src := &scriptSource{v: v, respond: respond}
	reg := frame.NewRegistry(discardLogger)
	return NewEngine(v, src, reg, discardLogger, Options{}), src, v, reg
}

func TestEngine_FailuresBelowBoundKeepPolling(t *testing.T) {
	e, src, v, _ := newTestEngine(t, func(int) ([]byte, error) { return nil, http500() })
	e.Start("cam")
	v.Drain()
	for n := 1; n < DefaultMaxRetries; n++ {
		st := e.Status()
		if st.State != StateLoading || st.RetryCount != n {
			t.Fatalf("after %d failures: state=%v retry=%d", n, st.State, st.RetryCount)
		}
		v.Advance(DefaultInterval)
	}
	if src.count() != DefaultMaxRetries {
		t.Fatalf("expected %d requests, got %d", DefaultMaxRetries, src.count())
	}
}

func TestEngine_FifthFailureStopsTimer(t *testing.T) {
	e, src, v, _ := newTestEngine(t, func(int) ([]byte, error) { return nil, http500() })
	e.Start("cam")
	v.Advance(4 * DefaultInterval)
	st := e.Status()
	if st.State != StateError || st.RetryCount != 5 {
		t.Fatalf("expected error after 5 failures, got state=%v retry=%d", st.State, st.RetryCount)
	}
	if st.Message != "HTTP 500: Internal Server Error" {
		t.Fatalf("unexpected message %q", st.Message)
	}
	v.Advance(time.Second)
	if src.count() != 5 {
		t.Fatalf("requests continued after error: %d", src.count())
	}
	if v.ActiveTimers() != 0 {
		t.Fatalf("poll timer still active")
	}
}

func TestEngine_ScenarioSuccessThenFiveServerErrors(t *testing.T) {
	payload := jpegPayload(t)
	var mu sync.Mutex
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/camera/snapshot/cam_alice" || r.URL.Query().Get("t") == "" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		mu.Lock()
		n := requests
		requests++
		mu.Unlock()
		if n == 0 {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(payload)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return requests
	}

	clock := loop.NewVirtual(epoch)
	reg := frame.NewRegistry(discardLogger)
	e := NewEngine(clock, NewHTTPSource(srv.URL, srv.Client()), reg, discardLogger, Options{})

	e.Start("cam_alice")
	clock.Drain()
	if st := e.Status(); st.State != StateStreaming || st.Frame == nil {
		t.Fatalf("expected streaming after first frame, got %v", st.State)
	}
	clock.Advance(400 * time.Millisecond)
	if st := e.Status(); st.State != StateStreaming || st.RetryCount != 4 {
		t.Fatalf("expected streaming with 4 retries at 400ms, got state=%v retry=%d", st.State, st.RetryCount)
	}
	clock.Advance(100 * time.Millisecond)
	st := e.Status()
	if st.State != StateError || st.RetryCount != 5 {
		t.Fatalf("expected error at 500ms, got state=%v retry=%d", st.State, st.RetryCount)
	}
	if !strings.HasPrefix(st.Message, "HTTP 500: ") {
		t.Fatalf("unexpected message %q", st.Message)
	}
	if count() != 6 {
		t.Fatalf("expected 6 requests by 500ms, got %d", count())
	}
	clock.Advance(100 * time.Millisecond)
	if count() != 6 {
		t.Fatalf("request issued at 600ms: %d", count())
	}
}

func TestEngine_SuccessSupersedesAndReleases(t *testing.T) {
	payload := jpegPayload(t)
	e, _, v, reg := newTestEngine(t, func(int) ([]byte, error) { return payload, nil })
	e.Start("cam")
	v.Advance(5 * DefaultInterval)
	if reg.Outstanding() != 1 {
		t.Fatalf("expected exactly the displayed frame outstanding, got %d", reg.Outstanding())
	}
	st := reg.Stats()
	if st.Allocated != 6 || st.Released != 5 {
		t.Fatalf("unexpected registry stats %+v", st)
	}
}

func TestEngine_StopReleasesExactlyOnce(t *testing.T) {
	payload := jpegPayload(t)
	for _, tc := range []struct {
		name    string
		respond func(n int) ([]byte, error)
		advance time.Duration
	}{
		{"streaming", func(int) ([]byte, error) { return payload, nil }, 3 * DefaultInterval},
		{"error", func(n int) ([]byte, error) {
			if n == 0 {
				return payload, nil
			}
			return nil, http500()
		}, time.Second},
		{"loading", func(int) ([]byte, error) { return nil, http500() }, DefaultInterval},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e, _, v, reg := newTestEngine(t, tc.respond)
			e.Start("cam")
			v.Advance(tc.advance)
			e.Stop()
			e.Stop()
			st := reg.Stats()
			if st.Outstanding != 0 || st.DoubleReleases != 0 || st.Released != st.Allocated {
				t.Fatalf("leak after stop: %+v", st)
			}
			if e.Status().State != StateIdle {
				t.Fatalf("expected idle, got %v", e.Status().State)
			}
		})
	}
}

func TestEngine_DoubleStartSingleTimer(t *testing.T) {
	payload := jpegPayload(t)
	e, src, v, _ := newTestEngine(t, func(int) ([]byte, error) { return payload, nil })
	e.Start("cam")
	e.Start("cam")
	if v.ActiveTimers() != 1 {
		t.Fatalf("expected one poll timer, got %d", v.ActiveTimers())
	}
	v.Advance(time.Second)
	// two immediate requests plus ten ticks of a single timer
	if src.count() != 12 {
		t.Fatalf("expected 12 requests, got %d", src.count())
	}
}

func TestEngine_StaleGenerationDiscarded(t *testing.T) {
	payload := jpegPayload(t)
	e, _, v, reg := newTestEngine(t, func(int) ([]byte, error) { return payload, nil })
	v.Hold = true
	e.Start("cam")
	e.Stop()
	changes := 0
	e.Subscribe(func(Status) { changes++ })
	v.Release()
	if changes != 0 {
		t.Fatalf("stale response mutated state %d times", changes)
	}
	if e.Status().State != StateIdle || e.Status().Frame != nil {
		t.Fatalf("stale response applied: %+v", e.Status())
	}
	if reg.Outstanding() != 0 {
		t.Fatalf("stale buffer leaked: %d", reg.Outstanding())
	}
	if e.Stats().Discarded != 1 {
		t.Fatalf("expected 1 discarded response, got %d", e.Stats().Discarded)
	}
}

func TestEngine_RestartDiscardsOldInFlight(t *testing.T) {
	payload := jpegPayload(t)
	e, _, v, reg := newTestEngine(t, func(int) ([]byte, error) { return payload, nil })
	v.Hold = true
	e.Start("cam")
	oldGen := e.Status().Generation
	e.Start("cam")
	v.Release()
	st := e.Status()
	if st.Generation == oldGen || st.State != StateStreaming {
		t.Fatalf("unexpected status after restart %+v", st)
	}
	if e.Stats().Discarded != 1 || reg.Outstanding() != 1 {
		t.Fatalf("discarded=%d outstanding=%d", e.Stats().Discarded, reg.Outstanding())
	}
}

func TestEngine_DecodeFailureCountsAsRetry(t *testing.T) {
	e, _, v, reg := newTestEngine(t, func(int) ([]byte, error) { return []byte("<html>oops</html>"), nil })
	e.Start("cam")
	v.Drain()
	st := e.Status()
	if st.RetryCount != 1 || st.ErrorKind != KindDecode {
		t.Fatalf("expected decode failure counted, got retry=%d kind=%v", st.RetryCount, st.ErrorKind)
	}
	if reg.Outstanding() != 0 {
		t.Fatalf("decode failure leaked %d handles", reg.Outstanding())
	}
}

func TestEngine_RetryFromError(t *testing.T) {
	payload := jpegPayload(t)
	fail := true
	e, src, v, _ := newTestEngine(t, func(int) ([]byte, error) {
		if fail {
			return nil, http500()
		}
		return payload, nil
	})
	e.Start("cam")
	v.Advance(time.Second)
	if e.Status().State != StateError {
		t.Fatalf("expected error state")
	}
	fail = false
	e.Retry()
	v.Drain()
	if st := e.Status(); st.State != StateStreaming || st.RetryCount != 0 {
		t.Fatalf("retry did not recover: %+v", st)
	}
	before := src.count()
	v.Advance(3 * DefaultInterval)
	if src.count() != before+3 {
		t.Fatalf("polling not resumed: %d -> %d", before, src.count())
	}
}

func TestEngine_CameraSwitchReleasesPreviousFrame(t *testing.T) {
	payload := jpegPayload(t)
	e, src, v, reg := newTestEngine(t, func(int) ([]byte, error) { return payload, nil })
	e.Start("a")
	v.Drain()
	v.Hold = true
	e.Start("b")
	if reg.Outstanding() != 0 {
		t.Fatalf("frame of previous camera still held: %d", reg.Outstanding())
	}
	v.Release()
	if src.cameras[len(src.cameras)-1] != "b" {
		t.Fatalf("expected request for camera b, got %v", src.cameras)
	}
}

package snapshot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/soocke/sentinel-go/domain/frame"
)

func TestHTTPSource_SnapshotURL(t *testing.T) {
	s := NewHTTPSource("http://localhost:5000/", nil)
	got := s.SnapshotURL("front door", time.UnixMilli(1234))
	want := "http://localhost:5000/api/camera/snapshot/front%20door?t=1234"
	if got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}
}

func TestHTTPSource_TimestampChangesPerCall(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Query().Get("t"))
		mu.Unlock()
		_, _ = w.Write([]byte{0xff})
	}))
	defer srv.Close()
	s := NewHTTPSource(srv.URL, srv.Client())
	ms := int64(0)
	s.now = func() time.Time { ms += 100; return time.UnixMilli(ms) }
	for i := 0; i < 2; i++ {
		if _, err := s.Fetch(context.Background(), "cam"); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] == seen[1] || seen[0] == "" {
		t.Fatalf("expected distinct cache-busting params, got %v", seen)
	}
}

func TestHTTPSource_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	_, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background(), "cam")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 503 || fe.Kind != KindNetwork || fe.Error() != "HTTP 503: Service Unavailable" {
		t.Fatalf("unexpected error %+v", fe)
	}
}

func TestClassify(t *testing.T) {
	if Classify(errors.New("dial tcp: refused")) != KindNetwork {
		t.Fatalf("plain errors are network failures")
	}
	if Classify(frame.ErrDecode) != KindDecode {
		t.Fatalf("decode sentinel not classified")
	}
	if Classify(&FetchError{Kind: KindDecode}) != KindDecode {
		t.Fatalf("fetch error kind ignored")
	}
}

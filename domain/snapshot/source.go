package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/sentinel-go/domain/frame"
)

// maxSnapshotBytes bounds a single snapshot body.
const maxSnapshotBytes = 16 << 20

// ErrorKind classifies fetch failures for retry accounting and telemetry.
type ErrorKind int

const (
	// KindNetwork covers transport errors and non-2xx responses.
	KindNetwork ErrorKind = iota
	// KindDecode covers payloads that could not become a raster.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is the failure reported for one poll cycle.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Msg        string
	Err        error
}

func (e *FetchError) Error() string { return e.Msg }

func (e *FetchError) Unwrap() error { return e.Err }

// Classify maps any poll error onto an ErrorKind.
func Classify(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, frame.ErrDecode) {
		return KindDecode
	}
	return KindNetwork
}

// Source fetches the current still image for a camera.
type Source interface {
	Fetch(ctx context.Context, cameraID string) ([]byte, error)
}

// HTTPSource fetches snapshots from GET {base}/api/camera/snapshot/{id}?t={ms}.
type HTTPSource struct {
	base   string
	client *http.Client
	now    func() time.Time
}

// NewHTTPSource returns a source for the API at base. A nil client uses a
// client with a 5 second timeout.
func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPSource{base: strings.TrimRight(base, "/"), client: client, now: time.Now}
}

// SnapshotURL builds the request URL, including the cache-defeating timestamp.
func (s *HTTPSource) SnapshotURL(cameraID string, at time.Time) string {
	return s.base + "/api/camera/snapshot/" + url.PathEscape(cameraID) +
		"?t=" + strconv.FormatInt(at.UnixMilli(), 10)
}

func (s *HTTPSource) Fetch(ctx context.Context, cameraID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.SnapshotURL(cameraID, s.now()), nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Msg: err.Error(), Err: err}
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "image/jpeg, image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Msg: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{
			Kind:       KindNetwork,
			StatusCode: resp.StatusCode,
			Msg:        fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes+1))
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Msg: err.Error(), Err: err}
	}
	if len(body) > maxSnapshotBytes {
		return nil, &FetchError{Kind: KindNetwork, Msg: "snapshot exceeds size limit"}
	}
	return body, nil
}

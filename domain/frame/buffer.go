// Package frame owns the transient binary buffers produced by one snapshot
// poll cycle. Every Buffer handed out by a Registry must be released exactly
// once; the registry keeps the outstanding count so leaks are observable.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"
)

var (
	// ErrResourceLeak reports a handle released twice. It signals a
	// programming error, never a runtime condition to recover from.
	ErrResourceLeak = errors.New("frame: handle released more than once")
	// ErrDecode is wrapped by every payload that cannot become a raster.
	ErrDecode = errors.New("frame: decode failed")
)

// Buffer is one cycle's payload plus its decoded raster.
type Buffer struct {
	ID         uint64
	Payload    []byte
	Raster     *image.RGBA
	ReceivedAt time.Time

	registry *Registry
	released atomic.Bool
}

// Release returns the raster to the pool and drops the payload. A second
// call returns ErrResourceLeak and is counted by the registry.
func (b *Buffer) Release() error {
	if b == nil {
		return nil
	}
	if !b.released.CompareAndSwap(false, true) {
		if b.registry != nil {
			b.registry.doubleReleases.Add(1)
			if b.registry.logger != nil {
				b.registry.logger.Error("frame.double_release", "id", b.ID)
			}
		}
		return fmt.Errorf("buffer %d: %w", b.ID, ErrResourceLeak)
	}
	recycleRaster(b.Raster)
	b.Raster = nil
	b.Payload = nil
	if b.registry != nil {
		b.registry.outstanding.Add(-1)
		b.registry.released.Add(1)
	}
	return nil
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b != nil && b.released.Load() }

// Bounds returns the raster bounds, or an empty rectangle once released.
func (b *Buffer) Bounds() image.Rectangle {
	if b == nil || b.Raster == nil {
		return image.Rectangle{}
	}
	return b.Raster.Rect
}

// RegistryStats summarises handle accounting.
type RegistryStats struct {
	Allocated      uint64
	Released       uint64
	Outstanding    int64
	DoubleReleases uint64
}

// Registry allocates Buffers and tracks how many are still held.
type Registry struct {
	logger         *slog.Logger
	seq            atomic.Uint64
	outstanding    atomic.Int64
	released       atomic.Uint64
	doubleReleases atomic.Uint64
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Wrap allocates a handle for payload without decoding it.
func (r *Registry) Wrap(payload []byte, now time.Time) *Buffer {
	b := &Buffer{ID: r.seq.Add(1), Payload: payload, ReceivedAt: now, registry: r}
	r.outstanding.Add(1)
	return b
}

// Decode allocates a handle for payload and decodes it into a pooled raster.
// On failure the handle is released before returning and the error wraps
// ErrDecode.
func (r *Registry) Decode(payload []byte, now time.Time) (*Buffer, error) {
	b := r.Wrap(payload, now)
	if len(payload) == 0 {
		_ = b.Release()
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	src, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		_ = b.Release()
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	sb := src.Bounds()
	dst := acquireRaster(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Copy(dst, image.Point{}, src, sb, draw.Src, nil)
	b.Raster = dst
	return b, nil
}

// Outstanding reports handles allocated but not yet released.
func (r *Registry) Outstanding() int64 { return r.outstanding.Load() }

func (r *Registry) Stats() RegistryStats {
	return RegistryStats{
		Allocated:      r.seq.Load(),
		Released:       r.released.Load(),
		Outstanding:    r.outstanding.Load(),
		DoubleReleases: r.doubleReleases.Load(),
	}
}

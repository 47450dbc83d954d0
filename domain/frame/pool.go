package frame

import (
	"image"
	"sync"
)

// Reusable raster pool. Each decoded snapshot is copied into a pooled RGBA
// so steady-state polling at ~10 fps does not retain a fresh backing slice
// per frame. Rasters go back to the pool only through Buffer.Release; a
// raster must not be touched after its buffer was released.

var rasterPool sync.Pool // stores *image.RGBA

// acquireRaster returns a reusable RGBA image sized to rect. The returned Pix
// length exactly matches rect area * 4, and Stride is width*4.
func acquireRaster(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := rasterPool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// recycleRaster returns img to the pool.
func recycleRaster(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	rasterPool.Put(img)
}

package images

import (
	"errors"
	"image"
	"image/draw"
)

// CropToAspect returns the largest region of frame centred on its middle with
// the aspect ratio w:h. The result is a sub-image sharing frame's pixels.
func CropToAspect(frame *image.RGBA, w, h int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	if w < 1 || h < 1 || b.Empty() {
		return frame, b, nil
	}
	cw, ch := b.Dx(), b.Dx()*h/w
	if ch > b.Dy() {
		ch = b.Dy()
		cw = b.Dy() * w / h
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	roi := image.Rect(x0, y0, x0+cw, y0+ch)
	sub := frame.SubImage(roi)
	if rgba, ok := sub.(*image.RGBA); ok {
		return rgba, roi, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	draw.Draw(out, out.Bounds(), sub, roi.Min, draw.Src)
	return out, roi, nil
}

// Cover fills exactly w x h with src, cropping whatever overflows.
func Cover(src *image.RGBA, w, h int) image.Image {
	crop, _, err := CropToAspect(src, w, h)
	if err != nil {
		return nil
	}
	return ScaleToFit(crop, w, h)
}

//go:build !windows

package capture

import (
	"image"

	"github.com/vova616/screenshot"
)

// Grab returns a capture of the primary display.
func Grab() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}

// GrabRect returns a capture of rect on the primary display.
func GrabRect(rect image.Rectangle) Grabber {
	return func() (*image.RGBA, error) {
		return screenshot.CaptureRect(rect)
	}
}

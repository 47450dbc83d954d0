//go:build !windows

package view

import "image"

// cursorPos is unavailable off Windows; the floating player is not draggable there.
func cursorPos() (image.Point, bool) { return image.Point{}, false }

func toolWindow() bool { return false }

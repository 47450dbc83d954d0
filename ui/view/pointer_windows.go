//go:build windows

package view

import (
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procGetCursorPos = windows.NewLazySystemDLL("user32.dll").NewProc("GetCursorPos")

// cursorPos returns the pointer position in screen coordinates.
func cursorPos() (image.Point, bool) {
	var pt struct{ X, Y int32 }
	r1, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r1 == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(pt.X), int(pt.Y)), true
}

func toolWindow() bool { return true }

package view

import (
	"image"
	"regexp"
	"strconv"
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// parseGeometry parses a Tk geometry string into a screen rectangle.
func parseGeometry(g string) (image.Rectangle, bool) {
	g = strings.TrimSpace(g)
	m := geomRe.FindStringSubmatch(g)
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 1 || h <= 1 {
		// not mapped yet
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

func formatGeometry(r image.Rectangle) string {
	return strconv.Itoa(r.Dx()) + "x" + strconv.Itoa(r.Dy()) + "+" + strconv.Itoa(r.Min.X) + "+" + strconv.Itoa(r.Min.Y)
}

// MainViewport reports the main window area in screen coordinates.
func MainViewport() (x, y, w, h int, ok bool) {
	r, ok := parseGeometry(WmGeometry(App))
	if !ok {
		return 0, 0, 0, 0, false
	}
	return r.Min.X, r.Min.Y, r.Dx(), r.Dy(), true
}

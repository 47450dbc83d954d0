package images

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// NightVision brightens and boosts contrast for dim scenes. With tint the
// hue is also rotated 120 degrees, giving the green cast of a night scope.
func NightVision(src image.Image, tint bool) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		c.R = scaleChannel(c.R, 1.5)
		c.G = scaleChannel(c.G, 1.5)
		c.B = scaleChannel(c.B, 1.5)
		return c
	})
	out = imaging.AdjustContrast(out, 25)
	if tint {
		out = imaging.AdjustFunc(out, rotateHue120)
	}
	return out
}

func scaleChannel(v uint8, f float64) uint8 {
	return uint8(math.Min(255, float64(v)*f+0.5))
}

// hue-rotate matrix for 120 degrees, as used by CSS filter effects.
var hue120 = func() [9]float64 {
	rad := 120 * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return [9]float64{
		0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928,
		0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283,
		0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072,
	}
}()

func rotateHue120(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	m := hue120
	c.R = clamp8(m[0]*r + m[1]*g + m[2]*b)
	c.G = clamp8(m[3]*r + m[4]*g + m[5]*b)
	c.B = clamp8(m[6]*r + m[7]*g + m[8]*b)
	return c
}

func clamp8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, v+0.5)))
}

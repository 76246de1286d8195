// services/light/render.go
package light

import (
	"image/color"

	"spark-go/x/mathx"
)

// DefaultBrightness is applied after gamma correction.
const DefaultBrightness uint8 = 25

// gamma8 is the 2.8 correction curve for 8-bit LED channels.
var gamma8 = [256]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2,
	2, 3, 3, 3, 3, 3, 3, 3, 4, 4, 4, 4, 4, 5, 5, 5,
	5, 6, 6, 6, 6, 7, 7, 7, 7, 8, 8, 8, 9, 9, 9, 10,
	10, 10, 11, 11, 11, 12, 12, 13, 13, 13, 14, 14, 15, 15, 16, 16,
	17, 17, 18, 18, 19, 19, 20, 20, 21, 21, 22, 22, 23, 24, 24, 25,
	25, 26, 27, 27, 28, 29, 29, 30, 31, 32, 32, 33, 34, 35, 35, 36,
	37, 38, 39, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 50,
	51, 52, 54, 55, 56, 57, 58, 59, 60, 61, 62, 63, 64, 66, 67, 68,
	69, 70, 72, 73, 74, 75, 77, 78, 79, 81, 82, 83, 85, 86, 87, 89,
	90, 92, 93, 95, 96, 98, 99, 101, 102, 104, 105, 107, 109, 110, 112, 114,
	115, 117, 119, 120, 122, 124, 126, 127, 129, 131, 133, 135, 137, 138, 140, 142,
	144, 146, 148, 150, 152, 154, 156, 158, 160, 162, 164, 167, 169, 171, 173, 175,
	177, 180, 182, 184, 186, 189, 191, 193, 196, 198, 200, 203, 205, 208, 210, 213,
	215, 218, 220, 223, 225, 228, 231, 233, 236, 239, 241, 244, 247, 249, 252, 255,
}

// HSV is a full-circle hue with saturation and value, all 8-bit.
type HSV struct {
	H, S, V uint8
}

// RGB converts with the six-sector integer method used by LED libraries,
// so hue 0..255 walks the whole colour wheel without floats.
func (c HSV) RGB() color.RGBA {
	v, s := uint16(c.V), uint16(c.S)
	f := (uint16(c.H) * 2 % 85) * 3 // position inside the sector

	p := mathx.MulDiv255(v, 255-s)
	q := mathx.MulDiv255(v, 255-mathx.MulDiv255(s, f))
	t := mathx.MulDiv255(v, 255-mathx.MulDiv255(s, 255-f))

	rgb := func(r, g, b uint16) color.RGBA {
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xFF}
	}
	switch {
	case c.H <= 42:
		return rgb(v, t, p)
	case c.H <= 84:
		return rgb(q, v, p)
	case c.H <= 127:
		return rgb(p, v, t)
	case c.H <= 169:
		return rgb(p, q, v)
	case c.H <= 212:
		return rgb(t, p, v)
	case c.H <= 254:
		return rgb(v, p, q)
	default:
		return rgb(v, t, p)
	}
}

// Correct applies gamma then scales to level.
func Correct(c color.RGBA, level uint8) color.RGBA {
	return color.RGBA{
		R: mathx.Scale8(gamma8[c.R], level),
		G: mathx.Scale8(gamma8[c.G], level),
		B: mathx.Scale8(gamma8[c.B], level),
		A: 0xFF,
	}
}

// FrameColor is the colour every pixel shows for a given hue.
func FrameColor(hue, level uint8) color.RGBA {
	return Correct(HSV{H: hue, S: 255, V: 255}.RGB(), level)
}

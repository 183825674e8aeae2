package analysis

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// goldenRatioConjugate spaces consecutive hues as far apart as possible
// without ever repeating.
const goldenRatioConjugate = 0.618033988749895

const (
	paletteSeedHue    = 0.1
	paletteSaturation = 0.65
	paletteValue      = 0.95
)

// GroupColor returns the display color of the i-th line collection. The
// sequence is deterministic so renders are reproducible.
func GroupColor(i int) colorful.Color {
	hue := math.Mod(paletteSeedHue+float64(i)*goldenRatioConjugate, 1) * 360
	return colorful.Hsv(hue, paletteSaturation, paletteValue)
}

// toRGBA converts a palette color to an opaque color.RGBA.
func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

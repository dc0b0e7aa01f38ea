// Package convert holds the value conversions shared by the topology and
// expose paths: level scaling, reciprocal color temperature and color space
// conversion between CIE xy, hue/saturation and sRGB hex strings.
package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for malformed hex color strings.
var ErrInvalidColor = errors.New("invalid color")

// LevelToPercent scales a device-native level in [0, max] to [0, 100].
func LevelToPercent(v, max float64) int {
	if max <= 0 {
		max = 100
	}
	return int(math.Round(v * 100 / max))
}

// PercentToLevel scales a percentage to a device-native level in [0, max].
func PercentToLevel(pct, max float64) int {
	if max <= 0 {
		max = 100
	}
	return int(math.Round(pct * max / 100))
}

// Reciprocal converts between mireds and kelvin; the mapping is its own
// inverse.
func Reciprocal(v float64) (int, error) {
	if v <= 0 {
		return 0, fmt.Errorf("color temperature %v must be positive", v)
	}
	return int(math.Round(1_000_000 / v)), nil
}

// RGB is an 8-bit sRGB triple.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// XYToRGB converts a CIE 1931 chromaticity pair and a brightness in [0, 255]
// to gamma-corrected sRGB. The largest channel is normalized to at most 255.
func XYToRGB(x, y, brightness float64) RGB {
	if y <= 0 {
		return RGB{}
	}
	z := 1 - x - y
	Y := brightness / 255
	X := Y / y * x
	Z := Y / y * z

	r := X*3.2404542 - Y*1.5371385 - Z*0.4985314
	g := -X*0.9692660 + Y*1.8760108 + Z*0.0415560
	b := X*0.0556434 - Y*0.2040259 + Z*1.0572252

	r, g, b = gammaEncode(r), gammaEncode(g), gammaEncode(b)
	if m := math.Max(r, math.Max(g, b)); m > 1 {
		r, g, b = r/m, g/m, b/m
	}
	return RGB{R: toByte(r), G: toByte(g), B: toByte(b)}
}

// RGBToXY converts sRGB to CIE 1931 chromaticity. Black maps to the D65
// white point.
func RGBToXY(c RGB) (x, y float64) {
	r := gammaDecode(float64(c.R) / 255)
	g := gammaDecode(float64(c.G) / 255)
	b := gammaDecode(float64(c.B) / 255)

	X := r*0.4124564 + g*0.3575761 + b*0.1804375
	Y := r*0.2126729 + g*0.7151522 + b*0.0721750
	Z := r*0.0193339 + g*0.1191920 + b*0.9503041
	sum := X + Y + Z
	if sum == 0 {
		return 0.3127, 0.3290
	}
	return X / sum, Y / sum
}

// HSVToRGB converts hue in degrees and saturation/value in [0, 1] to sRGB.
func HSVToRGB(h, s, v float64) RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB{R: toByte(r + m), G: toByte(g + m), B: toByte(b + m)}
}

// RGBToHSV converts sRGB to hue in degrees and saturation/value in [0, 1].
func RGBToHSV(c RGB) (h, s, v float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	d := max - min
	v = max
	if max > 0 {
		s = d / max
	}
	switch {
	case d == 0:
		h = 0
	case max == r:
		h = 60 * math.Mod((g-b)/d, 6)
	case max == g:
		h = 60 * ((b-r)/d + 2)
	default:
		h = 60 * ((r-g)/d + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func gammaEncode(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

func gammaDecode(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func toByte(v float64) uint8 {
	n := math.Round(v * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

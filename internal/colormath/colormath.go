package colormath

import (
	"math"
	"strings"

	"contrastguard/internal/model"
)

// HexToRGB parses a 6-hex-digit color with an optional leading '#',
// case-insensitive. Anything else returns ok=false; malformed input is
// not an error condition, callers decide how to degrade.
func HexToRGB(hex string) (model.RGB, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return model.RGB{}, false
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(s[i*2])
		lo, ok2 := hexDigit(s[i*2+1])
		if !ok1 || !ok2 {
			return model.RGB{}, false
		}
		channels[i] = hi<<4 | lo
	}
	return model.RGB{R: channels[0], G: channels[1], B: channels[2]}, true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// RelativeLuminance implements the WCAG 2.x formula: sRGB channels are
// linearized with the 0.03928 breakpoint, then weighted 0.2126/0.7152/0.0722.
func RelativeLuminance(r, g, b uint8) float64 {
	return 0.2126*linearize(r) + 0.7152*linearize(g) + 0.0722*linearize(b)
}

func linearize(v uint8) float64 {
	c := float64(v) / 255.0
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastRatio returns (Lmax+0.05)/(Lmin+0.05) in [1,21]. If either color
// fails to parse the ratio is 0.0; that fallback is the documented policy
// and downstream validators rely on it.
func ContrastRatio(colorA, colorB string) float64 {
	a, okA := HexToRGB(colorA)
	b, okB := HexToRGB(colorB)
	if !okA || !okB {
		return 0.0
	}
	la := RelativeLuminance(a.R, a.G, a.B)
	lb := RelativeLuminance(b.R, b.G, b.B)
	lighter := math.Max(la, lb)
	darker := math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

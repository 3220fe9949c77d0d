package cvd

import (
	"fmt"
	"math"

	"contrastguard/internal/colormath"
	"contrastguard/internal/model"
)

// Simulate transforms a hex color to what a viewer with the given
// color-vision deficiency perceives. Unparseable input is returned
// unchanged; output is always lowercase "#rrggbb".
//
// The per-type transforms assign channels sequentially, so g' and b' read
// the already-updated values of r and g. The reference behavior reads
// mutated intermediates and downstream checks assert those exact outputs,
// so the evaluation order is part of the contract.
func Simulate(hex string, t model.CVDType) string {
	rgb, ok := colormath.HexToRGB(hex)
	if !ok {
		return hex
	}
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	switch t {
	case model.Protanopia:
		r = 0.567*r + 0.433*g
		g = 0.558*r + 0.442*g
		b = 0.242*g + 0.758*b
	case model.Deuteranopia:
		r = 0.625*r + 0.375*g
		g = 0.7*r + 0.3*g
		b = 0.3*g + 0.7*b
	case model.Tritanopia:
		r = 0.95*r + 0.05*g
		g = 0.433*g + 0.567*b
		b = 0.475*g + 0.525*b
	case model.Achromatopsia:
		gray := 0.299*r + 0.587*g + 0.114*b
		r, g, b = gray, gray, gray
	default:
		return hex
	}

	return fmt.Sprintf("#%02x%02x%02x", encode(r), encode(g), encode(b))
}

// SimulateAll runs every deficiency type over the same input.
func SimulateAll(hex string) map[model.CVDType]string {
	out := make(map[model.CVDType]string, 4)
	for _, t := range model.CVDTypes() {
		out[t] = Simulate(hex, t)
	}
	return out
}

func encode(c float64) uint8 {
	c = math.Min(1.0, math.Max(0.0, c))
	return uint8(math.Round(c * 255.0))
}

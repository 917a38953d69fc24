package route

import (
	"slices"
	"testing"

	"github.com/matzehuels/lanechart/pkg/geom"
)

func poly(xy ...float64) []geom.Point {
	out := make([]geom.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geom.Pt(xy[i], xy[i+1]))
	}
	return out
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name string
		in   []geom.Point
		want []geom.Point
	}{
		{"empty", nil, nil},
		{"single", poly(5, 5), poly(5, 5)},
		{"two points", poly(0, 0, 10, 0), poly(0, 0, 10, 0)},
		{"collinear run", poly(0, 0, 10, 0, 20, 0, 30, 0), poly(0, 0, 30, 0)},
		{"corner kept", poly(0, 0, 10, 0, 20, 0, 20, 10, 20, 20), poly(0, 0, 20, 0, 20, 20)},
		{"duplicate interior", poly(0, 0, 0, 0, 10, 0), poly(0, 0, 10, 0)},
		{"staircase", poly(0, 0, 10, 0, 10, 10, 20, 10, 20, 20), poly(0, 0, 10, 0, 10, 10, 20, 10, 20, 20)},
		{"reversal kept", poly(0, 0, 10, 0, 5, 0), poly(0, 0, 10, 0, 5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Simplify() = %v, want %v", got, tt.want)
			}
			if len(got) > len(tt.in) {
				t.Errorf("Simplify() grew from %d to %d points", len(tt.in), len(got))
			}
		})
	}
}

func TestSimplifyDoesNotAlias(t *testing.T) {
	in := poly(0, 0, 10, 0)
	out := Simplify(in)
	out[0] = geom.Pt(99, 99)
	if in[0] != geom.Pt(0, 0) {
		t.Error("Simplify should not return the input slice")
	}
}

func TestEnsureHorizontalApproach(t *testing.T) {
	tests := []struct {
		name string
		in   []geom.Point
		side Side
		want []geom.Point
	}{
		{
			name: "straight unchanged",
			in:   poly(0, 0, 100, 0),
			want: poly(0, 0, 100, 0),
		},
		{
			name: "same height detour",
			in:   poly(0, 0, 0, 50, 100, 50, 100, 0),
			side: SideLeft,
			want: poly(0, 0, 0, 50, 80, 50, 80, 0, 100, 0),
		},
		{
			name: "horizontal arrival unchanged",
			in:   poly(0, 0, 50, 0, 50, 40, 100, 40),
			want: poly(0, 0, 50, 0, 50, 40, 100, 40),
		},
		{
			name: "diagonal arrival bent",
			in:   poly(0, 0, 50, 0, 100, 40),
			want: poly(0, 0, 50, 0, 50, 40, 100, 40),
		},
		{
			name: "vertical arrival from left",
			in:   poly(0, 0, 0, 50, 100, 50, 100, 100),
			side: SideLeft,
			want: poly(0, 0, 0, 50, 80, 50, 80, 100, 100, 100),
		},
		{
			name: "vertical arrival from right",
			in:   poly(0, 0, 0, 50, 100, 50, 100, 100),
			side: SideRight,
			want: poly(0, 0, 0, 50, 120, 50, 120, 100, 100, 100),
		},
		{
			name: "two point vertical",
			in:   poly(0, 0, 0, 100),
			side: SideLeft,
			want: poly(0, 0, -20, 0, -20, 100, 0, 100),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsureHorizontalApproach(tt.in, tt.side)
			if !slices.Equal(got, tt.want) {
				t.Errorf("EnsureHorizontalApproach() = %v, want %v", got, tt.want)
			}
			if !geom.Rectilinear(got) && geom.Rectilinear(tt.in) {
				t.Errorf("result is not rectilinear: %v", got)
			}
			first, last := got[0], got[len(got)-1]
			if first != tt.in[0] || last != tt.in[len(tt.in)-1] {
				t.Errorf("endpoints changed: %v -> %v", tt.in, got)
			}
			if got[len(got)-2].Y != last.Y {
				t.Errorf("final segment is not horizontal: %v", got)
			}
		})
	}
}

func TestSideString(t *testing.T) {
	if SideLeft.String() != "left" || SideRight.String() != "right" {
		t.Errorf("Side strings = %q, %q", SideLeft, SideRight)
	}
}

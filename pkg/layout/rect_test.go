package layout

import (
	"math"
	"testing"
)

func TestRectSize(t *testing.T) {
	tests := []struct {
		name       string
		rect       Rect
		wantWidth  float64
		wantHeight float64
		wantEmpty  bool
	}{
		{
			name:       "positive",
			rect:       Rect{Left: 0.1, Bottom: 0.2, Right: 0.5, Top: 0.8},
			wantWidth:  0.4,
			wantHeight: 0.6,
		},
		{
			name:      "zero width",
			rect:      Rect{Left: 0.3, Bottom: 0, Right: 0.3, Top: 1},
			wantWidth: 0, wantHeight: 1,
			wantEmpty: true,
		},
		{
			name:       "unit",
			rect:       Unit,
			wantWidth:  1,
			wantHeight: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Width(); !approx(got, tt.wantWidth) {
				t.Errorf("Width() = %v, want %v", got, tt.wantWidth)
			}
			if got := tt.rect.Height(); !approx(got, tt.wantHeight) {
				t.Errorf("Height() = %v, want %v", got, tt.wantHeight)
			}
			if got := tt.rect.Empty(); got != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", got, tt.wantEmpty)
			}
		})
	}
}

func TestRectCenter(t *testing.T) {
	r := Rect{Left: 0.2, Bottom: 0.4, Right: 0.6, Top: 0.8}
	if got := r.CenterX(); !approx(got, 0.4) {
		t.Errorf("CenterX() = %v, want 0.4", got)
	}
	if got := r.CenterY(); !approx(got, 0.6) {
		t.Errorf("CenterY() = %v, want 0.6", got)
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{Left: 0, Bottom: 0, Right: 0.5, Top: 0.5}

	tests := []struct {
		name string
		o    Rect
		want bool
	}{
		{"touching edge", Rect{Left: 0.5, Bottom: 0, Right: 1, Top: 0.5}, false},
		{"disjoint", Rect{Left: 0.6, Bottom: 0.6, Right: 1, Top: 1}, false},
		{"overlap", Rect{Left: 0.25, Bottom: 0.25, Right: 0.75, Top: 0.75}, true},
		{"contained", Rect{Left: 0.1, Bottom: 0.1, Right: 0.2, Top: 0.2}, true},
		{"empty", Rect{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.o); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.o.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectScale(t *testing.T) {
	r := Rect{Left: 0.25, Bottom: 0.5, Right: 0.75, Top: 1}
	got := r.Scale(800, 600)
	want := Rect{Left: 200, Bottom: 300, Right: 600, Top: 600}
	if got != want {
		t.Errorf("Scale() = %+v, want %+v", got, want)
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

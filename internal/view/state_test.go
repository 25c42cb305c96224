package view

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestClampScale(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{-3, 1},
		{0.999, 1},
		{1, 1},
		{7.5, 7.5},
		{16, 16},
		{16.01, 16},
		{1e9, 16},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		if got := ClampScale(tt.in); got != tt.want {
			t.Errorf("ClampScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampPan(t *testing.T) {
	// fit scale 0.5: 1000x500 on screen at scale 1
	g := Geometry{ViewportW: 1000, ViewportH: 800, ImageW: 2000, ImageH: 1000}

	t.Run("scale 1 forces zero offset", func(t *testing.T) {
		got := g.Clamp(State{Scale: 1, OffsetX: 300, OffsetY: -40})
		if diff := cmp.Diff(State{Scale: 1}, got, approx); diff != "" {
			t.Errorf("Clamp mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("scale 4 clamps exactly at the boundary", func(t *testing.T) {
		mx, my := g.MaxOffset(4)
		if mx != 1500 || my != 600 {
			t.Fatalf("MaxOffset(4) = %v, %v", mx, my)
		}
		got := g.Clamp(State{Scale: 4, OffsetX: 5000, OffsetY: -5000})
		if diff := cmp.Diff(State{Scale: 4, OffsetX: 1500, OffsetY: -600}, got, approx); diff != "" {
			t.Errorf("overshoot not clamped (-want +got):\n%s", diff)
		}
		at := State{Scale: 4, OffsetX: -1500, OffsetY: 600}
		if diff := cmp.Diff(at, g.Clamp(at), approx); diff != "" {
			t.Errorf("boundary value was altered (-want +got):\n%s", diff)
		}
		inside := State{Scale: 4, OffsetX: 1499, OffsetY: 10}
		if diff := cmp.Diff(inside, g.Clamp(inside), approx); diff != "" {
			t.Errorf("in-range value was altered (-want +got):\n%s", diff)
		}
	})

	t.Run("scale above max is clamped first", func(t *testing.T) {
		got := g.Clamp(State{Scale: 40})
		if got.Scale != MaxScale {
			t.Errorf("Scale = %v", got.Scale)
		}
	})
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	g := Geometry{ViewportW: 1000, ViewportH: 800, ImageW: 1000, ImageH: 800}
	s := State{Scale: 2}
	px, py := 600.0, 450.0

	got := g.ZoomAt(s, px, py, 1.5)
	want := State{Scale: 3, OffsetX: -50, OffsetY: -25}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("ZoomAt mismatch (-want +got):\n%s", diff)
	}

	imageX := func(s State) float64 { return (px - g.ViewportW/2 - s.OffsetX) / s.Scale }
	if math.Abs(imageX(s)-imageX(got)) > 1e-9 {
		t.Errorf("anchor moved: %v -> %v", imageX(s), imageX(got))
	}
}

func TestZoomAtClampsRatio(t *testing.T) {
	g := Geometry{ViewportW: 100, ViewportH: 100, ImageW: 100, ImageH: 100}
	if got := g.ZoomAt(State{Scale: 10}, 50, 50, 100); got.Scale != MaxScale {
		t.Errorf("Scale = %v, want %v", got.Scale, MaxScale)
	}
	if got := g.ZoomAt(State{Scale: 2, OffsetX: 20}, 0, 0, 0.01); got != Identity {
		t.Errorf("zoom out past min = %+v, want identity", got)
	}
}

func TestGeometryNotReady(t *testing.T) {
	g := Geometry{ViewportW: 0, ViewportH: 800, ImageW: 10, ImageH: 10}
	if _, ok := g.FitScale(); ok {
		t.Error("zero viewport reported ready")
	}
	if x, y := g.MaxOffset(4); x != 0 || y != 0 {
		t.Errorf("MaxOffset = %v, %v", x, y)
	}
}

package layer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/electronjoe/deepframe/internal/view"
)

func TestBasePlacement(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-9)
	tests := []struct {
		name string
		rot  int
		s    view.State
		want Placement
	}{
		{
			name: "landscape fits width",
			s:    view.Identity,
			want: Placement{CenterX: 500, CenterY: 400, Width: 1000, Height: 500},
		},
		{
			name: "quarter turn fits rotated height",
			rot:  90,
			s:    view.Identity,
			// rotated 1000x2000 in 1000x800: fit 0.4
			want: Placement{CenterX: 500, CenterY: 400, Width: 800, Height: 400, Rotation: 90},
		},
		{
			name: "zoomed and panned",
			s:    view.State{Scale: 2, OffsetX: -100, OffsetY: 30},
			want: Placement{CenterX: 400, CenterY: 430, Width: 2000, Height: 1000},
		},
		{
			name: "negative rotation normalized",
			rot:  -90,
			s:    view.Identity,
			want: Placement{CenterX: 500, CenterY: 400, Width: 800, Height: 400, Rotation: 270},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Base(2000, 1000, tt.rot, 1000, 800, tt.s)
			if !ok {
				t.Fatal("not ready")
			}
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Base mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBaseZeroViewport(t *testing.T) {
	if _, ok := Base(2000, 1000, 0, 0, 0, view.Identity); ok {
		t.Error("zero viewport reported ready")
	}
}

func TestOpacity(t *testing.T) {
	if Opacity(true, true) != DimmedOpacity {
		t.Error("not dimmed with tiles loaded")
	}
	if Opacity(true, false) != 1 || Opacity(false, true) != 1 {
		t.Error("dimmed without drawable tiles")
	}
}

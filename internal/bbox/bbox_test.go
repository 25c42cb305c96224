package bbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestNormalize(t *testing.T) {
	tests := map[int]int{0: 0, 90: 90, 180: 180, 270: 270, 360: 0, 450: 90, -90: 270, -180: 180, -450: 270, 725: 0}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTransform(t *testing.T) {
	b := Box{PosX: 0.2, PosY: 0.3, SizeX: 0.1, SizeY: 0.4}
	tests := []struct {
		rot  int
		want Box
	}{
		{0, b},
		{90, Box{PosX: 0.3, PosY: 0.8, SizeX: 0.4, SizeY: 0.1}},
		{180, Box{PosX: 0.8, PosY: 0.7, SizeX: 0.1, SizeY: 0.4}},
		{270, Box{PosX: 0.7, PosY: 0.2, SizeX: 0.4, SizeY: 0.1}},
		{-90, Box{PosX: 0.7, PosY: 0.2, SizeX: 0.4, SizeY: 0.1}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Transform(b, tt.rot), approx); diff != "" {
			t.Errorf("Transform(rot=%d) mismatch (-want +got):\n%s", tt.rot, diff)
		}
	}
}

func TestQuarterTurnRoundTrip(t *testing.T) {
	boxes := []Box{
		{PosX: 0.2, PosY: 0.3, SizeX: 0.1, SizeY: 0.4},
		{PosX: 0.5, PosY: 0.5, SizeX: 1, SizeY: 1},
		{PosX: 0.9, PosY: 0.05, SizeX: 0.02, SizeY: 0.1},
	}
	for _, b := range boxes {
		for _, start := range []int{0, 90, 180, 270} {
			got := Transform(b, start)
			want := got
			for i := 0; i < 4; i++ {
				got = Transform(got, 90)
			}
			if diff := cmp.Diff(want, got, approx); diff != "" {
				t.Errorf("four quarter turns from %d are not identity (-want +got):\n%s", start, diff)
			}
		}
	}
}

func TestPlace(t *testing.T) {
	got := Place(Box{PosX: 0.5, PosY: 0.25, SizeX: 0.2, SizeY: 0.1})
	want := Rect{Left: 40, Top: 20, Width: 20, Height: 10}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Place mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelRotation(t *testing.T) {
	for rot, want := range map[int]int{0: 0, 90: 270, 180: 180, 270: 90, -90: 90} {
		if got := LabelRotation(rot); got != want {
			t.Errorf("LabelRotation(%d) = %d, want %d", rot, got, want)
		}
	}
}

func TestNext(t *testing.T) {
	tags := []Tag{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	tests := []struct {
		tags []Tag
		id   string
		want string
	}{
		{tags, "", "a"},
		{tags, "a", "b"},
		{tags, "c", "a"},
		{tags, "gone", "a"},
		{nil, "a", ""},
	}
	for _, tt := range tests {
		if got := Next(tt.tags, tt.id); got != tt.want {
			t.Errorf("Next(%d tags, %q) = %q, want %q", len(tt.tags), tt.id, got, tt.want)
		}
	}
	if got, ok := Find(tags, "b"); !ok || got.ID != "b" {
		t.Errorf("Find(b) = %+v, %v", got, ok)
	}
	if _, ok := Find(tags, "z"); ok {
		t.Error("Find(z) found a tag")
	}
}

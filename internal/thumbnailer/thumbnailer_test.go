package thumbnailer

import (
	"testing"

	"github.com/electronjoe/deepframe/internal/resolution"
	"github.com/electronjoe/deepframe/internal/tile"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"base standard", BasePath("abc", resolution.Standard, Contain, 85), "/thumbnailer/photo/1920x1920_contain_q85/abc/"},
		{"base high cover", BasePath("abc", resolution.High, Cover, 70), "/thumbnailer/photo/3840x3840_cover_q70/abc/"},
		{"tile", TilePath("abc", tile.Coord{Z: 3, X: 1, Y: 7}, 90, 85), "/thumbnailer/tile/abc/3/1/7.jpg?rotation=90&q=85"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParseBaseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    BaseSpec
		wantErr bool
	}{
		{in: "1920x1920_contain_q85", want: BaseSpec{Tier: resolution.Standard, Fit: Contain, Quality: 85}},
		{in: "3840x3840_cover_q60", want: BaseSpec{Tier: resolution.High, Fit: Cover, Quality: 60}},
		{in: "1024x1024_contain_q85", wantErr: true},
		{in: "1920x1920_stretch_q85", wantErr: true},
		{in: "1920x1920_contain_85", wantErr: true},
		{in: "1920x1920_contain_q0", wantErr: true},
		{in: "1920x1920", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBaseSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBaseSpec(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBaseSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

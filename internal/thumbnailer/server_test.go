package thumbnailer

import (
	"image"
	_ "image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServer(t *testing.T) {
	s := NewServer(NewLocalBackend(files{"wide": writePhoto(t, 40, 10)}), false)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantSize   image.Point
	}{
		{name: "base", url: "/thumbnailer/photo/1920x1920_contain_q80/wide/", wantStatus: http.StatusOK, wantSize: image.Pt(40, 10)},
		{name: "tile", url: "/thumbnailer/tile/wide/2/1/1.jpg?rotation=0&q=80", wantStatus: http.StatusOK, wantSize: image.Pt(256, 256)},
		{name: "tile default query", url: "/thumbnailer/tile/wide/0/0/0.jpg", wantStatus: http.StatusOK, wantSize: image.Pt(256, 256)},
		{name: "absent tile", url: "/thumbnailer/tile/wide/2/1/0.jpg?rotation=0", wantStatus: http.StatusNotFound},
		{name: "unknown photo", url: "/thumbnailer/tile/nope/0/0/0.jpg", wantStatus: http.StatusNotFound},
		{name: "bad size", url: "/thumbnailer/photo/100x100_contain_q80/wide/", wantStatus: http.StatusBadRequest},
		{name: "bad coord", url: "/thumbnailer/tile/wide/a/0/0.jpg", wantStatus: http.StatusBadRequest},
		{name: "negative level", url: "/thumbnailer/tile/wide/-1/0/0.jpg", wantStatus: http.StatusBadRequest},
		{name: "negative column", url: "/thumbnailer/tile/wide/2/-1/0.jpg", wantStatus: http.StatusBadRequest},
		{name: "column past level", url: "/thumbnailer/tile/wide/1/2/0.jpg", wantStatus: http.StatusBadRequest},
		{name: "bad quality", url: "/thumbnailer/tile/wide/0/0/0.jpg?q=500", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, tt.url, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("Content-Type = %q", ct)
			}
			cfg, format, err := image.DecodeConfig(resp.Body)
			if err != nil || format != "jpeg" {
				t.Fatalf("decode: %v (%s)", err, format)
			}
			if got := image.Pt(cfg.Width, cfg.Height); got != tt.wantSize {
				t.Errorf("size = %v, want %v", got, tt.wantSize)
			}
		})
	}
}

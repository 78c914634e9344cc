package imageio

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"aligned and small passes through", 1024, 768, 2048, 1024, 768},
		{"long side capped", 4096, 2048, 2048, 2048, 1024},
		{"snap down to multiple of 8", 1030, 770, 2048, 1024, 768},
		{"portrait capped on height", 1000, 4000, 2048, 512, 2048},
		{"both cap and snap", 3000, 2000, 2048, 2048, 1360},
		{"zero input", 0, 100, 2048, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitDimensions(tt.w, tt.h, tt.max)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("FitDimensions(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "src.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrepareScalesAndEncodes(t *testing.T) {
	path := writeTestPNG(t, 200, 100)

	p, err := Prepare(path, 64)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 64 || p.Height != 32 {
		t.Fatalf("got %dx%d, want 64x32", p.Width, p.Height)
	}

	raw, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a valid PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("encoded dimensions %dx%d, want 64x32", b.Dx(), b.Dy())
	}
}

func TestPrepareAlignedImagePassesThrough(t *testing.T) {
	path := writeTestPNG(t, 64, 48)
	p, err := Prepare(path, 2048)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 64 || p.Height != 48 {
		t.Fatalf("got %dx%d, want unchanged 64x48", p.Width, p.Height)
	}
}

func TestPrepareRejectsTinyImages(t *testing.T) {
	path := writeTestPNG(t, 4, 4)
	if _, err := Prepare(path, 2048); err == nil {
		t.Fatal("expected error for image below minimum size")
	}
}

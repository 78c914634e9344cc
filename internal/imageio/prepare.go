// Package imageio prepares source images for the server and persists the
// generated results.
package imageio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// DefaultMaxSide caps the longest side of the payload image. Larger inputs
// are scaled down before encoding.
const DefaultMaxSide = 2048

// Prepared is a source image ready to be embedded in a generation payload.
type Prepared struct {
	Base64 string
	Width  int
	Height int
}

// Prepare loads a PNG or JPEG source image, scales it down so the longest
// side is at most maxSide, snaps both dimensions down to multiples of 8 (the
// server rejects other sizes), and returns it PNG-encoded in base64.
func Prepare(path string, maxSide int) (Prepared, error) {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	f, err := os.Open(path)
	if err != nil {
		return Prepared{}, fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Prepared{}, fmt.Errorf("decode source image %s: %w", path, err)
	}
	return encodePrepared(src, maxSide)
}

func encodePrepared(src image.Image, maxSide int) (Prepared, error) {
	b := src.Bounds()
	w, h := FitDimensions(b.Dx(), b.Dy(), maxSide)
	if w < 8 || h < 8 {
		return Prepared{}, fmt.Errorf("source image too small: %dx%d", b.Dx(), b.Dy())
	}

	out := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return Prepared{}, fmt.Errorf("encode payload image: %w", err)
	}
	return Prepared{
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  w,
		Height: h,
	}, nil
}

// FitDimensions scales (w, h) down so the longer side is at most maxSide,
// then snaps both down to multiples of 8. Aspect ratio is preserved up to
// the snapping.
func FitDimensions(w, h, maxSide int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	long := w
	if h > long {
		long = h
	}
	if long > maxSide {
		scale := float64(maxSide) / float64(long)
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}
	return w - w%8, h - h%8
}

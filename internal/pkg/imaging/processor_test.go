package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func jpegImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestResizePreservesAspectRatio(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	data, ct, err := p.Resize(bytes.NewReader(jpegImage(t, 800, 600)), 400)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if ct != "image/jpeg" {
		t.Fatalf("content type = %q, want image/jpeg", ct)
	}
	w, h := decodeDims(t, data)
	if w != 400 || h != 300 {
		t.Fatalf("resized to %dx%d, want 400x300", w, h)
	}
}

func TestResizeZeroConfigUsesDefaults(t *testing.T) {
	p := NewProcessor(Config{})

	data, _, err := p.Resize(bytes.NewReader(jpegImage(t, 800, 600)), 300)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	w, h := decodeDims(t, data)
	if w != 300 || h != 225 {
		t.Fatalf("resized to %dx%d, want 300x225", w, h)
	}
}

func TestResizeCapsRequestedWidth(t *testing.T) {
	p := NewProcessor(Config{MaxWidth: 500, Quality: 85})

	data, _, err := p.Resize(bytes.NewReader(jpegImage(t, 800, 400)), 5000)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	w, h := decodeDims(t, data)
	if w != 500 || h != 250 {
		t.Fatalf("resized to %dx%d, want 500x250", w, h)
	}
}

func TestResizeNarrowImagePassesThrough(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	data, _, err := p.Resize(bytes.NewReader(jpegImage(t, 200, 150)), 400)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	w, h := decodeDims(t, data)
	if w != 200 || h != 150 {
		t.Fatalf("got %dx%d, want original 200x150", w, h)
	}
}

func TestResizeKeepsPNGFormat(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	data, ct, err := p.Resize(bytes.NewReader(pngImage(t, 600, 600)), 300)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("result is not png: %v", err)
	}
	w, h := decodeDims(t, data)
	if w != 300 || h != 300 {
		t.Fatalf("resized to %dx%d, want 300x300", w, h)
	}
}

func TestResizeRejectsGarbage(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	if _, _, err := p.Resize(bytes.NewReader([]byte("not an image")), 300); err == nil {
		t.Fatal("expected decode error for garbage input")
	}
}

package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x), A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestBuildReportsOriginalDimensions(t *testing.T) {
	t.Parallel()

	b := NewBuilderWithMaxEdge(100)
	pv, err := b.Build(analysis.RawImage{Name: "wide.png", Format: "png", Data: encodePNG(t, 400, 200)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pv.Width != 400 || pv.Height != 200 {
		t.Fatalf("dimensions = %dx%d, want 400x200", pv.Width, pv.Height)
	}

	thumb, err := png.Decode(bytes.NewReader(pv.PNG))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	tb := thumb.Bounds()
	if tb.Dx() != 100 || tb.Dy() != 50 {
		t.Fatalf("thumbnail = %dx%d, want 100x50", tb.Dx(), tb.Dy())
	}
}

func TestBuildNeverUpscales(t *testing.T) {
	t.Parallel()

	b := NewBuilderWithMaxEdge(320)
	pv, err := b.Build(analysis.RawImage{Name: "small.png", Format: "png", Data: encodePNG(t, 20, 10)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	thumb, err := png.Decode(bytes.NewReader(pv.PNG))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if tb := thumb.Bounds(); tb.Dx() != 20 || tb.Dy() != 10 {
		t.Fatalf("thumbnail = %dx%d, want 20x10", tb.Dx(), tb.Dy())
	}
}

func TestBuildRejectsGarbage(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	if _, err := b.Build(analysis.RawImage{Name: "junk.jpg", Format: "jpg", Data: []byte("not an image")}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestThumbSizePortrait(t *testing.T) {
	t.Parallel()

	w, h := thumbSize(200, 400, 100)
	if w != 50 || h != 100 {
		t.Fatalf("thumbSize portrait = %dx%d, want 50x100", w, h)
	}
}

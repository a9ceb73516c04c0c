package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// register the jpeg decoder; png registers via the encoder import
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

const defaultMaxEdge = 320

// Builder implements the preparation step: decode the submitted image and
// produce a downscaled PNG thumbnail plus the original dimensions.
type Builder struct {
	maxEdge int
}

func NewBuilder() *Builder {
	return &Builder{maxEdge: defaultMaxEdge}
}

func NewBuilderWithMaxEdge(maxEdge int) *Builder {
	if maxEdge <= 0 {
		maxEdge = defaultMaxEdge
	}
	return &Builder{maxEdge: maxEdge}
}

func (b *Builder) Build(img analysis.RawImage) (analysis.Preview, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return analysis.Preview{}, fmt.Errorf("decode %s: %w", img.Name, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	tw, th := thumbSize(w, h, b.maxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return analysis.Preview{}, fmt.Errorf("encode preview: %w", err)
	}

	return analysis.Preview{Width: w, Height: h, PNG: buf.Bytes()}, nil
}

// thumbSize fits w x h into a maxEdge square, keeping aspect ratio and
// never upscaling.
func thumbSize(w, h, maxEdge int) (int, int) {
	if w <= maxEdge && h <= maxEdge {
		return w, h
	}
	if w >= h {
		return maxEdge, max(1, h*maxEdge/w)
	}
	return max(1, w*maxEdge/h), maxEdge
}

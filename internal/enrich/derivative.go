package enrich

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// DerivativeVariant is one resized re-encoded copy of the original image.
type DerivativeVariant struct {
	Size int
	Data []byte
}

// DerivativeGenerator produces the configured set of display variants from
// an original upload.
type DerivativeGenerator struct {
	sizes   []int
	quality int
}

func NewDerivativeGenerator(sizes []int, jpegQuality int) *DerivativeGenerator {
	return &DerivativeGenerator{sizes: sizes, quality: jpegQuality}
}

// Generate decodes the image once and produces one JPEG variant per
// configured size, in configured order. Downscaling preserves aspect ratio
// and never upscales beyond the original dimensions. Any failure fails the
// whole job: a photo never ends up with a partial variant set.
func (g *DerivativeGenerator) Generate(data []byte) ([]DerivativeVariant, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	variants := make([]DerivativeVariant, 0, len(g.sizes))
	for _, size := range g.sizes {
		resized := img
		bounds := img.Bounds()
		if bounds.Dx() > size || bounds.Dy() > size {
			resized = imaging.Fit(img, size, size, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(g.quality)); err != nil {
			return nil, fmt.Errorf("encode %d variant: %w", size, err)
		}
		variants = append(variants, DerivativeVariant{Size: size, Data: buf.Bytes()})
	}
	return variants, nil
}

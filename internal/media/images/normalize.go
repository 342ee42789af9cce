// Package images turns recipe photos into stored PNGs with BlurHash
// placeholders.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/errors"
)

// MaxSide bounds the longer edge of stored photos in pixels.
const MaxSide = 1600

// MaxPixels bounds the decoded size of an uploaded photo.
const MaxPixels = 50_000_000

// Normalize decodes a PNG, JPEG, GIF or WebP photo and returns it as PNG
// together with its BlurHash. Photos larger than MaxSide are scaled down.
func Normalize(data []byte) (*domain.Image, error) {
	if len(data) == 0 {
		return nil, errors.Validation("image data is empty")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "decode image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixels/cfg.Height {
		return nil, errors.Validationf("image is too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "decode image")
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "compute blurhash")
	}

	scaled, resized := thumbnail(img, MaxSide, draw.CatmullRom)

	// PNGs that need no scaling are stored as given.
	if format == "png" && !resized {
		return &domain.Image{PNG: data, BlurHash: hash}, nil
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, scaled); err != nil {
		return nil, errors.Wrap(fmt.Errorf("encode png: %w", err), errors.CodeInternal, "normalize image")
	}
	return &domain.Image{PNG: buf.Bytes(), BlurHash: hash}, nil
}

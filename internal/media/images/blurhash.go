package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the target size for BlurHash computation.
// The hash only needs a thumbnail.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash placeholder for img using 4x3
// components.
func ComputeBlurHash(img image.Image) (string, error) {
	small, _ := thumbnail(img, blurHashSize, draw.ApproxBiLinear)
	hash, err := blurhash.Encode(4, 3, small)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img so that its longer side is at most maxSide, keeping
// the aspect ratio. Images that already fit are returned unchanged and the
// second result is false.
func thumbnail(img image.Image, maxSide int, scaler draw.Scaler) (image.Image, bool) {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= maxSide && srcHeight <= maxSide {
		return img, false
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = maxSide
		dstHeight = max((srcHeight*maxSide)/srcWidth, 1)
	} else {
		dstHeight = maxSide
		dstWidth = max((srcWidth*maxSide)/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	scaler.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst, true
}

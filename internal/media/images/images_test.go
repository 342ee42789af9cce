package images

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/lieblingsgerichte/rezepte/internal/errors"
)

// gradient returns a w x h image with a simple colour gradient.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func TestNormalize_PNGKeptAsIs(t *testing.T) {
	data := encodePNG(t, gradient(40, 30))

	img, err := Normalize(data)
	require.NoError(t, err)

	assert.Equal(t, data, img.PNG)
	assert.NotEmpty(t, img.BlurHash)
}

func TestNormalize_JPEGBecomesPNG(t *testing.T) {
	img, err := Normalize(encodeJPEG(t, gradient(120, 80)))
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 120, decoded.Bounds().Dx())
	assert.Equal(t, 80, decoded.Bounds().Dy())
	assert.NotEmpty(t, img.BlurHash)
}

func TestNormalize_LargeImageScaledDown(t *testing.T) {
	img, err := Normalize(encodePNG(t, gradient(MaxSide*2, MaxSide/2)))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	assert.Equal(t, MaxSide, decoded.Bounds().Dx())
	assert.Equal(t, MaxSide/4, decoded.Bounds().Dy())
}

func TestNormalize_Invalid(t *testing.T) {
	_, err := Normalize(nil)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = Normalize([]byte("not an image"))
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestNormalize_RejectsOversizedDimensions(t *testing.T) {
	data := encodePNG(t, gradient(1, 1))

	// Claim 20000x20000 in the IHDR chunk and fix up its checksum.
	binary.BigEndian.PutUint32(data[16:20], 20000)
	binary.BigEndian.PutUint32(data[20:24], 20000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 20000, cfg.Width)

	img, err := Normalize(data)
	assert.Nil(t, img)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, err.Error(), "too large")
}

func TestComputeBlurHash_Deterministic(t *testing.T) {
	img := gradient(300, 200)

	first, err := ComputeBlurHash(img)
	require.NoError(t, err)
	second, err := ComputeBlurHash(img)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// 4x3 components: 1 size + 1 max AC + 4 DC + 2 per AC component.
	assert.Len(t, first, 6+2*(4*3-1))
}

func TestThumbnail_KeepsAspectRatio(t *testing.T) {
	small, resized := thumbnail(gradient(640, 320), blurHashSize, draw.NearestNeighbor)
	assert.True(t, resized)
	assert.Equal(t, 64, small.Bounds().Dx())
	assert.Equal(t, 32, small.Bounds().Dy())

	same, resized := thumbnail(gradient(10, 20), blurHashSize, draw.NearestNeighbor)
	assert.False(t, resized)
	assert.Equal(t, 10, same.Bounds().Dx())
}

func TestAssets_Resolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "spaetzle.jpg", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "gulasch", []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll("ordner", 0o755))

	assets := NewAssets(fs)

	p, err := assets.Resolve("spaetzle")
	require.NoError(t, err)
	assert.Equal(t, "spaetzle.jpg", p)

	p, err = assets.Resolve("gulasch")
	require.NoError(t, err)
	assert.Equal(t, "gulasch", p)

	_, err = assets.Resolve("ordner")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = assets.Resolve("fehlt")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = assets.Resolve("../geheim")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestAssets_Load(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "kuchen.png", encodePNG(t, gradient(16, 16)), 0o644))
	require.NoError(t, afero.WriteFile(fs, "kaputt.png", []byte("garbage"), 0o644))

	assets := NewAssets(fs)

	img, err := assets.Load("kuchen")
	require.NoError(t, err)
	assert.NotEmpty(t, img.PNG)
	assert.NotEmpty(t, img.BlurHash)

	_, err = assets.Load("kaputt")
	assert.Error(t, err)
}

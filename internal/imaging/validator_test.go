package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImageAcceptsWellFormedPNG(t *testing.T) {
	data := encodedPNG(t, 32, 16)
	result, err := ValidateImage(data, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, 32, result.Width)
	assert.Equal(t, 16, result.Height)
	assert.Equal(t, "png", result.Format)
}

func TestValidateImageRejectsGarbageBytes(t *testing.T) {
	_, err := ValidateImage([]byte("not an image"), DefaultLimits)
	assert.Error(t, err)
}

func TestValidateImageRejectsTruncatedData(t *testing.T) {
	data := encodedPNG(t, 32, 16)
	_, err := ValidateImage(data[:len(data)/2], DefaultLimits)
	assert.Error(t, err)
}

func TestValidateImageRejectsOversizeBytes(t *testing.T) {
	data := encodedPNG(t, 8, 8)
	limits := Limits{MaxBytes: int64(len(data) - 1), MaxDimension: DefaultLimits.MaxDimension}
	_, err := ValidateImage(data, limits)
	assert.Error(t, err)
}

func TestValidateImageRejectsOversizeDimensions(t *testing.T) {
	data := encodedPNG(t, 100, 100)
	limits := Limits{MaxBytes: DefaultLimits.MaxBytes, MaxDimension: 50}
	_, err := ValidateImage(data, limits)
	assert.Error(t, err)
}

func TestSniffExtensionDetectsPNG(t *testing.T) {
	data := encodedPNG(t, 4, 4)
	assert.Equal(t, ".png", SniffExtension(data))
}

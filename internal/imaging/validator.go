// Package imaging provides a best-effort integrity check for downloaded
// image bytes before they're handed to the blob store. It does not
// generate derivatives or renditions — the archiver stores attachments
// verbatim; this package only answers "does this decode as a real image".
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
)

// Limits bounds what ValidateImage accepts, guarding against truncated
// downloads and decompression bombs.
type Limits struct {
	MaxBytes     int64
	MaxDimension int
}

// DefaultLimits is generous enough for board attachments and thumbnails.
var DefaultLimits = Limits{
	MaxBytes:     16 * 1024 * 1024,
	MaxDimension: 10000,
}

// ValidationResult reports what was found about the decoded image.
type ValidationResult struct {
	Width  int
	Height int
	Format string
}

// ValidateImage decodes data far enough to confirm it is a well-formed
// image and within Limits. It returns an error for corrupt/truncated
// downloads (a transient upstream condition the image worker should
// simply not persist) — this is not content moderation.
func ValidateImage(data []byte, limits Limits) (*ValidationResult, error) {
	if int64(len(data)) > limits.MaxBytes {
		return nil, fmt.Errorf("imaging: %d bytes exceeds limit of %d", len(data), limits.MaxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	if cfg.Width > limits.MaxDimension || cfg.Height > limits.MaxDimension {
		return nil, errors.New("imaging: dimensions exceed maximum")
	}
	maxPixels := int64(64 * 1024 * 1024)
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, errors.New("imaging: too many pixels (possible decompression bomb)")
	}

	return &ValidationResult{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// SniffExtension returns a best-guess file extension (with leading dot)
// for data by content sniffing, used as a fallback when upstream didn't
// supply a trustworthy ext for an attachment.
func SniffExtension(data []byte) string {
	return mimetype.Detect(data).Extension()
}

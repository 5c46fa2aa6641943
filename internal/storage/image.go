package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var (
	// ErrNotImage is returned for uploads that do not decode as a supported image.
	ErrNotImage = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
	// ErrTooLarge is returned for uploads above MaxImageSize.
	ErrTooLarge = fmt.Errorf("image exceeds %d MiB", MaxImageSize>>20)
)

var formats = map[string]struct{ contentType, ext string }{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"gif":  {"image/gif", ".gif"},
	"webp": {"image/webp", ".webp"},
}

// DetectImage sniffs the header of data and returns its content type and
// file extension.
func DetectImage(data []byte) (contentType, ext string, err error) {
	if len(data) > MaxImageSize {
		return "", "", ErrTooLarge
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", ErrNotImage
	}
	f, ok := formats[format]
	if !ok || cfg.Width == 0 || cfg.Height == 0 {
		return "", "", ErrNotImage
	}
	return f.contentType, f.ext, nil
}

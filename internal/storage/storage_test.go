package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectImage(t *testing.T) {
	contentType, ext, err := DetectImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, ".png", ext)

	_, _, err = DetectImage([]byte("GIF? no, plain text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = ReadLimited(strings.NewReader("abcd"), 3)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestNewWithoutCredentialsDisablesStorage(t *testing.T) {
	c, err := New("", "us-east-1", "", "", "bucket", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = c.Upload(context.Background(), "decors", pngBytes(t))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestExtractKey(t *testing.T) {
	c, err := New("https://s3.example.com/", "us-east-1", "key", "secret", "craftopia", "https://cdn.example.com")
	require.NoError(t, err)

	key, ok := c.ExtractKey("https://cdn.example.com/decors/a.png")
	assert.True(t, ok)
	assert.Equal(t, "decors/a.png", key)

	key, ok = c.ExtractKey("https://s3.example.com/craftopia/decors/b.png")
	assert.True(t, ok)
	assert.Equal(t, "decors/b.png", key)

	_, ok = c.ExtractKey("https://elsewhere.example/decors/c.png")
	assert.False(t, ok)

	assert.Equal(t, "https://cdn.example.com/decors/d.png", c.FileURL("decors/d.png"))
}

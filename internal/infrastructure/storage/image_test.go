package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, solid(4, 4), nil))
	var gf bytes.Buffer
	require.NoError(t, gif.Encode(&gf, solid(4, 4), nil))

	cases := []struct {
		name string
		data []byte
		mime string
		ext  string
	}{
		{"png", encodePNG(t, 4, 4), "image/png", "png"},
		{"jpeg", jpg.Bytes(), "image/jpeg", "jpg"},
		{"gif", gf.Bytes(), "image/gif", "gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp", "webp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mime, ext, err := DetectType(tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.mime, mime)
			assert.Equal(t, tc.ext, ext)
		})
	}

	t.Run("riff_but_not_webp", func(t *testing.T) {
		_, _, err := DetectType([]byte("RIFF\x00\x00\x00\x00WAVEfmt "))
		assert.Error(t, err)
	})

	t.Run("too_short", func(t *testing.T) {
		_, _, err := DetectType([]byte{0xFF, 0xD8})
		assert.Error(t, err)
	})
}

func TestPrepareImage(t *testing.T) {
	t.Run("small_png_passes_through", func(t *testing.T) {
		data := encodePNG(t, 10, 5)
		up, err := PrepareImage(data, 10<<20)
		require.NoError(t, err)
		assert.Equal(t, "image/png", up.ContentType)
		assert.Equal(t, "png", up.Ext)
		assert.Equal(t, data, up.Data)
	})

	t.Run("too_large", func(t *testing.T) {
		_, err := PrepareImage(encodePNG(t, 10, 5), 10)
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
	})

	t.Run("not_an_image", func(t *testing.T) {
		_, err := PrepareImage([]byte("hello, this is plain text"), 0)
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
	})

	t.Run("corrupt_webp", func(t *testing.T) {
		_, err := PrepareImage([]byte("RIFF\x00\x00\x00\x00WEBPgarbagegarbage"), 0)
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
	})

	t.Run("wide_png_downscaled", func(t *testing.T) {
		up, err := PrepareImage(encodePNG(t, MaxDisplayWidth+400, 100), 0)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(bytes.NewReader(up.Data))
		require.NoError(t, err)
		assert.Equal(t, MaxDisplayWidth, cfg.Width)
		assert.Equal(t, 80, cfg.Height)
	})
}

package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

const (
	MaxImageDimension = 8000
	// MaxDisplayWidth bounds stored jpeg/png images; wider ones are downscaled.
	MaxDisplayWidth = 1600
)

var magic = []struct {
	mime   string
	ext    string
	prefix []byte
}{
	{"image/jpeg", "jpg", []byte{0xFF, 0xD8, 0xFF}},
	{"image/png", "png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"image/gif", "gif", []byte("GIF8")},
	{"image/webp", "webp", []byte("RIFF")}, // RIFF....WEBP
}

func invalidImage(reason string) error {
	return domain.ErrValidationMeta("invalid image", map[string]string{"image": reason})
}

// DetectType reads the content type from magic bytes; the client supplied type is ignored.
func DetectType(data []byte) (mime, ext string, err error) {
	if len(data) < 12 {
		return "", "", fmt.Errorf("data too short to detect type")
	}
	for _, m := range magic {
		if !bytes.HasPrefix(data, m.prefix) {
			continue
		}
		if m.mime == "image/webp" && string(data[8:12]) != "WEBP" {
			break
		}
		return m.mime, m.ext, nil
	}
	return "", "", fmt.Errorf("unsupported image type")
}

func decodeConfig(data []byte, mime string) (image.Config, error) {
	r := bytes.NewReader(data)
	switch mime {
	case "image/jpeg":
		return jpeg.DecodeConfig(r)
	case "image/png":
		return png.DecodeConfig(r)
	case "image/gif":
		return gif.DecodeConfig(r)
	case "image/webp":
		return webp.DecodeConfig(r)
	}
	return image.Config{}, fmt.Errorf("unsupported image type: %s", mime)
}

// PrepareImage validates an upload and returns it ready for storage.
// Wide jpeg/png images are scaled down to MaxDisplayWidth.
func PrepareImage(data []byte, maxBytes int64) (*catalog.ImageUpload, error) {
	if len(data) == 0 {
		return nil, invalidImage("empty file")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, invalidImage(fmt.Sprintf("must be <= %d bytes", maxBytes))
	}
	mime, ext, err := DetectType(data)
	if err != nil {
		return nil, invalidImage("must be jpeg, png, gif or webp")
	}
	cfg, err := decodeConfig(data, mime)
	if err != nil {
		return nil, invalidImage("cannot decode image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return nil, invalidImage(fmt.Sprintf("dimensions must be within %dx%d", MaxImageDimension, MaxImageDimension))
	}

	if cfg.Width > MaxDisplayWidth && (mime == "image/jpeg" || mime == "image/png") {
		scaled, err := downscale(data, mime, MaxDisplayWidth)
		if err != nil {
			return nil, invalidImage("cannot decode image")
		}
		data = scaled
	}
	return &catalog.ImageUpload{Data: data, ContentType: mime, Ext: ext}, nil
}

func downscale(data []byte, mime string, width int) ([]byte, error) {
	var (
		src image.Image
		err error
	)
	if mime == "image/png" {
		src, err = png.Decode(bytes.NewReader(data))
	} else {
		src, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	height := int(float64(b.Dy()) * float64(width) / float64(b.Dx()))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if mime == "image/png" {
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

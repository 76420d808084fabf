package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// decoders for the formats image fields accept
	_ "image/gif"
	_ "image/jpeg"

	"github.com/disintegration/imaging"
)

// ThumbnailSize is the bounding box used for receipt previews.
const ThumbnailSize = 160

// MaxPixels caps width*height of an image before it is fully decoded.
const MaxPixels = 40_000_000

// ErrTooManyPixels is returned when an image header declares more than
// MaxPixels pixels.
var ErrTooManyPixels = errors.New("media: image exceeds pixel budget")

// Thumbnail decodes an image data URL and returns a PNG data URL that fits
// within size x size pixels. Images already inside the box are re-encoded as is.
func Thumbnail(dataURL string, size int) (string, error) {
	if size <= 0 {
		size = ThumbnailSize
	}
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	w, h, err := dimensions(data)
	if err != nil {
		return "", err
	}
	if int64(w)*int64(h) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrTooManyPixels, w, h)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("media: decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > size || bounds.Dy() > size {
		img = imaging.Fit(img, size, size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("media: encode thumbnail: %w", err)
	}
	return EncodeDataURL(buf.Bytes()), nil
}

// Dimensions reports the pixel size of an image data URL.
func Dimensions(dataURL string) (int, int, error) {
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return 0, 0, err
	}
	return dimensions(data)
}

func dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("media: decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Image is one uploaded file of an auction submission
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Downscale shrinks img so neither side exceeds maxDim, keeping the aspect
// ratio. Images already within bounds are returned unchanged. Resized images
// are re-encoded as JPEG.
func Downscale(img Image, maxDim int) (Image, error) {
	decoded, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return Image{}, fmt.Errorf("storage: decode %s: %w", img.Filename, err)
	}

	if img.ContentType == "" {
		img.ContentType = "image/" + format
	}

	b := decoded.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img, nil
	}

	resized := resize.Thumbnail(uint(maxDim), uint(maxDim), decoded, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return Image{}, fmt.Errorf("storage: re-encode %s: %w", img.Filename, err)
	}

	return Image{
		Filename:    img.Filename,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

package seed

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

const jpegQuality = 90

// RotateClockwise re-encodes a JPEG or PNG payload rotated 90 degrees
// clockwise. The source recording is mounted sideways, so stored
// frames are rotated upright.
func RotateClockwise(data []byte, contentType string) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.Y-1-y, x-bounds.Min.X, src.At(x, y))
		}
	}

	var buf bytes.Buffer
	switch contentType {
	case ContentTypePNG:
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"time"

	"instavibe/shared"

	"golang.org/x/image/draw"
)

const DefaultQuality = 0.8

type EncodedImage struct {
	Name     string
	MimeType string
	Data     []byte
	Width    int
	Height   int
	Quality  float64
}

func (e *EncodedImage) File() *shared.ImageFile {
	return &shared.ImageFile{
		Name:     e.Name,
		MimeType: e.MimeType,
		Data:     e.Data,
	}
}

// NormalizeQuality keeps quality in (0, 1], falling back to DefaultQuality.
func NormalizeQuality(q float64) float64 {
	if math.IsNaN(q) || q <= 0 || q > 1 {
		return DefaultQuality
	}
	return q
}

func PhotoName(at time.Time) string {
	return fmt.Sprintf("photo_%d.jpg", at.UnixMilli())
}

func encodeJPEG(img image.Image, quality float64, at time.Time) (*EncodedImage, error) {
	quality = NormalizeQuality(quality)

	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("error encoding jpeg: %v", err)
	}

	b := img.Bounds()
	return &EncodedImage{
		Name:     PhotoName(at),
		MimeType: "image/jpeg",
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Quality:  quality,
	}, nil
}

// copyFrame copies src into a buffer of exactly width x height, scaling when the
// device handed back a frame at a different size than it advertises.
func copyFrame(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	sb := src.Bounds()
	if sb.Dx() == width && sb.Dy() == height {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	}
	return dst
}

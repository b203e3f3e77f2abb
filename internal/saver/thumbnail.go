package saver

import (
	"fmt"
	"image"
	"os"

	"github.com/acm19/spacesaver/internal/logger"
	"golang.org/x/image/draw"
)

// CalculateSampleSize returns the power-of-two downscale factor for decoding a
// width x height image into a reqWidth x reqHeight slot. The factor is the
// largest power of two that keeps both halved dimensions, divided by it,
// strictly larger than the requested ones; images that already fit use 1.
func CalculateSampleSize(width, height, reqWidth, reqHeight int) int {
	sampleSize := 1
	if height > reqHeight || width > reqWidth {
		halfHeight := height / 2
		halfWidth := width / 2
		for halfHeight/sampleSize > reqHeight && halfWidth/sampleSize > reqWidth {
			sampleSize *= 2
		}
	}
	logger.Debug("Calculated sample size", "height", height, "width", width, "sample_size", sampleSize)
	return sampleSize
}

// DecodeSampled decodes path downscaled by the sample size that fits a
// reqWidth x reqHeight slot. Only the image header is read to size the result.
func DecodeSampled(path string, reqWidth, reqHeight int) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read bounds of %s: %w", path, err)
	}
	sampleSize := CalculateSampleSize(cfg.Width, cfg.Height, reqWidth, reqHeight)

	if _, err := file.Seek(0, 0); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if sampleSize == 1 {
		return img, nil
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, max(1, bounds.Dx()/sampleSize), max(1, bounds.Dy()/sampleSize)))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, bounds, draw.Src, nil)
	return dst, nil
}

package saver

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/acm19/spacesaver/internal/logger"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageCompressor defines the interface for compressing images
type ImageCompressor interface {
	// CompressFile re-encodes src as JPEG at quality into outDir and returns the new path
	CompressFile(src string, quality int, outDir string) (string, error)
}

// jpegCompressor implements the ImageCompressor interface
type jpegCompressor struct {
	metadata  MetadataWriter
	maxFileMB float64
}

// NewImageCompressor creates a new ImageCompressor instance.
// metadata may be nil, in which case compressed copies carry no EXIF data.
func NewImageCompressor(metadata MetadataWriter) ImageCompressor {
	return &jpegCompressor{
		metadata:  metadata,
		maxFileMB: MaxFileSizeMB,
	}
}

// CompressedName returns the file name a compressed copy of src is written under.
func CompressedName(src string) string {
	return CompressedPrefix + filepath.Base(src)
}

// clampQuality maps quality into the range accepted by the JPEG encoder
func clampQuality(quality int) int {
	return max(1, min(quality, 100))
}

// CompressFile decodes src and writes it as JPEG into outDir
func (c *jpegCompressor) CompressFile(src string, quality int, outDir string) (string, error) {
	info, err := isValidFile(src, c.maxFileMB)
	if err != nil {
		return "", err
	}

	file, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", src, err)
	}
	file.Close()
	logger.Debug("Decoded image", "path", src, "format", format, "bounds", img.Bounds().Size())

	dst := filepath.Join(outDir, CompressedName(src))
	tmpPath := dst + ".tmp"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpPath)

	opts := &jpeg.Options{Quality: clampQuality(quality)}
	if err := jpeg.Encode(outFile, img, opts); err != nil {
		outFile.Close()
		return "", fmt.Errorf("failed to encode %s: %w", src, err)
	}
	if err := outFile.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return "", err
	}

	if c.metadata != nil {
		if err := c.metadata.CopyMetadata(src, dst); err != nil {
			logger.Warn("Failed to copy metadata to compressed image", "source", src, "target", dst, "error", err)
		}
	}

	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return "", err
	}

	if compressed, err := os.Stat(dst); err == nil {
		logger.Debug("Compressed image", "path", dst, "size", FormatSize(compressed.Size()), "original_size", FormatSize(info.Size()))
	}
	return dst, nil
}

package saver

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/acm19/spacesaver/internal/logger"
	"github.com/barasher/go-exiftool"
)

const (
	// ExifOriginalFileName is the EXIF field name for storing the original filename
	ExifOriginalFileName = "OriginalFileName"
)

// MetadataWriter defines the interface for carrying EXIF metadata onto compressed copies
type MetadataWriter interface {
	// CopyMetadata copies the metadata of src into dst and records the
	// source file name in dst's OriginalFileName tag if it is not already set.
	CopyMetadata(src, dst string) error
}

// exifWriter implements the MetadataWriter interface
type exifWriter struct {
	et         *exiftool.Exiftool
	binary     string
	extensions Extensions
}

// NewExifWriter creates a new MetadataWriter backed by exiftool
func NewExifWriter(et *exiftool.Exiftool) MetadataWriter {
	return &exifWriter{
		et:         et,
		binary:     "exiftool",
		extensions: NewExtensions(),
	}
}

// CopyMetadata copies all tags from src to dst via the exiftool command line
func (w *exifWriter) CopyMetadata(src, dst string) error {
	if w.et == nil {
		return fmt.Errorf("exiftool not initialised")
	}

	// Only JPEG sources carry EXIF the encoder dropped
	if !w.extensions.IsJPEG(src) {
		logger.Debug("Skipping metadata copy for non-JPEG source", "file", filepath.Base(src))
		return nil
	}

	args := []string{"-TagsFromFile", src, "-all:all"}
	if !w.hasOriginalFileName(src) {
		args = append(args, "-"+ExifOriginalFileName+"="+filepath.Base(src))
	}
	// -overwrite_original prevents creating backup files
	// -P preserves the file modification date/time
	args = append(args, "-overwrite_original", "-P", dst)

	output, err := exec.Command(w.binary, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to copy metadata to %s: %w (output: %s)", dst, err, string(output))
	}

	logger.Debug("Copied metadata to compressed image", "source", filepath.Base(src), "target", filepath.Base(dst))
	return nil
}

// hasOriginalFileName reports whether path already records an original file name
func (w *exifWriter) hasOriginalFileName(path string) bool {
	fileInfos := w.et.ExtractMetadata(path)
	if len(fileInfos) == 0 || fileInfos[0].Err != nil {
		return false
	}
	_, err := fileInfos[0].GetString(ExifOriginalFileName)
	return err == nil
}

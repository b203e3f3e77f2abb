package saver

import (
	"errors"
	"io/fs"
	"os"

	"github.com/acm19/spacesaver/internal/logger"
)

// DeleteImages removes up to maxCount of the given files from disk and returns
// how many were removed. A maxCount of 0 or less removes all of them. Paths that
// no longer exist still count towards maxCount.
func DeleteImages(paths []string, maxCount int) int {
	if maxCount <= 0 || maxCount > len(paths) {
		maxCount = len(paths)
	}

	deleted := 0
	for _, path := range paths[:maxCount] {
		if DeleteImage(path) {
			deleted++
		}
	}
	logger.Info("Deleted original images", "requested", maxCount, "deleted", deleted)
	return deleted
}

// DeleteImage removes a single file if it exists and reports whether it did.
func DeleteImage(path string) bool {
	err := os.Remove(path)
	if err == nil {
		return true
	}
	if !errors.Is(err, fs.ErrNotExist) {
		logger.Error("Failed to delete image", "path", path, "error", err)
	}
	return false
}

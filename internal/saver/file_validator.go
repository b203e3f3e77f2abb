package saver

import (
	"fmt"
	"os"
)

// isValidFile checks if a file exists, is not empty and is at most maxMB megabytes.
// A maxMB of 0 disables the size ceiling.
func isValidFile(filePath string, maxMB float64) (os.FileInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is 0 bytes (corrupted)")
	}
	if maxMB > 0 && SizeInMegabytes(info.Size()) > maxMB {
		return nil, fmt.Errorf("file is %s, above the %.0f MB limit", FormatSize(info.Size()), maxMB)
	}
	return info, nil
}

package saver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/acm19/spacesaver/internal/logger"
)

// MediaIndex defines the interface for listing photos on a storage root.
type MediaIndex interface {
	// CameraImages returns the largest compressible images directly inside the camera folder.
	CameraImages(ctx context.Context) ([]Image, error)
	// ByBucket returns the largest compressible images whose folder has the given bucket id.
	ByBucket(ctx context.Context, bucketID string) ([]Image, error)
}

// mediaIndex implements the MediaIndex interface
type mediaIndex struct {
	root       string
	maxImages  int
	maxFileMB  float64
	extensions Extensions
}

// NewMediaIndex creates a MediaIndex over root using the default pass limits
func NewMediaIndex(root string) MediaIndex {
	return NewMediaIndexWithLimits(root, MaxImagesToCompress, MaxFileSizeMB)
}

// NewMediaIndexWithLimits creates a MediaIndex with a custom image count and file size ceiling
func NewMediaIndexWithLimits(root string, maxImages int, maxFileMB float64) MediaIndex {
	return &mediaIndex{
		root:       root,
		maxImages:  maxImages,
		maxFileMB:  maxFileMB,
		extensions: NewExtensions(),
	}
}

// CameraDir returns the camera folder under a storage root.
func CameraDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(CameraFolder))
}

// CameraImages lists the camera folder, largest files first. Subfolders are not
// listed, so every image has a distinct file name.
func (m *mediaIndex) CameraImages(ctx context.Context) ([]Image, error) {
	dir := CameraDir(m.root)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Info("Camera folder not found, nothing to index", "path", dir)
		return nil, nil
	}
	images, err := m.collect(ctx, dir, false, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Total number of images fetched", "folder", dir, "count", len(images))
	return m.selectImages(images), nil
}

// ByBucket lists every folder under the root and keeps those matching bucketID
func (m *mediaIndex) ByBucket(ctx context.Context, bucketID string) ([]Image, error) {
	images, err := m.collect(ctx, m.root, true, func(img Image) bool {
		return img.BucketID == bucketID
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Total number of images fetched", "bucket", bucketID, "count", len(images))
	return m.selectImages(images), nil
}

// collect lists dir, and its subfolders when recursive is set, returning every
// supported image accepted by keep
func (m *mediaIndex) collect(ctx context.Context, dir string, recursive bool, keep func(Image) bool) ([]Image, error) {
	compressedDir := filepath.Join(m.root, CompressedImageFolder)
	var images []Image

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				logger.Debug("Skipping unreadable path", "path", path, "error", err)
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip dot files and dot directories
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == compressedDir || (!recursive && path != dir) {
				return filepath.SkipDir
			}
			return nil
		}

		if !m.extensions.IsImage(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Debug("Failed to stat image", "path", path, "error", err)
			return nil
		}

		img := Image{Path: path, Size: info.Size(), BucketID: bucketOf(path)}
		if keep == nil || keep(img) {
			images = append(images, img)
		}
		return nil
	})
	return images, err
}

// selectImages orders images by size, largest first, and keeps at most maxImages
// that are neither empty nor above the size ceiling. A maxImages of 0 keeps all.
func (m *mediaIndex) selectImages(images []Image) []Image {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Size != images[j].Size {
			return images[i].Size > images[j].Size
		}
		return images[i].Path < images[j].Path
	})

	limit := m.maxImages
	if limit <= 0 {
		limit = len(images)
	}

	result := make([]Image, 0, min(len(images), limit))
	for _, img := range images {
		if len(result) >= limit {
			break
		}
		if img.Size == 0 || (m.maxFileMB > 0 && SizeInMegabytes(img.Size) > m.maxFileMB) {
			logger.Debug("Skipping image", "path", img.Path, "size", FormatSize(img.Size))
			continue
		}
		result = append(result, img)
	}
	return result
}

// Paths returns the file paths of images in order.
func Paths(images []Image) []string {
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.Path
	}
	return paths
}

package saver

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/acm19/spacesaver/internal/logger"
)

// BatchCompressor defines the interface for compressing a list of images
type BatchCompressor interface {
	// CompressImages compresses every path into opts.OutputDir.
	//
	// The returned pairs keep the order of paths. A file that fails to
	// compress is logged and yields a Pair with an empty Compressed path,
	// as does a file whose compressed name is already taken by an earlier
	// path in the batch;
	// only a cancelled context or an unusable output directory fail the batch.
	CompressImages(ctx context.Context, paths []string, opts CompressOptions) ([]Pair, error)
}

// batchCompressor implements the BatchCompressor interface
type batchCompressor struct {
	compressor ImageCompressor
}

// NewBatchCompressor creates a BatchCompressor around a single-file compressor
func NewBatchCompressor(compressor ImageCompressor) BatchCompressor {
	return &batchCompressor{compressor: compressor}
}

type indexedPath struct {
	index int
	path  string
}

// CompressImages compresses paths in parallel using a worker pool
func (b *batchCompressor) CompressImages(ctx context.Context, paths []string, opts CompressOptions) ([]Pair, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", opts.OutputDir, err)
	}
	logger.Info("Compressing images", "count", len(paths), "quality", opts.Quality, "output", opts.OutputDir)

	jobs := make([]indexedPath, len(paths))
	for i, path := range paths {
		jobs[i] = indexedPath{index: i, path: path}
	}
	claimedBy := claimOutputNames(paths)

	pairs := make([]Pair, len(paths))
	var processedCount atomic.Int64
	total := len(paths)

	err := runWorkerPool(jobs, opts.MaxConcurrency, func(job indexedPath) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		pair := Pair{Source: job.path}
		if owner := claimedBy[job.index]; owner != job.index {
			logger.Warn("Skipping image with a duplicate file name", "path", job.path, "kept", paths[owner])
		} else if compressed, err := b.compressor.CompressFile(job.path, opts.Quality, opts.OutputDir); err != nil {
			logger.Error("Compression of image failed", "path", job.path, "error", err)
		} else {
			pair.Compressed = compressed
		}
		pairs[job.index] = pair

		current := int(processedCount.Add(1))
		emitProgress(opts.ProgressChan, ProgressEvent{
			Stage:   "compressing",
			Percent: 10 + current*90/total,
			Current: current,
			Total:   total,
			Message: fmt.Sprintf("Compressing image %d of %d", current, total),
			File:    job.path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compression cancelled: %w", err)
	}

	logger.Info("Image compression done", "count", len(pairs))
	return pairs, nil
}

// claimOutputNames maps each path to the index of the first path sharing its
// compressed file name. Names are compared case-insensitively.
func claimOutputNames(paths []string) []int {
	first := make(map[string]int, len(paths))
	owners := make([]int, len(paths))
	for i, path := range paths {
		name := strings.ToLower(CompressedName(path))
		owner, taken := first[name]
		if !taken {
			owner = i
			first[name] = i
		}
		owners[i] = owner
	}
	return owners
}

// emitProgress sends an event without blocking the caller
func emitProgress(progressChan chan<- ProgressEvent, event ProgressEvent) {
	if progressChan == nil {
		return
	}
	select {
	case progressChan <- event:
	default:
		logger.Debug("Progress event dropped (channel full)", "stage", event.Stage)
	}
}

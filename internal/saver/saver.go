package saver

import (
	"context"
	"fmt"
	"time"

	"github.com/acm19/spacesaver/internal/logger"
)

// PassOptions configures a full list-compress-cleanup pass.
type PassOptions struct {
	CompressOptions
	// DeleteOriginals removes each original once its compressed copy exists
	// (and, with an archiver, once it has been archived).
	DeleteOriginals bool
}

// PassResult reports what a pass did.
type PassResult struct {
	// ID identifies the pass in logs and in the manifest.
	ID      string
	Images  []Image
	Pairs   []Pair
	Savings Savings
	Deleted int
}

// SpaceSaver runs compression passes over the camera folder.
type SpaceSaver struct {
	index    MediaIndex
	batch    BatchCompressor
	archiver Archiver
}

// NewSpaceSaver creates a SpaceSaver. archiver may be nil to delete originals without keeping a copy.
func NewSpaceSaver(index MediaIndex, batch BatchCompressor, archiver Archiver) *SpaceSaver {
	return &SpaceSaver{
		index:    index,
		batch:    batch,
		archiver: archiver,
	}
}

// RunPass lists the camera images, compresses them, records a manifest in the
// output folder and optionally removes the originals.
func (s *SpaceSaver) RunPass(ctx context.Context, opts PassOptions) (PassResult, error) {
	emitProgress(opts.ProgressChan, ProgressEvent{
		Stage:   "fetching",
		Percent: 10,
		Message: "Fetching images from the device...",
	})

	images, err := s.index.CameraImages(ctx)
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to list camera images: %w", err)
	}
	result := PassResult{ID: newPassID(), Images: images}
	if len(images) == 0 {
		logger.Info("No images to compress")
		emitProgress(opts.ProgressChan, ProgressEvent{Stage: "done", Percent: 100, Message: "No images found"})
		return result, nil
	}

	logger.Info("Begin compressing images", "pass", result.ID, "count", len(images), "quality", opts.Quality)
	pairs, err := s.batch.CompressImages(ctx, Paths(images), opts.CompressOptions)
	if err != nil {
		return result, err
	}
	result.Pairs = pairs
	result.Savings = CalculateSpaceSaved(pairs)

	manifest := Manifest{ID: result.ID, CreatedAt: time.Now(), Quality: opts.Quality, Pairs: pairs}
	if err := SaveManifest(opts.OutputDir, manifest); err != nil {
		logger.Warn("Failed to record pass manifest", "dir", opts.OutputDir, "error", err)
	}

	if opts.DeleteOriginals {
		result.Deleted = s.deleteOriginals(ctx, pairs)
	}

	emitProgress(opts.ProgressChan, ProgressEvent{
		Stage:   "done",
		Percent: 100,
		Current: len(pairs),
		Total:   len(pairs),
		Message: fmt.Sprintf("%d images compressed", len(pairs)),
	})
	logger.Info("Compression pass complete", "pass", result.ID, "images", len(pairs), "savings", result.Savings.String(), "deleted", result.Deleted)
	return result, nil
}

// deleteOriginals removes the sources that have a compressed copy, archiving them first if configured
func (s *SpaceSaver) deleteOriginals(ctx context.Context, pairs []Pair) int {
	var candidates []string
	for _, pair := range pairs {
		if pair.Compressed != "" {
			candidates = append(candidates, pair.Source)
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	if s.archiver != nil {
		archived, err := s.archiver.ArchiveFiles(ctx, candidates)
		if err != nil {
			logger.Warn("Some originals were not archived and will be kept", "kept", len(candidates)-len(archived), "error", err)
		}
		candidates = archived
	}
	return DeleteImages(candidates, 0)
}

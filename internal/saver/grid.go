package saver

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/acm19/spacesaver/internal/logger"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// ThumbnailWidth is the width of a grid cell.
	ThumbnailWidth = 200
	// ThumbnailHeight is the height of a grid cell.
	ThumbnailHeight = 200
	// ThumbnailPadding is the inset of the image inside a grid cell.
	ThumbnailPadding = 8
	// sheetDecoders bounds how many thumbnails a contact sheet decodes at once.
	sheetDecoders = 4
)

// Thumbnail is a decoded, downscaled image and the file it came from.
type Thumbnail struct {
	Image  image.Image
	Source string
}

type gridSlot struct {
	loaded bool
	thumb  *Thumbnail
}

// Grid lays out before/after thumbnails for a list of pairs.
//
// Even positions show the original of pair i/2 and odd positions its
// compressed copy. Thumbnails are decoded on first access and kept for
// the lifetime of the grid or until Reset. Concurrent requests for the
// same position share one decode.
type Grid struct {
	mu         sync.Mutex
	pairs      []Pair
	slots      []gridSlot
	generation int
	decodes    singleflight.Group
}

// NewGrid creates a Grid over pairs.
func NewGrid(pairs []Pair) *Grid {
	g := &Grid{}
	g.Reset(pairs)
	return g
}

// Reset replaces the pairs shown by the grid and drops every decoded thumbnail.
// Decodes still running for the old pairs are discarded when they finish.
func (g *Grid) Reset(pairs []Pair) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pairs = pairs
	g.slots = make([]gridSlot, len(pairs)*2)
	g.generation++
}

// Len returns the number of grid positions.
func (g *Grid) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

// PathAt returns the file shown at position.
func (g *Grid) PathAt(position int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pathAt(position)
}

func (g *Grid) pathAt(position int) string {
	pair := g.pairs[position/2]
	if position%2 == 0 {
		return pair.Source
	}
	return pair.Compressed
}

// Item returns the thumbnail at position, decoding it on first use.
// It returns nil when the file is gone (for example an original deleted
// after compression) or cannot be decoded.
func (g *Grid) Item(position int) *Thumbnail {
	g.mu.Lock()
	if position < 0 || position >= len(g.slots) {
		g.mu.Unlock()
		return nil
	}
	if slot := g.slots[position]; slot.loaded {
		g.mu.Unlock()
		return slot.thumb
	}
	path := g.pathAt(position)
	generation := g.generation
	g.mu.Unlock()

	key := fmt.Sprintf("%d/%d", generation, position)
	v, _, _ := g.decodes.Do(key, func() (any, error) {
		// Another caller may have finished this decode since the check above
		g.mu.Lock()
		if g.generation == generation && g.slots[position].loaded {
			thumb := g.slots[position].thumb
			g.mu.Unlock()
			return thumb, nil
		}
		g.mu.Unlock()

		thumb := loadThumbnail(path)
		g.mu.Lock()
		if g.generation == generation {
			g.slots[position] = gridSlot{loaded: true, thumb: thumb}
		}
		g.mu.Unlock()
		return thumb, nil
	})
	return v.(*Thumbnail)
}

func loadThumbnail(path string) *Thumbnail {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		logger.Debug("Thumbnail source missing", "path", path)
		return nil
	}
	img, err := DecodeSampled(path, ThumbnailWidth, ThumbnailHeight)
	if err != nil {
		logger.Warn("Failed to decode thumbnail", "path", path, "error", err)
		return nil
	}
	logger.Debug("Decoded thumbnail", "path", path, "bounds", img.Bounds().Size())
	return &Thumbnail{Image: img, Source: path}
}

// ContactSheet renders every grid position into one image, cols cells wide.
// Each image is centre-cropped to fill its padded cell; empty positions stay black.
// It stops decoding and returns the context error once ctx is done.
func (g *Grid) ContactSheet(ctx context.Context, cols int) (*image.NRGBA, error) {
	if cols <= 0 {
		cols = 2
	}
	n := g.Len()
	rows := max((n+cols-1)/cols, 1)

	thumbs := make([]*Thumbnail, n)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(sheetDecoders)
	for i := range n {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			thumbs[i] = g.Item(i)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("contact sheet cancelled: %w", err)
	}

	sheet := imaging.New(cols*ThumbnailWidth, rows*ThumbnailHeight, color.Black)
	cellW, cellH := ThumbnailWidth-2*ThumbnailPadding, ThumbnailHeight-2*ThumbnailPadding
	for i, thumb := range thumbs {
		if thumb == nil {
			continue
		}
		cell := imaging.Fill(thumb.Image, cellW, cellH, imaging.Center, imaging.Linear)
		at := image.Pt((i%cols)*ThumbnailWidth+ThumbnailPadding, (i/cols)*ThumbnailHeight+ThumbnailPadding)
		sheet = imaging.Paste(sheet, cell, at)
	}
	return sheet, nil
}

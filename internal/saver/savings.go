package saver

import (
	"fmt"
	"os"
)

// Savings summarises the space reclaimed by a set of compressed images.
type Savings struct {
	OriginalBytes   int64
	CompressedBytes int64
	// PercentSaved is the saved share of OriginalBytes, truncated to a whole percent.
	PercentSaved int64
}

// SavedBytes returns how many bytes the compressed copies save over the originals.
func (s Savings) SavedBytes() int64 {
	return s.OriginalBytes - s.CompressedBytes
}

// String formats the savings the way the compress summary reports them.
func (s Savings) String() string {
	return fmt.Sprintf("Original files capacity : %s Compressed files capacity : %s Total Savings : [ %d %%]",
		FormatSize(s.OriginalBytes), FormatSize(s.CompressedBytes), s.PercentSaved)
}

// CalculateSpaceSaved sums the on-disk sizes of each pair's files.
// Missing files count as 0 bytes and pairs without a compressed copy are ignored.
func CalculateSpaceSaved(pairs []Pair) Savings {
	var sizes []SizePair
	for _, pair := range pairs {
		if pair.Compressed == "" {
			continue
		}
		sizes = append(sizes, SizePair{
			Original:   fileLength(pair.Source),
			Compressed: fileLength(pair.Compressed),
		})
	}
	return SumSavings(sizes)
}

// SizePair holds the byte sizes of an original image and its compressed copy.
type SizePair struct {
	Original   int64
	Compressed int64
}

// SumSavings totals size pairs and computes the whole percent saved.
// An empty or zero-sized total reports 0%.
func SumSavings(sizes []SizePair) Savings {
	var s Savings
	for _, size := range sizes {
		s.OriginalBytes += size.Original
		s.CompressedBytes += size.Compressed
	}
	if s.OriginalBytes > 0 {
		s.PercentSaved = s.SavedBytes() * 100 / s.OriginalBytes
	}
	return s
}

// fileLength returns the size of path, or 0 if it cannot be read
func fileLength(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

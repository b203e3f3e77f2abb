package saver

import (
	"fmt"

	"github.com/acm19/spacesaver/internal/logger"
)

// Capacity describes the space on one or more filesystems.
type Capacity struct {
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns the space not available for new files.
func (c Capacity) UsedBytes() int64 {
	return c.TotalBytes - c.FreeBytes
}

// UsedPercent returns the used share of the total as a whole percent, or 0 for an empty total.
func (c Capacity) UsedPercent() int64 {
	if c.TotalBytes <= 0 {
		return 0
	}
	return c.UsedBytes() * 100 / c.TotalBytes
}

// String formats the capacity as shown by the capacity command.
func (c Capacity) String() string {
	return fmt.Sprintf("Total : %s Available : %s Used : %s  [ %d%%used ]",
		FormatSize(c.TotalBytes), FormatSize(c.FreeBytes), FormatSize(c.UsedBytes()), c.UsedPercent())
}

// CapacityProbe defines the interface for measuring storage usage
type CapacityProbe interface {
	// Capacity returns the combined capacity of the filesystems holding paths.
	// Paths on the same filesystem are counted once.
	Capacity(paths ...string) (Capacity, error)
}

// statfsProbe implements the CapacityProbe interface using statfs
type statfsProbe struct{}

// NewCapacityProbe creates a CapacityProbe for the host filesystems
func NewCapacityProbe() CapacityProbe {
	return &statfsProbe{}
}

// filesystemUsage is one filesystem's block counts, keyed by an identity string
type filesystemUsage struct {
	id    string
	total uint64
	free  uint64
}

// Capacity sums the usage of each distinct filesystem behind paths
func (p *statfsProbe) Capacity(paths ...string) (Capacity, error) {
	seen := make(map[string]bool)
	var c Capacity
	for _, path := range paths {
		usage, err := statFilesystem(path)
		if err != nil {
			return Capacity{}, fmt.Errorf("failed to stat filesystem for %s: %w", path, err)
		}
		if seen[usage.id] {
			logger.Debug("Filesystem already counted", "path", path)
			continue
		}
		seen[usage.id] = true
		c.TotalBytes += int64(usage.total)
		c.FreeBytes += int64(usage.free)
	}
	logger.Debug("Measured capacity", "total", c.TotalBytes, "free", c.FreeBytes, "used_percent", c.UsedPercent())
	return c, nil
}

package saver

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/acm19/spacesaver/internal/logger"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// PassRunner defines the interface for running a compression pass
type PassRunner interface {
	RunPass(ctx context.Context, opts PassOptions) (PassResult, error)
}

// MonitorConfig configures a space Monitor.
type MonitorConfig struct {
	// Runner performs compression passes.
	Runner PassRunner
	// Probe measures storage usage.
	Probe CapacityProbe
	// Paths are the locations whose filesystems are measured.
	Paths []string
	// Threshold is the used-space percent at or above which a pass runs.
	Threshold int
	// Pass is handed to every compression pass.
	Pass PassOptions
	// Delays are the waits between iterations.
	Delays MonitorDelays
	// WatchDir, when set, wakes the monitor early on new files.
	WatchDir string
}

// Monitor keeps storage usage under a threshold by compressing camera images.
type Monitor struct {
	cfg  MonitorConfig
	wake chan struct{}
}

// NewMonitor creates a Monitor from cfg.
func NewMonitor(cfg MonitorConfig) *Monitor {
	return &Monitor{
		cfg:  cfg,
		wake: make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled. Iterations never overlap.
func (m *Monitor) Run(ctx context.Context) error {
	logger.Info("Starting space monitor", "threshold", m.cfg.Threshold, "quality", m.cfg.Pass.Quality, "delete_originals", m.cfg.Pass.DeleteOriginals)

	g, ctx := errgroup.WithContext(ctx)
	if m.cfg.WatchDir != "" {
		g.Go(func() error {
			m.watch(ctx)
			return nil
		})
	}
	g.Go(func() error {
		return m.loop(ctx)
	})

	err := g.Wait()
	logger.Info("Space monitor stopped")
	return err
}

func (m *Monitor) loop(ctx context.Context) error {
	for {
		delay := m.Step(ctx)
		if ctx.Err() != nil {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-m.wake:
			timer.Stop()
			logger.Debug("Monitor woken by new files")
		case <-timer.C:
		}
	}
}

// Step runs one iteration and returns how long to wait before the next.
func (m *Monitor) Step(ctx context.Context) time.Duration {
	threshold := int64(m.cfg.Threshold)

	capacity, err := m.cfg.Probe.Capacity(m.cfg.Paths...)
	if err != nil {
		logger.Error("Failed to measure storage usage", "error", err)
		return m.cfg.Delays.Idle
	}
	used := capacity.UsedPercent()
	if used < threshold {
		logger.Info("No compression required", "used_percent", used, "threshold", threshold)
		return m.cfg.Delays.Idle
	}

	logger.Info("Space used before compression", "used_percent", used, "threshold", threshold)
	result, err := m.cfg.Runner.RunPass(ctx, m.cfg.Pass)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Compression pass failed", "error", err)
		}
		return m.cfg.Delays.NoImages
	}
	if len(result.Images) == 0 {
		return m.cfg.Delays.NoImages
	}

	capacity, err = m.cfg.Probe.Capacity(m.cfg.Paths...)
	if err != nil {
		logger.Error("Failed to measure storage usage", "error", err)
		return m.cfg.Delays.Retry
	}
	used = capacity.UsedPercent()
	logger.Info("Space used after compression", "used_percent", used, "threshold", threshold)

	if used >= threshold {
		// Still above the threshold, compress again soon
		return m.cfg.Delays.Retry
	}
	return m.cfg.Delays.Settled
}

// watch signals the loop whenever files are created in the watched folder
func (m *Monitor) watch(ctx context.Context) {
	if info, err := os.Stat(m.cfg.WatchDir); err != nil || !info.IsDir() {
		logger.Warn("Watch folder not found, relying on polling only", "path", m.cfg.WatchDir)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("Failed to create file watcher, relying on polling only", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(m.cfg.WatchDir); err != nil {
		logger.Warn("Failed to watch folder, relying on polling only", "path", m.cfg.WatchDir, "error", err)
		return
	}
	logger.Debug("Watching folder for new images", "path", m.cfg.WatchDir)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				select {
				case m.wake <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error", "error", err)
		}
	}
}

package saver

import "time"

const (
	// CompressedImageFolder is the folder, under the storage root, holding compressed copies.
	CompressedImageFolder = "CompressedImages"
	// CompressedPrefix is prepended to the source file name of every compressed copy.
	CompressedPrefix = "compressed_"
	// CameraFolder is the camera roll location relative to the storage root.
	CameraFolder = "DCIM/Camera"
	// MaxImagesToCompress bounds how many images a single pass picks up.
	MaxImagesToCompress = 15
	// MaxFileSizeMB is the largest source file, in megabytes, a pass will decode.
	MaxFileSizeMB = 8
)

// Pair links a source image to its compressed copy.
// Compressed is empty when compressing Source failed.
type Pair struct {
	Source     string `yaml:"source"`
	Compressed string `yaml:"compressed"`
}

// Image is a photo found by the index.
type Image struct {
	// Path is the absolute path to the file.
	Path string
	// Size is the file length in bytes.
	Size int64
	// BucketID identifies the folder holding the file.
	BucketID string
}

// CompressOptions holds configuration options for a compression pass.
type CompressOptions struct {
	// Quality is the JPEG quality used for re-encoding (1-100).
	Quality int
	// OutputDir receives the compressed copies.
	OutputDir string
	// MaxConcurrency is the maximum number of images compressed at once (0 = one per CPU).
	MaxConcurrency int
	// ProgressChan is an optional channel for receiving progress events.
	ProgressChan chan<- ProgressEvent
}

// DefaultCompressOptions returns the default compression options.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		Quality:        80,
		OutputDir:      CompressedImageFolder,
		MaxConcurrency: 4,
		ProgressChan:   nil,
	}
}

// ProgressEvent represents a progress update during a compression pass.
type ProgressEvent struct {
	// Stage indicates the current processing stage ("fetching", "compressing", "done").
	Stage string
	// Percent is the overall progress from 0 to 100.
	Percent int
	// Current is the number of images processed so far.
	Current int
	// Total is the total number of images to process.
	Total int
	// Message is a human-readable description of the current operation.
	Message string
	// File is the path of the file currently being processed.
	File string
}

// MonitorDelays controls how long the monitor waits between passes.
type MonitorDelays struct {
	// Idle is the wait when usage is below the threshold.
	Idle time.Duration
	// NoImages is the wait when there was nothing to compress.
	NoImages time.Duration
	// Retry is the wait after a pass that left usage at or above the threshold.
	Retry time.Duration
	// Settled is the wait after a pass that brought usage below the threshold.
	Settled time.Duration
}

// DefaultMonitorDelays returns the polling delays used by the space monitor.
func DefaultMonitorDelays() MonitorDelays {
	return MonitorDelays{
		Idle:     time.Second,
		NoImages: 10 * time.Second,
		Retry:    2 * time.Second,
		Settled:  10 * time.Second,
	}
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/acm19/spacesaver/internal/saver"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// renderImages prints one indexed image per line with its size
func renderImages(w io.Writer, images []saver.Image) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tBUCKET\tPATH")
	for _, img := range images {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", saver.FormatSize(img.Size), img.BucketID, img.Path)
	}
	fmt.Fprintf(tw, "%d images\t\t\n", len(images))
	return tw.Flush()
}

// renderComparison prints the chart series side by side
func renderComparison(w io.Writer, c saver.Comparison) error {
	fmt.Fprintln(w, c.Title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s (%s)\t%s (%s)\t\n", c.XTitle, c.Original.Title, c.Unit, c.Compressed.Title, c.Unit)
	for i, point := range c.Original.Points {
		compressed := 0.0
		if i < len(c.Compressed.Points) {
			compressed = c.Compressed.Points[i].Y
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t\n", point.X, point.Y, compressed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Y axis: 0 - %.2f %s\n", c.YMax, c.Unit)
	return err
}

// renderComparisonYAML prints the chart data for an external plotting tool
func renderComparisonYAML(w io.Writer, c saver.Comparison) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// formatProgress renders a progress event as a single status line
func formatProgress(event saver.ProgressEvent) string {
	if event.File != "" {
		return fmt.Sprintf("[%3d%%] %s: %s", event.Percent, event.Message, event.File)
	}
	return fmt.Sprintf("[%3d%%] %s", event.Percent, event.Message)
}

// reportProgress prints events sent on the returned channel until it is closed,
// as a progress bar or, with lines set, one status line per event.
// The second channel is closed once every event has been printed.
func reportProgress(w io.Writer, lines bool) (chan saver.ProgressEvent, <-chan struct{}) {
	progress := make(chan saver.ProgressEvent, 32)
	done := make(chan struct{})

	var bar *progressbar.ProgressBar
	if !lines {
		bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Compressing"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}

	go func() {
		defer close(done)
		for event := range progress {
			if bar == nil {
				fmt.Fprintln(w, formatProgress(event))
				continue
			}
			bar.Describe(event.Message)
			_ = bar.Set(event.Percent)
		}
		if bar != nil {
			_ = bar.Finish()
		}
	}()
	return progress, done
}

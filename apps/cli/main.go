package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/acm19/spacesaver/apps/cli/completion"
	"github.com/acm19/spacesaver/internal/config"
	"github.com/acm19/spacesaver/internal/logger"
	"github.com/acm19/spacesaver/internal/saver"
	"github.com/barasher/go-exiftool"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "spacesaver",
	Short:   "Reclaim storage by recompressing camera photos",
	Long:    `Spacesaver lists camera photos, recompresses them at a chosen JPEG quality and reports the space saved.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetDebug(true)
		}
	},
}

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show total, available and used storage",
	Args:  cobra.NoArgs,
	Run:   runCapacity,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the camera photos the next pass would compress",
	Long:  `Lists the largest photos in DCIM/Camera, skipping empty files and files over 8 MB, up to 15 per pass.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress camera photos",
	Long:  `Re-encodes camera photos as JPEG into the CompressedImages folder and reports the space saved.`,
	Args:  cobra.NoArgs,
	Run:   runCompress,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compare original and compressed sizes of the last pass",
	Args:  cobra.NoArgs,
	Run:   runStats,
}

var gridCmd = &cobra.Command{
	Use:   "grid OUTPUT.png",
	Short: "Render before/after thumbnails of the last pass",
	Long:  `Writes a contact sheet with each original next to its compressed copy.`,
	Args:  cobra.ExactArgs(1),
	Run:   runGrid,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Compress photos whenever storage usage reaches the threshold",
	Args:  cobra.NoArgs,
	Run:   runMonitor,
}

var (
	configPath    string
	verbose       bool
	imageQuality  int
	deleteImages  bool
	outputDir     string
	backupBucket  string
	spaceLimit    int
	statsFormat   string
	gridColumns   int
	maxConcurrent int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Preferences file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output (same as DEBUG=1)")

	// Compress command flags
	compressCmd.Flags().IntVarP(&imageQuality, "quality", "q", 80, "JPEG quality (0-100)")
	compressCmd.Flags().BoolVarP(&deleteImages, "delete", "d", false, "Delete originals after compressing")
	compressCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Folder for compressed copies (default STORAGE_ROOT/CompressedImages)")
	compressCmd.Flags().StringVar(&backupBucket, "bucket", "", "S3 bucket to archive originals in before deleting")
	compressCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "c", 4, "Maximum concurrent compressions")

	// Monitor command flags
	monitorCmd.Flags().IntVarP(&imageQuality, "quality", "q", 80, "JPEG quality (0-100)")
	monitorCmd.Flags().BoolVarP(&deleteImages, "delete", "d", false, "Delete originals after compressing")
	monitorCmd.Flags().IntVarP(&spaceLimit, "threshold", "t", 90, "Used space percent that triggers compression")
	monitorCmd.Flags().StringVar(&backupBucket, "bucket", "", "S3 bucket to archive originals in before deleting")

	// Report command flags
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "table", "Output format (table or yaml)")
	gridCmd.Flags().IntVar(&gridColumns, "cols", 2, "Thumbnails per row")
	for _, cmd := range []*cobra.Command{statsCmd, gridCmd} {
		cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Folder the pass was compressed into (default STORAGE_ROOT/CompressedImages)")
	}

	rootCmd.AddCommand(capacityCmd, listCmd, compressCmd, statsCmd, gridCmd, monitorCmd, newConfigCmd())

	// Add autocomplete commands
	rootCmd.AddCommand(completion.NewInstallCmd(rootCmd))
	rootCmd.AddCommand(completion.NewUninstallCmd(rootCmd))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadPreferences reads the preferences file and applies the flags the user set explicitly
func loadPreferences(cmd *cobra.Command) config.Preferences {
	store, err := config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load preferences", "error", err)
		os.Exit(1)
	}
	prefs, err := store.Preferences()
	if err != nil {
		logger.Error("Invalid preferences", "path", store.Path(), "error", err)
		os.Exit(1)
	}
	applyFlags(cmd, &prefs)
	if err := prefs.Validate(); err != nil {
		logger.Error("Invalid option", "error", err)
		os.Exit(1)
	}
	return prefs
}

// applyFlags overrides preferences with flags changed on the command line
func applyFlags(cmd *cobra.Command, prefs *config.Preferences) {
	flags := cmd.Flags()
	if flags.Changed("quality") {
		prefs.ImageQuality = imageQuality
	}
	if flags.Changed("delete") {
		prefs.DeleteImages = deleteImages
	}
	if flags.Changed("threshold") {
		prefs.SpaceThreshold = spaceLimit
	}
	if flags.Changed("bucket") {
		prefs.BackupBucket = backupBucket
	}
	if flags.Changed("max-concurrent") {
		prefs.MaxConcurrency = maxConcurrent
	}
}

// resolveOutputDir returns the folder compressed copies go to
func resolveOutputDir(prefs config.Preferences, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(prefs.StorageRoot, saver.CompressedImageFolder)
}

// capacityPaths returns the locations whose filesystems make up device storage
func capacityPaths(prefs config.Preferences) []string {
	return append([]string{prefs.StorageRoot}, prefs.ExtraPaths...)
}

// newSpaceSaver wires the index, compressor and optional archiver for prefs.
// The returned cleanup releases exiftool when metadata preservation is on.
func newSpaceSaver(ctx context.Context, prefs config.Preferences) (*saver.SpaceSaver, func(), error) {
	cleanup := func() {}

	var metadata saver.MetadataWriter
	if prefs.PreserveMetadata {
		et, err := exiftool.NewExiftool()
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to initialise exiftool: %w", err)
		}
		cleanup = func() { et.Close() }
		metadata = saver.NewExifWriter(et)
	}

	var archiver saver.Archiver
	if prefs.DeleteImages && prefs.BackupBucket != "" {
		a, err := saver.NewS3Archiver(ctx, prefs.BackupBucket, prefs.BackupPrefix, prefs.MaxConcurrency)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		archiver = a
	}

	index := saver.NewMediaIndex(prefs.StorageRoot)
	batch := saver.NewBatchCompressor(saver.NewImageCompressor(metadata))
	return saver.NewSpaceSaver(index, batch, archiver), cleanup, nil
}

func passOptions(prefs config.Preferences, outDir string) saver.PassOptions {
	opts := saver.DefaultCompressOptions()
	opts.Quality = prefs.ImageQuality
	opts.OutputDir = outDir
	opts.MaxConcurrency = prefs.MaxConcurrency
	return saver.PassOptions{CompressOptions: opts, DeleteOriginals: prefs.DeleteImages}
}

func runCapacity(cmd *cobra.Command, args []string) {
	prefs := loadPreferences(cmd)

	capacity, err := saver.NewCapacityProbe().Capacity(capacityPaths(prefs)...)
	if err != nil {
		logger.Error("Failed to measure capacity", "error", err)
		os.Exit(1)
	}
	fmt.Println(capacity.String())
}

func runList(cmd *cobra.Command, args []string) {
	prefs := loadPreferences(cmd)

	images, err := saver.NewMediaIndex(prefs.StorageRoot).CameraImages(cmd.Context())
	if err != nil {
		logger.Error("Failed to list camera images", "error", err)
		os.Exit(1)
	}
	if err := renderImages(os.Stdout, images); err != nil {
		logger.Error("Failed to print images", "error", err)
		os.Exit(1)
	}
}

func runCompress(cmd *cobra.Command, args []string) {
	prefs := loadPreferences(cmd)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spaceSaver, cleanup, err := newSpaceSaver(ctx, prefs)
	if err != nil {
		logger.Error("Failed to initialise compression", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	progress, done := reportProgress(os.Stderr, verbose)

	opts := passOptions(prefs, resolveOutputDir(prefs, outputDir))
	opts.ProgressChan = progress

	logger.Info("Image compression started", "root", prefs.StorageRoot, "quality", opts.Quality, "output", opts.OutputDir)
	result, err := spaceSaver.RunPass(ctx, opts)
	close(progress)
	<-done
	if err != nil {
		logger.Error("Compression failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%d images compressed successfully...\n%s\n", len(result.Pairs), result.Savings.String())
	if opts.DeleteOriginals {
		fmt.Printf("%d original images deleted\n", result.Deleted)
	}
}

// loadLastPass reads the manifest of the last pass compressed into the output folder
func loadLastPass(prefs config.Preferences, override string) (saver.Manifest, error) {
	return saver.LoadManifest(resolveOutputDir(prefs, override))
}

func runStats(cmd *cobra.Command, args []string) {
	prefs := loadPreferences(cmd)

	manifest, err := loadLastPass(prefs, outputDir)
	if err != nil {
		logger.Error("Failed to load last pass", "error", err)
		os.Exit(1)
	}
	if len(manifest.Pairs) == 0 {
		logger.Info("No compression pass recorded yet", "dir", resolveOutputDir(prefs, outputDir))
		return
	}

	comparison := saver.BuildComparison(manifest.Pairs)
	switch statsFormat {
	case "table":
		fmt.Printf("Pass %s at %s, quality %d\n", manifest.ID, manifest.CreatedAt.Format(time.RFC3339), manifest.Quality)
		err = renderComparison(os.Stdout, comparison)
	case "yaml":
		err = renderComparisonYAML(os.Stdout, comparison)
	default:
		err = fmt.Errorf("unknown format %q (expected table or yaml)", statsFormat)
	}
	if err != nil {
		logger.Error("Failed to print statistics", "error", err)
		os.Exit(1)
	}
	fmt.Println(saver.CalculateSpaceSaved(manifest.Pairs).String())
}

func runGrid(cmd *cobra.Command, args []string) {
	prefs := loadPreferences(cmd)
	output := args[0]

	manifest, err := loadLastPass(prefs, outputDir)
	if err != nil {
		logger.Error("Failed to load last pass", "error", err)
		os.Exit(1)
	}
	if len(manifest.Pairs) == 0 {
		logger.Info("No compression pass recorded yet", "dir", resolveOutputDir(prefs, outputDir))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheet, err := saver.NewGrid(manifest.Pairs).ContactSheet(ctx, gridColumns)
	if err != nil {
		logger.Error("Failed to render contact sheet", "error", err)
		os.Exit(1)
	}
	file, err := os.Create(output)
	if err != nil {
		logger.Error("Failed to create output file", "path", output, "error", err)
		os.Exit(1)
	}
	defer file.Close()

	if err := png.Encode(file, sheet); err != nil {
		logger.Error("Failed to encode contact sheet", "path", output, "error", err)
		os.Exit(1)
	}
	logger.Info("Contact sheet written", "path", output, "images", len(manifest.Pairs))
}

func runMonitor(cmd *cobra.Command, args []string) {
	prefs := loadPreferences(cmd)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spaceSaver, cleanup, err := newSpaceSaver(ctx, prefs)
	if err != nil {
		logger.Error("Failed to initialise compression", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	monitor := saver.NewMonitor(saver.MonitorConfig{
		Runner:    spaceSaver,
		Probe:     saver.NewCapacityProbe(),
		Paths:     capacityPaths(prefs),
		Threshold: prefs.SpaceThreshold,
		Pass:      passOptions(prefs, resolveOutputDir(prefs, "")),
		Delays:    saver.DefaultMonitorDelays(),
		WatchDir:  saver.CameraDir(prefs.StorageRoot),
	})
	if err := monitor.Run(ctx); err != nil {
		logger.Error("Monitor failed", "error", err)
		os.Exit(1)
	}
}

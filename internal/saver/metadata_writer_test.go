package saver

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/barasher/go-exiftool"
)

// createTestExiftool creates an exiftool instance for testing and ensures cleanup
func createTestExiftool(t *testing.T) *exiftool.Exiftool {
	t.Helper()
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}
	et, err := exiftool.NewExiftool()
	if err != nil {
		t.Fatalf("Failed to create exiftool: %v", err)
	}
	t.Cleanup(func() { et.Close() })
	return et
}

func readOriginalFileName(t *testing.T, et *exiftool.Exiftool, path string) string {
	t.Helper()
	infos := et.ExtractMetadata(path)
	if len(infos) == 0 || infos[0].Err != nil {
		t.Fatalf("Failed to read metadata of %s", path)
	}
	name, err := infos[0].GetString(ExifOriginalFileName)
	if err != nil {
		return ""
	}
	return name
}

func TestExifWriter_NilExiftool(t *testing.T) {
	if err := NewExifWriter(nil).CopyMetadata("a.jpg", "b.jpg"); err == nil {
		t.Error("Expected error when exiftool is not initialised")
	}
}

func TestExifWriter_CopyMetadata(t *testing.T) {
	et := createTestExiftool(t)
	tmpDir := t.TempDir()
	src := writeTestJPEG(t, filepath.Join(tmpDir, "IMG_0042.jpg"), 32, 32, 90)
	dst := writeTestJPEG(t, filepath.Join(tmpDir, "out", "compressed_IMG_0042.jpg"), 32, 32, 50)

	if err := NewExifWriter(et).CopyMetadata(src, dst); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := readOriginalFileName(t, et, dst); got != "IMG_0042.jpg" {
		t.Errorf("Expected OriginalFileName IMG_0042.jpg, got %q", got)
	}
	assertFileNotExists(t, dst+"_original")
}

func TestExifWriter_SkipsNonJPEG(t *testing.T) {
	et := createTestExiftool(t)
	tmpDir := t.TempDir()
	src := writeTestPNG(t, filepath.Join(tmpDir, "shot.png"), 16, 16)
	dst := writeTestJPEG(t, filepath.Join(tmpDir, "compressed_shot.png"), 16, 16, 50)

	before, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dst, err)
	}
	if err := NewExifWriter(et).CopyMetadata(src, dst); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	after, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dst, err)
	}
	if string(before) != string(after) {
		t.Error("Expected non-JPEG source to leave the target untouched")
	}
}

func TestCompressFile_WithExifWriter(t *testing.T) {
	et := createTestExiftool(t)
	tmpDir := t.TempDir()
	src := writeTestJPEG(t, filepath.Join(tmpDir, "holiday.jpg"), 64, 64, 95)

	dst, err := NewImageCompressor(NewExifWriter(et)).CompressFile(src, 60, tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := readOriginalFileName(t, et, dst); got != "holiday.jpg" {
		t.Errorf("Expected OriginalFileName holiday.jpg, got %q", got)
	}
}

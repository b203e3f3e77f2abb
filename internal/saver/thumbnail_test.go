package saver

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestCalculateSampleSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		reqW, reqH    int
		expected      int
	}{
		{"smaller than request", 100, 100, 200, 200, 1},
		{"equal to request", 200, 200, 200, 200, 1},
		{"just above request", 401, 401, 200, 200, 1},
		{"twice plus one", 802, 802, 200, 200, 2},
		{"camera photo", 4000, 3000, 200, 200, 8},
		{"wide panorama limited by height", 8000, 500, 200, 200, 2},
		{"tall image limited by width", 600, 4000, 200, 200, 2},
		{"large square", 3264, 3264, 200, 200, 16},
		{"only width above request", 300, 100, 200, 200, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSampleSize(tt.width, tt.height, tt.reqW, tt.reqH)
			if got != tt.expected {
				t.Errorf("CalculateSampleSize(%d, %d, %d, %d) = %d, want %d", tt.width, tt.height, tt.reqW, tt.reqH, got, tt.expected)
			}
		})
	}
}

func TestCalculateSampleSize_IsPowerOfTwo(t *testing.T) {
	for _, side := range []int{1, 250, 999, 1600, 5000, 12000} {
		got := CalculateSampleSize(side, side, 200, 200)
		if got <= 0 || got&(got-1) != 0 {
			t.Errorf("CalculateSampleSize(%d, %d) = %d, want a power of two", side, side, got)
		}
	}
}

func TestDecodeSampled(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestJPEG(t, filepath.Join(tmpDir, "large.jpg"), 1000, 800, 90)

	img, err := DecodeSampled(path, 200, 200)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Half dimensions are 500x400, and 400/2 is no longer above 200
	if size := img.Bounds().Size(); size != image.Pt(500, 400) {
		t.Errorf("Expected decoded size 500x400, got %v", size)
	}
}

func TestDecodeSampled_SmallImageUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestPNG(t, filepath.Join(tmpDir, "small.png"), 120, 90)

	img, err := DecodeSampled(path, 200, 200)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if size := img.Bounds().Size(); size != image.Pt(120, 90) {
		t.Errorf("Expected decoded size 120x90, got %v", size)
	}
}

func TestDecodeSampled_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	notImage := filepath.Join(tmpDir, "notes.jpg")
	if err := os.WriteFile(notImage, []byte("not an image"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if _, err := DecodeSampled(notImage, 200, 200); err == nil {
		t.Error("Expected error for a file that is not an image")
	}
	if _, err := DecodeSampled(filepath.Join(tmpDir, "missing.jpg"), 200, 200); err == nil {
		t.Error("Expected error for a missing file")
	}
}

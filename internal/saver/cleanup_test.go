package saver

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestDeleteImages(t *testing.T) {
	tests := []struct {
		name            string
		files           int
		maxCount        int
		expectedDeleted int
	}{
		{"delete all with zero", 3, 0, 3},
		{"delete all with negative", 3, -1, 3},
		{"delete first two", 3, 2, 2},
		{"max above count", 2, 10, 2},
		{"no files", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			var paths []string
			for i := range tt.files {
				paths = append(paths, writeSizedFile(t, filepath.Join(tmpDir, fmt.Sprintf("%d.jpg", i)), 10))
			}

			deleted := DeleteImages(paths, tt.maxCount)
			if deleted != tt.expectedDeleted {
				t.Errorf("Expected %d deleted, got %d", tt.expectedDeleted, deleted)
			}
			for i, path := range paths {
				if i < tt.expectedDeleted {
					assertFileNotExists(t, path)
				} else {
					assertFileExists(t, path)
				}
			}
		})
	}
}

func TestDeleteImages_MissingFilesCountTowardsMax(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "missing.jpg")
	present := writeSizedFile(t, filepath.Join(tmpDir, "present.jpg"), 10)
	later := writeSizedFile(t, filepath.Join(tmpDir, "later.jpg"), 10)

	deleted := DeleteImages([]string{missing, present, later}, 2)
	if deleted != 1 {
		t.Errorf("Expected 1 deleted, got %d", deleted)
	}
	assertFileNotExists(t, present)
	assertFileExists(t, later)
}

func TestDeleteImage(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeSizedFile(t, filepath.Join(tmpDir, "a.jpg"), 10)

	if !DeleteImage(path) {
		t.Error("Expected first delete to succeed")
	}
	if DeleteImage(path) {
		t.Error("Expected second delete to report nothing removed")
	}
}

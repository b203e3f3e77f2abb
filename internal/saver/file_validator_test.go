package saver

import (
	"path/filepath"
	"testing"
)

func TestIsValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	valid := writeSizedFile(t, filepath.Join(tmpDir, "valid.jpg"), 2048)
	empty := writeSizedFile(t, filepath.Join(tmpDir, "empty.jpg"), 0)
	large := writeSizedFile(t, filepath.Join(tmpDir, "large.jpg"), 3*1024*1024)

	tests := []struct {
		name      string
		path      string
		maxMB     float64
		expectErr bool
	}{
		{"valid file", valid, 8, false},
		{"empty file", empty, 8, true},
		{"missing file", filepath.Join(tmpDir, "missing.jpg"), 8, true},
		{"above limit", large, 2, true},
		{"limit disabled", large, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := isValidFile(tt.path, tt.maxMB)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if info.Size() != fileSize(t, tt.path) {
				t.Errorf("Expected size %d, got %d", fileSize(t, tt.path), info.Size())
			}
		})
	}
}

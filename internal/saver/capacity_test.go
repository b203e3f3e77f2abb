package saver

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestCapacity_Arithmetic(t *testing.T) {
	tests := []struct {
		name            string
		capacity        Capacity
		expectedUsed    int64
		expectedPercent int64
	}{
		{"empty total", Capacity{}, 0, 0},
		{"all free", Capacity{TotalBytes: 1000, FreeBytes: 1000}, 0, 0},
		{"ninety percent used", Capacity{TotalBytes: 1000, FreeBytes: 100}, 900, 90},
		{"truncates", Capacity{TotalBytes: 3, FreeBytes: 1}, 2, 66},
		{"full", Capacity{TotalBytes: 500, FreeBytes: 0}, 500, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.capacity.UsedBytes(); got != tt.expectedUsed {
				t.Errorf("Expected used %d, got %d", tt.expectedUsed, got)
			}
			if got := tt.capacity.UsedPercent(); got != tt.expectedPercent {
				t.Errorf("Expected used percent %d, got %d", tt.expectedPercent, got)
			}
		})
	}
}

func TestCapacity_String(t *testing.T) {
	c := Capacity{TotalBytes: 4 * 1024 * 1024 * 1024, FreeBytes: 1024 * 1024 * 1024}
	expected := "Total : 4.00G bytes Available : 1.00G bytes Used : 3.00G bytes  [ 75%used ]"
	if got := c.String(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestCapacityProbe_HostFilesystem(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "freebsd" && runtime.GOOS != "windows" {
		t.Skipf("capacity probe is not supported on %s", runtime.GOOS)
	}
	tmpDir := t.TempDir()
	probe := NewCapacityProbe()

	single, err := probe.Capacity(tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if single.TotalBytes <= 0 {
		t.Errorf("Expected a positive total, got %d", single.TotalBytes)
	}
	if single.FreeBytes < 0 || single.FreeBytes > single.TotalBytes {
		t.Errorf("Expected free bytes within [0, %d], got %d", single.TotalBytes, single.FreeBytes)
	}

	// Two folders on the same filesystem are counted once
	twice, err := probe.Capacity(tmpDir, filepath.Join(tmpDir, "."))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if twice.TotalBytes != single.TotalBytes {
		t.Errorf("Expected deduplicated total %d, got %d", single.TotalBytes, twice.TotalBytes)
	}
}

func TestCapacityProbe_MissingPath(t *testing.T) {
	_, err := NewCapacityProbe().Capacity(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("Expected error for a missing path")
	}
}

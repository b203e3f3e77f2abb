package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func loadStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load preferences: %v", err)
	}
	return store
}

func TestLoad_Defaults(t *testing.T) {
	store := loadStore(t, filepath.Join(t.TempDir(), "config.yaml"))

	p, err := store.Preferences()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.ImageQuality != 80 {
		t.Errorf("Expected default quality 80, got %d", p.ImageQuality)
	}
	if p.SpaceThreshold != 90 {
		t.Errorf("Expected default threshold 90, got %d", p.SpaceThreshold)
	}
	if p.DeleteImages {
		t.Error("Expected delete_images to default to false")
	}
	if p.MaxConcurrency != 4 {
		t.Errorf("Expected default concurrency 4, got %d", p.MaxConcurrency)
	}
	if p.BackupPrefix != "originals" {
		t.Errorf("Expected default backup prefix 'originals', got %q", p.BackupPrefix)
	}
	if p.StorageRoot == "" {
		t.Error("Expected a default storage root")
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "image_quality: 55\nspace_threshold: 75\ndelete_images: true\nstorage_root: /sdcard\nextra_paths:\n  - /mnt/external\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	p, err := loadStore(t, path).Preferences()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.ImageQuality != 55 || p.SpaceThreshold != 75 || !p.DeleteImages {
		t.Errorf("Expected 55/75/true, got %d/%d/%v", p.ImageQuality, p.SpaceThreshold, p.DeleteImages)
	}
	if p.StorageRoot != "/sdcard" {
		t.Errorf("Expected storage root /sdcard, got %s", p.StorageRoot)
	}
	if len(p.ExtraPaths) != 1 || p.ExtraPaths[0] != "/mnt/external" {
		t.Errorf("Expected extra paths [/mnt/external], got %v", p.ExtraPaths)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("image_quality: [80"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed config")
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("SPACESAVER_IMAGE_QUALITY", "42")
	t.Setenv("SPACESAVER_DELETE_IMAGES", "true")

	p, err := loadStore(t, filepath.Join(t.TempDir(), "config.yaml")).Preferences()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.ImageQuality != 42 {
		t.Errorf("Expected quality 42 from environment, got %d", p.ImageQuality)
	}
	if !p.DeleteImages {
		t.Error("Expected delete_images true from environment")
	}
}

func TestStore_SetAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store := loadStore(t, path)

	for key, value := range map[string]string{
		KeyImageQuality:   "65",
		KeySpaceThreshold: "85",
		KeyDeleteImages:   "true",
		KeyBackupBucket:   "my-photos",
		KeyExtraPaths:     "/mnt/a, /mnt/b,,",
		KeyMaxConcurrency: "2",
	} {
		if err := store.Set(key, value); err != nil {
			t.Fatalf("Set(%s, %s) failed: %v", key, value, err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Expected no error saving, got: %v", err)
	}

	p, err := loadStore(t, path).Preferences()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if p.ImageQuality != 65 || p.SpaceThreshold != 85 || !p.DeleteImages || p.MaxConcurrency != 2 {
		t.Errorf("Expected saved values to reload, got %+v", p)
	}
	if p.BackupBucket != "my-photos" {
		t.Errorf("Expected bucket my-photos, got %q", p.BackupBucket)
	}
	if len(p.ExtraPaths) != 2 || p.ExtraPaths[0] != "/mnt/a" || p.ExtraPaths[1] != "/mnt/b" {
		t.Errorf("Expected extra paths [/mnt/a /mnt/b], got %v", p.ExtraPaths)
	}
}

func TestStore_SaveSkipsEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backup_bucket: family-photos\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("SPACESAVER_IMAGE_QUALITY", "42")

	store := loadStore(t, path)
	if err := store.Set(KeySpaceThreshold, "70"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Expected no error saving, got: %v", err)
	}

	saved := viper.New()
	saved.SetConfigFile(path)
	if err := saved.ReadInConfig(); err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if saved.IsSet(KeyImageQuality) {
		t.Errorf("Expected environment value to stay out of the file, got %v", saved.Get(KeyImageQuality))
	}
	if got := saved.GetInt(KeySpaceThreshold); got != 70 {
		t.Errorf("Expected saved threshold 70, got %d", got)
	}
	if got := saved.GetString(KeyBackupBucket); got != "family-photos" {
		t.Errorf("Expected file value family-photos to be kept, got %q", got)
	}
}

func TestStore_SetRejectsInvalidValues(t *testing.T) {
	store := loadStore(t, filepath.Join(t.TempDir(), "config.yaml"))

	tests := []struct {
		name      string
		key       string
		value     string
		errSubstr string
	}{
		{"quality above range", KeyImageQuality, "101", "between 0 and 100"},
		{"threshold below range", KeySpaceThreshold, "-1", "between 0 and 100"},
		{"quality not a number", KeyImageQuality, "high", "expects an integer"},
		{"zero concurrency", KeyMaxConcurrency, "0", "at least 1"},
		{"bool not parseable", KeyDeleteImages, "maybe", "expects true or false"},
		{"unknown key", "colour", "blue", "unknown preference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Set(tt.key, tt.value)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Expected error containing %q, got: %v", tt.errSubstr, err)
			}
		})
	}

	p, err := store.Preferences()
	if err != nil {
		t.Fatalf("Expected rejected values to leave preferences valid, got: %v", err)
	}
	if p.ImageQuality != 80 {
		t.Errorf("Expected quality to stay 80, got %d", p.ImageQuality)
	}
}

func TestPreferences_Validate(t *testing.T) {
	valid := Preferences{ImageQuality: 80, SpaceThreshold: 90, MaxConcurrency: 1}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid preferences, got: %v", err)
	}

	invalid := valid
	invalid.SpaceThreshold = 150
	if err := invalid.Validate(); err == nil {
		t.Error("Expected error for threshold above 100")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != 9 {
		t.Errorf("Expected 9 keys, got %d: %v", len(keys), keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("Expected sorted unique keys, got %v", keys)
			break
		}
	}
}

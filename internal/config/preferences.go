package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Preference keys as stored in the config file.
const (
	KeyImageQuality     = "image_quality"
	KeySpaceThreshold   = "space_threshold"
	KeyDeleteImages     = "delete_images"
	KeyStorageRoot      = "storage_root"
	KeyExtraPaths       = "extra_paths"
	KeyMaxConcurrency   = "max_concurrency"
	KeyPreserveMetadata = "preserve_metadata"
	KeyBackupBucket     = "backup_bucket"
	KeyBackupPrefix     = "backup_prefix"
)

// Preferences holds the user's persisted settings.
type Preferences struct {
	// ImageQuality is the JPEG quality for compressed copies (0-100).
	ImageQuality int `mapstructure:"image_quality"`
	// SpaceThreshold is the used-space percent at which the monitor compresses (0-100).
	SpaceThreshold int `mapstructure:"space_threshold"`
	// DeleteImages removes originals after they are compressed.
	DeleteImages bool `mapstructure:"delete_images"`
	// StorageRoot holds the DCIM/Camera and CompressedImages folders.
	StorageRoot string `mapstructure:"storage_root"`
	// ExtraPaths are further locations whose filesystems count towards usage.
	ExtraPaths []string `mapstructure:"extra_paths"`
	// MaxConcurrency bounds parallel compression and uploads.
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// PreserveMetadata copies EXIF data onto compressed copies with exiftool.
	PreserveMetadata bool `mapstructure:"preserve_metadata"`
	// BackupBucket, when set, receives originals before they are deleted.
	BackupBucket string `mapstructure:"backup_bucket"`
	// BackupPrefix is the key prefix for archived originals.
	BackupPrefix string `mapstructure:"backup_prefix"`
}

var percentKeys = []string{KeyImageQuality, KeySpaceThreshold}
var intKeys = []string{KeyImageQuality, KeySpaceThreshold, KeyMaxConcurrency}
var boolKeys = []string{KeyDeleteImages, KeyPreserveMetadata}
var stringKeys = []string{KeyStorageRoot, KeyBackupBucket, KeyBackupPrefix}

// Keys returns every settable preference key.
func Keys() []string {
	keys := slices.Concat(intKeys, boolKeys, stringKeys, []string{KeyExtraPaths})
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Store reads and writes preferences backed by a YAML file.
// Environment variables prefixed SPACESAVER_ override file values but are never saved.
type Store struct {
	v *viper.Viper
	// file holds only the values read from or set for the file
	file *viper.Viper
	path string
}

// DefaultPath returns the preferences file location under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "spacesaver.yaml"
	}
	return filepath.Join(dir, "spacesaver", "config.yaml")
}

// Load reads preferences from path. A missing file yields the defaults.
func Load(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetDefault(KeyImageQuality, 80)
	v.SetDefault(KeySpaceThreshold, 90)
	v.SetDefault(KeyDeleteImages, false)
	v.SetDefault(KeyStorageRoot, defaultStorageRoot())
	v.SetDefault(KeyExtraPaths, []string{})
	v.SetDefault(KeyMaxConcurrency, 4)
	v.SetDefault(KeyPreserveMetadata, false)
	v.SetDefault(KeyBackupBucket, "")
	v.SetDefault(KeyBackupPrefix, "originals")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SPACESAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read preferences %s: %w", path, err)
		}
		if err := file.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read preferences %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access preferences %s: %w", path, err)
	}

	return &Store{v: v, file: file, path: path}, nil
}

func defaultStorageRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Preferences decodes and validates the current settings.
func (s *Store) Preferences() (Preferences, error) {
	var p Preferences
	if err := s.v.Unmarshal(&p); err != nil {
		return Preferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Validate checks that percentages are within 0-100 and concurrency is positive.
func (p Preferences) Validate() error {
	if err := checkPercent(KeyImageQuality, p.ImageQuality); err != nil {
		return err
	}
	if err := checkPercent(KeySpaceThreshold, p.SpaceThreshold); err != nil {
		return err
	}
	if p.MaxConcurrency < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyMaxConcurrency, p.MaxConcurrency)
	}
	return nil
}

func checkPercent(key string, value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %d", key, value)
	}
	return nil
}

// Set parses value for key and stores it in memory. Call Save to persist it.
func (s *Store) Set(key, value string) error {
	switch {
	case slices.Contains(intKeys, key):
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, err)
		}
		if slices.Contains(percentKeys, key) {
			if err := checkPercent(key, n); err != nil {
				return err
			}
		} else if n < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", key, n)
		}
		s.set(key, n)
	case slices.Contains(boolKeys, key):
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false: %w", key, err)
		}
		s.set(key, b)
	case slices.Contains(stringKeys, key):
		s.set(key, value)
	case key == KeyExtraPaths:
		var paths []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		s.set(key, paths)
	default:
		return fmt.Errorf("unknown preference %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

func (s *Store) set(key string, value any) {
	s.v.Set(key, value)
	s.file.Set(key, value)
}

// Save writes the file values and those changed with Set to the store's file.
// Defaults and environment overrides are left out.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := s.file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write preferences %s: %w", s.path, err)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/acm19/spacesaver/internal/config"
	"github.com/acm19/spacesaver/internal/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the config command and its show/set subcommands
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved preferences",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(configPath)
			if err != nil {
				return err
			}
			prefs, err := store.Preferences()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", store.Path())
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(preferencesView(prefs))
		},
	}

	setCmd := &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Change and save a preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPreference(configPath, args[0], args[1])
		},
	}

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

// setPreference stores a single preference in the file at path
func setPreference(path, key, value string) error {
	store, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	logger.Info("Preference saved", "key", key, "value", value, "path", store.Path())
	return nil
}

// preferencesView maps preferences to their file keys for display
func preferencesView(p config.Preferences) map[string]any {
	return map[string]any{
		config.KeyImageQuality:     p.ImageQuality,
		config.KeySpaceThreshold:   p.SpaceThreshold,
		config.KeyDeleteImages:     p.DeleteImages,
		config.KeyStorageRoot:      p.StorageRoot,
		config.KeyExtraPaths:       p.ExtraPaths,
		config.KeyMaxConcurrency:   p.MaxConcurrency,
		config.KeyPreserveMetadata: p.PreserveMetadata,
		config.KeyBackupBucket:     p.BackupBucket,
		config.KeyBackupPrefix:     p.BackupPrefix,
	}
}


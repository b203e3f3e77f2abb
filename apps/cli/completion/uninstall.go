package completion

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewUninstallCmd creates the uninstall-autocomplete command for rootCmd
func NewUninstallCmd(rootCmd *cobra.Command) *cobra.Command {
	var shellFlag string

	cmd := &cobra.Command{
		Use:   "uninstall-autocomplete",
		Short: "Remove shell completion for " + rootCmd.Name(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			return runUninstall(rootCmd.Name(), shellFlag, home, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&shellFlag, "shell", "s", "", "Shell to remove completion from. Auto-detected if not specified.")
	_ = cmd.RegisterFlagCompletionFunc("shell", cobra.FixedCompletions(Supported(), cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func runUninstall(program, shellFlag, home string, out io.Writer) error {
	shell, err := resolveShell(shellFlag)
	if err != nil {
		return err
	}
	installPath, err := InstallPath(shell, home, program)
	if err != nil {
		return err
	}

	// The auto-load line goes before the script it sources
	if shell == Bash {
		if err := disableBashAutoLoad(filepath.Join(home, ".bash_completion"), installPath); err != nil {
			fmt.Fprintf(out, "Warning: could not disable auto-load: %v\n", err)
		}
	}

	if err := os.Remove(installPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("completion not installed for %s (expected at %s)", shell, installPath)
		}
		return fmt.Errorf("failed to remove completion file: %w", err)
	}

	fmt.Fprintf(out, "Shell completion for %s removed from %s\nRestart your shell to complete removal.\n", shell, installPath)
	return nil
}

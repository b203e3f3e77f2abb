package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install-autocomplete command for rootCmd
func NewInstallCmd(rootCmd *cobra.Command) *cobra.Command {
	var shellFlag string

	cmd := &cobra.Command{
		Use:   "install-autocomplete",
		Short: "Install shell completion for " + rootCmd.Name(),
		Long: `Writes the ` + rootCmd.Name() + ` completion script where your shell loads it from.

The shell is taken from $SHELL unless --shell is given. Supported shells: ` + strings.Join(Supported(), ", ") + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			return runInstall(rootCmd, shellFlag, home, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&shellFlag, "shell", "s", "", "Shell to install completion for. Auto-detected if not specified.")
	_ = cmd.RegisterFlagCompletionFunc("shell", cobra.FixedCompletions(Supported(), cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func runInstall(rootCmd *cobra.Command, shellFlag, home string, out io.Writer) error {
	shell, err := resolveShell(shellFlag)
	if err != nil {
		return err
	}
	spec, err := lookup(shell)
	if err != nil {
		return err
	}
	installPath, err := InstallPath(shell, home, rootCmd.Name())
	if err != nil {
		return err
	}

	if err := writeScript(installPath, func(w io.Writer) error { return spec.generate(rootCmd, w) }); err != nil {
		return err
	}

	if shell == Bash {
		if err := enableBashAutoLoad(filepath.Join(home, ".bash_completion"), installPath); err != nil {
			// The script is in place, only auto-loading is missing
			fmt.Fprintf(out, "Warning: could not enable auto-load: %v\n", err)
		}
	}

	fmt.Fprintf(out, "Shell completion installed for %s at %s\n%s\n", shell, installPath, spec.activation(installPath))
	return nil
}

// writeScript generates a script into a temp file next to path and moves it in place
func writeScript(path string, generate func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create completion directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create completion file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := generate(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to generate completion script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

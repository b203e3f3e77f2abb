package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// Shell represents a supported shell
type Shell string

const (
	Bash       Shell = "bash"
	Zsh        Shell = "zsh"
	Fish       Shell = "fish"
	Powershell Shell = "powershell"
)

// shellSpec describes where a shell looks for completions and how to produce them
type shellSpec struct {
	// dir is the completion folder relative to the home directory
	dir func() ([]string, error)
	// file names the script for a program
	file func(program string) string
	// generate writes the script for root
	generate func(root *cobra.Command, w io.Writer) error
	// activation tells the user what, if anything, to do next
	activation func(installPath string) string
}

var shells = map[Shell]shellSpec{
	Bash: {
		dir:  staticDir(".bash_completion.d"),
		file: func(program string) string { return program },
		generate: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletionV2(w, true)
		},
		activation: func(string) string { return "Open a new terminal to use it." },
	},
	Zsh: {
		dir:  staticDir(".zsh", "completion"),
		file: func(program string) string { return "_" + program },
		generate: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
		activation: func(installPath string) string {
			return fmt.Sprintf("Ensure ~/.zshrc contains:\n  fpath=(%s $fpath)\n  autoload -Uz compinit && compinit", filepath.Dir(installPath))
		},
	},
	Fish: {
		dir:  staticDir(".config", "fish", "completions"),
		file: func(program string) string { return program + ".fish" },
		generate: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
		activation: func(string) string { return "Run 'exec fish' to use it in the current session." },
	},
	Powershell: {
		dir: func() ([]string, error) {
			if runtime.GOOS != "windows" {
				return nil, fmt.Errorf("powershell not supported on %s", runtime.GOOS)
			}
			return []string{"Documents", "WindowsPowerShell", "Scripts"}, nil
		},
		file: func(program string) string { return program + ".ps1" },
		generate: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
		activation: func(installPath string) string {
			return fmt.Sprintf("Add this to your PowerShell profile:\n  . %s", installPath)
		},
	},
}

func staticDir(parts ...string) func() ([]string, error) {
	return func() ([]string, error) { return parts, nil }
}

// Supported returns the shells completion can be installed for, sorted by name
func Supported() []string {
	names := make([]string, 0, len(shells))
	for shell := range shells {
		names = append(names, string(shell))
	}
	slices.Sort(names)
	return names
}

func lookup(shell Shell) (shellSpec, error) {
	spec, ok := shells[shell]
	if !ok {
		return shellSpec{}, fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Supported(), ", "))
	}
	return spec, nil
}

// DetectShell detects the user's current shell from the SHELL environment variable
func DetectShell() (Shell, error) {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		if runtime.GOOS == "windows" {
			return Powershell, nil
		}
		return "", fmt.Errorf("unable to detect shell: SHELL environment variable not set")
	}

	shell := Shell(filepath.Base(shellPath))
	if shell == Powershell {
		return "", fmt.Errorf("unsupported shell: %s", shell)
	}
	if _, err := lookup(shell); err != nil {
		return "", err
	}
	return shell, nil
}

// resolveShell returns the shell named by flag, or the detected one when flag is empty
func resolveShell(flag string) (Shell, error) {
	if flag != "" {
		return Shell(strings.ToLower(flag)), nil
	}
	shell, err := DetectShell()
	if err != nil {
		return "", fmt.Errorf("failed to detect shell: %w\nSpecify shell explicitly with --shell flag", err)
	}
	return shell, nil
}

// InstallPath returns where the completion script for program is installed for shell
func InstallPath(shell Shell, home, program string) (string, error) {
	spec, err := lookup(shell)
	if err != nil {
		return "", err
	}
	dir, err := spec.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, dir...), spec.file(program))...), nil
}

package completion

import (
	"fmt"
	"os"
	"strings"
)

// enableBashAutoLoad appends a source line for installPath to bashCompletionFile
// unless a line mentioning installPath is already present.
func enableBashAutoLoad(bashCompletionFile, installPath string) error {
	content, err := os.ReadFile(bashCompletionFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if strings.Contains(string(content), installPath) {
		return nil
	}

	f, err := os.OpenFile(bashCompletionFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("source %s\n", installPath)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		line = "\n" + line
	}
	_, err = f.WriteString(line)
	return err
}

// disableBashAutoLoad drops every line of bashCompletionFile that mentions installPath
func disableBashAutoLoad(bashCompletionFile, installPath string) error {
	content, err := os.ReadFile(bashCompletionFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	lines := strings.Split(string(content), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.Contains(line, installPath) {
			kept = append(kept, line)
		}
	}
	return os.WriteFile(bashCompletionFile, []byte(strings.Join(kept, "\n")), 0644)
}

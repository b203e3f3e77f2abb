//go:build !linux && !darwin && !freebsd && !windows

package saver

import (
	"fmt"
	"runtime"
)

func statFilesystem(path string) (filesystemUsage, error) {
	return filesystemUsage{}, fmt.Errorf("capacity probing is not supported on %s", runtime.GOOS)
}

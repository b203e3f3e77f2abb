//go:build windows

package saver

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// statFilesystem reads the free and total bytes of the volume holding path
func statFilesystem(path string) (filesystemUsage, error) {
	volume := filepath.VolumeName(path) + `\`
	ptr, err := windows.UTF16PtrFromString(volume)
	if err != nil {
		return filesystemUsage{}, err
	}
	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &free, &total, &totalFree); err != nil {
		return filesystemUsage{}, err
	}
	return filesystemUsage{id: volume, total: total, free: free}, nil
}

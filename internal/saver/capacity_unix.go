//go:build linux || darwin || freebsd

package saver

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statFilesystem reads block counts for the filesystem holding path
func statFilesystem(path string) (filesystemUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return filesystemUsage{}, err
	}
	bsize := uint64(st.Bsize)
	return filesystemUsage{
		id:    fmt.Sprint(st.Fsid, st.Blocks, bsize),
		total: uint64(st.Blocks) * bsize,
		free:  uint64(st.Bavail) * bsize,
	}, nil
}

//go:build linux
// +build linux

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// statfsUsage returns capacity and usage of the filesystem holding path.
func statfsUsage(path string) (DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return DiskUsage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize)
	total := st.Blocks * bsize
	used := (st.Blocks - min(st.Bfree, st.Blocks)) * bsize
	return DiskUsage{TotalBytes: total, UsedBytes: used}, nil
}

// unameRelease returns the kernel name and release from uname(2).
func unameRelease() (string, string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", "", fmt.Errorf("uname: %w", err)
	}
	return unix.ByteSliceToString(uts.Sysname[:]), unix.ByteSliceToString(uts.Release[:]), nil
}

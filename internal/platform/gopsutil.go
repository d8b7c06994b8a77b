package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/process"
)

// gopsutilDiskUsage reports capacity and usage of the filesystem at path.
func gopsutilDiskUsage(fact Fact, path string) (DiskUsage, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return DiskUsage{}, classifyIOError(fact, fmt.Errorf("disk usage of %s: %w", path, err))
	}
	if usage.Total == 0 {
		return DiskUsage{}, parseFailure(fact, "%s reports zero capacity", path)
	}
	return DiskUsage{TotalBytes: usage.Total, UsedBytes: min(usage.Used, usage.Total)}, nil
}

// gopsutilDisks lists physical partitions; the volume mounted at "/" is the
// system drive.
func gopsutilDisks() ([]Disk, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, probeFailure(FactDisks, CodeAPIUnavailable, fmt.Errorf("listing partitions: %w", err))
	}

	entries := make([]mountEntry, 0, len(parts))
	for _, part := range parts {
		entries = append(entries, mountEntry{Source: part.Device, MountPoint: part.Mountpoint, FSType: part.Fstype})
	}
	disks := selectDisks(directoryMounts(entries, isDirectory))
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no mounted partitions")
	}

	disks = measureDisks(disks, func(mountPoint string) (DiskUsage, error) {
		return gopsutilDiskUsage(FactDisks, mountPoint)
	})
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no mounted partition could be measured")
	}
	return disks, nil
}

// isDirectory reports whether path names a directory.
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// findProcess scans running processes for a name in known and returns the
// mapped display name. Names are compared case-insensitively without an
// ".exe" suffix.
func findProcess(known map[string]string) (string, bool) {
	procs, err := process.Processes()
	if err != nil {
		return "", false
	}
	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		if display, ok := known[normalizeProcessName(name)]; ok {
			return display, true
		}
	}
	return "", false
}

func normalizeProcessName(name string) string {
	name = strings.ToLower(filepath.Base(name))
	return strings.TrimSuffix(name, ".exe")
}

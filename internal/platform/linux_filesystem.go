//go:build linux
// +build linux

package platform

import (
	"os"
	"path/filepath"
	"strings"
)

func (p *linuxProbe) Disks() ([]Disk, error) {
	data, err := os.ReadFile(p.procMountsPath)
	if err != nil {
		return nil, classifyIOError(FactDisks, err)
	}

	disks := selectDisks(directoryMounts(parseMounts(string(data)), p.isDir))
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no block-device filesystems in %s", p.procMountsPath)
	}
	for i := range disks {
		if disks[i].DriveType == "Fixed" && p.isRemovable(disks[i].Name) {
			disks[i].DriveType = "Removable"
		}
	}

	disks = measureDisks(disks, p.statfs)
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no mounted filesystem could be measured")
	}
	return disks, nil
}

// isRemovable checks /sys/block/<disk>/removable for the disk holding the
// given partition device, e.g. /dev/sdb1 -> sdb.
func (p *linuxProbe) isRemovable(device string) bool {
	name := filepath.Base(device)
	candidates := []string{name, strings.TrimRight(name, "0123456789")}
	if i := strings.LastIndex(name, "p"); i > 0 && (strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk")) {
		candidates = append(candidates, name[:i])
	}
	for _, c := range candidates {
		if v, err := readTrimmed(filepath.Join(p.sysBlockPath, c, "removable")); err == nil {
			return v == "1"
		}
	}
	return false
}

//go:build linux
// +build linux

package platform

import "os"

func (p *linuxProbe) MemInfo() (MemInfo, error) {
	data, err := os.ReadFile(p.procMemInfoPath)
	if err != nil {
		return MemInfo{}, classifyIOError(FactMemInfo, err)
	}
	info, err := parseMemInfo(string(data))
	if err != nil {
		return MemInfo{}, parseFailure(FactMemInfo, "%s: %v", p.procMemInfoPath, err)
	}
	return info, nil
}

// DiskUsage reports the filesystem mounted at "/".
func (p *linuxProbe) DiskUsage() (DiskUsage, error) {
	usage, err := p.statfs("/")
	if err != nil {
		return DiskUsage{}, classifyIOError(FactDiskUsage, err)
	}
	if usage.TotalBytes == 0 {
		return DiskUsage{}, parseFailure(FactDiskUsage, "root filesystem reports zero blocks")
	}
	return usage, nil
}

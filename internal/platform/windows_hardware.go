//go:build windows
// +build windows

package platform

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unsafe"

	"github.com/shirou/gopsutil/v4/cpu"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

func (p *windowsProbe) CPUModel() (string, error) {
	name, err := registryString(registry.LOCAL_MACHINE, processorKey, "ProcessorNameString")
	if err != nil {
		return "", classifyIOError(FactCPUModel, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", unavailable(FactCPUModel, "empty ProcessorNameString")
	}
	return name, nil
}

func (p *windowsProbe) CPUCores() (CPUCores, error) {
	physical, err := cpu.Counts(false)
	if err != nil {
		return CPUCores{}, probeFailure(FactCPUCores, CodeAPIUnavailable, err)
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return CPUCores{}, probeFailure(FactCPUCores, CodeAPIUnavailable, err)
	}
	if physical <= 0 || logical <= 0 {
		return CPUCores{}, unavailable(FactCPUCores, "processor count not reported")
	}
	return CPUCores{Physical: uint(physical), Logical: uint(logical)}, nil
}

// GPUModel reads the first display adapter driver that is not the
// Microsoft basic display fallback.
func (p *windowsProbe) GPUModel() (string, error) {
	class, err := registry.OpenKey(registry.LOCAL_MACHINE, displayClassKey, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return "", classifyIOError(FactGPUModel, err)
	}
	defer class.Close()

	subkeys, err := class.ReadSubKeyNames(-1)
	if err != nil {
		return "", probeFailure(FactGPUModel, CodeIOError, err)
	}
	sort.Strings(subkeys)
	for _, sub := range subkeys {
		desc, err := registryString(registry.LOCAL_MACHINE, displayClassKey+`\`+sub, "DriverDesc")
		if err != nil || desc == "" {
			continue
		}
		if strings.Contains(strings.ToLower(desc), "microsoft basic") {
			continue
		}
		return desc, nil
	}
	return "", unavailable(FactGPUModel, "no display adapter found")
}

func (p *windowsProbe) MemInfo() (MemInfo, error) {
	var status memoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))
	ret, _, err := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&status)))
	if ret == 0 {
		return MemInfo{}, probeFailure(FactMemInfo, CodeAPIUnavailable, fmt.Errorf("GlobalMemoryStatusEx: %w", err))
	}
	used := uint64(0)
	if status.TotalPhys > status.AvailPhys {
		used = status.TotalPhys - status.AvailPhys
	}
	return MemInfo{TotalBytes: status.TotalPhys, UsedBytes: used}, nil
}

func (p *windowsProbe) DiskUsage() (DiskUsage, error) {
	root, err := systemDriveRoot()
	if err != nil {
		return DiskUsage{}, probeFailure(FactDiskUsage, CodeAPIUnavailable, err)
	}
	total, used, err := driveSpace(root)
	if err != nil {
		return DiskUsage{}, probeFailure(FactDiskUsage, CodeAPIUnavailable, err)
	}
	return DiskUsage{TotalBytes: total, UsedBytes: used}, nil
}

func (p *windowsProbe) Disks() ([]Disk, error) {
	buf := make([]uint16, 254)
	n, err := windows.GetLogicalDriveStrings(uint32(len(buf)), &buf[0])
	if err != nil {
		return nil, probeFailure(FactDisks, CodeAPIUnavailable, fmt.Errorf("GetLogicalDriveStrings: %w", err))
	}
	systemRoot, _ := systemDriveRoot()

	var disks []Disk
	for _, root := range splitMultiSZ(buf[:n]) {
		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		driveType := driveTypeName(windows.GetDriveType(rootPtr))
		if driveType == "" {
			continue
		}
		total, used, err := driveSpace(root)
		if err != nil {
			// Empty card readers and optical drives without media.
			continue
		}
		disks = append(disks, Disk{
			Name:          strings.TrimSuffix(root, `\`),
			MountPoint:    root,
			Filesystem:    volumeFilesystem(rootPtr),
			DriveType:     driveType,
			TotalBytes:    total,
			UsedBytes:     used,
			IsSystemDrive: strings.EqualFold(root, systemRoot),
		})
	}
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no mounted drives")
	}
	return disks, nil
}

func systemDriveRoot() (string, error) {
	dir, err := windows.GetSystemDirectory()
	if err != nil {
		return "", fmt.Errorf("GetSystemDirectory: %w", err)
	}
	return filepath.VolumeName(dir) + `\`, nil
}

func driveSpace(root string) (total, used uint64, err error) {
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return 0, 0, err
	}
	var freeToCaller, totalBytes, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(rootPtr, &freeToCaller, &totalBytes, &totalFree); err != nil {
		return 0, 0, fmt.Errorf("GetDiskFreeSpaceEx %s: %w", root, err)
	}
	if totalBytes > totalFree {
		used = totalBytes - totalFree
	}
	return totalBytes, used, nil
}

func volumeFilesystem(rootPtr *uint16) string {
	fsName := make([]uint16, windows.MAX_PATH+1)
	err := windows.GetVolumeInformation(rootPtr, nil, 0, nil, nil, nil, &fsName[0], uint32(len(fsName)))
	if err != nil {
		return ""
	}
	return windows.UTF16ToString(fsName)
}

func driveTypeName(t uint32) string {
	switch t {
	case windows.DRIVE_FIXED:
		return "Fixed"
	case windows.DRIVE_REMOVABLE:
		return "Removable"
	case windows.DRIVE_REMOTE:
		return "Network"
	case windows.DRIVE_CDROM:
		return "CD-ROM"
	case windows.DRIVE_RAMDISK:
		return "RAM Disk"
	default:
		return ""
	}
}

// splitMultiSZ splits a double-NUL terminated UTF-16 string list.
func splitMultiSZ(buf []uint16) []string {
	var out []string
	start := 0
	for i, c := range buf {
		if c != 0 {
			continue
		}
		if i > start {
			out = append(out, windows.UTF16ToString(buf[start:i]))
		}
		start = i + 1
	}
	return out
}

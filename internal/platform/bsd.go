//go:build freebsd || openbsd || netbsd || dragonfly
// +build freebsd openbsd netbsd dragonfly

package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sys/unix"
)

// bsdProbe implements Probe for the BSD family with sysctl, gopsutil and
// X11 for the graphical session.
type bsdProbe struct {
	getenv     func(string) string
	runCommand func(name string, args ...string) ([]byte, error)
}

func newBSDProbe() *bsdProbe {
	return &bsdProbe{
		getenv:     os.Getenv,
		runCommand: runLocalCommand,
	}
}

func (p *bsdProbe) Name() string { return runtime.GOOS }

func (p *bsdProbe) Close() error { return nil }

func (p *bsdProbe) OS() (OSInfo, error) {
	info, err := host.Info()
	if err != nil {
		return OSInfo{}, probeFailure(FactOS, CodeAPIUnavailable, fmt.Errorf("host info: %w", err))
	}
	name := info.Platform
	if name == "" {
		name = info.OS
	}
	if name == "" {
		return OSInfo{}, unavailable(FactOS, "host reports no platform name")
	}
	return OSInfo{
		Name:    bsdDisplayName(name),
		Version: info.PlatformVersion,
		ID:      runtime.GOOS,
	}, nil
}

func bsdDisplayName(name string) string {
	switch strings.ToLower(name) {
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	case "dragonfly":
		return "DragonFly BSD"
	default:
		return name
	}
}

func (p *bsdProbe) KernelVersion() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", probeFailure(FactKernelVersion, CodeAPIUnavailable, fmt.Errorf("uname: %w", err))
	}
	return unix.ByteSliceToString(uts.Release[:]), nil
}

var bsdProductSysctls = []string{"hw.product", "machdep.dmi.system-product"}

func (p *bsdProbe) Host() (string, error) {
	for _, name := range bsdProductSysctls {
		if value, err := sysctlFact(FactHost, name); err == nil {
			return value, nil
		}
	}
	if out, err := p.runCommand("kenv", "-q", "smbios.system.product"); err == nil {
		if value := strings.TrimSpace(string(out)); value != "" {
			return value, nil
		}
	}
	return "", unavailable(FactHost, "no product name exposed by firmware")
}

func (p *bsdProbe) CPUModel() (string, error) {
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		if model := strings.TrimSpace(infos[0].ModelName); model != "" {
			return model, nil
		}
	}
	return sysctlFact(FactCPUModel, "hw.model")
}

func (p *bsdProbe) CPUCores() (CPUCores, error) {
	physical, err := cpu.Counts(false)
	if err != nil {
		return CPUCores{}, probeFailure(FactCPUCores, CodeAPIUnavailable, err)
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return CPUCores{}, probeFailure(FactCPUCores, CodeAPIUnavailable, err)
	}
	if logical <= 0 {
		return CPUCores{}, unavailable(FactCPUCores, "processor count not reported")
	}
	if physical <= 0 {
		physical = logical
	}
	return CPUCores{Physical: uint(physical), Logical: uint(logical)}, nil
}

func (p *bsdProbe) GPUModel() (string, error) {
	out, err := p.runCommand("pciconf", "-lv")
	if err != nil {
		return "", unavailable(FactGPUModel, "pciconf: %v", err)
	}
	name, ok := parsePciconfGPU(string(out))
	if !ok {
		return "", unavailable(FactGPUModel, "no display-class PCI device")
	}
	return name, nil
}

func (p *bsdProbe) MemInfo() (MemInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemInfo{}, probeFailure(FactMemInfo, CodeAPIUnavailable, fmt.Errorf("virtual memory: %w", err))
	}
	if vm.Total == 0 {
		return MemInfo{}, parseFailure(FactMemInfo, "zero total memory")
	}
	return MemInfo{TotalBytes: vm.Total, UsedBytes: min(vm.Used, vm.Total)}, nil
}

func (p *bsdProbe) DiskUsage() (DiskUsage, error) {
	return gopsutilDiskUsage(FactDiskUsage, "/")
}

func (p *bsdProbe) Disks() ([]Disk, error) {
	return gopsutilDisks()
}

func (p *bsdProbe) Outputs() ([]Output, error) {
	return sessionOutputs(p.getenv)
}

func (p *bsdProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	return listInterfaces()
}

func (p *bsdProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
	ifaces, err := listInterfaces()
	if err != nil {
		return NetworkInterface{}, err
	}
	var routeIface string
	if out, err := p.runCommand("route", "-n", "get", "default"); err == nil {
		routeIface = parseRouteGetInterface(string(out))
	}
	return primaryInterface(ifaces, routeIface)
}

func (p *bsdProbe) BatteryInfo() (BatteryInfo, error) {
	life, err := unix.SysctlUint32("hw.acpi.battery.life")
	if err != nil {
		return BatteryInfo{}, unavailable(FactBattery, "no ACPI battery: %v", err)
	}
	state, err := unix.SysctlUint32("hw.acpi.battery.state")
	if err != nil {
		return BatteryInfo{}, unavailable(FactBattery, "no ACPI battery state: %v", err)
	}
	minutes, err := unix.SysctlUint32("hw.acpi.battery.time")
	if err != nil {
		minutes = ^uint32(0)
	}
	info, ok := acpiBattery(int32(life), int32(state), int32(minutes))
	if !ok {
		return BatteryInfo{}, unavailable(FactBattery, "battery not present")
	}
	return info, nil
}

func (p *bsdProbe) Shell() (string, error) {
	return shellFromEnv(p.getenv)
}

func (p *bsdProbe) DesktopEnvironment() (string, error) {
	return desktopFromEnv(p.getenv)
}

func (p *bsdProbe) WindowManager() (string, error) {
	display := p.getenv("DISPLAY")
	if display == "" {
		return "", unavailable(FactWindowManager, "no X display")
	}
	return x11WindowManager(display)
}

func (p *bsdProbe) Packages() ([]PackageCount, error) {
	return countPackages(bsdPackageManagers(runtime.GOOS, "/", p.getenv, p.runCommand))
}

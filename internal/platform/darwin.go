//go:build darwin
// +build darwin

package platform

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sys/unix"
)

// darwinProbe implements Probe for macOS using sysctl, gopsutil and the
// system command-line tools.
type darwinProbe struct {
	getenv     func(string) string
	runCommand func(name string, args ...string) ([]byte, error)
}

func newDarwinProbe() *darwinProbe {
	return &darwinProbe{
		getenv:     os.Getenv,
		runCommand: runLocalCommand,
	}
}

func (p *darwinProbe) Name() string { return "darwin" }

func (p *darwinProbe) Close() error { return nil }

func (p *darwinProbe) OS() (OSInfo, error) {
	version, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return OSInfo{}, probeFailure(FactOS, CodeAPIUnavailable, fmt.Errorf("sysctl kern.osproductversion: %w", err))
	}
	return OSInfo{Name: macOSName(version), Version: version, ID: "macos"}, nil
}

func (p *darwinProbe) KernelVersion() (string, error) {
	return sysctlFact(FactKernelVersion, "kern.osrelease")
}

func (p *darwinProbe) Host() (string, error) {
	return sysctlFact(FactHost, "hw.model")
}

func (p *darwinProbe) CPUModel() (string, error) {
	return sysctlFact(FactCPUModel, "machdep.cpu.brand_string")
}

func (p *darwinProbe) CPUCores() (CPUCores, error) {
	physical, err := unix.SysctlUint32("hw.physicalcpu")
	if err != nil {
		return CPUCores{}, probeFailure(FactCPUCores, CodeAPIUnavailable, fmt.Errorf("sysctl hw.physicalcpu: %w", err))
	}
	logical, err := unix.SysctlUint32("hw.logicalcpu")
	if err != nil {
		return CPUCores{}, probeFailure(FactCPUCores, CodeAPIUnavailable, fmt.Errorf("sysctl hw.logicalcpu: %w", err))
	}
	return CPUCores{Physical: uint(physical), Logical: uint(max(logical, physical))}, nil
}

func (p *darwinProbe) MemInfo() (MemInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemInfo{}, probeFailure(FactMemInfo, CodeAPIUnavailable, err)
	}
	return MemInfo{TotalBytes: vm.Total, UsedBytes: min(vm.Used, vm.Total)}, nil
}

func (p *darwinProbe) DiskUsage() (DiskUsage, error) {
	return gopsutilDiskUsage(FactDiskUsage, "/")
}

func (p *darwinProbe) Disks() ([]Disk, error) {
	return gopsutilDisks()
}

func (p *darwinProbe) GPUModel() (string, error) {
	report, err := p.displays(FactGPUModel)
	if err != nil {
		return "", err
	}
	model, ok := report.gpuModel()
	if !ok {
		return "", unavailable(FactGPUModel, "system_profiler reported no graphics adapter")
	}
	return model, nil
}

func (p *darwinProbe) Outputs() ([]Output, error) {
	report, err := p.displays(FactOutputs)
	if err != nil {
		return nil, err
	}
	outputs := report.outputs()
	if len(outputs) == 0 {
		return nil, unavailable(FactOutputs, "no displays attached")
	}
	return outputs, nil
}

func (p *darwinProbe) displays(fact Fact) (spDisplaysReport, error) {
	out, err := p.runCommand("system_profiler", "SPDisplaysDataType", "-json")
	if err != nil {
		return spDisplaysReport{}, probeFailure(fact, CodeAPIUnavailable, err)
	}
	report, err := parseSPDisplays(out)
	if err != nil {
		return spDisplaysReport{}, probeFailure(fact, CodeParseError, err)
	}
	return report, nil
}

func (p *darwinProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	return listInterfaces()
}

// PrimaryNetworkInterface asks the routing table which interface carries
// the default route.
func (p *darwinProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
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

func (p *darwinProbe) BatteryInfo() (BatteryInfo, error) {
	out, err := p.runCommand("pmset", "-g", "batt")
	if err != nil {
		return BatteryInfo{}, probeFailure(FactBattery, CodeAPIUnavailable, err)
	}
	info, ok := parsePmsetBattery(string(out))
	if !ok {
		return BatteryInfo{}, unavailable(FactBattery, "no internal battery")
	}
	return info, nil
}

func (p *darwinProbe) Shell() (string, error) {
	return shellFromEnv(p.getenv)
}

// DesktopEnvironment is always Aqua on macOS.
func (p *darwinProbe) DesktopEnvironment() (string, error) {
	return "Aqua", nil
}

var darwinWindowManagers = map[string]string{
	"yabai":     "yabai",
	"chunkwm":   "chunkwm",
	"amethyst":  "Amethyst",
	"spectacle": "Spectacle",
	"rectangle": "Rectangle",
	"aerospace": "AeroSpace",
}

// WindowManager reports a running third-party tiling manager, else Quartz.
func (p *darwinProbe) WindowManager() (string, error) {
	if name, ok := findProcess(darwinWindowManagers); ok {
		return name, nil
	}
	return "Quartz Compositor", nil
}

func (p *darwinProbe) Packages() ([]PackageCount, error) {
	return countPackages(darwinPackageManagers("/", p.getenv))
}

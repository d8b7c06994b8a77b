package sysinfo

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/cache"
	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// SystemInfo answers system-information queries for one machine, resolving
// each fact at most once. It is safe for concurrent use; concurrent first
// queries of the same fact share one probe call. Instances share nothing.
type SystemInfo struct {
	probe  platform.Probe
	cache  *cache.Cache
	logger Logger
}

// New returns a SystemInfo for the local machine. On an OS without a probe
// every query fails with an Unsupported error.
func New() *SystemInfo {
	return newWithProbe(platform.NewProbe(), nil)
}

// NewWithOptions returns a SystemInfo configured by opts. It only fails
// when opts.Remote is set and the SSH connection cannot be established.
func NewWithOptions(opts Options) (*SystemInfo, error) {
	if opts.Remote == nil {
		return newWithProbe(platform.NewProbe(), opts.Logger), nil
	}

	probe, err := platform.NewRemoteProbe(context.Background(), *opts.Remote)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", opts.Remote.Host, err)
	}
	return newWithProbe(probe, opts.Logger), nil
}

func newWithProbe(probe platform.Probe, logger Logger) *SystemInfo {
	if logger == nil {
		logger = NopLogger()
	}
	return &SystemInfo{
		probe:  probe,
		cache:  cache.New(),
		logger: logger,
	}
}

// Uptime returns the time since boot. It queries the OS on every call.
func Uptime() (time.Duration, error) {
	return platform.Uptime()
}

// Platform names the probe backing this instance, e.g. "linux" or
// "remote-linux".
func (s *SystemInfo) Platform() string {
	return s.probe.Name()
}

// Close releases the probe. Cached facts stay readable.
func (s *SystemInfo) Close() error {
	return s.probe.Close()
}

func resolve[T any](s *SystemInfo, fact Fact, fn func() (T, error)) (T, error) {
	return cache.Get(s.cache, string(fact), func() (T, error) {
		start := time.Now()
		v, err := fn()
		s.logResolution(fact, time.Since(start), err)
		return v, err
	})
}

func (s *SystemInfo) logResolution(fact Fact, elapsed time.Duration, err error) {
	if err == nil {
		s.logger.Debug("resolved fact", "fact", fact, "duration", elapsed)
		return
	}
	kind, _ := KindOf(err)
	if kind == KindProbeFailure {
		s.logger.Warn("probe failed", "fact", fact, "duration", elapsed, "error", err)
		return
	}
	s.logger.Debug("fact not available", "fact", fact, "kind", kind, "duration", elapsed, "error", err)
}

// OS returns the operating system name, version and lowercase ID.
func (s *SystemInfo) OS() (OSInfo, error) {
	return resolve(s, FactOS, s.probe.OS)
}

// KernelVersion returns the kernel release, e.g. "6.9.3-arch1-1" or
// "10.0.22631" on Windows.
func (s *SystemInfo) KernelVersion() (string, error) {
	return resolve(s, FactKernelVersion, s.probe.KernelVersion)
}

// Host returns the machine's product name, e.g. "ThinkPad X1 Carbon Gen 9".
func (s *SystemInfo) Host() (string, error) {
	return resolve(s, FactHost, s.probe.Host)
}

// Shell returns the display name of the user's login shell, e.g. "Zsh".
func (s *SystemInfo) Shell() (string, error) {
	return resolve(s, FactShell, s.probe.Shell)
}

// CPUModel returns the processor brand string.
func (s *SystemInfo) CPUModel() (string, error) {
	return resolve(s, FactCPUModel, s.probe.CPUModel)
}

// CPUCores returns physical and logical core counts. Logical is never
// below Physical.
func (s *SystemInfo) CPUCores() (CPUCores, error) {
	return resolve(s, FactCPUCores, s.probe.CPUCores)
}

// GPUModel returns the primary graphics adapter, e.g. "NVIDIA GeForce RTX 4090".
func (s *SystemInfo) GPUModel() (string, error) {
	return resolve(s, FactGPUModel, s.probe.GPUModel)
}

// MemInfo returns physical memory usage as read on the first call. Later
// calls on the same SystemInfo return that reading; create a new instance
// for a fresh one.
func (s *SystemInfo) MemInfo() (MemInfo, error) {
	return resolve(s, FactMemInfo, s.probe.MemInfo)
}

// DiskUsage returns usage of the system volume as read on the first call.
// Like MemInfo it is not refreshed for the life of the instance.
func (s *SystemInfo) DiskUsage() (DiskUsage, error) {
	return resolve(s, FactDiskUsage, s.probe.DiskUsage)
}

// Disks returns the mounted volumes. The slice is a copy.
func (s *SystemInfo) Disks() ([]Disk, error) {
	disks, err := resolve(s, FactDisks, s.probe.Disks)
	return cloneSlice(disks), err
}

// SystemDisk returns the volume the OS boots from.
func (s *SystemInfo) SystemDisk() (Disk, error) {
	disks, err := resolve(s, FactDisks, s.probe.Disks)
	if err != nil {
		return Disk{}, err
	}
	for _, d := range disks {
		if d.IsSystemDrive {
			return d, nil
		}
	}
	return Disk{}, notFound(FactDisks, "no system drive among %d disks", len(disks))
}

// DiskByPath returns the volume containing path: the disk with the longest
// mount point that is a prefix of it.
func (s *SystemInfo) DiskByPath(path string) (Disk, error) {
	disks, err := resolve(s, FactDisks, s.probe.Disks)
	if err != nil {
		return Disk{}, err
	}

	best := -1
	for i, d := range disks {
		if !mountContains(d.MountPoint, path) {
			continue
		}
		if best < 0 || len(d.MountPoint) > len(disks[best].MountPoint) {
			best = i
		}
	}
	if best < 0 {
		return Disk{}, notFound(FactDisks, "no disk contains %s", path)
	}
	return disks[best], nil
}

// Outputs returns the active displays. The slice is a copy.
func (s *SystemInfo) Outputs() ([]Output, error) {
	outputs, err := resolve(s, FactOutputs, s.probe.Outputs)
	return cloneSlice(outputs), err
}

// PrimaryOutput returns the display marked primary.
func (s *SystemInfo) PrimaryOutput() (Output, error) {
	outputs, err := resolve(s, FactOutputs, s.probe.Outputs)
	if err != nil {
		return Output{}, err
	}
	for _, o := range outputs {
		if o.IsPrimary {
			return o, nil
		}
	}
	return Output{}, notFound(FactOutputs, "no primary output among %d outputs", len(outputs))
}

// NetworkInterfaces returns every interface, loopback included. The slice
// and its address strings are copies.
func (s *SystemInfo) NetworkInterfaces() ([]NetworkInterface, error) {
	ifaces, err := resolve(s, FactNetworkInterfaces, s.probe.NetworkInterfaces)
	if ifaces == nil {
		return nil, err
	}
	out := make([]NetworkInterface, len(ifaces))
	for i, iface := range ifaces {
		out[i] = cloneInterface(iface)
	}
	return out, err
}

// PrimaryNetworkInterface returns the interface carrying the default route.
func (s *SystemInfo) PrimaryNetworkInterface() (NetworkInterface, error) {
	iface, err := resolve(s, FactPrimaryInterface, s.probe.PrimaryNetworkInterface)
	return cloneInterface(iface), err
}

// BatteryInfo returns the system battery state. Machines without one get an
// Unavailable error.
func (s *SystemInfo) BatteryInfo() (BatteryInfo, error) {
	info, err := resolve(s, FactBattery, s.probe.BatteryInfo)
	if info.Percentage != nil {
		p := *info.Percentage
		info.Percentage = &p
	}
	if info.TimeRemaining != nil {
		d := *info.TimeRemaining
		info.TimeRemaining = &d
	}
	return info, err
}

// DesktopEnvironment returns the desktop session name, e.g. "GNOME" or "Aqua".
func (s *SystemInfo) DesktopEnvironment() (string, error) {
	return resolve(s, FactDesktopEnvironment, s.probe.DesktopEnvironment)
}

// WindowManager returns the running window manager or compositor.
func (s *SystemInfo) WindowManager() (string, error) {
	return resolve(s, FactWindowManager, s.probe.WindowManager)
}

// Packages returns the installed package count of every package manager
// found, in a fixed per-platform order. The slice is a copy.
func (s *SystemInfo) Packages() ([]PackageCount, error) {
	counts, err := resolve(s, FactPackages, s.probe.Packages)
	return cloneSlice(counts), err
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}

func cloneInterface(iface NetworkInterface) NetworkInterface {
	iface.IPv4Address = cloneString(iface.IPv4Address)
	iface.IPv6Address = cloneString(iface.IPv6Address)
	iface.MACAddress = cloneString(iface.MACAddress)
	return iface
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func notFound(fact Fact, format string, args ...any) error {
	return &FactError{Fact: fact, Kind: KindUnavailable, Code: CodeNotFound, Err: fmt.Errorf(format, args...)}
}

// mountContains reports whether path lies on the volume mounted at mount.
// Drive letters compare case-insensitively on Windows.
func mountContains(mount, path string) bool {
	if mount == "" || path == "" {
		return false
	}
	mount = filepath.Clean(mount)
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		mount = strings.ToLower(mount)
		path = strings.ToLower(path)
	}
	if path == mount {
		return true
	}
	if !strings.HasSuffix(mount, string(filepath.Separator)) {
		mount += string(filepath.Separator)
	}
	return strings.HasPrefix(path, mount)
}

package platform

import "time"

// OSInfo identifies the running operating system.
type OSInfo struct {
	// Name is the display name, e.g. "Arch Linux" or "Windows 11 Pro".
	Name string
	// Version is the display version. It may be empty for rolling releases.
	Version string
	// ID is a lowercase machine token such as "arch", "ubuntu", "windows" or "macos".
	ID string
}

// CPUCores holds the processor topology.
type CPUCores struct {
	// Physical excludes SMT/hyper-thread siblings.
	Physical uint
	// Logical includes them.
	Logical uint
}

// MemInfo is a point-in-time reading of physical memory.
type MemInfo struct {
	TotalBytes uint64
	UsedBytes  uint64
}

// UsedPercent returns used memory as a percentage of total.
func (m MemInfo) UsedPercent() float64 {
	return percent(m.UsedBytes, m.TotalBytes)
}

// DiskUsage is a point-in-time reading of one filesystem.
type DiskUsage struct {
	TotalBytes uint64
	UsedBytes  uint64
}

// UsedPercent returns used space as a percentage of total.
func (d DiskUsage) UsedPercent() float64 {
	return percent(d.UsedBytes, d.TotalBytes)
}

// Disk describes a mounted volume.
type Disk struct {
	Name          string
	MountPoint    string
	Filesystem    string
	DriveType     string
	TotalBytes    uint64
	UsedBytes     uint64
	IsSystemDrive bool
}

// Output describes an active display output.
type Output struct {
	ID          uint64
	Width       uint
	Height      uint
	RefreshRate float64
	IsPrimary   bool
}

// NetworkInterface describes a network interface. Address fields are nil
// when nothing of that family is assigned.
type NetworkInterface struct {
	Name        string
	IsUp        bool
	IsLoopback  bool
	IPv4Address *string
	IPv6Address *string
	MACAddress  *string
}

// BatteryStatus is the charging state of a battery.
type BatteryStatus int

const (
	BatteryUnknown BatteryStatus = iota
	BatteryCharging
	BatteryDischarging
	BatteryFull
	BatteryNotPresent
)

// String returns a human-readable name for the battery status.
func (s BatteryStatus) String() string {
	switch s {
	case BatteryCharging:
		return "Charging"
	case BatteryDischarging:
		return "Discharging"
	case BatteryFull:
		return "Full"
	case BatteryNotPresent:
		return "Not Present"
	default:
		return "Unknown"
	}
}

// BatteryInfo is the state of the system battery. Percentage and
// TimeRemaining are independently optional.
type BatteryInfo struct {
	Status        BatteryStatus
	Percentage    *uint8
	TimeRemaining *time.Duration
}

func percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

func stringPtr(s string) *string {
	return &s
}

func uint8Ptr(v uint8) *uint8 {
	return &v
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

// PackageCount is the number of packages installed through one package
// manager, e.g. {"pacman", 1203}.
type PackageCount struct {
	Manager string
	Count   uint64
}

// TotalPackages sums counts across package managers.
func TotalPackages(counts []PackageCount) uint64 {
	var total uint64
	for _, c := range counts {
		total += c.Count
	}
	return total
}

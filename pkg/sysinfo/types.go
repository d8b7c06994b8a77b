package sysinfo

import "github.com/opd-ai/go-sysinfo/internal/platform"

type (
	OSInfo           = platform.OSInfo
	CPUCores         = platform.CPUCores
	MemInfo          = platform.MemInfo
	DiskUsage        = platform.DiskUsage
	Disk             = platform.Disk
	Output           = platform.Output
	NetworkInterface = platform.NetworkInterface
	BatteryInfo      = platform.BatteryInfo
	BatteryStatus    = platform.BatteryStatus
	PackageCount     = platform.PackageCount
)

const (
	BatteryUnknown     = platform.BatteryUnknown
	BatteryCharging    = platform.BatteryCharging
	BatteryDischarging = platform.BatteryDischarging
	BatteryFull        = platform.BatteryFull
	BatteryNotPresent  = platform.BatteryNotPresent
)

// TotalPackages sums the counts of every package manager.
func TotalPackages(counts []PackageCount) uint64 { return platform.TotalPackages(counts) }

// RemoteConfig describes an SSH connection to a Linux host.
type RemoteConfig = platform.RemoteConfig

type (
	AuthMethod   = platform.AuthMethod
	PasswordAuth = platform.PasswordAuth
	KeyAuth      = platform.KeyAuth
	AgentAuth    = platform.AgentAuth
)

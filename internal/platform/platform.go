// Package platform implements the per-OS probes behind go-sysinfo.
// It defines the Probe interface, the result model and the error taxonomy,
// and a factory for the probe matching the build target.
package platform

// Probe answers fact queries using one platform's native facilities.
// Implementations must be safe to call concurrently for different facts;
// callers serialize calls for the same fact.
//
// Every method returns either its value or a *FactError.
type Probe interface {
	// Name returns the probe identifier (e.g. "linux", "windows", "remote-linux").
	Name() string

	OS() (OSInfo, error)
	KernelVersion() (string, error)
	Host() (string, error)
	Shell() (string, error)
	CPUModel() (string, error)
	CPUCores() (CPUCores, error)
	GPUModel() (string, error)

	// MemInfo and DiskUsage are point-in-time readings.
	MemInfo() (MemInfo, error)
	DiskUsage() (DiskUsage, error)
	Disks() ([]Disk, error)

	Outputs() ([]Output, error)
	NetworkInterfaces() ([]NetworkInterface, error)
	PrimaryNetworkInterface() (NetworkInterface, error)
	BatteryInfo() (BatteryInfo, error)
	DesktopEnvironment() (string, error)
	WindowManager() (string, error)

	// Packages counts installed packages per package manager found on the
	// system, in a fixed per-platform order.
	Packages() ([]PackageCount, error)

	// Close releases any resources held by the probe.
	Close() error
}

// unsupportedProbe reports every fact as unsupported. It backs platforms
// with no probe and is embedded by probes that only cover part of the
// contract.
type unsupportedProbe struct {
	name string
}

func (p unsupportedProbe) Name() string                 { return p.name }
func (unsupportedProbe) OS() (OSInfo, error)            { return OSInfo{}, unsupported(FactOS) }
func (unsupportedProbe) KernelVersion() (string, error) { return "", unsupported(FactKernelVersion) }
func (unsupportedProbe) Host() (string, error)          { return "", unsupported(FactHost) }
func (unsupportedProbe) Shell() (string, error)         { return "", unsupported(FactShell) }
func (unsupportedProbe) CPUModel() (string, error)      { return "", unsupported(FactCPUModel) }
func (unsupportedProbe) CPUCores() (CPUCores, error)    { return CPUCores{}, unsupported(FactCPUCores) }
func (unsupportedProbe) GPUModel() (string, error)      { return "", unsupported(FactGPUModel) }
func (unsupportedProbe) MemInfo() (MemInfo, error)      { return MemInfo{}, unsupported(FactMemInfo) }
func (unsupportedProbe) DiskUsage() (DiskUsage, error) {
	return DiskUsage{}, unsupported(FactDiskUsage)
}
func (unsupportedProbe) Disks() ([]Disk, error)     { return nil, unsupported(FactDisks) }
func (unsupportedProbe) Outputs() ([]Output, error) { return nil, unsupported(FactOutputs) }
func (unsupportedProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	return nil, unsupported(FactNetworkInterfaces)
}
func (unsupportedProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
	return NetworkInterface{}, unsupported(FactPrimaryInterface)
}
func (unsupportedProbe) BatteryInfo() (BatteryInfo, error) {
	return BatteryInfo{}, unsupported(FactBattery)
}
func (unsupportedProbe) DesktopEnvironment() (string, error) {
	return "", unsupported(FactDesktopEnvironment)
}
func (unsupportedProbe) WindowManager() (string, error) { return "", unsupported(FactWindowManager) }
func (unsupportedProbe) Packages() ([]PackageCount, error) {
	return nil, unsupported(FactPackages)
}
func (unsupportedProbe) Close() error { return nil }

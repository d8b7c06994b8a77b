//go:build windows
// +build windows

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")
	moduser32   = windows.NewLazySystemDLL("user32.dll")

	procGetTickCount64       = modkernel32.NewProc("GetTickCount64")
	procGlobalMemoryStatusEx = modkernel32.NewProc("GlobalMemoryStatusEx")
	procGetSystemPowerStatus = modkernel32.NewProc("GetSystemPowerStatus")
	procEnumDisplayDevicesW  = moduser32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsW = moduser32.NewProc("EnumDisplaySettingsW")
)

const (
	currentVersionKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`
	biosKey           = `HARDWARE\DESCRIPTION\System\BIOS`
	processorKey      = `HARDWARE\DESCRIPTION\System\CentralProcessor\0`
	displayClassKey   = `SYSTEM\CurrentControlSet\Control\Class\{4d36e968-e325-11ce-bfc1-08002be10318}`
)

// windowsProbe implements Probe with the Win32 API, the registry and
// gopsutil.
type windowsProbe struct {
	getenv func(string) string
}

func newWindowsProbe() *windowsProbe {
	return &windowsProbe{getenv: os.Getenv}
}

func (p *windowsProbe) Name() string { return "windows" }

func (p *windowsProbe) Close() error { return nil }

func (p *windowsProbe) OS() (OSInfo, error) {
	product, err := registryString(registry.LOCAL_MACHINE, currentVersionKey, "ProductName")
	if err != nil {
		return OSInfo{}, classifyIOError(FactOS, err)
	}
	version, err := registryString(registry.LOCAL_MACHINE, currentVersionKey, "DisplayVersion")
	if err != nil {
		version, _ = registryString(registry.LOCAL_MACHINE, currentVersionKey, "ReleaseId")
	}
	build := windows.RtlGetVersion().BuildNumber
	return OSInfo{Name: windowsProductName(product, build), Version: version, ID: "windows"}, nil
}

func (p *windowsProbe) KernelVersion() (string, error) {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber), nil
}

func (p *windowsProbe) Host() (string, error) {
	for _, value := range []string{"SystemFamily", "SystemProductName"} {
		if name, err := registryString(registry.LOCAL_MACHINE, biosKey, value); err == nil && name != "" {
			return name, nil
		}
	}
	return "", unavailable(FactHost, "no BIOS product information in the registry")
}

func (p *windowsProbe) DesktopEnvironment() (string, error) {
	return windowsDesktopForBuild(windows.RtlGetVersion().BuildNumber), nil
}

// registryString reads one string value.
func registryString(root registry.Key, path, name string) (string, error) {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer k.Close()

	value, _, err := k.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("reading %s\\%s: %w", path, name, err)
	}
	return value, nil
}

//go:build linux
// +build linux

package platform

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pciDisplayDevice is a PCI function whose class is a display controller.
type pciDisplayDevice struct {
	slot     string
	vendorID string
	deviceID string
	bootVGA  bool
}

// GPUModel reports the boot VGA device if there is one, otherwise the first
// display-class PCI device in slot order.
func (p *linuxProbe) GPUModel() (string, error) {
	devices, err := p.displayDevices()
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", unavailable(FactGPUModel, "no display controller on the PCI bus")
	}

	dev := devices[0]
	for _, d := range devices {
		if d.bootVGA {
			dev = d
			break
		}
	}

	for _, path := range p.pciIDsPaths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		vendor, device, ok := lookupPCIIDs(f, dev.vendorID, dev.deviceID)
		f.Close()
		if ok && device != "" {
			return formatGPUName(vendor, device), nil
		}
	}
	return fallbackGPUName(dev.vendorID, dev.deviceID), nil
}

func (p *linuxProbe) displayDevices() ([]pciDisplayDevice, error) {
	entries, err := os.ReadDir(p.pciDevicesPath)
	if err != nil {
		return nil, classifyIOError(FactGPUModel, err)
	}

	var devices []pciDisplayDevice
	for _, entry := range entries {
		dir := filepath.Join(p.pciDevicesPath, entry.Name())
		class, err := readTrimmed(filepath.Join(dir, "class"))
		// Base class 0x03 is "display controller".
		if err != nil || !strings.HasPrefix(class, "0x03") {
			continue
		}
		vendor, err := readTrimmed(filepath.Join(dir, "vendor"))
		if err != nil {
			continue
		}
		device, err := readTrimmed(filepath.Join(dir, "device"))
		if err != nil {
			continue
		}
		bootVGA, _ := readTrimmed(filepath.Join(dir, "boot_vga"))
		devices = append(devices, pciDisplayDevice{
			slot:     entry.Name(),
			vendorID: strings.ToLower(strings.TrimPrefix(vendor, "0x")),
			deviceID: strings.ToLower(strings.TrimPrefix(device, "0x")),
			bootVGA:  bootVGA == "1",
		})
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].slot < devices[j].slot })
	return devices, nil
}

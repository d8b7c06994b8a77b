//go:build windows
// +build windows

package platform

import (
	"fmt"
	"net"
	"os"
	"unsafe"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/windows"
)

const maxParentDepth = 16

// Shell prefers the MSYS2/Cygwin SHELL variable, then walks the parent
// process chain for a known shell.
func (p *windowsProbe) Shell() (string, error) {
	if p.getenv("MSYSTEM") != "" {
		if sh := p.getenv("SHELL"); sh != "" {
			return msysShell(sh), nil
		}
	}

	names, err := parentProcessNames()
	if err != nil {
		return "", probeFailure(FactShell, CodeAPIUnavailable, err)
	}
	if shell, ok := shellFromProcessChain(names); ok {
		return shell, nil
	}
	return "", unavailable(FactShell, "no known shell among parent processes")
}

func parentProcessNames() ([]string, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("opening current process: %w", err)
	}
	var names []string
	for i := 0; i < maxParentDepth; i++ {
		parent, err := proc.Parent()
		if err != nil {
			break
		}
		name, err := parent.Name()
		if err != nil {
			break
		}
		names = append(names, name)
		proc = parent
	}
	return names, nil
}

func (p *windowsProbe) BatteryInfo() (BatteryInfo, error) {
	var status systemPowerStatus
	ret, _, err := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&status)))
	if ret == 0 {
		return BatteryInfo{}, probeFailure(FactBattery, CodeAPIUnavailable, fmt.Errorf("GetSystemPowerStatus: %w", err))
	}
	return batteryFromPowerStatus(status)
}

func (p *windowsProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	return listInterfaces()
}

// PrimaryNetworkInterface asks the routing table which interface would
// carry traffic to a public address.
func (p *windowsProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
	ifaces, err := listInterfaces()
	if err != nil {
		return NetworkInterface{}, err
	}

	var routeIface string
	var index uint32
	dest := &windows.SockaddrInet4{Addr: [4]byte{8, 8, 8, 8}}
	if err := windows.GetBestInterfaceEx(dest, &index); err == nil {
		if iface, err := net.InterfaceByIndex(int(index)); err == nil {
			routeIface = iface.Name
		}
	}
	return primaryInterface(ifaces, routeIface)
}

package platform

import (
	"fmt"
	"net/netip"
	"strings"

	gopsnet "github.com/shirou/gopsutil/v4/net"
)

// interfacesFunc is replaced in tests.
var interfacesFunc = gopsnet.Interfaces

// listInterfaces returns every interface known to the OS, loopback included.
func listInterfaces() ([]NetworkInterface, error) {
	stats, err := interfacesFunc()
	if err != nil {
		return nil, probeFailure(FactNetworkInterfaces, CodeNetworkError, fmt.Errorf("listing interfaces: %w", err))
	}

	ifaces := convertInterfaces(stats)
	if len(ifaces) == 0 {
		return nil, unavailable(FactNetworkInterfaces, "no network interfaces found")
	}
	return ifaces, nil
}

// convertInterfaces maps gopsutil interface stats onto NetworkInterface.
func convertInterfaces(stats gopsnet.InterfaceStatList) []NetworkInterface {
	ifaces := make([]NetworkInterface, 0, len(stats))
	for _, st := range stats {
		iface := NetworkInterface{Name: st.Name}
		for _, flag := range st.Flags {
			switch strings.ToLower(flag) {
			case "up":
				iface.IsUp = true
			case "loopback":
				iface.IsLoopback = true
			}
		}
		if mac := normalizeMAC(st.HardwareAddr); mac != "" {
			iface.MACAddress = stringPtr(mac)
		}
		for _, a := range st.Addrs {
			if addr, ok := parseInterfaceAddr(a.Addr); ok {
				assignAddr(&iface, addr)
			}
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces
}

// parseInterfaceAddr accepts both CIDR and bare address forms and drops
// any IPv6 zone.
func parseInterfaceAddr(s string) (netip.Addr, bool) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix.Addr().WithZone(""), true
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.WithZone(""), true
}

// findInterface returns the named interface from a list.
func findInterface(ifaces []NetworkInterface, name string) (NetworkInterface, bool) {
	for _, iface := range ifaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return NetworkInterface{}, false
}

// firstRoutableInterface picks the first up, non-loopback interface with an
// IPv4 address. It is the fallback when no default route can be read.
func firstRoutableInterface(ifaces []NetworkInterface) (NetworkInterface, bool) {
	for _, iface := range ifaces {
		if iface.IsUp && !iface.IsLoopback && iface.IPv4Address != nil {
			return iface, true
		}
	}
	return NetworkInterface{}, false
}

// primaryInterface resolves the default-route interface name against the
// interface list, falling back to the first routable interface.
func primaryInterface(ifaces []NetworkInterface, routeIface string) (NetworkInterface, error) {
	if routeIface != "" {
		if iface, ok := findInterface(ifaces, routeIface); ok {
			return iface, nil
		}
	}
	if iface, ok := firstRoutableInterface(ifaces); ok {
		return iface, nil
	}
	return NetworkInterface{}, unavailable(FactPrimaryInterface, "no interface with a default route")
}

//go:build linux
// +build linux

package platform

import "os"

func (p *linuxProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	return listInterfaces()
}

// PrimaryNetworkInterface returns the interface holding the IPv4 default
// route in /proc/net/route.
func (p *linuxProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
	ifaces, err := listInterfaces()
	if err != nil {
		return NetworkInterface{}, err
	}

	var routeIface string
	if data, err := os.ReadFile(p.procRoutePath); err == nil {
		routeIface = parseDefaultRoute(string(data))
	}
	return primaryInterface(ifaces, routeIface)
}

package platform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Prints manager=count for each package database present.
	remotePackagesCmd = `[ -f /lib/apk/db/installed ] && echo "apk=$(grep -c '^P:' /lib/apk/db/installed)"; ` +
		`[ -f /var/lib/dpkg/status ] && echo "dpkg=$(grep -c '^Status: [a-z]* [a-z-]* installed$' /var/lib/dpkg/status)"; ` +
		`[ -d /var/lib/pacman/local ] && echo "pacman=$(find /var/lib/pacman/local -mindepth 1 -maxdepth 1 -type d | wc -l)"; ` +
		`[ -d /var/lib/rpm ] && command -v rpm >/dev/null && echo "rpm=$(rpm -qa | wc -l)"; ` +
		`[ -d /var/db/xbps ] && command -v xbps-query >/dev/null && echo "xbps=$(xbps-query -l | wc -l)"; ` +
		`[ -d /run/current-system/sw ] && command -v nix-store >/dev/null && ` +
		`echo "nix=$(nix-store --query --requisites /run/current-system/sw | wc -l)"; ` +
		`[ -d "$HOME/.cargo/bin" ] && echo "cargo=$(find "$HOME/.cargo/bin" -mindepth 1 -maxdepth 1 ! -type d | wc -l)"; ` +
		`true`
	remoteHostCmd = "cat /sys/class/dmi/id/product_family /sys/class/dmi/id/product_name 2>/dev/null; true"
	// Prints the key=value attributes of the first Battery power supply.
	remoteBatteryCmd = `for d in /sys/class/power_supply/*; do ` +
		`[ "$(cat "$d/type" 2>/dev/null)" = Battery ] || continue; ` +
		`[ "$(cat "$d/scope" 2>/dev/null)" = Device ] && continue; ` +
		`echo "present=$(cat "$d/present" 2>/dev/null)"; ` +
		`echo "capacity=$(cat "$d/capacity" 2>/dev/null)"; ` +
		`echo "status=$(cat "$d/status" 2>/dev/null)"; ` +
		`echo "time_to_empty_now=$(cat "$d/time_to_empty_now" 2>/dev/null)"; ` +
		`echo "time_to_full_now=$(cat "$d/time_to_full_now" 2>/dev/null)"; ` +
		`break; done; true`
)

func (p *sshProbe) OS() (OSInfo, error) {
	out, err := p.run(FactOS, "cat /etc/os-release 2>/dev/null || cat /usr/lib/os-release")
	if err != nil {
		return OSInfo{}, err
	}
	info, err := parseOSRelease(out)
	if err != nil {
		return OSInfo{}, parseFailure(FactOS, "%v", err)
	}
	return info, nil
}

func (p *sshProbe) KernelVersion() (string, error) {
	out, err := p.run(FactKernelVersion, "uname -r")
	if err != nil {
		return "", err
	}
	release := strings.TrimSpace(out)
	if release == "" {
		return "", parseFailure(FactKernelVersion, "empty uname output")
	}
	return release, nil
}

func (p *sshProbe) Host() (string, error) {
	out, err := p.run(FactHost, remoteHostCmd)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		value := strings.TrimSpace(line)
		if value != "" && !placeholderDMIValues[strings.ToLower(value)] {
			return value, nil
		}
	}
	return "", unavailable(FactHost, "no DMI product information")
}

// Shell reports the login shell of the SSH user.
func (p *sshProbe) Shell() (string, error) {
	out, err := p.run(FactShell, `getent passwd "$(id -un)" || echo "::::::$SHELL"`)
	if err != nil {
		return "", err
	}
	fields := strings.Split(strings.TrimSpace(out), ":")
	if len(fields) < 7 || fields[6] == "" {
		return "", unavailable(FactShell, "no login shell for the remote user")
	}
	return shellDisplayName(fields[6]), nil
}

func (p *sshProbe) CPUModel() (string, error) {
	out, err := p.run(FactCPUModel, "cat /proc/cpuinfo")
	if err != nil {
		return "", err
	}
	model := parseCPUInfoModel(out)
	if model == "" {
		return "", unavailable(FactCPUModel, "no model name in /proc/cpuinfo")
	}
	return model, nil
}

func (p *sshProbe) CPUCores() (CPUCores, error) {
	out, err := p.run(FactCPUCores, "cat /proc/cpuinfo")
	if err != nil {
		return CPUCores{}, err
	}
	cores, ok := parseCPUInfoCores(out)
	if !ok {
		return CPUCores{}, parseFailure(FactCPUCores, "no processors listed in /proc/cpuinfo")
	}
	return cores, nil
}

func (p *sshProbe) GPUModel() (string, error) {
	out, err := p.run(FactGPUModel, "lspci -mm 2>/dev/null; true")
	if err != nil {
		return "", err
	}
	name, ok := parseLspciGPU(out)
	if !ok {
		return "", unavailable(FactGPUModel, "no display controller reported by lspci")
	}
	return name, nil
}

func (p *sshProbe) MemInfo() (MemInfo, error) {
	out, err := p.run(FactMemInfo, "cat /proc/meminfo")
	if err != nil {
		return MemInfo{}, err
	}
	info, err := parseMemInfo(out)
	if err != nil {
		return MemInfo{}, parseFailure(FactMemInfo, "%v", err)
	}
	return info, nil
}

func (p *sshProbe) DiskUsage() (DiskUsage, error) {
	return p.dfUsage(FactDiskUsage, "/")
}

func (p *sshProbe) dfUsage(fact Fact, mountPoint string) (DiskUsage, error) {
	out, err := p.run(fact, "df -kP "+shellEscape(mountPoint))
	if err != nil {
		return DiskUsage{}, err
	}
	usage, err := parseDfOutput(out)
	if err != nil {
		return DiskUsage{}, parseFailure(fact, "%v", err)
	}
	return usage, nil
}

func (p *sshProbe) Disks() ([]Disk, error) {
	out, err := p.run(FactDisks, "cat /proc/mounts")
	if err != nil {
		return nil, err
	}
	entries := parseMounts(out)
	dirs, err := p.directories(entries)
	if err != nil {
		return nil, err
	}
	disks := selectDisks(directoryMounts(entries, func(m string) bool { return dirs[m] }))
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no block-device mounts")
	}
	disks = measureDisks(disks, func(mountPoint string) (DiskUsage, error) {
		return p.dfUsage(FactDisks, mountPoint)
	})
	if len(disks) == 0 {
		return nil, unavailable(FactDisks, "no mount could be measured with df")
	}
	return disks, nil
}

// directories reports which mount points are directories on the remote
// host, in a single round trip.
func (p *sshProbe) directories(entries []mountEntry) (map[string]bool, error) {
	dirs := make(map[string]bool, len(entries))
	if len(entries) == 0 {
		return dirs, nil
	}
	out, err := p.run(FactDisks, directoryCheckCmd(entries))
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			dirs[line] = true
		}
	}
	return dirs, nil
}

// directoryCheckCmd prints each mount point that is a directory.
func directoryCheckCmd(entries []mountEntry) string {
	quoted := make([]string, 0, len(entries))
	for _, e := range entries {
		quoted = append(quoted, shellEscape(e.MountPoint))
	}
	return "for m in " + strings.Join(quoted, " ") + `; do [ -d "$m" ] && printf '%s\n' "$m"; done; true`
}

func (p *sshProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	links, err := p.run(FactNetworkInterfaces, "ip -o link show")
	if err != nil {
		return nil, err
	}
	addrs, err := p.run(FactNetworkInterfaces, "ip -o addr show")
	if err != nil {
		return nil, err
	}
	ifaces := parseIPOutput(links, addrs)
	if len(ifaces) == 0 {
		return nil, unavailable(FactNetworkInterfaces, "no network interfaces found")
	}
	return ifaces, nil
}

func (p *sshProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
	ifaces, err := p.NetworkInterfaces()
	if err != nil {
		return NetworkInterface{}, err
	}
	var routeIface string
	// A missing route table only loses the preference for the default route.
	if out, err := p.run(FactPrimaryInterface, "cat /proc/net/route"); err == nil {
		routeIface = parseDefaultRoute(out)
	}
	return primaryInterface(ifaces, routeIface)
}

func (p *sshProbe) BatteryInfo() (BatteryInfo, error) {
	out, err := p.run(FactBattery, remoteBatteryCmd)
	if err != nil {
		return BatteryInfo{}, err
	}
	attrs := parseKeyValueFile(out)
	if len(attrs) == 0 {
		return BatteryInfo{}, unavailable(FactBattery, "no battery in /sys/class/power_supply")
	}
	return remoteBattery(attrs), nil
}

func remoteBattery(attrs map[string]string) BatteryInfo {
	if attrs["present"] == "0" {
		return BatteryInfo{Status: BatteryNotPresent}
	}

	var info BatteryInfo
	if capacity, err := strconv.ParseUint(attrs["capacity"], 10, 64); err == nil {
		info.Percentage = uint8Ptr(uint8(min(capacity, 100)))
	}
	info.Status = sysfsBatteryStatus(attrs["status"], info.Percentage)

	var key string
	switch info.Status {
	case BatteryCharging:
		key = "time_to_full_now"
	case BatteryDischarging:
		key = "time_to_empty_now"
	default:
		return info
	}
	if secs, err := strconv.ParseUint(attrs[key], 10, 64); err == nil && secs > 0 {
		info.TimeRemaining = durationPtr(time.Duration(secs) * time.Second)
	}
	return info
}

// remotePackageManagers is the order remote package counts are reported in.
var remotePackageManagers = []string{"apk", "dpkg", "pacman", "rpm", "xbps", "nix", "cargo"}

func (p *sshProbe) Packages() ([]PackageCount, error) {
	out, err := p.run(FactPackages, remotePackagesCmd)
	if err != nil {
		return nil, err
	}
	counts, err := parseRemotePackages(out)
	if err != nil {
		return nil, parseFailure(FactPackages, "%v", err)
	}
	if len(counts) == 0 {
		return nil, unavailable(FactPackages, "no supported package manager found")
	}
	return counts, nil
}

func parseRemotePackages(out string) ([]PackageCount, error) {
	values := parseKeyValueFile(out)
	var counts []PackageCount
	for _, name := range remotePackageManagers {
		raw, ok := values[name]
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s count %q: %w", name, raw, err)
		}
		counts = append(counts, PackageCount{Manager: name, Count: n})
	}
	return counts, nil
}

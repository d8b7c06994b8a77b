package platform

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// The parsers in this file take command output or file contents as strings
// so they are shared by the local Linux probe and the SSH remote probe.

// parseKeyValueFile parses os-release style KEY=value lines.
// Surrounding single or double quotes are stripped from values.
func parseKeyValueFile(content string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return values
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// parseOSRelease extracts OSInfo from /etc/os-release contents.
func parseOSRelease(content string) (OSInfo, error) {
	values := parseKeyValueFile(content)

	info := OSInfo{
		Name:    firstNonEmpty(values["NAME"], values["PRETTY_NAME"]),
		Version: firstNonEmpty(values["VERSION"], values["VERSION_ID"]),
		ID:      strings.ToLower(values["ID"]),
	}

	if info.ID == "" {
		return OSInfo{}, fmt.Errorf("os-release has no ID field")
	}
	if info.Name == "" {
		return OSInfo{}, fmt.Errorf("os-release has no NAME or PRETTY_NAME field")
	}
	return info, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// placeholderDMIValues are filled in by firmware vendors that never set a
// real product name.
var placeholderDMIValues = map[string]bool{
	"to be filled by o.e.m.": true,
	"system product name":    true,
	"default string":         true,
	"not applicable":         true,
	"not specified":          true,
	"none":                   true,
	"o.e.m.":                 true,
}

// parseMemInfo parses /proc/meminfo contents.
// Used memory is MemTotal - MemAvailable; older kernels without
// MemAvailable fall back to MemTotal - MemFree - Buffers - Cached.
func parseMemInfo(content string) (MemInfo, error) {
	fields := make(map[string]uint64)
	for _, line := range strings.Split(content, "\n") {
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		value, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}
		// Values in /proc/meminfo are in KB
		fields[strings.TrimSuffix(parts[0], ":")] = value * 1024
	}

	total, ok := fields["MemTotal"]
	if !ok || total == 0 {
		return MemInfo{}, fmt.Errorf("meminfo has no MemTotal")
	}

	var free uint64
	if avail, ok := fields["MemAvailable"]; ok {
		free = avail
	} else {
		free = fields["MemFree"] + fields["Buffers"] + fields["Cached"]
	}

	return MemInfo{TotalBytes: total, UsedBytes: total - min(free, total)}, nil
}

// parseCPUInfoModel returns the CPU model string from /proc/cpuinfo.
// x86 exposes "model name"; ARM and other architectures use other keys.
func parseCPUInfoModel(content string) string {
	keys := []string{"model name", "Hardware", "Model", "cpu model", "cpu"}
	found := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, seen := found[key]; !seen {
			found[key] = value
		}
	}
	for _, key := range keys {
		if v := found[key]; v != "" {
			return v
		}
	}
	return ""
}

// parseCPUInfoCores derives topology from /proc/cpuinfo when sysfs topology
// is not available. ok is false if no processor entries were found.
func parseCPUInfoCores(content string) (cores CPUCores, ok bool) {
	type coreKey struct{ pkg, core string }
	unique := make(map[coreKey]struct{})

	var logical uint
	var pkg, core string
	flush := func() {
		if pkg != "" || core != "" {
			unique[coreKey{pkg, core}] = struct{}{}
		}
		pkg, core = "", ""
	}

	for _, line := range strings.Split(content, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			if strings.TrimSpace(line) == "" {
				flush()
			}
			continue
		}
		switch strings.TrimSpace(key) {
		case "processor":
			logical++
		case "physical id":
			pkg = strings.TrimSpace(value)
		case "core id":
			core = strings.TrimSpace(value)
		}
	}
	flush()

	if logical == 0 {
		return CPUCores{}, false
	}
	physical := uint(len(unique))
	if physical == 0 || physical > logical {
		physical = logical
	}
	return CPUCores{Physical: physical, Logical: logical}, true
}

// mountEntry is one line of /proc/mounts.
type mountEntry struct {
	Source     string
	MountPoint string
	FSType     string
}

// parseMounts parses /proc/mounts contents, decoding octal escapes.
func parseMounts(content string) []mountEntry {
	var entries []mountEntry
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, mountEntry{
			Source:     unescapeMount(fields[0]),
			MountPoint: unescapeMount(fields[1]),
			FSType:     fields[2],
		})
	}
	return entries
}

// unescapeMount decodes the \040-style escapes used in /proc/mounts.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var pseudoFilesystems = map[string]bool{
	"autofs": true, "binfmt_misc": true, "bpf": true, "cgroup": true,
	"cgroup2": true, "configfs": true, "debugfs": true, "devpts": true,
	"devtmpfs": true, "efivarfs": true, "fusectl": true, "hugetlbfs": true,
	"mqueue": true, "nsfs": true, "overlay": true, "proc": true,
	"pstore": true, "ramfs": true, "rpc_pipefs": true, "securityfs": true,
	"selinuxfs": true, "squashfs": true, "sysfs": true, "tmpfs": true,
	"tracefs": true, "fuse.gvfsd-fuse": true, "fuse.portal": true,
	"fuse.lxcfs": true, "devfs": true, "nullfs": true,
}

var networkFilesystems = map[string]bool{
	"nfs": true, "nfs4": true, "cifs": true, "smb3": true, "sshfs": true, "fuse.sshfs": true,
}

// selectDisks filters pseudo filesystems out of a mount table and folds bind
// mounts of the same source into one entry. The entry mounted at "/" is
// marked as the system drive.
func selectDisks(entries []mountEntry) []Disk {
	bySource := make(map[string]int)
	var disks []Disk

	for _, e := range entries {
		if pseudoFilesystems[e.FSType] {
			continue
		}
		driveType := "Fixed"
		switch {
		case networkFilesystems[e.FSType]:
			driveType = "Network"
		case e.FSType == "zfs":
			// ZFS datasets are named pool/dataset rather than by device.
		case !strings.HasPrefix(e.Source, "/dev/"):
			continue
		}

		if i, seen := bySource[e.Source]; seen {
			// Keep "/" over anything, otherwise the shortest mount point.
			cur := disks[i]
			if e.MountPoint == "/" || (cur.MountPoint != "/" && len(e.MountPoint) < len(cur.MountPoint)) {
				disks[i].MountPoint = e.MountPoint
				disks[i].IsSystemDrive = e.MountPoint == "/"
			}
			continue
		}

		bySource[e.Source] = len(disks)
		disks = append(disks, Disk{
			Name:          e.Source,
			MountPoint:    e.MountPoint,
			Filesystem:    e.FSType,
			DriveType:     driveType,
			IsSystemDrive: e.MountPoint == "/",
		})
	}

	sort.SliceStable(disks, func(i, j int) bool {
		return disks[i].MountPoint < disks[j].MountPoint
	})
	return disks
}

// directoryMounts drops entries whose mount point is not a directory.
// Containers bind single files such as /etc/hosts from the host's root
// device; those are not volumes and must not stand in for one.
func directoryMounts(entries []mountEntry, isDir func(string) bool) []mountEntry {
	kept := entries[:0:0]
	for _, e := range entries {
		if isDir(e.MountPoint) {
			kept = append(kept, e)
		}
	}
	return kept
}

// measureDisks fills in each disk's sizes from usage. Disks whose usage
// cannot be read are dropped rather than reported with zero sizes.
func measureDisks(disks []Disk, usage func(mountPoint string) (DiskUsage, error)) []Disk {
	measured := disks[:0]
	for _, d := range disks {
		u, err := usage(d.MountPoint)
		if err != nil {
			continue
		}
		d.TotalBytes = u.TotalBytes
		d.UsedBytes = min(u.UsedBytes, u.TotalBytes)
		measured = append(measured, d)
	}
	return measured
}

// modeRefreshRate computes the vertical refresh of a display mode in Hz
// from its pixel clock and total timings. A mode missing any of them has no
// usable rate.
func modeRefreshRate(dotClock, htotal, vtotal uint32) (float64, bool) {
	if dotClock == 0 || htotal == 0 || vtotal == 0 {
		return 0, false
	}
	return float64(dotClock) / (float64(htotal) * float64(vtotal)), true
}

// parseDefaultRoute returns the interface carrying the IPv4 default route
// from /proc/net/route contents, or "" if there is none.
func parseDefaultRoute(content string) string {
	const rtfUp = 0x1
	for i, line := range strings.Split(content, "\n") {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[1] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(fields[3], 16, 32)
		if err != nil || flags&rtfUp == 0 {
			continue
		}
		return fields[0]
	}
	return ""
}

// pciIDsPaths lists the usual locations of the PCI ID database.
var pciIDsPaths = []string{
	"/usr/share/hwdata/pci.ids",
	"/usr/share/misc/pci.ids",
	"/usr/share/pci.ids",
}

// lookupPCIIDs finds the vendor and device names for the given lowercase
// hex IDs (without 0x) in a pci.ids database.
func lookupPCIIDs(r io.Reader, vendorID, deviceID string) (vendor, device string, ok bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inVendor := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, "C ") {
			// Device class section follows the vendor list.
			break
		}

		if line[0] != '\t' {
			if inVendor {
				// Vendor found but device was not listed.
				return vendor, "", true
			}
			id, name, found := strings.Cut(line, "  ")
			if found && strings.EqualFold(id, vendorID) {
				inVendor = true
				vendor = strings.TrimSpace(name)
			}
			continue
		}

		if !inVendor || strings.HasPrefix(line, "\t\t") {
			continue
		}
		id, name, found := strings.Cut(line[1:], "  ")
		if found && strings.EqualFold(id, deviceID) {
			return vendor, strings.TrimSpace(name), true
		}
	}
	return vendor, "", inVendor
}

var gpuVendorNames = map[string]string{
	"1002": "AMD",
	"10de": "NVIDIA",
	"8086": "Intel",
	"1af4": "Virtio",
	"15ad": "VMware",
	"1234": "QEMU",
}

// formatGPUName combines pci.ids vendor and device names into a short
// marketing-style name, e.g. "AMD Radeon RX 6800 XT".
func formatGPUName(vendor, device string) string {
	short := vendor
	switch {
	case strings.Contains(vendor, "[AMD/ATI]"):
		short = "AMD"
	case vendor != "":
		short = strings.Fields(vendor)[0]
	}

	if start := strings.IndexByte(device, '['); start >= 0 {
		if end := strings.IndexByte(device[start:], ']'); end > 1 {
			device = device[start+1 : start+end]
		}
	}

	return strings.TrimSpace(short + " " + device)
}

// fallbackGPUName is used when no PCI ID database is installed.
func fallbackGPUName(vendorID, deviceID string) string {
	if name, ok := gpuVendorNames[vendorID]; ok {
		return fmt.Sprintf("%s Device %s", name, deviceID)
	}
	return fmt.Sprintf("Unknown GPU %s:%s", vendorID, deviceID)
}

var unixShellNames = map[string]string{
	"bash":   "Bash",
	"zsh":    "Zsh",
	"fish":   "Fish",
	"nu":     "Nushell",
	"sh":     "SH",
	"ksh":    "KornShell",
	"tcsh":   "tcsh",
	"dash":   "dash",
	"elvish": "Elvish",
	"xonsh":  "Xonsh",
	"pwsh":   "PowerShell Core",
}

// shellDisplayName maps a shell path such as /usr/bin/zsh to a display name.
func shellDisplayName(shellPath string) string {
	base := path.Base(strings.TrimSpace(shellPath))
	if name, ok := unixShellNames[base]; ok {
		return name
	}
	return base
}

// sysfsBatteryStatus maps the power_supply "status" attribute.
func sysfsBatteryStatus(status string, percentage *uint8) BatteryStatus {
	switch strings.TrimSpace(status) {
	case "Charging":
		return BatteryCharging
	case "Discharging":
		return BatteryDischarging
	case "Full":
		return BatteryFull
	case "Not charging":
		if percentage != nil && *percentage == 100 {
			return BatteryFull
		}
		return BatteryDischarging
	default:
		return BatteryUnknown
	}
}

// parseDfOutput parses `df -kP <path>` output.
func parseDfOutput(output string) (DiskUsage, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return DiskUsage{}, fmt.Errorf("unexpected df output: %q", output)
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 6 {
		return DiskUsage{}, fmt.Errorf("unexpected df line: %q", lines[len(lines)-1])
	}
	total, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("parsing df total: %w", err)
	}
	used, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("parsing df used: %w", err)
	}
	return DiskUsage{TotalBytes: total * 1024, UsedBytes: min(used, total) * 1024}, nil
}

// splitQuoted splits a line of lspci -mm output into its fields, honouring
// double-quoted strings.
func splitQuoted(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuote, started := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields
}

// parseLspciGPU returns the first display controller from `lspci -mm` output.
func parseLspciGPU(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := splitQuoted(line)
		if len(fields) < 4 {
			continue
		}
		class := strings.ToLower(fields[1])
		if strings.Contains(class, "vga") || strings.Contains(class, "3d controller") || strings.Contains(class, "display controller") {
			return formatGPUName(fields[2], fields[3]), true
		}
	}
	return "", false
}

// parseIPOutput builds interfaces from `ip -o link` and `ip -o addr` output.
func parseIPOutput(linkOutput, addrOutput string) []NetworkInterface {
	byName := make(map[string]*NetworkInterface)
	var order []string

	for _, line := range strings.Split(linkOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := strings.TrimSuffix(fields[1], ":")
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		flags := strings.Split(strings.Trim(fields[2], "<>"), ",")
		iface := &NetworkInterface{Name: name}
		for _, f := range flags {
			switch f {
			case "UP":
				iface.IsUp = true
			case "LOOPBACK":
				iface.IsLoopback = true
			}
		}
		for i := 3; i+1 < len(fields); i++ {
			if fields[i] == "link/ether" {
				if mac := normalizeMAC(fields[i+1]); mac != "" {
					iface.MACAddress = stringPtr(mac)
				}
			}
		}
		byName[name] = iface
		order = append(order, name)
	}

	for _, line := range strings.Split(addrOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		iface, ok := byName[fields[1]]
		if !ok {
			continue
		}
		prefix, err := netip.ParsePrefix(fields[3])
		if err != nil {
			continue
		}
		assignAddr(iface, prefix.Addr())
	}

	result := make([]NetworkInterface, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	return result
}

// assignAddr records addr on iface, keeping the first IPv4 address and
// preferring a global IPv6 address over a link-local one.
func assignAddr(iface *NetworkInterface, addr netip.Addr) {
	switch {
	case addr.Is4():
		if iface.IPv4Address == nil {
			iface.IPv4Address = stringPtr(addr.String())
		}
	case addr.Is6():
		if iface.IPv6Address == nil {
			iface.IPv6Address = stringPtr(addr.String())
			return
		}
		current, err := netip.ParseAddr(*iface.IPv6Address)
		if err == nil && current.IsLinkLocalUnicast() && !addr.IsLinkLocalUnicast() {
			iface.IPv6Address = stringPtr(addr.String())
		}
	}
}

// normalizeMAC lowercases a 6-byte hardware address. Empty and all-zero
// addresses yield "".
func normalizeMAC(mac string) string {
	mac = strings.ToLower(strings.TrimSpace(mac))
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return ""
	}
	if mac == "00:00:00:00:00:00" {
		return ""
	}
	return mac
}

// parsePmsetBattery parses `pmset -g batt` output.
func parsePmsetBattery(output string) (BatteryInfo, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "InternalBattery") {
			continue
		}
		_, rest, ok := strings.Cut(line, "\t")
		if !ok {
			if i := strings.Index(line, ")"); i >= 0 {
				rest = line[i+1:]
			}
		}

		info := BatteryInfo{Status: BatteryUnknown}
		parts := strings.Split(rest, ";")
		if len(parts) > 0 {
			pct := strings.TrimSuffix(strings.TrimSpace(parts[0]), "%")
			if v, err := strconv.ParseUint(pct, 10, 8); err == nil && v <= 100 {
				info.Percentage = uint8Ptr(uint8(v))
			}
		}
		if len(parts) > 1 {
			switch strings.TrimSpace(parts[1]) {
			case "charging":
				info.Status = BatteryCharging
			case "discharging":
				info.Status = BatteryDischarging
			case "charged":
				info.Status = BatteryFull
			case "AC attached", "finishing charge":
				info.Status = BatteryCharging
			}
		}
		if len(parts) > 2 && (info.Status == BatteryCharging || info.Status == BatteryDischarging) {
			fields := strings.Fields(parts[2])
			if len(fields) > 0 {
				if d, ok := parseHoursMinutes(fields[0]); ok && d > 0 {
					info.TimeRemaining = durationPtr(d)
				}
			}
		}
		return info, true
	}
	return BatteryInfo{}, false
}

// parseHoursMinutes parses "h:mm" into a duration.
func parseHoursMinutes(s string) (time.Duration, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, true
}

// parseRouteGetInterface extracts the interface from `route -n get default`.
func parseRouteGetInterface(output string) string {
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok && key == "interface" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

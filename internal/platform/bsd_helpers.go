package platform

import (
	"strings"
	"time"
)

// parsePciconfGPU extracts the first display-class device from the output
// of FreeBSD's `pciconf -lv`.
func parsePciconfGPU(output string) (string, bool) {
	var inDisplay bool
	var vendor, device string
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			if inDisplay && device != "" {
				break
			}
			inDisplay = strings.Contains(line, "class=0x03")
			vendor, device = "", ""
			continue
		}
		if !inDisplay {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "'")
		switch strings.TrimSpace(key) {
		case "vendor":
			vendor = value
		case "device":
			device = value
		}
	}
	if !inDisplay || device == "" {
		return "", false
	}
	return formatGPUName(vendor, device), true
}

// ACPI battery state bits reported by hw.acpi.battery.state.
const (
	acpiBatteryDischarging = 0x1
	acpiBatteryCharging    = 0x2
	acpiBatteryNotPresent  = 0x7
)

// acpiBattery builds battery info from the hw.acpi.battery sysctls. life is
// a percentage and minutes is -1 when unknown.
func acpiBattery(life, state, minutes int32) (BatteryInfo, bool) {
	if state == acpiBatteryNotPresent || life < 0 {
		return BatteryInfo{}, false
	}

	info := BatteryInfo{Percentage: uint8Ptr(uint8(min(life, 100)))}
	switch {
	case state&acpiBatteryCharging != 0:
		info.Status = BatteryCharging
	case state&acpiBatteryDischarging != 0:
		info.Status = BatteryDischarging
	case life >= 100:
		info.Status = BatteryFull
	default:
		info.Status = BatteryUnknown
	}
	if minutes >= 0 && info.Status == BatteryDischarging {
		info.TimeRemaining = durationPtr(time.Duration(minutes) * time.Minute)
	}
	return info, true
}

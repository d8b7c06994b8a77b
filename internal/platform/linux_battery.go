//go:build linux
// +build linux

package platform

import (
	"os"
	"path/filepath"
	"time"
)

// BatteryInfo reads the first system battery under /sys/class/power_supply.
// Peripheral batteries (scope "Device") such as wireless mice are skipped.
func (p *linuxProbe) BatteryInfo() (BatteryInfo, error) {
	batteryPath, err := p.findBattery()
	if err != nil {
		return BatteryInfo{}, err
	}

	if present, err := readTrimmed(filepath.Join(batteryPath, "present")); err == nil && present == "0" {
		return BatteryInfo{Status: BatteryNotPresent}, nil
	}

	var info BatteryInfo
	if capacity, ok := readSysfsUint(filepath.Join(batteryPath, "capacity")); ok {
		info.Percentage = uint8Ptr(uint8(min(capacity, 100)))
	}

	status, _ := readSysfsString(filepath.Join(batteryPath, "status"))
	info.Status = sysfsBatteryStatus(status, info.Percentage)

	if info.Status == BatteryCharging || info.Status == BatteryDischarging {
		if remaining, ok := batteryTimeRemaining(batteryPath, info.Status == BatteryCharging); ok {
			info.TimeRemaining = durationPtr(remaining)
		}
	}
	return info, nil
}

func (p *linuxProbe) findBattery() (string, error) {
	entries, err := os.ReadDir(p.powerSupplyPath)
	if err != nil {
		return "", classifyIOError(FactBattery, err)
	}

	for _, entry := range entries {
		dir := filepath.Join(p.powerSupplyPath, entry.Name())
		if typ, _ := readSysfsString(filepath.Join(dir, "type")); typ != "Battery" {
			continue
		}
		if scope, _ := readSysfsString(filepath.Join(dir, "scope")); scope == "Device" {
			continue
		}
		return dir, nil
	}
	return "", unavailable(FactBattery, "no battery under %s", p.powerSupplyPath)
}

// batteryTimeRemaining prefers the kernel's own estimate and otherwise
// derives one from energy/power (µWh, µW) or charge/current (µAh, µA).
func batteryTimeRemaining(batteryPath string, charging bool) (time.Duration, bool) {
	estimate := "time_to_empty_now"
	if charging {
		estimate = "time_to_full_now"
	}
	if secs, ok := readSysfsUint(filepath.Join(batteryPath, estimate)); ok && secs > 0 {
		return time.Duration(secs) * time.Second, true
	}

	now, hasNow := readSysfsUint(filepath.Join(batteryPath, "energy_now"))
	full, _ := readSysfsUint(filepath.Join(batteryPath, "energy_full"))
	rate, _ := readSysfsUint(filepath.Join(batteryPath, "power_now"))
	if !hasNow {
		now, _ = readSysfsUint(filepath.Join(batteryPath, "charge_now"))
		full, _ = readSysfsUint(filepath.Join(batteryPath, "charge_full"))
		rate, _ = readSysfsUint(filepath.Join(batteryPath, "current_now"))
	}
	if rate == 0 {
		return 0, false
	}

	var remaining uint64
	if charging {
		if full <= now {
			return 0, false
		}
		remaining = mulDiv(full-now, 3600, rate)
	} else {
		remaining = mulDiv(now, 3600, rate)
	}
	if remaining == 0 {
		return 0, false
	}
	return time.Duration(remaining) * time.Second, true
}

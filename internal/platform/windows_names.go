package platform

import (
	"strings"
	"time"
)

// windowsProductName corrects the registry ProductName, which still reads
// "Windows 10" on Windows 11 builds.
func windowsProductName(productName string, build uint32) string {
	if build >= 22000 && strings.HasPrefix(productName, "Windows 10") {
		return "Windows 11" + strings.TrimPrefix(productName, "Windows 10")
	}
	return productName
}

// windowsDesktopForBuild names the Windows UI design language of a build,
// the closest Windows analogue of a desktop environment.
func windowsDesktopForBuild(build uint32) string {
	switch {
	case build >= 15063:
		return "Fluent"
	case build >= 9200:
		return "Metro"
	case build >= 6000:
		return "Aero"
	default:
		return "Classic"
	}
}

var windowsShellNames = map[string]string{
	"cmd":        "Command Prompt",
	"powershell": "PowerShell",
	"pwsh":       "PowerShell Core",
	"wt":         "Windows Terminal",
	"explorer":   "Windows Explorer",
	"nu":         "Nushell",
}

var msysShellNames = map[string]string{
	"bash": "Bash",
	"zsh":  "Zsh",
	"fish": "Fish",
	"sh":   "sh",
	"ksh":  "KornShell",
	"tcsh": "tcsh",
	"dash": "dash",
}

var windowsWindowManagers = map[string]string{
	"glazewm":     "GlazeWM",
	"komorebi":    "Komorebi",
	"seelen-ui":   "Seelen UI",
	"slu-service": "Seelen UI",
}

// msysShell maps the SHELL variable of an MSYS2/Cygwin environment.
func msysShell(shellPath string) string {
	base := normalizeProcessName(strings.ReplaceAll(shellPath, `\`, "/"))
	if name, ok := msysShellNames[base]; ok {
		return name
	}
	return base
}

// shellFromProcessChain returns the first known shell among the ancestors
// of the current process, nearest first.
func shellFromProcessChain(names []string) (string, bool) {
	for _, name := range names {
		base := normalizeProcessName(name)
		if shell, ok := msysShellNames[base]; ok {
			return shell, true
		}
		if shell, ok := windowsShellNames[base]; ok {
			return shell, true
		}
	}
	return "", false
}

const (
	batteryFlagNoBattery   = 0x80
	batteryPercentUnknown  = 255
	batteryLifeTimeUnknown = 0xFFFFFFFF
	acLineOnline           = 1
	acLineOffline          = 0
)

// systemPowerStatus mirrors SYSTEM_POWER_STATUS.
type systemPowerStatus struct {
	ACLineStatus        byte
	BatteryFlag         byte
	BatteryLifePercent  byte
	SystemStatusFlag    byte
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

func batteryFromPowerStatus(s systemPowerStatus) (BatteryInfo, error) {
	if s.BatteryFlag&batteryFlagNoBattery != 0 {
		return BatteryInfo{}, unavailable(FactBattery, "no system battery")
	}

	var info BatteryInfo
	if s.BatteryLifePercent != batteryPercentUnknown {
		info.Percentage = uint8Ptr(min(s.BatteryLifePercent, 100))
	}
	switch {
	case s.ACLineStatus == acLineOnline && s.BatteryLifePercent == 100:
		info.Status = BatteryFull
	case s.ACLineStatus == acLineOnline:
		info.Status = BatteryCharging
	case s.ACLineStatus == acLineOffline:
		info.Status = BatteryDischarging
	default:
		info.Status = BatteryUnknown
	}
	if s.BatteryLifeTime != batteryLifeTimeUnknown {
		info.TimeRemaining = durationPtr(time.Duration(s.BatteryLifeTime) * time.Second)
	}
	return info, nil
}

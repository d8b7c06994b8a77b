package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

type fakeSource struct{}

func strPtr(s string) *string { return &s }

func (fakeSource) OS() (sysinfo.OSInfo, error) {
	return sysinfo.OSInfo{Name: "Ubuntu", Version: "24.04", ID: "ubuntu"}, nil
}
func (fakeSource) KernelVersion() (string, error) { return "6.8.0", nil }
func (fakeSource) Host() (string, error)          { return "ThinkPad X1", nil }
func (fakeSource) Shell() (string, error)         { return "Zsh", nil }
func (fakeSource) CPUModel() (string, error)      { return "Intel Core i7", nil }
func (fakeSource) CPUCores() (sysinfo.CPUCores, error) {
	return sysinfo.CPUCores{Physical: 4, Logical: 8}, nil
}
func (fakeSource) GPUModel() (string, error) {
	return "", &sysinfo.FactError{Fact: sysinfo.FactGPUModel, Kind: sysinfo.KindUnavailable, Code: sysinfo.CodeNotFound}
}
func (fakeSource) MemInfo() (sysinfo.MemInfo, error) {
	return sysinfo.MemInfo{TotalBytes: 1 << 30, UsedBytes: 1 << 29}, nil
}
func (fakeSource) DiskUsage() (sysinfo.DiskUsage, error) {
	return sysinfo.DiskUsage{}, &sysinfo.FactError{Fact: sysinfo.FactDiskUsage, Kind: sysinfo.KindProbeFailure, Code: sysinfo.CodeIOError, Err: errors.New("statfs failed")}
}
func (fakeSource) Disks() ([]sysinfo.Disk, error) {
	return []sysinfo.Disk{{MountPoint: "/", Filesystem: "ext4", TotalBytes: 1 << 30, UsedBytes: 1 << 29, IsSystemDrive: true}}, nil
}
func (fakeSource) Outputs() ([]sysinfo.Output, error) {
	return []sysinfo.Output{{Width: 1920, Height: 1080, RefreshRate: 60, IsPrimary: true}}, nil
}
func (fakeSource) NetworkInterfaces() ([]sysinfo.NetworkInterface, error) {
	return []sysinfo.NetworkInterface{{Name: "lo", IsUp: true, IsLoopback: true, IPv4Address: strPtr("127.0.0.1")}}, nil
}
func (fakeSource) PrimaryNetworkInterface() (sysinfo.NetworkInterface, error) {
	return sysinfo.NetworkInterface{Name: "wlan0", IsUp: true, IPv4Address: strPtr("192.168.1.20")}, nil
}
func (fakeSource) BatteryInfo() (sysinfo.BatteryInfo, error) {
	pct := uint8(80)
	left := 90 * time.Minute
	return sysinfo.BatteryInfo{Status: sysinfo.BatteryDischarging, Percentage: &pct, TimeRemaining: &left}, nil
}
func (fakeSource) DesktopEnvironment() (string, error) {
	return "", &sysinfo.FactError{Fact: sysinfo.FactDesktopEnvironment, Kind: sysinfo.KindUnsupported}
}
func (fakeSource) WindowManager() (string, error) { return "Sway", nil }
func (fakeSource) Packages() ([]sysinfo.PackageCount, error) {
	return []sysinfo.PackageCount{{Manager: "dpkg", Count: 1890}, {Manager: "cargo", Count: 12}}, nil
}

func fixedUptime() (time.Duration, error) { return 3*time.Hour + 5*time.Minute, nil }

func TestParseFacts(t *testing.T) {
	facts, err := ParseFacts(nil)
	if err != nil {
		t.Fatalf("ParseFacts(nil) error = %v", err)
	}
	if len(facts) != len(sysinfo.Facts())+1 {
		t.Errorf("ParseFacts(nil) = %d facts, want %d", len(facts), len(sysinfo.Facts())+1)
	}

	facts, err = ParseFacts([]string{"uptime", " os "})
	if err != nil {
		t.Fatalf("ParseFacts() error = %v", err)
	}
	if len(facts) != 2 || facts[0] != sysinfo.FactUptime || facts[1] != sysinfo.FactOS {
		t.Errorf("ParseFacts() = %v, want [uptime os]", facts)
	}

	if _, err := ParseFacts([]string{"weather"}); err == nil {
		t.Error("ParseFacts([weather]) error = nil, want error")
	}
}

func TestCollect_Lines(t *testing.T) {
	report := Collect(fakeSource{}, fixedUptime, DefaultFacts())

	got := make(map[string]string)
	for _, l := range report.Lines() {
		got[l.Label] = l.Value
	}

	tests := []struct {
		label string
		want  string
	}{
		{"OS", "Ubuntu 24.04"},
		{"Cores", "4 physical, 8 logical"},
		{"Memory", "512.0 MiB / 1.0 GiB (50%)"},
		{"Disk (/)", "error"},
		{"Displays", "1920x1080 @ 60Hz *"},
		{"Local IP", "192.168.1.20 (wlan0)"},
		{"Battery", "80% [Discharging], 1h 30m left"},
		{"Packages", "1902 (dpkg 1890, cargo 12)"},
		{"Uptime", "3h 5m"},
	}
	for _, tt := range tests {
		if got[tt.label] != tt.want {
			t.Errorf("line %q = %q, want %q", tt.label, got[tt.label], tt.want)
		}
	}

	for _, skipped := range []string{"GPU", "DE"} {
		if _, ok := got[skipped]; ok {
			t.Errorf("line %q present, want it skipped", skipped)
		}
	}
}

func TestCollect_Values(t *testing.T) {
	report := Collect(fakeSource{}, fixedUptime, []sysinfo.Fact{sysinfo.FactCPUCores, sysinfo.FactGPUModel, sysinfo.FactUptime})
	values := report.Values()

	if cores, ok := values["cpu_cores"].(sysinfo.CPUCores); !ok || cores.Logical != 8 {
		t.Errorf("values[cpu_cores] = %#v", values["cpu_cores"])
	}
	failure, ok := values["gpu_model"].(map[string]string)
	if !ok || failure["kind"] != sysinfo.KindUnavailable.String() {
		t.Errorf("values[gpu_model] = %#v, want unavailable failure", values["gpu_model"])
	}
	if up, ok := values["uptime"].(int64); !ok || up != 3*3600+5*60 {
		t.Errorf("values[uptime] = %#v, want %d", values["uptime"], 3*3600+5*60)
	}
}

func TestCollect_NilUptime(t *testing.T) {
	report := Collect(fakeSource{}, nil, []sysinfo.Fact{sysinfo.FactUptime})
	if report.Entries[0].Err == nil {
		t.Error("uptime without a source: Err = nil, want error")
	}
}

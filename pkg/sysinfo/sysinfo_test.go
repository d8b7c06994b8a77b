package sysinfo

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// fakeProbe returns fixed values and counts calls per fact.
type fakeProbe struct {
	calls sync.Map // Fact -> *atomic.Int32
	delay time.Duration

	osInfo  OSInfo
	disks   []Disk
	outputs []Output
	ifaces  []NetworkInterface
	battery BatteryInfo
	pkgs    []PackageCount
	batErr  error
	gpuErr  error
	memInfo MemInfo
	memSeq  atomic.Uint64
	closed  atomic.Bool
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		osInfo: OSInfo{Name: "Arch Linux", ID: "arch"},
		disks: []Disk{
			{Name: "/dev/nvme0n1p2", MountPoint: "/", Filesystem: "ext4", DriveType: "Fixed", TotalBytes: 500, UsedBytes: 100, IsSystemDrive: true},
			{Name: "/dev/nvme0n1p3", MountPoint: "/home", Filesystem: "ext4", DriveType: "Fixed", TotalBytes: 1000, UsedBytes: 10},
		},
		outputs: []Output{
			{ID: 1, Width: 1920, Height: 1080, RefreshRate: 60},
			{ID: 2, Width: 2560, Height: 1440, RefreshRate: 144, IsPrimary: true},
		},
		ifaces: []NetworkInterface{
			{Name: "lo", IsUp: true, IsLoopback: true, IPv4Address: strPtr("127.0.0.1")},
			{Name: "eth0", IsUp: true, IPv4Address: strPtr("192.168.1.10"), MACAddress: strPtr("aa:bb:cc:dd:ee:ff")},
		},
		batErr:  &FactError{Fact: FactBattery, Kind: KindUnavailable, Code: CodeNotFound, Err: errors.New("no battery")},
		gpuErr:  &FactError{Fact: FactGPUModel, Kind: KindProbeFailure, Code: CodeIOError, Err: errors.New("read failed")},
		memInfo: MemInfo{TotalBytes: 16 << 30, UsedBytes: 4 << 30},
		pkgs:    []PackageCount{{Manager: "pacman", Count: 1200}, {Manager: "cargo", Count: 34}},
	}
}

func strPtr(s string) *string { return &s }

func (f *fakeProbe) count(fact Fact) {
	v, _ := f.calls.LoadOrStore(fact, new(atomic.Int32))
	v.(*atomic.Int32).Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
}

func (f *fakeProbe) callCount(fact Fact) int32 {
	v, ok := f.calls.Load(fact)
	if !ok {
		return 0
	}
	return v.(*atomic.Int32).Load()
}

func (f *fakeProbe) Name() string { return "fake" }
func (f *fakeProbe) Close() error { f.closed.Store(true); return nil }

func (f *fakeProbe) OS() (OSInfo, error)            { f.count(FactOS); return f.osInfo, nil }
func (f *fakeProbe) KernelVersion() (string, error) { f.count(FactKernelVersion); return "6.8.0", nil }
func (f *fakeProbe) Host() (string, error)          { f.count(FactHost); return "ThinkPad X1", nil }
func (f *fakeProbe) Shell() (string, error)         { f.count(FactShell); return "Zsh", nil }
func (f *fakeProbe) CPUModel() (string, error)      { f.count(FactCPUModel); return "AMD Ryzen 7", nil }
func (f *fakeProbe) CPUCores() (CPUCores, error) {
	f.count(FactCPUCores)
	return CPUCores{Physical: 8, Logical: 16}, nil
}
func (f *fakeProbe) GPUModel() (string, error) { f.count(FactGPUModel); return "", f.gpuErr }
func (f *fakeProbe) MemInfo() (MemInfo, error) {
	f.count(FactMemInfo)
	m := f.memInfo
	m.UsedBytes += f.memSeq.Add(1)
	return m, nil
}
func (f *fakeProbe) DiskUsage() (DiskUsage, error) {
	f.count(FactDiskUsage)
	return DiskUsage{TotalBytes: 500, UsedBytes: 100}, nil
}
func (f *fakeProbe) Disks() ([]Disk, error) {
	f.count(FactDisks)
	return append([]Disk(nil), f.disks...), nil
}
func (f *fakeProbe) Outputs() ([]Output, error) {
	f.count(FactOutputs)
	return append([]Output(nil), f.outputs...), nil
}
func (f *fakeProbe) NetworkInterfaces() ([]NetworkInterface, error) {
	f.count(FactNetworkInterfaces)
	return append([]NetworkInterface(nil), f.ifaces...), nil
}
func (f *fakeProbe) PrimaryNetworkInterface() (NetworkInterface, error) {
	f.count(FactPrimaryInterface)
	return f.ifaces[1], nil
}
func (f *fakeProbe) BatteryInfo() (BatteryInfo, error) {
	f.count(FactBattery)
	return f.battery, f.batErr
}
func (f *fakeProbe) DesktopEnvironment() (string, error) {
	f.count(FactDesktopEnvironment)
	return "KDE Plasma", nil
}
func (f *fakeProbe) WindowManager() (string, error) { f.count(FactWindowManager); return "KWin", nil }
func (f *fakeProbe) Packages() ([]PackageCount, error) {
	f.count(FactPackages)
	return append([]PackageCount(nil), f.pkgs...), nil
}

var _ platform.Probe = (*fakeProbe)(nil)

func TestSystemInfo_Idempotent(t *testing.T) {
	probe := newFakeProbe()
	si := newWithProbe(probe, nil)

	first, err := si.MemInfo()
	if err != nil {
		t.Fatalf("MemInfo() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := si.MemInfo()
		if err != nil {
			t.Fatalf("MemInfo() error = %v", err)
		}
		if got != first {
			t.Errorf("MemInfo() = %+v, want %+v", got, first)
		}
	}
	if n := probe.callCount(FactMemInfo); n != 1 {
		t.Errorf("probe MemInfo called %d times, want 1", n)
	}
}

func TestSystemInfo_SingleFlight(t *testing.T) {
	probe := newFakeProbe()
	probe.delay = 20 * time.Millisecond
	si := newWithProbe(probe, nil)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = si.CPUModel()
		}(i)
	}
	wg.Wait()

	if n := probe.callCount(FactCPUModel); n != 1 {
		t.Errorf("probe CPUModel called %d times, want 1", n)
	}
	for i, got := range results {
		if got != "AMD Ryzen 7" {
			t.Errorf("results[%d] = %q, want AMD Ryzen 7", i, got)
		}
	}
}

func TestSystemInfo_FailureCached(t *testing.T) {
	probe := newFakeProbe()
	si := newWithProbe(probe, nil)

	_, first := si.GPUModel()
	_, second := si.GPUModel()
	if first == nil || first != second {
		t.Errorf("GPUModel() errors = %v, %v, want the same non-nil error", first, second)
	}
	if !IsProbeFailure(first) {
		t.Errorf("GPUModel() error kind = %v, want probe failure", first)
	}
	if n := probe.callCount(FactGPUModel); n != 1 {
		t.Errorf("probe GPUModel called %d times, want 1", n)
	}
}

func TestSystemInfo_InstanceIsolation(t *testing.T) {
	a, b := newFakeProbe(), newFakeProbe()
	siA := newWithProbe(a, nil)
	siB := newWithProbe(b, nil)

	if _, err := siA.OS(); err != nil {
		t.Fatalf("OS() error = %v", err)
	}
	if n := b.callCount(FactOS); n != 0 {
		t.Errorf("querying one instance called the other's probe %d times", n)
	}
	if _, err := siB.OS(); err != nil {
		t.Fatalf("OS() error = %v", err)
	}
	if a.callCount(FactOS) != 1 || b.callCount(FactOS) != 1 {
		t.Errorf("probe calls = %d, %d, want 1, 1", a.callCount(FactOS), b.callCount(FactOS))
	}
}

func TestSystemInfo_NoBattery(t *testing.T) {
	si := newWithProbe(newFakeProbe(), nil)

	info, err := si.BatteryInfo()
	if !IsUnavailable(err) {
		t.Fatalf("BatteryInfo() error = %v, want unavailable", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("errors.Is(err, ErrUnavailable) = false")
	}
	if info.Percentage != nil || info.TimeRemaining != nil {
		t.Errorf("BatteryInfo() = %+v, want no values alongside the error", info)
	}
	var fe *FactError
	if !errors.As(err, &fe) || fe.Fact != FactBattery {
		t.Errorf("errors.As FactError = %+v, want fact %s", fe, FactBattery)
	}
}

func TestSystemInfo_SystemDisk(t *testing.T) {
	probe := newFakeProbe()
	si := newWithProbe(probe, nil)

	disks, err := si.Disks()
	if err != nil {
		t.Fatalf("Disks() error = %v", err)
	}
	var system int
	for _, d := range disks {
		if d.IsSystemDrive {
			system++
		}
	}
	if system != 1 {
		t.Errorf("Disks() has %d system drives, want 1", system)
	}

	d, err := si.SystemDisk()
	if err != nil {
		t.Fatalf("SystemDisk() error = %v", err)
	}
	if d.MountPoint != "/" {
		t.Errorf("SystemDisk().MountPoint = %q, want /", d.MountPoint)
	}
	if n := probe.callCount(FactDisks); n != 1 {
		t.Errorf("probe Disks called %d times, want 1", n)
	}
}

func TestSystemInfo_DiskByPath(t *testing.T) {
	si := newWithProbe(newFakeProbe(), nil)

	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/etc/passwd", "/"},
		{"/home", "/home"},
		{"/home/user/file", "/home"},
		{"/homework", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, err := si.DiskByPath(tt.path)
			if err != nil {
				t.Fatalf("DiskByPath(%q) error = %v", tt.path, err)
			}
			if d.MountPoint != tt.want {
				t.Errorf("DiskByPath(%q).MountPoint = %q, want %q", tt.path, d.MountPoint, tt.want)
			}
		})
	}

	if _, err := si.DiskByPath(""); !IsUnavailable(err) {
		t.Errorf("DiskByPath(\"\") error = %v, want unavailable", err)
	}
}

func TestSystemInfo_PrimaryOutput(t *testing.T) {
	si := newWithProbe(newFakeProbe(), nil)

	out, err := si.PrimaryOutput()
	if err != nil {
		t.Fatalf("PrimaryOutput() error = %v", err)
	}
	if out.ID != 2 || out.Width != 2560 {
		t.Errorf("PrimaryOutput() = %+v, want output 2 at 2560 wide", out)
	}
}

func TestSystemInfo_LoopbackReported(t *testing.T) {
	si := newWithProbe(newFakeProbe(), nil)

	ifaces, err := si.NetworkInterfaces()
	if err != nil {
		t.Fatalf("NetworkInterfaces() error = %v", err)
	}
	var found bool
	for _, iface := range ifaces {
		if iface.IsLoopback && iface.IPv4Address != nil && *iface.IPv4Address == "127.0.0.1" {
			found = true
		}
	}
	if !found {
		t.Errorf("NetworkInterfaces() = %+v, want loopback with 127.0.0.1", ifaces)
	}
}

func TestSystemInfo_ReturnsCopies(t *testing.T) {
	si := newWithProbe(newFakeProbe(), nil)

	disks, _ := si.Disks()
	disks[0].MountPoint = "/mutated"
	ifaces, _ := si.NetworkInterfaces()
	*ifaces[0].IPv4Address = "10.0.0.1"

	again, _ := si.Disks()
	if again[0].MountPoint != "/" {
		t.Errorf("Disks()[0].MountPoint = %q after caller mutation, want /", again[0].MountPoint)
	}
	ifacesAgain, _ := si.NetworkInterfaces()
	if *ifacesAgain[0].IPv4Address != "127.0.0.1" {
		t.Errorf("IPv4Address = %q after caller mutation, want 127.0.0.1", *ifacesAgain[0].IPv4Address)
	}
}

func TestSystemInfo_Packages(t *testing.T) {
	probe := newFakeProbe()
	si := newWithProbe(probe, nil)

	counts, err := si.Packages()
	if err != nil {
		t.Fatalf("Packages() error = %v", err)
	}
	if got := TotalPackages(counts); got != 1234 {
		t.Errorf("TotalPackages() = %d, want 1234", got)
	}
	counts[0].Count = 0
	again, _ := si.Packages()
	if again[0].Count != 1200 {
		t.Errorf("Packages()[0].Count = %d after caller mutation, want 1200", again[0].Count)
	}
	if n := probe.callCount(FactPackages); n != 1 {
		t.Errorf("probe Packages called %d times, want 1", n)
	}
}

func TestSystemInfo_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug, LogFormatText)
	si := newWithProbe(newFakeProbe(), logger)

	_, _ = si.OS()
	_, _ = si.GPUModel()
	_, _ = si.BatteryInfo()

	out := buf.String()
	if !strings.Contains(out, "resolved fact") || !strings.Contains(out, "fact=os") {
		t.Errorf("log missing resolution record, got: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "fact=gpu_model") {
		t.Errorf("log missing probe failure warning, got: %s", out)
	}
	if !strings.Contains(out, "fact not available") || !strings.Contains(out, "fact=battery_info") {
		t.Errorf("log missing unavailable record, got: %s", out)
	}
}

func TestSystemInfo_PlatformAndClose(t *testing.T) {
	probe := newFakeProbe()
	si := newWithProbe(probe, nil)

	if got := si.Platform(); got != "fake" {
		t.Errorf("Platform() = %q, want fake", got)
	}
	if err := si.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !probe.closed.Load() {
		t.Error("Close() did not close the probe")
	}
}

func TestNew_LocalProbe(t *testing.T) {
	si := New()
	defer si.Close()

	if si.Platform() == "" {
		t.Error("Platform() is empty")
	}
	// Whatever the host supports, every fact either resolves or reports
	// a classified error.
	_, err := si.OS()
	if err != nil {
		if _, ok := KindOf(err); !ok {
			t.Errorf("OS() error %v carries no kind", err)
		}
	}
}

func TestUptime_NonDecreasing(t *testing.T) {
	first, err := Uptime()
	if IsUnsupported(err) {
		t.Skip("uptime not supported on this platform")
	}
	if err != nil {
		t.Fatalf("Uptime() error = %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	second, err := Uptime()
	if err != nil {
		t.Fatalf("Uptime() error = %v", err)
	}
	if second < first {
		t.Errorf("Uptime() went from %v to %v", first, second)
	}
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// Source is the part of the facade a report reads.
type Source interface {
	OS() (sysinfo.OSInfo, error)
	KernelVersion() (string, error)
	Host() (string, error)
	Shell() (string, error)
	CPUModel() (string, error)
	CPUCores() (sysinfo.CPUCores, error)
	GPUModel() (string, error)
	MemInfo() (sysinfo.MemInfo, error)
	DiskUsage() (sysinfo.DiskUsage, error)
	Disks() ([]sysinfo.Disk, error)
	Outputs() ([]sysinfo.Output, error)
	NetworkInterfaces() ([]sysinfo.NetworkInterface, error)
	PrimaryNetworkInterface() (sysinfo.NetworkInterface, error)
	BatteryInfo() (sysinfo.BatteryInfo, error)
	DesktopEnvironment() (string, error)
	WindowManager() (string, error)
	Packages() ([]sysinfo.PackageCount, error)
}

// Entry is one resolved fact. Value is the raw result for JSON output and
// Text its human-readable rendering; both are zero when Err is set.
type Entry struct {
	Fact  sysinfo.Fact
	Label string
	Value any
	Text  string
	Err   error
}

// Report is the ordered result of querying a set of facts.
type Report struct {
	Entries []Entry
}

// DefaultFacts is the display order used when no fact list is configured.
func DefaultFacts() []sysinfo.Fact {
	return append(sysinfo.Facts(), sysinfo.FactUptime)
}

// ParseFacts converts configured fact names, keeping their order. Unknown
// names are an error.
func ParseFacts(names []string) ([]sysinfo.Fact, error) {
	if len(names) == 0 {
		return DefaultFacts(), nil
	}
	known := make(map[string]sysinfo.Fact)
	for _, f := range DefaultFacts() {
		known[string(f)] = f
	}
	facts := make([]sysinfo.Fact, 0, len(names))
	for _, name := range names {
		f, ok := known[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown fact %q", name)
		}
		facts = append(facts, f)
	}
	return facts, nil
}

var labels = map[sysinfo.Fact]string{
	sysinfo.FactOS:                 "OS",
	sysinfo.FactKernelVersion:      "Kernel",
	sysinfo.FactHost:               "Host",
	sysinfo.FactShell:              "Shell",
	sysinfo.FactCPUModel:           "CPU",
	sysinfo.FactCPUCores:           "Cores",
	sysinfo.FactGPUModel:           "GPU",
	sysinfo.FactMemInfo:            "Memory",
	sysinfo.FactDiskUsage:          "Disk (/)",
	sysinfo.FactDisks:              "Disks",
	sysinfo.FactOutputs:            "Displays",
	sysinfo.FactNetworkInterfaces:  "Interfaces",
	sysinfo.FactPrimaryInterface:   "Local IP",
	sysinfo.FactBattery:            "Battery",
	sysinfo.FactDesktopEnvironment: "DE",
	sysinfo.FactWindowManager:      "WM",
	sysinfo.FactPackages:           "Packages",
	sysinfo.FactUptime:             "Uptime",
}

// Label returns the display label for f.
func Label(f sysinfo.Fact) string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// Collect queries facts from src in order. uptime supplies the uptime
// fact, which the facade does not cache.
func Collect(src Source, uptime func() (time.Duration, error), facts []sysinfo.Fact) Report {
	r := Report{Entries: make([]Entry, 0, len(facts))}
	for _, f := range facts {
		e := Entry{Fact: f, Label: Label(f)}
		e.Value, e.Text, e.Err = resolveFact(src, uptime, f)
		if e.Err != nil {
			e.Value, e.Text = nil, ""
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

func resolveFact(src Source, uptime func() (time.Duration, error), f sysinfo.Fact) (any, string, error) {
	switch f {
	case sysinfo.FactOS:
		v, err := src.OS()
		return v, formatOS(v), err
	case sysinfo.FactKernelVersion:
		return text(src.KernelVersion())
	case sysinfo.FactHost:
		return text(src.Host())
	case sysinfo.FactShell:
		return text(src.Shell())
	case sysinfo.FactCPUModel:
		return text(src.CPUModel())
	case sysinfo.FactCPUCores:
		v, err := src.CPUCores()
		return v, fmt.Sprintf("%d physical, %d logical", v.Physical, v.Logical), err
	case sysinfo.FactGPUModel:
		return text(src.GPUModel())
	case sysinfo.FactMemInfo:
		v, err := src.MemInfo()
		return v, FormatUsage(v.UsedBytes, v.TotalBytes, v.UsedPercent()), err
	case sysinfo.FactDiskUsage:
		v, err := src.DiskUsage()
		return v, FormatUsage(v.UsedBytes, v.TotalBytes, v.UsedPercent()), err
	case sysinfo.FactDisks:
		v, err := src.Disks()
		return v, formatDisks(v), err
	case sysinfo.FactOutputs:
		v, err := src.Outputs()
		return v, formatOutputs(v), err
	case sysinfo.FactNetworkInterfaces:
		v, err := src.NetworkInterfaces()
		return v, formatInterfaces(v), err
	case sysinfo.FactPrimaryInterface:
		v, err := src.PrimaryNetworkInterface()
		return v, formatPrimary(v), err
	case sysinfo.FactBattery:
		v, err := src.BatteryInfo()
		return v, formatBattery(v), err
	case sysinfo.FactDesktopEnvironment:
		return text(src.DesktopEnvironment())
	case sysinfo.FactWindowManager:
		return text(src.WindowManager())
	case sysinfo.FactPackages:
		v, err := src.Packages()
		return v, formatPackages(v), err
	case sysinfo.FactUptime:
		if uptime == nil {
			return nil, "", fmt.Errorf("uptime: no source")
		}
		v, err := uptime()
		return v, FormatDuration(v), err
	default:
		return nil, "", fmt.Errorf("unknown fact %q", f)
	}
}

func text(s string, err error) (any, string, error) {
	return s, s, err
}

func formatOS(v sysinfo.OSInfo) string {
	return strings.TrimSpace(v.Name + " " + v.Version)
}

func formatDisks(disks []sysinfo.Disk) string {
	parts := make([]string, 0, len(disks))
	for _, d := range disks {
		s := fmt.Sprintf("%s %s", d.MountPoint, FormatUsage(d.UsedBytes, d.TotalBytes, sysinfo.DiskUsage{TotalBytes: d.TotalBytes, UsedBytes: d.UsedBytes}.UsedPercent()))
		if d.Filesystem != "" {
			s += " " + d.Filesystem
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func formatOutputs(outputs []sysinfo.Output) string {
	parts := make([]string, 0, len(outputs))
	for _, o := range outputs {
		s := fmt.Sprintf("%dx%d", o.Width, o.Height)
		if o.RefreshRate > 0 {
			s += " @ " + FormatRefresh(o.RefreshRate)
		}
		if o.IsPrimary {
			s += " *"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func formatInterfaces(ifaces []sysinfo.NetworkInterface) string {
	parts := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		s := iface.Name
		if iface.IPv4Address != nil {
			s += " " + *iface.IPv4Address
		}
		if !iface.IsUp {
			s += " (down)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func formatPrimary(iface sysinfo.NetworkInterface) string {
	switch {
	case iface.IPv4Address != nil:
		return fmt.Sprintf("%s (%s)", *iface.IPv4Address, iface.Name)
	case iface.IPv6Address != nil:
		return fmt.Sprintf("%s (%s)", *iface.IPv6Address, iface.Name)
	default:
		return iface.Name
	}
}

func formatBattery(b sysinfo.BatteryInfo) string {
	s := b.Status.String()
	if b.Percentage != nil {
		s = fmt.Sprintf("%d%% [%s]", *b.Percentage, b.Status)
	}
	if b.TimeRemaining != nil {
		s += ", " + FormatDuration(*b.TimeRemaining) + " left"
	}
	return s
}

// formatPackages renders "1234 (pacman 1200, cargo 34)".
func formatPackages(counts []sysinfo.PackageCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %d", c.Manager, c.Count))
	}
	return fmt.Sprintf("%d (%s)", sysinfo.TotalPackages(counts), strings.Join(parts, ", "))
}

// Lines returns the text rows of r, skipping facts that are unsupported
// or unavailable. Probe failures show as "error".
func (r Report) Lines() []Line {
	lines := make([]Line, 0, len(r.Entries))
	for _, e := range r.Entries {
		switch {
		case e.Err == nil:
			if e.Text != "" {
				lines = append(lines, Line{Label: e.Label, Value: e.Text})
			}
		case sysinfo.IsProbeFailure(e.Err):
			lines = append(lines, Line{Label: e.Label, Value: "error"})
		}
	}
	return lines
}

// Values returns r as a map keyed by fact name for JSON encoding. Failed
// facts map to an object with the error kind and message.
func (r Report) Values() map[string]any {
	out := make(map[string]any, len(r.Entries))
	for _, e := range r.Entries {
		if e.Err != nil {
			failure := map[string]string{"error": e.Err.Error()}
			if kind, ok := sysinfo.KindOf(e.Err); ok {
				failure["kind"] = kind.String()
			}
			out[string(e.Fact)] = failure
			continue
		}
		if d, ok := e.Value.(time.Duration); ok {
			out[string(e.Fact)] = int64(d / time.Second)
			continue
		}
		out[string(e.Fact)] = e.Value
	}
	return out
}

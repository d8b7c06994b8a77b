// Package platform answers system-information queries for one machine.
//
// Each supported OS family has a Probe built from that platform's own
// sources: procfs, sysfs and X11/RandR on Linux; sysctl, system_profiler
// and pmset on macOS; the Win32 API and the registry on Windows; sysctl and
// gopsutil on the BSDs. A remote Probe runs the Linux queries over SSH.
//
// Probes never cache. Every method performs a fresh query and either
// returns a value or a *FactError classifying the failure:
//
//   - KindUnsupported: the fact has no meaning on this platform.
//   - KindUnavailable: the machine lacks the subsystem (no battery, no
//     display, no GPU).
//   - KindProbeFailure: the subsystem exists but reading it failed.
//
// The kinds match ErrUnsupported, ErrUnavailable and ErrProbeFailure with
// errors.Is.
//
// # Usage
//
//	p := platform.NewProbe()
//	defer p.Close()
//
//	mem, err := p.MemInfo()
//	if platform.IsUnavailable(err) {
//	    // no memory information on this machine
//	}
//
// Uptime is a free function; it is never cached by callers and needs no
// Probe.
package platform

// Package sysinfo reports what a machine is: its OS, kernel, host model,
// shell, CPU, GPU, memory, disks, displays, network interfaces, battery,
// desktop environment and window manager.
//
// # Basic Usage
//
//	si := sysinfo.New()
//	defer si.Close()
//
//	osInfo, err := si.OS()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(osInfo.Name, osInfo.Version)
//
// # Caching
//
// Each fact is queried from the OS at most once per SystemInfo. The first
// call resolves it; every later call, from any goroutine, gets the same
// value or the same error. Concurrent first calls share a single query.
// MemInfo and DiskUsage are cached too: build a new SystemInfo to read them
// again. Uptime is a package function and is never cached.
//
// # Errors
//
// A fact that cannot be produced returns a *FactError. Its Kind tells the
// caller why:
//
//	bat, err := si.BatteryInfo()
//	switch {
//	case sysinfo.IsUnavailable(err):
//		// desktop machine, no battery
//	case err != nil:
//		log.Printf("battery: %v", err)
//	default:
//		fmt.Println(bat.Status)
//	}
//
// # Remote Hosts
//
// NewWithOptions with Options.Remote set answers the same queries for a
// Linux host over SSH. Display-related facts are unsupported remotely.
package sysinfo

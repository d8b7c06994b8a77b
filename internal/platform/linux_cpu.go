//go:build linux
// +build linux

package platform

import (
	"os"
	"path/filepath"
	"regexp"
)

var cpuDirPattern = regexp.MustCompile(`^cpu[0-9]+$`)

func (p *linuxProbe) CPUModel() (string, error) {
	data, err := os.ReadFile(p.procCPUInfoPath)
	if err != nil {
		return "", classifyIOError(FactCPUModel, err)
	}
	model := parseCPUInfoModel(string(data))
	if model == "" {
		return "", unavailable(FactCPUModel, "no model name in %s", p.procCPUInfoPath)
	}
	return model, nil
}

// CPUCores counts logical CPUs from sysfs and physical cores as unique
// (package, core) pairs, which folds SMT siblings together.
func (p *linuxProbe) CPUCores() (CPUCores, error) {
	if cores, ok := p.sysfsCores(); ok {
		return cores, nil
	}

	data, err := os.ReadFile(p.procCPUInfoPath)
	if err != nil {
		return CPUCores{}, classifyIOError(FactCPUCores, err)
	}
	cores, ok := parseCPUInfoCores(string(data))
	if !ok {
		return CPUCores{}, parseFailure(FactCPUCores, "no processor entries in %s", p.procCPUInfoPath)
	}
	return cores, nil
}

func (p *linuxProbe) sysfsCores() (CPUCores, bool) {
	entries, err := os.ReadDir(p.cpuSysfsPath)
	if err != nil {
		return CPUCores{}, false
	}

	type coreKey struct{ pkg, core string }
	unique := make(map[coreKey]struct{})
	var logical uint

	for _, entry := range entries {
		if !cpuDirPattern.MatchString(entry.Name()) {
			continue
		}
		topology := filepath.Join(p.cpuSysfsPath, entry.Name(), "topology")
		coreID, err := readTrimmed(filepath.Join(topology, "core_id"))
		if err != nil {
			// Offline CPUs have no topology directory.
			continue
		}
		pkgID, _ := readTrimmed(filepath.Join(topology, "physical_package_id"))
		unique[coreKey{pkgID, coreID}] = struct{}{}
		logical++
	}

	if logical == 0 {
		return CPUCores{}, false
	}
	return CPUCores{Physical: uint(len(unique)), Logical: logical}, true
}

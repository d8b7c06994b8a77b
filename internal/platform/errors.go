package platform

import (
	"errors"
	"fmt"
	"io/fs"
)

// Fact identifies one queryable category of system information.
type Fact string

const (
	FactOS                 Fact = "os"
	FactKernelVersion      Fact = "kernel_version"
	FactHost               Fact = "host"
	FactShell              Fact = "shell"
	FactCPUModel           Fact = "cpu_model"
	FactCPUCores           Fact = "cpu_cores"
	FactGPUModel           Fact = "gpu_model"
	FactMemInfo            Fact = "mem_info"
	FactDiskUsage          Fact = "disk_usage"
	FactDisks              Fact = "disks"
	FactOutputs            Fact = "outputs"
	FactNetworkInterfaces  Fact = "network_interfaces"
	FactPrimaryInterface   Fact = "primary_network_interface"
	FactBattery            Fact = "battery_info"
	FactDesktopEnvironment Fact = "desktop_environment"
	FactWindowManager      Fact = "window_manager"
	FactPackages           Fact = "packages"
	FactUptime             Fact = "uptime"
)

// Facts lists every cached fact category in display order.
var Facts = []Fact{
	FactOS, FactKernelVersion, FactHost, FactShell,
	FactCPUModel, FactCPUCores, FactGPUModel,
	FactMemInfo, FactDiskUsage, FactDisks,
	FactOutputs, FactNetworkInterfaces, FactPrimaryInterface,
	FactBattery, FactDesktopEnvironment, FactWindowManager,
	FactPackages,
}

// Kind classifies why a fact could not be produced.
type Kind int

const (
	// KindUnsupported means the fact has no meaning on this platform.
	KindUnsupported Kind = iota + 1
	// KindUnavailable means the platform supports the fact but this
	// machine lacks the subsystem (no battery, no display, ...).
	KindUnavailable
	// KindProbeFailure means the subsystem exists but the query failed.
	KindProbeFailure
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindUnavailable:
		return "unavailable"
	case KindProbeFailure:
		return "probe failure"
	default:
		return "unknown"
	}
}

var (
	// ErrUnsupported matches every KindUnsupported error via errors.Is.
	ErrUnsupported = errors.New("not supported on this platform")
	// ErrUnavailable matches every KindUnavailable error via errors.Is.
	ErrUnavailable = errors.New("not available on this system")
	// ErrProbeFailure matches every KindProbeFailure error via errors.Is.
	ErrProbeFailure = errors.New("probe failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupported:
		return ErrUnsupported
	case KindUnavailable:
		return ErrUnavailable
	default:
		return ErrProbeFailure
	}
}

// Code gives finer detail about a failure.
type Code string

const (
	CodeNotFound         Code = "not_found"
	CodePermissionDenied Code = "permission_denied"
	CodeParseError       Code = "parse_error"
	CodeIOError          Code = "io_error"
	CodeAPIUnavailable   Code = "api_unavailable"
	CodeNetworkError     Code = "network_error"
	CodeTimeout          Code = "timeout"
	CodeOther            Code = "other"
)

// FactError is returned by every Probe method that cannot produce its fact.
type FactError struct {
	Fact Fact
	Kind Kind
	Code Code
	Err  error
}

// Error implements the error interface.
func (e *FactError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Fact, e.Kind)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Fact, e.Kind, e.Code, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause, so errors.Is works
// against ErrUnavailable and against the underlying error alike.
func (e *FactError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var fe *FactError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsUnsupported reports whether err is a KindUnsupported failure.
func IsUnsupported(err error) bool { return errors.Is(err, ErrUnsupported) }

// IsUnavailable reports whether err is a KindUnavailable failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsProbeFailure reports whether err is a KindProbeFailure failure.
func IsProbeFailure(err error) bool { return errors.Is(err, ErrProbeFailure) }

func unsupported(fact Fact) error {
	return &FactError{Fact: fact, Kind: KindUnsupported, Code: CodeAPIUnavailable}
}

func unavailable(fact Fact, format string, args ...any) error {
	return &FactError{Fact: fact, Kind: KindUnavailable, Code: CodeNotFound, Err: fmt.Errorf(format, args...)}
}

func probeFailure(fact Fact, code Code, err error) error {
	return &FactError{Fact: fact, Kind: KindProbeFailure, Code: code, Err: err}
}

func parseFailure(fact Fact, format string, args ...any) error {
	return probeFailure(fact, CodeParseError, fmt.Errorf(format, args...))
}

// classifyIOError maps a filesystem error onto the taxonomy. A missing file
// means the subsystem is absent; anything else is a failed probe.
func classifyIOError(fact Fact, err error) error {
	var fe *FactError
	if errors.As(err, &fe) {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &FactError{Fact: fact, Kind: KindUnavailable, Code: CodeNotFound, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return probeFailure(fact, CodePermissionDenied, err)
	default:
		return probeFailure(fact, CodeIOError, err)
	}
}

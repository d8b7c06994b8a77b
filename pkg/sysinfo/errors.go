package sysinfo

import "github.com/opd-ai/go-sysinfo/internal/platform"

// FactError is the error returned for any fact that could not be produced.
// Use errors.As to inspect it, or the Is* helpers for the common checks.
type FactError = platform.FactError

// Fact names one category of system information.
type Fact = platform.Fact

// Kind classifies a FactError.
type Kind = platform.Kind

// Code refines a Kind.
type Code = platform.Code

const (
	KindUnsupported  = platform.KindUnsupported
	KindUnavailable  = platform.KindUnavailable
	KindProbeFailure = platform.KindProbeFailure
)

const (
	CodeNotFound         = platform.CodeNotFound
	CodePermissionDenied = platform.CodePermissionDenied
	CodeParseError       = platform.CodeParseError
	CodeIOError          = platform.CodeIOError
	CodeAPIUnavailable   = platform.CodeAPIUnavailable
	CodeNetworkError     = platform.CodeNetworkError
	CodeTimeout          = platform.CodeTimeout
	CodeOther            = platform.CodeOther
)

const (
	FactOS                 = platform.FactOS
	FactKernelVersion      = platform.FactKernelVersion
	FactHost               = platform.FactHost
	FactShell              = platform.FactShell
	FactCPUModel           = platform.FactCPUModel
	FactCPUCores           = platform.FactCPUCores
	FactGPUModel           = platform.FactGPUModel
	FactMemInfo            = platform.FactMemInfo
	FactDiskUsage          = platform.FactDiskUsage
	FactDisks              = platform.FactDisks
	FactOutputs            = platform.FactOutputs
	FactNetworkInterfaces  = platform.FactNetworkInterfaces
	FactPrimaryInterface   = platform.FactPrimaryInterface
	FactBattery            = platform.FactBattery
	FactDesktopEnvironment = platform.FactDesktopEnvironment
	FactWindowManager      = platform.FactWindowManager
	FactPackages           = platform.FactPackages
	FactUptime             = platform.FactUptime
)

var (
	ErrUnsupported  = platform.ErrUnsupported
	ErrUnavailable  = platform.ErrUnavailable
	ErrProbeFailure = platform.ErrProbeFailure
)

// Facts lists every cached fact in display order.
func Facts() []Fact {
	return append([]Fact(nil), platform.Facts...)
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) { return platform.KindOf(err) }

// IsUnsupported reports whether the fact has no meaning on this platform.
func IsUnsupported(err error) bool { return platform.IsUnsupported(err) }

// IsUnavailable reports whether the machine lacks the subsystem.
func IsUnavailable(err error) bool { return platform.IsUnavailable(err) }

// IsProbeFailure reports whether the query itself failed.
func IsProbeFailure(err error) bool { return platform.IsProbeFailure(err) }

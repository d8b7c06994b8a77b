package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// ValidationError is one problem with a configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors make the configuration unusable.
	Errors []ValidationError
	// Warnings are non-fatal, such as unknown keys in the file.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// KnownFacts returns the names accepted in display.facts, uptime included.
func KnownFacts() map[string]bool {
	known := map[string]bool{string(sysinfo.FactUptime): true}
	for _, f := range sysinfo.Facts() {
		known[string(f)] = true
	}
	return known
}

// Validate checks cfg for values the command cannot use.
func Validate(cfg Config) *ValidationResult {
	result := &ValidationResult{}

	known := KnownFacts()
	seen := make(map[string]bool)
	for _, fact := range cfg.Display.Facts {
		switch {
		case !known[fact]:
			result.AddError("display.facts", fmt.Sprintf("unknown fact %q", fact))
		case seen[fact]:
			result.AddWarning("display.facts", fmt.Sprintf("fact %q listed twice", fact))
		}
		seen[fact] = true
	}
	if cfg.Display.JSON && cfg.Display.Box {
		result.AddWarning("display.box", "ignored with json output")
	}

	if _, err := sysinfo.ParseLevel(cfg.Logging.Level); err != nil {
		result.AddError("logging.level", err.Error())
	}
	switch sysinfo.LogFormat(cfg.Logging.Format) {
	case sysinfo.LogFormatText, sysinfo.LogFormatJSON, "":
	default:
		result.AddError("logging.format", fmt.Sprintf("unknown format %q (want text or json)", cfg.Logging.Format))
	}

	if cfg.Remote.Port < 0 || cfg.Remote.Port > maxPort {
		result.AddError("remote.port", fmt.Sprintf("%d is out of range 0-%d", cfg.Remote.Port, maxPort))
	}
	if cfg.Remote.Timeout != "" {
		if d, err := cast.ToDurationE(cfg.Remote.Timeout); err != nil {
			result.AddError("remote.timeout", err.Error())
		} else if d < 0 {
			result.AddError("remote.timeout", "must not be negative")
		}
	}
	if cfg.Remote.Enabled() && cfg.Remote.Insecure {
		result.AddWarning("remote.insecure", "host key verification is disabled")
	}
	if !cfg.Remote.Enabled() && (cfg.Remote.User != "" || cfg.Remote.IdentityFile != "") {
		result.AddWarning("remote.host", "remote settings given without a host")
	}

	return result
}

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestFactError_Is(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"unsupported", unsupported(FactOutputs), KindUnsupported},
		{"unavailable", unavailable(FactBattery, "no battery"), KindUnavailable},
		{"probe failure", probeFailure(FactMemInfo, CodeIOError, cause), KindProbeFailure},
		{"wrapped", fmt.Errorf("outer: %w", probeFailure(FactMemInfo, CodeIOError, cause)), KindProbeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			if !ok || kind != tt.kind {
				t.Errorf("KindOf() = %v, %v; want %v, true", kind, ok, tt.kind)
			}
			if got := IsUnsupported(tt.err); got != (tt.kind == KindUnsupported) {
				t.Errorf("IsUnsupported() = %v", got)
			}
			if got := IsUnavailable(tt.err); got != (tt.kind == KindUnavailable) {
				t.Errorf("IsUnavailable() = %v", got)
			}
			if got := IsProbeFailure(tt.err); got != (tt.kind == KindProbeFailure) {
				t.Errorf("IsProbeFailure() = %v", got)
			}
		})
	}

	if !errors.Is(probeFailure(FactMemInfo, CodeIOError, cause), cause) {
		t.Error("errors.Is(probeFailure, cause) = false, want true")
	}
	var fe *FactError
	if !errors.As(unavailable(FactBattery, "x"), &fe) || fe.Fact != FactBattery {
		t.Errorf("errors.As() = %+v", fe)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain error) ok = true, want false")
	}
}

func TestFactError_Error(t *testing.T) {
	msg := probeFailure(FactDiskUsage, CodePermissionDenied, errors.New("statfs /")).Error()
	for _, part := range []string{"disk_usage", "permission_denied", "statfs /"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, missing %q", msg, part)
		}
	}
	if msg := unsupported(FactOutputs).Error(); !strings.Contains(msg, "outputs") {
		t.Errorf("Error() = %q, missing fact", msg)
	}
}

func TestClassifyIOError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode Code
	}{
		{"missing", &fs.PathError{Op: "open", Path: "/sys/x", Err: fs.ErrNotExist}, KindUnavailable, CodeNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "/sys/x", Err: fs.ErrPermission}, KindProbeFailure, CodePermissionDenied},
		{"other", errors.New("EIO"), KindProbeFailure, CodeIOError},
		{"already classified", unsupported(FactHost), KindUnsupported, CodeAPIUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyIOError(FactHost, tt.err)
			var fe *FactError
			if !errors.As(err, &fe) {
				t.Fatalf("classifyIOError() = %v, want *FactError", err)
			}
			if fe.Kind != tt.wantKind || fe.Code != tt.wantCode {
				t.Errorf("classifyIOError() = %v/%v, want %v/%v", fe.Kind, fe.Code, tt.wantKind, tt.wantCode)
			}
		})
	}

	_, err := os.ReadFile("/definitely/not/here")
	if !IsUnavailable(classifyIOError(FactGPUModel, err)) {
		t.Error("classifyIOError(ENOENT) is not unavailable")
	}
}

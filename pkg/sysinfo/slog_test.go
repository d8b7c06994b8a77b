package sysinfo

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { adapter.Debug("debug message", "key", "value") }, "key=value"},
		{"info", func() { adapter.Info("info message", "count", 42) }, "count=42"},
		{"warn", func() { adapter.Warn("warn message") }, "warn message"},
		{"error", func() { adapter.Error("error message", "fact", "gpu_model") }, "fact=gpu_model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("%s() output = %q, want it to contain %q", tt.name, buf.String(), tt.want)
			}
		})
	}
}

func TestNewSlogAdapterNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil || adapter.logger == nil {
		t.Fatal("NewSlogAdapter(nil) should fall back to slog.Default()")
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, LogFormatJSON)

	logger.Info("json test", "fact", "os")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json test"`) {
		t.Errorf("NewLogger(json) output = %s, want JSON msg", out)
	}
	if !strings.Contains(out, `"fact":"os"`) {
		t.Errorf("NewLogger(json) output = %s, want fact field", out)
	}
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := JSONLogger(&buf, slog.LevelWarn)

	logger.Debug("should not appear")
	logger.Info("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("logger wrote records below its level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("logger dropped the warn record: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger()
	logger.Debug("test debug", "key", "value")
	logger.Info("test info", "count", 42)
	logger.Warn("test warn")
	logger.Error("test error")
}

func TestDefaultLoggers(t *testing.T) {
	for _, logger := range []Logger{DefaultLogger(), DebugLogger(), JSONLogger(nil, slog.LevelInfo)} {
		if logger == nil {
			t.Fatal("logger constructor returned nil")
		}
	}
}

package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestVisibleWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"\x1b[36mabc\x1b[0m", 3},
		{"日本", 4},
	}

	for _, tt := range tests {
		if got := VisibleWidth(tt.input); got != tt.want {
			t.Errorf("VisibleWidth(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestWriteText_Plain(t *testing.T) {
	var buf bytes.Buffer
	lines := []Line{{"OS", "Arch Linux"}, {"Kernel", "6.9.1"}}
	if err := WriteText(&buf, "", lines, false); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	want := "OS:     Arch Linux\nKernel: 6.9.1\n"
	if buf.String() != want {
		t.Errorf("WriteText() = %q, want %q", buf.String(), want)
	}
}

func TestWriteText_Boxed(t *testing.T) {
	var buf bytes.Buffer
	lines := []Line{{"OS", "Arch Linux"}, {"Host", "日本"}}
	if err := WriteText(&buf, "dev@box", lines, true); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	rows := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(rows) != 4 {
		t.Fatalf("WriteText() rows = %d, want 4:\n%s", len(rows), buf.String())
	}
	width := VisibleWidth(rows[0])
	for i, row := range rows {
		if w := VisibleWidth(row); w != width {
			t.Errorf("row %d width = %d, want %d: %q", i, w, width, row)
		}
	}
	if !strings.Contains(rows[0], "dev@box") {
		t.Errorf("top border %q missing title", rows[0])
	}
}

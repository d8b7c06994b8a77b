package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI color escapes so they do not count towards width.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Line is one label/value row of text output.
type Line struct {
	Label string
	Value string
}

// VisibleWidth returns the terminal cell width of s, ignoring ANSI escapes
// and counting East Asian wide runes as two cells.
func VisibleWidth(s string) int {
	return runewidth.StringWidth(ansiRegex.ReplaceAllString(s, ""))
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if n := width - VisibleWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// formatLines aligns values in a column after the longest label.
func formatLines(lines []Line) []string {
	labelWidth := 0
	for _, l := range lines {
		if w := VisibleWidth(l.Label); w > labelWidth {
			labelWidth = w
		}
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, padRight(l.Label+":", labelWidth+1)+" "+l.Value)
	}
	return out
}

// WriteText writes lines with aligned values. With boxed set, the block is
// framed with box-drawing characters and an optional title in the top
// border.
func WriteText(w io.Writer, title string, lines []Line, boxed bool) error {
	rows := formatLines(lines)
	if !boxed {
		if title != "" {
			if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", VisibleWidth(title))); err != nil {
				return err
			}
		}
		for _, row := range rows {
			if _, err := fmt.Fprintln(w, row); err != nil {
				return err
			}
		}
		return nil
	}

	inner := VisibleWidth(title) + 2
	for _, row := range rows {
		if w := VisibleWidth(row); w > inner {
			inner = w
		}
	}

	top := "┌" + strings.Repeat("─", inner+2) + "┐"
	if title != "" {
		label := " " + title + " "
		top = "┌─" + label + strings.Repeat("─", inner+1-VisibleWidth(label)) + "┐"
	}
	if _, err := fmt.Fprintln(w, top); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "│ %s │\n", padRight(row, inner)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "└"+strings.Repeat("─", inner+2)+"┘")
	return err
}

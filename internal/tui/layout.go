package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines, so panes line up when joined or overlaid.
func normalizePane(s string, width, height int) []string {
	width = max(width, 0)
	height = max(height, 0)

	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, ln := range lines {
		lines[i] = fitWidth(ln, width)
	}
	return lines
}

// fitWidth truncates or pads one line to width columns.
func fitWidth(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	// Bound the work on pathological lines before measuring.
	if len(ln) > 8192 {
		ln = xansi.Cut(ln, 0, width+1)
	}
	w := xansi.StringWidth(ln)
	if w > width {
		ln = xansi.Truncate(ln, width, glyphEllipsis())
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// overlay draws block over base with its top-left corner at (x, y). Cells of
// base outside the block are kept.
func overlay(base []string, block []string, x, y int) {
	for i, ln := range block {
		row := y + i
		if row < 0 || row >= len(base) {
			continue
		}
		bw := xansi.StringWidth(ln)
		cur := base[row]
		curW := xansi.StringWidth(cur)
		left := xansi.Cut(cur, 0, x)
		if lw := xansi.StringWidth(left); lw < x {
			left += strings.Repeat(" ", x-lw)
		}
		right := ""
		if x+bw < curW {
			right = xansi.Cut(cur, x+bw, curW)
		}
		base[row] = left + ln + right
	}
}

// columns lays values out in fixed-width cells separated by two spaces. The
// last cell is not padded.
func columns(widths []int, vals ...string) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteString("  ")
		}
		if i < len(widths) && i < len(vals)-1 {
			b.WriteString(fitWidth(v, widths[i]))
			continue
		}
		b.WriteString(v)
	}
	return b.String()
}

// Package popup draws bordered boxes over an existing view.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/tubeplay/internal/ui/styles"
)

// Bordered wraps content in a rounded, padded border no wider than
// maxWidth columns.
func Bordered(content string, maxWidth int) string {
	width := min(maxLineWidth(content)+6, maxWidth) // border + padding
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().BorderFocus).
		Padding(1, 2).
		Width(max(width-2, 0)).
		Render(content)
}

// Overlay centers box over base. base is treated as a width x height
// screen; lines of box replace the covered cells and leave the rest.
func Overlay(base, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	top := max((height-len(boxLines))/2, 0)
	left := max((width-maxLineWidth(box))/2, 0)

	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}

	for i, line := range boxLines {
		row := top + i
		if row >= len(baseLines) {
			break
		}
		baseLines[row] = compose(baseLines[row], line, left, width)
	}
	return strings.Join(baseLines, "\n")
}

// compose writes overlay into base starting at column col. Both may carry
// ANSI styling; cells are cut by display width so wide runes stay aligned.
func compose(base, overlay string, col, width int) string {
	overlayWidth := ansi.StringWidth(overlay)
	if w := ansi.StringWidth(base); w < width {
		base += strings.Repeat(" ", width-w)
	}

	prefix := ansi.Cut(base, 0, col)
	if w := ansi.StringWidth(prefix); w < col {
		prefix += strings.Repeat(" ", col-w)
	}

	end := col + overlayWidth
	suffix := ""
	if end < width {
		suffix = ansi.Cut(base, end, width)
		if w := ansi.StringWidth(suffix); w < width-end {
			suffix = strings.Repeat(" ", width-end-w) + suffix
		}
	}
	return prefix + overlay + suffix
}

func maxLineWidth(s string) int {
	maxW := 0
	for line := range strings.SplitSeq(s, "\n") {
		maxW = max(maxW, lipgloss.Width(line))
	}
	return maxW
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func modalWidth(width int) int {
	w := width - 8
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

func modalBodyWidth(width int) int {
	return modalWidth(width) - 4
}

// renderModalBox draws a titled, bordered box sized for the terminal width.
func renderModalBox(width int, title string, content string) string {
	w := modalWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Width(w - 4).
		Render(title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Padding(0, 1).
		Width(w - 2)
	return box.Render(header + "\n\n" + content)
}

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus, busy bool) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	} else {
		cancel = btnActive.Render(cancelLabel)
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)
	if busy {
		controls = styleMuted().Render("Deleting...")
	}

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

// overlayCenter places fg over the middle of bg, line by line.
func overlayCenter(bg string, fg string, width int, height int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	fgLines := strings.Split(fg, "\n")
	fgW := 0
	for _, l := range fgLines {
		if w := xansi.StringWidth(l); w > fgW {
			fgW = w
		}
	}
	top := (height - len(fgLines)) / 2
	if top < 0 {
		top = 0
	}
	left := (width - fgW) / 2
	if left < 0 {
		left = 0
	}
	for i, l := range fgLines {
		row := top + i
		if row >= len(bgLines) {
			break
		}
		base := bgLines[row]
		baseW := xansi.StringWidth(base)
		prefix := xansi.Cut(base, 0, left)
		if pad := left - xansi.StringWidth(prefix); pad > 0 {
			prefix += strings.Repeat(" ", pad)
		}
		suffix := ""
		if baseW > left+fgW {
			suffix = xansi.Cut(base, left+fgW, baseW)
		}
		bgLines[row] = prefix + l + suffix
	}
	return strings.Join(bgLines, "\n")
}

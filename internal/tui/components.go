package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderHeader returns the title line with an optional muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-len([]rune(title))-4)
	if subtitle == "" {
		return HeaderStyle.Render(title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, HeaderStyle.Render(title), "  ", renderMuted(subtitle))
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 2).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// renderChip draws a pill for a category or filter value.
func renderChip(label string, active bool) string {
	if active {
		return ChipActiveStyle.Render(label)
	}
	return ChipStyle.Render(label)
}

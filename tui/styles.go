package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ibreez3/pixel-ai/chat"
)

// Game Boy palette, darkest to lightest.
const (
	gbDarkest  = lipgloss.Color("#0f380f")
	gbDark     = lipgloss.Color("#306850")
	gbLight    = lipgloss.Color("#8bac0f")
	gbLightest = lipgloss.Color("#9bbc0f")
	gbBubble   = lipgloss.Color("#4a6938")
	errRed     = lipgloss.Color("#f87171")
	okGreen    = lipgloss.Color("#4ade80")
)

type styles struct {
	header    lipgloss.Style
	model     lipgloss.Style
	statusOK  lipgloss.Style
	statusBad lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	errBox    lipgloss.Style
	hint      lipgloss.Style
	welcome   lipgloss.Style
}

func stylesFor(theme chat.Theme) styles {
	bg, fg, accent, bubble := gbDarkest, gbLight, gbLightest, gbBubble
	if theme == chat.ThemeLight {
		bg, fg, accent, bubble = gbLight, gbDarkest, gbDark, lipgloss.Color("#c4cfa1")
	}
	bubbleBase := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(accent).Background(bg).Padding(0, 1),
		model:     lipgloss.NewStyle().Foreground(fg),
		statusOK:  lipgloss.NewStyle().Foreground(okGreen),
		statusBad: lipgloss.NewStyle().Foreground(errRed),
		user:      bubbleBase.BorderForeground(accent).Background(bubble).Foreground(fg),
		assistant: bubbleBase.BorderForeground(gbDark).Foreground(fg),
		errBox:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(errRed).Foreground(errRed).Padding(0, 1),
		hint:      lipgloss.NewStyle().Foreground(gbDark),
		welcome:   lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}

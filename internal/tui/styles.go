package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Error     lipgloss.Style
	Sources   lipgloss.Style
	Status    lipgloss.Style
	Spinner   lipgloss.Style
	Prompt    lipgloss.Style
}

// Colours follow the school crest: maroon and gold.
func defaultStyles() styles {
	maroon := lipgloss.AdaptiveColor{Light: "#7B1E2B", Dark: "#D46A78"}
	gold := lipgloss.AdaptiveColor{Light: "#9A7B00", Dark: "#E8C547"}
	faint := lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}

	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(maroon).Padding(0, 1),
		User:      lipgloss.NewStyle().Bold(true).Foreground(gold).MarginTop(1),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(maroon).MarginTop(1),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D")),
		Sources:   lipgloss.NewStyle().Faint(true).Foreground(faint).PaddingLeft(2),
		Status:    lipgloss.NewStyle().Foreground(faint),
		Spinner:   lipgloss.NewStyle().Foreground(gold),
		Prompt:    lipgloss.NewStyle().Foreground(gold),
	}
}

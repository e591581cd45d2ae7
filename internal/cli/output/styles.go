package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the text styles used by command reports.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Position lipgloss.Style
}

// DefaultStyles returns colored styles for terminals.
func DefaultStyles() *Styles {
	return &Styles{
		Header1:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:  lipgloss.NewStyle().Bold(true).Underline(true),
		Bold:     lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Position: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1:  plain,
		Header2:  plain,
		Bold:     plain,
		Muted:    plain,
		Success:  plain,
		Error:    plain,
		Warning:  plain,
		Position: plain,
	}
}

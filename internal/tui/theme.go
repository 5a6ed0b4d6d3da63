package tui

import "github.com/charmbracelet/lipgloss"

type ThemeName string

const (
	ThemePorcelain ThemeName = "porcelain"
	ThemeMidnight  ThemeName = "midnight"
)

type Theme struct {
	Name ThemeName

	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	Accent      lipgloss.AdaptiveColor
	Warn        lipgloss.AdaptiveColor
	Error       lipgloss.AdaptiveColor
	Good        lipgloss.AdaptiveColor
	Border      lipgloss.AdaptiveColor

	TopBar     lipgloss.Style
	Pane       lipgloss.Style
	PaneTitle  lipgloss.Style
	Footer     lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Boundary   lipgloss.Style
	ScoreHot   lipgloss.Style
	ScoreCool  lipgloss.Style
	Muted      lipgloss.Style
}

func NewTheme(name ThemeName) Theme {
	t := Theme{Name: name}
	switch name {
	case ThemeMidnight:
		t.TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
		t.TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
		t.Accent = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}
		t.Warn = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
		t.Error = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
		t.Good = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
		t.Border = lipgloss.AdaptiveColor{Light: "#312E81", Dark: "#4338CA"}
	default:
		t.Name = ThemePorcelain
		t.TextPrimary = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
		t.TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
		t.Accent = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
		t.Warn = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
		t.Error = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
		t.Good = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
		t.Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
	}

	t.TopBar = lipgloss.NewStyle().Bold(true).Foreground(t.Accent).Padding(0, 1)
	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)
	t.Selected = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Unselected = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.Boundary = lipgloss.NewStyle().Foreground(t.Warn)
	t.ScoreHot = lipgloss.NewStyle().Foreground(t.Error)
	t.ScoreCool = lipgloss.NewStyle().Foreground(t.Good)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	return t
}

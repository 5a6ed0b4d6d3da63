// Package tui is a small terminal browser over one analyzed session:
// segments on the left, the selected segment's boundaries and signals on
// the right.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sessionlens/internal/analysis"
)

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous segment")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next segment")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Browser struct {
	path   string
	report *analysis.Report

	theme Theme
	keys  keyMap

	selected int
	detail   viewport.Model

	width  int
	height int
	ready  bool
}

func NewBrowser(path string, report *analysis.Report, theme Theme) *Browser {
	return &Browser{
		path:   path,
		report: report,
		theme:  theme,
		keys:   newKeyMap(),
		width:  100,
		height: 30,
	}
}

func (b *Browser) Init() tea.Cmd {
	return nil
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		detailW := b.width - b.listWidth() - 6
		detailH := b.height - 4
		if !b.ready {
			b.detail = viewport.New(max(detailW, 20), max(detailH, 5))
			b.ready = true
		} else {
			b.detail.Width = max(detailW, 20)
			b.detail.Height = max(detailH, 5)
		}
		b.refreshDetail()
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Up):
			if b.selected > 0 {
				b.selected--
				b.refreshDetail()
			}
			return b, nil
		case key.Matches(msg, b.keys.Down):
			if b.selected < len(b.report.Segments)-1 {
				b.selected++
				b.refreshDetail()
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.detail, cmd = b.detail.Update(msg)
	return b, cmd
}

func (b *Browser) View() string {
	if !b.ready {
		return "loading..."
	}
	top := b.theme.TopBar.Render(fmt.Sprintf("sessionlens — %s (%d segments)", b.path, len(b.report.Segments)))
	list := b.theme.Pane.Width(b.listWidth()).Render(b.renderList())
	detail := b.theme.Pane.Render(b.detail.View())
	footer := b.theme.Footer.Render("↑/↓ select segment · scroll detail with pgup/pgdn · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, top,
		lipgloss.JoinHorizontal(lipgloss.Top, list, detail), footer)
}

func (b *Browser) listWidth() int {
	w := b.width / 3
	if w < 28 {
		w = 28
	}
	return w
}

func (b *Browser) renderList() string {
	var sb strings.Builder
	sb.WriteString(b.theme.PaneTitle.Render("Segments"))
	sb.WriteByte('\n')
	for i, seg := range b.report.Segments {
		marker := "  "
		style := b.theme.Unselected
		if i == b.selected {
			marker = "> "
			style = b.theme.Selected
		}
		cause := "end"
		if len(seg.Segment.Boundaries) > 0 {
			kinds := make([]string, 0, len(seg.Segment.Boundaries))
			for _, bd := range seg.Segment.Boundaries {
				kinds = append(kinds, string(bd.Type))
			}
			cause = strings.Join(kinds, "+")
		}
		sb.WriteString(style.Render(fmt.Sprintf("%s#%d  %d entries  %s", marker, i+1, seg.Segment.EntryCount, cause)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Browser) refreshDetail() {
	if !b.ready || b.selected >= len(b.report.Segments) {
		return
	}
	seg := b.report.Segments[b.selected]
	var sb strings.Builder

	sb.WriteString(b.theme.PaneTitle.Render(fmt.Sprintf("Segment %d", b.selected+1)))
	sb.WriteByte('\n')
	sb.WriteString(b.theme.Muted.Render(fmt.Sprintf("%s → %s  (%d entries)",
		seg.Segment.StartTimestamp.Format("15:04:05"),
		seg.Segment.EndTimestamp.Format("15:04:05"),
		seg.Segment.EntryCount)))
	sb.WriteString("\n\n")

	sb.WriteString(b.theme.PaneTitle.Render("Why it ended"))
	sb.WriteByte('\n')
	if len(seg.Segment.Boundaries) == 0 {
		sb.WriteString(b.theme.Muted.Render("  trailing segment, no boundary"))
		sb.WriteByte('\n')
	}
	for _, bd := range seg.Segment.Boundaries {
		sb.WriteString(b.theme.Boundary.Render("  " + describeBoundary(bd)))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	sb.WriteString(b.theme.PaneTitle.Render("Signals"))
	sb.WriteByte('\n')
	f := seg.Friction
	d := seg.Delight
	sb.WriteString(b.theme.ScoreHot.Render(fmt.Sprintf("  friction %.2f", f.Score)))
	sb.WriteString(b.theme.Muted.Render(fmt.Sprintf("  rephrasing=%d loops=%d churn=%d", f.RephrasingCascades, f.ToolLoops, f.ContextChurn)))
	sb.WriteByte('\n')
	if f.ModelSwitchFrom != "" {
		sb.WriteString(b.theme.Muted.Render("  switched away from " + f.ModelSwitchFrom))
		sb.WriteByte('\n')
	}
	if f.SilentTermination {
		sb.WriteString(b.theme.ScoreHot.Render("  ended with an unresolved error"))
		sb.WriteByte('\n')
	}
	sb.WriteString(b.theme.ScoreCool.Render(fmt.Sprintf("  delight  %.2f", d.Score)))
	sb.WriteString(b.theme.Muted.Render(fmt.Sprintf("  recovery=%v oneshot=%v praise=%v", d.ResilientRecovery, d.OneShotSuccess, d.ExplicitPraise)))
	sb.WriteByte('\n')

	b.detail.SetContent(sb.String())
	b.detail.GotoTop()
}

func describeBoundary(b analysis.Boundary) string {
	switch b.Type {
	case analysis.BoundaryResume:
		return fmt.Sprintf("resume after %.2f min idle", b.Resume.GapMinutes)
	case analysis.BoundaryCompaction:
		return fmt.Sprintf("compaction (%d tokens before)", b.Compaction.TokensBefore)
	case analysis.BoundaryBranch:
		return "branch from " + b.PreviousEntryID
	case analysis.BoundaryTreeJump:
		return fmt.Sprintf("tree jump: expected %s, got %s", b.TreeJump.ExpectedParentID, b.TreeJump.ActualParentID)
	case analysis.BoundaryHandoff:
		if b.Handoff.Agent != "" {
			return "handoff to " + b.Handoff.Agent
		}
		return "handoff"
	}
	return string(b.Type)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"sessionlens/internal/analysis"
	"sessionlens/internal/app"
	"sessionlens/internal/logfile"
	"sessionlens/internal/tui"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

type cliState struct {
	cfg     app.Config
	logger  *app.Logger
	asJSON  bool
	gapMins float64
	resumed bool
}

func (s *cliState) options() analysis.ReportOptions {
	gap := s.gapMins
	if gap <= 0 {
		gap = s.cfg.ResumeGapMinutes
	}
	return analysis.ReportOptions{
		Options: analysis.Options{ResumeGap: time.Duration(gap * float64(time.Minute))},
		Resumed: s.resumed,
	}
}

func (s *cliState) load(path string) (*logfile.Session, error) {
	sess, err := logfile.Load(path)
	if err != nil {
		return nil, err
	}
	if sess.Malformed > 0 {
		s.logger.Warn("skipped malformed log lines", map[string]interface{}{
			"path": path, "lines": sess.Malformed,
		})
	}
	return sess, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	state := &cliState{logger: app.NewLogger(os.Stderr)}
	var configPath string

	root := &cobra.Command{
		Use:     "sessionlens",
		Short:   "Recover the latent structure of agent session logs",
		Long:    "sessionlens segments append-only agent session logs: where work divided,\nwhy each segment ended (branch, tree jump, compaction, idle gap, handoff),\nhow files relate through forks, and what friction or delight occurred.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			state.cfg = cfg
			if !cmd.Flags().Changed("json") {
				state.asJSON = cfg.Output == "json"
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&state.asJSON, "json", false, "emit JSON instead of text")
	root.PersistentFlags().Float64Var(&state.gapMins, "resume-gap", 0, "idle minutes that count as a resume (default 10)")
	root.PersistentFlags().BoolVar(&state.resumed, "resumed", false, "treat the session as continued elsewhere")

	root.AddCommand(statsCmd(state))
	root.AddCommand(treeCmd(state))
	root.AddCommand(boundariesCmd(state))
	root.AddCommand(segmentsCmd(state))
	root.AddCommand(signalsCmd(state))
	root.AddCommand(forksCmd(state))
	root.AddCommand(browseCmd(state))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func statsCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <session.jsonl>",
		Short: "Aggregate counts, usage and the full analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := state.load(args[0])
			if err != nil {
				return err
			}
			report := analysis.Analyze(sess.Entries, state.options())
			if state.asJSON {
				return printJSON(report)
			}
			s := report.Stats
			fmt.Printf("entries        %d\n", s.ContentEntries)
			fmt.Printf("messages       %d user / %d assistant / %d tool results\n", s.UserMessages, s.AssistantMessages, s.ToolResults)
			fmt.Printf("compactions    %d\n", s.Compactions)
			fmt.Printf("branches       %d summaries, %d branch points\n", s.BranchSummaries, s.BranchPoints)
			fmt.Printf("tokens         %d in / %d out ($%.4f)\n", s.InputTokens, s.OutputTokens, s.CostUSD)
			if len(s.Models) > 0 {
				fmt.Printf("models         %s\n", strings.Join(s.Models, ", "))
			}
			fmt.Printf("max depth      %d\n", s.MaxDepth)
			fmt.Printf("boundaries     %d\n", len(report.Boundaries))
			fmt.Printf("segments       %d\n", len(report.Segments))
			for _, d := range report.Diagnostics {
				fmt.Printf("diagnostic     %s\n", d)
			}
			return nil
		},
	}
}

func treeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <session.jsonl>",
		Short: "Print the reconstructed entry tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := state.load(args[0])
			if err != nil {
				return err
			}
			t := analysis.BuildTree(sess.Entries)
			if t.Root == nil {
				fmt.Println("empty session")
				return nil
			}
			theme := tui.NewTheme(tui.ThemeName(state.cfg.Theme))
			printTree(t, theme)
			for _, d := range t.Diagnostics {
				fmt.Println("diagnostic:", d)
			}
			return nil
		},
	}
}

// printTree walks iteratively; session chains can be thousands deep.
func printTree(t *analysis.Tree, theme tui.Theme) {
	type frame struct {
		node  *analysis.Node
		depth int
	}
	muted := lipgloss.NewStyle().Foreground(theme.TextMuted)
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		label := describeNode(f.node)
		line := strings.Repeat("  ", f.depth) + label
		if f.node == t.CurrentLeaf {
			line += muted.Render("  <- current leaf")
		}
		if len(f.node.Labels) > 0 {
			line += muted.Render("  [" + strings.Join(f.node.Labels, ", ") + "]")
		}
		fmt.Println(line)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

func describeNode(n *analysis.Node) string {
	e := n.Entry
	switch e.Type {
	case analysis.EntryMessage:
		return fmt.Sprintf("%s %s", e.Message.Role, e.ID)
	case analysis.EntryCompaction:
		return "compaction " + e.ID
	case analysis.EntryBranchSummary:
		return "branch-summary " + e.ID
	case analysis.EntryCustom:
		return "annotation " + e.ID
	}
	return string(e.Type) + " " + e.ID
}

func boundariesCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "boundaries <session.jsonl>",
		Short: "List detected segment boundaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := state.load(args[0])
			if err != nil {
				return err
			}
			boundaries := analysis.DetectBoundaries(sess.Entries, state.options().Options)
			if state.asJSON {
				return printJSON(boundaries)
			}
			for _, b := range boundaries {
				fmt.Printf("%s  %-10s at %s\n", b.Timestamp.Format(time.RFC3339), b.Type, b.EntryID)
			}
			fmt.Printf("%d boundaries\n", len(boundaries))
			return nil
		},
	}
}

func segmentsCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "segments <session.jsonl>",
		Short: "Partition the session into segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := state.load(args[0])
			if err != nil {
				return err
			}
			opts := state.options()
			boundaries := analysis.DetectBoundaries(sess.Entries, opts.Options)
			segments := analysis.ExtractSegments(sess.Entries, boundaries)
			if state.asJSON {
				return printJSON(segments)
			}
			for i, seg := range segments {
				kinds := make([]string, 0, len(seg.Boundaries))
				for _, b := range seg.Boundaries {
					kinds = append(kinds, string(b.Type))
				}
				cause := "trailing"
				if len(kinds) > 0 {
					cause = strings.Join(kinds, "+")
				}
				fmt.Printf("#%d  %s..%s  %d entries  %s\n", i+1, seg.StartEntryID, seg.EndEntryID, seg.EntryCount, cause)
			}
			return nil
		},
	}
}

func signalsCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "signals <session.jsonl>",
		Short: "Per-segment friction and delight signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := state.load(args[0])
			if err != nil {
				return err
			}
			report := analysis.Analyze(sess.Entries, state.options())
			if state.asJSON {
				return printJSON(report.Segments)
			}
			for i, seg := range report.Segments {
				fmt.Printf("#%d  friction %.2f  delight %.2f", i+1, seg.Friction.Score, seg.Delight.Score)
				var notes []string
				if seg.Friction.RephrasingCascades > 0 {
					notes = append(notes, fmt.Sprintf("rephrasing x%d", seg.Friction.RephrasingCascades))
				}
				if seg.Friction.ToolLoops > 0 {
					notes = append(notes, fmt.Sprintf("tool loops x%d", seg.Friction.ToolLoops))
				}
				if seg.Friction.SilentTermination {
					notes = append(notes, "silent termination")
				}
				if seg.Delight.ExplicitPraise {
					notes = append(notes, "praise")
				}
				if len(notes) > 0 {
					fmt.Printf("  (%s)", strings.Join(notes, ", "))
				}
				fmt.Println()
			}
			for _, flag := range report.Flags {
				fmt.Printf("flag [%s] %s\n", flag.Type, flag.Message)
			}
			return nil
		},
	}
}

func forksCmd(state *cliState) *cobra.Command {
	var chainFor string
	cmd := &cobra.Command{
		Use:   "forks <logs-dir>",
		Short: "Resolve fork relationships across a directory of logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, skipped, err := logfile.LoadDir(args[0])
			if err != nil {
				return err
			}
			for _, p := range skipped {
				state.logger.Warn("skipped unreadable log", map[string]interface{}{"path": p})
			}
			forks := analysis.FindForks(logfile.Headers(sessions))
			if chainFor != "" {
				chain := analysis.ForkChain(chainFor, forks)
				if state.asJSON {
					return printJSON(chain)
				}
				fmt.Println(strings.Join(chain, " -> "))
				return nil
			}
			if state.asJSON {
				return printJSON(forks)
			}
			if len(forks) == 0 {
				fmt.Println("no forks declared")
				return nil
			}
			for _, f := range forks {
				fmt.Printf("%s -> %s (session %s)\n", f.ParentPath, f.ChildPath, f.ChildSessionID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chainFor, "chain", "", "print the root-to-target fork chain for a path")
	return cmd
}

func browseCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <session.jsonl>",
		Short: "Interactively browse segments and signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := state.load(args[0])
			if err != nil {
				return err
			}
			report := analysis.Analyze(sess.Entries, state.options())
			theme := tui.NewTheme(tui.ThemeName(state.cfg.Theme))
			p := tea.NewProgram(tui.NewBrowser(args[0], report, theme), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

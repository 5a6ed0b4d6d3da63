package analysis

import (
	"math"
	"regexp"
	"time"
)

// BoundaryType names why a segment ends.
type BoundaryType string

const (
	BoundaryBranch     BoundaryType = "branch"
	BoundaryTreeJump   BoundaryType = "tree_jump"
	BoundaryCompaction BoundaryType = "compaction"
	BoundaryResume     BoundaryType = "resume"
	BoundaryHandoff    BoundaryType = "handoff"
)

// Boundary is one detected structural event. Exactly one metadata pointer
// matching Type is set.
type Boundary struct {
	Type            BoundaryType `json:"type"`
	EntryID         string       `json:"entryId"`
	Timestamp       time.Time    `json:"timestamp"`
	PreviousEntryID string       `json:"previousEntryId,omitempty"`

	Branch     *BranchMeta     `json:"branch,omitempty"`
	Compaction *CompactionMeta `json:"compaction,omitempty"`
	Handoff    *HandoffMeta    `json:"handoff,omitempty"`
	TreeJump   *TreeJumpMeta   `json:"treeJump,omitempty"`
	Resume     *ResumeMeta     `json:"resume,omitempty"`
}

type BranchMeta struct {
	Summary string `json:"summary,omitempty"`
}

type CompactionMeta struct {
	TokensBefore int    `json:"tokensBefore"`
	Summary      string `json:"summary,omitempty"`
}

type HandoffMeta struct {
	Agent    string `json:"agent,omitempty"`
	Explicit bool   `json:"explicit"`
}

type TreeJumpMeta struct {
	ExpectedParentID string `json:"expectedParentId"`
	ActualParentID   string `json:"actualParentId"`
}

type ResumeMeta struct {
	GapMinutes float64 `json:"gapMinutes"`
}

// Options configures boundary detection. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// ResumeGap is the idle duration at or above which a resume boundary
	// is emitted.
	ResumeGap time.Duration
}

const DefaultResumeGap = 10 * time.Minute

func DefaultOptions() Options {
	return Options{ResumeGap: DefaultResumeGap}
}

// Handoff phrasing users type in place of an explicit marker. Each pattern
// captures the target agent name.
var handoffPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhandoff to ([\w-]+)`),
	regexp.MustCompile(`(?i)\bhand off to ([\w-]+)`),
	regexp.MustCompile(`(?i)\bpassing to ([\w-]+)`),
	regexp.MustCompile(`(?i)\bcontinue with ([\w-]+) agent\b`),
}

func matchHandoff(text string) (string, bool) {
	for _, p := range handoffPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// DetectBoundaries runs a single forward pass over the log and emits every
// structural boundary in entry order. One entry can carry several
// boundaries (a compaction after a long idle gap, say); all of them are
// emitted, in a fixed per-entry order: branch/compaction/handoff first,
// then tree_jump, then resume. Metadata entries (labels, session info) are
// skipped entirely and never break an idle gap.
func DetectBoundaries(entries []Entry, opts Options) []Boundary {
	if opts.ResumeGap <= 0 {
		opts.ResumeGap = DefaultResumeGap
	}

	var out []Boundary
	tracker := NewLeafTracker()
	var prev *Entry

	for i := range entries {
		e := &entries[i]
		if e.IsMetadata() {
			continue
		}

		handoffAt := false
		switch e.Type {
		case EntryBranchSummary:
			out = append(out, Boundary{
				Type:            BoundaryBranch,
				EntryID:         e.ID,
				Timestamp:       e.Timestamp,
				PreviousEntryID: e.BranchSummary.FromID,
				Branch:          &BranchMeta{Summary: e.BranchSummary.Summary},
			})
		case EntryCompaction:
			out = append(out, Boundary{
				Type:      BoundaryCompaction,
				EntryID:   e.ID,
				Timestamp: e.Timestamp,
				Compaction: &CompactionMeta{
					TokensBefore: e.Compaction.TokensBefore,
					Summary:      e.Compaction.Summary,
				},
			})
		case EntryCustom:
			if e.Custom.Kind == HandoffKind {
				out = append(out, Boundary{
					Type:      BoundaryHandoff,
					EntryID:   e.ID,
					Timestamp: e.Timestamp,
					Handoff:   &HandoffMeta{Agent: e.Custom.Agent, Explicit: true},
				})
				handoffAt = true
			}
		}

		// Phrased handoffs only matter when no explicit marker already
		// fired at this entry.
		if !handoffAt {
			if text := e.UserText(); text != "" {
				if agent, ok := matchHandoff(text); ok {
					out = append(out, Boundary{
						Type:      BoundaryHandoff,
						EntryID:   e.ID,
						Timestamp: e.Timestamp,
						Handoff:   &HandoffMeta{Agent: agent, Explicit: false},
					})
				}
			}
		}

		// A message that continues from somewhere other than the frontier
		// is an unannounced jump, unless the preceding entry was a branch
		// summary (the branch boundary above already explains the move).
		if e.Type == EntryMessage && e.ParentID != "" {
			leaf := tracker.CurrentLeaf()
			if leaf != "" && e.ParentID != leaf && (prev == nil || prev.Type != EntryBranchSummary) {
				out = append(out, Boundary{
					Type:            BoundaryTreeJump,
					EntryID:         e.ID,
					Timestamp:       e.Timestamp,
					PreviousEntryID: leaf,
					TreeJump: &TreeJumpMeta{
						ExpectedParentID: leaf,
						ActualParentID:   e.ParentID,
					},
				})
			}
		}

		// The gap check is independent of everything above.
		if prev != nil {
			if gap := e.Timestamp.Sub(prev.Timestamp); gap >= opts.ResumeGap {
				out = append(out, Boundary{
					Type:            BoundaryResume,
					EntryID:         e.ID,
					Timestamp:       e.Timestamp,
					PreviousEntryID: prev.ID,
					Resume:          &ResumeMeta{GapMinutes: roundMinutes(gap)},
				})
			}
		}

		tracker.Observe(e)
		prev = e
	}
	return out
}

func roundMinutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}

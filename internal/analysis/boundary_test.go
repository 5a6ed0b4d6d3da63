package analysis

import (
	"reflect"
	"testing"
	"time"
)

func TestDetectBoundariesScenarioResume(t *testing.T) {
	// A(t=0) -> B(t=1) -> C(t=16): the 15 minute gap is the only boundary.
	entries := []Entry{
		userMsg("A", "", at(0), "start"),
		assistantMsg("B", "A", at(1), "on it, this will take a little while"),
		userMsg("C", "B", at(16), "back, keep going"),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("boundaries = %d, want 1: %+v", len(got), got)
	}
	b := got[0]
	if b.Type != BoundaryResume || b.EntryID != "C" {
		t.Fatalf("boundary = %s@%s, want resume@C", b.Type, b.EntryID)
	}
	if b.Resume == nil || b.Resume.GapMinutes != 15 {
		t.Fatalf("gapMinutes = %+v, want 15", b.Resume)
	}
	if b.PreviousEntryID != "B" {
		t.Fatalf("previousEntryId = %q, want B", b.PreviousEntryID)
	}
}

func TestDetectBoundariesResumeThresholdExact(t *testing.T) {
	cases := []struct {
		name string
		gap  time.Duration
		want int
	}{
		{"exactly at threshold", 10 * time.Minute, 1},
		{"one second under", 10*time.Minute - time.Second, 0},
		{"just over", 10*time.Minute + time.Second, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := []Entry{
				userMsg("a", "", testBase, "x"),
				userMsg("b", "a", testBase.Add(tc.gap), "y"),
			}
			got := DetectBoundaries(entries, DefaultOptions())
			if len(got) != tc.want {
				t.Fatalf("boundaries = %d, want %d", len(got), tc.want)
			}
		})
	}
}

func TestDetectBoundariesResumeGapConfigurable(t *testing.T) {
	entries := []Entry{
		userMsg("a", "", at(0), "x"),
		userMsg("b", "a", at(3), "y"),
	}
	if got := DetectBoundaries(entries, Options{ResumeGap: 2 * time.Minute}); len(got) != 1 {
		t.Fatalf("boundaries with 2m threshold = %d, want 1", len(got))
	}
	if got := DetectBoundaries(entries, DefaultOptions()); len(got) != 0 {
		t.Fatalf("boundaries with default threshold = %d, want 0", len(got))
	}
}

func TestDetectBoundariesBranchSummary(t *testing.T) {
	entries := []Entry{
		userMsg("A", "", at(0), "start"),
		assistantMsg("B", "A", at(1), "a first stab at the problem, which went nowhere"),
		branchSummary("S", "B", "B", at(2)),
		userMsg("M", "S", at(3), "try the other approach"),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("boundaries = %d, want 1 (branch only): %+v", len(got), got)
	}
	b := got[0]
	if b.Type != BoundaryBranch || b.EntryID != "S" || b.PreviousEntryID != "B" {
		t.Fatalf("boundary = %+v, want branch@S from B", b)
	}
	if b.Branch == nil || b.Branch.Summary != "branched" {
		t.Fatalf("branch metadata = %+v, want summary carried through", b.Branch)
	}
}

func TestDetectBoundariesCompaction(t *testing.T) {
	entries := []Entry{
		userMsg("a", "", at(0), "x"),
		compaction("c", "a", at(1), 120000),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 1 || got[0].Type != BoundaryCompaction {
		t.Fatalf("boundaries = %+v, want one compaction", got)
	}
	if got[0].Compaction.TokensBefore != 120000 {
		t.Fatalf("tokensBefore = %d, want 120000", got[0].Compaction.TokensBefore)
	}
}

func TestDetectBoundariesHandoff(t *testing.T) {
	cases := []struct {
		name     string
		entry    Entry
		agent    string
		explicit bool
	}{
		{
			name:     "explicit marker",
			entry:    customEntry("h", "a", at(1), HandoffKind, "", "reviewer"),
			agent:    "reviewer",
			explicit: true,
		},
		{
			name:  "phrase handoff to",
			entry: userMsg("h", "a", at(1), "ok, handoff to reviewer please"),
			agent: "reviewer",
		},
		{
			name:  "phrase hand off to",
			entry: userMsg("h", "a", at(1), "let's hand off to deploy-bot now"),
			agent: "deploy-bot",
		},
		{
			name:  "phrase passing to",
			entry: userMsg("h", "a", at(1), "passing to frontend for the css work"),
			agent: "frontend",
		},
		{
			name:  "phrase continue with agent",
			entry: userMsg("h", "a", at(1), "continue with docs agent"),
			agent: "docs",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := []Entry{userMsg("a", "", at(0), "start"), tc.entry}
			got := DetectBoundaries(entries, DefaultOptions())
			if len(got) != 1 || got[0].Type != BoundaryHandoff {
				t.Fatalf("boundaries = %+v, want one handoff", got)
			}
			h := got[0].Handoff
			if h.Agent != tc.agent || h.Explicit != tc.explicit {
				t.Fatalf("handoff = %+v, want agent %q explicit %v", h, tc.agent, tc.explicit)
			}
		})
	}
}

func TestDetectBoundariesNoHandoffInPlainChat(t *testing.T) {
	entries := []Entry{
		userMsg("a", "", at(0), "please hand me the file contents"),
		userMsg("b", "a", at(1), "continue with the refactor"),
	}
	if got := DetectBoundaries(entries, DefaultOptions()); len(got) != 0 {
		t.Fatalf("boundaries = %+v, want none", got)
	}
}

func TestDetectBoundariesTreeJump(t *testing.T) {
	entries := []Entry{
		userMsg("a", "", at(0), "start"),
		assistantMsg("b", "a", at(1), "a long detailed reply about the first approach"),
		assistantMsg("c", "b", at(2), "more detail on the same line of thinking here"),
		// Jumps back to continue from b while the frontier is c.
		userMsg("d", "b", at(3), "let's go back"),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 1 || got[0].Type != BoundaryTreeJump {
		t.Fatalf("boundaries = %+v, want one tree_jump", got)
	}
	tj := got[0].TreeJump
	if tj.ExpectedParentID != "c" || tj.ActualParentID != "b" {
		t.Fatalf("tree jump = %+v, want expected c actual b", tj)
	}
}

func TestDetectBoundariesFirstEntryNeverJumps(t *testing.T) {
	entries := []Entry{
		userMsg("a", "", at(0), "root with no parent"),
		userMsg("b", "", at(1), "second root, also no parent"),
	}
	if got := DetectBoundaries(entries, DefaultOptions()); len(got) != 0 {
		t.Fatalf("boundaries = %+v, want none for null-parent entries", got)
	}
}

func TestDetectBoundariesBranchSuppressesJump(t *testing.T) {
	// The message right after a branch summary continues from the branch
	// point; the branch boundary already explains it.
	entries := []Entry{
		userMsg("a", "", at(0), "start"),
		assistantMsg("b", "a", at(1), "an attempt that will get abandoned shortly"),
		branchSummary("s", "b", "a", at(2)),
		userMsg("m", "a", at(3), "restart from the top"),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 1 || got[0].Type != BoundaryBranch {
		t.Fatalf("boundaries = %+v, want branch only (jump suppressed)", got)
	}
}

func TestDetectBoundariesMultipleAtOneEntry(t *testing.T) {
	// A compaction landing after a long idle gap carries both boundaries,
	// in check order: compaction first, then resume.
	entries := []Entry{
		userMsg("a", "", at(0), "start"),
		compaction("c", "a", at(25), 80000),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 2 {
		t.Fatalf("boundaries = %d, want 2: %+v", len(got), got)
	}
	if got[0].Type != BoundaryCompaction || got[1].Type != BoundaryResume {
		t.Fatalf("order = [%s %s], want [compaction resume]", got[0].Type, got[1].Type)
	}
	if got[0].EntryID != "c" || got[1].EntryID != "c" {
		t.Fatal("both boundaries belong to entry c")
	}
	if got[1].Resume.GapMinutes != 25 {
		t.Fatalf("gapMinutes = %v, want 25", got[1].Resume.GapMinutes)
	}
}

func TestDetectBoundariesMetadataSkipped(t *testing.T) {
	// A label in the middle of an idle gap must not break the gap.
	entries := []Entry{
		userMsg("a", "", at(0), "start"),
		label("l", "a", "pin", at(5)),
		userMsg("b", "a", at(12), "resumed"),
	}
	got := DetectBoundaries(entries, DefaultOptions())
	if len(got) != 1 || got[0].Type != BoundaryResume {
		t.Fatalf("boundaries = %+v, want one resume (label ignored)", got)
	}
	if got[0].Resume.GapMinutes != 12 {
		t.Fatalf("gapMinutes = %v, want 12 (measured from a, not the label)", got[0].Resume.GapMinutes)
	}
}

func TestDetectBoundariesEmptyInput(t *testing.T) {
	if got := DetectBoundaries(nil, DefaultOptions()); len(got) != 0 {
		t.Fatalf("boundaries = %+v, want empty", got)
	}
}

func TestDetectBoundariesIdempotent(t *testing.T) {
	entries := []Entry{
		userMsg("a", "", at(0), "start"),
		compaction("c", "a", at(25), 80000),
		branchSummary("s", "c", "a", at(26)),
		userMsg("m", "a", at(40), "handoff to reviewer"),
	}
	first := DetectBoundaries(entries, DefaultOptions())
	second := DetectBoundaries(entries, DefaultOptions())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("detection is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRoundMinutes(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want float64
	}{
		{15 * time.Minute, 15},
		{10*time.Minute + 30*time.Second, 10.5},
		{10*time.Minute + 20*time.Second, 10.33},
	}
	for _, tc := range cases {
		if got := roundMinutes(tc.d); got != tc.want {
			t.Fatalf("roundMinutes(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

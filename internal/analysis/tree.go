package analysis

import (
	"fmt"
	"sort"
)

// Node is one content entry placed in the session tree.
type Node struct {
	Entry         *Entry
	Children      []*Node
	Depth         int
	IsLeaf        bool
	IsBranchPoint bool
	Labels        []string
}

// Tree is the reconstructed structure of one session log. Root is nil when
// the log holds no content entries. Diagnostics records degradations the
// builder absorbed (extra roots, dangling parents) so callers can surface
// them without the build failing.
type Tree struct {
	Root        *Node
	CurrentLeaf *Node
	Nodes       map[string]*Node
	Diagnostics []string
}

// BuildTree reconstructs the parent/child tree over the content entries of
// one log. Label and session-info entries are excluded from membership but
// contribute to per-node Labels. Child lists are ordered by timestamp
// (stable on ties). When the data holds more than one true root, the
// earliest-timestamp root becomes the primary tree and the rest are
// reported via Diagnostics rather than dropped silently as an error.
func BuildTree(entries []Entry) *Tree {
	t := &Tree{Nodes: make(map[string]*Node)}

	labels := make(map[string][]string)
	var content []*Entry
	for i := range entries {
		e := &entries[i]
		if e.Type == EntryLabel {
			labels[e.Label.TargetID] = append(labels[e.Label.TargetID], e.Label.Name)
			continue
		}
		if e.Type == EntrySessionInfo {
			continue
		}
		content = append(content, e)
	}
	if len(content) == 0 {
		return t
	}

	for _, e := range content {
		if _, dup := t.Nodes[e.ID]; dup {
			t.Diagnostics = append(t.Diagnostics, fmt.Sprintf("duplicate entry id %s ignored", e.ID))
			continue
		}
		t.Nodes[e.ID] = &Node{Entry: e, Labels: labels[e.ID]}
	}

	var roots []*Node
	for _, e := range content {
		n, ok := t.Nodes[e.ID]
		if !ok || n.Entry != e {
			continue
		}
		if e.ParentID == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := t.Nodes[e.ParentID]
		if !ok {
			// Dangling parent reference: treat the node as an extra root so
			// its subtree still appears somewhere addressable.
			t.Diagnostics = append(t.Diagnostics, fmt.Sprintf("entry %s references missing parent %s", e.ID, e.ParentID))
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	for _, n := range t.Nodes {
		sort.SliceStable(n.Children, func(i, j int) bool {
			return n.Children[i].Entry.Timestamp.Before(n.Children[j].Entry.Timestamp)
		})
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Entry.Timestamp.Before(roots[j].Entry.Timestamp)
	})
	t.Root = roots[0]
	for _, extra := range roots[1:] {
		t.Diagnostics = append(t.Diagnostics, fmt.Sprintf("extra root %s demoted; primary root is %s", extra.Entry.ID, t.Root.Entry.ID))
	}

	// Iterative depth/leaf pass. Session logs can be arbitrarily long
	// chains, so recursion is off the table. Demoted subtrees still get
	// their flags, but only the primary tree elects the current leaf.
	for _, root := range roots {
		stack := []*Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n.IsLeaf = len(n.Children) == 0
			n.IsBranchPoint = len(n.Children) > 1
			for _, c := range n.Children {
				c.Depth = n.Depth + 1
				stack = append(stack, c)
			}
			if root == t.Root && n.IsLeaf &&
				(t.CurrentLeaf == nil || n.Entry.Timestamp.After(t.CurrentLeaf.Entry.Timestamp)) {
				t.CurrentLeaf = n
			}
		}
	}
	return t
}

// Stats aggregates one log's counts and usage.
type Stats struct {
	ContentEntries    int      `json:"contentEntries"`
	UserMessages      int      `json:"userMessages"`
	AssistantMessages int      `json:"assistantMessages"`
	ToolResults       int      `json:"toolResults"`
	Compactions       int      `json:"compactions"`
	BranchSummaries   int      `json:"branchSummaries"`
	BranchPoints      int      `json:"branchPoints"`
	InputTokens       int      `json:"inputTokens"`
	OutputTokens      int      `json:"outputTokens"`
	CostUSD           float64  `json:"costUsd"`
	Models            []string `json:"models,omitempty"`
	MaxDepth          int      `json:"maxDepth"`
}

// CalculateStats aggregates role counts, usage and tree shape. Models are
// reported in first-use order.
func CalculateStats(entries []Entry, tree *Tree) Stats {
	var s Stats
	seen := make(map[string]bool)
	for i := range entries {
		e := &entries[i]
		if e.IsMetadata() {
			continue
		}
		s.ContentEntries++
		switch e.Type {
		case EntryCompaction:
			s.Compactions++
		case EntryBranchSummary:
			s.BranchSummaries++
		case EntryMessage:
			switch e.Message.Role {
			case RoleUser:
				s.UserMessages++
			case RoleAssistant:
				s.AssistantMessages++
			case RoleToolResult:
				s.ToolResults++
			}
			if u := e.Message.Usage; u != nil {
				s.InputTokens += u.InputTokens
				s.OutputTokens += u.OutputTokens
				s.CostUSD += u.CostUSD
			}
			if m := e.Message.Model; m != "" && !seen[m] {
				seen[m] = true
				s.Models = append(s.Models, m)
			}
		}
	}
	if tree != nil {
		for _, n := range tree.Nodes {
			if n.IsBranchPoint {
				s.BranchPoints++
			}
			if n.Depth > s.MaxDepth {
				s.MaxDepth = n.Depth
			}
		}
	}
	return s
}

package analysis

import (
	"math"
	"strings"
	"time"
)

// FrictionSignals are per-segment counters of user struggle plus a derived
// score in [0,1].
type FrictionSignals struct {
	RephrasingCascades int     `json:"rephrasingCascades"`
	ToolLoops          int     `json:"toolLoops"`
	ContextChurn       int     `json:"contextChurn"`
	ModelSwitchFrom    string  `json:"modelSwitchFrom,omitempty"`
	SilentTermination  bool    `json:"silentTermination"`
	AbandonedRestart   bool    `json:"abandonedRestart"`
	Score              float64 `json:"score"`
}

// DelightSignals are the positive counterpart.
type DelightSignals struct {
	ResilientRecovery bool    `json:"resilientRecovery"`
	OneShotSuccess    bool    `json:"oneShotSuccess"`
	ExplicitPraise    bool    `json:"explicitPraise"`
	Score             float64 `json:"score"`
}

// ManualFlag is a user-authored annotation passed through verbatim. Flags
// are never inferred from behavior.
type ManualFlag struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// FrictionContext carries the cross-segment facts the detector cannot see
// from one segment's entries alone. All fields are caller-supplied.
type FrictionContext struct {
	// PreviousModel is the model in use during the immediately preceding
	// segment, "" when there is none.
	PreviousModel string
	// FinalSegment marks the session's last segment.
	FinalSegment bool
	// Resumed marks a session that was picked up again later (a fork or a
	// continuation file); a resumed session never terminated silently.
	Resumed bool
	// AbandonedRestart is the caller's verdict from AbandonedRestart().
	AbandonedRestart bool
}

// Window of trailing entries inspected for silent termination.
const terminationWindow = 10

// Distinct read/list targets per churn event.
const churnUnit = 10

// DetectFriction scores one segment's entries for user-struggle signals.
// Heuristics under- or over-count on adversarial input; they never fail.
func DetectFriction(entries []Entry, ctx FrictionContext) FrictionSignals {
	var sig FrictionSignals
	sig.RephrasingCascades = countRephrasingCascades(entries)
	sig.ToolLoops = countToolLoops(entries)
	sig.ContextChurn = countContextChurn(entries)
	sig.AbandonedRestart = ctx.AbandonedRestart

	if first := firstModel(entries); first != "" && ctx.PreviousModel != "" && first != ctx.PreviousModel {
		sig.ModelSwitchFrom = ctx.PreviousModel
	}
	if ctx.FinalSegment && !ctx.Resumed {
		sig.SilentTermination = endsUnresolved(entries)
	}

	score := 0.15*math.Min(float64(sig.RephrasingCascades), 2) +
		0.1*math.Min(float64(sig.ContextChurn), 2) +
		0.2*math.Min(float64(sig.ToolLoops), 2)
	if sig.AbandonedRestart {
		score += 0.3
	}
	if sig.ModelSwitchFrom != "" {
		score += 0.15
	}
	if sig.SilentTermination {
		score += 0.25
	}
	sig.Score = clamp01(score)
	return sig
}

// DetectDelight scores one segment's entries for signs the session went
// well.
func DetectDelight(entries []Entry) DelightSignals {
	var sig DelightSignals
	sig.ResilientRecovery = hasResilientRecovery(entries)
	sig.OneShotSuccess = isOneShotSuccess(entries)
	sig.ExplicitPraise = hasExplicitPraise(entries)

	score := 0.0
	if sig.ResilientRecovery {
		score += 0.4
	}
	if sig.OneShotSuccess {
		score += 0.4
	}
	if sig.ExplicitPraise {
		score += 0.3
	}
	sig.Score = clamp01(score)
	return sig
}

// countRephrasingCascades counts runs of 3+ consecutive user messages with
// no meaningful assistant reply in between. A meaningful reply invokes a
// tool or says more than 50 characters; anything less does not reset the
// run. A run still open at segment end counts too.
func countRephrasingCascades(entries []Entry) int {
	cascades := 0
	run := 0
	closeRun := func() {
		if run >= 3 {
			cascades++
		}
		run = 0
	}
	for i := range entries {
		m := entries[i].Message
		if entries[i].Type != EntryMessage || m == nil {
			continue
		}
		switch m.Role {
		case RoleUser:
			run++
		case RoleAssistant:
			if len(m.ToolCalls) > 0 || len(m.Text) > 50 {
				closeRun()
			}
		}
	}
	closeRun()
	return cascades
}

// countToolLoops counts repeated identical failures. Each error result is
// reduced to a normalized signature per tool; the third occurrence of a
// signature counts one loop, and further repeats of the same signature do
// not count again.
func countToolLoops(entries []Entry) int {
	loops := 0
	counts := make(map[string]int)
	for i := range entries {
		r := toolResultOf(&entries[i])
		if r == nil || !r.IsError {
			continue
		}
		key := r.ToolName + "|" + normalizeError(r.Content)
		counts[key]++
		if counts[key] == 3 {
			loops++
		}
	}
	return loops
}

// countContextChurn counts how much of the workspace the assistant had to
// touch just to stay oriented: distinct files opened by read-like tools
// plus distinct directories listed by list-like shell commands, one churn
// event per 10.
func countContextChurn(entries []Entry) int {
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for i := range entries {
		m := entries[i].Message
		if entries[i].Type != EntryMessage || m == nil {
			continue
		}
		for _, call := range m.ToolCalls {
			if isReadLike(call.Name) && call.FilePath != "" {
				files[call.FilePath] = true
			}
			if dir, ok := listedDir(call.Command); ok {
				dirs[dir] = true
			}
		}
	}
	return (len(files) + len(dirs)) / churnUnit
}

func isReadLike(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "read") || n == "open" || n == "cat" || n == "view"
}

// listedDir extracts the directory a list-like shell command targets.
// Flags are skipped; a bare listing targets ".".
func listedDir(command string) (string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", false
	}
	switch fields[0] {
	case "ls", "ll", "tree", "dir":
	default:
		return "", false
	}
	for _, f := range fields[1:] {
		if !strings.HasPrefix(f, "-") {
			return f, true
		}
	}
	return ".", true
}

// firstModel returns the first model identifier used in the segment.
func firstModel(entries []Entry) string {
	for i := range entries {
		m := entries[i].Message
		if entries[i].Type == EntryMessage && m != nil && m.Model != "" {
			return m.Model
		}
	}
	return ""
}

// endsUnresolved inspects the trailing entries for an error result that no
// later result of the same tool resolved, with no genuinely positive user
// message after it. Sarcastic "praise" does not count as positive.
func endsUnresolved(entries []Entry) bool {
	window := entries
	if len(window) > terminationWindow {
		window = window[len(window)-terminationWindow:]
	}

	unresolved := false
	for i := range window {
		r := toolResultOf(&window[i])
		if r == nil || !r.IsError {
			continue
		}
		resolved := false
		for j := i + 1; j < len(window); j++ {
			if later := toolResultOf(&window[j]); later != nil && !later.IsError && later.ToolName == r.ToolName {
				resolved = true
				break
			}
		}
		if !resolved {
			unresolved = true
			break
		}
	}
	if !unresolved {
		return false
	}
	for i := range window {
		if text := window[i].UserText(); text != "" && isPraise(text) {
			return false
		}
	}
	return true
}

// hasResilientRecovery looks for a tool error followed by a success of the
// same tool with no non-trivial user message in between: the assistant
// dug itself out without being told how.
func hasResilientRecovery(entries []Entry) bool {
	for i := range entries {
		r := toolResultOf(&entries[i])
		if r == nil || !r.IsError {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if text := entries[j].UserText(); text != "" && !isTrivialMessage(text) {
				break
			}
			if later := toolResultOf(&entries[j]); later != nil && later.ToolName == r.ToolName && !later.IsError {
				return true
			}
		}
	}
	return false
}

// isOneShotSuccess: real work happened (3+ tool invocations) and the user
// never had to steer.
func isOneShotSuccess(entries []Entry) bool {
	toolCalls := 0
	userSeen := false
	for i := range entries {
		m := entries[i].Message
		if entries[i].Type != EntryMessage || m == nil {
			continue
		}
		toolCalls += len(m.ToolCalls)
		if m.Role != RoleUser {
			continue
		}
		if !userSeen {
			// The opening user message states the task; it cannot be a
			// correction of anything.
			userSeen = true
			continue
		}
		if isCorrection(m.Text) {
			return false
		}
	}
	return toolCalls >= 3
}

func hasExplicitPraise(entries []Entry) bool {
	for i := range entries {
		if text := entries[i].UserText(); text != "" && isPraise(text) {
			return true
		}
	}
	return false
}

// SegmentActivity summarizes what one segment (or analyzed node) touched,
// for cross-segment comparisons the per-segment detector cannot make.
type SegmentActivity struct {
	Outcome      string
	Start        time.Time
	End          time.Time
	TouchedFiles []string
}

// AbandonedRestart reports whether next looks like a fresh attempt at work
// prev gave up on: prev's outcome is "abandoned", next starts within 30
// minutes of prev's end, and the two touched-file sets overlap by at least
// 30% of the smaller set.
func AbandonedRestart(prev, next SegmentActivity) bool {
	if prev.Outcome != "abandoned" {
		return false
	}
	gap := next.Start.Sub(prev.End)
	if gap < 0 || gap >= 30*time.Minute {
		return false
	}
	a := toSet(prev.TouchedFiles)
	b := toSet(next.TouchedFiles)
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	if smaller == 0 {
		return false
	}
	shared := 0
	for f := range a {
		if b[f] {
			shared++
		}
	}
	return float64(shared)/float64(smaller) >= 0.3
}

// TouchedFiles collects the distinct file paths a span of entries read or
// wrote through tool calls, in first-touch order.
func TouchedFiles(entries []Entry) []string {
	var out []string
	seen := make(map[string]bool)
	for i := range entries {
		m := entries[i].Message
		if entries[i].Type != EntryMessage || m == nil {
			continue
		}
		for _, call := range m.ToolCalls {
			if call.FilePath == "" || seen[call.FilePath] {
				continue
			}
			seen[call.FilePath] = true
			out = append(out, call.FilePath)
		}
	}
	return out
}

// CollectManualFlags passes through user-authored annotations. Explicit
// handoff markers are structural, not flags; everything else custom comes
// through verbatim with type defaulting to "note".
func CollectManualFlags(entries []Entry) []ManualFlag {
	var out []ManualFlag
	for i := range entries {
		e := &entries[i]
		if e.Type != EntryCustom || e.Custom.Kind == HandoffKind {
			continue
		}
		kind := e.Custom.Kind
		if kind == "" {
			kind = "note"
		}
		out = append(out, ManualFlag{Type: kind, Message: e.Custom.Message, Timestamp: e.Timestamp})
	}
	return out
}

func toolResultOf(e *Entry) *ToolResult {
	if e.Type == EntryMessage && e.Message != nil {
		return e.Message.ToolResult
	}
	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

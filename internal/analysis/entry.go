package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EntryType discriminates the payload carried by a log entry.
type EntryType string

const (
	EntryMessage       EntryType = "message"
	EntryCompaction    EntryType = "compaction"
	EntryBranchSummary EntryType = "branch_summary"
	EntryLabel         EntryType = "label"
	EntrySessionInfo   EntryType = "session_info"
	EntryCustom        EntryType = "custom"
)

// Sentinel error kinds callers can distinguish with errors.Is. Everything
// else about irregular data is absorbed (skipped or degraded), not raised.
var (
	ErrBadEnvelope = errors.New("unparsable log entry envelope")
	ErrBadHeader   = errors.New("session header missing required fields")
)

const (
	RoleUser       = "user"
	RoleAssistant  = "assistant"
	RoleToolResult = "tool_result"
)

// Entry is one immutable record of the append-only session log. Exactly one
// payload pointer matching Type is set; code consuming entries switches on
// Type and must handle every variant.
type Entry struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Type      EntryType `json:"type"`

	Message       *MessagePayload       `json:"message,omitempty"`
	Compaction    *CompactionPayload    `json:"compaction,omitempty"`
	BranchSummary *BranchSummaryPayload `json:"branchSummary,omitempty"`
	Label         *LabelPayload         `json:"label,omitempty"`
	SessionInfo   *SessionInfoPayload   `json:"sessionInfo,omitempty"`
	Custom        *CustomPayload        `json:"custom,omitempty"`
}

type MessagePayload struct {
	Role       string      `json:"role"`
	Text       string      `json:"text,omitempty"`
	Model      string      `json:"model,omitempty"`
	Usage      *TokenUsage `json:"usage,omitempty"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	ToolResult *ToolResult `json:"toolResult,omitempty"`
}

type TokenUsage struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd,omitempty"`
}

// ToolCall is an assistant-issued tool invocation. FilePath is set for
// file-oriented tools, Command for shell invocations.
type ToolCall struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath,omitempty"`
	Command  string `json:"command,omitempty"`
}

type ToolResult struct {
	ToolName string `json:"toolName"`
	Content  string `json:"content,omitempty"`
	IsError  bool   `json:"isError,omitempty"`
}

type CompactionPayload struct {
	TokensBefore int    `json:"tokensBefore"`
	Summary      string `json:"summary,omitempty"`
}

// BranchSummaryPayload records an explicit branch: FromID names the entry
// the new line of work continues from.
type BranchSummaryPayload struct {
	FromID  string `json:"fromId"`
	Summary string `json:"summary,omitempty"`
}

type LabelPayload struct {
	TargetID string `json:"targetId"`
	Name     string `json:"name"`
}

type SessionInfoPayload struct {
	SessionID  string    `json:"sessionId"`
	Path       string    `json:"path,omitempty"`
	ParentPath string    `json:"parentPath,omitempty"`
	ForkedAt   time.Time `json:"forkedAt,omitzero"`
	CWD        string    `json:"cwd,omitempty"`
	Version    string    `json:"version,omitempty"`
}

// CustomPayload is a free-form annotation. Kind "handoff" marks an explicit
// handoff to Agent; any other kind (default "note") is a manual flag.
type CustomPayload struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Agent   string `json:"agent,omitempty"`
}

const HandoffKind = "handoff"

// ParseEntry decodes one JSONL line into an Entry. A line that does not
// decode, lacks a known type, or lacks the payload its type requires is
// reported as ErrBadEnvelope.
func ParseEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if e.Timestamp.IsZero() {
		return Entry{}, fmt.Errorf("%w: missing timestamp", ErrBadEnvelope)
	}
	switch e.Type {
	case EntryMessage:
		if e.Message == nil {
			return Entry{}, fmt.Errorf("%w: message entry without message payload", ErrBadEnvelope)
		}
	case EntryCompaction:
		if e.Compaction == nil {
			return Entry{}, fmt.Errorf("%w: compaction entry without compaction payload", ErrBadEnvelope)
		}
	case EntryBranchSummary:
		if e.BranchSummary == nil {
			return Entry{}, fmt.Errorf("%w: branch_summary entry without branchSummary payload", ErrBadEnvelope)
		}
	case EntryLabel:
		if e.Label == nil {
			return Entry{}, fmt.Errorf("%w: label entry without label payload", ErrBadEnvelope)
		}
	case EntrySessionInfo:
		if e.SessionInfo == nil {
			return Entry{}, fmt.Errorf("%w: session_info entry without sessionInfo payload", ErrBadEnvelope)
		}
		if e.SessionInfo.SessionID == "" {
			return Entry{}, fmt.Errorf("%w: sessionId", ErrBadHeader)
		}
	case EntryCustom:
		if e.Custom == nil {
			return Entry{}, fmt.Errorf("%w: custom entry without custom payload", ErrBadEnvelope)
		}
	default:
		return Entry{}, fmt.Errorf("%w: unknown entry type %q", ErrBadEnvelope, e.Type)
	}
	return e, nil
}

// IsMetadata reports whether the entry is an annotation rather than a
// member of the content stream. Label and session-info entries annotate
// other entries (or the whole log) and never participate in the tree,
// boundaries, or segments.
func (e *Entry) IsMetadata() bool {
	return e.Type == EntryLabel || e.Type == EntrySessionInfo
}

// UserText returns the message text when the entry is a user message,
// otherwise "".
func (e *Entry) UserText() string {
	if e.Type == EntryMessage && e.Message != nil && e.Message.Role == RoleUser {
		return e.Message.Text
	}
	return ""
}

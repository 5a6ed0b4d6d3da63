package analysis

import (
	"strconv"
	"time"
)

var testBase = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

// at returns the fixture clock offset by min minutes.
func at(min float64) time.Time {
	return testBase.Add(time.Duration(min * float64(time.Minute)))
}

func userMsg(id, parent string, ts time.Time, text string) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryMessage,
		Message: &MessagePayload{Role: RoleUser, Text: text},
	}
}

func assistantMsg(id, parent string, ts time.Time, text string) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryMessage,
		Message: &MessagePayload{Role: RoleAssistant, Text: text},
	}
}

func assistantTool(id, parent string, ts time.Time, calls ...ToolCall) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryMessage,
		Message: &MessagePayload{Role: RoleAssistant, ToolCalls: calls},
	}
}

func toolResult(id, parent string, ts time.Time, tool, content string, isErr bool) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryMessage,
		Message: &MessagePayload{
			Role:       RoleToolResult,
			ToolResult: &ToolResult{ToolName: tool, Content: content, IsError: isErr},
		},
	}
}

func compaction(id, parent string, ts time.Time, tokensBefore int) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryCompaction,
		Compaction: &CompactionPayload{TokensBefore: tokensBefore, Summary: "compacted"},
	}
}

func branchSummary(id, parent, from string, ts time.Time) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryBranchSummary,
		BranchSummary: &BranchSummaryPayload{FromID: from, Summary: "branched"},
	}
}

func label(id, target, name string, ts time.Time) Entry {
	return Entry{
		ID: id, Timestamp: ts, Type: EntryLabel,
		Label: &LabelPayload{TargetID: target, Name: name},
	}
}

func customEntry(id, parent string, ts time.Time, kind, message, agent string) Entry {
	return Entry{
		ID: id, ParentID: parent, Timestamp: ts, Type: EntryCustom,
		Custom: &CustomPayload{Kind: kind, Message: message, Agent: agent},
	}
}

// chain builds a linear user/assistant conversation of n messages, one
// minute apart, ids m1..mn.
func chain(n int) []Entry {
	entries := make([]Entry, 0, n)
	parent := ""
	for i := 0; i < n; i++ {
		id := "m" + strconv.Itoa(i+1)
		ts := at(float64(i))
		if i%2 == 0 {
			entries = append(entries, userMsg(id, parent, ts, "please do the thing"))
		} else {
			entries = append(entries, assistantMsg(id, parent, ts, "done, the thing has been handled as requested"))
		}
		parent = id
	}
	return entries
}

func contentIDs(entries []Entry) []string {
	var ids []string
	for i := range entries {
		if !entries[i].IsMetadata() {
			ids = append(ids, entries[i].ID)
		}
	}
	return ids
}

package analysis

// ReportOptions configures a whole-session analysis.
type ReportOptions struct {
	Options
	// Resumed marks a session known to continue elsewhere (a fork child
	// exists, or a newer file carries on the work). It gates silent
	// termination on the final segment.
	Resumed bool
}

// SegmentReport pairs one segment with its behavioral signals.
type SegmentReport struct {
	Segment  Segment         `json:"segment"`
	Friction FrictionSignals `json:"friction"`
	Delight  DelightSignals  `json:"delight"`
}

// Report is the full derived view of one session log: everything the
// engine can say about it, recomputed from scratch on every call. This is
// the shape handed to the summarizer and storage collaborators.
type Report struct {
	Stats       Stats           `json:"stats"`
	Boundaries  []Boundary      `json:"boundaries"`
	Segments    []SegmentReport `json:"segments"`
	Flags       []ManualFlag    `json:"flags,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

// Analyze runs the whole pipeline over one log's entries: tree, stats,
// boundaries, segments, and per-segment signals with cross-segment context
// (previous model, final-segment status) threaded through.
func Analyze(entries []Entry, opts ReportOptions) *Report {
	tree := BuildTree(entries)
	boundaries := DetectBoundaries(entries, opts.Options)
	segments := ExtractSegments(entries, boundaries)

	report := &Report{
		Stats:       CalculateStats(entries, tree),
		Boundaries:  boundaries,
		Flags:       CollectManualFlags(entries),
		Diagnostics: tree.Diagnostics,
	}

	prevModel := ""
	for i, seg := range segments {
		segEntries := SegmentEntries(entries, seg)
		ctx := FrictionContext{
			PreviousModel: prevModel,
			FinalSegment:  i == len(segments)-1,
			Resumed:       opts.Resumed,
		}
		report.Segments = append(report.Segments, SegmentReport{
			Segment:  seg,
			Friction: DetectFriction(segEntries, ctx),
			Delight:  DetectDelight(segEntries),
		})
		if m := lastModel(segEntries); m != "" {
			prevModel = m
		}
	}
	return report
}

func lastModel(entries []Entry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		m := entries[i].Message
		if entries[i].Type == EntryMessage && m != nil && m.Model != "" {
			return m.Model
		}
	}
	return ""
}

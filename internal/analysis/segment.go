package analysis

import "time"

// Segment is a contiguous span of content entries. Boundaries holds every
// boundary detected at the entry that closed this segment (the first entry
// of the following segment); the trailing segment carries none.
type Segment struct {
	StartEntryID   string     `json:"startEntryId"`
	EndEntryID     string     `json:"endEntryId"`
	EntryCount     int        `json:"entryCount"`
	StartTimestamp time.Time  `json:"startTimestamp"`
	EndTimestamp   time.Time  `json:"endTimestamp"`
	Boundaries     []Boundary `json:"boundaries"`
}

// ExtractSegments partitions the content-entry stream at the given
// boundaries. Segments are contiguous, non-overlapping, and always hold at
// least one entry; concatenating them reproduces the content stream
// exactly. The boundary map is multi-valued on purpose: several boundary
// types can fall on one entry and every one of them must land in the
// closing segment's list.
func ExtractSegments(entries []Entry, boundaries []Boundary) []Segment {
	byEntry := make(map[string][]Boundary)
	for _, b := range boundaries {
		byEntry[b.EntryID] = append(byEntry[b.EntryID], b)
	}

	var content []*Entry
	for i := range entries {
		if !entries[i].IsMetadata() {
			content = append(content, &entries[i])
		}
	}
	if len(content) == 0 {
		return nil
	}

	var out []Segment
	start := 0
	for i, e := range content {
		bs, ok := byEntry[e.ID]
		// A boundary on the very first entry has nothing before it to
		// close; it stays in the boundary list but opens no empty segment.
		if !ok || i == start {
			continue
		}
		out = append(out, makeSegment(content[start:i], bs))
		start = i
	}
	out = append(out, makeSegment(content[start:], nil))
	return out
}

func makeSegment(span []*Entry, boundaries []Boundary) Segment {
	if boundaries == nil {
		boundaries = []Boundary{}
	}
	return Segment{
		StartEntryID:   span[0].ID,
		EndEntryID:     span[len(span)-1].ID,
		EntryCount:     len(span),
		StartTimestamp: span[0].Timestamp,
		EndTimestamp:   span[len(span)-1].Timestamp,
		Boundaries:     boundaries,
	}
}

// SegmentEntries returns the content entries belonging to seg, in stream
// order. It is the bridge between a Segment record and the detectors that
// need the underlying entries.
func SegmentEntries(entries []Entry, seg Segment) []Entry {
	var out []Entry
	in := false
	for i := range entries {
		e := &entries[i]
		if e.IsMetadata() {
			continue
		}
		if e.ID == seg.StartEntryID {
			in = true
		}
		if in {
			out = append(out, *e)
		}
		if e.ID == seg.EndEntryID {
			break
		}
	}
	return out
}

package analysis

// LeafTracker follows the tree frontier during a single forward pass over
// the content stream, without materializing the tree. The caller owns the
// tracker and constructs a fresh one per pass; nothing is shared.
type LeafTracker struct {
	childCount map[string]int
	current    string
}

func NewLeafTracker() *LeafTracker {
	return &LeafTracker{childCount: make(map[string]int)}
}

// CurrentLeaf returns the id of the frontier entry, "" before the first
// observation.
func (lt *LeafTracker) CurrentLeaf() string {
	return lt.current
}

// ChildCount returns how many observed entries declared id as parent.
func (lt *LeafTracker) ChildCount(id string) int {
	return lt.childCount[id]
}

// Observe appends one content entry to the tracked frontier. The entry
// becomes the new frontier: in an append-only log the latest entry is by
// definition the leaf of the line of work being extended.
func (lt *LeafTracker) Observe(e *Entry) {
	if e.ParentID != "" {
		lt.childCount[e.ParentID]++
	}
	lt.current = e.ID
}

// Reset clears all tracked state so the tracker can run another pass.
func (lt *LeafTracker) Reset() {
	lt.childCount = make(map[string]int)
	lt.current = ""
}

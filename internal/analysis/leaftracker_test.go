package analysis

import "testing"

func TestLeafTrackerFollowsFrontier(t *testing.T) {
	lt := NewLeafTracker()
	if lt.CurrentLeaf() != "" {
		t.Fatalf("fresh tracker leaf = %q, want empty", lt.CurrentLeaf())
	}

	a := userMsg("a", "", at(0), "x")
	b := assistantMsg("b", "a", at(1), "y")
	jump := userMsg("j", "a", at(2), "z")

	lt.Observe(&a)
	if lt.CurrentLeaf() != "a" {
		t.Fatalf("leaf = %q, want a", lt.CurrentLeaf())
	}
	lt.Observe(&b)
	if lt.CurrentLeaf() != "b" {
		t.Fatalf("leaf = %q, want b", lt.CurrentLeaf())
	}
	lt.Observe(&jump)
	if lt.CurrentLeaf() != "j" {
		t.Fatalf("leaf = %q, want j after jump", lt.CurrentLeaf())
	}
	if lt.ChildCount("a") != 2 {
		t.Fatalf("children of a = %d, want 2", lt.ChildCount("a"))
	}

	lt.Reset()
	if lt.CurrentLeaf() != "" || lt.ChildCount("a") != 0 {
		t.Fatal("reset must clear all tracked state")
	}
}

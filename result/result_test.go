package result

import (
	"testing"

	"github.com/geodex/spatialquery/refine"
)

func TestCountMerge(t *testing.T) {
	a, b := NewCount(), NewCount()
	a.AddCount(3)
	b.AddCount(4)
	merged := a.Merge(b)
	if merged.CountValue() != 7 {
		t.Errorf("CountValue() = %d, want 7", merged.CountValue())
	}
}

func TestIDsMerge(t *testing.T) {
	a, b := NewIDs(), NewIDs()
	a.AddID(1)
	a.AddID(2)
	b.AddID(3)
	merged := a.Merge(b)
	if got := merged.IDValues(); len(got) != 3 {
		t.Errorf("IDValues() = %v, want 3 entries", got)
	}
}

func TestPairsMerge(t *testing.T) {
	a, b := NewPairs(), NewPairs()
	a.AddPair(1, 2)
	b.AddPair(3, 4)
	merged := a.Merge(b)
	if got := merged.PairValues(); len(got) != 2 {
		t.Errorf("PairValues() = %v, want 2 entries", got)
	}
}

func TestRelationTableMerge(t *testing.T) {
	a, b := NewRelationTable(), NewRelationTable()
	a.AddRelation(refine.RelIntersects)
	a.AddRelation(refine.RelIntersects)
	b.AddRelation(refine.RelIntersects)
	b.AddRelation(refine.RelMeets)
	merged := a.Merge(b)
	counts := merged.RelationCounts()
	if counts[refine.RelIntersects] != 3 {
		t.Errorf("RelIntersects count = %d, want 3", counts[refine.RelIntersects])
	}
	if counts[refine.RelMeets] != 1 {
		t.Errorf("RelMeets count = %d, want 1", counts[refine.RelMeets])
	}
}

func TestHeapBoundedAndMerged(t *testing.T) {
	a := NewHeap(2)
	a.Offer(1, 5.0)
	a.Offer(2, 1.0)
	a.Offer(3, 3.0) // should displace id 1 (worst of the 2 kept)

	b := NewHeap(2)
	b.Offer(4, 0.5)

	merged := a.Merge(b)
	ns := merged.Neighbors()
	if len(ns) != 2 {
		t.Fatalf("Neighbors() = %v, want 2 entries", ns)
	}
	if ns[0].ID != 4 || ns[1].ID != 2 {
		t.Errorf("Neighbors() = %v, want [{4 0.5} {2 1}]", ns)
	}
}

func TestHeapWorstDistanceBeforeFull(t *testing.T) {
	h := NewHeap(3)
	h.Offer(1, 2.0)
	if got := h.WorstDistance(); got != h.WorstDistance() {
		t.Fatal("WorstDistance() should not be NaN")
	}
	if !(h.WorstDistance() > 1e300) {
		t.Errorf("WorstDistance() before k entries = %v, want +Inf", h.WorstDistance())
	}
}

func TestMergeMismatchedModeReturnsReceiverUnchanged(t *testing.T) {
	a := NewCount()
	a.AddCount(1)
	b := NewIDs()
	b.AddID(9)
	merged := a.Merge(b)
	if merged.CountValue() != 1 {
		t.Errorf("Merge of mismatched modes changed receiver: got count %d", merged.CountValue())
	}
}

// Package interval implements the five interval-list join algorithms
// (C4) used to resolve most candidate pairs against the APRIL raster
// approximation without touching exact geometry. Every list is a
// sorted, canonical (ascending, non-overlapping, non-adjacent) sequence
// of half-open [start,end) intervals, held as a slice of Interval
// values. Each algorithm advances two cursors by the rule
// "advance the list whose current interval ends first", giving
// O(|R|+|S|) complexity.
//
// Grounded line-for-line on the original implementation's
// APRIL/join.cpp (intersectionJoinIntervalLists, insideJoinIntervalLists,
// joinIntervalsForMatch, joinIntervalsHybrid,
// joinIntervalListsSymmetricalOptimizedTrueHitIntersect).
package interval

// Interval is a half-open cell range [Start, End).
type Interval struct {
	Start, End uint32
}

// List is an ascending, non-overlapping, non-adjacent sequence of
// intervals -- the canonical form produced by package april.
type List []Interval

// Result is the outcome of the richer joiners (Hybrid, Symmetric) that
// distinguish containment from plain intersection.
type Result int

const (
	Disjoint Result = iota
	RInsideS        // every R interval is contained in some S interval
	SInsideR        // every S interval is contained in some R interval
	Matches         // R and S are pairwise identical
	Intersects
)

func (r Result) String() string {
	switch r {
	case Disjoint:
		return "disjoint"
	case RInsideS:
		return "R⊂S"
	case SInsideR:
		return "S⊂R"
	case Matches:
		return "match"
	case Intersects:
		return "intersect"
	default:
		return "unknown"
	}
}

// overlap reports whether half-open intervals [s1,e1) and [s2,e2)
// overlap: touching at a boundary (e1==s2) is not an overlap (§4.3).
func overlap(s1, e1, s2, e2 uint32) bool {
	return e1 > s2 && e2 > s1
}

// Intersect returns true iff some interval of r overlaps some interval
// of s. Empty input yields false.
func Intersect(r, s List) bool {
	if len(r) == 0 || len(s) == 0 {
		return false
	}
	i, j := 0, 0
	for i < len(r) && j < len(s) {
		a, b := r[i], s[j]
		if a.Start <= b.Start {
			if overlap(a.Start, a.End, b.Start, b.End) {
				return true
			}
			i++
		} else {
			if overlap(b.Start, b.End, a.Start, a.End) {
				return true
			}
			j++
		}
	}
	return false
}

// Inside returns true iff every interval of r is fully contained within
// some interval of s. Empty r yields false (no containment of nothing,
// §4.3); empty s yields false.
func Inside(r, s List) bool {
	if len(r) == 0 || len(s) == 0 {
		return false
	}
	i, j := 0, 0
	rContained := false
	for i < len(r) && j < len(s) {
		a, b := r[i], s[j]
		if a.Start >= b.Start && a.End <= b.End {
			rContained = true
		}
		if a.End <= b.End {
			if !rContained {
				return false
			}
			i++
			rContained = false
		} else {
			j++
		}
	}
	return i >= len(r)
}

// Match returns true iff r and s are pairwise identical sequences.
// Both empty is a match; different lengths never match.
func Match(r, s List) bool {
	if len(r) != len(s) {
		return false
	}
	for i := range r {
		if r[i] != s[i] {
			return false
		}
	}
	return true
}

// Hybrid combines the containment-of-all-R check with an intersection
// fallback in a single restartable loop: while scanning for
// containment, it records whether any overlap was seen; on the first
// R-interval that is not, and can never be (§4.3's cursor-advance
// rule), contained in any S-interval, it returns Intersects if an
// overlap was already observed, else switches into an
// intersection-only scan (the original's LOOK_FOR_OVERLAP mode) over
// what remains. Returns one of Disjoint, RInsideS, Intersects.
func Hybrid(r, s List) Result {
	if len(r) == 0 || len(s) == 0 {
		return Disjoint
	}
	i, j := 0, 0
	rContained := false
	sawIntersect := false
	for i < len(r) && j < len(s) {
		a, b := r[i], s[j]
		if overlap(a.Start, a.End, b.Start, b.End) {
			sawIntersect = true
		}
		if a.Start >= b.Start && a.End <= b.End {
			rContained = true
		}
		if a.End <= b.End {
			if !rContained {
				if sawIntersect {
					return Intersects
				}
				if Intersect(r[i:], s[j:]) {
					return Intersects
				}
				return Disjoint
			}
			i++
			rContained = false
		} else {
			j++
		}
	}
	if i < len(r) {
		if sawIntersect {
			return Intersects
		}
		return Disjoint
	}
	return RInsideS
}

// Symmetric compares r and s for containment in either direction,
// match, or intersection. Only called once the MBRs of the underlying
// geometries are known to intersect, so the non-containing,
// non-matching case is guaranteed to be Intersects rather than
// Disjoint (§4.3). Implemented as two one-sided Inside probes plus the
// intersect fallback -- the Open Question in §9 is resolved in favor
// of keeping this two-call form; no single-pass tightening is added.
func Symmetric(r, s List) Result {
	if len(r) == 0 || len(s) == 0 {
		return Disjoint
	}
	rInS := Inside(r, s)
	sInR := Inside(s, r)
	switch {
	case rInS && sInR:
		return Matches
	case rInS:
		return RInsideS
	case sInR:
		return SInsideR
	default:
		return Intersects
	}
}

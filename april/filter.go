package april

import (
	"github.com/geodex/spatialquery/interval"
	"github.com/geodex/spatialquery/refine"
)

// QueryType selects which predicate the intermediate filter resolves.
// It mirrors the query surface the pipeline package dispatches on
// (§4.6, §4.8); Range reduces to Intersects once the query window has
// been synthesized into an APRIL Data of its own (§9 Open Question:
// Range is intersection-only, no other topological Range variants).
type QueryType uint8

const (
	QueryIntersects QueryType = iota
	QueryInside
	QueryCoveredBy
	QueryContains
	QueryCovers
	QueryDisjoint
	QueryEquals
	QueryMeets
)

// Verdict is the outcome of the intermediate filter: either the pair's
// fate is already decided (TrueHit / TrueNegative) or exact geometry
// refinement is still required (Inconclusive).
type Verdict uint8

const (
	TrueNegative Verdict = iota
	TrueHit
	Inconclusive
)

func (v Verdict) String() string {
	switch v {
	case TrueNegative:
		return "true-negative"
	case TrueHit:
		return "true-hit"
	default:
		return "inconclusive"
	}
}

// Filter resolves a candidate pair against its APRIL approximations
// without touching exact geometry, per the uncompressed::standard
// family: each query type examines the ALL/FULL interval lists of R
// and S in a fixed sequence of cheap list operations and returns as
// soon as the result is certain.
func Filter(q QueryType, r, s *Data) Verdict {
	switch q {
	case QueryIntersects:
		return filterIntersects(r, s)
	case QueryContains, QueryCovers:
		return ContainsCoversFilter(r, s)
	case QueryInside, QueryCoveredBy:
		return filterInsideCoveredBy(r, s)
	case QueryDisjoint:
		return filterDisjoint(r, s)
	case QueryEquals:
		return filterEquals(r, s)
	case QueryMeets:
		return filterMeets(r, s)
	default:
		return Inconclusive
	}
}

func filterIntersects(r, s *Data) Verdict {
	if !interval.Intersect(r.IntervalsALL, s.IntervalsALL) {
		return TrueNegative
	}
	if interval.Intersect(r.IntervalsALL, s.IntervalsFULL) {
		return TrueHit
	}
	if interval.Intersect(r.IntervalsFULL, s.IntervalsALL) {
		return TrueHit
	}
	return Inconclusive
}

// filterInsideCoveredBy resolves whether R is inside/covered-by S
// (§4.4's MBR R⊂S sequence): hybrid(ALL_r, ALL_s) settles containment
// or rules it out outright (an Intersects verdict there still means R
// is not fully inside S), then hybrid(ALL_r, FULL_s) confirms against
// S's strict interior to guarantee a hit.
func filterInsideCoveredBy(r, s *Data) Verdict {
	if interval.Hybrid(r.IntervalsALL, s.IntervalsALL) != interval.RInsideS {
		return TrueNegative
	}
	if interval.Hybrid(r.IntervalsALL, s.IntervalsFULL) == interval.RInsideS {
		return TrueHit
	}
	return Inconclusive
}

func filterDisjoint(r, s *Data) Verdict {
	if !interval.Intersect(r.IntervalsALL, s.IntervalsALL) {
		return TrueHit
	}
	if interval.Intersect(r.IntervalsALL, s.IntervalsFULL) {
		return TrueNegative
	}
	if interval.Intersect(r.IntervalsFULL, s.IntervalsALL) {
		return TrueNegative
	}
	return Inconclusive
}

// filterEquals requires identical footprints (symmetric(ALL_r, ALL_s)
// = match, per §4.4's MBR-equal sequence) and identical interiors
// (FULL matches exactly); either mismatch is a certain negative, since
// equal shapes rasterize to the same cells.
func filterEquals(r, s *Data) Verdict {
	if interval.Symmetric(r.IntervalsALL, s.IntervalsALL) != interval.Matches {
		return TrueNegative
	}
	if !interval.Match(r.IntervalsFULL, s.IntervalsFULL) {
		return TrueNegative
	}
	return Inconclusive
}

// filterMeets requires R and S to touch without sharing interior: any
// overlap with either side's FULL cells rules it out immediately.
func filterMeets(r, s *Data) Verdict {
	if !interval.Intersect(r.IntervalsALL, s.IntervalsALL) {
		return TrueNegative
	}
	if interval.Intersect(r.IntervalsALL, s.IntervalsFULL) {
		return TrueNegative
	}
	if interval.Intersect(r.IntervalsFULL, s.IntervalsALL) {
		return TrueNegative
	}
	return Inconclusive
}

// ContainsCoversFilter resolves R contains/covers S, the directional
// counterpart of filterInsideCoveredBy (§4.4's MBR S⊂R sequence, R and
// S swapped relative to the R⊂S case): it requires S's footprint to
// lie fully within R's, and a hit once S is fully inside R's interior.
func ContainsCoversFilter(r, s *Data) Verdict {
	if interval.Hybrid(s.IntervalsALL, r.IntervalsALL) != interval.RInsideS {
		return TrueNegative
	}
	if interval.Hybrid(s.IntervalsALL, r.IntervalsFULL) == interval.RInsideS {
		return TrueHit
	}
	return Inconclusive
}

// MBRCase names which of the four MBR relationships (§4.4) a sweep
// variant has already determined for a candidate pair, and therefore
// which joiner sequence the intermediate filter runs to turn that MBR
// case into a topological outcome or a narrowed refinement set.
type MBRCase uint8

const (
	CaseIntersect MBRCase = iota
	CaseRInS
	CaseSInR
	CaseEqual
)

// CaseOutcome is what ResolveMBRCase settles a candidate pair to:
// either a Final topological Relation, or a Refine set naming the
// surviving candidates that exact refinement must still discriminate
// among (§4.4's "true hit / true negative / inconclusive" verdicts,
// generalized to the full eight-relation vocabulary FindRelation needs).
type CaseOutcome struct {
	Final    bool
	Relation refine.Relation
	Refine   refine.RefineSet
}

func finalOutcome(rel refine.Relation) CaseOutcome {
	return CaseOutcome{Final: true, Relation: rel}
}

func refineOutcome(set refine.RefineSet) CaseOutcome {
	return CaseOutcome{Refine: set}
}

// ResolveMBRCase implements §4.4 in full: it composes interval.Hybrid
// and interval.Symmetric over (ALL, FULL) to turn the MBR case already
// known for r, s into either a final relation or a narrowed refinement
// set, routing on which of the four MBR cases the sweep determined.
func ResolveMBRCase(kind MBRCase, r, s *Data) CaseOutcome {
	switch kind {
	case CaseRInS:
		return resolveRInS(r, s)
	case CaseSInR:
		return resolveSInR(r, s)
	case CaseEqual:
		return resolveEqual(r, s)
	default:
		return resolveIntersect(r, s)
	}
}

// resolveIntersect is §4.4's "MBR-intersect (generic)" sequence.
func resolveIntersect(r, s *Data) CaseOutcome {
	if !interval.Intersect(r.IntervalsALL, s.IntervalsALL) {
		return finalOutcome(refine.RelDisjoint)
	}
	if interval.Intersect(r.IntervalsALL, s.IntervalsFULL) || interval.Intersect(r.IntervalsFULL, s.IntervalsALL) {
		return finalOutcome(refine.RelIntersects)
	}
	return refineOutcome(refine.SetDisjoint | refine.SetMeets | refine.SetIntersects)
}

// resolveRInS is §4.4's "MBR R⊂S" sequence.
func resolveRInS(r, s *Data) CaseOutcome {
	switch interval.Hybrid(r.IntervalsALL, s.IntervalsALL) {
	case interval.Disjoint:
		return finalOutcome(refine.RelDisjoint)
	case interval.RInsideS:
		switch interval.Hybrid(r.IntervalsALL, s.IntervalsFULL) {
		case interval.RInsideS:
			return finalOutcome(refine.RelInside)
		case interval.Intersects:
			return refineOutcome(refine.SetInside | refine.SetCoveredBy | refine.SetIntersects)
		default: // Disjoint
			return refineOutcome(refine.SetDisjoint | refine.SetInside | refine.SetCoveredBy | refine.SetMeets | refine.SetIntersects)
		}
	default: // Intersects
		if interval.Intersect(r.IntervalsALL, s.IntervalsFULL) || interval.Intersect(r.IntervalsFULL, s.IntervalsALL) {
			return finalOutcome(refine.RelIntersects)
		}
		return refineOutcome(refine.SetDisjoint | refine.SetInside | refine.SetCoveredBy | refine.SetMeets | refine.SetIntersects)
	}
}

// resolveSInR is §4.4's "MBR S⊂R" sequence, the mirror of resolveRInS
// with R and S swapped and Inside/CoveredBy relabeled Contains/Covers.
func resolveSInR(r, s *Data) CaseOutcome {
	switch interval.Hybrid(s.IntervalsALL, r.IntervalsALL) {
	case interval.Disjoint:
		return finalOutcome(refine.RelDisjoint)
	case interval.RInsideS:
		switch interval.Hybrid(s.IntervalsALL, r.IntervalsFULL) {
		case interval.RInsideS:
			return finalOutcome(refine.RelContains)
		case interval.Intersects:
			return refineOutcome(refine.SetContains | refine.SetCovers | refine.SetIntersects)
		default: // Disjoint
			return refineOutcome(refine.SetDisjoint | refine.SetContains | refine.SetCovers | refine.SetMeets | refine.SetIntersects)
		}
	default: // Intersects
		if interval.Intersect(s.IntervalsALL, r.IntervalsFULL) || interval.Intersect(s.IntervalsFULL, r.IntervalsALL) {
			return finalOutcome(refine.RelIntersects)
		}
		return refineOutcome(refine.SetDisjoint | refine.SetContains | refine.SetCovers | refine.SetMeets | refine.SetIntersects)
	}
}

// resolveEqual is §4.4's "MBR equal" sequence.
func resolveEqual(r, s *Data) CaseOutcome {
	switch interval.Symmetric(r.IntervalsALL, s.IntervalsALL) {
	case interval.Disjoint:
		return finalOutcome(refine.RelDisjoint)
	case interval.Matches:
		return refineOutcome(refine.SetEquals | refine.SetCovers | refine.SetCoveredBy | refine.SetIntersects)
	case interval.RInsideS:
		if interval.Hybrid(r.IntervalsALL, s.IntervalsFULL) == interval.RInsideS {
			return finalOutcome(refine.RelInside)
		}
		return refineOutcome(refine.SetCoveredBy | refine.SetIntersects)
	case interval.SInsideR:
		if interval.Hybrid(s.IntervalsALL, r.IntervalsFULL) == interval.RInsideS {
			return finalOutcome(refine.RelContains)
		}
		return refineOutcome(refine.SetCovers | refine.SetIntersects)
	default: // Intersects: one exact geometry meets test settles it.
		return refineOutcome(refine.SetMeets | refine.SetIntersects)
	}
}

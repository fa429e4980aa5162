// Package pipeline implements the pair pipeline (C7): the plane-sweep
// join matrix over Two-Layer class buckets (§4.5/§4.6), the dispatch
// of surviving pairs through the APRIL intermediate filter and down
// to exact refinement (§4.7), and the Range/KNN/DistanceJoin query
// operations built on top of it (§4.8).
//
// Grounded on original_source/Hecatoncheir/src/TwoLayer/
// intersection_join_filter.cpp (the sweep variants),
// .../TwoLayer/range_filter.cpp (range-query cell cases), and
// .../UniformGrid/{dj_filter,knn_filter}.cpp (epsilon-join/kNN).
package pipeline

import (
	"github.com/geodex/spatialquery/april"
	"github.com/geodex/spatialquery/refine"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
)

// EvaluatePredicate resolves whether predicate q holds between r and
// s (§4.7): the APRIL filter decides it outright when both sides
// have APRIL data, otherwise exact refinement does. rd/sd may be nil,
// which forces the exact path.
func EvaluatePredicate(r, s *shape.Shape, rd, sd *april.Data, q april.QueryType) (bool, error) {
	if rd != nil && sd != nil {
		switch april.Filter(q, rd, sd) {
		case april.TrueHit:
			return true, nil
		case april.TrueNegative:
			return false, nil
		}
	}
	return exactPredicate(r, s, q)
}

func exactPredicate(r, s *shape.Shape, q april.QueryType) (bool, error) {
	if !r.MBR.Intersects(s.MBR) {
		return q == april.QueryDisjoint, nil
	}
	m, err := refine.Relate(r, s)
	if err != nil {
		return false, err
	}
	switch q {
	case april.QueryIntersects:
		return matchesAny(m, refine.IntersectMasks), nil
	case april.QueryInside:
		return refine.MatchesPattern(m, refine.InsideMask), nil
	case april.QueryContains:
		return refine.MatchesPattern(m, refine.ContainsMask), nil
	case april.QueryCovers:
		return matchesAny(m, refine.CoversMasks), nil
	case april.QueryCoveredBy:
		return matchesAny(m, refine.CoveredByMasks), nil
	case april.QueryDisjoint:
		return refine.MatchesPattern(m, refine.DisjointMask), nil
	case april.QueryEquals:
		return refine.MatchesPattern(m, refine.EqualMask), nil
	case april.QueryMeets:
		return matchesAny(m, refine.MeetMasks), nil
	default:
		return false, status.New(status.InvalidQueryType, "pipeline: unknown predicate %v", q)
	}
}

func matchesAny(m refine.Matrix, patterns []string) bool {
	for _, p := range patterns {
		if refine.MatchesPattern(m, p) {
			return true
		}
	}
	return false
}

// classifyMBRCase determines which of the four MBR relationships
// (§4.4) routes the intermediate filter for r, s.
func classifyMBRCase(r, s shape.MBR) april.MBRCase {
	switch {
	case r == s:
		return april.CaseEqual
	case s.Contains(r):
		return april.CaseRInS
	case r.Contains(s):
		return april.CaseSInR
	default:
		return april.CaseIntersect
	}
}

// FindRelation resolves the full topological relation between r and s
// (§3's FindRelation query): the sweep-determined MBR case routes
// april.ResolveMBRCase's hybrid/symmetric joiner sequence (§4.4), which
// either settles the relation outright or narrows the candidates that
// exact DE-9IM refinement (§4.7 step 3/4) must still discriminate
// among.
func FindRelation(r, s *shape.Shape, rd, sd *april.Data) (refine.Relation, error) {
	if !r.MBR.Intersects(s.MBR) {
		return refine.RelDisjoint, nil
	}
	if rd == nil || sd == nil {
		m, err := refine.Relate(r, s)
		if err != nil {
			return refine.RelNone, err
		}
		return refine.Classify(m), nil
	}

	outcome := april.ResolveMBRCase(classifyMBRCase(r.MBR, s.MBR), rd, sd)
	if outcome.Final {
		return outcome.Relation, nil
	}
	return refine.RefineNarrowed(r, s, outcome.Refine)
}

// Package refine implements the exact topological refinement stage
// (the last resort once the MBR and APRIL filters are inconclusive):
// a DE-9IM-style intersection-dimension matrix and the mask tables
// that turn it into one of the eight named relations of spec §6.
//
// Grounded on
// original_source/Hecatoncheir/src/refinement/topology.cpp, which
// drives boost::geometry's DE-9IM mask matcher from the same relation
// masks encoded below. There is no boost::geometry analog in the
// teacher or the rest of the example pack, so the matrix cells here
// are derived directly from shape's own boolean predicates
// (Intersects, Touches, Within, boundary/edge tests) rather than a
// general dimension-extraction algorithm: each cell answers "do these
// two parts share a point" for the specific vertex/edge structure of
// Point, LineString, Rectangle and Polygon, which is sufficient to
// discriminate the eight relations for the simple (non-self-crossing)
// geometries this engine accepts.
package refine

import (
	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
)

// Part names a row or column of the 3x3 DE-9IM matrix.
type Part int

const (
	Interior Part = iota
	Boundary
	Exterior
)

// Matrix is the 3x3 intersection matrix: Matrix[a][b] is true iff part
// a of the first geometry shares a point with part b of the second.
type Matrix [3][3]bool

// flatten returns the matrix in the canonical DE-9IM string order:
// II, IB, IE, BI, BB, BE, EI, EB, EE.
func (m Matrix) flatten() [9]bool {
	return [9]bool{
		m[Interior][Interior], m[Interior][Boundary], m[Interior][Exterior],
		m[Boundary][Interior], m[Boundary][Boundary], m[Boundary][Exterior],
		m[Exterior][Interior], m[Exterior][Boundary], m[Exterior][Exterior],
	}
}

// MatchesPattern reports whether m satisfies a 9-character DE-9IM
// pattern: 'T' requires the cell to be true, 'F' requires false, '*'
// matches either (spec §6).
func MatchesPattern(m Matrix, pattern string) bool {
	if len(pattern) != 9 {
		return false
	}
	flat := m.flatten()
	for i, c := range pattern {
		switch c {
		case '*':
			continue
		case 'T':
			if !flat[i] {
				return false
			}
		case 'F':
			if flat[i] {
				return false
			}
		}
	}
	return true
}

// Relation is one of the eight named topological relations of spec §6.
type Relation int

const (
	RelNone Relation = iota
	RelInside
	RelContains
	RelCovers
	RelCoveredBy
	RelEquals
	RelMeets
	RelDisjoint
	RelIntersects
)

func (r Relation) String() string {
	switch r {
	case RelInside:
		return "inside"
	case RelContains:
		return "contains"
	case RelCovers:
		return "covers"
	case RelCoveredBy:
		return "covered_by"
	case RelEquals:
		return "equals"
	case RelMeets:
		return "meets"
	case RelDisjoint:
		return "disjoint"
	case RelIntersects:
		return "intersects"
	default:
		return "none"
	}
}

// Per-relation mask tables, transcribed from topology.cpp's
// insideCode/coveredbyCode*/containsCode/coversCode*/meetCode*/
// equalCode/disjointCode/intersectCode* literals.
const (
	InsideMask   = "T*F**F***"
	ContainsMask = "T*****FF*"
	EqualMask    = "T*F**FFF*"
	DisjointMask = "FF*FF****"
)

var (
	CoveredByMasks = []string{"T*F**F***", "*TF**F***", "**FT*F***", "**F*TF***"}
	CoversMasks    = []string{"T*****FF*", "*T****FF*", "***T**FF*", "****T*FF*"}
	MeetMasks      = []string{"FT*******", "F**T*****", "F***T****"}
	IntersectMasks = []string{"T********", "*T*******", "***T*****", "****T****"}
)

func matchesAny(m Matrix, patterns []string) bool {
	for _, p := range patterns {
		if MatchesPattern(m, p) {
			return true
		}
	}
	return false
}

// RefineSet is a bitmask naming which relations remain possible after
// an upstream filter narrows the candidates (§4.7 step 3/4) -- only
// these masks are evaluated by RefineNarrowed.
type RefineSet uint16

const (
	SetInside RefineSet = 1 << iota
	SetContains
	SetCovers
	SetCoveredBy
	SetEquals
	SetMeets
	SetDisjoint
	SetIntersects
)

// Classify returns the single named relation m satisfies, checking
// the most specific relations first (Equals before Inside/Contains,
// which equal shapes also satisfy, and Inside/Contains before the
// looser Covers/CoveredBy, which Inside/Contains both also satisfy).
func Classify(m Matrix) Relation {
	switch {
	case MatchesPattern(m, EqualMask):
		return RelEquals
	case MatchesPattern(m, InsideMask):
		return RelInside
	case MatchesPattern(m, ContainsMask):
		return RelContains
	case matchesAny(m, CoveredByMasks):
		return RelCoveredBy
	case matchesAny(m, CoversMasks):
		return RelCovers
	case matchesAny(m, MeetMasks):
		return RelMeets
	case MatchesPattern(m, DisjointMask):
		return RelDisjoint
	case matchesAny(m, IntersectMasks):
		return RelIntersects
	default:
		return RelNone
	}
}

// Relate computes the intersection matrix between r and s.
func Relate(r, s *shape.Shape) (Matrix, error) {
	if r == nil || s == nil {
		return Matrix{}, status.New(status.InvalidParameter, "Relate requires two non-nil shapes")
	}
	if !r.MBR.Intersects(s.MBR) {
		return Matrix{
			{false, false, true},
			{false, false, true},
			{true, true, true},
		}, nil
	}

	ii := shape.Intersects(r, s) && !shape.Touches(r, s)
	bb := boundaryBoundaryIntersect(r, s)
	ib := interiorBoundaryIntersect(r, s)
	bi := interiorBoundaryIntersect(s, r)

	ie := !shape.Within(r, s)
	ei := !shape.Within(s, r)

	return Matrix{
		{ii, ib, ie},
		{bi, bb, ie},
		{ei, ei, true},
	}, nil
}

// RefineNarrowed evaluates only the masks named in candidates,
// returning the first that matches (spec §4.7 step 3/4 -- an upstream
// filter has already eliminated everything outside this set, so there
// is no need to pay for the relations it ruled out).
func RefineNarrowed(r, s *shape.Shape, candidates RefineSet) (Relation, error) {
	m, err := Relate(r, s)
	if err != nil {
		return RelNone, err
	}
	if candidates&SetEquals != 0 && MatchesPattern(m, EqualMask) {
		return RelEquals, nil
	}
	if candidates&SetInside != 0 && MatchesPattern(m, InsideMask) {
		return RelInside, nil
	}
	if candidates&SetContains != 0 && MatchesPattern(m, ContainsMask) {
		return RelContains, nil
	}
	if candidates&SetCoveredBy != 0 && matchesAny(m, CoveredByMasks) {
		return RelCoveredBy, nil
	}
	if candidates&SetCovers != 0 && matchesAny(m, CoversMasks) {
		return RelCovers, nil
	}
	if candidates&SetMeets != 0 && matchesAny(m, MeetMasks) {
		return RelMeets, nil
	}
	if candidates&SetDisjoint != 0 && MatchesPattern(m, DisjointMask) {
		return RelDisjoint, nil
	}
	if candidates&SetIntersects != 0 && matchesAny(m, IntersectMasks) {
		return RelIntersects, nil
	}
	return RelNone, status.New(status.AprilUnexpectedResult,
		"no candidate relation in %v matched the computed matrix", candidates)
}

// boundaryPoints returns the finite point-set that constitutes s's
// DE-9IM boundary: empty for Point, the two endpoints for LineString,
// the full ring for Rectangle/Polygon.
func boundaryPoints(s *shape.Shape) []geom.Point {
	switch s.Kind {
	case shape.Point:
		return nil
	case shape.LineString:
		return []geom.Point{s.Vertices[0], s.Vertices[len(s.Vertices)-1]}
	default:
		return s.Vertices
	}
}

// ringEdges returns s's boundary as a curve (a closed sequence of
// segments), non-nil only for the areal kinds.
func ringEdges(s *shape.Shape) [][2]geom.Point {
	if s.Kind != shape.Rectangle && s.Kind != shape.Polygon {
		return nil
	}
	n := len(s.Vertices)
	out := make([][2]geom.Point, 0, n-1)
	for i := 0; i < n-1; i++ {
		out = append(out, [2]geom.Point{s.Vertices[i], s.Vertices[i+1]})
	}
	return out
}

func pointOnBoundary(s *shape.Shape, p geom.Point) bool {
	switch s.Kind {
	case shape.Point:
		return false
	case shape.LineString:
		return p == s.Vertices[0] || p == s.Vertices[len(s.Vertices)-1]
	default:
		for _, e := range ringEdges(s) {
			if shape.OnSegment(e[0].X, e[0].Y, e[1].X, e[1].Y, p.X, p.Y) {
				return true
			}
		}
		return false
	}
}

func pointInInterior(s *shape.Shape, p geom.Point) bool {
	switch s.Kind {
	case shape.Point:
		return p == s.Vertices[0]
	case shape.LineString:
		if p == s.Vertices[0] || p == s.Vertices[len(s.Vertices)-1] {
			return false
		}
		for i := 0; i < len(s.Vertices)-1; i++ {
			a, b := s.Vertices[i], s.Vertices[i+1]
			if shape.OnSegment(a.X, a.Y, b.X, b.Y, p.X, p.Y) {
				return true
			}
		}
		return false
	default:
		return shape.PointInRing(s.Vertices, p.X, p.Y)
	}
}

// boundaryBoundaryIntersect tests whether r's boundary and s's
// boundary share a point: a ring/ring curve crossing when both are
// areal, otherwise point-set membership against the other's boundary
// representation.
func boundaryBoundaryIntersect(r, s *shape.Shape) bool {
	re, se := ringEdges(r), ringEdges(s)
	if len(re) > 0 && len(se) > 0 {
		for _, a := range re {
			for _, b := range se {
				if shape.SegmentsIntersect(a[0], a[1], b[0], b[1]) {
					return true
				}
			}
		}
		return false
	}
	for _, p := range boundaryPoints(r) {
		if pointOnBoundary(s, p) {
			return true
		}
	}
	for _, p := range boundaryPoints(s) {
		if pointOnBoundary(r, p) {
			return true
		}
	}
	return false
}

// interiorBoundaryIntersect tests whether s's boundary passes through
// r's interior, sampling s's boundary vertices and (for ring
// boundaries) edge midpoints.
func interiorBoundaryIntersect(r, s *shape.Shape) bool {
	for _, p := range boundaryPoints(s) {
		if pointInInterior(r, p) {
			return true
		}
	}
	for _, e := range ringEdges(s) {
		mid := geom.Point{X: (e[0].X + e[1].X) / 2, Y: (e[0].Y + e[1].Y) / 2}
		if pointInInterior(r, mid) {
			return true
		}
	}
	return false
}

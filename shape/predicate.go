package shape

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/gonum/floats"
)

// PointInRing reports whether (x,y) lies strictly inside the polygon
// ring (a standard even-odd ray-casting test). Points exactly on an
// edge are reported as outside; callers that need boundary membership
// should test the edges separately (see onBoundary).
func PointInRing(ring []geom.Point, x, y float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > y) != (pj.Y > y) {
			xIntersect := pj.X + (y-pj.Y)/(pj.Y-pi.Y)*(pi.X-pj.X)
			if x < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// OnSegment reports whether point (x,y) lies on the closed segment a-b.
func OnSegment(ax, ay, bx, by, x, y float64) bool {
	const eps = 1e-12
	cross := (bx-ax)*(y-ay) - (by-ay)*(x-ax)
	if math.Abs(cross) > eps {
		return false
	}
	if x < math.Min(ax, bx)-eps || x > math.Max(ax, bx)+eps {
		return false
	}
	if y < math.Min(ay, by)-eps || y > math.Max(ay, by)+eps {
		return false
	}
	return true
}

// SegmentsIntersect reports whether closed segments p1-p2 and p3-p4
// intersect (including touching at an endpoint), via the standard
// orientation test.
func SegmentsIntersect(p1, p2, p3, p4 geom.Point) bool {
	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && OnSegment(p3.X, p3.Y, p4.X, p4.Y, p1.X, p1.Y) {
		return true
	}
	if d2 == 0 && OnSegment(p3.X, p3.Y, p4.X, p4.Y, p2.X, p2.Y) {
		return true
	}
	if d3 == 0 && OnSegment(p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y) {
		return true
	}
	if d4 == 0 && OnSegment(p1.X, p1.Y, p2.X, p2.Y, p4.X, p4.Y) {
		return true
	}
	return false
}

func orientation(a, b, c geom.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func segmentDistance(ax, ay, bx, by, x, y float64) float64 {
	dx, dy := bx-ax, by-ay
	if dx == 0 && dy == 0 {
		return floats.Distance([]float64{ax, ay}, []float64{x, y}, 2)
	}
	t := ((x-ax)*dx + (y-ay)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px, py := ax+t*dx, ay+t*dy
	return floats.Distance([]float64{px, py}, []float64{x, y}, 2)
}

// distanceToRing returns the minimum distance from (x,y) to the ring's
// edges (not the filled interior).
func distanceToRing(ring []geom.Point, x, y float64) float64 {
	best := math.Inf(1)
	for i := 0; i < len(ring)-1; i++ {
		d := segmentDistance(ring[i].X, ring[i].Y, ring[i+1].X, ring[i+1].Y, x, y)
		if d < best {
			best = d
		}
	}
	return best
}

// Intersects reports whether r and s share at least one point, dispatching
// on the (Kind,Kind) pair per the 4x4 table of Design Notes §9.
func Intersects(r, s *Shape) bool {
	if !r.MBR.Intersects(s.MBR) {
		return false
	}
	return dispatch[r.Kind][s.Kind](r, s)
}

// dispatch is the double-dispatch table of predicate functions, one per
// (r.Kind, s.Kind) pair (Design Notes §9): point-point coincidence and
// point-vs-areal membership are cheap special cases, everything else
// goes through the shared edge/ring test.
var dispatch = [4][4]func(r, s *Shape) bool{}

func init() {
	for i := range dispatch {
		for j := range dispatch[i] {
			dispatch[i][j] = edgeRingIntersects
		}
	}
	dispatch[Point][Point] = pointPointIntersects
	dispatch[Point][LineString] = pointVsArealIntersects
	dispatch[Point][Rectangle] = pointVsArealIntersects
	dispatch[Point][Polygon] = pointVsArealIntersects
	dispatch[LineString][Point] = arealVsPointIntersects
	dispatch[Rectangle][Point] = arealVsPointIntersects
	dispatch[Polygon][Point] = arealVsPointIntersects
}

func pointPointIntersects(r, s *Shape) bool { return r.Vertices[0] == s.Vertices[0] }

func pointVsArealIntersects(r, s *Shape) bool {
	return shapeContainsPoint(s, r.Vertices[0].X, r.Vertices[0].Y) || onBoundary(s, r.Vertices[0])
}

func arealVsPointIntersects(r, s *Shape) bool {
	return shapeContainsPoint(r, s.Vertices[0].X, s.Vertices[0].Y) || onBoundary(r, s.Vertices[0])
}

// edgeRingIntersects handles every remaining (Kind,Kind) combination:
// segment-crossing test, falling back to ring point-in-polygon when
// neither ring crosses the other (one nested entirely inside the other).
func edgeRingIntersects(r, s *Shape) bool {
	if edgesIntersect(r.edges(), s.edges()) {
		return true
	}
	if r.Kind == Rectangle || r.Kind == Polygon {
		if PointInRing(r.Vertices, s.Vertices[0].X, s.Vertices[0].Y) {
			return true
		}
	}
	if s.Kind == Rectangle || s.Kind == Polygon {
		if PointInRing(s.Vertices, r.Vertices[0].X, r.Vertices[0].Y) {
			return true
		}
	}
	return false
}

func onBoundary(s *Shape, p geom.Point) bool {
	for _, e := range s.edges() {
		if OnSegment(e[0].X, e[0].Y, e[1].X, e[1].Y, p.X, p.Y) {
			return true
		}
	}
	return false
}

func shapeContainsPoint(s *Shape, x, y float64) bool {
	if s.Kind != Rectangle && s.Kind != Polygon {
		return false
	}
	return PointInRing(s.Vertices, x, y)
}

// edges returns the shape's vertex sequence as consecutive segment pairs.
func (s *Shape) edges() [][2]geom.Point {
	n := len(s.Vertices)
	if n < 2 {
		return nil
	}
	out := make([][2]geom.Point, 0, n-1)
	for i := 0; i < n-1; i++ {
		out = append(out, [2]geom.Point{s.Vertices[i], s.Vertices[i+1]})
	}
	return out
}

func edgesIntersect(a, b [][2]geom.Point) bool {
	for _, ea := range a {
		for _, eb := range b {
			if SegmentsIntersect(ea[0], ea[1], eb[0], eb[1]) {
				return true
			}
		}
	}
	return false
}

// BoundaryEdgesIntersect reports whether r's and s's edge sequences
// cross or touch (the raw segment-crossing test over both edge lists).
func BoundaryEdgesIntersect(r, s *Shape) bool {
	return edgesIntersect(r.edges(), s.edges())
}

// Within reports whether r is entirely contained within s (interior or
// boundary), the complement used by the Contains relation.
func Within(r, s *Shape) bool {
	if !s.MBR.Contains(r.MBR) {
		return false
	}
	// A proper crossing (each edge strictly splits the other) takes r
	// outside s. Edges that only touch or run along s's boundary are
	// allowed; the vertex test below decides those cases.
	for _, ea := range r.edges() {
		for _, eb := range s.edges() {
			d1, d2 := orientation(eb[0], eb[1], ea[0]), orientation(eb[0], eb[1], ea[1])
			d3, d4 := orientation(ea[0], ea[1], eb[0]), orientation(ea[0], ea[1], eb[1])
			if d1*d2 < 0 && d3*d4 < 0 {
				return false
			}
		}
	}
	if s.Kind != Rectangle && s.Kind != Polygon {
		return r.Kind == Point && s.Kind == Point && r.Vertices[0] == s.Vertices[0]
	}
	// No edge crossings and s is areal: every r vertex inside s suffices.
	for _, v := range r.Vertices {
		if !PointInRing(s.Vertices, v.X, v.Y) && !onBoundary(s, v) {
			return false
		}
	}
	return true
}

// Touches reports whether r and s meet only at their boundaries, sharing
// no interior points (a cheap approximation used before falling back to
// the exact DE-9IM refiner; package refine makes the final call for
// Meets).
func Touches(r, s *Shape) bool {
	if !r.MBR.Intersects(s.MBR) {
		return false
	}
	return edgesIntersect(r.edges(), s.edges()) && !interiorsOverlap(r, s)
}

func interiorsOverlap(r, s *Shape) bool {
	if r.Kind != Rectangle && r.Kind != Polygon {
		return false
	}
	if s.Kind != Rectangle && s.Kind != Polygon {
		return false
	}
	rc, sc := r.Centroid(), s.Centroid()
	return PointInRing(s.Vertices, rc.X, rc.Y) || PointInRing(r.Vertices, sc.X, sc.Y)
}

// Distance returns the minimum Euclidean distance between r and s (0 if
// they intersect). Point-point distance goes through gonum/floats, the
// same package the teacher imports for vector reductions.
func Distance(r, s *Shape) float64 {
	if Intersects(r, s) {
		return 0
	}
	best := math.Inf(1)
	for _, rv := range r.boundaryPoints() {
		for _, se := range s.edges() {
			d := segmentDistance(se[0].X, se[0].Y, se[1].X, se[1].Y, rv.X, rv.Y)
			if d < best {
				best = d
			}
		}
		if len(s.edges()) == 0 {
			for _, sv := range s.boundaryPoints() {
				d := floats.Distance([]float64{rv.X, rv.Y}, []float64{sv.X, sv.Y}, 2)
				if d < best {
					best = d
				}
			}
		}
	}
	return best
}

func (s *Shape) boundaryPoints() []geom.Point {
	if s.Kind == Point {
		return s.Vertices
	}
	return s.Vertices
}

// DistanceToPoint returns the minimum Euclidean distance from s to (x,y),
// used by the kNN query (§4.8).
func DistanceToPoint(s *Shape, x, y float64) float64 {
	if s.Kind == Point {
		return floats.Distance([]float64{s.Vertices[0].X, s.Vertices[0].Y}, []float64{x, y}, 2)
	}
	if s.MBR.ContainsPoint(x, y) && (s.Kind == Rectangle || s.Kind == Polygon) && PointInRing(s.Vertices, x, y) {
		return 0
	}
	return distanceToRing(s.Vertices, x, y)
}

// DistanceToMBR returns the minimum possible distance from (x,y) to any
// point within m, used to prune kNN partition visits (§4.8).
func DistanceToMBR(m MBR, x, y float64) float64 {
	dx := math.Max(math.Max(m.MinX-x, x-m.MaxX), 0)
	dy := math.Max(math.Max(m.MinY-y, y-m.MaxY), 0)
	return math.Sqrt(dx*dx + dy*dy)
}

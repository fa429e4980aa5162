// Package shape implements the geometry primitives (C1): MBRs, vertex
// buffers, and the spatial-type-tagged Shape used throughout the query
// engine. Vertex and bounds representations are built on
// github.com/ctessum/geom, the same library the teacher embeds in its
// own grid-cell type; the predicate dispatch table and MBR bookkeeping
// are specific to this engine.
package shape

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/status"
)

// Kind tags the spatial type of a Shape.
type Kind uint8

const (
	Point Kind = iota
	LineString
	Rectangle
	Polygon
)

func (k Kind) String() string {
	switch k {
	case Point:
		return "Point"
	case LineString:
		return "LineString"
	case Rectangle:
		return "Rectangle"
	case Polygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// MBR is the axis-aligned minimum bounding rectangle, a closed interval
// [MinX,MaxX] x [MinY,MaxY].
type MBR struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether two MBRs overlap (closed-interval test, §3).
func (a MBR) Intersects(b MBR) bool {
	return a.MinX <= b.MaxX && b.MinX <= a.MaxX && a.MinY <= b.MaxY && b.MinY <= a.MaxY
}

// Contains reports whether a fully contains b.
func (a MBR) Contains(b MBR) bool {
	return a.MinX <= b.MinX && a.MaxX >= b.MaxX && a.MinY <= b.MinY && a.MaxY >= b.MaxY
}

// ContainsPoint reports whether (x,y) lies within the closed MBR.
func (a MBR) ContainsPoint(x, y float64) bool {
	return x >= a.MinX && x <= a.MaxX && y >= a.MinY && y <= a.MaxY
}

// Width and Height of the MBR.
func (a MBR) Width() float64  { return a.MaxX - a.MinX }
func (a MBR) Height() float64 { return a.MaxY - a.MinY }

// Bounds converts the MBR to the geom package's bounds type, so it can
// be used directly with github.com/ctessum/geom/index/rtree.
func (a MBR) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: a.MinX, Y: a.MinY},
		Max: geom.Point{X: a.MaxX, Y: a.MaxY},
	}
}

func mbrOf(pts []geom.Point) MBR {
	m := MBR{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range pts {
		if p.X < m.MinX {
			m.MinX = p.X
		}
		if p.X > m.MaxX {
			m.MaxX = p.X
		}
		if p.Y < m.MinY {
			m.MinY = p.Y
		}
		if p.Y > m.MaxY {
			m.MaxY = p.Y
		}
	}
	return m
}

// PartitionRef records a (partition, class) assignment produced by the
// two-grid partitioner (package partition).
type PartitionRef struct {
	PartitionID uint64
	Class       Class
}

// Class is the Two-Layer class tag {A,B,C,D} of a (geometry, fine-cell)
// assignment (§3).
type Class uint8

const (
	ClassA Class = iota // reference: cell contains the MBR's lower-left corner
	ClassB              // extends below but not left
	ClassC              // extends left but not below
	ClassD              // interior to the MBR: extends both left and below
)

func (c Class) String() string {
	return [...]string{"A", "B", "C", "D"}[c]
}

// Shape is a single geometry: identity, spatial type, vertex sequence,
// tight MBR, and the partition assignments produced once it has been
// partitioned.
type Shape struct {
	RecID      uint64
	Kind       Kind
	Vertices   []geom.Point // closed CCW ring for Rectangle/Polygon; first vertex only for Point; as given for LineString
	MBR        MBR
	Partitions []PartitionRef

	// poly is non-nil for Rectangle and Polygon kinds, a ctessum/geom
	// Polygon built from Vertices, used for Area/Centroid/Intersection.
	poly geom.Polygon
}

// New constructs a Shape from a vertex sequence, correcting the ring
// (closing it, enforcing CCW orientation) for areal kinds and computing
// the tight MBR, per the §3 invariant that MBR always equals the tight
// bounding box of the corrected vertex sequence.
func New(recID uint64, kind Kind, vertices []geom.Point) (*Shape, error) {
	if err := validate(kind, vertices); err != nil {
		return nil, status.Wrap(status.InvalidGeometry, err)
	}
	s := &Shape{RecID: recID, Kind: kind}
	switch kind {
	case Point:
		s.Vertices = vertices[:1]
	case LineString:
		s.Vertices = vertices
	case Rectangle, Polygon:
		ring := closeRing(vertices)
		ring = orientCCW(ring)
		s.Vertices = ring
		s.poly = geom.Polygon{ring}
	}
	s.MBR = mbrOf(s.Vertices)
	return s, nil
}

func validate(kind Kind, vertices []geom.Point) error {
	switch kind {
	case Point:
		if len(vertices) < 1 {
			return fmt.Errorf("point geometry needs 1 vertex, got %d", len(vertices))
		}
	case LineString:
		if len(vertices) < 2 {
			return fmt.Errorf("linestring geometry needs >= 2 vertices, got %d", len(vertices))
		}
	case Rectangle, Polygon:
		n := len(vertices)
		if n > 0 && vertices[0] == vertices[n-1] {
			n--
		}
		if n < 3 {
			return fmt.Errorf("areal geometry needs >= 3 distinct vertices, got %d", n)
		}
	default:
		return fmt.Errorf("unknown spatial type %v", kind)
	}
	return nil
}

// closeRing appends the first vertex if the ring isn't already closed.
func closeRing(vs []geom.Point) []geom.Point {
	if len(vs) == 0 || vs[0] == vs[len(vs)-1] {
		return append([]geom.Point(nil), vs...)
	}
	out := make([]geom.Point, len(vs)+1)
	copy(out, vs)
	out[len(vs)] = vs[0]
	return out
}

// signedArea2 returns twice the signed area of the ring (shoelace
// formula); positive for counter-clockwise rings.
func signedArea2(ring []geom.Point) float64 {
	var a float64
	for i := 0; i < len(ring)-1; i++ {
		a += ring[i].X*ring[i+1].Y - ring[i+1].X*ring[i].Y
	}
	return a
}

// orientCCW reverses the ring if it is wound clockwise.
func orientCCW(ring []geom.Point) []geom.Point {
	if signedArea2(ring) >= 0 {
		return ring
	}
	rev := make([]geom.Point, len(ring))
	for i, p := range ring {
		rev[len(ring)-1-i] = p
	}
	return rev
}

// Polygonal returns the underlying geom.Polygon for areal kinds, or nil
// for Point/LineString.
func (s *Shape) Polygonal() geom.Polygonal {
	if s.Kind == Rectangle || s.Kind == Polygon {
		return s.poly
	}
	return nil
}

// Area returns the shape's area (0 for Point/LineString).
func (s *Shape) Area() float64 {
	if p := s.Polygonal(); p != nil {
		return p.Area()
	}
	return 0
}

// Centroid returns the shape's centroid.
func (s *Shape) Centroid() geom.Point {
	if p := s.Polygonal(); p != nil {
		return p.Centroid()
	}
	// Point/LineString: average of vertices.
	var x, y float64
	for _, v := range s.Vertices {
		x += v.X
		y += v.Y
	}
	n := float64(len(s.Vertices))
	return geom.Point{X: x / n, Y: y / n}
}

// AddPartition records a (partition, class) assignment on the shape.
func (s *Shape) AddPartition(partitionID uint64, class Class) {
	s.Partitions = append(s.Partitions, PartitionRef{PartitionID: partitionID, Class: class})
}

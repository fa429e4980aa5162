package shape

import (
	"testing"

	"github.com/ctessum/geom"
)

func rect(id uint64, x0, y0, x1, y1 float64) *Shape {
	s, err := New(id, Rectangle, []geom.Point{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	})
	if err != nil {
		panic(err)
	}
	return s
}

func pt(id uint64, x, y float64) *Shape {
	s, err := New(id, Point, []geom.Point{{X: x, Y: y}})
	if err != nil {
		panic(err)
	}
	return s
}

func TestMBRInvariantAfterCorrection(t *testing.T) {
	// Clockwise ring, open (not closed): should still get the tight MBR.
	s, err := New(1, Polygon, []geom.Point{{X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}})
	if err != nil {
		t.Fatal(err)
	}
	want := MBR{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if s.MBR != want {
		t.Errorf("MBR = %+v, want %+v", s.MBR, want)
	}
	if signedArea2(s.Vertices) < 0 {
		t.Errorf("ring was not corrected to CCW orientation")
	}
}

func TestInvalidGeometryRejected(t *testing.T) {
	if _, err := New(1, LineString, []geom.Point{{X: 0, Y: 0}}); err == nil {
		t.Error("expected error for single-vertex linestring")
	}
	if _, err := New(1, Polygon, []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}); err == nil {
		t.Error("expected error for 2-vertex polygon")
	}
}

func TestIntersectsOverlappingRectangles(t *testing.T) {
	r := rect(1, 0, 0, 10, 10)
	s := rect(2, 5, 5, 15, 15)
	if !Intersects(r, s) {
		t.Error("overlapping rectangles should intersect")
	}
}

func TestIntersectsDisjointRectangles(t *testing.T) {
	r := rect(1, 0, 0, 10, 10)
	s := rect(2, 20, 20, 30, 30)
	if Intersects(r, s) {
		t.Error("disjoint rectangles should not intersect")
	}
}

func TestWithinContainedRectangle(t *testing.T) {
	r := rect(1, 2, 2, 8, 8)
	s := rect(2, 0, 0, 10, 10)
	if !Within(r, s) {
		t.Error("r should be within s")
	}
	if Within(s, r) {
		t.Error("s should not be within r")
	}
}

func TestPointInPolygon(t *testing.T) {
	s := rect(1, 0, 0, 10, 10)
	p := pt(2, 5, 5)
	if !Intersects(p, s) {
		t.Error("point at center should intersect enclosing rectangle")
	}
	outside := pt(3, 50, 50)
	if Intersects(outside, s) {
		t.Error("point outside rectangle should not intersect")
	}
}

func TestDistanceBetweenDisjointPoints(t *testing.T) {
	a := pt(1, 0, 0)
	b := pt(2, 3, 4)
	if d := Distance(a, b); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestDistanceToPointInsideIsZero(t *testing.T) {
	s := rect(1, 0, 0, 10, 10)
	if d := DistanceToPoint(s, 5, 5); d != 0 {
		t.Errorf("DistanceToPoint inside = %v, want 0", d)
	}
}

func TestDistanceToMBR(t *testing.T) {
	m := MBR{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if d := DistanceToMBR(m, 5, 5); d != 0 {
		t.Errorf("point inside MBR should have distance 0, got %v", d)
	}
	if d := DistanceToMBR(m, 13, 0); d != 3 {
		t.Errorf("DistanceToMBR = %v, want 3", d)
	}
}

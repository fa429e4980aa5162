package refine

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/shape"
)

func sq(t *testing.T, id uint64, x0, y0, x1, y1 float64) *shape.Shape {
	t.Helper()
	s, err := shape.New(id, shape.Rectangle, []geom.Point{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestClassifyDisjoint(t *testing.T) {
	r := sq(t, 1, 0, 0, 10, 10)
	s := sq(t, 2, 100, 100, 110, 110)
	m, err := Relate(r, s)
	if err != nil {
		t.Fatal(err)
	}
	if got := Classify(m); got != RelDisjoint {
		t.Errorf("Classify = %v, want disjoint", got)
	}
}

func TestClassifyInsideAndContains(t *testing.T) {
	inner := sq(t, 1, 2, 2, 8, 8)
	outer := sq(t, 2, 0, 0, 10, 10)

	m, err := Relate(inner, outer)
	if err != nil {
		t.Fatal(err)
	}
	if got := Classify(m); got != RelInside {
		t.Errorf("Classify(inner, outer) = %v, want inside", got)
	}

	m2, err := Relate(outer, inner)
	if err != nil {
		t.Fatal(err)
	}
	if got := Classify(m2); got != RelContains {
		t.Errorf("Classify(outer, inner) = %v, want contains", got)
	}
}

func TestClassifyEquals(t *testing.T) {
	a := sq(t, 1, 0, 0, 10, 10)
	b := sq(t, 2, 0, 0, 10, 10)
	m, err := Relate(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := Classify(m); got != RelEquals {
		t.Errorf("Classify = %v, want equals", got)
	}
}

func TestClassifyMeets(t *testing.T) {
	a := sq(t, 1, 0, 0, 10, 10)
	b := sq(t, 2, 10, 0, 20, 10)
	m, err := Relate(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := Classify(m); got != RelMeets {
		t.Errorf("Classify = %v, want meets", got)
	}
}

func TestClassifyIntersects(t *testing.T) {
	a := sq(t, 1, 0, 0, 10, 10)
	b := sq(t, 2, 2, 2, 12, 12)
	m, err := Relate(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := Classify(m); got != RelIntersects {
		t.Errorf("Classify = %v, want intersects", got)
	}
}

func TestRefineNarrowedOnlyEvaluatesCandidates(t *testing.T) {
	a := sq(t, 1, 0, 0, 10, 10)
	b := sq(t, 2, 2, 2, 12, 12)
	if _, err := RefineNarrowed(a, b, SetInside|SetEquals); err == nil {
		t.Error("expected an error when the real relation is excluded from the candidate set")
	}
	rel, err := RefineNarrowed(a, b, SetIntersects)
	if err != nil {
		t.Fatal(err)
	}
	if rel != RelIntersects {
		t.Errorf("RefineNarrowed = %v, want intersects", rel)
	}
}

func TestRelateNilShape(t *testing.T) {
	a := sq(t, 1, 0, 0, 10, 10)
	if _, err := Relate(a, nil); err == nil {
		t.Error("expected an error for a nil shape")
	}
}

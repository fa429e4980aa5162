package pipeline

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/april"
	"github.com/geodex/spatialquery/partition"
	"github.com/geodex/spatialquery/refine"
	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/store"
)

func rect(t *testing.T, id uint64, x0, y0, x1, y1 float64) *shape.Shape {
	t.Helper()
	s, err := shape.New(id, shape.Rectangle, []geom.Point{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func point(t *testing.T, id uint64, x, y float64) *shape.Shape {
	t.Helper()
	s, err := shape.New(id, shape.Point, []geom.Point{{X: x, Y: y}})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// Scenario 1 (spec §8): R=[0,10]x[0,10], S=[5,15]x[5,15] -- MBR
// intersects without APRIL data, exact refiner reports intersects.
func TestFindRelationIntersectScenario(t *testing.T) {
	r := rect(t, 1, 0, 0, 10, 10)
	s := rect(t, 2, 5, 5, 15, 15)
	rel, err := FindRelation(r, s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rel != refine.RelIntersects {
		t.Errorf("FindRelation = %v, want Intersects", rel)
	}
}

// Scenario 2 (spec §8): R=[0,10]x[0,10], S=[2,8]x[2,8] -- S fully
// inside R.
func TestFindRelationContainsScenario(t *testing.T) {
	r := rect(t, 1, 0, 0, 10, 10)
	s := rect(t, 2, 2, 2, 8, 8)
	rel, err := FindRelation(r, s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rel != refine.RelContains {
		t.Errorf("FindRelation = %v, want Contains", rel)
	}
}

// Scenario 3 (spec §8): identical rectangles are equal.
func TestFindRelationEqualsScenario(t *testing.T) {
	r := rect(t, 1, 0, 0, 10, 10)
	s := rect(t, 2, 0, 0, 10, 10)
	rel, err := FindRelation(r, s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rel != refine.RelEquals {
		t.Errorf("FindRelation = %v, want Equals", rel)
	}
}

// Scenario 4 (spec §8): R=[0,5]x[0,5], S=[5,10]x[0,5] share only an
// edge.
func TestFindRelationMeetsScenario(t *testing.T) {
	r := rect(t, 1, 0, 0, 5, 5)
	s := rect(t, 2, 5, 0, 10, 5)
	rel, err := FindRelation(r, s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rel != refine.RelMeets {
		t.Errorf("FindRelation = %v, want Meets", rel)
	}
}

func TestEvaluatePredicateDisjointMBRShortCircuits(t *testing.T) {
	r := rect(t, 1, 0, 0, 5, 5)
	s := rect(t, 2, 100, 100, 105, 105)
	ok, err := EvaluatePredicate(r, s, nil, nil, april.QueryIntersects)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected disjoint MBRs to fail Intersects")
	}
	ok, err = EvaluatePredicate(r, s, nil, nil, april.QueryDisjoint)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected disjoint MBRs to satisfy Disjoint")
	}
}

func buildIndex(t *testing.T, shapes []*shape.Shape, grid partition.Grid) (*store.TwoLayerIndex, *partition.Partitioner) {
	t.Helper()
	part, err := partition.New(partition.Dataspace{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}, grid)
	if err != nil {
		t.Fatal(err)
	}
	idx := store.NewTwoLayerIndex()
	for _, s := range shapes {
		part.Assign(s)
		idx.Insert(s)
	}
	idx.Finalize()
	return idx, part
}

// Scenario 5 (spec §8): range query [0,1]x[0,1] over a dataset with
// the single point (0.5,0.5) returns count=1.
func TestRangeCountSinglePoint(t *testing.T) {
	p := point(t, 1, 0.5, 0.5)
	idx, part := buildIndex(t, []*shape.Shape{p}, partition.Grid{D: 4, P: 1})

	res := result.NewCount()
	if err := Range(idx, part, shape.MBR{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, &res); err != nil {
		t.Fatal(err)
	}
	if res.CountValue() != 1 {
		t.Errorf("CountValue() = %d, want 1", res.CountValue())
	}
}

func TestRangeIDsSinglePoint(t *testing.T) {
	p := point(t, 1, 0.5, 0.5)
	idx, part := buildIndex(t, []*shape.Shape{p}, partition.Grid{D: 4, P: 1})

	res := result.NewIDs()
	if err := Range(idx, part, shape.MBR{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, &res); err != nil {
		t.Fatal(err)
	}
	ids := res.IDValues()
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("IDValues() = %v, want [1]", ids)
	}
}

// Scenario 6 (spec §8): kNN k=2 over {(0,0),(1,0),(2,0),(10,0)} at
// query (0.4,0) returns (0,0) then (1,0) in heap order.
func TestKNNOrdersByDistance(t *testing.T) {
	pts := []*shape.Shape{
		point(t, 1, 0, 0),
		point(t, 2, 1, 0),
		point(t, 3, 2, 0),
		point(t, 4, 10, 0),
	}
	idx, part := buildIndex(t, pts, partition.Grid{D: 4, P: 1})

	res := KNN(idx, part, geom.Point{X: 0.4, Y: 0}, 2)
	got := res.Neighbors()
	if len(got) != 2 {
		t.Fatalf("Neighbors() returned %d entries, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("Neighbors() = %v, want ids [1 2] in order", got)
	}
}

func TestDistanceJoinLocalOnly(t *testing.T) {
	r := []*shape.Shape{point(t, 1, 0, 0)}
	s := []*shape.Shape{point(t, 2, 1, 0), point(t, 3, 5, 0)}

	part, err := partition.New(partition.Dataspace{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}, partition.Grid{D: 4, P: 1})
	if err != nil {
		t.Fatal(err)
	}
	rIdx, sIdx := store.NewTwoLayerIndex(), store.NewTwoLayerIndex()
	for _, sh := range r {
		part.Assign(sh)
		rIdx.Insert(sh)
	}
	for _, sh := range s {
		part.Assign(sh)
		sIdx.Insert(sh)
	}
	rIdx.Finalize()
	sIdx.Finalize()

	res := result.NewPairs()
	if err := DistanceJoin(rIdx, sIdx, part, 2.0, 1, 1, 0, nil, &res); err != nil {
		t.Fatal(err)
	}
	pairs := res.PairValues()
	if len(pairs) != 1 || pairs[0].R != 1 || pairs[0].S != 2 {
		t.Errorf("PairValues() = %v, want [{1 2}]", pairs)
	}
}

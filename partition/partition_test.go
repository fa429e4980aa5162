package partition

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/shape"
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

func TestAssignSingleCellIsClassA(t *testing.T) {
	p, err := New(Dataspace{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, Grid{D: 10, P: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := rect(t, 1, 12, 12, 18, 18) // entirely within coarse/fine cell (1,1)
	refs := p.Assign(s)
	if len(refs) != 1 {
		t.Fatalf("expected 1 partition ref, got %d", len(refs))
	}
	if refs[0].Class != shape.ClassA {
		t.Errorf("single-cell geometry should be class A, got %v", refs[0].Class)
	}
}

func TestAssignSpanningCellsProducesAllFourClasses(t *testing.T) {
	p, err := New(Dataspace{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, Grid{D: 10, P: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Spans a 3x3 block of fine cells (cells 0,1,2 on each axis).
	s := rect(t, 1, 5, 5, 25, 25)
	refs := p.Assign(s)
	if len(refs) != 9 {
		t.Fatalf("expected 9 partition refs for a 3x3 span, got %d", len(refs))
	}
	seen := map[shape.Class]int{}
	for _, r := range refs {
		seen[r.Class]++
	}
	if seen[shape.ClassA] != 1 {
		t.Errorf("expected exactly 1 class-A ref, got %d", seen[shape.ClassA])
	}
	if seen[shape.ClassB] != 2 {
		t.Errorf("expected 2 class-B refs (same column, higher rows), got %d", seen[shape.ClassB])
	}
	if seen[shape.ClassC] != 2 {
		t.Errorf("expected 2 class-C refs (same row, higher columns), got %d", seen[shape.ClassC])
	}
	if seen[shape.ClassD] != 4 {
		t.Errorf("expected 4 class-D refs (interior block), got %d", seen[shape.ClassD])
	}
}

func TestFloorConventionOnLowerBoundary(t *testing.T) {
	p, err := New(Dataspace{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, Grid{D: 10, P: 1})
	if err != nil {
		t.Fatal(err)
	}
	// A point exactly on the lower boundary of cell (3,3) belongs to
	// that cell, not cell (2,2).
	i := p.fineCell(30, 0, 10)
	if i != 3 {
		t.Errorf("floorCell(30) = %d, want 3 (lower-boundary belongs to the upper cell)", i)
	}
}

func TestOwnerAssignment(t *testing.T) {
	if got := Owner(3, 2, 10, 4); got != 23%4 {
		t.Errorf("Owner(3,2,10,4) = %d, want %d", got, 23%4)
	}
}

func TestAssignRecordsOnShape(t *testing.T) {
	p, err := New(Dataspace{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, Grid{D: 10, P: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := rect(t, 1, 12, 12, 18, 18)
	p.Assign(s)
	if len(s.Partitions) != 1 {
		t.Errorf("expected Assign to record the partition on the shape, got %d entries", len(s.Partitions))
	}
}

func TestNewRejectsEmptyDataspace(t *testing.T) {
	if _, err := New(Dataspace{MinX: 0, MinY: 0, MaxX: 0, MaxY: 100}, Grid{D: 10, P: 1}); err == nil {
		t.Error("expected an error for a zero-width dataspace")
	}
}

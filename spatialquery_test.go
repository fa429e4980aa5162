package spatialquery

import (
	"testing"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
)

// fakeDecoder stands in for the out-of-scope CSV/WKT parsing
// collaborator: it returns a fixed set of point shapes regardless of
// path, enough to exercise the registry lifecycle end to end.
type fakeDecoder struct {
	shapes []*shape.Shape
}

func (d fakeDecoder) Decode(path string) ([]*shape.Shape, error) {
	return d.shapes, nil
}

func pointAt(t *testing.T, id uint64, x, y float64) *shape.Shape {
	t.Helper()
	s, err := shape.New(id, shape.Point, []geom.Point{{X: x, Y: y}})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func baseConfig() Config {
	return Config{NumWorkers: 2, GridD: 4, GridP: 1, HilbertOrder: 8}
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	if _, err := Init(Config{}); err == nil {
		t.Error("expected Init to reject a zero Config")
	}
}

func TestPrepareDatasetAndRangeQuery(t *testing.T) {
	reg, err := Init(baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	dec := fakeDecoder{shapes: []*shape.Shape{
		pointAt(t, 1, 0.5, 0.5),
		pointAt(t, 2, 15, 15),
	}}
	id, err := reg.PrepareDataset(dec, "fake-path", CSV, shape.Point)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Partition([]DatasetID{id}); err != nil {
		t.Fatal(err)
	}
	if err := reg.BuildIndex([]DatasetID{id}, TwoLayer); err != nil {
		t.Fatal(err)
	}

	res, err := reg.Query(Query{
		Kind:    QueryRange,
		Dataset: id,
		Window:  shape.MBR{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1},
		Mode:    result.Count,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.CountValue() != 1 {
		t.Errorf("CountValue() = %d, want 1", res.CountValue())
	}
}

func TestQueryUnknownDataset(t *testing.T) {
	reg, err := Init(baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.Query(Query{Kind: QueryRange, Dataset: 99, Mode: result.Count})
	if err == nil {
		t.Error("expected an error for an unknown dataset id")
	}
}

func TestUnloadDatasetForgetsIt(t *testing.T) {
	reg, err := Init(baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	dec := fakeDecoder{shapes: []*shape.Shape{pointAt(t, 1, 1, 1)}}
	id, err := reg.PrepareDataset(dec, "fake-path", CSV, shape.Point)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.UnloadDataset(id); err != nil {
		t.Fatal(err)
	}
	if err := reg.UnloadDataset(id); err == nil {
		t.Error("expected unloading an already-unloaded dataset to fail")
	}
}

func TestQueryBatchPreservesOrder(t *testing.T) {
	reg, err := Init(baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	dec := fakeDecoder{shapes: []*shape.Shape{
		pointAt(t, 1, 0.5, 0.5),
		pointAt(t, 2, 5.5, 5.5),
	}}
	id, err := reg.PrepareDataset(dec, "fake-path", CSV, shape.Point)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Partition([]DatasetID{id}); err != nil {
		t.Fatal(err)
	}
	if err := reg.BuildIndex([]DatasetID{id}, TwoLayer); err != nil {
		t.Fatal(err)
	}

	queries := []Query{
		{Kind: QueryRange, Dataset: id, Window: shape.MBR{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, Mode: result.Count},
		{Kind: QueryRange, Dataset: id, Window: shape.MBR{MinX: 5, MinY: 5, MaxX: 6, MaxY: 6}, Mode: result.Count},
	}
	results, err := reg.QueryBatch(queries)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].CountValue() != 1 || results[1].CountValue() != 1 {
		t.Errorf("QueryBatch() = %+v, want two counts of 1", results)
	}
}

func TestFindRelationRequiresRelationTableMode(t *testing.T) {
	reg, err := Init(baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	dec := fakeDecoder{shapes: []*shape.Shape{pointAt(t, 1, 1, 1)}}
	id, err := reg.PrepareDataset(dec, "fake-path", CSV, shape.Point)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Partition([]DatasetID{id}); err != nil {
		t.Fatal(err)
	}
	if err := reg.BuildIndex([]DatasetID{id}, TwoLayer); err != nil {
		t.Fatal(err)
	}
	_, err = reg.Query(Query{Kind: QueryFindRelation, Dataset: id, Other: id, Mode: result.Count})
	if err == nil {
		t.Error("expected FindRelation with Count mode to be rejected")
	}
}

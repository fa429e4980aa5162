package spatialquery

import (
	"sync"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/april"
	"github.com/geodex/spatialquery/pipeline"
	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
	"github.com/geodex/spatialquery/store"
)

// QueryKind selects which operation of spec §4.8/§4.7 a Query runs.
type QueryKind uint8

const (
	QueryRange QueryKind = iota
	QueryKNN
	QueryDistanceJoin
	QueryPredicateJoin
	QueryFindRelation
)

// Query is the language-neutral query value the external interface's
// query(query) and query(batch[], queryType) accept. Not every field
// applies to every Kind; see Registry.Query for which combinations
// are valid.
type Query struct {
	Kind QueryKind

	// Dataset is R for every kind; Other is S for the two-dataset
	// join kinds (DistanceJoin/PredicateJoin/FindRelation).
	Dataset, Other DatasetID

	Window shape.MBR // QueryRange

	Point geom.Point // QueryKNN
	K     int        // QueryKNN

	Epsilon   float64         // QueryDistanceJoin
	Predicate april.QueryType // QueryPredicateJoin

	Mode result.Mode
}

func newResult(mode result.Mode, k int) (result.Result, error) {
	switch mode {
	case result.Count:
		return result.NewCount(), nil
	case result.IDs:
		return result.NewIDs(), nil
	case result.Pairs:
		return result.NewPairs(), nil
	case result.RelationTable:
		return result.NewRelationTable(), nil
	case result.Heap:
		return result.NewHeap(k), nil
	default:
		return result.Result{}, status.New(status.InvalidParameter, "spatialquery: unknown result mode %v", mode)
	}
}

// Query dispatches q to the matching pipeline operation and returns
// its reduced Result, the external interface's query(query).
func (r *Registry) Query(q Query) (result.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch q.Kind {
	case QueryRange:
		return r.runRange(q)
	case QueryKNN:
		return r.runKNN(q)
	case QueryDistanceJoin:
		return r.runDistanceJoin(q)
	case QueryPredicateJoin:
		return r.runPredicateJoin(q)
	case QueryFindRelation:
		return r.runFindRelation(q)
	default:
		return result.Result{}, status.New(status.InvalidQueryType, "spatialquery: unknown query kind %d", q.Kind)
	}
}

func (r *Registry) runRange(q Query) (result.Result, error) {
	if q.Mode != result.Count && q.Mode != result.IDs {
		return result.Result{}, status.New(status.FeatureUnsupported, "spatialquery: Range supports Count/IDs modes only")
	}
	ds, err := r.get(q.Dataset)
	if err != nil {
		return result.Result{}, err
	}
	if ds.twoLayer == nil {
		return result.Result{}, status.New(status.InvalidParameter, "spatialquery: dataset %d has no TwoLayer index built", q.Dataset)
	}
	res, err := newResult(q.Mode, 0)
	if err != nil {
		return result.Result{}, err
	}
	if err := pipeline.Range(ds.twoLayer, ds.partitioner, q.Window, &res); err != nil {
		return result.Result{}, err
	}
	return res, nil
}

func (r *Registry) runKNN(q Query) (result.Result, error) {
	ds, err := r.get(q.Dataset)
	if err != nil {
		return result.Result{}, err
	}
	if ds.twoLayer == nil {
		return result.Result{}, status.New(status.InvalidParameter, "spatialquery: dataset %d has no TwoLayer index built", q.Dataset)
	}
	if q.K <= 0 {
		return result.Result{}, status.New(status.InvalidParameter, "spatialquery: KNN requires k > 0, got %d", q.K)
	}
	return pipeline.KNN(ds.twoLayer, ds.partitioner, q.Point, q.K), nil
}

func (r *Registry) twoDatasets(a, b DatasetID) (*dataset, *dataset, error) {
	dsR, err := r.get(a)
	if err != nil {
		return nil, nil, err
	}
	dsS, err := r.get(b)
	if err != nil {
		return nil, nil, err
	}
	if dsR.twoLayer == nil || dsS.twoLayer == nil {
		return nil, nil, status.New(status.InvalidParameter, "spatialquery: both datasets need a TwoLayer index for this query")
	}
	if dsR.partitioner != dsS.partitioner {
		return nil, nil, status.New(status.InvalidParameter, "spatialquery: datasets %d and %d were not partitioned together", a, b)
	}
	return dsR, dsS, nil
}

func (r *Registry) runDistanceJoin(q Query) (result.Result, error) {
	if q.Mode != result.Count && q.Mode != result.Pairs {
		return result.Result{}, status.New(status.FeatureUnsupported, "spatialquery: DistanceJoin supports Count/Pairs modes only")
	}
	dsR, dsS, err := r.twoDatasets(q.Dataset, q.Other)
	if err != nil {
		return result.Result{}, err
	}
	res, err := newResult(q.Mode, 0)
	if err != nil {
		return result.Result{}, err
	}
	err = pipeline.DistanceJoin(dsR.twoLayer, dsS.twoLayer, dsR.partitioner, q.Epsilon,
		r.cfg.NumWorkers, r.cfg.GridD, r.rank, r.transport, &res)
	if err != nil {
		return result.Result{}, err
	}
	return res, nil
}

func recordJoin(res *result.Result, a, b uint64) {
	switch res.Mode {
	case result.Count:
		res.AddCount(1)
	case result.Pairs:
		res.AddPair(a, b)
	}
}

func (r *Registry) runPredicateJoin(q Query) (result.Result, error) {
	if q.Mode != result.Count && q.Mode != result.Pairs {
		return result.Result{}, status.New(status.FeatureUnsupported, "spatialquery: PredicateJoin supports Count/Pairs modes only")
	}
	dsR, dsS, err := r.twoDatasets(q.Dataset, q.Other)
	if err != nil {
		return result.Result{}, err
	}
	res, err := newResult(q.Mode, 0)
	if err != nil {
		return result.Result{}, err
	}
	evalErr := pipeline.ForEachSharedCell(dsR.twoLayer, dsS.twoLayer, func(cr, cs *store.ClassBuckets) error {
		return pipeline.JoinMatrix(cr, cs, func(a, b *shape.Shape) error {
			ok, err := pipeline.EvaluatePredicate(a, b, dsR.aprilData[a.RecID], dsS.aprilData[b.RecID], q.Predicate)
			if err != nil {
				return err
			}
			if ok {
				recordJoin(&res, a.RecID, b.RecID)
			}
			return nil
		})
	})
	if evalErr != nil {
		return result.Result{}, evalErr
	}
	return res, nil
}

func (r *Registry) runFindRelation(q Query) (result.Result, error) {
	// Only RelationTable aggregates sensibly: the Pairs mode's
	// (r,s) shape has no room for a third, per-pair relation value,
	// so FindRelation is restricted to the tally reduction.
	if q.Mode != result.RelationTable {
		return result.Result{}, status.New(status.FeatureUnsupported, "spatialquery: FindRelation supports RelationTable mode only")
	}
	dsR, dsS, err := r.twoDatasets(q.Dataset, q.Other)
	if err != nil {
		return result.Result{}, err
	}
	res, err := newResult(q.Mode, 0)
	if err != nil {
		return result.Result{}, err
	}
	evalErr := pipeline.ForEachSharedCell(dsR.twoLayer, dsS.twoLayer, func(cr, cs *store.ClassBuckets) error {
		return pipeline.JoinMatrix(cr, cs, func(a, b *shape.Shape) error {
			rel, err := pipeline.FindRelation(a, b, dsR.aprilData[a.RecID], dsS.aprilData[b.RecID])
			if err != nil {
				return err
			}
			res.AddRelation(rel)
			return nil
		})
	})
	if evalErr != nil {
		return result.Result{}, evalErr
	}
	return res, nil
}

// QueryBatch runs every query in qs concurrently, bounded by the
// registry's configured worker count, and returns each Result in the
// same order as qs -- the external interface's query(batch[],
// queryType). Grounded on the same goroutine/WaitGroup fan-out shape
// as package worker's RunShards, but preserving one Result per input
// query instead of merging into one, since a batch's queries need not
// share a reduction mode.
func (r *Registry) QueryBatch(qs []Query) ([]result.Result, error) {
	out := make([]result.Result, len(qs))
	errs := make([]error, len(qs))

	concurrency := int(r.cfg.NumWorkers)
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, q := range qs {
		i, q := i, q
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := r.Query(q)
			out[i], errs[i] = res, err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

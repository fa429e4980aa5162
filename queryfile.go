package spatialquery

import (
	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
)

// RangeQueryDecoder parses a query file into window MBRs. Like
// storage.Decoder, file parsing is out of scope (spec §1); callers
// supply their own implementation.
type RangeQueryDecoder interface {
	DecodeRangeQueries(path string) ([]shape.MBR, error)
}

// KNNQueryDecoder parses a query file into query points.
type KNNQueryDecoder interface {
	DecodeKNNQueries(path string) ([]geom.Point, error)
}

// LoadRangeQueriesFromFile decodes path via dec and returns one Range
// Query per window against dataset, all requesting resultMode -- the
// external interface's loadRangeQueriesFromFile(path, format,
// datasetId, resultMode) → batch.
func LoadRangeQueriesFromFile(dec RangeQueryDecoder, path string, dataset DatasetID, resultMode result.Mode) ([]Query, error) {
	windows, err := dec.DecodeRangeQueries(path)
	if err != nil {
		return nil, err
	}
	out := make([]Query, len(windows))
	for i, w := range windows {
		out[i] = Query{Kind: QueryRange, Dataset: dataset, Window: w, Mode: resultMode}
	}
	return out, nil
}

// LoadKNNQueriesFromFile decodes path via dec and returns one KNN
// Query per point against dataset, each asking for k neighbors -- the
// external interface's loadKNNQueriesFromFile(path, format, datasetId,
// k) → batch.
func LoadKNNQueriesFromFile(dec KNNQueryDecoder, path string, dataset DatasetID, k int) ([]Query, error) {
	points, err := dec.DecodeKNNQueries(path)
	if err != nil {
		return nil, err
	}
	out := make([]Query, len(points))
	for i, p := range points {
		out[i] = Query{Kind: QueryKNN, Dataset: dataset, Point: p, K: k, Mode: result.Heap}
	}
	return out, nil
}

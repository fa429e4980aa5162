package pipeline

import (
	"github.com/geodex/spatialquery/partition"
	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/store"
)

func record(res *result.Result, id uint64) {
	switch res.Mode {
	case result.Count:
		res.AddCount(1)
	case result.IDs:
		res.AddID(id)
	}
}

func recordPair(res *result.Result, a, b uint64) {
	switch res.Mode {
	case result.Count:
		res.AddCount(1)
	case result.Pairs:
		res.AddPair(a, b)
	}
}

// Range answers a window query over idx (§4.8): corner cells of the
// window's fine-cell span get the full class cross-check against the
// window MBR, border cells likewise, and strictly interior cells
// emit every class-A object directly without an MBR test -- the
// class invariant places an A object's MBR lower-left corner inside
// the cell it was assigned from, and an interior cell lies fully
// inside the window by construction of the span, so that object's
// MBR intersects the window. A single object can still
// surface through more than one cell of the span (its own A cell
// plus a B/C/D cell elsewhere in the span), so emission is
// deduplicated by record id across the whole query, not just within
// one cell. This is intersection-only, per the §9 Open Question
// resolution: a non-intersection Range predicate is not implemented.
func Range(idx *store.TwoLayerIndex, part *partition.Partitioner, window shape.MBR, res *result.Result) error {
	iMin, jMin, iMax, jMax := part.FineCellRange(window)
	seen := make(map[uint64]bool)
	emit := func(id uint64) {
		if seen[id] {
			return
		}
		seen[id] = true
		record(res, id)
	}
	for j := jMin; j <= jMax; j++ {
		for i := iMin; i <= iMax; i++ {
			cb := idx.Cell(part.FineCellID(i, j))
			if cb == nil {
				continue
			}
			interior := i > iMin && i < iMax && j > jMin && j < jMax
			if interior {
				for _, s := range cb.A {
					emit(s.RecID)
				}
				continue
			}
			for _, class := range allClasses {
				for _, s := range bucket(cb, class) {
					if s.MBR.Intersects(window) {
						emit(s.RecID)
					}
				}
			}
		}
	}
	return nil
}

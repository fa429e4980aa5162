package pipeline

import (
	"sort"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/partition"
	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/store"
)

// cellBounds reconstructs the dataspace MBR of a fine cell from its
// packed id (§4.5 step 5: id = i + j*DP), used only for the
// nearest-box-first kNN visitation order -- shapes don't need to
// carry their own cell bounds since the id already encodes them.
func cellBounds(part *partition.Partitioner, id uint64) shape.MBR {
	dp := uint64(part.Grid.FineDim())
	i := uint32(id % dp)
	j := uint32(id / dp)
	ex := part.Dataspace.ExtentX() / float64(part.Grid.D) / float64(part.Grid.P)
	ey := part.Dataspace.ExtentY() / float64(part.Grid.D) / float64(part.Grid.P)
	return shape.MBR{
		MinX: part.Dataspace.MinX + float64(i)*ex,
		MinY: part.Dataspace.MinY + float64(j)*ey,
		MaxX: part.Dataspace.MinX + float64(i+1)*ex,
		MaxY: part.Dataspace.MinY + float64(j+1)*ey,
	}
}

// KNN answers a k-nearest-neighbors query (§4.8): partitions are
// visited nearest-box-first, pruning the moment a partition's MBR
// distance exceeds the current k-th best (safe because the visit
// order is itself sorted by that same distance, so every remaining
// partition is at least as far).
func KNN(idx *store.TwoLayerIndex, part *partition.Partitioner, q geom.Point, k int) result.Result {
	res := result.NewHeap(k)
	ids := idx.Cells()
	sort.Slice(ids, func(a, b int) bool {
		da := shape.DistanceToMBR(cellBounds(part, ids[a]), q.X, q.Y)
		db := shape.DistanceToMBR(cellBounds(part, ids[b]), q.X, q.Y)
		return da < db
	})
	seen := make(map[uint64]bool)
	for _, id := range ids {
		if shape.DistanceToMBR(cellBounds(part, id), q.X, q.Y) > res.WorstDistance() {
			break
		}
		cb := idx.Cell(id)
		for _, class := range allClasses {
			for _, s := range bucket(cb, class) {
				// A shape occupies more than one fine cell (its own A
				// cell plus any B/C/D cells its MBR spans); skip
				// repeat encounters so it competes for a heap slot
				// once, not once per occupied cell.
				if seen[s.RecID] {
					continue
				}
				seen[s.RecID] = true
				res.Offer(s.RecID, shape.DistanceToPoint(s, q.X, q.Y))
			}
		}
	}
	return res
}

package pipeline

import (
	"github.com/geodex/spatialquery/partition"
	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
	"github.com/geodex/spatialquery/store"
	"github.com/geodex/spatialquery/worker"
)

func expand(m shape.MBR, eps float64) shape.MBR {
	return shape.MBR{MinX: m.MinX - eps, MinY: m.MinY - eps, MaxX: m.MaxX + eps, MaxY: m.MaxY + eps}
}

// evalLocalEpsilon checks r against every S object in cells the
// epsilon-expanded MBR reaches, recording every pair within eps.
func evalLocalEpsilon(r *shape.Shape, expanded shape.MBR, sIdx *store.TwoLayerIndex, part *partition.Partitioner, eps float64, res *result.Result) {
	iMin, jMin, iMax, jMax := part.FineCellRange(expanded)
	seen := make(map[uint64]bool)
	for j := jMin; j <= jMax; j++ {
		for i := iMin; i <= iMax; i++ {
			cb := sIdx.Cell(part.FineCellID(i, j))
			if cb == nil {
				continue
			}
			for _, class := range allClasses {
				for _, s := range bucket(cb, class) {
					if seen[s.RecID] {
						continue
					}
					seen[s.RecID] = true
					if shape.Distance(r, s) <= eps {
						recordPair(res, r.RecID, s.RecID)
					}
				}
			}
		}
	}
}

// DistanceJoin evaluates an epsilon-distance join between rIdx and
// sIdx (§4.8): for each object of R, every fine cell within eps of
// its MBR is inspected; cells this node owns are evaluated directly,
// cells owned by a remote node are batched and exchanged through
// transport, with the remote replies folded in before returning. A
// nil transport restricts the join to whatever this node owns
// locally (single-node operation; every cell is "local").
func DistanceJoin(rIdx, sIdx *store.TwoLayerIndex, part *partition.Partitioner, eps float64, numWorkers, coarseD, selfRank uint32, transport worker.Transport, res *result.Result) error {
	outbound := make(map[uint32][]uint64)
	byID := make(map[uint64]*shape.Shape)

	for _, id := range rIdx.Cells() {
		cb := rIdx.Cell(id)
		for _, class := range allClasses {
			for _, r := range bucket(cb, class) {
				if _, done := byID[r.RecID]; done {
					continue
				}
				expanded := expand(r.MBR, eps)
				if transport == nil {
					evalLocalEpsilon(r, expanded, sIdx, part, eps, res)
					byID[r.RecID] = r
					continue
				}
				ci, cj := part.CoarseCell(expanded)
				owner := partition.Owner(ci, cj, coarseD, numWorkers)
				if owner == selfRank {
					evalLocalEpsilon(r, expanded, sIdx, part, eps, res)
				} else {
					outbound[owner] = append(outbound[owner], r.RecID)
				}
				byID[r.RecID] = r
			}
		}
	}

	if transport == nil || len(outbound) == 0 {
		return nil
	}
	for owner, ids := range outbound {
		if err := transport.SendBatch(owner, worker.Batch{SourceRank: selfRank, RecIDs: ids}); err != nil {
			return status.Wrap(status.CommSend, err)
		}
	}
	reply, err := transport.RecvBatch()
	if err != nil {
		return status.Wrap(status.CommRecv, err)
	}
	for _, pr := range reply.Pairs {
		recordPair(res, pr.R, pr.S)
	}
	return nil
}

// Package partition implements the two-grid partitioner (C5): a
// coarse distribution grid that assigns every geometry to an owning
// worker, and a fine partitioning grid within the dataspace that
// tags each (geometry, fine-cell) pair with a Two-Layer class so the
// pair pipeline can sweep for matches without double-counting.
//
// Grounded on spec §4.5 and
// original_source/TwoLayerFilter/src/partitioning.cpp's
// Partition_One_Array: the same floor-mapped cell enumeration and
// A/B/C/D class assignment, generalized from a single flat grid to
// the coarse/fine split this engine's distribution model needs.
package partition

import (
	"math"

	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
)

// Dataspace is the shared extent every dataset in a query is
// partitioned against (§5 invariant: R and S must share one
// dataspace and a congruent grid).
type Dataspace struct {
	MinX, MinY, MaxX, MaxY float64
}

func (d Dataspace) ExtentX() float64 { return d.MaxX - d.MinX }
func (d Dataspace) ExtentY() float64 { return d.MaxY - d.MinY }

// Grid is the two-grid shape: D coarse cells per axis for worker
// distribution, each subdivided into P fine cells per axis for the
// Two-Layer class sweep. The fine grid therefore has D*P cells per
// axis in total.
type Grid struct {
	D, P uint32
}

// FineDim is the fine grid's per-axis cell count, D*P.
func (g Grid) FineDim() uint32 { return g.D * g.P }

// Partitioner applies a Grid to a Dataspace.
type Partitioner struct {
	Dataspace Dataspace
	Grid      Grid
}

// New validates and constructs a Partitioner.
func New(ds Dataspace, grid Grid) (*Partitioner, error) {
	if grid.D == 0 || grid.P == 0 {
		return nil, status.New(status.InvalidParameter, "grid dimensions must be positive, got D=%d P=%d", grid.D, grid.P)
	}
	if ds.ExtentX() <= 0 || ds.ExtentY() <= 0 {
		return nil, status.New(status.InvalidParameter, "dataspace must have positive extent, got %+v", ds)
	}
	return &Partitioner{Dataspace: ds, Grid: grid}, nil
}

// floorCell maps a coordinate to its cell index along one axis,
// clamped to [0, n-1]. A value exactly on a cell's lower boundary
// belongs to that cell (the floor convention, §9 Open Question).
func floorCell(v, origin, extent float64, n uint32) uint32 {
	if extent <= 0 {
		return 0
	}
	f := math.Floor((v - origin) / extent)
	if f < 0 {
		return 0
	}
	if f >= float64(n) {
		return n - 1
	}
	return uint32(f)
}

// CoarseCell returns the (ci,cj) coarse cell containing m's lower-left
// corner (spec §4.5 step 1).
func (p *Partitioner) CoarseCell(m shape.MBR) (ci, cj uint32) {
	ex := p.Dataspace.ExtentX() / float64(p.Grid.D)
	ey := p.Dataspace.ExtentY() / float64(p.Grid.D)
	ci = floorCell(m.MinX, p.Dataspace.MinX, ex, p.Grid.D)
	cj = floorCell(m.MinY, p.Dataspace.MinY, ey, p.Grid.D)
	return
}

// Owner returns the index, in [0,numWorkers), of the worker that owns
// a coarse cell (spec §4.5 step 2: distribution by id mod W).
func Owner(ci, cj, coarseD, numWorkers uint32) uint32 {
	return (ci + cj*coarseD) % numWorkers
}

// fineCell maps a coordinate to its fine-grid index (0..D*P-1) using
// the same floor mapping as CoarseCell, but over fine-cell extent
// Ex/P, Ey/P (spec §4.5 step 3).
func (p *Partitioner) fineCell(v, origin, coarseExtent float64) uint32 {
	fineExtent := coarseExtent / float64(p.Grid.P)
	return floorCell(v, origin, fineExtent, p.Grid.FineDim())
}

// FineCellID packs a (i,j) fine-cell coordinate into the flat id used
// as shape.PartitionRef.PartitionID (spec §4.5 step 5: i + j*DP).
func (p *Partitioner) FineCellID(i, j uint32) uint64 {
	return uint64(i) + uint64(j)*uint64(p.Grid.FineDim())
}

// FineCellRange returns the fine-cell index range [iMin,iMax] x
// [jMin,jMax] that m intersects, the same floor-mapping Assign uses
// on a shape's own MBR, exposed so range/kNN/distance-join queries
// (§4.8) can enumerate partitions for an arbitrary window without
// needing an object already assigned to them.
func (p *Partitioner) FineCellRange(m shape.MBR) (iMin, jMin, iMax, jMax uint32) {
	ex := p.Dataspace.ExtentX() / float64(p.Grid.D)
	ey := p.Dataspace.ExtentY() / float64(p.Grid.D)
	iMin = p.fineCell(m.MinX, p.Dataspace.MinX, ex)
	jMin = p.fineCell(m.MinY, p.Dataspace.MinY, ey)
	iMax = p.fineCell(m.MaxX, p.Dataspace.MinX, ex)
	jMax = p.fineCell(m.MaxY, p.Dataspace.MinY, ey)
	return
}

// Assign enumerates every fine cell s's MBR intersects, tags each with
// its Two-Layer class, records the assignment on s, and returns the
// new PartitionRefs (spec §4.5 steps 3-5).
func (p *Partitioner) Assign(s *shape.Shape) []shape.PartitionRef {
	ex := p.Dataspace.ExtentX() / float64(p.Grid.D)
	ey := p.Dataspace.ExtentY() / float64(p.Grid.D)

	iMin := p.fineCell(s.MBR.MinX, p.Dataspace.MinX, ex)
	jMin := p.fineCell(s.MBR.MinY, p.Dataspace.MinY, ey)
	iMax := p.fineCell(s.MBR.MaxX, p.Dataspace.MinX, ex)
	jMax := p.fineCell(s.MBR.MaxY, p.Dataspace.MinY, ey)

	refs := make([]shape.PartitionRef, 0, (iMax-iMin+1)*(jMax-jMin+1))
	for i := iMin; i <= iMax; i++ {
		for j := jMin; j <= jMax; j++ {
			var class shape.Class
			switch {
			case i == iMin && j == jMin:
				class = shape.ClassA
			case j == jMin && i > iMin:
				class = shape.ClassC
			case i == iMin && j > jMin:
				class = shape.ClassB
			default:
				class = shape.ClassD
			}
			ref := shape.PartitionRef{PartitionID: p.FineCellID(i, j), Class: class}
			refs = append(refs, ref)
			s.AddPartition(ref.PartitionID, ref.Class)
		}
	}
	return refs
}

// Package store holds the two index types the pipeline sweeps over:
// TwoLayerIndex, the duplicate-free class-bucket structure the engine
// prefers, and UniformGridIndex, an R-tree-backed fallback named by
// the API surface (§6) for callers that don't need the Two-Layer
// sweep's bookkeeping.
package store

import (
	"sort"

	"github.com/geodex/spatialquery/shape"
)

// ClassBuckets holds one fine cell's geometries, grouped by Two-Layer
// class (§3). A and C are kept sorted ascending by MBR yMin so the
// pipeline's plane sweep (§4.6) can scan them directly.
type ClassBuckets struct {
	A, B, C, D []*shape.Shape
}

func (cb *ClassBuckets) add(class shape.Class, s *shape.Shape) {
	switch class {
	case shape.ClassA:
		cb.A = append(cb.A, s)
	case shape.ClassB:
		cb.B = append(cb.B, s)
	case shape.ClassC:
		cb.C = append(cb.C, s)
	case shape.ClassD:
		cb.D = append(cb.D, s)
	}
}

func sortByYMin(ss []*shape.Shape) {
	sort.Slice(ss, func(i, j int) bool { return ss[i].MBR.MinY < ss[j].MBR.MinY })
}

// TwoLayerIndex maps a fine-cell id to that cell's ClassBuckets.
type TwoLayerIndex struct {
	cells map[uint64]*ClassBuckets
}

// NewTwoLayerIndex returns an empty index.
func NewTwoLayerIndex() *TwoLayerIndex {
	return &TwoLayerIndex{cells: make(map[uint64]*ClassBuckets)}
}

// Insert records s under every (PartitionID, Class) pair it was
// assigned by package partition.
func (idx *TwoLayerIndex) Insert(s *shape.Shape) {
	for _, ref := range s.Partitions {
		cb, ok := idx.cells[ref.PartitionID]
		if !ok {
			cb = &ClassBuckets{}
			idx.cells[ref.PartitionID] = cb
		}
		cb.add(ref.Class, s)
	}
}

// Finalize sorts every cell's A and C buckets by MBR yMin, the
// precondition for sweepRollY (§4.6). Call once after every Insert
// for a dataset has completed.
func (idx *TwoLayerIndex) Finalize() {
	for _, cb := range idx.cells {
		sortByYMin(cb.A)
		sortByYMin(cb.C)
	}
}

// Cell returns the ClassBuckets for a fine cell, or nil if empty.
func (idx *TwoLayerIndex) Cell(partitionID uint64) *ClassBuckets {
	return idx.cells[partitionID]
}

// Cells returns every populated fine-cell id, for iterating partitions
// owned by this worker.
func (idx *TwoLayerIndex) Cells() []uint64 {
	ids := make([]uint64, 0, len(idx.cells))
	for id := range idx.cells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

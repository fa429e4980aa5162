// Package result implements the tagged query result (C8): the five
// modes a query can ask for (count, id collection, pair collection,
// per-relation tally, bounded k-nearest heap), each with a Merge that
// combines one worker's thread-local accumulation with another's.
//
// Grounded on spec §9 Design Notes ("Model the QueryResult as a tagged
// sum with a single merge(other) contract; let threads accumulate
// local QueryResults and reduce at the end of the parallel region"):
// there is no single C++ translation unit this mirrors line-for-line,
// since the teacher's own reduction (lib.aim/framework.go's velocity
// grid merge) only ever sums float slices. The five modes below are a
// direct transcription of the reduction list the spec names.
package result

import (
	"container/heap"
	"math"
	"sort"

	"github.com/geodex/spatialquery/refine"
)

// Mode tags which reduction shape a Result holds.
type Mode uint8

const (
	Count Mode = iota
	IDs
	Pairs
	RelationTable
	Heap
)

func (m Mode) String() string {
	switch m {
	case Count:
		return "count"
	case IDs:
		return "ids"
	case Pairs:
		return "pairs"
	case RelationTable:
		return "relation-table"
	case Heap:
		return "heap"
	default:
		return "unknown"
	}
}

// Pair is a matched (r,s) record-id pair.
type Pair struct {
	R, S uint64
}

// Neighbor is one candidate in a kNN bounded heap: a record id and its
// distance from the query point.
type Neighbor struct {
	ID       uint64
	Distance float64
}

// Result is the tagged reduction accumulator threads build locally and
// merge at the end of a parallel partition loop. Exactly one of the
// fields below is meaningful, selected by Mode.
type Result struct {
	Mode Mode

	count    uint64
	ids      []uint64
	pairs    []Pair
	byRel    map[refine.Relation]uint64
	neighbor *neighborHeap
	k        int
}

// NewCount returns an empty COUNT-mode result.
func NewCount() Result { return Result{Mode: Count} }

// NewIDs returns an empty id-collection result.
func NewIDs() Result { return Result{Mode: IDs} }

// NewPairs returns an empty pair-collection result.
func NewPairs() Result { return Result{Mode: Pairs} }

// NewRelationTable returns an empty per-relation tally result.
func NewRelationTable() Result {
	return Result{Mode: RelationTable, byRel: make(map[refine.Relation]uint64)}
}

// NewHeap returns an empty bounded max-heap result sized to keep the k
// nearest neighbors.
func NewHeap(k int) Result {
	h := &neighborHeap{}
	heap.Init(h)
	return Result{Mode: Heap, neighbor: h, k: k}
}

// AddCount increments the COUNT accumulator by n.
func (r *Result) AddCount(n uint64) {
	if r.Mode == Count {
		r.count += n
	}
}

// CountValue returns the accumulated count.
func (r Result) CountValue() uint64 { return r.count }

// AddID appends a record id to the COLLECT accumulator.
func (r *Result) AddID(id uint64) {
	if r.Mode == IDs {
		r.ids = append(r.ids, id)
	}
}

// IDValues returns the collected ids.
func (r Result) IDValues() []uint64 { return r.ids }

// AddPair appends a matched pair to the COLLECT accumulator.
func (r *Result) AddPair(ra, sb uint64) {
	if r.Mode == Pairs {
		r.pairs = append(r.pairs, Pair{R: ra, S: sb})
	}
}

// PairValues returns the collected pairs.
func (r Result) PairValues() []Pair { return r.pairs }

// AddRelation increments the per-relation tally for rel.
func (r *Result) AddRelation(rel refine.Relation) {
	if r.Mode != RelationTable {
		return
	}
	if r.byRel == nil {
		r.byRel = make(map[refine.Relation]uint64)
	}
	r.byRel[rel]++
}

// RelationCounts returns a copy of the per-relation tally.
func (r Result) RelationCounts() map[refine.Relation]uint64 {
	out := make(map[refine.Relation]uint64, len(r.byRel))
	for k, v := range r.byRel {
		out[k] = v
	}
	return out
}

// Offer conditionally admits (id, dist) into the bounded heap: pushed
// if there is room, or if it beats the current worst neighbor.
func (r *Result) Offer(id uint64, dist float64) {
	if r.Mode != Heap || r.neighbor == nil {
		return
	}
	if r.neighbor.Len() < r.k {
		heap.Push(r.neighbor, Neighbor{ID: id, Distance: dist})
		return
	}
	if r.neighbor.Len() > 0 && dist < (*r.neighbor)[0].Distance {
		heap.Pop(r.neighbor)
		heap.Push(r.neighbor, Neighbor{ID: id, Distance: dist})
	}
}

// WorstDistance returns the current k-th nearest distance, used by the
// kNN query to prune remaining partitions (spec §4.8); returns +Inf
// until the heap has k entries.
func (r Result) WorstDistance() float64 {
	if r.neighbor == nil || r.neighbor.Len() < r.k {
		return math.Inf(1)
	}
	return (*r.neighbor)[0].Distance
}

// Neighbors returns the heap's contents sorted ascending by distance.
func (r Result) Neighbors() []Neighbor {
	if r.neighbor == nil {
		return nil
	}
	out := append([]Neighbor(nil), (*r.neighbor)...)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Merge combines other into a copy of r and returns it: sums for
// Count, list-appends for IDs/Pairs, per-relation sums for
// RelationTable, bounded-heap merge for Heap (spec §5 "Shared
// resources"). Merging mismatched modes is a caller error; r is
// returned unchanged.
func (r Result) Merge(other Result) Result {
	if r.Mode != other.Mode {
		return r
	}
	switch r.Mode {
	case Count:
		r.count += other.count
	case IDs:
		r.ids = append(append([]uint64(nil), r.ids...), other.ids...)
	case Pairs:
		r.pairs = append(append([]Pair(nil), r.pairs...), other.pairs...)
	case RelationTable:
		merged := make(map[refine.Relation]uint64, len(r.byRel)+len(other.byRel))
		for k, v := range r.byRel {
			merged[k] = v
		}
		for k, v := range other.byRel {
			merged[k] += v
		}
		r.byRel = merged
	case Heap:
		merged := NewHeap(r.k)
		for _, n := range r.Neighbors() {
			merged.Offer(n.ID, n.Distance)
		}
		for _, n := range other.Neighbors() {
			merged.Offer(n.ID, n.Distance)
		}
		r.neighbor = merged.neighbor
	}
	return r
}

// neighborHeap is a max-heap on Distance, so the root is always the
// current worst of the k best neighbors kept so far.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

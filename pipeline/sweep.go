package pipeline

import (
	"sort"

	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/store"
)

// ClassPair names one cell of the nine-combination join matrix of
// §4.5: which class of R is compared against which class of S.
type ClassPair struct {
	R, S shape.Class
}

// JoinOrder is the fixed class-pair iteration order mandated by §5:
// A×A, A×B, A×C, A×D, B×A, B×C, C×A, C×B, D×A.
var JoinOrder = [9]ClassPair{
	{shape.ClassA, shape.ClassA},
	{shape.ClassA, shape.ClassB},
	{shape.ClassA, shape.ClassC},
	{shape.ClassA, shape.ClassD},
	{shape.ClassB, shape.ClassA},
	{shape.ClassB, shape.ClassC},
	{shape.ClassC, shape.ClassA},
	{shape.ClassC, shape.ClassB},
	{shape.ClassD, shape.ClassA},
}

var allClasses = [4]shape.Class{shape.ClassA, shape.ClassB, shape.ClassC, shape.ClassD}

func bucket(cb *store.ClassBuckets, c shape.Class) []*shape.Shape {
	switch c {
	case shape.ClassA:
		return cb.A
	case shape.ClassB:
		return cb.B
	case shape.ClassC:
		return cb.C
	default:
		return cb.D
	}
}

// dedupGuard is the half-plane pruning the table's parenthetical
// notes name ("S is B", "R is C", ...): the class definitions of
// §3/§4.5 fix, for whichever side carries class A, that this cell is
// exactly that side's own (row-minimum, column-minimum) cell; B fixes
// the column minimum only, C the row minimum only, D neither. The
// single fine cell shared by r and s at the larger of the two column
// minima and the larger of the two row minima is the one
// canonical cell at which the pair must be counted; dedupGuard checks
// that this is that cell, which reduces to the MBR half-plane
// comparisons below once the class definitions are substituted in.
func dedupGuard(cr, cs shape.Class, r, s *shape.Shape) bool {
	switch {
	case cr == shape.ClassA && cs == shape.ClassA:
		return true
	case cr == shape.ClassA && cs == shape.ClassB:
		return r.MBR.MinY >= s.MBR.MinY
	case cr == shape.ClassB && cs == shape.ClassA:
		return r.MBR.MinY <= s.MBR.MinY
	case cr == shape.ClassA && cs == shape.ClassC:
		return r.MBR.MinX >= s.MBR.MinX
	case cr == shape.ClassC && cs == shape.ClassA:
		return r.MBR.MinX <= s.MBR.MinX
	case cr == shape.ClassB && cs == shape.ClassC:
		return r.MBR.MinX >= s.MBR.MinX && r.MBR.MinY <= s.MBR.MinY
	case cr == shape.ClassC && cs == shape.ClassB:
		return r.MBR.MinX <= s.MBR.MinX && r.MBR.MinY >= s.MBR.MinY
	case cr == shape.ClassA && cs == shape.ClassD:
		return r.MBR.MinX >= s.MBR.MinX && r.MBR.MinY >= s.MBR.MinY
	case cr == shape.ClassD && cs == shape.ClassA:
		return r.MBR.MinX <= s.MBR.MinX && r.MBR.MinY <= s.MBR.MinY
	default:
		return false
	}
}

// SweepRollY implements §4.6: given two sequences sorted ascending by
// MBR yMin, repeatedly take whichever front has the smaller yMin and
// scan forward through every object of the other sequence whose yMin
// falls within the first object's y-extent, testing and emitting
// every survivor. emit's error aborts the sweep immediately (§5
// cancellation: the first fatal pair-level error stops the region).
func SweepRollY(rs, ss []*shape.Shape, test func(r, s *shape.Shape) bool, emit func(r, s *shape.Shape) error) error {
	i, j := 0, 0
	for i < len(rs) && j < len(ss) {
		if rs[i].MBR.MinY <= ss[j].MBR.MinY {
			p := rs[i]
			for k := j; k < len(ss) && ss[k].MBR.MinY <= p.MBR.MaxY; k++ {
				if test(p, ss[k]) {
					if err := emit(p, ss[k]); err != nil {
						return err
					}
				}
			}
			i++
		} else {
			p := ss[j]
			for k := i; k < len(rs) && rs[k].MBR.MinY <= p.MBR.MaxY; k++ {
				if test(rs[k], p) {
					if err := emit(rs[k], p); err != nil {
						return err
					}
				}
			}
			j++
		}
	}
	return nil
}

func sortedByYMin(ss []*shape.Shape) []*shape.Shape {
	out := append([]*shape.Shape(nil), ss...)
	sort.Slice(out, func(i, j int) bool { return out[i].MBR.MinY < out[j].MBR.MinY })
	return out
}

// JoinMatrix sweeps the nine class-pair combinations between two
// fine cells' class buckets, in the fixed order of §5, forwarding
// every surviving, deduplicated pair to emit. A and C buckets are
// expected pre-sorted by store.TwoLayerIndex.Finalize; B and D are
// sorted locally since the store makes no such guarantee for them.
func JoinMatrix(r, s *store.ClassBuckets, emit func(r, s *shape.Shape) error) error {
	for _, cp := range JoinOrder {
		rs := bucket(r, cp.R)
		ss := bucket(s, cp.S)
		if len(rs) == 0 || len(ss) == 0 {
			continue
		}
		if cp.R != shape.ClassA && cp.R != shape.ClassC {
			rs = sortedByYMin(rs)
		}
		if cp.S != shape.ClassA && cp.S != shape.ClassC {
			ss = sortedByYMin(ss)
		}
		cp := cp
		test := func(a, b *shape.Shape) bool {
			return a.MBR.Intersects(b.MBR) && dedupGuard(cp.R, cp.S, a, b)
		}
		if err := SweepRollY(rs, ss, test, emit); err != nil {
			return err
		}
	}
	return nil
}

// ForEachSharedCell calls fn for every fine-cell id present in both
// indices, the set of cells a cross-dataset join can produce
// candidate pairs in.
func ForEachSharedCell(r, s *store.TwoLayerIndex, fn func(cr, cs *store.ClassBuckets) error) error {
	for _, id := range r.Cells() {
		cs := s.Cell(id)
		if cs == nil {
			continue
		}
		if err := fn(r.Cell(id), cs); err != nil {
			return err
		}
	}
	return nil
}

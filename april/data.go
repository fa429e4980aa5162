// Package april implements the APRIL raster approximation layer (C3):
// converting a geometry into two Hilbert-ordered interval lists (ALL,
// FULL) and the intermediate filter (C4.4) that resolves most candidate
// pairs from those lists alone.
//
// Grounded on original_source/Hecatoncheir/src/APRIL/generate.cpp (the
// generator) and .../APRIL/filter.cpp + .../APRIL/join.cpp's
// uncompressed::standard::* family (the filter).
package april

import "github.com/geodex/spatialquery/interval"

// Data holds the APRIL approximation for one geometry: every Hilbert
// cell it overlaps (ALL) and every Hilbert cell lying strictly in its
// interior (FULL). FULL is always a subset of ALL; FULL is empty for
// non-areal geometries.
type Data struct {
	RecID         uint64
	Section       uint32 // groups this record for the persisted layout (§6); caller-assigned
	Order         uint8  // Hilbert curve order N used to build this data
	IntervalsALL  interval.List
	IntervalsFULL interval.List

	// partialCells and interiorCells are diagnostic counts recorded
	// during synthesis; not part of the persisted format (§6), but
	// cheap to keep since the generator computes them along the way.
	partialCells  int
	interiorCells int
}

// Stats returns non-authoritative diagnostic counts from generation:
// the number of partially-covered cells and the number of fully
// interior cells folded into FULL.
func (d *Data) Stats() (partial, interior int) {
	return d.partialCells, d.interiorCells
}

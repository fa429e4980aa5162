package april

import (
	"sort"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/hilbert"
	"github.com/geodex/spatialquery/interval"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
)

// fillState is the classification of a grid cell during synthesis.
type fillState uint8

const (
	unknown fillState = iota
	partial
	full
	empty
)

// Generate rasterizes s onto a 2^order x 2^order grid spanning
// dataspace and produces its (ALL, FULL) APRIL approximation, per the
// algorithm of §4.2:
//  1. map vertices to grid coordinates and compute the expanded,
//     clipped cell bounding box;
//  2. trace every edge with an Amanatides-Woo DDA, marking traversed
//     cells PARTIAL;
//  3. enumerate the partial cells in Hilbert order;
//  4. for areal geometries, classify the remaining cells in the
//     bounding box by neighbor propagation with a point-in-polygon
//     fallback, folding interior cells into FULL;
//  5. coalesce PARTIAL ∪ FULL into ALL and FULL alone into FULL, both
//     as canonical merged-interval lists.
func Generate(s *shape.Shape, order uint8, dataspace shape.MBR) (*Data, error) {
	side := hilbert.Order(order)

	toGrid := func(x, y float64) (gx, gy uint32) {
		fx := (x - dataspace.MinX) / dataspace.Width() * float64(side)
		fy := (y - dataspace.MinY) / dataspace.Height() * float64(side)
		return clampCoord(fx, side), clampCoord(fy, side)
	}

	if len(s.Vertices) == 0 {
		return nil, status.New(status.InvalidParameter, "shape %d has no vertices", s.RecID)
	}

	// Step 1: cell bounding box, expanded by one cell, clipped to grid.
	minGX, minGY, maxGX, maxGY := side, side, uint32(0), uint32(0)
	for _, v := range s.Vertices {
		gx, gy := toGrid(v.X, v.Y)
		if gx < minGX {
			minGX = gx
		}
		if gx > maxGX {
			maxGX = gx
		}
		if gy < minGY {
			minGY = gy
		}
		if gy > maxGY {
			maxGY = gy
		}
	}
	if minGX > 0 {
		minGX--
	}
	if minGY > 0 {
		minGY--
	}
	if maxGX < side-1 {
		maxGX++
	}
	if maxGY < side-1 {
		maxGY++
	}

	w := int(maxGX-minGX) + 1
	h := int(maxGY-minGY) + 1
	states := make([]fillState, w*h)
	idx := func(gx, gy uint32) int {
		return int(gy-minGY)*w + int(gx-minGX)
	}

	isAreal := s.Kind == shape.Rectangle || s.Kind == shape.Polygon

	// Step 2: mark PARTIAL cells.
	if len(s.Vertices) == 1 || (s.Kind == shape.Point) {
		gx, gy := toGrid(s.Vertices[0].X, s.Vertices[0].Y)
		states[idx(gx, gy)] = partial
	} else {
		for i := 0; i < len(s.Vertices)-1; i++ {
			traceEdge(s.Vertices[i], s.Vertices[i+1], dataspace, side, states, w, minGX, minGY)
		}
	}

	// Step 3: enumerate the partial cells in Hilbert order.
	type cell struct {
		gx, gy uint32
		d      uint64
	}
	var partials []cell
	for gy := minGY; gy <= maxGY; gy++ {
		for gx := minGX; gx <= maxGX; gx++ {
			if states[idx(gx, gy)] == partial {
				partials = append(partials, cell{gx, gy, hilbert.Encode(order, gx, gy)})
			}
		}
	}
	sort.Slice(partials, func(i, j int) bool { return partials[i].d < partials[j].d })

	data := &Data{RecID: s.RecID, Order: order, partialCells: len(partials)}

	if !isAreal {
		// Step 5: non-areal geometries have no interior; ALL is the
		// coalesced partial set, FULL is empty.
		ds := make([]uint64, len(partials))
		for i, c := range partials {
			ds[i] = c.d
		}
		data.IntervalsALL = coalesce(ds)
		if len(data.IntervalsALL) == 0 {
			return nil, status.New(status.AprilCreate, "shape %d produced an empty ALL list", s.RecID)
		}
		return data, nil
	}

	// Step 4: classify every cell in the bounding box in Hilbert order,
	// using already-classified lower-order neighbors where possible
	// and a point-in-polygon test otherwise.
	type ordered struct {
		gx, gy uint32
		d      uint64
	}
	all := make([]ordered, 0, w*h)
	for gy := minGY; gy <= maxGY; gy++ {
		for gx := minGX; gx <= maxGX; gx++ {
			all = append(all, ordered{gx, gy, hilbert.Encode(order, gx, gy)})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].d < all[j].d })

	var fullDs, allDs []uint64
	for _, c := range all {
		st := states[idx(c.gx, c.gy)]
		if st == partial {
			allDs = append(allDs, c.d)
			continue
		}
		if st == unknown {
			st = classifyByNeighbors(states, idx, c.gx, c.gy, minGX, minGY, maxGX, maxGY)
			if st == unknown {
				// Fallback: one point-in-polygon test at the cell
				// center, in dataspace coordinates.
				cx := dataspace.MinX + (float64(c.gx)+0.5)/float64(side)*dataspace.Width()
				cy := dataspace.MinY + (float64(c.gy)+0.5)/float64(side)*dataspace.Height()
				if shape.PointInRing(s.Vertices, cx, cy) {
					st = full
				} else {
					st = empty
				}
			}
			states[idx(c.gx, c.gy)] = st
		}
		if st == full {
			fullDs = append(fullDs, c.d)
			allDs = append(allDs, c.d)
			data.interiorCells++
		}
	}

	data.IntervalsALL = coalesce(allDs)
	data.IntervalsFULL = coalesce(fullDs)
	if len(data.IntervalsALL) == 0 {
		return nil, status.New(status.AprilCreate, "shape %d produced an empty ALL list", s.RecID)
	}
	return data, nil
}

func clampCoord(f float64, side uint32) uint32 {
	if f < 0 {
		return 0
	}
	if f >= float64(side) {
		return side - 1
	}
	return uint32(f)
}

// classifyByNeighbors examines the (<=8) neighbors of (gx,gy) that have
// already been classified; if any is FULL the cell is FULL, if any is
// EMPTY the cell is EMPTY, otherwise it returns unknown so the caller
// falls back to a point-in-polygon test.
func classifyByNeighbors(states []fillState, idx func(uint32, uint32) int, gx, gy, minGX, minGY, maxGX, maxGY uint32) fillState {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := int(gx)+dx, int(gy)+dy
			if nx < int(minGX) || nx > int(maxGX) || ny < int(minGY) || ny > int(maxGY) {
				continue
			}
			switch states[idx(uint32(nx), uint32(ny))] {
			case full:
				return full
			case empty:
				return empty
			}
		}
	}
	return unknown
}

// traceEdge marks every grid cell traversed by segment a-b as PARTIAL,
// using an Amanatides-Woo DDA: project the edge onto the vertical line
// x=startX+1 and horizontal line y=startY+1 to initialize tMaxX/tMaxY,
// then step by (stepX,stepY) in {-1,+1}, always advancing whichever
// axis reaches its next cell boundary first.
func traceEdge(a, b geom.Point, dataspace shape.MBR, side uint32, states []fillState, w int, minGX, minGY uint32) {
	toGrid := func(p geom.Point) (float64, float64) {
		fx := (p.X - dataspace.MinX) / dataspace.Width() * float64(side)
		fy := (p.Y - dataspace.MinY) / dataspace.Height() * float64(side)
		return fx, fy
	}
	ax, ay := toGrid(a)
	bx, by := toGrid(b)

	gx := clampCoord(ax, side)
	gy := clampCoord(ay, side)
	endGX := clampCoord(bx, side)
	endGY := clampCoord(by, side)

	idx := func(x, y uint32) int { return int(y-minGY)*w + int(x-minGX) }
	mark := func(x, y uint32) { states[idx(x, y)] = partial }
	mark(gx, gy)

	dx := bx - ax
	dy := by - ay

	var stepX, stepY int32
	var tMaxX, tDeltaX float64
	if dx > 0 {
		stepX = 1
		tMaxX = (float64(gx+1) - ax) / dx
		tDeltaX = 1 / dx
	} else if dx < 0 {
		stepX = -1
		tMaxX = (float64(gx) - ax) / dx
		tDeltaX = 1 / -dx
	} else {
		tMaxX = posInf
	}

	var tMaxY, tDeltaY float64
	if dy > 0 {
		stepY = 1
		tMaxY = (float64(gy+1) - ay) / dy
		tDeltaY = 1 / dy
	} else if dy < 0 {
		stepY = -1
		tMaxY = (float64(gy) - ay) / dy
		tDeltaY = 1 / -dy
	} else {
		tMaxY = posInf
	}

	// Step until we reach the end cell; bounded by grid size to guard
	// against floating-point accumulation overshoot.
	const maxSteps = 1 << 20
	for steps := 0; (gx != endGX || gy != endGY) && steps < maxSteps; steps++ {
		if tMaxX < tMaxY {
			tMaxX += tDeltaX
			gx = stepCoord(gx, stepX, side)
		} else {
			tMaxY += tDeltaY
			gy = stepCoord(gy, stepY, side)
		}
		mark(gx, gy)
	}
}

const posInf = 1e18

func stepCoord(c uint32, step int32, side uint32) uint32 {
	if step > 0 {
		if c+1 >= side {
			return side - 1
		}
		return c + 1
	}
	if step < 0 {
		if c == 0 {
			return 0
		}
		return c - 1
	}
	return c
}

// coalesce turns a sorted (not necessarily distinct) slice of Hilbert
// distances into the canonical merged-interval form: ascending,
// non-overlapping, non-adjacent half-open runs.
func coalesce(ds []uint64) interval.List {
	if len(ds) == 0 {
		return nil
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	var out interval.List
	start := ds[0]
	end := ds[0] + 1
	for _, d := range ds[1:] {
		if d <= end {
			if d+1 > end {
				end = d + 1
			}
			continue
		}
		out = append(out, interval.Interval{Start: uint32(start), End: uint32(end)})
		start, end = d, d+1
	}
	out = append(out, interval.Interval{Start: uint32(start), End: uint32(end)})
	return out
}

// Package hilbert implements the bijection between a (x, y) cell on a
// 2^N x 2^N grid and its position on the Hilbert space-filling curve
// (C2). The curve is used only to induce a total order on grid cells so
// that a geometry's covered cells can be represented as a small number
// of contiguous intervals (the APRIL rasterization, package april).
package hilbert

// Encode maps cell (x, y) on a 2^n x 2^n grid to its Hilbert distance d.
// Standard recursive quadrant-rotation construction (Skilling/Moore):
// at each bit level, reflect and transpose (x, y) according to the
// quadrant the point falls in before descending to the next level.
func Encode(n uint8, x, y uint32) uint64 {
	side := Order(n)
	var d uint64
	for s := side / 2; s > 0; s >>= 1 {
		var rx, ry uint32
		if x&s > 0 {
			rx = 1
		}
		if y&s > 0 {
			ry = 1
		}
		d += uint64(s) * uint64(s) * uint64((3*rx)^ry)
		x, y = rotate(side, x, y, rx, ry)
	}
	return d
}

// Decode maps a Hilbert distance d on a 2^n x 2^n grid back to (x, y).
// Inverse of Encode: peel off two bits of d at a time, from the least
// significant level up, undoing the rotation at each level.
func Decode(n uint8, d uint64) (x, y uint32) {
	for s := uint32(1); s < (uint32(1) << n); s <<= 1 {
		rx := uint32(1 & (d / 2))
		ry := uint32(1 & (d ^ uint64(rx)))
		x, y = rotate(s, x, y, rx, ry)
		x += s * rx
		y += s * ry
		d /= 4
	}
	return x, y
}

// rotate performs the quadrant rotation/reflection shared by Encode and
// Decode. When ry == 0 the quadrant is mirrored about the diagonal
// (swap x and y); when additionally rx == 1 it is also reflected about
// the midline of the current block of side s.
func rotate(s, x, y, rx, ry uint32) (uint32, uint32) {
	if ry == 0 {
		if rx == 1 {
			x = s - 1 - x
			y = s - 1 - y
		}
		x, y = y, x
	}
	return x, y
}

// Order returns the grid side length 2^n for a given curve order n.
func Order(n uint8) uint32 {
	return uint32(1) << n
}

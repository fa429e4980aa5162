package hilbert

import "testing"

func TestRoundTrip(t *testing.T) {
	const n = 4 // 16x16 grid, small enough to exhaust
	side := Order(n)
	for x := uint32(0); x < side; x++ {
		for y := uint32(0); y < side; y++ {
			d := Encode(n, x, y)
			gx, gy := Decode(n, d)
			if gx != x || gy != y {
				t.Fatalf("Decode(Encode(%d,%d)) = (%d,%d), want (%d,%d)", x, y, gx, gy, x, y)
			}
		}
	}
}

func TestDistancesArePermutation(t *testing.T) {
	const n = 5
	side := Order(n)
	seen := make(map[uint64]bool)
	for x := uint32(0); x < side; x++ {
		for y := uint32(0); y < side; y++ {
			d := Encode(n, x, y)
			if seen[d] {
				t.Fatalf("duplicate Hilbert distance %d for (%d,%d)", d, x, y)
			}
			seen[d] = true
		}
	}
	want := int(side) * int(side)
	if len(seen) != want {
		t.Fatalf("got %d distinct distances, want %d", len(seen), want)
	}
}

func TestAdjacentOnCurveAreAdjacentOnGrid(t *testing.T) {
	const n = 4
	side := Order(n)
	total := uint64(side) * uint64(side)
	for d := uint64(0); d < total-1; d++ {
		x0, y0 := Decode(n, d)
		x1, y1 := Decode(n, d+1)
		dx := absDiff(x0, x1)
		dy := absDiff(y0, y1)
		if dx+dy != 1 {
			t.Fatalf("cells at d=%d and d=%d are not grid-adjacent: (%d,%d) vs (%d,%d)", d, d+1, x0, y0, x1, y1)
		}
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

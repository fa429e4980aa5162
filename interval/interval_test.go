package interval

import "testing"

func lst(pairs ...uint32) List {
	var l List
	for i := 0; i < len(pairs); i += 2 {
		l = append(l, Interval{Start: pairs[i], End: pairs[i+1]})
	}
	return l
}

func TestIntersect(t *testing.T) {
	cases := []struct {
		name   string
		r, s   List
		want   bool
	}{
		{"empty-r", lst(), lst(1, 2), false},
		{"empty-s", lst(1, 2), lst(), false},
		{"disjoint", lst(0, 2, 5, 7), lst(2, 4), false},
		{"touching-not-overlap", lst(0, 2), lst(2, 4), false},
		{"overlap", lst(0, 3), lst(2, 4), true},
		{"overlap-interleaved", lst(0, 2, 10, 12), lst(1, 3), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Intersect(c.r, c.s); got != c.want {
				t.Errorf("Intersect(%v,%v) = %v, want %v", c.r, c.s, got, c.want)
			}
		})
	}
}

func TestInside(t *testing.T) {
	cases := []struct {
		name string
		r, s List
		want bool
	}{
		{"empty-r", lst(), lst(0, 10), false},
		{"empty-s", lst(0, 2), lst(), false},
		{"fully-inside-one", lst(2, 4), lst(0, 10), true},
		{"fully-inside-many", lst(2, 4, 6, 8), lst(0, 5, 5, 10), true},
		{"partially-outside", lst(2, 12), lst(0, 10), false},
		{"one-of-two-outside", lst(2, 4, 20, 22), lst(0, 10), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Inside(c.r, c.s); got != c.want {
				t.Errorf("Inside(%v,%v) = %v, want %v", c.r, c.s, got, c.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name string
		r, s List
		want bool
	}{
		{"both-empty", lst(), lst(), true},
		{"different-lengths", lst(0, 2), lst(0, 2, 4, 6), false},
		{"identical", lst(0, 2, 4, 6), lst(0, 2, 4, 6), true},
		{"same-length-different", lst(0, 2), lst(1, 3), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Match(c.r, c.s); got != c.want {
				t.Errorf("Match(%v,%v) = %v, want %v", c.r, c.s, got, c.want)
			}
		})
	}
}

func TestHybrid(t *testing.T) {
	cases := []struct {
		name string
		r, s List
		want Result
	}{
		{"empty", lst(), lst(0, 10), Disjoint},
		{"r-inside-s", lst(2, 4), lst(0, 10), RInsideS},
		{"disjoint-above", lst(20, 22), lst(0, 10), Disjoint},
		{"disjoint-below", lst(0, 2), lst(5, 7), Disjoint},
		{"partial-overlap", lst(8, 12), lst(0, 10), Intersects},
		{"contained-then-overlap", lst(2, 4, 8, 12), lst(0, 10), Intersects},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Hybrid(c.r, c.s); got != c.want {
				t.Errorf("Hybrid(%v,%v) = %v, want %v", c.r, c.s, got, c.want)
			}
		})
	}
}

func TestSymmetric(t *testing.T) {
	cases := []struct {
		name string
		r, s List
		want Result
	}{
		{"match", lst(0, 10), lst(0, 10), Matches},
		{"r-inside-s", lst(2, 4), lst(0, 10), RInsideS},
		{"s-inside-r", lst(0, 10), lst(2, 4), SInsideR},
		{"intersect", lst(0, 6), lst(4, 10), Intersects},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Symmetric(c.r, c.s); got != c.want {
				t.Errorf("Symmetric(%v,%v) = %v, want %v", c.r, c.s, got, c.want)
			}
		})
	}
}

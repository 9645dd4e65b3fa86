package mathx

import "testing"

func TestClamp(t *testing.T) {
	type C struct{ v, lo, hi, want int }
	for _, c := range []C{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{11, 1, 10, 10},
		{5, 10, 1, 5}, // swapped bounds
	} {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("Clamp(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 7) != 3 || Min(7, 3) != 3 {
		t.Fatalf("Min broken")
	}
	if Max(3, 7) != 7 || Max(7, 3) != 7 {
		t.Fatalf("Max broken")
	}
}

func TestCeilDiv(t *testing.T) {
	type C struct{ a, b, want uint32 }
	for _, c := range []C{
		{0, 5, 0},
		{10, 5, 2},
		{11, 5, 3},
		{1, 5, 1},
		{7, 0, 0}, // divide by zero yields zero, not a panic
	} {
		if got := CeilDiv(c.a, c.b); got != c.want {
			t.Fatalf("CeilDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestRoundDiv(t *testing.T) {
	type C struct{ a, b, want uint32 }
	for _, c := range []C{
		{10, 4, 3}, // 2.5 rounds up
		{9, 4, 2},  // 2.25 rounds down
		{12, 4, 3},
		{7, 0, 0},
	} {
		if got := RoundDiv(c.a, c.b); got != c.want {
			t.Fatalf("RoundDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

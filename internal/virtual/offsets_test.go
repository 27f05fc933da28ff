package virtual

import "testing"

func newLinkedIndex(estimate, minHeight, footer float64, count int) (*HeightTable, *OffsetIndex) {
	var index *OffsetIndex
	heights := NewHeightTable(estimate, minHeight, func(i int) { index.InvalidateFrom(i) })
	index = NewOffsetIndex(heights.Get, footer)
	index.SetCount(count)
	return heights, index
}

func TestOffsetIndexMonotonicity(t *testing.T) {
	heights, index := newLinkedIndex(500, 1, 80, 12)
	for i, h := range []float64{300, 42, 900, 17, 250} {
		heights.Set(i*2, h)
	}
	for i := 0; i < index.Count(); i++ {
		want := index.OffsetOf(i) + heights.Get(i)
		if got := index.OffsetOf(i + 1); got != want {
			t.Fatalf("OffsetOf(%d) = %v, want %v", i+1, got, want)
		}
	}
	if got, want := index.TotalSize(), index.OffsetOf(index.Count())+80; got != want {
		t.Fatalf("TotalSize() = %v, want %v", got, want)
	}
}

func TestOffsetIndexInvalidationLocality(t *testing.T) {
	heights, index := newLinkedIndex(500, 1, 80, 20)
	before := make([]float64, 21)
	for i := range before {
		before[i] = index.OffsetOf(i)
	}
	if index.Cached() != 21 {
		t.Fatalf("Cached() = %d, want 21", index.Cached())
	}

	const k = 7
	heights.Set(k, 120)
	if index.Cached() != k {
		t.Fatalf("Cached() after invalidation = %d, want %d", index.Cached(), k)
	}
	for j := 0; j <= k; j++ {
		if got := index.OffsetOf(j); got != before[j] {
			t.Fatalf("OffsetOf(%d) changed: %v -> %v", j, before[j], got)
		}
	}
	for j := k + 1; j <= 20; j++ {
		if got, want := index.OffsetOf(j), before[j]-380; got != want {
			t.Fatalf("OffsetOf(%d) = %v, want %v", j, got, want)
		}
	}
}

func TestOffsetIndexScenarioFirstMeasurement(t *testing.T) {
	heights, index := newLinkedIndex(500, 1, 80, 10)
	if got := index.OffsetOf(1); got != 500 {
		t.Fatalf("OffsetOf(1) = %v, want 500", got)
	}
	heights.Set(0, 300)
	if got := index.OffsetOf(1); got != 300 {
		t.Fatalf("OffsetOf(1) = %v, want 300", got)
	}
	if got := index.OffsetOf(0); got != 0 {
		t.Fatalf("OffsetOf(0) = %v, want 0", got)
	}
}

func TestOffsetIndexSetCountKeepsPrefix(t *testing.T) {
	_, index := newLinkedIndex(10, 1, 3, 4)
	if got := index.TotalSize(); got != 43 {
		t.Fatalf("TotalSize() = %v, want 43", got)
	}
	if index.Cached() != 6 {
		t.Fatalf("Cached() = %d, want 6", index.Cached())
	}

	index.SetCount(8)
	if index.Cached() != 5 {
		t.Fatalf("append should keep offsets up to the old footer, cached %d", index.Cached())
	}
	if got := index.OffsetOf(5); got != 50 {
		t.Fatalf("OffsetOf(5) = %v, want 50 (old footer slot is now an item)", got)
	}
	if got := index.TotalSize(); got != 83 {
		t.Fatalf("TotalSize() = %v, want 83", got)
	}
}

func TestOffsetIndexEmpty(t *testing.T) {
	_, index := newLinkedIndex(10, 1, 3, 0)
	if index.Rows() != 0 {
		t.Fatalf("Rows() = %d, want 0", index.Rows())
	}
	if index.TotalSize() != 0 {
		t.Fatalf("TotalSize() = %v, want 0", index.TotalSize())
	}
}

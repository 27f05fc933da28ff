package virtual

import (
	"context"
	"errors"
	"testing"
)

func TestPagerEvaluateThreshold(t *testing.T) {
	cases := []struct {
		name  string
		end   int
		count int
		fires bool
	}{
		{name: "far from tail", end: 2, count: 8, fires: false},
		{name: "exactly at threshold", end: 3, count: 8, fires: true},
		{name: "past threshold", end: 4, count: 8, fires: true},
		{name: "empty sequence", end: -1, count: 0, fires: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pager := NewPager(LoaderFunc(func(context.Context) (Page, error) { return Page{}, nil }), 5, 8)
			got := pager.Evaluate(tc.end, tc.count) != nil
			if got != tc.fires {
				t.Fatalf("Evaluate(%d, %d) fired = %v, want %v", tc.end, tc.count, got, tc.fires)
			}
			if pager.State().Loading != tc.fires {
				t.Fatalf("Loading = %v, want %v", pager.State().Loading, tc.fires)
			}
		})
	}
}

func TestPagerAtMostOneInFlight(t *testing.T) {
	pager := NewPager(LoaderFunc(func(context.Context) (Page, error) { return Page{}, nil }), 5, 8)
	if pager.Evaluate(7, 8) == nil {
		t.Fatalf("expected first evaluation to dispatch")
	}
	for i := 0; i < 10; i++ {
		if f := pager.Evaluate(7, 8); f != nil {
			t.Fatalf("evaluation %d dispatched while loading", i)
		}
	}
}

func TestPagerSettle(t *testing.T) {
	cases := []struct {
		name    string
		page    Page
		err     error
		hasMore bool
	}{
		{name: "full page keeps hasMore", page: Page{Items: make([]Item, 8), HasMore: true}, hasMore: true},
		{name: "short page ends feed", page: Page{Items: make([]Item, 3), HasMore: true}, hasMore: false},
		{name: "source says no more", page: Page{Items: make([]Item, 8), HasMore: false}, hasMore: false},
		{name: "failure keeps hasMore", err: errors.New("boom"), hasMore: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pager := NewPager(LoaderFunc(func(context.Context) (Page, error) { return Page{}, nil }), 5, 8)
			pager.Evaluate(10, 8)
			pager.Settle(tc.page, tc.err)
			state := pager.State()
			if state.Loading {
				t.Fatalf("pager still loading after settle")
			}
			if state.HasMore != tc.hasMore {
				t.Fatalf("HasMore = %v, want %v", state.HasMore, tc.hasMore)
			}
		})
	}
}

func TestPagerResetCancelsInFlight(t *testing.T) {
	pager := NewPager(LoaderFunc(func(ctx context.Context) (Page, error) { return Page{}, ctx.Err() }), 5, 8)
	f := pager.Evaluate(10, 8)
	if f == nil {
		t.Fatalf("expected dispatch")
	}
	pager.Reset(1, nil, true)
	if _, err := f.Run(); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() after reset = %v, want context.Canceled", err)
	}
	if pager.State().Loading {
		t.Fatalf("reset should return the pager to idle")
	}
	if next := pager.Evaluate(10, 8); next == nil || next.Epoch() != 1 {
		t.Fatalf("expected dispatch with epoch 1 after reset, got %+v", next)
	}
}

func TestPagerWithoutLoaderNeverFires(t *testing.T) {
	pager := NewPager(nil, 5, 8)
	if pager.Evaluate(10, 8) != nil {
		t.Fatalf("pager without loader dispatched a fetch")
	}
	var f *Fetch
	if _, err := f.Run(); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("nil fetch Run() = %v, want ErrNoLoader", err)
	}
}

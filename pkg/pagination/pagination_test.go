package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"defaults", Params{}, 1, DefaultLimit},
		{"negative page", Params{Page: -3, Limit: 10}, 1, 10},
		{"over max limit", Params{Page: 2, Limit: 500}, 2, MaxLimit},
		{"passthrough", Params{Page: 4, Limit: 50}, 4, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", got.Page, got.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 20}).Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}

func TestPages(t *testing.T) {
	if got := Pages(41, 20); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := Pages(40, 20); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
	if got := Pages(0, 20); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
}

package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -4: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPageForClampsOffset(t *testing.T) {
	page := PageFor(Params{Limit: 500, Offset: -3}, 42)
	if page.Limit != MaxLimit || page.Offset != 0 || page.Total != 42 {
		t.Fatalf("unexpected page %+v", page)
	}
}

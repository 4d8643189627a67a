package scraper

import "testing"

func TestSearchTerm(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"RELIANCE" AND (stock OR market)`, "RELIANCE"},
		{`"BTC-USD" AND (stock OR "price")`, "BTC-USD"},
		{`RELIANCE`, "RELIANCE"},
		{`"unterminated`, `"unterminated`},
	}

	for _, c := range cases {
		if got := searchTerm(c.in); got != c.want {
			t.Errorf("searchTerm(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

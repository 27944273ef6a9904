package app

import (
	"math"
	"testing"
)

func TestFoldName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hôtel Grand-Palace", "hotel grand palace"},
		{"  GRAND   PALACE  ", "grand palace"},
		{"Café & Suites, München", "cafe suites munchen"},
		{"", ""},
	}
	for _, c := range cases {
		if got := foldName(c.in); got != c.want {
			t.Errorf("foldName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNameSimilarity(t *testing.T) {
	if s := nameSimilarity("Grand Palace Hotel", "Hotel Grand Palace"); s != 1 {
		t.Errorf("token order should not matter, got %v", s)
	}
	if s := nameSimilarity("Hôtel Grand Palace", "Hotel Grand Palace"); s != 1 {
		t.Errorf("diacritics should not matter, got %v", s)
	}
	if s := nameSimilarity("Grand Palace Hotel", "Grand Palace Hotell"); s < 0.9 {
		t.Errorf("one-letter typo should score high, got %v", s)
	}
	if s := nameSimilarity("Grand Palace Hotel", "Seaside Budget Inn"); s > 0.5 {
		t.Errorf("unrelated names should score low, got %v", s)
	}
	if s := nameSimilarity("", "Grand Palace"); s != 0 {
		t.Errorf("empty name should score 0, got %v", s)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"hotel", "hotel", 0},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestHaversineMeters(t *testing.T) {
	// Berlin TV tower to Brandenburg Gate, roughly 2.2 km.
	d := haversineMeters(52.5208, 13.4094, 52.5163, 13.3777)
	if d < 2000 || d > 2500 {
		t.Errorf("unexpected distance %v", d)
	}
	if d := haversineMeters(48.8566, 2.3522, 48.8566, 2.3522); math.Abs(d) > 0.001 {
		t.Errorf("same point should be 0, got %v", d)
	}
	// ~150 m apart, inside a 200 m dedup radius.
	d = haversineMeters(41.3902, 2.1540, 41.3910, 2.1555)
	if d > 200 {
		t.Errorf("nearby points should be within 200m, got %v", d)
	}
}

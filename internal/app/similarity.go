package app

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases, strips diacritics and punctuation, and collapses
// whitespace, so "Hôtel  Grand-Palace" and "hotel grand palace" compare equal.
func foldName(s string) string {
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case !space:
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// nameSimilarity scores two hotel names in [0,1]: case/diacritic-insensitive,
// token-order-insensitive, Levenshtein-based.
func nameSimilarity(a, b string) float64 {
	fa, fb := foldName(a), foldName(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 1
	}
	ta := strings.Fields(fa)
	tb := strings.Fields(fb)
	sort.Strings(ta)
	sort.Strings(tb)
	sa, sb := strings.Join(ta, " "), strings.Join(tb, " ")
	if sa == sb {
		return 1
	}
	longer := len([]rune(sa))
	if lb := len([]rune(sb)); lb > longer {
		longer = lb
	}
	dist := levenshtein(sa, sb)
	return float64(longer-dist) / float64(longer)
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}
	prev := make([]int, len(r2)+1)
	cur := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		cur[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(r2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

const earthRadiusM = 6371000

// haversineMeters is the great-circle distance between two coordinates.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }

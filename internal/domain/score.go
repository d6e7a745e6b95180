package domain

import (
	"regexp"
	"strconv"

	"golang.org/x/text/width"
)

// RandomSource is the subset of *math/rand/v2.Rand used for fallback values.
type RandomSource interface {
	IntN(n int) int
}

const (
	MaxScore = 100

	minPlausibleScore = 50
	minRandomScore    = 60
	starsToPoints     = 20
)

var (
	percentPattern = regexp.MustCompile(`([1-9]\d?)%`)
	pointsPattern  = regexp.MustCompile(`(\d+)分`)
	starsPattern   = regexp.MustCompile(`(\d+)星`)
	numberPattern  = regexp.MustCompile(`\d+`)
	starWordDigits = map[rune]int{'一': 1, '二': 2, '两': 2, '三': 3, '四': 4, '五': 5}
)

// ExtractScore derives a 0-100 index from free-form upstream text.
//
// This is a best-effort heuristic over inconsistent content: it prefers an
// explicit percentage, then "N分", then "N星" (scaled to 100), then the first
// embedded integer in [50,100]. When nothing matches the result is a random
// value in [60,100] drawn from rng, so the same input may yield different
// scores across calls.
func ExtractScore(text string, rng RandomSource) int {
	narrowed := width.Narrow.String(text)

	if m := percentPattern.FindStringSubmatch(narrowed); m != nil {
		return atoiClamped(m[1], 1)
	}
	if m := pointsPattern.FindStringSubmatch(narrowed); m != nil {
		return atoiClamped(m[1], 1)
	}
	if m := starsPattern.FindStringSubmatch(narrowed); m != nil {
		return atoiClamped(m[1], starsToPoints)
	}
	if stars, ok := starWordCount(narrowed); ok {
		return clampScore(stars * starsToPoints)
	}

	for _, raw := range numberPattern.FindAllString(narrowed, -1) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if n >= minPlausibleScore && n <= MaxScore {
			return n
		}
	}

	return RandomScore(rng)
}

// ParseLuckyNumber reads the first integer in text ("7", "7、9", "７号"). A
// missing or out of range number is replaced by RandomLuckyNumber.
func ParseLuckyNumber(text string, rng RandomSource) int {
	raw := numberPattern.FindString(width.Narrow.String(text))
	n, err := strconv.Atoi(raw)
	if err != nil || n < MinLuckyNumber || n > MaxLuckyNumber {
		return RandomLuckyNumber(rng)
	}
	return n
}

// RandomScore returns a value in [60,100].
func RandomScore(rng RandomSource) int {
	return minRandomScore + rng.IntN(MaxScore-minRandomScore+1)
}

// starWordCount recognises ratings spelled with Chinese numerals, e.g. "四星".
func starWordCount(text string) (int, bool) {
	var prev rune
	for _, r := range text {
		if r == '星' {
			if n, ok := starWordDigits[prev]; ok {
				return n, true
			}
		}
		prev = r
	}
	return 0, false
}

func atoiClamped(raw string, factor int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return clampScore(n * factor)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

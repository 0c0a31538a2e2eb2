// Package tokens gives a rough token count for text without a tokenizer.
package tokens

import "unicode"

// runes per token by script
var ratios = []struct {
	table *unicode.RangeTable
	per   float64
}{
	{unicode.Han, 1.2},
	{unicode.Hiragana, 1.5},
	{unicode.Katakana, 1.5},
	{unicode.Hangul, 1.5},
	{unicode.Cyrillic, 3.0},
	{unicode.Arabic, 2.5},
	{unicode.Latin, 3.5},
	{unicode.Digit, 4.0},
	{unicode.So, 1.0},
	{unicode.Sk, 1.0},
	{unicode.Sm, 1.0},
	{unicode.Punct, 2.0},
	{unicode.White_Space, 5.0},
}

// Estimate returns the approximate token count of text, 0 only for "".
func Estimate(text string) int {
	if text == "" {
		return 0
	}

	var n float64
	for _, r := range text {
		n += 1.0 / perToken(r)
	}

	return int(n) + 1
}

func perToken(r rune) float64 {
	for _, ratio := range ratios {
		if unicode.Is(ratio.table, r) {
			return ratio.per
		}
	}
	return 2.0
}

// EstimateAll sums the estimates of every text.
func EstimateAll(texts ...string) int {
	var total int
	for _, t := range texts {
		total += Estimate(t)
	}
	return total
}

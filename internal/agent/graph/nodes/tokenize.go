package nodes

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords filtered out of term frequencies. Mixed set because the feedback
// corpus is Traditional Chinese with English fragments.
var stopwords = map[string]bool{
	"的": true, "了": true, "是": true, "我": true, "你": true, "他": true,
	"們": true, "這": true, "那": true, "有": true, "在": true, "也": true,
	"都": true, "很": true, "和": true, "就": true, "不": true, "還": true,
	"但是": true, "可以": true, "沒有": true, "覺得": true, "因為": true,
	"所以": true, "如果": true, "希望": true, "一個": true, "真的": true,
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "was": true, "are": true, "not": true, "but": true,
	"very": true, "have": true, "has": true,
}

// tokenize splits text into lowercase ASCII words and Han bigrams. Single Han
// characters only surface when they stand alone between non-Han runes.
func tokenize(text string) []string {
	var tokens []string
	var ascii []rune
	var han []rune

	flushASCII := func() {
		if len(ascii) >= 2 {
			w := strings.ToLower(string(ascii))
			if !stopwords[w] {
				tokens = append(tokens, w)
			}
		}
		ascii = ascii[:0]
	}
	flushHan := func() {
		if len(han) == 1 {
			w := string(han)
			if !stopwords[w] {
				tokens = append(tokens, w)
			}
		}
		for i := 0; i+1 < len(han); i++ {
			w := string(han[i : i+2])
			if !stopwords[w] {
				tokens = append(tokens, w)
			}
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushASCII()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			ascii = append(ascii, r)
		default:
			flushASCII()
			flushHan()
		}
	}
	flushASCII()
	flushHan()
	return tokens
}

// termFrequencies counts tokens over a set of texts.
func termFrequencies(texts []string) map[string]int {
	freqs := make(map[string]int)
	for _, t := range texts {
		for _, tok := range tokenize(t) {
			freqs[tok]++
		}
	}
	return freqs
}

// topTerms returns the n most frequent terms, ties broken alphabetically.
func topTerms(freqs map[string]int, n int) []string {
	terms := make([]string, 0, len(freqs))
	for t := range freqs {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freqs[terms[i]] != freqs[terms[j]] {
			return freqs[terms[i]] > freqs[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

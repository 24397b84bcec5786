package cast

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	resolvePhoneticThreshold = 0.70
	resolveFuzzyThreshold    = 0.85
)

// Resolve maps free-form player input to a cast member. Players rarely type
// the full billed name, so resolution proceeds in stages:
//
//  1. Exact match on the full name or any single name token, case-insensitive
//     ("anya", "Amar the Elder", "guard captain").
//  2. Double Metaphone candidate filtering, ranked by Jaro-Winkler similarity
//     ("vikrum", "dya the weevar").
//  3. Pure Jaro-Winkler fallback at a stricter threshold for typos that do
//     not survive phonetic encoding.
//
// Returns false when nothing clears a threshold; the transport layer turns
// that into a rejection listing the valid cast.
func Resolve(name string) (Character, bool) {
	input := strings.ToLower(strings.TrimSpace(name))
	if input == "" {
		return "", false
	}
	inputTokens := strings.Fields(input)

	// Stage 1: exact full-name or token match.
	for _, c := range Characters {
		full := strings.ToLower(string(c))
		if input == full {
			return c, true
		}
		for _, token := range strings.Fields(full) {
			if token == "the" {
				continue
			}
			if input == token {
				return c, true
			}
		}
	}

	// Stage 2 and 3: phonetic candidates first, fuzzy similarity second.
	inputCodes := metaphoneCodes(inputTokens)

	var (
		best         Character
		bestScore    float64
		bestPhonetic bool
	)
	for _, c := range Characters {
		full := strings.ToLower(string(c))
		tokens := strings.Fields(full)

		phonetic := codesOverlap(inputCodes, metaphoneCodes(tokens))
		score := bestSimilarity(inputTokens, tokens, input, full)

		switch {
		case phonetic && score >= resolvePhoneticThreshold:
			if !bestPhonetic || score > bestScore {
				best, bestScore, bestPhonetic = c, score, true
			}
		case !phonetic && !bestPhonetic:
			if score >= resolveFuzzyThreshold && score > bestScore {
				best, bestScore = c, score
			}
		}
	}

	if best != "" {
		return best, true
	}
	return "", false
}

// metaphoneCodes returns the union of Double Metaphone codes for tokens.
// The filler word "the" and empty codes are skipped.
func metaphoneCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		if t == "the" {
			continue
		}
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity takes the highest Jaro-Winkler score across full-string,
// space-stripped, and pairwise-token comparisons, so that "dya weevar" can
// still land on "diya the weaver".
func bestSimilarity(inputTokens, castTokens []string, inputFull, castFull string) float64 {
	score := matchr.JaroWinkler(inputFull, castFull, false)

	if len(inputTokens) > 1 || len(castTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(inputTokens, ""), strings.Join(castTokens, ""), false); s > score {
			score = s
		}
	}

	for _, it := range inputTokens {
		for _, ct := range castTokens {
			if ct == "the" {
				continue
			}
			if s := matchr.JaroWinkler(it, ct, false); s > score {
				score = s
			}
		}
	}
	return score
}

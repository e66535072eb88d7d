package jobdesc

import (
	"sort"
	"strings"

	"github.com/martin/tailorproof/internal/parsing"
	"github.com/martin/tailorproof/internal/types"
)

// DefaultMaxTerms caps the keyword set when the caller passes 0.
const DefaultMaxTerms = 40

// earlyTokenCount is how many leading tokens receive the position boost:
// postings front-load the role-defining terms in the title and first lines.
const earlyTokenCount = 50

// techFragments mark tokens that deserve an importance boost even at low
// frequency. A posting that mentions "aws" once still wants it covered.
var techFragments = []string{
	"sql", "aws", "azure", "gcp", "etl", "crm", "erp", "sap",
	"python", "java", "excel", "saas", "api", "ml", "ai", "pm",
}

// ExtractKeywords derives the weighted keyword set from posting text.
// Deterministic by construction: same text, same set, same order. Weight is
// raw frequency plus boosts for early position and tech-looking tokens;
// ordering is weight descending, ties broken alphabetically.
func ExtractKeywords(text string, maxTerms int) types.KeywordSet {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}

	tokens := parsing.Tokenize(text)
	counts := make(map[string]float64)
	firstSeen := make(map[string]int)

	for i, tok := range tokens {
		if isNoise(tok) {
			continue
		}
		if len(tok) < 2 {
			continue
		}
		if isNumeric(tok) {
			continue
		}
		counts[tok]++
		if _, seen := firstSeen[tok]; !seen {
			firstSeen[tok] = i
		}
	}

	keywords := make(types.KeywordSet, 0, len(counts))
	for term, count := range counts {
		weight := count
		if firstSeen[term] < earlyTokenCount {
			weight++
		}
		if isTechToken(term) {
			weight++
		}
		keywords = append(keywords, types.Keyword{Term: term, Weight: weight})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight != keywords[j].Weight {
			return keywords[i].Weight > keywords[j].Weight
		}
		return keywords[i].Term < keywords[j].Term
	})

	if len(keywords) > maxTerms {
		keywords = keywords[:maxTerms]
	}
	return keywords
}

// isTechToken reports whether the token contains a fragment from the boost
// list or looks like a versioned/compound technical term.
func isTechToken(token string) bool {
	for _, frag := range techFragments {
		if strings.Contains(token, frag) {
			return true
		}
	}
	return strings.ContainsAny(token, "+#/")
}

func isNumeric(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Package parsing provides text tokenization and normalization shared by the
// keyword extractor, scorer, and coverage evaluator. All three must agree on
// what a token is, so the rules live here and nowhere else.
package parsing

import (
	"regexp"
	"strings"
)

// tokenPattern matches word-like runs including the punctuation that appears
// inside technical terms (c++, c#, node.js, ci/cd).
var tokenPattern = regexp.MustCompile(`[A-Za-z0-9+#.\-/]+`)

// Tokenize splits text into normalized lowercase tokens. Edge punctuation is
// stripped so "AWS," and "aws" normalize to the same token, but interior
// symbols survive ("ci/cd" stays one token, "c++" keeps its pluses).
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	raw := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		norm := NormalizeToken(t)
		if norm == "" {
			continue
		}
		tokens = append(tokens, norm)
	}
	return tokens
}

// NormalizeToken lowercases a token and trims leading/trailing punctuation.
func NormalizeToken(token string) string {
	lower := strings.ToLower(token)
	return strings.Trim(lower, ".-/")
}

// TokenSet returns the deduplicated tokens of text as a set.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ContentTokenSet returns the deduplicated tokens of text with generic
// stopwords removed. This is the token universe used for keyword overlap.
func ContentTokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if IsStopword(t) {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

package parsing

// functionWords are generic English words that carry no content signal.
// Domain packages layer their own noise lists on top of this one.
var functionWords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "should", "now", "you", "your",
		"we", "our", "us", "they", "their", "them", "he", "she", "his", "her",
		"not", "no", "nor", "all", "any", "both", "each", "few", "more",
		"most", "other", "some", "only", "also", "have", "has", "had", "do",
		"does", "did", "would", "could", "may", "might", "must", "shall",
		"who", "what", "when", "where", "why", "how",
	}
	for _, w := range words {
		functionWords[w] = struct{}{}
	}
}

// IsStopword reports whether tok is a generic English function word.
// Expects an already-lowercased token.
func IsStopword(tok string) bool {
	_, ok := functionWords[tok]
	return ok
}

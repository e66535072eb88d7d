package index

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/martin/tailorproof/internal/types"
)

// Lexical is the TF-IDF backend. Claim texts become IDF-weighted term
// frequency vectors, L2-normalized at build time; similarity is the cosine
// between the query vector and a claim vector.
type Lexical struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
	vectors    map[string][]float64
	prepared   bool
}

// NewLexical creates an unbuilt TF-IDF index.
func NewLexical() *Lexical {
	return &Lexical{vocabulary: make(map[string]int)}
}

// Name identifies the backend.
func (l *Lexical) Name() string { return BackendLexical }

// Build derives the vocabulary and IDF values from the claim corpus and
// precomputes one vector per claim. The vocabulary uses a sorted term order
// so identical corpora always produce identical vectors.
func (l *Lexical) Build(_ context.Context, claims []types.Claim) error {
	if len(claims) == 0 {
		return &BuildError{Backend: l.Name(), Message: "empty claim corpus"}
	}

	df := make(map[string]int)
	for _, claim := range claims {
		seen := make(map[string]struct{})
		for _, tok := range tokenizeContent(claim.Text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return &BuildError{Backend: l.Name(), Message: "no indexable tokens in corpus"}
	}

	l.vocabulary = make(map[string]int, len(terms))
	l.idf = make([]float64, len(terms))
	n := float64(len(claims))
	for i, term := range terms {
		l.vocabulary[term] = i
		// Smoothed IDF keeps terms present in every document from zeroing out.
		l.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	l.dimension = len(terms)

	l.vectors = make(map[string][]float64, len(claims))
	for _, claim := range claims {
		l.vectors[claim.ID] = l.vectorize(claim.Text)
	}
	l.prepared = true
	return nil
}

// Similarity returns the cosine between the query text and the claim's
// stored vector. Queries with no in-vocabulary tokens and unknown claim IDs
// score 0.
func (l *Lexical) Similarity(text string, claimID string) float64 {
	if !l.prepared {
		return 0
	}
	claimVec, ok := l.vectors[claimID]
	if !ok {
		return 0
	}
	return clamp01(dot(l.vectorize(text), claimVec))
}

func (l *Lexical) vectorize(text string) []float64 {
	vec := make([]float64, l.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenizeContent(text) {
		if idx, ok := l.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * l.idf[idx]
	}
	l2normalize(vec)
	return vec
}

type lexicalState struct {
	Terms   []string             `json:"terms"`
	IDF     []float64            `json:"idf"`
	Vectors map[string][]float64 `json:"vectors"`
}

// Snapshot serializes the vocabulary, IDF table, and claim vectors. Term
// order is the build order, so the snapshot is byte-stable for identical
// corpora.
func (l *Lexical) Snapshot() ([]byte, error) {
	if !l.prepared {
		return nil, &SnapshotError{Message: "lexical index not built"}
	}
	terms := make([]string, l.dimension)
	for term, idx := range l.vocabulary {
		terms[idx] = term
	}
	return json.Marshal(lexicalState{Terms: terms, IDF: l.idf, Vectors: l.vectors})
}

// LoadSnapshot restores state produced by Snapshot.
func (l *Lexical) LoadSnapshot(data []byte) error {
	var state lexicalState
	if err := json.Unmarshal(data, &state); err != nil {
		return &SnapshotError{Message: "malformed lexical state", Cause: err}
	}
	if len(state.Terms) == 0 || len(state.Terms) != len(state.IDF) {
		return &SnapshotError{Message: "lexical state is inconsistent"}
	}

	l.vocabulary = make(map[string]int, len(state.Terms))
	for i, term := range state.Terms {
		l.vocabulary[term] = i
	}
	l.idf = state.IDF
	l.dimension = len(state.Terms)
	l.vectors = state.Vectors
	if l.vectors == nil {
		l.vectors = make(map[string][]float64)
	}
	l.prepared = true
	return nil
}

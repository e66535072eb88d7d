// Package index builds the similarity structure over the evidence corpus and
// answers "how similar is text T to claim C" for the scorer. Three backends
// share one contract; the token-overlap backend doubles as the fallback when
// a richer backend cannot be built.
package index

import (
	"context"
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/parsing"
	"github.com/martin/tailorproof/internal/types"
)

// Backend identifiers accepted by configuration.
const (
	BackendLexical   = "lexical"
	BackendOverlap   = "overlap"
	BackendEmbedding = "embedding"
)

// Index answers similarity queries over a built claim corpus.
//
// All backends honor the same contract: Similarity returns a value in [0,1],
// higher meaning closer, identical inputs always produce identical outputs,
// and unknown claim IDs score 0. A snapshot restored into a fresh instance
// reproduces the similarity outputs of the instance that produced it.
type Index interface {
	// Build consumes the claim corpus and produces the queryable structure.
	Build(ctx context.Context, claims []types.Claim) error
	// Similarity reports how similar text is to the claim with the given ID.
	Similarity(text string, claimID string) float64
	// Name identifies the backend.
	Name() string
	// Snapshot serializes the built state.
	Snapshot() ([]byte, error)
	// LoadSnapshot restores state produced by Snapshot on the same backend.
	LoadSnapshot(data []byte) error
}

// Result is the outcome of Build: the usable index, plus whether the
// configured backend had to be replaced by the overlap fallback.
type Result struct {
	Index          Index
	Fallback       bool
	FallbackReason string
}

// New instantiates the backend named by cfg without building it. The
// embedder may be nil unless the embedding backend is requested.
func New(cfg config.IndexConfig, embedder Embedder) (Index, error) {
	switch cfg.Backend {
	case BackendLexical, "":
		return NewLexical(), nil
	case BackendOverlap:
		return NewOverlap(), nil
	case BackendEmbedding:
		return NewEmbeddingIndex(embedder), nil
	default:
		return nil, &BuildError{Backend: cfg.Backend, Message: "unknown index backend"}
	}
}

// Build constructs and builds the configured backend over the claims. If the
// backend cannot be built, the token-overlap fallback is substituted and the
// degradation is logged and flagged in the result; a degraded index never
// fails the run.
func Build(ctx context.Context, cfg config.IndexConfig, claims []types.Claim, embedder Embedder, log *zap.Logger) (*Result, error) {
	idx, err := New(cfg, embedder)
	if err != nil {
		return nil, err
	}

	if err := idx.Build(ctx, claims); err != nil {
		if idx.Name() == BackendOverlap {
			return nil, err
		}
		log.Warn("index backend unavailable, falling back to token overlap",
			zap.String("backend", idx.Name()),
			zap.Error(err))

		fb := NewOverlap()
		if ferr := fb.Build(ctx, claims); ferr != nil {
			return nil, ferr
		}
		return &Result{Index: fb, Fallback: true, FallbackReason: err.Error()}, nil
	}

	return &Result{Index: idx}, nil
}

// envelope wraps a backend's serialized state with its name so Load can
// reconstruct the right implementation.
type envelope struct {
	Backend string          `json:"backend"`
	State   json.RawMessage `json:"state"`
}

// Save serializes an index for later reload. The output is deterministic for
// identical index state.
func Save(idx Index) ([]byte, error) {
	state, err := idx.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Backend: idx.Name(), State: state})
}

// Load restores an index saved with Save. The embedder is required only when
// the snapshot was produced by the embedding backend; pass nil otherwise.
func Load(data []byte, embedder Embedder) (Index, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &SnapshotError{Message: "malformed snapshot envelope", Cause: err}
	}
	if env.Backend == BackendEmbedding && embedder == nil {
		return nil, &SnapshotError{Message: "embedding snapshot requires an embedder to answer queries"}
	}

	idx, err := New(config.IndexConfig{Backend: env.Backend}, embedder)
	if err != nil {
		return nil, err
	}
	if err := idx.LoadSnapshot(env.State); err != nil {
		return nil, err
	}
	return idx, nil
}

// tokenizeContent is the shared claim/query tokenizer: lowercased word
// tokens with generic stopwords removed.
func tokenizeContent(text string) []string {
	raw := parsing.Tokenize(text)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if parsing.IsStopword(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenizeContent(text) {
		set[tok] = struct{}{}
	}
	return set
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func l2normalize(vec []float64) {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

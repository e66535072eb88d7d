package index

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/martin/tailorproof/internal/types"
)

// Embedder turns text into a dense vector. The Gemini-backed implementation
// lives in the llm package; tests supply a local fake.
type Embedder interface {
	// Embed returns the dense vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Model names the embedding model, recorded in snapshots so restored
	// vectors are never mixed with a different model's query vectors.
	Model() string
}

const (
	// embedConcurrency bounds parallel embedding calls during Build.
	embedConcurrency = 4
	// embedTimeout bounds a single query-time embedding call.
	embedTimeout = 15 * time.Second
)

// EmbeddingIndex is the dense backend. Claims are embedded once at build
// time; queries are embedded on demand and compared by cosine. A query-time
// embedder failure degrades that query to the token-overlap fallback built
// over the same claims, so a flaky provider can never fail a run.
type EmbeddingIndex struct {
	embedder Embedder
	model    string
	vectors  map[string][]float64
	fallback *Overlap

	mu         sync.Mutex
	queryCache map[string][]float64
	degraded   bool
}

// NewEmbeddingIndex creates an unbuilt dense index around the embedder.
func NewEmbeddingIndex(embedder Embedder) *EmbeddingIndex {
	e := &EmbeddingIndex{
		embedder:   embedder,
		queryCache: make(map[string][]float64),
		fallback:   NewOverlap(),
	}
	if embedder != nil {
		e.model = embedder.Model()
	}
	return e
}

// Name identifies the backend.
func (e *EmbeddingIndex) Name() string { return BackendEmbedding }

// Build embeds every claim, a bounded number in flight at a time, and also
// builds the internal overlap fallback.
func (e *EmbeddingIndex) Build(ctx context.Context, claims []types.Claim) error {
	if e.embedder == nil {
		return &BuildError{Backend: e.Name(), Message: "no embedder configured (missing API credential?)"}
	}
	if len(claims) == 0 {
		return &BuildError{Backend: e.Name(), Message: "empty claim corpus"}
	}

	vecs := make([][]float64, len(claims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, claim := range claims {
		g.Go(func() error {
			vec, err := e.embedder.Embed(gctx, claim.Text)
			if err != nil {
				return &BuildError{Backend: e.Name(), Message: "embedding claim " + claim.ID, Cause: err}
			}
			l2normalize(vec)
			vecs[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.vectors = make(map[string][]float64, len(claims))
	for i, claim := range claims {
		e.vectors[claim.ID] = vecs[i]
	}
	return e.fallback.Build(ctx, claims)
}

// Similarity returns the cosine between the query embedding and the claim's
// stored vector. If the query cannot be embedded, the overlap fallback
// answers instead and the index is marked degraded.
func (e *EmbeddingIndex) Similarity(text string, claimID string) float64 {
	claimVec, ok := e.vectors[claimID]
	if !ok {
		return 0
	}
	queryVec, ok := e.queryVector(text)
	if !ok {
		return e.fallback.Similarity(text, claimID)
	}
	return clamp01(dot(queryVec, claimVec))
}

// queryVector embeds text with a bounded timeout, caching both successes and
// failures so repeated queries stay deterministic within a run.
func (e *EmbeddingIndex) queryVector(text string) ([]float64, bool) {
	e.mu.Lock()
	if vec, cached := e.queryCache[text]; cached {
		e.mu.Unlock()
		return vec, vec != nil
	}
	e.mu.Unlock()

	if e.embedder == nil {
		e.markFailed(text)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), embedTimeout)
	defer cancel()
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		e.markFailed(text)
		return nil, false
	}
	l2normalize(vec)

	e.mu.Lock()
	e.queryCache[text] = vec
	e.mu.Unlock()
	return vec, true
}

func (e *EmbeddingIndex) markFailed(text string) {
	e.mu.Lock()
	e.queryCache[text] = nil
	e.degraded = true
	e.mu.Unlock()
}

// Degraded reports whether any query fell back to token overlap because the
// embedder was unavailable at query time.
func (e *EmbeddingIndex) Degraded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degraded
}

type embeddingState struct {
	Model    string               `json:"model"`
	Vectors  map[string][]float64 `json:"vectors"`
	Fallback json.RawMessage      `json:"fallback"`
}

// Snapshot serializes the claim vectors, the producing model's name, and the
// internal fallback state.
func (e *EmbeddingIndex) Snapshot() ([]byte, error) {
	if e.vectors == nil {
		return nil, &SnapshotError{Message: "embedding index not built"}
	}
	fb, err := e.fallback.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(embeddingState{Model: e.model, Vectors: e.vectors, Fallback: fb})
}

// LoadSnapshot restores state produced by Snapshot. It refuses snapshots
// from a different embedding model than the configured embedder's.
func (e *EmbeddingIndex) LoadSnapshot(data []byte) error {
	var state embeddingState
	if err := json.Unmarshal(data, &state); err != nil {
		return &SnapshotError{Message: "malformed embedding state", Cause: err}
	}
	if len(state.Vectors) == 0 {
		return &SnapshotError{Message: "embedding state has no vectors"}
	}
	if e.embedder != nil && e.embedder.Model() != state.Model {
		return &SnapshotError{Message: "snapshot model " + state.Model + " does not match configured model " + e.embedder.Model()}
	}
	if err := e.fallback.LoadSnapshot(state.Fallback); err != nil {
		return err
	}
	e.model = state.Model
	e.vectors = state.Vectors
	return nil
}

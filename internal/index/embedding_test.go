package index

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder hashes tokens into a fixed-dimension bag vector, so similar
// texts get similar vectors without any network dependency.
type fakeEmbedder struct {
	dim  int
	fail bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if f.fail {
		return nil, errors.New("embedder offline")
	}
	vec := make([]float64, f.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%f.dim]++
	}
	return vec, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embedding-001" }

func TestEmbeddingIndex_Build(t *testing.T) {
	idx := NewEmbeddingIndex(&fakeEmbedder{dim: 64})
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	assert.Equal(t, BackendEmbedding, idx.Name())
	assert.False(t, idx.Degraded())
}

func TestEmbeddingIndex_Build_NoEmbedder(t *testing.T) {
	idx := NewEmbeddingIndex(nil)
	err := idx.Build(context.Background(), testClaims())
	require.Error(t, err)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BackendEmbedding, be.Backend)
}

func TestEmbeddingIndex_Build_EmbedderFailure(t *testing.T) {
	idx := NewEmbeddingIndex(&fakeEmbedder{dim: 64, fail: true})
	require.Error(t, idx.Build(context.Background(), testClaims()))
}

func TestEmbeddingIndex_Similarity(t *testing.T) {
	idx := NewEmbeddingIndex(&fakeEmbedder{dim: 256})
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	// Querying with a claim's own text is a perfect match under the fake.
	self := idx.Similarity("Built Python data pipelines on AWS processing millions of daily events", "exp-0-b0")
	assert.InDelta(t, 1.0, self, 1e-9)

	assert.Zero(t, idx.Similarity("python", "no-such-claim"))
}

func TestEmbeddingIndex_QueryFailureFallsBack(t *testing.T) {
	embedder := &fakeEmbedder{dim: 64}
	idx := NewEmbeddingIndex(embedder)
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	embedder.fail = true
	got := idx.Similarity("python aws pipelines", "exp-0-b0")

	// The overlap fallback answered, and the degradation is visible.
	assert.Greater(t, got, 0.0)
	assert.True(t, idx.Degraded())

	// Failures are sticky per query text: recovery of the embedder does not
	// change answers within the same run.
	embedder.fail = false
	assert.Equal(t, got, idx.Similarity("python aws pipelines", "exp-0-b0"))
}

func TestEmbeddingIndex_SnapshotRoundTrip(t *testing.T) {
	embedder := &fakeEmbedder{dim: 128}
	built := NewEmbeddingIndex(embedder)
	require.NoError(t, built.Build(context.Background(), testClaims()))

	data, err := built.Snapshot()
	require.NoError(t, err)

	restored := NewEmbeddingIndex(embedder)
	require.NoError(t, restored.LoadSnapshot(data))

	for _, claim := range testClaims() {
		assert.Equal(t,
			built.Similarity("python aws data pipelines", claim.ID),
			restored.Similarity("python aws data pipelines", claim.ID))
	}
}

func TestEmbeddingIndex_LoadSnapshot_ModelMismatch(t *testing.T) {
	built := NewEmbeddingIndex(&fakeEmbedder{dim: 32})
	require.NoError(t, built.Build(context.Background(), testClaims()))

	data, err := built.Snapshot()
	require.NoError(t, err)

	other := &fakeEmbedder{dim: 32}
	restored := NewEmbeddingIndex(otherModel{other})
	err = restored.LoadSnapshot(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

// otherModel wraps an embedder under a different model name.
type otherModel struct{ *fakeEmbedder }

func (otherModel) Model() string { return "different-model" }

package index

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    string
	}{
		{name: "lexical", backend: "lexical", want: BackendLexical},
		{name: "overlap", backend: "overlap", want: BackendOverlap},
		{name: "embedding", backend: "embedding", want: BackendEmbedding},
		{name: "default is lexical", backend: "", want: BackendLexical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := New(config.IndexConfig{Backend: tt.backend}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, idx.Name())
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(config.IndexConfig{Backend: "faiss"}, nil)
	require.Error(t, err)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "faiss", be.Backend)
}

func TestBuild_Lexical(t *testing.T) {
	res, err := Build(context.Background(), config.IndexConfig{Backend: "lexical"}, testClaims(), nil, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	assert.Equal(t, BackendLexical, res.Index.Name())
}

func TestBuild_FallbackWithoutEmbedder(t *testing.T) {
	// Embedding backend with no embedder degrades to overlap, flagged.
	res, err := Build(context.Background(), config.IndexConfig{Backend: "embedding"}, testClaims(), nil, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, BackendOverlap, res.Index.Name())
	assert.NotEmpty(t, res.FallbackReason)

	// The degraded index still answers queries.
	assert.Greater(t, res.Index.Similarity("python aws", "exp-0-b0"), 0.0)
}

func TestBuild_EmptyCorpusFails(t *testing.T) {
	_, err := Build(context.Background(), config.IndexConfig{Backend: "overlap"}, nil, nil, zap.NewNop())
	require.Error(t, err)
}

// rankClaims orders claim IDs by similarity to the query, best first, with
// the ID as deterministic tie-break.
func rankClaims(idx Index, query string, claims []types.Claim) []string {
	ids := make([]string, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	sort.SliceStable(ids, func(i, j int) bool {
		si, sj := idx.Similarity(query, ids[i]), idx.Similarity(query, ids[j])
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func TestFallbackRankingEquivalence(t *testing.T) {
	claims := testClaims()
	query := "python aws data pipelines"

	lexical := NewLexical()
	require.NoError(t, lexical.Build(context.Background(), claims))
	overlap := NewOverlap()
	require.NoError(t, overlap.Build(context.Background(), claims))

	// Both backends agree on the clear winner and stay inside [0,1].
	lexRank := rankClaims(lexical, query, claims)
	ovRank := rankClaims(overlap, query, claims)
	assert.Equal(t, "exp-0-b0", lexRank[0])
	assert.Equal(t, "exp-0-b0", ovRank[0])

	for _, c := range claims {
		for _, idx := range []Index{lexical, overlap} {
			s := idx.Similarity(query, c.ID)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, backend := range []string{"lexical", "overlap"} {
		t.Run(backend, func(t *testing.T) {
			res, err := Build(context.Background(), config.IndexConfig{Backend: backend}, testClaims(), nil, zap.NewNop())
			require.NoError(t, err)

			data, err := Save(res.Index)
			require.NoError(t, err)

			restored, err := Load(data, nil)
			require.NoError(t, err)
			assert.Equal(t, backend, restored.Name())

			for _, q := range []string{"python aws data pipelines", "team leadership", "kubernetes"} {
				for _, claim := range testClaims() {
					assert.Equal(t, res.Index.Similarity(q, claim.ID), restored.Similarity(q, claim.ID),
						"query %q claim %s", q, claim.ID)
				}
			}
		})
	}
}

func TestLoad_MalformedEnvelope(t *testing.T) {
	_, err := Load([]byte("not json"), nil)
	require.Error(t, err)
}

func TestLoad_EmbeddingRequiresEmbedder(t *testing.T) {
	embedder := &fakeEmbedder{dim: 16}
	idx := NewEmbeddingIndex(embedder)
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	data, err := Save(idx)
	require.NoError(t, err)

	_, err = Load(data, nil)
	require.Error(t, err)

	restored, err := Load(data, embedder)
	require.NoError(t, err)
	assert.Equal(t, BackendEmbedding, restored.Name())
}

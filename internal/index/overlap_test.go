package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlap_Similarity(t *testing.T) {
	idx := NewOverlap()
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	// A claim queried with its own text is a perfect match.
	self := idx.Similarity("Built Python data pipelines on AWS processing millions of daily events", "exp-0-b0")
	assert.InDelta(t, 1.0, self, 1e-9)

	// No shared tokens scores zero.
	assert.Zero(t, idx.Similarity("gardening watercolor", "exp-0-b0"))

	// Partial overlap lands strictly between.
	partial := idx.Similarity("python aws", "exp-0-b0")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestOverlap_Similarity_UnknownClaim(t *testing.T) {
	idx := NewOverlap()
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	assert.Zero(t, idx.Similarity("python", "no-such-claim"))
}

func TestOverlap_Build_EmptyCorpus(t *testing.T) {
	err := NewOverlap().Build(context.Background(), nil)
	require.Error(t, err)
}

func TestOverlap_SnapshotRoundTrip(t *testing.T) {
	built := NewOverlap()
	require.NoError(t, built.Build(context.Background(), testClaims()))

	data, err := built.Snapshot()
	require.NoError(t, err)

	restored := NewOverlap()
	require.NoError(t, restored.LoadSnapshot(data))

	for _, claim := range testClaims() {
		assert.Equal(t,
			built.Similarity("python aws kubernetes", claim.ID),
			restored.Similarity("python aws kubernetes", claim.ID))
	}
}

func TestOverlap_SnapshotDeterministic(t *testing.T) {
	idx := NewOverlap()
	require.NoError(t, idx.Build(context.Background(), testClaims()))

	a, err := idx.Snapshot()
	require.NoError(t, err)
	b, err := idx.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

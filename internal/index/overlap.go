package index

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"github.com/martin/tailorproof/internal/types"
)

// Overlap is the dependency-free fallback backend. Similarity is the shared
// unique-token count normalized by the geometric mean of both token set
// sizes, which is the cosine of binary token-incidence vectors. That keeps
// the [0,1] range and the ranking behavior of the vector backends.
type Overlap struct {
	tokens map[string]map[string]struct{}
}

// NewOverlap creates an unbuilt token-overlap index.
func NewOverlap() *Overlap {
	return &Overlap{}
}

// Name identifies the backend.
func (o *Overlap) Name() string { return BackendOverlap }

// Build records the normalized token set of every claim.
func (o *Overlap) Build(_ context.Context, claims []types.Claim) error {
	if len(claims) == 0 {
		return &BuildError{Backend: o.Name(), Message: "empty claim corpus"}
	}
	o.tokens = make(map[string]map[string]struct{}, len(claims))
	for _, claim := range claims {
		o.tokens[claim.ID] = tokenSet(claim.Text)
	}
	return nil
}

// Similarity returns the normalized shared-token count between the query
// text and the claim. Unknown claim IDs and token-free inputs score 0.
func (o *Overlap) Similarity(text string, claimID string) float64 {
	claimToks, ok := o.tokens[claimID]
	if !ok || len(claimToks) == 0 {
		return 0
	}
	queryToks := tokenSet(text)
	if len(queryToks) == 0 {
		return 0
	}

	shared := 0
	for tok := range queryToks {
		if _, ok := claimToks[tok]; ok {
			shared++
		}
	}
	return clamp01(float64(shared) / math.Sqrt(float64(len(queryToks))*float64(len(claimToks))))
}

type overlapState struct {
	Tokens map[string][]string `json:"tokens"`
}

// Snapshot serializes the per-claim token sets with tokens sorted, so the
// snapshot is byte-stable for identical corpora.
func (o *Overlap) Snapshot() ([]byte, error) {
	if o.tokens == nil {
		return nil, &SnapshotError{Message: "overlap index not built"}
	}
	state := overlapState{Tokens: make(map[string][]string, len(o.tokens))}
	for claimID, set := range o.tokens {
		toks := make([]string, 0, len(set))
		for tok := range set {
			toks = append(toks, tok)
		}
		sort.Strings(toks)
		state.Tokens[claimID] = toks
	}
	return json.Marshal(state)
}

// LoadSnapshot restores state produced by Snapshot.
func (o *Overlap) LoadSnapshot(data []byte) error {
	var state overlapState
	if err := json.Unmarshal(data, &state); err != nil {
		return &SnapshotError{Message: "malformed overlap state", Cause: err}
	}
	if state.Tokens == nil {
		return &SnapshotError{Message: "overlap state is empty"}
	}
	o.tokens = make(map[string]map[string]struct{}, len(state.Tokens))
	for claimID, toks := range state.Tokens {
		set := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			set[tok] = struct{}{}
		}
		o.tokens[claimID] = set
	}
	return nil
}

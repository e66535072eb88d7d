// Package scoring blends semantic similarity and lexical keyword overlap
// into one relevance score per claim, relative to a job description.
package scoring

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/index"
	"github.com/martin/tailorproof/internal/parsing"
	"github.com/martin/tailorproof/internal/types"
)

// scoreConcurrency bounds parallel claim scoring in ScoreAll.
const scoreConcurrency = 8

// Scorer computes blended relevance scores over a built index. Scoring is a
// pure function of (claim, job description, index state): identical inputs
// always produce identical scores, with no hidden tie-breaking.
type Scorer struct {
	index   index.Index
	weights config.Weights
}

// NewScorer creates a scorer over the index with the given blend weights.
// The weights are assumed validated (non-negative, summing to 1).
func NewScorer(idx index.Index, weights config.Weights) *Scorer {
	return &Scorer{index: idx, weights: weights}
}

// ScoreClaim scores one claim: semantic is the index similarity between the
// full job text and the claim, lexical is the fraction of the claim's
// content tokens that are job keywords. Claims with no content tokens score
// zero outright.
func (s *Scorer) ScoreClaim(claim *types.Claim, job *types.JobDescription) types.ScoredClaim {
	tokens := parsing.ContentTokenSet(claim.Text)
	if len(tokens) == 0 {
		return types.ScoredClaim{Claim: claim}
	}

	semantic := s.index.Similarity(job.Text, claim.ID)

	var matched []string
	for _, kw := range job.Keywords {
		if _, ok := tokens[kw.Term]; ok {
			matched = append(matched, kw.Term)
		}
	}
	lexical := float64(len(matched)) / float64(len(tokens))

	return types.ScoredClaim{
		Claim:           claim,
		Score:           s.weights.Semantic*semantic + s.weights.Lexical*lexical,
		Semantic:        semantic,
		Lexical:         lexical,
		MatchedKeywords: matched,
	}
}

// ScoreAll scores every claim, a bounded number in parallel. Claims share no
// mutable state, so the only coordination is the concurrency limit; output
// order matches input order and the only possible error is cancellation.
func (s *Scorer) ScoreAll(ctx context.Context, claims []types.Claim, job *types.JobDescription) ([]types.ScoredClaim, error) {
	out := make([]types.ScoredClaim, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i := range claims {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.ScoreClaim(&claims[i], job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

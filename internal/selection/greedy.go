package selection

import (
	"sort"

	"github.com/martin/tailorproof/internal/types"
)

// coveragePenalty is the fraction of a candidate's score forfeited when all
// of its matched keywords are already covered by earlier picks. Partial
// overlap scales linearly. A pure diversity heuristic, not a set-cover
// solve: greedy-with-penalty, not guaranteed-optimal.
const coveragePenalty = 0.5

// selectSection fills one section's budget. Candidates are ordered by score
// descending with original profile order as the tie-break, then picked
// greedily by penalty-adjusted score; among equal adjusted scores the
// earlier candidate in that order wins. Duplicate claim identities are
// collapsed to their first (highest-ranked) occurrence.
func selectSection(candidates []types.ScoredClaim, budget int) []types.SelectedClaim {
	if budget <= 0 || len(candidates) == 0 {
		return nil
	}

	ordered := make([]types.ScoredClaim, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Claim.Ordinal < ordered[j].Claim.Ordinal
	})

	seen := make(map[string]struct{}, len(ordered))
	pool := ordered[:0]
	for _, c := range ordered {
		if _, dup := seen[c.Claim.ID]; dup {
			continue
		}
		seen[c.Claim.ID] = struct{}{}
		pool = append(pool, c)
	}

	covered := make(map[string]struct{})
	taken := make([]bool, len(pool))
	picks := make([]types.SelectedClaim, 0, budget)
	for len(picks) < budget {
		best := -1
		bestScore := 0.0
		for i, c := range pool {
			if taken[i] {
				continue
			}
			adjusted := adjustedScore(c, covered)
			if best == -1 || adjusted > bestScore {
				best, bestScore = i, adjusted
			}
		}
		if best == -1 {
			break
		}

		taken[best] = true
		pick := pool[best]
		picks = append(picks, types.SelectedClaim{
			Claim:       pick.Claim,
			Score:       pick.Score,
			DisplayText: pick.Claim.Text,
		})
		for _, kw := range pick.MatchedKeywords {
			covered[kw] = struct{}{}
		}
	}
	return picks
}

// adjustedScore discounts a candidate by how much of its keyword coverage is
// already provided by selected claims.
func adjustedScore(c types.ScoredClaim, covered map[string]struct{}) float64 {
	if len(c.MatchedKeywords) == 0 || len(covered) == 0 {
		return c.Score
	}
	overlap := 0
	for _, kw := range c.MatchedKeywords {
		if _, ok := covered[kw]; ok {
			overlap++
		}
	}
	frac := float64(overlap) / float64(len(c.MatchedKeywords))
	return c.Score * (1 - coveragePenalty*frac)
}

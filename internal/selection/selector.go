// Package selection chooses the top-scoring non-duplicate claims per section
// within budget, trading a little raw score for keyword coverage breadth.
package selection

import (
	"fmt"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/types"
)

// Selector picks claims into per-section budgets. Selection is fully
// deterministic: identical scored input always produces identical output.
type Selector struct {
	budgets config.Budgets
}

// NewSelector creates a selector with both budget modes loaded.
func NewSelector(budgets config.Budgets) *Selector {
	return &Selector{budgets: budgets}
}

// Select partitions scored claims by section and fills each section's budget
// greedily. Claims without source ids are refused outright rather than
// silently dropped: the truthfulness invariant holds for every claim that
// can reach the output, user-added sentinel claims included.
func (s *Selector) Select(scored []types.ScoredClaim, compact bool) (*types.SelectionResult, error) {
	for _, sc := range scored {
		if sc.Claim == nil {
			return nil, &Error{Message: "scored claim with nil claim"}
		}
		if !sc.Claim.HasSources() {
			return nil, &Error{Message: fmt.Sprintf("claim %s has no source ids and cannot be selected", sc.Claim.ID)}
		}
	}

	budgets := s.budgets.Standard
	if compact {
		budgets = s.budgets.Compact
	}

	bySection := make(map[types.Section][]types.ScoredClaim)
	for _, sc := range scored {
		bySection[sc.Claim.Section] = append(bySection[sc.Claim.Section], sc)
	}

	result := &types.SelectionResult{
		Sections: make(map[types.Section][]types.SelectedClaim),
		Compact:  compact,
	}
	for _, section := range types.Sections() {
		picks := selectSection(bySection[section], budgets.Get(section))
		if len(picks) > 0 {
			result.Sections[section] = picks
		}
	}
	return result, nil
}

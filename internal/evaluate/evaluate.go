// Package evaluate quantifies how well the assembled output covers the job
// keyword set. Evaluation is a pure function over already-validated data: it
// never errors and recomputing it any number of times yields the same report.
package evaluate

import (
	"fmt"
	"math"
	"sort"

	"github.com/martin/tailorproof/internal/parsing"
	"github.com/martin/tailorproof/internal/types"
)

const (
	// lowCoverageThreshold triggers the generic low-coverage hint.
	lowCoverageThreshold = 0.35
	// maxMissing caps the missing-keyword list in the report.
	maxMissing = 15
	// maxEvidenceHints caps keyword-specific suggestions.
	maxEvidenceHints = 5
)

// Evaluate scores finalText against the job keyword set. Missing keywords
// are ordered by descending weight, ties broken alphabetically. Suggestions
// only ever surface existing unselected claims that already contain a
// missing keyword; they never propose new content.
func Evaluate(keywords types.KeywordSet, finalText string, selection *types.SelectionResult, corpus []types.Claim) types.EvaluationReport {
	report := types.EvaluationReport{}
	if len(keywords) == 0 {
		return report
	}

	tokens := parsing.TokenSet(finalText)
	covered := 0
	var missing []string
	for _, kw := range keywords {
		if _, ok := tokens[kw.Term]; ok {
			covered++
		} else {
			missing = append(missing, kw.Term)
		}
	}

	report.Coverage = math.Round(float64(covered)/float64(len(keywords))*1000) / 1000
	sort.SliceStable(missing, func(i, j int) bool {
		wi, wj := keywords.Weight(missing[i]), keywords.Weight(missing[j])
		if wi != wj {
			return wi > wj
		}
		return missing[i] < missing[j]
	})
	if len(missing) > maxMissing {
		missing = missing[:maxMissing]
	}
	report.MissingKeywords = missing
	report.Suggestions = suggestions(report, selection, corpus)
	return report
}

// suggestions builds the hint list: keyword-specific pointers at unselected
// evidence first, then the generic health signals.
func suggestions(report types.EvaluationReport, selection *types.SelectionResult, corpus []types.Claim) []string {
	var hints []string

	selected := selectedIDs(selection)
	for _, term := range report.MissingKeywords {
		if len(hints) >= maxEvidenceHints {
			break
		}
		for i := range corpus {
			claim := &corpus[i]
			if _, ok := selected[claim.ID]; ok {
				continue
			}
			if _, ok := parsing.TokenSet(claim.Text)[term]; !ok {
				continue
			}
			hints = append(hints, fmt.Sprintf("unselected evidence mentions %q: %s", term, claim.Text))
			break
		}
	}

	if report.Coverage < lowCoverageThreshold {
		hints = append(hints, "low keyword coverage; consider adding relevant bullets or skills to the profile")
	}
	if selection == nil || selection.Total() == 0 {
		hints = append(hints, "no claims selected; check the profile and the section budgets")
	} else if selection.Count(types.SectionSkills) == 0 {
		hints = append(hints, "skills section is empty; include key tools and domains from the posting")
	}
	return hints
}

func selectedIDs(selection *types.SelectionResult) map[string]struct{} {
	ids := make(map[string]struct{})
	if selection == nil {
		return ids
	}
	for _, picks := range selection.Sections {
		for _, pick := range picks {
			ids[pick.Claim.ID] = struct{}{}
		}
	}
	return ids
}

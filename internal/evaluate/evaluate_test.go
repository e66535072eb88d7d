package evaluate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin/tailorproof/internal/types"
)

func selectionOf(claims ...*types.Claim) *types.SelectionResult {
	sections := make(map[types.Section][]types.SelectedClaim)
	for _, c := range claims {
		sections[c.Section] = append(sections[c.Section], types.SelectedClaim{
			Claim:       c,
			DisplayText: c.Text,
		})
	}
	return &types.SelectionResult{Sections: sections}
}

func TestEvaluate_FullCoverageRoundTrip(t *testing.T) {
	keywords := types.KeywordSet{
		{Term: "python", Weight: 3},
		{Term: "aws", Weight: 2},
		{Term: "leadership", Weight: 2},
	}
	final := "Led Python migration on AWS infra with strong leadership"

	report := Evaluate(keywords, final, selectionOf(), nil)

	assert.Equal(t, 1.0, report.Coverage)
	assert.Empty(t, report.MissingKeywords)
}

func TestEvaluate_MissingOrderedByWeightThenAlpha(t *testing.T) {
	keywords := types.KeywordSet{
		{Term: "python", Weight: 3},
		{Term: "leadership", Weight: 2},
		{Term: "docker", Weight: 2},
		{Term: "terraform", Weight: 1},
	}
	final := "Built python services"

	report := Evaluate(keywords, final, selectionOf(), nil)

	assert.InDelta(t, 0.25, report.Coverage, 1e-9)
	assert.Equal(t, []string{"docker", "leadership", "terraform"}, report.MissingKeywords)
}

func TestEvaluate_EmptyKeywordSet(t *testing.T) {
	report := Evaluate(nil, "anything at all", selectionOf(), nil)

	assert.Zero(t, report.Coverage)
	assert.Empty(t, report.MissingKeywords)
	assert.Empty(t, report.Suggestions)
}

func TestEvaluate_SuggestsUnselectedEvidence(t *testing.T) {
	keywords := types.KeywordSet{
		{Term: "python", Weight: 3},
		{Term: "kubernetes", Weight: 2},
	}
	selected := &types.Claim{
		ID:        "exp-0-b0",
		Text:      "Built Python data pipelines",
		SourceIDs: []string{"resumeA"},
		Section:   types.SectionExperience,
	}
	unselected := types.Claim{
		ID:        "exp-1-b0",
		Text:      "Deployed Kubernetes clusters across three regions",
		SourceIDs: []string{"resumeA"},
		Section:   types.SectionExperience,
	}

	report := Evaluate(keywords, selected.Text, selectionOf(selected), []types.Claim{*selected, unselected})

	require.NotEmpty(t, report.Suggestions)
	assert.Contains(t, report.Suggestions[0], `"kubernetes"`)
	assert.Contains(t, report.Suggestions[0], unselected.Text)
}

func TestEvaluate_NeverSuggestsSelectedOrAbsentEvidence(t *testing.T) {
	keywords := types.KeywordSet{
		{Term: "python", Weight: 3},
		{Term: "golang", Weight: 2},
	}
	selected := &types.Claim{
		ID:        "exp-0-b0",
		Text:      "Built Python data pipelines",
		SourceIDs: []string{"resumeA"},
		Section:   types.SectionExperience,
	}

	// No unselected claim mentions golang, so no evidence hint may appear.
	report := Evaluate(keywords, selected.Text, selectionOf(selected), []types.Claim{*selected})

	for _, s := range report.Suggestions {
		assert.NotContains(t, s, "golang")
	}
}

func TestEvaluate_LowCoverageHint(t *testing.T) {
	keywords := types.KeywordSet{
		{Term: "python", Weight: 3},
		{Term: "aws", Weight: 2},
		{Term: "terraform", Weight: 2},
	}

	report := Evaluate(keywords, "Organized the company picnic", selectionOf(), nil)

	found := false
	for _, s := range report.Suggestions {
		if strings.Contains(s, "low keyword coverage") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluate_EmptySelectionHint(t *testing.T) {
	keywords := types.KeywordSet{{Term: "python", Weight: 1}}

	report := Evaluate(keywords, "", selectionOf(), nil)

	found := false
	for _, s := range report.Suggestions {
		if strings.Contains(s, "no claims selected") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluate_EmptySkillsHint(t *testing.T) {
	keywords := types.KeywordSet{{Term: "python", Weight: 1}}
	exp := &types.Claim{
		ID:        "exp-0-b0",
		Text:      "Built Python data pipelines",
		SourceIDs: []string{"resumeA"},
		Section:   types.SectionExperience,
	}

	report := Evaluate(keywords, exp.Text, selectionOf(exp), nil)

	found := false
	for _, s := range report.Suggestions {
		if strings.Contains(s, "skills section is empty") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluate_Deterministic(t *testing.T) {
	keywords := types.KeywordSet{
		{Term: "python", Weight: 3},
		{Term: "aws", Weight: 2},
		{Term: "kafka", Weight: 1},
	}
	corpus := []types.Claim{
		{ID: "exp-0-b0", Text: "Ran Kafka pipelines", SourceIDs: []string{"r"}, Section: types.SectionExperience},
	}

	first := Evaluate(keywords, "Built python services", selectionOf(), corpus)
	second := Evaluate(keywords, "Built python services", selectionOf(), corpus)

	assert.Equal(t, first, second)
}

func TestEvaluate_MissingListCapped(t *testing.T) {
	var keywords types.KeywordSet
	for i := 0; i < 20; i++ {
		keywords = append(keywords, types.Keyword{Term: fmt.Sprintf("term%02d", i), Weight: 1})
	}

	report := Evaluate(keywords, "nothing relevant here", selectionOf(), nil)

	assert.Len(t, report.MissingKeywords, 15)
}

package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/martin/tailorproof/internal/types"
)

func claim(id, text, role string, section types.Section) *types.Claim {
	return &types.Claim{
		ID:          id,
		Text:        text,
		SourceIDs:   []string{"resumeA"},
		Section:     section,
		RoleContext: role,
	}
}

func pick(c *types.Claim, display string) types.SelectedClaim {
	if display == "" {
		display = c.Text
	}
	return types.SelectedClaim{Claim: c, DisplayText: display}
}

func TestAssemble(t *testing.T) {
	selection := &types.SelectionResult{
		Sections: map[types.Section][]types.SelectedClaim{
			types.SectionExperience: {
				pick(claim("exp-0-b0", "Grew revenue by 20%", "Growth Engineer at Acme", types.SectionExperience), ""),
				pick(claim("exp-0-b1", "Cut infrastructure costs", "Growth Engineer at Acme", types.SectionExperience), ""),
			},
			types.SectionSkills: {
				pick(claim("skill-0", "Python", "", types.SectionSkills), ""),
				pick(claim("skill-1", "AWS", "", types.SectionSkills), ""),
			},
		},
	}

	got := Assemble(selection)

	want := "EXPERIENCE\n" +
		"Growth Engineer at Acme\n" +
		"- Grew revenue by 20%\n" +
		"- Cut infrastructure costs\n" +
		"\n" +
		"SKILLS\n" +
		"Python, AWS\n"
	assert.Equal(t, want, got)
}

func TestAssemble_SectionOrder(t *testing.T) {
	selection := &types.SelectionResult{
		Sections: map[types.Section][]types.SelectedClaim{
			types.SectionSkills: {
				pick(claim("skill-0", "Go", "", types.SectionSkills), ""),
			},
			types.SectionEducation: {
				pick(claim("edu-0", "B.S. Computer Science", "", types.SectionEducation), ""),
			},
			types.SectionProject: {
				pick(claim("proj-0-b0", "Built an open source scheduler", "scheduler", types.SectionProject), ""),
			},
			types.SectionExperience: {
				pick(claim("exp-0-b0", "Led the platform team", "Staff Engineer", types.SectionExperience), ""),
			},
		},
	}

	got := Assemble(selection)

	expIdx := strings.Index(got, "EXPERIENCE")
	projIdx := strings.Index(got, "PROJECTS")
	eduIdx := strings.Index(got, "EDUCATION")
	skillIdx := strings.Index(got, "SKILLS")
	assert.True(t, expIdx < projIdx && projIdx < eduIdx && eduIdx < skillIdx)
}

func TestAssemble_GroupsByRoleContext(t *testing.T) {
	selection := &types.SelectionResult{
		Sections: map[types.Section][]types.SelectedClaim{
			types.SectionExperience: {
				pick(claim("exp-0-b0", "Shipped the billing system", "Engineer at Acme", types.SectionExperience), ""),
				pick(claim("exp-1-b0", "Ran the migration", "Engineer at Beta", types.SectionExperience), ""),
				pick(claim("exp-0-b1", "Scaled the API", "Engineer at Acme", types.SectionExperience), ""),
			},
		},
	}

	got := Assemble(selection)

	// One role line per context, first-appearance order preserved.
	assert.Equal(t, 1, strings.Count(got, "Engineer at Acme"))
	assert.Equal(t, 1, strings.Count(got, "Engineer at Beta"))
	assert.True(t, strings.Index(got, "Engineer at Acme") < strings.Index(got, "Engineer at Beta"))
	assert.True(t, strings.Index(got, "Shipped the billing system") < strings.Index(got, "Scaled the API"))
}

func TestAssemble_UsesDisplayText(t *testing.T) {
	c := claim("exp-0-b0", "Grew revenue by 20%", "", types.SectionExperience)
	selection := &types.SelectionResult{
		Sections: map[types.Section][]types.SelectedClaim{
			types.SectionExperience: {pick(c, "Grew revenue by 20% via targeted campaigns")},
		},
	}

	got := Assemble(selection)

	assert.Contains(t, got, "Grew revenue by 20% via targeted campaigns")
	assert.NotContains(t, got, "- Grew revenue by 20%\n")
}

func TestAssemble_EmptySelection(t *testing.T) {
	got := Assemble(&types.SelectionResult{Sections: map[types.Section][]types.SelectedClaim{}})

	assert.Empty(t, got)
}

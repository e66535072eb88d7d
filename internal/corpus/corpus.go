// Package corpus builds the evidence corpus: the normalized, source-tagged
// view of a candidate profile that every later pipeline stage works from.
package corpus

import (
	"fmt"

	"github.com/martin/tailorproof/internal/parsing"
	"github.com/martin/tailorproof/internal/types"
)

// Corpus is the flattened set of claims derived from one candidate profile.
// It is immutable after Build: stages read it, none of them write it.
type Corpus struct {
	Claims []types.Claim

	// SkillNames are the normalized, deduplicated skill claims in profile
	// order, used by the evaluator's suggestion pass.
	SkillNames []string
}

// Build flattens a validated profile into claims. Claim IDs are structural
// ("exp-0-b1", "skill-3") so two builds of the same profile produce identical
// corpora. Any claim without a source id fails the build and is named in the
// error; silently dropping it would hide an evidence-integrity violation.
func Build(prof *types.CandidateProfile) (*Corpus, error) {
	if prof == nil {
		return nil, &IntegrityError{Message: "profile is nil"}
	}

	c := &Corpus{}
	ordinal := 0

	for i, exp := range prof.Experience {
		role := fmt.Sprintf("%s, %s", exp.Title, exp.Company)
		for j, bullet := range exp.Bullets {
			id := fmt.Sprintf("exp-%d-b%d", i, j)
			if err := checkSources(id, bullet.Text, bullet.SourceIDs); err != nil {
				return nil, err
			}
			c.Claims = append(c.Claims, types.Claim{
				ID:          id,
				Text:        bullet.Text,
				SourceIDs:   bullet.SourceIDs,
				Section:     types.SectionExperience,
				RoleContext: role,
				Ordinal:     ordinal,
			})
			ordinal++
		}
	}

	for i, proj := range prof.Projects {
		for j, bullet := range proj.Bullets {
			id := fmt.Sprintf("proj-%d-b%d", i, j)
			if err := checkSources(id, bullet.Text, bullet.SourceIDs); err != nil {
				return nil, err
			}
			c.Claims = append(c.Claims, types.Claim{
				ID:          id,
				Text:        bullet.Text,
				SourceIDs:   bullet.SourceIDs,
				Section:     types.SectionProject,
				RoleContext: proj.Name,
				Ordinal:     ordinal,
			})
			ordinal++
		}
	}

	for i, edu := range prof.Education {
		id := fmt.Sprintf("edu-%d", i)
		text := educationText(edu)
		if err := checkSources(id, text, edu.SourceIDs); err != nil {
			return nil, err
		}
		c.Claims = append(c.Claims, types.Claim{
			ID:        id,
			Text:      text,
			SourceIDs: edu.SourceIDs,
			Section:   types.SectionEducation,
			Ordinal:   ordinal,
		})
		ordinal++
	}

	seenSkills := make(map[string]struct{})
	for i, skill := range prof.Skills {
		name := parsing.NormalizeSkillName(skill.Name)
		if name == "" {
			continue
		}
		if _, dup := seenSkills[name]; dup {
			continue
		}
		seenSkills[name] = struct{}{}

		id := fmt.Sprintf("skill-%d", i)
		if err := checkSources(id, name, skill.SourceIDs); err != nil {
			return nil, err
		}
		c.Claims = append(c.Claims, types.Claim{
			ID:        id,
			Text:      name,
			SourceIDs: skill.SourceIDs,
			Section:   types.SectionSkills,
			Ordinal:   ordinal,
		})
		c.SkillNames = append(c.SkillNames, name)
		ordinal++
	}

	if len(c.Claims) == 0 {
		return nil, &IntegrityError{Message: "profile contains no claims"}
	}

	return c, nil
}

// AddUserClaim appends a claim the candidate asserted directly during an
// external review step. It carries the user_added sentinel source id and is
// selectable exactly like sourced claims.
func (c *Corpus) AddUserClaim(text string, section types.Section) (*types.Claim, error) {
	if text == "" {
		return nil, &IntegrityError{Message: "user-added claim has empty text"}
	}
	if !section.Valid() {
		return nil, &IntegrityError{Message: fmt.Sprintf("user-added claim has unknown section %q", section)}
	}

	claim := types.Claim{
		ID:        fmt.Sprintf("user-%d", len(c.Claims)),
		Text:      text,
		SourceIDs: []string{types.UserAddedSourceID},
		Section:   section,
		Ordinal:   nextOrdinal(c.Claims),
	}
	c.Claims = append(c.Claims, claim)
	return &c.Claims[len(c.Claims)-1], nil
}

// BySection groups claims by section, preserving corpus order.
func (c *Corpus) BySection() map[types.Section][]*types.Claim {
	grouped := make(map[types.Section][]*types.Claim)
	for i := range c.Claims {
		claim := &c.Claims[i]
		grouped[claim.Section] = append(grouped[claim.Section], claim)
	}
	return grouped
}

// Texts returns all claim texts in corpus order, the index build input.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.Claims))
	for i := range c.Claims {
		texts[i] = c.Claims[i].Text
	}
	return texts
}

func checkSources(id, text string, sourceIDs []string) error {
	if text == "" {
		return &IntegrityError{ClaimID: id, Message: "claim has empty text"}
	}
	if len(sourceIDs) == 0 {
		return &IntegrityError{ClaimID: id, Message: "claim has no source ids"}
	}
	for _, sid := range sourceIDs {
		if sid == "" {
			return &IntegrityError{ClaimID: id, Message: "claim has an empty source id"}
		}
	}
	return nil
}

func educationText(edu types.Education) string {
	text := edu.Institution
	if edu.Degree != "" {
		text = edu.Degree + ", " + edu.Institution
	}
	if edu.Year != "" {
		text += " (" + edu.Year + ")"
	}
	return text
}

func nextOrdinal(claims []types.Claim) int {
	if len(claims) == 0 {
		return 0
	}
	return claims[len(claims)-1].Ordinal + 1
}

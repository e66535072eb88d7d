// Package document assembles the selector's output into the final text
// handed to renderers and to the coverage evaluator. Assembly is plain
// formatting: it never adds, drops, or reorders a selected claim.
package document

import (
	"strings"

	"github.com/martin/tailorproof/internal/types"
)

var headings = map[types.Section]string{
	types.SectionExperience: "EXPERIENCE",
	types.SectionProject:    "PROJECTS",
	types.SectionEducation:  "EDUCATION",
	types.SectionSkills:     "SKILLS",
}

// Assemble renders a selection into the final output text: sections in
// profile order, bullets grouped under their role context, skills on one
// comma-separated line. Empty sections are omitted.
func Assemble(selection *types.SelectionResult) string {
	var b strings.Builder
	for _, section := range types.Sections() {
		picks := selection.Sections[section]
		if len(picks) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headings[section])
		b.WriteString("\n")

		if section == types.SectionSkills {
			names := make([]string, len(picks))
			for i, pick := range picks {
				names[i] = pick.DisplayText
			}
			b.WriteString(strings.Join(names, ", "))
			b.WriteString("\n")
			continue
		}
		writeGrouped(&b, picks)
	}
	return b.String()
}

// writeGrouped writes picks as bullet lines grouped under their role
// context, groups in first-appearance order, bullets in selection rank.
func writeGrouped(b *strings.Builder, picks []types.SelectedClaim) {
	var order []string
	groups := make(map[string][]types.SelectedClaim)
	for _, pick := range picks {
		key := pick.Claim.RoleContext
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], pick)
	}

	for _, key := range order {
		if key != "" {
			b.WriteString(key)
			b.WriteString("\n")
		}
		for _, pick := range groups[key] {
			b.WriteString("- ")
			b.WriteString(pick.DisplayText)
			b.WriteString("\n")
		}
	}
}

// Package types provides type definitions for structured data used throughout the tailorproof system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// UserAddedSourceID is the sentinel source id for claims the candidate asserted
// directly during review, with no backing artifact.
const UserAddedSourceID = "user_added"

// Section identifies which output section a claim belongs to.
type Section string

// Section values cover the four output sections of an application document.
const (
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
	SectionSkills     Section = "skills"
	SectionProject    Section = "project"
)

// Sections lists all sections in their output order.
func Sections() []Section {
	return []Section{SectionExperience, SectionProject, SectionEducation, SectionSkills}
}

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	switch s {
	case SectionExperience, SectionEducation, SectionSkills, SectionProject:
		return true
	}
	return false
}

// Claim is an atomic candidate statement eligible for inclusion in output.
// Claims are immutable once created: a rewrite never changes Text, it attaches
// a separate display text via RewriteAttempt so the original stays auditable.
type Claim struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	SourceIDs   []string `json:"source_ids"`
	Section     Section  `json:"section"`
	RoleContext string   `json:"role_context,omitempty"`
	// Ordinal is the claim's position in the original profile, used as the
	// deterministic tie-break key during selection.
	Ordinal int `json:"ordinal"`
}

// UserAdded reports whether the claim carries only the user_added sentinel.
func (c *Claim) UserAdded() bool {
	return len(c.SourceIDs) == 1 && c.SourceIDs[0] == UserAddedSourceID
}

// HasSources reports whether the claim satisfies the evidence invariant
// (at least one source id, sentinel included).
func (c *Claim) HasSources() bool {
	return len(c.SourceIDs) > 0
}

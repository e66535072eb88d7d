package jobdesc

import "github.com/martin/tailorproof/internal/parsing"

// boilerplate is the vocabulary of job postings that carries no signal about
// what the role actually needs ("responsibilities", "candidate", "benefits").
// Generic English function words are filtered by parsing.IsStopword.
var boilerplate = map[string]struct{}{}

func init() {
	words := []string{
		"job", "role", "work", "working", "team", "teams", "company",
		"position", "candidate", "candidates", "applicant", "applicants",
		"experience", "years", "year", "skills", "skill", "ability",
		"responsibilities", "responsibility", "requirements", "requirement",
		"required", "preferred", "qualifications", "qualification",
		"benefits", "salary", "equal", "opportunity", "employer", "apply",
		"application", "please", "etc", "including", "include", "includes",
		"strong", "excellent", "good", "great", "plus", "bonus", "looking",
		"join",
	}
	for _, w := range words {
		boilerplate[w] = struct{}{}
	}
}

// isNoise reports whether the token should be dropped during keyword
// extraction.
func isNoise(tok string) bool {
	if parsing.IsStopword(tok) {
		return true
	}
	_, ok := boilerplate[tok]
	return ok
}

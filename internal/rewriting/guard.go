// Package rewriting gates externally-produced rewrites of selected claims:
// a proposed text may only replace the original if it introduces no numeric
// token, and optionally no proper noun, that the original does not support.
package rewriting

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/martin/tailorproof/internal/types"
)

// Proper-noun guard modes.
const (
	ProperNounOff    = "off"
	ProperNounWarn   = "warn"
	ProperNounStrict = "strict"
)

// Guard decides whether a proposed rewrite may replace the original text.
// Check is pure: no I/O, no state, same verdict for same inputs.
type Guard struct {
	table      *EquivalenceTable
	properNoun string
}

// Verdict is the guard's decision on one proposal. Warning is set only when
// the proper-noun guard runs in warn mode and fires on an accepted rewrite.
type Verdict struct {
	Decision types.RewriteDecision
	Reason   string
	Warning  string
}

// NewGuard creates a guard. A nil table means the built-in equivalence
// table; an empty mode disables the proper-noun check.
func NewGuard(table *EquivalenceTable, properNounMode string) *Guard {
	if table == nil {
		table = DefaultEquivalenceTable()
	}
	if properNounMode == "" {
		properNounMode = ProperNounOff
	}
	return &Guard{table: table, properNoun: properNounMode}
}

// Check compares proposed against original. A proposal that introduces any
// numeric token absent from the original (after normalization) is reverted;
// dropping a number is allowed. The proper-noun check then applies per the
// configured mode.
func (g *Guard) Check(original, proposed string) Verdict {
	proposed = strings.TrimSpace(proposed)
	if proposed == "" {
		return Verdict{Decision: types.RewriteReverted, Reason: "empty rewrite"}
	}

	origNums := NumericTokens(original, g.table)
	var fabricated []string
	for tok := range NumericTokens(proposed, g.table) {
		if _, ok := origNums[tok]; !ok {
			fabricated = append(fabricated, tok)
		}
	}
	if len(fabricated) > 0 {
		sort.Strings(fabricated)
		return Verdict{
			Decision: types.RewriteReverted,
			Reason:   fmt.Sprintf("introduces numeric tokens not in original: %s", strings.Join(fabricated, ", ")),
		}
	}

	if g.properNoun != ProperNounOff {
		if nouns := newProperNouns(original, proposed); len(nouns) > 0 {
			reason := fmt.Sprintf("introduces proper nouns not in original: %s", strings.Join(nouns, ", "))
			if g.properNoun == ProperNounStrict {
				return Verdict{Decision: types.RewriteReverted, Reason: reason}
			}
			return Verdict{Decision: types.RewriteAccepted, Warning: reason}
		}
	}

	return Verdict{Decision: types.RewriteAccepted}
}

// newProperNouns returns capitalized words and word runs in proposed whose
// lowercase form appears nowhere in original. Sentence-leading words are
// exempt, so recasing a verb never trips the guard, while "at Initech"
// mid-sentence does.
func newProperNouns(original, proposed string) []string {
	known := make(map[string]struct{})
	for _, w := range strings.Fields(original) {
		known[strings.ToLower(trimWordPunct(w))] = struct{}{}
	}

	var intro []string
	seen := make(map[string]struct{})
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		phrase := strings.Join(run, " ")
		run = nil
		if _, dup := seen[phrase]; dup {
			return
		}
		seen[phrase] = struct{}{}
		intro = append(intro, phrase)
	}

	sentenceStart := true
	for _, w := range strings.Fields(proposed) {
		word := trimWordPunct(w)
		if word == "" {
			flush()
			continue
		}
		_, isKnown := known[strings.ToLower(word)]
		if isCapitalized(word) && !isKnown && !sentenceStart {
			run = append(run, word)
		} else {
			flush()
		}
		sentenceStart = strings.ContainsAny(w, ".!?")
	}
	flush()
	return intro
}

func trimWordPunct(w string) string {
	return strings.Trim(w, `.,;:!?()"'`)
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

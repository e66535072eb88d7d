package rewriting

import (
	"regexp"
	"sort"
	"strings"
)

// numberPattern captures an optional currency prefix, the numeral, and any
// directly attached suffix ("%", "k", "ms").
var numberPattern = regexp.MustCompile(`([$€£]?)(\d[\d,]*(?:\.\d+)?)([a-z%]*)`)

// wordPattern picks up to two words following a number for unit lookahead.
var wordPattern = regexp.MustCompile(`^\s*([a-z]+)(?:\s+([a-z]+))?`)

// NumericTokens extracts the canonical numeric tokens of text: integers,
// decimals, percentages, and currency amounts, with unit words normalized
// through the equivalence table. "$1,200", "50 percent" and "2 million
// dollars" become "1200$", "50%" and "2m$".
func NumericTokens(text string, table *EquivalenceTable) map[string]struct{} {
	lower := strings.ToLower(text)
	tokens := make(map[string]struct{})

	for _, m := range numberPattern.FindAllStringSubmatchIndex(lower, -1) {
		currency := lower[m[2]:m[3]]
		numeral := canonicalNumeral(lower[m[4]:m[5]])
		suffix := lower[m[6]:m[7]]

		var units []string
		attached := ""
		if suffix != "" {
			if unit, ok := table.canonicalUnit(suffix); ok {
				units = append(units, unit)
			} else {
				// Unknown attached suffix ("ms", "gb") stays part of the token.
				attached = suffix
			}
		}
		if currency != "" {
			units = append(units, currency)
		}

		// Consume unit words after the number ("50 percent", "2 million
		// dollars"), two-word phrases before single words.
		rest := lower[m[1]:]
		for steps := 0; steps < 2; steps++ {
			loc := wordPattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				break
			}
			first := rest[loc[2]:loc[3]]
			if loc[4] >= 0 {
				phrase := first + " " + rest[loc[4]:loc[5]]
				if unit, ok := table.canonicalUnit(phrase); ok {
					units = append(units, unit)
					rest = rest[loc[5]:]
					continue
				}
			}
			unit, ok := table.canonicalUnit(first)
			if !ok {
				break
			}
			units = append(units, unit)
			rest = rest[loc[3]:]
		}

		// Fixed unit order makes "$20 million" equal "20 million dollars".
		sort.SliceStable(units, func(i, j int) bool { return kindOf(units[i]) < kindOf(units[j]) })
		tokens[numeral+attached+strings.Join(units, "")] = struct{}{}
	}
	return tokens
}

// canonicalNumeral strips thousands separators and insignificant decimal
// zeros so "1,200", "20.0" and "20" compare as "1200", "20", "20".
func canonicalNumeral(numeral string) string {
	numeral = strings.ReplaceAll(numeral, ",", "")
	if strings.Contains(numeral, ".") {
		numeral = strings.TrimRight(numeral, "0")
		numeral = strings.TrimRight(numeral, ".")
	}
	return numeral
}

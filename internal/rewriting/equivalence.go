package rewriting

import (
	_ "embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed equivalence.yaml
var defaultEquivalenceYAML []byte

// unit kinds, appended to a canonical numeric token in this order so that
// "$20 million" and "20 million dollars" produce the same token.
const (
	kindScale = iota
	kindPercent
	kindCurrency
)

// EquivalenceTable maps textual unit words onto canonical symbols before
// numeric tokens are compared. The zero value is unusable; construct with
// DefaultEquivalenceTable or LoadEquivalenceTable.
type EquivalenceTable struct {
	Units map[string][]string `yaml:"units"`

	aliases map[string]string
}

// DefaultEquivalenceTable parses the built-in table. The table is embedded,
// so a parse failure is a build defect and panics.
func DefaultEquivalenceTable() *EquivalenceTable {
	table, err := parseEquivalence(defaultEquivalenceYAML)
	if err != nil {
		panic("built-in equivalence table is invalid: " + err.Error())
	}
	return table
}

// LoadEquivalenceTable reads a replacement table from a YAML file. The file
// replaces the built-in table entirely rather than merging with it.
func LoadEquivalenceTable(path string) (*EquivalenceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: "failed to read equivalence table " + path, Cause: err}
	}
	table, err := parseEquivalence(data)
	if err != nil {
		return nil, &Error{Message: "failed to parse equivalence table " + path, Cause: err}
	}
	return table, nil
}

func parseEquivalence(data []byte) (*EquivalenceTable, error) {
	var table EquivalenceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}

	table.aliases = make(map[string]string)
	for canonical, words := range table.Units {
		table.aliases[canonical] = canonical
		for _, w := range words {
			table.aliases[strings.ToLower(strings.TrimSpace(w))] = canonical
		}
	}
	return &table, nil
}

// canonicalUnit resolves a unit word or phrase to its canonical symbol.
func (t *EquivalenceTable) canonicalUnit(word string) (string, bool) {
	unit, ok := t.aliases[word]
	return unit, ok
}

// kindOf classifies a canonical unit for ordering within a token.
func kindOf(unit string) int {
	switch unit {
	case "%":
		return kindPercent
	case "$", "€", "£":
		return kindCurrency
	default:
		return kindScale
	}
}

package rewriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericTokens(t *testing.T) {
	table := DefaultEquivalenceTable()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "percent symbol",
			text: "Grew revenue by 20%",
			want: []string{"20%"},
		},
		{
			name: "percent word",
			text: "Grew revenue by 20 percent",
			want: []string{"20%"},
		},
		{
			name: "currency prefix with scale word",
			text: "Closed a $20 million deal",
			want: []string{"20m$"},
		},
		{
			name: "scale word with currency word",
			text: "Closed a deal worth 20 million dollars",
			want: []string{"20m$"},
		},
		{
			name: "thousands separators stripped",
			text: "Handled 1,200 requests",
			want: []string{"1200"},
		},
		{
			name: "trailing decimal zeros stripped",
			text: "Improved uptime to 99.90",
			want: []string{"99.9"},
		},
		{
			name: "integer-valued decimal",
			text: "Cut costs by 20.0",
			want: []string{"20"},
		},
		{
			name: "attached unit kept opaque",
			text: "Reduced p99 latency to 100ms",
			want: []string{"100ms", "99"},
		},
		{
			name: "attached scale suffix",
			text: "Served 10k daily users",
			want: []string{"10k"},
		},
		{
			name: "bare year",
			text: "Joined in 2021",
			want: []string{"2021"},
		},
		{
			name: "multiple tokens",
			text: "Raised $1.5m across 3 rounds in 2020",
			want: []string{"1.5m$", "3", "2020"},
		},
		{
			name: "no numbers",
			text: "Led the platform rebuild",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NumericTokens(tt.text, table)
			assert.Len(t, got, len(tt.want))
			for _, token := range tt.want {
				assert.Contains(t, got, token)
			}
		})
	}
}

func TestNumericTokens_CaseInsensitive(t *testing.T) {
	table := DefaultEquivalenceTable()

	upper := NumericTokens("SAVED $2 MILLION", table)
	lower := NumericTokens("saved $2 million", table)

	assert.Equal(t, lower, upper)
}

func TestNumericTokens_UnitWordNotConsumedTwice(t *testing.T) {
	table := DefaultEquivalenceTable()

	// "percent" binds to the number before it, leaving "points" alone.
	got := NumericTokens("up 5 percent and 3 points", table)

	assert.Contains(t, got, "5%")
	assert.Contains(t, got, "3")
	assert.Len(t, got, 2)
}

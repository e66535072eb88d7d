package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"rewritten": "text"}`,
			want:  `{"rewritten": "text"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"rewritten\": \"text\"}\n```",
			want:  `{"rewritten": "text"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "single line fence",
			input: "```json{\"a\": 1}```",
			want:  `{"a": 1}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n```json\n{}\n```  ",
			want:  `{}`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

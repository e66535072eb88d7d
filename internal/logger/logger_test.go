package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(false, false)
	require.NoError(t, err)
	assert.NotNil(t, log)

	jsonLog, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, jsonLog.Core().Enabled(-1)) // debug level enabled
}

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"long string truncated", "hello world", 5, "hello..."},
		{"zero limit", "hello", 0, ""},
		{"whitespace trimmed", "  hi  ", 10, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateForLog(tt.input, tt.limit))
		})
	}
}

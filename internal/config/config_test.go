package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin/tailorproof/internal/types"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.6, cfg.Weights.Semantic)
	assert.Equal(t, 0.4, cfg.Weights.Lexical)
	assert.Equal(t, 6, cfg.Budgets.Standard.Experience)
	assert.Equal(t, 5, cfg.Budgets.Compact.Experience)
	assert.Equal(t, "lexical", cfg.Index.Backend)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailorproof.yaml")
	content := `
weights:
  semantic: 0.7
  lexical: 0.3
budgets:
  standard:
    experience: 4
rewrite:
  provider: anthropic
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Weights.Semantic)
	assert.Equal(t, 0.3, cfg.Weights.Lexical)
	assert.Equal(t, 4, cfg.Budgets.Standard.Experience)
	// Untouched fields keep their defaults
	assert.Equal(t, 4, cfg.Budgets.Standard.Projects)
	assert.Equal(t, "anthropic", cfg.Rewrite.Provider)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/tailorproof.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TAILORPROOF_INDEX_BACKEND", "overlap")
	t.Setenv("TAILORPROOF_KEYWORDS_MAX_TERMS", "25")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tailorproof_test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "overlap", cfg.Index.Backend)
	assert.Equal(t, 25, cfg.Keywords.MaxTerms)
	assert.Equal(t, "postgres://localhost:5432/tailorproof_test", cfg.DatabaseURL)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	t.Setenv("TAILORPROOF_INDEX_BACKEND", "lexical")

	dir := t.TempDir()
	path := filepath.Join(dir, "tailorproof.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  backend: overlap\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment beats the file, matching viper precedence.
	assert.Equal(t, "lexical", cfg.Index.Backend)
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := Default()
	cfg.Weights = Weights{Semantic: 0.8, Lexical: 0.4}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must sum to 1.0")
	assert.Contains(t, err.Error(), "weights.semantic")
}

func TestValidate_NamesOffendingBudget(t *testing.T) {
	cfg := Default()
	cfg.Budgets.Compact.Education = 5 // exceeds standard (2)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budgets.compact.education")
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Index.Backend = "faiss"

	require.Error(t, cfg.Validate())
}

func TestActiveBudgets(t *testing.T) {
	cfg := Default()

	standard := cfg.ActiveBudgets(false)
	assert.Equal(t, 6, standard.Get(types.SectionExperience))

	compact := cfg.ActiveBudgets(true)
	assert.Equal(t, 5, compact.Get(types.SectionExperience))
	assert.Equal(t, 1, compact.Get(types.SectionEducation))
}

func TestNewPasswordConfig_HashRoundTrip(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := NewPasswordConfig()
	require.NoError(t, err)

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, cfg.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyPassword("wrong password", hash))
}

func TestNewPasswordConfig_CostOutOfRange(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")

	_, err := NewPasswordConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "48")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Secret)
	assert.Equal(t, 48, cfg.ExpirationHours)
	assert.Equal(t, "tailorproof", cfg.Issuer)
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	require.Error(t, err)
}

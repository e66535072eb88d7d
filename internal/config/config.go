// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/martin/tailorproof/internal/types"
)

// Weights are the scorer blend weights. They must sum to 1.0 so scores stay
// comparable across runs.
type Weights struct {
	Semantic float64 `mapstructure:"semantic" json:"semantic" validate:"gte=0,lte=1"`
	Lexical  float64 `mapstructure:"lexical" json:"lexical" validate:"gte=0,lte=1"`
}

// SectionBudgets holds the per-section selection limits for one budget mode.
type SectionBudgets struct {
	Experience int `mapstructure:"experience" json:"experience" validate:"gte=0"`
	Projects   int `mapstructure:"projects" json:"projects" validate:"gte=0"`
	Education  int `mapstructure:"education" json:"education" validate:"gte=0"`
	Skills     int `mapstructure:"skills" json:"skills" validate:"gte=0"`
}

// Get returns the budget for a section.
func (b SectionBudgets) Get(section types.Section) int {
	switch section {
	case types.SectionExperience:
		return b.Experience
	case types.SectionProject:
		return b.Projects
	case types.SectionEducation:
		return b.Education
	case types.SectionSkills:
		return b.Skills
	}
	return 0
}

// Budgets holds both budget modes; Compact is the reduced one-page variant.
type Budgets struct {
	Standard SectionBudgets `mapstructure:"standard" json:"standard"`
	Compact  SectionBudgets `mapstructure:"compact" json:"compact"`
}

// IndexConfig selects and tunes the relevance index backend.
type IndexConfig struct {
	// Backend is one of "lexical", "overlap", "embedding".
	Backend string `mapstructure:"backend" json:"backend" validate:"oneof=lexical overlap embedding"`
	// EmbeddingModel is the model used by the embedding backend.
	EmbeddingModel string `mapstructure:"embedding_model" json:"embedding_model"`
}

// RewriteConfig tunes the optional rewrite stage and its guard.
type RewriteConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Provider is "gemini" or "anthropic".
	Provider string `mapstructure:"provider" json:"provider" validate:"oneof=gemini anthropic"`
	// TimeoutSeconds bounds each external rewrite call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" json:"timeout_seconds" validate:"gt=0"`
	// RequestsPerMinute throttles calls to the external service.
	RequestsPerMinute int `mapstructure:"requests_per_minute" json:"requests_per_minute" validate:"gt=0"`
	// ProperNounGuard is "off", "warn" or "strict".
	ProperNounGuard string `mapstructure:"proper_noun_guard" json:"proper_noun_guard" validate:"oneof=off warn strict"`
	// EquivalenceFile optionally overrides the built-in numeric equivalence table.
	EquivalenceFile string `mapstructure:"equivalence_file" json:"equivalence_file"`
}

// KeywordConfig tunes job-description keyword extraction.
type KeywordConfig struct {
	MaxTerms int `mapstructure:"max_terms" json:"max_terms" validate:"gt=0"`
}

// Config is the full application configuration, loaded from a YAML file and
// TAILORPROOF_* environment variables, with CLI flags layered on top by the
// command layer.
type Config struct {
	Weights     Weights       `mapstructure:"weights" json:"weights"`
	Budgets     Budgets       `mapstructure:"budgets" json:"budgets"`
	Index       IndexConfig   `mapstructure:"index" json:"index"`
	Rewrite     RewriteConfig `mapstructure:"rewrite" json:"rewrite"`
	Keywords    KeywordConfig `mapstructure:"keywords" json:"keywords"`
	DatabaseURL string        `mapstructure:"database_url" json:"database_url"`
}

// Default returns the configuration used when no file or flags override it.
// The budget numbers mirror the document layout: six experience bullets,
// four project lines, two education lines, ten skills; compact mode trims
// each section for one-page output.
func Default() *Config {
	return &Config{
		Weights: Weights{Semantic: 0.6, Lexical: 0.4},
		Budgets: Budgets{
			Standard: SectionBudgets{Experience: 6, Projects: 4, Education: 2, Skills: 10},
			Compact:  SectionBudgets{Experience: 5, Projects: 3, Education: 1, Skills: 8},
		},
		Index: IndexConfig{
			Backend:        "lexical",
			EmbeddingModel: "text-embedding-004",
		},
		Rewrite: RewriteConfig{
			Enabled:           false,
			Provider:          "gemini",
			TimeoutSeconds:    30,
			RequestsPerMinute: 30,
			ProperNounGuard:   "off",
		},
		Keywords: KeywordConfig{MaxTerms: 40},
	}
}

// Load reads configuration from an optional YAML file path plus the
// environment, merged over Default(). An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TAILORPROOF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key must be registered or viper will not consult the
	// environment for it.
	d := Default()
	v.SetDefault("weights.semantic", d.Weights.Semantic)
	v.SetDefault("weights.lexical", d.Weights.Lexical)
	v.SetDefault("budgets.standard.experience", d.Budgets.Standard.Experience)
	v.SetDefault("budgets.standard.projects", d.Budgets.Standard.Projects)
	v.SetDefault("budgets.standard.education", d.Budgets.Standard.Education)
	v.SetDefault("budgets.standard.skills", d.Budgets.Standard.Skills)
	v.SetDefault("budgets.compact.experience", d.Budgets.Compact.Experience)
	v.SetDefault("budgets.compact.projects", d.Budgets.Compact.Projects)
	v.SetDefault("budgets.compact.education", d.Budgets.Compact.Education)
	v.SetDefault("budgets.compact.skills", d.Budgets.Compact.Skills)
	v.SetDefault("index.backend", d.Index.Backend)
	v.SetDefault("index.embedding_model", d.Index.EmbeddingModel)
	v.SetDefault("rewrite.enabled", d.Rewrite.Enabled)
	v.SetDefault("rewrite.provider", d.Rewrite.Provider)
	v.SetDefault("rewrite.timeout_seconds", d.Rewrite.TimeoutSeconds)
	v.SetDefault("rewrite.requests_per_minute", d.Rewrite.RequestsPerMinute)
	v.SetDefault("rewrite.proper_noun_guard", d.Rewrite.ProperNounGuard)
	v.SetDefault("rewrite.equivalence_file", d.Rewrite.EquivalenceFile)
	v.SetDefault("keywords.max_terms", d.Keywords.MaxTerms)
	v.SetDefault("database_url", d.DatabaseURL)

	// The database URL is conventionally set unprefixed.
	_ = v.BindEnv("database_url", "TAILORPROOF_DATABASE_URL", "DATABASE_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and names the offending field in every
// error, so a bad budget or weight is reported before any pipeline step runs.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if sum := c.Weights.Semantic + c.Weights.Lexical; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("config error: weights.semantic (%.3f) + weights.lexical (%.3f) must sum to 1.0, got %.3f",
			c.Weights.Semantic, c.Weights.Lexical, sum)
	}

	for _, mode := range []struct {
		name    string
		budgets SectionBudgets
	}{
		{"standard", c.Budgets.Standard},
		{"compact", c.Budgets.Compact},
	} {
		for _, section := range types.Sections() {
			if mode.budgets.Get(section) < 0 {
				return fmt.Errorf("config error: budgets.%s.%s must be non-negative, got %d",
					mode.name, section, mode.budgets.Get(section))
			}
		}
	}

	for _, section := range types.Sections() {
		if c.Budgets.Compact.Get(section) > c.Budgets.Standard.Get(section) {
			return fmt.Errorf("config error: budgets.compact.%s (%d) exceeds budgets.standard.%s (%d)",
				section, c.Budgets.Compact.Get(section), section, c.Budgets.Standard.Get(section))
		}
	}

	return nil
}

// ActiveBudgets returns the budget mode selected by compact.
func (c *Config) ActiveBudgets(compact bool) SectionBudgets {
	if compact {
		return c.Budgets.Compact
	}
	return c.Budgets.Standard
}

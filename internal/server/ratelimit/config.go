// Package ratelimit provides per-client request throttling for the API.
package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is the rate limit applied to requests matching a method and path
// prefix. The first matching rule wins; unmatched requests use the default
// limit.
type Rule struct {
	PathPrefix string
	Method     string
	PerMinute  int
	Burst      int
}

// Config holds the limiter configuration, loaded from the environment.
type Config struct {
	Enabled          bool
	DefaultPerMinute int
	DefaultBurst     int
	CleanupInterval  time.Duration
	// Whitelist clients are never limited.
	Whitelist []string
	Rules     []Rule
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment
// variables, with endpoint rules from DefaultRules.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:          true,
		DefaultPerMinute: getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultBurst:     getEnvInt("RATE_LIMIT_DEFAULT_BURST", 60),
		CleanupInterval:  getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:        parseList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Rules:            DefaultRules(),
	}
}

// DefaultRules returns the endpoint-specific limits. Pipeline runs are the
// expensive tier; credential endpoints get their own modest limits so a
// guessing loop is slowed without starving normal traffic.
func DefaultRules() []Rule {
	return []Rule{
		{PathPrefix: "/v1/runs", Method: "POST", PerMinute: 6, Burst: 2},
		{PathPrefix: "/v1/auth/login", Method: "POST", PerMinute: 20, Burst: 5},
		{PathPrefix: "/v1/auth/register", Method: "POST", PerMinute: 10, Burst: 5},
		{PathPrefix: "/v1/auth/password", Method: "PUT", PerMinute: 10, Burst: 5},
	}
}

// match returns the rule for a request, or nil for the default limit.
func (c *Config) match(path, method string) *Rule {
	for i := range c.Rules {
		rule := &c.Rules[i]
		if rule.Method == method && strings.HasPrefix(path, rule.PathPrefix) {
			return rule
		}
	}
	return nil
}

func (c *Config) whitelisted(clientID string) bool {
	for _, ip := range c.Whitelist {
		if ip == clientID {
			return true
		}
	}
	return false
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/llm"
	"github.com/martin/tailorproof/internal/prompts"
	"github.com/martin/tailorproof/internal/types"
)

// Rewriter runs the optional rewrite stage over a selection. Every external
// call is rate-limited, bounded by a timeout, and gated by the guard; no
// failure of any kind escapes as an error. The worst case for a claim is
// keeping its original text.
type Rewriter struct {
	client  llm.Client
	guard   *Guard
	timeout time.Duration
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewRewriter wires a rewriter from configuration.
func NewRewriter(client llm.Client, guard *Guard, cfg config.RewriteConfig, log *zap.Logger) *Rewriter {
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &Rewriter{
		client:  client,
		guard:   guard,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		limiter: limiter,
		log:     log,
	}
}

// RewriteSelection attempts a guarded rewrite of every selected claim except
// skills, whose texts are bare technology names with nothing to align.
// Accepted rewrites update the claim's display text in place; the original
// text is untouched. The returned attempts are in section-then-rank order.
func (r *Rewriter) RewriteSelection(ctx context.Context, selection *types.SelectionResult, job *types.JobDescription) []types.RewriteAttempt {
	keywords := strings.Join(job.Keywords.Terms(), ", ")

	var attempts []types.RewriteAttempt
	for _, section := range types.Sections() {
		if section == types.SectionSkills {
			continue
		}
		picks := selection.Sections[section]
		for i := range picks {
			attempts = append(attempts, r.rewriteClaim(ctx, &picks[i], keywords))
		}
	}
	return attempts
}

func (r *Rewriter) rewriteClaim(ctx context.Context, pick *types.SelectedClaim, keywords string) types.RewriteAttempt {
	attempt := types.RewriteAttempt{ClaimID: pick.Claim.ID, Original: pick.Claim.Text}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			attempt.Decision = types.RewriteSkipped
			attempt.Reason = fmt.Sprintf("rate limit wait: %v", err)
			r.log.Warn("rewrite rate limit interrupted, keeping original",
				zap.String("claim_id", pick.Claim.ID), zap.Error(err))
			return attempt
		}
	}

	prompt := prompts.Format(prompts.MustGet("rewriting.json", "rewrite-claim"), map[string]string{
		"Keywords":    keywords,
		"RoleContext": pick.Claim.RoleContext,
		"Original":    pick.Claim.Text,
	})

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.client.GenerateJSON(callCtx, prompt, llm.TierStandard)
	if err != nil {
		attempt.Decision = types.RewriteSkipped
		attempt.Reason = fmt.Sprintf("rewrite call failed: %v", err)
		r.log.Warn("rewrite call failed, keeping original",
			zap.String("claim_id", pick.Claim.ID), zap.Error(err))
		return attempt
	}

	proposed, err := parseRewriteResponse(raw)
	if err != nil {
		attempt.Decision = types.RewriteSkipped
		attempt.Reason = fmt.Sprintf("malformed rewrite response: %v", err)
		r.log.Warn("malformed rewrite response, keeping original",
			zap.String("claim_id", pick.Claim.ID), zap.Error(err))
		return attempt
	}
	attempt.Proposed = proposed

	verdict := r.guard.Check(pick.Claim.Text, proposed)
	attempt.Decision = verdict.Decision
	switch verdict.Decision {
	case types.RewriteAccepted:
		pick.DisplayText = proposed
		attempt.Reason = verdict.Warning
		r.log.Debug("rewrite accepted",
			zap.String("claim_id", pick.Claim.ID), zap.String("warning", verdict.Warning))
	case types.RewriteReverted:
		attempt.Reason = verdict.Reason
		r.log.Info("rewrite reverted",
			zap.String("claim_id", pick.Claim.ID), zap.String("reason", verdict.Reason))
	}
	return attempt
}

// parseRewriteResponse expects {"rewritten": "..."} as demanded by the
// prompt. Anything else is treated like a failed call.
func parseRewriteResponse(raw string) (string, error) {
	var resp struct {
		Rewritten string `json:"rewritten"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return "", fmt.Errorf("expected rewrite JSON: %w", err)
	}
	rewritten := strings.TrimSpace(resp.Rewritten)
	if rewritten == "" {
		return "", fmt.Errorf("empty rewritten field")
	}
	return rewritten, nil
}

// Package trace assembles and persists the run trace: the ordered,
// write-once record tying every line of output back to its evidence. The
// trace is the artifact a reviewer or a machine checks to confirm nothing
// was fabricated.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/martin/tailorproof/internal/types"
)

// Build assembles the trace for a completed run. Entries follow section
// order, then selection rank within each section. The trace is complete on
// return and must not be mutated afterward.
func Build(job *types.JobDescription, selection *types.SelectionResult, rewrites []types.RewriteAttempt, report types.EvaluationReport, backend string, fallback bool) *types.Trace {
	tr := &types.Trace{
		RunID:         uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		JobTitle:      job.Title,
		JobCompany:    job.Company,
		Keywords:      job.Keywords,
		IndexBackend:  backend,
		IndexFallback: fallback,
		Rewrites:      rewrites,
		Evaluation:    report,
	}

	decisions := make(map[string]types.RewriteAttempt, len(rewrites))
	for _, attempt := range rewrites {
		decisions[attempt.ClaimID] = attempt
	}

	for _, section := range types.Sections() {
		for _, pick := range selection.Sections[section] {
			entry := types.TraceEntry{
				Section:     section,
				ClaimID:     pick.Claim.ID,
				Text:        pick.Claim.Text,
				DisplayText: pick.DisplayText,
				SourceIDs:   pick.Claim.SourceIDs,
				Score:       pick.Score,
			}
			if attempt, ok := decisions[pick.Claim.ID]; ok {
				entry.RewriteDecision = attempt.Decision
				entry.RewriteReason = attempt.Reason
			}
			tr.Entries = append(tr.Entries, entry)
		}
	}
	return tr
}

// Verify machine-checks the no-fabrication invariant on a trace: every entry
// carries at least one source id. It returns an error naming the first
// violating claim.
func Verify(tr *types.Trace) error {
	for _, entry := range tr.Entries {
		if len(entry.SourceIDs) == 0 {
			return &Error{Message: fmt.Sprintf("entry %s has no source ids", entry.ClaimID)}
		}
	}
	return nil
}

// Write persists the trace as indented JSON.
func Write(path string, tr *types.Trace) error {
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return &Error{Message: "failed to encode trace", Cause: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Message: "failed to write trace to " + path, Cause: err}
	}
	return nil
}

// Read loads a previously written trace.
func Read(path string) (*types.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: "failed to read trace from " + path, Cause: err}
	}
	var tr types.Trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, &Error{Message: "failed to decode trace from " + path, Cause: err}
	}
	return &tr, nil
}

package document

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/martin/tailorproof/internal/llm"
	"github.com/martin/tailorproof/internal/prompts"
	"github.com/martin/tailorproof/internal/rewriting"
	"github.com/martin/tailorproof/internal/types"
)

// maxHighlights caps the evidence bullets quoted in the template letter.
const maxHighlights = 3

// LetterWriter composes a cover letter from selected evidence. With a client
// it asks the model for prose and gates the result through the numeric
// guard; without one, or whenever the model output fails the guard, it falls
// back to a deterministic template built from the evidence verbatim.
type LetterWriter struct {
	client llm.Client
	guard  *rewriting.Guard
	log    *zap.Logger
}

// NewLetterWriter wires a letter writer. A nil client selects template-only
// composition.
func NewLetterWriter(client llm.Client, guard *rewriting.Guard, log *zap.Logger) *LetterWriter {
	if guard == nil {
		guard = rewriting.NewGuard(nil, rewriting.ProperNounOff)
	}
	return &LetterWriter{client: client, guard: guard, log: log}
}

// Compose returns the cover letter text. Model output may only be used when
// it introduces no numeric token beyond the selected evidence and the
// posting itself; any failure degrades to the template letter, never to an
// error.
func (w *LetterWriter) Compose(ctx context.Context, name string, job *types.JobDescription, selection *types.SelectionResult, notes string) string {
	if w.client == nil {
		return w.template(name, job, selection, notes)
	}

	evidence := evidenceLines(selection)
	prompt := prompts.Format(prompts.MustGet("cover_letter.json", "compose-cover-letter"), map[string]string{
		"Title":    orDefault(job.Title, "this role"),
		"Company":  orDefault(job.Company, "your team"),
		"Evidence": strings.Join(evidence, "\n"),
		"Posting":  job.Text,
	})

	letter, err := w.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		w.log.Warn("cover letter call failed, using template letter", zap.Error(err))
		return w.template(name, job, selection, notes)
	}

	supported := strings.Join(evidence, "\n") + "\n" + job.Text
	verdict := w.guard.Check(supported, letter)
	if verdict.Decision != types.RewriteAccepted {
		w.log.Info("cover letter failed the guard, using template letter",
			zap.String("reason", verdict.Reason))
		return w.template(name, job, selection, notes)
	}
	return strings.TrimSpace(letter)
}

// template builds the deterministic letter: three short paragraphs quoting
// selected evidence verbatim, so it passes the guard by construction.
func (w *LetterWriter) template(name string, job *types.JobDescription, selection *types.SelectionResult, notes string) string {
	title := orDefault(job.Title, "this role")
	company := orDefault(job.Company, "your team")

	intro := fmt.Sprintf("I'm reaching out about the %s at %s.", title, company)
	if skills := skillNames(selection); len(skills) > 0 {
		intro += fmt.Sprintf(" My recent work has centered on %s.", strings.Join(skills, ", "))
	}

	middle := "I'm glad to share examples of recent projects on request."
	if highlights := evidenceHighlights(selection); len(highlights) > 0 {
		middle = "A few examples of the kind of work I do: " + strings.Join(highlights, "; ") + "."
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		middle += " " + notes
	}

	closing := "If the team is exploring solutions in this area, I'd value a conversation to compare notes and see where I can help."

	return strings.Join([]string{
		"Hello,",
		"",
		intro,
		"",
		middle,
		"",
		closing,
		"",
		"Best regards,",
		name,
	}, "\n")
}

// evidenceLines flattens the selection's display texts in section order.
func evidenceLines(selection *types.SelectionResult) []string {
	var lines []string
	for _, section := range types.Sections() {
		for _, pick := range selection.Sections[section] {
			lines = append(lines, pick.DisplayText)
		}
	}
	return lines
}

// evidenceHighlights returns the top experience and project bullets.
func evidenceHighlights(selection *types.SelectionResult) []string {
	var highlights []string
	for _, section := range []types.Section{types.SectionExperience, types.SectionProject} {
		for _, pick := range selection.Sections[section] {
			if len(highlights) == maxHighlights {
				return highlights
			}
			highlights = append(highlights, pick.DisplayText)
		}
	}
	return highlights
}

func skillNames(selection *types.SelectionResult) []string {
	var names []string
	for _, pick := range selection.Sections[types.SectionSkills] {
		if len(names) == maxHighlights {
			break
		}
		names = append(names, pick.DisplayText)
	}
	return names
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

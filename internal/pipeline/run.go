// Package pipeline provides the high-level orchestration for one tailoring
// run: corpus → index → score → select → optional rewrite → assemble →
// evaluate → trace. Only configuration and evidence-integrity problems abort
// a run; everything else degrades and is recorded in the trace.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/corpus"
	"github.com/martin/tailorproof/internal/document"
	"github.com/martin/tailorproof/internal/evaluate"
	"github.com/martin/tailorproof/internal/index"
	"github.com/martin/tailorproof/internal/llm"
	"github.com/martin/tailorproof/internal/observability"
	"github.com/martin/tailorproof/internal/rewriting"
	"github.com/martin/tailorproof/internal/scoring"
	"github.com/martin/tailorproof/internal/selection"
	"github.com/martin/tailorproof/internal/store"
	"github.com/martin/tailorproof/internal/trace"
	"github.com/martin/tailorproof/internal/types"
)

// Stage names, in execution order. Progress events carry these so callers
// can render a stable step list.
const (
	StageCorpus   = "corpus"
	StageIndex    = "index"
	StageScore    = "score"
	StageSelect   = "select"
	StageRewrite  = "rewrite"
	StageAssemble = "assemble"
	StageEvaluate = "evaluate"
	StageTrace    = "trace"
)

// Stages returns the pipeline stages in execution order. The rewrite stage
// is present even though it only runs when enabled.
func Stages() []string {
	return []string{
		StageCorpus, StageIndex, StageScore, StageSelect,
		StageRewrite, StageAssemble, StageEvaluate, StageTrace,
	}
}

// ProgressEvent represents a progress update during pipeline execution.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds everything a run needs. Job and Profile are required;
// the rest defaults to a credential-free, persistence-free local run.
type RunOptions struct {
	// Job is the parsed job description the document is tailored against.
	Job *types.JobDescription
	// Profile is the validated candidate profile the evidence comes from.
	Profile *types.CandidateProfile

	// Config supplies weights, budgets, index and rewrite settings.
	// Nil means config.Default().
	Config *config.Config

	// Compact selects the reduced one-page budgets.
	Compact bool
	// Rewrite enables the rewrite stage regardless of configuration.
	Rewrite bool
	// CoverLetter adds a guarded cover letter to the outputs.
	CoverLetter bool
	// CoverLetterNotes is appended to the letter body.
	CoverLetterNotes string
	// CandidateName signs the cover letter.
	CandidateName string

	// APIKey authenticates external model calls (rewrites, letter,
	// embeddings). Without it those features quietly stay off.
	APIKey string
	// Client overrides the external model client; tests inject fakes here.
	Client llm.Client
	// Embedder overrides the embedding backend's vectorizer.
	Embedder index.Embedder

	// IndexSnapshot, when set, is loaded instead of building the index.
	IndexSnapshot []byte
	// SnapshotIndex asks for the served index to be serialized into the
	// result for later reuse.
	SnapshotIndex bool

	// Store persists the run when set. When nil and the configuration
	// carries a database URL, a connection is attempted; the run continues
	// without persistence if it fails.
	Store *store.Store
	// UserID attributes the persisted run to an account.
	UserID *uuid.UUID

	Verbose bool
	// Out receives verbose output; defaults to os.Stdout.
	Out        io.Writer
	Log        *zap.Logger
	OnProgress ProgressCallback
}

// RunResult is everything a run produces.
type RunResult struct {
	// Document is the assembled per-section text, the same text the
	// evaluation was computed over.
	Document string
	// CoverLetter is set when one was requested.
	CoverLetter string

	Selection  *types.SelectionResult
	Rewrites   []types.RewriteAttempt
	Evaluation types.EvaluationReport
	Trace      *types.Trace

	// IndexSnapshot is set when RunOptions.SnapshotIndex was requested.
	IndexSnapshot []byte
	// RunID is the persisted run row; uuid.Nil without persistence.
	RunID uuid.UUID
}

// emit calls the progress callback if configured.
func emit(opts *RunOptions, stage, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Stage: stage, Message: message, Content: content})
	}
}

// RunPipeline executes one full tailoring run.
func RunPipeline(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Job == nil {
		return nil, fmt.Errorf("job description is required")
	}
	if opts.Profile == nil {
		return nil, fmt.Errorf("candidate profile is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	rewriteEnabled := opts.Rewrite || cfg.Rewrite.Enabled

	// Resolve the guard's equivalence table up front so a bad file path is
	// reported before any stage runs, like every other configuration error.
	table := rewriting.DefaultEquivalenceTable()
	if cfg.Rewrite.EquivalenceFile != "" {
		var err error
		table, err = rewriting.LoadEquivalenceTable(cfg.Rewrite.EquivalenceFile)
		if err != nil {
			return nil, err
		}
	}
	guard := rewriting.NewGuard(table, cfg.Rewrite.ProperNounGuard)

	if opts.Verbose {
		printer.PrintJob(opts.Job)
	}

	emit(&opts, StageCorpus, "building evidence corpus", nil)
	corp, err := corpus.Build(opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("building corpus failed: %w", err)
	}
	log.Debug("corpus built", zap.Int("claims", len(corp.Claims)))

	// The embedder must outlive scoring: the embedding backend vectorizes
	// the job text at query time.
	embedder := opts.Embedder
	if embedder == nil && cfg.Index.Backend == index.BackendEmbedding && opts.APIKey != "" {
		ge, err := llm.NewGeminiEmbedder(ctx, opts.APIKey, cfg.Index.EmbeddingModel)
		if err != nil {
			log.Warn("embedder unavailable, index will fall back", zap.Error(err))
		} else {
			defer func() { _ = ge.Close() }()
			embedder = ge
		}
	}

	emit(&opts, StageIndex, fmt.Sprintf("building %s index", cfg.Index.Backend), nil)
	idx, fellBack, err := buildIndex(ctx, cfg.Index, corp.Claims, opts.IndexSnapshot, embedder, log)
	if err != nil {
		return nil, fmt.Errorf("building index failed: %w", err)
	}

	emit(&opts, StageScore, fmt.Sprintf("scoring %d claims", len(corp.Claims)), nil)
	scorer := scoring.NewScorer(idx, cfg.Weights)
	scored, err := scorer.ScoreAll(ctx, corp.Claims, opts.Job)
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	selector := selection.NewSelector(cfg.Budgets)
	sel, err := selector.Select(scored, opts.Compact)
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintSelection(sel)
	}
	emit(&opts, StageSelect, fmt.Sprintf("selected %d claims", sel.Total()), sel)

	// One client serves both the rewrite stage and the cover letter. A
	// missing credential or failed construction degrades those features;
	// it never aborts the run.
	client := opts.Client
	if client == nil && opts.APIKey != "" && (rewriteEnabled || opts.CoverLetter) {
		c, err := llm.NewClient(ctx, llm.ConfigForProvider(cfg.Rewrite.Provider), opts.APIKey)
		if err != nil {
			log.Warn("model client unavailable, continuing with original text", zap.Error(err))
		} else {
			defer func() { _ = c.Close() }()
			client = c
		}
	}

	var attempts []types.RewriteAttempt
	if rewriteEnabled {
		if client == nil {
			log.Warn("rewrite enabled but no model client available, keeping original text")
		} else {
			emit(&opts, StageRewrite, "rewriting selected claims", nil)
			rewriter := rewriting.NewRewriter(client, guard, cfg.Rewrite, log)
			attempts = rewriter.RewriteSelection(ctx, sel, opts.Job)
			if opts.Verbose {
				printer.PrintRewrites(attempts)
			}
		}
	}

	emit(&opts, StageAssemble, "assembling document", nil)
	doc := document.Assemble(sel)

	var letter string
	if opts.CoverLetter {
		writer := document.NewLetterWriter(client, guard, log)
		letter = writer.Compose(ctx, opts.CandidateName, opts.Job, sel, opts.CoverLetterNotes)
	}

	report := evaluate.Evaluate(opts.Job.Keywords, doc, sel, corp.Claims)
	if opts.Verbose {
		printer.PrintEvaluation(&report)
	}
	emit(&opts, StageEvaluate, fmt.Sprintf("keyword coverage %.0f%%", report.Coverage*100), report)

	// Query-time embedding failures degrade similarity to token overlap;
	// surface that in the trace the same way a build-time fallback is.
	if e, ok := idx.(*index.EmbeddingIndex); ok && e.Degraded() {
		fellBack = true
	}

	tr := trace.Build(opts.Job, sel, attempts, report, idx.Name(), fellBack)
	tr.CoverLetter = letter
	if err := trace.Verify(tr); err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintTraceSummary(tr)
	}
	emit(&opts, StageTrace, "trace assembled", nil)

	result := &RunResult{
		Document:    doc,
		CoverLetter: letter,
		Selection:   sel,
		Rewrites:    attempts,
		Evaluation:  report,
		Trace:       tr,
	}

	if opts.SnapshotIndex {
		data, err := index.Save(idx)
		if err != nil {
			log.Warn("failed to snapshot index", zap.Error(err))
		} else {
			result.IndexSnapshot = data
		}
	}

	persist(ctx, &opts, cfg, tr, report.Coverage, result, log)

	return result, nil
}

// buildIndex loads the given snapshot or builds the configured backend.
// A snapshot that cannot be loaded is logged and rebuilt from the corpus; a
// backend that cannot be built degrades to the token-overlap fallback inside
// index.Build.
func buildIndex(ctx context.Context, cfg config.IndexConfig, claims []types.Claim, snapshot []byte, embedder index.Embedder, log *zap.Logger) (index.Index, bool, error) {
	if snapshot != nil {
		idx, err := index.Load(snapshot, embedder)
		if err == nil {
			log.Debug("index loaded from snapshot", zap.String("backend", idx.Name()))
			return idx, false, nil
		}
		log.Warn("index snapshot unusable, rebuilding", zap.Error(err))
	}

	res, err := index.Build(ctx, cfg, claims, embedder, log)
	if err != nil {
		return nil, false, err
	}
	return res.Index, res.Fallback, nil
}

// persist records the run when a store is available. Persistence failures
// are warnings; the run's outputs are already complete.
func persist(ctx context.Context, opts *RunOptions, cfg *config.Config, tr *types.Trace, coverage float64, result *RunResult, log *zap.Logger) {
	db := opts.Store
	if db == nil && cfg.DatabaseURL != "" {
		// Persistence is best-effort; an unreachable database must not
		// stall a run that is otherwise done.
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		conn, err := store.Connect(dialCtx, cfg.DatabaseURL)
		if err != nil {
			log.Warn("database unavailable, continuing without persistence", zap.Error(err))
			return
		}
		defer conn.Close()
		if err := conn.Migrate(ctx); err != nil {
			log.Warn("database migration failed, continuing without persistence", zap.Error(err))
			return
		}
		db = conn
	}
	if db == nil {
		return
	}

	runID, err := db.CreateRun(ctx, opts.UserID, opts.Job.Company, opts.Job.Title)
	if err != nil {
		log.Warn("failed to record run", zap.Error(err))
		return
	}
	result.RunID = runID

	if err := db.SaveTrace(ctx, runID, tr); err != nil {
		log.Warn("failed to save trace", zap.Error(err))
	}
	if err := db.CompleteRun(ctx, runID, store.RunStatusCompleted, coverage); err != nil {
		log.Warn("failed to complete run", zap.Error(err))
	}
}

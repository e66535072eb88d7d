package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/jobdesc"
	"github.com/martin/tailorproof/internal/logger"
	"github.com/martin/tailorproof/internal/pipeline"
	"github.com/martin/tailorproof/internal/profile"
	"github.com/martin/tailorproof/internal/trace"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full tailoring pipeline end-to-end",
	Long: `Scores the candidate's evidence against a job description, selects the best
claims under the section budgets, optionally rewrites them under the fabrication
guard, assembles the document, and writes the trace artifact.

Configuration can be loaded from a YAML file using --config and from
TAILORPROOF_* environment variables. Command-line flags override both.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runJob         string
	runJobTitle    string
	runJobCompany  string
	runProfile     string
	runOut         string
	runTraceOut    string
	runLetterOut   string
	runCompact     bool
	runRewrite     bool
	runCoverLetter bool
	runNotes       string
	runName        string
	runProvider    string
	runAPIKey      string
	runDatabaseURL string
	runSaveIndex   string
	runLoadIndex   string
	runVerbose     bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.yaml file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to job posting file (.txt, .md or .html)")
	runCommand.Flags().StringVar(&runJobTitle, "title", "", "Job title (optional, recorded in the trace)")
	runCommand.Flags().StringVar(&runJobCompany, "company", "", "Company name (optional, recorded in the trace)")
	runCommand.Flags().StringVarP(&runProfile, "profile", "p", "", "Path to candidate profile JSON")
	runCommand.Flags().StringVarP(&runOut, "out", "o", "", "Path to write the assembled document (default: stdout)")
	runCommand.Flags().StringVar(&runTraceOut, "trace", "trace.json", "Path to write the trace artifact")
	runCommand.Flags().StringVar(&runLetterOut, "letter-out", "", "Path to write the cover letter (default: stdout)")
	runCommand.Flags().BoolVar(&runCompact, "compact", false, "Use the reduced one-page section budgets")
	runCommand.Flags().BoolVar(&runRewrite, "rewrite", false, "Rewrite selected claims for relevance (requires an API key)")
	runCommand.Flags().BoolVar(&runCoverLetter, "cover-letter", false, "Also compose a cover letter from the selected claims")
	runCommand.Flags().StringVar(&runNotes, "notes", "", "Free-form notes for the cover letter")
	runCommand.Flags().StringVarP(&runName, "name", "n", "", "Candidate name for the cover letter signature")
	runCommand.Flags().StringVar(&runProvider, "provider", "", "Model provider: gemini or anthropic")
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "API key (optional, defaults to GEMINI_API_KEY or ANTHROPIC_API_KEY)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runSaveIndex, "save-index", "", "Path to write the built index snapshot")
	runCommand.Flags().StringVar(&runLoadIndex, "load-index", "", "Path to a previously saved index snapshot")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print stage-by-stage details")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if runJob == "" {
		return fmt.Errorf("--job is required")
	}
	if runProfile == "" {
		return fmt.Errorf("--profile is required")
	}

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("provider") {
		cfg.Rewrite.Provider = runProvider
	}
	if cmd.Flags().Changed("rewrite") {
		cfg.Rewrite.Enabled = runRewrite
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	job, err := jobdesc.LoadFile(runJob, cfg.Keywords.MaxTerms)
	if err != nil {
		return err
	}
	job.Title = runJobTitle
	job.Company = runJobCompany

	prof, err := profile.Load(runProfile)
	if err != nil {
		return err
	}

	var snapshot []byte
	if runLoadIndex != "" {
		snapshot, err = os.ReadFile(runLoadIndex)
		if err != nil {
			return fmt.Errorf("failed to read index snapshot %s: %w", runLoadIndex, err)
		}
	}

	log, err := logger.New(false, runVerbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	result, err := pipeline.RunPipeline(ctx, pipeline.RunOptions{
		Job:              job,
		Profile:          prof,
		Config:           cfg,
		Compact:          runCompact,
		Rewrite:          runRewrite,
		CoverLetter:      runCoverLetter,
		CoverLetterNotes: runNotes,
		CandidateName:    runName,
		APIKey:           resolveAPIKey(cfg.Rewrite.Provider, runAPIKey),
		IndexSnapshot:    snapshot,
		SnapshotIndex:    runSaveIndex != "",
		Verbose:          runVerbose,
		Log:              log,
	})
	if err != nil {
		return err
	}

	if runOut == "" {
		_, _ = fmt.Fprintln(os.Stdout, result.Document)
	} else if err := os.WriteFile(runOut, []byte(result.Document+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if runCoverLetter && result.CoverLetter != "" {
		if runLetterOut == "" {
			_, _ = fmt.Fprintln(os.Stdout, "\n---\n\n"+result.CoverLetter)
		} else if err := os.WriteFile(runLetterOut, []byte(result.CoverLetter+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write cover letter: %w", err)
		}
	}

	if runTraceOut != "" {
		if err := trace.Write(runTraceOut, result.Trace); err != nil {
			return err
		}
	}

	if runSaveIndex != "" && len(result.IndexSnapshot) > 0 {
		if err := os.WriteFile(runSaveIndex, result.IndexSnapshot, 0644); err != nil {
			return fmt.Errorf("failed to write index snapshot: %w", err)
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "Coverage: %.1f%%\n", result.Evaluation.Coverage*100)
	if runOut != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Document: %s\n", runOut)
	}
	if runTraceOut != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Trace: %s\n", runTraceOut)
	}
	return nil
}

// resolveAPIKey picks the credential for external model calls: the flag wins,
// then the provider's conventional environment variable.
func resolveAPIKey(provider, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if provider == "anthropic" {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

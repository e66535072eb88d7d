package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/evaluate"
	"github.com/martin/tailorproof/internal/jobdesc"
	"github.com/martin/tailorproof/internal/observability"
	"github.com/martin/tailorproof/internal/trace"
	"github.com/martin/tailorproof/internal/types"
)

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Recompute keyword coverage for an existing document",
	Long: `Recomputes the coverage report for an already-assembled document, either
against the keyword set recorded in a trace artifact (--trace) or against a
freshly analyzed job description (--job). With --trace, the trace's evidence
links are verified first.`,
	RunE: runEvaluateCmd,
}

var (
	evalConfigPath string
	evalDocument   string
	evalTrace      string
	evalJob        string
)

func init() {
	evaluateCommand.Flags().StringVar(&evalConfigPath, "config", "", "Path to config.yaml file")
	evaluateCommand.Flags().StringVarP(&evalDocument, "document", "d", "", "Path to the assembled document")
	evaluateCommand.Flags().StringVar(&evalTrace, "trace", "", "Path to the run's trace artifact (mutually exclusive with --job)")
	evaluateCommand.Flags().StringVarP(&evalJob, "job", "j", "", "Path to a job posting file (mutually exclusive with --trace)")

	rootCmd.AddCommand(evaluateCommand)
}

func runEvaluateCmd(_ *cobra.Command, _ []string) error {
	if evalDocument == "" {
		return fmt.Errorf("--document is required")
	}
	if (evalTrace == "") == (evalJob == "") {
		return fmt.Errorf("exactly one of --trace or --job must be provided")
	}

	content, err := os.ReadFile(evalDocument)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", evalDocument, err)
	}
	docText := string(content)

	var keywords types.KeywordSet
	var stored *types.EvaluationReport

	if evalTrace != "" {
		tr, err := trace.Read(evalTrace)
		if err != nil {
			return err
		}
		if err := trace.Verify(tr); err != nil {
			return fmt.Errorf("trace failed verification: %w", err)
		}
		keywords = tr.Keywords
		stored = &tr.Evaluation
	} else {
		cfg, err := config.Load(evalConfigPath)
		if err != nil {
			return err
		}
		job, err := jobdesc.LoadFile(evalJob, cfg.Keywords.MaxTerms)
		if err != nil {
			return err
		}
		keywords = job.Keywords
	}

	report := evaluate.Evaluate(keywords, docText, nil, nil)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintEvaluation(&report)

	if stored != nil && stored.Coverage != report.Coverage {
		_, _ = fmt.Fprintf(os.Stdout, "Note: stored coverage was %.1f%%; the document has changed since the run.\n",
			stored.Coverage*100)
	}
	return nil
}

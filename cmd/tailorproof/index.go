package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/corpus"
	"github.com/martin/tailorproof/internal/index"
	"github.com/martin/tailorproof/internal/llm"
	"github.com/martin/tailorproof/internal/logger"
	"github.com/martin/tailorproof/internal/profile"
)

var indexCommand = &cobra.Command{
	Use:   "index",
	Short: "Build a similarity index over a profile and snapshot it",
	Long: `Builds the configured similarity index over the claims of a candidate
profile and writes a snapshot that later runs can load with --load-index.
With --query, also prints the claims most similar to the query text.`,
	RunE: runIndexCmd,
}

var (
	indexConfigPath string
	indexProfile    string
	indexOut        string
	indexBackend    string
	indexAPIKey     string
	indexQuery      string
	indexTopN       int
)

func init() {
	indexCommand.Flags().StringVar(&indexConfigPath, "config", "", "Path to config.yaml file")
	indexCommand.Flags().StringVarP(&indexProfile, "profile", "p", "", "Path to candidate profile JSON")
	indexCommand.Flags().StringVarP(&indexOut, "out", "o", "index.json", "Path to write the index snapshot")
	indexCommand.Flags().StringVar(&indexBackend, "backend", "", "Index backend: lexical, overlap or embedding")
	indexCommand.Flags().StringVar(&indexAPIKey, "api-key", "", "API key for the embedding backend (defaults to GEMINI_API_KEY)")
	indexCommand.Flags().StringVarP(&indexQuery, "query", "q", "", "Print the claims most similar to this text")
	indexCommand.Flags().IntVar(&indexTopN, "top", 5, "Number of matches to print with --query")

	rootCmd.AddCommand(indexCommand)
}

func runIndexCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if indexProfile == "" {
		return fmt.Errorf("--profile is required")
	}

	cfg, err := config.Load(indexConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Index.Backend = indexBackend
	}

	prof, err := profile.Load(indexProfile)
	if err != nil {
		return err
	}

	corp, err := corpus.Build(prof)
	if err != nil {
		return err
	}

	log, err := logger.New(false, false)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var embedder index.Embedder
	if cfg.Index.Backend == index.BackendEmbedding {
		apiKey := resolveAPIKey("gemini", indexAPIKey)
		if apiKey == "" {
			return fmt.Errorf("the embedding backend requires an API key (set GEMINI_API_KEY or --api-key)")
		}
		ge, err := llm.NewGeminiEmbedder(ctx, apiKey, cfg.Index.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		defer func() { _ = ge.Close() }()
		embedder = ge
	}

	result, err := index.Build(ctx, cfg.Index, corp.Claims, embedder, log)
	if err != nil {
		return err
	}
	if result.Fallback {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %s backend unavailable (%s), snapshot uses %s\n",
			cfg.Index.Backend, result.FallbackReason, result.Index.Name())
	}

	snapshot, err := index.Save(result.Index)
	if err != nil {
		return err
	}
	if err := os.WriteFile(indexOut, snapshot, 0644); err != nil {
		return fmt.Errorf("failed to write index snapshot: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Indexed %d claims with the %s backend\n", len(corp.Claims), result.Index.Name())
	_, _ = fmt.Fprintf(os.Stdout, "Snapshot: %s\n", indexOut)

	if indexQuery != "" {
		printTopMatches(result.Index, corp, indexQuery, indexTopN)
	}
	return nil
}

// printTopMatches ranks all claims by similarity to the query and prints the
// best ones, so a snapshot can be sanity-checked before a real run.
func printTopMatches(idx index.Index, corp *corpus.Corpus, query string, topN int) {
	type match struct {
		id    string
		text  string
		score float64
	}

	matches := make([]match, 0, len(corp.Claims))
	for _, claim := range corp.Claims {
		matches = append(matches, match{
			id:    claim.ID,
			text:  claim.Text,
			score: idx.Similarity(query, claim.ID),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if topN > len(matches) {
		topN = len(matches)
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nTop matches for %q:\n", query)
	for _, m := range matches[:topN] {
		_, _ = fmt.Fprintf(os.Stdout, "  %.3f  [%s] %s\n", m.score, m.id, m.text)
	}
}

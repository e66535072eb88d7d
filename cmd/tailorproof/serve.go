package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martin/tailorproof/internal/config"
	"github.com/martin/tailorproof/internal/server"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for running the tailoring
pipeline, browsing persisted runs and traces, and managing user accounts.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.yaml file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to serve the API")
	}

	srv, err := server.New(server.Config{
		Port:        servePort,
		DatabaseURL: cfg.DatabaseURL,
		APIKey:      resolveAPIKey(cfg.Rewrite.Provider, ""),
		Pipeline:    cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

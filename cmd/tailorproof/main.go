// Package main provides the tailorproof command line interface and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tailorproof",
	Short: "Evidence-constrained job application tailoring",
	Long: "tailorproof assembles job application documents from a verified evidence corpus. " +
		"Every statement in the output traces back to a source-tagged claim, and each run " +
		"produces a trace artifact that proves it.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

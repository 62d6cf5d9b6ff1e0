// Package main provides the entry point for the story validator CLI
// and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "validator_agent",
	Short: "User story readiness validator",
	Long:  "Validates user stories against Change Request documents through retrieval-grounded LLM analysis, producing a weighted readiness score with an HTML report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

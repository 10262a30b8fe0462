// Package main provides the entry point for the candidate intake HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "github.com/jonathan/candidate-intake/docs" // Swagger docs
)

// @title Candidate Intake API
// @version 1.0
// @description Creates or updates job candidates keyed by email.
// @BasePath /

var configPath string

var rootCmd = &cobra.Command{
	Use:           "candidate_api",
	Short:         "Candidate intake HTTP API",
	Long:          "Candidate intake accepts candidate submissions over HTTP and creates or updates one record per email address.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./candidate_api.yaml when present)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

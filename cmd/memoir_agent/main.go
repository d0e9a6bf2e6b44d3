// Package main provides the entry point for the Memoir Builder HTTP API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memoir_agent",
	Short: "Memoir Builder HTTP API Server",
	Long:  "Memoir Builder compiles autobiography story records into ordered content and exports print-ready documents and PDFs via REST API or directly from the command line.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

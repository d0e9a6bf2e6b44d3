package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/observability"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a story record and inspect the resulting content",
	Long:  "Validates a story record JSON file, compiles it into the ordered content model, and prints a summary of what an export would contain.",
	RunE:  runCompile,
}

var (
	compileInput string
	compileJSON  bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "input", "i", "", "Path to story record JSON file (required)")
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "Print the content model as JSON instead of a summary")

	if err := compileCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(compileCmd)
}

func runCompile(_ *cobra.Command, _ []string) error {
	record, err := loadStoryRecord(compileInput)
	if err != nil {
		return err
	}

	model := content.NewCompiler().Compile(record)

	if compileJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(model)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintStorySummary(record)
	printer.PrintContentModel(model)

	return nil
}

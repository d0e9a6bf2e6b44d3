package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/rendering"
	"github.com/maren/memoir-builder/internal/schemas"
	"github.com/maren/memoir-builder/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a story record to print-ready documents",
	Long:  "Validates a story record JSON file against the schema, compiles it into ordered content, and renders it to HTML and/or PDF files.",
	RunE:  runExport,
}

var (
	exportInput   string
	exportOutDir  string
	exportFormat  string
	exportTimeout time.Duration
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Path to story record JSON file (required)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out-dir", "o", ".", "Directory to write exported files to")
	exportCmd.Flags().StringVar(&exportFormat, "format", "both", "Output format: document, pdf, or both")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 2*time.Minute, "Per-render timeout")

	if err := exportCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	record, err := loadStoryRecord(exportInput)
	if err != nil {
		return err
	}

	var renderers []rendering.Renderer
	switch exportFormat {
	case "document":
		html, err := rendering.NewHTMLRenderer()
		if err != nil {
			return err
		}
		renderers = append(renderers, html)
	case "pdf":
		pdf, err := rendering.NewPDFRenderer()
		if err != nil {
			return err
		}
		renderers = append(renderers, pdf)
	case "both":
		html, err := rendering.NewHTMLRenderer()
		if err != nil {
			return err
		}
		pdf, err := rendering.NewPDFRenderer()
		if err != nil {
			return err
		}
		renderers = append(renderers, html, pdf)
	default:
		return fmt.Errorf("invalid format %q (expected document, pdf, or both)", exportFormat)
	}

	if err := os.MkdirAll(exportOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	model := content.NewCompiler().Compile(record)

	// Each renderer is independent, so render the formats concurrently.
	g, ctx := errgroup.WithContext(context.Background())
	outputs := make([]string, len(renderers))
	for i, renderer := range renderers {
		g.Go(func() error {
			renderCtx, cancel := context.WithTimeout(ctx, exportTimeout)
			defer cancel()

			document, err := renderer.Render(renderCtx, model, record.Typography)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", renderer.Extension(), err)
			}

			path := filepath.Join(exportOutDir, rendering.ExportFilename(model.Title, renderer.Extension()))
			if err := os.WriteFile(path, document, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			outputs[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, path := range outputs {
		_, _ = fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	}

	return nil
}

// loadStoryRecord reads and schema-validates a story record JSON file.
func loadStoryRecord(path string) (*types.StoryRecord, error) {
	document, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}

	if err := schemas.ValidateStoryRecord(document); err != nil {
		return nil, fmt.Errorf("story record failed schema validation: %w", err)
	}

	var record types.StoryRecord
	if err := json.Unmarshal(document, &record); err != nil {
		return nil, fmt.Errorf("failed to parse story record: %w", err)
	}

	return &record, nil
}

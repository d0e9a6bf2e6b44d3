package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maren/memoir-builder/internal/config"
	"github.com/maren/memoir-builder/internal/llm"
	"github.com/maren/memoir-builder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for editing stories, generating drafts, sharing, and exporting documents.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveDBURL      string
	serveAPIKey     string
	serveModel      string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var; empty disables AI drafts)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Gemini model (defaults to GEMINI_MODEL env var)")
	rootCmd.AddCommand(serveCmd)
}

// resolveServeConfig merges config file, explicit flags, environment, and
// defaults into the effective server configuration. Precedence: flags beat
// the config file, which beats the environment, which beats defaults.
func resolveServeConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDBURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = serveAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = serveModel
	}

	// Step 3: Fill remaining gaps from the environment, then defaults
	cfg = cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(config.Config{
		Port:  8080,
		Model: llm.DefaultModel,
	})

	// Step 4: Validate
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.DatabaseURL == "" {
		return config.Config{}, fmt.Errorf("database URL is required (via --db-url, config file, or DATABASE_URL env var)")
	}

	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig(cmd)
	if err != nil {
		return err
	}

	// Draft generation degrades to placeholder text without an API key,
	// so the key stays optional.
	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

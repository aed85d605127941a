package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/draftvista/draftvista/internal/cleanup"
	"github.com/draftvista/draftvista/internal/config"
	"github.com/draftvista/draftvista/internal/journal"
	"github.com/draftvista/draftvista/internal/llm"
	"github.com/draftvista/draftvista/internal/pipeline"
	"github.com/draftvista/draftvista/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "draftvista",
	Short:   "AI-assisted manuscript review",
	Long:    "DraftVista analyzes academic manuscripts against a target journal and produces structured pre-submission reviews and post-rejection response plans.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("draftvista", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/draftvista/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Set your Google AI API key in the environment named by llm.api_key_env.")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis API and web viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := cfg.APIKey()
		if apiKey == "" {
			return fmt.Errorf("no API key found; set the %s environment variable", cfg.LLM.APIKeyEnv)
		}

		oracle, err := llm.NewGeminiClient(cfg.LLM.Model, apiKey, llm.GenerationConfig{
			Temperature:     cfg.LLM.Temperature,
			TopP:            cfg.LLM.TopP,
			TopK:            cfg.LLM.TopK,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		})
		if err != nil {
			return fmt.Errorf("creating model client: %w", err)
		}

		scraper := journal.NewScraper(cfg.ScraperTimeout(), cfg.Scraper.UserAgent)
		controller := llm.NewController(oracle, cfg.LLM.Retries, nil)
		pipe := pipeline.New(scraper, controller)

		uploadsDir := cfg.GetUploadsDir()
		if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
			return fmt.Errorf("creating uploads directory: %w", err)
		}

		sweeper := cleanup.NewSweeper(uploadsDir, cfg.SweepInterval(), cfg.MaxUploadAge())
		stop := make(chan struct{})
		defer close(stop)
		go sweeper.Run(stop)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(pipe, uploadsDir, cfg.MaxFileSizeBytes(), cfg.Server.FrontendOrigin, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- sweep command ---

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete stale uploads once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		sweeper := cleanup.NewSweeper(cfg.GetUploadsDir(), cfg.SweepInterval(), cfg.MaxUploadAge())
		removed := sweeper.SweepOnce()
		fmt.Printf("Removed %d stale upload(s) from %s\n", removed, cfg.GetUploadsDir())
		return nil
	},
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Arv-ind-s/qextract/internal/config"
	"github.com/Arv-ind-s/qextract/internal/extract"
	"github.com/Arv-ind-s/qextract/internal/home"
	"github.com/Arv-ind-s/qextract/internal/llmcall"
	"github.com/Arv-ind-s/qextract/internal/output"
	"github.com/Arv-ind-s/qextract/internal/parser"
	"github.com/Arv-ind-s/qextract/internal/pipeline"
	"github.com/Arv-ind-s/qextract/internal/providers"
	"github.com/Arv-ind-s/qextract/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "qextract",
	Short: "Extract structured MCQ data from exam question papers",
	Long: `qextract turns PSC exam question paper PDFs into validated, structured
JSON question banks using cloud document parsing and LLM extraction.

The pipeline includes:
  - PDF parsing to markdown with page image capture
  - LLM-powered question extraction with a strict output schema
  - Diagram-to-question linking from parsed page images
  - Per-question validation with skip-and-note error handling`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.qextract/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "qextract home directory (default: ~/.qextract)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reprocessCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

func loadConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}

// buildPipeline assembles the full document pipeline from configuration.
func buildPipeline(logger *slog.Logger) (*pipeline.Pipeline, *home.Dir, error) {
	h, err := openHome()
	if err != nil {
		return nil, nil, err
	}
	mgr, err := loadConfig(h)
	if err != nil {
		return nil, nil, err
	}
	cfg := mgr.Get()

	providerName := cfg.Defaults.LLMProvider
	if llmProvider != "" {
		providerName = llmProvider
	}
	providerCfg, err := cfg.ToProviderConfig(providerName)
	if err != nil {
		return nil, nil, err
	}
	if providerCfg.APIKey == "" {
		return nil, nil, fmt.Errorf("no API key configured for provider %q", providerName)
	}
	llm, err := providers.New(providerCfg)
	if err != nil {
		return nil, nil, err
	}

	parserCfg := cfg.ToParserConfig()
	if parserCfg.APIKey == "" {
		return nil, nil, fmt.Errorf("no LlamaParse API key configured")
	}

	recorder := llmcall.NewRecorder(h.CallLogPath(), logger)
	extractor := extract.NewExtractor(llm,
		extract.WithRecorder(recorder),
		extract.WithLogger(logger),
	)

	p := pipeline.New(
		h,
		parser.New(parserCfg, logger),
		extractor,
		output.NewStore(h.OutputDir()),
		pipeline.Options{
			MaxWorkers: cfg.Defaults.MaxWorkers,
			SkipImages: !cfg.LlamaParse.DownloadImages,
			KeepInputs: keepInputs,
			Logger:     logger,
		},
	)
	return p, h, nil
}

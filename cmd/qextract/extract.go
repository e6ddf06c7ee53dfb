package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Arv-ind-s/qextract/internal/home"
)

var (
	llmProvider string
	keepInputs  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf...]",
	Short: "Process question paper PDFs into JSON artifacts",
	Long: `Process every PDF in the inbox ({home}/input/new) through the extraction
pipeline. PDF paths given as arguments are staged into the inbox first.

Successful documents move to input/processed, failures to input/failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		p, h, err := buildPipeline(logger)
		if err != nil {
			return err
		}

		if err := stageFiles(h, args); err != nil {
			return err
		}

		result, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Processed: %d  Failed: %d  Questions: %d\n",
			result.Processed, result.Failed, result.Questions)
		if result.Failed > 0 && result.Processed == 0 {
			return fmt.Errorf("all %d documents failed", result.Failed)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox and process PDFs as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		p, _, err := buildPipeline(logger)
		if err != nil {
			return err
		}
		if err := p.Watch(cmd.Context()); err != nil && cmd.Context().Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider name (default from config)")
	extractCmd.Flags().BoolVar(&keepInputs, "keep", false, "leave PDFs in the inbox after processing")
	watchCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider name (default from config)")
}

// stageFiles copies explicitly-named PDFs into the inbox so a single code
// path handles both invocation styles.
func stageFiles(h *home.Dir, paths []string) error {
	for _, src := range paths {
		dst := filepath.Join(h.InputNewDir(), filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to stage %s: %w", src, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

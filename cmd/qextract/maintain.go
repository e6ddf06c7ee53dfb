package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Arv-ind-s/qextract/internal/ingest"
	"github.com/Arv-ind-s/qextract/internal/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-validate every saved artifact",
	Long: `Load each JSON artifact in the output directory and check it against the
current structural rules: question invariants, enum membership, and the
question-count consistency of its metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		h, err := openHome()
		if err != nil {
			return err
		}
		store := output.NewStore(h.OutputDir())

		artifacts, err := store.List()
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Println("No artifacts to validate.")
			return nil
		}

		bad := 0
		for _, a := range artifacts {
			ext, err := store.Load(a.Path)
			if err != nil {
				bad++
				logger.Error("unreadable artifact", "file", filepath.Base(a.Path), "error", err)
				continue
			}
			problems := output.VerifyArtifact(ext)
			if len(problems) == 0 {
				fmt.Printf("ok    %s (%d questions)\n", filepath.Base(a.Path), len(ext.Questions))
				continue
			}
			bad++
			fmt.Printf("FAIL  %s\n", filepath.Base(a.Path))
			for _, p := range problems {
				fmt.Printf("      %v\n", p)
			}
		}

		if bad > 0 {
			return fmt.Errorf("%d of %d artifacts failed validation", bad, len(artifacts))
		}
		fmt.Printf("All %d artifacts valid.\n", len(artifacts))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics across all artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHome()
		if err != nil {
			return err
		}
		stats, err := output.NewStore(h.OutputDir()).CollectStats(newLogger())
		if err != nil {
			return err
		}
		fmt.Print(stats.Render())
		return nil
	},
}

var (
	cleanAll   bool
	cleanForce bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove superseded artifacts, keeping the newest per source PDF",
	Long: `Without flags, removes only superseded artifacts (older extractions of a
PDF that has a newer one). With --all, removes every artifact and the
downloaded diagram images; --all requires --force.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHome()
		if err != nil {
			return err
		}
		store := output.NewStore(h.OutputDir())

		var removed []string
		if cleanAll {
			if !cleanForce {
				return fmt.Errorf("--all deletes every artifact and diagram; pass --force to confirm")
			}
			removed, err = store.RemoveAll(h.DiagramsRoot())
		} else {
			removed, err = store.Clean()
		}
		if err != nil {
			return err
		}

		for _, path := range removed {
			fmt.Printf("removed %s\n", filepath.Base(path))
		}
		fmt.Printf("Removed %d artifacts.\n", len(removed))
		return nil
	},
}

var reprocessFailed bool

var reprocessCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Move processed (or failed) PDFs back into the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		h, err := openHome()
		if err != nil {
			return err
		}

		from := h.InputProcessedDir()
		if reprocessFailed {
			from = h.InputFailedDir()
		}
		n, err := ingest.Restore(from, h.InputNewDir(), logger)
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d PDFs to the inbox. Run 'qextract extract' to process them.\n", n)
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "remove every artifact and diagram")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "confirm destructive --all clean")
	reprocessCmd.Flags().BoolVar(&reprocessFailed, "failed", false, "restore failed PDFs instead of processed ones")
}

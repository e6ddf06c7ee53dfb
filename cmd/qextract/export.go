package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arv-ind-s/qextract/internal/export"
	"github.com/Arv-ind-s/qextract/internal/output"
	"github.com/Arv-ind-s/qextract/internal/schema"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [output-file]",
	Short: "Export all extracted questions to CSV or XLSX",
	Args:  cobra.MaximumNArgs(1),
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
			return fmt.Errorf("no artifacts to export")
		}

		var extractions []*schema.Extraction
		for _, a := range artifacts {
			ext, err := store.Load(a.Path)
			if err != nil {
				logger.Warn("skipping unreadable artifact", "file", filepath.Base(a.Path), "error", err)
				continue
			}
			extractions = append(extractions, ext)
		}

		format := strings.ToLower(exportFormat)
		dest := ""
		if len(args) == 1 {
			dest = args[0]
			// An explicit extension wins over the flag.
			switch strings.ToLower(filepath.Ext(dest)) {
			case ".csv":
				format = "csv"
			case ".xlsx":
				format = "xlsx"
			}
		}
		if dest == "" {
			dest = filepath.Join(h.OutputDir(), "questions."+format)
		}

		switch format {
		case "csv":
			err = export.WriteCSV(dest, extractions)
		case "xlsx":
			err = export.WriteXLSX(dest, extractions)
		default:
			return fmt.Errorf("unknown export format %q (use csv or xlsx)", exportFormat)
		}
		if err != nil {
			return err
		}

		questions := 0
		for _, ext := range extractions {
			questions += len(ext.Questions)
		}
		fmt.Printf("Exported %d questions from %d documents to %s\n", questions, len(extractions), dest)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format: csv or xlsx")
}

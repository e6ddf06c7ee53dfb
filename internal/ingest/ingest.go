// Package ingest manages the input side of the pipeline: discovering PDFs
// dropped into the inbox, sanity-checking them, and moving them between the
// new/processed/failed directories as work completes.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// FindPDFs returns the PDF files directly inside dir, sorted by name so
// batch runs are deterministic. Subdirectories are not descended into.
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

// Preflight validates that the file is a readable PDF and returns its page
// count. Corrupt or encrypted files fail here, before any API spend.
func Preflight(path string) (int, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return 0, fmt.Errorf("not a valid PDF: %w", err)
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	if pages == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pages, nil
}

// MoveToProcessed relocates a successfully handled PDF out of the inbox.
func MoveToProcessed(path, processedDir string) error {
	return moveTo(path, processedDir)
}

// MoveToFailed relocates a PDF whose extraction failed so reruns skip it.
func MoveToFailed(path, failedDir string) error {
	return moveTo(path, failedDir)
}

// Restore moves previously processed or failed PDFs back into the inbox so
// they get picked up again. Returns the number of files restored.
func Restore(fromDir, inboxDir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pdfs, err := FindPDFs(fromDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	restored := 0
	for _, pdf := range pdfs {
		if err := moveTo(pdf, inboxDir); err != nil {
			logger.Warn("failed to restore file", "file", filepath.Base(pdf), "error", err)
			continue
		}
		logger.Info("restored for reprocessing", "file", filepath.Base(pdf))
		restored++
	}
	return restored, nil
}

// moveTo renames path into destDir, deduplicating the target name if a file
// with the same name already exists there.
func moveTo(path, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dest := filepath.Join(destDir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		stem := strings.TrimSuffix(filepath.Base(dest), ext)
		for i := 1; ; i++ {
			candidate := filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				dest = candidate
				break
			}
		}
	}

	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s: %w", filepath.Base(path), err)
	}
	return nil
}

package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the qextract home directory.
	DefaultDirName = ".qextract"

	// InputDirName is the subdirectory for source PDF files.
	InputDirName = "input"

	// OutputDirName is the subdirectory for validated JSON artifacts.
	OutputDirName = "output"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// CallLogFileName is the JSONL trace of LLM calls.
	CallLogFileName = "calls.jsonl"
)

// Dir represents the qextract home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.qextract).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// InputNewDir returns the directory scanned for new PDFs.
func (d *Dir) InputNewDir() string {
	return filepath.Join(d.path, InputDirName, "new")
}

// InputProcessedDir returns the directory successfully processed PDFs are moved to.
func (d *Dir) InputProcessedDir() string {
	return filepath.Join(d.path, InputDirName, "processed")
}

// InputFailedDir returns the directory failed PDFs are moved to.
func (d *Dir) InputFailedDir() string {
	return filepath.Join(d.path, InputDirName, "failed")
}

// OutputDir returns the directory for validated JSON artifacts.
func (d *Dir) OutputDir() string {
	return filepath.Join(d.path, OutputDirName)
}

// DiagramsRoot returns the parent directory of all per-document diagram dirs.
func (d *Dir) DiagramsRoot() string {
	return filepath.Join(d.OutputDir(), "diagrams")
}

// DiagramsDir returns the directory for downloaded diagram images of a document,
// identified by its filename stem.
func (d *Dir) DiagramsDir(stem string) string {
	return filepath.Join(d.DiagramsRoot(), stem)
}

// CallLogPath returns the path to the LLM call trace log.
func (d *Dir) CallLogPath() string {
	return filepath.Join(d.path, CallLogFileName)
}

// EnsureExists creates the home directory tree if it doesn't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		d.InputNewDir(),
		d.InputProcessedDir(),
		d.InputFailedDir(),
		d.OutputDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

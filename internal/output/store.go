// Package output persists extraction artifacts as timestamped JSON files and
// provides the read-side helpers the maintenance commands are built on.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Arv-ind-s/qextract/internal/schema"
)

// artifactPattern matches "<stem>_<yyyyMMdd_HHmmss>.json".
var artifactPattern = regexp.MustCompile(`^(.+)_(\d{8}_\d{6})\.json$`)

const timestampLayout = "20060102_150405"

// Store writes and reads extraction artifacts under a single directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Save writes the extraction as pretty-printed JSON named after the source
// PDF plus the extraction timestamp, and returns the artifact path.
func (s *Store) Save(ext *schema.Extraction) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	ts, err := ext.Timestamp()
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(ext.Metadata.PDFFilename, filepath.Ext(ext.Metadata.PDFFilename))
	name := fmt.Sprintf("%s_%s.json", stem, ts.Format(timestampLayout))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode extraction: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// Artifact describes one saved extraction file.
type Artifact struct {
	Path      string
	Stem      string // source PDF filename without extension
	Timestamp string // raw yyyyMMdd_HHmmss portion of the name
}

// List returns all artifacts in the store, sorted by filename (which, for a
// shared stem, is chronological).
func (s *Store) List() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := artifactPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Path:      filepath.Join(s.dir, entry.Name()),
			Stem:      m[1],
			Timestamp: m[2],
		})
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })
	return artifacts, nil
}

// Load reads and decodes one artifact.
func (s *Store) Load(path string) (*schema.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	var ext schema.Extraction
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return &ext, nil
}

// RemoveAll deletes every artifact in the store. When diagramsDir is
// non-empty that tree is deleted too. Returns the removed artifact paths.
func (s *Store) RemoveAll(diagramsDir string) ([]string, error) {
	artifacts, err := s.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, a := range artifacts {
		if err := os.Remove(a.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", filepath.Base(a.Path), err)
		}
		removed = append(removed, a.Path)
	}

	if diagramsDir != "" {
		if err := os.RemoveAll(diagramsDir); err != nil {
			return removed, fmt.Errorf("failed to remove diagrams: %w", err)
		}
	}
	return removed, nil
}

// Clean removes superseded artifacts, keeping only the newest per stem.
// Returns the paths that were removed.
func (s *Store) Clean() ([]string, error) {
	artifacts, err := s.List()
	if err != nil {
		return nil, err
	}

	newest := make(map[string]Artifact)
	for _, a := range artifacts {
		if cur, ok := newest[a.Stem]; !ok || a.Timestamp > cur.Timestamp {
			newest[a.Stem] = a
		}
	}

	var removed []string
	for _, a := range artifacts {
		if newest[a.Stem].Path == a.Path {
			continue
		}
		if err := os.Remove(a.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", filepath.Base(a.Path), err)
		}
		removed = append(removed, a.Path)
	}
	return removed, nil
}

package output

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/Arv-ind-s/qextract/internal/schema"
)

// Stats aggregates question counts across every artifact in the store.
type Stats struct {
	Documents      int
	Questions      int
	ByLanguage     map[string]int
	ByCategory     map[string]int
	ByDifficulty   map[string]int
	ByImportance   map[string]int
	WithDiagrams   int
	TemporalCount  int
	SkippedRecords int // total processing notes across documents
}

// CollectStats loads every artifact and tallies per-enum distributions.
// Unreadable artifacts are logged and skipped rather than failing the run.
func (s *Store) CollectStats(logger *slog.Logger) (*Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	artifacts, err := s.List()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ByLanguage:   make(map[string]int),
		ByCategory:   make(map[string]int),
		ByDifficulty: make(map[string]int),
		ByImportance: make(map[string]int),
	}

	for _, a := range artifacts {
		ext, err := s.Load(a.Path)
		if err != nil {
			logger.Warn("skipping unreadable artifact", "file", filepath.Base(a.Path), "error", err)
			continue
		}
		stats.Documents++
		stats.SkippedRecords += len(ext.Metadata.ProcessingNotes)
		for _, q := range ext.Questions {
			stats.Questions++
			stats.ByLanguage[string(q.Language)]++
			stats.ByCategory[string(q.Category)]++
			stats.ByDifficulty[string(q.Tags.Difficulty)]++
			if q.Tags.Importance != nil {
				stats.ByImportance[string(*q.Tags.Importance)]++
			}
			if q.HasQuestionDiagram || q.HasAnswerDiagrams {
				stats.WithDiagrams++
			}
			if q.HasTemporalRelevance {
				stats.TemporalCount++
			}
		}
	}
	return stats, nil
}

// Render formats the stats as an aligned plain-text report.
func (st *Stats) Render() string {
	out := fmt.Sprintf("Documents:            %d\n", st.Documents)
	out += fmt.Sprintf("Questions:            %d\n", st.Questions)
	out += fmt.Sprintf("With diagrams:        %d\n", st.WithDiagrams)
	out += fmt.Sprintf("Temporally relevant:  %d\n", st.TemporalCount)
	out += fmt.Sprintf("Skipped records:      %d\n", st.SkippedRecords)
	out += renderSection("By language", st.ByLanguage)
	out += renderSection("By category", st.ByCategory)
	out += renderSection("By difficulty", st.ByDifficulty)
	out += renderSection("By importance", st.ByImportance)
	return out
}

func renderSection(title string, counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// Descending by count, name as tie-break.
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := "\n" + title + ":\n"
	for _, k := range keys {
		out += fmt.Sprintf("  %-28s %d\n", k, counts[k])
	}
	return out
}

// VerifyArtifact re-validates a stored artifact against the structural rules
// new extractions are held to. Used by the standalone validate command.
func VerifyArtifact(ext *schema.Extraction) []error {
	var problems []error
	if ext.Metadata.TotalQuestions != len(ext.Questions) {
		problems = append(problems, fmt.Errorf(
			"total_questions is %d but artifact has %d questions",
			ext.Metadata.TotalQuestions, len(ext.Questions)))
	}
	if _, err := ext.Timestamp(); err != nil {
		problems = append(problems, err)
	}
	for i, q := range ext.Questions {
		if err := q.Check(); err != nil {
			problems = append(problems, fmt.Errorf("question %d: %w", i+1, err))
		}
	}
	return problems
}

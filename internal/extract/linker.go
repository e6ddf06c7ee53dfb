package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Diagram linking is best-effort: the upstream asset stream carries no
// structured foreign key back to the question text, so filename convention
// ("question_3.png", "answer_B.png") is the only linkage signal. An asset
// that matches nothing, or a flagged record that matches no asset, is left
// alone; validation surfaces or accepts the gap later.

var digitRuns = regexp.MustCompile(`\d+`)

// LinkDiagrams associates local asset paths with candidate records in place
// and returns the updated list. Records are untyped at this point; linking
// runs before validation so that linked paths are validated with the rest of
// the record.
//
// Matching policy, per record in input order:
//   - question diagram: first asset whose filename carries the record's
//     question number (as a whole digit run, so "1" does not match
//     "page_13") or the token "question_<number>" case-insensitively.
//   - answer diagrams: for each option key, first asset whose filename
//     carries "answer_<key>" case-insensitively.
//
// Assets are scanned in lexicographic filename order. That makes "first
// match wins" a stable policy instead of an iteration-order accident.
func LinkDiagrams(records []map[string]any, assets []string) []map[string]any {
	if len(assets) == 0 {
		return records
	}

	sorted := make([]string, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	for i, record := range records {
		if record == nil {
			continue
		}
		linkQuestionDiagram(record, sorted, i)
		linkAnswerDiagrams(record, sorted)
	}
	return records
}

func linkQuestionDiagram(record map[string]any, assets []string, index int) {
	if !boolField(record, "has_question_diagram") {
		return
	}
	if s, _ := record["question_diagram_path"].(string); s != "" {
		return
	}

	number := questionNumberToken(record, index)
	for _, asset := range assets {
		if assetMatchesQuestion(filepath.Base(asset), number) {
			record["question_diagram_path"] = asset
			return
		}
	}
}

func linkAnswerDiagrams(record map[string]any, assets []string) {
	if !boolField(record, "has_answer_diagrams") {
		return
	}
	if existing, ok := record["answer_diagram_paths"].(map[string]any); ok && len(existing) > 0 {
		return
	}

	options, _ := record["answer_options"].(map[string]any)
	if len(options) == 0 {
		return
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	linked := map[string]any{}
	for _, key := range keys {
		token := "answer_" + strings.ToLower(key)
		for _, asset := range assets {
			if strings.Contains(strings.ToLower(filepath.Base(asset)), token) {
				linked[key] = asset
				break
			}
		}
	}
	if len(linked) > 0 {
		record["answer_diagram_paths"] = linked
	}
}

// questionNumberToken returns the record's question number as a string, or
// the 1-based record position when the number is absent.
func questionNumberToken(record map[string]any, index int) string {
	switch v := record["question_number"].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%d", index+1)
}

var allDigits = regexp.MustCompile(`^\d+$`)

func assetMatchesQuestion(name, number string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "question_"+strings.ToLower(number)) {
		return true
	}
	// Numeric question numbers match whole digit runs only, so question 1
	// does not claim "page_13.png".
	if allDigits.MatchString(number) {
		for _, run := range digitRuns.FindAllString(lower, -1) {
			if strings.TrimLeft(run, "0") == strings.TrimLeft(number, "0") {
				return true
			}
		}
		return false
	}
	return strings.Contains(lower, strings.ToLower(number))
}

func boolField(record map[string]any, key string) bool {
	b, _ := record[key].(bool)
	return b
}

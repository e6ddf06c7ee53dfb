// Package export flattens extraction artifacts into tabular formats for
// review outside the pipeline.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Arv-ind-s/qextract/internal/schema"
)

var header = []string{
	"source_pdf",
	"question_number",
	"question_text",
	"options",
	"correct_answer",
	"language",
	"category",
	"difficulty",
	"topic",
	"subtopic",
	"importance",
	"keywords",
	"has_question_diagram",
	"question_diagram_path",
	"has_answer_diagrams",
	"has_temporal_relevance",
}

// Rows flattens the extractions into one row per question, preserving
// artifact and question order.
func Rows(extractions []*schema.Extraction) [][]string {
	rows := [][]string{header}
	for _, ext := range extractions {
		for _, q := range ext.Questions {
			rows = append(rows, questionRow(ext.Metadata.PDFFilename, q))
		}
	}
	return rows
}

func questionRow(pdf string, q schema.Question) []string {
	return []string{
		pdf,
		q.QuestionNumber.String(),
		q.QuestionText,
		renderOptions(q.AnswerOptions),
		q.CorrectAnswer,
		string(q.Language),
		string(q.Category),
		string(q.Tags.Difficulty),
		q.Tags.Topic,
		strOrEmpty(q.Tags.Subtopic),
		importanceOrEmpty(q.Tags.Importance),
		strings.Join(q.Tags.Keywords, "; "),
		strconv.FormatBool(q.HasQuestionDiagram),
		strOrEmpty(q.QuestionDiagramPath),
		strconv.FormatBool(q.HasAnswerDiagrams),
		strconv.FormatBool(q.HasTemporalRelevance),
	}
}

// renderOptions joins options as "A) text | B) text" in key order.
func renderOptions(options map[string]string) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s) %s", k, options[k])
	}
	return strings.Join(parts, " | ")
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func importanceOrEmpty(i *schema.Importance) string {
	if i == nil {
		return ""
	}
	return string(*i)
}

// WriteCSV writes the flattened questions to path as CSV.
func WriteCSV(path string, extractions []*schema.Extraction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(Rows(extractions)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return f.Close()
}

// WriteXLSX writes the flattened questions to path as a spreadsheet with a
// single "Questions" sheet.
func WriteXLSX(path string, extractions []*schema.Extraction) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Questions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, row := range Rows(extractions) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Arv-ind-s/qextract/internal/schema"
)

var (
	// ErrNoQuestions means the reply lacked a questions collection entirely.
	ErrNoQuestions = errors.New("extraction reply has no questions collection")

	// ErrNoValidQuestions means every candidate record failed validation.
	ErrNoValidQuestions = errors.New("no questions survived validation")
)

// questionSchema gates each untyped candidate record before typed
// construction. Compiled once from the same schema document sent to the
// inference backend.
var questionSchema = mustCompile("question.json", schema.QuestionSchema())

func mustCompile(name string, doc map[string]any) *jsonschema.Schema {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("load %s: %v", name, err))
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile %s: %v", name, err))
	}
	return compiled
}

// ValidateExtraction turns an untyped, diagram-linked candidate structure
// into a finalized aggregate for one source document.
//
// Records are validated independently and in input order. A record that
// fails is skipped, its failure reason (field path plus message) is appended
// to the metadata processing notes, and validation continues. The document
// as a whole fails only when the questions collection is missing, when zero
// records survive, or when the aggregate itself cannot be constructed.
func ValidateExtraction(raw map[string]any, pdfFilename string, now time.Time, logger *slog.Logger) (*schema.Extraction, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if raw == nil {
		return nil, ErrNoQuestions
	}
	rawQuestions, ok := raw["questions"].([]any)
	if !ok {
		return nil, ErrNoQuestions
	}

	meta := metadataFromRaw(raw["metadata"])
	meta.PDFFilename = pdfFilename
	meta.ExtractionDate = now.Format(time.RFC3339)

	var valid []schema.Question
	for i, item := range rawQuestions {
		record, ok := item.(map[string]any)
		if !ok {
			note := fmt.Sprintf("question %d: record is not an object", i+1)
			meta.AddNote(note)
			logger.Warn("skipping malformed record", "file", pdfFilename, "index", i+1)
			continue
		}

		q, err := validateRecord(record)
		if err != nil {
			note := fmt.Sprintf("question %s: %s", recordLabel(record, i), err)
			meta.AddNote(note)
			logger.Warn("skipping invalid question", "file", pdfFilename, "reason", err.Error())
			continue
		}
		valid = append(valid, q)
	}

	if len(valid) == 0 {
		logger.Error("all questions failed validation", "file", pdfFilename, "candidates", len(rawQuestions))
		return nil, ErrNoValidQuestions
	}

	if skipped := len(rawQuestions) - len(valid); skipped > 0 {
		logger.Warn("questions skipped during validation", "file", pdfFilename, "skipped", skipped)
	}

	// The surviving count is authoritative; any model-supplied total is
	// untrusted and overwritten.
	meta.TotalQuestions = len(valid)

	extraction, err := schema.NewExtraction(valid, meta)
	if err != nil {
		return nil, fmt.Errorf("building extraction aggregate: %w", err)
	}

	logger.Info("validated questions", "file", pdfFilename, "questions", len(valid), "notes", len(extraction.Metadata.ProcessingNotes))
	return extraction, nil
}

// validateRecord applies the schema gate and then typed construction.
func validateRecord(record map[string]any) (schema.Question, error) {
	if err := questionSchema.Validate(record); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return schema.Question{}, errors.New(leafMessage(ve))
		}
		return schema.Question{}, err
	}
	return schema.QuestionFromMap(record)
}

// leafMessage walks to the deepest validation cause and renders it as a
// dotted field path plus message.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	if path == "" {
		path = "question"
	}
	return fmt.Sprintf("%s: %s", path, ve.Message)
}

// recordLabel identifies a record in diagnostics by its question number when
// present, else its 1-based position.
func recordLabel(record map[string]any, index int) string {
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

// metadataFromRaw lifts whatever usable metadata the model supplied.
// Unusable values are ignored rather than failing the document.
func metadataFromRaw(v any) schema.DocumentMetadata {
	meta := schema.DocumentMetadata{ProcessingNotes: []string{}}

	m, ok := v.(map[string]any)
	if !ok {
		return meta
	}

	if s, ok := m["exam_name"].(string); ok && s != "" {
		meta.ExamName = &s
	}
	if s, ok := m["exam_date"].(string); ok && s != "" {
		meta.ExamDate = &s
	}
	if f, ok := m["exam_year"].(float64); ok {
		year := int(f)
		meta.ExamYear = &year
	}
	if notes, ok := m["processing_notes"].([]any); ok {
		for _, n := range notes {
			if s, ok := n.(string); ok {
				meta.AddNote(s)
			}
		}
	}
	return meta
}

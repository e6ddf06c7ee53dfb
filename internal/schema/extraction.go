package schema

import (
	"fmt"
	"time"
)

// Extraction is the aggregate for one source document: the validated
// questions plus document metadata. It is constructed once, after
// validation completes, and never mutated afterwards.
type Extraction struct {
	Questions []Question       `json:"questions"`
	Metadata  DocumentMetadata `json:"metadata"`
}

// NewExtraction builds the final aggregate. The metadata question count must
// match the surviving record count exactly; a mismatch indicates a logic
// defect upstream and fails the document.
func NewExtraction(questions []Question, meta DocumentMetadata) (*Extraction, error) {
	if meta.TotalQuestions != len(questions) {
		return nil, fmt.Errorf("metadata total_questions (%d) does not match question count (%d)",
			meta.TotalQuestions, len(questions))
	}
	if meta.PDFFilename == "" {
		return nil, fmt.Errorf("metadata pdf_filename must be set")
	}
	if meta.ExtractionDate == "" {
		return nil, fmt.Errorf("metadata extraction_date must be set")
	}
	if meta.ProcessingNotes == nil {
		meta.ProcessingNotes = []string{}
	}
	if questions == nil {
		questions = []Question{}
	}
	return &Extraction{Questions: questions, Metadata: meta}, nil
}

// Timestamp parses the metadata extraction date back into a time value.
func (e *Extraction) Timestamp() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, e.Metadata.ExtractionDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid extraction_date %q: %w", e.Metadata.ExtractionDate, err)
	}
	return ts, nil
}

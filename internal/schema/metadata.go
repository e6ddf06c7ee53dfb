package schema

// DocumentMetadata describes one source document's extraction run.
type DocumentMetadata struct {
	PDFFilename     string   `json:"pdf_filename"`
	ExtractionDate  string   `json:"extraction_date"` // ISO-8601
	TotalQuestions  int      `json:"total_questions"`
	ExamName        *string  `json:"exam_name"`
	ExamDate        *string  `json:"exam_date"`
	ExamYear        *int     `json:"exam_year"`
	ProcessingNotes []string `json:"processing_notes"`
}

// AddNote appends a human-readable processing note. Notes accumulate in the
// order problems were observed; that order is part of the output contract.
func (m *DocumentMetadata) AddNote(note string) {
	m.ProcessingNotes = append(m.ProcessingNotes, note)
}

package schema

import (
	"encoding/json"
	"testing"
)

func TestNewExtraction(t *testing.T) {
	q, err := QuestionFromMap(validQuestionMap())
	if err != nil {
		t.Fatalf("fixture question invalid: %v", err)
	}

	t.Run("count must match", func(t *testing.T) {
		meta := DocumentMetadata{
			PDFFilename:    "psc_2024.pdf",
			ExtractionDate: "2026-08-31T10:00:00Z",
			TotalQuestions: 2,
		}
		if _, err := NewExtraction([]Question{q}, meta); err == nil {
			t.Error("mismatched total_questions should fail construction")
		}
	})

	t.Run("filename required", func(t *testing.T) {
		meta := DocumentMetadata{
			ExtractionDate: "2026-08-31T10:00:00Z",
			TotalQuestions: 1,
		}
		if _, err := NewExtraction([]Question{q}, meta); err == nil {
			t.Error("missing pdf_filename should fail construction")
		}
	})

	t.Run("valid aggregate", func(t *testing.T) {
		meta := DocumentMetadata{
			PDFFilename:    "psc_2024.pdf",
			ExtractionDate: "2026-08-31T10:00:00Z",
			TotalQuestions: 1,
		}
		ext, err := NewExtraction([]Question{q}, meta)
		if err != nil {
			t.Fatalf("NewExtraction() error = %v", err)
		}
		if ext.Metadata.ProcessingNotes == nil {
			t.Error("processing notes should never be nil")
		}
	})
}

func TestExtraction_SerializedShape(t *testing.T) {
	q, err := QuestionFromMap(validQuestionMap())
	if err != nil {
		t.Fatalf("fixture question invalid: %v", err)
	}
	ext, err := NewExtraction([]Question{q}, DocumentMetadata{
		PDFFilename:    "psc_2024.pdf",
		ExtractionDate: "2026-08-31T10:00:00Z",
		TotalQuestions: 1,
	})
	if err != nil {
		t.Fatalf("NewExtraction() error = %v", err)
	}

	data, err := json.Marshal(ext)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(top) != 2 {
		t.Errorf("artifact must have exactly two top-level keys, got %d", len(top))
	}
	if _, ok := top["questions"]; !ok {
		t.Error("artifact missing questions key")
	}
	if _, ok := top["metadata"]; !ok {
		t.Error("artifact missing metadata key")
	}
}

package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validQuestionMap() map[string]any {
	return map[string]any{
		"question_text": "Who was the first Chief Minister of Kerala?",
		"answer_options": map[string]any{
			"A": "E. M. S. Namboodiripad",
			"B": "Pattom A. Thanu Pillai",
			"C": "C. Achutha Menon",
			"D": "R. Sankar",
		},
		"has_question_diagram":   false,
		"question_diagram_path":  nil,
		"language":               "English",
		"category":               "History",
		"correct_answer":         "A",
		"has_temporal_relevance": false,
		"has_answer_diagrams":    false,
		"answer_diagram_paths":   map[string]any{},
		"question_number":        1,
		"tags": map[string]any{
			"difficulty": "medium",
			"topic":      "Kerala politics",
			"keywords":   []any{"kerala", "chief minister"},
		},
	}
}

func TestQuestionFromMap_Valid(t *testing.T) {
	q, err := QuestionFromMap(validQuestionMap())
	if err != nil {
		t.Fatalf("QuestionFromMap() error = %v", err)
	}

	if q.QuestionText != "Who was the first Chief Minister of Kerala?" {
		t.Errorf("question text altered: %q", q.QuestionText)
	}
	if q.CorrectAnswer != "A" {
		t.Errorf("correct answer altered: %q", q.CorrectAnswer)
	}
	if len(q.AnswerOptions) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.AnswerOptions))
	}
	if q.Language != "English" || q.Category != "History" {
		t.Errorf("enum fields altered: %s / %s", q.Language, q.Category)
	}
	if q.QuestionNumber.String() != "1" {
		t.Errorf("expected question number 1, got %q", q.QuestionNumber.String())
	}
	if len(q.Tags.Keywords) != 2 {
		t.Errorf("keywords altered: %v", q.Tags.Keywords)
	}
}

func TestQuestionFromMap_PreservesOptionalFields(t *testing.T) {
	m := validQuestionMap()
	m["explanation"] = "EMS led the first elected communist government."
	m["source"] = "Kerala PSC 2019"
	m["marks"] = 1.5
	m["negative_marking"] = true

	q, err := QuestionFromMap(m)
	if err != nil {
		t.Fatalf("QuestionFromMap() error = %v", err)
	}
	if q.Explanation == nil || *q.Explanation != "EMS led the first elected communist government." {
		t.Errorf("explanation not preserved: %v", q.Explanation)
	}
	if q.Source == nil || *q.Source != "Kerala PSC 2019" {
		t.Errorf("source not preserved: %v", q.Source)
	}
	if q.Marks == nil || *q.Marks != 1.5 {
		t.Errorf("marks not preserved: %v", q.Marks)
	}
	if q.NegativeMarking == nil || !*q.NegativeMarking {
		t.Errorf("negative_marking not preserved: %v", q.NegativeMarking)
	}
}

func TestQuestionFromMap_Invariants(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{
			name:      "unknown correct answer key",
			mutate:    func(m map[string]any) { m["correct_answer"] = "E" },
			wantField: "correct_answer",
		},
		{
			name:      "empty question text",
			mutate:    func(m map[string]any) { m["question_text"] = "  " },
			wantField: "question_text",
		},
		{
			name:      "empty options",
			mutate:    func(m map[string]any) { m["answer_options"] = map[string]any{} },
			wantField: "answer_options",
		},
		{
			name:      "unknown language",
			mutate:    func(m map[string]any) { m["language"] = "Klingon" },
			wantField: "language",
		},
		{
			name:      "unknown category",
			mutate:    func(m map[string]any) { m["category"] = "Astrology" },
			wantField: "category",
		},
		{
			name: "unknown difficulty",
			mutate: func(m map[string]any) {
				m["tags"].(map[string]any)["difficulty"] = "impossible"
			},
			wantField: "tags.difficulty",
		},
		{
			name: "empty topic",
			mutate: func(m map[string]any) {
				m["tags"].(map[string]any)["topic"] = ""
			},
			wantField: "tags.topic",
		},
		{
			name: "unknown importance",
			mutate: func(m map[string]any) {
				m["tags"].(map[string]any)["importance"] = "cosmic"
			},
			wantField: "tags.importance",
		},
		{
			name: "diagram path without flag",
			mutate: func(m map[string]any) {
				m["has_question_diagram"] = false
				m["question_diagram_path"] = "/tmp/diagrams/question_1.png"
			},
			wantField: "question_diagram_path",
		},
		{
			name: "answer diagram paths without flag",
			mutate: func(m map[string]any) {
				m["has_answer_diagrams"] = false
				m["answer_diagram_paths"] = map[string]any{"A": "/tmp/answer_A.png"}
			},
			wantField: "answer_diagram_paths",
		},
		{
			name:      "negative marks",
			mutate:    func(m map[string]any) { m["marks"] = -1.0 },
			wantField: "marks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validQuestionMap()
			tt.mutate(m)

			_, err := QuestionFromMap(m)
			if err == nil {
				t.Fatal("expected invariant violation, got nil")
			}
			var ie *InvariantError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *InvariantError, got %T: %v", err, err)
			}
			if ie.Field != tt.wantField {
				t.Errorf("expected field %q, got %q (%v)", tt.wantField, ie.Field, err)
			}
		})
	}
}

func TestQuestionFromMap_FlagTrueWithoutPathAccepted(t *testing.T) {
	m := validQuestionMap()
	m["has_question_diagram"] = true
	m["question_diagram_path"] = nil

	q, err := QuestionFromMap(m)
	if err != nil {
		t.Fatalf("flag without path should be accepted: %v", err)
	}
	if q.QuestionDiagramPath != nil {
		t.Errorf("expected nil diagram path, got %v", *q.QuestionDiagramPath)
	}
}

func TestQuestionFromMap_NormalizesCollections(t *testing.T) {
	m := validQuestionMap()
	delete(m, "answer_diagram_paths")
	m["tags"].(map[string]any)["keywords"] = nil
	m["question_diagram_path"] = ""

	q, err := QuestionFromMap(m)
	if err != nil {
		t.Fatalf("QuestionFromMap() error = %v", err)
	}
	if q.AnswerDiagramPaths == nil {
		t.Error("answer_diagram_paths should default to empty map")
	}
	if q.Tags.Keywords == nil {
		t.Error("keywords should default to empty slice")
	}
	if q.QuestionDiagramPath != nil {
		t.Error("empty diagram path should normalize to absent")
	}
}

func TestQuestionNumber(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		var n QuestionNumber
		if err := json.Unmarshal([]byte(`17`), &n); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if !n.IsSet() || n.String() != "17" {
			t.Errorf("expected 17, got %q", n.String())
		}
		out, _ := json.Marshal(n)
		if string(out) != "17" {
			t.Errorf("round trip changed representation: %s", out)
		}
	})

	t.Run("string", func(t *testing.T) {
		var n QuestionNumber
		if err := json.Unmarshal([]byte(`"Q17a"`), &n); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if n.String() != "Q17a" {
			t.Errorf("expected Q17a, got %q", n.String())
		}
		out, _ := json.Marshal(n)
		if string(out) != `"Q17a"` {
			t.Errorf("round trip changed representation: %s", out)
		}
	})

	t.Run("null", func(t *testing.T) {
		var n QuestionNumber
		if err := json.Unmarshal([]byte(`null`), &n); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if n.IsSet() {
			t.Error("null should leave number unset")
		}
		out, _ := json.Marshal(n)
		if string(out) != "null" {
			t.Errorf("expected null, got %s", out)
		}
	})

	t.Run("float rejected", func(t *testing.T) {
		var n QuestionNumber
		if err := json.Unmarshal([]byte(`1.5`), &n); err == nil {
			t.Error("fractional question number should be rejected")
		}
	})
}

func TestEnumValues(t *testing.T) {
	if len(LanguageValues()) != 13 {
		t.Errorf("expected 13 languages, got %d", len(LanguageValues()))
	}
	if len(CategoryValues()) != 18 {
		t.Errorf("expected 18 categories, got %d", len(CategoryValues()))
	}
	if !Language("Malayalam").Valid() {
		t.Error("Malayalam should be a valid language")
	}
	if Category("Astrology").Valid() {
		t.Error("Astrology should not be a valid category")
	}
	if !strings.Contains(strings.Join(CategoryValues(), ","), "Arts & Literature") {
		t.Error("category list should contain Arts & Literature")
	}
}

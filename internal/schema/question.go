// Package schema defines the validated record types for question extraction:
// the Question record, per-document metadata, and the Extraction aggregate.
// Invariants are enforced when a value is constructed from untyped data;
// constructed values are treated as immutable and are never re-validated.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// InvariantError describes a single record invariant violation. Field is a
// dotted path into the record (e.g. "tags.difficulty").
type InvariantError struct {
	Field   string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// QuestionNumber holds the original question number from the document,
// which may be numeric ("17") or alphanumeric ("Q17a"). The zero value
// means the number was absent.
type QuestionNumber struct {
	value any // int64 or string
}

// NumberFromInt returns a numeric QuestionNumber.
func NumberFromInt(n int64) QuestionNumber { return QuestionNumber{value: n} }

// NumberFromString returns an alphanumeric QuestionNumber.
func NumberFromString(s string) QuestionNumber { return QuestionNumber{value: s} }

// IsSet reports whether a question number was present.
func (n QuestionNumber) IsSet() bool { return n.value != nil }

// String renders the number for matching and diagnostics. Empty when unset.
func (n QuestionNumber) String() string {
	switch v := n.value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		return ""
	}
}

// UnmarshalJSON accepts a JSON number, string, or null.
func (n *QuestionNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		n.value = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.value = s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("question number must be an integer or string")
	}
	i, err := num.Int64()
	if err != nil {
		return fmt.Errorf("question number must be an integer or string")
	}
	n.value = i
	return nil
}

// MarshalJSON renders the original representation, or null when unset.
func (n QuestionNumber) MarshalJSON() ([]byte, error) {
	if n.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// QuestionTags holds tagging metadata used for filtering and recommendation.
type QuestionTags struct {
	Difficulty    Difficulty  `json:"difficulty"`
	Topic         string      `json:"topic"`
	Subtopic      *string     `json:"subtopic"`
	YearRelevance *string     `json:"year_relevance"`
	ExamType      *string     `json:"exam_type"`
	Importance    *Importance `json:"importance"`
	Keywords      []string    `json:"keywords"`
}

// Question is a single validated multiple-choice question.
type Question struct {
	QuestionText         string            `json:"question_text"`
	AnswerOptions        map[string]string `json:"answer_options"`
	HasQuestionDiagram   bool              `json:"has_question_diagram"`
	QuestionDiagramPath  *string           `json:"question_diagram_path"`
	Language             Language          `json:"language"`
	Category             Category          `json:"category"`
	Tags                 QuestionTags      `json:"tags"`
	CorrectAnswer        string            `json:"correct_answer"`
	HasTemporalRelevance bool              `json:"has_temporal_relevance"`
	HasAnswerDiagrams    bool              `json:"has_answer_diagrams"`
	AnswerDiagramPaths   map[string]string `json:"answer_diagram_paths"`
	QuestionID           *string           `json:"question_id"`
	Explanation          *string           `json:"explanation"`
	Source               *string           `json:"source"`
	QuestionNumber       QuestionNumber    `json:"question_number"`
	Marks                *float64          `json:"marks"`
	NegativeMarking      *bool             `json:"negative_marking"`
}

// QuestionFromMap constructs a Question from an untyped candidate record.
// This is the only boundary where untyped data becomes a typed record: every
// invariant is checked here, and a failure means the record does not exist.
func QuestionFromMap(m map[string]any) (Question, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return Question{}, &InvariantError{Field: "question", Message: err.Error()}
	}

	var q Question
	if err := json.Unmarshal(data, &q); err != nil {
		return Question{}, decodeError(err)
	}

	q.normalize()
	if err := q.checkInvariants(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Check re-verifies the record invariants on an already constructed value.
// Used when auditing stored artifacts that may predate the current rules.
func (q Question) Check() error {
	q.normalize()
	return q.checkInvariants()
}

// normalize applies declared optional-type defaults: nil collections become
// empty, an empty diagram path becomes absent. No other coercion happens.
func (q *Question) normalize() {
	if q.AnswerDiagramPaths == nil {
		q.AnswerDiagramPaths = map[string]string{}
	}
	if q.Tags.Keywords == nil {
		q.Tags.Keywords = []string{}
	}
	if q.QuestionDiagramPath != nil && *q.QuestionDiagramPath == "" {
		q.QuestionDiagramPath = nil
	}
}

func (q *Question) checkInvariants() error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return &InvariantError{Field: "question_text", Message: "must not be empty"}
	}
	if len(q.AnswerOptions) == 0 {
		return &InvariantError{Field: "answer_options", Message: "must contain at least one option"}
	}
	if _, ok := q.AnswerOptions[q.CorrectAnswer]; !ok {
		return &InvariantError{
			Field:   "correct_answer",
			Message: fmt.Sprintf("%q is not a key of answer_options", q.CorrectAnswer),
		}
	}
	if !q.Language.Valid() {
		return &InvariantError{Field: "language", Message: fmt.Sprintf("unknown value %q", string(q.Language))}
	}
	if !q.Category.Valid() {
		return &InvariantError{Field: "category", Message: fmt.Sprintf("unknown value %q", string(q.Category))}
	}
	if !q.Tags.Difficulty.Valid() {
		return &InvariantError{Field: "tags.difficulty", Message: fmt.Sprintf("unknown value %q", string(q.Tags.Difficulty))}
	}
	if strings.TrimSpace(q.Tags.Topic) == "" {
		return &InvariantError{Field: "tags.topic", Message: "must not be empty"}
	}
	if q.Tags.Importance != nil && !q.Tags.Importance.Valid() {
		return &InvariantError{Field: "tags.importance", Message: fmt.Sprintf("unknown value %q", string(*q.Tags.Importance))}
	}
	if !q.HasQuestionDiagram && q.QuestionDiagramPath != nil {
		return &InvariantError{
			Field:   "question_diagram_path",
			Message: "present but has_question_diagram is false",
		}
	}
	if !q.HasAnswerDiagrams && len(q.AnswerDiagramPaths) > 0 {
		return &InvariantError{
			Field:   "answer_diagram_paths",
			Message: "present but has_answer_diagrams is false",
		}
	}
	if q.Marks != nil && *q.Marks < 0 {
		return &InvariantError{Field: "marks", Message: "must not be negative"}
	}
	return nil
}

// decodeError maps a json decode failure onto the offending field where the
// error carries that information.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &InvariantError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s", typeErr.Type),
		}
	}
	return &InvariantError{Field: "question", Message: err.Error()}
}

package extract

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Arv-ind-s/qextract/internal/providers"
)

func replyWith(t *testing.T, records ...map[string]any) string {
	t.Helper()
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r
	}
	data, err := json.Marshal(map[string]any{
		"questions": items,
		"metadata":  map[string]any{"exam_year": 2024},
	})
	if err != nil {
		t.Fatalf("failed to build reply fixture: %v", err)
	}
	return string(data)
}

func TestExtractor_Extract(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "```json\n" + replyWith(t, validCandidate(1), validCandidate(2)) + "\n```"

	e := NewExtractor(mock, WithClock(func() time.Time { return testNow }))
	ext, err := e.Extract(context.Background(), Document{
		Filename: "psc_2024.pdf",
		Markdown: "## Question 1\n...",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(ext.Questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(ext.Questions))
	}
	if ext.Metadata.PDFFilename != "psc_2024.pdf" {
		t.Errorf("filename not set: %q", ext.Metadata.PDFFilename)
	}

	if mock.LastRequest == nil {
		t.Fatal("no request captured")
	}
	if len(mock.LastRequest.Messages) != 2 {
		t.Errorf("expected system + user messages, got %d", len(mock.LastRequest.Messages))
	}
	if mock.LastRequest.ResponseFormat == nil {
		t.Error("structured response format should be requested")
	}
}

func TestExtractor_LinksImagesBeforeValidation(t *testing.T) {
	rec := validCandidate(3)
	rec["has_question_diagram"] = true

	mock := providers.NewMockClient()
	mock.ResponseText = replyWith(t, rec)

	e := NewExtractor(mock, WithClock(func() time.Time { return testNow }))
	ext, err := e.Extract(context.Background(), Document{
		Filename: "psc_2024.pdf",
		Markdown: "doc",
		Images:   []string{"/tmp/diagrams/question_3.png"},
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	q := ext.Questions[0]
	if q.QuestionDiagramPath == nil || *q.QuestionDiagramPath != "/tmp/diagrams/question_3.png" {
		t.Errorf("diagram not linked through extraction: %v", q.QuestionDiagramPath)
	}
}

func TestExtractor_InferenceFailureIsDocumentFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	e := NewExtractor(mock)
	if _, err := e.Extract(context.Background(), Document{Filename: "x.pdf", Markdown: "doc"}); err == nil {
		t.Error("inference failure should fail the document")
	}
}

func TestExtractor_UnparsableReplyIsDocumentFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "Sorry, I can't find any questions here."

	e := NewExtractor(mock)
	if _, err := e.Extract(context.Background(), Document{Filename: "x.pdf", Markdown: "doc"}); err == nil {
		t.Error("unparsable reply should fail the document")
	}
}

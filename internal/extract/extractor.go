package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arv-ind-s/qextract/internal/llmcall"
	"github.com/Arv-ind-s/qextract/internal/providers"
	"github.com/Arv-ind-s/qextract/internal/schema"
)

// Document is the input contract from the upstream parsing collaborator:
// the source filename, the parsed body text, and any locally-downloaded
// image assets belonging to the document.
type Document struct {
	Filename string
	Markdown string
	Images   []string
}

// Extractor runs the extraction core for one document at a time: prompt,
// inference call, sanitization, diagram linking, and validation.
type Extractor struct {
	llm      providers.LLMClient
	recorder *llmcall.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecorder attaches an LLM call recorder.
func WithRecorder(r *llmcall.Recorder) Option {
	return func(e *Extractor) { e.recorder = r }
}

// WithLogger sets the extractor logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithClock overrides the extraction timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an extractor using the given LLM client.
func NewExtractor(llm providers.LLMClient, opts ...Option) *Extractor {
	e := &Extractor{
		llm:    llm,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full extraction flow for one parsed document and returns
// the validated aggregate. Any failure here is a document-level failure; the
// caller decides whether to log and continue with sibling documents.
func (e *Extractor) Extract(ctx context.Context, doc Document) (*schema.Extraction, error) {
	log := e.logger.With("file", doc.Filename)
	log.Info("starting extraction", "content_bytes", len(doc.Markdown), "images", len(doc.Images))

	raw, err := e.callLLM(ctx, doc)
	if err != nil {
		return nil, err
	}

	if records, ok := raw["questions"].([]any); ok && len(doc.Images) > 0 {
		linked := make([]map[string]any, 0, len(records))
		for _, r := range records {
			m, _ := r.(map[string]any)
			linked = append(linked, m)
		}
		log.Info("linking diagram assets", "images", len(doc.Images), "candidates", len(linked))
		LinkDiagrams(linked, doc.Images)
	}

	return ValidateExtraction(raw, doc.Filename, e.now(), log)
}

// callLLM sends the extraction prompt and parses the sanitized reply into an
// untyped candidate structure.
func (e *Extractor) callLLM(ctx context.Context, doc Document) (map[string]any, error) {
	rf, err := json.Marshal(schema.ResponseFormat()["json_schema"])
	if err != nil {
		return nil, fmt.Errorf("marshaling response format: %w", err)
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: UserPrompt(doc.Markdown)},
		},
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: rf,
		},
	}

	result, err := e.llm.Chat(ctx, req)
	if e.recorder != nil {
		e.recorder.Record(llmcall.FromChatResult(result, llmcall.RecordOptions{
			Document:  doc.Filename,
			PromptKey: UserPromptKey,
		}))
	}
	if err != nil {
		return nil, fmt.Errorf("inference call failed: %w", err)
	}

	raw, err := ParseJSON(Sanitize(result.Content))
	if err != nil {
		return nil, fmt.Errorf("model reply not parsable: %w", err)
	}
	return raw, nil
}

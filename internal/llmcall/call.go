// Package llmcall provides LLM call recording for traceability. Every
// inference call is recorded with its prompt key, document, and metrics.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/Arv-ind-s/qextract/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	Document string `json:"document,omitempty"`

	// Prompt traceability
	PromptKey string `json:"prompt_key"`

	// Model info
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Status
	Attempts int    `json:"attempts"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	// Document is the source document the call was made for.
	Document string

	// PromptKey identifies the prompt used (required for traceability).
	PromptKey string
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		Document:     opts.Document,
		PromptKey:    opts.PromptKey,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Attempts:     result.Attempts,
		Success:      result.Success,
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}

	return call
}

package llmcall

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// Recorder appends call records to a JSONL trace file. A write failure is
// logged and swallowed: call tracing must never fail an extraction.
type Recorder struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to the given JSONL path.
func NewRecorder(path string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{path: path, logger: logger}
}

// Record appends one call record. Nil calls are ignored.
func (r *Recorder) Record(call *Call) {
	if r == nil || call == nil {
		return
	}

	data, err := json.Marshal(call)
	if err != nil {
		r.logger.Warn("failed to serialize LLM call record", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Warn("failed to open LLM call log", "path", r.path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		r.logger.Warn("failed to write LLM call record", "path", r.path, "error", err)
	}
}

// Package pipeline orchestrates the full document flow: inbox scan, PDF
// preflight, cloud parse, question extraction, artifact save, and file
// movement. Each document is isolated; one failure never stops the batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Arv-ind-s/qextract/internal/extract"
	"github.com/Arv-ind-s/qextract/internal/home"
	"github.com/Arv-ind-s/qextract/internal/ingest"
	"github.com/Arv-ind-s/qextract/internal/output"
	"github.com/Arv-ind-s/qextract/internal/parser"
	"github.com/Arv-ind-s/qextract/internal/schema"
)

// DocumentParser converts a PDF into markdown plus image assets.
type DocumentParser interface {
	Parse(ctx context.Context, pdfPath, imageDir string) (*parser.Parsed, error)
}

// QuestionExtractor turns a parsed document into a validated extraction.
type QuestionExtractor interface {
	Extract(ctx context.Context, doc extract.Document) (*schema.Extraction, error)
}

// Pipeline wires the processing stages together over a home directory.
type Pipeline struct {
	home       *home.Dir
	parser     DocumentParser
	extractor  QuestionExtractor
	store      *output.Store
	logger     *slog.Logger
	maxWorkers int
	skipImages bool
	keepInputs bool
	movers     fileMovers
	preflight  func(path string) (int, error)
}

// fileMovers is swapped out in tests to observe movement decisions.
type fileMovers struct {
	toProcessed func(path, dir string) error
	toFailed    func(path, dir string) error
}

// Options configures a Pipeline.
type Options struct {
	MaxWorkers int  // Concurrent documents (default: 1)
	SkipImages bool // Skip diagram image downloads
	KeepInputs bool // Leave PDFs in the inbox instead of moving them
	Logger     *slog.Logger
}

// New creates a pipeline over the given home directory and collaborators.
func New(h *home.Dir, p DocumentParser, e QuestionExtractor, store *output.Store, opts Options) *Pipeline {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{
		home:       h,
		parser:     p,
		extractor:  e,
		store:      store,
		logger:     opts.Logger,
		maxWorkers: opts.MaxWorkers,
		skipImages: opts.SkipImages,
		keepInputs: opts.KeepInputs,
		movers: fileMovers{
			toProcessed: ingest.MoveToProcessed,
			toFailed:    ingest.MoveToFailed,
		},
		preflight: ingest.Preflight,
	}
}

// Result summarizes one batch run.
type Result struct {
	Processed int
	Failed    int
	Questions int
}

// Run processes every PDF currently in the inbox and returns the tally.
// Returns an error only when the inbox itself cannot be read; per-document
// failures are logged, counted, and the files moved aside.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	pdfs, err := ingest.FindPDFs(p.home.InputNewDir())
	if err != nil {
		return nil, err
	}
	if len(pdfs) == 0 {
		p.logger.Info("no PDFs to process", "dir", p.home.InputNewDir())
		return &Result{}, nil
	}

	p.logger.Info("starting batch", "documents", len(pdfs), "workers", p.maxWorkers)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
		sem    = make(chan struct{}, p.maxWorkers)
	)

	for _, pdf := range pdfs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(pdf string) {
			defer wg.Done()
			defer func() { <-sem }()

			questions, err := p.processOne(ctx, pdf)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				return
			}
			result.Processed++
			result.Questions += questions
		}(pdf)
	}
	wg.Wait()

	p.logger.Info("batch complete",
		"processed", result.Processed,
		"failed", result.Failed,
		"questions", result.Questions)
	return &result, ctx.Err()
}

// processOne runs the full flow for a single PDF and moves the file to its
// terminal directory. Returns the number of extracted questions.
func (p *Pipeline) processOne(ctx context.Context, pdf string) (int, error) {
	log := p.logger.With("file", filepath.Base(pdf))

	questions, err := p.extractOne(ctx, pdf)
	if err != nil {
		log.Error("document failed", "error", err)
		if !p.keepInputs {
			if mvErr := p.movers.toFailed(pdf, p.home.InputFailedDir()); mvErr != nil {
				log.Error("failed to move file aside", "error", mvErr)
			}
		}
		return 0, err
	}

	if !p.keepInputs {
		if err := p.movers.toProcessed(pdf, p.home.InputProcessedDir()); err != nil {
			log.Error("failed to move processed file", "error", err)
		}
	}
	log.Info("document complete", "questions", questions)
	return questions, nil
}

func (p *Pipeline) extractOne(ctx context.Context, pdf string) (int, error) {
	pages, err := p.preflight(pdf)
	if err != nil {
		return 0, fmt.Errorf("preflight: %w", err)
	}
	p.logger.Debug("preflight ok", "file", filepath.Base(pdf), "pages", pages)

	stem := strings.TrimSuffix(filepath.Base(pdf), filepath.Ext(pdf))
	imageDir := p.home.DiagramsDir(stem)
	if p.skipImages {
		imageDir = ""
	}

	parsed, err := p.parser.Parse(ctx, pdf, imageDir)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(parsed.Markdown) == "" {
		return 0, fmt.Errorf("parse produced no text")
	}

	ext, err := p.extractor.Extract(ctx, extract.Document{
		Filename: parsed.Filename,
		Markdown: parsed.Markdown,
		Images:   parsed.Images,
	})
	if err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}

	path, err := p.store.Save(ext)
	if err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}
	p.logger.Info("artifact saved", "path", path)
	return len(ext.Questions), nil
}

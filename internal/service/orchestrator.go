package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"pharma-label-verifier/internal/domain"

	"golang.org/x/sync/errgroup"
)

// EngineMode selects how the primary and fallback engines are combined.
type EngineMode string

const (
	// ModePrimaryFirst tries the remote engine and falls back to the local
	// engine when it fails. The default mode.
	ModePrimaryFirst EngineMode = "primary_first"
	// ModePrimaryOnly never touches the local engine.
	ModePrimaryOnly EngineMode = "primary_only"
	// ModeFallbackOnly never touches the remote engine.
	ModeFallbackOnly EngineMode = "fallback_only"
)

// OrchestratorOptions configures engine routing and page concurrency.
type OrchestratorOptions struct {
	Mode        EngineMode
	PageWorkers int
}

// OCROrchestrator routes documents through preprocessing, chunking and the
// configured engine chain, producing one result per page.
type OCROrchestrator struct {
	primary  domain.OCREngine
	fallback domain.OCREngine
	pre      *ImagePreprocessor
	chunker  *PDFChunker
	opts     OrchestratorOptions
	logger   domain.Logger
}

// NewOCROrchestrator creates the orchestrator. Either engine may be nil when
// the mode excludes it.
func NewOCROrchestrator(primary, fallback domain.OCREngine, pre *ImagePreprocessor, chunker *PDFChunker, opts OrchestratorOptions, logger domain.Logger) *OCROrchestrator {
	if opts.Mode == "" {
		opts.Mode = ModePrimaryFirst
	}
	if opts.PageWorkers <= 0 {
		opts.PageWorkers = 4
	}
	return &OCROrchestrator{
		primary:  primary,
		fallback: fallback,
		pre:      pre,
		chunker:  chunker,
		opts:     opts,
		logger:   logger,
	}
}

// Process extracts text from the document. Images become a single page unit;
// PDFs are rendered page by page in bounded batches. Page failures are
// recorded per page and do not abort sibling pages.
func (o *OCROrchestrator) Process(ctx context.Context, doc domain.SourceDocument) (*domain.DocumentOCRResult, error) {
	start := time.Now()

	switch doc.MediaType {
	case domain.MediaTypeImage:
		return o.processImage(ctx, doc, start)
	case domain.MediaTypePDF:
		return o.processPDF(ctx, doc, start)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMediaType, doc.MediaType)
	}
}

func (o *OCROrchestrator) processImage(ctx context.Context, doc domain.SourceDocument, start time.Time) (*domain.DocumentOCRResult, error) {
	prepared, err := o.pre.Preprocess(doc.Content)
	if err != nil {
		return nil, err
	}

	pages, err := o.processUnits(ctx, []domain.PageUnit{{Index: 0, Image: prepared}})
	if err != nil {
		return nil, err
	}
	return o.assembleResult(pages, 1, time.Since(start))
}

func (o *OCROrchestrator) processPDF(ctx context.Context, doc domain.SourceDocument, start time.Time) (*domain.DocumentOCRResult, error) {
	var pages []domain.OCRPageResult

	total, err := o.chunker.ChunkWithCallback(ctx, doc.Content, func(batch []domain.PageUnit) error {
		results, err := o.processUnits(ctx, batch)
		if err != nil {
			return err
		}
		pages = append(pages, results...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return o.assembleResult(pages, total, time.Since(start))
}

// processUnits runs the engine chain over a batch of page units with a
// bounded worker pool. Only context cancellation aborts the batch; engine
// failures are captured in the page results.
func (o *OCROrchestrator) processUnits(ctx context.Context, units []domain.PageUnit) ([]domain.OCRPageResult, error) {
	results := make([]domain.OCRPageResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.opts.PageWorkers)

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			results[i] = o.extractPage(gctx, unit)
			if results[i].Success {
				return nil
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// extractPage applies the engine chain for the configured mode to one page.
func (o *OCROrchestrator) extractPage(ctx context.Context, unit domain.PageUnit) domain.OCRPageResult {
	pageStart := time.Now()
	result := domain.OCRPageResult{PageNumber: unit.Index + 1}

	var failures []string

	tryEngine := func(engine domain.OCREngine) bool {
		if engine == nil {
			failures = append(failures, "engine not configured")
			return false
		}
		res, err := engine.ExtractText(ctx, unit)
		if err != nil {
			o.logger.Warn("Engine failed on page", "engine", engine.Name(), "page", unit.Index+1, "error", err.Error())
			failures = append(failures, fmt.Sprintf("%s: %v", engine.Name(), err))
			return false
		}
		result.Engine = engine.Name()
		result.Model = res.Model
		result.Text = res.Text
		result.Success = true
		return true
	}

	switch o.opts.Mode {
	case ModePrimaryOnly:
		tryEngine(o.primary)
	case ModeFallbackOnly:
		tryEngine(o.fallback)
	default:
		if !tryEngine(o.primary) && ctx.Err() == nil {
			o.logger.Info("Falling back to local engine", "page", unit.Index+1)
			tryEngine(o.fallback)
		}
	}

	if !result.Success {
		result.Error = strings.Join(failures, " | ")
	}
	result.ProcessingTime = domain.Seconds(time.Since(pageStart))
	return result
}

// assembleResult orders page results and joins the successful texts.
// domain.ErrTotalExtractionFailure is returned when no page produced text.
func (o *OCROrchestrator) assembleResult(pages []domain.OCRPageResult, totalPages int, elapsed time.Duration) (*domain.DocumentOCRResult, error) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})

	var texts []string
	var engine, model string
	for _, p := range pages {
		if !p.Success {
			continue
		}
		texts = append(texts, p.Text)
		if engine == "" {
			engine = p.Engine
			model = p.Model
		}
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: all %d pages failed", domain.ErrTotalExtractionFailure, totalPages)
	}

	o.logger.Info("Document extraction complete",
		"pages", totalPages,
		"succeeded", len(texts),
		"engine", engine,
		"duration_seconds", domain.Seconds(elapsed))

	return &domain.DocumentOCRResult{
		Pages:          pages,
		ExtractedText:  strings.Join(texts, domain.PageBreakMarker),
		Engine:         engine,
		Model:          model,
		PagesProcessed: totalPages,
		ProcessingTime: domain.Seconds(elapsed),
	}, nil
}

package service

import (
	"context"
	"fmt"

	"pharma-label-verifier/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// ChunkPolicy bounds how PDF pages are grouped into processing batches.
// Grouping caps the peak memory held in rendered page images and the
// payload submitted to an engine in one stretch of work.
type ChunkPolicy struct {
	RenderDPI     float64
	MaxBatchPages int
	MaxBatchBytes int
}

// PDFChunker renders PDF pages to preprocessed page images and hands them to
// the caller in bounded batches, page order preserved.
type PDFChunker struct {
	preprocessor *ImagePreprocessor
	policy       ChunkPolicy
	logger       domain.Logger
}

// NewPDFChunker creates a new PDF chunker
func NewPDFChunker(preprocessor *ImagePreprocessor, policy ChunkPolicy, logger domain.Logger) *PDFChunker {
	if policy.RenderDPI <= 0 {
		policy.RenderDPI = 150
	}
	return &PDFChunker{
		preprocessor: preprocessor,
		policy:       policy,
		logger:       logger,
	}
}

// ChunkWithCallback renders each page, preprocesses it, and flushes batches
// to onBatch as soon as the page or byte budget fills up. Pages of a flushed
// batch are released before the next batch is rendered. Returns the total
// page count.
//
// Fails with domain.ErrUnreadablePDF when the document cannot be parsed and
// domain.ErrEmptyDocument when it has zero pages.
func (c *PDFChunker) ChunkWithCallback(ctx context.Context, pdfBytes []byte, onBatch func(batch []domain.PageUnit) error) (int, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnreadablePDF, err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return 0, domain.ErrEmptyDocument
	}

	b := newBatcher(c.policy.MaxBatchPages, c.policy.MaxBatchBytes)

	for pageNum := 0; pageNum < numPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return numPages, err
		}

		c.logger.Debug("Rendering PDF page", "page", pageNum+1, "total", numPages)
		img, err := doc.ImageDPI(pageNum, c.policy.RenderDPI)
		if err != nil {
			return numPages, fmt.Errorf("%w: failed to render page %d: %v", domain.ErrUnreadablePDF, pageNum+1, err)
		}

		pageImage, err := c.preprocessor.PreprocessImage(img)
		if err != nil {
			return numPages, fmt.Errorf("failed to preprocess page %d: %w", pageNum+1, err)
		}

		if full := b.add(domain.PageUnit{Index: pageNum, Image: pageImage}); full != nil {
			if err := onBatch(full); err != nil {
				return numPages, err
			}
		}
	}

	if rest := b.flush(); rest != nil {
		if err := onBatch(rest); err != nil {
			return numPages, err
		}
	}

	return numPages, nil
}

// batcher accumulates page units until either budget is reached.
type batcher struct {
	maxPages int
	maxBytes int
	pending  []domain.PageUnit
	bytes    int
}

func newBatcher(maxPages, maxBytes int) *batcher {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &batcher{maxPages: maxPages, maxBytes: maxBytes}
}

// add appends a unit and returns the completed batch when a budget fills,
// nil otherwise. A single oversized page still forms its own batch.
func (b *batcher) add(unit domain.PageUnit) []domain.PageUnit {
	b.pending = append(b.pending, unit)
	b.bytes += len(unit.Image)

	if len(b.pending) >= b.maxPages || (b.maxBytes > 0 && b.bytes >= b.maxBytes) {
		return b.flush()
	}
	return nil
}

func (b *batcher) flush() []domain.PageUnit {
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	b.bytes = 0
	return out
}

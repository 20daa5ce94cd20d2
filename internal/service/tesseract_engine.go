package service

import (
	"context"
	"strings"
	"time"

	"pharma-label-verifier/internal/domain"

	"github.com/otiai10/gosseract/v2"
)

const tesseractModelTag = "tesseract-local"

// TesseractEngine extracts label text with a local Tesseract installation.
// It serves as the offline fallback when the remote engine is unreachable.
type TesseractEngine struct {
	language string
	logger   domain.Logger
}

// NewTesseractEngine creates the local OCR engine
func NewTesseractEngine(language string, logger domain.Logger) *TesseractEngine {
	return &TesseractEngine{
		language: language,
		logger:   logger,
	}
}

// Name returns the engine identifier used in page results.
func (e *TesseractEngine) Name() string {
	return "tesseract"
}

// ExtractText runs Tesseract over the page image. A fresh client per call
// keeps the engine safe for concurrent pages; gosseract clients are not
// goroutine safe.
func (e *TesseractEngine) ExtractText(ctx context.Context, page domain.PageUnit) (domain.EngineResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EngineResult{}, err
	}

	start := time.Now()

	client := gosseract.NewClient()
	defer client.Close()

	if e.language != "" {
		if err := client.SetLanguage(e.language); err != nil {
			return domain.EngineResult{}, &domain.EngineError{Engine: "tesseract", Retryable: false, Err: err}
		}
	}

	if err := client.SetImageFromBytes(page.Image); err != nil {
		e.logger.Error("Tesseract rejected page image", err, "page", page.Index+1)
		return domain.EngineResult{}, &domain.EngineError{Engine: "tesseract", Retryable: false, Err: err}
	}

	text, err := client.Text()
	if err != nil {
		e.logger.Error("Tesseract extraction failed", err, "page", page.Index+1)
		return domain.EngineResult{}, &domain.EngineError{Engine: "tesseract", Retryable: false, Err: err}
	}

	return domain.EngineResult{
		Text:     strings.TrimSpace(text),
		Model:    tesseractModelTag,
		Duration: time.Since(start),
	}, nil
}

package domain

import (
	"context"
	"time"
)

// OCREngine is the capability both extraction engines implement: given one
// preprocessed page image, return extracted text plus engine metadata.
// The orchestrator depends only on this interface so engines can be swapped
// or faked in tests.
type OCREngine interface {
	Name() string
	ExtractText(ctx context.Context, page PageUnit) (EngineResult, error)
}

// OCRProcessor runs the full extraction pipeline for one source document.
type OCRProcessor interface {
	Process(ctx context.Context, doc SourceDocument) (*DocumentOCRResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetLogLevel() string
	GetMaxFileSize() int64
	GetEngineMode() string
	GetLLMProvider() string
	GetLLMEndpoint() string
	GetLLMModel() string
	GetLLMAPIKey() string
	GetOCRTimeout() time.Duration
	GetOCRMaxRetries() int
	GetOCRRetryBaseDelay() time.Duration
	GetSimilarityThreshold() int
	GetMaxImageWidth() int
	GetPDFRenderDPI() float64
	GetMaxBatchPages() int
	GetMaxBatchBytes() int
	GetPageWorkers() int
	GetTesseractLanguage() string
}

package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidImage           = errors.New("invalid image data")
	ErrUnreadablePDF          = errors.New("unreadable pdf document")
	ErrEmptyDocument          = errors.New("pdf document has no pages")
	ErrUnsupportedMediaType   = errors.New("unsupported media type")
	ErrEngineUnavailable      = errors.New("ocr engine unavailable")
	ErrTotalExtractionFailure = errors.New("text extraction failed for every page")
	ErrInvalidReference       = errors.New("reference text is empty or invalid")
)

// EngineError wraps a failure inside one OCR engine call. Retryable marks
// transient failures (timeouts, connection errors, 5xx-equivalent responses)
// that are worth another attempt; everything else surfaces immediately.
type EngineError struct {
	Engine    string
	Retryable bool
	Err       error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s engine: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is an engine error marked transient.
func IsRetryable(err error) bool {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr.Retryable
	}
	return false
}

package domain

import "time"

// EngineResult is what a single engine call returns for one page image.
type EngineResult struct {
	Text     string
	Model    string
	Duration time.Duration
}

// OCRPageResult records the outcome of extracting one page, successful or not.
type OCRPageResult struct {
	PageNumber     int     `json:"page_number"` // 1-indexed
	Engine         string  `json:"engine_used"`
	Model          string  `json:"model_name"`
	Text           string  `json:"extracted_text"`
	ProcessingTime float64 `json:"processing_time"` // seconds
	Success        bool    `json:"success"`
	Error          string  `json:"error,omitempty"`
}

// DocumentOCRResult aggregates per-page results for one source document.
// Pages are always ordered by source page number regardless of the order in
// which extraction completed. ExtractedText is the concatenation of the
// successful pages only, joined by PageBreakMarker.
type DocumentOCRResult struct {
	Pages          []OCRPageResult `json:"pages"`
	ExtractedText  string          `json:"extracted_text"`
	Engine         string          `json:"engine_used"`
	Model          string          `json:"model_name"`
	PagesProcessed int             `json:"pages_processed"`
	ProcessingTime float64         `json:"processing_time"` // seconds
}

// PageBreakMarker separates the text of consecutive pages in the aggregate
// extracted text.
const PageBreakMarker = "\n--- Page Break ---\n"

// Seconds converts a duration to the rounded seconds representation used in
// result payloads.
func Seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000.0
}

package domain

// MediaType tells the orchestrator how to route a source document.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypePDF   MediaType = "pdf"
)

// SourceDocument is the immutable input to the extraction pipeline.
// The caller owns it; the core never persists it.
type SourceDocument struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MediaType MediaType `json:"media_type"`
	Content   []byte    `json:"-"`
}

// PageUnit is one chunk of work submitted to an OCR engine: a single
// preprocessed page image. Index is 0-based; reporting uses Index+1.
type PageUnit struct {
	Index int
	Image []byte
}

package service

import (
	"context"
	"strings"

	"pharma-label-verifier/internal/domain"
)

// VerificationService is the top-level pipeline: extract text from the
// document, validate its structure, compare it against the verified
// reference, and decide the verdict.
type VerificationService struct {
	ocr       domain.OCRProcessor
	validator *ValidationService
	comparer  *ComparisonService
	decider   *DecisionEngine
	logger    domain.Logger
}

// NewVerificationService creates the verification pipeline
func NewVerificationService(ocr domain.OCRProcessor, validator *ValidationService, comparer *ComparisonService, decider *DecisionEngine, logger domain.Logger) *VerificationService {
	return &VerificationService{
		ocr:       ocr,
		validator: validator,
		comparer:  comparer,
		decider:   decider,
		logger:    logger,
	}
}

// Verify runs the full check. The reference is validated before any OCR so a
// bad request never spends engine budget.
func (s *VerificationService) Verify(ctx context.Context, doc domain.SourceDocument, reference string) (*domain.VerificationResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, domain.ErrInvalidReference
	}

	s.logger.Info("Starting label verification", "document_id", doc.ID, "filename", doc.Filename, "media_type", string(doc.MediaType))

	ocrResult, err := s.ocr.Process(ctx, doc)
	if err != nil {
		s.logger.Error("Extraction failed", err, "document_id", doc.ID)
		return nil, err
	}

	report := s.validator.Validate(ocrResult.ExtractedText)

	cmp, err := s.comparer.Compare(ocrResult.ExtractedText, reference)
	if err != nil {
		return nil, err
	}

	outcome := s.decider.Decide(cmp, report)

	s.logger.Info("Label verification complete",
		"document_id", doc.ID,
		"match_percentage", outcome.MatchPercentage,
		"authenticity_score", report.AuthenticityScore,
		"final_decision", string(outcome.FinalDecision))

	return &domain.VerificationResult{
		OCR:        ocrResult,
		Comparison: outcome,
	}, nil
}

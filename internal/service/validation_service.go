package service

import (
	"regexp"

	"pharma-label-verifier/internal/domain"
)

var (
	dosageAmountRegex = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|ml|g|mcg)\b`)
	dosageCountRegex  = regexp.MustCompile(`(?i)\b\d+\s?(?:tablets?|capsules?)\b`)

	expiryMonthYearRegex = regexp.MustCompile(`\b(0[1-9]|1[0-2])/\d{4}\b`)
	expiryFullDateRegex  = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
	expiryMonthNameRegex = regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s\d{4}\b`)

	batchLabelRegex = regexp.MustCompile(`(?i)\b(?:Batch|LOT|Lot No\.?)\b`)
	batchCodeRegex  = regexp.MustCompile(`\b[A-Z0-9]{6,12}\b`)

	manufacturerRegex = regexp.MustCompile(`(?i)\b(?:Manufactured by|Marketed by|Distributed by)\b`)

	// Proper-cased drug name followed by a strength. Case sensitive on
	// purpose; an all-lowercase name is a formatting red flag.
	drugNameRegex = regexp.MustCompile(`\b[A-Z][a-zA-Z]+\s\d+(?:\.\d+)?\s?(?:mg|ml|g|mcg)\b`)
)

// batchProximityWindow is how far, in bytes, a batch code may sit from its
// label and still count as belonging to it.
const batchProximityWindow = 40

// ValidationService checks extracted label text for the structural markers a
// genuine pharmaceutical label carries. Each rule is worth the same number of
// points; the sum is the authenticity score.
type ValidationService struct {
	logger domain.Logger
}

// NewValidationService creates the structural validator
func NewValidationService(logger domain.Logger) *ValidationService {
	return &ValidationService{logger: logger}
}

// Validate scores the text against all rules. It never fails; empty or
// garbage input simply scores zero.
func (s *ValidationService) Validate(text string) domain.ValidationReport {
	report := domain.ValidationReport{
		DosageFormatValid:   hasDosage(text),
		ExpiryFormatValid:   hasExpiry(text),
		BatchNumberValid:    hasBatchNumber(text),
		ManufacturerPresent: manufacturerRegex.MatchString(text),
		DrugNameFormatValid: drugNameRegex.MatchString(text),
	}

	for _, ok := range []bool{
		report.DosageFormatValid,
		report.ExpiryFormatValid,
		report.BatchNumberValid,
		report.ManufacturerPresent,
		report.DrugNameFormatValid,
	} {
		if ok {
			report.AuthenticityScore += domain.PointsPerRule
		}
	}
	report.IsStructurallyAuthentic = report.AuthenticityScore >= domain.AuthenticityThreshold

	s.logger.Debug("Structural validation scored", "score", report.AuthenticityScore, "authentic", report.IsStructurallyAuthentic)
	return report
}

func hasDosage(text string) bool {
	return dosageAmountRegex.MatchString(text) || dosageCountRegex.MatchString(text)
}

func hasExpiry(text string) bool {
	return expiryMonthYearRegex.MatchString(text) ||
		expiryFullDateRegex.MatchString(text) ||
		expiryMonthNameRegex.MatchString(text)
}

// hasBatchNumber requires an alphanumeric code near a batch label, not just
// anywhere in the text. Stray uppercase words elsewhere don't qualify.
func hasBatchNumber(text string) bool {
	labels := batchLabelRegex.FindAllStringIndex(text, -1)
	if len(labels) == 0 {
		return false
	}

	codes := batchCodeRegex.FindAllStringIndex(text, -1)
	for _, label := range labels {
		for _, code := range codes {
			if code[0] >= label[1] && code[0]-label[1] <= batchProximityWindow {
				return true
			}
			if code[1] <= label[0] && label[0]-code[1] <= batchProximityWindow {
				return true
			}
		}
	}
	return false
}

package domain

// DeviationType classifies a word-level difference between the verified
// reference text and the extracted production text.
type DeviationType string

const (
	DeviationRemoved DeviationType = "removed" // present in reference, missing from extraction
	DeviationAdded   DeviationType = "added"   // present in extraction, absent from reference
)

// Deviation is one word-level difference between the two texts.
type Deviation struct {
	Type DeviationType `json:"type"`
	Word string        `json:"word"`
}

// WordCount reports the normalized token counts of both sides of a comparison.
type WordCount struct {
	Verified   int `json:"verified"`
	Production int `json:"production"`
}

// ComparisonResult is the raw similarity measurement between extracted text
// and the verified reference.
type ComparisonResult struct {
	MatchPercentage int         `json:"match_percentage"` // 0-100
	Deviations      []Deviation `json:"deviations"`
	WordCount       WordCount   `json:"word_count"`
}

// ComparisonStatus is the pass/fail outcome of the similarity check alone.
type ComparisonStatus string

const (
	StatusPass ComparisonStatus = "PASS"
	StatusFail ComparisonStatus = "FAIL"
)

// FinalDecision is the fused verdict over similarity and structural
// authenticity.
type FinalDecision string

const (
	DecisionValid      FinalDecision = "VALID"
	DecisionSuspicious FinalDecision = "SUSPICIOUS"
)

// ComparisonOutcome combines the similarity measurement, the structural
// validation report, and the final verdict.
type ComparisonOutcome struct {
	MatchPercentage   int              `json:"match_percentage"`
	Status            ComparisonStatus `json:"status"`
	Deviations        []Deviation      `json:"deviations"`
	WordCount         WordCount        `json:"word_count"`
	MedicalValidation ValidationReport `json:"medical_validation"`
	FinalDecision     FinalDecision    `json:"final_decision"`
}

// VerificationResult is the full output of one end-to-end label check.
type VerificationResult struct {
	OCR        *DocumentOCRResult `json:"ocr"`
	Comparison ComparisonOutcome  `json:"comparison"`
}

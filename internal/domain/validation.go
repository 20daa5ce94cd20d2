package domain

// ValidationReport is the outcome of the five deterministic structure checks
// applied to extracted label text. Each passing check contributes 20 points
// to AuthenticityScore; a score of at least AuthenticityThreshold marks the
// text structurally authentic.
type ValidationReport struct {
	DosageFormatValid       bool `json:"dosage_format_valid"`
	ExpiryFormatValid       bool `json:"expiry_format_valid"`
	BatchNumberValid        bool `json:"batch_number_valid"`
	ManufacturerPresent     bool `json:"manufacturer_present"`
	DrugNameFormatValid     bool `json:"drug_name_format_valid"`
	AuthenticityScore       int  `json:"authenticity_score"`
	IsStructurallyAuthentic bool `json:"is_structurally_authentic"`
}

// AuthenticityThreshold is the minimum authenticity score for a structurally
// authentic label (4 of 5 rules at 20 points each).
const AuthenticityThreshold = 70

// PointsPerRule is the score contribution of each passing validation rule.
const PointsPerRule = 20

package service

import (
	"pharma-label-verifier/internal/domain"
)

// DefaultSimilarityThreshold is the minimum match percentage for a passing
// comparison when no threshold is configured.
const DefaultSimilarityThreshold = 95

// DecisionEngine fuses the similarity measurement and the structural
// validation report into a single deterministic verdict.
type DecisionEngine struct {
	similarityThreshold int
}

// NewDecisionEngine creates a decision engine with the given similarity
// threshold. Non-positive thresholds fall back to the default.
func NewDecisionEngine(similarityThreshold int) *DecisionEngine {
	if similarityThreshold <= 0 {
		similarityThreshold = DefaultSimilarityThreshold
	}
	return &DecisionEngine{similarityThreshold: similarityThreshold}
}

// Decide produces the combined outcome. VALID requires both sufficient
// similarity and structural authenticity; everything else is SUSPICIOUS.
func (d *DecisionEngine) Decide(cmp domain.ComparisonResult, report domain.ValidationReport) domain.ComparisonOutcome {
	outcome := domain.ComparisonOutcome{
		MatchPercentage:   cmp.MatchPercentage,
		Deviations:        cmp.Deviations,
		WordCount:         cmp.WordCount,
		MedicalValidation: report,
	}

	if cmp.MatchPercentage >= d.similarityThreshold {
		outcome.Status = domain.StatusPass
	} else {
		outcome.Status = domain.StatusFail
	}
	outcome.FinalDecision = d.decideFinal(cmp.MatchPercentage, report.AuthenticityScore)
	return outcome
}

func (d *DecisionEngine) decideFinal(similarity, authenticityScore int) domain.FinalDecision {
	if similarity >= d.similarityThreshold && authenticityScore >= domain.AuthenticityThreshold {
		return domain.DecisionValid
	}
	return domain.DecisionSuspicious
}

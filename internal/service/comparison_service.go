package service

import (
	"math"
	"strings"

	"pharma-label-verifier/internal/domain"
)

// ComparisonService measures how closely extracted label text matches the
// verified reference text, word by word.
type ComparisonService struct {
	logger domain.Logger
}

// NewComparisonService creates the text comparer
func NewComparisonService(logger domain.Logger) *ComparisonService {
	return &ComparisonService{logger: logger}
}

// Compare tokenizes both texts, computes the word-level similarity ratio and
// lists the deviating words. The reference must be non-empty; an empty
// extraction is a legal input that simply matches nothing.
func (s *ComparisonService) Compare(extracted, reference string) (domain.ComparisonResult, error) {
	if strings.TrimSpace(reference) == "" {
		return domain.ComparisonResult{}, domain.ErrInvalidReference
	}

	verified := tokenize(reference)
	production := tokenize(extracted)

	result := domain.ComparisonResult{
		WordCount: domain.WordCount{
			Verified:   len(verified),
			Production: len(production),
		},
	}

	if len(production) == 0 {
		result.Deviations = deviationsFromLCS(verified, production, lcsTable(verified, production))
		return result, nil
	}

	table := lcsTable(verified, production)
	common := table[len(verified)][len(production)]
	result.MatchPercentage = int(math.Round(200 * float64(common) / float64(len(verified)+len(production))))
	result.Deviations = deviationsFromLCS(verified, production, table)

	s.logger.Debug("Comparison complete",
		"match_percentage", result.MatchPercentage,
		"deviations", len(result.Deviations))
	return result, nil
}

// tokenize folds case and collapses whitespace so that formatting noise does
// not count against the match.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// lcsTable builds the longest-common-subsequence length table over word
// tokens. Index [i][j] holds the LCS length of a[:i] and b[:j].
func lcsTable(a, b []string) [][]int {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}
	return table
}

// deviationsFromLCS walks the table backwards and emits the words present in
// only one of the texts, in document order. Words missing from the
// extraction are "removed"; extra extracted words are "added".
func deviationsFromLCS(verified, production []string, table [][]int) []domain.Deviation {
	var reversed []domain.Deviation

	i, j := len(verified), len(production)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && verified[i-1] == production[j-1]:
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			reversed = append(reversed, domain.Deviation{Type: domain.DeviationAdded, Word: production[j-1]})
			j--
		default:
			reversed = append(reversed, domain.Deviation{Type: domain.DeviationRemoved, Word: verified[i-1]})
			i--
		}
	}

	if len(reversed) == 0 {
		return nil
	}
	out := make([]domain.Deviation, len(reversed))
	for k, d := range reversed {
		out[len(reversed)-1-k] = d
	}
	return out
}

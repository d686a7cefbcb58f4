package matching

import (
	"strings"

	"resource-workers/internal/catalog"
)

// FactorScore is one factor's contribution to a match.
type FactorScore struct {
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Explanation string  `json:"explanation"`
}

// MatchingRationale explains a total score factor by factor.
type MatchingRationale struct {
	TotalScore float64                `json:"totalScore"`
	Factors    map[string]FactorScore `json:"factors"`
	Summary    string                 `json:"summary"`
}

const (
	strongTier   = 0.8
	moderateTier = 0.5
	summarySep   = " | "
)

// score evaluates every factor for one resource and sums score x weight.
func (e *Engine) score(r *catalog.Resource, req normalizedRequest, weights map[string]float64) MatchingRationale {
	results := [...]factorResult{
		languageMatch(r, req),
		geographicProximity(r, req, e.opts.MaxDistanceKm),
		incomeEligibility(r, req),
		serviceAvailability(r),
		specializedServices(r, req),
	}

	rationale := MatchingRationale{Factors: make(map[string]FactorScore, len(results))}
	for i, name := range catalog.Factors {
		w := weights[name]
		rationale.Factors[name] = FactorScore{
			Score:       results[i].score,
			Weight:      w,
			Explanation: results[i].explanation,
		}
		rationale.TotalScore += results[i].score * w
	}
	rationale.Summary = summarize(results[:])
	return rationale
}

// summarize orders explanations strong, moderate, weak; factor order within a tier.
func summarize(results []factorResult) string {
	var strong, moderate, weak []string
	for _, r := range results {
		switch {
		case r.score >= strongTier:
			strong = append(strong, r.explanation)
		case r.score >= moderateTier:
			moderate = append(moderate, r.explanation)
		default:
			weak = append(weak, r.explanation)
		}
	}

	parts := make([]string, 0, len(results))
	parts = append(parts, strong...)
	parts = append(parts, moderate...)
	parts = append(parts, weak...)
	return strings.Join(parts, summarySep)
}

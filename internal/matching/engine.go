// Package matching scores catalog resources against a user request, either as
// a weighted model with a per-factor rationale or as a direct boolean filter.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"resource-workers/internal/catalog"
	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/common/metrics"
)

const (
	DefaultMinScore   = 0.5
	DefaultMaxResults = 10

	ModeWeighted = "weighted"
	ModeFilter   = "filter"
)

// Filter outcomes.
const (
	FilterStrict  = "strict"
	FilterRelaxed = "relaxed"
	FilterNone    = "none"
)

// Options are the engine tunables. Zero values are replaced by the defaults.
type Options struct {
	MaxDistanceKm    float64
	GeneralCategory  string
	StrictBaseScore  float64
	RelaxedBaseScore float64
	RankDecrement    float64
	// WeightOverrides replace individual catalog weights.
	WeightOverrides map[string]float64
}

func DefaultOptions() Options {
	return Options{
		MaxDistanceKm:    50,
		GeneralCategory:  "Multi Services",
		StrictBaseScore:  0.9,
		RelaxedBaseScore: 0.8,
		RankDecrement:    0.02,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxDistanceKm <= 0 {
		o.MaxDistanceKm = d.MaxDistanceKm
	}
	if o.GeneralCategory == "" {
		o.GeneralCategory = d.GeneralCategory
	}
	if o.StrictBaseScore == 0 {
		o.StrictBaseScore = d.StrictBaseScore
	}
	if o.RelaxedBaseScore == 0 {
		o.RelaxedBaseScore = d.RelaxedBaseScore
	}
	if o.RankDecrement == 0 {
		o.RankDecrement = d.RankDecrement
	}
	return o
}

// CatalogProvider hands out the active catalog snapshot; *catalog.Store implements it.
type CatalogProvider interface {
	Catalog() (*catalog.Catalog, error)
}

// Engine is stateless apart from its options and is safe for concurrent use.
type Engine struct {
	provider CatalogProvider
	opts     Options
	logger   logger.Logger
}

func NewEngine(provider CatalogProvider, opts Options, log logger.Logger) *Engine {
	return &Engine{
		provider: provider,
		opts:     opts.withDefaults(),
		logger:   log.WithFields(map[string]interface{}{"component": "matching-engine"}),
	}
}

func (e *Engine) snapshot(mode string) (*catalog.Catalog, error) {
	cat, err := e.provider.Catalog()
	if err != nil || cat == nil {
		metrics.MatchRequests.WithLabelValues(mode, "unavailable").Inc()
		details := "no catalog snapshot"
		if err != nil {
			details = err.Error()
		}
		return nil, errors.NewMatchingUnavailableError(details)
	}
	return cat, nil
}

func (e *Engine) weights(cat *catalog.Catalog) map[string]float64 {
	if len(e.opts.WeightOverrides) == 0 {
		return cat.MatchingCriteria.ScoringWeights
	}
	out := make(map[string]float64, len(catalog.Factors))
	for k, v := range cat.MatchingCriteria.ScoringWeights {
		out[k] = v
	}
	for k, v := range e.opts.WeightOverrides {
		out[k] = v
	}
	return out
}

// FindMatchingResources scores every resource, drops those below minScore,
// sorts by descending score (catalog order breaks ties) and keeps at most
// maxResults. minScore is clamped to [0,1]; a negative maxResults means no cap.
// An empty result is not an error.
func (e *Engine) FindMatchingResources(req Request, minScore float64, maxResults int) ([]MatchedResource, error) {
	start := time.Now()

	cat, err := e.snapshot(ModeWeighted)
	if err != nil {
		return nil, err
	}

	minScore = clampScore(minScore)
	nreq := normalize(req)
	weights := e.weights(cat)

	matches := make([]MatchedResource, 0)
	for i := range cat.Resources {
		r := &cat.Resources[i]
		rationale := e.score(r, nreq, weights)
		if rationale.TotalScore < minScore {
			continue
		}
		matches = append(matches, MatchedResource{
			Score:     rationale.TotalScore,
			Rationale: rationale,
			Resource:  project(r, nreq.language),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	matches = truncate(matches, maxResults)

	e.observe(ModeWeighted, len(cat.Resources), len(matches), start)
	return matches, nil
}

// FilterResult is the direct-filter outcome. Mode is strict, relaxed or none.
type FilterResult struct {
	Matches []MatchedResource `json:"matches"`
	Mode    string            `json:"mode"`
}

// FilterResources is the boolean AND filter on language, zipcode and
// category. When nothing passes, it broadens to general providers that speak
// the language. Scores are fixed: base minus a decrement per rank.
func (e *Engine) FilterResources(req Request, maxResults int) (*FilterResult, error) {
	start := time.Now()

	cat, err := e.snapshot(ModeFilter)
	if err != nil {
		return nil, err
	}

	nreq := normalize(req)
	if nreq.language == "" {
		nreq.language = catalog.LanguageEnglish
	}

	var strict, relaxed []*catalog.Resource
	for i := range cat.Resources {
		r := &cat.Resources[i]
		if e.passesStrict(r, nreq) {
			strict = append(strict, r)
		}
	}

	result := &FilterResult{Mode: FilterStrict}
	selected, base := strict, e.opts.StrictBaseScore

	if len(strict) == 0 {
		for i := range cat.Resources {
			r := &cat.Resources[i]
			if r.SupportsLanguage(nreq.language) && r.CategoryIs(e.opts.GeneralCategory) {
				relaxed = append(relaxed, r)
			}
		}
		if len(relaxed) > 0 {
			selected, base = relaxed, e.opts.RelaxedBaseScore
			result.Mode = FilterRelaxed
		} else {
			result.Mode = FilterNone
		}
	}

	result.Matches = make([]MatchedResource, 0, len(selected))
	for i, r := range selected {
		score := math.Max(0, base-float64(i)*e.opts.RankDecrement)
		result.Matches = append(result.Matches, MatchedResource{
			Score: score,
			Rationale: MatchingRationale{
				TotalScore: score,
				Factors:    map[string]FactorScore{},
				Summary:    "Matched based on " + matchReason(r, nreq.language),
			},
			Resource: project(r, nreq.language),
		})
	}
	result.Matches = truncate(result.Matches, maxResults)

	e.observe(ModeFilter, len(cat.Resources), len(result.Matches), start)
	return result, nil
}

func (e *Engine) passesStrict(r *catalog.Resource, req normalizedRequest) bool {
	if !r.SupportsLanguage(req.language) {
		return false
	}
	if req.zipcode != "" && r.ZipRestricted() && !r.ServesZipcode(req.zipcode) {
		return false
	}
	if req.category != "" && !r.CategoryIs(req.category) && !r.CategoryIs(e.opts.GeneralCategory) {
		return false
	}
	return true
}

func matchReason(r *catalog.Resource, language string) string {
	var reasons []string
	if r.SupportsLanguage(language) {
		reasons = append(reasons, "language accessibility")
	}
	if r.HasCategory() {
		reasons = append(reasons, fmt.Sprintf("service type (%s)", r.BasicInfo.Category))
	}
	if r.ZipRestricted() {
		reasons = append(reasons, "location")
	}
	if len(reasons) == 0 {
		return "general service availability"
	}
	return strings.Join(reasons, ", ")
}

func (e *Engine) observe(mode string, scanned, returned int, start time.Time) {
	elapsed := time.Since(start)

	outcome := "matched"
	if returned == 0 {
		outcome = "empty"
	}
	metrics.MatchRequests.WithLabelValues(mode, outcome).Inc()
	metrics.MatchResults.WithLabelValues(mode).Observe(float64(returned))
	metrics.MatchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())

	fields := map[string]interface{}{
		"mode":       mode,
		"scanned":    scanned,
		"returned":   returned,
		"durationMs": elapsed.Milliseconds(),
	}
	if elapsed > 500*time.Millisecond {
		e.logger.Warn("matching exceeded 500ms", fields)
		return
	}
	e.logger.Debug("matching completed", fields)
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func truncate(matches []MatchedResource, maxResults int) []MatchedResource {
	if maxResults >= 0 && len(matches) > maxResults {
		return matches[:maxResults]
	}
	return matches
}

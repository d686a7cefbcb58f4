package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/validation"
)

// Scoring factor names as they appear in matching_criteria.scoring_weights.
const (
	FactorLanguageMatch       = "language_match"
	FactorGeographicProximity = "geographic_proximity"
	FactorIncomeEligibility   = "income_eligibility"
	FactorServiceAvailability = "service_availability"
	FactorSpecializedServices = "specialized_services"
)

// Factors lists the scoring factors in evaluation order.
var Factors = []string{
	FactorLanguageMatch,
	FactorGeographicProximity,
	FactorIncomeEligibility,
	FactorServiceAvailability,
	FactorSpecializedServices,
}

type Categories struct {
	Primary       []string            `json:"primary"`
	Subcategories map[string][]string `json:"subcategories"`
}

type MatchingCriteria struct {
	PriorityFactors []string           `json:"priority_factors,omitempty"`
	ScoringWeights  map[string]float64 `json:"scoring_weights"`
}

// Rejection records a guide entry that was dropped during parsing.
type Rejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Catalog is an immutable snapshot of the resource guide. Nothing mutates a
// Catalog after Parse or Fallback returns it.
type Catalog struct {
	Version          string
	LastUpdated      string
	Resources        []Resource
	Categories       Categories
	MatchingCriteria MatchingCriteria
	Rejected         []Rejection
	Source           string
	Fallback         bool
	LoadedAt         time.Time
}

// Weight returns the configured weight for a factor; a factor the guide does
// not list weighs nothing.
func (c *Catalog) Weight(factor string) float64 {
	return c.MatchingCriteria.ScoringWeights[factor]
}

// Summary is the publicly shareable description of a snapshot.
type Summary struct {
	Version        string              `json:"version"`
	LastUpdated    string              `json:"lastUpdated"`
	Source         string              `json:"source"`
	Fallback       bool                `json:"fallback"`
	ResourceCount  int                 `json:"resourceCount"`
	RejectedCount  int                 `json:"rejectedCount"`
	Categories     []string            `json:"categories"`
	Subcategories  map[string][]string `json:"subcategories,omitempty"`
	ScoringWeights map[string]float64  `json:"scoringWeights"`
	LoadedAt       time.Time           `json:"loadedAt"`
}

func (c *Catalog) Summary() Summary {
	return Summary{
		Version:        c.Version,
		LastUpdated:    c.LastUpdated,
		Source:         c.Source,
		Fallback:       c.Fallback,
		ResourceCount:  len(c.Resources),
		RejectedCount:  len(c.Rejected),
		Categories:     c.Categories.Primary,
		Subcategories:  c.Categories.Subcategories,
		ScoringWeights: c.MatchingCriteria.ScoringWeights,
		LoadedAt:       c.LoadedAt,
	}
}

// DefaultScoringWeights are used by the fallback catalog and by any guide that
// omits matching_criteria.scoring_weights entirely.
func DefaultScoringWeights() map[string]float64 {
	return map[string]float64{
		FactorLanguageMatch:       0.30,
		FactorGeographicProximity: 0.20,
		FactorIncomeEligibility:   0.20,
		FactorServiceAvailability: 0.15,
		FactorSpecializedServices: 0.15,
	}
}

func defaultCategories() Categories {
	return Categories{
		Primary: []string{"Housing", "Education", "Healthcare", "Legal", "Employment"},
		Subcategories: map[string][]string{
			"Housing":    {"Rental", "Homeless", "Emergency"},
			"Education":  {"ESL", "GED", "K-12"},
			"Healthcare": {"Medical", "Mental", "Dental"},
			"Legal":      {"Immigration", "Criminal", "Civil"},
			"Employment": {"Job Search", "Training", "Resume"},
		},
	}
}

// Fallback returns the built-in catalog substituted when the guide cannot be
// loaded: no resources, the canonical categories and the default weights.
func Fallback() *Catalog {
	return &Catalog{
		Version:     "1.0",
		LastUpdated: "2025-04-12",
		Resources:   []Resource{},
		Categories:  defaultCategories(),
		MatchingCriteria: MatchingCriteria{
			PriorityFactors: []string{FactorLanguageMatch, FactorGeographicProximity, FactorIncomeEligibility},
			ScoringWeights:  DefaultScoringWeights(),
		},
		Source:   "fallback",
		Fallback: true,
		LoadedAt: time.Now().UTC(),
	}
}

type rawGuide struct {
	Version          string            `json:"version"`
	LastUpdated      string            `json:"last_updated"`
	Resources        []json.RawMessage `json:"resources"`
	Categories       *Categories       `json:"categories"`
	MatchingCriteria *MatchingCriteria `json:"matching_criteria"`
}

// ParseOptions bound the parse step.
type ParseOptions struct {
	Source       string
	MaxResources int
}

// Parse decodes a resource guide document into a normalized Catalog. A
// document that is not JSON or has no resources array is an error; single
// entries that fail schema validation are dropped and listed in Rejected.
func Parse(data []byte, opts ParseOptions) (*Catalog, error) {
	var guide rawGuide
	if err := json.Unmarshal(data, &guide); err != nil {
		return nil, errors.NewCatalogValidationFailedError(fmt.Sprintf("decode guide: %v", err))
	}
	if guide.Resources == nil {
		return nil, errors.NewCatalogValidationFailedError("guide has no resources array")
	}

	cat := &Catalog{
		Version:     guide.Version,
		LastUpdated: guide.LastUpdated,
		Resources:   make([]Resource, 0, len(guide.Resources)),
		Source:      opts.Source,
		LoadedAt:    time.Now().UTC(),
	}

	if guide.Categories != nil {
		cat.Categories = *guide.Categories
	} else {
		cat.Categories = defaultCategories()
	}

	if guide.MatchingCriteria != nil && guide.MatchingCriteria.ScoringWeights != nil {
		cat.MatchingCriteria = *guide.MatchingCriteria
	} else {
		cat.MatchingCriteria = MatchingCriteria{ScoringWeights: DefaultScoringWeights()}
		if guide.MatchingCriteria != nil {
			cat.MatchingCriteria.PriorityFactors = guide.MatchingCriteria.PriorityFactors
		}
	}

	for i, raw := range guide.Resources {
		if opts.MaxResources > 0 && len(cat.Resources) >= opts.MaxResources {
			cat.Rejected = append(cat.Rejected, Rejection{
				Index:  i,
				Reason: fmt.Sprintf("catalog limit of %d resources reached", opts.MaxResources),
			})
			continue
		}

		if result := validation.ValidateResource(raw); !result.Valid {
			cat.Rejected = append(cat.Rejected, Rejection{Index: i, ID: idOf(raw), Reason: result.Summary()})
			continue
		}

		var res Resource
		if err := json.Unmarshal(raw, &res); err != nil {
			cat.Rejected = append(cat.Rejected, Rejection{Index: i, ID: idOf(raw), Reason: err.Error()})
			continue
		}
		res.Normalize()
		cat.Resources = append(cat.Resources, res)
	}

	return cat, nil
}

func idOf(raw json.RawMessage) string {
	var doc struct {
		BasicInfo struct {
			ID interface{} `json:"id"`
		} `json:"basic_info"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || doc.BasicInfo.ID == nil {
		return ""
	}
	return fmt.Sprint(doc.BasicInfo.ID)
}

// New builds a catalog directly from typed resources, normalizing each one.
// Weights are used verbatim; nil means the defaults.
func New(resources []Resource, weights map[string]float64) *Catalog {
	if weights == nil {
		weights = DefaultScoringWeights()
	}
	out := make([]Resource, len(resources))
	for i := range resources {
		out[i] = resources[i]
		out[i].Normalize()
	}
	return &Catalog{
		Version:          "inline",
		Resources:        out,
		Categories:       defaultCategories(),
		MatchingCriteria: MatchingCriteria{ScoringWeights: weights},
		Source:           "inline",
		LoadedAt:         time.Now().UTC(),
	}
}

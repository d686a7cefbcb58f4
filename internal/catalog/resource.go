// Package catalog loads the community resource guide and keeps an immutable,
// normalized snapshot of it for the matching engine.
package catalog

import (
	"encoding/json"
	"math"
	"strings"
)

// Coordinates of a resource; either value may be absent in the source document.
type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type BasicInfo struct {
	ID            string       `json:"id"`
	TitleEN       string       `json:"title_en"`
	TitleES       string       `json:"title_es"`
	DescriptionEN string       `json:"description_en"`
	DescriptionES string       `json:"description_es"`
	Category      string       `json:"category"`
	Subcategories []string     `json:"subcategories"`
	Languages     []string     `json:"languages"`
	Website       string       `json:"website"`
	ContactPhone  string       `json:"contact_phone"`
	ContactEmail  *string      `json:"contact_email"`
	Address       string       `json:"address"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

type IncomeRequirements struct {
	MinIncome      *float64 `json:"min_income"`
	MaxIncome      *float64 `json:"max_income"`
	IncomeBrackets []string `json:"income_brackets"`
}

type AgeRequirements struct {
	MinAge    *float64 `json:"min_age"`
	MaxAge    *float64 `json:"max_age"`
	AgeRanges []string `json:"age_ranges"`
}

type ServiceArea struct {
	Zipcodes []string `json:"zipcodes"`
	Counties []string `json:"counties"`
	Regions  []string `json:"regions"`
}

type Eligibility struct {
	IncomeRequirements    IncomeRequirements `json:"income_requirements"`
	AgeRequirements       AgeRequirements    `json:"age_requirements"`
	DocumentationRequired []string           `json:"documentation_required"`
	ServiceArea           ServiceArea        `json:"service_area"`
}

type ServiceDetails struct {
	Hours               map[string]string `json:"hours,omitempty"`
	AppointmentRequired *bool             `json:"appointment_required"`
	WalkInAccepted      *bool             `json:"walk_in_accepted"`
	EstimatedWaitTime   string            `json:"estimated_wait_time,omitempty"`
	ServiceDuration     string            `json:"service_duration,omitempty"`
	Cost                string            `json:"cost,omitempty"`
}

// Resource is one entry of the guide. InteractionPatterns and Metadata are
// carried through untouched; nothing scores or projects them.
type Resource struct {
	BasicInfo           BasicInfo       `json:"basic_info"`
	Eligibility         Eligibility     `json:"eligibility"`
	ServiceDetails      ServiceDetails  `json:"service_details"`
	InteractionPatterns json.RawMessage `json:"interaction_patterns,omitempty"`
	Metadata            json.RawMessage `json:"metadata,omitempty"`

	languages      map[string]struct{}
	subcategories  map[string]struct{}
	zipcodes       map[string]struct{}
	incomeBrackets map[string]struct{}
	categoryKey    string
}

// Normalize builds the lookup sets used by the matcher. Parse calls it for
// every resource; it is idempotent.
func (r *Resource) Normalize() {
	r.languages = make(map[string]struct{}, len(r.BasicInfo.Languages))
	for _, l := range r.BasicInfo.Languages {
		if code := NormalizeLanguage(l); code != "" {
			r.languages[code] = struct{}{}
		}
	}
	r.subcategories = toSet(r.BasicInfo.Subcategories)
	r.zipcodes = toSet(r.Eligibility.ServiceArea.Zipcodes)
	r.incomeBrackets = toSet(r.Eligibility.IncomeRequirements.IncomeBrackets)
	r.categoryKey = strings.ToLower(strings.TrimSpace(r.BasicInfo.Category))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// SupportsLanguage reports whether the resource offers service in the given
// normalized language code.
func (r *Resource) SupportsLanguage(code string) bool {
	_, ok := r.languages[code]
	return ok
}

// ZipRestricted is false when the resource declares no zipcodes.
func (r *Resource) ZipRestricted() bool {
	return len(r.zipcodes) > 0
}

func (r *Resource) ServesZipcode(zipcode string) bool {
	_, ok := r.zipcodes[strings.TrimSpace(zipcode)]
	return ok
}

// IncomeRestricted is false when the resource declares no income brackets.
func (r *Resource) IncomeRestricted() bool {
	return len(r.incomeBrackets) > 0
}

func (r *Resource) ServesIncomeBracket(bracket string) bool {
	_, ok := r.incomeBrackets[strings.TrimSpace(bracket)]
	return ok
}

func (r *Resource) HasCategory() bool {
	return r.categoryKey != ""
}

// CategoryIs compares case-insensitively.
func (r *Resource) CategoryIs(category string) bool {
	return r.categoryKey != "" && r.categoryKey == strings.ToLower(strings.TrimSpace(category))
}

// OffersSubcategory is an exact set membership test.
func (r *Resource) OffersSubcategory(subcategory string) bool {
	_, ok := r.subcategories[strings.TrimSpace(subcategory)]
	return ok
}

// Location returns the resource coordinates when both are present and form a
// valid position. Anything else reads as "no location".
func (r *Resource) Location() (lat, lon float64, ok bool) {
	c := r.BasicInfo.Coordinates
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		return 0, 0, false
	}
	if !ValidPosition(*c.Latitude, *c.Longitude) {
		return 0, 0, false
	}
	return *c.Latitude, *c.Longitude, true
}

// ValidPosition reports whether lat/lon are finite degrees within range.
func ValidPosition(lat, lon float64) bool {
	for _, v := range []float64{lat, lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}

// Label is used in logs.
func (r *Resource) Label() string {
	if r.BasicInfo.ID != "" {
		return r.BasicInfo.ID
	}
	return r.BasicInfo.TitleEN
}

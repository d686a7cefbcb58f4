package matching

import (
	"strings"

	"resource-workers/internal/catalog"
)

// Request is a fully resolved user request. Every field is optional and an
// absent field never lowers a score.
type Request struct {
	Language    string   `json:"language,omitempty"`
	Zipcode     string   `json:"zipcode,omitempty"`
	Income      string   `json:"income,omitempty"`
	Age         *int     `json:"age,omitempty"` // carried for callers; no factor reads it
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// normalizedRequest is what the factor functions see.
type normalizedRequest struct {
	language    string
	zipcode     string
	income      string
	category    string
	subcategory string
	lat, lon    float64
	hasPosition bool
}

// placeholder the intent extractor emits for "no zipcode given"
const noZipcode = "none"

func normalize(req Request) normalizedRequest {
	n := normalizedRequest{
		language:    catalog.NormalizeLanguage(req.Language),
		zipcode:     strings.TrimSpace(req.Zipcode),
		income:      strings.TrimSpace(req.Income),
		category:    strings.TrimSpace(req.Category),
		subcategory: strings.TrimSpace(req.Subcategory),
	}
	if strings.EqualFold(n.zipcode, noZipcode) {
		n.zipcode = ""
	}
	// an unusable position falls back to the zipcode path
	if req.Latitude != nil && req.Longitude != nil && catalog.ValidPosition(*req.Latitude, *req.Longitude) {
		n.lat, n.lon, n.hasPosition = *req.Latitude, *req.Longitude, true
	}
	return n
}

// internal/workers/resources/find-matching-resources/models.go
package findmatchingresources

import "resource-workers/internal/matching"

// Input is the user criteria extracted from the conversation. Every field is optional.
type Input struct {
	Language    string   `json:"language"`
	Zipcode     string   `json:"zipcode"`
	Income      string   `json:"income"`
	Age         *int     `json:"age"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	MinScore    *float64 `json:"minScore"`
	MaxResults  *int     `json:"maxResults"`
}

type Output struct {
	MatchRequestID string                     `json:"matchRequestId"`
	Matches        []matching.MatchedResource `json:"matches"`
	MatchCount     int                        `json:"matchCount"`
}

func (in *Input) toRequest() matching.Request {
	return matching.Request{
		Language:    in.Language,
		Zipcode:     in.Zipcode,
		Income:      in.Income,
		Age:         in.Age,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
}

// internal/workers/resources/filter-resources/models.go
package filterresources

import "resource-workers/internal/matching"

// Input carries the same criteria as a weighted match. The filter has no score
// threshold, so there is no minScore.
type Input struct {
	Language    string   `json:"language"`
	Zipcode     string   `json:"zipcode"`
	Income      string   `json:"income"`
	Age         *int     `json:"age"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	MaxResults  *int     `json:"maxResults"`
}

type Output struct {
	MatchRequestID string                     `json:"matchRequestId"`
	Matches        []matching.MatchedResource `json:"matches"`
	MatchCount     int                        `json:"matchCount"`
	FilterMode     string                     `json:"filterMode"`
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

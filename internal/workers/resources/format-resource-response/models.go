// internal/workers/resources/format-resource-response/models.go
package formatresourceresponse

import "resource-workers/internal/matching"

// Input is the output of either matching worker plus the reply language.
type Input struct {
	Matches  []matching.MatchedResource `json:"matches"`
	Language string                     `json:"language"`
}

type Output struct {
	ResponseText string `json:"responseText"`
}

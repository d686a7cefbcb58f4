// internal/workers/resources/format-resource-response/handler_test.go
package formatresourceresponse

import (
	"context"
	"testing"

	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	handler := NewHandler(nil, logger.NewTestLogger(t))

	tests := []struct {
		name     string
		input    *Input
		expected string
	}{
		{
			name:     "no matches english",
			input:    &Input{Language: "en"},
			expected: "Sorry, I couldn't find any resources matching your search.",
		},
		{
			name:     "no matches spanish",
			input:    &Input{Language: "Español"},
			expected: "Lo siento, no pude encontrar recursos que coincidan con tu búsqueda.",
		},
		{
			name: "one match",
			input: &Input{
				Language: "en",
				Matches: []matching.MatchedResource{{
					Score: 0.9,
					Resource: matching.ResourceView{
						Title:   "Legal Aid Center",
						Contact: matching.Contact{Phone: "864-555-0100"},
					},
				}},
			},
			expected: "Here are some resources that might help you:\n\nLegal Aid Center\nContact: 864-555-0100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := handler.Execute(context.Background(), tt.input)
			assert.Equal(t, tt.expected, out.ResponseText)
		})
	}
}

func TestParseInput(t *testing.T) {
	in, err := parseInput(`{"language":"es","matches":[{"score":0.8,"resource":{"title":"Centro"}}]}`)
	require.NoError(t, err)
	require.Len(t, in.Matches, 1)
	assert.Equal(t, "Centro", in.Matches[0].Resource.Title)

	in, err = parseInput(`{}`)
	require.NoError(t, err)
	assert.Empty(t, in.Matches)

	_, err = parseInput(`{"matches":"none"}`)
	assert.True(t, errors.IsInvalidRequest(err))
}

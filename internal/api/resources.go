// internal/api/resources.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/validation"
	"resource-workers/internal/matching"

	"github.com/google/uuid"
)

// matchRequest is the request body of both resource endpoints.
type matchRequest struct {
	matching.Request
	MinScore   *float64 `json:"minScore"`
	MaxResults *int     `json:"maxResults"`
}

type matchResponse struct {
	RequestID    string                     `json:"requestId"`
	Mode         string                     `json:"mode"`
	FilterMode   string                     `json:"filterMode,omitempty"`
	Matches      []matching.MatchedResource `json:"matches"`
	MatchCount   int                        `json:"matchCount"`
	ResponseText string                     `json:"responseText"`
}

// decodeMatchRequest validates the body against the match request schema and
// decodes it. An empty body is an empty request.
func (s *Server) decodeMatchRequest(w http.ResponseWriter, r *http.Request) (*matchRequest, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("read body: %v", err))
	}
	if len(raw) == 0 {
		return &matchRequest{}, nil
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("parse body: %v", err))
	}
	if result := validation.ValidateMatchRequest(doc); !result.Valid {
		return nil, errors.NewInvalidMatchRequestError(result.Summary()).
			WithMetadata("errors", result.GetErrorMessages())
	}

	var req matchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, errors.NewInvalidMatchRequestError(fmt.Sprintf("decode body: %v", err))
	}
	return &req, nil
}

func (s *Server) maxResults(req *matchRequest) int {
	if req.MaxResults != nil {
		return *req.MaxResults
	}
	return s.opts.DefaultMaxResults
}

// handleMatch handles POST /v1/resources/match.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeMatchRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	minScore := s.opts.DefaultMinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	matches, err := s.engine.FindMatchingResources(req.Request, minScore, s.maxResults(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{
		RequestID:    uuid.NewString(),
		Mode:         matching.ModeWeighted,
		Matches:      matches,
		MatchCount:   len(matches),
		ResponseText: matching.FormatResourceResponse(matches, req.Language),
	})
}

// handleFilter handles POST /v1/resources/filter. minScore is ignored.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeMatchRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.engine.FilterResources(req.Request, s.maxResults(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{
		RequestID:    uuid.NewString(),
		Mode:         matching.ModeFilter,
		FilterMode:   result.Mode,
		Matches:      result.Matches,
		MatchCount:   len(result.Matches),
		ResponseText: matching.FormatResourceResponse(result.Matches, req.Language),
	})
}

// internal/api/server.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"resource-workers/internal/catalog"
	"resource-workers/internal/common/errors"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/matching"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the matching surface the API exposes.
type Engine interface {
	FindMatchingResources(req matching.Request, minScore float64, maxResults int) ([]matching.MatchedResource, error)
	FilterResources(req matching.Request, maxResults int) (*matching.FilterResult, error)
}

// Catalogs reports the active snapshot; *catalog.Store implements it.
type Catalogs interface {
	Catalog() (*catalog.Catalog, error)
	Ready() bool
}

type Options struct {
	DefaultMinScore   float64
	DefaultMaxResults int
	MaxBodyBytes      int64
}

type Server struct {
	engine   Engine
	catalogs Catalogs
	opts     Options
	logger   logger.Logger
}

func NewServer(engine Engine, catalogs Catalogs, opts Options, log logger.Logger) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Server{
		engine:   engine,
		catalogs: catalogs,
		opts:     opts,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Routes mounts the health endpoints, the Prometheus endpoint and the v1 API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.serveHealth)
	r.Get("/ready", s.serveReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/resources/match", s.handleMatch)
		r.Post("/resources/filter", s.handleFilter)
		r.Get("/catalog", s.serveCatalog)
	})
	return r
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// serveReady is 503 until the first catalog load has completed.
func (s *Server) serveReady(w http.ResponseWriter, r *http.Request) {
	if !s.catalogs.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "loading",
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) serveCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalogs.Catalog()
	if err != nil {
		s.writeError(w, r, errors.NewMatchingUnavailableError(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, cat.Summary())
}

type errorBody struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   string   `json:"details,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidMatchRequest:
		return http.StatusBadRequest
	case errors.ErrCodeMatchingUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := errors.Normalize(err)
	status := statusFor(stdErr.Code)

	body := errorBody{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		RequestID: middleware.GetReqID(r.Context()),
	}
	if msgs, ok := stdErr.Metadata["errors"].([]string); ok {
		body.Errors = msgs
	}

	fields := map[string]interface{}{
		"path":   r.URL.Path,
		"status": status,
		"code":   stdErr.Code,
	}
	if status >= http.StatusInternalServerError {
		fields["error"] = stdErr.Details
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Debug("request rejected", fields)
	}

	writeJSON(w, status, map[string]errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

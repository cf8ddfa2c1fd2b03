// Package chi exposes the search engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/domain"
	classifyuc "github.com/mobinnet/towersearch/internal/usecase/classify"
	healthuc "github.com/mobinnet/towersearch/internal/usecase/health"
	searchuc "github.com/mobinnet/towersearch/internal/usecase/search"
)

// maxCatalogSize bounds the per-request catalog snapshot. One batch call
// covers the whole catalog, so the bound also caps provider payload size.
const maxCatalogSize = 1000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the use case services.
type Server struct {
	search        *searchuc.Service
	classify      *classifyuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	classify *classifyuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		classify: classify,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidItem, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInterpretationFailed, http.StatusBadGateway, ErrorCodeInterpretationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrClassificationFailed, http.StatusBadGateway, ErrorCodeClassificationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, ErrorCodeVectorDimMismatch),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chirouter.Router) {
	r.Post("/v1/search", s.SearchCatalog)
	r.Post("/v1/similar", s.SimilarMaterials)
	r.Post("/v1/classify", s.ClassifyMaterial)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchCatalog handles POST /v1/search.
func (s *Server) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	includeScores, ok := s.bindIncludeScores(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query is required")
		return
	}

	items, err := itemsFromDTO(req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	svc, ok := s.searchFor(w, req.Threshold, req.Limit)
	if !ok {
		return
	}
	matches, err := svc.Search(r.Context(), req.Query, items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, matchListToDTO(matches, includeScores))
}

// SimilarMaterials handles POST /v1/similar.
func (s *Server) SimilarMaterials(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	source, err := itemFromDTO(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "source: "+err.Error())
		return
	}
	items, err := itemsFromDTO(req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	svc, ok := s.searchFor(w, req.Threshold, req.Limit)
	if !ok {
		return
	}
	matches, err := svc.Similar(r.Context(), source, items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// Similarity suggestions always carry scores; that is their point.
	writeJSON(w, http.StatusOK, matchListToDTO(matches, true))
}

// ClassifyMaterial handles POST /v1/classify.
func (s *Server) ClassifyMaterial(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := itemFromDTO(req.Item)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	loc, err := s.classify.Classify(r.Context(), item)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{Location: string(loc)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchFor applies per-request threshold and limit overrides.
// Thresholds outside [0, 1] write a 400 and return ok=false; 0 disables
// the cutoff for the request.
func (s *Server) searchFor(w http.ResponseWriter, threshold *float64, limit *int) (*searchuc.Service, bool) {
	svc := s.search
	if threshold != nil {
		if *threshold < 0 || *threshold > 1 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "threshold must be between 0 and 1")
			return nil, false
		}
		svc = svc.WithThreshold(*threshold)
	}
	if limit != nil {
		svc = svc.WithLimit(*limit)
	}
	return svc, true
}

// bindIncludeScores parses the optional include_scores query parameter.
func (s *Server) bindIncludeScores(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var includeScores bool
	if r.URL.Query().Has("include_scores") {
		err := runtime.BindQueryParameter("form", true, false, "include_scores", r.URL.Query(), &includeScores)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid include_scores parameter")
			return false, false
		}
	}
	return includeScores, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidItem,
		domain.ErrInterpretationFailed,
		domain.ErrEmbeddingProviderError,
		domain.ErrClassificationFailed,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yellowbooks/bizsearch/internal/domain"
	healthuc "github.com/yellowbooks/bizsearch/internal/usecase/health"
	searchuc "github.com/yellowbooks/bizsearch/internal/usecase/search"
)

const maxQuestionLen = 2000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the business search API over HTTP.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrProviderConfig, http.StatusInternalServerError, "provider_config"),
		sentinelHandler(domain.ErrProviderResponse, http.StatusBadGateway, "provider_response"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, "vector_dim_mismatch"),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/business/search", s.SearchBusinesses)
	r.Delete("/business/search/cache", s.ClearSearchCache)
	r.Get("/healthz", s.Healthz)
	r.Get("/readyz", s.Readyz)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	Question string `json:"question"`
	City     string `json:"city"`
	TopN     int    `json:"top_n"`
}

type clearCacheRequest struct {
	Question string `json:"question"`
	City     string `json:"city"`
}

// SearchBusinesses handles POST /business/search.
func (s *Server) SearchBusinesses(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Question is required")
		return
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "validation_failed", "Question is too long")
		return
	}
	if req.TopN < 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "top_n must be positive")
		return
	}

	res, err := s.search.Search(r.Context(), question, strings.TrimSpace(req.City), req.TopN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ClearSearchCache handles DELETE /business/search/cache. With a question in
// the body it evicts the one matching entry; with an empty body it evicts
// every cached search result.
func (s *Server) ClearSearchCache(w http.ResponseWriter, r *http.Request) {
	var req clearCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	if question != "" {
		deleted := s.search.ClearCache(r.Context(), question, strings.TrimSpace(req.City))
		writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
		return
	}

	count := s.search.ClearAllCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"deleted_count": count})
}

// Healthz handles GET /healthz. Always reports alive.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz.
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProviderConfig,
		domain.ErrProviderResponse,
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
func sentinelHandler(sentinel error, status int, code string) errorHandler {
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
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

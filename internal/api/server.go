package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/common/logger"
	"lead-triage/internal/models"
	"lead-triage/internal/triage/pipeline"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultMaxBodyBytes = 1 << 20

// Pipeline is the part of pipeline.Service the HTTP layer needs.
type Pipeline interface {
	CreateSuggestion(ctx context.Context, lead models.RawLead) (*models.CreateResult, error)
	ApproveSuggestion(ctx context.Context, req models.ApprovalRequest) (*models.ApproveResult, error)
	Analytics() models.AnalyticsState
	RecentAudit() models.AuditWindow
	RecordFailure(operation string, err error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Option func(*Server)

func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

type Server struct {
	pipeline     Pipeline
	logger       logger.Logger
	maxBodyBytes int64
	checks       map[string]ReadinessCheck
	now          func() time.Time
}

func NewServer(p Pipeline, log logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		pipeline:     p,
		logger:       log.WithFields(map[string]interface{}{"component": "api"}),
		maxBodyBytes: DefaultMaxBodyBytes,
		checks:       map[string]ReadinessCheck{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the full handler tree, middleware included.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/lead", s.handleLead)
	mux.HandleFunc("POST /api/approve", s.handleApprove)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/audit", s.handleAudit)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.recoverer(s.requestLogger(mux))
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, pipeline.OperationCreate, err)
		return
	}

	lead, err := pipeline.DecodeLead(body)
	if err != nil {
		s.fail(w, pipeline.OperationCreate, err)
		return
	}

	result, err := s.pipeline.CreateSuggestion(r.Context(), lead)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, pipeline.OperationApprove, err)
		return
	}

	req, err := pipeline.DecodeApproval(body)
	if err != nil {
		s.fail(w, pipeline.OperationApprove, err)
		return
	}

	// The service counts its own rejections.
	result, err := s.pipeline.ApproveSuggestion(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.Analytics())
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.RecentAudit())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"checks": failed})
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"failed": failed,
			"time":   s.now().Format(time.RFC3339),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   s.now().Format(time.RFC3339),
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return body, nil
}

func (s *Server) fail(w http.ResponseWriter, operation string, err error) {
	s.pipeline.RecordFailure(operation, err)
	s.writeError(w, err)
}

type errorResponse struct {
	Error *errors.StandardError `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
	}
	s.writeJSON(w, status, errorResponse{Error: stdErr})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err})
	}
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 10 << 20
)

// envelope is the response shape of every /api/ai route.
type envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type riskBody struct {
	Property    *domain.PropertyRecord      `json:"property"`
	Environment *domain.EnvironmentSnapshot `json:"environment,omitempty"`
}

type fraudBody struct {
	Claim *domain.ClaimRecord `json:"claim"`
}

type batchBody struct {
	Requests []domain.BatchRequest `json:"requests"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": domain.Now(),
	})
}

func (s *Server) handleAnalyzeRisk(w http.ResponseWriter, r *http.Request) {
	var body riskBody
	if !s.decode(w, r, &body) {
		return
	}
	if body.Property == nil {
		s.fail(w, r, &domain.ValidationError{Field: "property", Reason: "required"})
		return
	}
	result, err := s.analyzer.AnalyzeRisk(r.Context(), domain.RiskRequest{
		Property:    body.Property,
		Environment: body.Environment,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, result)
}

func (s *Server) handleAnalyzeDamage(w http.ResponseWriter, r *http.Request) {
	var body domain.DamageRequest
	if !s.decode(w, r, &body) {
		return
	}
	result, err := s.analyzer.AnalyzeDamage(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, result)
}

func (s *Server) handleDetectFraud(w http.ResponseWriter, r *http.Request) {
	var body fraudBody
	if !s.decode(w, r, &body) {
		return
	}
	result, err := s.analyzer.DetectFraud(r.Context(), body.Claim)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, result)
}

func (s *Server) handleBatchProcess(w http.ResponseWriter, r *http.Request) {
	var body batchBody
	if !s.decode(w, r, &body) {
		return
	}
	resp, err := s.analyzer.ProcessBatch(r.Context(), body.Requests)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeData(w, s.analyzer.ModelInfo())
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusNotFound, envelope{Error: "endpoint not found"})
}

// decode reads a JSON body and answers 400 itself when it cannot.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// fail maps caller errors to 400 and hides everything else behind a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsValidation(err) {
		writeEnvelope(w, http.StatusBadRequest, envelope{Error: err.Error()})
		return
	}
	if r.Context().Err() != nil {
		s.logger.InfoContext(r.Context(), "request cancelled", "path", r.URL.Path)
	} else {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeEnvelope(w, http.StatusInternalServerError, envelope{Error: "internal server error"})
}

func writeData(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeEnvelope(w http.ResponseWriter, status int, e envelope) {
	e.Timestamp = domain.Now()
	sharedobs.WriteJSON(w, status, e)
}

// withRequestID propagates or assigns X-Request-ID and stores it on the context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(domain.WithRequestID(r.Context(), id)))
	})
}

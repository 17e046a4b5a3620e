// Package http serves the analysis API together with the health, readiness,
// and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/storm-claims-analysis/internal/analysis"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

const serviceName = "storm-claims-analysis"

// Analyzer is the analysis surface the API exposes.
type Analyzer interface {
	AnalyzeRisk(ctx context.Context, req domain.RiskRequest) (domain.RiskResult, error)
	AnalyzeDamage(ctx context.Context, req domain.DamageRequest) (domain.DamageResult, error)
	DetectFraud(ctx context.Context, claim *domain.ClaimRecord) (domain.FraudResult, error)
	ProcessBatch(ctx context.Context, requests []domain.BatchRequest) (domain.BatchResponse, error)
	ModelInfo() analysis.ModelsInfo
}

// Server exposes the analysis API and operational endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/ai routes plus /health,
// /healthz, /readyz, and /metrics.
func NewServer(addr string, analyzer Analyzer, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withRequestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		logger:   logger,
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/ai/analyze-risk", s.handleAnalyzeRisk)
	mux.HandleFunc("POST /api/ai/analyze-damage", s.handleAnalyzeDamage)
	mux.HandleFunc("POST /api/ai/detect-fraud", s.handleDetectFraud)
	mux.HandleFunc("POST /api/ai/batch-process", s.handleBatchProcess)
	mux.HandleFunc("GET /api/ai/model-info", s.handleModelInfo)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("/", s.handleNotFound)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

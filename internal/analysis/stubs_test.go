package analysis

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

// --- stub backends ---

type stubImage struct {
	probs  [][]float64
	err    error
	panics bool
}

func (s *stubImage) PredictProba(_ []domain.FeatureVector) ([][]float64, error) {
	if s.panics {
		panic("image backend exploded")
	}
	return s.probs, s.err
}

func (s *stubImage) Info() backend.ModelInfo {
	return backend.ModelInfo{Name: "damage_detection", Version: "stub", Type: "stub", Status: backend.StatusLoaded}
}

type stubRegressor struct {
	score       float64
	err         error
	importances []float64
	panics      bool
}

func (s *stubRegressor) Predict(_ domain.FeatureVector) (float64, error) {
	if s.panics {
		panic("risk backend exploded")
	}
	return s.score, s.err
}

func (s *stubRegressor) FeatureImportances() []float64 { return s.importances }
func (s *stubRegressor) Info() backend.ModelInfo {
	return backend.ModelInfo{Name: "risk_scoring", Version: "stub", Type: "stub", Status: backend.StatusLoaded}
}

type stubClassifier struct {
	p      float64
	err    error
	panics bool
}

func (s *stubClassifier) PredictProba(_ domain.FeatureVector) (float64, error) {
	if s.panics {
		panic("fraud backend exploded")
	}
	return s.p, s.err
}

func (s *stubClassifier) Info() backend.ModelInfo {
	return backend.ModelInfo{Name: "fraud_detection", Version: "stub", Type: "stub", Status: backend.StatusLoaded}
}

// --- stub collaborators ---

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.ReviewNotice
	err     error
	panics  bool
}

func (n *recordingNotifier) NotifyReview(_ context.Context, notice domain.ReviewNotice) error {
	if n.panics {
		panic("notifier exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

type fixedProvider struct {
	snapshot domain.EnvironmentSnapshot
	err      error
}

func (p *fixedProvider) Snapshot(_ context.Context, _, _ float64) (domain.EnvironmentSnapshot, error) {
	return p.snapshot, p.err
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uniformImportances() []float64 {
	imp := make([]float64, domain.RiskFeatureCount)
	for i := range imp {
		imp[i] = 1.0 / float64(domain.RiskFeatureCount)
	}
	return imp
}

// defaultEngine uses the shipped parameter-driven backends.
func defaultEngine(opts Options) *Engine {
	logger := discardLogger()
	a, err := NewAnalyzers(DefaultModelParams(), 300000, logger)
	if err != nil {
		panic(err)
	}
	return NewEngine(a, opts, logger, observability.NewMetricsForTesting())
}

func exampleClaim() domain.ClaimRecord {
	return domain.ClaimRecord{
		ClaimID:      "clm-1",
		IncidentDate: "2024-11-01T12:00:00Z",
		ReportedDate: "2024-11-08T12:00:00Z",
		ClaimAmount:  50000,
		ClaimType:    "flood",
		Documents:    []domain.Document{{FileName: "damage1.jpg"}},
		SatelliteEvidence: &domain.SatelliteEvidence{
			PreDisasterImagery: &domain.ImageRef{ImageURL: "test.jpg"},
		},
	}
}

// counterValue sums the counters of c whose labels include every given value.
func counterValue(t *testing.T, c prometheus.Collector, labelValues ...string) float64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		for _, m := range f.GetMetric() {
			values := map[string]bool{}
			for _, l := range m.GetLabel() {
				values[l.GetValue()] = true
			}
			matched := true
			for _, v := range labelValues {
				matched = matched && values[v]
			}
			if matched {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

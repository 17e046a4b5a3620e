package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

const (
	riskConfidence = 85.0
	topRiskFactors = 5
)

// RiskAnalyzer scores a property against its environment.
type RiskAnalyzer struct {
	regressor backend.Regressor
	logger    *slog.Logger
}

// NewRiskAnalyzer creates a RiskAnalyzer backed by the given regressor.
func NewRiskAnalyzer(regressor backend.Regressor, logger *slog.Logger) *RiskAnalyzer {
	return &RiskAnalyzer{regressor: regressor, logger: logger}
}

// Analyze never fails: any problem, including a panicking backend, yields
// domain.DefaultRiskResult.
func (a *RiskAnalyzer) Analyze(ctx context.Context, property domain.PropertyRecord, env domain.EnvironmentSnapshot) (result domain.RiskResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "risk backend panicked, using fallback", "panic", r)
			result = domain.DefaultRiskResult()
		}
	}()

	result, err := a.assess(property, env)
	if err != nil {
		a.logger.WarnContext(ctx, "risk analysis failed, using fallback", "error", err)
		return domain.DefaultRiskResult()
	}
	return result
}

func (a *RiskAnalyzer) assess(property domain.PropertyRecord, env domain.EnvironmentSnapshot) (domain.RiskResult, error) {
	features := domain.ExtractRiskFeatures(property, env)

	score, err := a.regressor.Predict(features)
	if err != nil {
		return domain.RiskResult{}, fmt.Errorf("predict risk: %w", err)
	}
	if math.IsNaN(score) {
		return domain.RiskResult{}, fmt.Errorf("predict risk: score is NaN")
	}

	importances := a.regressor.FeatureImportances()
	if len(importances) != domain.RiskFeatureCount {
		return domain.RiskResult{}, fmt.Errorf("regressor reported %d importances, want %d", len(importances), domain.RiskFeatureCount)
	}

	return domain.RiskResult{
		OverallRiskScore: round(math.Max(0, math.Min(100, score)), 2),
		Confidence:       riskConfidence,
		TopRiskFactors:   rankFactors(importances, features),
		ModelVersion:     domain.RiskModelVersion,
	}, nil
}

// rankFactors returns the most important features in descending order. Equal
// importances keep feature order.
func rankFactors(importances []float64, features domain.FeatureVector) []domain.RiskFactor {
	idx := make([]int, len(importances))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return importances[idx[a]] > importances[idx[b]]
	})

	n := min(topRiskFactors, len(idx))
	out := make([]domain.RiskFactor, 0, n)
	for _, i := range idx[:n] {
		out = append(out, domain.RiskFactor{
			Factor:     domain.RiskFeatureNames[i],
			Importance: round(importances[i], 3),
			Value:      round(features[i], 3),
		})
	}
	return out
}

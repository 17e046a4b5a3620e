package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// Rule thresholds over normalized fraud features.
const (
	delayedReportingThreshold = 0.5
	highAmountThreshold       = 0.8
	documentationThreshold    = 0.2
)

// FraudAnalyzer estimates the likelihood that a claim is fraudulent.
type FraudAnalyzer struct {
	classifier backend.Classifier
	logger     *slog.Logger
}

// NewFraudAnalyzer creates a FraudAnalyzer backed by the given classifier.
func NewFraudAnalyzer(classifier backend.Classifier, logger *slog.Logger) *FraudAnalyzer {
	return &FraudAnalyzer{classifier: classifier, logger: logger}
}

// Analyze never fails: any problem, including malformed claim timestamps or a
// panicking backend, yields domain.DefaultFraudResult.
func (a *FraudAnalyzer) Analyze(ctx context.Context, claim domain.ClaimRecord) (result domain.FraudResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "fraud backend panicked, using fallback", "claim_id", claim.ClaimID, "panic", r)
			result = domain.DefaultFraudResult()
		}
	}()

	result, err := a.assess(claim)
	if err != nil {
		a.logger.WarnContext(ctx, "fraud detection failed, using fallback", "claim_id", claim.ClaimID, "error", err)
		return domain.DefaultFraudResult()
	}
	return result
}

func (a *FraudAnalyzer) assess(claim domain.ClaimRecord) (domain.FraudResult, error) {
	features, err := domain.ExtractFraudFeatures(claim)
	if err != nil {
		return domain.FraudResult{}, err
	}

	p, err := a.classifier.PredictProba(features)
	if err != nil {
		return domain.FraudResult{}, fmt.Errorf("predict fraud: %w", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return domain.FraudResult{}, fmt.Errorf("predict fraud: probability %v out of range", p)
	}

	level := domain.RiskLevelFromProbability(p)
	return domain.FraudResult{
		RiskLevel:        level,
		FraudProbability: round(p, 3),
		RiskFactors:      fraudFactors(features),
		FlaggedForReview: level == domain.RiskHigh,
		ModelVersion:     domain.FraudModelVersion,
	}, nil
}

func fraudFactors(f domain.FeatureVector) []string {
	factors := []string{}
	if f[domain.FraudReportingDelay] > delayedReportingThreshold {
		factors = append(factors, domain.FactorDelayedReporting)
	}
	if f[domain.FraudClaimAmount] > highAmountThreshold {
		factors = append(factors, domain.FactorHighClaimAmount)
	}
	if f[domain.FraudDocumentCount] < documentationThreshold {
		factors = append(factors, domain.FactorInsufficientDocumentation)
	}
	if f[domain.FraudSatellite] == 0 {
		factors = append(factors, domain.FactorNoSatelliteEvidence)
	}
	return factors
}

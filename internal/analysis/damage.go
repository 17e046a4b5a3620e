package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

const (
	structuralThreshold    = 20.0
	visibleChangeThreshold = 0.7
)

// DamageAnalyzer compares pre- and post-event imagery features.
type DamageAnalyzer struct {
	classifier backend.ImageClassifier
	baseValue  decimal.Decimal
	logger     *slog.Logger
}

// NewDamageAnalyzer creates a DamageAnalyzer. basePropertyValue is the
// reference value used to approximate the estimated loss.
func NewDamageAnalyzer(classifier backend.ImageClassifier, basePropertyValue float64, logger *slog.Logger) *DamageAnalyzer {
	return &DamageAnalyzer{
		classifier: classifier,
		baseValue:  decimal.NewFromFloat(basePropertyValue),
		logger:     logger,
	}
}

// Analyze never fails: any problem, including a panicking backend, yields
// domain.DefaultDamageResult.
func (a *DamageAnalyzer) Analyze(ctx context.Context, pre, post domain.ImageSource) (result domain.DamageResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "damage backend panicked, using fallback", "panic", r)
			result = domain.DefaultDamageResult()
		}
	}()

	result, err := a.assess(pre, post)
	if err != nil {
		a.logger.WarnContext(ctx, "damage analysis failed, using fallback", "error", err)
		return domain.DefaultDamageResult()
	}
	return result
}

func (a *DamageAnalyzer) assess(pre, post domain.ImageSource) (domain.DamageResult, error) {
	if len(pre.Features) == 0 || len(post.Features) == 0 {
		return domain.DamageResult{}, errors.New("image features unavailable")
	}
	diff, err := domain.AbsDiff(pre.Features, post.Features)
	if err != nil {
		return domain.DamageResult{}, err
	}

	probs, err := a.classifier.PredictProba([]domain.FeatureVector{pre.Features, post.Features, diff})
	if err != nil {
		return domain.DamageResult{}, fmt.Errorf("classify imagery: %w", err)
	}
	if err := checkDistributions(probs, 3, len(domain.DamageClasses)); err != nil {
		return domain.DamageResult{}, err
	}

	preIdx := argmax(probs[0])
	postIdx := argmax(probs[1])
	diffMax := probs[2][argmax(probs[2])]

	increase := postIdx - preIdx
	pct := math.Max(0, float64(increase)/float64(len(domain.DamageClasses))*100)
	pct = round(pct, 2)

	types := []string{}
	if pct > structuralThreshold {
		types = append(types, domain.DamageStructural)
	}
	if diffMax > visibleChangeThreshold {
		types = append(types, domain.DamageVisibleChange)
	}

	loss := a.baseValue.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)).Round(2)

	return domain.DamageResult{
		DamagePercentage: pct,
		DamageType:       types,
		Confidence:       round((diffMax+probs[1][postIdx])/2*100, 2),
		EstimatedLoss:    loss.InexactFloat64(),
		PreEventClass:    domain.DamageClasses[preIdx],
		PostEventClass:   domain.DamageClasses[postIdx],
		ModelVersion:     domain.DamageModelVersion,
	}, nil
}

func checkDistributions(probs [][]float64, rows, classes int) error {
	if len(probs) != rows {
		return fmt.Errorf("classifier returned %d distributions, want %d", len(probs), rows)
	}
	for i, row := range probs {
		if len(row) != classes {
			return fmt.Errorf("distribution %d has %d classes, want %d", i, len(row), classes)
		}
		for _, p := range row {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return fmt.Errorf("distribution %d has invalid probability %v", i, p)
			}
		}
	}
	return nil
}

// argmax returns the first index of the largest value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

func TestEngine_AnalyzeRisk_EnvironmentSource(t *testing.T) {
	withCoords := &domain.PropertyRecord{Latitude: domain.Float(29.76), Longitude: domain.Float(-95.37)}
	supplied := domain.BaselineEnvironment()

	tests := []struct {
		name     string
		provider domain.EnvironmentProvider
		req      domain.RiskRequest
		expected string
	}{
		{"request environment", &fixedProvider{}, domain.RiskRequest{Property: withCoords, Environment: &supplied}, domain.EnvironmentFromRequest},
		{"no provider", nil, domain.RiskRequest{Property: withCoords}, domain.EnvironmentBaseline},
		{"no coordinates", &fixedProvider{}, domain.RiskRequest{Property: &domain.PropertyRecord{}}, domain.EnvironmentBaseline},
		{"nil property", &fixedProvider{}, domain.RiskRequest{}, domain.EnvironmentBaseline},
		{"provider lookup", &fixedProvider{snapshot: supplied}, domain.RiskRequest{Property: withCoords}, domain.EnvironmentFromProvider},
		{"provider failure", &fixedProvider{err: errors.New("timeout")}, domain.RiskRequest{Property: withCoords}, domain.EnvironmentLookupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := defaultEngine(Options{Environment: tt.provider})
			got, err := e.AnalyzeRisk(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.EnvironmentSource)
			assert.GreaterOrEqual(t, got.OverallRiskScore, 0.0)
			assert.LessOrEqual(t, got.OverallRiskScore, 100.0)
		})
	}
}

func TestEngine_AnalyzeRisk_BaselineMatchesExplicitBaseline(t *testing.T) {
	e := defaultEngine(Options{})
	env := domain.BaselineEnvironment()

	implicit, err := e.AnalyzeRisk(context.Background(), domain.RiskRequest{Property: &domain.PropertyRecord{}})
	require.NoError(t, err)
	explicit, err := e.AnalyzeRisk(context.Background(), domain.RiskRequest{Property: &domain.PropertyRecord{}, Environment: &env})
	require.NoError(t, err)

	assert.Equal(t, explicit.OverallRiskScore, implicit.OverallRiskScore)
	assert.Equal(t, explicit.TopRiskFactors, implicit.TopRiskFactors)
}

func TestEngine_AnalyzeDamage_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   domain.DamageRequest
		field string
	}{
		{"missing pre", domain.DamageRequest{PostImage: &domain.ImageSource{ImageURL: "post.jpg"}}, "preDisasterImagery"},
		{"empty pre", domain.DamageRequest{PreImage: &domain.ImageSource{}, PostImage: &domain.ImageSource{ImageURL: "post.jpg"}}, "preDisasterImagery"},
		{"missing post", domain.DamageRequest{PreImage: &domain.ImageSource{ImageURL: "pre.jpg"}}, "postDisasterImagery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &stubImage{panics: true}
			e := NewEngine(Analyzers{Damage: NewDamageAnalyzer(img, 300000, discardLogger())},
				Options{}, discardLogger(), observability.NewMetricsForTesting())

			_, err := e.AnalyzeDamage(context.Background(), tt.req)
			require.Error(t, err)

			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, 1.0, counterValue(t, e.metrics.AnalysisRequests, KindDamage, observability.OutcomeRejected))
		})
	}
}

func TestEngine_AnalyzeDamage_URLOnlyFallsBack(t *testing.T) {
	e := defaultEngine(Options{})

	got, err := e.AnalyzeDamage(context.Background(), domain.DamageRequest{
		PreImage:  &domain.ImageSource{ImageURL: "pre.jpg"},
		PostImage: &domain.ImageSource{ImageURL: "post.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDamageResult(), got)
	assert.Equal(t, 1.0, counterValue(t, e.metrics.AnalysisRequests, KindDamage, observability.OutcomeFallback))
}

func TestEngine_AnalyzeDamage_Features(t *testing.T) {
	e := defaultEngine(Options{})

	got, err := e.AnalyzeDamage(context.Background(), domain.DamageRequest{
		PreImage:  &domain.ImageSource{Features: domain.FeatureVector{0.1, 0.1}},
		PostImage: &domain.ImageSource{Features: domain.FeatureVector{0.9, 0.9}},
	})
	require.NoError(t, err)
	assert.False(t, got.Fallback)
	assert.Positive(t, got.DamagePercentage)
	assert.Equal(t, 1.0, counterValue(t, e.metrics.AnalysisRequests, KindDamage, observability.OutcomeComplete))
}

func TestEngine_AnalyzeDamage_BackendPanicFallsBack(t *testing.T) {
	e := NewEngine(Analyzers{Damage: NewDamageAnalyzer(&stubImage{panics: true}, 300000, discardLogger())},
		Options{}, discardLogger(), observability.NewMetricsForTesting())

	var got domain.DamageResult
	require.NotPanics(t, func() {
		var err error
		got, err = e.AnalyzeDamage(context.Background(), domain.DamageRequest{
			PreImage:  &domain.ImageSource{Features: domain.FeatureVector{0.1}},
			PostImage: &domain.ImageSource{Features: domain.FeatureVector{0.9}},
		})
		require.NoError(t, err)
	})
	assert.Equal(t, domain.DefaultDamageResult(), got)
	assert.Equal(t, 1.0, counterValue(t, e.metrics.AnalysisRequests, KindDamage, observability.OutcomeFallback))
}

func TestEngine_DetectFraud_NilClaim(t *testing.T) {
	e := defaultEngine(Options{})

	_, err := e.DetectFraud(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestEngine_DetectFraud_NotifiesFlagged(t *testing.T) {
	notifier := &recordingNotifier{}
	e := NewEngine(Analyzers{Fraud: NewFraudAnalyzer(&stubClassifier{p: 0.9}, discardLogger())},
		Options{Notifier: notifier}, discardLogger(), observability.NewMetricsForTesting())

	ctx := domain.WithRequestID(context.Background(), "req-42")
	claim := exampleClaim()
	got, err := e.DetectFraud(ctx, &claim)
	require.NoError(t, err)
	require.True(t, got.FlaggedForReview)

	require.Len(t, notifier.notices, 1)
	n := notifier.notices[0]
	assert.Equal(t, "req-42", n.RequestID)
	assert.Equal(t, "clm-1", n.ClaimID)
	assert.Equal(t, domain.RiskHigh, n.RiskLevel)
	assert.Equal(t, 0.9, n.FraudProbability)
	assert.Equal(t, 1.0, counterValue(t, e.metrics.ReviewNotifications, "published"))
}

func TestEngine_DetectFraud_FallbackIsFlaggedAndNotified(t *testing.T) {
	notifier := &recordingNotifier{}
	e := NewEngine(Analyzers{Fraud: NewFraudAnalyzer(&stubClassifier{p: 0.1}, discardLogger())},
		Options{Notifier: notifier}, discardLogger(), observability.NewMetricsForTesting())

	claim := exampleClaim()
	claim.IncidentDate = "garbage"
	got, err := e.DetectFraud(context.Background(), &claim)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultFraudResult(), got)
	require.Len(t, notifier.notices, 1)
	assert.True(t, notifier.notices[0].Fallback)
}

func TestEngine_DetectFraud_NotifierErrorIgnored(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("nats down")}
	e := NewEngine(Analyzers{Fraud: NewFraudAnalyzer(&stubClassifier{p: 0.9}, discardLogger())},
		Options{Notifier: notifier}, discardLogger(), observability.NewMetricsForTesting())

	claim := exampleClaim()
	got, err := e.DetectFraud(context.Background(), &claim)
	require.NoError(t, err)
	assert.True(t, got.FlaggedForReview)
	assert.Equal(t, 1.0, counterValue(t, e.metrics.ReviewNotifications, "error"))
}

func TestEngine_DetectFraud_UnflaggedNotNotified(t *testing.T) {
	notifier := &recordingNotifier{}
	e := defaultEngine(Options{Notifier: notifier})

	claim := exampleClaim()
	_, err := e.DetectFraud(context.Background(), &claim)
	require.NoError(t, err)
	assert.Empty(t, notifier.notices)
}

func TestEngine_CancelledContext(t *testing.T) {
	e := defaultEngine(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.AnalyzeRisk(ctx, domain.RiskRequest{})
	assert.ErrorIs(t, err, context.Canceled)

	claim := exampleClaim()
	_, err = e.DetectFraud(ctx, &claim)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ModelInfo(t *testing.T) {
	e := defaultEngine(Options{})

	info := e.ModelInfo()

	require.Len(t, info.Models, 3)
	assert.Equal(t, domain.RiskModelVersion, info.Models["risk_scoring"].Version)
	assert.Equal(t, domain.FraudModelVersion, info.Models["fraud_detection"].Version)
	assert.Equal(t, domain.DamageModelVersion, info.Models["damage_detection"].Version)
	assert.Equal(t, Capabilities, info.Capabilities)
	assert.NotEmpty(t, info.Limitations)

	info.Limitations[0] = "mutated"
	assert.NotEqual(t, "mutated", e.ModelInfo().Limitations[0])
}

func TestEngine_CheckReadiness(t *testing.T) {
	assert.NoError(t, defaultEngine(Options{}).CheckReadiness(context.Background()))
}

// Package analysis runs the damage, risk, and fraud analyzers behind a single
// engine that validates requests, resolves environment context, and fans
// batches out over a bounded worker group.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

// Analysis kinds used in logs and metric labels.
const (
	KindRisk   = "risk"
	KindDamage = "damage"
	KindFraud  = "fraud"
)

const (
	defaultWorkers  = 4
	defaultMaxItems = 1000
)

// Limitations are surfaced by ModelInfo so callers know which parts of the
// scores are approximations.
var Limitations = []string{
	"fraud features 5-11 are fixed behavioral placeholders until claimant history is available",
	"risk feature 11 (storm probability) and 13 (extreme events) are capped normalizations of regional data",
	"estimated loss scales a single base property value by the damage percentage",
	"damage analysis requires externally extracted image features; image URLs alone fall back",
}

// Capabilities lists the analyses the engine serves.
var Capabilities = []string{
	"satellite_image_analysis",
	"risk_scoring",
	"fraud_detection",
	"batch_processing",
}

// Analyzers groups the three analyzers an Engine dispatches to.
type Analyzers struct {
	Risk   *RiskAnalyzer
	Damage *DamageAnalyzer
	Fraud  *FraudAnalyzer
}

// Options configure optional collaborators and batch limits. Zero values
// disable the collaborator or select the default limit.
type Options struct {
	Environment domain.EnvironmentProvider
	Notifier    domain.ReviewNotifier
	Workers     int
	MaxItems    int
}

// ModelsInfo describes the loaded backends.
type ModelsInfo struct {
	Models       map[string]backend.ModelInfo `json:"models"`
	Capabilities []string                     `json:"capabilities"`
	Limitations  []string                     `json:"limitations"`
}

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	risk     *RiskAnalyzer
	damage   *DamageAnalyzer
	fraud    *FraudAnalyzer
	env      domain.EnvironmentProvider
	notifier domain.ReviewNotifier
	workers  int
	maxItems int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewEngine wires the analyzers and optional collaborators into an Engine.
func NewEngine(a Analyzers, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	e := &Engine{
		risk:     a.Risk,
		damage:   a.Damage,
		fraud:    a.Fraud,
		env:      opts.Environment,
		notifier: opts.Notifier,
		workers:  opts.Workers,
		maxItems: opts.MaxItems,
		logger:   logger,
		metrics:  metrics,
	}
	if e.workers <= 0 {
		e.workers = defaultWorkers
	}
	if e.maxItems <= 0 {
		e.maxItems = defaultMaxItems
	}
	return e
}

// AnalyzeRisk scores a property. A nil property is treated as an empty record.
func (e *Engine) AnalyzeRisk(ctx context.Context, req domain.RiskRequest) (domain.RiskResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RiskResult{}, err
	}
	start := time.Now()

	env, source := domain.ResolveEnvironment(ctx, req, e.env, e.logger)
	property := domain.PropertyRecord{}
	if req.Property != nil {
		property = *req.Property
	}

	result := e.risk.Analyze(ctx, property, env)
	if !result.Fallback {
		result.EnvironmentSource = source
	}
	e.observe(KindRisk, start, result.Fallback)
	return result, nil
}

// AnalyzeDamage compares pre- and post-event imagery. Both sides must carry a
// URL or features.
func (e *Engine) AnalyzeDamage(ctx context.Context, req domain.DamageRequest) (domain.DamageResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.DamageResult{}, err
	}
	if req.PreImage.IsEmpty() {
		e.reject(KindDamage)
		return domain.DamageResult{}, &domain.ValidationError{Field: "preDisasterImagery", Reason: "imageUrl or features required"}
	}
	if req.PostImage.IsEmpty() {
		e.reject(KindDamage)
		return domain.DamageResult{}, &domain.ValidationError{Field: "postDisasterImagery", Reason: "imageUrl or features required"}
	}
	start := time.Now()

	result := e.damage.Analyze(ctx, *req.PreImage, *req.PostImage)
	e.observe(KindDamage, start, result.Fallback)
	return result, nil
}

// DetectFraud scores a claim. Flagged results are forwarded to the review
// notifier when one is configured.
func (e *Engine) DetectFraud(ctx context.Context, claim *domain.ClaimRecord) (domain.FraudResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.FraudResult{}, err
	}
	if claim == nil {
		e.reject(KindFraud)
		return domain.FraudResult{}, &domain.ValidationError{Field: "claim", Reason: "required"}
	}
	start := time.Now()

	result := e.fraud.Analyze(ctx, *claim)
	e.observe(KindFraud, start, result.Fallback)

	if result.FlaggedForReview {
		e.notifyReview(ctx, *claim, result)
	}
	return result, nil
}

// ModelInfo reports the loaded backends, capabilities, and known limitations.
func (e *Engine) ModelInfo() ModelsInfo {
	return ModelsInfo{
		Models: map[string]backend.ModelInfo{
			"damage_detection": e.damage.classifier.Info(),
			"risk_scoring":     e.risk.regressor.Info(),
			"fraud_detection":  e.fraud.classifier.Info(),
		},
		Capabilities: append([]string(nil), Capabilities...),
		Limitations:  append([]string(nil), Limitations...),
	}
}

// CheckReadiness always succeeds: backends are loaded before the engine exists.
func (e *Engine) CheckReadiness(_ context.Context) error {
	return nil
}

func (e *Engine) notifyReview(ctx context.Context, claim domain.ClaimRecord, result domain.FraudResult) {
	if e.notifier == nil {
		return
	}
	requestID := domain.RequestIDFromContext(ctx)
	if err := e.notifier.NotifyReview(ctx, domain.NewReviewNotice(requestID, claim, result)); err != nil {
		e.logger.WarnContext(ctx, "review notification failed",
			"claim_id", claim.ClaimID,
			"request_id", requestID,
			"error", err,
		)
		e.metrics.ReviewNotifications.WithLabelValues("error").Inc()
		return
	}
	e.metrics.ReviewNotifications.WithLabelValues("published").Inc()
}

func (e *Engine) observe(kind string, start time.Time, fallback bool) {
	outcome := observability.OutcomeComplete
	if fallback {
		outcome = observability.OutcomeFallback
	}
	e.metrics.AnalysisRequests.WithLabelValues(kind, outcome).Inc()
	e.metrics.AnalysisDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (e *Engine) reject(kind string) {
	e.metrics.AnalysisRequests.WithLabelValues(kind, observability.OutcomeRejected).Inc()
}

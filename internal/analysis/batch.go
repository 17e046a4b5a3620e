package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// ProcessBatch runs every item on a bounded worker group. One item's failure
// never affects another, and results keep request order.
func (e *Engine) ProcessBatch(ctx context.Context, requests []domain.BatchRequest) (domain.BatchResponse, error) {
	if len(requests) == 0 {
		return domain.BatchResponse{}, domain.ErrEmptyBatch
	}
	if len(requests) > e.maxItems {
		return domain.BatchResponse{}, &domain.ValidationError{
			Field:  "requests",
			Reason: fmt.Sprintf("batch of %d exceeds limit of %d", len(requests), e.maxItems),
		}
	}
	e.metrics.AnalysisBatchSize.Observe(float64(len(requests)))

	results := make([]domain.BatchItemResult, len(requests))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range requests {
		g.Go(func() error {
			results[i] = e.ProcessItem(ctx, requests[i])
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	return domain.BatchResponse{
		Results:   results,
		Processed: len(results),
		Failed:    failed,
		Timestamp: domain.Now(),
	}, nil
}

// ProcessItem analyzes one tagged request. Every failure, including a panic
// outside the analyzers, is reported in the returned item rather than as an
// error.
func (e *Engine) ProcessItem(ctx context.Context, req domain.BatchRequest) (res domain.BatchItemResult) {
	res = domain.BatchItemResult{ID: req.ID, Type: req.Type}

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "batch item panicked", "id", req.ID, "type", req.Type, "panic", r)
			res.Success = false
			res.Result = nil
			res.Error = fmt.Sprintf("internal error: %v", r)
			e.metrics.BatchItemFailures.WithLabelValues(typeLabel(req.Type)).Inc()
		}
	}()

	result, err := e.dispatch(ctx, req)
	if err != nil {
		e.logger.WarnContext(ctx, "batch item failed", "id", req.ID, "type", req.Type, "error", err)
		e.metrics.BatchItemFailures.WithLabelValues(typeLabel(req.Type)).Inc()
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Result = result
	return res
}

func (e *Engine) dispatch(ctx context.Context, req domain.BatchRequest) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request cancelled: %w", err)
	}

	switch req.Type {
	case domain.RequestRiskAnalysis:
		var r domain.RiskRequest
		if err := decodeData(req.Data, &r); err != nil {
			return nil, err
		}
		result, err := e.AnalyzeRisk(ctx, r)
		if err != nil {
			return nil, err
		}
		return result, nil

	case domain.RequestDamageAnalysis:
		var r domain.DamageRequest
		if err := decodeData(req.Data, &r); err != nil {
			return nil, err
		}
		result, err := e.AnalyzeDamage(ctx, r)
		if err != nil {
			return nil, err
		}
		return result, nil

	case domain.RequestFraudDetection:
		var c domain.ClaimRecord
		if err := decodeData(req.Data, &c); err != nil {
			return nil, err
		}
		if req.ID != "" {
			ctx = domain.WithRequestID(ctx, req.ID)
		}
		result, err := e.DetectFraud(ctx, &c)
		if err != nil {
			return nil, err
		}
		return result, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRequestType, req.Type)
	}
}

// typeLabel bounds the metric label to the known request types.
func typeLabel(t domain.RequestType) string {
	if !t.Valid() {
		return "unknown"
	}
	return string(t)
}

// decodeData unmarshals a batch payload, rejecting absent or malformed data.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return &domain.ValidationError{Field: "data", Reason: "required"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &domain.ValidationError{Field: "data", Reason: fmt.Sprintf("invalid payload: %v", err)}
	}
	return nil
}

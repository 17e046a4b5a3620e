package domain

import (
	"context"
	"encoding/json"
	"time"
)

// RequestType selects the analyzer for a batch item.
type RequestType string

const (
	RequestRiskAnalysis   RequestType = "risk_analysis"
	RequestDamageAnalysis RequestType = "damage_analysis"
	RequestFraudDetection RequestType = "fraud_detection"
)

// Valid reports whether t names a known analyzer.
func (t RequestType) Valid() bool {
	switch t {
	case RequestRiskAnalysis, RequestDamageAnalysis, RequestFraudDetection:
		return true
	default:
		return false
	}
}

// BatchRequest is one tagged item of a batch. Data holds a RiskRequest,
// DamageRequest, or ClaimRecord depending on Type.
type BatchRequest struct {
	ID   string          `json:"id"`
	Type RequestType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// BatchItemResult echoes the request's id and type. Result holds a RiskResult,
// DamageResult, or FraudResult when Success is true.
type BatchItemResult struct {
	ID      string      `json:"id"`
	Type    RequestType `json:"type"`
	Success bool        `json:"success"`
	Result  any         `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchResponse lists item results in request order.
type BatchResponse struct {
	Results   []BatchItemResult `json:"results"`
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Timestamp time.Time         `json:"timestamp"`
}

// RawMessage is an unprocessed analysis request read from the message bus.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is a serialized batch item result destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ReviewNotice announces a claim routed to manual fraud review.
type ReviewNotice struct {
	RequestID        string    `json:"requestId"`
	ClaimID          string    `json:"claimId,omitempty"`
	RiskLevel        RiskLevel `json:"riskLevel"`
	FraudProbability float64   `json:"fraudProbability"`
	RiskFactors      []string  `json:"riskFactors"`
	Fallback         bool      `json:"fallback"`
	FlaggedAt        time.Time `json:"flaggedAt"`
}

// ReviewNotifier delivers review notices to case handlers.
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, notice ReviewNotice) error
}

// NewReviewNotice builds a notice for a flagged fraud result.
func NewReviewNotice(requestID string, claim ClaimRecord, result FraudResult) ReviewNotice {
	return ReviewNotice{
		RequestID:        requestID,
		ClaimID:          claim.ClaimID,
		RiskLevel:        result.RiskLevel,
		FraudProbability: result.FraudProbability,
		RiskFactors:      result.RiskFactors,
		Fallback:         result.Fallback,
		FlaggedAt:        Now(),
	}
}

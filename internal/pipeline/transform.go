package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// ItemProcessor analyzes a single tagged request.
type ItemProcessor interface {
	ProcessItem(ctx context.Context, req domain.BatchRequest) domain.BatchItemResult
}

// AnalysisTransformer treats every message as one batch item and serializes
// its result. Analysis failures are published as unsuccessful results; only
// messages that are not a request envelope at all are rejected.
type AnalysisTransformer struct {
	processor ItemProcessor
	logger    *slog.Logger
}

// NewTransformer creates an AnalysisTransformer.
func NewTransformer(processor ItemProcessor, logger *slog.Logger) *AnalysisTransformer {
	return &AnalysisTransformer{processor: processor, logger: logger}
}

func (t *AnalysisTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	var req domain.BatchRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.OutputMessage{}, &domain.DataFormatError{Field: "message", Value: truncate(raw.Value), Err: err}
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result := t.processor.ProcessItem(ctx, req)
	value, err := json.Marshal(result)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("marshal result: %w", err)
	}

	return domain.OutputMessage{
		Key:   []byte(req.ID),
		Value: value,
		Headers: map[string]string{
			"request_type": string(req.Type),
			"success":      strconv.FormatBool(result.Success),
			"processed_at": domain.Now().Format(time.RFC3339),
		},
	}, nil
}

func truncate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

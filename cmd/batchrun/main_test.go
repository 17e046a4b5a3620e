package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

func TestDecodeRequests(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ids   []string
	}{
		{"envelope", `{"requests":[{"id":"a","type":"risk_analysis"},{"id":"b","type":"fraud_detection"}]}`, []string{"a", "b"}},
		{"bare array", "  \n[{\"id\":\"c\",\"type\":\"damage_analysis\"}]", []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequests([]byte(tt.input))
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestDecodeRequests_Invalid(t *testing.T) {
	_, err := decodeRequests([]byte(`[{"id":`))
	require.Error(t, err)

	_, err = decodeRequests([]byte(`nope`))
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	resp := domain.BatchResponse{Results: []domain.BatchItemResult{
		{Type: domain.RequestRiskAnalysis, Success: true, Result: domain.RiskResult{}},
		{Type: domain.RequestRiskAnalysis, Success: true, Result: domain.DefaultRiskResult()},
		{Type: domain.RequestFraudDetection, Success: false, Error: "claim: required"},
		{Type: "weather", Success: false},
	}}

	stats := summarize(resp)

	require.Contains(t, stats, domain.RequestRiskAnalysis)
	assert.Equal(t, typeStats{total: 2, fallback: 1}, *stats[domain.RequestRiskAnalysis])
	assert.Equal(t, typeStats{total: 1, failed: 1}, *stats[domain.RequestFraudDetection])
	assert.Equal(t, typeStats{total: 1, failed: 1}, *stats["weather"])

	var buf bytes.Buffer
	printStats(&buf, stats)
	assert.Contains(t, buf.String(), "risk_analysis")
	assert.Contains(t, buf.String(), "total=2 failed=0 fallback=1")
}

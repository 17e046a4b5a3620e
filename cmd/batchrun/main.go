// Command batchrun scores a JSON file of batch requests offline with the same
// engine the service uses, and writes the batch response as JSON.
//
// The input is either {"requests": [...]} or a bare array of requests.
//
// Usage:
//
//	go run ./cmd/batchrun \
//	  -in data/sample/batch_requests.json \
//	  -out results.json \
//	  -fixed-time 2024-11-10T09:30:00Z
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-claims-analysis/internal/analysis"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
	"github.com/couchcryptid/storm-claims-analysis/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to the JSON batch request file")
	out := flag.String("out", "", "output path for the batch response (default stdout)")
	fixedTime := flag.String("fixed-time", "", "RFC3339 time to use for all timestamps, for reproducible output")
	workers := flag.Int("workers", 4, "concurrent batch workers")
	baseValue := flag.Float64("base-value", 300000, "base property value for loss estimates")
	riskParams := flag.String("risk-params", "", "risk model parameter file")
	fraudParams := flag.String("fraud-params", "", "fraud model parameter file")
	damageParams := flag.String("damage-params", "", "damage model parameter file")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return errors.New("missing required flag: -in")
	}

	if *fixedTime != "" {
		t, err := time.Parse(time.RFC3339, *fixedTime)
		if err != nil {
			return fmt.Errorf("parse -fixed-time: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
		defer domain.SetClock(nil)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	requests, err := decodeRequests(data)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	params := analysis.LoadModelParams(analysis.ParamPaths{
		Risk:   *riskParams,
		Fraud:  *fraudParams,
		Damage: *damageParams,
	}, logger)
	analyzers, err := analysis.NewAnalyzers(params, *baseValue, logger)
	if err != nil {
		return err
	}
	engine := analysis.NewEngine(analyzers, analysis.Options{
		Workers:  *workers,
		MaxItems: len(requests),
	}, logger, observability.NewMetricsForTesting())

	resp, err := engine.ProcessBatch(context.Background(), requests)
	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	if *out == "" {
		if err := encode(os.Stdout, resp); err != nil {
			return err
		}
	} else {
		if err := writeJSON(*out, resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
		log.Printf("wrote %s", *out)
	}

	printStats(os.Stderr, summarize(resp))
	return nil
}

// decodeRequests accepts the HTTP batch body or a bare request array.
func decodeRequests(data []byte) ([]domain.BatchRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var requests []domain.BatchRequest
		if err := json.Unmarshal(data, &requests); err != nil {
			return nil, fmt.Errorf("decode request array: %w", err)
		}
		return requests, nil
	}
	var body struct {
		Requests []domain.BatchRequest `json:"requests"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode batch body: %w", err)
	}
	return body.Requests, nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// typeStats counts outcomes for one request type.
type typeStats struct {
	total    int
	failed   int
	fallback int
}

func summarize(resp domain.BatchResponse) map[domain.RequestType]*typeStats {
	stats := map[domain.RequestType]*typeStats{}
	for _, r := range resp.Results {
		s, ok := stats[r.Type]
		if !ok {
			s = &typeStats{}
			stats[r.Type] = s
		}
		s.total++
		if !r.Success {
			s.failed++
			continue
		}
		if isFallback(r.Result) {
			s.fallback++
		}
	}
	return stats
}

func isFallback(result any) bool {
	switch v := result.(type) {
	case domain.RiskResult:
		return v.Fallback
	case domain.DamageResult:
		return v.Fallback
	case domain.FraudResult:
		return v.Fallback
	default:
		return false
	}
}

func printStats(w io.Writer, stats map[domain.RequestType]*typeStats) {
	types := make([]string, 0, len(stats))
	for t := range stats {
		types = append(types, string(t))
	}
	sort.Strings(types)

	fmt.Fprintf(w, "\n=== Batch Summary ===\n")
	for _, t := range types {
		s := stats[domain.RequestType(t)]
		label := t
		if label == "" {
			label = "(missing type)"
		}
		fmt.Fprintf(w, "  %-18s total=%d failed=%d fallback=%d\n", label, s.total, s.failed, s.fallback)
	}
}

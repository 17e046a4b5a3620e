// Command validate checks fitted model parameter files against the backend
// contract before they are deployed: each file must parse, validate, build a
// backend, and produce well-formed scores on probe inputs.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -risk models/risk.json \
//	  -fraud models/fraud.json \
//	  -damage models/damage.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	riskPath := flag.String("risk", "", "risk model parameter file")
	fraudPath := flag.String("fraud", "", "fraud model parameter file")
	damagePath := flag.String("damage", "", "damage model parameter file")
	flag.Parse()

	if *riskPath == "" && *fraudPath == "" && *damagePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*riskPath, *fraudPath, *damagePath))
}

func run(riskPath, fraudPath, damagePath string) int {
	fmt.Println("=== Model Parameter Validation ===")
	fmt.Println()

	var phases []*phase
	if riskPath != "" {
		phases = append(phases, validateRisk(riskPath))
	}
	if fraudPath != "" {
		phases = append(phases, validateFraud(fraudPath))
	}
	if damagePath != "" {
		phases = append(phases, validateDamage(damagePath))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateRisk(path string) *phase {
	p := &phase{name: "Risk model: " + path}

	params, err := backend.LoadRiskModelParams(path)
	if err != nil {
		p.errorf("load: %v", err)
		return p
	}
	reg, err := backend.NewLinearRegressor(params)
	if err != nil {
		p.errorf("build regressor: %v", err)
		return p
	}

	for _, v := range []float64{0, 0.5, 1} {
		score, err := reg.Predict(fill(domain.RiskFeatureCount, v))
		if err != nil {
			p.errorf("predict on all-%g: %v", v, err)
			continue
		}
		if !isFinite(score) {
			p.errorf("predict on all-%g: score %v is not finite", v, score)
		}
	}

	imp := reg.FeatureImportances()
	if len(imp) != domain.RiskFeatureCount {
		p.errorf("importances: got %d, want %d", len(imp), domain.RiskFeatureCount)
	}
	if sum := total(imp); math.Abs(sum-1) > 1e-6 {
		p.errorf("importances sum to %.6f, want 1", sum)
	}
	return p
}

func validateFraud(path string) *phase {
	p := &phase{name: "Fraud model: " + path}

	params, err := backend.LoadFraudModelParams(path)
	if err != nil {
		p.errorf("load: %v", err)
		return p
	}
	cls, err := backend.NewLogisticClassifier(params)
	if err != nil {
		p.errorf("build classifier: %v", err)
		return p
	}

	for _, v := range []float64{0, 0.5, 1} {
		prob, err := cls.PredictProba(fill(domain.FraudFeatureCount, v))
		if err != nil {
			p.errorf("predict on all-%g: %v", v, err)
			continue
		}
		if !isFinite(prob) || prob < 0 || prob > 1 {
			p.errorf("predict on all-%g: probability %v outside [0,1]", v, prob)
		}
	}
	return p
}

func validateDamage(path string) *phase {
	p := &phase{name: "Damage model: " + path}

	params, err := backend.LoadDamageModelParams(path)
	if err != nil {
		p.errorf("load: %v", err)
		return p
	}
	cls, err := backend.NewImageClassifier(params)
	if err != nil {
		p.errorf("build classifier: %v", err)
		return p
	}

	dim := cls.Info().InputSize
	if dim == 0 {
		dim = 4
	}
	probes := []domain.FeatureVector{fill(dim, 0), fill(dim, 0.5), fill(dim, 1)}
	dists, err := cls.PredictProba(probes)
	if err != nil {
		p.errorf("predict: %v", err)
		return p
	}
	if len(dists) != len(probes) {
		p.errorf("predict: got %d distributions for %d probes", len(dists), len(probes))
		return p
	}
	for i, d := range dists {
		if len(d) != len(domain.DamageClasses) {
			p.errorf("probe %d: %d classes, want %d", i, len(d), len(domain.DamageClasses))
			continue
		}
		if sum := total(d); !isFinite(sum) || math.Abs(sum-1) > 1e-6 {
			p.errorf("probe %d: probabilities sum to %v, want 1", i, sum)
		}
	}
	return p
}

func fill(n int, v float64) domain.FeatureVector {
	out := make(domain.FeatureVector, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func total(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

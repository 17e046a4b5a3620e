package backend

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// DefaultIntensityTemperature is used when damage parameters carry no weights.
const DefaultIntensityTemperature = 0.02

// RiskModelParams are the fitted parameters of the risk regressor.
type RiskModelParams struct {
	Version   string    `json:"version"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// FraudModelParams are the fitted parameters of the fraud classifier.
type FraudModelParams struct {
	Version   string    `json:"version"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// DamageModelParams configure the image classifier. Without weights the
// intensity baseline is used.
type DamageModelParams struct {
	Version     string      `json:"version"`
	Temperature float64     `json:"temperature,omitempty"`
	Weights     [][]float64 `json:"weights,omitempty"`
	Bias        []float64   `json:"bias,omitempty"`
}

// DefaultRiskModelParams fit 20·x0 + 30·x1 + 25·x2 + 15·x3 + 10·x4 under a
// uniform [0,1] scaler.
func DefaultRiskModelParams() RiskModelParams {
	raw := []float64{20, 30, 25, 15, 10}
	scale := 1 / math.Sqrt(12)

	p := RiskModelParams{
		Version:   domain.RiskModelVersion,
		Mean:      make([]float64, domain.RiskFeatureCount),
		Scale:     make([]float64, domain.RiskFeatureCount),
		Coef:      make([]float64, domain.RiskFeatureCount),
		Intercept: 50,
	}
	for i := range p.Mean {
		p.Mean[i] = 0.5
		p.Scale[i] = scale
	}
	for i, c := range raw {
		p.Coef[i] = c * scale
	}
	return p
}

// DefaultFraudModelParams approximate the boundary
// 0.3·x0 + 0.2·x1 + 0.2·x2 + 0.3·x3 > 0.7 with slope 10.
func DefaultFraudModelParams() FraudModelParams {
	coef := make([]float64, domain.FraudFeatureCount)
	copy(coef, []float64{3, 2, 2, 3})
	return FraudModelParams{
		Version:   domain.FraudModelVersion,
		Coef:      coef,
		Intercept: -7,
	}
}

// DefaultDamageModelParams select the intensity baseline.
func DefaultDamageModelParams() DamageModelParams {
	return DamageModelParams{
		Version:     domain.DamageModelVersion,
		Temperature: DefaultIntensityTemperature,
	}
}

// Validate checks the parameters against the risk feature layout.
func (p RiskModelParams) Validate() error {
	n := domain.RiskFeatureCount
	if len(p.Mean) != n || len(p.Scale) != n || len(p.Coef) != n {
		return fmt.Errorf("risk params: want %d mean/scale/coef values, got %d/%d/%d",
			n, len(p.Mean), len(p.Scale), len(p.Coef))
	}
	for _, values := range [][]float64{{p.Intercept}, p.Mean, p.Scale, p.Coef} {
		if err := finite("risk params", values); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the parameters against the fraud feature layout.
func (p FraudModelParams) Validate() error {
	if len(p.Coef) != domain.FraudFeatureCount {
		return fmt.Errorf("fraud params: want %d coefficients, got %d", domain.FraudFeatureCount, len(p.Coef))
	}
	return finite("fraud params", append([]float64{p.Intercept}, p.Coef...))
}

// Validate checks the damage parameters.
func (p DamageModelParams) Validate() error {
	if len(p.Weights) == 0 {
		if p.Temperature <= 0 {
			return fmt.Errorf("damage params: temperature must be positive, got %g", p.Temperature)
		}
		return nil
	}
	if _, err := NewSoftmaxClassifier(p); err != nil {
		return fmt.Errorf("damage params: %w", err)
	}
	for _, row := range p.Weights {
		if err := finite("damage params", row); err != nil {
			return err
		}
	}
	return finite("damage params", p.Bias)
}

// LoadRiskModelParams reads parameters from a JSON file. On any failure it
// returns the defaults together with the error.
func LoadRiskModelParams(path string) (RiskModelParams, error) {
	p := DefaultRiskModelParams()
	loaded := RiskModelParams{Version: p.Version}
	if err := readJSON(path, &loaded); err != nil {
		return p, err
	}
	if err := loaded.Validate(); err != nil {
		return p, err
	}
	return loaded, nil
}

// LoadFraudModelParams reads parameters from a JSON file. On any failure it
// returns the defaults together with the error.
func LoadFraudModelParams(path string) (FraudModelParams, error) {
	p := DefaultFraudModelParams()
	loaded := FraudModelParams{Version: p.Version}
	if err := readJSON(path, &loaded); err != nil {
		return p, err
	}
	if err := loaded.Validate(); err != nil {
		return p, err
	}
	return loaded, nil
}

// LoadDamageModelParams reads parameters from a JSON file. On any failure it
// returns the defaults together with the error.
func LoadDamageModelParams(path string) (DamageModelParams, error) {
	p := DefaultDamageModelParams()
	loaded := DamageModelParams{Version: p.Version, Temperature: p.Temperature}
	if err := readJSON(path, &loaded); err != nil {
		return p, err
	}
	if err := loaded.Validate(); err != nil {
		return p, err
	}
	return loaded, nil
}

// NewImageClassifier picks the softmax classifier when weights are present and
// the intensity baseline otherwise.
func NewImageClassifier(p DamageModelParams) (ImageClassifier, error) {
	if len(p.Weights) > 0 {
		return NewSoftmaxClassifier(p)
	}
	return NewIntensityClassifier(p.Version, p.Temperature)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read params file: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}
	return nil
}

func finite(what string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: value %d is not finite", what, i)
		}
	}
	return nil
}

package backend

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// StandardScaler applies (x - mean) / scale with parameters fit offline.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler validates and copies the fitted parameters. A zero scale
// leaves the centered value unscaled, matching constant training columns.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler: mean has %d values, scale has %d", len(mean), len(scale))
	}
	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

// Transform returns the standardized copy of x.
func (s *StandardScaler) Transform(x domain.FeatureVector) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("scaler: %w: got %d, want %d", ErrDimension, len(x), len(s.mean))
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = (x[i] - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// LinearRegressor is a linear model over standardized features.
type LinearRegressor struct {
	scaler      *StandardScaler
	coef        []float64
	intercept   float64
	importances []float64
	info        ModelInfo
}

// NewLinearRegressor builds a regressor from fitted parameters. Importances are
// the absolute coefficients normalized to sum to one.
func NewLinearRegressor(p RiskModelParams) (*LinearRegressor, error) {
	scaler, err := NewStandardScaler(p.Mean, p.Scale)
	if err != nil {
		return nil, err
	}
	if len(p.Coef) != len(p.Mean) {
		return nil, fmt.Errorf("regressor: %d coefficients for %d features", len(p.Coef), len(p.Mean))
	}

	imp := make([]float64, len(p.Coef))
	var total float64
	for i, c := range p.Coef {
		imp[i] = math.Abs(c)
		total += imp[i]
	}
	if total == 0 {
		return nil, errors.New("regressor: all coefficients are zero")
	}
	for i := range imp {
		imp[i] /= total
	}

	return &LinearRegressor{
		scaler:      scaler,
		coef:        append([]float64(nil), p.Coef...),
		intercept:   p.Intercept,
		importances: imp,
		info: ModelInfo{
			Name:      "risk_scoring",
			Version:   p.Version,
			Type:      "Linear Regression",
			Status:    StatusLoaded,
			InputSize: len(p.Coef),
		},
	}, nil
}

// Predict scales the features and applies the linear model.
func (r *LinearRegressor) Predict(features domain.FeatureVector) (float64, error) {
	z, err := r.scaler.Transform(features)
	if err != nil {
		return 0, err
	}
	y := r.intercept
	for i := range z {
		y += r.coef[i] * z[i]
	}
	return y, nil
}

// FeatureImportances returns a copy of the normalized importance weights.
func (r *LinearRegressor) FeatureImportances() []float64 {
	return append([]float64(nil), r.importances...)
}

// Info describes the regressor.
func (r *LinearRegressor) Info() ModelInfo { return r.info }

// LogisticClassifier is a binary logistic-regression model.
type LogisticClassifier struct {
	coef      []float64
	intercept float64
	info      ModelInfo
}

// NewLogisticClassifier builds a classifier from fitted parameters.
func NewLogisticClassifier(p FraudModelParams) (*LogisticClassifier, error) {
	if len(p.Coef) == 0 {
		return nil, errors.New("classifier: no coefficients")
	}
	return &LogisticClassifier{
		coef:      append([]float64(nil), p.Coef...),
		intercept: p.Intercept,
		info: ModelInfo{
			Name:      "fraud_detection",
			Version:   p.Version,
			Type:      "Logistic Regression",
			Status:    StatusLoaded,
			InputSize: len(p.Coef),
		},
	}, nil
}

// PredictProba returns P(fraud) for the features.
func (c *LogisticClassifier) PredictProba(features domain.FeatureVector) (float64, error) {
	if len(features) != len(c.coef) {
		return 0, fmt.Errorf("classifier: %w: got %d, want %d", ErrDimension, len(features), len(c.coef))
	}
	z := c.intercept
	for i, x := range features {
		z += c.coef[i] * x
	}
	return sigmoid(z), nil
}

// Info describes the classifier.
func (c *LogisticClassifier) Info() ModelInfo { return c.info }

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

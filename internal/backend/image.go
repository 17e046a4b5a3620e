package backend

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// IntensityClassifier is the baseline image backend. It maps the mean clamped
// intensity of a feature vector onto the damage classes with a softmax over
// squared distances to evenly spaced class centers, so it accepts any
// dimension.
type IntensityClassifier struct {
	centers     []float64
	temperature float64
	info        ModelInfo
}

// NewIntensityClassifier builds the baseline classifier. Temperature controls
// how sharply probability concentrates on the nearest class.
func NewIntensityClassifier(version string, temperature float64) (*IntensityClassifier, error) {
	if temperature <= 0 {
		return nil, errors.New("intensity classifier: temperature must be positive")
	}
	n := len(domain.DamageClasses)
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = float64(i) / float64(n-1)
	}
	return &IntensityClassifier{
		centers:     centers,
		temperature: temperature,
		info: ModelInfo{
			Name:    "damage_detection",
			Version: version,
			Type:    "Intensity Baseline",
			Status:  StatusLoaded,
		},
	}, nil
}

// PredictProba returns a class distribution per vector.
func (c *IntensityClassifier) PredictProba(batch []domain.FeatureVector) ([][]float64, error) {
	out := make([][]float64, len(batch))
	for i, v := range batch {
		if len(v) == 0 {
			return nil, fmt.Errorf("intensity classifier: vector %d is empty", i)
		}
		var sum float64
		for _, x := range v {
			sum += math.Max(0, math.Min(1, x))
		}
		mean := sum / float64(len(v))

		logits := make([]float64, len(c.centers))
		for k, center := range c.centers {
			d := mean - center
			logits[k] = -(d * d) / c.temperature
		}
		out[i] = softmax(logits)
	}
	return out, nil
}

// Info describes the classifier.
func (c *IntensityClassifier) Info() ModelInfo { return c.info }

// SoftmaxClassifier is a single linear layer followed by softmax.
type SoftmaxClassifier struct {
	weights [][]float64 // classes × dimension
	bias    []float64
	dim     int
	info    ModelInfo
}

// NewSoftmaxClassifier builds a classifier with one weight row per damage class.
func NewSoftmaxClassifier(p DamageModelParams) (*SoftmaxClassifier, error) {
	n := len(domain.DamageClasses)
	if len(p.Weights) != n {
		return nil, fmt.Errorf("softmax classifier: %d weight rows, want %d", len(p.Weights), n)
	}
	if len(p.Bias) != 0 && len(p.Bias) != n {
		return nil, fmt.Errorf("softmax classifier: %d bias values, want %d", len(p.Bias), n)
	}
	dim := len(p.Weights[0])
	if dim == 0 {
		return nil, errors.New("softmax classifier: empty weight row")
	}
	weights := make([][]float64, n)
	for k, row := range p.Weights {
		if len(row) != dim {
			return nil, fmt.Errorf("softmax classifier: row %d has %d weights, want %d", k, len(row), dim)
		}
		weights[k] = append([]float64(nil), row...)
	}
	bias := make([]float64, n)
	copy(bias, p.Bias)

	return &SoftmaxClassifier{
		weights: weights,
		bias:    bias,
		dim:     dim,
		info: ModelInfo{
			Name:      "damage_detection",
			Version:   p.Version,
			Type:      "Softmax Classifier",
			Status:    StatusLoaded,
			InputSize: dim,
		},
	}, nil
}

// PredictProba returns a class distribution per vector.
func (c *SoftmaxClassifier) PredictProba(batch []domain.FeatureVector) ([][]float64, error) {
	out := make([][]float64, len(batch))
	for i, v := range batch {
		if len(v) != c.dim {
			return nil, fmt.Errorf("softmax classifier: %w: vector %d has %d, want %d", ErrDimension, i, len(v), c.dim)
		}
		logits := make([]float64, len(c.weights))
		for k, row := range c.weights {
			z := c.bias[k]
			for j, x := range v {
				z += row[j] * x
			}
			logits[k] = z
		}
		out[i] = softmax(logits)
	}
	return out, nil
}

// Info describes the classifier.
func (c *SoftmaxClassifier) Info() ModelInfo { return c.info }

func softmax(logits []float64) []float64 {
	peak := math.Inf(-1)
	for _, z := range logits {
		peak = math.Max(peak, z)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

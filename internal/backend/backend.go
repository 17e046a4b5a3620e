// Package backend defines the scoring capabilities the analyzers depend on and
// ships deterministic, parameter-driven implementations of them.
//
// Backends are constructed once from fitted parameters and are read-only
// afterwards, so a single instance is safe for concurrent use.
package backend

import (
	"errors"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// ErrDimension reports an input vector whose length does not match the model.
var ErrDimension = errors.New("feature dimension mismatch")

// StatusLoaded is reported by backends that finished construction.
const StatusLoaded = "loaded"

// ModelInfo describes a backend for introspection.
type ModelInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	InputSize int    `json:"inputSize,omitempty"` // 0 means any length
}

// ImageClassifier scores image feature vectors against domain.DamageClasses.
// PredictProba returns one probability distribution per input vector.
type ImageClassifier interface {
	PredictProba(batch []domain.FeatureVector) ([][]float64, error)
	Info() ModelInfo
}

// Regressor produces a continuous score and per-feature importance weights.
type Regressor interface {
	Predict(features domain.FeatureVector) (float64, error)
	FeatureImportances() []float64
	Info() ModelInfo
}

// Classifier produces the probability of the positive class.
type Classifier interface {
	PredictProba(features domain.FeatureVector) (float64, error)
	Info() ModelInfo
}

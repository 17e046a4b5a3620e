package analysis

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-claims-analysis/internal/backend"
)

// ModelParams bundles the fitted parameters for all three backends.
type ModelParams struct {
	Risk   backend.RiskModelParams
	Fraud  backend.FraudModelParams
	Damage backend.DamageModelParams
}

// DefaultModelParams returns the built-in parameters of every backend.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Risk:   backend.DefaultRiskModelParams(),
		Fraud:  backend.DefaultFraudModelParams(),
		Damage: backend.DefaultDamageModelParams(),
	}
}

// NewAnalyzers constructs the backends from p and wraps each in its analyzer.
func NewAnalyzers(p ModelParams, basePropertyValue float64, logger *slog.Logger) (Analyzers, error) {
	reg, err := backend.NewLinearRegressor(p.Risk)
	if err != nil {
		return Analyzers{}, fmt.Errorf("risk backend: %w", err)
	}
	cls, err := backend.NewLogisticClassifier(p.Fraud)
	if err != nil {
		return Analyzers{}, fmt.Errorf("fraud backend: %w", err)
	}
	img, err := backend.NewImageClassifier(p.Damage)
	if err != nil {
		return Analyzers{}, fmt.Errorf("damage backend: %w", err)
	}
	return Analyzers{
		Risk:   NewRiskAnalyzer(reg, logger),
		Damage: NewDamageAnalyzer(img, basePropertyValue, logger),
		Fraud:  NewFraudAnalyzer(cls, logger),
	}, nil
}

// ParamPaths locate fitted parameter files. Empty paths select the built-in
// parameters.
type ParamPaths struct {
	Risk   string
	Fraud  string
	Damage string
}

// LoadModelParams reads every configured parameter file. A file that cannot
// be read or fails validation is logged and replaced by the defaults, so the
// service always starts with a usable backend.
func LoadModelParams(paths ParamPaths, logger *slog.Logger) ModelParams {
	p := DefaultModelParams()
	var err error
	if paths.Risk != "" {
		if p.Risk, err = backend.LoadRiskModelParams(paths.Risk); err != nil {
			logger.Warn("use default risk params", "path", paths.Risk, "reason", err)
		}
	}
	if paths.Fraud != "" {
		if p.Fraud, err = backend.LoadFraudModelParams(paths.Fraud); err != nil {
			logger.Warn("use default fraud params", "path", paths.Fraud, "reason", err)
		}
	}
	if paths.Damage != "" {
		if p.Damage, err = backend.LoadDamageModelParams(paths.Damage); err != nil {
			logger.Warn("use default damage params", "path", paths.Damage, "reason", err)
		}
	}
	return p
}

package domain

// Model versions reported with each result.
const (
	DamageModelVersion = "DamageDetection_v1.0"
	RiskModelVersion   = "RiskScoring_v1.0"
	FraudModelVersion  = "FraudDetection_v1.0"
)

// DamageClasses is the ordered label set of the image-difference backend.
// The index of a label is its severity rank.
var DamageClasses = []string{
	"no_damage",
	"minor_damage",
	"moderate_damage",
	"severe_damage",
	"destroyed",
}

// Damage labels.
const (
	DamageStructural     = "structural"
	DamageVisibleChange  = "visible_change"
	DamageAnalysisFailed = "analysis_failed"
	DamageClassUnknown   = "unknown"
)

// Fraud risk factor labels.
const (
	FactorDelayedReporting          = "delayed_reporting"
	FactorHighClaimAmount           = "high_claim_amount"
	FactorInsufficientDocumentation = "insufficient_documentation"
	FactorNoSatelliteEvidence       = "no_satellite_evidence"
	FactorAnalysisError             = "analysis_error"
)

// DamageResult is the outcome of a before/after imagery comparison.
type DamageResult struct {
	DamagePercentage float64  `json:"damagePercentage"`   // [0,100]
	DamageType       []string `json:"damageType"`         // label set
	Confidence       float64  `json:"analysisConfidence"` // [0,100]
	EstimatedLoss    float64  `json:"estimatedLoss"`      // base value × damage share, an approximation
	PreEventClass    string   `json:"preDisasterClass"`
	PostEventClass   string   `json:"postDisasterClass"`
	ModelVersion     string   `json:"aiModelVersion"`
	Fallback         bool     `json:"fallback"`
}

// DefaultDamageResult is returned when damage analysis cannot complete.
// The analysis_failed label distinguishes it from a genuine zero-damage finding.
func DefaultDamageResult() DamageResult {
	return DamageResult{
		DamagePercentage: 0,
		DamageType:       []string{DamageAnalysisFailed},
		Confidence:       0,
		EstimatedLoss:    0,
		PreEventClass:    DamageClassUnknown,
		PostEventClass:   DamageClassUnknown,
		ModelVersion:     DamageModelVersion,
		Fallback:         true,
	}
}

// RiskFactor is one ranked contributor to a risk score.
type RiskFactor struct {
	Factor     string  `json:"factor"`
	Importance float64 `json:"importance"`
	Value      float64 `json:"value"` // normalized feature value
}

// Environment sources reported on risk results.
const (
	EnvironmentFromRequest  = "request"
	EnvironmentFromProvider = "provider"
	EnvironmentBaseline     = "baseline"
	EnvironmentLookupFailed = "failed"
)

// RiskResult is a property risk score with its top contributing factors.
type RiskResult struct {
	OverallRiskScore  float64      `json:"overallRiskScore"` // [0,100]
	Confidence        float64      `json:"confidence"`
	TopRiskFactors    []RiskFactor `json:"topRiskFactors"`
	ModelVersion      string       `json:"modelVersion"`
	EnvironmentSource string       `json:"environmentSource,omitempty"`
	Fallback          bool         `json:"fallback"`
}

// DefaultRiskResult is returned when risk scoring cannot complete: a neutral
// midpoint with zero confidence.
func DefaultRiskResult() RiskResult {
	return RiskResult{
		OverallRiskScore: 50,
		Confidence:       0,
		TopRiskFactors:   []RiskFactor{},
		ModelVersion:     RiskModelVersion,
		Fallback:         true,
	}
}

// RiskLevel is a discrete fraud risk tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevelFromProbability tiers a fraud probability: high above 0.7,
// medium above 0.4, low otherwise.
func RiskLevelFromProbability(p float64) RiskLevel {
	switch {
	case p > 0.7:
		return RiskHigh
	case p > 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// FraudResult is the fraud screening outcome for a claim.
type FraudResult struct {
	RiskLevel        RiskLevel `json:"riskLevel"`
	FraudProbability float64   `json:"fraudProbability"` // [0,1]
	RiskFactors      []string  `json:"riskFactors"`
	FlaggedForReview bool      `json:"flaggedForReview"`
	ModelVersion     string    `json:"modelVersion"`
	Fallback         bool      `json:"fallback"`
}

// DefaultFraudResult is returned when fraud screening cannot complete.
// Uncertain claims are always routed to review.
func DefaultFraudResult() FraudResult {
	return FraudResult{
		RiskLevel:        RiskMedium,
		FraudProbability: 0.5,
		RiskFactors:      []string{FactorAnalysisError},
		FlaggedForReview: true,
		ModelVersion:     FraudModelVersion,
		Fallback:         true,
	}
}

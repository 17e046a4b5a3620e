// Package domain models disaster insurance claims and the feature vectors
// derived from them for scoring backends.
//
// # Records
//
// Three caller-supplied records feed the analyzers:
//
//	PropertyRecord       elevation, distance to water, FEMA flood zone, year built
//	EnvironmentSnapshot  satellite indices plus current, forecast and historical weather
//	ClaimRecord          incident/reported timestamps, amount, type, documents, imagery
//
// Every optional scalar is a pointer so an absent value is distinguishable from
// a measured zero. Absent values are replaced with named defaults during feature
// extraction; extraction never fails on missing optional data.
//
// # Feature Vectors
//
// A FeatureVector is position-significant. Its length and order are part of the
// backend contract: a backend trained on one layout silently produces garbage
// on another, so layouts only change together with a backend version bump.
//
// Risk layout (15 features, see RiskFeatureNames):
//
//	0 elevation/1000          5 soil moisture         10 precipitation risk
//	1 proximityToWater/10000  6 burn ratio (NBR)      11 storm probability
//	2 flood zone AE ? 1 : 0   7 temperature/50        12 extreme events/10
//	3 yearBuilt/2024          8 humidity/100          13 avg precipitation/200
//	4 vegetation (NDVI)       9 wind speed/100        14 avg temperature/50
//
// Fraud layout (12 features):
//
//	0 reporting delay days, clamped to [0, 30], /30
//	1 claimAmount/100000, clamped to [0, 1]
//	2 document count/10, capped at 1
//	3 claim type flood or other ? 1 : 0
//	4 pre-disaster satellite imagery present ? 1 : 0
//	5 weather correlation (constant 0.5)
//	6-11 behavioral signals (constants 0.3 0.4 0.2 0.6 0.1 0.7)
//
// Features 5-11 are not computed from claim data in this version. The deployed
// fraud backend was fit with them at these values, so they stay fixed until a
// retrained backend ships with a new layout.
//
// # Timestamps
//
// Claim timestamps arrive as strings from upstream systems. Accepted layouts are
// RFC 3339 (optionally with fractional seconds), a zone-less
// "2006-01-02T15:04:05" interpreted as UTC, and a bare "2006-01-02" date.
// Anything else is a [DataFormatError].
//
// # Fallback Results
//
// Analysis failures are never surfaced as errors. Each analyzer returns a
// documented conservative default with Fallback set, see [DefaultDamageResult],
// [DefaultRiskResult] and [DefaultFraudResult].
package domain

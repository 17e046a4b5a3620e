package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// FeatureVector is a fixed-order numeric encoding of a record.
type FeatureVector []float64

// Vector lengths of the backend contracts.
const (
	RiskFeatureCount  = 15
	FraudFeatureCount = 12
)

// RiskFeatureNames labels the risk vector positionally.
var RiskFeatureNames = [RiskFeatureCount]string{
	"elevation", "water_proximity", "flood_zone", "building_age",
	"vegetation_density", "soil_moisture", "fire_risk", "temperature",
	"humidity", "wind_speed", "precipitation_risk", "storm_probability",
	"historical_events", "avg_precipitation", "avg_temperature",
}

// Fraud vector positions read by the risk-factor rules.
const (
	FraudReportingDelay = 0
	FraudClaimAmount    = 1
	FraudDocumentCount  = 2
	FraudClaimType      = 3
	FraudSatellite      = 4
)

// Defaults for absent property and environment fields, in raw units.
const (
	DefaultElevation         = 0.0
	DefaultProximityToWater  = 0.0
	DefaultYearBuilt         = 2000
	DefaultIndex             = 0.5
	DefaultTemperature       = 20.0
	DefaultHumidity          = 50.0
	DefaultWindSpeed         = 0.0
	DefaultForecastRisk      = 0.5
	DefaultAvgPrecipitation  = 50.0
	DefaultAvgTemperature    = 20.0
	DefaultClaimType         = "other"
	maxReportingDelayDays    = 30.0
	claimAmountScale         = 100000.0
	documentCountScale       = 10.0
	weatherCorrelationSignal = 0.5
)

// behavioralSignals are constant placeholders for behavioral features that are
// not modeled yet.
var behavioralSignals = [...]float64{0.3, 0.4, 0.2, 0.6, 0.1, 0.7}

// highFraudClaimTypes are claim types flagged by feature 3.
var highFraudClaimTypes = map[string]bool{"flood": true, "other": true}

// ExtractRiskFeatures encodes a property and its environment into the 15-feature
// risk vector. Missing fields take their documented defaults.
func ExtractRiskFeatures(p PropertyRecord, env EnvironmentSnapshot) FeatureVector {
	idx := env.Satellite.Indices
	cur := env.Weather.Current
	fc := env.Weather.Forecast
	hist := env.Weather.Historical

	floodZone := 0.0
	if p.FloodZone == "AE" {
		floodZone = 1.0
	}
	yearBuilt := DefaultYearBuilt
	if p.YearBuilt != nil {
		yearBuilt = *p.YearBuilt
	}

	return FeatureVector{
		valueOr(p.Elevation, DefaultElevation) / 1000,
		valueOr(p.ProximityToWater, DefaultProximityToWater) / 10000,
		floodZone,
		float64(yearBuilt) / 2024,

		valueOr(idx.NDVI, DefaultIndex),
		valueOr(idx.Moisture, DefaultIndex),
		valueOr(idx.NBR, DefaultIndex),

		valueOr(cur.Temperature, DefaultTemperature) / 50,
		valueOr(cur.Humidity, DefaultHumidity) / 100,
		valueOr(cur.WindSpeed, DefaultWindSpeed) / 100,
		valueOr(fc.PrecipitationRisk, DefaultForecastRisk),
		valueOr(fc.StormProbability, DefaultForecastRisk),

		float64(len(hist.ExtremeEvents)) / 10,
		valueOr(hist.AvgPrecipitation, DefaultAvgPrecipitation) / 200,
		valueOr(hist.AvgTemperature, DefaultAvgTemperature) / 50,
	}
}

// ExtractFraudFeatures encodes a claim into the 12-feature fraud vector.
// It fails with a *DataFormatError when either timestamp cannot be parsed.
func ExtractFraudFeatures(c ClaimRecord) (FeatureVector, error) {
	incident, err := ParseTimestamp("incidentDate", c.IncidentDate)
	if err != nil {
		return nil, err
	}
	reported, err := ParseTimestamp("reportedDate", c.ReportedDate)
	if err != nil {
		return nil, err
	}

	// Matched as sent; an absent claimType counts as "other".
	claimType := c.ClaimType
	if claimType == "" {
		claimType = DefaultClaimType
	}

	v := make(FeatureVector, 0, FraudFeatureCount)
	v = append(v,
		ReportingDelayDays(incident, reported)/maxReportingDelayDays,
		clamp(c.ClaimAmount/claimAmountScale, 0, 1),
		math.Min(float64(len(c.Documents))/documentCountScale, 1),
		boolFeature(highFraudClaimTypes[claimType]),
		boolFeature(c.HasSatelliteEvidence()),
		weatherCorrelationSignal,
	)
	v = append(v, behavioralSignals[:]...)
	return v, nil
}

// ReportingDelayDays returns the whole days between incident and report,
// clamped to [0, 30]. A report dated before the incident counts as zero delay.
func ReportingDelayDays(incident, reported time.Time) float64 {
	days := math.Floor(reported.Sub(incident).Hours() / 24)
	return clamp(days, 0, maxReportingDelayDays)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var errUnrecognizedTimestamp = errors.New("unrecognized timestamp layout")

// ParseTimestamp parses a claim timestamp. Zone-less values are taken as UTC.
func ParseTimestamp(field, value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, &DataFormatError{Field: field, Value: value, Err: errors.New("empty timestamp")}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DataFormatError{Field: field, Value: value, Err: errUnrecognizedTimestamp}
}

// AbsDiff returns the elementwise absolute difference of two equal-length vectors.
func AbsDiff(a, b FeatureVector) (FeatureVector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("feature length mismatch: %d vs %d", len(a), len(b))
	}
	out := make(FeatureVector, len(a))
	for i := range a {
		out[i] = math.Abs(a[i] - b[i])
	}
	return out, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

package domain

import (
	"context"
	"log/slog"
)

// EnvironmentProvider looks up satellite and weather context for a location.
type EnvironmentProvider interface {
	Snapshot(ctx context.Context, lat, lon float64) (EnvironmentSnapshot, error)
}

// BaselineEnvironment is the regional snapshot used when a request carries no
// environment and no provider lookup is possible.
func BaselineEnvironment() EnvironmentSnapshot {
	return EnvironmentSnapshot{
		Satellite: SatelliteData{Indices: SatelliteIndices{
			NDVI:     Float(0.7),
			Moisture: Float(0.4),
			NBR:      Float(0.6),
		}},
		Weather: WeatherData{
			Current: WeatherCurrent{
				Temperature: Float(25),
				Humidity:    Float(60),
				WindSpeed:   Float(15),
			},
			Forecast: WeatherForecast{
				PrecipitationRisk: Float(0.3),
				StormProbability:  Float(0.2),
			},
			Historical: WeatherHistory{
				ExtremeEvents:    []string{"hurricane_2019", "flood_2020"},
				AvgPrecipitation: Float(80),
				AvgTemperature:   Float(22),
			},
		},
	}
}

// ResolveEnvironment picks the environment for a risk request and reports where
// it came from. It never fails: a missing provider, missing coordinates, or a
// failed lookup degrade to the baseline snapshot.
func ResolveEnvironment(ctx context.Context, req RiskRequest, provider EnvironmentProvider, logger *slog.Logger) (EnvironmentSnapshot, string) {
	if req.Environment != nil {
		return *req.Environment, EnvironmentFromRequest
	}
	if provider == nil || req.Property == nil || !req.Property.HasCoordinates() {
		return BaselineEnvironment(), EnvironmentBaseline
	}

	lat, lon := *req.Property.Latitude, *req.Property.Longitude
	snap, err := provider.Snapshot(ctx, lat, lon)
	if err != nil {
		logger.Warn("environment lookup failed, using baseline",
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return BaselineEnvironment(), EnvironmentLookupFailed
	}
	return snap, EnvironmentFromProvider
}

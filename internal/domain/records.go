package domain

// PropertyRecord describes the insured property. All fields are optional.
type PropertyRecord struct {
	Elevation        *float64 `json:"elevation,omitempty"`        // meters above sea level
	ProximityToWater *float64 `json:"proximityToWater,omitempty"` // meters to nearest water body
	FloodZone        string   `json:"floodZone,omitempty"`        // FEMA zone code, e.g. "AE"
	YearBuilt        *int     `json:"yearBuilt,omitempty"`

	// Coordinates are used to look up an environment snapshot; they are not features.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p PropertyRecord) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// SatelliteIndices are spectral indices in [0,1].
type SatelliteIndices struct {
	NDVI     *float64 `json:"ndvi,omitempty"`     // vegetation
	Moisture *float64 `json:"moisture,omitempty"` // soil moisture
	NBR      *float64 `json:"nbr,omitempty"`      // normalized burn ratio
}

// SatelliteData wraps the indices derived from the latest satellite pass.
type SatelliteData struct {
	Indices SatelliteIndices `json:"indices"`
}

// WeatherCurrent is the latest weather observation.
type WeatherCurrent struct {
	Temperature *float64 `json:"temperature,omitempty"` // °C
	Humidity    *float64 `json:"humidity,omitempty"`    // percent
	WindSpeed   *float64 `json:"windSpeed,omitempty"`
}

// WeatherForecast holds forecast probabilities in [0,1].
type WeatherForecast struct {
	PrecipitationRisk *float64 `json:"precipitationRisk,omitempty"`
	StormProbability  *float64 `json:"stormProbability,omitempty"`
}

// WeatherHistory summarizes the location's weather history.
type WeatherHistory struct {
	ExtremeEvents    []string `json:"extremeEvents,omitempty"` // e.g. "hurricane_2019"
	AvgPrecipitation *float64 `json:"avgPrecipitation,omitempty"`
	AvgTemperature   *float64 `json:"avgTemperature,omitempty"`
}

// WeatherData groups current, forecast, and historical weather.
type WeatherData struct {
	Current    WeatherCurrent  `json:"current"`
	Forecast   WeatherForecast `json:"forecast"`
	Historical WeatherHistory  `json:"historical"`
}

// EnvironmentSnapshot is the satellite and weather context for a property.
type EnvironmentSnapshot struct {
	Satellite SatelliteData `json:"satellite"`
	Weather   WeatherData   `json:"weather"`
}

// Document is a file attached to a claim. Only the count is used for scoring.
type Document struct {
	FileName string `json:"fileName,omitempty"`
	URL      string `json:"url,omitempty"`
}

// ImageRef points at a stored satellite image.
type ImageRef struct {
	ImageURL string `json:"imageUrl,omitempty"`
}

// SatelliteEvidence lists imagery attached to a claim.
type SatelliteEvidence struct {
	PreDisasterImagery  *ImageRef `json:"preDisasterImagery,omitempty"`
	PostDisasterImagery *ImageRef `json:"postDisasterImagery,omitempty"`
}

// ClaimRecord is an insurance claim submitted for fraud screening.
// IncidentDate and ReportedDate stay raw so that malformed values can be
// handled by the analyzer rather than rejected at decode time.
type ClaimRecord struct {
	ClaimID           string             `json:"claimId,omitempty"`
	IncidentDate      string             `json:"incidentDate"`
	ReportedDate      string             `json:"reportedDate"`
	ClaimAmount       float64            `json:"claimAmount"`
	ClaimType         string             `json:"claimType,omitempty"`
	Documents         []Document         `json:"documents,omitempty"`
	SatelliteEvidence *SatelliteEvidence `json:"satelliteEvidence,omitempty"`
}

// HasSatelliteEvidence reports whether pre-disaster imagery is attached.
func (c ClaimRecord) HasSatelliteEvidence() bool {
	return c.SatelliteEvidence != nil && c.SatelliteEvidence.PreDisasterImagery != nil
}

// ImageSource is one side of a before/after damage comparison. Features are
// produced by an external image-feature pipeline; ImageURL is informational.
type ImageSource struct {
	ImageURL string        `json:"imageUrl,omitempty"`
	Features FeatureVector `json:"features,omitempty"`
}

// IsEmpty reports whether the source carries neither a URL nor features.
func (s *ImageSource) IsEmpty() bool {
	return s == nil || (s.ImageURL == "" && len(s.Features) == 0)
}

// RiskRequest asks for a property risk score. A nil Environment is resolved
// through the configured EnvironmentProvider or the baseline snapshot.
type RiskRequest struct {
	Property    *PropertyRecord      `json:"property"`
	Environment *EnvironmentSnapshot `json:"environment,omitempty"`
}

// DamageRequest compares imagery taken before and after a disaster.
type DamageRequest struct {
	PreImage  *ImageSource `json:"preDisasterImagery"`
	PostImage *ImageSource `json:"postDisasterImagery"`
}

// Float returns a pointer to v. Convenient for building optional record fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

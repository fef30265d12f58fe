package model

// DefaultMinElevationDeg is the minimum usable elevation assumed when a
// ground location does not specify one.
const DefaultMinElevationDeg = 5.0

// GroundLocation is a candidate ground-station site. Immutable input.
type GroundLocation struct {
	Name            string  `json:"name,omitempty"`
	LatitudeDeg     float64 `json:"latitude_deg"`
	LongitudeDeg    float64 `json:"longitude_deg"`
	AltitudeM       float64 `json:"altitude_m"`
	MinElevationDeg float64 `json:"min_elevation_deg,omitempty"`
}

// MinElevationOrDefault returns the configured minimum usable elevation,
// falling back to DefaultMinElevationDeg when unset or non-positive.
func (g GroundLocation) MinElevationOrDefault() float64 {
	if g.MinElevationDeg <= 0 {
		return DefaultMinElevationDeg
	}
	return g.MinElevationDeg
}

// SatelliteRef identifies one satellite of a constellation by its orbital
// elements. Constellation is an optional grouping label ("Starlink", "O3b")
// used for diversity and capacity estimates.
type SatelliteRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Constellation string `json:"constellation,omitempty"`
	TLELine1      string `json:"tle_line1"`
	TLELine2      string `json:"tle_line2"`
}

// GridCell is one cell of a geographic analysis grid, identified by a stable
// cell id and described by its center point and area.
type GridCell struct {
	ID           string  `json:"id"`
	CenterLatDeg float64 `json:"center_lat_deg"`
	CenterLonDeg float64 `json:"center_lon_deg"`
	AreaKm2      float64 `json:"area_km2"`
}

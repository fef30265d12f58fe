package model

import "time"

// SatellitePass is one contiguous interval during which a satellite stays
// above a location's minimum usable elevation.
//
// Invariants: EndTime > StartTime, DurationMinutes >= 1, PeakElevationDeg >=
// the location's minimum elevation. Sub-minute horizon grazes are discarded
// by the pass calculator rather than reported.
type SatellitePass struct {
	SatelliteID      string    `json:"satellite_id"`
	SatelliteName    string    `json:"satellite_name"`
	Constellation    string    `json:"constellation,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	DurationMinutes  float64   `json:"duration_minutes"`
	PeakElevationDeg float64   `json:"peak_elevation_deg"`
	PeakTime         time.Time `json:"peak_time"`
	StartAzimuthDeg  float64   `json:"start_azimuth_deg"`
	EndAzimuthDeg    float64   `json:"end_azimuth_deg"`
}

// TechnicalMetrics aggregates a location's passes over an observation window.
// Derived entirely from the SatellitePass set; never persisted independently
// of its inputs.
type TechnicalMetrics struct {
	PassesPerDay           float64 `json:"passes_per_day"`
	AvgPassDurationMin     float64 `json:"avg_pass_duration_min"`
	DailyContactHours      float64 `json:"daily_contact_hours"`
	ConstellationDiversity float64 `json:"constellation_diversity"`
	CoverageGapHours       float64 `json:"coverage_gap_hours"`
	CapacityGbps           float64 `json:"capacity_gbps"`
	FeasibilityScore       float64 `json:"feasibility_score"`
}

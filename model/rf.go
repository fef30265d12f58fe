package model

// Polarization identifies the polarization of a carrier or interferer.
type Polarization string

const (
	PolarizationUnspecified Polarization = ""
	PolarizationLinearH     Polarization = "linear_h"
	PolarizationLinearV     Polarization = "linear_v"
	PolarizationRHCP        Polarization = "rhcp"
	PolarizationLHCP        Polarization = "lhcp"
)

// LinkBudget describes the wanted signal at a ground station.
// ReceivedPowerDBW is the budget's bottom line; the loss fields exist so
// assessments can reason about rain-fade-dependent effects such as XPD.
type LinkBudget struct {
	FrequencyMHz      float64      `json:"frequency_mhz"`
	TxPowerDBW        float64      `json:"tx_power_dbw"`
	AntennaGainDBi    float64      `json:"antenna_gain_dbi"`
	PathLossDB        float64      `json:"path_loss_db"`
	AtmosphericLossDB float64      `json:"atmospheric_loss_db"`
	RainFadeDB        float64      `json:"rain_fade_db"`
	ReceivedPowerDBW  float64      `json:"received_power_dbw"`
	Polarization      Polarization `json:"polarization,omitempty"`
	BandwidthMHz      float64      `json:"bandwidth_mhz,omitempty"`
}

// InterferenceType classifies the origin of an interference source.
type InterferenceType string

const (
	InterferenceASI           InterferenceType = "asi"
	InterferenceTerrestrial5G InterferenceType = "terrestrial_5g"
	InterferenceCrossPol      InterferenceType = "cross_polarization"
	InterferenceRadar         InterferenceType = "radar"
	InterferenceOther         InterferenceType = "other"
)

// InterferenceSource is one emitter degrading the wanted signal. Geometry is
// optional: ElevationDeg is the angle from the ground antenna's horizon to
// the source (negative when below the horizon). When nil, no spatial
// isolation is credited.
type InterferenceSource struct {
	Type         InterferenceType `json:"type"`
	Name         string           `json:"name"`
	FrequencyMHz float64          `json:"frequency_mhz"`
	PowerDBW     float64          `json:"power_dbw"`
	ElevationDeg *float64         `json:"elevation_deg,omitempty"`
	LatitudeDeg  *float64         `json:"latitude_deg,omitempty"`
	LongitudeDeg *float64         `json:"longitude_deg,omitempty"`
	Polarization Polarization     `json:"polarization,omitempty"`
	BandwidthMHz float64          `json:"bandwidth_mhz,omitempty"`
}

// ServiceImpact grades how much interference degrades service quality.
type ServiceImpact string

const (
	ImpactNone     ServiceImpact = "none"
	ImpactMinimal  ServiceImpact = "minimal"
	ImpactModerate ServiceImpact = "moderate"
	ImpactSevere   ServiceImpact = "severe"
)

// InterferenceAssessment is the derived interference picture for one link.
// Recomputed whenever the link budget or source set changes, never mutated.
type InterferenceAssessment struct {
	CToIdB               float64       `json:"c_to_i_db"`
	CToNdB               float64       `json:"c_to_n_db"`
	SINRdB               float64       `json:"sinr_db"`
	TotalInterferenceDBW float64       `json:"total_interference_dbw"`
	DominantSource       string        `json:"dominant_source,omitempty"`
	CapacityReductionPct float64       `json:"capacity_reduction_pct"`
	Impact               ServiceImpact `json:"impact"`
	MitigationRequired   bool          `json:"mitigation_required"`
	Recommendations      []string      `json:"recommendations,omitempty"`
}

// ConflictType distinguishes which 5G NR link direction collides with the
// satellite carrier.
type ConflictType string

const (
	ConflictUplink   ConflictType = "uplink"
	ConflictDownlink ConflictType = "downlink"
)

// SpectrumConflict reports a carrier frequency falling inside a 5G NR
// C-band allocation. A nil conflict means the frequency is clear.
type SpectrumConflict struct {
	Band         string        `json:"band"`
	ConflictType ConflictType  `json:"conflict_type"`
	Impact       ServiceImpact `json:"impact"`
	Country      string        `json:"country,omitempty"`
	Mitigations  []string      `json:"mitigations,omitempty"`
}

// AdjacentSatellite is a GEO neighbor of the desired satellite.
type AdjacentSatellite struct {
	Name                string  `json:"name"`
	OrbitalLongitudeDeg float64 `json:"orbital_longitude_deg"`
	EIRPdBW             float64 `json:"eirp_dbw"`
}

// ASIContribution is one neighbor's share of the adjacent-satellite
// interference total.
type ASIContribution struct {
	Name             string  `json:"name"`
	OffAxisDeg       float64 `json:"off_axis_deg"`
	DiscriminationDB float64 `json:"discrimination_db"`
	PowerDBW         float64 `json:"power_dbw"`
}

// ASIAssessment sums adjacent-satellite interference and identifies the
// worst contributor.
type ASIAssessment struct {
	TotalASIdBW          float64           `json:"total_asi_dbw"`
	WorstContributor     string            `json:"worst_contributor,omitempty"`
	WorstContributionDBW float64           `json:"worst_contribution_dbw"`
	Contributions        []ASIContribution `json:"contributions,omitempty"`
}

package model

import "time"

// SiteReport bundles the outputs of one site evaluation. The three scores
// sit side by side; how to weigh them against each other is the consumer's
// decision, not the engine's.
type SiteReport struct {
	ReportID    string         `json:"report_id"`
	Location    GroundLocation `json:"location"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	GeneratedAt time.Time      `json:"generated_at"`
	ElapsedMS   int64          `json:"elapsed_ms"`

	Passes       []SatellitePass         `json:"passes"`
	Metrics      TechnicalMetrics        `json:"metrics"`
	Interference *InterferenceAssessment `json:"interference,omitempty"`
	Conflict     *SpectrumConflict       `json:"spectrum_conflict,omitempty"`
	AdjacentSats *ASIAssessment          `json:"adjacent_satellites,omitempty"`
	Opportunity  *OpportunityScore       `json:"opportunity,omitempty"`

	SkippedSatellites []string `json:"skipped_satellites,omitempty"`
}

package model

import "github.com/shopspring/decimal"

// RegionProfile is a named geographic bounding box carrying baseline market
// factors. Profiles seed opportunity scoring for cells that fall inside
// their box; cells outside every profile fall back to geographic heuristics.
type RegionProfile struct {
	Name        string  `json:"name"`
	LatMinDeg   float64 `json:"lat_min_deg"`
	LatMaxDeg   float64 `json:"lat_max_deg"`
	LonMinDeg   float64 `json:"lon_min_deg"`
	LonMaxDeg   float64 `json:"lon_max_deg"`
	Description string  `json:"description,omitempty"`

	Economic       float64 `json:"economic"`
	Infrastructure float64 `json:"infrastructure"`
	Technology     float64 `json:"technology"`
	Regulatory     float64 `json:"regulatory"`
	Competition    float64 `json:"competition"`
	Risk           float64 `json:"risk"`
	Geographic     float64 `json:"geographic"`
	Maritime       float64 `json:"maritime"`

	GDPPerCapitaUSD float64 `json:"gdp_per_capita_usd"`
}

// Contains reports whether the point lies inside the profile's bounding box.
func (r RegionProfile) Contains(latDeg, lonDeg float64) bool {
	return latDeg >= r.LatMinDeg && latDeg <= r.LatMaxDeg &&
		lonDeg >= r.LonMinDeg && lonDeg <= r.LonMaxDeg
}

// OpportunityFactors are the nine normalized (0-1) inputs to the opportunity
// score. Competition and Risk are penalties: higher values reduce the score.
type OpportunityFactors struct {
	Population     float64 `json:"population"`
	Economic       float64 `json:"economic"`
	Infrastructure float64 `json:"infrastructure"`
	Competition    float64 `json:"competition"`
	Regulatory     float64 `json:"regulatory"`
	Geographic     float64 `json:"geographic"`
	Maritime       float64 `json:"maritime"`
	Technology     float64 `json:"technology"`
	Risk           float64 `json:"risk"`
}

// OpportunityCategory buckets an opportunity score.
type OpportunityCategory string

const (
	OpportunityCritical OpportunityCategory = "critical"
	OpportunityHigh     OpportunityCategory = "high"
	OpportunityMedium   OpportunityCategory = "medium"
	OpportunityLow      OpportunityCategory = "low"
)

// OpportunityScore is the commercial assessment of one grid cell. The
// financial figures are screening approximations derived from the factors
// and regional GDP, not audited models.
type OpportunityScore struct {
	CellID              string              `json:"cell_id"`
	Score               float64             `json:"score"`
	Confidence          float64             `json:"confidence"`
	Factors             OpportunityFactors  `json:"factors"`
	Category            OpportunityCategory `json:"category"`
	Region              string              `json:"region,omitempty"`
	Recommendations     []string            `json:"recommendations,omitempty"`
	MarketPotentialM    decimal.Decimal     `json:"market_potential_musd"`
	InvestmentRequiredM decimal.Decimal     `json:"investment_required_musd"`
	TimeToMarketMonths  int                 `json:"time_to_market_months"`
	ROIPct              float64             `json:"roi_pct"`
}

package core

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalsfoundry/groundstation-analyzer/internal/rescache"
	"github.com/signalsfoundry/groundstation-analyzer/kb"
	"github.com/signalsfoundry/groundstation-analyzer/model"
	"github.com/signalsfoundry/groundstation-analyzer/timegrid"
)

// Opportunity score weights; they sum to 1. Competition and risk are
// inverted in the scoring sum (more of either means less opportunity).
const (
	weightPopulation     = 0.20
	weightEconomic       = 0.18
	weightInfrastructure = 0.15
	weightCompetition    = 0.12
	weightRegulatory     = 0.10
	weightGeographic     = 0.08
	weightMaritime       = 0.07
	weightTechnology     = 0.07
	weightRisk           = 0.03
)

// Category thresholds on the 0-100 score.
const (
	categoryCritical = 80.0
	categoryHigh     = 65.0
	categoryMedium   = 45.0
)

const (
	confidenceMatched   = 85.0
	confidenceHeuristic = 50.0

	// proximityRadiusDeg bounds the population-center and shipping-lane
	// heuristics: influence decays linearly to zero at this angular distance.
	proximityRadiusDeg = 5.0

	// megacityPopM is the population (millions) at which a center exerts its
	// full pull.
	megacityPopM = 30.0

	// urbanFloorShare keeps the population factor of a profiled region from
	// bottoming out far from every listed center; built infrastructure
	// correlates with settlement density.
	urbanFloorShare = 0.25

	// factorJitter is the per-factor perturbation amplitude derived from the
	// cell ID, so neighboring cells in one region do not score identically.
	factorJitter = 0.02
)

// Screening-level financial assumptions. These produce indicative figures
// for ranking sites, not audited business cases.
const (
	defaultGDPPerCapitaUSD = 8000.0

	basePopCatchmentM   = 2.0   // millions reachable even in sparse areas
	popCatchmentSlopeM  = 18.0  // additional millions at full population factor
	basePenetration     = 0.02  // share of catchment converting to service
	connectivitySpend   = 0.003 // share of GDP per capita spent on connectivity
	captureRate         = 0.08  // share of the addressable market won
	baseCapexM          = 8.0   // $M for a greenfield gateway build
	greenfieldSurcharge = 0.4   // capex uplift at zero local infrastructure
	riskSurcharge       = 0.3   // capex uplift at maximum risk
	baseTimeToMarketMo  = 12.0
	regulatoryDelayMo   = 18.0 // added months at zero regulatory score
	revenueHorizonYears = 5.0
)

// OpportunityOption configures an OpportunityAnalyzer.
type OpportunityOption func(*OpportunityAnalyzer)

// WithOpportunityCache substitutes the memoization cache.
func WithOpportunityCache(cache *rescache.Cache[model.OpportunityScore]) OpportunityOption {
	return func(a *OpportunityAnalyzer) {
		if cache != nil {
			a.cache = cache
		}
	}
}

// WithOpportunityClock overrides the clock used for cache bucketing.
func WithOpportunityClock(now func() time.Time) OpportunityOption {
	return func(a *OpportunityAnalyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// OpportunityAnalyzer scores the commercial attractiveness of grid cells.
// Scores are pure functions of the cell (jitter is seeded from the cell ID),
// memoized per cell through a coarse time-bucketed TTL cache.
type OpportunityAnalyzer struct {
	catalog *kb.Catalog
	cache   *rescache.Cache[model.OpportunityScore]
	now     func() time.Time
}

// NewOpportunityAnalyzer builds an analyzer over the given catalog. A nil
// catalog falls back to the built-in defaults.
func NewOpportunityAnalyzer(catalog *kb.Catalog, opts ...OpportunityOption) *OpportunityAnalyzer {
	if catalog == nil {
		catalog = kb.DefaultCatalog()
	}
	a := &OpportunityAnalyzer{
		catalog: catalog,
		cache:   rescache.New[model.OpportunityScore](0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CacheStats exposes the score-cache counters for metrics export.
func (a *OpportunityAnalyzer) CacheStats() (hits, misses, invalids int64) {
	return a.cache.Stats()
}

// CalculateOpportunityScore scores one cell, reusing a cached result when
// the same cell was scored within the current cache bucket.
func (a *OpportunityAnalyzer) CalculateOpportunityScore(cell model.GridCell) model.OpportunityScore {
	key := timegrid.BucketKey(cell.ID, a.now(), timegrid.DefaultCacheBucket)
	if hit, ok := a.cache.Get(key); ok {
		return hit
	}
	score := a.computeScore(cell)
	a.cache.Put(key, score)
	return score
}

func (a *OpportunityAnalyzer) computeScore(cell model.GridCell) model.OpportunityScore {
	profile, matched := a.catalog.RegionProfileFor(cell.CenterLatDeg, cell.CenterLonDeg)

	var (
		factors    model.OpportunityFactors
		confidence float64
		region     string
		gdp        = defaultGDPPerCapitaUSD
	)
	if matched {
		factors = a.profileFactors(profile, cell.CenterLatDeg, cell.CenterLonDeg)
		confidence = confidenceMatched
		region = profile.Name
		if profile.GDPPerCapitaUSD > 0 {
			gdp = profile.GDPPerCapitaUSD
		}
	} else {
		factors = a.heuristicFactors(cell.CenterLatDeg, cell.CenterLonDeg)
		confidence = confidenceHeuristic
	}

	jitterFactors(&factors, cellRNG(cell.ID))

	score := opportunityScore(factors)
	market, invest, ttm, roi := financials(factors, gdp)

	return model.OpportunityScore{
		CellID:              cell.ID,
		Score:               score,
		Confidence:          confidence,
		Factors:             factors,
		Category:            categorize(score),
		Region:              region,
		Recommendations:     opportunityRecommendations(factors),
		MarketPotentialM:    market,
		InvestmentRequiredM: invest,
		TimeToMarketMonths:  ttm,
		ROIPct:              roi,
	}
}

// profileFactors seeds the nine factors from the matched region, perturbed
// by the local heuristics: population pull from nearby centers (floored by
// regional urbanization), latitude and lane adjustments for geography, and
// a 50/50 blend of regional baseline and lane proximity for maritime.
func (a *OpportunityAnalyzer) profileFactors(p model.RegionProfile, latDeg, lonDeg float64) model.OpportunityFactors {
	lane := a.laneProximity(latDeg, lonDeg)
	return model.OpportunityFactors{
		Population:     math.Max(a.populationFactor(latDeg, lonDeg), urbanFloorShare*p.Infrastructure),
		Economic:       p.Economic,
		Infrastructure: p.Infrastructure,
		Competition:    p.Competition,
		Regulatory:     p.Regulatory,
		Geographic:     clamp01(p.Geographic + latitudeAdjustment(latDeg) + 0.1*lane),
		Maritime:       clamp01(0.5*p.Maritime + 0.5*lane),
		Technology:     p.Technology,
		Risk:           p.Risk,
	}
}

// heuristicFactors derives all nine factors from geography alone, used when
// no region profile contains the cell.
func (a *OpportunityAnalyzer) heuristicFactors(latDeg, lonDeg float64) model.OpportunityFactors {
	pop := a.populationFactor(latDeg, lonDeg)
	lane := a.laneProximity(latDeg, lonDeg)
	return model.OpportunityFactors{
		Population:     pop,
		Economic:       clamp01(0.30 + 0.25*pop),
		Infrastructure: clamp01(0.25 + 0.30*pop),
		Competition:    clamp01(0.30 + 0.20*pop),
		Regulatory:     0.50,
		Geographic:     clamp01(0.50 + latitudeAdjustment(latDeg) + 0.1*lane),
		Maritime:       lane,
		Technology:     clamp01(0.30 + 0.25*pop),
		Risk:           0.50,
	}
}

// populationFactor is the strongest pull among population centers within the
// proximity radius: linear distance decay scaled by center size.
func (a *OpportunityAnalyzer) populationFactor(latDeg, lonDeg float64) float64 {
	best := 0.0
	for _, pc := range a.catalog.PopulationCenters() {
		d := flatDistanceDeg(latDeg, lonDeg, pc.LatDeg, pc.LonDeg)
		if d >= proximityRadiusDeg {
			continue
		}
		proximity := 1 - d/proximityRadiusDeg
		size := math.Min(pc.Population/megacityPopM, 1)
		if f := proximity * (0.5 + 0.5*size); f > best {
			best = f
		}
	}
	return best
}

// laneProximity is the strongest traffic-weighted pull among shipping-lane
// waypoints within the proximity radius.
func (a *OpportunityAnalyzer) laneProximity(latDeg, lonDeg float64) float64 {
	best := 0.0
	for _, lp := range a.catalog.LanePoints() {
		d := flatDistanceDeg(latDeg, lonDeg, lp.LatDeg, lp.LonDeg)
		if d >= proximityRadiusDeg {
			continue
		}
		if f := (1 - d/proximityRadiusDeg) * lp.Traffic; f > best {
			best = f
		}
	}
	return best
}

// latitudeAdjustment nudges the geographic factor by latitude band: polar
// sites lose on logistics and scintillation, low latitudes gain a little
// from GEO arc visibility.
func latitudeAdjustment(latDeg float64) float64 {
	abs := math.Abs(latDeg)
	switch {
	case abs >= 65:
		return -0.25
	case abs >= 55:
		return -0.10
	case abs <= 25:
		return 0.05
	default:
		return 0
	}
}

// cellRNG derives a deterministic jitter source from the cell ID, keeping
// the score a pure function of the cell.
func cellRNG(cellID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(cellID))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// jitterFactors perturbs each factor by up to +/-factorJitter, consuming the
// generator in declared field order so results stay reproducible.
func jitterFactors(f *model.OpportunityFactors, rng *rand.Rand) {
	for _, p := range []*float64{
		&f.Population, &f.Economic, &f.Infrastructure, &f.Competition,
		&f.Regulatory, &f.Geographic, &f.Maritime, &f.Technology, &f.Risk,
	} {
		*p = clamp01(*p + (rng.Float64()*2-1)*factorJitter)
	}
}

func opportunityScore(f model.OpportunityFactors) float64 {
	sum := weightPopulation*f.Population +
		weightEconomic*f.Economic +
		weightInfrastructure*f.Infrastructure +
		weightCompetition*(1-f.Competition) +
		weightRegulatory*f.Regulatory +
		weightGeographic*f.Geographic +
		weightMaritime*f.Maritime +
		weightTechnology*f.Technology +
		weightRisk*(1-f.Risk)
	return sum * 100
}

func categorize(score float64) model.OpportunityCategory {
	switch {
	case score >= categoryCritical:
		return model.OpportunityCritical
	case score >= categoryHigh:
		return model.OpportunityHigh
	case score >= categoryMedium:
		return model.OpportunityMedium
	default:
		return model.OpportunityLow
	}
}

// financials derives the indicative money figures, in decimal arithmetic so
// reported dollar values round cleanly.
func financials(f model.OpportunityFactors, gdpPerCapita float64) (market, invest decimal.Decimal, ttmMonths int, roiPct float64) {
	servedPopM := decimal.NewFromFloat(basePopCatchmentM + popCatchmentSlopeM*f.Population)
	penetration := decimal.NewFromFloat(basePenetration * (0.5 + f.Technology))
	arpuUSD := decimal.NewFromFloat(gdpPerCapita * connectivitySpend)

	// millions of users x $/user/year = $M/year addressable.
	market = servedPopM.Mul(penetration).Mul(arpuUSD).Round(2)

	investFactor := 1 + greenfieldSurcharge*(1-f.Infrastructure) + riskSurcharge*f.Risk
	invest = decimal.NewFromFloat(baseCapexM * investFactor).Round(2)

	ttmMonths = int(math.Round(baseTimeToMarketMo + regulatoryDelayMo*(1-f.Regulatory)))

	annualRev := market.Mul(decimal.NewFromFloat(captureRate * (1 - 0.5*f.Competition)))
	horizon := annualRev.Mul(decimal.NewFromFloat(revenueHorizonYears))
	if invest.IsZero() {
		return market, invest, ttmMonths, 0
	}
	roiPct = horizon.Sub(invest).Div(invest).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	return market, invest, ttmMonths, roiPct
}

// opportunityRecommendations assembles advice from factor thresholds, in a
// fixed order.
func opportunityRecommendations(f model.OpportunityFactors) []string {
	var recs []string
	if f.Competition < 0.4 {
		recs = append(recs, "Low competitive density: early entry can establish regional gateway leadership")
	}
	if f.Infrastructure < 0.4 {
		recs = append(recs, "Limited local infrastructure: partner with regional operators for backhaul and power")
	}
	if f.Regulatory < 0.5 {
		recs = append(recs, "Regulatory posture unclear or restrictive: begin licensing engagement before committing the site")
	}
	if f.Maritime > 0.7 {
		recs = append(recs, "Heavy shipping traffic in range: bundle maritime connectivity services")
	}
	if f.Population > 0.6 {
		recs = append(recs, "Population-dense catchment: provision for consumer broadband capacity")
	} else if f.Economic > 0.7 {
		recs = append(recs, "Enterprise-skewed market: prioritize enterprise and government service tiers")
	}
	return recs
}

// flatDistanceDeg approximates angular separation in degrees on an
// equirectangular projection; adequate at the few-degree scales used here.
func flatDistanceDeg(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lonDelta(lon1, lon2) * math.Cos((lat1+lat2)/2*math.Pi/180)
	return math.Hypot(dLat, dLon)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

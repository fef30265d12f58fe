package core

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalsfoundry/groundstation-analyzer/internal/rescache"
	"github.com/signalsfoundry/groundstation-analyzer/kb"
	"github.com/signalsfoundry/groundstation-analyzer/model"
)

// opportunityTestCatalog holds one profile with a megacity and a busy lane at
// its center, so every factor lands on hand-checkable values.
func opportunityTestCatalog(t *testing.T) *kb.Catalog {
	t.Helper()
	c := kb.NewCatalog()
	err := c.AddRegionProfile(model.RegionProfile{
		Name:      "Testland",
		LatMinDeg: 0, LatMaxDeg: 10, LonMinDeg: 0, LonMaxDeg: 10,
		Economic:       0.60,
		Infrastructure: 0.60,
		Technology:     0.60,
		Regulatory:     0.70,
		Competition:    0.50,
		Risk:           0.50,
		Geographic:     0.50,
		Maritime:       0.20,

		GDPPerCapitaUSD: 20000,
	})
	if err != nil {
		t.Fatalf("AddRegionProfile: %v", err)
	}
	c.AddPopulationCenter(kb.PopulationCenter{Name: "Testopolis", LatDeg: 5, LonDeg: 5, Population: 30})
	c.AddLanePoint(kb.LanePoint{Name: "Test Strait", LatDeg: 5, LonDeg: 5, Traffic: 1.0})
	return c
}

func TestCalculateOpportunityScore_ProfiledRegion(t *testing.T) {
	a := NewOpportunityAnalyzer(opportunityTestCatalog(t))

	got := a.CalculateOpportunityScore(model.GridCell{
		ID:           "test-cell-55",
		CenterLatDeg: 5,
		CenterLonDeg: 5,
	})

	if got.CellID != "test-cell-55" {
		t.Errorf("CellID = %q", got.CellID)
	}
	if got.Region != "Testland" {
		t.Errorf("Region = %q, want Testland", got.Region)
	}
	if got.Confidence != 85 {
		t.Errorf("Confidence = %f, want 85 for a profiled cell", got.Confidence)
	}

	// On top of the megacity and the lane: population pulls to 1, geographic
	// picks up the low-latitude and lane bonuses, maritime blends half lane.
	wantFactors := model.OpportunityFactors{
		Population:     1.0,
		Economic:       0.60,
		Infrastructure: 0.60,
		Competition:    0.50,
		Regulatory:     0.70,
		Geographic:     0.65,
		Maritime:       0.60,
		Technology:     0.60,
		Risk:           0.50,
	}
	const tol = factorJitter + 1e-9
	checks := []struct {
		name      string
		got, want float64
	}{
		{"Population", got.Factors.Population, wantFactors.Population},
		{"Economic", got.Factors.Economic, wantFactors.Economic},
		{"Infrastructure", got.Factors.Infrastructure, wantFactors.Infrastructure},
		{"Competition", got.Factors.Competition, wantFactors.Competition},
		{"Regulatory", got.Factors.Regulatory, wantFactors.Regulatory},
		{"Geographic", got.Factors.Geographic, wantFactors.Geographic},
		{"Maritime", got.Factors.Maritime, wantFactors.Maritime},
		{"Technology", got.Factors.Technology, wantFactors.Technology},
		{"Risk", got.Factors.Risk, wantFactors.Risk},
	}
	for _, c := range checks {
		if diff := math.Abs(c.got - c.want); diff > tol {
			t.Errorf("%s = %f, want %f within jitter", c.name, c.got, c.want)
		}
	}

	// Weighted sum of the bases is 67.9; jitter moves it at most 2 points.
	if got.Score < 65.89-1e-9 || got.Score > 69.91+1e-9 {
		t.Errorf("Score = %f, want near 67.9", got.Score)
	}
	if got.Category != model.OpportunityHigh {
		t.Errorf("Category = %q, want high", got.Category)
	}

	// Only the population threshold fires for this cell.
	if len(got.Recommendations) != 1 {
		t.Fatalf("Recommendations = %v, want the consumer-broadband line only", got.Recommendations)
	}
	if !strings.Contains(got.Recommendations[0], "consumer broadband") {
		t.Errorf("recommendation = %q", got.Recommendations[0])
	}

	// Regulatory 0.70 +/- jitter puts time to market at 17 or 18 months.
	if got.TimeToMarketMonths < 17 || got.TimeToMarketMonths > 18 {
		t.Errorf("TimeToMarketMonths = %d, want 17-18", got.TimeToMarketMonths)
	}
	if !got.MarketPotentialM.IsPositive() || !got.InvestmentRequiredM.IsPositive() {
		t.Errorf("financials not positive: market %s, invest %s",
			got.MarketPotentialM, got.InvestmentRequiredM)
	}
}

func TestCalculateOpportunityScore_HeuristicFallback(t *testing.T) {
	a := NewOpportunityAnalyzer(kb.DefaultCatalog())

	// Open South Pacific: outside every builtin profile, no city or lane in
	// reach.
	got := a.CalculateOpportunityScore(model.GridCell{
		ID:           "pacific-void-01",
		CenterLatDeg: -40,
		CenterLonDeg: -170,
	})

	if got.Confidence != 50 {
		t.Errorf("Confidence = %f, want 50 for heuristic scoring", got.Confidence)
	}
	if got.Region != "" {
		t.Errorf("Region = %q, want empty", got.Region)
	}
	if got.Factors.Population > factorJitter {
		t.Errorf("Population = %f, want ~0 with no center in range", got.Factors.Population)
	}
	if got.Factors.Maritime > factorJitter {
		t.Errorf("Maritime = %f, want ~0 with no lane in range", got.Factors.Maritime)
	}
	if got.Category != model.OpportunityLow {
		t.Errorf("Category = %q (score %f), want low", got.Category, got.Score)
	}

	// Sparse competition and infrastructure both recommend; the regulatory
	// line rides the 0.5 threshold under jitter.
	if len(got.Recommendations) < 2 || len(got.Recommendations) > 3 {
		t.Fatalf("Recommendations = %v", got.Recommendations)
	}
	if !strings.Contains(got.Recommendations[0], "competitive density") {
		t.Errorf("first recommendation = %q", got.Recommendations[0])
	}
	if !strings.Contains(got.Recommendations[1], "infrastructure") {
		t.Errorf("second recommendation = %q", got.Recommendations[1])
	}
}

func TestCalculateOpportunityScore_Deterministic(t *testing.T) {
	cell := model.GridCell{ID: "na-east-0412", CenterLatDeg: 38.0, CenterLonDeg: -75.2}

	a := NewOpportunityAnalyzer(kb.DefaultCatalog())
	b := NewOpportunityAnalyzer(kb.DefaultCatalog())
	if ra, rb := a.CalculateOpportunityScore(cell), b.CalculateOpportunityScore(cell); !reflect.DeepEqual(ra, rb) {
		t.Errorf("independent analyzers disagree:\n%+v\n%+v", ra, rb)
	}

	// Same coordinates, different cell IDs: the jitter seeds differ.
	other := cell
	other.ID = "na-east-0413"
	ra := a.CalculateOpportunityScore(cell)
	rb := a.CalculateOpportunityScore(other)
	if ra.Factors == rb.Factors {
		t.Error("distinct cell IDs produced identical factor jitter")
	}
}

func TestCalculateOpportunityScore_MemoizedPerBucket(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	a := NewOpportunityAnalyzer(kb.DefaultCatalog(),
		WithOpportunityCache(rescache.New[model.OpportunityScore](time.Hour)),
		WithOpportunityClock(clock),
	)
	cell := model.GridCell{ID: "na-west-1ln7", CenterLatDeg: 34.4, CenterLonDeg: -118.3}

	first := a.CalculateOpportunityScore(cell)
	second := a.CalculateOpportunityScore(cell)
	if !reflect.DeepEqual(first, second) {
		t.Error("cached result differs from computed result")
	}
	hits, misses, _ := a.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats after repeat = %d hits / %d misses, want 1/1", hits, misses)
	}

	// A later bucket recomputes even though the TTL has not expired.
	now = now.Add(6 * time.Minute)
	_ = a.CalculateOpportunityScore(cell)
	if _, misses, _ := a.CacheStats(); misses != 2 {
		t.Errorf("misses after bucket roll = %d, want 2", misses)
	}
}

func TestOpportunityScore_WeightExtremes(t *testing.T) {
	best := model.OpportunityFactors{
		Population: 1, Economic: 1, Infrastructure: 1, Competition: 0,
		Regulatory: 1, Geographic: 1, Maritime: 1, Technology: 1, Risk: 0,
	}
	if got := opportunityScore(best); math.Abs(got-100) > 1e-9 {
		t.Errorf("best-case score = %f, want 100", got)
	}

	worst := model.OpportunityFactors{Competition: 1, Risk: 1}
	if got := opportunityScore(worst); math.Abs(got) > 1e-9 {
		t.Errorf("worst-case score = %f, want 0", got)
	}

	neutral := model.OpportunityFactors{
		Population: 0.5, Economic: 0.5, Infrastructure: 0.5, Competition: 0.5,
		Regulatory: 0.5, Geographic: 0.5, Maritime: 0.5, Technology: 0.5, Risk: 0.5,
	}
	if got := opportunityScore(neutral); math.Abs(got-50) > 1e-9 {
		t.Errorf("neutral score = %f, want 50", got)
	}
}

func TestCategorize_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  model.OpportunityCategory
	}{
		{95, model.OpportunityCritical},
		{80, model.OpportunityCritical},
		{79.99, model.OpportunityHigh},
		{65, model.OpportunityHigh},
		{64.99, model.OpportunityMedium},
		{45, model.OpportunityMedium},
		{44.99, model.OpportunityLow},
		{0, model.OpportunityLow},
	}
	for _, tc := range cases {
		if got := categorize(tc.score); got != tc.want {
			t.Errorf("categorize(%f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestFinancials_NeutralFactors(t *testing.T) {
	f := model.OpportunityFactors{
		Population: 0.5, Economic: 0.5, Infrastructure: 0.5, Competition: 0.5,
		Regulatory: 0.5, Geographic: 0.5, Maritime: 0.5, Technology: 0.5, Risk: 0.5,
	}

	market, invest, ttm, roi := financials(f, 8000)

	// 11M catchment x 2% penetration x $24/yr = $5.28M.
	if !market.Equal(decimal.NewFromFloat(5.28)) {
		t.Errorf("market = %s, want 5.28", market)
	}
	// 1 + 0.4*0.5 greenfield + 0.3*0.5 risk over the $8M base.
	if !invest.Equal(decimal.NewFromFloat(10.8)) {
		t.Errorf("invest = %s, want 10.80", invest)
	}
	if ttm != 21 {
		t.Errorf("time to market = %d months, want 21", ttm)
	}
	// Five years of captured revenue against the build cost.
	if diff := math.Abs(roi - (-85.3)); diff > 1e-9 {
		t.Errorf("ROI = %f%%, want -85.3", roi)
	}
}

func TestFinancials_IdealSite(t *testing.T) {
	f := model.OpportunityFactors{
		Population: 1, Economic: 1, Infrastructure: 1, Competition: 0,
		Regulatory: 1, Geographic: 1, Maritime: 1, Technology: 1, Risk: 0,
	}

	market, invest, ttm, roi := financials(f, 8000)

	if !market.Equal(decimal.NewFromFloat(14.4)) {
		t.Errorf("market = %s, want 14.40", market)
	}
	if !invest.Equal(decimal.NewFromInt(8)) {
		t.Errorf("invest = %s, want 8.00 with no surcharges", invest)
	}
	if ttm != 12 {
		t.Errorf("time to market = %d months, want the 12-month base", ttm)
	}
	if diff := math.Abs(roi - (-28.0)); diff > 1e-9 {
		t.Errorf("ROI = %f%%, want -28.0", roi)
	}
}

func TestOpportunityRecommendations_FixedOrder(t *testing.T) {
	f := model.OpportunityFactors{
		Population:     0.7,
		Competition:    0.3,
		Infrastructure: 0.3,
		Regulatory:     0.4,
		Maritime:       0.8,
	}
	recs := opportunityRecommendations(f)
	if len(recs) != 5 {
		t.Fatalf("recommendations = %d entries, want 5: %v", len(recs), recs)
	}
	wantOrder := []string{"competitive density", "infrastructure", "licensing", "maritime", "consumer broadband"}
	for i, frag := range wantOrder {
		if !strings.Contains(recs[i], frag) {
			t.Errorf("recs[%d] = %q, want mention of %s", i, recs[i], frag)
		}
	}
}

func TestOpportunityRecommendations_EnterpriseBranch(t *testing.T) {
	f := model.OpportunityFactors{
		Population:     0.5,
		Economic:       0.8,
		Competition:    0.5,
		Infrastructure: 0.5,
		Regulatory:     0.6,
		Maritime:       0.3,
	}
	recs := opportunityRecommendations(f)
	if len(recs) != 1 || !strings.Contains(recs[0], "enterprise") {
		t.Errorf("recommendations = %v, want the enterprise tier line only", recs)
	}

	// A population-dense cell takes the broadband line instead.
	f.Population = 0.7
	recs = opportunityRecommendations(f)
	if len(recs) != 1 || !strings.Contains(recs[0], "consumer broadband") {
		t.Errorf("recommendations = %v, want the broadband line only", recs)
	}
}

func TestLatitudeAdjustment_Bands(t *testing.T) {
	cases := []struct {
		lat  float64
		want float64
	}{
		{72, -0.25}, {65, -0.25}, {-70, -0.25},
		{60, -0.10}, {55, -0.10},
		{54.9, 0}, {40, 0}, {25.1, 0},
		{25, 0.05}, {0, 0.05}, {-20, 0.05},
	}
	for _, tc := range cases {
		if got := latitudeAdjustment(tc.lat); got != tc.want {
			t.Errorf("latitudeAdjustment(%f) = %f, want %f", tc.lat, got, tc.want)
		}
	}
}

func TestPopulationFactor_DistanceDecay(t *testing.T) {
	c := kb.NewCatalog()
	c.AddPopulationCenter(kb.PopulationCenter{Name: "Metro", LatDeg: 0, LonDeg: 0, Population: 30})
	c.AddPopulationCenter(kb.PopulationCenter{Name: "Town", LatDeg: 4, LonDeg: 0, Population: 15})
	a := NewOpportunityAnalyzer(c)

	cases := []struct {
		lat, lon float64
		want     float64
	}{
		{0, 0, 1.0},    // on the megacity
		{4, 0, 0.75},   // on the half-size town, which outpulls the distant metro
		{-2.5, 0, 0.5}, // halfway out of the metro's radius
		{0, 5, 0},      // the radius boundary is exclusive
	}
	for _, tc := range cases {
		got := a.populationFactor(tc.lat, tc.lon)
		if diff := math.Abs(got - tc.want); diff > 1e-9 {
			t.Errorf("populationFactor(%f, %f) = %f, want %f", tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestLaneProximity_TrafficWeighted(t *testing.T) {
	c := kb.NewCatalog()
	c.AddLanePoint(kb.LanePoint{Name: "Chokepoint", LatDeg: 0, LonDeg: 0, Traffic: 0.8})
	a := NewOpportunityAnalyzer(c)

	if got := a.laneProximity(0, 0); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("on-lane proximity = %f, want 0.8", got)
	}
	if got := a.laneProximity(2.5, 0); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("mid-range proximity = %f, want 0.4", got)
	}
	if got := a.laneProximity(5, 0); got != 0 {
		t.Errorf("boundary proximity = %f, want 0", got)
	}
}

func TestJitterFactors_ReproducibleAndClamped(t *testing.T) {
	base := model.OpportunityFactors{
		Population: 0.5, Economic: 0.5, Infrastructure: 0.5, Competition: 0.5,
		Regulatory: 0.5, Geographic: 0.5, Maritime: 0.5, Technology: 0.5, Risk: 0.5,
	}
	a, b := base, base
	jitterFactors(&a, cellRNG("cell-x"))
	jitterFactors(&b, cellRNG("cell-x"))
	if a != b {
		t.Error("same seed produced different jitter")
	}
	if a == base {
		t.Error("jitter left every factor untouched")
	}

	top := model.OpportunityFactors{
		Population: 1, Economic: 1, Infrastructure: 1, Competition: 1,
		Regulatory: 1, Geographic: 1, Maritime: 1, Technology: 1, Risk: 1,
	}
	jitterFactors(&top, cellRNG("cell-y"))
	for _, v := range []float64{
		top.Population, top.Economic, top.Infrastructure, top.Competition,
		top.Regulatory, top.Geographic, top.Maritime, top.Technology, top.Risk,
	} {
		if v > 1 || v < 0.98-1e-9 {
			t.Errorf("jittered factor %f escaped its bounds", v)
		}
	}
}

func TestFlatDistanceDeg_Projection(t *testing.T) {
	if got := flatDistanceDeg(0, 0, 0, 4); math.Abs(got-4) > 1e-9 {
		t.Errorf("equatorial distance = %f, want 4", got)
	}
	// Meridian convergence halves a longitude span at 60 degrees.
	if got := flatDistanceDeg(60, -10, 60, -14); math.Abs(got-2) > 1e-9 {
		t.Errorf("high-latitude distance = %f, want 2", got)
	}
	// Longitude wraps across the antimeridian.
	if got := flatDistanceDeg(0, 179.5, 0, -179.5); math.Abs(got-1) > 1e-9 {
		t.Errorf("antimeridian distance = %f, want 1", got)
	}
}

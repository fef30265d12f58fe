package core

import (
	"math"
	"sort"
	"time"

	"github.com/signalsfoundry/groundstation-analyzer/kb"
	"github.com/signalsfoundry/groundstation-analyzer/model"
	"github.com/signalsfoundry/groundstation-analyzer/timegrid"
)

// Normalization targets for the feasibility component scores. A site hitting
// every target earns the full weight for that component.
const (
	targetPassesPerDay   = 10.0
	targetAvgPassMinutes = 10.0
	targetContactHours   = 3.0
	targetCapacityGbps   = 50.0
	maxUsefulGapHours    = 6.0
	emptyDayGapHours     = 24.0

	peakElevationNorm   = 90.0
	durationNormMinutes = 15.0
	diversityNorm       = 5.0
)

// Component weights; they sum to 100.
const (
	weightPassFrequency = 25.0
	weightPassDuration  = 20.0
	weightContactTime   = 20.0
	weightDiversity     = 15.0
	weightCoverageGap   = 10.0
	weightCapacity      = 10.0
)

// FeasibilityScorer condenses a pass set into daily statistics and a single
// 0-100 technical feasibility score. Scoring is deterministic.
type FeasibilityScorer struct {
	catalog *kb.Catalog
}

// NewFeasibilityScorer builds a scorer reading constellation base rates from
// the given catalog. A nil catalog falls back to the built-in defaults.
func NewFeasibilityScorer(catalog *kb.Catalog) *FeasibilityScorer {
	if catalog == nil {
		catalog = kb.DefaultCatalog()
	}
	return &FeasibilityScorer{catalog: catalog}
}

// dayStats holds the per-UTC-day aggregates rolled into TechnicalMetrics.
type dayStats struct {
	count        int
	avgDurMin    float64
	contactHours float64
	maxGapHours  float64
}

// CalculateTechnicalMetrics groups passes into UTC calendar days over
// [start, end], averages the daily statistics, and scores the site. The
// window is explicit because days without a single pass still count: an
// empty day contributes zero contact and a 24-hour coverage gap.
func (s *FeasibilityScorer) CalculateTechnicalMetrics(loc model.GroundLocation, passes []model.SatellitePass, start, end time.Time) model.TechnicalMetrics {
	w := timegrid.NewWindow(start, end)
	days := w.Days()

	byDay := make(map[string][]model.SatellitePass, len(days))
	for _, p := range passes {
		key := timegrid.DayKey(p.StartTime)
		byDay[key] = append(byDay[key], p)
	}

	var (
		totalCount int
		sumAvgDur  float64
		sumContact float64
		sumMaxGap  float64
	)
	for _, day := range days {
		st := summarizeDay(byDay[day])
		totalCount += st.count
		sumAvgDur += st.avgDurMin
		sumContact += st.contactHours
		sumMaxGap += st.maxGapHours
	}

	n := float64(len(days))
	m := model.TechnicalMetrics{
		PassesPerDay:       float64(totalCount) / n,
		AvgPassDurationMin: sumAvgDur / n,
		DailyContactHours:  sumContact / n,
		CoverageGapHours:   sumMaxGap / n,
	}
	m.ConstellationDiversity = constellationDiversity(passes)
	m.CapacityGbps = s.capacityEstimate(passes)
	m.FeasibilityScore = feasibilityScore(m)
	return m
}

func summarizeDay(passes []model.SatellitePass) dayStats {
	if len(passes) == 0 {
		return dayStats{maxGapHours: emptyDayGapHours}
	}

	sorted := make([]model.SatellitePass, len(passes))
	copy(sorted, passes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	var totalMin float64
	for _, p := range sorted {
		totalMin += p.DurationMinutes
	}

	st := dayStats{
		count:        len(sorted),
		avgDurMin:    totalMin / float64(len(sorted)),
		contactHours: totalMin / 60,
	}
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].StartTime.Sub(sorted[i-1].EndTime).Hours()
		if gap > st.maxGapHours {
			st.maxGapHours = gap
		}
	}
	return st
}

// constellationDiversity saturates once five distinct constellations appear.
func constellationDiversity(passes []model.SatellitePass) float64 {
	seen := make(map[string]struct{}, len(passes))
	for _, p := range passes {
		seen[p.Constellation] = struct{}{}
	}
	return math.Min(float64(len(seen))/diversityNorm, 1)
}

// capacityEstimate sums per-pass deliverable capacity: the constellation base
// rate derated by peak elevation and by pass length (full rate from 15
// minutes up).
func (s *FeasibilityScorer) capacityEstimate(passes []model.SatellitePass) float64 {
	var total float64
	for _, p := range passes {
		rate := s.catalog.BaseRateGbps(p.Constellation)
		elevFactor := math.Min(p.PeakElevationDeg/peakElevationNorm, 1)
		durFactor := math.Min(p.DurationMinutes/durationNormMinutes, 1)
		total += rate * elevFactor * durFactor
	}
	return total
}

func feasibilityScore(m model.TechnicalMetrics) float64 {
	score := weightPassFrequency * math.Min(m.PassesPerDay/targetPassesPerDay, 1)
	score += weightPassDuration * math.Min(m.AvgPassDurationMin/targetAvgPassMinutes, 1)
	score += weightContactTime * math.Min(m.DailyContactHours/targetContactHours, 1)
	score += weightDiversity * m.ConstellationDiversity
	score += weightCoverageGap * math.Max(0, 1-m.CoverageGapHours/maxUsefulGapHours)
	score += weightCapacity * math.Min(m.CapacityGbps/targetCapacityGbps, 1)
	return score
}

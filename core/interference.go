package core

import (
	"math"

	"github.com/signalsfoundry/groundstation-analyzer/kb"
	"github.com/signalsfoundry/groundstation-analyzer/model"
)

// Boltzmann's constant expressed as dBW/K/Hz, for thermal noise floors.
const boltzmannDBW = -228.6

const (
	defaultNoiseTempK   = 290.0
	defaultBandwidthMHz = 36.0

	// cleanSkyCIdB is the C/I reported when no interferers apply. Real
	// measurement chains bottom out around this level, so reporting it keeps
	// downstream consumers from special-casing "no interference".
	cleanSkyCIdB = 60.0

	// referenceSINRdB anchors the capacity-reduction estimate: a link at this
	// SINR is treated as delivering its full provisioned throughput.
	referenceSINRdB = 25.0

	// maxChannelRejectionDB caps adjacent-channel rejection; past that offset
	// receiver selectivity stops improving.
	maxChannelRejectionDB = 40.0

	// mixedPolIsolationDB is the isolation between a linear and a circular
	// polarization, which share half their power regardless of alignment.
	mixedPolIsolationDB = 3.0
)

// Service-quality impact thresholds on C/I, in dB.
const (
	ciNoneDB     = 25.0
	ciMinimalDB  = 20.0
	ciModerateDB = 15.0
)

// Adjacent-satellite geometry constants.
const (
	// topocentricFactor converts geocentric longitudinal separation in the
	// GEO arc to the off-axis angle seen by a mid-latitude earth station.
	topocentricFactor = 1.1

	// geoVisibilityLimitDeg is the longitudinal separation from the station
	// beyond which a GEO satellite sits below the local horizon.
	geoVisibilityLimitDeg = 81.0

	// asiFarFieldFloorDB flattens the discrimination envelope far off axis.
	asiFarFieldFloorDB = 35.0

	// asiNegligibleFloorDBW stands in for "no measurable contribution" so
	// empty assessments stay finite and serializable.
	asiNegligibleFloorDBW = -300.0
)

// InterferenceOption configures an InterferenceCalculator.
type InterferenceOption func(*InterferenceCalculator)

// WithNoiseTemperature overrides the receive system noise temperature used
// for C/N. Non-positive values keep the 290 K default.
func WithNoiseTemperature(kelvin float64) InterferenceOption {
	return func(ic *InterferenceCalculator) {
		if kelvin > 0 {
			ic.noiseTempK = kelvin
		}
	}
}

// InterferenceCalculator derives C/I, C/N, SINR and mitigation guidance for
// one link against a set of interference sources. The model is deliberately
// first-order: good enough to rank sites and trigger coordination, not an
// engineering-grade link budget.
type InterferenceCalculator struct {
	noiseTempK float64
	catalog    *kb.Catalog
}

// NewInterferenceCalculator builds a calculator. The catalog supplies 5G
// country deployment tiers; nil falls back to the built-in defaults.
func NewInterferenceCalculator(catalog *kb.Catalog, opts ...InterferenceOption) *InterferenceCalculator {
	if catalog == nil {
		catalog = kb.DefaultCatalog()
	}
	ic := &InterferenceCalculator{
		noiseTempK: defaultNoiseTempK,
		catalog:    catalog,
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

// PerformComprehensiveAssessment computes the interference picture for the
// link: every source's contribution is reduced by adjacent-channel rejection,
// polarization isolation, and spatial isolation, then summed linearly.
func (ic *InterferenceCalculator) PerformComprehensiveAssessment(link model.LinkBudget, sources []model.InterferenceSource) model.InterferenceAssessment {
	cn := ic.carrierToNoise(link)

	var (
		ci       float64
		totalDBW float64
		dominant string
	)
	if len(sources) == 0 {
		ci = cleanSkyCIdB
		totalDBW = link.ReceivedPowerDBW - cleanSkyCIdB // implied by the reported C/I
	} else {
		totalLinear := 0.0
		worst := math.Inf(-1)
		for _, src := range sources {
			p := ic.sourceInterferenceDBW(link, src)
			totalLinear += dbToLinear(p)
			if p > worst {
				worst = p
				dominant = src.Name
			}
		}
		totalDBW = linearToDB(totalLinear)
		ci = link.ReceivedPowerDBW - totalDBW
	}

	sinr := combineSINR(ci, cn)
	impact := classifyImpact(ci)

	return model.InterferenceAssessment{
		CToIdB:               ci,
		CToNdB:               cn,
		SINRdB:               sinr,
		TotalInterferenceDBW: totalDBW,
		DominantSource:       dominant,
		CapacityReductionPct: capacityReductionPct(sinr),
		Impact:               impact,
		MitigationRequired:   ci < ciModerateDB,
		Recommendations:      buildRecommendations(ci, impact, sources),
	}
}

// sourceInterferenceDBW is one source's power at the receiver after the
// three isolation mechanisms.
func (ic *InterferenceCalculator) sourceInterferenceDBW(link model.LinkBudget, src model.InterferenceSource) float64 {
	rejection := math.Min(maxChannelRejectionDB, math.Abs(link.FrequencyMHz-src.FrequencyMHz)/10)
	polIso := polarizationIsolation(link.Polarization, src.Polarization, xpdForRainFade(link.RainFadeDB))
	spatial := spatialIsolation(src)
	return src.PowerDBW - rejection - polIso - spatial
}

// carrierToNoise computes C/N against the thermal floor kTB. Zero bandwidth
// defaults to a 36 MHz transponder.
func (ic *InterferenceCalculator) carrierToNoise(link model.LinkBudget) float64 {
	bwMHz := link.BandwidthMHz
	if bwMHz <= 0 {
		bwMHz = defaultBandwidthMHz
	}
	noiseDBW := boltzmannDBW + 10*math.Log10(ic.noiseTempK) + 10*math.Log10(bwMHz*1e6)
	return link.ReceivedPowerDBW - noiseDBW
}

// xpdForRainFade returns cross-polarization discrimination for the current
// rain fade. Rain depolarizes the wave, so XPD collapses as fade deepens.
func xpdForRainFade(fadeDB float64) float64 {
	switch {
	case fadeDB <= 1:
		return 30
	case fadeDB <= 5:
		return 25
	case fadeDB <= 10:
		return 20
	default:
		return 15
	}
}

// polarizationIsolation credits isolation between the wanted carrier and an
// interferer. Orthogonal pairs earn the full rain-degraded XPD; mixed
// linear/circular pairs a fixed 3 dB; same or unspecified polarizations
// nothing.
func polarizationIsolation(carrier, source model.Polarization, xpd float64) float64 {
	switch {
	case carrier == model.PolarizationUnspecified || source == model.PolarizationUnspecified:
		return 0
	case carrier == source:
		return 0
	case orthogonalPolarizations(carrier, source):
		return xpd
	default:
		return mixedPolIsolationDB
	}
}

func orthogonalPolarizations(a, b model.Polarization) bool {
	switch {
	case a == model.PolarizationLinearH && b == model.PolarizationLinearV,
		a == model.PolarizationLinearV && b == model.PolarizationLinearH,
		a == model.PolarizationRHCP && b == model.PolarizationLHCP,
		a == model.PolarizationLHCP && b == model.PolarizationRHCP:
		return true
	}
	return false
}

// spatialIsolation credits terrain and antenna-pattern isolation toward a
// source from its arrival elevation at the station. Sources below the
// horizon are heavily shielded; sources without geometry get no credit.
func spatialIsolation(src model.InterferenceSource) float64 {
	if src.ElevationDeg == nil {
		return 0
	}
	el := *src.ElevationDeg
	switch {
	case el < 0:
		return math.Min(40+2*math.Abs(el), 60)
	case el < 5:
		return 15 * (1 - el/5)
	default:
		return 0
	}
}

// combineSINR folds C/I and C/N into SINR by parallel combination of the
// linear ratios.
func combineSINR(ciDB, cnDB float64) float64 {
	ci := dbToLinear(ciDB)
	cn := dbToLinear(cnDB)
	return linearToDB(1 / (1/ci + 1/cn))
}

// capacityReductionPct estimates throughput loss against the reference SINR
// via the Shannon capacity ratio. An approximation by construction.
func capacityReductionPct(sinrDB float64) float64 {
	sinr := dbToLinear(sinrDB)
	ref := dbToLinear(referenceSINRdB)
	reduction := (1 - math.Log2(1+sinr)/math.Log2(1+ref)) * 100
	return math.Max(0, math.Min(100, reduction))
}

func classifyImpact(ciDB float64) model.ServiceImpact {
	switch {
	case ciDB >= ciNoneDB:
		return model.ImpactNone
	case ciDB >= ciMinimalDB:
		return model.ImpactMinimal
	case ciDB >= ciModerateDB:
		return model.ImpactModerate
	default:
		return model.ImpactSevere
	}
}

// buildRecommendations assembles mitigation advice by rule, in a fixed order
// so assessments stay deterministic.
func buildRecommendations(ciDB float64, impact model.ServiceImpact, sources []model.InterferenceSource) []string {
	var recs []string
	if ciDB < ciModerateDB {
		recs = append(recs, "Urgent: C/I is below the 15 dB protection threshold; coordinate with interfering operators or relocate the terminal")
	}
	if hasSourceType(sources, model.InterferenceASI) {
		recs = append(recs, "Verify antenna pointing and sidelobe performance; open adjacent-satellite coordination if degradation persists")
	}
	if hasSourceType(sources, model.InterferenceTerrestrial5G) {
		recs = append(recs, "Install C-band bandpass filtering on the receive chain and coordinate exclusion zones with the terrestrial operator")
	}
	if hasSourceType(sources, model.InterferenceCrossPol) {
		recs = append(recs, "Re-align feed polarization and verify XPD against the clear-sky baseline")
	}
	switch impact {
	case model.ImpactSevere:
		recs = append(recs, "Consider site relocation or terrain shielding between the station and the dominant interferer")
	case model.ImpactModerate:
		recs = append(recs, "Schedule periodic interference monitoring at this site")
	}
	return recs
}

func hasSourceType(sources []model.InterferenceSource, t model.InterferenceType) bool {
	for _, src := range sources {
		if src.Type == t {
			return true
		}
	}
	return false
}

// Check5GConflict reports whether a carrier frequency falls inside one of
// the C-band NR allocations (n77 3300-4200, n78 3300-3800, n79 4400-5000
// MHz). The overlap region reports the narrower n78. Nil means the
// frequency is clear; that is not an error.
func (ic *InterferenceCalculator) Check5GConflict(freqMHz float64, countryCode string) *model.SpectrumConflict {
	freq := math.Abs(freqMHz)

	var band string
	switch {
	case freq >= 3300 && freq <= 3800:
		band = "n78"
	case freq > 3800 && freq <= 4200:
		band = "n77"
	case freq >= 4400 && freq <= 5000:
		band = "n79"
	default:
		return nil
	}

	conflictType := model.ConflictDownlink
	if freq < 3700 {
		conflictType = model.ConflictUplink
	}

	tier := ic.catalog.NRTierFor(countryCode)
	impact := impactForTier(tier)

	mitigations := []string{"Install sharp-rolloff bandpass filtering ahead of the LNB"}
	if conflictType == model.ConflictUplink {
		mitigations = append(mitigations, "Coordinate uplink power limits and guard bands with nearby gNB operators")
	} else {
		mitigations = append(mitigations, "Survey local gNB deployments and apply site shielding toward the strongest emitters")
	}
	if tier == kb.NRTierAggressive {
		mitigations = append(mitigations, "Engage the national regulator for a coordination zone around the station")
	}

	return &model.SpectrumConflict{
		Band:         band,
		ConflictType: conflictType,
		Impact:       impact,
		Country:      countryCode,
		Mitigations:  mitigations,
	}
}

// impactForTier escalates conflict severity with the country's C-band
// deployment pace.
func impactForTier(tier kb.NRTier) model.ServiceImpact {
	switch tier {
	case kb.NRTierAggressive:
		return model.ImpactSevere
	case kb.NRTierModerate:
		return model.ImpactModerate
	default:
		return model.ImpactMinimal
	}
}

// AssessAdjacentSatellites sums interference from GEO neighbors of the
// desired satellite as seen from the station. Off-axis angle is approximated
// as 1.1x the geocentric longitudinal separation; discrimination follows a
// three-region envelope (quadratic main lobe, 25 log10 sidelobes, 35 dB
// floor). Neighbors beyond the station's GEO visibility arc are ignored.
func (ic *InterferenceCalculator) AssessAdjacentSatellites(stationLonDeg, desiredLonDeg float64, neighbors []model.AdjacentSatellite) model.ASIAssessment {
	out := model.ASIAssessment{
		TotalASIdBW:          asiNegligibleFloorDBW,
		WorstContributionDBW: asiNegligibleFloorDBW,
	}

	totalLinear := 0.0
	for _, n := range neighbors {
		if math.Abs(lonDelta(n.OrbitalLongitudeDeg, stationLonDeg)) > geoVisibilityLimitDeg {
			continue
		}

		offAxis := topocentricFactor * math.Abs(lonDelta(n.OrbitalLongitudeDeg, desiredLonDeg))
		disc := antennaDiscrimination(offAxis)
		p := n.EIRPdBW - disc

		totalLinear += dbToLinear(p)
		out.Contributions = append(out.Contributions, model.ASIContribution{
			Name:             n.Name,
			OffAxisDeg:       offAxis,
			DiscriminationDB: disc,
			PowerDBW:         p,
		})
		if p > out.WorstContributionDBW {
			out.WorstContributionDBW = p
			out.WorstContributor = n.Name
		}
	}
	if totalLinear > 0 {
		out.TotalASIdBW = linearToDB(totalLinear)
	}
	return out
}

// antennaDiscrimination is the receive-pattern rejection at the given
// off-axis angle.
func antennaDiscrimination(offAxisDeg float64) float64 {
	theta := math.Abs(offAxisDeg)
	if theta < 1 {
		return 12 * theta * theta
	}
	return math.Min(12+25*math.Log10(theta), asiFarFieldFloorDB)
}

// lonDelta is the signed shortest longitudinal separation in degrees.
func lonDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	switch {
	case d > 180:
		d -= 360
	case d < -180:
		d += 360
	}
	return d
}

// dbToLinear converts a dB quantity to its linear ratio (or dBW to watts).
func dbToLinear(db float64) float64 { return math.Pow(10, db/10) }

// linearToDB converts a linear ratio (or watts) to dB.
func linearToDB(v float64) float64 { return 10 * math.Log10(v) }

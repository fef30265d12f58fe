package kb

import "github.com/signalsfoundry/groundstation-analyzer/model"

// DefaultCatalog returns a catalog seeded with the built-in reference data:
// eight world-region profiles, the major population centers, the main
// shipping lanes, per-constellation downlink rates, and 5G C-band
// deployment tiers.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, p := range defaultRegionProfiles {
		// Names are unique in the builtin table.
		_ = c.AddRegionProfile(p)
	}
	for _, pc := range defaultPopulationCenters {
		c.AddPopulationCenter(pc)
	}
	for _, lp := range defaultLanePoints {
		c.AddLanePoint(lp)
	}
	for name, rate := range defaultBaseRates {
		c.SetBaseRate(name, rate)
	}
	for country, tier := range defaultNRTiers {
		c.SetNRTier(country, tier)
	}
	return c
}

// Registration order doubles as match order: Europe precedes MENA so the
// Iberian overlap resolves to Europe, North America precedes Latin America
// at the 15N boundary.
var defaultRegionProfiles = []model.RegionProfile{
	{
		Name:      "North America",
		LatMinDeg: 15, LatMaxDeg: 72, LonMinDeg: -168, LonMaxDeg: -52,
		Description:     "Mature market, dense cloud regions, strong fiber backhaul",
		Economic:        0.95,
		Infrastructure:  0.90,
		Technology:      0.95,
		Regulatory:      0.85,
		Competition:     0.90,
		Risk:            0.15,
		Geographic:      0.80,
		Maritime:        0.70,
		GDPPerCapitaUSD: 65000,
	},
	{
		Name:      "Europe",
		LatMinDeg: 35, LatMaxDeg: 71, LonMinDeg: -11, LonMaxDeg: 40,
		Description:     "Dense teleport footprint, harmonized spectrum regime",
		Economic:        0.90,
		Infrastructure:  0.88,
		Technology:      0.90,
		Regulatory:      0.80,
		Competition:     0.85,
		Risk:            0.18,
		Geographic:      0.75,
		Maritime:        0.80,
		GDPPerCapitaUSD: 48000,
	},
	{
		Name:      "East Asia",
		LatMinDeg: 18, LatMaxDeg: 46, LonMinDeg: 97, LonMaxDeg: 146,
		Description:     "High-throughput demand, crowded orbital slots",
		Economic:        0.85,
		Infrastructure:  0.85,
		Technology:      0.92,
		Regulatory:      0.55,
		Competition:     0.80,
		Risk:            0.30,
		Geographic:      0.70,
		Maritime:        0.85,
		GDPPerCapitaUSD: 28000,
	},
	{
		Name:      "South Asia",
		LatMinDeg: 5, LatMaxDeg: 37, LonMinDeg: 60, LonMaxDeg: 97,
		Description:     "Large underserved population, improving backhaul",
		Economic:        0.55,
		Infrastructure:  0.45,
		Technology:      0.60,
		Regulatory:      0.50,
		Competition:     0.45,
		Risk:            0.45,
		Geographic:      0.65,
		Maritime:        0.70,
		GDPPerCapitaUSD: 2500,
	},
	{
		Name:      "Southeast Asia & Oceania",
		LatMinDeg: -47, LatMaxDeg: 18, LonMinDeg: 92, LonMaxDeg: 180,
		Description:     "Archipelagic geography, heavy maritime traffic",
		Economic:        0.60,
		Infrastructure:  0.55,
		Technology:      0.65,
		Regulatory:      0.60,
		Competition:     0.50,
		Risk:            0.35,
		Geographic:      0.85,
		Maritime:        0.95,
		GDPPerCapitaUSD: 12000,
	},
	{
		Name:      "Middle East & North Africa",
		LatMinDeg: 12, LatMaxDeg: 42, LonMinDeg: -17, LonMaxDeg: 60,
		Description:     "Sovereign capacity programs, transit chokepoints",
		Economic:        0.70,
		Infrastructure:  0.60,
		Technology:      0.65,
		Regulatory:      0.45,
		Competition:     0.55,
		Risk:            0.50,
		Geographic:      0.60,
		Maritime:        0.75,
		GDPPerCapitaUSD: 18000,
	},
	{
		Name:      "Sub-Saharan Africa",
		LatMinDeg: -35, LatMaxDeg: 12, LonMinDeg: -17, LonMaxDeg: 51,
		Description:     "Greenfield demand, sparse terrestrial competition",
		Economic:        0.40,
		Infrastructure:  0.30,
		Technology:      0.40,
		Regulatory:      0.45,
		Competition:     0.25,
		Risk:            0.55,
		Geographic:      0.60,
		Maritime:        0.60,
		GDPPerCapitaUSD: 1800,
	},
	{
		Name:      "Latin America",
		LatMinDeg: -56, LatMaxDeg: 15, LonMinDeg: -117, LonMaxDeg: -34,
		Description:     "Regional operators consolidating, long coastlines",
		Economic:        0.55,
		Infrastructure:  0.50,
		Technology:      0.55,
		Regulatory:      0.55,
		Competition:     0.45,
		Risk:            0.40,
		Geographic:      0.70,
		Maritime:        0.72,
		GDPPerCapitaUSD: 8500,
	},
}

var defaultPopulationCenters = []PopulationCenter{
	{Name: "Tokyo", LatDeg: 35.68, LonDeg: 139.69, Population: 37.4},
	{Name: "Delhi", LatDeg: 28.61, LonDeg: 77.21, Population: 32.9},
	{Name: "Shanghai", LatDeg: 31.23, LonDeg: 121.47, Population: 29.2},
	{Name: "Dhaka", LatDeg: 23.81, LonDeg: 90.41, Population: 23.2},
	{Name: "Sao Paulo", LatDeg: -23.55, LonDeg: -46.63, Population: 22.6},
	{Name: "Mexico City", LatDeg: 19.43, LonDeg: -99.13, Population: 22.3},
	{Name: "Cairo", LatDeg: 30.04, LonDeg: 31.24, Population: 22.1},
	{Name: "Beijing", LatDeg: 39.90, LonDeg: 116.41, Population: 21.2},
	{Name: "Mumbai", LatDeg: 19.08, LonDeg: 72.88, Population: 21.3},
	{Name: "Osaka", LatDeg: 34.69, LonDeg: 135.50, Population: 19.0},
	{Name: "New York", LatDeg: 40.71, LonDeg: -74.01, Population: 18.8},
	{Name: "Karachi", LatDeg: 24.86, LonDeg: 67.01, Population: 17.6},
	{Name: "Lagos", LatDeg: 6.52, LonDeg: 3.38, Population: 15.9},
	{Name: "Istanbul", LatDeg: 41.01, LonDeg: 28.98, Population: 15.8},
	{Name: "Buenos Aires", LatDeg: -34.60, LonDeg: -58.38, Population: 15.4},
	{Name: "Manila", LatDeg: 14.60, LonDeg: 120.98, Population: 14.4},
	{Name: "Los Angeles", LatDeg: 34.05, LonDeg: -118.24, Population: 12.5},
	{Name: "London", LatDeg: 51.51, LonDeg: -0.13, Population: 9.6},
	{Name: "Singapore", LatDeg: 1.35, LonDeg: 103.82, Population: 6.0},
	{Name: "Sydney", LatDeg: -33.87, LonDeg: 151.21, Population: 5.4},
}

var defaultLanePoints = []LanePoint{
	{Name: "Strait of Malacca", LatDeg: 1.43, LonDeg: 102.89, Traffic: 1.0},
	{Name: "Suez Canal", LatDeg: 30.00, LonDeg: 32.55, Traffic: 0.95},
	{Name: "Strait of Hormuz", LatDeg: 26.57, LonDeg: 56.25, Traffic: 0.90},
	{Name: "English Channel", LatDeg: 50.50, LonDeg: -0.50, Traffic: 0.90},
	{Name: "South China Sea", LatDeg: 10.00, LonDeg: 113.00, Traffic: 0.85},
	{Name: "Panama Canal", LatDeg: 9.08, LonDeg: -79.68, Traffic: 0.85},
	{Name: "Strait of Gibraltar", LatDeg: 35.95, LonDeg: -5.60, Traffic: 0.80},
	{Name: "Taiwan Strait", LatDeg: 24.50, LonDeg: 119.50, Traffic: 0.80},
	{Name: "Bab el-Mandeb", LatDeg: 12.58, LonDeg: 43.33, Traffic: 0.75},
	{Name: "Bosporus", LatDeg: 41.12, LonDeg: 29.05, Traffic: 0.70},
	{Name: "Danish Straits", LatDeg: 55.50, LonDeg: 12.70, Traffic: 0.65},
	{Name: "Cape of Good Hope", LatDeg: -34.80, LonDeg: 19.90, Traffic: 0.60},
	{Name: "US East Coast", LatDeg: 36.90, LonDeg: -75.00, Traffic: 0.60},
	{Name: "North Atlantic", LatDeg: 45.00, LonDeg: -40.00, Traffic: 0.50},
}

// Per-pass downlink estimates in Gbps. Dense LEO constellations land high,
// MEO mid, GEO/HTS low; these feed the linear capacity model, not a link
// budget.
var defaultBaseRates = map[string]float64{
	"STARLINK": 2.0,
	"KUIPER":   2.0,
	"ONEWEB":   1.5,
	"TELESAT":  1.4,
	"IRIDIUM":  0.5,
	"O3B":      1.0,
	"SES GEO":  0.4,
	"VIASAT":   0.4,
	"EUTELSAT": 0.4,
	"INTELSAT": 0.4,
}

var defaultNRTiers = map[string]NRTier{
	"US": NRTierAggressive,
	"CN": NRTierAggressive,
	"KR": NRTierAggressive,
	"JP": NRTierAggressive,
	"DE": NRTierAggressive,
	"GB": NRTierAggressive,
	"FR": NRTierAggressive,
	"AU": NRTierAggressive,
	"AE": NRTierAggressive,
	"SA": NRTierAggressive,
	"CA": NRTierModerate,
	"IT": NRTierModerate,
	"ES": NRTierModerate,
	"SE": NRTierModerate,
	"FI": NRTierModerate,
	"NO": NRTierModerate,
	"NL": NRTierModerate,
	"CH": NRTierModerate,
	"IN": NRTierModerate,
	"BR": NRTierModerate,
	"TH": NRTierModerate,
	"MY": NRTierModerate,
}

// Package kb holds the reference catalogs the analysis engines score
// against: world-region market profiles, major population centers, shipping
// lanes, per-constellation downlink rates, and 5G deployment tiers.
package kb

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/signalsfoundry/groundstation-analyzer/model"
)

// ErrProfileExists is returned when registering a region profile whose name
// is already taken.
var ErrProfileExists = errors.New("region profile already exists")

// DefaultBaseRateGbps is the per-pass downlink estimate for constellations
// the catalog does not know.
const DefaultBaseRateGbps = 1.0

// PopulationCenter is one entry of the fixed major-city table used by the
// population proximity heuristic.
type PopulationCenter struct {
	Name       string
	LatDeg     float64
	LonDeg     float64
	Population float64 // millions
}

// LanePoint is a shipping-lane waypoint with a relative traffic weight (0-1).
type LanePoint struct {
	Name    string
	LatDeg  float64
	LonDeg  float64
	Traffic float64
}

// NRTier grades how aggressively a country has deployed 5G NR in C-band.
type NRTier string

const (
	NRTierAggressive NRTier = "aggressive"
	NRTierModerate   NRTier = "moderate"
	NRTierLimited    NRTier = "limited"
)

// Catalog is an in-memory, thread-safe reference store. Reads dominate;
// writes happen at startup or when a caller registers custom entries.
type Catalog struct {
	mu sync.RWMutex

	profiles  []model.RegionProfile
	centers   []PopulationCenter
	lanes     []LanePoint
	baseRates map[string]float64
	nrTiers   map[string]NRTier
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		baseRates: make(map[string]float64),
		nrTiers:   make(map[string]NRTier),
	}
}

// AddRegionProfile registers a profile. Profiles are matched in registration
// order, so more specific boxes should be added before broad ones.
func (c *Catalog) AddRegionProfile(p model.RegionProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: %q", ErrProfileExists, p.Name)
		}
	}
	if p.LatMinDeg > p.LatMaxDeg {
		p.LatMinDeg, p.LatMaxDeg = p.LatMaxDeg, p.LatMinDeg
	}
	if p.LonMinDeg > p.LonMaxDeg {
		p.LonMinDeg, p.LonMaxDeg = p.LonMaxDeg, p.LonMinDeg
	}
	c.profiles = append(c.profiles, p)
	return nil
}

// RegionProfileFor returns the first registered profile whose bounding box
// contains the point.
func (c *Catalog) RegionProfileFor(latDeg, lonDeg float64) (model.RegionProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.profiles {
		if p.Contains(latDeg, lonDeg) {
			return p, true
		}
	}
	return model.RegionProfile{}, false
}

// RegionProfile looks a profile up by name.
func (c *Catalog) RegionProfile(name string) (model.RegionProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return model.RegionProfile{}, false
}

// ListRegionProfiles returns a snapshot of all profiles in match order.
func (c *Catalog) ListRegionProfiles() []model.RegionProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.RegionProfile(nil), c.profiles...)
}

// AddPopulationCenter appends a city to the proximity table.
func (c *Catalog) AddPopulationCenter(pc PopulationCenter) {
	c.mu.Lock()
	c.centers = append(c.centers, pc)
	c.mu.Unlock()
}

// PopulationCenters returns a snapshot of the city table.
func (c *Catalog) PopulationCenters() []PopulationCenter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]PopulationCenter(nil), c.centers...)
}

// AddLanePoint appends a shipping-lane waypoint.
func (c *Catalog) AddLanePoint(lp LanePoint) {
	c.mu.Lock()
	c.lanes = append(c.lanes, lp)
	c.mu.Unlock()
}

// LanePoints returns a snapshot of the shipping-lane waypoints.
func (c *Catalog) LanePoints() []LanePoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]LanePoint(nil), c.lanes...)
}

// SetBaseRate records the per-pass downlink estimate for a constellation.
// Later writes overwrite earlier ones.
func (c *Catalog) SetBaseRate(constellation string, gbps float64) {
	if gbps < 0 {
		gbps = 0
	}
	c.mu.Lock()
	c.baseRates[normalizeKey(constellation)] = gbps
	c.mu.Unlock()
}

// BaseRateGbps returns the constellation's downlink estimate, falling back
// to DefaultBaseRateGbps for unknown or empty names.
func (c *Catalog) BaseRateGbps(constellation string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if rate, ok := c.baseRates[normalizeKey(constellation)]; ok {
		return rate
	}
	return DefaultBaseRateGbps
}

// SetNRTier records a country's 5G C-band deployment tier, keyed by ISO
// 3166-1 alpha-2 code.
func (c *Catalog) SetNRTier(country string, tier NRTier) {
	c.mu.Lock()
	c.nrTiers[normalizeKey(country)] = tier
	c.mu.Unlock()
}

// NRTierFor returns the country's deployment tier, defaulting to limited for
// unknown countries.
func (c *Catalog) NRTierFor(country string) NRTier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if tier, ok := c.nrTiers[normalizeKey(country)]; ok {
		return tier
	}
	return NRTierLimited
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/groundstation-analyzer/model"
)

// ErrUnresolvedElements marks a satellite whose orbital elements cannot back
// a usable propagation state. The pass calculator treats it per satellite:
// warn and skip, never abort the batch.
var ErrUnresolvedElements = errors.New("unresolved orbital elements")

// OrbitalPropagator resolves a satellite reference into a state that can be
// sampled for look angles. It is the engine's only external dependency;
// resolution failures should wrap ErrUnresolvedElements.
type OrbitalPropagator interface {
	Resolve(ref model.SatelliteRef) (OrbitalState, error)
}

// OrbitalState answers look-angle queries for one satellite. A sample error
// means the state could not be propagated to that instant, not that the
// satellite is below the horizon.
type OrbitalState interface {
	LookAngles(loc model.GroundLocation, t time.Time) (LookAngles, error)
}

// SGP4Propagator resolves TLE-based references through the go-satellite
// SGP4 implementation, using the WGS-72 gravity constants TLEs are generated
// against.
type SGP4Propagator struct{}

// NewSGP4Propagator returns the production propagator.
func NewSGP4Propagator() *SGP4Propagator {
	return &SGP4Propagator{}
}

// Resolve validates the TLE framing and initializes an SGP4 state.
// The framing check is load-bearing: the underlying library terminates the
// process on unparseable lines rather than returning an error.
func (*SGP4Propagator) Resolve(ref model.SatelliteRef) (OrbitalState, error) {
	line1 := strings.TrimSpace(ref.TLELine1)
	line2 := strings.TrimSpace(ref.TLELine2)
	if err := validateTLEFraming(line1, line2); err != nil {
		return nil, fmt.Errorf("%w: satellite %s: %v", ErrUnresolvedElements, ref.ID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &sgp4State{sat: sat}, nil
}

func validateTLEFraming(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("tle line1 length %d, want 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("tle line2 length %d, want 69", len(line2))
	}
	if !strings.HasPrefix(line1, "1 ") {
		return fmt.Errorf("tle line1 must start with %q", "1 ")
	}
	if !strings.HasPrefix(line2, "2 ") {
		return fmt.Errorf("tle line2 must start with %q", "2 ")
	}
	return nil
}

type sgp4State struct {
	sat satellite.Satellite
}

// LookAngles propagates to t, rotates ECI into ECEF by GMST, and projects
// onto the observer's topocentric frame. Propagation output is screened for
// NaN/Inf and non-orbital magnitudes (decayed or garbage elements).
func (s *sgp4State) LookAngles(loc model.GroundLocation, t time.Time) (LookAngles, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	if !reasonableOrbitKm(posECI.X, posECI.Y, posECI.Z) {
		return LookAngles{}, fmt.Errorf("sgp4 propagation failed at %s", t.Format(time.RFC3339))
	}

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	obs := NewGeodeticObserver(loc.LatitudeDeg, loc.LongitudeDeg, loc.AltitudeM)
	return obs.LookAnglesTo(Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}), nil
}

// reasonableOrbitKm accepts positions between just below LEO perigees and
// beyond GEO; anything else is treated as a failed sample.
func reasonableOrbitKm(x, y, z float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) {
		return false
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) || math.IsInf(z, 0) {
		return false
	}
	mag := math.Sqrt(x*x + y*y + z*z)
	return mag >= 6200 && mag <= 50000
}

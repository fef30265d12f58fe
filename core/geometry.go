package core

import "math"

// EarthRadiusKm is the mean Earth radius used for spherical cross-checks
// (kilometres). Precise observer geometry goes through the WGS-84 ellipsoid
// below.
const EarthRadiusKm = 6371.0

// WGS-84 ellipsoid parameters, in kilometres to match the propagator output.
const (
	wgs84AKm = 6378.137
	wgs84F   = 1.0 / 298.257223563
	wgs84E2  = wgs84F * (2 - wgs84F)
)

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// LookAngles is the topocentric view of a satellite from a ground observer.
type LookAngles struct {
	AzimuthDeg   float64 // 0 = North, clockwise
	ElevationDeg float64 // 0 = horizon, 90 = zenith
	RangeKm      float64
}

// GeodeticObserver is a ground location with its ECEF position precomputed,
// so one observer can be reused across many satellite samples.
type GeodeticObserver struct {
	latRad, lonRad float64
	ecef           Vec3
}

// NewGeodeticObserver builds an observer from geodetic coordinates.
// Latitude/longitude in degrees, altitude in metres above the ellipsoid.
func NewGeodeticObserver(latDeg, lonDeg, altM float64) GeodeticObserver {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0
	altKm := altM / 1000.0

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// Radius of curvature in the prime vertical.
	n := wgs84AKm / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return GeodeticObserver{
		latRad: lat,
		lonRad: lon,
		ecef: Vec3{
			X: (n + altKm) * cosLat * math.Cos(lon),
			Y: (n + altKm) * cosLat * math.Sin(lon),
			Z: (n*(1-wgs84E2) + altKm) * sinLat,
		},
	}
}

// ECEF returns the observer's Earth-fixed position in kilometres.
func (o GeodeticObserver) ECEF() Vec3 {
	return o.ecef
}

// LookAnglesTo computes azimuth, elevation, and slant range from the
// observer to a satellite ECEF position (kilometres), via the SEZ
// (South-East-Zenith) topocentric rotation. Azimuth is measured clockwise
// from North.
func (o GeodeticObserver) LookAnglesTo(sat Vec3) LookAngles {
	r := sat.Sub(o.ecef)

	sinLat := math.Sin(o.latRad)
	cosLat := math.Cos(o.latRad)
	sinLon := math.Sin(o.lonRad)
	cosLon := math.Cos(o.lonRad)

	south := sinLat*cosLon*r.X + sinLat*sinLon*r.Y - cosLat*r.Z
	east := -sinLon*r.X + cosLon*r.Y
	zenith := cosLat*cosLon*r.X + cosLat*sinLon*r.Y + sinLat*r.Z

	rangeKm := math.Sqrt(south*south + east*east + zenith*zenith)
	if rangeKm == 0 {
		return LookAngles{ElevationDeg: 90}
	}

	el := math.Asin(zenith / rangeKm)

	// In SEZ, North = -South, so az = atan2(east, -south).
	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	return LookAngles{
		AzimuthDeg:   az * 180.0 / math.Pi,
		ElevationDeg: el * 180.0 / math.Pi,
		RangeKm:      rangeKm,
	}
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer on a spherical Earth, in degrees. Kept as an independent
// cross-check of the SEZ transform; the engines use LookAnglesTo.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	if vNorm == 0 {
		return 90
	}

	r := observer.Norm()
	if r == 0 {
		return 90
	}
	zenith := Vec3{
		X: observer.X / r,
		Y: observer.Y / r,
		Z: observer.Z / r,
	}

	cosGamma := v.Dot(zenith) / vNorm
	if cosGamma > 1 {
		cosGamma = 1
	} else if cosGamma < -1 {
		cosGamma = -1
	}
	gammaDeg := math.Acos(cosGamma) * 180.0 / math.Pi

	return 90.0 - gammaDeg
}

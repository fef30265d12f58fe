package core

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/groundstation-analyzer/model"
)

func TestLoadScenario_FullDocument(t *testing.T) {
	jsonData := `
{
  "window": { "start": "2026-03-01T00:00:00Z", "days": 2 },
  "desired_orbital_lon_deg": -101.0,
  "stations": [
    {
      "name": "Gateway One",
      "latitude_deg": 37.95,
      "longitude_deg": -75.47,
      "altitude_m": 12,
      "min_elevation_deg": 10,
      "country": " us ",
      "cell": { "id": "cell-1", "center_lat_deg": 38.0, "center_lon_deg": -75.2, "area_km2": 2500 }
    },
    { "name": "Gateway Two", "latitude_deg": 34.72, "longitude_deg": -118.14 }
  ],
  "satellites": [
    {
      "id": "25544",
      "name": "ISS (ZARYA)",
      "constellation": "ISS",
      "tle_line1": "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
      "tle_line2": "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
    }
  ],
  "link": {
    "frequency_mhz": 3700,
    "tx_power_dbw": 20,
    "antenna_gain_dbi": 42.5,
    "path_loss_db": 196.2,
    "atmospheric_loss_db": 0.3,
    "rain_fade_db": 1.5,
    "received_power_dbw": -117.0,
    "polarization": "linear_h",
    "bandwidth_mhz": 36
  },
  "sources": [
    {
      "type": "terrestrial_5g",
      "name": "Metro macro site",
      "frequency_mhz": 3680,
      "power_dbw": -95,
      "elevation_deg": 1.5,
      "polarization": "V",
      "bandwidth_mhz": 100
    },
    {
      "type": "ais-beacon",
      "name": "unknown emitter",
      "frequency_mhz": 3550,
      "power_dbw": -120,
      "polarization": "slant45"
    }
  ],
  "adjacent_satellites": [
    { "name": "Galaxy-19", "orbital_longitude_deg": -97.0, "eirp_dbw": 39 }
  ]
}
`

	sc, err := LoadScenario(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("LoadScenario returned error: %v", err)
	}

	if len(sc.Stations) != 2 {
		t.Fatalf("stations = %d, want 2", len(sc.Stations))
	}
	st := sc.Stations[0]
	if st.Location.Name != "Gateway One" || st.Location.MinElevationDeg != 10 {
		t.Errorf("station = %+v", st.Location)
	}
	if st.CountryCode != "US" {
		t.Errorf("CountryCode = %q, want normalized US", st.CountryCode)
	}
	if st.Cell == nil || st.Cell.ID != "cell-1" || st.Cell.AreaKm2 != 2500 {
		t.Errorf("cell = %+v", st.Cell)
	}
	if sc.Stations[1].Cell != nil {
		t.Errorf("second station grew a cell: %+v", sc.Stations[1].Cell)
	}

	if len(sc.Satellites) != 1 {
		t.Fatalf("satellites = %d, want 1", len(sc.Satellites))
	}
	sat := sc.Satellites[0]
	if sat.ID != "25544" || sat.Constellation != "ISS" {
		t.Errorf("satellite = %+v", sat)
	}
	if !strings.HasPrefix(sat.TLELine1, "1 25544U") || !strings.HasPrefix(sat.TLELine2, "2 25544") {
		t.Errorf("TLE lines not carried through: %q / %q", sat.TLELine1, sat.TLELine2)
	}

	if sc.Link == nil {
		t.Fatal("Link = nil")
	}
	if sc.Link.FrequencyMHz != 3700 || sc.Link.ReceivedPowerDBW != -117 {
		t.Errorf("link = %+v", sc.Link)
	}
	if sc.Link.Polarization != model.PolarizationLinearH {
		t.Errorf("link polarization = %q", sc.Link.Polarization)
	}

	if len(sc.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(sc.Sources))
	}
	if sc.Sources[0].Type != model.InterferenceTerrestrial5G {
		t.Errorf("source type = %q", sc.Sources[0].Type)
	}
	if sc.Sources[0].Polarization != model.PolarizationLinearV {
		t.Errorf("source polarization = %q, want V to parse as linear vertical", sc.Sources[0].Polarization)
	}
	if sc.Sources[0].ElevationDeg == nil || *sc.Sources[0].ElevationDeg != 1.5 {
		t.Errorf("source elevation = %v", sc.Sources[0].ElevationDeg)
	}
	// Unrecognized enum strings degrade instead of failing the load.
	if sc.Sources[1].Type != model.InterferenceOther {
		t.Errorf("unknown source type parsed as %q, want other", sc.Sources[1].Type)
	}
	if sc.Sources[1].Polarization != model.PolarizationUnspecified {
		t.Errorf("unknown polarization parsed as %q, want unspecified", sc.Sources[1].Polarization)
	}

	if len(sc.Neighbors) != 1 || sc.Neighbors[0].OrbitalLongitudeDeg != -97.0 {
		t.Errorf("neighbors = %+v", sc.Neighbors)
	}
	if sc.DesiredLonDeg != -101.0 {
		t.Errorf("DesiredLonDeg = %f", sc.DesiredLonDeg)
	}

	wantStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !sc.WindowStart.Equal(wantStart) || sc.WindowDays != 2 {
		t.Errorf("window = %v / %d days", sc.WindowStart, sc.WindowDays)
	}
}

func TestLoadScenario_MinimalDocument(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(`{"stations": [{"name": "solo"}]}`))
	if err != nil {
		t.Fatalf("LoadScenario returned error: %v", err)
	}
	if sc.Link != nil || len(sc.Sources) != 0 || len(sc.Neighbors) != 0 {
		t.Errorf("optional sections populated: %+v", sc)
	}
	if !sc.WindowStart.IsZero() || sc.WindowDays != 0 {
		t.Errorf("window defaulted to %v / %d", sc.WindowStart, sc.WindowDays)
	}
}

func TestLoadScenario_RejectsEmptyStations(t *testing.T) {
	for _, doc := range []string{`{}`, `{"stations": []}`} {
		if _, err := LoadScenario(strings.NewReader(doc)); err == nil {
			t.Errorf("LoadScenario(%s) succeeded, want no-stations error", doc)
		}
	}
}

func TestLoadScenario_RejectsUnnamedStation(t *testing.T) {
	_, err := LoadScenario(strings.NewReader(`{"stations": [{"latitude_deg": 10}]}`))
	if err == nil || !strings.Contains(err.Error(), "no name") {
		t.Fatalf("err = %v, want station-name error", err)
	}
}

func TestLoadScenario_RejectsSatelliteWithoutElements(t *testing.T) {
	doc := `{
  "stations": [{"name": "s"}],
  "satellites": [{"id": "44713", "name": "STARLINK-1007"}]
}`
	_, err := LoadScenario(strings.NewReader(doc))
	if err == nil || !strings.Contains(err.Error(), "orbital elements") {
		t.Fatalf("err = %v, want missing-elements error", err)
	}

	doc = `{
  "stations": [{"name": "s"}],
  "satellites": [{"name": "anonymous", "tle_line1": "1", "tle_line2": "2"}]
}`
	if _, err := LoadScenario(strings.NewReader(doc)); err == nil {
		t.Fatal("satellite without id accepted")
	}
}

func TestLoadScenario_RejectsBadWindowStart(t *testing.T) {
	doc := `{"stations": [{"name": "s"}], "window": {"start": "tomorrow-ish", "days": 1}}`
	_, err := LoadScenario(strings.NewReader(doc))
	if err == nil || !strings.Contains(err.Error(), "window start") {
		t.Fatalf("err = %v, want window-parse error", err)
	}
}

func TestLoadScenario_RejectsMalformedJSON(t *testing.T) {
	if _, err := LoadScenario(strings.NewReader(`{"stations": [`)); err == nil {
		t.Fatal("malformed JSON accepted")
	}
}

// The scenario shipped in configs/ must stay loadable; the CLI and the
// documentation both point at it.
func TestLoadScenario_ShippedConfig(t *testing.T) {
	f, err := os.Open("../configs/scenario.json")
	if err != nil {
		t.Fatalf("open shipped scenario: %v", err)
	}
	defer f.Close()

	sc, err := LoadScenario(f)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if len(sc.Stations) != 2 || len(sc.Satellites) != 3 {
		t.Errorf("shipped scenario = %d stations / %d satellites", len(sc.Stations), len(sc.Satellites))
	}
	if sc.Link == nil || len(sc.Sources) != 2 || len(sc.Neighbors) != 2 {
		t.Error("shipped scenario lost its RF sections")
	}
	if sc.WindowDays != 1 || sc.WindowStart.IsZero() {
		t.Errorf("shipped scenario window = %v / %d", sc.WindowStart, sc.WindowDays)
	}
	for _, st := range sc.Stations {
		if st.Cell == nil {
			t.Errorf("station %q has no market cell", st.Location.Name)
		}
	}
}

func TestPolarizationFromString_Tolerant(t *testing.T) {
	cases := []struct {
		in   string
		want model.Polarization
	}{
		{"linear_h", model.PolarizationLinearH},
		{"H", model.PolarizationLinearH},
		{"horizontal", model.PolarizationLinearH},
		{" Linear_V ", model.PolarizationLinearV},
		{"vertical", model.PolarizationLinearV},
		{"rhcp", model.PolarizationRHCP},
		{"RCP", model.PolarizationRHCP},
		{"lhcp", model.PolarizationLHCP},
		{"lcp", model.PolarizationLHCP},
		{"", model.PolarizationUnspecified},
		{"slant45", model.PolarizationUnspecified},
	}
	for _, tc := range cases {
		if got := polarizationFromString(tc.in); got != tc.want {
			t.Errorf("polarizationFromString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSourceTypeFromString_Tolerant(t *testing.T) {
	cases := []struct {
		in   string
		want model.InterferenceType
	}{
		{"asi", model.InterferenceASI},
		{"adjacent_satellite", model.InterferenceASI},
		{"terrestrial_5g", model.InterferenceTerrestrial5G},
		{"5G", model.InterferenceTerrestrial5G},
		{"nr", model.InterferenceTerrestrial5G},
		{"cross_pol", model.InterferenceCrossPol},
		{"radar", model.InterferenceRadar},
		{"", model.InterferenceOther},
		{"ais-beacon", model.InterferenceOther},
	}
	for _, tc := range cases {
		if got := sourceTypeFromString(tc.in); got != tc.want {
			t.Errorf("sourceTypeFromString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

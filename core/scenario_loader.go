package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/signalsfoundry/groundstation-analyzer/model"
)

// Scenario is a fully parsed site-evaluation scenario: candidate stations,
// the constellation to scan, and the optional RF / GEO / market context
// shared by every station.
type Scenario struct {
	Stations   []ScenarioStation
	Satellites []model.SatelliteRef

	Link      *model.LinkBudget
	Sources   []model.InterferenceSource
	Neighbors []model.AdjacentSatellite

	// DesiredLonDeg is the orbital longitude of the satellite being
	// coordinated, used for adjacent-satellite assessment.
	DesiredLonDeg float64

	// Optional default observation window; zero values mean the caller
	// decides.
	WindowStart time.Time
	WindowDays  int
}

// ScenarioStation is one candidate site plus its local context.
type ScenarioStation struct {
	Location    model.GroundLocation
	CountryCode string
	Cell        *model.GridCell
}

// internal JSON shapes - kept unexported so the file format can evolve
// independently of the model types.
type scenarioJSON struct {
	Stations      []stationJSON             `json:"stations"`
	Satellites    []model.SatelliteRef      `json:"satellites"`
	Link          *linkJSON                 `json:"link"`
	Sources       []sourceJSON              `json:"sources"`
	Neighbors     []model.AdjacentSatellite `json:"adjacent_satellites"`
	DesiredLonDeg float64                   `json:"desired_orbital_lon_deg"`
	Window        *windowJSON               `json:"window"`
}

type stationJSON struct {
	Name            string          `json:"name"`
	LatitudeDeg     float64         `json:"latitude_deg"`
	LongitudeDeg    float64         `json:"longitude_deg"`
	AltitudeM       float64         `json:"altitude_m"`
	MinElevationDeg float64         `json:"min_elevation_deg"`
	Country         string          `json:"country"`
	Cell            *model.GridCell `json:"cell"`
}

type linkJSON struct {
	FrequencyMHz      float64 `json:"frequency_mhz"`
	TxPowerDBW        float64 `json:"tx_power_dbw"`
	AntennaGainDBi    float64 `json:"antenna_gain_dbi"`
	PathLossDB        float64 `json:"path_loss_db"`
	AtmosphericLossDB float64 `json:"atmospheric_loss_db"`
	RainFadeDB        float64 `json:"rain_fade_db"`
	ReceivedPowerDBW  float64 `json:"received_power_dbw"`
	Polarization      string  `json:"polarization"`
	BandwidthMHz      float64 `json:"bandwidth_mhz"`
}

type sourceJSON struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	FrequencyMHz float64  `json:"frequency_mhz"`
	PowerDBW     float64  `json:"power_dbw"`
	ElevationDeg *float64 `json:"elevation_deg"`
	LatitudeDeg  *float64 `json:"latitude_deg"`
	LongitudeDeg *float64 `json:"longitude_deg"`
	Polarization string   `json:"polarization"`
	BandwidthMHz float64  `json:"bandwidth_mhz"`
}

type windowJSON struct {
	Start string `json:"start"` // RFC3339
	Days  int    `json:"days"`
}

// LoadScenario reads a JSON scenario from r. It fails on JSON and structural
// errors (missing station names, satellites without elements, unparseable
// window); enum-like strings parse tolerantly, falling back to unspecified
// or other rather than failing.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	if len(payload.Stations) == 0 {
		return nil, fmt.Errorf("LoadScenario: scenario has no stations")
	}

	out := &Scenario{
		Satellites:    payload.Satellites,
		Neighbors:     payload.Neighbors,
		DesiredLonDeg: payload.DesiredLonDeg,
	}

	for i, js := range payload.Stations {
		if js.Name == "" {
			return nil, fmt.Errorf("LoadScenario: station %d has no name", i)
		}
		out.Stations = append(out.Stations, ScenarioStation{
			Location: model.GroundLocation{
				Name:            js.Name,
				LatitudeDeg:     js.LatitudeDeg,
				LongitudeDeg:    js.LongitudeDeg,
				AltitudeM:       js.AltitudeM,
				MinElevationDeg: js.MinElevationDeg,
			},
			CountryCode: strings.ToUpper(strings.TrimSpace(js.Country)),
			Cell:        js.Cell,
		})
	}

	for i, sat := range payload.Satellites {
		if sat.ID == "" {
			return nil, fmt.Errorf("LoadScenario: satellite %d has no id", i)
		}
		if sat.TLELine1 == "" || sat.TLELine2 == "" {
			return nil, fmt.Errorf("LoadScenario: satellite %q is missing orbital elements", sat.ID)
		}
	}

	if payload.Link != nil {
		out.Link = &model.LinkBudget{
			FrequencyMHz:      payload.Link.FrequencyMHz,
			TxPowerDBW:        payload.Link.TxPowerDBW,
			AntennaGainDBi:    payload.Link.AntennaGainDBi,
			PathLossDB:        payload.Link.PathLossDB,
			AtmosphericLossDB: payload.Link.AtmosphericLossDB,
			RainFadeDB:        payload.Link.RainFadeDB,
			ReceivedPowerDBW:  payload.Link.ReceivedPowerDBW,
			Polarization:      polarizationFromString(payload.Link.Polarization),
			BandwidthMHz:      payload.Link.BandwidthMHz,
		}
	}

	for _, js := range payload.Sources {
		out.Sources = append(out.Sources, model.InterferenceSource{
			Type:         sourceTypeFromString(js.Type),
			Name:         js.Name,
			FrequencyMHz: js.FrequencyMHz,
			PowerDBW:     js.PowerDBW,
			ElevationDeg: js.ElevationDeg,
			LatitudeDeg:  js.LatitudeDeg,
			LongitudeDeg: js.LongitudeDeg,
			Polarization: polarizationFromString(js.Polarization),
			BandwidthMHz: js.BandwidthMHz,
		})
	}

	if payload.Window != nil {
		if payload.Window.Start != "" {
			start, err := time.Parse(time.RFC3339, payload.Window.Start)
			if err != nil {
				return nil, fmt.Errorf("LoadScenario: bad window start: %w", err)
			}
			out.WindowStart = start
		}
		out.WindowDays = payload.Window.Days
	}

	return out, nil
}

// polarizationFromString maps JSON polarization names to model constants.
// Unknown or empty values fall back to unspecified, which assessments treat
// as "no isolation credit".
func polarizationFromString(s string) model.Polarization {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear_h", "h", "horizontal":
		return model.PolarizationLinearH
	case "linear_v", "v", "vertical":
		return model.PolarizationLinearV
	case "rhcp", "rcp":
		return model.PolarizationRHCP
	case "lhcp", "lcp":
		return model.PolarizationLHCP
	default:
		return model.PolarizationUnspecified
	}
}

// sourceTypeFromString maps JSON interference types to model constants,
// defaulting to other for anything unrecognized.
func sourceTypeFromString(s string) model.InterferenceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asi", "adjacent_satellite", "adjacent-satellite":
		return model.InterferenceASI
	case "terrestrial_5g", "5g", "nr", "c_band_5g":
		return model.InterferenceTerrestrial5G
	case "cross_polarization", "cross_pol", "xpol":
		return model.InterferenceCrossPol
	case "radar":
		return model.InterferenceRadar
	default:
		return model.InterferenceOther
	}
}

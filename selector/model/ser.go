package model

import "math"

// HazuchaParams parameterises the Hazucha-Svensson soft-error-rate model.
type HazuchaParams struct {
	QsFC         float64 `yaml:"qs_fc"`                    // charge collection efficiency (fC)
	K            float64 `yaml:"k"`                        // technology-independent fitting constant
	SeaLevelFlux float64 `yaml:"sea_level_flux_per_cm2_h"` // reference neutron flux
}

// fitScale converts upsets per hour into failures per 1e9 hours.
const fitScale = 1e9

// SERHazucha returns the single-bit FIT of a cell with the given critical
// charge, sensitive area and relative neutron flux:
//
//	FIT = K * flux * area * exp(-Qcrit/Qs) * 1e9
func SERHazucha(qcritFC, areaUm2, fluxRel float64, p HazuchaParams) float64 {
	areaCm2 := areaUm2 * 1e-8
	flux := p.SeaLevelFlux * fluxRel
	return p.K * flux * areaCm2 * math.Exp(-qcritFC/p.QsFC) * fitScale
}

// Flux model constants.
const (
	// fluxScaleHeightKm is the e-folding altitude of the neutron flux.
	fluxScaleHeightKm = 1.25
	// fluxLatitudeGain sets the pole-to-equator ratio of the flux.
	fluxLatitudeGain = 2.0
	// referenceLatitudeDeg is the latitude at which fluxRel is 1 at sea level.
	referenceLatitudeDeg = 45.0
)

// FluxFromLocation returns the neutron flux relative to sea level at 45°.
// A positive override is returned unchanged.
func FluxFromLocation(altitudeKm, latitudeDeg, override float64) float64 {
	if override > 0 {
		return override
	}
	lat := func(deg float64) float64 {
		s := math.Sin(deg * math.Pi / 180)
		return 1 + fluxLatitudeGain*s*s
	}
	return math.Exp(altitudeKm/fluxScaleHeightKm) * lat(latitudeDeg) / lat(referenceLatitudeDeg)
}

package model

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sram-ecc/eccsel/selector"
)

// DefaultBitlineBits is the column height used to bound vertical bursts.
const DefaultBitlineBits = 256

// Extension keys written into MetricRecord.Extras.
const (
	ExtraEDynKWh       = "E_dyn_kWh"
	ExtraELeakKWh      = "E_leak_kWh"
	ExtraAreaLogicMM2  = "area_logic_mm2"
	ExtraAreaMacroMM2  = "area_macro_mm2"
	ExtraEmbodiedKg    = "embodied_kg"
	ExtraOperationalKg = "operational_kg"
	ExtraFITBit        = "fit_bit"
	ExtraFITPre        = "FIT_pre"
	ExtraQcritFC       = "qcrit_fC"
	ExtraFluxRel       = "flux_rel"
	ExtraScrubSweeps   = "scrub_sweeps"
)

// Calculator evaluates candidate codes against a calibration.
// It implements selector.MetricSource.
type Calculator struct {
	cal         *Calibration
	registry    *Registry
	bitlineBits int
}

var _ selector.MetricSource = (*Calculator)(nil)

// NewCalculator builds a calculator over cal's code registry.
func NewCalculator(cal *Calibration) *Calculator {
	return &Calculator{
		cal:         cal,
		registry:    NewRegistry(cal.Codes),
		bitlineBits: DefaultBitlineBits,
	}
}

// Registry exposes the candidate codes the calculator knows.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

// ComputeMetrics evaluates one code. The scenario is assumed validated.
func (c *Calculator) ComputeMetrics(code string, sc selector.Scenario) (selector.MetricRecord, error) {
	info, err := c.registry.Lookup(code)
	if err != nil {
		return selector.MetricRecord{}, err
	}
	node, err := c.cal.Node(sc.NodeNm)
	if err != nil {
		return selector.MetricRecord{}, err
	}
	gate, err := node.GateEnergyAt(sc.VDD)
	if err != nil {
		return selector.MetricRecord{}, err
	}
	qcrit, err := c.cal.Qcrit.Lookup(sc.NodeNm, sc.VDD, sc.Temperature())
	if err != nil {
		return selector.MetricRecord{}, fmt.Errorf("qcrit for %s: %w", code, err)
	}

	flux := FluxFromLocation(sc.AltitudeKm, sc.LatitudeDeg, sc.FluxRel)
	fitBit := SERHazucha(qcrit, sc.BitcellUm2, flux, c.cal.Hazucha)

	scale := SeverityScale(sc.MBU)
	pmf, err := BurstPMF(sc.MBU, info.WordBits(), c.bitlineBits)
	if err != nil {
		return selector.MetricRecord{}, err
	}
	basePMF, err := BurstPMF(sc.MBU, info.DataBits, c.bitlineBits)
	if err != nil {
		return selector.MetricRecord{}, err
	}
	rates := BurstRates(pmf, fitBit, info.WordBits(), scale)
	baseRates := BurstRates(basePMF, fitBit, info.DataBits, scale)
	word := WordFIT(info, fitBit, sc.ScrubS, rates, baseRates)

	words := WordsPerGiB(sc.CapacityGiB, info.DataBits)
	carbon := Carbon(CarbonInputs{
		Words:        words,
		ParityBits:   info.ParityBits,
		BitcellUm2:   sc.BitcellUm2,
		AreaLogicMM2: info.AreaLogicMM2,
		XorJ:         gate.XorJ,
		ScrubS:       sc.ScrubS,
		LifetimeH:    sc.LifetimeH,
		CIKgPerKWh:   sc.CarbonIntensity(),
	}, node)

	fitBase := word.Base * words
	fitPost := word.Post * words
	rec := selector.MetricRecord{
		Code:      code,
		FIT:       fitPost,
		CarbonKg:  carbon.TotalKg(),
		LatencyNs: info.LatencyNs,
		ESII:      ESII(fitBase, fitPost, carbon.TotalKg()),
		Notes:     info.Notes,
		Extras: map[string]float64{
			selector.ExtraFITBase: fitBase,
			ExtraFITPre:           word.Pre * words,
			ExtraEDynKWh:          carbon.EDynKWh,
			ExtraELeakKWh:         carbon.ELeakKWh,
			ExtraAreaLogicMM2:     info.AreaLogicMM2,
			ExtraAreaMacroMM2:     carbon.AreaMacroMM2,
			ExtraEmbodiedKg:       carbon.EmbodiedKg,
			ExtraOperationalKg:    carbon.OperationalKg,
			ExtraFITBit:           fitBit,
			ExtraQcritFC:          qcrit,
			ExtraFluxRel:          flux,
			ExtraScrubSweeps:      carbon.Sweeps,
		},
	}
	logrus.Debugf("model: %s fit=%.4g carbon=%.4g kg latency=%.3g ns esii=%.4g",
		code, rec.FIT, rec.CarbonKg, rec.LatencyNs, rec.ESII)
	return rec, nil
}

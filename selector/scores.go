package selector

import "math"

// GSWeights weights the reliability, carbon and latency sub-scores.
type GSWeights struct {
	Reliability float64
	Carbon      float64
	Latency     float64
}

// DefaultGSWeights favours reliability, as is usual for SRAM.
func DefaultGSWeights() GSWeights {
	return GSWeights{Reliability: 0.6, Carbon: 0.3, Latency: 0.1}
}

// Saturation scales for the GS sub-scores.
const (
	gsReliabilityScale = 0.05
	gsCarbonScale      = 1.0
	gsLatencyScale     = 10.0
	gsFloor            = 1e-9
)

// GSInputs are the raw quantities behind the goodness score.
type GSInputs struct {
	FITBase   float64
	FITECC    float64
	CarbonKg  float64
	LatencyNs float64
}

// GSResult is the goodness score on [0,100] and its sub-scores on [0,1].
type GSResult struct {
	GS       float64
	Sr       float64
	Sc       float64
	Sl       float64
	DeltaFIT float64
}

// ComputeGS combines saturated reliability gain, carbon cost and latency cost
// with a weighted harmonic mean.
func ComputeGS(in GSInputs, w GSWeights) GSResult {
	fitBase := math.Max(in.FITBase, 0)
	fitECC := math.Max(in.FITECC, 0)
	carbon := math.Max(in.CarbonKg, 0)
	latency := math.Max(in.LatencyNs, 0)

	delta := math.Max(fitBase-fitECC, 0)
	gain := 0.0
	if fitBase > 0 {
		gain = delta / fitBase
	}

	sr := gain / (gain + gsReliabilityScale)
	sc := 1.0 / (1.0 + carbon/gsCarbonScale)
	sl := 1.0 / (1.0 + latency/gsLatencyScale)

	denom := w.Reliability/math.Max(sr, gsFloor) + w.Carbon/math.Max(sc, gsFloor) + w.Latency/math.Max(sl, gsFloor)
	gs := (w.Reliability + w.Carbon + w.Latency) / denom * 100.0
	return GSResult{GS: gs, Sr: sr, Sc: sc, Sl: sl, DeltaFIT: delta}
}

// annotateGS writes GS and its sub-scores onto each record. A record without
// ExtraFITBase is treated as having no reliability gain.
func annotateGS(records []MetricRecord, w GSWeights) {
	for i := range records {
		base, ok := records[i].Extra(ExtraFITBase)
		if !ok {
			base = records[i].FIT
		}
		g := ComputeGS(GSInputs{
			FITBase:   base,
			FITECC:    records[i].FIT,
			CarbonKg:  records[i].CarbonKg,
			LatencyNs: records[i].LatencyNs,
		}, w)
		records[i].GS, records[i].Sr, records[i].Sc, records[i].Sl = g.GS, g.Sr, g.Sc, g.Sl
	}
}

package model

import (
	"fmt"

	"github.com/sram-ecc/eccsel/selector"
)

// BurstClass is one multi-bit upset pattern: K flipped bits, adjacent or not.
type BurstClass struct {
	K        int
	Adjacent bool
	P        float64
}

// severityPreset gives adjacent 2-bit and 3-bit burst probabilities.
type severityPreset struct {
	pAdj2 float64
	pAdj3 float64
	scale float64 // multiplier applied when converting the PMF to FIT
}

var severities = map[string]severityPreset{
	selector.MBULight:    {pAdj2: 0.1, pAdj3: 0.01, scale: 0.0},
	selector.MBUModerate: {pAdj2: 0.3, pAdj3: 0.05, scale: 1.0},
	selector.MBUHeavy:    {pAdj2: 0.8, pAdj3: 0.2, scale: 5.0},
}

// BurstPMF returns the adjacency PMF for 2- and 3-bit upsets in a fixed
// order (k=2 adj, k=2 non-adj, k=3 adj, k=3 non-adj). Bursts that do not fit
// the word or bitline geometry have zero adjacent probability.
func BurstPMF(severity string, wordBits, bitlineBits int) ([]BurstClass, error) {
	preset, ok := severities[severity]
	if !ok {
		return nil, &selector.ValidationError{Field: "mbu", Reason: fmt.Sprintf("unknown severity %q", severity)}
	}
	p2, p3 := preset.pAdj2, preset.pAdj3
	if wordBits < 2 || bitlineBits < 2 {
		p2 = 0
	}
	if wordBits < 3 || bitlineBits < 3 {
		p3 = 0
	}
	return []BurstClass{
		{K: 2, Adjacent: true, P: p2},
		{K: 2, Adjacent: false, P: 1 - p2},
		{K: 3, Adjacent: true, P: p3},
		{K: 3, Adjacent: false, P: 1 - p3},
	}, nil
}

// SeverityScale returns the FIT multiplier for a severity preset.
func SeverityScale(severity string) float64 {
	if p, ok := severities[severity]; ok {
		return p.scale
	}
	return 1.0
}

// BurstRates converts a PMF into per-word FIT rates for each burst class.
func BurstRates(pmf []BurstClass, fitBit float64, wordBits int, scale float64) []BurstClass {
	out := make([]BurstClass, len(pmf))
	for i, b := range pmf {
		out[i] = BurstClass{
			K:        b.K,
			Adjacent: b.Adjacent,
			P:        fitBit * float64(wordBits) * float64(b.K) * b.P * scale,
		}
	}
	return out
}

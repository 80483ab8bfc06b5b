package model

import "math"

// Covers reports whether a code family corrects a k-bit burst.
// Single-bit upsets are corrected by every family.
func Covers(family string, k int, adjacent bool) bool {
	switch {
	case k <= 1:
		return true
	case family == FamilyDEC:
		return k == 2
	case family == FamilySECDAEC:
		return k == 2 && adjacent
	case family == FamilyTAEC:
		return (k == 2 || k == 3) && adjacent
	}
	return false
}

// FITBreakdown is the per-word failure rate before and after correction.
type FITBreakdown struct {
	Base         float64 // unprotected data word
	Pre          float64 // stored codeword, before decoding
	Post         float64 // residual after correction
	DoubleRandom float64 // two independent upsets within one scrub interval
}

// WordFIT evaluates one codeword. rates must come from BurstRates for the
// codeword width; baseRates for the bare data width.
func WordFIT(code CodeInfo, fitBit, scrubS float64, rates, baseRates []BurstClass) FITBreakdown {
	w := float64(code.WordBits())
	var b FITBreakdown

	b.Base = float64(code.DataBits) * fitBit
	for _, r := range baseRates {
		b.Base += r.P
	}

	b.Pre = w * fitBit
	for _, r := range rates {
		b.Pre += r.P
		if !Covers(code.Family, r.K, r.Adjacent) {
			b.Post += r.P
		}
	}

	// Independent single-bit upsets accumulate until the next scrub.
	if !Covers(code.Family, 2, false) {
		lambda := fitBit / fitScale
		tauH := scrubS / 3600
		pairs := w * (w - 1) / 2
		b.DoubleRandom = pairs * tauH * lambda * lambda * fitScale
		b.Post += b.DoubleRandom
	}
	return b
}

// WordsPerGiB returns how many data words of dataBits fill capacityGiB.
func WordsPerGiB(capacityGiB float64, dataBits int) float64 {
	return math.Floor(capacityGiB * math.Exp2(33) / float64(dataBits))
}

package model

// Unit conversions.
const (
	joulesPerKWh   = 3.6e6
	secondsPerHour = 3600.0
	um2PerMM2      = 1e6
	bitsPerMbit    = 1e6
)

// CarbonInputs collects what the carbon model needs for one code.
type CarbonInputs struct {
	Words        float64
	ParityBits   int
	BitcellUm2   float64
	AreaLogicMM2 float64
	XorJ         float64
	ScrubS       float64
	LifetimeH    float64
	CIKgPerKWh   float64
}

// CarbonBreakdown is the embodied and operational footprint of ECC overhead.
type CarbonBreakdown struct {
	AreaMacroMM2  float64
	EmbodiedKg    float64
	EDynKWh       float64
	ELeakKWh      float64
	OperationalKg float64
	Sweeps        float64
	HorizonH      float64
}

// TotalKg is embodied plus operational carbon.
func (b CarbonBreakdown) TotalKg() float64 {
	return b.EmbodiedKg + b.OperationalKg
}

// Carbon accounts for the parity storage and encoder/decoder logic.
// With no lifetime the horizon is a single scrub sweep.
func Carbon(in CarbonInputs, node *NodeCalibration) CarbonBreakdown {
	var b CarbonBreakdown
	parityBits := float64(in.ParityBits) * in.Words

	b.AreaMacroMM2 = parityBits * in.BitcellUm2 / um2PerMM2
	b.EmbodiedKg = node.AlphaLogicKgPerMM2*in.AreaLogicMM2 + node.AlphaMacroKgPerMM2*b.AreaMacroMM2

	b.Sweeps = 1
	b.HorizonH = in.ScrubS / secondsPerHour
	if in.LifetimeH > 0 {
		b.Sweeps = in.LifetimeH * secondsPerHour / in.ScrubS
		b.HorizonH = in.LifetimeH
	}

	// Every sweep reads each word once; checking costs one XOR per parity bit.
	eDynJ := b.Sweeps * in.Words * float64(in.ParityBits) * in.XorJ
	b.EDynKWh = eDynJ / joulesPerKWh
	b.ELeakKWh = node.LeakWPerMbit * parityBits / bitsPerMbit * b.HorizonH / 1000
	b.OperationalKg = (b.EDynKWh + b.ELeakKWh) * in.CIKgPerKWh
	return b
}

// ESII is the reliability gain bought per kilogram of carbon.
func ESII(fitBase, fitPost, carbonKg float64) float64 {
	if carbonKg <= 0 {
		return 0
	}
	return (fitBase - fitPost) / carbonKg
}

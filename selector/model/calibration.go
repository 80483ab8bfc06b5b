package model

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sram-ecc/eccsel/selector"
)

//go:embed calibration.yaml
var defaultCalibrationYAML []byte

// Calibration is the full calibration.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Calibration struct {
	Version string            `yaml:"version"`
	Hazucha HazuchaParams     `yaml:"hazucha"`
	Qcrit   QcritTable        `yaml:"qcrit"`
	Nodes   []NodeCalibration `yaml:"nodes"`
	Codes   []CodeInfo        `yaml:"codes"`
}

// NodeCalibration holds per-technology-node carbon and gate energy data.
type NodeCalibration struct {
	NodeNm             int          `yaml:"node_nm"`
	AlphaLogicKgPerMM2 float64      `yaml:"alpha_logic_kg_per_mm2"`
	AlphaMacroKgPerMM2 float64      `yaml:"alpha_macro_kg_per_mm2"`
	LeakWPerMbit       float64      `yaml:"leak_w_per_mbit"`
	Gates              []GateEnergy `yaml:"gates"`
}

// GateEnergy is the switching energy of basic gates at one supply voltage.
type GateEnergy struct {
	VDD  float64 `yaml:"vdd"`
	XorJ float64 `yaml:"xor_j"`
	AndJ float64 `yaml:"and_j"`
}

// DefaultCalibration parses the calibration bundled with the binary.
func DefaultCalibration() (*Calibration, error) {
	return ParseCalibration(defaultCalibrationYAML)
}

// LoadCalibration reads a calibration file. Uses strict parsing (typos must
// cause errors) and validates the result.
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calibration: %w", err)
	}
	return ParseCalibration(data)
}

// ParseCalibration decodes and validates calibration YAML.
func ParseCalibration(data []byte) (*Calibration, error) {
	var cal Calibration
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cal); err != nil {
		return nil, fmt.Errorf("parsing calibration: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	for i := range cal.Nodes {
		gates := cal.Nodes[i].Gates
		sort.Slice(gates, func(a, b int) bool { return gates[a].VDD < gates[b].VDD })
	}
	return &cal, nil
}

// Validate checks structural invariants of the calibration.
func (c *Calibration) Validate() error {
	if c.Hazucha.QsFC <= 0 || c.Hazucha.K <= 0 || c.Hazucha.SeaLevelFlux <= 0 {
		return fmt.Errorf("hazucha: qs_fc, k and sea_level_flux_per_cm2_h must be positive")
	}
	if !validPolicies[c.Qcrit.ExtrapolationPolicy] {
		return fmt.Errorf("qcrit: unknown extrapolation_policy %q; valid: error, clamp, warn-clamp", c.Qcrit.ExtrapolationPolicy)
	}
	seenQ := make(map[[3]float64]bool)
	for i, e := range c.Qcrit.Entries {
		key := [3]float64{float64(e.NodeNm), e.VDD, e.TempC}
		if seenQ[key] {
			return fmt.Errorf("qcrit.entries[%d]: duplicate entry for node %d vdd %g temp %g", i, e.NodeNm, e.VDD, e.TempC)
		}
		seenQ[key] = true
		if e.MeanFC <= 0 || math.IsNaN(e.MeanFC) {
			return fmt.Errorf("qcrit.entries[%d]: mean_fc must be positive, got %g", i, e.MeanFC)
		}
	}

	seenNode := make(map[int]bool)
	for i, n := range c.Nodes {
		prefix := fmt.Sprintf("nodes[%d]", i)
		if seenNode[n.NodeNm] {
			return fmt.Errorf("%s: duplicate node %d", prefix, n.NodeNm)
		}
		seenNode[n.NodeNm] = true
		if n.AlphaLogicKgPerMM2 < 0 || n.AlphaMacroKgPerMM2 < 0 || n.LeakWPerMbit < 0 {
			return fmt.Errorf("%s: alpha factors and leakage must be non-negative", prefix)
		}
		if len(n.Gates) == 0 {
			return fmt.Errorf("%s: at least one gate energy entry required", prefix)
		}
		gates := append([]GateEnergy(nil), n.Gates...)
		sort.Slice(gates, func(a, b int) bool { return gates[a].VDD < gates[b].VDD })
		for j := 1; j < len(gates); j++ {
			if gates[j].VDD == gates[j-1].VDD {
				return fmt.Errorf("%s: duplicate gate entry at vdd %g", prefix, gates[j].VDD)
			}
			if gates[j].XorJ < gates[j-1].XorJ || gates[j].AndJ < gates[j-1].AndJ {
				return fmt.Errorf("%s: gate energy non-monotonic in VDD at %g", prefix, gates[j].VDD)
			}
		}
	}

	seenCode := make(map[string]bool)
	for i, ci := range c.Codes {
		prefix := fmt.Sprintf("codes[%d]", i)
		if ci.Code == "" {
			return fmt.Errorf("%s: code is required", prefix)
		}
		if seenCode[ci.Code] {
			return fmt.Errorf("%s: duplicate code %q", prefix, ci.Code)
		}
		seenCode[ci.Code] = true
		if !validFamilies[ci.Family] {
			return fmt.Errorf("%s: unknown family %q; valid: SEC-DED, SEC-DAEC, TAEC, DEC", prefix, ci.Family)
		}
		if ci.DataBits <= 0 || ci.ParityBits <= 0 {
			return fmt.Errorf("%s: data_bits and parity_bits must be positive", prefix)
		}
		if ci.LatencyNs < 0 || ci.AreaLogicMM2 < 0 {
			return fmt.Errorf("%s: latency_ns and area_logic_mm2 must be non-negative", prefix)
		}
	}
	return nil
}

// Node returns the calibration for a technology node.
func (c *Calibration) Node(nodeNm int) (*NodeCalibration, error) {
	for i := range c.Nodes {
		if c.Nodes[i].NodeNm == nodeNm {
			return &c.Nodes[i], nil
		}
	}
	return nil, &selector.LookupError{Kind: "node", Key: fmt.Sprintf("%dnm", nodeNm)}
}

// GateEnergyAt interpolates gate energies linearly in VDD. A VDD outside the
// calibrated range is a lookup error rather than an extrapolation.
func (n *NodeCalibration) GateEnergyAt(vdd float64) (GateEnergy, error) {
	g := n.Gates
	if vdd < g[0].VDD || vdd > g[len(g)-1].VDD {
		return GateEnergy{}, &selector.LookupError{
			Kind: "vdd",
			Key:  fmt.Sprintf("%gV at %dnm (calibrated %g-%gV)", vdd, n.NodeNm, g[0].VDD, g[len(g)-1].VDD),
		}
	}
	for i := 1; i < len(g); i++ {
		if vdd <= g[i].VDD {
			lo, hi := g[i-1], g[i]
			f := (vdd - lo.VDD) / (hi.VDD - lo.VDD)
			return GateEnergy{
				VDD:  vdd,
				XorJ: lo.XorJ + (hi.XorJ-lo.XorJ)*f,
				AndJ: lo.AndJ + (hi.AndJ-lo.AndJ)*f,
			}, nil
		}
	}
	return g[0], nil
}

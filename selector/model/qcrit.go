package model

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/sram-ecc/eccsel/selector"
)

// Extrapolation policies for points outside the Qcrit table.
const (
	PolicyError     = "error"
	PolicyClamp     = "clamp"
	PolicyWarnClamp = "warn-clamp"
)

var validPolicies = map[string]bool{
	PolicyError:     true,
	PolicyClamp:     true,
	PolicyWarnClamp: true,
}

// QcritTable holds critical-charge characterisation points for one bitcell.
type QcritTable struct {
	Element             string       `yaml:"element"`
	ExtrapolationPolicy string       `yaml:"extrapolation_policy"`
	Entries             []QcritEntry `yaml:"entries"`
}

// QcritEntry is one characterised (node, VDD, temperature) point.
type QcritEntry struct {
	NodeNm int     `yaml:"node_nm"`
	VDD    float64 `yaml:"vdd"`
	TempC  float64 `yaml:"temp_c"`
	MeanFC float64 `yaml:"mean_fc"`
}

// Lookup returns the critical charge in femtocoulombs, bilinearly
// interpolated over VDD and temperature.
func (q *QcritTable) Lookup(nodeNm int, vdd, tempC float64) (float64, error) {
	grid := make(map[float64]map[float64]float64)
	for _, e := range q.Entries {
		if e.NodeNm != nodeNm {
			continue
		}
		if grid[e.VDD] == nil {
			grid[e.VDD] = make(map[float64]float64)
		}
		grid[e.VDD][e.TempC] = e.MeanFC
	}
	if len(grid) == 0 {
		return 0, &selector.LookupError{Kind: "node", Key: fmt.Sprintf("%dnm (no %s qcrit data)", nodeNm, q.Element)}
	}

	vdds := sortedKeys(grid)
	vLo, vHi, err := q.bounds("vdd", vdd, vdds)
	if err != nil {
		return 0, err
	}
	temps := sortedKeys(mergeKeys(grid[vLo], grid[vHi]))
	tLo, tHi, err := q.bounds("temperature", tempC, temps)
	if err != nil {
		return 0, err
	}

	value := func(v, t float64) (float64, error) {
		fc, ok := grid[v][t]
		if !ok {
			return 0, &selector.LookupError{Kind: "qcrit", Key: fmt.Sprintf("%dnm %gV %gC", nodeNm, v, t)}
		}
		return fc, nil
	}

	qLL, err := value(vLo, tLo)
	if err != nil {
		return 0, err
	}
	if vLo == vHi && tLo == tHi {
		return qLL, nil
	}
	if vLo == vHi {
		qLH, err := value(vLo, tHi)
		if err != nil {
			return 0, err
		}
		return interp(clamp(tempC, tLo, tHi), tLo, tHi, qLL, qLH), nil
	}
	qHL, err := value(vHi, tLo)
	if err != nil {
		return 0, err
	}
	if tLo == tHi {
		return interp(clamp(vdd, vLo, vHi), vLo, vHi, qLL, qHL), nil
	}
	qLH, err := value(vLo, tHi)
	if err != nil {
		return 0, err
	}
	qHH, err := value(vHi, tHi)
	if err != nil {
		return 0, err
	}
	fv := (vdd - vLo) / (vHi - vLo)
	ft := (tempC - tLo) / (tHi - tLo)
	return qLL*(1-fv)*(1-ft) + qHL*fv*(1-ft) + qLH*(1-fv)*ft + qHH*fv*ft, nil
}

// bounds returns the grid points surrounding x, applying the table's
// extrapolation policy when x falls outside them.
func (q *QcritTable) bounds(axis string, x float64, points []float64) (float64, float64, error) {
	first, last := points[0], points[len(points)-1]
	if x < first || x > last {
		edge := first
		if x > last {
			edge = last
		}
		switch q.ExtrapolationPolicy {
		case PolicyError:
			return 0, 0, &selector.LookupError{Kind: "qcrit", Key: fmt.Sprintf("%s %g outside table range [%g, %g]", axis, x, first, last)}
		case PolicyWarnClamp:
			logrus.Warnf("qcrit: %s %g outside table range [%g, %g]; clamping to %g", axis, x, first, last, edge)
		}
		return edge, edge, nil
	}
	lo := first
	for _, hi := range points[1:] {
		if hi >= x {
			return lo, hi, nil
		}
		lo = hi
	}
	return last, last, nil
}

func sortedKeys[V any](m map[float64]V) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

func mergeKeys(a, b map[float64]float64) map[float64]float64 {
	out := make(map[float64]float64, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func interp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

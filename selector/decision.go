package selector

import (
	"sort"

	"github.com/sram-ecc/eccsel/selector/diag"
)

// DecisionMode names how the recommendation was derived.
type DecisionMode string

const (
	// ModeKnee picks the knee of the first front, possibly displaced by a
	// higher-NESII front member.
	ModeKnee DecisionMode = "knee"
	// ModeEpsilonConstraint picks the lowest-carbon record under active ceilings.
	ModeEpsilonConstraint DecisionMode = "epsilon-constraint"
)

// Decision is the recommended record plus how it was chosen.
type Decision struct {
	Code        string
	Mode        DecisionMode
	Constraints Constraints

	// Knee path only.
	KneeIndex     int
	KneeDistance  float64
	KneeCode      string
	NESIIOverride bool

	// Epsilon-constraint path only. Feasible is false when no record met the
	// ceilings and the choice was made over the whole eligible set.
	Feasible      bool
	FeasibleCount int

	index int
}

// Index returns the position of the chosen record in the slice passed to Decide.
func (d *Decision) Index() int {
	return d.index
}

// Decide chooses exactly one record. records must be non-empty, carry NESII
// annotations, and be the slice nsga was computed from.
func Decide(records []MetricRecord, nsga NSGA2Result, c Constraints, rec *diag.Recorder) *Decision {
	if len(records) == 0 {
		return nil
	}
	if c.HasCeiling() {
		return decideEpsilonConstraint(records, c, rec)
	}
	return decideKnee(records, nsga, c)
}

func meetsCeilings(r *MetricRecord, c Constraints) bool {
	if c.FITMax != nil && r.FIT > *c.FITMax {
		return false
	}
	if c.LatencyNsMax != nil && r.LatencyNs > *c.LatencyNsMax {
		return false
	}
	return true
}

// lowerCarbonFirst orders by carbon ascending, then NESII descending, then code.
func lowerCarbonFirst(a, b *MetricRecord) bool {
	if a.CarbonKg != b.CarbonKg {
		return a.CarbonKg < b.CarbonKg
	}
	if a.NESII != b.NESII {
		return a.NESII > b.NESII
	}
	return a.Code < b.Code
}

func decideEpsilonConstraint(records []MetricRecord, c Constraints, rec *diag.Recorder) *Decision {
	pool := make([]int, 0, len(records))
	for i := range records {
		if meetsCeilings(&records[i], c) {
			pool = append(pool, i)
		}
	}
	d := &Decision{
		Mode:          ModeEpsilonConstraint,
		Constraints:   c,
		Feasible:      len(pool) > 0,
		FeasibleCount: len(pool),
	}
	if len(pool) == 0 {
		rec.Info(diag.KindInfeasible, "no candidate meets the FIT/latency ceilings; choosing over all %d candidates", len(records))
		for i := range records {
			pool = append(pool, i)
		}
	}
	best := pool[0]
	for _, i := range pool[1:] {
		if lowerCarbonFirst(&records[i], &records[best]) {
			best = i
		}
	}
	d.index = best
	d.Code = records[best].Code
	return d
}

func decideKnee(records []MetricRecord, nsga NSGA2Result, c Constraints) *Decision {
	d := &Decision{Mode: ModeKnee, Constraints: c}
	if len(nsga.Fronts) == 0 || len(nsga.Fronts[0]) == 0 {
		d.Code = records[0].Code
		return d
	}

	front := append([]int(nil), nsga.Fronts[0]...)
	sort.SliceStable(front, func(a, b int) bool {
		return records[front[a]].Code < records[front[b]].Code
	})
	frontRecs := make([]MetricRecord, len(front))
	for i, idx := range front {
		frontRecs[i] = records[idx]
	}

	kneePos, dist := MaxPerpNorm(frontRecs)
	d.KneeIndex = kneePos
	d.KneeDistance = dist
	d.KneeCode = frontRecs[kneePos].Code

	chosen := kneePos
	for i := range frontRecs {
		if frontRecs[i].NESII > frontRecs[chosen].NESII {
			chosen = i
		}
	}
	d.NESIIOverride = chosen != kneePos
	d.index = front[chosen]
	d.Code = records[d.index].Code
	return d
}

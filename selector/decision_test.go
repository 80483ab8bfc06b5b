package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sram-ecc/eccsel/selector/diag"
)

func TestDecide_EpsilonConstraintPicksLowestCarbon(t *testing.T) {
	// GIVEN a FIT ceiling met by b and c only
	records := []MetricRecord{
		rec("a", 50, 1.0, 1.0),
		rec("b", 9, 2.0, 1.3),
		rec("c", 5, 3.0, 1.6),
	}
	c := Constraints{FITMax: Float(10)}

	d := Decide(records, NSGA2Sort(records), c, diag.NewRecorder())

	require.NotNil(t, d)
	assert.Equal(t, ModeEpsilonConstraint, d.Mode)
	assert.Equal(t, "b", d.Code)
	assert.Equal(t, 1, d.Index())
	assert.True(t, d.Feasible)
	assert.Equal(t, 2, d.FeasibleCount)
}

func TestDecide_EpsilonConstraintTieBreaksOnNESIIThenCode(t *testing.T) {
	records := []MetricRecord{
		rec("b", 1, 2.0, 1.0),
		rec("a", 1, 2.0, 1.0),
		rec("c", 1, 2.0, 1.0),
	}
	records[2].NESII = 80
	c := Constraints{LatencyNsMax: Float(5)}

	d := Decide(records, NSGA2Sort(records), c, diag.NewRecorder())
	assert.Equal(t, "c", d.Code)

	records[2].NESII = 0
	d = Decide(records, NSGA2Sort(records), c, diag.NewRecorder())
	assert.Equal(t, "a", d.Code)
}

func TestDecide_InfeasibleFallsBackToAllCandidates(t *testing.T) {
	records := []MetricRecord{
		rec("a", 50, 1.0, 1.0),
		rec("b", 40, 2.0, 1.3),
	}
	recorder := diag.NewRecorder()

	d := Decide(records, NSGA2Sort(records), Constraints{FITMax: Float(1)}, recorder)

	assert.Equal(t, "a", d.Code)
	assert.False(t, d.Feasible)
	assert.Equal(t, 0, d.FeasibleCount)
	assert.Equal(t, 1, diag.Summarize(recorder.Records).ByKind[diag.KindInfeasible])
}

func TestDecide_KneeModeWithoutCeilings(t *testing.T) {
	records := []MetricRecord{
		rec("hi-fit", 1.0, 0.0, 0.5),
		rec("knee", 0.1, 0.1, 0.5),
		rec("mild", 0.05, 0.8, 0.5),
		rec("hi-carbon", 0.0, 1.0, 0.5),
	}
	for i := range records {
		records[i].NESII = 50
	}

	// Carbon ceilings prune elsewhere; they do not switch modes.
	d := Decide(records, NSGA2Sort(records), Constraints{CarbonKgMax: Float(10)}, diag.NewRecorder())

	assert.Equal(t, ModeKnee, d.Mode)
	assert.Equal(t, "knee", d.Code)
	assert.Equal(t, "knee", d.KneeCode)
	assert.False(t, d.NESIIOverride)
	assert.Greater(t, d.KneeDistance, 0.0)
}

func TestDecide_HigherNESIIDisplacesKnee(t *testing.T) {
	records := []MetricRecord{
		rec("hi-fit", 1.0, 0.0, 0.5),
		rec("knee", 0.1, 0.1, 0.5),
		rec("hi-carbon", 0.0, 1.0, 0.5),
	}
	records[0].NESII = 10
	records[1].NESII = 40
	records[2].NESII = 90

	d := Decide(records, NSGA2Sort(records), Constraints{}, diag.NewRecorder())

	assert.Equal(t, "knee", d.KneeCode)
	assert.Equal(t, "hi-carbon", d.Code)
	assert.Equal(t, 2, d.Index())
	assert.True(t, d.NESIIOverride)
}

func TestDecide_Empty(t *testing.T) {
	assert.Nil(t, Decide(nil, NSGA2Result{}, Constraints{}, diag.NewRecorder()))
}

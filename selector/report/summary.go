package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/sram-ecc/eccsel/selector"
	"github.com/sram-ecc/eccsel/selector/diag"
)

// Summary is the JSON document describing one selection run. Non-finite
// numbers are encoded as null.
type Summary struct {
	RunID         string                  `json:"run_id"`
	ScenarioHash  string                  `json:"scenario_hash"`
	Scenario      selector.Scenario       `json:"scenario"`
	Candidates    []string                `json:"candidates"`
	Best          *BestSummary            `json:"best"`
	Decision      *DecisionSummary        `json:"decision"`
	Pareto        []string                `json:"pareto"`
	Normalization NormalizationSummary    `json:"normalization"`
	Quality       selector.QualityMetrics `json:"quality"`
	NSGA2         NSGA2Summary            `json:"nsga2"`
	Diagnostics   DiagnosticsSummary      `json:"diagnostics"`
}

// BestSummary is the recommended record's objectives.
type BestSummary struct {
	Code      string   `json:"code"`
	FIT       float64  `json:"FIT"`
	CarbonKg  float64  `json:"carbon_kg"`
	LatencyNs float64  `json:"latency_ns"`
	ESII      float64  `json:"ESII"`
	NESII     float64  `json:"NESII"`
	GS        float64  `json:"GS"`
	Crowding  *float64 `json:"crowding"`
}

// DecisionSummary mirrors selector.Decision.
type DecisionSummary struct {
	Mode          string               `json:"mode"`
	Code          string               `json:"code"`
	Constraints   selector.Constraints `json:"constraints"`
	KneeCode      string               `json:"knee_code,omitempty"`
	KneeDistance  *float64             `json:"knee_distance,omitempty"`
	NESIIOverride bool                 `json:"nesii_override"`
	Feasible      *bool                `json:"feasible,omitempty"`
	FeasibleCount *int                 `json:"feasible_count,omitempty"`
}

// NormalizationSummary mirrors selector.Normalization.
type NormalizationSummary struct {
	Method     string   `json:"method"`
	P5         *float64 `json:"p5"`
	P95        *float64 `json:"p95"`
	N          int      `json:"N"`
	Scope      string   `json:"scope"`
	Epsilon    float64  `json:"epsilon_on_normalized_axes"`
	Basis      string   `json:"basis"`
	LifetimeH  float64  `json:"lifetime_h"`
	CIKgPerKWh float64  `json:"ci_kg_per_kwh"`
	CISource   string   `json:"ci_source"`
	Status     string   `json:"status"`
}

// NSGA2Summary mirrors selector.NSGA2Meta.
type NSGA2Summary struct {
	Fronts       [][]string `json:"fronts"`
	Seed         int64      `json:"seed"`
	FrontierMiss bool       `json:"frontier_miss"`
}

// DiagnosticsSummary carries counts and the raw records.
type DiagnosticsSummary struct {
	*diag.Summary
	Records []diag.Record `json:"records"`
}

// NewSummary builds the JSON view of res.
func NewSummary(sc selector.Scenario, res *selector.Result) *Summary {
	s := &Summary{
		RunID:        res.RunID,
		ScenarioHash: res.ScenarioHash,
		Scenario:     sc,
		Candidates:   res.Codes,
		Pareto:       make([]string, 0, len(res.Pareto)),
		Normalization: NormalizationSummary{
			Method:     string(res.Normalization.Method),
			P5:         finite(res.Normalization.P5),
			P95:        finite(res.Normalization.P95),
			N:          res.Normalization.N,
			Scope:      res.Normalization.Scope,
			Epsilon:    res.Normalization.Epsilon,
			Basis:      res.Normalization.Basis,
			LifetimeH:  res.Normalization.LifetimeH,
			CIKgPerKWh: res.Normalization.CIKgPerKWh,
			CISource:   res.Normalization.CISource,
			Status:     res.Normalization.Status,
		},
		Quality: res.Quality,
		NSGA2: NSGA2Summary{
			Fronts:       res.NSGA2.Fronts,
			Seed:         res.NSGA2.Seed,
			FrontierMiss: res.NSGA2.FrontierMiss,
		},
		Diagnostics: DiagnosticsSummary{
			Summary: diag.Summarize(res.Diagnostics),
			Records: res.Diagnostics,
		},
	}
	if s.Diagnostics.Records == nil {
		s.Diagnostics.Records = []diag.Record{}
	}
	for _, r := range res.Pareto {
		s.Pareto = append(s.Pareto, r.Code)
	}
	if b := res.Best; b != nil {
		s.Best = &BestSummary{
			Code:      b.Code,
			FIT:       b.FIT,
			CarbonKg:  b.CarbonKg,
			LatencyNs: b.LatencyNs,
			ESII:      b.ESII,
			NESII:     b.NESII,
			GS:        b.GS,
			Crowding:  finite(b.Crowding),
		}
	}
	if d := res.Decision; d != nil {
		ds := &DecisionSummary{
			Mode:          string(d.Mode),
			Code:          d.Code,
			Constraints:   d.Constraints,
			NESIIOverride: d.NESIIOverride,
		}
		switch d.Mode {
		case selector.ModeKnee:
			ds.KneeCode = d.KneeCode
			ds.KneeDistance = finite(d.KneeDistance)
		case selector.ModeEpsilonConstraint:
			feasible, count := d.Feasible, d.FeasibleCount
			ds.Feasible = &feasible
			ds.FeasibleCount = &count
		}
		s.Decision = ds
	}
	return s
}

// WriteSummaryJSON writes the summary of res to path.
func WriteSummaryJSON(path string, sc selector.Scenario, res *selector.Result) error {
	data, err := json.MarshalIndent(NewSummary(sc, res), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// finite returns nil for NaN and infinities.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

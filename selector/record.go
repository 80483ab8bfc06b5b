package selector

import (
	"math"
	"sort"
)

// Objective names as they appear in reports. All three are minimized.
const (
	KeyFIT     = "FIT"
	KeyCarbon  = "carbon_kg"
	KeyLatency = "latency_ns"
)

// Extension keys written by the metric model and read by the core.
const (
	ExtraFITBase = "FIT_base"
)

// NumObjectives is the dimensionality of the objective space.
const NumObjectives = 3

// ObjectiveKeys lists the objectives in axis order.
var ObjectiveKeys = [NumObjectives]string{KeyFIT, KeyCarbon, KeyLatency}

// Objectives is a point in objective space, ordered as ObjectiveKeys.
type Objectives [NumObjectives]float64

// MetricRecord is the evaluation of one candidate code under one scenario.
//
// Code, FIT, CarbonKg, LatencyNs and ESII are produced by the metric source.
// Extras carries pass-through diagnostics (energy breakdown, areas) that the
// core never interprets except for ExtraFITBase. The remaining fields are
// annotations written by Select.
type MetricRecord struct {
	Code      string
	FIT       float64
	CarbonKg  float64
	LatencyNs float64
	ESII      float64
	Extras    map[string]float64
	Notes     string

	NESII      float64
	FrontRank  int
	Crowding   float64
	GS         float64
	Sr         float64
	Sc         float64
	Sl         float64
	Violations []string
}

// Objectives returns the record's position in objective space.
func (r *MetricRecord) Objectives() Objectives {
	return Objectives{r.FIT, r.CarbonKg, r.LatencyNs}
}

// Extra returns a pass-through value and whether it was set.
func (r *MetricRecord) Extra(key string) (float64, bool) {
	v, ok := r.Extras[key]
	return v, ok
}

// ExtraKeys returns the extension keys in sorted order.
func (r *MetricRecord) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extras))
	for k := range r.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy so callers can hand out records without sharing maps.
func (r *MetricRecord) Clone() MetricRecord {
	out := *r
	if r.Extras != nil {
		out.Extras = make(map[string]float64, len(r.Extras))
		for k, v := range r.Extras {
			out.Extras[k] = v
		}
	}
	if r.Violations != nil {
		out.Violations = append([]string(nil), r.Violations...)
	}
	return out
}

// Bounds holds the per-objective min and max over a record collection.
type Bounds struct {
	Min Objectives
	Max Objectives
}

// NewBounds computes per-objective bounds. An empty collection yields zero bounds.
func NewBounds(records []MetricRecord) Bounds {
	var b Bounds
	if len(records) == 0 {
		return b
	}
	for k := 0; k < NumObjectives; k++ {
		b.Min[k] = math.Inf(1)
		b.Max[k] = math.Inf(-1)
	}
	for i := range records {
		o := records[i].Objectives()
		for k := 0; k < NumObjectives; k++ {
			b.Min[k] = math.Min(b.Min[k], o[k])
			b.Max[k] = math.Max(b.Max[k], o[k])
		}
	}
	return b
}

// Span returns max-min on axis k.
func (b Bounds) Span(k int) float64 {
	return b.Max[k] - b.Min[k]
}

// Normalize maps o onto [0,1] per axis. Zero-span axes map to 0.
func (b Bounds) Normalize(o Objectives) Objectives {
	var out Objectives
	for k := 0; k < NumObjectives; k++ {
		span := b.Span(k)
		if span <= 0 {
			continue
		}
		out[k] = (o[k] - b.Min[k]) / span
	}
	return out
}

// sortByCode orders records by code, keeping the input order for equal codes.
func sortByCode(records []MetricRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Code < records[j].Code
	})
}

func codesOf(records []MetricRecord) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].Code
	}
	return out
}

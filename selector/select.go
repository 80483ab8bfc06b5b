package selector

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/sram-ecc/eccsel/selector/diag"
)

// MetricSource turns a candidate code and a scenario into a MetricRecord.
// Implementations must be pure apart from logging. An unknown code must
// return a *LookupError.
type MetricSource interface {
	ComputeMetrics(code string, sc Scenario) (MetricRecord, error)
}

// Normalization documents how NESII was scaled for this evaluation.
type Normalization struct {
	Method     NormalizationMethod
	P5         float64 // NaN when N == 0
	P95        float64 // NaN when N == 0
	N          int
	Scope      string
	Epsilon    float64
	Basis      string
	LifetimeH  float64
	CIKgPerKWh float64
	CISource   string
	Status     string
}

// NSGA2Meta summarises the non-dominated sort.
type NSGA2Meta struct {
	Fronts       [][]string // codes per front, each sorted
	Seed         int64
	FrontierMiss bool
}

// Result bundles everything produced for one scenario.
// Best and Decision are nil iff no candidate survived the eligibility ceilings.
type Result struct {
	Best          *MetricRecord
	Pareto        []MetricRecord
	Candidates    []MetricRecord
	Codes         []string
	Normalization Normalization
	Quality       QualityMetrics
	NSGA2         NSGA2Meta
	Decision      *Decision
	ScenarioHash  string
	RunID         string
	Diagnostics   []diag.Record
}

type options struct {
	recorder *diag.Recorder
	weights  GSWeights
	epsilon  float64
}

// Option customises Select.
type Option func(*options)

// WithRecorder shares a diagnostics recorder across evaluations so that
// fallback warnings are emitted once for the recorder's lifetime.
func WithRecorder(r *diag.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithGSWeights overrides the goodness-score weights.
func WithGSWeights(w GSWeights) Option {
	return func(o *options) { o.weights = w }
}

// WithEpsilon overrides the Pareto dominance tolerance.
func WithEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

// Select evaluates every candidate code under sc and recommends one.
//
// The scenario is validated before any metric is computed. Records that break
// the latency or carbon ceilings are pruned; if none remain the result has a
// nil Best and an empty frontier, which is not an error. Candidate order does
// not affect the result.
func Select(src MetricSource, codes []string, sc Scenario, opts ...Option) (*Result, error) {
	o := options{weights: DefaultGSWeights(), epsilon: ParetoEpsilon}
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		o.recorder = diag.NewRecorder()
	}
	rec := o.recorder
	mark := rec.Len()

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, &ValidationError{Field: "codes", Reason: "at least one candidate code is required"}
	}
	if src == nil {
		return nil, fmt.Errorf("no metric source configured")
	}

	canonical := CanonicalCodes(codes)
	if len(canonical) != len(codes) {
		rec.Info(diag.KindDuplicateCandidate, "dropped %d duplicate candidate codes", len(codes)-len(canonical))
	}
	hash, err := ScenarioHash(sc, canonical)
	if err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(KeyFromHash(hash))

	res := &Result{
		Pareto:       []MetricRecord{},
		Candidates:   []MetricRecord{},
		Codes:        canonical,
		ScenarioHash: hash,
		RunID:        RunID(hash),
		NSGA2: NSGA2Meta{
			Fronts: [][]string{},
			Seed:   rng.SubsystemSeed(SubsystemNSGA2),
		},
		Normalization: Normalization{
			Method:     MethodWinsor,
			P5:         math.NaN(),
			P95:        math.NaN(),
			Scope:      "feasible_set",
			Epsilon:    o.epsilon,
			Basis:      "system",
			LifetimeH:  sc.LifetimeH,
			CIKgPerKWh: sc.CarbonIntensity(),
			CISource:   sc.CISource,
			Status:     StatusOK,
		},
	}

	eligible := make([]MetricRecord, 0, len(canonical))
	for _, code := range canonical {
		r, err := src.ComputeMetrics(code, sc)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", code, err)
		}
		if !sc.Constraints.Eligible(&r) {
			logrus.Debugf("pruned %s: latency=%gns carbon=%gkg", code, r.LatencyNs, r.CarbonKg)
			continue
		}
		eligible = append(eligible, r)
	}

	if len(eligible) == 0 {
		rec.Info(diag.KindNoCandidates, "no candidate satisfies the eligibility ceilings")
		res.Diagnostics = rec.Since(mark)
		return res, nil
	}

	esii := make([]float64, len(eligible))
	for i := range eligible {
		esii[i] = eligible[i].ESII
	}
	norm := NormalizeNESII(esii, rec)
	for i := range eligible {
		eligible[i].NESII = norm.Scores[i]
		eligible[i].Violations = sc.Constraints.Violations(&eligible[i])
	}
	res.Normalization.Method = norm.Method
	res.Normalization.P5 = norm.P5
	res.Normalization.P95 = norm.P95
	res.Normalization.N = norm.N
	res.Normalization.Status = norm.Status
	annotateGS(eligible, o.weights)

	nsga := NSGA2Sort(eligible)
	nsga.Annotate(eligible)
	if len(eligible) > 1 {
		for k, key := range ObjectiveKeys {
			if nsga.Bounds.Span(k) <= 0 {
				rec.WarnOnce(diag.KindDegenerateSpan+":"+key, "all candidates share the same %s; axis ignored for normalization", key)
			}
		}
	}

	res.Pareto = ParetoFront(eligible, o.epsilon)
	for _, front := range nsga.Fronts {
		names := make([]string, len(front))
		for i, idx := range front {
			names[i] = eligible[idx].Code
		}
		res.NSGA2.Fronts = append(res.NSGA2.Fronts, CanonicalCodes(names))
	}
	if len(res.NSGA2.Fronts) > 0 && !sameCodes(res.NSGA2.Fronts[0], codesOf(res.Pareto)) {
		res.NSGA2.FrontierMiss = true
		rec.Info(diag.KindFrontierMiss, "NSGA-II front 0 %v differs from epsilon-Pareto frontier %v", res.NSGA2.Fronts[0], codesOf(res.Pareto))
	}

	res.Quality = FrontQuality(nsga.FrontRecords(eligible, 0), nsga.Bounds)
	res.Decision = Decide(eligible, nsga, sc.Constraints, rec)
	best := eligible[res.Decision.Index()].Clone()
	res.Best = &best
	res.Candidates = eligible
	res.Diagnostics = rec.Since(mark)

	logrus.Infof("scenario %s: %d candidates, %d on frontier, chose %s (%s)",
		hash[:12], len(eligible), len(res.Pareto), best.Code, res.Decision.Mode)
	return res, nil
}

// sameCodes compares two sorted code lists.
func sameCodes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

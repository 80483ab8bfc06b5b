package selector

import (
	"math"
	"sort"
)

// NSGA2Result is the output of a fast non-dominated sort.
type NSGA2Result struct {
	// Fronts lists record indices per front; Fronts[0] is the non-dominated set.
	Fronts [][]int
	// Crowding is the crowding distance of each record, indexed like the input.
	Crowding []float64
	// Rank is the front index of each record, indexed like the input.
	Rank []int
	// Bounds are the per-objective extremes used for normalization.
	Bounds Bounds
}

// Dominates reports exact Pareto dominance for minimization: a is no worse
// on every axis and strictly better on at least one.
func Dominates(a, b Objectives) bool {
	strict := false
	for k := 0; k < NumObjectives; k++ {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			strict = true
		}
	}
	return strict
}

// NSGA2Sort partitions records into successive non-domination fronts and
// computes crowding distance within each front.
//
// Indices inside each front are ascending, so the output depends only on the
// input order. Select canonicalises that order by code.
func NSGA2Sort(records []MetricRecord) NSGA2Result {
	n := len(records)
	res := NSGA2Result{
		Fronts:   make([][]int, 0),
		Crowding: make([]float64, n),
		Rank:     make([]int, n),
		Bounds:   NewBounds(records),
	}
	if n == 0 {
		return res
	}

	objs := make([]Objectives, n)
	for i := range records {
		objs[i] = records[i].Objectives()
	}

	dominatesSet := make([][]int, n)
	dominationCount := make([]int, n)
	current := make([]int, 0, n)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p == q {
				continue
			}
			if Dominates(objs[p], objs[q]) {
				dominatesSet[p] = append(dominatesSet[p], q)
			} else if Dominates(objs[q], objs[p]) {
				dominationCount[p]++
			}
		}
		if dominationCount[p] == 0 {
			current = append(current, p)
		}
	}

	rank := 0
	for len(current) > 0 {
		res.Fronts = append(res.Fronts, current)
		next := make([]int, 0)
		for _, p := range current {
			res.Rank[p] = rank
			for _, q := range dominatesSet[p] {
				dominationCount[q]--
				if dominationCount[q] == 0 {
					next = append(next, q)
				}
			}
		}
		sort.Ints(next)
		current = next
		rank++
	}

	for _, front := range res.Fronts {
		crowdingDistance(objs, front, res.Bounds, res.Crowding)
	}
	return res
}

// crowdingDistance accumulates, for each objective, the normalized gap
// between each interior record's neighbours. Boundary records get +Inf, as
// do all members of a front of two or fewer.
func crowdingDistance(objs []Objectives, front []int, bounds Bounds, out []float64) {
	if len(front) <= 2 {
		for _, i := range front {
			out[i] = math.Inf(1)
		}
		return
	}
	for _, i := range front {
		out[i] = 0
	}
	order := make([]int, len(front))
	for k := 0; k < NumObjectives; k++ {
		copy(order, front)
		sort.SliceStable(order, func(a, b int) bool {
			return objs[order[a]][k] < objs[order[b]][k]
		})
		out[order[0]] = math.Inf(1)
		out[order[len(order)-1]] = math.Inf(1)
		// A constant axis adds no interior gap.
		span := bounds.Span(k)
		if span <= 0 {
			continue
		}
		for m := 1; m < len(order)-1; m++ {
			i := order[m]
			if math.IsInf(out[i], 1) {
				continue
			}
			out[i] += (objs[order[m+1]][k] - objs[order[m-1]][k]) / span
		}
	}
}

// Annotate writes front rank and crowding distance onto records, which must
// be the slice the result was computed from.
func (r NSGA2Result) Annotate(records []MetricRecord) {
	for i := range records {
		records[i].FrontRank = r.Rank[i]
		records[i].Crowding = r.Crowding[i]
	}
}

// FrontRecords returns copies of the records in front f, sorted by code.
func (r NSGA2Result) FrontRecords(records []MetricRecord, f int) []MetricRecord {
	if f < 0 || f >= len(r.Fronts) {
		return []MetricRecord{}
	}
	out := make([]MetricRecord, 0, len(r.Fronts[f]))
	for _, i := range r.Fronts[f] {
		out = append(out, records[i].Clone())
	}
	sortByCode(out)
	return out
}

package selector

// ParetoEpsilon is the dominance tolerance applied on normalized axes.
const ParetoEpsilon = 1e-8

// EpsDominates reports whether a ε-dominates b. Both points must already be
// normalized: a is no worse than b+eps on every axis and strictly better
// than b-eps on at least one.
func EpsDominates(a, b Objectives, eps float64) bool {
	strict := false
	for k := 0; k < NumObjectives; k++ {
		if a[k] > b[k]+eps {
			return false
		}
		if a[k] < b[k]-eps {
			strict = true
		}
	}
	return strict
}

// ParetoFront returns the records not ε-dominated by any other record,
// sorted by code. Axes are min-max normalized across the input first so that
// FIT and carbon, which differ by many orders of magnitude, are compared on
// the same scale. The returned records are copies.
func ParetoFront(records []MetricRecord, eps float64) []MetricRecord {
	if len(records) == 0 {
		return []MetricRecord{}
	}
	bounds := NewBounds(records)
	norm := make([]Objectives, len(records))
	for i := range records {
		norm[i] = bounds.Normalize(records[i].Objectives())
	}

	frontier := make([]MetricRecord, 0, len(records))
	for i := range records {
		dominated := false
		for j := range records {
			if i == j {
				continue
			}
			if EpsDominates(norm[j], norm[i], eps) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, records[i].Clone())
		}
	}
	sortByCode(frontier)
	return frontier
}

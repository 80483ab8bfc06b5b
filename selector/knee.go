package selector

import (
	"math"
	"sort"
)

// MaxPerpNorm returns the index (into records) of the knee point and its
// normalized perpendicular distance from the baseline.
//
// Each objective is normalized to [0,1] across records. Points are ordered by
// the second objective and the baseline joins the first and last points of
// that ordering. The knee is the interior point farthest from the baseline,
// so an extreme is never selected. With two or fewer records the result is
// (0, 0).
func MaxPerpNorm(records []MetricRecord) (int, float64) {
	n := len(records)
	if n <= 2 {
		return 0, 0
	}
	bounds := NewBounds(records)
	pts := make([]Objectives, n)
	for i := range records {
		pts[i] = bounds.Normalize(records[i].Objectives())
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pts[order[a]][1] < pts[order[b]][1]
	})

	p0 := pts[order[0]]
	p1 := pts[order[n-1]]
	var ab Objectives
	for d := 0; d < NumObjectives; d++ {
		ab[d] = p1[d] - p0[d]
	}
	abLen := norm3(ab)
	if abLen == 0 {
		abLen = 1
	}

	bestIdx := order[1]
	bestDist := -1.0
	for _, idx := range order[1 : n-1] {
		var ap Objectives
		for d := 0; d < NumObjectives; d++ {
			ap[d] = pts[idx][d] - p0[d]
		}
		dist := norm3(cross(ap, ab)) / abLen
		if dist > bestDist {
			bestDist = dist
			bestIdx = idx
		}
	}
	return bestIdx, bestDist
}

func cross(a, b Objectives) Objectives {
	return Objectives{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3(v Objectives) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

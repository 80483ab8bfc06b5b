package selector

import (
	"math"
	"sort"
)

// QualityMetrics describes the first front for robustness auditing. It never
// influences the decision.
type QualityMetrics struct {
	Hypervolume float64   `json:"hypervolume"`
	Spacing     float64   `json:"spacing"`
	RefPoint    []float64 `json:"ref_point_norm"`
	FrontSize   int       `json:"front_size"`
}

// hvTask is one pending slice of the dimension sweep.
type hvTask struct {
	points [][]float64
	dim    int
	weight float64
}

// Hypervolume returns the volume dominated by points (minimization) and
// bounded by ref. A nil ref means the unit corner. Points lying outside the
// reference box on any axis contribute nothing.
//
// The sweep sorts each slice by the current axis in descending order so the
// running previous coordinate never increases and every slab width is
// non-negative. Recursion over dimensions is replaced by a work stack:
// each task carries the product of slab widths accumulated so far.
func Hypervolume(points [][]float64, ref []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	dims := len(points[0])
	if ref == nil {
		ref = make([]float64, dims)
		for i := range ref {
			ref[i] = 1
		}
	}

	inside := make([][]float64, 0, len(points))
	for _, p := range points {
		ok := true
		for d := 0; d < dims; d++ {
			if p[d] > ref[d] {
				ok = false
				break
			}
		}
		if ok {
			inside = append(inside, p)
		}
	}
	if len(inside) == 0 {
		return 0
	}

	volume := 0.0
	stack := []hvTask{{points: inside, dim: 0, weight: 1}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d := task.dim
		if d == dims-1 {
			lowest := math.Inf(1)
			for _, p := range task.points {
				lowest = math.Min(lowest, p[d])
			}
			volume += task.weight * (ref[d] - lowest)
			continue
		}

		slice := append([][]float64(nil), task.points...)
		sort.SliceStable(slice, func(a, b int) bool {
			return slice[a][d] > slice[b][d]
		})
		prev := ref[d]
		for i, p := range slice {
			dx := prev - p[d]
			if dx > 0 {
				stack = append(stack, hvTask{points: slice[i:], dim: d + 1, weight: task.weight * dx})
			}
			prev = p[d]
		}
	}
	return volume
}

// SchottSpacing returns the sample standard deviation (n-1 denominator) of
// nearest-neighbour Euclidean distances. Fewer than two points yield 0.
func SchottSpacing(points [][]float64) float64 {
	n := len(points)
	if n <= 1 {
		return 0
	}
	dists := make([]float64, n)
	for i := range points {
		best := math.Inf(1)
		for j := range points {
			if i == j {
				continue
			}
			best = math.Min(best, euclidean(points[i], points[j]))
		}
		dists[i] = best
	}
	mean := 0.0
	for _, d := range dists {
		mean += d
	}
	mean /= float64(n)
	ss := 0.0
	for _, d := range dists {
		ss += (d - mean) * (d - mean)
	}
	return math.Sqrt(ss / float64(n-1))
}

func euclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += (a[i] - b[i]) * (a[i] - b[i])
	}
	return math.Sqrt(s)
}

// FrontQuality normalizes front with bounds and computes hypervolume against
// the unit corner and Schott spacing.
func FrontQuality(front []MetricRecord, bounds Bounds) QualityMetrics {
	pts := make([][]float64, len(front))
	for i := range front {
		o := bounds.Normalize(front[i].Objectives())
		pts[i] = o[:]
	}
	ref := make([]float64, NumObjectives)
	for i := range ref {
		ref[i] = 1
	}
	return QualityMetrics{
		Hypervolume: Hypervolume(pts, ref),
		Spacing:     SchottSpacing(pts),
		RefPoint:    ref,
		FrontSize:   len(front),
	}
}

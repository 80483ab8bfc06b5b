package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHypervolume_TwoPointFront(t *testing.T) {
	points := [][]float64{{0.2, 0.6}, {0.6, 0.2}}
	assert.InDelta(t, 0.48, Hypervolume(points, []float64{1, 1}), 1e-12)
}

func TestHypervolume_BetterFrontHasHigherVolume(t *testing.T) {
	worse := [][]float64{{0.6, 0.6}}
	better := [][]float64{{0.4, 0.4}}
	assert.Greater(t, Hypervolume(better, nil), Hypervolume(worse, nil))
}

func TestHypervolume_ThreeDimensions(t *testing.T) {
	// GIVEN two boxes of volume 0.5 overlapping in a 0.25 cube
	points := [][]float64{{0, 0.5, 0}, {0.5, 0, 0}}

	// THEN the union is 0.5 + 0.5 - 0.25
	assert.InDelta(t, 0.75, Hypervolume(points, nil), 1e-12)
	assert.InDelta(t, 1.0, Hypervolume([][]float64{{0, 0, 0}}, nil), 1e-12)
}

func TestHypervolume_PointsOutsideReferenceIgnored(t *testing.T) {
	points := [][]float64{{0.5, 0.5}, {1.2, 0.0}}
	assert.InDelta(t, 0.25, Hypervolume(points, []float64{1, 1}), 1e-12)
	assert.Equal(t, 0.0, Hypervolume(nil, nil))
}

func TestSchottSpacing(t *testing.T) {
	spread := [][]float64{{0.0, 0.0}, {0.5, 0.1}, {0.9, 0.2}}
	clustered := [][]float64{{0.0, 0.0}, {0.01, 0.01}, {0.02, 0.02}}
	assert.Less(t, SchottSpacing(clustered), SchottSpacing(spread))

	even := [][]float64{{0, 0}, {1, 0}, {2, 0}}
	assert.InDelta(t, 0.0, SchottSpacing(even), 1e-12)
	assert.Equal(t, 0.0, SchottSpacing([][]float64{{0.3, 0.3}}))
}

func TestFrontQuality_UsesUnitReference(t *testing.T) {
	front := []MetricRecord{rec("a", 0, 1, 0), rec("b", 1, 0, 0)}
	q := FrontQuality(front, NewBounds(front))

	assert.Equal(t, 2, q.FrontSize)
	assert.Equal(t, []float64{1, 1, 1}, q.RefPoint)
	// Normalized points (0,1,0) and (1,0,0) only touch the reference box.
	assert.InDelta(t, 0.0, q.Hypervolume, 1e-12)
}

package selector

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sram-ecc/eccsel/selector/diag"
)

func argsort(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	return idx
}

func TestNormalizeNESII_SmallSampleFallsBackToMinMax(t *testing.T) {
	rec := diag.NewRecorder()
	values := []float64{1, 2, 3, 4}

	res := NormalizeNESII(values, rec)

	assert.Equal(t, MethodMinMax, res.Method)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, argsort(values), argsort(res.Scores))
	assert.InDelta(t, 0.0, res.Scores[0], 1e-12)
	assert.InDelta(t, 100.0, res.Scores[3], 1e-12)
	assert.True(t, rec.Warned(diag.KindNESIIFallback))
}

func TestNormalizeNESII_ScalingPreservesOrder(t *testing.T) {
	values := []float64{1, 2, 3}
	scaled := []float64{0.5, 1, 1.5}

	a := NormalizeNESII(values, diag.NewRecorder())
	b := NormalizeNESII(scaled, diag.NewRecorder())

	assert.Equal(t, argsort(a.Scores), argsort(b.Scores))
}

func TestNormalizeNESII_WinsorClipsOutliers(t *testing.T) {
	// GIVEN 0..19 plus one large outlier
	values := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		values = append(values, float64(i))
	}
	values = append(values, 1000)
	rec := diag.NewRecorder()

	res := NormalizeNESII(values, rec)

	// THEN the band is [1, 19] and the outlier saturates
	assert.Equal(t, MethodWinsor, res.Method)
	assert.InDelta(t, 1.0, res.P5, 1e-12)
	assert.InDelta(t, 19.0, res.P95, 1e-12)
	assert.InDelta(t, 0.0, res.Scores[0], 1e-12)
	assert.InDelta(t, 50.0, res.Scores[10], 1e-12)
	assert.InDelta(t, 100.0, res.Scores[20], 1e-12)
	assert.False(t, rec.Warned(diag.KindNESIIFallback))
}

func TestNormalizeNESII_DegenerateScoresNeutral(t *testing.T) {
	rec := diag.NewRecorder()

	res := NormalizeNESII([]float64{5, 5, 5}, rec)

	assert.Equal(t, StatusDegenerateScale, res.Status)
	for _, s := range res.Scores {
		assert.Equal(t, NeutralNESII, s)
	}
	assert.True(t, rec.Warned(diag.KindNESIIDegenerate))
}

func TestNormalizeNESII_WarnsOncePerRecorder(t *testing.T) {
	rec := diag.NewRecorder()

	NormalizeNESII([]float64{1, 2}, rec)
	NormalizeNESII([]float64{3, 4}, rec)

	summary := diag.Summarize(rec.Records)
	assert.Equal(t, 1, summary.ByKind[diag.KindNESIIFallback])
}

func TestNormalizeNESII_ScoresBounded(t *testing.T) {
	values := []float64{-3, 0.1, 7, 7, 1e6, -1e6, 42}
	res := NormalizeNESII(values, diag.NewRecorder())
	for i, s := range res.Scores {
		assert.GreaterOrEqual(t, s, 0.0, "score %d", i)
		assert.LessOrEqual(t, s, 100.0, "score %d", i)
	}
}

func TestNormalizeNESII_Empty(t *testing.T) {
	res := NormalizeNESII(nil, diag.NewRecorder())
	require.Empty(t, res.Scores)
	assert.True(t, math.IsNaN(res.P5))
	assert.True(t, math.IsNaN(res.P95))
}

func TestPercentile(t *testing.T) {
	assert.InDelta(t, 2.5, Percentile([]float64{4, 1, 3, 2}, 50), 1e-12)
	assert.InDelta(t, 1.15, Percentile([]float64{1, 2, 3, 4}, 5), 1e-12)
	assert.Equal(t, 7.0, Percentile([]int{7}, 95))
	assert.True(t, math.IsNaN(Percentile([]float64{}, 50)))
}

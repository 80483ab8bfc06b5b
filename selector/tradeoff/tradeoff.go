// Package tradeoff quantifies the reliability/carbon exchange rate along a
// Pareto frontier: how many kilograms of CO2e each decade of FIT costs, with
// a bootstrap confidence interval.
package tradeoff

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sram-ecc/eccsel/selector"
	"github.com/sram-ecc/eccsel/selector/diag"
)

// DefaultResamples is the bootstrap sample count.
const DefaultResamples = 10000

// MinPoints is the smallest frontier a regression is attempted on.
const MinPoints = 3

// Config controls the analysis.
type Config struct {
	Resamples int
	// Seed overrides the bootstrap key; nil derives it from ScenarioHash.
	Seed         *int64
	ScenarioHash string
	Basis        string
}

// Exchange is the carbon cost of reliability along the frontier.
type Exchange struct {
	KgPerDecade float64    `json:"kg_per_decade"`
	Mean        float64    `json:"mean"`
	Std         float64    `json:"std"`
	CI95        [2]float64 `json:"ci95"`
	R           float64    `json:"r"`
	P           float64    `json:"p"`
	N           int        `json:"N"`
	Resamples   int        `json:"resamples"`
	Skipped     int        `json:"skipped_resamples"`
}

// Quality is the 2-D frontier quality in normalized (FIT, carbon) space.
type Quality struct {
	Hypervolume float64   `json:"hypervolume"`
	RefPoint    []float64 `json:"ref_point_norm"`
	Spacing     float64   `json:"spacing"`
}

// Provenance records where the numbers came from.
type Provenance struct {
	Basis        string   `json:"basis"`
	ScenarioHash string   `json:"scenario_hash,omitempty"`
	Seed         int64    `json:"seed"`
	Notes        []string `json:"notes"`
}

// Result is the JSON document written by WriteJSON.
type Result struct {
	Provenance Provenance `json:"provenance"`
	Exchange   struct {
		FITVsCarbon Exchange `json:"fit_vs_carbon"`
	} `json:"exchange"`
	Quality Quality `json:"quality"`
}

// Analyze regresses carbon on log10(FIT) over points sorted by carbon and
// bootstraps the slope. Points with non-positive FIT cannot be placed on a
// log axis and are dropped with a note.
func Analyze(points []Point, cfg Config, rec *diag.Recorder) *Result {
	if cfg.Resamples <= 0 {
		cfg.Resamples = DefaultResamples
	}
	if cfg.Basis == "" {
		cfg.Basis = "system"
	}
	key := selector.KeyFromHash(cfg.ScenarioHash)
	if cfg.Seed != nil {
		key = selector.SelectionKey(*cfg.Seed)
	}
	rng := selector.NewPartitionedRNG(key)

	res := &Result{
		Provenance: Provenance{
			Basis:        cfg.Basis,
			ScenarioHash: cfg.ScenarioHash,
			Seed:         rng.SubsystemSeed(selector.SubsystemTradeoff),
			Notes:        []string{},
		},
		Quality: Quality{RefPoint: []float64{1, 1}},
	}

	pts := make([]Point, 0, len(points))
	for _, p := range points {
		if p.FIT <= 0 || math.IsNaN(p.FIT) || math.IsNaN(p.CarbonKg) {
			res.Provenance.Notes = append(res.Provenance.Notes, fmt.Sprintf("dropped %q: FIT %g not on log axis", p.Code, p.FIT))
			continue
		}
		pts = append(pts, p)
	}
	sort.SliceStable(pts, func(a, b int) bool { return pts[a].CarbonKg < pts[b].CarbonKg })

	ex := &res.Exchange.FITVsCarbon
	ex.N = len(pts)
	ex.Resamples = cfg.Resamples
	res.Quality.Hypervolume, res.Quality.Spacing = frontierQuality(pts)

	if len(pts) < MinPoints {
		rec.WarnOnce(diag.KindTradeoffShort, "trade-off analysis needs at least %d frontier points, got %d", MinPoints, len(pts))
		res.Provenance.Notes = append(res.Provenance.Notes, "too few points for regression")
		return res
	}

	x := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		x[i] = math.Log10(p.FIT)
		y[i] = p.CarbonKg
	}
	slope, ok := fitSlope(x, y)
	if !ok {
		res.Provenance.Notes = append(res.Provenance.Notes, "all points share one FIT decade; slope undefined")
		return res
	}
	ex.KgPerDecade = slope
	ex.R = stat.Correlation(x, y, nil)
	if math.IsNaN(ex.R) {
		// Constant carbon: no linear association.
		ex.R = 0
	}
	ex.P = pearsonP(ex.R, len(x))

	slopes, skipped := bootstrapSlopes(x, y, cfg.Resamples, rng)
	ex.Skipped = skipped
	if len(slopes) > 1 {
		ex.Mean = stat.Mean(slopes, nil)
		ex.Std = stat.StdDev(slopes, nil)
		ex.CI95 = [2]float64{selector.Percentile(slopes, 2.5), selector.Percentile(slopes, 97.5)}
	}
	logrus.Debugf("tradeoff: N=%d slope=%.4g kg/decade r=%.3f ci95=[%.4g, %.4g]",
		ex.N, ex.KgPerDecade, ex.R, ex.CI95[0], ex.CI95[1])
	return res
}

// fitSlope returns the least-squares slope of y on x, or false when x has
// no spread.
func fitSlope(x, y []float64) (float64, bool) {
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi == lo {
		return 0, false
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta, true
}

// pearsonP is the two-sided p-value of r under a normal approximation of the
// t statistic.
func pearsonP(r float64, n int) float64 {
	if n < MinPoints || math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(t)))
}

// bootstrapSlopes resamples (x, y) pairs with replacement. Draws in which
// every x coincides carry no slope and are skipped.
func bootstrapSlopes(x, y []float64, resamples int, rng *selector.PartitionedRNG) ([]float64, int) {
	r := rng.ForSubsystem(selector.SubsystemTradeoff)
	n := len(x)
	bx := make([]float64, n)
	by := make([]float64, n)
	slopes := make([]float64, 0, resamples)
	skipped := 0
	for i := 0; i < resamples; i++ {
		for j := 0; j < n; j++ {
			k := r.Intn(n)
			bx[j], by[j] = x[k], y[k]
		}
		s, ok := fitSlope(bx, by)
		if !ok {
			skipped++
			continue
		}
		slopes = append(slopes, s)
	}
	return slopes, skipped
}

// frontierQuality normalizes (FIT, carbon) to the unit square, keeps the
// non-dominated points and returns their hypervolume and spacing.
func frontierQuality(pts []Point) (float64, float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	raw := make([][2]float64, len(pts))
	for i, p := range pts {
		raw[i] = [2]float64{p.FIT, p.CarbonKg}
	}
	for d := 0; d < 2; d++ {
		lo, hi := raw[0][d], raw[0][d]
		for _, p := range raw {
			lo, hi = math.Min(lo, p[d]), math.Max(hi, p[d])
		}
		span := hi - lo
		if span == 0 {
			span = 1
		}
		for i := range raw {
			raw[i][d] = (raw[i][d] - lo) / span
		}
	}

	nd := make([][]float64, 0, len(raw))
	for i, p := range raw {
		dominated := false
		for j, q := range raw {
			if i != j && q[0] <= p[0] && q[1] <= p[1] && (q[0] < p[0] || q[1] < p[1]) {
				dominated = true
				break
			}
		}
		if !dominated {
			nd = append(nd, []float64{p[0], p[1]})
		}
	}
	return selector.Hypervolume(nd, []float64{1, 1}), selector.SchottSpacing(nd)
}

// WriteJSON writes res to path, creating parent directories.
func WriteJSON(path string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling trade-off result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing trade-off result: %w", err)
	}
	return nil
}

package report

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sram-ecc/eccsel/selector"
	"github.com/sram-ecc/eccsel/selector/diag"
)

type stubSource map[string]selector.MetricRecord

func (s stubSource) ComputeMetrics(code string, _ selector.Scenario) (selector.MetricRecord, error) {
	r, ok := s[code]
	if !ok {
		return selector.MetricRecord{}, &selector.LookupError{Kind: "candidate", Key: code}
	}
	return r, nil
}

func scenario() selector.Scenario {
	sc := selector.DefaultScenario()
	sc.NodeNm = 14
	sc.VDD = 0.8
	sc.TempC = selector.Float(75)
	sc.CapacityGiB = 8
	sc.CI = selector.Float(0.55)
	sc.BitcellUm2 = 0.04
	return sc
}

func selectFixture(t *testing.T, sc selector.Scenario) *selector.Result {
	t.Helper()
	src := stubSource{
		"a": {Code: "a", FIT: 100, CarbonKg: 1, LatencyNs: 1.0, ESII: 3, Extras: map[string]float64{selector.ExtraFITBase: 500}},
		"b": {Code: "b", FIT: 50, CarbonKg: 2, LatencyNs: 1.3, ESII: 2, Extras: map[string]float64{selector.ExtraFITBase: 500, "area_mm2": 0.5}},
		"c": {Code: "c", FIT: 200, CarbonKg: 3, LatencyNs: 1.6, ESII: 1, Notes: "dominated, with comma"},
	}
	res, err := selector.Select(src, []string{"a", "b", "c"}, sc, selector.WithRecorder(diag.NewRecorder()))
	require.NoError(t, err)
	return res
}

func readCSV(t *testing.T, path string) []map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(row))
		for i, col := range rows[0] {
			m[col] = row[i]
		}
		out = append(out, m)
	}
	return out
}

func TestWriteCandidatesCSV_ColumnsAndViolations(t *testing.T) {
	// GIVEN a FIT ceiling that b alone meets
	sc := scenario()
	sc.Constraints.FITMax = selector.Float(60)
	res := selectFixture(t, sc)
	path := filepath.Join(t.TempDir(), "cand.csv")

	// WHEN candidates are written
	require.NoError(t, WriteCandidatesCSV(path, res))
	rows := readCSV(t, path)

	// THEN every record appears with its violations as JSON and the run hash
	require.Len(t, rows, 3)
	byCode := map[string]map[string]string{}
	for _, r := range rows {
		byCode[r["code"]] = r
		assert.Equal(t, res.ScenarioHash, r["scenario_hash"])
	}
	var v []string
	require.NoError(t, json.Unmarshal([]byte(byCode["b"]["violations"]), &v))
	assert.Empty(t, v)
	require.NoError(t, json.Unmarshal([]byte(byCode["a"]["violations"]), &v))
	assert.Equal(t, []string{selector.ConstraintFITMax}, v)

	assert.Equal(t, "0.5", byCode["b"]["area_mm2"])
	assert.Equal(t, "", byCode["a"]["area_mm2"])
	assert.Equal(t, "dominated, with comma", byCode["c"]["notes"])
}

func TestWriteParetoCSV_MatchesCandidateValues(t *testing.T) {
	res := selectFixture(t, scenario())
	dir := t.TempDir()
	candPath := filepath.Join(dir, "cand.csv")
	paretoPath := filepath.Join(dir, "pareto.csv")

	require.NoError(t, WriteCandidatesCSV(candPath, res))
	require.NoError(t, WriteParetoCSV(paretoPath, res))

	cands := map[string]map[string]string{}
	for _, r := range readCSV(t, candPath) {
		cands[r["code"]] = r
	}
	pareto := readCSV(t, paretoPath)
	require.Len(t, pareto, 2)
	for _, p := range pareto {
		c, ok := cands[p["code"]]
		require.True(t, ok, p["code"])
		for _, key := range []string{"FIT", "carbon_kg", "latency_ns"} {
			assert.Equal(t, c[key], p[key])
		}
		assert.Equal(t, "inf", p["crowding"])
	}
}

func TestWriteParetoCSV_RewriteReplacesContent(t *testing.T) {
	// GIVEN a path already holding a candidate CSV
	res := selectFixture(t, scenario())
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCandidatesCSV(path, res))

	// WHEN the frontier is written over it
	err := WriteParetoCSV(path, res)

	// THEN the write succeeds and only the frontier rows remain
	require.NoError(t, err)
	assert.Len(t, readCSV(t, path), len(res.Pareto))
}

func TestWriteCandidatesCSV_MissingDirectory(t *testing.T) {
	res := selectFixture(t, scenario())

	err := WriteCandidatesCSV(filepath.Join(t.TempDir(), "absent", "cand.csv"), res)

	assert.Error(t, err)
}

func TestWriteSummaryJSON_NoCandidatesEncodesNulls(t *testing.T) {
	sc := scenario()
	sc.Constraints.CarbonKgMax = selector.Float(0.5)
	res := selectFixture(t, sc)
	path := filepath.Join(t.TempDir(), "summary.json")

	require.NoError(t, WriteSummaryJSON(path, sc, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Nil(t, doc["best"])
	assert.Nil(t, doc["decision"])
	assert.Equal(t, []any{}, doc["pareto"])
	norm := doc["normalization"].(map[string]any)
	assert.Nil(t, norm["p5"])
	assert.Nil(t, norm["p95"])
	assert.Equal(t, res.ScenarioHash, doc["scenario_hash"])
	diags := doc["diagnostics"].(map[string]any)
	assert.Equal(t, float64(1), diags["by_kind"].(map[string]any)[diag.KindNoCandidates])
}

func TestNewSummary_KneeDecision(t *testing.T) {
	res := selectFixture(t, scenario())

	s := NewSummary(scenario(), res)

	require.NotNil(t, s.Best)
	require.NotNil(t, s.Decision)
	assert.Equal(t, string(selector.ModeKnee), s.Decision.Mode)
	assert.Nil(t, s.Decision.Feasible)
	assert.Equal(t, []string{"a", "b"}, s.Pareto)
	assert.Equal(t, res.RunID, s.RunID)
	assert.Nil(t, s.Best.Crowding, "two-member front has infinite crowding")
}

func TestRunMetrics_ObserveAndWrite(t *testing.T) {
	res := selectFixture(t, scenario())
	m := NewRunMetrics()

	m.Observe(res)
	m.Observe(res)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.candidates))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.frontier))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.objectives.WithLabelValues("b", selector.KeyFIT)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selected.WithLabelValues(res.Decision.Code, string(res.Decision.Mode), res.RunID)))

	path := filepath.Join(t.TempDir(), "eccsel.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "eccsel_frontier_size 2"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "inf", formatFloat(math.Inf(1)))
	assert.Equal(t, "nan", formatFloat(math.NaN()))
	assert.Equal(t, "1.5e-10", formatFloat(1.5e-10))
	assert.Equal(t, "2", formatFloat(2))
}

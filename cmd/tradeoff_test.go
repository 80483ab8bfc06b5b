package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sram-ecc/eccsel/selector"
	"github.com/sram-ecc/eccsel/selector/model"
	"github.com/sram-ecc/eccsel/selector/tradeoff"
)

func TestRunTradeoff_ReadsSelectReport(t *testing.T) {
	// GIVEN a Pareto CSV written by select under heavy MBU
	dir := t.TempDir()
	pareto := filepath.Join(dir, "pareto.csv")
	sc := referenceScenario()
	sc.MBU = selector.MBUHeavy
	sel, err := runSelect(sc, threeCodes, "", selectOutputs{Pareto: pareto})
	require.NoError(t, err)

	// WHEN the trade-off is analyzed
	out := filepath.Join(dir, "tradeoff", "result.json")
	res, err := runTradeoff(pareto, out, tradeoff.Config{Resamples: 200})

	// THEN every frontier point is used and the scenario hash carries through
	require.NoError(t, err)
	assert.Equal(t, len(sel.Pareto), res.Exchange.FITVsCarbon.N)
	assert.Equal(t, sel.ScenarioHash, res.Provenance.ScenarioHash)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "exchange")
}

func TestRunTradeoff_SeedOverridesHash(t *testing.T) {
	dir := t.TempDir()
	pareto := filepath.Join(dir, "pareto.csv")
	sc := referenceScenario()
	sc.MBU = selector.MBUHeavy
	_, err := runSelect(sc, threeCodes, "", selectOutputs{Pareto: pareto})
	require.NoError(t, err)

	seed := int64(7)
	a, err := runTradeoff(pareto, "", tradeoff.Config{Resamples: 50, Seed: &seed})
	require.NoError(t, err)
	b, err := runTradeoff(pareto, "", tradeoff.Config{Resamples: 50})
	require.NoError(t, err)

	assert.Equal(t, selector.NewPartitionedRNG(selector.SelectionKey(seed)).SubsystemSeed(selector.SubsystemTradeoff), a.Provenance.Seed)
	assert.NotEqual(t, a.Provenance.Seed, b.Provenance.Seed)
}

func TestRunTradeoff_MissingFile(t *testing.T) {
	_, err := runTradeoff(filepath.Join(t.TempDir(), "absent.csv"), "", tradeoff.Config{})

	assert.Error(t, err)
}

func TestListCodes_ShowsRegistry(t *testing.T) {
	cal, err := model.DefaultCalibration()
	require.NoError(t, err)
	reg := model.NewCalculator(cal).Registry()

	var buf strings.Builder
	listCodes(&buf, reg)

	for _, code := range reg.Codes() {
		assert.Contains(t, buf.String(), code)
	}
}

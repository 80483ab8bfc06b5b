package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sram-ecc/eccsel/selector"
)

var threeCodes = []string{"sec-ded-64", "sec-daec-64", "taec-64"}

const referenceYAML = `node_nm: 14
vdd: 0.8
temp_c: 75
capacity_gib: 8
ci_kg_per_kwh: 0.55
bitcell_um2: 0.040
mbu: heavy
constraints:
  fit_max: 1000
`

func referenceScenario() selector.Scenario {
	sc := selector.DefaultScenario()
	sc.NodeNm = 14
	sc.VDD = 0.8
	sc.TempC = selector.Float(75)
	sc.CapacityGiB = 8
	sc.CI = selector.Float(0.55)
	sc.BitcellUm2 = 0.040
	return sc
}

// newScenarioCmd returns a throwaway command carrying the scenario flags, so
// each test starts with no flag marked as changed.
func newScenarioCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	registerScenarioFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func withScenarioPath(t *testing.T, path string) {
	t.Helper()
	old := scenarioPath
	scenarioPath = path
	t.Cleanup(func() { scenarioPath = old })
}

func TestBuildScenario_FlagsOnly(t *testing.T) {
	// GIVEN every required scenario flag on the command line
	withScenarioPath(t, "")
	c := newScenarioCmd(t, "--node", "14", "--vdd", "0.8", "--temp", "75", "--capacity-gib", "8",
		"--ci", "0.55", "--bitcell-um2", "0.040", "--mbu", "Heavy")

	// WHEN the scenario is built
	sc, err := buildScenario(c)

	// THEN it carries the flags plus the defaults for everything else
	require.NoError(t, err)
	want := referenceScenario()
	want.MBU = selector.MBUHeavy
	assert.Equal(t, want, sc)
	assert.NoError(t, sc.Validate())
}

func TestBuildScenario_ExplicitFlagsOverrideFile(t *testing.T) {
	// GIVEN a scenario file with heavy MBU and a FIT ceiling
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(referenceYAML), 0644))
	withScenarioPath(t, path)

	// WHEN --mbu and --constraints are set, and --vdd is left at its zero default
	c := newScenarioCmd(t, "--mbu", "light", "--constraints", "latency_ns_max=1.2")
	sc, err := buildScenario(c)

	// THEN only the explicit flags replace file values; constraints merge per key
	require.NoError(t, err)
	assert.Equal(t, selector.MBULight, sc.MBU)
	assert.Equal(t, 0.8, sc.VDD)
	require.NotNil(t, sc.Constraints.FITMax)
	assert.Equal(t, 1000.0, *sc.Constraints.FITMax)
	require.NotNil(t, sc.Constraints.LatencyNsMax)
	assert.Equal(t, 1.2, *sc.Constraints.LatencyNsMax)
}

func TestBuildScenario_MalformedConstraints(t *testing.T) {
	withScenarioPath(t, "")
	c := newScenarioCmd(t, "--constraints", "latency=1")

	_, err := buildScenario(c)

	var verr *selector.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "constraints", verr.Field)
}

func TestBuildScenario_MissingFileIsError(t *testing.T) {
	withScenarioPath(t, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := buildScenario(newScenarioCmd(t))

	assert.Error(t, err)
}

func TestRunSelect_WritesEveryOutput(t *testing.T) {
	// GIVEN the reference scenario and all four output paths
	dir := t.TempDir()
	out := selectOutputs{
		Candidates: filepath.Join(dir, "candidates.csv"),
		Pareto:     filepath.Join(dir, "pareto.csv"),
		Summary:    filepath.Join(dir, "summary.json"),
		Metrics:    filepath.Join(dir, "eccsel.prom"),
	}

	// WHEN selecting
	res, err := runSelect(referenceScenario(), threeCodes, "", out)

	// THEN a code is recommended and each file is written
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Contains(t, threeCodes, res.Best.Code)
	for _, p := range []string{out.Candidates, out.Pareto, out.Summary, out.Metrics} {
		data, err := os.ReadFile(p)
		require.NoError(t, err, p)
		assert.NotEmpty(t, data, p)
	}
	prom, err := os.ReadFile(out.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "eccsel_runs_total 1")
	summary, err := os.ReadFile(out.Summary)
	require.NoError(t, err)
	assert.Contains(t, string(summary), res.ScenarioHash)
}

func TestRunSelect_DefaultsToWholeRegistry(t *testing.T) {
	res, err := runSelect(referenceScenario(), nil, "", selectOutputs{})

	require.NoError(t, err)
	assert.Len(t, res.Codes, 5)
}

func TestRunSelect_LatencyCeiling(t *testing.T) {
	sc := referenceScenario()
	sc.Constraints.LatencyNsMax = selector.Float(1.2)

	res, err := runSelect(sc, threeCodes, "", selectOutputs{})

	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Equal(t, "sec-ded-64", res.Best.Code)
}

func TestRunSelect_InvalidScenarioWritesNothing(t *testing.T) {
	// GIVEN a scenario missing its voltage
	sc := referenceScenario()
	sc.VDD = 0
	path := filepath.Join(t.TempDir(), "candidates.csv")

	// WHEN selecting
	_, err := runSelect(sc, threeCodes, "", selectOutputs{Candidates: path})

	// THEN validation fails before any file is created
	var verr *selector.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "vdd", verr.Field)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunSelect_UnknownCandidate(t *testing.T) {
	_, err := runSelect(referenceScenario(), []string{"sec-ded-64", "hamming-7-4"}, "", selectOutputs{})

	var lerr *selector.LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "hamming-7-4", lerr.Key)
}

func TestRunSelect_BadCalibrationPath(t *testing.T) {
	_, err := runSelect(referenceScenario(), threeCodes, filepath.Join(t.TempDir(), "none.yaml"), selectOutputs{})

	assert.Error(t, err)
}

func TestSelectCommand_PrintsRecommendation(t *testing.T) {
	// GIVEN the select subcommand with light MBU, whose frontier is sec-ded-64 alone
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	rootCmd.SetArgs([]string{"select",
		"--node", "14", "--vdd", "0.8", "--temp", "75", "--capacity-gib", "8",
		"--ci", "0.55", "--bitcell-um2", "0.040", "--mbu", "light",
		"--codes", strings.Join(threeCodes, ","), "--log", "error"})

	// WHEN the CLI runs
	require.NoError(t, rootCmd.Execute())

	// THEN stdout holds only the recommended code
	assert.Equal(t, "sec-ded-64\n", buf.String())
}

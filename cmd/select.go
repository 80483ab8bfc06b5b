package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sram-ecc/eccsel/selector"
	"github.com/sram-ecc/eccsel/selector/diag"
	"github.com/sram-ecc/eccsel/selector/model"
	"github.com/sram-ecc/eccsel/selector/report"
)

var (
	// Scenario flags; each overrides the --scenario file only when set
	nodeNm      int     // Process node in nm
	vdd         float64 // Supply voltage in V
	tempC       float64 // Junction temperature in Celsius
	capacityGiB float64 // Memory capacity in GiB
	ciKgPerKWh  float64 // Grid carbon intensity in kg CO2e/kWh
	bitcellUm2  float64 // Bitcell area in um^2
	altitudeKm  float64 // Altitude in km
	latitudeDeg float64 // Geomagnetic latitude in degrees
	fluxRel     float64 // Neutron flux relative to sea level; 0 derives it from location
	mbuSeverity string  // Multi-bit-upset severity class
	scrubS      float64 // Scrub interval in seconds
	lifetimeH   float64 // Operational lifetime in hours; 0 charges one scrub sweep
	ciSource    string  // Free-text provenance of the carbon intensity

	// Selection inputs and outputs
	scenarioPath    string   // Scenario YAML file
	codes           []string // Candidate codes; empty evaluates the whole registry
	constraintsExpr string   // Hard ceilings as key=value,...
	calibrationPath string   // Calibration YAML; empty uses the embedded table
	candidatesPath  string   // Candidate CSV output
	paretoPath      string   // Pareto CSV output
	summaryPath     string   // Summary JSON output
	metricsPath     string   // Prometheus textfile output
)

// recorder lives for the whole process so fallback warnings are logged once.
var recorder = diag.NewRecorder()

// selectOutputs names the files written after a selection; empty paths are skipped.
type selectOutputs struct {
	Candidates string
	Pareto     string
	Summary    string
	Metrics    string
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Recommend an ECC configuration for one operating scenario",
	Run: func(cmd *cobra.Command, args []string) {
		sc, err := buildScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		out := selectOutputs{
			Candidates: candidatesPath,
			Pareto:     paretoPath,
			Summary:    summaryPath,
			Metrics:    metricsPath,
		}
		res, err := runSelect(sc, codes, calibrationPath, out)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if res.Best == nil {
			logrus.Warnf("no candidate satisfies the constraints; nothing recommended")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Best.Code)
	},
}

// buildScenario starts from the --scenario file (or the defaults) and applies
// every scenario flag the user set explicitly.
func buildScenario(cmd *cobra.Command) (selector.Scenario, error) {
	sc := selector.DefaultScenario()
	if scenarioPath != "" {
		loaded, err := selector.LoadScenario(scenarioPath)
		if err != nil {
			return sc, err
		}
		sc = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("node") {
		sc.NodeNm = nodeNm
	}
	if flags.Changed("vdd") {
		sc.VDD = vdd
	}
	if flags.Changed("temp") {
		sc.TempC = selector.Float(tempC)
	}
	if flags.Changed("capacity-gib") {
		sc.CapacityGiB = capacityGiB
	}
	if flags.Changed("ci") {
		sc.CI = selector.Float(ciKgPerKWh)
	}
	if flags.Changed("bitcell-um2") {
		sc.BitcellUm2 = bitcellUm2
	}
	if flags.Changed("altitude-km") {
		sc.AltitudeKm = altitudeKm
	}
	if flags.Changed("latitude") {
		sc.LatitudeDeg = latitudeDeg
	}
	if flags.Changed("flux-rel") {
		sc.FluxRel = fluxRel
	}
	if flags.Changed("mbu") {
		sc.MBU = strings.ToLower(mbuSeverity)
	}
	if flags.Changed("scrub-s") {
		sc.ScrubS = scrubS
	}
	if flags.Changed("lifetime-h") {
		sc.LifetimeH = lifetimeH
	}
	if flags.Changed("ci-source") {
		sc.CISource = ciSource
	}
	if flags.Changed("constraints") {
		c, err := selector.ParseConstraints(constraintsExpr)
		if err != nil {
			return sc, err
		}
		if c.FITMax != nil {
			sc.Constraints.FITMax = c.FITMax
		}
		if c.LatencyNsMax != nil {
			sc.Constraints.LatencyNsMax = c.LatencyNsMax
		}
		if c.CarbonKgMax != nil {
			sc.Constraints.CarbonKgMax = c.CarbonKgMax
		}
	}
	return sc, nil
}

// runSelect evaluates the candidates under sc and writes every requested output.
func runSelect(sc selector.Scenario, candidates []string, calibration string, out selectOutputs) (*selector.Result, error) {
	cal, err := loadCalibration(calibration)
	if err != nil {
		return nil, err
	}
	calc := model.NewCalculator(cal)
	if len(candidates) == 0 {
		candidates = calc.Registry().Codes()
	}
	logrus.Infof("node=%dnm vdd=%gV temp=%gC capacity=%gGiB ci=%g (%s) mbu=%s scrub=%gs candidates=%v",
		sc.NodeNm, sc.VDD, sc.Temperature(), sc.CapacityGiB, sc.CarbonIntensity(), sc.CISource, sc.MBU, sc.ScrubS, candidates)

	res, err := selector.Select(calc, candidates, sc, selector.WithRecorder(recorder))
	if err != nil {
		return nil, err
	}

	if out.Candidates != "" {
		if err := report.WriteCandidatesCSV(out.Candidates, res); err != nil {
			return nil, err
		}
		logrus.Infof("wrote candidates to %s", out.Candidates)
	}
	if out.Pareto != "" {
		if err := report.WriteParetoCSV(out.Pareto, res); err != nil {
			return nil, err
		}
		logrus.Infof("wrote Pareto frontier to %s", out.Pareto)
	}
	if out.Summary != "" {
		if err := report.WriteSummaryJSON(out.Summary, sc, res); err != nil {
			return nil, err
		}
		logrus.Infof("wrote summary to %s", out.Summary)
	}
	if out.Metrics != "" {
		m := report.NewRunMetrics()
		m.Observe(res)
		if err := m.WriteTextfile(out.Metrics); err != nil {
			return nil, err
		}
		logrus.Infof("wrote metrics to %s", out.Metrics)
	}
	return res, nil
}

func loadCalibration(path string) (*model.Calibration, error) {
	if path == "" {
		return model.DefaultCalibration()
	}
	return model.LoadCalibration(path)
}

// registerScenarioFlags binds the scenario flags to cmd.
func registerScenarioFlags(cmd *cobra.Command) {
	def := selector.DefaultScenario()
	cmd.Flags().IntVar(&nodeNm, "node", 0, "Process node in nm")
	cmd.Flags().Float64Var(&vdd, "vdd", 0, "Supply voltage in V")
	cmd.Flags().Float64Var(&tempC, "temp", 0, "Junction temperature in Celsius")
	cmd.Flags().Float64Var(&capacityGiB, "capacity-gib", 0, "Memory capacity in GiB")
	cmd.Flags().Float64Var(&ciKgPerKWh, "ci", 0, "Grid carbon intensity in kg CO2e/kWh")
	cmd.Flags().Float64Var(&bitcellUm2, "bitcell-um2", 0, "Bitcell area in um^2")
	cmd.Flags().Float64Var(&altitudeKm, "altitude-km", def.AltitudeKm, "Altitude in km")
	cmd.Flags().Float64Var(&latitudeDeg, "latitude", def.LatitudeDeg, "Geomagnetic latitude in degrees")
	cmd.Flags().Float64Var(&fluxRel, "flux-rel", def.FluxRel, "Neutron flux relative to sea level (0 = derive from altitude and latitude)")
	cmd.Flags().StringVar(&mbuSeverity, "mbu", def.MBU, "Multi-bit-upset severity (light, moderate, heavy)")
	cmd.Flags().Float64Var(&scrubS, "scrub-s", def.ScrubS, "Scrub interval in seconds")
	cmd.Flags().Float64Var(&lifetimeH, "lifetime-h", def.LifetimeH, "Operational lifetime in hours (0 = one scrub sweep)")
	cmd.Flags().StringVar(&ciSource, "ci-source", def.CISource, "Provenance of the carbon intensity value")
	cmd.Flags().StringVar(&constraintsExpr, "constraints", "", "Hard ceilings as key=value,... (fit_max, latency_ns_max, carbon_kg_max)")
}

func init() {
	registerScenarioFlags(selectCmd)
	selectCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file; explicitly set flags override it")
	selectCmd.Flags().StringSliceVar(&codes, "codes", nil, "Candidate codes (default: every registered code)")
	selectCmd.Flags().StringVar(&calibrationPath, "calibration", "", "Calibration YAML (default: embedded table)")
	selectCmd.Flags().StringVar(&candidatesPath, "emit-candidates", "", "Write every evaluated candidate to this CSV")
	selectCmd.Flags().StringVar(&paretoPath, "report", "", "Write the Pareto frontier to this CSV")
	selectCmd.Flags().StringVar(&summaryPath, "summary", "", "Write the decision summary to this JSON file")
	selectCmd.Flags().StringVar(&metricsPath, "metrics-textfile", "", "Write run metrics in Prometheus text format to this file")
}

package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sram-ecc/eccsel/selector/tradeoff"
)

var (
	tradeoffPareto    string // Pareto CSV written by select --report
	tradeoffOut       string // Trade-off JSON output
	tradeoffResamples int    // Bootstrap resamples
	tradeoffSeed      int64  // Bootstrap seed; unset derives it from the scenario hash
	tradeoffBasis     string // Normalization basis recorded in provenance
)

var tradeoffCmd = &cobra.Command{
	Use:   "tradeoff",
	Short: "Estimate the carbon cost per decade of FIT along a Pareto frontier",
	Run: func(cmd *cobra.Command, args []string) {
		if tradeoffPareto == "" {
			logrus.Fatalf("--pareto is required")
		}
		cfg := tradeoff.Config{Resamples: tradeoffResamples, Basis: tradeoffBasis}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = &tradeoffSeed
		}
		res, err := runTradeoff(tradeoffPareto, tradeoffOut, cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ex := res.Exchange.FITVsCarbon
		fmt.Fprintf(cmd.OutOrStdout(), "%.6g kg/decade (95%% CI %.6g..%.6g, N=%d)\n", ex.KgPerDecade, ex.CI95[0], ex.CI95[1], ex.N)
	},
}

// runTradeoff analyzes the frontier in paretoPath and writes the result to
// outPath when it is set. The CSV's scenario hash seeds the bootstrap unless
// cfg already carries one.
func runTradeoff(paretoPath, outPath string, cfg tradeoff.Config) (*tradeoff.Result, error) {
	frontier, err := tradeoff.LoadParetoCSV(paretoPath)
	if err != nil {
		return nil, err
	}
	if cfg.ScenarioHash == "" {
		cfg.ScenarioHash = frontier.ScenarioHash
	}
	res := tradeoff.Analyze(frontier.Points, cfg, recorder)
	if outPath != "" {
		if err := tradeoff.WriteJSON(outPath, res); err != nil {
			return nil, err
		}
		logrus.Infof("wrote trade-off analysis to %s", outPath)
	}
	return res, nil
}

func init() {
	tradeoffCmd.Flags().StringVar(&tradeoffPareto, "pareto", "", "Pareto CSV produced by select --report")
	tradeoffCmd.Flags().StringVar(&tradeoffOut, "out", "", "Write the trade-off analysis to this JSON file")
	tradeoffCmd.Flags().IntVar(&tradeoffResamples, "resamples", tradeoff.DefaultResamples, "Bootstrap resamples")
	tradeoffCmd.Flags().Int64Var(&tradeoffSeed, "seed", 0, "Bootstrap seed (default: derived from the scenario hash)")
	tradeoffCmd.Flags().StringVar(&tradeoffBasis, "basis", "system", "Normalization basis recorded in provenance")
}

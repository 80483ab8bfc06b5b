package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sram-ecc/eccsel/selector/model"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the registered ECC candidates",
	Run: func(cmd *cobra.Command, args []string) {
		cal, err := loadCalibration(calibrationPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		listCodes(cmd.OutOrStdout(), model.NewCalculator(cal).Registry())
	},
}

func listCodes(w io.Writer, reg *model.Registry) {
	fmt.Fprintf(w, "%-14s %-9s %5s %7s %11s\n", "CODE", "FAMILY", "WORD", "PARITY", "LATENCY_NS")
	for _, c := range reg.All() {
		fmt.Fprintf(w, "%-14s %-9s %5d %7d %11.3g\n", c.Code, c.Family, c.WordBits(), c.ParityBits, c.LatencyNs)
	}
}

func init() {
	codesCmd.Flags().StringVar(&calibrationPath, "calibration", "", "Calibration YAML (default: embedded table)")
}

// Package report writes selection results to flat files: per-candidate and
// frontier CSVs, a JSON summary, and a Prometheus textfile.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/sram-ecc/eccsel/selector"
)

// Leading CSV columns. Extension keys follow in sorted order, then the
// trailing columns.
var (
	leadingColumns = []string{
		"code", "FIT", "carbon_kg", "latency_ns", "ESII", "NESII",
		"GS", "Sr", "Sc", "Sl", "front_rank", "crowding",
	}
	trailingColumns = []string{"notes", "violations", "scenario_hash"}
)

// WriteCandidatesCSV writes every eligible record.
func WriteCandidatesCSV(path string, res *selector.Result) error {
	return writeRecordsCSV(path, res.Candidates, res.ScenarioHash)
}

// WriteParetoCSV writes the frontier in the same layout as the candidates.
func WriteParetoCSV(path string, res *selector.Result) error {
	return writeRecordsCSV(path, res.Pareto, res.ScenarioHash)
}

func writeRecordsCSV(path string, records []selector.MetricRecord, scenarioHash string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	writer := csv.NewWriter(file)
	extras := extraKeys(records)

	header := append(append(append([]string{}, leadingColumns...), extras...), trailingColumns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range records {
		violations, err := json.Marshal(nonNil(r.Violations))
		if err != nil {
			return fmt.Errorf("encoding violations for %s: %w", r.Code, err)
		}
		row := []string{
			r.Code,
			formatFloat(r.FIT),
			formatFloat(r.CarbonKg),
			formatFloat(r.LatencyNs),
			formatFloat(r.ESII),
			formatFloat(r.NESII),
			formatFloat(r.GS),
			formatFloat(r.Sr),
			formatFloat(r.Sc),
			formatFloat(r.Sl),
			strconv.Itoa(r.FrontRank),
			formatFloat(r.Crowding),
		}
		for _, k := range extras {
			if v, ok := r.Extra(k); ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, r.Notes, string(violations), scenarioHash)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", r.Code, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// extraKeys is the sorted union of extension keys across records.
func extraKeys(records []selector.MetricRecord) []string {
	seen := make(map[string]bool)
	for i := range records {
		for k := range records[i].Extras {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatFloat renders the shortest round-tripping form; infinities are "inf".
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package tradeoff

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Point is one frontier member in (FIT, carbon) space.
type Point struct {
	Code     string
	FIT      float64
	CarbonKg float64
}

// Frontier is a set of points read from a Pareto CSV.
type Frontier struct {
	Points       []Point
	ScenarioHash string
}

// LoadParetoCSV reads the frontier written by report.WriteParetoCSV.
// Column names are matched case-insensitively; a "code" column is optional.
// The scenario hash is taken from the first row when present.
func LoadParetoCSV(path string) (*Frontier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pareto CSV: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading pareto CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("pareto CSV %s is empty", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	fitCol, ok := col["fit"]
	if !ok {
		return nil, fmt.Errorf("pareto CSV %s: missing FIT column", path)
	}
	carbonCol, ok := col["carbon_kg"]
	if !ok {
		return nil, fmt.Errorf("pareto CSV %s: missing carbon_kg column", path)
	}
	codeCol, hasCode := col["code"]
	hashCol, hasHash := col["scenario_hash"]

	f := &Frontier{Points: make([]Point, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		fit, err := strconv.ParseFloat(row[fitCol], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing FIT %q: %w", i+1, row[fitCol], err)
		}
		carbon, err := strconv.ParseFloat(row[carbonCol], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing carbon_kg %q: %w", i+1, row[carbonCol], err)
		}
		p := Point{FIT: fit, CarbonKg: carbon}
		if hasCode {
			p.Code = row[codeCol]
		}
		if hasHash && f.ScenarioHash == "" {
			f.ScenarioHash = row[hashCol]
		}
		f.Points = append(f.Points, p)
	}
	return f, nil
}

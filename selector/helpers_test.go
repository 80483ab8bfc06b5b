package selector

func rec(code string, fit, carbon, latency float64) MetricRecord {
	return MetricRecord{Code: code, FIT: fit, CarbonKg: carbon, LatencyNs: latency}
}

// fourRecords is mutually non-dominated; d survives only on latency.
func fourRecords() []MetricRecord {
	return []MetricRecord{
		rec("a", 1.0, 1.0, 1.0),
		rec("b", 0.5, 1.5, 1.2),
		rec("c", 1.2, 0.8, 1.1),
		rec("d", 2.0, 2.0, 0.9),
	}
}

func validScenario() Scenario {
	sc := DefaultScenario()
	sc.NodeNm = 14
	sc.VDD = 0.8
	sc.TempC = Float(75)
	sc.CapacityGiB = 8
	sc.CI = Float(0.55)
	sc.BitcellUm2 = 0.040
	return sc
}

// fixedSource serves precomputed records and counts calls.
type fixedSource struct {
	records map[string]MetricRecord
	calls   int
}

func newFixedSource(records ...MetricRecord) *fixedSource {
	s := &fixedSource{records: make(map[string]MetricRecord, len(records))}
	for _, r := range records {
		s.records[r.Code] = r
	}
	return s
}

func (s *fixedSource) ComputeMetrics(code string, _ Scenario) (MetricRecord, error) {
	s.calls++
	r, ok := s.records[code]
	if !ok {
		return MetricRecord{}, &LookupError{Kind: "candidate", Key: code}
	}
	return r.Clone(), nil
}

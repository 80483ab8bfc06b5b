// Package selector recommends one ECC configuration for an SRAM scenario by
// jointly minimizing FIT, carbon and access latency.
//
// # Reading Guide
//
// Start with these files:
//   - select.go: the Select entry point and the Result it returns
//   - pareto.go, nsga2.go: epsilon-Pareto frontier and NSGA-II ranking
//   - decision.go: knee and epsilon-constraint decision modes
//
// # Architecture
//
// The selector never computes physics itself. Metric records come from a
// MetricSource; the reference implementation lives in sub-package
// selector/model. Other sub-packages:
//   - selector/diag/: once-per-recorder diagnostics (replaces global warn flags)
//   - selector/report/: CSV, JSON and Prometheus textfile writers
//   - selector/tradeoff/: bootstrap trade-off analysis over a Pareto CSV
//
// # Determinism
//
// Candidate codes are canonicalised (sorted, de-duplicated) before
// evaluation, every sort is stable with code as the final key, and any seed
// is derived from the scenario hash through PartitionedRNG. Identical
// scenario content therefore yields identical hashes, frontiers and decisions.
package selector

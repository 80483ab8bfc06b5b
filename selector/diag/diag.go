// Package diag collects degenerate-input and consistency diagnostics raised
// while a scenario is evaluated. It has no dependency on the selector
// package so that report writers and the CLI can share it.
package diag

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a diagnostic.
type Level string

const (
	// LevelInfo marks informational diagnostics that never change a result.
	LevelInfo Level = "info"
	// LevelWarning marks a deterministic fallback that did change a value.
	LevelWarning Level = "warning"
)

// Diagnostic kinds emitted by the selector.
const (
	KindNESIIFallback      = "nesii_minmax_fallback"
	KindNESIIDegenerate    = "nesii_degenerate_scale"
	KindFrontierMiss       = "evolutionary_frontier_miss"
	KindInfeasible         = "epsilon_constraint_infeasible"
	KindDuplicateCandidate = "duplicate_candidate"
	KindDegenerateSpan     = "degenerate_objective_span"
	KindNoCandidates       = "no_candidates"
	KindTradeoffShort      = "tradeoff_too_few_points"
)

// Record is a single diagnostic.
type Record struct {
	Kind    string `json:"kind"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Recorder accumulates diagnostics for one or more evaluations.
//
// Warnings raised through WarnOnce are logged and recorded only the first
// time their key is seen; a Recorder therefore bounds log volume for as long
// as it lives. The CLI keeps one per process; tests create one per case.
//
// Thread-safety: NOT thread-safe. Use one Recorder per goroutine.
type Recorder struct {
	warned  map[string]bool
	Records []Record
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		warned:  make(map[string]bool),
		Records: make([]Record, 0),
	}
}

// WarnOnce records and logs a warning the first time kind is seen.
// Returns true if the warning was emitted by this call.
func (r *Recorder) WarnOnce(kind, format string, args ...any) bool {
	if r.warned[kind] {
		return false
	}
	r.warned[kind] = true
	msg := fmt.Sprintf(format, args...)
	logrus.Warn(msg)
	r.Records = append(r.Records, Record{Kind: kind, Level: LevelWarning, Message: msg})
	return true
}

// Info records an informational diagnostic. Info diagnostics are not
// deduplicated.
func (r *Recorder) Info(kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logrus.Info(msg)
	r.Records = append(r.Records, Record{Kind: kind, Level: LevelInfo, Message: msg})
}

// Warned reports whether a WarnOnce for kind has already fired.
func (r *Recorder) Warned(kind string) bool {
	return r.warned[kind]
}

// Since returns a copy of the records appended after mark, where mark is a
// previous value of Len.
func (r *Recorder) Since(mark int) []Record {
	if mark >= len(r.Records) {
		return []Record{}
	}
	return append([]Record(nil), r.Records[mark:]...)
}

// Len returns the number of records collected so far.
func (r *Recorder) Len() int {
	return len(r.Records)
}

// Reset forgets all records and warned keys.
func (r *Recorder) Reset() {
	r.warned = make(map[string]bool)
	r.Records = r.Records[:0]
}

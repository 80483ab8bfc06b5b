package diag

// Summary aggregates a diagnostic list.
type Summary struct {
	Total    int            `json:"total"`
	Warnings int            `json:"warnings"`
	Infos    int            `json:"infos"`
	ByKind   map[string]int `json:"by_kind"`
}

// Summarize counts records per level and kind.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(records []Record) *Summary {
	summary := &Summary{
		ByKind: make(map[string]int),
	}
	for _, r := range records {
		summary.Total++
		switch r.Level {
		case LevelWarning:
			summary.Warnings++
		case LevelInfo:
			summary.Infos++
		}
		summary.ByKind[r.Kind]++
	}
	return summary
}

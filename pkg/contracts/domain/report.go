package domain

import "time"

// Report identifies one of the six aggregated reports produced by a run.
type Report string

const (
	ReportDaily    Report = "daily"
	ReportWeekly   Report = "weekly"
	ReportMonthly  Report = "monthly"
	ReportTrend    Report = "trend"
	ReportGrowth   Report = "growth"
	ReportSeasonal Report = "seasonal"
)

// Reports lists every report in canonical order.
var Reports = []Report{
	ReportDaily,
	ReportWeekly,
	ReportMonthly,
	ReportTrend,
	ReportGrowth,
	ReportSeasonal,
}

// ExportFilename returns the canonical CSV export filename for a report.
func (r Report) ExportFilename() string {
	return string(r) + "_data.csv"
}

// Valid reports whether r names a known report.
func (r Report) Valid() bool {
	switch r {
	case ReportDaily, ReportWeekly, ReportMonthly, ReportTrend, ReportGrowth, ReportSeasonal:
		return true
	}
	return false
}

// ReportTable is the terminal output shape of the engine: a fixed header row
// plus display-formatted data rows. Not mutated after creation.
type ReportTable struct {
	Name    Report     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table has no data rows.
func (t ReportTable) Empty() bool {
	return len(t.Rows) == 0
}

// ReportSet holds the six tables produced by a single aggregation run. The
// whole set is replaced on every new upload or filter change; it is never
// mutated incrementally.
type ReportSet struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	InputRows   int                    `json:"input_rows"`
	FilteredOut int                    `json:"filtered_out"`
	Tables      map[Report]ReportTable `json:"tables"`
}

// Table returns the named table and whether it exists in the set.
func (s *ReportSet) Table(name Report) (ReportTable, bool) {
	if s == nil {
		return ReportTable{}, false
	}
	t, ok := s.Tables[name]
	return t, ok
}

package events

import "fmt"

// Period granularity of an archive.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodRange = "range"
)

// Visit is the part of a visit the archivers look at.
type Visit struct {
	DurationSeconds int `json:"duration_seconds"`
	Actions         int `json:"actions"`
	VisitCount      int `json:"visit_count"`
	DaysSinceLast   int `json:"days_since_last"`
}

// Records maps record name → row label → visit count.
type Records map[string]map[string]int64

// Add increments one row of a record.
func (r Records) Add(record, label string, n int64) {
	rows, ok := r[record]
	if !ok {
		rows = make(map[string]int64)
		r[record] = rows
	}
	rows[label] += n
}

// Merge sums other into r.
func (r Records) Merge(other Records) {
	for record, rows := range other {
		for label, n := range rows {
			r.Add(record, label, n)
		}
	}
}

// ArchiveContext is the dispatch context of the archive compute events.
// Day archives read Visits; period archives read SubPeriods. Both write
// Records.
type ArchiveContext struct {
	SiteID int    `json:"site_id"`
	Period string `json:"period"`
	Date   string `json:"date"`

	// Requested restricts archiving to the named plugins; empty means all.
	Requested []string `json:"requested,omitempty"`

	Visits     []Visit   `json:"visits,omitempty"`
	SubPeriods []Records `json:"sub_periods,omitempty"`
	Records    Records   `json:"records"`
}

// NewArchiveContext creates an archive context with empty records.
func NewArchiveContext(period string, siteID int, date string) *ArchiveContext {
	return &ArchiveContext{
		SiteID:  siteID,
		Period:  period,
		Date:    date,
		Records: make(Records),
	}
}

// ShouldArchive reports whether pluginName's records are requested.
func (a *ArchiveContext) ShouldArchive(pluginName string) bool {
	if len(a.Requested) == 0 {
		return true
	}
	for _, name := range a.Requested {
		if name == pluginName {
			return true
		}
	}
	return false
}

// Validate checks that the context matches its period.
func (a *ArchiveContext) Validate() error {
	switch a.Period {
	case PeriodDay:
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodRange:
	default:
		return fmt.Errorf("unknown archive period %q", a.Period)
	}
	if a.Records == nil {
		a.Records = make(Records)
	}
	return nil
}

package visitorinterest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/pkg/logger"
)

// Archive record names.
const (
	RecordTimeGap       = "VisitorInterest_timeGap"
	RecordPageGap       = "VisitorInterest_pageGap"
	RecordVisitCount    = "VisitorInterest_visitsByVisitCount"
	RecordDaysSinceLast = "VisitorInterest_daysSinceLastVisit"
)

// Records lists the record names in report order.
var Records = []string{RecordTimeGap, RecordPageGap, RecordVisitCount, RecordDaysSinceLast}

// gap is an inclusive range; hi < 0 means unbounded.
type gap struct {
	lo, hi int
}

func (g gap) label() string {
	if g.hi < 0 {
		return strconv.Itoa(g.lo) + "+"
	}
	if g.lo == g.hi {
		return strconv.Itoa(g.lo)
	}
	return strconv.Itoa(g.lo) + "-" + strconv.Itoa(g.hi)
}

func (g gap) contains(v int) bool {
	return v >= g.lo && (g.hi < 0 || v <= g.hi)
}

// Visit duration gaps, in seconds.
var timeGaps = []gap{
	{0, 10}, {11, 30}, {31, 60}, {61, 120}, {121, 240}, {241, 420},
	{421, 600}, {601, 900}, {901, 1800}, {1801, -1},
}

var pageGaps = []gap{
	{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 7}, {8, 10}, {11, 14}, {15, 20}, {21, -1},
}

var visitNumberGaps = []gap{
	{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}, {7, 7}, {8, 8},
	{9, 14}, {15, 25}, {26, 50}, {51, 100}, {101, 200}, {201, -1},
}

var daysSinceLastGaps = []gap{
	{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}, {7, 7},
	{8, 14}, {15, 30}, {31, 60}, {61, 120}, {121, 364}, {365, -1},
}

func bucket(gaps []gap, v int) (string, bool) {
	for _, g := range gaps {
		if g.contains(v) {
			return g.label(), true
		}
	}
	return "", false
}

// archiveVisits computes the four distributions of a day.
func archiveVisits(visits []events.Visit) events.Records {
	rec := make(events.Records)
	for _, name := range Records {
		rec[name] = make(map[string]int64)
	}
	for _, v := range visits {
		if label, ok := bucket(timeGaps, v.DurationSeconds); ok {
			rec.Add(RecordTimeGap, label, 1)
		}
		if label, ok := bucket(pageGaps, v.Actions); ok {
			rec.Add(RecordPageGap, label, 1)
		}
		if label, ok := bucket(visitNumberGaps, v.VisitCount); ok {
			rec.Add(RecordVisitCount, label, 1)
		}
		if label, ok := bucket(daysSinceLastGaps, v.DaysSinceLast); ok {
			rec.Add(RecordDaysSinceLast, label, 1)
		}
	}
	return rec
}

// archivePeriods sums this plugin's records over the sub-periods.
func archivePeriods(subPeriods []events.Records) events.Records {
	rec := make(events.Records)
	for _, name := range Records {
		rec[name] = make(map[string]int64)
	}
	for _, sub := range subPeriods {
		for _, name := range Records {
			for label, n := range sub[name] {
				rec.Add(name, label, n)
			}
		}
	}
	return rec
}

func (p *visitorInterestPlugin) archiveDay(ctx context.Context, data interface{}) error {
	archive, ok := data.(*events.ArchiveContext)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	if err := archive.Validate(); err != nil {
		return err
	}
	if archive.Period != events.PeriodDay {
		return fmt.Errorf("day archiver called for period %q", archive.Period)
	}
	if !archive.ShouldArchive(PluginName) {
		return nil
	}
	return p.commit(ctx, archive, archiveVisits(archive.Visits))
}

func (p *visitorInterestPlugin) archivePeriod(ctx context.Context, data interface{}) error {
	archive, ok := data.(*events.ArchiveContext)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	if err := archive.Validate(); err != nil {
		return err
	}
	if archive.Period == events.PeriodDay {
		return fmt.Errorf("period archiver called for a day")
	}
	if !archive.ShouldArchive(PluginName) {
		return nil
	}
	return p.commit(ctx, archive, archivePeriods(archive.SubPeriods))
}

func (p *visitorInterestPlugin) commit(ctx context.Context, archive *events.ArchiveContext, rec events.Records) error {
	if s := p.archiveStore(); s != nil {
		if err := s.Save(ctx, archive.SiteID, archive.Period, archive.Date, rec); err != nil {
			return fmt.Errorf("save archive: %w", err)
		}
	}
	archive.Records.Merge(rec)
	logger.Debug("[VisitorInterest] archived site %d %s %s", archive.SiteID, archive.Period, archive.Date)
	return nil
}

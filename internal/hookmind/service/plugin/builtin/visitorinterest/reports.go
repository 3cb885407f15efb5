package visitorinterest

import "github.com/kiosk404/hookmind/internal/hookmind/events"

const docSeparator = "<br />"

func buildReports(tr func(string) string) []events.Report {
	visits := []events.Metric{{Name: "nb_visits"}}
	tagCloud := docSeparator + tr("General_ChangeTagCloudView")

	return []events.Report{
		{
			Category:          tr(categoryVisitors),
			Name:              tr("VisitorInterest_WidgetLengths"),
			Module:            PluginName,
			Action:            "getNumberOfVisitsPerVisitDuration",
			Dimension:         tr("VisitorInterest_ColumnVisitDuration"),
			Metrics:           visits,
			ConstantRowsCount: true,
			Documentation:     tr("VisitorInterest_WidgetLengthsDocumentation") + tagCloud,
			Order:             15,
		},
		{
			Category:          tr(categoryVisitors),
			Name:              tr("VisitorInterest_WidgetPages"),
			Module:            PluginName,
			Action:            "getNumberOfVisitsPerPage",
			Dimension:         tr("VisitorInterest_ColumnPagesPerVisit"),
			Metrics:           visits,
			ConstantRowsCount: true,
			Documentation:     tr("VisitorInterest_WidgetPagesDocumentation") + tagCloud,
			Order:             20,
		},
		{
			Category:  tr(categoryVisitors),
			Name:      tr("VisitorInterest_visitsByVisitCount"),
			Module:    PluginName,
			Action:    "getNumberOfVisitsByVisitCount",
			Dimension: tr("VisitorInterest_visitsByVisitCount"),
			Metrics: []events.Metric{
				{Name: "nb_visits"},
				{Name: "nb_visits_percentage", Label: tr("General_ColumnPercentageVisits")},
			},
			ConstantRowsCount: true,
			Documentation:     tr("VisitorInterest_WidgetVisitsByNumDocumentation") + tagCloud,
			Order:             25,
		},
		{
			Category:          tr(categoryVisitors),
			Name:              tr("VisitorInterest_VisitsByDaysSinceLast"),
			Module:            PluginName,
			Action:            "getNumberOfVisitsByDaysSinceLast",
			Dimension:         tr("VisitorInterest_VisitsByDaysSinceLast"),
			Metrics:           visits,
			ConstantRowsCount: true,
			Documentation:     tr("VisitorInterest_WidgetVisitsByDaysSinceLastDocumentation"),
			Order:             30,
		},
	}
}

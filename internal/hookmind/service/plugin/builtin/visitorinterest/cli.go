package visitorinterest

import (
	"fmt"
	"sort"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/spf13/cobra"
)

// CLIRegistrars implements plugin.CLIProvider.
func (p *visitorInterestPlugin) CLIRegistrars() []plugin.CLIRegistrar {
	return []plugin.CLIRegistrar{archiveCommands{p}}
}

type archiveCommands struct {
	p *visitorInterestPlugin
}

func (a archiveCommands) RegisterCommands(parent *cobra.Command) {
	var (
		siteID int
		period string
		date   string
	)
	cmd := &cobra.Command{
		Use:   "visitor-interest",
		Short: "Show archived visitor engagement distributions",
		Long: heredoc.Doc(`
			Show the visit duration, pages per visit, visit number and days since
			last visit distributions archived by the VisitorInterest plugin.

			Without --date the most recent archive of the period is shown.
		`),
		Example: heredoc.Doc(`
			# Latest daily archive of site 1
			hookmind visitor-interest --site 1

			# A given week
			hookmind visitor-interest --site 1 --period week --date 2026-10-12
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.p.args.DBPath == "" {
				return fmt.Errorf("no archive database configured for %s", PluginName)
			}
			s, err := openArchiveStore(a.p.args.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if date == "" {
				dates, err := s.Dates(ctx, siteID, period)
				if err != nil {
					return err
				}
				if len(dates) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s archive for site %d.\n", period, siteID)
					return nil
				}
				date = dates[0]
			}
			rec, err := s.Load(ctx, siteID, period, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site %d, %s %s\n\n", siteID, period, date)
			fmt.Fprintln(cmd.OutOrStdout(), RecordsTable(rec, a.p.translate))
			return nil
		},
	}
	cmd.Flags().IntVar(&siteID, "site", 1, "Site ID.")
	cmd.Flags().StringVar(&period, "period", events.PeriodDay, "Archive period (day, week, month, year, range).")
	cmd.Flags().StringVar(&date, "date", "", "Archive start date (YYYY-MM-DD).")
	parent.AddCommand(cmd)
}

// RecordsTable renders the plugin's records, one section per record, rows
// in bucket order.
func RecordsTable(rec events.Records, tr func(string) string) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("RECORD", "RANGE", "VISITS")
	for _, name := range Records {
		rows := rec[name]
		labels := make([]string, 0, len(rows))
		for label := range rows {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			return labelOrder(name, labels[i]) < labelOrder(name, labels[j])
		})
		for _, label := range labels {
			table.AddRow(tr(name), label, rows[label])
		}
	}
	return table
}

func labelOrder(record, label string) int {
	var gaps []gap
	switch record {
	case RecordTimeGap:
		gaps = timeGaps
	case RecordPageGap:
		gaps = pageGaps
	case RecordVisitCount:
		gaps = visitNumberGaps
	case RecordDaysSinceLast:
		gaps = daysSinceLastGaps
	}
	for i, g := range gaps {
		if g.label() == label {
			return i
		}
	}
	return len(gaps)
}

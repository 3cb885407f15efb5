// Package events names the extension points the host dispatches and defines
// the mutable context each of them carries.
package events

import (
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
)

// Well-known event names.
const (
	AssetJSFiles   = "AssetManager.getJsFiles"
	AssetCSSFiles  = "AssetManager.getCssFiles"
	WidgetsAdd     = "WidgetsList.add"
	MenuAdd        = "Menu.add"
	ReportMetadata = "API.getReportMetadata"
	ArchiveDay     = "ArchiveProcessing_Day.compute"
	ArchivePeriod  = "ArchiveProcessing_Period.compute"
	TemplateHeader = "template_headerVisitsFrequency"
	TemplateFooter = "template_footerVisitsFrequency"
)

// Policies returns the failure policy of every well-known event that is not
// broadcast. Archive computations are authoritative.
func Policies() map[string]plugin.Policy {
	return map[string]plugin.Policy{
		ArchiveDay:    plugin.PolicyAuthoritative,
		ArchivePeriod: plugin.PolicyAuthoritative,
	}
}

// Known lists every well-known event in a stable order.
func Known() []string {
	return []string{
		AssetJSFiles,
		AssetCSSFiles,
		WidgetsAdd,
		MenuAdd,
		ReportMetadata,
		ArchiveDay,
		ArchivePeriod,
		TemplateHeader,
		TemplateFooter,
	}
}

// NewContext returns an empty dispatch context for a well-known event, or
// nil for an unknown one.
func NewContext(event string) interface{} {
	switch event {
	case AssetJSFiles, AssetCSSFiles:
		return &AssetFiles{}
	case WidgetsAdd:
		return &WidgetList{}
	case MenuAdd:
		return &Menu{}
	case ReportMetadata:
		return &ReportList{}
	case ArchiveDay:
		return NewArchiveContext(PeriodDay, 0, "")
	case ArchivePeriod:
		return NewArchiveContext(PeriodWeek, 0, "")
	case TemplateHeader, TemplateFooter:
		return &TemplateOutput{}
	default:
		return nil
	}
}

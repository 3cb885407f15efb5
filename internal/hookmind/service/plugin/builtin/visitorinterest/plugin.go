// Package visitorinterest is the visitor engagement plugin: visit duration,
// pages per visit, visit number and days since the last visit. It archives
// those distributions into its own SQLite table.
package visitorinterest

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/pkg/logger"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "VisitorInterest"

	categoryVisitors = "General_Visitors"
)

// Translations holds the plugin's message files, one per language.
//
//go:embed lang/*.json
var Translations embed.FS

// IndexRenderer produces the markup shown next to the visit frequency
// report.
type IndexRenderer func(ctx context.Context) (string, error)

// Args holds the configuration for the VisitorInterest plugin.
type Args struct {
	// DBPath is the SQLite archive file. Empty disables persistence.
	DBPath string
	Dir    string

	Translator plugin.Translator
	Renderer   IndexRenderer
}

// visitorInterestPlugin is the runtime instance of the plugin.
type visitorInterestPlugin struct {
	args Args

	mu      sync.RWMutex
	store   *archiveStore
	reports []events.Report
}

// Factory is the PluginFactory for VisitorInterest. It reads "db_path",
// "dir", "translator" and "renderer" from args; all are optional.
func Factory(args plugin.PluginArgs) (plugin.Plugin, error) {
	var a Args
	if raw, ok := args["db_path"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("visitorinterest: 'db_path' must be a string, got %T", raw)
		}
		a.DBPath = s
	}
	if raw, ok := args["dir"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("visitorinterest: 'dir' must be a string, got %T", raw)
		}
		a.Dir = s
	}
	if raw, ok := args["translator"]; ok && raw != nil {
		tr, ok := raw.(plugin.Translator)
		if !ok {
			return nil, fmt.Errorf("visitorinterest: 'translator' must be a plugin.Translator, got %T", raw)
		}
		a.Translator = tr
	}
	if raw, ok := args["renderer"]; ok && raw != nil {
		r, ok := raw.(IndexRenderer)
		if !ok {
			return nil, fmt.Errorf("visitorinterest: 'renderer' must be an IndexRenderer, got %T", raw)
		}
		a.Renderer = r
	}
	return New(a), nil
}

// New creates the plugin from typed arguments.
func New(args Args) plugin.Plugin {
	return &visitorInterestPlugin{args: args}
}

// Name implements plugin.Plugin.
func (p *visitorInterestPlugin) Name() string { return PluginName }

// Dir implements plugin.DirProvider.
func (p *visitorInterestPlugin) Dir() string { return p.args.Dir }

// Hooks implements plugin.HookProvider. The menu handler runs after the
// unordered ones because it renames an entry another plugin adds.
func (p *visitorInterestPlugin) Hooks() []plugin.HookDeclaration {
	return []plugin.HookDeclaration{
		plugin.On(events.ArchiveDay, p.archiveDay),
		plugin.On(events.ArchivePeriod, p.archivePeriod),
		plugin.On(events.WidgetsAdd, p.addWidgets),
		plugin.After(events.MenuAdd, p.addMenu),
		plugin.On(events.ReportMetadata, p.reportMetadata),
		plugin.On(events.TemplateHeader, p.headerVisitsFrequency),
		plugin.On(events.TemplateFooter, p.footerVisitsFrequency),
	}
}

// Install implements plugin.Installer by creating the archive table.
func (p *visitorInterestPlugin) Install(ctx context.Context) error {
	if p.args.DBPath == "" {
		logger.Info("[VisitorInterest] no archive database configured, nothing to install")
		return nil
	}
	s, err := openArchiveStore(p.args.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.EnsureSchema(ctx)
}

// Uninstall implements plugin.Installer by dropping the archive table.
func (p *visitorInterestPlugin) Uninstall(ctx context.Context) error {
	if p.args.DBPath == "" {
		return nil
	}
	s, err := openArchiveStore(p.args.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.DropSchema(ctx)
}

// Activate implements plugin.Activator by opening the archive database.
func (p *visitorInterestPlugin) Activate(context.Context) error {
	if p.args.DBPath == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store != nil {
		return nil
	}
	s, err := openArchiveStore(p.args.DBPath)
	if err != nil {
		return err
	}
	p.store = s
	return nil
}

// Deactivate implements plugin.Deactivator by closing the archive database.
func (p *visitorInterestPlugin) Deactivate(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store == nil {
		return nil
	}
	err := p.store.Close()
	p.store = nil
	return err
}

// PostLoad implements plugin.PostLoader. Report metadata is translated once
// the translator has every plugin's messages.
func (p *visitorInterestPlugin) PostLoad(context.Context) error {
	reports := buildReports(p.translate)
	p.mu.Lock()
	p.reports = reports
	p.mu.Unlock()
	return nil
}

func (p *visitorInterestPlugin) translate(key string) string {
	if p.args.Translator == nil {
		return key
	}
	return p.args.Translator.Translate(key)
}

func (p *visitorInterestPlugin) archiveStore() *archiveStore {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

func (p *visitorInterestPlugin) addWidgets(_ context.Context, data interface{}) error {
	list, ok := data.(*events.WidgetList)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	list.Add(categoryVisitors, "VisitorInterest_WidgetLengths", PluginName, "getNumberOfVisitsPerVisitDuration")
	list.Add(categoryVisitors, "VisitorInterest_WidgetPages", PluginName, "getNumberOfVisitsPerPage")
	list.Add(categoryVisitors, "VisitorInterest_visitsByVisitCount", PluginName, "getNumberOfVisitsByVisitCount")
	list.Add(categoryVisitors, "VisitorInterest_WidgetVisitsByDaysSinceLast", PluginName, "getNumberOfVisitsByDaysSinceLast")
	return nil
}

func (p *visitorInterestPlugin) addMenu(_ context.Context, data interface{}) error {
	menu, ok := data.(*events.Menu)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	if !menu.Rename(categoryVisitors, "VisitFrequency_SubmenuFrequency", categoryVisitors, "VisitorInterest_Engagement") {
		logger.Debug("[VisitorInterest] visit frequency menu entry not present, nothing to rename")
	}
	return nil
}

func (p *visitorInterestPlugin) reportMetadata(_ context.Context, data interface{}) error {
	list, ok := data.(*events.ReportList)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	p.mu.RLock()
	reports := p.reports
	p.mu.RUnlock()
	if reports == nil {
		reports = buildReports(p.translate)
	}
	for _, r := range reports {
		list.Add(r)
	}
	return nil
}

func (p *visitorInterestPlugin) headerVisitsFrequency(_ context.Context, data interface{}) error {
	out, ok := data.(*events.TemplateOutput)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	out.Set(`<div id="leftcolumn">`)
	return nil
}

func (p *visitorInterestPlugin) footerVisitsFrequency(ctx context.Context, data interface{}) error {
	out, ok := data.(*events.TemplateOutput)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	index := ""
	if p.args.Renderer != nil {
		var err error
		if index, err = p.args.Renderer(ctx); err != nil {
			return fmt.Errorf("render index: %w", err)
		}
	}
	out.Set("</div>\n<div id=\"rightcolumn\">\n")
	out.Append(index, "</div>")
	return nil
}

// Package live is the real-time visitor plugin. It contributes its assets,
// three dashboard widgets and the visitor log menu entry.
package live

import (
	"context"
	"embed"
	"fmt"

	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "Live"

	JSFile  = "plugins/Live/javascripts/live.js"
	CSSFile = "plugins/Live/stylesheets/live.less"

	widgetCategory = "Live!"
)

// Translations holds the plugin's message files, one per language.
//
//go:embed lang/*.json
var Translations embed.FS

type livePlugin struct {
	dir string
}

// Factory is the PluginFactory for Live. It accepts an optional "dir"
// argument pointing at the plugin's files.
func Factory(args plugin.PluginArgs) (plugin.Plugin, error) {
	p := &livePlugin{}
	if raw, ok := args["dir"]; ok {
		dir, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("live: 'dir' must be a string, got %T", raw)
		}
		p.dir = dir
	}
	return p, nil
}

// Name implements plugin.Plugin.
func (p *livePlugin) Name() string { return PluginName }

// Dir implements plugin.DirProvider.
func (p *livePlugin) Dir() string { return p.dir }

// Hooks implements plugin.HookProvider.
func (p *livePlugin) Hooks() []plugin.HookDeclaration {
	return []plugin.HookDeclaration{
		plugin.On(events.AssetJSFiles, p.jsFiles),
		plugin.On(events.AssetCSSFiles, p.cssFiles),
		plugin.On(events.WidgetsAdd, p.addWidgets),
		plugin.On(events.MenuAdd, p.addMenu),
	}
}

func (p *livePlugin) jsFiles(_ context.Context, data interface{}) error {
	files, ok := data.(*events.AssetFiles)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	files.Add(JSFile)
	return nil
}

func (p *livePlugin) cssFiles(_ context.Context, data interface{}) error {
	files, ok := data.(*events.AssetFiles)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	files.Add(CSSFile)
	return nil
}

func (p *livePlugin) addWidgets(_ context.Context, data interface{}) error {
	list, ok := data.(*events.WidgetList)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	list.Add(widgetCategory, "Live_VisitorsInRealTime", PluginName, "widget")
	list.Add(widgetCategory, "Live_VisitorLog", PluginName, "getVisitorLog")
	list.Add(widgetCategory, "Live_RealTimeVisitorCount", PluginName, "getSimpleLastVisitCount")
	return nil
}

func (p *livePlugin) addMenu(_ context.Context, data interface{}) error {
	menu, ok := data.(*events.Menu)
	if !ok {
		return fmt.Errorf("unexpected context %T", data)
	}
	menu.Add(events.MenuEntry{
		Category: "General_Visitors",
		Name:     "Live_VisitorLog",
		Params:   map[string]string{"module": PluginName, "action": "indexVisitorLog"},
		Default:  true,
		Order:    5,
	})
	return nil
}

package live

import (
	"context"
	"testing"

	"github.com/kiosk404/hookmind/internal/hookmind/events"
	"github.com/kiosk404/hookmind/internal/hookmind/service/i18n"
	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveLive(t *testing.T) *plugin.Dispatcher {
	t.Helper()
	p, err := Factory(nil)
	require.NoError(t, err)

	table := plugin.NewHookTable()
	r := plugin.NewRegistry(table)
	_, err = r.Load(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, r.Activate(context.Background(), PluginName))
	return plugin.NewDispatcher(table, plugin.WithoutMetrics())
}

func TestLive_Assets(t *testing.T) {
	d := newActiveLive(t)
	ctx := context.Background()

	js, err := plugin.DispatchTo(ctx, d, events.AssetJSFiles, &events.AssetFiles{Files: []string{"core.js"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"core.js", JSFile}, js.Files)

	css, err := plugin.DispatchTo(ctx, d, events.AssetCSSFiles, &events.AssetFiles{})
	require.NoError(t, err)
	assert.Equal(t, []string{CSSFile}, css.Files)
}

func TestLive_WidgetsAndMenu(t *testing.T) {
	d := newActiveLive(t)
	ctx := context.Background()

	widgets, err := plugin.DispatchTo(ctx, d, events.WidgetsAdd, &events.WidgetList{})
	require.NoError(t, err)
	require.Len(t, widgets.Widgets, 3)
	assert.Equal(t, "Live_VisitorLog", widgets.Widgets[1].Name)
	assert.Equal(t, "getVisitorLog", widgets.Widgets[1].Action)

	menu, err := plugin.DispatchTo(ctx, d, events.MenuAdd, &events.Menu{})
	require.NoError(t, err)
	require.Len(t, menu.Entries, 1)
	assert.Equal(t, "indexVisitorLog", menu.Entries[0].Params["action"])
	assert.True(t, menu.Entries[0].Default)
}

func TestLive_WrongContextIsAFailure(t *testing.T) {
	p := &livePlugin{}
	assert.Error(t, p.jsFiles(context.Background(), &events.Menu{}))
}

func TestLive_Translations(t *testing.T) {
	tr, err := i18n.New("en")
	require.NoError(t, err)
	require.NoError(t, tr.LoadFS(Translations, "lang"))
	assert.Equal(t, "Visitor Log", tr.Translate("Live_VisitorLog"))

	p, err := Factory(plugin.PluginArgs{"dir": ""})
	require.NoError(t, err)
	d, err := plugin.NewRegistry(plugin.NewHookTable(), plugin.WithTranslator(tr)).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Live Plugin: shows your visitors in real time.", d.Metadata().Description)

	_, err = Factory(plugin.PluginArgs{"dir": 3})
	assert.Error(t, err)
}

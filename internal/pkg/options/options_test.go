package options

import (
	"testing"

	"github.com/bytedance/gg/gptr"
	"github.com/kiosk404/hookmind/internal/pkg/server"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginsOptions_IsAllowed(t *testing.T) {
	o := NewPluginsOptions()
	assert.True(t, o.IsAllowed("Live"))

	o.Deny = []string{"Live"}
	assert.False(t, o.IsAllowed("Live"))

	o.Deny = nil
	o.Allow = []string{"VisitorInterest"}
	assert.False(t, o.IsAllowed("Live"))
	assert.True(t, o.IsAllowed("VisitorInterest"))

	o.Allow = nil
	o.Entries["Live"] = PluginEntryConfig{Enabled: gptr.Of(false)}
	assert.False(t, o.IsAllowed("Live"))
	o.Entries["Live"] = PluginEntryConfig{Enabled: gptr.Of(true)}
	assert.True(t, o.IsAllowed("Live"))
}

func TestPluginsOptions_DenyWinsOverAllow(t *testing.T) {
	o := NewPluginsOptions()
	o.Allow = []string{"Live"}
	o.Deny = []string{"Live"}
	assert.False(t, o.IsAllowed("Live"))
}

func TestPluginsOptions_EntryConfig(t *testing.T) {
	o := NewPluginsOptions()
	assert.NotNil(t, o.EntryConfig("Live"))

	o.Entries["visitorinterest"] = PluginEntryConfig{Config: map[string]interface{}{"db_path": "x.db"}}
	assert.Equal(t, "x.db", o.EntryConfig("VisitorInterest")["db_path"])
	assert.True(t, o.IsAllowed("VisitorInterest"))

	o.Deny = []string{"visitorinterest"}
	assert.False(t, o.IsAllowed("VisitorInterest"))
}

func TestPluginsOptions_Validate(t *testing.T) {
	o := NewPluginsOptions()
	assert.Empty(t, o.Validate())

	o.Slots.Theme = SlotNone
	assert.Empty(t, o.Validate())

	o.Slots.Theme = "bad theme"
	o.Deny = []string{""}
	o.Entries["white space"] = PluginEntryConfig{}
	assert.Len(t, o.Validate(), 3)
}

func TestPluginsOptions_Flags(t *testing.T) {
	o := NewPluginsOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--plugins.deny=Live,Other", "--plugins.slots.theme=Zeitgeist", "--plugins.dir=/opt/plugins"}))
	assert.Equal(t, []string{"Live", "Other"}, o.Deny)
	assert.Equal(t, "Zeitgeist", o.Slots.Theme)
	assert.Equal(t, "/opt/plugins", o.Dir)
}

func TestServerRunOptions(t *testing.T) {
	s := NewServerRunOptions()
	assert.Empty(t, s.Validate())
	assert.Equal(t, "127.0.0.1:11790", s.Address())

	s.BindPort = 70000
	s.Mode = "fast"
	assert.Len(t, s.Validate(), 2)
}

func TestStoreOptions(t *testing.T) {
	o := NewStoreOptions()
	assert.Empty(t, o.Validate())

	o.BoltPath = ""
	assert.Len(t, o.Validate(), 1)

	o.Type = StoreMemory
	assert.Empty(t, o.Validate())

	o.Type = "redis"
	assert.Len(t, o.Validate(), 1)
}

func TestLogOptions(t *testing.T) {
	o := NewLogOptions()
	assert.Empty(t, o.Validate())

	o.Level = "loud"
	assert.Len(t, o.Validate(), 1)
}

func TestServerRunOptions_ApplyTo(t *testing.T) {
	s := NewServerRunOptions()
	s.BindPort = 9000
	s.EnableProfiling = true

	c := server.NewConfig()
	require.NoError(t, s.ApplyTo(c))
	assert.Equal(t, 9000, c.BindPort)
	assert.True(t, c.EnableProfiling)
}

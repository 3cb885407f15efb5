package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupConfigFlag(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"serve", "--config", "a.yaml"}, "a.yaml"},
		{[]string{"--config=b.yaml", "plugins", "list"}, "b.yaml"},
		{[]string{"-c", "c.yaml"}, "c.yaml"},
		{[]string{"-c=d.yaml"}, "d.yaml"},
		{[]string{"plugins", "--", "--config", "e.yaml"}, ""},
		{[]string{"--config"}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, lookupConfigFlag(tc.args), "%v", tc.args)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	args = append(args,
		"--store.type=memory",
		"--store.data-dir="+filepath.Join(dir, "data"),
		"--plugins.dir="+filepath.Join(dir, "plugins"),
		"--log.level=error",
	)
	var out, errOut bytes.Buffer
	cmd := NewHookmindCommand(&bytes.Buffer{}, &out, &errOut, args)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), errOut.String())
	return out.String()
}

func TestCommand_Version(t *testing.T) {
	assert.Contains(t, execute(t, "version"), "hookmind 1.4.0")
}

func TestCommand_PluginsList(t *testing.T) {
	out := execute(t, "plugins", "list")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Live")
	assert.Contains(t, out, "VisitorInterest")
}

func TestCommand_PluginsInfo(t *testing.T) {
	out := execute(t, "plugins", "info", "VisitorInterest")
	assert.Contains(t, out, "Description:")
	assert.Contains(t, out, "Menu.add")
	assert.Contains(t, out, "after")
}

func TestCommand_HooksOrder(t *testing.T) {
	out := execute(t, "hooks", "order", "Menu.add")
	assert.Contains(t, out, "Live")
	assert.Contains(t, out, "VisitorInterest")
	assert.Less(t, bytes.Index([]byte(out), []byte("Live")), bytes.Index([]byte(out), []byte("VisitorInterest")))
}

func TestCommand_HooksDispatch(t *testing.T) {
	out := execute(t, "hooks", "dispatch", "AssetManager.getJsFiles")
	assert.Contains(t, out, "plugins/Live/javascripts/live.js")
}

func TestCommand_PluginCommandRegistered(t *testing.T) {
	var out bytes.Buffer
	cmd := NewHookmindCommand(&bytes.Buffer{}, &out, &bytes.Buffer{}, nil)
	found, _, err := cmd.Find([]string{"visitor-interest"})
	require.NoError(t, err)
	assert.Equal(t, "visitor-interest", found.Name())
}

func TestCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugins:\n  deny: [Live]\n"), 0o644))

	out := execute(t, "plugins", "list", "--config", path)
	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.HasPrefix(line, "Live"), line)
	}
	assert.Contains(t, out, "VisitorInterest")
}

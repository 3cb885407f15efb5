package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/kiosk404/hookmind/pkg/version"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMetadata_Defaults(t *testing.T) {
	info, err := ResolveMetadata("Live", DefaultMetadata(""), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Live_PluginDescription", info.Description)
	assert.Equal(t, DefaultAuthor, info.Author)
	assert.Equal(t, DefaultHomepage, info.Homepage)
	assert.Equal(t, DefaultHomepage, info.AuthorHomepage)
	assert.Equal(t, DefaultLicense, info.License)
	assert.Equal(t, DefaultLicenseHomepage, info.LicenseHomepage)
	assert.Equal(t, version.FrameworkVersion, info.Version)
	assert.False(t, info.IsTheme())
}

func TestResolveMetadata_FieldLocalMerge(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"version": "2.1"}`), FormatJSON)
	require.NoError(t, err)

	info, err := ResolveMetadata("Live", DefaultMetadata("1.0"), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "2.1", info.Version)
	assert.Equal(t, DefaultAuthor, info.Author)
	assert.Equal(t, DefaultHomepage, info.Homepage)
	assert.Equal(t, DefaultLicense, info.License)
	assert.Equal(t, "Live_PluginDescription", info.Description)
}

func TestResolveMetadata_Translation(t *testing.T) {
	tr := TranslatorFunc(func(key string) string {
		if key == "Live_PluginDescription" {
			return "Live visitors"
		}
		return key
	})

	info, err := ResolveMetadata("Live", DefaultMetadata(""), nil, tr)
	require.NoError(t, err)
	assert.Equal(t, "Live visitors", info.Description)

	// A translator with no entry falls back to the key.
	info, err = ResolveMetadata("Other", DefaultMetadata(""), nil, TranslatorFunc(func(string) string { return "" }))
	require.NoError(t, err)
	assert.Equal(t, "Other_PluginDescription", info.Description)
}

func TestResolveMetadata_DoesNotMutateDefaults(t *testing.T) {
	defaults := DefaultMetadata("1.0")
	doc := Document{"author": "Someone", "theme": true}

	_, err := ResolveMetadata("P", defaults, doc, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthor, defaults.Author)
	assert.Equal(t, false, defaults.Theme)
}

func TestResolveMetadata_UnknownKeysDropped(t *testing.T) {
	hook := test.NewLocal(logger.StandardLogger())
	defer hook.Reset()

	doc := Document{"homepage": "https://example.org", "colour": "blue"}
	info, err := ResolveMetadata("P", DefaultMetadata(""), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", info.Homepage)

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == `[Plugin] plugin "P": dropping unknown metadata field "colour"` {
			found = true
		}
	}
	assert.True(t, found, "expected a warning for the unknown field")
}

func TestResolveMetadata_WrongTypes(t *testing.T) {
	_, err := ResolveMetadata("P", DefaultMetadata(""), Document{"author": 42}, nil)
	var pe *MetadataParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "P", pe.Plugin)
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  DocumentFormat
		want    Document
		wantErr bool
	}{
		{name: "empty", data: "  \n", format: FormatJSON, want: nil},
		{name: "json", data: `{"version": "3", "theme": 1}`, format: FormatJSON, want: Document{"version": "3", "theme": float64(1)}},
		{name: "yaml", data: "author: Team\nversion: 1.5\n", format: FormatYAML, want: Document{"author": "Team", "version": "1.5"}},
		{name: "json array", data: `[1, 2]`, format: FormatJSON, wantErr: true},
		{name: "yaml scalar", data: "just a string", format: FormatYAML, wantErr: true},
		{name: "broken json", data: `{"version":`, format: FormatJSON, wantErr: true},
		{name: "wrong type", data: `{"license": ["MIT"]}`, format: FormatJSON, wantErr: true},
		{name: "unknown format", data: `a=b`, format: "ini", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.data), tt.format)
			if tt.wantErr {
				var pe *MetadataParseError
				require.True(t, errors.As(err, &pe), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestParseDocument_NumericVersionKeepsText(t *testing.T) {
	tests := []struct {
		data   string
		format DocumentFormat
		want   string
	}{
		{`{"version": 1.0}`, FormatJSON, "1.0"},
		{`{"version": 1.10}`, FormatJSON, "1.10"},
		{`{"version": 2}`, FormatJSON, "2"},
		{`{"version": "1.10"}`, FormatJSON, "1.10"},
		{"version: 1.10\n", FormatYAML, "1.10"},
		{"version: 1.0\n", FormatYAML, "1.0"},
		{"version: \"2.0\"\n", FormatYAML, "2.0"},
	}
	for _, tt := range tests {
		doc, err := ParseDocument([]byte(tt.data), tt.format)
		require.NoError(t, err, tt.data)
		meta, err := ResolveMetadata("P", DefaultMetadata(""), doc, nil)
		require.NoError(t, err, tt.data)
		assert.Equal(t, tt.want, meta.Version, tt.data)
	}
}

func TestParseDocument_UnknownKeysNotValidated(t *testing.T) {
	doc, err := ParseDocument([]byte("author: Team\nextra: {1: a}\n"), FormatYAML)
	require.NoError(t, err)

	meta, err := ResolveMetadata("P", DefaultMetadata(""), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "Team", meta.Author)
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()

	doc, path, err := LoadDocument("P", dir)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Empty(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentYAML), []byte("version: \"9\"\n"), 0o644))
	doc, path, err = LoadDocument("P", dir)
	require.NoError(t, err)
	assert.Equal(t, "9", doc["version"])
	assert.Equal(t, filepath.Join(dir, DocumentYAML), path)

	// plugin.json wins over plugin.yaml.
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentJSON), []byte(`{"version": "10"}`), 0o644))
	doc, _, err = LoadDocument("P", dir)
	require.NoError(t, err)
	assert.Equal(t, "10", doc["version"])

	require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentJSON), []byte(`not json`), 0o644))
	_, _, err = LoadDocument("P", dir)
	var pe *MetadataParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "P", pe.Plugin)
	assert.Equal(t, filepath.Join(dir, DocumentJSON), pe.Source)
}

func TestMetadata_IsTheme(t *testing.T) {
	tests := []struct {
		theme interface{}
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"0", false},
		{"false", false},
		{"FALSE", false},
		{"yes", true},
		{"1", true},
		{0, false},
		{float64(0), false},
		{float64(2), true},
		{int64(1), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Metadata{Theme: tt.theme}.IsTheme(), "theme=%#v", tt.theme)
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "2", versionString(float64(2)))
	assert.Equal(t, "1.5", versionString(1.5))
	assert.Equal(t, "7", versionString(7))
	assert.Equal(t, "v1", versionString("v1"))
}

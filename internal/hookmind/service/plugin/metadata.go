package plugin

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/kiosk404/hookmind/pkg/utils/json"
	"github.com/kiosk404/hookmind/pkg/version"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const (
	// DescriptionKeySuffix is appended to the plugin name to form the
	// translation key of its default description.
	DescriptionKeySuffix = "_PluginDescription"

	// DocumentJSON and DocumentYAML are the override document file names
	// looked up, in that order, in a plugin's directory.
	DocumentJSON = "plugin.json"
	DocumentYAML = "plugin.yaml"
)

// Default metadata shared by every plugin that does not override it.
const (
	DefaultAuthor          = "Hookmind"
	DefaultHomepage        = "https://github.com/kiosk404/hookmind"
	DefaultLicense         = "Apache-2.0"
	DefaultLicenseHomepage = "https://www.apache.org/licenses/LICENSE-2.0"
)

// Metadata is the descriptive record of a plugin.
type Metadata struct {
	Description     string      `json:"description"`
	Author          string      `json:"author"`
	AuthorHomepage  string      `json:"author_homepage"`
	Homepage        string      `json:"homepage"`
	License         string      `json:"license"`
	LicenseHomepage string      `json:"license_homepage"`
	Version         string      `json:"version"`
	Theme           interface{} `json:"theme"`
}

// IsTheme coerces the theme value to a boolean. nil, false, "", "0", "false"
// and numeric zero are false; every other value is true.
func (m Metadata) IsTheme() bool {
	switch v := m.Theme.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s != "" && s != "0" && s != "false"
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// DefaultMetadata returns the process-wide defaults with the given version.
func DefaultMetadata(ver string) Metadata {
	if ver == "" {
		ver = version.FrameworkVersion
	}
	return Metadata{
		Author:          DefaultAuthor,
		AuthorHomepage:  DefaultHomepage,
		Homepage:        DefaultHomepage,
		License:         DefaultLicense,
		LicenseHomepage: DefaultLicenseHomepage,
		Version:         ver,
		Theme:           false,
	}
}

// Document is a parsed metadata override document.
type Document map[string]interface{}

// DocumentFormat selects the decoder used by ParseDocument.
type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

// documentSchema constrains the types of the recognised keys. Unknown keys
// pass validation and are dropped later.
const documentSchema = `{
	"type": "object",
	"properties": {
		"description":      {"type": "string"},
		"author":           {"type": "string"},
		"author_homepage":  {"type": "string"},
		"homepage":         {"type": "string"},
		"license":          {"type": "string"},
		"license_homepage": {"type": "string"},
		"version":          {"type": ["string", "number"]},
		"theme":            {"type": ["boolean", "string", "number", "null"]}
	}
}`

var documentSchemaLoader = gojsonschema.NewStringLoader(documentSchema)

// ParseDocument decodes an override document. Empty input yields a nil
// document. Input that does not decode to a key/value mapping, or whose
// recognised keys have the wrong type, fails with *MetadataParseError.
func ParseDocument(data []byte, format DocumentFormat) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var raw interface{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &MetadataParseError{Err: err}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &MetadataParseError{Err: err}
		}
	default:
		return nil, &MetadataParseError{Err: fmt.Errorf("unknown document format %q", format)}
	}

	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &MetadataParseError{Err: fmt.Errorf("document is a %T, not a key/value mapping", raw)}
	}
	doc := Document(m)
	if text, ok := numericVersion(data, format); ok {
		doc["version"] = text
	}
	if err := doc.validate(); err != nil {
		return nil, &MetadataParseError{Err: err}
	}
	return doc, nil
}

// documentKeys are the recognised override keys.
var documentKeys = map[string]struct{}{
	"description":      {},
	"author":           {},
	"author_homepage":  {},
	"homepage":         {},
	"license":          {},
	"license_homepage": {},
	"version":          {},
	"theme":            {},
}

// numericVersion returns the source text of a numeric top-level version, so
// 1.10 stays "1.10" instead of going through float64.
func numericVersion(data []byte, format DocumentFormat) (string, bool) {
	switch format {
	case FormatJSON:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return "", false
		}
		text := strings.TrimSpace(string(fields["version"]))
		if text == "" || text[0] == '"' {
			return "", false
		}
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return "", false
		}
		return text, true
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
			return "", false
		}
		m := root.Content[0]
		if m.Kind != yaml.MappingNode {
			return "", false
		}
		for i := 0; i+1 < len(m.Content); i += 2 {
			k, v := m.Content[i], m.Content[i+1]
			if k.Value != "version" || v.Kind != yaml.ScalarNode {
				continue
			}
			if tag := v.ShortTag(); tag == "!!int" || tag == "!!float" {
				return v.Value, true
			}
			return "", false
		}
	}
	return "", false
}

// validate checks the types of the recognised keys. Unknown keys are not
// validated; ResolveMetadata drops them.
func (d Document) validate() error {
	known := make(map[string]interface{}, len(d))
	for k, v := range d {
		if _, ok := documentKeys[k]; ok {
			known[k] = v
		}
	}
	result, err := gojsonschema.Validate(documentSchemaLoader, gojsonschema.NewGoLoader(known))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// LoadDocument reads the override document from dir. A missing document is
// not an error and yields a nil document and an empty path.
func LoadDocument(pluginName, dir string) (Document, string, error) {
	if dir == "" {
		return nil, "", nil
	}
	candidates := []struct {
		name   string
		format DocumentFormat
	}{
		{DocumentJSON, FormatJSON},
		{DocumentYAML, FormatYAML},
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, path, &MetadataParseError{Plugin: pluginName, Source: path, Err: err}
		}
		doc, err := ParseDocument(data, c.format)
		if err != nil {
			if pe, ok := err.(*MetadataParseError); ok {
				pe.Plugin = pluginName
				pe.Source = path
			}
			return nil, path, err
		}
		return doc, path, nil
	}
	return nil, "", nil
}

// ResolveMetadata merges defaults with the override document. The default
// description is the translation of "<pluginName>_PluginDescription"; with a
// nil translator, or when no translation exists, the key itself is used.
// Override fields replace defaults one by one; unknown fields are dropped
// with a warning.
func ResolveMetadata(pluginName string, defaults Metadata, doc Document, tr Translator) (Metadata, error) {
	var info Metadata
	if err := copier.CopyWithOption(&info, &defaults, copier.Option{DeepCopy: true}); err != nil {
		return Metadata{}, fmt.Errorf("plugin %q: failed to copy default metadata: %w", pluginName, err)
	}
	if info.Description == "" {
		info.Description = describe(pluginName, tr)
	}

	if len(doc) == 0 {
		return info, nil
	}
	if err := doc.validate(); err != nil {
		return Metadata{}, &MetadataParseError{Plugin: pluginName, Err: err}
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := doc[key]
		switch key {
		case "description":
			info.Description = value.(string)
		case "author":
			info.Author = value.(string)
		case "author_homepage":
			info.AuthorHomepage = value.(string)
		case "homepage":
			info.Homepage = value.(string)
		case "license":
			info.License = value.(string)
		case "license_homepage":
			info.LicenseHomepage = value.(string)
		case "version":
			info.Version = versionString(value)
		case "theme":
			info.Theme = value
		default:
			logger.Warn("[Plugin] plugin %q: dropping unknown metadata field %q", pluginName, key)
		}
	}
	return info, nil
}

func describe(pluginName string, tr Translator) string {
	key := pluginName + DescriptionKeySuffix
	if tr == nil {
		return key
	}
	if s := tr.Translate(key); s != "" {
		return s
	}
	return key
}

func versionString(v interface{}) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Package i18n resolves translation keys such as "Live_VisitorLog" into the
// active language, falling back to the default language and finally to the
// key itself.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/kiosk404/hookmind/pkg/logger"
	"github.com/kiosk404/hookmind/pkg/utils/json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLanguage is the fallback language every plugin ships.
const DefaultLanguage = "en"

// Translator is a catalog of translations for several languages.
//
// Thread-safe; messages may be added while other goroutines translate.
type Translator struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	lang     language.Tag
	fallback language.Tag

	// texts keeps the raw strings by language so that Translate can return
	// them verbatim, placeholders included.
	texts map[language.Tag]map[string]string
}

// New creates a translator for lang. An empty lang selects DefaultLanguage.
func New(lang string) (*Translator, error) {
	fallback := language.Make(DefaultLanguage)
	tag := fallback
	if lang != "" {
		var err error
		tag, err = language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", lang, err)
		}
	}
	return &Translator{
		builder:  catalog.NewBuilder(catalog.Fallback(fallback)),
		lang:     tag,
		fallback: fallback,
		texts:    make(map[language.Tag]map[string]string),
	}, nil
}

// Language returns the active language.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang.String()
}

// SetLanguage switches the active language. It picks the closest language
// that has messages, so "fr-CA" selects "fr" when only "fr" is loaded.
func (t *Translator) SetLanguage(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = t.matchLocked(tag)
	return nil
}

func (t *Translator) matchLocked(tag language.Tag) language.Tag {
	supported := t.languagesLocked()
	if len(supported) == 0 {
		return tag
	}
	matcher := language.NewMatcher(supported)
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return tag
	}
	return supported[idx]
}

// Languages returns the loaded languages, sorted.
func (t *Translator) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tags := t.languagesLocked()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}

func (t *Translator) languagesLocked() []language.Tag {
	tags := make([]language.Tag, 0, len(t.texts))
	for tag := range t.texts {
		tags = append(tags, tag)
	}
	// The fallback goes first so the matcher prefers it on weak matches.
	sort.Slice(tags, func(i, j int) bool {
		if tags[i] == t.fallback {
			return true
		}
		if tags[j] == t.fallback {
			return false
		}
		return tags[i].String() < tags[j].String()
	})
	return tags
}

// Add registers messages for lang. Existing keys are overwritten.
func (t *Translator) Add(lang string, messages map[string]string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	texts, ok := t.texts[tag]
	if !ok {
		texts = make(map[string]string, len(messages))
		t.texts[tag] = texts
	}
	for key, msg := range messages {
		if err := t.builder.SetString(tag, key, msg); err != nil {
			return fmt.Errorf("add message %q for %s: %w", key, tag, err)
		}
		texts[key] = msg
	}
	return nil
}

// Translate returns the message for key in the active language, then in the
// fallback language. A missing key is returned unchanged.
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if msg, ok := t.texts[t.lang][key]; ok {
		return msg
	}
	if msg, ok := t.texts[t.fallback][key]; ok {
		return msg
	}
	return key
}

// Translatef formats the message for key with args, using the catalog's
// printer for the active language.
func (t *Translator) Translatef(key string, args ...interface{}) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, inLang := t.texts[t.lang][key]
	_, inFallback := t.texts[t.fallback][key]
	if !inLang && !inFallback {
		return key
	}
	tag := t.lang
	if !inLang {
		tag = t.fallback
	}
	p := message.NewPrinter(tag, message.Catalog(t.builder))
	return p.Sprintf(key, args...)
}

// Has reports whether key has a translation in the active or fallback language.
func (t *Translator) Has(key string) bool {
	return t.Translate(key) != key
}

// LoadFile reads a JSON translation file for lang. See ParseMessages for the format.
func (t *Translator) LoadFile(lang, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read translations: %w", err)
	}
	messages, err := ParseMessages(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	return t.Add(lang, messages)
}

// LoadFS loads every "<lang>.json" file in dir of fsys. A missing dir is not
// an error.
func (t *Translator) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read translation dir %s: %w", dir, err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		messages, err := ParseMessages(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if err := t.Add(lang, messages); err != nil {
			return err
		}
		loaded += len(messages)
	}
	logger.Debug("[I18n] loaded %d messages from %s", loaded, dir)
	return nil
}

// LoadDir is LoadFS over a directory on disk.
func (t *Translator) LoadDir(dir string) error {
	return t.LoadFS(os.DirFS(dir), ".")
}

// ParseMessages decodes a translation file. Two shapes are accepted and may
// be mixed:
//
//	{"Live_VisitorLog": "Visitor Log"}
//	{"Live": {"VisitorLog": "Visitor Log"}}
//
// Nested objects are flattened by joining keys with "_".
func ParseMessages(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if err := flatten("", raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, in map[string]interface{}, out map[string]string) error {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "_" + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]interface{}:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("translation %q must be a string, got %T", key, v)
		}
	}
	return nil
}

//go:embed lang/*.json
var coreMessages embed.FS

// LoadCore loads the host's own messages (the "General_" keys).
func (t *Translator) LoadCore() error {
	return t.LoadFS(coreMessages, "lang")
}

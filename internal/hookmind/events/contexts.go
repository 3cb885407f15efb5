package events

import (
	"sort"
	"strings"
)

// AssetFiles collects asset paths contributed by plugins.
type AssetFiles struct {
	Files []string `json:"files"`
}

// Add appends a path unless it is already present.
func (a *AssetFiles) Add(path string) {
	for _, f := range a.Files {
		if f == path {
			return
		}
	}
	a.Files = append(a.Files, path)
}

// Widget is a dashboard widget contributed by a plugin.
type Widget struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Module   string `json:"module"`
	Action   string `json:"action"`
}

// UniqueID identifies the widget by module and action.
func (w Widget) UniqueID() string {
	return "widget" + w.Module + w.Action
}

// WidgetList collects widgets.
type WidgetList struct {
	Widgets []Widget `json:"widgets"`
}

// Add appends a widget.
func (l *WidgetList) Add(category, name, module, action string) {
	l.Widgets = append(l.Widgets, Widget{Category: category, Name: name, Module: module, Action: action})
}

// Categories returns the widget categories in first-seen order.
func (l *WidgetList) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range l.Widgets {
		if !seen[w.Category] {
			seen[w.Category] = true
			out = append(out, w.Category)
		}
	}
	return out
}

// MenuEntry is one navigation entry under a main category.
type MenuEntry struct {
	Category string            `json:"category"`
	Name     string            `json:"name"`
	Params   map[string]string `json:"params,omitempty"`
	Default  bool              `json:"default,omitempty"`
	Order    int               `json:"order"`
}

// Menu collects navigation entries.
type Menu struct {
	Entries []MenuEntry `json:"entries"`
}

// Add appends an entry. An entry with the same category and name replaces
// the existing one.
func (m *Menu) Add(e MenuEntry) {
	for i, cur := range m.Entries {
		if cur.Category == e.Category && cur.Name == e.Name {
			m.Entries[i] = e
			return
		}
	}
	m.Entries = append(m.Entries, e)
}

// Rename moves the entry category/name to newCategory/newName. It reports
// whether the entry existed.
func (m *Menu) Rename(category, name, newCategory, newName string) bool {
	for i, cur := range m.Entries {
		if cur.Category == category && cur.Name == name {
			m.Entries[i].Category = newCategory
			m.Entries[i].Name = newName
			return true
		}
	}
	return false
}

// Sorted returns the entries ordered by category, then Order, then name.
func (m *Menu) Sorted() []MenuEntry {
	out := append([]MenuEntry(nil), m.Entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Metric is a report column. Label is empty for columns whose label the
// host resolves itself.
type Metric struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// Report describes one report a plugin can produce.
type Report struct {
	Category          string   `json:"category"`
	Name              string   `json:"name"`
	Module            string   `json:"module"`
	Action            string   `json:"action"`
	Dimension         string   `json:"dimension"`
	Metrics           []Metric `json:"metrics"`
	ProcessedMetrics  bool     `json:"processed_metrics"`
	ConstantRowsCount bool     `json:"constant_rows_count"`
	Documentation     string   `json:"documentation"`
	Order             int      `json:"order"`
}

// ReportList collects report metadata.
type ReportList struct {
	Reports []Report `json:"reports"`
}

// Add appends a report.
func (l *ReportList) Add(r Report) {
	l.Reports = append(l.Reports, r)
}

// Sorted returns the reports ordered by Order.
func (l *ReportList) Sorted() []Report {
	out := append([]Report(nil), l.Reports...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// TemplateOutput is the markup a template hook emits in place.
type TemplateOutput struct {
	Out string `json:"out"`
}

// Set replaces the output.
func (o *TemplateOutput) Set(s string) { o.Out = s }

// Append adds to the output.
func (o *TemplateOutput) Append(parts ...string) {
	o.Out += strings.Join(parts, "")
}

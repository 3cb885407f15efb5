package v1

import (
	"time"

	"github.com/kiosk404/hookmind/internal/hookmind/service/plugin"
	"github.com/kiosk404/hookmind/internal/hookmind/store"
)

// PluginResponse is the JSON shape of a loaded plugin.
type PluginResponse struct {
	Name         string          `json:"name"`
	State        string          `json:"state"`
	Installed    bool            `json:"installed"`
	Theme        bool            `json:"theme"`
	Dir          string          `json:"dir,omitempty"`
	DocumentPath string          `json:"document_path,omitempty"`
	Metadata     plugin.Metadata `json:"metadata"`
	Hooks        []HookResponse  `json:"hooks,omitempty"`
}

// HookResponse describes one declared or registered hook.
type HookResponse struct {
	Event    string `json:"event"`
	Plugin   string `json:"plugin,omitempty"`
	Order    string `json:"order"`
	Sequence uint64 `json:"sequence,omitempty"`
}

// EventResponse summarises one event of the hook table.
type EventResponse struct {
	Event    string `json:"event"`
	Handlers int    `json:"handlers"`
	Policy   string `json:"policy"`
}

// LifecycleResponse is one logged registry event.
type LifecycleResponse struct {
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	Plugin string    `json:"plugin"`
	Type   string    `json:"type"`
}

// DispatchResponse carries the context after every handler ran.
type DispatchResponse struct {
	Event   string      `json:"event"`
	Context interface{} `json:"context"`
}

func toPluginResponse(d *plugin.Descriptor, withHooks bool) PluginResponse {
	resp := PluginResponse{
		Name:         d.Name(),
		State:        d.State().String(),
		Installed:    d.Installed(),
		Theme:        d.IsTheme(),
		Dir:          d.Dir(),
		DocumentPath: d.DocumentPath(),
		Metadata:     d.Metadata(),
	}
	if withHooks {
		for _, decl := range d.Declarations() {
			resp.Hooks = append(resp.Hooks, HookResponse{Event: decl.Event, Order: decl.Order.String()})
		}
	}
	return resp
}

func toLifecycleResponse(e *store.LifecycleEntry) LifecycleResponse {
	return LifecycleResponse{Seq: e.Seq, Time: e.Time, Plugin: e.Plugin, Type: e.Type}
}

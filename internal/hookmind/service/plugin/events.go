package plugin

import (
	"github.com/kiosk404/hookmind/pkg/logger"
)

// EventType is the kind of a registry lifecycle event.
type EventType int

const (
	EventLoaded EventType = iota
	EventActivated
	EventDeactivated
	EventInstalled
	EventUninstalled
	EventMetadataReloaded
)

func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventActivated:
		return "activated"
	case EventDeactivated:
		return "deactivated"
	case EventInstalled:
		return "installed"
	case EventUninstalled:
		return "uninstalled"
	case EventMetadataReloaded:
		return "metadata_reloaded"
	default:
		return "unknown"
	}
}

// Event is emitted by the registry after a lifecycle transition.
type Event struct {
	Type   EventType
	Plugin string
}

// Subscribe registers fn to receive registry events. fn runs synchronously
// after the transition, outside registry locks; panics are recovered.
func (r *Registry) Subscribe(fn func(Event)) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *Registry) emit(ev Event) {
	r.subMu.RLock()
	subs := make([]func(Event), len(r.subscribers))
	copy(subs, r.subscribers)
	r.subMu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Warn("[Plugin] event subscriber panicked on %s of %q: %v", ev.Type, ev.Plugin, rec)
				}
			}()
			fn(ev)
		}()
	}
}

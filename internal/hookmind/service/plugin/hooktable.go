package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Registration is one handler of one plugin bound to one event. Registrations
// are values; only their position in the resolved order changes.
type Registration struct {
	Plugin   string
	Event    string
	Handler  HandlerFunc
	Order    Order
	Sequence uint64
}

// RegistrationHandle identifies a registration for Unregister.
type RegistrationHandle struct {
	Event    string
	Sequence uint64
}

// HookTable maps event names to registrations and caches each event's
// resolved execution order. The cache is invalidated when an event's
// registration set changes and rebuilt on the next ResolvedOrder call.
//
// Thread-safe: all mutations are guarded by a mutex. ResolvedOrder returns a
// copy, so callers may run handlers without holding any lock.
type HookTable struct {
	mu sync.RWMutex

	// lastSeq is the last sequence number handed out.
	lastSeq uint64

	// entries maps event → registrations in registration order.
	entries map[string][]Registration

	// resolved caches event → execution order.
	resolved map[string][]Registration

	// active maps sequence → event for every registration in the table.
	active map[uint64]string
}

// NewHookTable creates an empty hook table.
func NewHookTable() *HookTable {
	return &HookTable{
		entries:  make(map[string][]Registration),
		resolved: make(map[string][]Registration),
		active:   make(map[uint64]string),
	}
}

// Reserve hands out n consecutive sequence numbers and returns the first.
// The registry reserves a block per plugin at load time so that every
// activation of that plugin reuses the same tie-break positions.
func (t *HookTable) Reserve(n int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	first := t.lastSeq + 1
	if n > 0 {
		t.lastSeq += uint64(n)
	}
	return first
}

// Register adds a single handler with a fresh sequence number.
func (t *HookTable) Register(pluginName, event string, handler HandlerFunc, order Order) (RegistrationHandle, error) {
	handles, err := t.RegisterAll([]Registration{{
		Plugin:  pluginName,
		Event:   event,
		Handler: handler,
		Order:   order,
	}})
	if err != nil {
		return RegistrationHandle{}, err
	}
	return handles[0], nil
}

// RegisterAll adds a set of registrations atomically: either all of them are
// inserted or, if any is invalid, none. A zero Sequence is replaced with a
// fresh one; a non-zero Sequence must have been obtained from Reserve and must
// not be in use.
func (t *HookTable) RegisterAll(regs []Registration) ([]RegistrationHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[uint64]struct{}, len(regs))
	for _, r := range regs {
		if r.Event == "" {
			return nil, fmt.Errorf("plugin %q: registration has empty event name", r.Plugin)
		}
		if r.Handler == nil {
			return nil, fmt.Errorf("plugin %q: registration for %q has nil handler", r.Plugin, r.Event)
		}
		if r.Order < OrderUnordered || r.Order > OrderAfter {
			return nil, fmt.Errorf("plugin %q: registration for %q has unknown order %s", r.Plugin, r.Event, r.Order)
		}
		if r.Sequence == 0 {
			continue
		}
		if r.Sequence > t.lastSeq {
			return nil, fmt.Errorf("plugin %q: sequence %d was never reserved", r.Plugin, r.Sequence)
		}
		if _, ok := t.active[r.Sequence]; ok {
			return nil, fmt.Errorf("plugin %q: sequence %d is already registered", r.Plugin, r.Sequence)
		}
		if _, ok := seen[r.Sequence]; ok {
			return nil, fmt.Errorf("plugin %q: sequence %d appears twice", r.Plugin, r.Sequence)
		}
		seen[r.Sequence] = struct{}{}
	}

	handles := make([]RegistrationHandle, 0, len(regs))
	for _, r := range regs {
		if r.Sequence == 0 {
			t.lastSeq++
			r.Sequence = t.lastSeq
		}
		t.entries[r.Event] = append(t.entries[r.Event], r)
		t.active[r.Sequence] = r.Event
		delete(t.resolved, r.Event)
		handles = append(handles, RegistrationHandle{Event: r.Event, Sequence: r.Sequence})
	}
	return handles, nil
}

// Unregister removes one registration. It returns ErrHandlerNotFound when the
// handle is not in the table.
func (t *HookTable) Unregister(h RegistrationHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.removeLocked(h) {
		return fmt.Errorf("event %q sequence %d: %w", h.Event, h.Sequence, ErrHandlerNotFound)
	}
	return nil
}

// UnregisterPlugin removes every registration owned by the plugin and
// returns how many were removed.
func (t *HookTable) UnregisterPlugin(pluginName string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for event, regs := range t.entries {
		kept := regs[:0:0]
		for _, r := range regs {
			if r.Plugin == pluginName {
				delete(t.active, r.Sequence)
				removed++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == len(regs) {
			continue
		}
		t.setLocked(event, kept)
	}
	return removed
}

func (t *HookTable) removeLocked(h RegistrationHandle) bool {
	event, ok := t.active[h.Sequence]
	if !ok || event != h.Event {
		return false
	}
	regs := t.entries[event]
	for i, r := range regs {
		if r.Sequence != h.Sequence {
			continue
		}
		kept := make([]Registration, 0, len(regs)-1)
		kept = append(kept, regs[:i]...)
		kept = append(kept, regs[i+1:]...)
		t.setLocked(event, kept)
		delete(t.active, h.Sequence)
		return true
	}
	return false
}

func (t *HookTable) setLocked(event string, regs []Registration) {
	if len(regs) == 0 {
		delete(t.entries, event)
	} else {
		t.entries[event] = regs
	}
	delete(t.resolved, event)
}

// ResolvedOrder returns the execution order for event. The result is a copy.
func (t *HookTable) ResolvedOrder(event string) []Registration {
	t.mu.RLock()
	cached, ok := t.resolved[event]
	t.mu.RUnlock()
	if ok {
		return append([]Registration(nil), cached...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	cached, ok = t.resolved[event]
	if !ok {
		regs := t.entries[event]
		if len(regs) == 0 {
			return nil
		}
		cached = ResolveOrder(regs)
		t.resolved[event] = cached
	}
	return append([]Registration(nil), cached...)
}

// Events returns the names of all events with at least one registration, sorted.
func (t *HookTable) Events() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registrations for event.
func (t *HookTable) Len(event string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries[event])
}

// ResolveOrder computes the execution order of a set of registrations for one
// event: the Before band, then the unordered band, then the After band, each
// band ascending by Sequence. The input is not modified.
func ResolveOrder(regs []Registration) []Registration {
	out := append([]Registration(nil), regs...)
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := band(out[i].Order), band(out[j].Order)
		if bi != bj {
			return bi < bj
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func band(o Order) int {
	switch o {
	case OrderBefore:
		return 0
	case OrderAfter:
		return 2
	default:
		return 1
	}
}

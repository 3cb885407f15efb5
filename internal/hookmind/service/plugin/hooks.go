package plugin

import (
	"context"
	"fmt"
)

// HandlerFunc is the callback registered for an event. data is the event's
// mutable dispatch context; handlers contribute by mutating it.
type HandlerFunc func(ctx context.Context, data interface{}) error

// Order places a handler in one of three execution bands.
type Order int

const (
	// OrderUnordered is the default band.
	OrderUnordered Order = iota
	// OrderBefore runs before every unordered handler.
	OrderBefore
	// OrderAfter runs after every unordered handler.
	OrderAfter
)

func (o Order) String() string {
	switch o {
	case OrderBefore:
		return "before"
	case OrderAfter:
		return "after"
	case OrderUnordered:
		return "unordered"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// HookEntry is the structured form of a declaration. Before and After are
// mutually exclusive.
type HookEntry struct {
	Function HandlerFunc
	Before   bool
	After    bool
}

// HookDeclaration binds one handler of a plugin to one event.
type HookDeclaration struct {
	Event   string
	Handler HandlerFunc
	Order   Order

	// invalid holds the reason the declaration was rejected at construction.
	invalid string
}

// On declares an unordered handler.
func On(event string, fn HandlerFunc) HookDeclaration {
	return Hook(event, fn)
}

// Before declares a handler that runs before unordered handlers.
func Before(event string, fn HandlerFunc) HookDeclaration {
	return Hook(event, HookEntry{Function: fn, Before: true})
}

// After declares a handler that runs after unordered handlers.
func After(event string, fn HandlerFunc) HookDeclaration {
	return Hook(event, HookEntry{Function: fn, After: true})
}

// Hook builds a declaration from either a bare HandlerFunc (unordered) or a
// HookEntry. Anything else, a nil function, or an entry with both Before and
// After set yields a declaration that the registry rejects at load time with
// an InvalidHookDeclarationError.
func Hook(event string, spec interface{}) HookDeclaration {
	decl, err := NewHookDeclaration(event, spec)
	if err != nil {
		return HookDeclaration{Event: event, invalid: err.Error()}
	}
	return decl
}

// NewHookDeclaration is like Hook but reports the problem immediately.
func NewHookDeclaration(event string, spec interface{}) (HookDeclaration, error) {
	if event == "" {
		return HookDeclaration{}, fmt.Errorf("event name is empty")
	}
	switch v := spec.(type) {
	case HandlerFunc:
		if v == nil {
			return HookDeclaration{}, fmt.Errorf("handler is nil")
		}
		return HookDeclaration{Event: event, Handler: v, Order: OrderUnordered}, nil
	case func(context.Context, interface{}) error:
		if v == nil {
			return HookDeclaration{}, fmt.Errorf("handler is nil")
		}
		return HookDeclaration{Event: event, Handler: v, Order: OrderUnordered}, nil
	case HookEntry:
		if v.Function == nil {
			return HookDeclaration{}, fmt.Errorf("entry has no function")
		}
		if v.Before && v.After {
			return HookDeclaration{}, fmt.Errorf("entry sets both before and after")
		}
		order := OrderUnordered
		switch {
		case v.Before:
			order = OrderBefore
		case v.After:
			order = OrderAfter
		}
		return HookDeclaration{Event: event, Handler: v.Function, Order: order}, nil
	default:
		return HookDeclaration{}, fmt.Errorf("unsupported declaration type %T", spec)
	}
}

// validate converts a construction failure into the typed load-time error.
func (d HookDeclaration) validate(pluginName string) error {
	if d.invalid != "" {
		return &InvalidHookDeclarationError{Plugin: pluginName, Event: d.Event, Reason: d.invalid}
	}
	if d.Event == "" {
		return &InvalidHookDeclarationError{Plugin: pluginName, Event: d.Event, Reason: "event name is empty"}
	}
	if d.Handler == nil {
		return &InvalidHookDeclarationError{Plugin: pluginName, Event: d.Event, Reason: "handler is nil"}
	}
	if d.Order < OrderUnordered || d.Order > OrderAfter {
		return &InvalidHookDeclarationError{Plugin: pluginName, Event: d.Event, Reason: fmt.Sprintf("unknown order %s", d.Order)}
	}
	return nil
}

package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrPluginNotFound is returned when a plugin name is not known to the registry.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrAlreadyLoaded is returned when a plugin with the same name is loaded twice.
	ErrAlreadyLoaded = errors.New("plugin is already loaded")

	// ErrHandlerNotFound is returned when unregistering a handle the table does not hold.
	ErrHandlerNotFound = errors.New("hook handler not found")

	// ErrSlotOccupied is returned when a second plugin tries to take an exclusive slot.
	ErrSlotOccupied = errors.New("plugin slot is occupied")
)

// MetadataParseError reports a malformed metadata override document.
type MetadataParseError struct {
	Plugin string
	Source string
	Err    error
}

func (e *MetadataParseError) Error() string {
	msg := "invalid metadata document"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Plugin != "" {
		msg = fmt.Sprintf("plugin %q: %s", e.Plugin, msg)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *MetadataParseError) Unwrap() error { return e.Err }

// InvalidHookDeclarationError reports a hook declaration rejected at load time.
type InvalidHookDeclarationError struct {
	Plugin string
	Event  string
	Reason string
}

func (e *InvalidHookDeclarationError) Error() string {
	return fmt.Sprintf("plugin %q: invalid hook declaration for event %q: %s", e.Plugin, e.Event, e.Reason)
}

// HandlerExecutionError reports a handler that failed or panicked during dispatch.
type HandlerExecutionError struct {
	Event    string
	Plugin   string
	Err      error
	Panicked bool
}

func (e *HandlerExecutionError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("hook %q: handler of plugin %q panicked: %v", e.Event, e.Plugin, e.Err)
	}
	return fmt.Sprintf("hook %q: handler of plugin %q failed: %v", e.Event, e.Plugin, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error { return e.Err }

// LifecycleOrderError reports a lifecycle transition that is not allowed
// from the plugin's current state.
type LifecycleOrderError struct {
	Plugin string
	Op     string
	State  State
}

func (e *LifecycleOrderError) Error() string {
	return fmt.Sprintf("plugin %q: cannot %s while %s", e.Plugin, e.Op, e.State)
}

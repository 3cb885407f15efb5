package plugin

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kiosk404/hookmind/pkg/logger"
)

// Policy decides what a dispatch does when a handler fails.
type Policy int

const (
	// PolicyBroadcast logs and skips a failing handler; the remaining
	// handlers still run. It is the default for every event.
	PolicyBroadcast Policy = iota
	// PolicyAuthoritative aborts the dispatch at the first failing handler
	// and returns a *HandlerExecutionError.
	PolicyAuthoritative
)

func (p Policy) String() string {
	switch p {
	case PolicyBroadcast:
		return "broadcast"
	case PolicyAuthoritative:
		return "authoritative"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Dispatcher runs the resolved handlers of an event against a shared
// dispatch context. Dispatch is synchronous and re-entrant: the hook table is
// only locked while the order is copied, never while handlers run.
type Dispatcher struct {
	table *HookTable

	mu       sync.RWMutex
	policies map[string]Policy

	timeout time.Duration
	metrics *dispatchMetrics

	dispatched atomic.Uint64
	invoked    atomic.Uint64
	failed     atomic.Uint64
	panicked   atomic.Uint64
	aborted    atomic.Uint64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPolicy sets the failure policy of one event.
func WithPolicy(event string, p Policy) DispatcherOption {
	return func(d *Dispatcher) {
		d.policies[event] = p
	}
}

// WithPolicies sets the failure policy of several events.
func WithPolicies(policies map[string]Policy) DispatcherOption {
	return func(d *Dispatcher) {
		for event, p := range policies {
			d.policies[event] = p
		}
	}
}

// WithHandlerTimeout gives every handler invocation a context deadline.
// Handlers that ignore their context are not interrupted.
func WithHandlerTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithoutMetrics disables prometheus recording.
func WithoutMetrics() DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = nil
	}
}

// NewDispatcher creates a dispatcher over table.
func NewDispatcher(table *HookTable, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		table:    table,
		policies: make(map[string]Policy),
		metrics:  globalDispatchMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetPolicy changes the failure policy of event.
func (d *Dispatcher) SetPolicy(event string, p Policy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.policies[event] = p
}

// Policy returns the failure policy of event.
func (d *Dispatcher) Policy(event string) Policy {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.policies[event]
}

// Dispatch invokes every handler registered for event, in resolved order,
// with the same data value, and returns data. Under PolicyAuthoritative the
// first failure stops the dispatch and is returned as *HandlerExecutionError;
// under PolicyBroadcast failures are logged and the error is nil.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, data interface{}) (interface{}, error) {
	regs := d.table.ResolvedOrder(event)
	if len(regs) == 0 {
		return data, nil
	}

	d.dispatched.Add(1)
	policy := d.Policy(event)
	done := d.metrics.recordDispatch(event)
	log := logger.WithFields(logger.Fields{
		"dispatch_id": uuid.New().String(),
		"event":       event,
		"policy":      policy.String(),
	})
	log.Debugf("[Dispatcher] dispatching %q to %d handlers", event, len(regs))

	failures := 0
	for _, reg := range regs {
		err := d.invoke(ctx, reg, data)
		if err == nil {
			continue
		}

		failures++
		d.metrics.recordFailure(event, reg.Plugin)
		if policy == PolicyAuthoritative {
			d.aborted.Add(1)
			log.WithField("plugin", reg.Plugin).Errorf("[Dispatcher] aborting %q: %v", event, err)
			done("aborted")
			return data, err
		}
		log.WithField("plugin", reg.Plugin).Warnf("[Dispatcher] skipping failed handler: %v", err)
	}

	if failures > 0 {
		done("degraded")
	} else {
		done("ok")
	}
	return data, nil
}

func (d *Dispatcher) invoke(ctx context.Context, reg Registration, data interface{}) (err error) {
	d.invoked.Add(1)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.panicked.Add(1)
			d.failed.Add(1)
			logger.Debug("[Dispatcher] handler of plugin %q panicked: %v\n%s", reg.Plugin, r, debug.Stack())
			err = &HandlerExecutionError{Event: reg.Event, Plugin: reg.Plugin, Err: fmt.Errorf("%v", r), Panicked: true}
		}
	}()

	if herr := reg.Handler(ctx, data); herr != nil {
		d.failed.Add(1)
		var hee *HandlerExecutionError
		if errors.As(herr, &hee) && hee.Event == reg.Event && hee.Plugin == reg.Plugin {
			return hee
		}
		return &HandlerExecutionError{Event: reg.Event, Plugin: reg.Plugin, Err: herr}
	}
	return nil
}

// DispatchTo is Dispatch with a typed context, so callers don't need a type assertion.
func DispatchTo[T any](ctx context.Context, d *Dispatcher, event string, data T) (T, error) {
	if _, err := d.Dispatch(ctx, event, data); err != nil {
		return data, err
	}
	return data, nil
}

// DispatchStats is a snapshot of dispatcher counters.
type DispatchStats struct {
	// Dispatched counts dispatches that had at least one handler.
	Dispatched uint64
	// Invoked counts handler invocations.
	Invoked uint64
	// Failed counts handlers that returned an error or panicked.
	Failed uint64
	// Panicked counts handlers that panicked.
	Panicked uint64
	// Aborted counts authoritative dispatches stopped by a failure.
	Aborted uint64
}

// Stats returns the dispatcher counters. Values are read without a common
// lock and may be slightly inconsistent under concurrent dispatch.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Dispatched: d.dispatched.Load(),
		Invoked:    d.invoked.Load(),
		Failed:     d.failed.Load(),
		Panicked:   d.panicked.Load(),
		Aborted:    d.aborted.Load(),
	}
}

package oplog

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"slices"
	"sync"
)

// policy is the registry record for an operation.
type policy struct {
	invoke   Invoker
	observed bool
	disabled bool
	inverse  Op      // empty if unpaired
	derive   Deriver // nil: copy forward arguments
}

type callback struct {
	handle Handle
	fn     func(Event)
}

// Log is a registry of operations together with the sets of currently
// registered subscribers and observers. A Log starts empty: no operation
// is known, no subscriber or observer is registered.
//
// Clients usually share the process-wide log returned by Default, but may
// create isolated logs with New.
type Log struct {
	mu          sync.RWMutex
	ops         map[Op]*policy
	subscribers []callback
	observers   []callback
	next        Handle
}

// New creates an empty operation log.
func New() *Log {
	return &Log{ops: make(map[Op]*policy)}
}

var defaultLog = New()

// Default returns the process-wide operation log.
func Default() *Log {
	return defaultLog
}

// --- Registry --------------------------------------------------------------

// Register makes op known to the log, together with an invoker to call it
// when replaying events. If op is already registered, Register leaves the
// existing declaration untouched and returns false.
func (l *Log) Register(op Op, invoke Invoker) bool {
	assertThat(invoke != nil, "invoker for operation %q may not be nil", op)
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.policyFor(op)
	if p.invoke != nil {
		return false
	}
	p.invoke = invoke
	tracer().Debugf("registered operation %s", op)
	return true
}

// Registered is a predicate: has op been registered with an invoker?
func (l *Log) Registered(op Op) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.ops[op]
	return ok && p.invoke != nil
}

// policyFor returns the policy for op, creating an entry without invoker
// if necessary. Must be called with l.mu held.
func (l *Log) policyFor(op Op) *policy {
	p, ok := l.ops[op]
	if !ok {
		p = &policy{}
		l.ops[op] = p
	}
	return p
}

// MarkObserved declares that calls to op are intercepted and dispatched.
// Once observed, an operation stays observed.
func (l *Log) MarkObserved(op Op) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.policyFor(op).observed = true
}

// DeclareReversible declares inverse as the inverse operation of op.
// derive computes the inverse call's arguments; if it is nil, the forward
// arguments are used unchanged.
func (l *Log) DeclareReversible(op, inverse Op, derive Deriver) {
	assertThat(inverse != "", "inverse of operation %q may not be empty", op)
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.policyFor(op)
	p.inverse = inverse
	p.derive = derive
	tracer().Debugf("operation %s is reversed by %s", op, inverse)
}

// DeclareReversiblePair declares a and b to be each other's inverse.
// bindA derives the arguments of b from a call of a, bindB the arguments
// of a from a call of b.
func (l *Log) DeclareReversiblePair(a, b Op, bindA, bindB Deriver) {
	l.DeclareReversible(a, b, bindA)
	l.DeclareReversible(b, a, bindB)
}

// DisableDispatching suppresses events for op, even if op is observed.
// This is meant for operations which are only ever called as a side effect
// of other observed operations, to avoid recording them twice.
func (l *Log) DisableDispatching(op Op) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.policyFor(op).disabled = true
}

// EnableDispatching reverts the effect of DisableDispatching.
func (l *Log) EnableDispatching(op Op) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.policyFor(op).disabled = false
}

// Dispatching is a predicate: will calls of op produce events?
// This does not take into account whether anybody is listening.
func (l *Log) Dispatching(op Op) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.ops[op]
	return ok && p.observed && !p.disabled
}

// State returns the recording state of op.
func (l *Log) State(op Op) State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.ops[op]
	switch {
	case !ok || !p.observed:
		return Idle
	case len(l.subscribers) == 0:
		return ObservedInactive
	}
	return ObservedActive
}

// --- Subscribers and observers ---------------------------------------------

// Subscribe registers a subscriber. It returns a handle for Unsubscribe.
func (l *Log) Subscribe(s Subscriber) Handle {
	assertThat(s != nil, "subscriber may not be nil")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.subscribers = append(l.subscribers, callback{handle: l.next, fn: s})
	tracer().Debugf("subscriber #%d registered, %d active", l.next, len(l.subscribers))
	return l.next
}

// Unsubscribe removes a subscriber. Unknown handles are ignored.
func (l *Log) Unsubscribe(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = removeCallback(l.subscribers, h)
	tracer().Debugf("subscriber #%d unregistered, %d active", h, len(l.subscribers))
}

// Observe registers an observer. It returns a handle for Unobserve.
func (l *Log) Observe(o Observer) Handle {
	assertThat(o != nil, "observer may not be nil")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.observers = append(l.observers, callback{handle: l.next, fn: o})
	return l.next
}

// Unobserve removes an observer. Unknown handles are ignored.
func (l *Log) Unobserve(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = removeCallback(l.observers, h)
}

// Recording is a predicate: is at least one subscriber registered?
func (l *Log) Recording() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subscribers) > 0
}

func removeCallback(cbs []callback, h Handle) []callback {
	return slices.DeleteFunc(cbs, func(cb callback) bool {
		return cb.handle == h
	})
}

func snapshot(cbs []callback) []func(Event) {
	fns := make([]func(Event), len(cbs))
	for i, cb := range cbs {
		fns[i] = cb.fn
	}
	return fns
}

// --- Dispatching -----------------------------------------------------------

// Call is a pending event, created by Begin before an observed operation
// takes effect. A nil *Call is valid and does nothing.
type Call struct {
	log   *Log
	event Event
}

// Begin prepares the event for a call of op on target. It has to be called
// before the call changes any state of target, as the inverse call's
// arguments are derived now. Callers are expected to have validated the
// call's preconditions.
//
// If the call will not produce an event (op not observed, dispatching
// disabled, or nobody listening), Begin returns a nil *Call.
func (l *Log) Begin(target any, op Op, args ...any) (*Call, error) {
	l.mu.RLock()
	p, ok := l.ops[op]
	listening := len(l.subscribers) > 0 || len(l.observers) > 0
	var pol policy
	if ok {
		pol = *p
	}
	l.mu.RUnlock()
	if !ok || !pol.observed || pol.disabled || !listening {
		return nil, nil
	}
	call := &Call{log: l, event: Event{Target: target, Op: op, Args: args}}
	if pol.inverse != "" {
		invArgs := slices.Clone(args)
		if pol.derive != nil {
			var err error
			if invArgs, err = pol.derive(target, args); err != nil {
				tracer().Errorf("cannot derive inverse of %s: %v", call.event, err)
				return nil, fmt.Errorf("deriving inverse of %s: %w", op, err)
			}
		}
		call.event.Undo = &Event{Target: target, Op: pol.inverse, Args: invArgs}
	}
	return call, nil
}

// End completes a call. err is the result of the operation itself: if it is
// non-nil, the event is dropped and err is returned unchanged. Otherwise the
// event is dispatched to observers and subscribers.
func (c *Call) End(err error) error {
	if c == nil || err != nil {
		return err
	}
	c.log.dispatch(c.event)
	return nil
}

// Event returns the pending event.
func (c *Call) Event() Event {
	if c == nil {
		return Event{}
	}
	return c.event
}

func (l *Log) dispatch(ev Event) {
	l.mu.RLock()
	observers := snapshot(l.observers)
	l.mu.RUnlock()
	for _, o := range observers {
		o(ev)
	}
	l.Record(ev)
}

// Record hands an event to every registered subscriber.
func (l *Log) Record(ev Event) {
	l.mu.RLock()
	subscribers := snapshot(l.subscribers)
	l.mu.RUnlock()
	if len(subscribers) == 0 {
		return
	}
	tracer().Debugf("record %s", ev)
	for _, s := range subscribers {
		s(ev)
	}
}

// Replay undoes an event by invoking its inverse call on the event's target.
// If subscribers are still registered, the inverse call is recorded in turn,
// which enables redo of an undo.
//
// Replay returns ErrUnpairedOperation for events without an inverse.
func (l *Log) Replay(ev Event) error {
	if ev.Undo == nil {
		tracer().Errorf("cannot replay %s", ev)
		return fmt.Errorf("%w: %s", ErrUnpairedOperation, ev.Op)
	}
	tracer().Debugf("replay %s", ev)
	return l.Apply(*ev.Undo)
}

// Apply invokes an event as a direct call, i.e. it calls ev.Op with ev.Args
// on ev.Target. This is meant for events which already are inverse calls.
func (l *Log) Apply(ev Event) error {
	l.mu.RLock()
	p, ok := l.ops[ev.Op]
	var invoke Invoker
	if ok {
		invoke = p.invoke
	}
	l.mu.RUnlock()
	if invoke == nil {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, ev.Op)
	}
	if err := invoke(ev.Target, ev.Args); err != nil {
		return fmt.Errorf("applying %s: %w", ev.Op, err)
	}
	return nil
}

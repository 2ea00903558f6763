package oplog

import (
	"fmt"
	"strings"
)

// Op names an operation kind, e.g. "forest[string].add".
// Operations are declared to a Log before use.
type Op string

// Event records a single call of an observed operation: the target the
// operation was called on, the operation and the arguments as supplied.
//
// Undo is the inverse call, with its arguments derived from the target's
// state before the forward call took effect. It is nil for operations without
// a declared inverse. An event without Undo may still be invoked directly
// with Log.Apply.
type Event struct {
	Target any
	Op     Op
	Args   []any
	Undo   *Event
}

func (ev Event) String() string {
	var b strings.Builder
	b.WriteString(string(ev.Op))
	b.WriteByte('(')
	for i, a := range ev.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", a)
	}
	b.WriteByte(')')
	if ev.Undo != nil {
		b.WriteString(" ⇄ ")
		b.WriteString(ev.Undo.String())
	}
	return b.String()
}

// Subscriber is notified of every dispatched event while it is registered.
// Subscribers are the building block for undo lists.
type Subscriber func(Event)

// Observer is notified of every dispatched event, independent of whether
// any subscriber is registered.
type Observer func(Event)

// Handle identifies a registered subscriber or observer.
type Handle uint64

// Invoker calls an operation on a target. Invokers are used to replay events.
type Invoker func(target any, args []any) error

// Deriver computes the arguments of an inverse call from the arguments of
// the forward call. It is called before the forward call takes effect and
// may therefore capture state of the target which the forward call will change.
type Deriver func(target any, args []any) ([]any, error)

// State is the recording state of an operation.
type State int8

// An operation is Idle until it is marked observed. Observed operations are
// recorded only while at least one subscriber is registered.
const (
	Idle State = iota
	ObservedInactive
	ObservedActive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ObservedInactive:
		return "observed-inactive"
	case ObservedActive:
		return "observed-active"
	}
	return "<unknown>"
}

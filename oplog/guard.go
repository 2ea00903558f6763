package oplog

import (
	"errors"
	"fmt"
	"sync"
)

// Guard calls fn and reverts its effects if fn fails. Every event dispatched
// by l while fn runs is collected by an observer; if fn returns an error,
// the collected events are replayed newest first. Guard returns the error of
// fn, joined with any replay errors.
//
// Reverting relies on observed operations only: state changed by operations
// which are not observed, or for which dispatching is disabled, is left as it is.
// Events without an inverse cannot be reverted and produce an
// ErrUnpairedOperation in the returned error.
func Guard(l *Log, fn func() error) error {
	if l == nil {
		l = Default()
	}
	var mu sync.Mutex
	var events []Event
	h := l.Observe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	err := fn()
	l.Unobserve(h)
	if err == nil {
		return nil
	}
	tracer().Infof("reverting %d events after failure: %v", len(events), err)
	errs := []error{err}
	for i := len(events) - 1; i >= 0; i-- {
		if rerr := l.Replay(events[i]); rerr != nil {
			errs = append(errs, fmt.Errorf("revert: %w", rerr))
		}
	}
	return errors.Join(errs...)
}

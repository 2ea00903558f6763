package oplog

import (
	"fmt"
	"slices"
	"sync"
)

// Recorder keeps an undo list of events. It subscribes to a Log while
// recording and collects every dispatched event in call order.
//
// Undo replays the collected events newest first. While the recorder is
// still recording, the calls performed by the replay are collected as well,
// so a second Undo reverts the first one (redo).
type Recorder struct {
	log       *Log
	mu        sync.Mutex
	events    []Event
	handle    Handle
	recording bool
}

// NewRecorder creates a recorder for log l. Recording has to be started
// explicitly by calling Start.
func NewRecorder(l *Log) *Recorder {
	if l == nil {
		l = Default()
	}
	return &Recorder{log: l}
}

// Start clears the undo list and starts recording.
// Calling Start on a recording Recorder only clears the list.
func (r *Recorder) Start() {
	r.mu.Lock()
	r.events = nil
	if r.recording {
		r.mu.Unlock()
		return
	}
	r.recording = true
	r.mu.Unlock()
	h := r.log.Subscribe(r.append)
	r.mu.Lock()
	r.handle = h
	r.mu.Unlock()
}

// Stop stops recording. The undo list is kept.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return
	}
	r.recording = false
	h := r.handle
	r.mu.Unlock()
	r.log.Unsubscribe(h)
}

// Recording is a predicate: is r subscribed to its log?
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *Recorder) append(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the undo list, oldest event first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Len returns the number of events in the undo list.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Undo takes the current undo list, clears it and replays its events in
// reverse order. If replaying an event fails, the undo list is reset to the
// events not yet undone, including the failing one, and the error is
// returned. Events recorded by the partial replay are discarded, so the list
// holds only events whose effects are still in place.
func (r *Recorder) Undo() error {
	r.mu.Lock()
	events := r.events
	r.events = nil
	r.mu.Unlock()
	if len(events) == 0 {
		return ErrNothingToUndo
	}
	tracer().Infof("undo %d events", len(events))
	for i := len(events) - 1; i >= 0; i-- {
		if err := r.log.Replay(events[i]); err != nil {
			r.mu.Lock()
			r.events = slices.Clone(events[:i+1])
			r.mu.Unlock()
			return fmt.Errorf("undo of event #%d failed: %w", i, err)
		}
	}
	return nil
}

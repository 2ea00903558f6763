/*
Package oplog records mutating calls on arbitrary objects and replays their
inverses, giving undo/redo without snapshotting or diffing state.

Operations are declared in a registry kept by a Log. For every operation the
registry knows

   - how to invoke it on a target (an Invoker), used when replaying,
   - whether calls are observed at all (MarkObserved),
   - whether dispatching has been switched off for it (DisableDispatching),
   - its inverse operation and how to derive the inverse call's arguments
     from the forward call and the target's state before the call
     (DeclareReversible, DeclareReversiblePair).

A mutating method wraps its work in Begin/End:

   call, err := log.Begin(target, opAdd, node, parent)
   if err != nil {
       return err
   }
   err = target.add(node, parent)
   return call.End(err)

If the call succeeds, an Event is dispatched to all observers and, if at least
one subscriber is registered, to all subscribers. Events carry their
precomputed inverse call, which Replay invokes.

Undo Lists

Applications hold their own undo lists. The usual protocol is implemented by
type Recorder:

   rec := oplog.NewRecorder(log)
   rec.Start()          // clear list, subscribe
   …                    // mutate observed targets
   err := rec.Undo()    // replay newest first; replays are recorded again (redo)
   rec.Stop()

Concurrency

A Log protects its registry and subscriber sets with a mutex. Subscribers and
observers are called synchronously, in registration order, without holding
the lock; they may register or unregister other callbacks.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package oplog

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'canopy.oplog'.
func tracer() tracing.Trace {
	return tracing.Select("canopy.oplog")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("canopy.oplog: "+msg, msgargs...)
		panic(msg)
	}
}

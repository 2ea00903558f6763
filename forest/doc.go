/*
Package forest implements an ordered forest: a set of trees sharing one
flattened render order.

Clients add, remove and reparent nodes, which are opaque values of a
comparable type. The forest keeps three views of its nodes consistent:
the render order (every node appears after its parent, and a node's subtree
occupies a contiguous block directly following it), the ordered list of
children per node, and the parent of every node.

   f := forest.New[string]()
   f.Add("A", "")          // "" is the root
   f.Add("B", "A")
   f.Add("C", "A")
   f.Nodes()               // [A B C]
   f.Reparent("B", "C")
   f.Nodes()               // [A C B]

The zero value of the node type denotes the root of the forest. It can be
used as a parent argument, but never as a node.

Undo

All mutating operations are reported to an operation log (package oplog),
declared as reversible pairs: Add and Remove undo each other, Reparent is
undone by moving the node back to its former parent and position.
Clients subscribe to the log to build undo lists (see oplog.Recorder).

Sorting

A Sorter orders arbitrary subsets of a forest's nodes by render order,
using an index snapshot taken with Reindex.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 Norbert Pillmayer <norbert@pillmayer.com>

*/
package forest

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'canopy.forest'.
func tracer() tracing.Trace {
	return tracing.Select("canopy.forest")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("canopy.forest: "+msg, msgargs...)
		panic(msg)
	}
}

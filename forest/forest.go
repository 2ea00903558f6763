package forest

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

	"github.com/npillmayer/canopy/oplog"
)

/*
We keep three structures in sync:

  - order: all nodes, in render order
  - children: per node (and for the root, keyed by the zero value) the ordered list of children
  - parents: child → parent, absent for nodes at root level

Invariant: len(children) == len(order) + 1.
A node's subtree occupies a contiguous block in order, directly following the
node, with the subtrees of its children in the order of the children list.
*/

// Forest is an ordered forest of nodes of type T.
// An empty forest is created with New.
//
// All operations are safe for concurrent use. Mutations are serialized
// together with the dispatch of their events, so events reach the operation
// log in mutation order. Events are dispatched after the forest data has been
// unlocked: subscribers and observers may query the forest, but must not
// mutate it from within the callback.
type Forest[T comparable] struct {
	serial   sync.Mutex   // held across a mutation and the dispatch of its events
	mu       sync.RWMutex // guards the data
	order    []T
	children map[T][]T
	parents  map[T]T
	log      *oplog.Log
	ops      Operations
}

// Option is a type to help initializing forests at creation time.
type Option[T comparable] func(*Forest[T])

// WithLog sets the operation log a forest reports its mutations to.
// The default is oplog.Default().
func WithLog[T comparable](l *oplog.Log) Option[T] {
	return func(f *Forest[T]) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates an empty forest.
//
// The zero value of T denotes the root of the forest, i.e. it is the parent of
// nodes at root level. It therefore cannot be used as a node: for a forest of
// strings "" can never be added, for a forest of ints 0 cannot.
func New[T comparable](opts ...Option[T]) *Forest[T] {
	var root T
	f := &Forest[T]{
		children: map[T][]T{root: nil},
		parents:  make(map[T]T),
		log:      oplog.Default(),
	}
	for _, option := range opts {
		option(f)
	}
	f.ops = declareOperations[T](f.log)
	return f
}

// Log returns the operation log f reports to.
func (f *Forest[T]) Log() *oplog.Log {
	return f.log
}

// --- Mutations -------------------------------------------------------------

// Add inserts node as the last child of parent. If parent is the zero value,
// node is added at root level. Node must not already be present, and parent
// must be present.
func (f *Forest[T]) Add(node, parent T) error {
	return f.insert(node, parent, -1)
}

// Insert inserts node as a child of parent at position index of parent's
// children. Index may range from 0 to the number of children of parent,
// the latter being equivalent to Add.
func (f *Forest[T]) Insert(node, parent T, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return f.insert(node, parent, index)
}

func (f *Forest[T]) insert(node, parent T, at int) error {
	f.serial.Lock()
	defer f.serial.Unlock()
	f.mu.Lock()
	err := f.checkInsert(node, parent, at)
	var call *oplog.Call
	if err == nil {
		if at < 0 {
			call, err = f.log.Begin(f, f.ops.Add, node, parent)
		} else {
			call, err = f.log.Begin(f, f.ops.Add, node, parent, at)
		}
	}
	if err == nil {
		f.attach(node, parent, at)
		tracer().Debugf("added %v to %v, order = %v", node, parent, f.order)
	}
	f.mu.Unlock()
	if err != nil {
		tracer().Errorf("cannot add %v: %v", node, err)
	}
	return call.End(err)
}

func (f *Forest[T]) checkInsert(node, parent T, at int) error {
	var zero T
	if node == zero {
		return ErrInvalidNode
	}
	if f.contains(node) {
		return fmt.Errorf("%w: %v", ErrDuplicateNode, node)
	}
	if !f.contains(parent) {
		return fmt.Errorf("%w: %v", ErrUnknownParent, parent)
	}
	if at > len(f.children[parent]) {
		return fmt.Errorf("%w: %d > %d", ErrIndexOutOfRange, at, len(f.children[parent]))
	}
	return nil
}

// attach links node as a child of parent at position at (or last, if at < 0)
// and inserts it into the render order. Node must not have descendants.
func (f *Forest[T]) attach(node, parent T, at int) {
	f.link(node, parent, at)
	f.children[node] = nil
	f.order = slices.Insert(f.order, f.successor(node), node)
	assertThat(len(f.children) == len(f.order)+1, "children/order out of sync after adding %v", node)
}

// link makes node a child of parent, at position at (or last, if at < 0).
func (f *Forest[T]) link(node, parent T, at int) {
	var zero T
	siblings := f.children[parent]
	if at < 0 || at >= len(siblings) {
		f.children[parent] = append(siblings, node)
	} else {
		f.children[parent] = slices.Insert(siblings, at, node)
	}
	if parent == zero {
		delete(f.parents, node)
	} else {
		f.parents[node] = parent
	}
}

// unlink removes node from the children of its parent. It returns the
// parent and the position node had.
func (f *Forest[T]) unlink(node T) (T, int) {
	parent := f.parents[node]
	siblings := f.children[parent]
	i := slices.Index(siblings, node)
	assertThat(i >= 0, "node %v missing in children of its parent %v", node, parent)
	f.children[parent] = slices.Delete(siblings, i, i+1)
	delete(f.parents, node)
	return parent, i
}

// successor returns the position in the render order directly following the
// block of node's subtree: the position of node's next sibling or, if there is
// none, of the next sibling of the nearest ancestor having one. If no such
// node exists, this is the end of the render order.
// The nodes of node's subtree must not be part of the render order.
func (f *Forest[T]) successor(node T) int {
	var zero T
	for n := node; n != zero; n = f.parents[n] {
		if next, ok := f.nextSibling(n); ok {
			i := slices.Index(f.order, next)
			assertThat(i >= 0, "sibling %v of %v missing in render order", next, n)
			return i
		}
	}
	return len(f.order)
}

// Remove removes node and its complete subtree from the forest.
//
// Every removed node is reported to the operation log separately, children
// before their parent and younger siblings before older ones. Replaying these
// events in reverse order rebuilds the subtree.
func (f *Forest[T]) Remove(node T) error {
	f.serial.Lock()
	defer f.serial.Unlock()
	f.mu.Lock()
	if !f.isNode(node) {
		f.mu.Unlock()
		tracer().Errorf("cannot remove %v: not in forest", node)
		return fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	var calls []*oplog.Call
	err := f.removeSubtree(node, &calls)
	tracer().Debugf("removed %v, order = %v", node, f.order)
	f.mu.Unlock()
	for _, call := range calls {
		call.End(nil)
	}
	return err
}

func (f *Forest[T]) removeSubtree(node T, calls *[]*oplog.Call) error {
	children := slices.Clone(f.children[node])
	for i := len(children) - 1; i >= 0; i-- {
		if err := f.removeSubtree(children[i], calls); err != nil {
			return err
		}
	}
	call, err := f.log.Begin(f, f.ops.Remove, node)
	if err != nil {
		return err
	}
	assertThat(len(f.children[node]) == 0, "node %v still has children while being removed", node)
	f.unlink(node)
	delete(f.children, node)
	i := slices.Index(f.order, node)
	assertThat(i >= 0, "node %v missing in render order", node)
	f.order = slices.Delete(f.order, i, i+1)
	assertThat(len(f.children) == len(f.order)+1, "children/order out of sync after removing %v", node)
	*calls = append(*calls, call)
	return nil
}

// Reparent moves node, together with its subtree, to become the last child
// of parent. If parent is the zero value, node is moved to root level.
// Parent may not be node itself or one of its descendants.
func (f *Forest[T]) Reparent(node, parent T) error {
	return f.reparent(node, parent, -1)
}

// ReparentAt moves node, together with its subtree, to become the child of
// parent at position index. Index refers to the children of parent without
// node.
func (f *Forest[T]) ReparentAt(node, parent T, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return f.reparent(node, parent, index)
}

func (f *Forest[T]) reparent(node, parent T, at int) error {
	f.serial.Lock()
	defer f.serial.Unlock()
	f.mu.Lock()
	err := f.checkReparent(node, parent, at)
	var call *oplog.Call
	if err == nil {
		if at < 0 {
			call, err = f.log.Begin(f, f.ops.Reparent, node, parent)
		} else {
			call, err = f.log.Begin(f, f.ops.Reparent, node, parent, at)
		}
	}
	if err == nil {
		f.move(node, parent, at)
		tracer().Debugf("moved %v to %v, order = %v", node, parent, f.order)
	}
	f.mu.Unlock()
	if err != nil {
		tracer().Errorf("cannot reparent %v: %v", node, err)
	}
	return call.End(err)
}

func (f *Forest[T]) checkReparent(node, parent T, at int) error {
	var zero T
	if node == zero {
		return ErrInvalidNode
	}
	if !f.contains(node) {
		return fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	if !f.contains(parent) {
		return fmt.Errorf("%w: %v", ErrUnknownParent, parent)
	}
	for p := parent; p != zero; p = f.parents[p] {
		if p == node {
			return fmt.Errorf("%w: %v below %v", ErrCyclicReparent, node, parent)
		}
	}
	n := len(f.children[parent])
	if f.parents[node] == parent {
		n--
	}
	if at > n {
		return fmt.Errorf("%w: %d > %d", ErrIndexOutOfRange, at, n)
	}
	return nil
}

// move relinks node below parent and shifts the block of node's subtree to
// its new position in the render order. Relations within the subtree stay
// untouched.
func (f *Forest[T]) move(node, parent T, at int) {
	f.unlink(node)
	f.link(node, parent, at)
	start := slices.Index(f.order, node)
	assertThat(start >= 0, "node %v missing in render order", node)
	end := start + 1 + f.countDescendants(node)
	block := slices.Clone(f.order[start:end])
	f.order = slices.Delete(f.order, start, end)
	f.order = slices.Insert(f.order, f.successor(node), block...)
}

func (f *Forest[T]) countDescendants(node T) int {
	n := 0
	for _, ch := range f.children[node] {
		n += 1 + f.countDescendants(ch)
	}
	return n
}

// --- Internal queries, f.mu must be held -----------------------------------

// contains reports whether n is a node or the root.
func (f *Forest[T]) contains(n T) bool {
	_, ok := f.children[n]
	return ok
}

// isNode reports whether n is a node (excluding the root).
func (f *Forest[T]) isNode(n T) bool {
	var zero T
	return n != zero && f.contains(n)
}

func (f *Forest[T]) nextSibling(node T) (T, bool) {
	siblings := f.children[f.parents[node]]
	i := slices.Index(siblings, node)
	assertThat(i >= 0, "node %v missing in children of its parent", node)
	if i+1 < len(siblings) {
		return siblings[i+1], true
	}
	var zero T
	return zero, false
}

func (f *Forest[T]) previousSibling(node T) (T, bool) {
	siblings := f.children[f.parents[node]]
	i := slices.Index(siblings, node)
	assertThat(i >= 0, "node %v missing in children of its parent", node)
	if i > 0 {
		return siblings[i-1], true
	}
	var zero T
	return zero, false
}

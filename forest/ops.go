package forest

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/npillmayer/canopy/oplog"
)

// Operations holds the names under which forests of a node type report
// their mutations to an operation log. Clients may use them to disable
// dispatching of single operations, or to filter events.
type Operations struct {
	Add      oplog.Op // arguments: node, parent [, index]
	Remove   oplog.Op // arguments: node
	Reparent oplog.Op // arguments: node, parent [, index]
}

// OperationsFor returns the operation names for forests with nodes of type T.
// Forests of different node types use distinct names.
func OperationsFor[T comparable]() Operations {
	prefix := "forest[" + reflect.TypeFor[T]().String() + "]"
	return Operations{
		Add:      oplog.Op(prefix + ".add"),
		Remove:   oplog.Op(prefix + ".remove"),
		Reparent: oplog.Op(prefix + ".reparent"),
	}
}

// declareOperations registers the forest operations for T with l, unless
// this has been done before by another forest.
func declareOperations[T comparable](l *oplog.Log) Operations {
	ops := OperationsFor[T]()
	if !l.Register(ops.Add, invokeAdd[T]) {
		return ops
	}
	l.Register(ops.Remove, invokeRemove[T])
	l.Register(ops.Reparent, invokeReparent[T])
	l.MarkObserved(ops.Add)
	l.MarkObserved(ops.Remove)
	l.MarkObserved(ops.Reparent)
	l.DeclareReversiblePair(ops.Add, ops.Remove, deriveRemove[T], deriveAdd[T])
	l.DeclareReversible(ops.Reparent, ops.Reparent, deriveReparent[T])
	tracer().Debugf("declared operations for %s", ops.Add)
	return ops
}

func targetForest[T comparable](target any) (*Forest[T], error) {
	f, ok := target.(*Forest[T])
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: target %T is not a forest", oplog.ErrInvalidArguments, target)
	}
	return f, nil
}

// nodeAndParent extracts the node and parent arguments, together with an
// optional child index (-1 if absent).
func nodeAndParent[T comparable](args []any) (node, parent T, index int, err error) {
	index = -1
	if node, err = oplog.Arg[T](args, 0); err != nil {
		return
	}
	if parent, err = oplog.Arg[T](args, 1); err != nil {
		return
	}
	if len(args) > 2 {
		index, err = oplog.Arg[int](args, 2)
	}
	return
}

// --- Invokers --------------------------------------------------------------

func invokeAdd[T comparable](target any, args []any) error {
	f, err := targetForest[T](target)
	if err != nil {
		return err
	}
	node, parent, index, err := nodeAndParent[T](args)
	if err != nil {
		return err
	}
	if index < 0 {
		return f.Add(node, parent)
	}
	return f.Insert(node, parent, index)
}

func invokeRemove[T comparable](target any, args []any) error {
	f, err := targetForest[T](target)
	if err != nil {
		return err
	}
	node, err := oplog.Arg[T](args, 0)
	if err != nil {
		return err
	}
	return f.Remove(node)
}

func invokeReparent[T comparable](target any, args []any) error {
	f, err := targetForest[T](target)
	if err != nil {
		return err
	}
	node, parent, index, err := nodeAndParent[T](args)
	if err != nil {
		return err
	}
	if index < 0 {
		return f.Reparent(node, parent)
	}
	return f.ReparentAt(node, parent, index)
}

// --- Derivers --------------------------------------------------------------
//
// Derivers are called by oplog.Log.Begin, while the forest is locked by the
// mutating operation. They must not lock the forest again.

// deriveRemove: add(node, parent [, index]) is undone by remove(node).
func deriveRemove[T comparable](_ any, args []any) ([]any, error) {
	node, err := oplog.Arg[T](args, 0)
	if err != nil {
		return nil, err
	}
	return []any{node}, nil
}

// deriveAdd: remove(node) is undone by add(node, parent, index), with the
// node's parent and position before removal.
func deriveAdd[T comparable](target any, args []any) ([]any, error) {
	f, err := targetForest[T](target)
	if err != nil {
		return nil, err
	}
	node, err := oplog.Arg[T](args, 0)
	if err != nil {
		return nil, err
	}
	parent, index := f.position(node)
	return []any{node, parent, index}, nil
}

// deriveReparent: reparent(node, parent [, index]) is undone by moving node
// back to its former parent and position.
func deriveReparent[T comparable](target any, args []any) ([]any, error) {
	f, err := targetForest[T](target)
	if err != nil {
		return nil, err
	}
	node, err := oplog.Arg[T](args, 0)
	if err != nil {
		return nil, err
	}
	parent, index := f.position(node)
	return []any{node, parent, index}, nil
}

// position returns the parent of node and the position of node within the
// parent's children. f.mu must be held.
func (f *Forest[T]) position(node T) (T, int) {
	parent := f.parents[node]
	index := slices.Index(f.children[parent], node)
	assertThat(index >= 0, "node %v missing in children of its parent %v", node, parent)
	return parent, index
}

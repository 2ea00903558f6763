package forest

import (
	"fmt"
	"iter"
	"slices"
)

// Nodes returns all nodes in render order: every node is preceded by its
// parent, and a node's subtree directly follows the node.
func (f *Forest[T]) Nodes() []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.order)
}

// Len returns the number of nodes.
func (f *Forest[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}

// Contains is a predicate: is node part of the forest?
// The zero value is never contained.
func (f *Forest[T]) Contains(node T) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isNode(node)
}

// Index returns the position of node in render order.
func (f *Forest[T]) Index(node T) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.isNode(node) {
		return -1, fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	return slices.Index(f.order, node), nil
}

// Parent returns the parent of node. For nodes at root level, it returns
// the zero value.
func (f *Forest[T]) Parent(node T) (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.isNode(node) {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	return f.parents[node], nil
}

// Children returns the children of node, in order. If node is the zero
// value, the nodes at root level are returned.
func (f *Forest[T]) Children(node T) ([]T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	children, ok := f.children[node]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	return slices.Clone(children), nil
}

// Roots returns the nodes at root level, in order.
func (f *Forest[T]) Roots() []T {
	var zero T
	roots, _ := f.Children(zero)
	return roots
}

// Siblings returns the children of node's parent, including node.
func (f *Forest[T]) Siblings(node T) ([]T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.isNode(node) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	return slices.Clone(f.children[f.parents[node]]), nil
}

// NextSibling returns the sibling following node. If node is the last child
// of its parent, ErrNoSibling is returned.
func (f *Forest[T]) NextSibling(node T) (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.isNode(node) {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	next, ok := f.nextSibling(node)
	if !ok {
		return next, fmt.Errorf("%w: %v is last child", ErrNoSibling, node)
	}
	return next, nil
}

// PreviousSibling returns the sibling preceding node. If node is the first
// child of its parent, ErrNoSibling is returned.
func (f *Forest[T]) PreviousSibling(node T) (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.isNode(node) {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	prev, ok := f.previousSibling(node)
	if !ok {
		return prev, fmt.Errorf("%w: %v is first child", ErrNoSibling, node)
	}
	return prev, nil
}

// Ancestors iterates over the ancestors of node, nearest first. The
// sequence is empty for nodes at root level and for unknown nodes.
//
// The sequence is evaluated lazily; mutations of the forest during
// iteration are reflected.
func (f *Forest[T]) Ancestors(node T) iter.Seq[T] {
	return func(yield func(T) bool) {
		var zero T
		f.mu.RLock()
		p := f.parents[node]
		f.mu.RUnlock()
		for p != zero {
			if !yield(p) {
				return
			}
			f.mu.RLock()
			p = f.parents[p]
			f.mu.RUnlock()
		}
	}
}

// Descendants iterates over the subtree below node in depth-first
// pre-order, which is the render order. If node is the zero value, all
// nodes of the forest are visited. The sequence is empty for unknown nodes.
//
// Children lists are read when their parent is visited.
func (f *Forest[T]) Descendants(node T) iter.Seq[T] {
	return func(yield func(T) bool) {
		stack := [][]T{f.childrenOf(node)}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(top) == 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			n := top[0]
			stack[len(stack)-1] = top[1:]
			if !yield(n) {
				return
			}
			if ch := f.childrenOf(n); len(ch) > 0 {
				stack = append(stack, ch)
			}
		}
	}
}

func (f *Forest[T]) childrenOf(node T) []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.children[node])
}

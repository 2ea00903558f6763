package forest

import "errors"

// Errors returned by forest operations. They are wrapped together with the
// offending node, use errors.Is to check for them.
var (
	// ErrInvalidNode is returned when the zero value is used as a node.
	ErrInvalidNode = errors.New("zero value cannot be a node")

	// ErrDuplicateNode is returned when adding a node which is already present.
	ErrDuplicateNode = errors.New("node already in forest")

	// ErrUnknownNode is returned when operating on a node which is not present.
	ErrUnknownNode = errors.New("node not in forest")

	// ErrUnknownParent is returned when referencing a parent which is not present.
	ErrUnknownParent = errors.New("parent not in forest")

	// ErrNoSibling is returned by sibling queries at either end of a list of siblings.
	ErrNoSibling = errors.New("no sibling")

	// ErrCyclicReparent is returned when reparenting a node below itself.
	ErrCyclicReparent = errors.New("node cannot become its own descendant")

	// ErrIndexOutOfRange is returned for sibling positions outside the list of children.
	ErrIndexOutOfRange = errors.New("child index out of range")

	// ErrStaleKey is returned by a Sorter for items which have not been indexed.
	ErrStaleKey = errors.New("item not indexed")
)

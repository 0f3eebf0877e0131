package graph

import (
	"context"
	"errors"
)

// END is a special node name that terminates a path through the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when compiling a graph without an entry point.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when an edge or the entry point references an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when execution reaches a node with no way forward.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")
)

// Node represents a single processing step in a state graph. Its function
// receives the current state and returns an update to fold back into it.
type Node[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// Edge represents an unconditional transition between two nodes.
type Edge struct {
	From string
	To   string
}

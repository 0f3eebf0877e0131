package graph

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StateGraph is a builder for a directed graph whose nodes transform a shared
// state of type S.
//
// Example usage:
//
//	type MyState struct {
//	    Count int
//	}
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    state.Count++
//	    return state, nil
//	})
//	g.SetEntryPoint("increment")
//	g.AddEdge("increment", graph.END)
type StateGraph[S any] struct {
	// nodes maps node names to their definitions
	nodes map[string]Node[S]

	// edges holds the unconditional transitions between nodes
	edges []Edge

	// conditionalEdges maps a source node to the function choosing its successor
	conditionalEdges map[string]func(ctx context.Context, state S) string

	// entryPoint is the node execution starts from
	entryPoint string

	// schema defines how node updates are folded into the state
	schema StateSchema[S]
}

// NewStateGraph creates an empty state graph for states of type S.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
	}
}

// AddNode adds a node with the given name, description and function.
// Adding a node with an existing name replaces it.
func (g *StateGraph[S]) AddNode(name, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds an unconditional edge between the "from" and "to" nodes.
// Several edges from the same node fan out to all targets in one step.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge registers a condition that picks the successor of "from"
// at runtime based on the current state. A conditional edge takes precedence
// over static edges registered for the same node.
//
// Example:
//
//	g.AddConditionalEdge("check", func(ctx context.Context, state MyState) string {
//	    if state.Count > 10 {
//	        return "high"
//	    }
//	    return "low"
//	})
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the node execution starts from.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema used to merge node updates.
// Without a schema the last node result replaces the state wholesale.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.schema = schema
}

// Node returns the definition of a named node, if present.
func (g *StateGraph[S]) Node(name string) (Node[S], bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Runnable is a compiled state graph ready to execute.
type Runnable[S any] struct {
	graph *StateGraph[S]
}

// Compile validates the graph and returns a Runnable.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, edge.From)
		}
		if edge.To == END {
			continue
		}
		if _, ok := g.nodes[edge.To]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, edge.To)
		}
	}
	for from := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, from)
		}
	}

	return &Runnable[S]{graph: g}, nil
}

// Invoke executes the compiled graph with the given input state and returns
// the final state.
//
// Example:
//
//	finalState, err := app.Invoke(ctx, MyState{Count: 0})
func (r *Runnable[S]) Invoke(ctx context.Context, initial S) (S, error) {
	return r.run(ctx, initial, nil)
}

// run drives the execution loop. When emit is non-nil it is called once per
// completed node with the node's returned update.
func (r *Runnable[S]) run(ctx context.Context, initial S, emit func(StreamEvent[S])) (S, error) {
	state := initial

	// Fold the caller's input into the schema's initial state.
	if r.graph.schema != nil {
		var err error
		state, err = r.graph.schema.Update(r.graph.schema.Init(), initial)
		if err != nil {
			var zero S
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	current := []string{r.graph.entryPoint}

	for len(current) > 0 {
		// Drop END markers; stop when nothing else remains.
		active := make([]string, 0, len(current))
		for _, name := range current {
			if name != END {
				active = append(active, name)
			}
		}
		current = active
		if len(current) == 0 {
			break
		}

		if err := ctx.Err(); err != nil {
			var zero S
			return zero, err
		}

		results, errs := r.executeNodes(ctx, current, state, emit)
		for _, err := range errs {
			if err != nil {
				var zero S
				return zero, err
			}
		}

		var err error
		state, err = r.mergeState(state, results)
		if err != nil {
			var zero S
			return zero, err
		}

		current, err = r.nextNodes(ctx, current, state)
		if err != nil {
			var zero S
			return zero, err
		}
	}

	return state, nil
}

// executeNodes runs the given nodes, each in its own goroutine with panic
// capture, and returns their results or errors by position.
func (r *Runnable[S]) executeNodes(ctx context.Context, names []string, state S, emit func(StreamEvent[S])) ([]S, []error) {
	var wg sync.WaitGroup
	results := make([]S, len(names))
	errs := make([]error, len(names))

	for i, name := range names {
		node, ok := r.graph.nodes[name]
		if !ok {
			errs[i] = fmt.Errorf("%w: %s", ErrNodeNotFound, name)
			continue
		}

		idx := i
		n := node

		SafeGo(&wg, func() {
			start := time.Now()

			res, err := n.Function(ctx, state)
			if err != nil {
				errs[idx] = fmt.Errorf("error in node %s: %w", n.Name, err)
				return
			}

			results[idx] = res
			if emit != nil {
				emit(StreamEvent[S]{
					Timestamp: time.Now(),
					Node:      n.Name,
					State:     res,
					Duration:  time.Since(start),
				})
			}
		}, func(panicVal any) {
			errs[idx] = fmt.Errorf("panic in node %s: %v", n.Name, panicVal)
		})
	}
	wg.Wait()

	return results, errs
}

// mergeState folds node results into the current state through the schema,
// or keeps the last result when no schema is set.
func (r *Runnable[S]) mergeState(state S, results []S) (S, error) {
	if r.graph.schema != nil {
		for _, res := range results {
			var err error
			state, err = r.graph.schema.Update(state, res)
			if err != nil {
				var zero S
				return zero, fmt.Errorf("schema update failed: %w", err)
			}
		}
		return state, nil
	}

	if len(results) > 0 {
		state = results[len(results)-1]
	}
	return state, nil
}

// nextNodes determines the successors of the nodes that just ran. A node's
// conditional edge wins over its static edges; a node with neither is an
// ErrNoOutgoingEdge.
func (r *Runnable[S]) nextNodes(ctx context.Context, current []string, state S) ([]string, error) {
	seen := make(map[string]bool)
	var next []string

	for _, name := range current {
		if condition, ok := r.graph.conditionalEdges[name]; ok {
			target := condition(ctx, state)
			if target == "" {
				return nil, fmt.Errorf("conditional edge returned empty next node from %s", name)
			}
			if !seen[target] {
				seen[target] = true
				next = append(next, target)
			}
			continue
		}

		found := false
		for _, edge := range r.graph.edges {
			if edge.From != name {
				continue
			}
			if !seen[edge.To] {
				seen[edge.To] = true
				next = append(next, edge.To)
			}
			found = true
			// No break: multiple edges from one node fan out.
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name)
		}
	}

	return next, nil
}

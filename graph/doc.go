// Package graph provides the typed state-graph engine that drives hybridchat.
//
// A StateGraph[S] is built from named nodes, static edges and conditional
// edges, then compiled into a Runnable[S]. State of type S flows through the
// graph: each node returns an update which is folded into the shared state
// through the graph's StateSchema (last-wins when no schema is set). Execution
// starts at the entry point and stops when every path reaches END.
//
// Conditional edges take precedence over static edges from the same node, and
// a node with several static edges fans out to all of them in the same step.
//
// Runnable.Invoke runs a graph to completion; Runnable.Stream additionally
// delivers one StreamEvent per completed node, which is how the interactive
// loop prints intermediate answers as they are produced. Exporter renders a
// graph as Mermaid, DOT or ASCII for inspection.
package graph

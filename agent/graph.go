package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/hybridchat/graph"
	"github.com/smallnest/hybridchat/log"
)

const defaultTemperature = 0.2

// Agent routes each query through a classify-answer-merge graph: a router
// node labels the query, the chatbot node answers from model memory, the
// tools node answers from live search, and the compare node merges both
// answers when the router asked for them.
type Agent struct {
	model       llms.Model
	tools       []tools.Tool
	logger      log.Logger
	temperature float64

	graph    *graph.StateGraph[State]
	runnable *graph.Runnable[State]
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger used by the agent's nodes.
func WithLogger(logger log.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithTemperature sets the sampling temperature for all model calls.
// Default is 0.2.
func WithTemperature(temperature float64) Option {
	return func(a *Agent) {
		a.temperature = temperature
	}
}

// New builds and compiles the agent graph. searchTools must hold at least one
// tool; the first one doubles as the fallback when the model declines to pick
// a tool itself.
func New(model llms.Model, searchTools []tools.Tool, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if len(searchTools) == 0 {
		return nil, fmt.Errorf("at least one tool is required")
	}

	a := &Agent{
		model:       model,
		tools:       searchTools,
		logger:      log.GetDefaultLogger(),
		temperature: defaultTemperature,
	}

	for _, opt := range opts {
		opt(a)
	}

	g := graph.NewStateGraph[State]()
	g.SetSchema(graph.NewStructSchema(State{}, mergeState))

	g.AddNode(NodeRouter, "Classify the query as memory, tools, or both", a.routerNode)
	g.AddNode(NodeChatbot, "Answer from the model's own knowledge", a.chatbotNode)
	g.AddNode(NodeTools, "Answer with external search tools", a.toolsNode)
	g.AddNode(NodeCompare, "Merge the memory answer and the tool answer", a.compareNode)

	g.SetEntryPoint(NodeRouter)

	// memory and both start at the chatbot; only a pure tools query skips it.
	// Anything unrecognized was already normalized to memory by the router.
	g.AddConditionalEdge(NodeRouter, func(ctx context.Context, state State) string {
		if state.Route == RouteTools {
			return NodeTools
		}
		return NodeChatbot
	})

	// both continues to the tools node; a memory-only run is done.
	g.AddConditionalEdge(NodeChatbot, func(ctx context.Context, state State) string {
		if state.Route == RouteBoth {
			return NodeTools
		}
		return graph.END
	})

	// both ends with the merge; a tools-only run is done.
	g.AddConditionalEdge(NodeTools, func(ctx context.Context, state State) string {
		if state.Route == RouteBoth {
			return NodeCompare
		}
		return graph.END
	})

	g.AddEdge(NodeCompare, graph.END)

	runnable, err := g.Compile()
	if err != nil {
		return nil, err
	}

	a.graph = g
	a.runnable = runnable

	return a, nil
}

// initialState builds the fresh state for one query. Each run starts from
// scratch; there is no cross-query memory.
func initialState(query string) State {
	return State{
		Messages: []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, query),
		},
	}
}

// Invoke runs the query to completion and returns the final answer text.
func (a *Agent) Invoke(ctx context.Context, query string) (string, error) {
	final, err := a.runnable.Invoke(ctx, initialState(query))
	if err != nil {
		return "", err
	}
	return LastMessageText(final.Messages), nil
}

// Stream runs the query and emits one event per completed node. The event
// state carries the node's update delta.
func (a *Agent) Stream(ctx context.Context, query string) *graph.StreamResult[State] {
	return a.runnable.Stream(ctx, initialState(query))
}

// Graph exposes the underlying state graph, e.g. for visualization with
// graph.NewExporter.
func (a *Agent) Graph() *graph.StateGraph[State] {
	return a.graph
}

// hybridchat - A Routing Conversational Agent in Go
//
// hybridchat answers a question one of three ways: from the language model's own
// knowledge ("memory"), from live search tools ("tools"), or by producing both
// answers and asking the model to merge them ("both"). A router node classifies
// each query into one of those labels and a typed state graph dispatches the
// query along the matching path.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/hybridchat
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/hybridchat/agent"
//		"github.com/smallnest/hybridchat/llms/groq"
//		"github.com/smallnest/hybridchat/tool"
//		"github.com/tmc/langchaingo/tools"
//	)
//
//	func main() {
//		llm, _ := groq.New()
//
//		web, _ := tool.NewSerperSearch("")
//		wiki := tool.NewWikipediaSearch()
//
//		bot, _ := agent.New(llm, []tools.Tool{web, wiki})
//
//		answer, _ := bot.Invoke(context.Background(), "Who won the last World Cup?")
//		fmt.Println(answer)
//	}
//
// # The Graph
//
// Execution always starts at the router and ends at END:
//
//	router -> chatbot -> END                       (memory)
//	router -> tools -> END                         (tools)
//	router -> chatbot -> tools -> compare -> END   (both)
//
// The router stores its one-word classification in the shared state; conditional
// edges read it to pick the next node. Unrecognized labels take the memory path.
//
// # Package Structure
//
// graph/
// The generic state-graph engine: nodes, static and conditional edges, schemas,
// synchronous invocation, per-node streaming, and mermaid/DOT/ASCII export.
//
// agent/
// The conversation state, the four nodes (router, chatbot, tools, compare) and
// the graph wiring, plus a Session wrapper for interactive use.
//
// tool/
// Search adapters implementing langchaingo's tools.Tool: Serper.dev web search
// and Wikipedia lookup.
//
// llms/groq/
// A langchaingo llms.Model implementation for Groq's OpenAI-compatible API.
//
// log/
// Structured logging behind a small Logger interface, with a kataras/golog
// implementation.
//
// cmd/hybridchat/
// The interactive terminal loop: reads queries from stdin, streams per-node
// outputs, and can export a session transcript.
//
// # Environment
//
//	GROQ_API_KEY   API key for the Groq endpoint (required)
//	SERP_API_KEY   API key for the Serper.dev search API (required)
//
// Both can also be supplied through a .env file next to the binary.
package hybridchat

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// routerPrompt classifies a query. The model must answer with a single label.
const routerPrompt = `You are a smart router. Decide how to answer this query:

"%s"

Options:
- "memory" → If the question is static, historical, or definitional (encyclopedia-like).
- "tools" → If the question needs current, real-time, or frequently changing data.
- "both" → If both memory and external tools are useful.

Answer with one word only: memory, tools, or both.`

// comparePrompt merges the memory answer and the tool answer into one reply.
const comparePrompt = `You are an assistant. You have two possible answers to the user's question:

Answer from memory (may be outdated):
%s

Answer from external tools (likely more up-to-date):
%s

Please give the most relevant, correct, and up-to-date answer to the user.
If the tool answer is empty or irrelevant, fallback to memory.`

// routerNode classifies the latest query and stores the label in Route. The
// conditional edges read the stored label, so the model is asked exactly once
// per run.
func (a *Agent) routerNode(ctx context.Context, state State) (State, error) {
	query := LastMessageText(state.Messages)

	reply, err := llms.GenerateFromSinglePrompt(ctx, a.model,
		fmt.Sprintf(routerPrompt, query),
		llms.WithTemperature(a.temperature))
	if err != nil {
		return State{}, fmt.Errorf("router classification failed: %w", err)
	}

	route := strings.ToLower(strings.TrimSpace(reply))
	switch route {
	case RouteMemory, RouteTools, RouteBoth:
	default:
		a.logger.Warn("unrecognized route %q, defaulting to %q", route, RouteMemory)
		route = RouteMemory
	}
	a.logger.Debug("routed query to %q", route)

	return State{Route: route}, nil
}

// chatbotNode answers from the model's own knowledge using the full message
// history. The reply is appended as an AI message and kept in ChatbotAnswer.
func (a *Agent) chatbotNode(ctx context.Context, state State) (State, error) {
	resp, err := a.model.GenerateContent(ctx, state.Messages,
		llms.WithTemperature(a.temperature))
	if err != nil {
		return State{}, err
	}
	if len(resp.Choices) == 0 {
		return State{}, fmt.Errorf("chatbot: model returned no choices")
	}

	answer := resp.Choices[0].Content

	return State{
		Messages: []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeAI, answer),
		},
		ChatbotAnswer: answer,
	}, nil
}

// toolsNode lets the model pick among the bound tools for the latest user
// query, executes every tool call it returns, and records the joined outputs
// in ToolAnswer. A model reply without tool calls falls back to running the
// first tool (the web search) on the query directly.
func (a *Agent) toolsNode(ctx context.Context, state State) (State, error) {
	query := latestUserText(state.Messages)

	toolDefs := make([]llms.Tool, 0, len(a.tools))
	for _, t := range a.tools {
		toolDefs = append(toolDefs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "The input query for the tool",
						},
					},
					"required":             []string{"input"},
					"additionalProperties": false,
				},
			},
		})
	}

	resp, err := a.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, query)},
		llms.WithTools(toolDefs),
		llms.WithTemperature(a.temperature))
	if err != nil {
		return State{}, err
	}
	if len(resp.Choices) == 0 {
		return State{}, fmt.Errorf("tools: model returned no choices")
	}

	choice := resp.Choices[0]

	if len(choice.ToolCalls) == 0 {
		a.logger.Debug("model returned no tool call, falling back to %s", a.tools[0].Name())

		result, err := a.tools[0].Call(ctx, query)
		if err != nil {
			return State{}, fmt.Errorf("fallback %s failed: %w", a.tools[0].Name(), err)
		}
		return State{
			Messages: []llms.MessageContent{
				llms.TextParts(llms.ChatMessageTypeAI, result),
			},
			ToolAnswer: result,
		}, nil
	}

	aiMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		aiMsg.Parts = append(aiMsg.Parts, tc)
	}

	messages := []llms.MessageContent{aiMsg}
	outputs := make([]string, 0, len(choice.ToolCalls))

	for _, tc := range choice.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args)

		input := tc.FunctionCall.Arguments
		if val, ok := args["input"].(string); ok {
			input = val
		}

		a.logger.Debug("calling tool %s with input %q", tc.FunctionCall.Name, input)

		result, err := a.callTool(ctx, tc.FunctionCall.Name, input)
		if err != nil {
			result = fmt.Sprintf("Error: %v", err)
		}
		outputs = append(outputs, result)

		messages = append(messages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    result,
				},
			},
		})
	}

	return State{
		Messages:   messages,
		ToolAnswer: strings.Join(outputs, "\n\n"),
	}, nil
}

// compareNode merges ChatbotAnswer and ToolAnswer into the final reply and
// appends it as an AI message.
func (a *Agent) compareNode(ctx context.Context, state State) (State, error) {
	reply, err := llms.GenerateFromSinglePrompt(ctx, a.model,
		fmt.Sprintf(comparePrompt, state.ChatbotAnswer, state.ToolAnswer),
		llms.WithTemperature(a.temperature))
	if err != nil {
		return State{}, fmt.Errorf("compare failed: %w", err)
	}

	return State{
		Messages: []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeAI, reply),
		},
	}, nil
}

// callTool dispatches to the bound tool with the given name.
func (a *Agent) callTool(ctx context.Context, name, input string) (string, error) {
	for _, t := range a.tools {
		if t.Name() == name {
			return t.Call(ctx, input)
		}
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}

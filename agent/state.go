package agent

import "github.com/tmc/langchaingo/llms"

// Route labels produced by the router node.
const (
	RouteMemory = "memory"
	RouteTools  = "tools"
	RouteBoth   = "both"
)

// Node names in the agent graph.
const (
	NodeRouter  = "router"
	NodeChatbot = "chatbot"
	NodeTools   = "tools"
	NodeCompare = "compare"
)

// State is the conversation state threaded through the agent graph. Nodes
// return update deltas; the schema merge folds them in.
type State struct {
	// Messages is the conversation history. It only grows during a run.
	Messages []llms.MessageContent

	// ChatbotAnswer is the answer generated from the model's own knowledge.
	ChatbotAnswer string

	// ToolAnswer is the answer assembled from external tool output.
	ToolAnswer string

	// Route is the router's classification of the current query:
	// RouteMemory, RouteTools or RouteBoth.
	Route string
}

// mergeState folds a node's update into the current state. Messages append,
// the scalar fields overwrite when the update sets them.
func mergeState(current, update State) (State, error) {
	current.Messages = append(current.Messages, update.Messages...)
	if update.ChatbotAnswer != "" {
		current.ChatbotAnswer = update.ChatbotAnswer
	}
	if update.ToolAnswer != "" {
		current.ToolAnswer = update.ToolAnswer
	}
	if update.Route != "" {
		current.Route = update.Route
	}
	return current, nil
}

// LastMessageText returns the concatenated text parts of the last message,
// or "" when there are no messages.
func LastMessageText(messages []llms.MessageContent) string {
	if len(messages) == 0 {
		return ""
	}
	return messageText(messages[len(messages)-1])
}

// latestUserText returns the text of the most recent human message, falling
// back to the last message of any role.
func latestUserText(messages []llms.MessageContent) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llms.ChatMessageTypeHuman {
			return messageText(messages[i])
		}
	}
	return LastMessageText(messages)
}

// messageText extracts the displayable content of a message: text parts for
// human/AI messages, response content for tool messages.
func messageText(msg llms.MessageContent) string {
	var text string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			text += p.Text
		case llms.ToolCallResponse:
			text += p.Content
		}
	}
	return text
}

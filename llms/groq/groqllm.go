package groq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrEmptyResponse = errors.New("no response")
	ErrMissingAPIKey = errors.New("groq api key not set")
)

// LLM is a client for the Groq inference API. Groq serves open-weight models
// behind an OpenAI-compatible endpoint.
type LLM struct {
	client           *openai.Client
	model            ModelName
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a new Groq LLM client.
//
// Authentication options:
// 1. WithAPIKey(apiKey) - pass API key directly
// 2. Set GROQ_API_KEY environment variable
//
// Example:
//
//	llm, err := groq.New(
//		groq.WithAPIKey("your-api-key"),
//		groq.WithModel(groq.ModelNameLlama33_70BVersatile),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &options{
		apiKey:    getEnvOrDefault("GROQ_API_KEY", ""),
		modelName: ModelNameLlama4Scout,
		baseURL:   DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.apiKey == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using groq.New(groq.WithAPIKey("{API Key}"))
or
export GROQ_API_KEY={API Key}
doc: https://console.groq.com/docs/quickstart`, ErrMissingAPIKey)
	}

	config := openai.DefaultConfig(options.apiKey)
	config.BaseURL = options.baseURL
	if options.httpClient != nil {
		config.HTTPClient = options.httpClient
	}

	return &LLM{
		client:           openai.NewClientWithConfig(config),
		model:            options.modelName,
		CallbacksHandler: options.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	chatMsgs, err := messagesToChatCompletion(messages)
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model:            o.getModelString(*opts),
		Messages:         chatMsgs,
		Temperature:      float32(opts.Temperature),
		TopP:             float32(opts.TopP),
		MaxTokens:        opts.MaxTokens,
		N:                opts.N,
		Stop:             opts.StopWords,
		FrequencyPenalty: float32(opts.FrequencyPenalty),
		PresencePenalty:  float32(opts.PresencePenalty),
	}

	if opts.Seed != 0 {
		seed := opts.Seed
		req.Seed = &seed
	}

	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	for _, tool := range opts.Tools {
		if tool.Function == nil {
			err := fmt.Errorf("tool of type %q has no function definition", tool.Type)
			if o.CallbacksHandler != nil {
				o.CallbacksHandler.HandleLLMError(ctx, err)
			}
			return nil, err
		}
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}
	if opts.ToolChoice != nil {
		req.ToolChoice = opts.ToolChoice
	}

	if opts.StreamingFunc != nil {
		return o.generateStream(ctx, req, opts.StreamingFunc)
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}

	if len(result.Choices) == 0 {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, ErrEmptyResponse)
		}
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, 0, len(result.Choices))
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}

		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		choices = append(choices, choice)
	}

	resp := &llms.ContentResponse{Choices: choices}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}

	return resp, nil
}

// generateStream runs a streaming completion, feeding each content delta to
// streamingFunc and returning the accumulated response. Tool-call fragments
// are merged into complete calls on the returned choice.
func (o *LLM) generateStream(ctx context.Context, req openai.ChatCompletionRequest, streamingFunc func(ctx context.Context, chunk []byte) error) (*llms.ContentResponse, error) {
	req.Stream = true

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}
	defer stream.Close()

	var content strings.Builder
	var toolCalls []openai.ToolCall
	var stopReason string

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if o.CallbacksHandler != nil {
				o.CallbacksHandler.HandleLLMError(ctx, err)
			}
			return nil, err
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			content.WriteString(delta.Content)
			if err := streamingFunc(ctx, []byte(delta.Content)); err != nil {
				return nil, err
			}
		}
		for _, tc := range delta.ToolCalls {
			toolCalls = appendToolCallDelta(toolCalls, tc)
		}
		if chunk.Choices[0].FinishReason != "" {
			stopReason = string(chunk.Choices[0].FinishReason)
		}
	}

	choice := &llms.ContentChoice{
		Content:        content.String(),
		StopReason:     stopReason,
		GenerationInfo: make(map[string]any),
	}
	for _, tc := range toolCalls {
		choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			FunctionCall: &llms.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	resp := &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}

	return resp, nil
}

// appendToolCallDelta merges one streamed tool-call fragment into the
// accumulated list. Fragments carry an index naming the call they extend;
// the ID and function name arrive on the first fragment for that index and
// the arguments arrive piecewise.
func appendToolCallDelta(calls []openai.ToolCall, delta openai.ToolCall) []openai.ToolCall {
	idx := len(calls)
	if delta.Index != nil {
		idx = *delta.Index
	}
	for len(calls) <= idx {
		calls = append(calls, openai.ToolCall{})
	}
	tc := &calls[idx]
	if delta.ID != "" {
		tc.ID = delta.ID
	}
	if delta.Type != "" {
		tc.Type = delta.Type
	}
	tc.Function.Name += delta.Function.Name
	tc.Function.Arguments += delta.Function.Arguments
	return calls
}

// messagesToChatCompletion converts langchaingo messages to the
// OpenAI-compatible wire format, including tool calls and tool responses.
func messagesToChatCompletion(messages []llms.MessageContent) ([]openai.ChatCompletionMessage, error) {
	chatMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, msg := range messages {
		m := openai.ChatCompletionMessage{Role: roleToChatRole(msg.Role)}

		var content strings.Builder
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				content.WriteString(p.Text)
			case llms.ToolCall:
				if p.FunctionCall == nil {
					return nil, fmt.Errorf("tool call %s has no function call", p.ID)
				}
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   p.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      p.FunctionCall.Name,
						Arguments: p.FunctionCall.Arguments,
					},
				})
			case llms.ToolCallResponse:
				m.Role = openai.ChatMessageRoleTool
				m.ToolCallID = p.ToolCallID
				m.Name = p.Name
				content.WriteString(p.Content)
			default:
				return nil, fmt.Errorf("unsupported content part type %T", part)
			}
		}
		m.Content = content.String()

		chatMsgs = append(chatMsgs, m)
	}

	return chatMsgs, nil
}

// roleToChatRole maps langchaingo chat roles onto OpenAI wire roles.
func roleToChatRole(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem
	case llms.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant
	case llms.ChatMessageTypeTool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

func (o *LLM) getModelString(opts llms.CallOptions) string {
	model := o.model

	if model == "" {
		model = ModelName(opts.Model)
	}

	return string(model)
}
